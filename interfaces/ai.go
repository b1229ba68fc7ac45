package interfaces

import (
	"golang.org/x/net/context"

	"github.com/warmuphero/warmstack/dto"
)

type AIService interface {
	GenerateEmailContent(ctx context.Context, topic string) (*dto.EmailContent, error)
	GenerateReplyContent(ctx context.Context, originalBody string) (string, error)
}
