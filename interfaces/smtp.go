package interfaces

import (
	"context"

	"github.com/warmuphero/warmstack/dto"
)

// SMTPService dispatches one message per call. Implementations are stateless;
// a fresh connection is made per send and torn down before returning.
type SMTPService interface {
	Send(ctx context.Context, mail dto.OutboundMail) error
}
