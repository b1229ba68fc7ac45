package interfaces

import (
	"context"

	"github.com/warmuphero/warmstack/dto"
)

type EventsPublisher interface {
	PublishCycleCompleted(ctx context.Context, event dto.CycleCompleted) error
	Close() error
}
