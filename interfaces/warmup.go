package interfaces

import (
	"context"

	"github.com/warmuphero/warmstack/dto"
)

// WarmupService runs the two warmup cycles. Both are safe to trigger from
// cron and from the API; callers decide cadence.
type WarmupService interface {
	RunSendCycle(ctx context.Context) ([]dto.SendResult, error)
	RunRescueCycle(ctx context.Context) ([]dto.RescueResult, error)
}
