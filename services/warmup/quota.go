package warmup

import (
	"context"
	"time"

	"github.com/warmuphero/warmstack/internal/enum"
	"github.com/warmuphero/warmstack/internal/repository"
)

// Subscription tier policy. Unknown tiers fall back to the free limits.
var accountLimitByTier = map[enum.SubscriptionTier]int{
	enum.TierFree:    1,
	enum.TierStarter: 3,
	enum.TierAgency:  9999,
}

var dailyEmailLimitByTier = map[enum.SubscriptionTier]int{
	enum.TierFree:    5,
	enum.TierStarter: 50,
	enum.TierAgency:  200,
}

func AccountLimit(tier enum.SubscriptionTier) int {
	if limit, ok := accountLimitByTier[tier]; ok {
		return limit
	}
	return accountLimitByTier[enum.TierFree]
}

func DailyEmailLimit(tier enum.SubscriptionTier) int {
	if limit, ok := dailyEmailLimitByTier[tier]; ok {
		return limit
	}
	return dailyEmailLimitByTier[enum.TierFree]
}

func CanAddAccount(tier enum.SubscriptionTier, currentCount int64) bool {
	return currentCount < int64(AccountLimit(tier))
}

// StartOfToday returns local midnight. The daily quota window resets here,
// matching how the activity log timestamps are recorded.
func StartOfToday(now time.Time) time.Time {
	return time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
}

// QuotaTracker answers "how many more sends does this account get today".
type QuotaTracker struct {
	logs repository.ActivityLogRepository
}

func NewQuotaTracker(logs repository.ActivityLogRepository) *QuotaTracker {
	return &QuotaTracker{logs: logs}
}

func (q *QuotaTracker) DailySentCount(ctx context.Context, accountID string, since time.Time) (int64, error) {
	return q.logs.CountSentSince(ctx, accountID, since)
}

// RemainingQuota never returns a negative value even if the log already holds
// more sends than the limit allows.
func (q *QuotaTracker) RemainingQuota(ctx context.Context, accountID string, dailyLimit int, since time.Time) (int, error) {
	sent, err := q.DailySentCount(ctx, accountID, since)
	if err != nil {
		return 0, err
	}

	remaining := dailyLimit - int(sent)
	if remaining < 0 {
		remaining = 0
	}
	return remaining, nil
}
