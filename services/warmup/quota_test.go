package warmup

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/warmuphero/warmstack/internal/enum"
)

func TestStartOfToday(t *testing.T) {
	loc := time.FixedZone("UTC+2", 2*60*60)
	now := time.Date(2025, 6, 15, 14, 37, 22, 0, loc)

	boundary := StartOfToday(now)

	assert.Equal(t, time.Date(2025, 6, 15, 0, 0, 0, 0, loc), boundary)
	assert.Equal(t, loc, boundary.Location())
}

func TestRemainingQuota(t *testing.T) {
	since := StartOfToday(time.Now())

	cases := []struct {
		name       string
		dailyLimit int
		sent       int64
		expected   int
	}{
		{"nothing sent", 5, 0, 5},
		{"partially used", 5, 3, 2},
		{"exactly at limit", 5, 5, 0},
		{"over limit clamps to zero", 5, 8, 0},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			logs := new(mockActivityRepo)
			logs.On("CountSentSince", mock.Anything, "acct_1", since).Return(tc.sent, nil)

			tracker := NewQuotaTracker(logs)
			remaining, err := tracker.RemainingQuota(context.Background(), "acct_1", tc.dailyLimit, since)

			require.NoError(t, err)
			assert.Equal(t, tc.expected, remaining)
		})
	}
}

func TestTierPolicy_AccountLimits(t *testing.T) {
	assert.Equal(t, 1, AccountLimit(enum.TierFree))
	assert.Equal(t, 3, AccountLimit(enum.TierStarter))
	assert.Equal(t, 9999, AccountLimit(enum.TierAgency))
	assert.Equal(t, 1, AccountLimit(enum.SubscriptionTier("enterprise")))
}

func TestTierPolicy_DailyEmailLimits(t *testing.T) {
	assert.Equal(t, 5, DailyEmailLimit(enum.TierFree))
	assert.Equal(t, 50, DailyEmailLimit(enum.TierStarter))
	assert.Equal(t, 200, DailyEmailLimit(enum.TierAgency))
	assert.Equal(t, 5, DailyEmailLimit(enum.SubscriptionTier("unknown")))
}

func TestCanAddAccount(t *testing.T) {
	assert.True(t, CanAddAccount(enum.TierFree, 0))
	assert.False(t, CanAddAccount(enum.TierFree, 1))
	assert.True(t, CanAddAccount(enum.TierStarter, 2))
	assert.False(t, CanAddAccount(enum.TierStarter, 3))
	assert.True(t, CanAddAccount(enum.TierAgency, 500))
}
