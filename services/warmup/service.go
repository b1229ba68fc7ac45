package warmup

import (
	"context"
	"math/rand"
	"sync"
	"time"

	"github.com/warmuphero/warmstack/config"
	"github.com/warmuphero/warmstack/dto"
	"github.com/warmuphero/warmstack/interfaces"
	"github.com/warmuphero/warmstack/internal/logger"
	"github.com/warmuphero/warmstack/internal/models"
	"github.com/warmuphero/warmstack/internal/repository"
)

const (
	// MarkerHeader tags every warmup message so the rescue cycle can tell
	// warmup traffic apart from real mail. Matching is exact.
	MarkerHeader = "X-Warmup-Hero"
	MarkerValue  = "true"

	// Canned content used when generation is unavailable. Warmup must keep
	// sending even when the content provider is down.
	fallbackSubject = "Quick question regarding our meeting"
	fallbackBody    = "Hi,\n\nI wanted to follow up on our previous conversation. Are you available for a quick call tomorrow?\n\nBest,\nAlex"
	fallbackReply   = "Thanks for reaching out! Let me check my schedule and get back to you shortly.\n\nBest regards"
)

type warmupService struct {
	log      logger.Logger
	repos    *repository.Repositories
	quota    *QuotaTracker
	smtp     interfaces.SMTPService
	mailbox  interfaces.MailboxService
	ai       interfaces.AIService
	vault    interfaces.CredentialVault
	events   interfaces.EventsPublisher
	cfg      *config.WarmupConfig
	pickPeer PeerPicker
}

// NewWarmupService wires the two cycle orchestrators. events may be nil when
// no broker is configured; cycle completion is then only logged.
func NewWarmupService(
	log logger.Logger,
	repos *repository.Repositories,
	smtp interfaces.SMTPService,
	mailbox interfaces.MailboxService,
	ai interfaces.AIService,
	vault interfaces.CredentialVault,
	events interfaces.EventsPublisher,
	cfg *config.WarmupConfig,
) interfaces.WarmupService {
	return &warmupService{
		log:      log,
		repos:    repos,
		quota:    NewQuotaTracker(repos.ActivityLogRepository),
		smtp:     smtp,
		mailbox:  mailbox,
		ai:       ai,
		vault:    vault,
		events:   events,
		cfg:      cfg,
		pickPeer: NewRandomPeerPicker(rand.New(rand.NewSource(time.Now().UnixNano()))),
	}
}

func (s *warmupService) cycleContext(ctx context.Context) (context.Context, context.CancelFunc) {
	timeout := time.Duration(s.cfg.CycleTimeoutSeconds) * time.Second
	return context.WithTimeout(ctx, timeout)
}

func (s *warmupService) authTimeout() time.Duration {
	return time.Duration(s.cfg.AuthTimeoutSeconds) * time.Second
}

// forEachAccount fans accounts out to a bounded worker pool. Work not yet
// started when the context expires is skipped; in-flight workers observe the
// context through the services they call.
func (s *warmupService) forEachAccount(ctx context.Context, accounts []models.EmailAccount, fn func(ctx context.Context, account models.EmailAccount)) {
	maxWorkers := s.cfg.MaxConcurrentAccounts
	if maxWorkers <= 0 {
		maxWorkers = 1
	}

	var wg sync.WaitGroup
	semaphore := make(chan struct{}, maxWorkers)

	for _, account := range accounts {
		select {
		case <-ctx.Done():
		case semaphore <- struct{}{}:
		}
		// Checked separately: when the deadline has passed and a worker slot
		// is also free, select picks a branch at random.
		if ctx.Err() != nil {
			s.log.Warnf("cycle deadline reached, skipping remaining accounts")
			break
		}

		wg.Add(1)
		go func(account models.EmailAccount) {
			defer wg.Done()
			defer func() { <-semaphore }()
			fn(ctx, account)
		}(account)
	}

	wg.Wait()
}

// publishCycleCompleted is best effort; a broker outage never fails a cycle.
func (s *warmupService) publishCycleCompleted(ctx context.Context, event dto.CycleCompleted) {
	if s.events == nil {
		return
	}
	if err := s.events.PublishCycleCompleted(ctx, event); err != nil {
		s.log.Errorf("failed to publish cycle completed event: %v", err)
	}
}
