package warmup

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"

	"github.com/warmuphero/warmstack/dto"
	"github.com/warmuphero/warmstack/interfaces"
	"github.com/warmuphero/warmstack/internal/enum"
	"github.com/warmuphero/warmstack/internal/logger"
	"github.com/warmuphero/warmstack/internal/models"
)

func newTestLogger() logger.Logger {
	log := logger.NewAppLogger(&logger.Config{DevMode: true, LogLevel: "error"})
	log.InitLogger()
	return log
}

type mockAccountRepo struct {
	mock.Mock
}

func (m *mockAccountRepo) Create(ctx context.Context, account *models.EmailAccount) error {
	args := m.Called(ctx, account)
	return args.Error(0)
}

func (m *mockAccountRepo) GetByID(ctx context.Context, id string) (*models.EmailAccount, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.EmailAccount), args.Error(1)
}

func (m *mockAccountRepo) ListAll(ctx context.Context) ([]models.EmailAccount, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.EmailAccount), args.Error(1)
}

func (m *mockAccountRepo) ListActive(ctx context.Context) ([]models.EmailAccount, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.EmailAccount), args.Error(1)
}

func (m *mockAccountRepo) ListExcludingStatus(ctx context.Context, status enum.AccountStatus) ([]models.EmailAccount, error) {
	args := m.Called(ctx, status)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.EmailAccount), args.Error(1)
}

func (m *mockAccountRepo) ListByUser(ctx context.Context, userID string) ([]models.EmailAccount, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.EmailAccount), args.Error(1)
}

func (m *mockAccountRepo) CountByUser(ctx context.Context, userID string) (int64, error) {
	args := m.Called(ctx, userID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *mockAccountRepo) UpdateStatus(ctx context.Context, id string, status enum.AccountStatus) error {
	args := m.Called(ctx, id, status)
	return args.Error(0)
}

func (m *mockAccountRepo) UpdateDailyLimit(ctx context.Context, id string, dailyLimit int) error {
	args := m.Called(ctx, id, dailyLimit)
	return args.Error(0)
}

type mockActivityRepo struct {
	mock.Mock
}

func (m *mockActivityRepo) Append(ctx context.Context, entry *models.ActivityLog) error {
	args := m.Called(ctx, entry)
	return args.Error(0)
}

func (m *mockActivityRepo) CountSentSince(ctx context.Context, accountID string, since time.Time) (int64, error) {
	args := m.Called(ctx, accountID, since)
	return args.Get(0).(int64), args.Error(1)
}

func (m *mockActivityRepo) CountSentSinceAll(ctx context.Context, since time.Time) (int64, error) {
	args := m.Called(ctx, since)
	return args.Get(0).(int64), args.Error(1)
}

func (m *mockActivityRepo) CountByTypeAndStatus(ctx context.Context, activityType enum.ActivityType, status enum.ActivityStatus) (int64, error) {
	args := m.Called(ctx, activityType, status)
	return args.Get(0).(int64), args.Error(1)
}

func (m *mockActivityRepo) CountByType(ctx context.Context, activityType enum.ActivityType) (int64, error) {
	args := m.Called(ctx, activityType)
	return args.Get(0).(int64), args.Error(1)
}

func (m *mockActivityRepo) ListRecent(ctx context.Context, limit int) ([]models.ActivityLog, error) {
	args := m.Called(ctx, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.ActivityLog), args.Error(1)
}

type mockSMTPService struct {
	mock.Mock
}

func (m *mockSMTPService) Send(ctx context.Context, mail dto.OutboundMail) error {
	args := m.Called(ctx, mail)
	return args.Error(0)
}

type mockAIService struct {
	mock.Mock
}

func (m *mockAIService) GenerateEmailContent(ctx context.Context, topic string) (*dto.EmailContent, error) {
	args := m.Called(ctx, topic)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*dto.EmailContent), args.Error(1)
}

func (m *mockAIService) GenerateReplyContent(ctx context.Context, originalBody string) (string, error) {
	args := m.Called(ctx, originalBody)
	return args.String(0), args.Error(1)
}

type mockMailboxService struct {
	mock.Mock
}

func (m *mockMailboxService) Connect(ctx context.Context, config interfaces.MailboxConfig) (interfaces.MailboxSession, error) {
	args := m.Called(ctx, config)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(interfaces.MailboxSession), args.Error(1)
}

type mockMailboxSession struct {
	mock.Mock
	closed bool
}

func (m *mockMailboxSession) ListFolders(ctx context.Context) ([]interfaces.FolderInfo, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]interfaces.FolderInfo), args.Error(1)
}

func (m *mockMailboxSession) Select(ctx context.Context, folder string) error {
	args := m.Called(ctx, folder)
	return args.Error(0)
}

func (m *mockMailboxSession) SearchUnseenWithHeader(ctx context.Context, header, value string) ([]uint32, error) {
	args := m.Called(ctx, header, value)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]uint32), args.Error(1)
}

func (m *mockMailboxSession) FetchMessage(ctx context.Context, uid uint32) (*interfaces.SpamMessage, error) {
	args := m.Called(ctx, uid)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*interfaces.SpamMessage), args.Error(1)
}

func (m *mockMailboxSession) MarkSeenAndFlagged(ctx context.Context, uid uint32) error {
	args := m.Called(ctx, uid)
	return args.Error(0)
}

func (m *mockMailboxSession) MoveToInbox(ctx context.Context, uid uint32) error {
	args := m.Called(ctx, uid)
	return args.Error(0)
}

func (m *mockMailboxSession) Close() {
	m.closed = true
	m.Called()
}

type mockEventsPublisher struct {
	mock.Mock
}

func (m *mockEventsPublisher) PublishCycleCompleted(ctx context.Context, event dto.CycleCompleted) error {
	args := m.Called(ctx, event)
	return args.Error(0)
}

func (m *mockEventsPublisher) Close() error {
	args := m.Called()
	return args.Error(0)
}

// plainVault stores passwords as-is, keeping test fixtures readable.
type plainVault struct{}

func (plainVault) Seal(plaintext string) (string, string, error) {
	return plaintext, "nonce", nil
}

func (plainVault) Open(cipher string, nonce string) (string, error) {
	return cipher, nil
}
