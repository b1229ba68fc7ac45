package warmup

import (
	"context"
	"math/rand"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/warmuphero/warmstack/config"
	"github.com/warmuphero/warmstack/dto"
	"github.com/warmuphero/warmstack/interfaces"
	"github.com/warmuphero/warmstack/internal/enum"
	"github.com/warmuphero/warmstack/internal/models"
	"github.com/warmuphero/warmstack/internal/repository"
)

type rescueCycleFixture struct {
	accounts *mockAccountRepo
	logs     *mockActivityRepo
	smtp     *mockSMTPService
	ai       *mockAIService
	mailbox  *mockMailboxService
	service  *warmupService
}

func newRescueCycleFixture(cfg *config.WarmupConfig) *rescueCycleFixture {
	accounts := new(mockAccountRepo)
	logs := new(mockActivityRepo)
	smtp := new(mockSMTPService)
	ai := new(mockAIService)
	mailbox := new(mockMailboxService)

	service := &warmupService{
		log: newTestLogger(),
		repos: &repository.Repositories{
			EmailAccountRepository: accounts,
			ActivityLogRepository:  logs,
		},
		quota:    NewQuotaTracker(logs),
		smtp:     smtp,
		mailbox:  mailbox,
		ai:       ai,
		vault:    plainVault{},
		cfg:      cfg,
		pickPeer: NewRandomPeerPicker(rand.New(rand.NewSource(42))),
	}

	return &rescueCycleFixture{
		accounts: accounts,
		logs:     logs,
		smtp:     smtp,
		ai:       ai,
		mailbox:  mailbox,
		service:  service,
	}
}

func gmailFolders() []interfaces.FolderInfo {
	return []interfaces.FolderInfo{
		{Name: "INBOX", Delimiter: "/"},
		{Name: "[Gmail]", Delimiter: "/"},
		{Name: "[Gmail]/Spam", Delimiter: "/"},
	}
}

func markedMessage(uid uint32, from, subject string) *interfaces.SpamMessage {
	return &interfaces.SpamMessage{
		UID:     uid,
		From:    from,
		Subject: subject,
		Body:    "warmup body",
		Headers: map[string]string{"x-warmup-hero": "true"},
	}
}

func resultFor(results []dto.RescueResult, account string) *dto.RescueResult {
	for i := range results {
		if results[i].Account == account {
			return &results[i]
		}
	}
	return nil
}

func TestRunRescueCycle_RescuesMarkedMessages(t *testing.T) {
	f := newRescueCycleFixture(testWarmupConfig())
	acct := warmupAccount("a1", "u1", "a@one.com", 5)
	f.accounts.On("ListExcludingStatus", mock.Anything, enum.AccountStatusErrorAuth).
		Return([]models.EmailAccount{acct}, nil)

	session := new(mockMailboxSession)
	f.mailbox.On("Connect", mock.Anything, mock.MatchedBy(func(cfg interfaces.MailboxConfig) bool {
		return cfg.Username == "a@one.com" && cfg.TLS
	})).Return(session, nil)

	session.On("ListFolders", mock.Anything).Return(gmailFolders(), nil)
	session.On("Select", mock.Anything, "[Gmail]/Spam").Return(nil)
	session.On("SearchUnseenWithHeader", mock.Anything, MarkerHeader, MarkerValue).
		Return([]uint32{101, 102}, nil)
	session.On("FetchMessage", mock.Anything, uint32(101)).
		Return(markedMessage(101, "Peer One <b@two.com>", "Quick question"), nil)
	session.On("FetchMessage", mock.Anything, uint32(102)).
		Return(markedMessage(102, "c@three.com", "Re: Quick question"), nil)
	session.On("MarkSeenAndFlagged", mock.Anything, mock.Anything).Return(nil)
	session.On("MoveToInbox", mock.Anything, mock.Anything).Return(nil)
	session.On("Close").Return()

	f.ai.On("GenerateReplyContent", mock.Anything, mock.Anything).Return("Sounds good!", nil)
	f.smtp.On("Send", mock.Anything, mock.Anything).Return(nil)
	f.logs.On("Append", mock.Anything, mock.MatchedBy(func(entry *models.ActivityLog) bool {
		return entry.Type == enum.ActivityReceived && entry.Status == enum.ActivityStatusRescued
	})).Return(nil)

	results, err := f.service.RunRescueCycle(context.Background())

	require.NoError(t, err)
	result := resultFor(results, "a@one.com")
	require.NotNil(t, result)
	assert.Equal(t, dto.RescueStatusRescued, result.Status)
	assert.Equal(t, 2, result.Rescued)
	assert.True(t, session.closed)

	// Replies go to the extracted address with the subject normalized.
	replyCall := f.smtp.Calls[0]
	mail := replyCall.Arguments.Get(1).(dto.OutboundMail)
	assert.Equal(t, "b@two.com", mail.To)
	assert.Equal(t, "Re: Quick question", mail.Subject)
	assert.Equal(t, MarkerValue, mail.Headers[MarkerHeader])
}

func TestRunRescueCycle_SubstringHeaderMatchIsFilteredOut(t *testing.T) {
	f := newRescueCycleFixture(testWarmupConfig())
	acct := warmupAccount("a1", "u1", "a@one.com", 5)
	f.accounts.On("ListExcludingStatus", mock.Anything, enum.AccountStatusErrorAuth).
		Return([]models.EmailAccount{acct}, nil)

	session := new(mockMailboxSession)
	f.mailbox.On("Connect", mock.Anything, mock.Anything).Return(session, nil)
	session.On("ListFolders", mock.Anything).Return(gmailFolders(), nil)
	session.On("Select", mock.Anything, "[Gmail]/Spam").Return(nil)
	session.On("SearchUnseenWithHeader", mock.Anything, MarkerHeader, MarkerValue).
		Return([]uint32{201}, nil)

	// Server-side search matched, but the header value is not exactly "true".
	unmarked := &interfaces.SpamMessage{
		UID:     201,
		From:    "x@elsewhere.com",
		Subject: "Newsletter",
		Body:    "buy now",
		Headers: map[string]string{"x-warmup-hero": "untrue"},
	}
	session.On("FetchMessage", mock.Anything, uint32(201)).Return(unmarked, nil)
	session.On("Close").Return()

	results, err := f.service.RunRescueCycle(context.Background())

	require.NoError(t, err)
	result := resultFor(results, "a@one.com")
	require.NotNil(t, result)
	assert.Equal(t, dto.RescueStatusClean, result.Status)
	session.AssertNotCalled(t, "MoveToInbox", mock.Anything, mock.Anything)
	f.smtp.AssertNotCalled(t, "Send", mock.Anything, mock.Anything)
}

func TestRunRescueCycle_NoSpamFolder(t *testing.T) {
	f := newRescueCycleFixture(testWarmupConfig())
	acct := warmupAccount("a1", "u1", "a@one.com", 5)
	f.accounts.On("ListExcludingStatus", mock.Anything, enum.AccountStatusErrorAuth).
		Return([]models.EmailAccount{acct}, nil)

	session := new(mockMailboxSession)
	f.mailbox.On("Connect", mock.Anything, mock.Anything).Return(session, nil)
	session.On("ListFolders", mock.Anything).Return([]interfaces.FolderInfo{
		{Name: "INBOX", Delimiter: "/"},
		{Name: "Sent", Delimiter: "/"},
	}, nil)
	session.On("Close").Return()

	results, err := f.service.RunRescueCycle(context.Background())

	require.NoError(t, err)
	result := resultFor(results, "a@one.com")
	require.NotNil(t, result)
	assert.Equal(t, dto.RescueStatusNoSpamFolder, result.Status)
	assert.True(t, session.closed)
}

func TestRunRescueCycle_PartialFailureIsolation(t *testing.T) {
	f := newRescueCycleFixture(testWarmupConfig())
	acct := warmupAccount("a1", "u1", "a@one.com", 5)
	f.accounts.On("ListExcludingStatus", mock.Anything, enum.AccountStatusErrorAuth).
		Return([]models.EmailAccount{acct}, nil)

	session := new(mockMailboxSession)
	f.mailbox.On("Connect", mock.Anything, mock.Anything).Return(session, nil)
	session.On("ListFolders", mock.Anything).Return(gmailFolders(), nil)
	session.On("Select", mock.Anything, "[Gmail]/Spam").Return(nil)
	session.On("SearchUnseenWithHeader", mock.Anything, MarkerHeader, MarkerValue).
		Return([]uint32{301, 302, 303}, nil)
	session.On("FetchMessage", mock.Anything, mock.Anything).
		Return(markedMessage(0, "b@two.com", "Hello"), nil)

	// Message 302 cannot be flagged; the rest of the batch continues.
	session.On("MarkSeenAndFlagged", mock.Anything, uint32(301)).Return(nil)
	session.On("MarkSeenAndFlagged", mock.Anything, uint32(302)).Return(errors.New("server error"))
	session.On("MarkSeenAndFlagged", mock.Anything, uint32(303)).Return(nil)
	session.On("MoveToInbox", mock.Anything, uint32(301)).Return(nil)
	session.On("MoveToInbox", mock.Anything, uint32(303)).Return(nil)
	session.On("Close").Return()

	f.ai.On("GenerateReplyContent", mock.Anything, mock.Anything).Return("Got it", nil)
	f.smtp.On("Send", mock.Anything, mock.Anything).Return(nil)
	f.logs.On("Append", mock.Anything, mock.Anything).Return(nil)

	results, err := f.service.RunRescueCycle(context.Background())

	require.NoError(t, err)
	result := resultFor(results, "a@one.com")
	require.NotNil(t, result)
	assert.Equal(t, dto.RescueStatusRescued, result.Status)
	assert.Equal(t, 2, result.Rescued)
	session.AssertNotCalled(t, "MoveToInbox", mock.Anything, uint32(302))
}

func TestRunRescueCycle_ReplyFailureStillCountsRescue(t *testing.T) {
	f := newRescueCycleFixture(testWarmupConfig())
	acct := warmupAccount("a1", "u1", "a@one.com", 5)
	f.accounts.On("ListExcludingStatus", mock.Anything, enum.AccountStatusErrorAuth).
		Return([]models.EmailAccount{acct}, nil)

	session := new(mockMailboxSession)
	f.mailbox.On("Connect", mock.Anything, mock.Anything).Return(session, nil)
	session.On("ListFolders", mock.Anything).Return(gmailFolders(), nil)
	session.On("Select", mock.Anything, "[Gmail]/Spam").Return(nil)
	session.On("SearchUnseenWithHeader", mock.Anything, MarkerHeader, MarkerValue).
		Return([]uint32{401}, nil)
	session.On("FetchMessage", mock.Anything, uint32(401)).
		Return(markedMessage(401, "b@two.com", "Hello"), nil)
	session.On("MarkSeenAndFlagged", mock.Anything, uint32(401)).Return(nil)
	session.On("MoveToInbox", mock.Anything, uint32(401)).Return(nil)
	session.On("Close").Return()

	f.ai.On("GenerateReplyContent", mock.Anything, mock.Anything).Return("", errors.New("down"))
	f.smtp.On("Send", mock.Anything, mock.Anything).Return(errors.New("relay refused"))

	// Rescue is logged without the Replied action.
	f.logs.On("Append", mock.Anything, mock.MatchedBy(func(entry *models.ActivityLog) bool {
		_, replied := entry.Details["action"]
		return entry.Status == enum.ActivityStatusRescued && !replied
	})).Return(nil)

	results, err := f.service.RunRescueCycle(context.Background())

	require.NoError(t, err)
	result := resultFor(results, "a@one.com")
	require.NotNil(t, result)
	assert.Equal(t, dto.RescueStatusRescued, result.Status)
	assert.Equal(t, 1, result.Rescued)
	f.logs.AssertExpectations(t)
}

func TestRunRescueCycle_AuthFailureEscalates(t *testing.T) {
	f := newRescueCycleFixture(testWarmupConfig())
	acct := warmupAccount("a1", "u1", "a@one.com", 5)
	f.accounts.On("ListExcludingStatus", mock.Anything, enum.AccountStatusErrorAuth).
		Return([]models.EmailAccount{acct}, nil)

	f.mailbox.On("Connect", mock.Anything, mock.Anything).
		Return(nil, errors.New("failed to login as a@one.com: AUTHENTICATIONFAILED invalid credentials"))
	f.accounts.On("UpdateStatus", mock.Anything, "a1", enum.AccountStatusErrorAuth).Return(nil)

	results, err := f.service.RunRescueCycle(context.Background())

	require.NoError(t, err)
	result := resultFor(results, "a@one.com")
	require.NotNil(t, result)
	assert.Equal(t, dto.RescueStatusError, result.Status)
	f.accounts.AssertCalled(t, "UpdateStatus", mock.Anything, "a1", enum.AccountStatusErrorAuth)
}

func TestRunRescueCycle_GenericConnectionErrorDoesNotEscalate(t *testing.T) {
	f := newRescueCycleFixture(testWarmupConfig())
	acct := warmupAccount("a1", "u1", "a@one.com", 5)
	f.accounts.On("ListExcludingStatus", mock.Anything, enum.AccountStatusErrorAuth).
		Return([]models.EmailAccount{acct}, nil)

	f.mailbox.On("Connect", mock.Anything, mock.Anything).
		Return(nil, errors.New("NO mailbox unavailable, server busy"))

	results, err := f.service.RunRescueCycle(context.Background())

	require.NoError(t, err)
	result := resultFor(results, "a@one.com")
	require.NotNil(t, result)
	assert.Equal(t, dto.RescueStatusError, result.Status)
	f.accounts.AssertNotCalled(t, "UpdateStatus", mock.Anything, mock.Anything, mock.Anything)
}

func TestRunRescueCycle_ExpiredDeadlineSkipsAccounts(t *testing.T) {
	f := newRescueCycleFixture(testWarmupConfig())
	f.accounts.On("ListExcludingStatus", mock.Anything, enum.AccountStatusErrorAuth).
		Return([]models.EmailAccount{
			warmupAccount("a1", "u1", "a@one.com", 5),
			warmupAccount("a2", "u2", "b@two.com", 5),
		}, nil)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	results, err := f.service.RunRescueCycle(ctx)

	// No session is opened for accounts skipped at the deadline.
	require.NoError(t, err)
	assert.Empty(t, results)
	f.mailbox.AssertNotCalled(t, "Connect", mock.Anything, mock.Anything)
}
