package warmup

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/opentracing/opentracing-go"
	"github.com/pkg/errors"

	"github.com/warmuphero/warmstack/dto"
	"github.com/warmuphero/warmstack/interfaces"
	"github.com/warmuphero/warmstack/internal/enum"
	"github.com/warmuphero/warmstack/internal/models"
	"github.com/warmuphero/warmstack/internal/tracing"
	"github.com/warmuphero/warmstack/internal/utils"
	imapservice "github.com/warmuphero/warmstack/services/imap"
)

// RunRescueCycle scans every warmup account's spam folder for marked
// messages, moves them back to the inbox, and replies to reinforce sender
// reputation. Accounts already in error_auth are skipped.
func (s *warmupService) RunRescueCycle(ctx context.Context) ([]dto.RescueResult, error) {
	span, ctx := opentracing.StartSpanFromContext(ctx, "WarmupService.RunRescueCycle")
	defer span.Finish()
	tracing.SetDefaultServiceSpanTags(ctx, span)

	ctx, cancel := s.cycleContext(ctx)
	defer cancel()

	startedAt := time.Now()
	cycleID := uuid.New().String()
	span.SetTag("cycle.id", cycleID)

	accounts, err := s.repos.EmailAccountRepository.ListExcludingStatus(ctx, enum.AccountStatusErrorAuth)
	if err != nil {
		tracing.TraceErr(span, err)
		return nil, err
	}
	span.SetTag("accounts.checked", len(accounts))

	var mu sync.Mutex
	var results []dto.RescueResult

	s.forEachAccount(ctx, accounts, func(ctx context.Context, account models.EmailAccount) {
		result := s.rescueAccount(ctx, account)
		mu.Lock()
		results = append(results, result)
		mu.Unlock()
	})

	event := dto.CycleCompleted{
		CycleID:     cycleID,
		CycleType:   "rescue",
		StartedAt:   startedAt,
		CompletedAt: time.Now(),
		Accounts:    len(accounts),
	}
	for _, result := range results {
		event.Rescued += result.Rescued
		if result.Status == dto.RescueStatusError {
			event.Errors++
		}
	}
	s.publishCycleCompleted(ctx, event)

	s.log.Infof("rescue cycle %s completed: %d rescued across %d accounts, %d errors",
		cycleID, event.Rescued, event.Accounts, event.Errors)

	return results, nil
}

func (s *warmupService) rescueAccount(ctx context.Context, account models.EmailAccount) dto.RescueResult {
	span, ctx := opentracing.StartSpanFromContext(ctx, "WarmupService.rescueAccount")
	defer span.Finish()
	tracing.TagAccount(span, account.ID)

	password, err := s.vault.Open(account.EncryptedPassword, account.PasswordNonce)
	if err != nil {
		tracing.TraceErr(span, err)
		return dto.RescueResult{
			Account: account.EmailAddress,
			Status:  dto.RescueStatusError,
			Error:   "failed to decrypt credentials",
		}
	}

	session, err := s.mailbox.Connect(ctx, interfaces.MailboxConfig{
		Host:        account.ImapHost,
		Port:        account.ImapPort,
		Username:    account.EmailAddress,
		Password:    password,
		TLS:         account.ImapPort == 993,
		AuthTimeout: s.authTimeout(),
	})
	if err != nil {
		tracing.TraceErr(span, err)
		if s.escalateIfAuthFailure(ctx, account, err) {
			return dto.RescueResult{
				Account: account.EmailAddress,
				Status:  dto.RescueStatusError,
				Error:   "authentication failed",
			}
		}
		return dto.RescueResult{
			Account: account.EmailAddress,
			Status:  dto.RescueStatusError,
			Error:   err.Error(),
		}
	}
	defer session.Close()

	folders, err := session.ListFolders(ctx)
	if err != nil {
		tracing.TraceErr(span, err)
		return dto.RescueResult{
			Account: account.EmailAddress,
			Status:  dto.RescueStatusError,
			Error:   err.Error(),
		}
	}

	spamFolder, found := imapservice.ResolveSpamFolder(folders)
	if !found {
		span.SetTag("spam_folder.found", false)
		s.log.Infof("no spam folder found for %s among %d folders", account.EmailAddress, len(folders))
		return dto.RescueResult{
			Account: account.EmailAddress,
			Status:  dto.RescueStatusNoSpamFolder,
		}
	}
	span.SetTag("spam_folder.name", spamFolder)

	if err := session.Select(ctx, spamFolder); err != nil {
		tracing.TraceErr(span, err)
		return dto.RescueResult{
			Account: account.EmailAddress,
			Status:  dto.RescueStatusError,
			Error:   err.Error(),
		}
	}

	uids, err := session.SearchUnseenWithHeader(ctx, MarkerHeader, MarkerValue)
	if err != nil {
		tracing.TraceErr(span, err)
		return dto.RescueResult{
			Account: account.EmailAddress,
			Status:  dto.RescueStatusError,
			Error:   err.Error(),
		}
	}

	rescued := 0
	for _, uid := range uids {
		if ctx.Err() != nil {
			break
		}
		if s.rescueMessage(ctx, session, account, password, uid) {
			rescued++
		}
	}

	if rescued == 0 {
		return dto.RescueResult{
			Account: account.EmailAddress,
			Status:  dto.RescueStatusClean,
		}
	}

	return dto.RescueResult{
		Account: account.EmailAddress,
		Status:  dto.RescueStatusRescued,
		Rescued: rescued,
	}
}

// rescueMessage handles one spam-folder hit in isolation; a failure on one
// message never blocks the rest of the batch. Returns true when the message
// was rescued.
func (s *warmupService) rescueMessage(ctx context.Context, session interfaces.MailboxSession, account models.EmailAccount, password string, uid uint32) bool {
	span, ctx := opentracing.StartSpanFromContext(ctx, "WarmupService.rescueMessage")
	defer span.Finish()
	tracing.TagAccount(span, account.ID)
	span.SetTag("uid", uid)

	message, err := session.FetchMessage(ctx, uid)
	if err != nil {
		tracing.TraceErr(span, err)
		s.log.Warnf("failed to fetch message %d for %s: %v", uid, account.EmailAddress, err)
		return false
	}

	// Server-side HEADER search matches substrings, re-check exactly.
	if message.Headers[strings.ToLower(MarkerHeader)] != MarkerValue {
		span.SetTag("marker.mismatch", true)
		return false
	}

	if err := session.MarkSeenAndFlagged(ctx, uid); err != nil {
		tracing.TraceErr(span, err)
		s.log.Warnf("failed to flag message %d for %s: %v", uid, account.EmailAddress, err)
		return false
	}

	if err := session.MoveToInbox(ctx, uid); err != nil {
		tracing.TraceErr(span, err)
		s.log.Warnf("failed to move message %d to inbox for %s: %v", uid, account.EmailAddress, err)
		return false
	}

	details := models.JSONMap{
		"subject": message.Subject,
		"from":    message.From,
	}

	if err := s.replyToRescued(ctx, account, password, message); err != nil {
		s.log.Warnf("failed to reply to rescued message for %s: %v", account.EmailAddress, err)
	} else {
		details["action"] = "Replied"
	}

	s.appendLog(ctx, account.ID, enum.ActivityReceived, enum.ActivityStatusRescued, details)
	return true
}

// replyToRescued answers the rescued message through the account's own SMTP
// credentials. The reply carries the marker too, so the peer's rescue cycle
// can pick it up in turn.
func (s *warmupService) replyToRescued(ctx context.Context, account models.EmailAccount, password string, message *interfaces.SpamMessage) error {
	span, ctx := opentracing.StartSpanFromContext(ctx, "WarmupService.replyToRescued")
	defer span.Finish()

	recipient := utils.ExtractEmailAddress(message.From)
	if recipient == "" {
		return errors.New("rescued message has no usable sender address")
	}

	body, err := s.ai.GenerateReplyContent(ctx, message.Body)
	if err != nil || body == "" {
		s.log.Warnf("reply generation failed, using fallback: %v", err)
		body = fallbackReply
	}

	mail := dto.OutboundMail{
		Host:     account.SmtpHost,
		Port:     account.SmtpPort,
		Username: account.EmailAddress,
		Password: password,
		From:     account.EmailAddress,
		To:       recipient,
		Subject:  "Re: " + utils.NormalizeEmailSubject(message.Subject),
		Body:     body,
		Headers: map[string]string{
			MarkerHeader: MarkerValue,
		},
	}

	if err := s.smtp.Send(ctx, mail); err != nil {
		tracing.TraceErr(span, err)
		return err
	}
	return nil
}
