package warmup

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/opentracing/opentracing-go"

	"github.com/warmuphero/warmstack/dto"
	"github.com/warmuphero/warmstack/internal/enum"
	internalerrors "github.com/warmuphero/warmstack/internal/errors"
	"github.com/warmuphero/warmstack/internal/models"
	"github.com/warmuphero/warmstack/internal/tracing"
)

// RunSendCycle dispatches one warmup batch for every active account. Each
// account sends up to BatchSize messages to randomly picked peers, capped by
// its remaining daily quota. Accounts whose credentials are rejected are
// moved to error_auth and skip the rest of their batch.
func (s *warmupService) RunSendCycle(ctx context.Context) ([]dto.SendResult, error) {
	span, ctx := opentracing.StartSpanFromContext(ctx, "WarmupService.RunSendCycle")
	defer span.Finish()
	tracing.SetDefaultServiceSpanTags(ctx, span)

	ctx, cancel := s.cycleContext(ctx)
	defer cancel()

	startedAt := time.Now()
	cycleID := uuid.New().String()
	span.SetTag("cycle.id", cycleID)

	accounts, err := s.repos.EmailAccountRepository.ListActive(ctx)
	if err != nil {
		tracing.TraceErr(span, err)
		return nil, err
	}
	span.SetTag("accounts.active", len(accounts))

	if len(accounts) < 2 {
		s.log.Warnf("send cycle %s skipped: %d active accounts, need at least 2", cycleID, len(accounts))
		return nil, internalerrors.ErrNotEnoughAccounts
	}

	// One boundary for the whole cycle so all workers count the same window.
	quotaWindowStart := StartOfToday(startedAt)

	var mu sync.Mutex
	var results []dto.SendResult

	s.forEachAccount(ctx, accounts, func(ctx context.Context, account models.EmailAccount) {
		accountResults := s.sendBatchForAccount(ctx, account, accounts, quotaWindowStart)
		mu.Lock()
		results = append(results, accountResults...)
		mu.Unlock()
	})

	event := dto.CycleCompleted{
		CycleID:     cycleID,
		CycleType:   "send",
		StartedAt:   startedAt,
		CompletedAt: time.Now(),
		Accounts:    len(accounts),
	}
	for _, result := range results {
		switch result.Status {
		case dto.SendStatusSent:
			event.Sent++
		case dto.SendStatusLimitReached:
			event.LimitHit++
		case dto.SendStatusError:
			event.Failed++
			event.Errors++
		}
	}
	s.publishCycleCompleted(ctx, event)

	s.log.Infof("send cycle %s completed: %d sent, %d failed, %d at limit across %d accounts",
		cycleID, event.Sent, event.Failed, event.LimitHit, event.Accounts)

	return results, nil
}

// sendBatchForAccount runs one sender's slice of the cycle. It returns one
// result per attempted message, or a single limit_reached/error row when the
// account cannot send at all.
func (s *warmupService) sendBatchForAccount(ctx context.Context, account models.EmailAccount, pool []models.EmailAccount, quotaWindowStart time.Time) []dto.SendResult {
	span, ctx := opentracing.StartSpanFromContext(ctx, "WarmupService.sendBatchForAccount")
	defer span.Finish()
	tracing.TagAccount(span, account.ID)

	remaining, err := s.quota.RemainingQuota(ctx, account.ID, account.DailyLimit, quotaWindowStart)
	if err != nil {
		tracing.TraceErr(span, err)
		return []dto.SendResult{{
			Sender: account.EmailAddress,
			Status: dto.SendStatusError,
			Error:  err.Error(),
		}}
	}

	if remaining == 0 {
		span.SetTag("quota.exhausted", true)
		return []dto.SendResult{{
			Sender: account.EmailAddress,
			Status: dto.SendStatusLimitReached,
		}}
	}

	toSend := s.cfg.BatchSize
	if toSend > remaining {
		toSend = remaining
	}
	span.SetTag("batch.size", toSend)

	password, err := s.vault.Open(account.EncryptedPassword, account.PasswordNonce)
	if err != nil {
		tracing.TraceErr(span, err)
		return []dto.SendResult{{
			Sender: account.EmailAddress,
			Status: dto.SendStatusError,
			Error:  "failed to decrypt credentials",
		}}
	}

	var results []dto.SendResult
	for i := 0; i < toSend; i++ {
		if ctx.Err() != nil {
			break
		}

		peer, ok := s.pickPeer(account, pool)
		if !ok {
			results = append(results, dto.SendResult{
				Sender: account.EmailAddress,
				Status: dto.SendStatusError,
				Error:  "no peer available",
			})
			break
		}

		result, sendErr := s.sendOne(ctx, account, password, peer)
		results = append(results, result)

		if sendErr != nil && s.escalateIfAuthFailure(ctx, account, sendErr) {
			break
		}
	}

	return results
}

// sendOne returns the transport error alongside the result so the caller can
// inspect it for credential rejections.
func (s *warmupService) sendOne(ctx context.Context, account models.EmailAccount, password string, peer models.EmailAccount) (dto.SendResult, error) {
	span, ctx := opentracing.StartSpanFromContext(ctx, "WarmupService.sendOne")
	defer span.Finish()
	tracing.TagAccount(span, account.ID)
	span.SetTag("recipient", peer.EmailAddress)

	content := s.generateContent(ctx)

	mail := dto.OutboundMail{
		Host:     account.SmtpHost,
		Port:     account.SmtpPort,
		Username: account.EmailAddress,
		Password: password,
		From:     account.EmailAddress,
		To:       peer.EmailAddress,
		Subject:  content.Subject,
		Body:     content.Body,
		Headers: map[string]string{
			MarkerHeader: MarkerValue,
		},
	}

	err := s.smtp.Send(ctx, mail)
	if err != nil {
		tracing.TraceErr(span, err)
		s.log.Warnf("send failed from %s to %s: %v", account.EmailAddress, peer.EmailAddress, err)
		s.appendLog(ctx, account.ID, enum.ActivitySent, enum.ActivityStatusFailed, models.JSONMap{
			"to":    peer.EmailAddress,
			"error": err.Error(),
		})
		return dto.SendResult{
			Sender:    account.EmailAddress,
			Recipient: peer.EmailAddress,
			Status:    dto.SendStatusError,
			Error:     err.Error(),
		}, err
	}

	s.appendLog(ctx, account.ID, enum.ActivitySent, enum.ActivityStatusSuccess, models.JSONMap{
		"to":      peer.EmailAddress,
		"subject": content.Subject,
	})

	return dto.SendResult{
		Sender:    account.EmailAddress,
		Recipient: peer.EmailAddress,
		Status:    dto.SendStatusSent,
	}, nil
}

// generateContent never fails the send; canned content covers provider
// outages.
func (s *warmupService) generateContent(ctx context.Context) dto.EmailContent {
	content, err := s.ai.GenerateEmailContent(ctx, s.cfg.ContentTopic)
	if err != nil || content == nil {
		s.log.Warnf("content generation failed, using fallback: %v", err)
		return dto.EmailContent{
			Subject: fallbackSubject,
			Body:    fallbackBody,
		}
	}
	return *content
}

// escalateIfAuthFailure moves the account to error_auth when the failure is
// an explicit credential rejection. Returns true when the account was
// escalated and the caller should stop its batch.
func (s *warmupService) escalateIfAuthFailure(ctx context.Context, account models.EmailAccount, cause error) bool {
	if !internalerrors.IsAuthenticationError(cause) {
		return false
	}

	s.log.Warnf("authentication failure for %s, marking account %s as error_auth", account.EmailAddress, account.ID)
	if err := s.repos.EmailAccountRepository.UpdateStatus(ctx, account.ID, enum.AccountStatusErrorAuth); err != nil {
		s.log.Errorf("failed to update status for account %s: %v", account.ID, err)
	}
	return true
}

func (s *warmupService) appendLog(ctx context.Context, accountID string, activityType enum.ActivityType, status enum.ActivityStatus, details models.JSONMap) {
	entry := &models.ActivityLog{
		AccountID: accountID,
		Type:      activityType,
		Status:    status,
		Details:   details,
	}
	if err := s.repos.ActivityLogRepository.Append(ctx, entry); err != nil {
		s.log.Errorf("failed to append activity log for account %s: %v", accountID, err)
	}
}
