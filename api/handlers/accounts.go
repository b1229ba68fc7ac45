package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/customeros/mailsherpa/mailvalidate"

	"github.com/warmuphero/warmstack/dto"
	"github.com/warmuphero/warmstack/interfaces"
	"github.com/warmuphero/warmstack/internal/enum"
	"github.com/warmuphero/warmstack/internal/models"
	"github.com/warmuphero/warmstack/internal/repository"
	"github.com/warmuphero/warmstack/internal/tracing"
	"github.com/warmuphero/warmstack/services/warmup"
)

type createAccountRequest struct {
	UserID       string `json:"userId" binding:"required"`
	Tier         string `json:"tier"`
	EmailAddress string `json:"emailAddress" binding:"required"`
	Password     string `json:"password" binding:"required"`
	SmtpHost     string `json:"smtpHost" binding:"required"`
	SmtpPort     int    `json:"smtpPort" binding:"required"`
	ImapHost     string `json:"imapHost" binding:"required"`
	ImapPort     int    `json:"imapPort" binding:"required"`
	DailyLimit   int    `json:"dailyLimit"`
}

// CreateAccount registers a mailbox for warmup. The password is sealed before
// it touches the database, and the user's tier caps both account count and
// the daily limit.
func CreateAccount(repos *repository.Repositories, vault interfaces.CredentialVault) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, span := tracing.StartHttpServerTracerSpanWithHeader(c.Request.Context(), "CreateAccount", c.Request.Header)
		defer span.Finish()
		tracing.TagComponentRest(span)

		var req createAccountRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			tracing.TraceErr(span, err)
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		validation := mailvalidate.ValidateEmailSyntax(req.EmailAddress)
		if !validation.IsValid {
			c.JSON(http.StatusBadRequest, gin.H{"error": "email address is not valid"})
			return
		}

		tier := enum.SubscriptionTier(req.Tier)
		count, err := repos.EmailAccountRepository.CountByUser(ctx, req.UserID)
		if err != nil {
			tracing.TraceErr(span, err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		if !warmup.CanAddAccount(tier, count) {
			c.JSON(http.StatusForbidden, gin.H{
				"error": "account limit reached for subscription tier",
			})
			return
		}

		dailyLimit := req.DailyLimit
		tierLimit := warmup.DailyEmailLimit(tier)
		if dailyLimit <= 0 || dailyLimit > tierLimit {
			dailyLimit = tierLimit
		}

		cipher, nonce, err := vault.Seal(req.Password)
		if err != nil {
			tracing.TraceErr(span, err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to secure credentials"})
			return
		}

		account := models.EmailAccount{
			UserID:            req.UserID,
			EmailAddress:      req.EmailAddress,
			SmtpHost:          req.SmtpHost,
			SmtpPort:          req.SmtpPort,
			ImapHost:          req.ImapHost,
			ImapPort:          req.ImapPort,
			EncryptedPassword: cipher,
			PasswordNonce:     nonce,
			DailyLimit:        dailyLimit,
			Status:            enum.AccountStatusActive,
		}

		if err := repos.EmailAccountRepository.Create(ctx, &account); err != nil {
			tracing.TraceErr(span, err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}

		c.JSON(http.StatusCreated, gin.H{"status": "account added", "id": account.ID})
	}
}

// ListAccounts returns all warmup accounts with their sends for today.
func ListAccounts(repos *repository.Repositories) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, span := tracing.StartHttpServerTracerSpanWithHeader(c.Request.Context(), "ListAccounts", c.Request.Header)
		defer span.Finish()
		tracing.TagComponentRest(span)

		accounts, err := repos.EmailAccountRepository.ListAll(ctx)
		if err != nil {
			tracing.TraceErr(span, err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}

		since := warmup.StartOfToday(time.Now())
		summaries := make([]dto.AccountSummary, 0, len(accounts))
		for _, account := range accounts {
			sentToday, err := repos.ActivityLogRepository.CountSentSince(ctx, account.ID, since)
			if err != nil {
				tracing.TraceErr(span, err)
				c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
				return
			}
			summaries = append(summaries, dto.AccountSummary{
				ID:                 account.ID,
				EmailAddress:       account.EmailAddress,
				Status:             account.Status.String(),
				DailyLimit:         account.DailyLimit,
				SentToday:          sentToday,
				CurrentWarmupScore: account.CurrentWarmupScore,
				CreatedAt:          account.CreatedAt,
			})
		}

		c.JSON(http.StatusOK, gin.H{"accounts": summaries})
	}
}

// ReactivateAccount moves an account back to active after its credentials
// were fixed.
func ReactivateAccount(repos *repository.Repositories) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, span := tracing.StartHttpServerTracerSpanWithHeader(c.Request.Context(), "ReactivateAccount", c.Request.Header)
		defer span.Finish()
		tracing.TagComponentRest(span)

		id := c.Param("id")
		tracing.TagAccount(span, id)

		if err := repos.EmailAccountRepository.UpdateStatus(ctx, id, enum.AccountStatusActive); err != nil {
			if err == repository.ErrAccountNotFound {
				c.JSON(http.StatusNotFound, gin.H{"error": "account not found"})
				return
			}
			tracing.TraceErr(span, err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}

		c.JSON(http.StatusOK, gin.H{"status": "account reactivated", "id": id})
	}
}
