package handlers

import (
	"math"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/warmuphero/warmstack/dto"
	"github.com/warmuphero/warmstack/internal/enum"
	"github.com/warmuphero/warmstack/internal/repository"
	"github.com/warmuphero/warmstack/internal/tracing"
	"github.com/warmuphero/warmstack/services/warmup"
)

const defaultLogLimit = 50

// ListRecentActivity returns the latest activity log entries for the
// dashboard feed.
func ListRecentActivity(repos *repository.Repositories) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, span := tracing.StartHttpServerTracerSpanWithHeader(c.Request.Context(), "ListRecentActivity", c.Request.Header)
		defer span.Finish()
		tracing.TagComponentRest(span)

		limit := defaultLogLimit
		if raw := c.Query("limit"); raw != "" {
			parsed, err := strconv.Atoi(raw)
			if err != nil || parsed <= 0 {
				c.JSON(http.StatusBadRequest, gin.H{"error": "limit must be a positive integer"})
				return
			}
			limit = parsed
		}

		entries, err := repos.ActivityLogRepository.ListRecent(ctx, limit)
		if err != nil {
			tracing.TraceErr(span, err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}

		c.JSON(http.StatusOK, gin.H{"logs": entries})
	}
}

// GetWarmupStats aggregates the numbers behind the dashboard header. The
// health score is the share of sent messages that did not land in spam.
func GetWarmupStats(repos *repository.Repositories) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, span := tracing.StartHttpServerTracerSpanWithHeader(c.Request.Context(), "GetWarmupStats", c.Request.Header)
		defer span.Finish()
		tracing.TagComponentRest(span)

		sentToday, err := repos.ActivityLogRepository.CountSentSinceAll(ctx, warmup.StartOfToday(time.Now()))
		if err != nil {
			tracing.TraceErr(span, err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}

		totalSent, err := repos.ActivityLogRepository.CountByTypeAndStatus(ctx, enum.ActivitySent, enum.ActivityStatusSuccess)
		if err != nil {
			tracing.TraceErr(span, err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}

		rescued, err := repos.ActivityLogRepository.CountByTypeAndStatus(ctx, enum.ActivityReceived, enum.ActivityStatusRescued)
		if err != nil {
			tracing.TraceErr(span, err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}

		stats := dto.WarmupStats{
			SentToday:   sentToday,
			TotalSent:   totalSent,
			Rescued:     rescued,
			HealthScore: healthScore(totalSent, rescued),
		}

		c.JSON(http.StatusOK, stats)
	}
}

// healthScore maps the rescue ratio to 0-100. No traffic yet reads as a
// perfect score.
func healthScore(totalSent, rescued int64) int {
	if totalSent == 0 {
		return 100
	}

	score := int(math.Round((1 - float64(rescued)/float64(totalSent)) * 100))
	if score < 0 {
		score = 0
	}
	return score
}
