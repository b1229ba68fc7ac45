package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/pkg/errors"

	"github.com/warmuphero/warmstack/interfaces"
	internalerrors "github.com/warmuphero/warmstack/internal/errors"
	"github.com/warmuphero/warmstack/internal/tracing"
)

// TriggerSendCycle runs one warmup send cycle on demand. The cron scheduler
// calls the same service; this endpoint exists for manual runs and testing.
func TriggerSendCycle(warmupService interfaces.WarmupService) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, span := tracing.StartHttpServerTracerSpanWithHeader(c.Request.Context(), "TriggerSendCycle", c.Request.Header)
		defer span.Finish()
		tracing.TagComponentRest(span)

		results, err := warmupService.RunSendCycle(ctx)
		if err != nil {
			if errors.Is(err, internalerrors.ErrNotEnoughAccounts) {
				c.JSON(http.StatusOK, gin.H{
					"message": "Not enough accounts to warm up. Add at least 2 accounts.",
					"results": []any{},
				})
				return
			}
			tracing.TraceErr(span, err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"message": "Warmup cycle completed",
			"results": results,
		})
	}
}

// TriggerRescueCycle runs one spam rescue cycle on demand.
func TriggerRescueCycle(warmupService interfaces.WarmupService) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, span := tracing.StartHttpServerTracerSpanWithHeader(c.Request.Context(), "TriggerRescueCycle", c.Request.Header)
		defer span.Finish()
		tracing.TagComponentRest(span)

		results, err := warmupService.RunRescueCycle(ctx)
		if err != nil {
			tracing.TraceErr(span, err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"message": "Rescue cycle completed",
			"results": results,
		})
	}
}
