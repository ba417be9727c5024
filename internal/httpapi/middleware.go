package httpapi

import (
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/joseph-ayodele/label-approvals/internal/common"
	"github.com/joseph-ayodele/label-approvals/internal/entity"
	"github.com/joseph-ayodele/label-approvals/internal/services/jobs"
)

const (
	HeaderRequestID  = "X-Request-ID"
	HeaderReviewerID = "X-Reviewer-ID"
)

// CORSMiddleware allows the configured origins; "*" allows all and a trailing "*" is a wildcard.
// It returns nil when no origin is configured.
func CORSMiddleware(allowedOrigins []string) gin.HandlerFunc {
	var origins []string
	for _, o := range allowedOrigins {
		if o = strings.TrimSpace(o); o != "" {
			origins = append(origins, o)
		}
	}
	if len(origins) == 0 {
		return nil
	}

	cfg := cors.Config{
		AllowMethods:     []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization", HeaderRequestID, HeaderReviewerID},
		ExposeHeaders:    []string{"Content-Disposition", HeaderRequestID},
		AllowCredentials: true,
		AllowWildcard:    true,
		MaxAge:           time.Hour,
	}
	for _, o := range origins {
		if o == "*" {
			cfg.AllowAllOrigins = true
			cfg.AllowCredentials = false
			return cors.New(cfg)
		}
	}
	cfg.AllowOrigins = origins
	return cors.New(cfg)
}

// LoggerMiddleware logs each request as "http.request" and echoes a request id.
func LoggerMiddleware(logger *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		reqID := c.GetHeader(HeaderRequestID)
		if reqID == "" {
			reqID = uuid.NewString()
		}
		c.Header(HeaderRequestID, reqID)
		c.Request = c.Request.WithContext(common.WithRequestID(c.Request.Context(), reqID))

		c.Next()

		attrs := []any{
			"method", c.Request.Method,
			"path", c.FullPath(),
			"status", c.Writer.Status(),
			"req_id", reqID,
			"elapsed_ms", time.Since(start).Milliseconds(),
		}
		if errs := c.Errors.String(); errs != "" {
			attrs = append(attrs, "error", errs)
		}
		switch {
		case c.Writer.Status() >= http.StatusInternalServerError:
			logger.Error("http.request", attrs...)
		case c.FullPath() == "/health" || c.FullPath() == "/metrics":
			logger.Debug("http.request", attrs...)
		default:
			logger.Info("http.request", attrs...)
		}
	}
}

// RecoveryMiddleware recovers from panics and logs them.
func RecoveryMiddleware(logger *slog.Logger) gin.HandlerFunc {
	return gin.CustomRecovery(func(c *gin.Context, recovered any) {
		logger.Error("http.panic", "path", c.Request.URL.Path, "panic", recovered)
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	})
}

// ActorMiddleware records the reviewer named by X-Reviewer-ID on the request context.
func ActorMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		if id := strings.TrimSpace(c.GetHeader(HeaderReviewerID)); id != "" {
			ctx := jobs.WithActor(c.Request.Context(), entity.Actor{Entity: "reviewer", EntityID: id, EntityDomain: "http"})
			c.Request = c.Request.WithContext(ctx)
		}
		c.Next()
	}
}
