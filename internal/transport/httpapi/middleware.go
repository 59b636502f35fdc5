package httpapi

import (
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/foodorder/internal/metrics"
)

const (
	// HeaderRequestID — заголовок корреляции запроса.
	HeaderRequestID = "X-Request-ID"
	// HeaderIdempotencyKey — заголовок ключа идемпотентности.
	HeaderIdempotencyKey = "Idempotency-Key"
	// HeaderIdempotentReplay выставляется на повторённых ответах.
	HeaderIdempotentReplay = "Idempotent-Replay"

	requestIDKey = "request_id"
)

func corsMiddleware(origins []string) gin.HandlerFunc {
	cfg := cors.Config{
		AllowMethods:  []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:  []string{"Origin", "Content-Type", HeaderRequestID, HeaderIdempotencyKey},
		ExposeHeaders: []string{"Content-Length", HeaderRequestID, HeaderIdempotentReplay, "Retry-After"},
		MaxAge:        12 * time.Hour,
	}
	if len(origins) == 0 || (len(origins) == 1 && origins[0] == "*") {
		cfg.AllowAllOrigins = true
	} else {
		cfg.AllowOrigins = origins
	}
	return cors.New(cfg)
}

// requestID берёт X-Request-ID клиента или генерирует новый.
func requestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := strings.TrimSpace(c.GetHeader(HeaderRequestID))
		if id == "" {
			id = uuid.NewString()
		}
		c.Set(requestIDKey, id)
		c.Header(HeaderRequestID, id)
		c.Next()
	}
}

func requestIDFrom(c *gin.Context) string {
	return c.GetString(requestIDKey)
}

func accessLog(logger *log.Entry, m *metrics.HTTPMetrics) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		m.Started()

		c.Next()

		duration := time.Since(start)
		status := c.Writer.Status()
		route := c.FullPath()
		m.Finished(c.Request.Method, route, status, duration)

		entry := logger.WithFields(log.Fields{
			"request_id":  requestIDFrom(c),
			"method":      c.Request.Method,
			"path":        c.Request.URL.Path,
			"route":       route,
			"status":      status,
			"duration_ms": duration.Milliseconds(),
		})
		switch {
		case status >= http.StatusInternalServerError:
			entry.Warn("http request")
		default:
			entry.Info("http request")
		}
	}
}

func recovery(logger *log.Entry) gin.HandlerFunc {
	return gin.CustomRecoveryWithWriter(io.Discard, func(c *gin.Context, recovered any) {
		logger.WithFields(log.Fields{
			"request_id": requestIDFrom(c),
			"panic":      recovered,
		}).Error("panic recovered in http handler")
		fail(c, http.StatusInternalServerError, "internal error")
	})
}

func notFound(c *gin.Context) {
	fail(c, http.StatusNotFound, "route not found")
}
