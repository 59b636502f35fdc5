package httpapi

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/foodorder/internal/domain"
)

// retryAfterSeconds подсказывает клиенту паузу перед повтором при исчерпании пула.
const retryAfterSeconds = 1

// statusFor сопоставляет доменную ошибку с HTTP-статусом.
func statusFor(err error) int {
	switch {
	case errors.Is(err, domain.ErrInvalidRequest),
		errors.Is(err, domain.ErrIdempotencyKeyRequired):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrReferenceViolation):
		return http.StatusUnprocessableEntity
	case errors.Is(err, domain.ErrConflict),
		errors.Is(err, domain.ErrIdempotencyInProgress),
		errors.Is(err, domain.ErrIdempotencyHashMismatch):
		return http.StatusConflict
	case errors.Is(err, domain.ErrPoolTimeout):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// publicMessage скрывает детали серверных ошибок.
func publicMessage(status int, err error) string {
	switch status {
	case http.StatusServiceUnavailable:
		return domain.ErrPoolTimeout.Error()
	case http.StatusInternalServerError:
		return domain.ErrDataAccess.Error()
	default:
		return err.Error()
	}
}

func errorEnvelope(c *gin.Context, logger *log.Entry, err error) (int, envelope) {
	status := statusFor(err)

	entry := logger.WithError(err).WithFields(log.Fields{
		"request_id": requestIDFrom(c),
		"status":     status,
	})
	if status >= http.StatusInternalServerError {
		entry.Error("request failed")
	} else {
		entry.Debug("request rejected")
	}

	if domain.IsRetriable(err) {
		c.Header("Retry-After", strconv.Itoa(retryAfterSeconds))
	}
	return status, envelope{OK: false, Error: publicMessage(status, err)}
}

func writeError(c *gin.Context, logger *log.Entry, err error) {
	status, payload := errorEnvelope(c, logger, err)
	c.AbortWithStatusJSON(status, payload)
}
