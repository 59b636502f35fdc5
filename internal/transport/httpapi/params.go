package httpapi

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/vladislavdragonenkov/foodorder/internal/domain"
)

// pathID разбирает :id; нечисловое значение считается ошибкой валидации.
func pathID(c *gin.Context) (int64, error) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, domain.NewValidationError([]error{domain.ErrIDInvalid})
	}
	return id, nil
}
