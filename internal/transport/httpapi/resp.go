package httpapi

import (
	"encoding/json"
	"net/http"

	"github.com/gin-gonic/gin"
)

// envelope — единый формат ответа API.
type envelope struct {
	OK    bool   `json:"ok"`
	Data  any    `json:"data,omitempty"`
	Error string `json:"error,omitempty"`
}

func ok(c *gin.Context, data any) {
	c.JSON(http.StatusOK, envelope{OK: true, Data: data})
}

func created(c *gin.Context, data any) {
	c.JSON(http.StatusCreated, envelope{OK: true, Data: data})
}

func fail(c *gin.Context, status int, msg string) {
	c.AbortWithStatusJSON(status, envelope{OK: false, Error: msg})
}

// encode сериализует ответ заранее: тело нужно сохранить для повтора по idempotency-key.
func encode(payload envelope) []byte {
	body, err := json.Marshal(payload)
	if err != nil {
		body, _ = json.Marshal(envelope{OK: false, Error: "encode response"})
	}
	return body
}

func writeRaw(c *gin.Context, status int, body []byte) {
	c.Data(status, "application/json; charset=utf-8", body)
}
