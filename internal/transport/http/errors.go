package http

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"medmcq/internal/domain"
)

// ErrorBody is the envelope of every failed REST response.
type ErrorBody struct {
	Type    domain.Kind `json:"type"`
	Message string      `json:"message"`
}

var statusByKind = map[domain.Kind]int{
	domain.KindNotFound:        http.StatusNotFound,
	domain.KindNotAuthorized:   http.StatusForbidden,
	domain.KindModelValidation: http.StatusBadRequest,
	domain.KindUniqueViolation: http.StatusConflict,
}

// StatusOf maps an error kind to its HTTP status.
func StatusOf(err error) int {
	if status, ok := statusByKind[domain.KindOf(err)]; ok {
		return status
	}
	return http.StatusInternalServerError
}

func (h *handlers) fail(c *gin.Context, err error) {
	kind := domain.KindOf(err)
	status := StatusOf(err)
	body := ErrorBody{Type: kind, Message: err.Error()}
	if status == http.StatusInternalServerError {
		h.log.Error("request failed", zap.String("path", c.FullPath()), zap.Error(err))
		body.Message = "Internal server error"
	}
	c.AbortWithStatusJSON(status, body)
}
