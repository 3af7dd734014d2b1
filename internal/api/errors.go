package api

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/ppiankov/tumblrsearch/internal/domain"
	"github.com/ppiankov/tumblrsearch/internal/logger"
)

// ErrorResponse is the body of every failed request.
type ErrorResponse struct {
	Error     string    `json:"error"`
	Code      string    `json:"code"`
	Timestamp time.Time `json:"timestamp"`
}

// Error codes.
const (
	CodeInvalidParameter  = "INVALID_PARAMETER"
	CodeUnsupportedFormat = "UNSUPPORTED_FORMAT"
	CodeFeedNotFound      = "FEED_NOT_FOUND"
	CodeInvalidFeed       = "INVALID_FEED"
	CodeFetchFailure      = "FETCH_FAILURE"
	CodeWriteFailure      = "WRITE_FAILURE"
	CodeInternal          = "INTERNAL_ERROR"
)

// classify maps an error to its HTTP status and code.
func classify(err error) (int, string) {
	switch {
	case errors.Is(err, domain.ErrInvalidParameter):
		return http.StatusBadRequest, CodeInvalidParameter
	case errors.Is(err, domain.ErrUnsupportedFormat):
		return http.StatusNotAcceptable, CodeUnsupportedFormat
	case errors.Is(err, domain.ErrFeedNotFound):
		return http.StatusNotFound, CodeFeedNotFound
	case errors.Is(err, domain.ErrFetchFailure):
		return http.StatusBadGateway, CodeFetchFailure
	case errors.Is(err, domain.ErrWriteFailure):
		return http.StatusInternalServerError, CodeWriteFailure
	case errors.Is(err, domain.ErrInvalidFeed):
		return http.StatusInternalServerError, CodeInvalidFeed
	}
	return http.StatusInternalServerError, CodeInternal
}

func (h *Handler) fail(c *gin.Context, err error) {
	status, code := classify(err)

	fields := []logger.Field{
		logger.String("path", c.Request.URL.Path),
		logger.String("code", code),
		logger.Error(err),
	}
	if id := requestID(c); id != "" {
		fields = append(fields, logger.String("request_id", id))
	}
	if status >= http.StatusInternalServerError {
		h.log.Error("request failed", fields...)
	} else {
		h.log.Warn("request rejected", fields...)
	}

	c.AbortWithStatusJSON(status, ErrorResponse{
		Error:     err.Error(),
		Code:      code,
		Timestamp: time.Now().UTC(),
	})
}
