package handler

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/erp/seafreight/internal/domain/freight"
	"github.com/erp/seafreight/internal/domain/shared"
	"github.com/erp/seafreight/internal/interfaces/http/dto"
	"github.com/erp/seafreight/internal/interfaces/http/middleware"
)

// RetryAfterSeconds is sent with ERR_RATE_LIMITED responses.
const RetryAfterSeconds = 60

// BaseHandler provides common handler utilities
type BaseHandler struct{}

// getRequestID extracts the request ID from the context, falling back to the header
func getRequestID(c *gin.Context) string {
	if id := middleware.GetRequestID(c); id != "" {
		return id
	}
	return c.GetHeader(middleware.RequestIDHeader)
}

// Success sends a success response
func (h *BaseHandler) Success(c *gin.Context, data any) {
	c.JSON(http.StatusOK, dto.NewSuccessResponse(data))
}

// Error sends an error response with the appropriate status code
func (h *BaseHandler) Error(c *gin.Context, statusCode int, code, message string) {
	if code == dto.ErrCodeRateLimited {
		c.Header("Retry-After", strconv.Itoa(RetryAfterSeconds))
	}
	c.JSON(statusCode, dto.NewErrorResponseWithRequestID(code, message, getRequestID(c)))
}

// ErrorWithCode sends an error response, deriving status code from error code
func (h *BaseHandler) ErrorWithCode(c *gin.Context, code, message string) {
	code = dto.NormalizeErrorCode(code)
	h.Error(c, dto.GetHTTPStatus(code), code, message)
}

// BadRequest sends a 400 bad request response
func (h *BaseHandler) BadRequest(c *gin.Context, message string) {
	h.Error(c, http.StatusBadRequest, dto.ErrCodeBadRequest, message)
}

// InternalError sends a 500 internal server error response
func (h *BaseHandler) InternalError(c *gin.Context, message string) {
	h.Error(c, http.StatusInternalServerError, dto.ErrCodeInternal, message)
}

// classifyError maps known errors to an error code and client message.
// ok is false for errors with no specific mapping.
func classifyError(err error) (code, message string, ok bool) {
	if domainErr, ok := shared.AsDomainError(err); ok {
		return domainErr.Code, domainErr.Message, true
	}
	switch {
	case errors.Is(err, freight.ErrRateLimited):
		return dto.ErrCodeRateLimited, "Rate provider is throttling requests, retry later", true
	case errors.Is(err, freight.ErrInvalidCredentials):
		return dto.ErrCodeProviderAuthFailed, "Rate provider rejected the configured credentials", true
	case errors.Is(err, freight.ErrProviderDisabled):
		return dto.ErrCodeProviderDisabled, "Rate provider integration is disabled", true
	case errors.Is(err, freight.ErrConfiguration):
		return dto.ErrCodeInternal, "Rate provider is misconfigured", true
	case errors.Is(err, context.DeadlineExceeded):
		return dto.ErrCodeProviderTimeout, "Rate provider did not answer in time", true
	case errors.Is(err, freight.ErrProviderRequestFailed):
		return dto.ErrCodeProviderError, "Rate provider request failed", true
	}
	return "", "", false
}

// HandleError is a generic error handler that handles both domain and standard errors
func (h *BaseHandler) HandleError(c *gin.Context, err error) {
	if err == nil {
		return
	}
	_ = c.Error(err)
	if h.respondClassified(c, err) {
		return
	}
	h.InternalError(c, "An unexpected error occurred")
}

// HandleProviderError is HandleError for calls that reach the rate provider:
// unclassified failures are upstream transport errors and map to 502.
func (h *BaseHandler) HandleProviderError(c *gin.Context, err error) {
	if err == nil {
		return
	}
	_ = c.Error(err)
	if h.respondClassified(c, err) {
		return
	}
	h.ErrorWithCode(c, dto.ErrCodeProviderError, "Rate provider request failed")
}

// respondClassified writes the response for a classified error. Field-level
// domain errors are reported as validation details.
func (h *BaseHandler) respondClassified(c *gin.Context, err error) bool {
	code, message, ok := classifyError(err)
	if !ok {
		return false
	}
	if de, isDomain := shared.AsDomainError(err); isDomain && de.Field != "" &&
		dto.NormalizeErrorCode(code) == dto.ErrCodeValidation {
		c.JSON(http.StatusBadRequest, dto.NewValidationErrorResponse(message, getRequestID(c),
			[]dto.ValidationDetail{{Field: de.Field, Message: de.Message}}))
		return true
	}
	h.ErrorWithCode(c, code, message)
	return true
}
