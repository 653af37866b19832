package handler

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/erp/seafreight/internal/domain/freight"
	"github.com/erp/seafreight/internal/domain/shared"
	"github.com/erp/seafreight/internal/interfaces/http/dto"
	"github.com/erp/seafreight/internal/interfaces/http/middleware"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func newTestContext() (*gin.Context, *httptest.ResponseRecorder) {
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodPost, "/api/v1/rates/search", nil)
	return c, w
}

func decodeResponse(t *testing.T, w *httptest.ResponseRecorder) ErrorResponse {
	t.Helper()
	var resp ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return resp
}

func TestGetRequestID(t *testing.T) {
	tests := []struct {
		name       string
		setup      func(*gin.Context)
		expectedID string
	}{
		{
			name:       "from context",
			setup:      func(c *gin.Context) { c.Set(middleware.RequestIDKey, "ctx-request-id") },
			expectedID: "ctx-request-id",
		},
		{
			name:       "from header when context empty",
			setup:      func(c *gin.Context) { c.Request.Header.Set(middleware.RequestIDHeader, "header-request-id") },
			expectedID: "header-request-id",
		},
		{
			name:       "empty when not set",
			setup:      func(c *gin.Context) {},
			expectedID: "",
		},
		{
			name: "context takes precedence over header",
			setup: func(c *gin.Context) {
				c.Set(middleware.RequestIDKey, "ctx-id")
				c.Request.Header.Set(middleware.RequestIDHeader, "header-id")
			},
			expectedID: "ctx-id",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, _ := newTestContext()
			tt.setup(c)
			assert.Equal(t, tt.expectedID, getRequestID(c))
		})
	}
}

func TestBaseHandlerSuccess(t *testing.T) {
	h := &BaseHandler{}
	c, w := newTestContext()

	h.Success(c, map[string]string{"key": "value"})

	assert.Equal(t, http.StatusOK, w.Code)
	assert.True(t, decodeResponse(t, w).Success)
}

func TestBaseHandlerErrorWithRequestID(t *testing.T) {
	h := &BaseHandler{}
	c, w := newTestContext()
	c.Set(middleware.RequestIDKey, "req-7")

	h.BadRequest(c, "bad")

	assert.Equal(t, http.StatusBadRequest, w.Code)
	resp := decodeResponse(t, w)
	require.NotNil(t, resp.Error)
	assert.Equal(t, dto.ErrCodeBadRequest, resp.Error.Code)
	assert.Equal(t, "req-7", resp.Error.RequestID)
	assert.NotZero(t, resp.Error.Timestamp)
}

func TestBaseHandlerErrorWithCode_NormalizesLegacyCodes(t *testing.T) {
	h := &BaseHandler{}
	c, w := newTestContext()

	h.ErrorWithCode(c, "INVALID_QUERY", "source port is required")

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, dto.ErrCodeValidation, decodeResponse(t, w).Error.Code)
}

func TestBaseHandlerHandleProviderError(t *testing.T) {
	tests := []struct {
		name           string
		err            error
		wantStatus     int
		wantCode       string
		wantRetryAfter string
	}{
		{"invalid query", freight.ErrQueryNoProducts, http.StatusBadRequest, dto.ErrCodeValidation, ""},
		{"rate limited", freight.ErrRateLimited, http.StatusTooManyRequests, dto.ErrCodeRateLimited, "60"},
		{"wrapped rate limited", fmt.Errorf("cargofive: %w", freight.ErrRateLimited), http.StatusTooManyRequests, dto.ErrCodeRateLimited, "60"},
		{"invalid credentials", freight.ErrInvalidCredentials, http.StatusBadGateway, dto.ErrCodeProviderAuthFailed, ""},
		{"disabled", freight.ErrProviderDisabled, http.StatusServiceUnavailable, dto.ErrCodeProviderDisabled, ""},
		{"misconfigured", freight.ErrConfiguration, http.StatusInternalServerError, dto.ErrCodeInternal, ""},
		{"deadline", fmt.Errorf("post: %w", context.DeadlineExceeded), http.StatusGatewayTimeout, dto.ErrCodeProviderTimeout, ""},
		{"http status", fmt.Errorf("%w: status 500", freight.ErrProviderRequestFailed), http.StatusBadGateway, dto.ErrCodeProviderError, ""},
		{"network", errors.New("dial tcp: connection refused"), http.StatusBadGateway, dto.ErrCodeProviderError, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := &BaseHandler{}
			c, w := newTestContext()

			h.HandleProviderError(c, tt.err)

			assert.Equal(t, tt.wantStatus, w.Code)
			assert.Equal(t, tt.wantRetryAfter, w.Header().Get("Retry-After"))
			resp := decodeResponse(t, w)
			assert.False(t, resp.Success)
			require.NotNil(t, resp.Error)
			assert.Equal(t, tt.wantCode, resp.Error.Code)
			assert.Len(t, c.Errors, 1)
		})
	}
}

func TestBaseHandlerHandleError(t *testing.T) {
	t.Run("unknown error is internal", func(t *testing.T) {
		h := &BaseHandler{}
		c, w := newTestContext()

		h.HandleError(c, errors.New("boom"))

		assert.Equal(t, http.StatusInternalServerError, w.Code)
		resp := decodeResponse(t, w)
		assert.Equal(t, dto.ErrCodeInternal, resp.Error.Code)
		assert.Equal(t, "An unexpected error occurred", resp.Error.Message)
	})

	t.Run("domain error keeps its message", func(t *testing.T) {
		h := &BaseHandler{}
		c, w := newTestContext()

		h.HandleError(c, freight.ErrQueryInvalidDateWindow)

		assert.Equal(t, http.StatusBadRequest, w.Code)
		resp := decodeResponse(t, w)
		assert.Equal(t, dto.ErrCodeValidation, resp.Error.Code)
		assert.Equal(t, "dateEnd must not be before dateBegin", resp.Error.Message)
		require.Len(t, resp.Error.Details, 1)
		assert.Equal(t, "dateEnd", resp.Error.Details[0].Field)
	})

	t.Run("domain error without field has no details", func(t *testing.T) {
		h := &BaseHandler{}
		c, w := newTestContext()

		h.HandleError(c, shared.NewDomainError(shared.CodeInvalidInput, "bad input"))

		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Empty(t, decodeResponse(t, w).Error.Details)
	})

	t.Run("nil error writes nothing", func(t *testing.T) {
		h := &BaseHandler{}
		c, w := newTestContext()

		h.HandleError(c, nil)
		h.HandleProviderError(c, nil)

		assert.Empty(t, w.Body.String())
		assert.Empty(t, c.Errors)
	})
}
