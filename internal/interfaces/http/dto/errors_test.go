package dto

import (
	"encoding/json"
	"net/http"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetHTTPStatus(t *testing.T) {
	tests := []struct {
		code     string
		expected int
	}{
		{ErrCodeInternal, http.StatusInternalServerError},
		{ErrCodeValidation, http.StatusBadRequest},
		{ErrCodeInvalidJSON, http.StatusBadRequest},
		{ErrCodeBodyTooLarge, http.StatusRequestEntityTooLarge},
		{ErrCodeUnauthorized, http.StatusUnauthorized},
		{ErrCodeTokenRevoked, http.StatusUnauthorized},
		{ErrCodeForbidden, http.StatusForbidden},
		{ErrCodeRateLimited, http.StatusTooManyRequests},
		{ErrCodeProviderAuthFailed, http.StatusBadGateway},
		{ErrCodeProviderError, http.StatusBadGateway},
		{ErrCodeProviderTimeout, http.StatusGatewayTimeout},
		{ErrCodeProviderDisabled, http.StatusServiceUnavailable},
		{"UNKNOWN_CODE", http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.code, func(t *testing.T) {
			assert.Equal(t, tt.expected, GetHTTPStatus(tt.code))
		})
	}
}

func TestNormalizeErrorCode(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"INVALID_QUERY", ErrCodeValidation},
		{"VALIDATION_ERROR", ErrCodeValidation},
		{"UNAUTHORIZED", ErrCodeUnauthorized},
		{ErrCodeProviderError, ErrCodeProviderError},
		{"CUSTOM_ERROR", "CUSTOM_ERROR"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.expected, NormalizeErrorCode(tt.input))
		})
	}
}

func TestErrorCodeFormat(t *testing.T) {
	for code := range ErrorCodeHTTPStatus {
		assert.True(t, strings.HasPrefix(code, "ERR_"), "error code %s should start with ERR_", code)
	}
}

func TestNewErrorResponse(t *testing.T) {
	resp := NewErrorResponse("INVALID_QUERY", "source port is required")

	assert.False(t, resp.Success)
	assert.Nil(t, resp.Data)
	require.NotNil(t, resp.Error)
	assert.Equal(t, ErrCodeValidation, resp.Error.Code)
	assert.Equal(t, "source port is required", resp.Error.Message)
	assert.NotZero(t, resp.Error.Timestamp)
}

func TestNewValidationErrorResponse(t *testing.T) {
	details := []ValidationDetail{{Field: "products", Message: "This field is required"}}

	resp := NewValidationErrorResponse("Request validation failed", "req-789", details)

	require.NotNil(t, resp.Error)
	assert.Equal(t, ErrCodeValidation, resp.Error.Code)
	assert.Equal(t, "req-789", resp.Error.RequestID)
	assert.Equal(t, details, resp.Error.Details)
}

func TestResponseJSON(t *testing.T) {
	data, err := json.Marshal(NewSuccessResponseWithMeta([]string{"a"}, 1, "cargofive"))
	require.NoError(t, err)
	assert.JSONEq(t, `{"success":true,"data":["a"],"meta":{"count":1,"provider":"cargofive"}}`, string(data))

	data, err = json.Marshal(NewErrorResponseWithRequestID(ErrCodeRateLimited, "slow down", "req-1"))
	require.NoError(t, err)

	var decoded Response
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.False(t, decoded.Success)
	require.NotNil(t, decoded.Error)
	assert.Equal(t, ErrCodeRateLimited, decoded.Error.Code)
	assert.Equal(t, "req-1", decoded.Error.RequestID)
	assert.NotContains(t, string(data), `"data"`)
}
