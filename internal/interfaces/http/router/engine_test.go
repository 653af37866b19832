package router

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	freightapp "github.com/erp/seafreight/internal/application/freight"
	"github.com/erp/seafreight/internal/domain/freight"
	"github.com/erp/seafreight/internal/infrastructure/auth"
	"github.com/erp/seafreight/internal/infrastructure/config"
	"github.com/erp/seafreight/internal/interfaces/http/dto"
	"github.com/erp/seafreight/internal/interfaces/http/middleware"
)

type stubProvider struct {
	rates []freight.Rate
	err   error
	calls int
}

func (p *stubProvider) Name() string { return "cargofive" }

func (p *stubProvider) Search(_ context.Context, q freight.Query) ([]freight.Rate, error) {
	p.calls++
	if p.err != nil {
		return nil, p.err
	}
	out := make([]freight.Rate, len(p.rates))
	for i, r := range p.rates {
		r.Source, r.Destination = q.SourcePort, q.DestinationPort
		out[i] = r
	}
	return out, nil
}

const engineSearchBody = `{
	"sourcePort": {"id": "ESVLC", "text": "Valencia"},
	"destinationPort": {"id": "CNSHA", "text": "Shanghai"},
	"products": [{"type": "20' Dry", "quantity": 1}],
	"dateBegin": 1741910400000
}`

func testConfig() *config.Config {
	return &config.Config{
		App: config.AppConfig{Name: "seafreight", Env: "development"},
		HTTP: config.HTTPConfig{
			MaxBodySize:      1 << 20,
			CORSAllowOrigins: []string{"https://booking.example.com"},
		},
		Telemetry: config.TelemetryConfig{ServiceName: "seafreight"},
	}
}

func newTestEngine(t *testing.T, provider *stubProvider, mutate func(*Dependencies)) *gin.Engine {
	t.Helper()
	deps := Dependencies{
		Config:  testConfig(),
		Logger:  zap.NewNop(),
		Version: "test",
		Rates:   freightapp.NewRateSearchService(provider),
	}
	if mutate != nil {
		mutate(&deps)
	}
	return NewEngine(deps)
}

func do(engine http.Handler, method, path, body string, header map[string]string) *httptest.ResponseRecorder {
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	for k, v := range header {
		req.Header.Set(k, v)
	}
	w := httptest.NewRecorder()
	engine.ServeHTTP(w, req)
	return w
}

func TestEngine_SearchEndToEnd(t *testing.T) {
	provider := &stubProvider{rates: []freight.Rate{{ID: "cargofive-1"}, {ID: "cargofive-2"}}}
	engine := newTestEngine(t, provider, nil)

	w := do(engine, http.MethodPost, "/api/v1/rates/search", engineSearchBody, nil)

	require.Equal(t, http.StatusOK, w.Code)
	assert.NotEmpty(t, w.Header().Get(middleware.RequestIDHeader))
	assert.Equal(t, "nosniff", w.Header().Get("X-Content-Type-Options"))

	var resp dto.Response
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.True(t, resp.Success)
	require.NotNil(t, resp.Meta)
	assert.Equal(t, 2, resp.Meta.Count)
	assert.Equal(t, "cargofive", resp.Meta.Provider)
	assert.Equal(t, 1, provider.calls)
}

func TestEngine_ProviderFailures(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantCode   string
	}{
		{"throttled", freight.ErrRateLimited, http.StatusTooManyRequests, dto.ErrCodeRateLimited},
		{"bad key", freight.ErrInvalidCredentials, http.StatusBadGateway, dto.ErrCodeProviderAuthFailed},
		{"timeout", context.DeadlineExceeded, http.StatusGatewayTimeout, dto.ErrCodeProviderTimeout},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			engine := newTestEngine(t, &stubProvider{err: tt.err}, nil)
			w := do(engine, http.MethodPost, "/api/v1/rates/search", engineSearchBody, nil)

			assert.Equal(t, tt.wantStatus, w.Code)
			assert.Contains(t, w.Body.String(), tt.wantCode)
		})
	}
}

func TestEngine_InvalidQueryNeverReachesProvider(t *testing.T) {
	provider := &stubProvider{}
	engine := newTestEngine(t, provider, nil)

	body := `{"sourcePort":{"id":""},"destinationPort":{"id":"CNSHA"},"products":[{"type":"20' Dry","quantity":1}],"dateBegin":1}`
	w := do(engine, http.MethodPost, "/api/v1/rates/search", body, nil)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), dto.ErrCodeValidation)
	assert.Contains(t, w.Body.String(), "source port is required")
	assert.Zero(t, provider.calls)
}

func TestEngine_DisabledProvider(t *testing.T) {
	engine := newTestEngine(t, &stubProvider{}, func(d *Dependencies) {
		d.Rates = freightapp.NewRateSearchService(nil)
	})

	w := do(engine, http.MethodPost, "/api/v1/rates/search", engineSearchBody, nil)
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.Contains(t, w.Body.String(), dto.ErrCodeProviderDisabled)

	w = do(engine, http.MethodGet, "/health", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"status":"degraded"`)
}

func TestEngine_Health(t *testing.T) {
	engine := newTestEngine(t, &stubProvider{}, nil)

	w := do(engine, http.MethodGet, "/health", "", nil)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"ok","provider":"cargofive","provider_enabled":true}`, w.Body.String())
}

func TestEngine_NotFound(t *testing.T) {
	engine := newTestEngine(t, &stubProvider{}, nil)

	w := do(engine, http.MethodGet, "/api/v1/quotes", "", nil)

	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Contains(t, w.Body.String(), dto.ErrCodeNotFound)
}

func TestEngine_BodyLimit(t *testing.T) {
	engine := newTestEngine(t, &stubProvider{}, func(d *Dependencies) {
		d.Config.HTTP.MaxBodySize = 16
	})

	w := do(engine, http.MethodPost, "/api/v1/rates/search", engineSearchBody, nil)

	assert.Equal(t, http.StatusRequestEntityTooLarge, w.Code)
	assert.Contains(t, w.Body.String(), dto.ErrCodeBodyTooLarge)
}

func TestEngine_CORSPreflight(t *testing.T) {
	engine := newTestEngine(t, &stubProvider{}, nil)

	w := do(engine, http.MethodOptions, "/api/v1/rates/search", "", map[string]string{
		"Origin": "https://booking.example.com",
	})

	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "https://booking.example.com", w.Header().Get("Access-Control-Allow-Origin"))
}

func TestEngine_JWT(t *testing.T) {
	jwtService := auth.NewJWTService(config.JWTConfig{
		Enabled: true,
		Secret:  "test-secret-key-at-least-32-chars",
		Issuer:  "seafreight",
	})
	engine := newTestEngine(t, &stubProvider{}, func(d *Dependencies) {
		d.JWTService = jwtService
		d.TokenBlacklist = auth.NewInMemoryTokenBlacklist()
	})

	t.Run("rates require a token", func(t *testing.T) {
		w := do(engine, http.MethodPost, "/api/v1/rates/search", engineSearchBody, nil)
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("token with rates scope is accepted", func(t *testing.T) {
		token, _, err := jwtService.IssueToken("svc-booking", []string{auth.ScopeRatesRead}, time.Hour)
		require.NoError(t, err)

		w := do(engine, http.MethodPost, "/api/v1/rates/search", engineSearchBody, map[string]string{
			"Authorization": "Bearer " + token,
		})
		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("health stays public", func(t *testing.T) {
		w := do(engine, http.MethodGet, "/health", "", nil)
		assert.Equal(t, http.StatusOK, w.Code)
	})
}

func TestEngine_RateLimit(t *testing.T) {
	limiter := middleware.NewRateLimiter(1, time.Minute)
	t.Cleanup(limiter.Stop)

	engine := newTestEngine(t, &stubProvider{}, func(d *Dependencies) {
		d.RateLimiter = limiter
	})

	w := do(engine, http.MethodPost, "/api/v1/rates/search", engineSearchBody, nil)
	assert.Equal(t, http.StatusOK, w.Code)

	w = do(engine, http.MethodPost, "/api/v1/rates/search", engineSearchBody, nil)
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.NotEmpty(t, w.Header().Get("Retry-After"))

	// system routes are not limited
	w = do(engine, http.MethodGet, "/api/v1/system/info", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestEngine_Metrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	engine := newTestEngine(t, &stubProvider{}, func(d *Dependencies) {
		d.HTTPMetrics = middleware.NewHTTPMetrics(reg)
		d.Gatherer = reg
	})

	w := do(engine, http.MethodPost, "/api/v1/rates/search", engineSearchBody, nil)
	require.Equal(t, http.StatusOK, w.Code)

	w = do(engine, http.MethodGet, "/metrics", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `http_requests_total{method="POST",route="/api/v1/rates/search",status="200"} 1`)
}
