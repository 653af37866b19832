package cargofive

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/erp/seafreight/internal/domain/freight"
	"github.com/erp/seafreight/internal/infrastructure/telemetry"
)

// maxResponseSize is the maximum allowed response size from CargoFive API (20MB)
const maxResponseSize = 20 * 1024 * 1024

// cargoWeightKg is the fixed per-container weight sent in cargo_details
const cargoWeightKg = "15000"

// maxErrorBodyLen bounds how much of an error body ends up in an error message
const maxErrorBodyLen = 256

// Gateway issues rate searches against the CargoFive public API
type Gateway struct {
	config     *Config
	httpClient *http.Client
	logger     *zap.Logger
}

// GatewayOption configures a Gateway
type GatewayOption func(*Gateway)

// WithHTTPClient replaces the default HTTP client
func WithHTTPClient(c *http.Client) GatewayOption {
	return func(g *Gateway) {
		if c != nil {
			g.httpClient = c
		}
	}
}

// WithLogger sets the gateway logger
func WithLogger(l *zap.Logger) GatewayOption {
	return func(g *Gateway) {
		if l != nil {
			g.logger = l
		}
	}
}

// NewGateway creates a new CargoFive gateway. It fails before any network
// activity when the configuration is incomplete.
func NewGateway(config *Config, opts ...GatewayOption) (*Gateway, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	g := &Gateway{
		config: config,
		httpClient: &http.Client{
			Timeout: time.Duration(config.TimeoutSeconds) * time.Second,
		},
		logger: zap.NewNop(),
	}
	for _, opt := range opts {
		opt(g)
	}
	g.logger = g.logger.With(zap.String("provider", ProviderName))
	return g, nil
}

// Search runs one rate search and returns the raw provider rates.
// No retries are attempted; callers own the backoff policy.
func (g *Gateway) Search(ctx context.Context, q freight.Query) ([]ProviderRate, error) {
	sourcePlaceID := q.SourcePort.PlaceID()
	destPlaceID := q.DestinationPort.PlaceID()

	g.trace("Searching rates",
		zap.String("origin", sourcePlaceID),
		zap.String("destination", destPlaceID),
		zap.Int64("date_begin", q.DateBegin),
		zap.Int64("date_end", q.DateEnd),
	)

	endpoint := g.config.ratesURL() + "?" + SearchParams(q).Encode()
	g.trace("Rates request", zap.String("url", endpoint))

	body, err := g.doRequest(ctx, endpoint)
	if err != nil {
		return nil, err
	}

	rates := g.decodeRates(body)
	g.trace("Rates response",
		zap.Int("bytes", len(body)),
		zap.Int("rates", len(rates)),
	)
	return rates, nil
}

// SearchParams builds the query string of a rates search
func SearchParams(q freight.Query) url.Values {
	params := url.Values{}
	params.Set("providers", "-1")
	params.Set("api_providers", "-1")
	params.Set("origins", q.SourcePort.PlaceID())
	params.Set("destinations", q.DestinationPort.PlaceID())
	params.Set("type", "FCL")
	params.Set("include_destination_charges", "true")
	params.Set("include_origin_charges", "true")
	params.Set("include_imo_charges", "false")
	params.Set("cargo_details", CargoDetails(q.Products))
	params.Set("departure_date", q.DepartureDate())
	return params
}

// CargoDetails renders products as "<qty>x<ISO>x15000" joined by commas
func CargoDetails(products []freight.Product) string {
	parts := make([]string, 0, len(products))
	for _, p := range products {
		parts = append(parts, strconv.Itoa(p.Quantity)+"x"+p.Type.ISOCode()+"x"+cargoWeightKg)
	}
	return strings.Join(parts, ",")
}

// ---------------------------------------------------------------------------
// HTTP Helpers
// ---------------------------------------------------------------------------

// doRequest performs a GET request inside a client span and classifies the
// HTTP outcome
func (g *Gateway) doRequest(ctx context.Context, endpoint string) (body []byte, err error) {
	ctx, span := telemetry.StartSpan(ctx, "cargofive.rates",
		telemetry.WithSpanKind(trace.SpanKindClient),
		telemetry.WithAttribute("http.request.method", http.MethodGet),
		telemetry.WithAttribute("server.address", g.config.host()),
	)
	defer func() {
		if err != nil {
			telemetry.RecordError(span, err)
		}
		span.End()
	}()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("cargofive: failed to create request: %w", err)
	}
	req.Header.Set("x-api-key", g.config.APIKey)
	req.Header.Set("Accept", "application/json")
	otel.GetTextMapPropagator().Inject(ctx, propagation.HeaderCarrier(req.Header))

	resp, err := g.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("cargofive: request failed: %w", err)
	}
	defer resp.Body.Close()
	telemetry.SetAttributes(span, "http.response.status_code", resp.StatusCode)

	switch resp.StatusCode {
	case http.StatusTooManyRequests:
		return nil, freight.ErrRateLimited
	case http.StatusUnauthorized, http.StatusForbidden:
		return nil, freight.ErrInvalidCredentials
	}

	body, err = io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if resp.StatusCode >= 300 {
		return nil, fmt.Errorf("%w: HTTP %d: %s", freight.ErrProviderRequestFailed, resp.StatusCode, truncate(string(body), maxErrorBodyLen))
	}
	if err != nil {
		return nil, fmt.Errorf("%w: failed to read response: %w", freight.ErrProviderRequestFailed, err)
	}

	return body, nil
}

// decodeRates extracts offers.rates. An absent or malformed path yields an
// empty list; individual records that fail to decode are skipped.
func (g *Gateway) decodeRates(body []byte) []ProviderRate {
	rates := []ProviderRate{}

	var envelope ratesResponse
	if err := json.Unmarshal(body, &envelope); err != nil || len(envelope.Offers) == 0 {
		return rates
	}
	var offers ratesOffers
	if err := json.Unmarshal(envelope.Offers, &offers); err != nil || len(offers.Rates) == 0 {
		return rates
	}
	var raw []json.RawMessage
	if err := json.Unmarshal(offers.Rates, &raw); err != nil {
		return rates
	}

	for i, item := range raw {
		var rate ProviderRate
		if err := json.Unmarshal(item, &rate); err != nil {
			g.logger.Warn("Skipping malformed rate record", zap.Int("index", i), zap.Error(err))
			continue
		}
		rate.Raw = item
		rates = append(rates, rate)
	}
	return rates
}

// trace logs at info level in verbose mode and at debug level otherwise
func (g *Gateway) trace(msg string, fields ...zap.Field) {
	if g.config.Verbose {
		g.logger.Info(msg, fields...)
		return
	}
	g.logger.Debug(msg, fields...)
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
