// Package freight holds the rate search use case that sits between the HTTP
// API and the provider adapters.
package freight

import (
	"context"
	"errors"
	"time"

	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/erp/seafreight/internal/domain/freight"
	"github.com/erp/seafreight/internal/infrastructure/logger"
	"github.com/erp/seafreight/internal/infrastructure/telemetry"
)

// RateSearchService runs rate searches against one provider.
type RateSearchService struct {
	provider freight.RateProvider
	enabled  bool
	metrics  *telemetry.RateSearchMetrics
	logger   *zap.Logger
}

// Option configures a RateSearchService.
type Option func(*RateSearchService)

// WithMetrics records every search on m.
func WithMetrics(m *telemetry.RateSearchMetrics) Option {
	return func(s *RateSearchService) { s.metrics = m }
}

// WithLogger sets the fallback logger used when the request context has none.
func WithLogger(l *zap.Logger) Option {
	return func(s *RateSearchService) { s.logger = l }
}

// WithEnabled switches the integration on or off. Searches on a disabled
// service fail with freight.ErrProviderDisabled without calling the provider.
func WithEnabled(enabled bool) Option {
	return func(s *RateSearchService) { s.enabled = enabled }
}

// NewRateSearchService creates a new RateSearchService. A nil provider
// leaves the service disabled.
func NewRateSearchService(provider freight.RateProvider, opts ...Option) *RateSearchService {
	s := &RateSearchService{
		provider: provider,
		enabled:  true,
		logger:   zap.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Enabled reports whether searches reach the provider.
func (s *RateSearchService) Enabled() bool {
	return s.enabled && s.provider != nil
}

// ProviderName returns the configured provider code, or "" when none is set.
func (s *RateSearchService) ProviderName() string {
	if s.provider == nil {
		return ""
	}
	return s.provider.Name()
}

// Search validates q and returns the provider's canonical rates.
func (s *RateSearchService) Search(ctx context.Context, q freight.Query) ([]freight.Rate, error) {
	if err := q.Validate(); err != nil {
		return nil, err
	}
	if !s.Enabled() {
		return nil, freight.ErrProviderDisabled
	}

	name := s.provider.Name()
	ctx, span := telemetry.StartServiceSpan(ctx, "rate_search", "search",
		telemetry.WithSpanKind(trace.SpanKindInternal),
		telemetry.WithAttribute(telemetry.SpanAttrProvider, name),
		telemetry.WithAttribute(telemetry.SpanAttrOrigin, q.SourcePort.PlaceID()),
		telemetry.WithAttribute(telemetry.SpanAttrDestination, q.DestinationPort.PlaceID()),
		telemetry.WithAttribute(telemetry.SpanAttrProductTypes, productTypes(q.Products)),
		telemetry.WithAttribute(telemetry.SpanAttrDepartureDate, q.DepartureDate()),
	)
	defer span.End()

	log := s.contextLogger(ctx).With(
		zap.String("provider", name),
		zap.String("origin", q.SourcePort.PlaceID()),
		zap.String("destination", q.DestinationPort.PlaceID()),
	)

	start := time.Now()
	rates, err := s.provider.Search(ctx, q)
	elapsed := time.Since(start)

	outcome := Outcome(err)
	s.metrics.RecordSearch(ctx, name, outcome, elapsed, len(rates))

	if err != nil {
		telemetry.RecordError(span, err)
		log.Warn("Rate search failed",
			zap.String("outcome", outcome),
			zap.Duration("elapsed", elapsed),
			zap.Error(err),
		)
		return nil, err
	}

	telemetry.SetAttributes(span, telemetry.SpanAttrRateCount, len(rates))
	telemetry.SetOK(span)
	log.Info("Rate search completed",
		zap.Int("rates", len(rates)),
		zap.Duration("elapsed", elapsed),
	)
	return rates, nil
}

// contextLogger prefers the request-scoped logger; FromContext yields a
// no-op logger, which has every level disabled, when none was stored.
func (s *RateSearchService) contextLogger(ctx context.Context) *logger.ContextLogger {
	if l := logger.FromContext(ctx); l.Core().Enabled(zap.FatalLevel) {
		return logger.WithLogger(ctx, l)
	}
	return logger.WithLogger(ctx, s.logger)
}

// Outcome classifies a provider error into a metrics outcome label.
func Outcome(err error) string {
	switch {
	case err == nil:
		return telemetry.OutcomeOK
	case errors.Is(err, freight.ErrRateLimited):
		return telemetry.OutcomeRateLimited
	case errors.Is(err, freight.ErrInvalidCredentials):
		return telemetry.OutcomeInvalidCredentials
	default:
		return telemetry.OutcomeError
	}
}

func productTypes(products []freight.Product) []string {
	types := make([]string, len(products))
	for i, p := range products {
		types[i] = p.Type.String()
	}
	return types
}
