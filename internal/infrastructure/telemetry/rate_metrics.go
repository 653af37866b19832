package telemetry

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// Search outcomes recorded by RateSearchMetrics.
const (
	OutcomeOK                 = "ok"
	OutcomeRateLimited        = "rate_limited"
	OutcomeInvalidCredentials = "invalid_credentials"
	OutcomeError              = "error"
)

// RateSearchMetrics tracks outbound rate searches per provider.
type RateSearchMetrics struct {
	searchesTotal  *Counter
	ratesTotal     *Counter
	searchDuration *Histogram
}

// NewRateSearchMetrics registers the rate search instruments on meter.
func NewRateSearchMetrics(meter metric.Meter) (*RateSearchMetrics, error) {
	if meter == nil {
		return nil, ErrMeterNil
	}

	searches, err := NewCounter(meter,
		"seafreight_rate_searches_total",
		"Total number of provider rate searches by outcome",
		"{searches}",
	)
	if err != nil {
		return nil, err
	}

	rates, err := NewCounter(meter,
		"seafreight_rates_normalized_total",
		"Total number of canonical rates produced",
		"{rates}",
	)
	if err != nil {
		return nil, err
	}

	duration, err := NewHistogram(meter,
		"seafreight_rate_search_duration_seconds",
		"Provider rate search latency",
		"s",
		ProviderDurationBuckets...,
	)
	if err != nil {
		return nil, err
	}

	return &RateSearchMetrics{
		searchesTotal:  searches,
		ratesTotal:     rates,
		searchDuration: duration,
	}, nil
}

// RecordSearch records one finished search.
func (m *RateSearchMetrics) RecordSearch(ctx context.Context, provider, outcome string, elapsed time.Duration, rates int) {
	if m == nil {
		return
	}
	attrs := []attribute.KeyValue{AttrProvider.String(provider), AttrOutcome.String(outcome)}
	m.searchesTotal.Inc(ctx, attrs...)
	m.searchDuration.RecordDuration(ctx, elapsed, attrs...)
	if rates > 0 {
		m.ratesTotal.Add(ctx, int64(rates), AttrProvider.String(provider))
	}
}
