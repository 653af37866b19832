package cargofive

import (
	"context"

	"github.com/erp/seafreight/internal/domain/freight"
)

// ProviderName is the provider code used in logs, metrics and rate ids
const ProviderName = "cargofive"

// Provider implements freight.RateProvider on top of the CargoFive gateway
type Provider struct {
	gateway    *Gateway
	normalizer *Normalizer
}

// NewProvider composes a gateway and a normalizer
func NewProvider(gateway *Gateway, normalizer *Normalizer) *Provider {
	if normalizer == nil {
		normalizer = NewNormalizer()
	}
	return &Provider{
		gateway:    gateway,
		normalizer: normalizer,
	}
}

// Name returns the provider code
func (p *Provider) Name() string {
	return ProviderName
}

// Search fetches provider rates and normalizes them
func (p *Provider) Search(ctx context.Context, q freight.Query) ([]freight.Rate, error) {
	rates, err := p.gateway.Search(ctx, q)
	if err != nil {
		return nil, err
	}
	return p.normalizer.Normalize(rates, q), nil
}

// Ensure Provider implements freight.RateProvider
var _ freight.RateProvider = (*Provider)(nil)
