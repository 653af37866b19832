package cargofive

import (
	"context"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/erp/seafreight/internal/domain/freight"
)

func TestProvider_Search(t *testing.T) {
	server := createMockCargofiveServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(ratesBody(sampleRateJSON)))
	})
	defer server.Close()

	provider := NewProvider(createTestGateway(t, server.URL), testNormalizer())
	assert.Equal(t, "cargofive", provider.Name())

	q := sampleQuery()
	q.Products = append(q.Products, freight.Product{Type: freight.ContainerType40Dry, Quantity: 1})

	rates, err := provider.Search(context.Background(), q)
	require.NoError(t, err)
	require.Len(t, rates, 2)

	types := []freight.ContainerType{rates[0].Product.Type, rates[1].Product.Type}
	assert.Contains(t, types, freight.ContainerType20Dry)
	assert.Contains(t, types, freight.ContainerType40Dry)

	for _, rate := range rates {
		assert.Equal(t, q.SourcePort.ID, rate.Source.ID)
		assert.Equal(t, q.DestinationPort.ID, rate.Destination.ID)
		assert.NotEmpty(t, rate.Supplier.Organization)
		assert.Len(t, rate.Offer.Sections, 3)
	}
}

func TestProvider_Search_UnknownProductTypes(t *testing.T) {
	server := createMockCargofiveServer(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(ratesBody(sampleRateJSON)))
	})
	defer server.Close()

	q := sampleQuery()
	q.Products = []freight.Product{
		{Type: "40' High Cube", Quantity: 1},
		{Type: "40' Refrigerated", Quantity: 1},
	}

	rates, err := NewProvider(createTestGateway(t, server.URL), nil).Search(context.Background(), q)
	require.NoError(t, err)
	require.Len(t, rates, 2)
	for _, rate := range rates {
		assert.Contains(t, []freight.ContainerType{"40' High Cube", "40' Refrigerated"}, rate.Product.Type)
	}
}

func TestProvider_Search_EmptyResult(t *testing.T) {
	server := createMockCargofiveServer(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(ratesBody()))
	})
	defer server.Close()

	rates, err := NewProvider(createTestGateway(t, server.URL), testNormalizer()).Search(context.Background(), sampleQuery())
	require.NoError(t, err)
	assert.NotNil(t, rates)
	assert.Empty(t, rates)
}

func TestProvider_Search_PropagatesErrors(t *testing.T) {
	server := createMockCargofiveServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	})
	defer server.Close()

	rates, err := NewProvider(createTestGateway(t, server.URL), testNormalizer()).Search(context.Background(), sampleQuery())
	assert.Nil(t, rates)
	assert.ErrorIs(t, err, freight.ErrRateLimited)
}
