package cargofive

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/erp/seafreight/internal/domain/freight"
)

// sampleRateJSON is one rate with a per-unit charge in every section
const sampleRateJSON = `{
	"product_offer": {
		"rate_uuid": "9b1f0c2e",
		"rate_status": "Valid",
		"main_product_name": "MSC Spot Rates",
		"origin_port_unlocode": "ESVLC",
		"origin_port_display_name": "Valencia, Spain",
		"destination_port_unlocode": "CNSHA",
		"destination_port_display_name": "Shanghai, China",
		"main_carrier_name": "MSC",
		"main_carrier_code": "MSCU",
		"main_carrier_scac": "MSCU",
		"main_carrier_logo": "https://cdn.example.com/msc.png",
		"via_port": ["MAPTM", "SGSIN"],
		"rate_details": {
			"additional_data": {
				"free_time_days": 14,
				"commodity": "FAK"
			}
		}
	},
	"product_price": {
		"valid_from": "2025-03-01",
		"valid_to": "2025-03-31",
		"freight": {"charges": [
			{"charge_name": "Ocean Freight", "rate_basis": "PER CONTAINER", "unit_price_currency": "USD",
			 "tariffs": [{"container_iso": "40HC", "unit_price": 2100}, {"container_iso": "20DV", "unit_price": 1250}]}
		]},
		"origin": {"charges": [
			{"charge_name": "THC Origin", "basis": "PER CONTAINER", "unit_price_currency": "EUR",
			 "tariffs": [{"container_iso": "20DV", "unit_price": "180.50"}]}
		]},
		"destination": {"charges": [
			{"charge_name": "THC Destination", "rate_basis": "PER CONTAINER", "unit_price_currency": "CNY",
			 "tariffs": [{"container_iso": "20DV", "unit_price": 900}]}
		]}
	},
	"schedules": [
		{"transit_time": 28, "departure_date": "2025-03-18T10:00:00Z", "arrival_date": "2025-04-15T06:00:00Z"}
	]
}`

func ratesBody(rates ...string) string {
	body := `{"offers":{"rates":[`
	for i, r := range rates {
		if i > 0 {
			body += ","
		}
		body += r
	}
	return body + `]}}`
}

func sampleQuery() freight.Query {
	return freight.Query{
		SourcePort:      freight.Port{ID: "ESVLC", Text: "Valencia", ExternalIDs: &freight.ExternalIDs{ProviderID: "296"}},
		DestinationPort: freight.Port{ID: "CNSHA", Text: "Shanghai", ExternalIDs: &freight.ExternalIDs{ProviderID: "580"}},
		Products:        []freight.Product{{Type: freight.ContainerType20Dry, Quantity: 1}},
		DateBegin:       time.Date(2025, 3, 14, 0, 0, 0, 0, time.UTC).UnixMilli(),
		DateEnd:         time.Date(2025, 4, 14, 0, 0, 0, 0, time.UTC).UnixMilli(),
	}
}

// fixedClock is 2025-02-10T12:00:00Z
func fixedClock() time.Time {
	return time.Date(2025, 2, 10, 12, 0, 0, 0, time.UTC)
}

// sequentialIDs returns "id-1", "id-2", ...
func sequentialIDs() IDGenerator {
	n := 0
	return func() string {
		n++
		return fmt.Sprintf("id-%d", n)
	}
}

func testNormalizer() *Normalizer {
	return NewNormalizer(WithIDGenerator(sequentialIDs()), WithClock(fixedClock))
}

func createMockCargofiveServer(_ *testing.T, handler http.HandlerFunc) *httptest.Server {
	return httptest.NewServer(handler)
}

func createTestGateway(t *testing.T, serverURL string) *Gateway {
	t.Helper()
	config := NewConfig("test-api-key")
	config.BaseURL = serverURL
	g, err := NewGateway(config)
	if err != nil {
		t.Fatalf("failed to create gateway: %v", err)
	}
	return g
}
