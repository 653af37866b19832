package cargofive

import (
	"bytes"
	"encoding/json"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

// ---------------------------------------------------------------------------
// Rates Search Response Types
// ---------------------------------------------------------------------------

// ratesResponse is the envelope of GET /v1/public/rates. Rates are kept raw
// so a malformed path can degrade to an empty list.
type ratesResponse struct {
	Offers json.RawMessage `json:"offers"`
}

type ratesOffers struct {
	Rates json.RawMessage `json:"rates"`
}

// ProviderRate is one rate record as returned by CargoFive
type ProviderRate struct {
	ProductOffer ProductOffer `json:"product_offer"`
	ProductPrice ProductPrice `json:"product_price"`
	Schedules    []Schedule   `json:"schedules,omitempty"`

	// Raw is the record exactly as received.
	Raw json.RawMessage `json:"-"`
}

// ProductOffer describes the carrier, route and status of a rate
type ProductOffer struct {
	RateUUID                   FlexString   `json:"rate_uuid"`
	RateStatus                 string       `json:"rate_status"`
	MainProductName            string       `json:"main_product_name"`
	OriginPortUnlocode         string       `json:"origin_port_unlocode"`
	OriginPortDisplayName      string       `json:"origin_port_display_name"`
	DestinationPortUnlocode    string       `json:"destination_port_unlocode"`
	DestinationPortDisplayName string       `json:"destination_port_display_name"`
	MainCarrierName            string       `json:"main_carrier_name"`
	MainCarrierCode            FlexString   `json:"main_carrier_code"`
	MainCarrierSCAC            string       `json:"main_carrier_scac"`
	MainCarrierLogo            string       `json:"main_carrier_logo"`
	ViaPort                    []string     `json:"via_port,omitempty"`
	RateDetails                *RateDetails `json:"rate_details,omitempty"`
}

// RateDetails carries free-form provider metadata
type RateDetails struct {
	AdditionalData map[string]json.RawMessage `json:"additional_data,omitempty"`
}

// ProductPrice holds the validity window and the three charge groups
type ProductPrice struct {
	ValidFrom   string       `json:"valid_from"`
	ValidTo     string       `json:"valid_to"`
	Freight     *ChargeGroup `json:"freight,omitempty"`
	Origin      *ChargeGroup `json:"origin,omitempty"`
	Destination *ChargeGroup `json:"destination,omitempty"`
}

// ChargeGroup is the list of charges for one section
type ChargeGroup struct {
	Charges []Charge `json:"charges"`
}

// Charge is one priced line item
type Charge struct {
	ChargeName        string   `json:"charge_name"`
	RateBasis         string   `json:"rate_basis,omitempty"`
	Basis             string   `json:"basis,omitempty"`
	UnitPriceCurrency string   `json:"unit_price_currency"`
	Tariffs           []Tariff `json:"tariffs"`
}

// BasisText returns rate_basis, falling back to basis
func (c Charge) BasisText() string {
	if c.RateBasis != "" {
		return c.RateBasis
	}
	return c.Basis
}

// Tariff is the unit price for one container code
type Tariff struct {
	ContainerISO string      `json:"container_iso"`
	UnitPrice    FlexDecimal `json:"unit_price"`
}

// Schedule is one sailing of a rate
type Schedule struct {
	TransitTime   *FlexInt `json:"transit_time,omitempty"`
	DepartureDate string   `json:"departure_date,omitempty"`
	ArrivalDate   string   `json:"arrival_date,omitempty"`
}

// charges returns the charges of a group, tolerating a missing group
func (g *ChargeGroup) charges() []Charge {
	if g == nil {
		return nil
	}
	return g.Charges
}

// ---------------------------------------------------------------------------
// Lenient scalar types
// ---------------------------------------------------------------------------

// FlexDecimal accepts a JSON number, a numeric string or null.
// Anything unparseable decodes to zero.
type FlexDecimal struct {
	decimal.Decimal
}

// UnmarshalJSON implements json.Unmarshaler
func (d *FlexDecimal) UnmarshalJSON(data []byte) error {
	d.Decimal = ParseDecimal(strings.Trim(string(data), `"`))
	return nil
}

// MarshalJSON implements json.Marshaler
func (d FlexDecimal) MarshalJSON() ([]byte, error) {
	return []byte(d.Decimal.String()), nil
}

// FlexInt accepts a JSON number or a string starting with digits ("25 days").
type FlexInt int

// UnmarshalJSON implements json.Unmarshaler
func (i *FlexInt) UnmarshalJSON(data []byte) error {
	s := strings.TrimSpace(strings.Trim(string(data), `"`))
	end := 0
	for end < len(s) && s[end] >= '0' && s[end] <= '9' {
		end++
	}
	n, err := strconv.Atoi(s[:end])
	if err != nil {
		// Non-numeric durations are treated as zero.
		*i = 0
		return nil
	}
	*i = FlexInt(n)
	return nil
}

// FlexString accepts a JSON string or number.
type FlexString string

// UnmarshalJSON implements json.Unmarshaler
func (s *FlexString) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*s = ""
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var v string
		if err := json.Unmarshal(data, &v); err != nil {
			return err
		}
		*s = FlexString(v)
		return nil
	}
	*s = FlexString(data)
	return nil
}

// String returns the string value
func (s FlexString) String() string {
	return string(s)
}

// ParseDecimal safely parses a string to decimal
func ParseDecimal(s string) decimal.Decimal {
	if s == "" || s == "null" {
		return decimal.Zero
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero
	}
	return d
}
