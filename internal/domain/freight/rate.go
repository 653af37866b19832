package freight

import (
	"encoding/json"

	"github.com/erp/seafreight/internal/domain/shared/valueobject"
)

// ---------------------------------------------------------------------------
// Enumerations
// ---------------------------------------------------------------------------

// RateType distinguishes spot from contract rates
type RateType string

const (
	RateTypeSpot     RateType = "spot"
	RateTypeContract RateType = "contract"
)

// TransportationMethod is how the cargo moves
type TransportationMethod string

const (
	TransportationMethodSea TransportationMethod = "sea"
)

// SectionTitle names one of the three charge sections
type SectionTitle string

const (
	SectionFreight     SectionTitle = "Freight"
	SectionOrigin      SectionTitle = "Origin"
	SectionDestination SectionTitle = "Destination"
)

// SectionTitles returns the section titles in canonical order.
func SectionTitles() []SectionTitle {
	return []SectionTitle{SectionFreight, SectionOrigin, SectionDestination}
}

// FieldType tags how a field's values are keyed
type FieldType string

const (
	// FieldTypeFlat fields hold one value keyed by FlatValueKey.
	FieldTypeFlat FieldType = "flat"
	// FieldTypePerUnitType fields hold one value per product id.
	FieldTypePerUnitType FieldType = "per-unit-type"
	FieldTypePerUnit     FieldType = "per-unit"
	FieldTypeCustom      FieldType = "custom"
)

// IsValid returns true if the field type is known
func (t FieldType) IsValid() bool {
	switch t {
	case FieldTypeFlat, FieldTypePerUnitType, FieldTypePerUnit, FieldTypeCustom:
		return true
	default:
		return false
	}
}

// IsPerUnit reports whether values are priced per container.
func (t FieldType) IsPerUnit() bool {
	return t == FieldTypePerUnitType || t == FieldTypePerUnit
}

// FlatValueKey is the value-map key of flat fields.
const FlatValueKey = "flat"

// ---------------------------------------------------------------------------
// Canonical Rate
// ---------------------------------------------------------------------------

// Rate is the platform's canonical rate record. Downstream pricing and
// display code consume it regardless of which provider produced it.
type Rate struct {
	ID                   string                     `json:"id"`
	Type                 RateType                   `json:"type"`
	Created              int64                      `json:"created"` // epoch milliseconds
	TransportationMethod TransportationMethod       `json:"transportationMethod"`
	Source               Port                       `json:"source"`
	Destination          Port                       `json:"destination"`
	Supplier             Supplier                   `json:"supplier"`
	Attributes           map[string]json.RawMessage `json:"attributes"`
	Product              Product                    `json:"product"`
	Offer                RateOffer                  `json:"offer"`
	Notes                string                     `json:"notes"`
}

// Supplier identifies the carrier offering a rate
type Supplier struct {
	Organization string `json:"organization"`
	UniqueID     string `json:"uniqueId"`
	Logo         string `json:"logo,omitempty"`
}

// RateOffer carries validity, schedule and the priced sections
type RateOffer struct {
	ValidFrom     string        `json:"validFrom"`
	ValidUntil    string        `json:"validUntil"`
	TransitTime   *int          `json:"transitTime"`
	TransitDates  []TransitDate `json:"transitDates"`
	Availability  Availability  `json:"availability"`
	Transshipment string        `json:"transshipment"`
	Sections      []Section     `json:"sections"`
}

// TransitDate is an estimated departure/arrival pair (YYYY-MM-DD)
type TransitDate struct {
	ETD string `json:"etd,omitempty"`
	ETA string `json:"eta,omitempty"`
}

// Availability reports whether a rate can be booked
type Availability struct {
	Available bool `json:"available"`
	Count     *int `json:"count"`
}

// Section groups the charges incurred at one stage of the shipment
type Section struct {
	ID     string         `json:"id"`
	Title  SectionTitle   `json:"title"`
	Offers []SectionOffer `json:"offers"`
}

// SectionOffer holds the fields of a section
type SectionOffer struct {
	ID     string  `json:"id"`
	Fields []Field `json:"fields"`
}

// Field is one priced charge
type Field struct {
	ID     string                       `json:"id"`
	Title  string                       `json:"title"`
	Type   FieldType                    `json:"type"`
	Values map[string]valueobject.Money `json:"values"`
}

// NewSection creates an empty section with its single offer.
func NewSection(id, offerID string, title SectionTitle) Section {
	return Section{
		ID:    id,
		Title: title,
		Offers: []SectionOffer{{
			ID:     offerID,
			Fields: []Field{},
		}},
	}
}

// AddField appends a field to the section's offer.
func (s *Section) AddField(f Field) {
	s.Offers[0].Fields = append(s.Offers[0].Fields, f)
}

// Section returns the section with the given title, or nil.
func (o *RateOffer) Section(title SectionTitle) *Section {
	for i := range o.Sections {
		if o.Sections[i].Title == title {
			return &o.Sections[i]
		}
	}
	return nil
}

// Fields returns every field across the rate's sections, in section order.
func (r Rate) Fields() []Field {
	var fields []Field
	for _, s := range r.Offer.Sections {
		for _, o := range s.Offers {
			fields = append(fields, o.Fields...)
		}
	}
	return fields
}

// Totals sums every charge of the rate per currency. Per-unit values are
// multiplied by the product quantity; flat values count once.
func (r Rate) Totals() map[valueobject.Currency]valueobject.Money {
	qty := int64(max(r.Product.Quantity, 1))
	totals := make(map[valueobject.Currency]valueobject.Money)
	for _, f := range r.Fields() {
		for _, v := range f.Values {
			if f.Type.IsPerUnit() {
				v = v.MultiplyByInt(qty)
			}
			sum, ok := totals[v.Currency()]
			if !ok {
				totals[v.Currency()] = v
				continue
			}
			// Same currency by construction, Add cannot fail here.
			totals[v.Currency()], _ = sum.Add(v)
		}
	}
	return totals
}
