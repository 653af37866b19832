package freight

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"time"
)

// DateLayout is the calendar-day layout used on the provider wire and in offers.
const DateLayout = "2006-01-02"

// ---------------------------------------------------------------------------
// Port
// ---------------------------------------------------------------------------

// ExternalIDs holds provider-specific identifiers attached to a port.
// Identifier keys of other providers are kept in Extra and written back
// unchanged.
type ExternalIDs struct {
	// ProviderID is the provider's place identifier.
	ProviderID string
	// CargofiveID is the legacy key under which the place identifier was stored.
	CargofiveID string
	Extra       map[string]json.RawMessage

	// wire holds the decoded tokens of the identifier keys, so a numeric id
	// is echoed as a number.
	wire map[string]json.RawMessage
}

const (
	keyProviderID  = "providerId"
	keyCargofiveID = "cargofiveId"
)

// MarshalJSON implements json.Marshaler
func (e ExternalIDs) MarshalJSON() ([]byte, error) {
	out := make(map[string]json.RawMessage, len(e.Extra)+2)
	for k, v := range e.Extra {
		out[k] = v
	}
	for key, value := range map[string]string{
		keyProviderID:  e.ProviderID,
		keyCargofiveID: e.CargofiveID,
	} {
		if tok, ok := e.wire[key]; ok {
			if decoded, err := flexID(tok); err == nil && decoded == value {
				out[key] = tok
				continue
			}
		}
		if value == "" {
			continue
		}
		b, err := json.Marshal(value)
		if err != nil {
			return nil, err
		}
		out[key] = b
	}
	return json.Marshal(out)
}

// UnmarshalJSON implements json.Unmarshaler
func (e *ExternalIDs) UnmarshalJSON(data []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*e = ExternalIDs{}
	for key, target := range map[string]*string{
		keyProviderID:  &e.ProviderID,
		keyCargofiveID: &e.CargofiveID,
	} {
		tok, ok := raw[key]
		if !ok {
			continue
		}
		v, err := flexID(tok)
		if err != nil {
			return fmt.Errorf("externalIds.%s: %w", key, err)
		}
		*target = v
		if e.wire == nil {
			e.wire = make(map[string]json.RawMessage, 2)
		}
		e.wire[key] = tok
		delete(raw, key)
	}
	if len(raw) > 0 {
		e.Extra = raw
	}
	return nil
}

// flexID decodes a place identifier sent as a JSON string, number or null.
func flexID(data []byte) (string, error) {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || string(data) == "null" {
		return "", nil
	}
	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return "", err
		}
		return s, nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return "", errors.New("must be a string or a number")
	}
	return n.String(), nil
}

// Port describes a port as supplied by the caller or synthesized from
// provider data. Keys the platform does not model are kept in Extra and
// written back unchanged, so an echoed port preserves caller metadata.
type Port struct {
	ID          string
	Text        string
	CountryCode string
	ExternalIDs *ExternalIDs
	Extra       map[string]json.RawMessage

	// hasID records an "id" key in the decoded input.
	hasID bool
}

// PlaceID returns the provider place identifier when present, else the port id.
func (p Port) PlaceID() string {
	if p.ExternalIDs != nil {
		if p.ExternalIDs.ProviderID != "" {
			return p.ExternalIDs.ProviderID
		}
		if p.ExternalIDs.CargofiveID != "" {
			return p.ExternalIDs.CargofiveID
		}
	}
	return p.ID
}

// MarshalJSON implements json.Marshaler
func (p Port) MarshalJSON() ([]byte, error) {
	out := make(map[string]any, len(p.Extra)+4)
	for k, v := range p.Extra {
		out[k] = v
	}
	if p.ID != "" || p.hasID {
		out["id"] = p.ID
	}
	if p.Text != "" {
		out["text"] = p.Text
	}
	if p.CountryCode != "" {
		out["countryCode"] = p.CountryCode
	}
	if p.ExternalIDs != nil {
		out["externalIds"] = p.ExternalIDs
	}
	return json.Marshal(out)
}

// UnmarshalJSON implements json.Unmarshaler
func (p *Port) UnmarshalJSON(data []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*p = Port{}
	_, p.hasID = raw["id"]
	fields := map[string]any{
		"id":          &p.ID,
		"text":        &p.Text,
		"countryCode": &p.CountryCode,
		"externalIds": &p.ExternalIDs,
	}
	for key, target := range fields {
		v, ok := raw[key]
		if !ok {
			continue
		}
		if err := json.Unmarshal(v, target); err != nil {
			return err
		}
		delete(raw, key)
	}
	if len(raw) > 0 {
		p.Extra = raw
	}
	return nil
}

// ---------------------------------------------------------------------------
// Product
// ---------------------------------------------------------------------------

// Product is one requested container product.
type Product struct {
	// ID is assigned per canonical rate by the normalizer.
	ID        string        `json:"id,omitempty"`
	Type      ContainerType `json:"type"`
	Quantity  int           `json:"quantity"`
	Dangerous bool          `json:"dangerous"`
}

// ---------------------------------------------------------------------------
// Query
// ---------------------------------------------------------------------------

// Query is the immutable search context for one provider search.
type Query struct {
	SourcePort      Port      `json:"sourcePort"`
	DestinationPort Port      `json:"destinationPort"`
	Products        []Product `json:"products"`
	// DateBegin and DateEnd are epoch milliseconds.
	DateBegin int64 `json:"dateBegin"`
	DateEnd   int64 `json:"dateEnd"`
}

// DepartureDate returns DateBegin truncated to the calendar day (UTC).
func (q Query) DepartureDate() string {
	return time.UnixMilli(q.DateBegin).UTC().Format(DateLayout)
}

// Validate checks the query is searchable.
func (q Query) Validate() error {
	if q.SourcePort.PlaceID() == "" {
		return ErrQueryMissingSourcePort
	}
	if q.DestinationPort.PlaceID() == "" {
		return ErrQueryMissingDestinationPort
	}
	if len(q.Products) == 0 {
		return ErrQueryNoProducts
	}
	for _, p := range q.Products {
		if p.Quantity <= 0 {
			return ErrQueryInvalidQuantity
		}
	}
	if q.DateEnd != 0 && q.DateEnd < q.DateBegin {
		return ErrQueryInvalidDateWindow
	}
	return nil
}
