package freight

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validQuery() Query {
	return Query{
		SourcePort:      Port{ID: "ESVLC", ExternalIDs: &ExternalIDs{ProviderID: "296"}},
		DestinationPort: Port{ID: "CNSHA", ExternalIDs: &ExternalIDs{ProviderID: "580"}},
		Products:        []Product{{Type: ContainerType20Dry, Quantity: 1}},
		DateBegin:       time.Date(2025, 3, 14, 22, 30, 0, 0, time.UTC).UnixMilli(),
		DateEnd:         time.Date(2025, 4, 14, 0, 0, 0, 0, time.UTC).UnixMilli(),
	}
}

func TestPort_PlaceID(t *testing.T) {
	tests := []struct {
		name string
		port Port
		want string
	}{
		{"provider id wins", Port{ID: "ESVLC", ExternalIDs: &ExternalIDs{ProviderID: "296"}}, "296"},
		{"legacy cargofive id", Port{ID: "ESVLC", ExternalIDs: &ExternalIDs{CargofiveID: "77"}}, "77"},
		{"empty external ids fall back", Port{ID: "ESVLC", ExternalIDs: &ExternalIDs{}}, "ESVLC"},
		{"no external ids", Port{ID: "ESVLC"}, "ESVLC"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.port.PlaceID())
		})
	}
}

func TestPort_JSONPreservesExtraKeys(t *testing.T) {
	in := `{"id":"ESVLC","text":"Valencia","countryCode":"ES","externalIds":{"providerId":"296"},"timezone":"Europe/Madrid","coords":[39.4,-0.3]}`

	var p Port
	require.NoError(t, json.Unmarshal([]byte(in), &p))
	assert.Equal(t, "ESVLC", p.ID)
	assert.Equal(t, "Valencia", p.Text)
	assert.Equal(t, "296", p.PlaceID())
	assert.Contains(t, p.Extra, "timezone")

	out, err := json.Marshal(p)
	require.NoError(t, err)
	assert.JSONEq(t, in, string(out))
}

func TestPort_JSONRoundTrip(t *testing.T) {
	tests := []struct {
		name      string
		in        string
		wantPlace string
	}{
		{"other providers ids kept", `{"id":"ESVLC","externalIds":{"providerId":"296","okargoId":"ESVLC-OK","searatesId":7}}`, "296"},
		{"numeric provider id", `{"id":"ESVLC","externalIds":{"providerId":296}}`, "296"},
		{"numeric legacy id", `{"id":"ESVLC","externalIds":{"cargofiveId":77}}`, "77"},
		{"null provider id", `{"id":"ESVLC","externalIds":{"providerId":null}}`, "ESVLC"},
		{"no id key", `{"text":"Valencia","externalIds":{"providerId":"296"}}`, "296"},
		{"empty id key", `{"id":"","externalIds":{"providerId":"296"}}`, "296"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var p Port
			require.NoError(t, json.Unmarshal([]byte(tt.in), &p))
			assert.Equal(t, tt.wantPlace, p.PlaceID())

			out, err := json.Marshal(p)
			require.NoError(t, err)
			assert.JSONEq(t, tt.in, string(out))
		})
	}
}

func TestPort_JSONRejectsNonScalarPlaceID(t *testing.T) {
	var p Port
	err := json.Unmarshal([]byte(`{"id":"ESVLC","externalIds":{"providerId":{"v":1}}}`), &p)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "externalIds.providerId")
}

func TestExternalIDs_MarshalEditedValue(t *testing.T) {
	var ids ExternalIDs
	require.NoError(t, json.Unmarshal([]byte(`{"providerId":296}`), &ids))
	ids.ProviderID = "300"

	out, err := json.Marshal(ids)
	require.NoError(t, err)
	assert.JSONEq(t, `{"providerId":"300"}`, string(out))

	out, err = json.Marshal(ExternalIDs{CargofiveID: "77"})
	require.NoError(t, err)
	assert.JSONEq(t, `{"cargofiveId":"77"}`, string(out))
}

func TestQuery_DepartureDate(t *testing.T) {
	assert.Equal(t, "2025-03-14", validQuery().DepartureDate())
}

func TestQuery_Validate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(q *Query)
		wantErr error
	}{
		{"valid", func(q *Query) {}, nil},
		{"missing source", func(q *Query) { q.SourcePort = Port{} }, ErrQueryMissingSourcePort},
		{"missing destination", func(q *Query) { q.DestinationPort = Port{} }, ErrQueryMissingDestinationPort},
		{"no products", func(q *Query) { q.Products = nil }, ErrQueryNoProducts},
		{"zero quantity", func(q *Query) { q.Products[0].Quantity = 0 }, ErrQueryInvalidQuantity},
		{"end before begin", func(q *Query) { q.DateEnd = q.DateBegin - 1 }, ErrQueryInvalidDateWindow},
		{"open-ended window", func(q *Query) { q.DateEnd = 0 }, nil},
		{"unknown container type accepted", func(q *Query) { q.Products[0].Type = "40' High Cube" }, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			q := validQuery()
			tt.mutate(&q)
			err := q.Validate()
			if tt.wantErr == nil {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestRateOffer_Section(t *testing.T) {
	offer := RateOffer{Sections: []Section{
		NewSection("s1", "o1", SectionFreight),
		NewSection("s2", "o2", SectionOrigin),
	}}

	s := offer.Section(SectionOrigin)
	require.NotNil(t, s)
	s.AddField(Field{ID: "f1", Title: "THC", Type: FieldTypeFlat})
	assert.Len(t, offer.Sections[1].Offers[0].Fields, 1)
	assert.Nil(t, offer.Section(SectionDestination))

	r := Rate{Offer: offer}
	assert.Len(t, r.Fields(), 1)
}
