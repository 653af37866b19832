package cargofive

import (
	"encoding/json"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/erp/seafreight/internal/domain/freight"
	"github.com/erp/seafreight/internal/domain/shared/valueobject"
)

// IDGenerator returns a fresh unique identifier
type IDGenerator func() string

// Clock returns the current time
type Clock func() time.Time

// Normalizer converts CargoFive rates into canonical rates. It performs no
// I/O; given a fixed IDGenerator and Clock its output is deterministic.
type Normalizer struct {
	newID IDGenerator
	now   Clock
}

// NormalizerOption configures a Normalizer
type NormalizerOption func(*Normalizer)

// WithIDGenerator overrides uuid.NewString
func WithIDGenerator(fn IDGenerator) NormalizerOption {
	return func(n *Normalizer) {
		if fn != nil {
			n.newID = fn
		}
	}
}

// WithClock overrides time.Now
func WithClock(fn Clock) NormalizerOption {
	return func(n *Normalizer) {
		if fn != nil {
			n.now = fn
		}
	}
}

// NewNormalizer creates a normalizer
func NewNormalizer(opts ...NormalizerOption) *Normalizer {
	n := &Normalizer{
		newID: uuid.NewString,
		now:   time.Now,
	}
	for _, opt := range opts {
		opt(n)
	}
	return n
}

// Normalize produces one canonical rate per (provider rate, requested
// product) pair, rate-major. It never fails; missing optional provider
// fields degrade to defaults.
func (n *Normalizer) Normalize(rates []ProviderRate, q freight.Query) []freight.Rate {
	out := make([]freight.Rate, 0, len(rates)*len(q.Products))
	for _, rate := range rates {
		for _, product := range q.Products {
			out = append(out, n.convertRate(rate, q, product))
		}
	}
	return out
}

// sectionCharge is a provider charge tagged with the section it came from
type sectionCharge struct {
	Charge
	section freight.SectionTitle
}

// convertRate builds the canonical rate for one requested product
func (n *Normalizer) convertRate(rate ProviderRate, q freight.Query, product freight.Product) freight.Rate {
	offer := rate.ProductOffer
	price := rate.ProductPrice
	now := n.now()

	productID := n.newID()

	sections := make([]freight.Section, 0, 3)
	for _, title := range freight.SectionTitles() {
		sectionID := n.newID()
		sections = append(sections, freight.NewSection(sectionID, n.newID(), title))
	}
	rateOffer := freight.RateOffer{Sections: sections}

	for _, c := range collectCharges(price) {
		section := rateOffer.Section(c.section)
		section.AddField(n.convertCharge(c.Charge, product, productID))
	}

	var schedule Schedule
	if len(rate.Schedules) > 0 {
		schedule = rate.Schedules[0]
	}

	rateOffer.ValidFrom = firstNonEmpty(price.ValidFrom, now.UTC().Format(freight.DateLayout))
	rateOffer.ValidUntil = firstNonEmpty(price.ValidTo, endOfMonth(now).Format(freight.DateLayout))
	rateOffer.TransitTime = transitTime(schedule)
	rateOffer.TransitDates = []freight.TransitDate{{
		ETD: datePart(schedule.DepartureDate),
		ETA: datePart(schedule.ArrivalDate),
	}}
	rateOffer.Availability = freight.Availability{
		Available: offer.RateStatus == "Valid",
		Count:     nil,
	}
	rateOffer.Transshipment = strings.Join(offer.ViaPort, ", ")

	product.ID = productID

	return freight.Rate{
		ID:                   "cargofive-" + offer.RateUUID.String() + "-" + n.newID(),
		Type:                 rateType(offer.MainProductName),
		Created:              now.UnixMilli(),
		TransportationMethod: freight.TransportationMethodSea,
		Source:               resolvePort(q.SourcePort, offer.OriginPortUnlocode, offer.OriginPortDisplayName),
		Destination:          resolvePort(q.DestinationPort, offer.DestinationPortUnlocode, offer.DestinationPortDisplayName),
		Supplier: freight.Supplier{
			Organization: offer.MainCarrierName,
			UniqueID:     firstNonEmpty(offer.MainCarrierCode.String(), offer.MainCarrierSCAC),
			Logo:         offer.MainCarrierLogo,
		},
		Attributes: map[string]json.RawMessage{
			"cargofiveRate": rawRate(rate),
		},
		Product: product,
		Offer:   rateOffer,
		Notes:   FormatNotes(offerAdditionalData(offer)),
	}
}

// convertCharge maps one provider charge to a canonical field
func (n *Normalizer) convertCharge(c Charge, product freight.Product, productID string) freight.Field {
	mode := freight.ClassifyBasis(c.BasisText())
	currency := valueobject.NormalizeCurrency(c.UnitPriceCurrency)

	values := make(map[string]valueobject.Money, 1)
	if mode == freight.PricingModeFlat {
		values[freight.FlatValueKey] = tariffPrice(firstTariff(c.Tariffs), currency)
	} else {
		values[productID] = tariffPrice(matchTariff(c.Tariffs, product.Type), currency)
	}

	return freight.Field{
		ID:     n.newID(),
		Title:  c.ChargeName,
		Type:   mode.FieldType(),
		Values: values,
	}
}

// collectCharges flattens the three charge groups in section order
func collectCharges(price ProductPrice) []sectionCharge {
	groups := []struct {
		group   *ChargeGroup
		section freight.SectionTitle
	}{
		{price.Freight, freight.SectionFreight},
		{price.Origin, freight.SectionOrigin},
		{price.Destination, freight.SectionDestination},
	}

	var all []sectionCharge
	for _, g := range groups {
		for _, c := range g.group.charges() {
			all = append(all, sectionCharge{Charge: c, section: g.section})
		}
	}
	return all
}

// matchTariff returns the tariff whose container code decodes to the
// requested type, else the first tariff, else nil.
func matchTariff(tariffs []Tariff, want freight.ContainerType) *Tariff {
	for i := range tariffs {
		if t, ok := freight.ProductFromISO(tariffs[i].ContainerISO); ok && t == want {
			return &tariffs[i]
		}
	}
	return firstTariff(tariffs)
}

func firstTariff(tariffs []Tariff) *Tariff {
	if len(tariffs) == 0 {
		return nil
	}
	return &tariffs[0]
}

// tariffPrice returns the tariff unit price, or zero when there is no tariff
func tariffPrice(t *Tariff, currency valueobject.Currency) valueobject.Money {
	if t == nil {
		return valueobject.Zero(currency)
	}
	m, err := valueobject.NewMoney(t.UnitPrice.Decimal, currency)
	if err != nil {
		return valueobject.Zero(valueobject.DefaultCurrency)
	}
	return m
}

// resolvePort echoes the query port when the provider reports the same code,
// otherwise builds a minimal descriptor from provider data.
func resolvePort(queryPort freight.Port, unlocode, displayName string) freight.Port {
	if unlocode == queryPort.ID {
		return queryPort
	}
	countryCode := unlocode
	if len(countryCode) > 2 {
		countryCode = countryCode[:2]
	}
	return freight.Port{
		ID:          unlocode,
		Text:        displayName,
		CountryCode: countryCode,
	}
}

func rateType(mainProductName string) freight.RateType {
	if strings.Contains(strings.ToLower(mainProductName), "spot") {
		return freight.RateTypeSpot
	}
	return freight.RateTypeContract
}

func transitTime(s Schedule) *int {
	if s.TransitTime == nil || *s.TransitTime <= 0 {
		return nil
	}
	days := int(*s.TransitTime)
	return &days
}

func rawRate(rate ProviderRate) json.RawMessage {
	if len(rate.Raw) > 0 {
		return rate.Raw
	}
	data, err := json.Marshal(rate)
	if err != nil {
		return json.RawMessage("null")
	}
	return data
}

func offerAdditionalData(offer ProductOffer) map[string]json.RawMessage {
	if offer.RateDetails == nil {
		return nil
	}
	return offer.RateDetails.AdditionalData
}

// datePart strips the time component of an ISO timestamp
func datePart(ts string) string {
	date, _, _ := strings.Cut(ts, "T")
	return date
}

// endOfMonth returns the last day of t's month (UTC)
func endOfMonth(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month()+1, 0, 23, 59, 59, 0, time.UTC)
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
