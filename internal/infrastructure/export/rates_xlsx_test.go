package export

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/erp/seafreight/internal/domain/freight"
	"github.com/erp/seafreight/internal/domain/shared/valueobject"
)

func sampleRate(t *testing.T) freight.Rate {
	t.Helper()
	usd, err := valueobject.NewMoneyFromString("1250.5", valueobject.USD)
	require.NoError(t, err)
	eur, err := valueobject.NewMoneyFromString("45", valueobject.EUR)
	require.NoError(t, err)

	freightSection := freight.NewSection("s1", "o1", freight.SectionFreight)
	freightSection.AddField(freight.Field{
		ID: "f1", Title: "Ocean Freight", Type: freight.FieldTypePerUnitType,
		Values: map[string]valueobject.Money{"p1": usd},
	})
	origin := freight.NewSection("s2", "o2", freight.SectionOrigin)
	origin.AddField(freight.Field{
		ID: "f2", Title: "B/L Fee", Type: freight.FieldTypeFlat,
		Values: map[string]valueobject.Money{freight.FlatValueKey: eur},
	})

	transit := 28
	return freight.Rate{
		ID:          "cargofive-abc-1",
		Type:        freight.RateTypeContract,
		Source:      freight.Port{ID: "ESVLC", Text: "Valencia"},
		Destination: freight.Port{ID: "CNSHA", Text: "CNSHA"},
		Supplier:    freight.Supplier{Organization: "MAERSK", UniqueID: "MAEU"},
		Product:     freight.Product{ID: "p1", Type: freight.ContainerType40Dry, Quantity: 2},
		Offer: freight.RateOffer{
			ValidFrom:    "2025-03-01",
			ValidUntil:   "2025-03-31",
			TransitTime:  &transit,
			TransitDates: []freight.TransitDate{{ETD: "2025-03-15", ETA: "2025-04-12"}},
			Availability: freight.Availability{Available: true},
			Sections:     []freight.Section{freightSection, origin},
		},
		Notes: "Remarks: subject to space",
	}
}

func openWorkbook(t *testing.T, data []byte) *excelize.File {
	t.Helper()
	xl, err := excelize.OpenReader(bytes.NewReader(data))
	require.NoError(t, err)
	t.Cleanup(func() { _ = xl.Close() })
	return xl
}

func TestWriteRatesWorkbook(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteRatesWorkbook(&buf, []freight.Rate{sampleRate(t)}))

	xl := openWorkbook(t, buf.Bytes())
	assert.Equal(t, []string{SheetSummary, SheetCharges}, xl.GetSheetList())

	summary, err := xl.GetRows(SheetSummary)
	require.NoError(t, err)
	require.Len(t, summary, 2)
	assert.Equal(t, "Rate ID", summary[0][0])

	row := summary[1]
	assert.Equal(t, "cargofive-abc-1", row[0])
	assert.Equal(t, "MAERSK", row[2])
	assert.Equal(t, "Valencia (ESVLC)", row[4])
	assert.Equal(t, "CNSHA", row[5])
	assert.Equal(t, "40' Dry", row[6])
	assert.Equal(t, "2", row[7])
	assert.Equal(t, "28", row[10])
	assert.Equal(t, "2025-03-15", row[11])
	assert.Equal(t, "45.00 EUR; 2501.00 USD", row[15])

	charges, err := xl.GetRows(SheetCharges)
	require.NoError(t, err)
	require.Len(t, charges, 3)
	assert.Equal(t, []string{"cargofive-abc-1", "40' Dry", "Freight", "Ocean Freight", "per-unit-type", "p1", "1250.5", "USD"}, charges[1])
	assert.Equal(t, []string{"cargofive-abc-1", "40' Dry", "Origin", "B/L Fee", "flat", "flat", "45", "EUR"}, charges[2])
}

func TestWriteRatesWorkbook_Empty(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteRatesWorkbook(&buf, nil))

	xl := openWorkbook(t, buf.Bytes())
	rows, err := xl.GetRows(SheetCharges)
	require.NoError(t, err)
	require.Len(t, rows, 1)
}
