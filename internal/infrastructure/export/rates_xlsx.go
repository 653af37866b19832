// Package export renders canonical rates as downloadable spreadsheets.
package export

import (
	"fmt"
	"io"
	"maps"
	"slices"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/erp/seafreight/internal/domain/freight"
	"github.com/erp/seafreight/internal/domain/shared/valueobject"
)

// Sheet names of the rates workbook.
const (
	SheetSummary = "Summary"
	SheetCharges = "Charges"
)

// ContentTypeXLSX is the MIME type of the workbook.
const ContentTypeXLSX = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

var summaryHeader = []any{
	"Rate ID", "Type", "Carrier", "Carrier Code", "Origin", "Destination",
	"Container", "Quantity", "Valid From", "Valid Until", "Transit Days",
	"ETD", "ETA", "Transshipment", "Available", "Totals", "Notes",
}

var chargesHeader = []any{
	"Rate ID", "Container", "Section", "Charge", "Type", "Value Key", "Value", "Currency",
}

// WriteRatesWorkbook writes rates as an xlsx workbook to w. The Summary sheet
// has one row per rate; the Charges sheet one row per (rate, field, value).
func WriteRatesWorkbook(w io.Writer, rates []freight.Rate) error {
	xl := excelize.NewFile()
	defer func() { _ = xl.Close() }()

	if err := xl.SetSheetName(xl.GetSheetName(0), SheetSummary); err != nil {
		return fmt.Errorf("rename summary sheet: %w", err)
	}
	if _, err := xl.NewSheet(SheetCharges); err != nil {
		return fmt.Errorf("create charges sheet: %w", err)
	}

	if err := setRow(xl, SheetSummary, 1, summaryHeader); err != nil {
		return err
	}
	if err := setRow(xl, SheetCharges, 1, chargesHeader); err != nil {
		return err
	}

	chargeRow := 2
	for i, r := range rates {
		if err := setRow(xl, SheetSummary, i+2, summaryRow(r)); err != nil {
			return err
		}
		for _, row := range chargeRows(r) {
			if err := setRow(xl, SheetCharges, chargeRow, row); err != nil {
				return err
			}
			chargeRow++
		}
	}

	if _, err := xl.WriteTo(w); err != nil {
		return fmt.Errorf("write workbook: %w", err)
	}
	return nil
}

func setRow(xl *excelize.File, sheet string, row int, values []any) error {
	cell, err := excelize.CoordinatesToCellName(1, row)
	if err != nil {
		return err
	}
	if err := xl.SetSheetRow(sheet, cell, &values); err != nil {
		return fmt.Errorf("write %s row %d: %w", sheet, row, err)
	}
	return nil
}

func summaryRow(r freight.Rate) []any {
	var etd, eta string
	if len(r.Offer.TransitDates) > 0 {
		etd, eta = r.Offer.TransitDates[0].ETD, r.Offer.TransitDates[0].ETA
	}
	var transit any = ""
	if r.Offer.TransitTime != nil {
		transit = *r.Offer.TransitTime
	}
	return []any{
		r.ID,
		string(r.Type),
		r.Supplier.Organization,
		r.Supplier.UniqueID,
		portLabel(r.Source),
		portLabel(r.Destination),
		r.Product.Type.String(),
		r.Product.Quantity,
		r.Offer.ValidFrom,
		r.Offer.ValidUntil,
		transit,
		etd,
		eta,
		r.Offer.Transshipment,
		r.Offer.Availability.Available,
		formatTotals(r.Totals()),
		r.Notes,
	}
}

func chargeRows(r freight.Rate) [][]any {
	var rows [][]any
	for _, s := range r.Offer.Sections {
		for _, o := range s.Offers {
			for _, f := range o.Fields {
				for _, key := range slices.Sorted(maps.Keys(f.Values)) {
					v := f.Values[key]
					rows = append(rows, []any{
						r.ID,
						r.Product.Type.String(),
						string(s.Title),
						f.Title,
						string(f.Type),
						key,
						v.Float64(),
						string(v.Currency()),
					})
				}
			}
		}
	}
	return rows
}

func portLabel(p freight.Port) string {
	if p.Text != "" && p.Text != p.ID {
		return fmt.Sprintf("%s (%s)", p.Text, p.ID)
	}
	return p.ID
}

// formatTotals renders per-currency totals as "45.00 EUR; 1250.00 USD" in
// currency order.
func formatTotals(totals map[valueobject.Currency]valueobject.Money) string {
	parts := make([]string, 0, len(totals))
	for _, c := range slices.Sorted(maps.Keys(totals)) {
		m := totals[c]
		parts = append(parts, m.Amount().StringFixed(2)+" "+string(c))
	}
	return strings.Join(parts, "; ")
}
