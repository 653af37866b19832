package freight

import "strings"

// PricingMode is how a provider charge is denominated.
type PricingMode string

const (
	// PricingModePerUnit prices the charge per container; it varies by container type.
	PricingModePerUnit PricingMode = "per-unit"
	// PricingModeFlat prices the charge once per shipment (bill of lading, document fees).
	PricingModeFlat PricingMode = "flat"
)

// ClassifyBasis classifies a free-text provider basis such as "PER BL" or
// "PER CONTAINER". A basis is flat iff it contains "PER" together with one
// of "BL", "B/L" or "BILL OF LADING", compared case-insensitively.
func ClassifyBasis(basis string) PricingMode {
	if IsPerBL(basis) {
		return PricingModeFlat
	}
	return PricingModePerUnit
}

// IsPerBL reports whether the basis denotes a per-bill-of-lading charge.
func IsPerBL(basis string) bool {
	b := strings.ToUpper(strings.TrimSpace(basis))
	if !strings.Contains(b, "PER") {
		return false
	}
	return strings.Contains(b, "BL") ||
		strings.Contains(b, "B/L") ||
		strings.Contains(b, "BILL OF LADING")
}

// FieldType returns the canonical field type tag for the pricing mode.
func (m PricingMode) FieldType() FieldType {
	if m == PricingModeFlat {
		return FieldTypeFlat
	}
	return FieldTypePerUnitType
}
