package freight

import "strings"

// ---------------------------------------------------------------------------
// ContainerType represents a requested container product
// ---------------------------------------------------------------------------

// ContainerType is the platform name of a container product, e.g. "40' HC Reefer".
type ContainerType string

const (
	ContainerType20Dry       ContainerType = "20' Dry"
	ContainerType20Flat      ContainerType = "20' Flat"
	ContainerType20OpenTop   ContainerType = "20' Open Top"
	ContainerType20Reefer    ContainerType = "20' Reefer"
	ContainerType40Dry       ContainerType = "40' Dry"
	ContainerType40Flat      ContainerType = "40' Flat"
	ContainerType40OpenTop   ContainerType = "40' Open Top"
	ContainerType40Reefer    ContainerType = "40' Reefer"
	ContainerType40HCDry     ContainerType = "40' HC Dry"
	ContainerType40HCFlat    ContainerType = "40' HC Flat"
	ContainerType40HCOpenTop ContainerType = "40' HC Open Top"
	ContainerType40HCReefer  ContainerType = "40' HC Reefer"
	ContainerType45HCDry     ContainerType = "45' HC Dry"
	ContainerType45HCReefer  ContainerType = "45' HC Reefer"
)

// containerISOCodes is the encode table. Every domain container type has
// exactly one provider code.
var containerISOCodes = map[ContainerType]string{
	ContainerType20Dry:       "20DV",
	ContainerType20Flat:      "20FL",
	ContainerType20OpenTop:   "20OT",
	ContainerType20Reefer:    "20RF",
	ContainerType40Dry:       "40DV",
	ContainerType40Flat:      "40FL",
	ContainerType40OpenTop:   "40OT",
	ContainerType40Reefer:    "40RF",
	ContainerType40HCDry:     "40HC",
	ContainerType40HCFlat:    "40HCFL",
	ContainerType40HCOpenTop: "40HCOT",
	ContainerType40HCReefer:  "40HCRF",
	ContainerType45HCDry:     "45HC",
	ContainerType45HCReefer:  "45HCRF",
}

// containerTypesByCode is the exact reverse of containerISOCodes.
var containerTypesByCode = func() map[string]ContainerType {
	m := make(map[string]ContainerType, len(containerISOCodes))
	for t, code := range containerISOCodes {
		m[code] = t
	}
	return m
}()

// AllContainerTypes returns every domain container type in table order.
func AllContainerTypes() []ContainerType {
	return []ContainerType{
		ContainerType20Dry, ContainerType20Flat, ContainerType20OpenTop, ContainerType20Reefer,
		ContainerType40Dry, ContainerType40Flat, ContainerType40OpenTop, ContainerType40Reefer,
		ContainerType40HCDry, ContainerType40HCFlat, ContainerType40HCOpenTop, ContainerType40HCReefer,
		ContainerType45HCDry, ContainerType45HCReefer,
	}
}

// IsValid returns true if the container type is one of the domain values
func (t ContainerType) IsValid() bool {
	_, ok := containerISOCodes[t]
	return ok
}

// String returns the string representation of ContainerType
func (t ContainerType) String() string {
	return string(t)
}

// ISOCode returns the provider code for the container type, or "" when the
// type is not a domain value.
func (t ContainerType) ISOCode() string {
	return containerISOCodes[t]
}

// ProductToISO encodes a container type name into its provider code.
// Unknown names encode to "".
func ProductToISO(name string) string {
	return ContainerType(name).ISOCode()
}

// ProductFromISO decodes a provider container code.
//
// Exact table codes decode to their domain type. Any other code is decoded
// heuristically from the size, high-cube and reefer markers it contains;
// codes that carry none of the known sizes yield ok == false.
func ProductFromISO(code string) (ContainerType, bool) {
	s := normalizeISOCode(code)
	if s == "" {
		return "", false
	}
	if t, ok := containerTypesByCode[s]; ok {
		return t, true
	}

	is20 := strings.Contains(s, "20") && !strings.Contains(s, "40")
	is40 := strings.Contains(s, "40")
	highCube := strings.Contains(s, "HC")
	reefer := strings.Contains(s, "RF") || strings.Contains(s, "RFR") || strings.Contains(s, "REEFER")

	switch {
	case reefer && is20:
		return ContainerType20Reefer, true
	case reefer && is40 && highCube:
		return ContainerType40HCReefer, true
	case reefer && is40:
		return ContainerType40Reefer, true
	case reefer:
		return "", false
	case is20:
		return ContainerType20Dry, true
	case is40 && highCube:
		return ContainerType40HCDry, true
	case is40:
		return ContainerType40Dry, true
	default:
		return "", false
	}
}

func normalizeISOCode(code string) string {
	return strings.Map(func(r rune) rune {
		switch r {
		case ' ', '\t', '\n', '\r', '-':
			return -1
		}
		return r
	}, strings.ToUpper(code))
}
