package cargofive

import (
	"bytes"
	"encoding/json"
	"sort"
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// notesSeparator joins rendered additional-data entries
const notesSeparator = " • "

// FormatNotes renders provider additional data as "Title Case Key: value"
// entries sorted by key.
func FormatNotes(data map[string]json.RawMessage) string {
	if len(data) == 0 {
		return ""
	}

	keys := make([]string, 0, len(data))
	for k := range data {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, TitleCaseKey(k)+": "+noteValue(data[k]))
	}
	return strings.Join(parts, notesSeparator)
}

// TitleCaseKey turns snake_case, kebab-case and camelCase keys into
// space-separated words with an upper-case first letter each.
// "free_time_days" -> "Free Time Days", "imoClass" -> "Imo Class".
func TitleCaseKey(key string) string {
	// Casers keep state, so each call gets its own.
	caser := cases.Title(language.English, cases.NoLower)
	return caser.String(strings.Join(splitWords(key), " "))
}

// splitWords breaks a key on separators, lower-to-upper transitions,
// acronym ends ("IMOClass" -> IMO, Class) and letter/digit boundaries.
func splitWords(s string) []string {
	var words []string
	var current []rune

	flush := func() {
		if len(current) > 0 {
			words = append(words, string(current))
			current = current[:0]
		}
	}

	runes := []rune(s)
	for i, r := range runes {
		if !unicode.IsLetter(r) && !unicode.IsDigit(r) {
			flush()
			continue
		}
		if len(current) > 0 {
			prev := current[len(current)-1]
			switch {
			case unicode.IsUpper(r) && (unicode.IsLower(prev) || unicode.IsDigit(prev)):
				flush()
			case unicode.IsUpper(r) && unicode.IsUpper(prev) && i+1 < len(runes) && unicode.IsLower(runes[i+1]):
				flush()
			case unicode.IsDigit(r) != unicode.IsDigit(prev):
				flush()
			}
		}
		current = append(current, r)
	}
	flush()
	return words
}

// noteValue renders a JSON value: strings unquoted, anything else compact JSON
func noteValue(raw json.RawMessage) string {
	raw = bytes.TrimSpace(raw)
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	var buf bytes.Buffer
	if err := json.Compact(&buf, raw); err != nil {
		return string(raw)
	}
	return buf.String()
}
