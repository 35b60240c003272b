// Package address validates and formats mailing addresses per country.
// Both entry points are pure: the canonical formatted string persisted on a
// guest is always recomputed from scratch here, never patched.
package address

import (
	"fmt"
	"strings"
)

// Fields holds the raw address components a guest has entered. Empty strings
// mean "not provided".
type Fields struct {
	Line1      string
	Line2      string
	City       string
	Region     string
	PostalCode string
	Freeform   string
}

// field keys used in the country table and in validation messages.
const (
	fieldLine1      = "line1"
	fieldLine2      = "line2"
	fieldCity       = "city"
	fieldRegion     = "region"
	fieldPostalCode = "postal_code"
	fieldFreeform   = "freeform"
)

// labels maps field keys to the names shown in validation messages.
var labels = map[string]string{
	fieldLine1:      "street address",
	fieldLine2:      "street address line 2",
	fieldCity:       "city",
	fieldRegion:     "state / province / region",
	fieldPostalCode: "postal code",
	fieldFreeform:   "address",
}

// countrySpec declares the required fields and the line layout for one
// country. Adding a country is a new table entry, not new control flow.
type countrySpec struct {
	required []string
	lines    func(f Fields) []string
}

var countries = map[string]countrySpec{
	"United States": {
		required: []string{fieldLine1, fieldCity, fieldRegion, fieldPostalCode},
		lines:    cityRegionPostalLines,
	},
	"Canada": {
		required: []string{fieldLine1, fieldCity, fieldRegion, fieldPostalCode},
		lines:    cityRegionPostalLines,
	},
	"Netherlands": {
		required: []string{fieldLine1, fieldPostalCode, fieldCity},
		lines: func(f Fields) []string {
			return []string{f.Line1, postalCity(f)}
		},
	},
	"Germany": {
		required: []string{fieldLine1, fieldPostalCode, fieldCity},
		lines: func(f Fields) []string {
			return []string{f.Line1, f.Line2, postalCity(f)}
		},
	},
	"France": {
		required: []string{fieldLine1, fieldPostalCode, fieldCity},
		lines: func(f Fields) []string {
			return []string{f.Line1, f.Line2, postalCity(f)}
		},
	},
	"United Kingdom": {
		required: []string{fieldLine1, fieldCity, fieldPostalCode},
		lines: func(f Fields) []string {
			return []string{f.Line1, f.Line2, f.City, f.PostalCode}
		},
	},
}

func cityRegionPostalLines(f Fields) []string {
	return []string{f.Line1, f.Line2, joinNonEmpty(" ", joinNonEmpty(", ", f.City, f.Region), f.PostalCode)}
}

func postalCity(f Fields) string {
	return joinNonEmpty(" ", f.PostalCode, f.City)
}

// Known reports whether country has a dedicated entry in the table. Unknown
// countries fall back to a single freeform field.
func Known(country string) bool {
	_, ok := countries[country]
	return ok
}

// RequiredFields returns the field keys a country demands. Unknown countries
// require only the freeform field.
func RequiredFields(country string) []string {
	if spec, ok := countries[country]; ok {
		return spec.required
	}
	return []string{fieldFreeform}
}

func (f Fields) value(key string) string {
	switch key {
	case fieldLine1:
		return f.Line1
	case fieldLine2:
		return f.Line2
	case fieldCity:
		return f.City
	case fieldRegion:
		return f.Region
	case fieldPostalCode:
		return f.PostalCode
	case fieldFreeform:
		return f.Freeform
	}
	return ""
}

// Empty reports whether no address component has content.
func (f Fields) Empty() bool {
	for _, key := range []string{fieldLine1, fieldLine2, fieldCity, fieldRegion, fieldPostalCode, fieldFreeform} {
		if strings.TrimSpace(f.value(key)) != "" {
			return false
		}
	}
	return true
}

// Validate checks f against the country's required fields. It returns "" when
// valid and a human-readable message otherwise. Validation is skipped (valid)
// when no country is selected, or when the guest has not entered any address
// field yet — partial saves before the address is typed in are allowed.
func Validate(country string, f Fields) string {
	if country == "" {
		return ""
	}
	if f.Empty() {
		return ""
	}

	var missing []string
	for _, key := range RequiredFields(country) {
		if strings.TrimSpace(f.value(key)) == "" {
			missing = append(missing, labels[key])
		}
	}
	if len(missing) == 0 {
		return ""
	}
	return fmt.Sprintf("Missing required address fields: %s", strings.Join(missing, ", "))
}

// Format renders the single canonical mailing-address string for a country.
// Blank lines are dropped; lines are newline-joined. Downstream consumers
// (labels, envelopes) must use this output rather than reassembling the
// component fields themselves.
func Format(country string, f Fields) string {
	var lines []string
	if spec, ok := countries[country]; ok {
		lines = append(lines, spec.lines(f)...)
		lines = append(lines, country)
	} else {
		lines = append(lines, f.Freeform)
		if country != "" && country != "Other" {
			lines = append(lines, country)
		}
	}

	out := lines[:0]
	for _, line := range lines {
		if strings.TrimSpace(line) != "" {
			out = append(out, strings.TrimSpace(line))
		}
	}
	return strings.Join(out, "\n")
}

// joinNonEmpty joins the non-blank parts with sep.
func joinNonEmpty(sep string, parts ...string) string {
	kept := parts[:0]
	for _, p := range parts {
		if strings.TrimSpace(p) != "" {
			kept = append(kept, strings.TrimSpace(p))
		}
	}
	return strings.Join(kept, sep)
}
