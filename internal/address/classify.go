// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package address

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/cases"

	"pii-consolidator/internal/entity"
)

var swissPostalCode = regexp.MustCompile(`^(?:CH-)?[1-9]\d{3}$`)

// swissCountryNames holds case-folded spellings of Switzerland
var swissCountryNames = map[string]bool{
	"ch":                   true,
	"che":                  true,
	"schweiz":              true,
	"die schweiz":          true,
	"suisse":               true,
	"la suisse":            true,
	"svizzera":             true,
	"svizra":               true,
	"switzerland":          true,
	"helvetia":             true,
	"confédération suisse": true,
	"confederation suisse": true,
}

// IsSwissPostalCode reports whether a postal code fragment has the Swiss
// four-digit shape, optionally prefixed with CH-.
func IsSwissPostalCode(code string) bool {
	return swissPostalCode.MatchString(strings.TrimSpace(code))
}

// IsSwissCountry reports whether a country fragment names Switzerland
func IsSwissCountry(name string) bool {
	cleaned := strings.TrimFunc(name, func(r rune) bool {
		return unicode.IsSpace(r) || unicode.IsPunct(r)
	})
	return swissCountryNames[cases.Fold().String(cleaned)]
}

// Classify picks the address type from the component makeup:
// Swiss if any postal code or country identifies Switzerland, EU if a country
// or another postal code is present, plain ADDRESS otherwise.
func Classify(components []entity.Component) entity.Type {
	hasCountry, hasPostal := false, false
	for _, c := range components {
		switch c.Type {
		case entity.PostalCode:
			hasPostal = true
			if IsSwissPostalCode(c.Text) {
				return entity.SwissAddress
			}
		case entity.Country:
			hasCountry = true
			if IsSwissCountry(c.Text) {
				return entity.SwissAddress
			}
		}
	}
	if hasCountry || hasPostal {
		return entity.EUAddress
	}
	return entity.Address
}
