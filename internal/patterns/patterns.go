// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package patterns

import (
	"fmt"
	"regexp"
	"sort"

	"pii-consolidator/internal/entity"
)

// Definition describes one rule before compilation
type Definition struct {
	Name        string
	Type        entity.Type
	Expr        string
	Group       int // capture group holding the entity; 0 is the whole match
	Priority    int
	Description string
}

// Pattern represents a compiled regex pattern with metadata
type Pattern struct {
	Regexp      *regexp.Regexp
	Name        string
	Type        entity.Type
	Group       int
	Priority    int
	Description string
}

// PatternManager holds the ordered rule library
type PatternManager struct {
	patterns []Pattern
}

// Street suffixes shared by the street name and number rules
const streetSuffix = `(?:strasse|straße|gasse|weg|platz|allee|ring)`

// DefaultDefinitions is the built-in rule library, highest priority first
var DefaultDefinitions = []Definition{
	{
		Name:        "swiss_avs",
		Type:        entity.SwissAVS,
		Expr:        `\b756[.\s]?\d{4}[.\s]?\d{4}[.\s]?\d{2}\b`,
		Priority:    100,
		Description: "Swiss social insurance number (AHV/AVS): 756.1234.5678.97",
	},
	{
		Name:        "iban",
		Type:        entity.IBAN,
		Expr:        `\b[A-Z]{2}\d{2}(?: ?[A-Z0-9]{4}){2,7}(?: ?[A-Z0-9]{1,3})?\b`,
		Priority:    95,
		Description: "International bank account number, grouped or compact",
	},
	{
		Name:        "qr_reference",
		Type:        entity.QRReference,
		Expr:        `\b\d{2}(?: ?\d{5}){5}\b`,
		Priority:    90,
		Description: "27-digit Swiss QR-bill reference",
	},
	{
		Name:        "vat_che",
		Type:        entity.VATNumber,
		Expr:        `\bCHE[- ]?\d{3}\.\d{3}\.\d{3}(?: ?(?:MWST|TVA|IVA))?\b`,
		Priority:    85,
		Description: "Swiss enterprise / VAT number: CHE-123.456.789 MWST",
	},
	{
		Name:        "vat_de",
		Type:        entity.VATNumber,
		Expr:        `\bDE ?\d{9}\b`,
		Priority:    85,
		Description: "German VAT identification number",
	},
	{
		Name:        "email",
		Type:        entity.Email,
		Expr:        `\b[A-Za-z0-9._%+\-]+@[A-Za-z0-9.\-]+\.[A-Za-z]{2,}\b`,
		Priority:    80,
		Description: "E-mail address",
	},
	{
		Name:        "phone_ch",
		Type:        entity.Phone,
		Expr:        `(?:\+41|0041|\b0)\s?\d{2}\s?\d{3}\s?\d{2}\s?\d{2}\b`,
		Priority:    75,
		Description: "Swiss phone number, national or international prefix",
	},
	{
		Name:        "creditor_reference",
		Type:        entity.PaymentRef,
		Expr:        `\bRF\d{2}(?: ?[A-Z0-9]{1,4}){1,6}\b`,
		Priority:    70,
		Description: "ISO 11649 creditor reference",
	},
	{
		Name:        "invoice_number",
		Type:        entity.InvoiceNumber,
		Expr:        `(?i)\b(?:rechnungsnummer|rechnung|facture|invoice)(?:\s*(?:nr\.?|no\.?|n°|#))?\s*:?\s*((?:[A-Z]{1,4}[-/]?)?\d[\d\-/]{2,15})`,
		Group:       1,
		Priority:    65,
		Description: "Invoice number introduced by a German, French or English label",
	},
	{
		Name:        "street_name_de",
		Type:        entity.StreetName,
		Expr:        `(\p{Lu}\p{Ll}+` + streetSuffix + `)`,
		Group:       1,
		Priority:    30,
		Description: "German-style compound street name: Bahnhofstrasse",
	},
	{
		Name:        "street_name_fr",
		Type:        entity.StreetName,
		Expr:        `((?:Rue|Avenue|Chemin|Route|Boulevard|Place) (?:de la |de l'|des |du |de )?\p{Lu}[\p{L}\-]+)`,
		Group:       1,
		Priority:    30,
		Description: "French-style street name: Rue de Lausanne",
	},
	{
		Name:        "street_number_de",
		Type:        entity.StreetNumber,
		Expr:        streetSuffix + `\s+(\d{1,4}[a-z]?)\b`,
		Group:       1,
		Priority:    28,
		Description: "House number following a German-style street name",
	},
	{
		Name:        "street_number_fr",
		Type:        entity.StreetNumber,
		Expr:        `\b(\d{1,4}),? (?:[Rr]ue|[Aa]venue|[Cc]hemin|[Rr]oute|[Bb]oulevard)\b`,
		Group:       1,
		Priority:    28,
		Description: "House number preceding a French-style street name",
	},
	{
		Name:        "postal_code",
		Type:        entity.PostalCode,
		Expr:        `(?:^|[^\d])((?:CH-)?[1-9]\d{3,4})\s+\p{Lu}\p{Ll}+`,
		Group:       1,
		Priority:    32,
		Description: "Postal code directly followed by a place name",
	},
	{
		Name:        "city",
		Type:        entity.City,
		Expr:        `(?:^|[^\d])(?:CH-)?[1-9]\d{3,4}\s+(\p{Lu}\p{Ll}+(?:[ \-]\p{Lu}\p{Ll}+)?)`,
		Group:       1,
		Priority:    30,
		Description: "Place name directly following a postal code",
	},
	{
		Name:        "country",
		Type:        entity.Country,
		Expr:        `(?:^|[^\p{L}])(Schweiz|Suisse|Svizzera|Switzerland|Liechtenstein|Deutschland|Germany|Allemagne|Frankreich|France|Italien|Italia|Italy|Österreich|Austria|Autriche)(?:[^\p{L}]|$)`,
		Group:       1,
		Priority:    26,
		Description: "Country name in German, French, Italian or English",
	},
	{
		Name:        "date_dotted",
		Type:        entity.Date,
		Expr:        `\b\d{1,2}\.\s?\d{1,2}\.\s?\d{2,4}\b`,
		Priority:    20,
		Description: "Dotted date: 15.03.2024",
	},
	{
		Name:        "amount",
		Type:        entity.Amount,
		Expr:        `(?:\b(?:CHF|EUR|Fr\.)|€)\s?\d{1,3}(?:['’]?\d{3})*(?:[.,]\d{2})?`,
		Priority:    18,
		Description: "Currency amount: CHF 1'250.00",
	},
}

// NewPatternManager creates a new pattern manager with the built-in library
func NewPatternManager() *PatternManager {
	pm, err := NewPatternManagerFromDefinitions(DefaultDefinitions)
	if err != nil {
		panic(fmt.Sprintf("built-in pattern library does not compile: %v", err))
	}
	return pm
}

// NewPatternManagerFromDefinitions compiles a custom library
func NewPatternManagerFromDefinitions(defs []Definition) (*PatternManager, error) {
	pm := &PatternManager{patterns: make([]Pattern, 0, len(defs))}
	for _, def := range defs {
		if !def.Type.Known() {
			return nil, fmt.Errorf("pattern %q: unknown entity type %q", def.Name, def.Type)
		}
		re, err := regexp.Compile(def.Expr)
		if err != nil {
			return nil, fmt.Errorf("pattern %q: %w", def.Name, err)
		}
		if def.Group < 0 || def.Group > re.NumSubexp() {
			return nil, fmt.Errorf("pattern %q: capture group %d out of range", def.Name, def.Group)
		}
		pm.patterns = append(pm.patterns, Pattern{
			Regexp:      re,
			Name:        def.Name,
			Type:        def.Type,
			Group:       def.Group,
			Priority:    def.Priority,
			Description: def.Description,
		})
	}

	// Stable so equal priorities keep definition order
	sort.SliceStable(pm.patterns, func(i, j int) bool {
		return pm.patterns[i].Priority > pm.patterns[j].Priority
	})
	return pm, nil
}

// Patterns returns the compiled library in evaluation order
func (pm *PatternManager) Patterns() []Pattern {
	return append([]Pattern(nil), pm.patterns...)
}

// PatternMatch is a single rule hit
type PatternMatch struct {
	Pattern Pattern
	Text    string
	Start   int
	End     int
}

// FindMatches runs every pattern over text
func (pm *PatternManager) FindMatches(text string) []PatternMatch {
	var matches []PatternMatch
	for _, p := range pm.patterns {
		for _, loc := range p.Regexp.FindAllStringSubmatchIndex(text, -1) {
			start, end := loc[2*p.Group], loc[2*p.Group+1]
			if start < 0 || start >= end {
				continue
			}
			matches = append(matches, PatternMatch{
				Pattern: p,
				Text:    text[start:end],
				Start:   start,
				End:     end,
			})
		}
	}
	return matches
}
