// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package patterns

import (
	"sort"
	"strings"

	"pii-consolidator/internal/entity"
)

// labelAliases maps common NER label spellings onto the taxonomy
var labelAliases = map[string]entity.Type{
	"PER":          entity.Person,
	"PERS":         entity.Person,
	"PERSON":       entity.Person,
	"NAME":         entity.PersonName,
	"PERSON_NAME":  entity.PersonName,
	"ORG":          entity.Organization,
	"COMPANY":      entity.Organization,
	"LOC":          entity.Location,
	"GPE":          entity.Location,
	"ADDR":         entity.Address,
	"STREET":       entity.StreetName,
	"STREETNAME":   entity.StreetName,
	"HOUSENUMBER":  entity.StreetNumber,
	"HOUSE_NUMBER": entity.StreetNumber,
	"ZIP":          entity.PostalCode,
	"ZIPCODE":      entity.PostalCode,
	"POSTCODE":     entity.PostalCode,
	"PLZ":          entity.PostalCode,
	"TOWN":         entity.City,
	"STATE":        entity.Region,
	"CANTON":       entity.Region,
	"AHV":          entity.SwissAVS,
	"AVS":          entity.SwissAVS,
	"MAIL":         entity.Email,
	"TEL":          entity.Phone,
	"TELEPHONE":    entity.Phone,
	"PHONE_NUMBER": entity.Phone,
	"PHONENUMBER":  entity.Phone,
	"VAT":          entity.VATNumber,
	"UID":          entity.VATNumber,
	"MONEY":        entity.Amount,
	"TIME":         entity.Date,
	"MISC":         entity.Unknown,
	"O":            entity.Unknown,
}

var bioPrefixes = []string{"B-", "I-", "E-", "S-", "L-", "U-", "B_", "I_", "E_", "S_", "L_", "U_"}

// splitBIO separates a tagging prefix from the label body
func splitBIO(raw string) (prefix byte, body string) {
	label := strings.ToUpper(strings.TrimSpace(raw))
	for _, p := range bioPrefixes {
		if strings.HasPrefix(label, p) && len(label) > len(p) {
			return p[0], label[len(p):]
		}
	}
	return 0, label
}

// NormalizeLabel maps a raw ML label, possibly BIO-prefixed, onto the taxonomy.
// Labels it cannot place map to UNKNOWN with ok=false.
func NormalizeLabel(raw string) (entity.Type, bool) {
	_, body := splitBIO(raw)
	body = strings.ReplaceAll(body, "-", "_")

	if t, err := entity.ParseType(body); err == nil {
		return t, t != entity.Unknown
	}
	if t, ok := labelAliases[body]; ok {
		return t, t != entity.Unknown
	}
	return entity.Unknown, false
}

// Prediction is one token- or span-level output of the ML recognizer
type Prediction struct {
	Label string  `json:"label"`
	Text  string  `json:"text,omitempty"`
	Start int     `json:"start"`
	End   int     `json:"end"`
	Score float64 `json:"score"`
}

// FromPredictions aggregates BIO-tagged predictions into ML entities.
// An I-/E- token continues the open span when the type matches and the gap
// is at most one character; any other token opens a new span.
func FromPredictions(text string, predictions []Prediction) []entity.Entity {
	preds := append([]Prediction(nil), predictions...)
	sort.SliceStable(preds, func(i, j int) bool { return preds[i].Start < preds[j].Start })

	type openSpan struct {
		typ      entity.Type
		rawLabel string
		start    int
		end      int
		scores   []float64
	}

	var out []entity.Entity
	var cur *openSpan

	flush := func() {
		if cur == nil {
			return
		}
		sum := 0.0
		for _, s := range cur.scores {
			sum += s
		}
		spanText := ""
		if cur.start >= 0 && cur.end <= len(text) && cur.start < cur.end {
			spanText = text[cur.start:cur.end]
		}
		out = append(out, entity.Entity{
			ID:         entity.NewID(),
			Type:       cur.typ,
			Text:       spanText,
			Start:      cur.start,
			End:        cur.end,
			Confidence: sum / float64(len(cur.scores)),
			Source:     entity.SourceML,
			Metadata:   entity.Metadata{RawLabel: cur.rawLabel},
		})
		cur = nil
	}

	for _, p := range preds {
		prefix, body := splitBIO(p.Label)
		if body == "O" {
			flush()
			continue
		}
		typ, _ := NormalizeLabel(p.Label)

		continues := cur != nil && cur.typ == typ && (prefix == 'I' || prefix == 'E' || prefix == 'L') &&
			p.Start-cur.end >= 0 && p.Start-cur.end <= 1
		if continues {
			if p.End > cur.end {
				cur.end = p.End
			}
			cur.scores = append(cur.scores, p.Score)
			if prefix == 'E' || prefix == 'L' {
				flush()
			}
			continue
		}

		flush()
		cur = &openSpan{typ: typ, rawLabel: p.Label, start: p.Start, end: p.End, scores: []float64{p.Score}}
		if prefix == 'S' || prefix == 'U' {
			flush()
		}
	}
	flush()

	return out
}

// MergeDetections combines ML and rule output. Entities both detectors found
// with the same span and type collapse into one BOTH entity.
func MergeDetections(ml, rule []entity.Entity) []entity.Entity {
	type spanKey struct {
		typ        entity.Type
		start, end int
	}

	ruleIndex := make(map[spanKey]int, len(rule))
	for i, e := range rule {
		ruleIndex[spanKey{e.Type, e.Start, e.End}] = i
	}

	merged := make([]entity.Entity, 0, len(ml)+len(rule))
	usedRule := make(map[int]bool)
	for _, e := range ml {
		if i, ok := ruleIndex[spanKey{e.Type, e.Start, e.End}]; ok && !usedRule[i] {
			usedRule[i] = true
			both := e.Clone()
			both.Source = entity.SourceBoth
			if rule[i].Confidence > both.Confidence {
				both.Confidence = rule[i].Confidence
			}
			both.Metadata.Pattern = rule[i].Metadata.Pattern
			merged = append(merged, both)
			continue
		}
		merged = append(merged, e.Clone())
	}
	for i, e := range rule {
		if !usedRule[i] {
			merged = append(merged, e.Clone())
		}
	}
	return merged
}
