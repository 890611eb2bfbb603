// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

// Package redactors replaces consolidated entities in document text with
// pseudonyms, one per logical entity.
package redactors

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
	"unicode"

	"pii-consolidator/internal/entity"
)

// RedactionStrategy defines the type of replacement to apply
type RedactionStrategy int

const (
	// RedactionPlaceholder replaces text with a bracketed pseudonym like [PERSON_1]
	RedactionPlaceholder RedactionStrategy = iota
	// RedactionMask keeps the shape of the text: letters become X, digits 0
	RedactionMask
)

// String returns the string representation of the redaction strategy
func (rs RedactionStrategy) String() string {
	switch rs {
	case RedactionPlaceholder:
		return "placeholder"
	case RedactionMask:
		return "mask"
	default:
		return "unknown"
	}
}

// ParseRedactionStrategy converts a string to RedactionStrategy
func ParseRedactionStrategy(s string) (RedactionStrategy, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "placeholder", "":
		return RedactionPlaceholder, nil
	case "mask":
		return RedactionMask, nil
	}
	return 0, NewRedactionError(ErrorConfiguration, fmt.Sprintf("unknown redaction strategy %q", s), "", nil)
}

// Replacement records one substitution
type Replacement struct {
	EntityID  string      `json:"entityId" yaml:"entity_id"`
	Type      entity.Type `json:"type" yaml:"type"`
	Start     int         `json:"start" yaml:"start"`
	End       int         `json:"end" yaml:"end"`
	Pseudonym string      `json:"pseudonym" yaml:"pseudonym"`
}

// RedactionResult is the pseudonymized text plus what was replaced
type RedactionResult struct {
	Text         string        `json:"text" yaml:"text"`
	Replacements []Replacement `json:"replacements" yaml:"replacements"`
	Skipped      int           `json:"skipped" yaml:"skipped"`
}

// Pseudonymize replaces every entity span in text. Entities sharing a logical
// ID share a pseudonym; the rest get their own, numbered after the logical
// IDs of the same base type. A span nested in or overlapping an earlier
// replacement is skipped.
func Pseudonymize(text string, entities []entity.Entity, strategy RedactionStrategy) (*RedactionResult, error) {
	if strategy != RedactionPlaceholder && strategy != RedactionMask {
		return nil, NewRedactionError(ErrorConfiguration, "unsupported redaction strategy", "", nil)
	}

	ordered := entity.CloneAll(entities)
	sort.SliceStable(ordered, func(i, j int) bool {
		if ordered[i].Start != ordered[j].Start {
			return ordered[i].Start < ordered[j].Start
		}
		return ordered[i].Len() > ordered[j].Len()
	})

	for _, e := range ordered {
		if e.Start < 0 || e.Start >= e.End || e.End > len(text) {
			return nil, NewRedactionError(ErrorPositionMapping,
				fmt.Sprintf("span [%d,%d) outside text of length %d", e.Start, e.End, len(text)), e.ID, nil)
		}
	}

	labels := assignLabels(ordered)

	result := &RedactionResult{Replacements: []Replacement{}}
	var builder strings.Builder
	cursor := 0
	for i, e := range ordered {
		if e.Start < cursor {
			result.Skipped++
			continue
		}

		pseudonym := "[" + labels[i] + "]"
		if strategy == RedactionMask {
			pseudonym = mask(text[e.Start:e.End])
		}

		builder.WriteString(text[cursor:e.Start])
		builder.WriteString(pseudonym)
		cursor = e.End

		result.Replacements = append(result.Replacements, Replacement{
			EntityID:  e.ID,
			Type:      e.Type,
			Start:     e.Start,
			End:       e.End,
			Pseudonym: pseudonym,
		})
	}
	builder.WriteString(text[cursor:])
	result.Text = builder.String()

	return result, nil
}

// assignLabels picks a label per entity. Counters are local to the call.
func assignLabels(ordered []entity.Entity) []string {
	next := make(map[entity.Type]int)
	for _, e := range ordered {
		base, n, ok := splitLogicalID(e.LogicalID)
		if ok && n > next[base] {
			next[base] = n
		}
	}

	labels := make([]string, len(ordered))
	for i, e := range ordered {
		if e.LogicalID != "" {
			labels[i] = e.LogicalID
			continue
		}
		base := e.Type.BaseType()
		next[base]++
		labels[i] = fmt.Sprintf("%s_%d", base, next[base])
	}
	return labels
}

// splitLogicalID parses BASE_n
func splitLogicalID(id string) (entity.Type, int, bool) {
	i := strings.LastIndex(id, "_")
	if i <= 0 {
		return "", 0, false
	}
	n, err := strconv.Atoi(id[i+1:])
	if err != nil {
		return "", 0, false
	}
	return entity.Type(id[:i]), n, true
}

func mask(s string) string {
	return strings.Map(func(r rune) rune {
		switch {
		case unicode.IsLetter(r):
			return 'X'
		case unicode.IsDigit(r):
			return '0'
		}
		return r
	}, s)
}
