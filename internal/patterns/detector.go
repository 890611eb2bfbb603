// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package patterns

import (
	"sort"

	"pii-consolidator/internal/entity"
)

// DefaultRuleConfidence is assigned to every rule-matched entity
const DefaultRuleConfidence = 0.9

// Detector turns rule matches into entities
type Detector struct {
	patternManager *PatternManager
	confidence     float64
}

// NewDetector creates a detector over the built-in library
func NewDetector() *Detector {
	return &Detector{
		patternManager: NewPatternManager(),
		confidence:     DefaultRuleConfidence,
	}
}

// NewDetectorWithPatterns creates a detector over a custom library
func NewDetectorWithPatterns(pm *PatternManager) *Detector {
	return &Detector{patternManager: pm, confidence: DefaultRuleConfidence}
}

// Detect returns every rule match as a RULE entity. Matches may overlap;
// the overlap resolver decides between them.
func (d *Detector) Detect(text string) []entity.Entity {
	matches := d.patternManager.FindMatches(text)

	sort.SliceStable(matches, func(i, j int) bool {
		if matches[i].Start != matches[j].Start {
			return matches[i].Start < matches[j].Start
		}
		return matches[i].Pattern.Priority > matches[j].Pattern.Priority
	})

	entities := make([]entity.Entity, 0, len(matches))
	type spanKey struct {
		typ        entity.Type
		start, end int
	}
	seen := make(map[spanKey]bool, len(matches))
	for _, m := range matches {
		// Two rules of the same type can hit the same span
		key := spanKey{m.Pattern.Type, m.Start, m.End}
		if seen[key] {
			continue
		}
		seen[key] = true

		entities = append(entities, entity.Entity{
			ID:         entity.NewID(),
			Type:       m.Pattern.Type,
			Text:       m.Text,
			Start:      m.Start,
			End:        m.End,
			Confidence: d.confidence,
			Source:     entity.SourceRule,
			Metadata:   entity.Metadata{Pattern: m.Pattern.Name},
		})
	}
	return entities
}
