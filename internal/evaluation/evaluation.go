// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

// Package evaluation scores consolidated entities against a hand-labeled
// golden list.
package evaluation

import (
	"sort"

	"pii-consolidator/internal/entity"
	"pii-consolidator/internal/linker"
)

// Scores holds confusion counts and the derived rates. Rates with a zero
// denominator are reported as 0.
type Scores struct {
	TruePositives  int     `json:"truePositives" yaml:"true_positives"`
	FalsePositives int     `json:"falsePositives" yaml:"false_positives"`
	FalseNegatives int     `json:"falseNegatives" yaml:"false_negatives"`
	Precision      float64 `json:"precision" yaml:"precision"`
	Recall         float64 `json:"recall" yaml:"recall"`
	F1             float64 `json:"f1" yaml:"f1"`
}

// Match pairs a predicted entity with the golden entity it was credited to
type Match struct {
	PredictedID string `json:"predictedId" yaml:"predicted_id"`
	GoldenID    string `json:"goldenId" yaml:"golden_id"`
	ByText      bool   `json:"byText,omitempty" yaml:"by_text,omitempty"`
}

// Report is the outcome of one comparison
type Report struct {
	Overall Scores                 `json:"overall" yaml:"overall"`
	ByType  map[entity.Type]Scores `json:"byType" yaml:"by_type"`
	Matches []Match                `json:"matches" yaml:"matches"`
}

// Compare matches predicted entities one-to-one against golden entities of
// the same base type. Span overlap is tried first, then equal normalized
// text. Unmatched predictions are false positives, unmatched golden
// entities false negatives.
func Compare(predicted, golden []entity.Entity) Report {
	matchedPred := make([]bool, len(predicted))
	matchedGold := make([]bool, len(golden))
	var matches []Match

	link := func(byText bool, ok func(p, g entity.Entity) bool) {
		for gi, g := range golden {
			if matchedGold[gi] {
				continue
			}
			for pi, p := range predicted {
				if matchedPred[pi] || p.Type.BaseType() != g.Type.BaseType() || !ok(p, g) {
					continue
				}
				matchedPred[pi], matchedGold[gi] = true, true
				matches = append(matches, Match{PredictedID: p.ID, GoldenID: g.ID, ByText: byText})
				break
			}
		}
	}

	link(false, func(p, g entity.Entity) bool { return p.Overlaps(g) })
	link(true, func(p, g entity.Entity) bool {
		key := linker.Normalize(g.Text)
		return key != "" && linker.Normalize(p.Text) == key
	})

	counts := make(map[entity.Type]*Scores)
	bucket := func(t entity.Type) *Scores {
		base := t.BaseType()
		if counts[base] == nil {
			counts[base] = &Scores{}
		}
		return counts[base]
	}

	var overall Scores
	for pi, p := range predicted {
		if matchedPred[pi] {
			bucket(p.Type).TruePositives++
			overall.TruePositives++
		} else {
			bucket(p.Type).FalsePositives++
			overall.FalsePositives++
		}
	}
	for gi, g := range golden {
		if !matchedGold[gi] {
			bucket(g.Type).FalseNegatives++
			overall.FalseNegatives++
		}
	}

	report := Report{
		Overall: finish(overall),
		ByType:  make(map[entity.Type]Scores, len(counts)),
		Matches: matches,
	}
	for t, s := range counts {
		report.ByType[t] = finish(*s)
	}
	if report.Matches == nil {
		report.Matches = []Match{}
	}
	return report
}

// Aggregate sums the counts of several reports, typically one per document,
// and recomputes the rates
func Aggregate(reports []Report) Report {
	var overall Scores
	byType := make(map[entity.Type]Scores)
	matches := []Match{}

	for _, r := range reports {
		overall = add(overall, r.Overall)
		for t, s := range r.ByType {
			byType[t] = add(byType[t], s)
		}
		matches = append(matches, r.Matches...)
	}

	for t, s := range byType {
		byType[t] = finish(s)
	}
	return Report{Overall: finish(overall), ByType: byType, Matches: matches}
}

func add(a, b Scores) Scores {
	return Scores{
		TruePositives:  a.TruePositives + b.TruePositives,
		FalsePositives: a.FalsePositives + b.FalsePositives,
		FalseNegatives: a.FalseNegatives + b.FalseNegatives,
	}
}

// Types returns the report's base types in sorted order
func (r Report) Types() []entity.Type {
	types := make([]entity.Type, 0, len(r.ByType))
	for t := range r.ByType {
		types = append(types, t)
	}
	sort.Slice(types, func(i, j int) bool { return types[i] < types[j] })
	return types
}

func finish(s Scores) Scores {
	if d := s.TruePositives + s.FalsePositives; d > 0 {
		s.Precision = float64(s.TruePositives) / float64(d)
	}
	if d := s.TruePositives + s.FalseNegatives; d > 0 {
		s.Recall = float64(s.TruePositives) / float64(d)
	}
	if s.Precision+s.Recall > 0 {
		s.F1 = 2 * s.Precision * s.Recall / (s.Precision + s.Recall)
	}
	return s
}
