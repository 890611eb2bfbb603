// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

// Package address merges fragmented address components into single
// structured address entities.
package address

import (
	"sort"
	"strings"

	"pii-consolidator/internal/entity"
)

// Options controls fragment grouping
type Options struct {
	MaxGap                int
	MinComponents         int
	MinConfidence         float64
	ShowComponents        bool
	PreserveOriginalSpans bool
}

// Result is the outcome of one consolidation pass
type Result struct {
	Entities     []entity.Entity
	Consolidated int
}

// Consolidate replaces qualifying fragment clusters with one address entity
// each. It never fails: sparse or malformed input yields the input unchanged.
func Consolidate(entities []entity.Entity, text string, opts Options) Result {
	var fragments, others []entity.Entity
	for _, e := range entities {
		switch {
		case e.Type.IsAddress() && len(e.Components) > 0:
			others = append(others, e)
		case e.IsFragmentCandidate():
			fragments = append(fragments, e)
		default:
			others = append(others, e)
		}
	}

	if len(fragments) < opts.MinComponents || len(fragments) == 0 {
		return Result{Entities: entity.CloneAll(entities)}
	}

	sort.SliceStable(fragments, func(i, j int) bool {
		return fragments[i].Start < fragments[j].Start
	})

	var addresses []entity.Entity
	// parent address ID per fragment position; IDs may be empty or repeated
	parents := make([]string, len(fragments))

	for _, group := range groupFragments(fragments, text, opts) {
		members := make([]entity.Entity, len(group))
		for i, idx := range group {
			members[i] = fragments[idx]
		}
		addr, ok := buildAddress(members, text, opts)
		if !ok {
			continue
		}
		addresses = append(addresses, addr)
		for _, idx := range group {
			parents[idx] = addr.ID
		}
	}

	if len(addresses) == 0 {
		out := entity.CloneAll(entities)
		if opts.ShowComponents {
			for i := range out {
				if out[i].IsFragmentCandidate() {
					annotate(&out[i], "")
				}
			}
		}
		return Result{Entities: out}
	}

	out := make([]entity.Entity, 0, len(others)+len(fragments)+len(addresses))
	for _, e := range others {
		out = append(out, e.Clone())
	}
	out = append(out, addresses...)
	for i, f := range fragments {
		parent := parents[i]
		if parent != "" && !opts.ShowComponents {
			continue
		}
		c := f.Clone()
		if opts.ShowComponents {
			annotate(&c, parent)
		}
		out = append(out, c)
	}

	// Address before its own first fragment when spans start together
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Start != out[j].Start {
			return out[i].Start < out[j].Start
		}
		return out[i].Len() > out[j].Len()
	})

	return Result{Entities: out, Consolidated: len(addresses)}
}

// groupFragments walks sorted fragments and splits them on gaps. A line
// break between two fragments doubles the allowed gap. Groups hold
// positions into fragments.
func groupFragments(fragments []entity.Entity, text string, opts Options) [][]int {
	var groups [][]int
	current := []int{0}

	closeGroup := func() {
		if len(current) >= opts.MinComponents {
			groups = append(groups, current)
		}
	}

	for i := 1; i < len(fragments); i++ {
		prev, next := fragments[current[len(current)-1]], fragments[i]
		gap := next.Start - prev.End

		allowed := opts.MaxGap
		if containsLineBreak(text, prev.End, next.Start) {
			allowed = opts.MaxGap * 2
		}

		if gap >= 0 && gap <= allowed {
			current = append(current, i)
			continue
		}
		closeGroup()
		current = []int{i}
	}
	closeGroup()

	return groups
}

func containsLineBreak(text string, from, to int) bool {
	if from < 0 {
		from = 0
	}
	if to > len(text) {
		to = len(text)
	}
	if from >= to {
		return false
	}
	return strings.ContainsAny(text[from:to], "\n\r")
}

// buildAddress turns one group into a consolidated entity, or reports false
// when the group fails the confidence gate or lies outside the text.
func buildAddress(group []entity.Entity, text string, opts Options) (entity.Entity, bool) {
	sum := 0.0
	for _, f := range group {
		sum += f.Confidence
	}
	mean := sum / float64(len(group))
	if mean < opts.MinConfidence {
		return entity.Entity{}, false
	}

	start, end := group[0].Start, group[len(group)-1].End
	if start < 0 || end > len(text) || start >= end {
		return entity.Entity{}, false
	}

	components := make([]entity.Component, len(group))
	for i, f := range group {
		components[i] = entity.Component{
			Type:   f.Type,
			Text:   f.Text,
			Start:  f.Start,
			End:    f.End,
			Linked: true,
		}
	}

	addr := entity.Entity{
		ID:         entity.NewID(),
		Type:       Classify(components),
		Text:       text[start:end],
		Start:      start,
		End:        end,
		Confidence: mean,
		Source:     entity.SourceConsolidated,
		Components: components,
		Metadata:   entity.Metadata{ComponentCount: len(components)},
	}

	if opts.PreserveOriginalSpans {
		spans := make([]entity.Span, len(group))
		for i, f := range group {
			spans[i] = f.Span()
		}
		addr.Metadata.OriginalSpans = spans
	}

	return addr, true
}

func annotate(e *entity.Entity, parent string) {
	absorbed := parent != ""
	e.Metadata.Absorbed = &absorbed
	e.Metadata.ConsolidatedInto = parent
}
