// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package shared

import (
	"sort"

	"pii-consolidator/internal/consolidation"
	"pii-consolidator/internal/entity"
	"pii-consolidator/internal/formatters"
)

// RedactedText replaces entity text when ShowText is off
const RedactedText = "[REDACTED]"

// Response represents the top-level structure for JSON/YAML output
type Response struct {
	Documents []consolidation.Result `json:"documents" yaml:"documents"`
	Summary   Summary                `json:"summary" yaml:"summary"`
}

// Summary aggregates counts across every document
type Summary struct {
	Documents             int            `json:"documents" yaml:"documents"`
	Entities              int            `json:"entities" yaml:"entities"`
	OverlapsResolved      int            `json:"overlapsResolved" yaml:"overlaps_resolved"`
	AddressesConsolidated int            `json:"addressesConsolidated" yaml:"addresses_consolidated"`
	EntitiesLinked        int            `json:"entitiesLinked" yaml:"entities_linked"`
	RejectedEntities      int            `json:"rejectedEntities" yaml:"rejected_entities"`
	ByType                map[string]int `json:"byType" yaml:"by_type"`
}

// GetConfidenceLevel returns the confidence level as a string
func GetConfidenceLevel(confidence float64) string {
	switch {
	case confidence >= 0.9:
		return "HIGH"
	case confidence >= 0.6:
		return "MEDIUM"
	default:
		return "LOW"
	}
}

// MaskEntities returns copies of entities with text replaced unless
// ShowText is set
func MaskEntities(entities []entity.Entity, options formatters.FormatterOptions) []entity.Entity {
	out := entity.CloneAll(entities)
	if options.ShowText {
		return out
	}
	for i := range out {
		out[i].Text = RedactedText
		for j := range out[i].Components {
			out[i].Components[j].Text = RedactedText
		}
	}
	return out
}

// ConvertResults builds the shared JSON/YAML response
func ConvertResults(results []*consolidation.Result, options formatters.FormatterOptions) Response {
	resp := Response{
		Documents: make([]consolidation.Result, 0, len(results)),
		Summary:   Summary{ByType: make(map[string]int)},
	}

	for _, r := range results {
		if r == nil {
			continue
		}
		doc := *r
		doc.Entities = MaskEntities(r.Entities, options)
		resp.Documents = append(resp.Documents, doc)

		resp.Summary.Documents++
		resp.Summary.Entities += len(r.Entities)
		resp.Summary.OverlapsResolved += r.Metadata.OverlapsResolved
		resp.Summary.AddressesConsolidated += r.Metadata.AddressesConsolidated
		resp.Summary.EntitiesLinked += r.Metadata.EntitiesLinked
		resp.Summary.RejectedEntities += r.Metadata.RejectedEntities
		for _, e := range r.Entities {
			resp.Summary.ByType[string(e.Type)]++
		}
	}

	return resp
}

// SortedTypes returns the keys of a by-type count map in order
func SortedTypes(byType map[string]int) []string {
	types := make([]string, 0, len(byType))
	for t := range byType {
		types = append(types, t)
	}
	sort.Strings(types)
	return types
}
