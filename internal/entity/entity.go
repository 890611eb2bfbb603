// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package entity

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// Source describes where an entity came from
type Source int

const (
	SourceML Source = iota
	SourceRule
	SourceBoth
	SourceManual
	SourceLinked
	SourceConsolidated
)

var sourceNames = [...]string{
	SourceML:           "ML",
	SourceRule:         "RULE",
	SourceBoth:         "BOTH",
	SourceManual:       "MANUAL",
	SourceLinked:       "LINKED",
	SourceConsolidated: "CONSOLIDATED",
}

// String returns the provenance tag
func (s Source) String() string {
	if int(s) >= 0 && int(s) < len(sourceNames) {
		return sourceNames[s]
	}
	return fmt.Sprintf("Source(%d)", int(s))
}

// ParseSource resolves a provenance tag, case-insensitively
func ParseSource(tag string) (Source, error) {
	upper := strings.ToUpper(strings.TrimSpace(tag))
	for i, name := range sourceNames {
		if name == upper {
			return Source(i), nil
		}
	}
	return 0, fmt.Errorf("unknown entity source: %q", tag)
}

// MarshalJSON encodes the source as its tag
func (s Source) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.String())
}

// UnmarshalJSON decodes a tag such as "RULE"
func (s *Source) UnmarshalJSON(data []byte) error {
	var tag string
	if err := json.Unmarshal(data, &tag); err != nil {
		return err
	}
	parsed, err := ParseSource(tag)
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}

// MarshalYAML encodes the source as its tag
func (s Source) MarshalYAML() (interface{}, error) {
	return s.String(), nil
}

// Span is a half-open byte range [Start, End) into the document text
type Span struct {
	Start int `json:"start" yaml:"start"`
	End   int `json:"end" yaml:"end"`
}

// Len returns the span length
func (s Span) Len() int {
	return s.End - s.Start
}

// Valid reports whether the span is non-degenerate
func (s Span) Valid() bool {
	return s.Start >= 0 && s.Start < s.End
}

// Overlaps reports whether two spans intersect
func (s Span) Overlaps(o Span) bool {
	return s.Start < o.End && o.Start < s.End
}

// Component is one fragment absorbed into a consolidated entity
type Component struct {
	Type   Type   `json:"type" yaml:"type"`
	Text   string `json:"text" yaml:"text"`
	Start  int    `json:"start" yaml:"start"`
	End    int    `json:"end" yaml:"end"`
	Linked bool   `json:"linked" yaml:"linked"`
}

// Metadata holds the traceability fields the engine itself reads or writes
type Metadata struct {
	// Marks an entity of any type as an address-fragment candidate
	AddressComponent bool `json:"isAddressComponent,omitempty" yaml:"is_address_component,omitempty"`

	// Pre-consolidation fragment spans
	OriginalSpans  []Span `json:"originalSpans,omitempty" yaml:"original_spans,omitempty"`
	ComponentCount int    `json:"componentCount,omitempty" yaml:"component_count,omitempty"`

	// Set on raw fragments kept with showComponents
	Absorbed         *bool  `json:"absorbed,omitempty" yaml:"absorbed,omitempty"`
	ConsolidatedInto string `json:"consolidatedInto,omitempty" yaml:"consolidated_into,omitempty"`

	// Detector traceability
	Pattern  string `json:"pattern,omitempty" yaml:"pattern,omitempty"`
	RawLabel string `json:"rawLabel,omitempty" yaml:"raw_label,omitempty"`
}

// Entity is a detected candidate PII span
type Entity struct {
	ID         string      `json:"id" yaml:"id"`
	Type       Type        `json:"type" yaml:"type"`
	Text       string      `json:"text" yaml:"text"`
	Start      int         `json:"start" yaml:"start"`
	End        int         `json:"end" yaml:"end"`
	Confidence float64     `json:"confidence" yaml:"confidence"`
	Source     Source      `json:"source" yaml:"source"`
	LogicalID  string      `json:"logicalId,omitempty" yaml:"logical_id,omitempty"`
	Components []Component `json:"components,omitempty" yaml:"components,omitempty"`
	Metadata   Metadata    `json:"metadata,omitempty" yaml:"metadata,omitempty"`

	// Review fields, carried through unchanged
	FlaggedForReview bool            `json:"flaggedForReview,omitempty" yaml:"flagged_for_review,omitempty"`
	Validation       json.RawMessage `json:"validation,omitempty" yaml:"-"`
	Context          json.RawMessage `json:"context,omitempty" yaml:"-"`
}

// Span returns the entity's range
func (e Entity) Span() Span {
	return Span{Start: e.Start, End: e.End}
}

// Len returns the span length
func (e Entity) Len() int {
	return e.End - e.Start
}

// Overlaps reports whether the two entities' spans intersect
func (e Entity) Overlaps(o Entity) bool {
	return e.Span().Overlaps(o.Span())
}

// IsFragmentCandidate reports whether the entity takes part in address grouping
func (e Entity) IsFragmentCandidate() bool {
	return e.Type.IsAddressFragment() || e.Metadata.AddressComponent
}

// Clone returns a copy whose slices are not shared with e
func (e Entity) Clone() Entity {
	c := e
	if e.Components != nil {
		c.Components = append([]Component(nil), e.Components...)
	}
	if e.Metadata.OriginalSpans != nil {
		c.Metadata.OriginalSpans = append([]Span(nil), e.Metadata.OriginalSpans...)
	}
	if e.Metadata.Absorbed != nil {
		v := *e.Metadata.Absorbed
		c.Metadata.Absorbed = &v
	}
	return c
}

// CloneAll copies a list so callers' data is never modified
func CloneAll(entities []Entity) []Entity {
	out := make([]Entity, len(entities))
	for i, e := range entities {
		out[i] = e.Clone()
	}
	return out
}

// NewID returns a fresh opaque identifier
func NewID() string {
	return uuid.New().String()
}
