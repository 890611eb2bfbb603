// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

// Package consolidation runs overlap resolution, address consolidation and
// entity linking over the detections of one document.
package consolidation

import (
	"fmt"
	"time"

	"pii-consolidator/internal/address"
	"pii-consolidator/internal/config"
	"pii-consolidator/internal/entity"
	"pii-consolidator/internal/linker"
	"pii-consolidator/internal/observability"
	"pii-consolidator/internal/overlap"
)

// Document is the input of one consolidation run
type Document struct {
	ID       string          `json:"id,omitempty" yaml:"id,omitempty"`
	Text     string          `json:"text" yaml:"text"`
	Entities []entity.Entity `json:"entities" yaml:"entities"`
}

// Metadata summarizes what a run did
type Metadata struct {
	RunID                 string `json:"runId" yaml:"run_id"`
	OverlapsResolved      int    `json:"overlapsResolved" yaml:"overlaps_resolved"`
	AddressesConsolidated int    `json:"addressesConsolidated" yaml:"addresses_consolidated"`
	EntitiesLinked        int    `json:"entitiesLinked" yaml:"entities_linked"`
	OriginalEntityCount   int    `json:"originalEntityCount" yaml:"original_entity_count"`
	RejectedEntities      int    `json:"rejectedEntities" yaml:"rejected_entities"`
	DurationMs            int64  `json:"durationMs" yaml:"duration_ms"`
}

// Result holds the consolidated entities of one document
type Result struct {
	DocumentID string          `json:"documentId,omitempty" yaml:"document_id,omitempty"`
	Entities   []entity.Entity `json:"entities" yaml:"entities"`
	Metadata   Metadata        `json:"metadata" yaml:"metadata"`
}

// Engine runs consolidation passes. An Engine holds no per-run state and is
// safe for concurrent use.
type Engine struct {
	observer *observability.StandardObserver
}

// NewEngine creates an engine reporting to observer, which may be nil
func NewEngine(observer *observability.StandardObserver) *Engine {
	return &Engine{observer: observer}
}

// Consolidate runs a default engine without observability
func Consolidate(doc Document, opts config.Options) (*Result, error) {
	return NewEngine(nil).Consolidate(doc, opts)
}

// Consolidate runs the enabled passes over doc. Options are normalized
// first; the only error is an invalid option set. The input document is
// never modified.
func (e *Engine) Consolidate(doc Document, opts config.Options) (*Result, error) {
	opts, err := opts.Normalize()
	if err != nil {
		return nil, fmt.Errorf("invalid consolidation options: %w", err)
	}

	start := time.Now()
	runID := e.observer.NewRunID()

	working, rejected := validSpans(doc.Entities, doc.Text)
	meta := Metadata{
		RunID:               runID,
		OriginalEntityCount: len(doc.Entities),
		RejectedEntities:    rejected,
	}

	if opts.EnableOverlapResolution {
		finish := e.observer.StartTiming("overlap", "resolve", runID)
		res := overlap.Resolve(working, opts.OverlapStrategy, overlap.Priorities(opts.PriorityOverrides()))
		working = res.Entities
		meta.OverlapsResolved = res.Removed
		finish(true, map[string]interface{}{"removed": res.Removed, "remaining": len(working)})
	}

	if opts.EnableAddressConsolidation {
		finish := e.observer.StartTiming("address", "merge", runID)
		res := address.Consolidate(working, doc.Text, address.Options{
			MaxGap:                opts.AddressMaxGap,
			MinComponents:         opts.MinAddressComponents,
			MinConfidence:         opts.MinConsolidationConfidence,
			ShowComponents:        opts.ShowComponents,
			PreserveOriginalSpans: opts.PreserveOriginalSpans,
		})
		working = res.Entities
		meta.AddressesConsolidated = res.Consolidated
		finish(true, map[string]interface{}{"consolidated": res.Consolidated})
	}

	if opts.EnableEntityLinking {
		finish := e.observer.StartTiming("linker", "link", runID)
		res := linker.Link(working, opts.LinkingStrategy)
		working = res.Entities
		meta.EntitiesLinked = res.Groups
		finish(true, map[string]interface{}{"groups": res.Groups})
	}

	if working == nil {
		working = []entity.Entity{}
	}
	meta.DurationMs = time.Since(start).Milliseconds()

	e.observer.LogOperation(observability.StandardObservabilityData{
		Component:   "engine",
		Operation:   observability.OperationRun,
		RunID:       runID,
		DocumentID:  doc.ID,
		DurationMs:  meta.DurationMs,
		Success:     true,
		EntityCount: len(working),
		Metadata: map[string]interface{}{
			"original_count": meta.OriginalEntityCount,
			"rejected":       rejected,
		},
	})

	return &Result{
		DocumentID: doc.ID,
		Entities:   working,
		Metadata:   meta,
	}, nil
}

// validSpans copies the entities whose spans lie inside text and are not
// empty, and counts the rest.
func validSpans(entities []entity.Entity, text string) ([]entity.Entity, int) {
	kept := make([]entity.Entity, 0, len(entities))
	rejected := 0
	for _, e := range entities {
		if e.Start < 0 || e.Start >= e.End || e.End > len(text) {
			rejected++
			continue
		}
		kept = append(kept, e.Clone())
	}
	return kept, rejected
}
