// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package parallel

import (
	"context"
	"errors"
	"runtime"

	"pii-consolidator/internal/config"
	"pii-consolidator/internal/consolidation"
)

// ProcessingStats summarizes a batch
type ProcessingStats struct {
	Documents int
	Failed    int
	Workers   int
}

// Processor consolidates document batches with a worker pool
type Processor struct {
	engine  *consolidation.Engine
	workers int
}

// NewProcessor creates a processor. workers <= 0 means one per CPU.
func NewProcessor(engine *consolidation.Engine, workers int) *Processor {
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	return &Processor{engine: engine, workers: workers}
}

// ProcessDocuments consolidates every document and returns results in input
// order. Per-document failures are reported on the matching Result and
// joined into the returned error.
func (p *Processor) ProcessDocuments(ctx context.Context, docs []consolidation.Document, opts config.Options) ([]*Result, ProcessingStats, error) {
	workers := p.workers
	if workers > len(docs) {
		workers = len(docs)
	}
	stats := ProcessingStats{Documents: len(docs), Workers: workers}
	results := make([]*Result, len(docs))
	if len(docs) == 0 {
		return results, stats, nil
	}

	pool := NewWorkerPool(ctx, workers, p.engine)
	pool.Start()

	go func() {
		defer pool.Close()
		for i, doc := range docs {
			if !pool.Submit(&Job{Index: i, Document: doc, Options: opts}) {
				return
			}
		}
	}()

	for r := range pool.Results() {
		results[r.Index] = r
	}

	var errs []error
	for i, r := range results {
		if r == nil {
			r = &Result{Index: i, DocumentID: docs[i].ID, Error: context.Cause(ctx)}
			if r.Error == nil {
				r.Error = context.Canceled
			}
			results[i] = r
		}
		if r.Error != nil {
			stats.Failed++
			errs = append(errs, r.Error)
		}
	}

	return results, stats, errors.Join(errs...)
}
