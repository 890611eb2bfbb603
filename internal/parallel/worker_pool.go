// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

// Package parallel consolidates batches of documents concurrently.
package parallel

import (
	"context"
	"fmt"
	"sync"
	"time"

	"pii-consolidator/internal/config"
	"pii-consolidator/internal/consolidation"
)

// WorkerPool manages parallel document consolidation
type WorkerPool struct {
	workers   int
	jobs      chan *Job
	results   chan *Result
	wg        sync.WaitGroup
	ctx       context.Context
	cancel    context.CancelFunc
	engine    *consolidation.Engine
	closeOnce sync.Once
}

// Job represents one document to consolidate
type Job struct {
	Index    int
	Document consolidation.Document
	Options  config.Options
}

// Result represents processing results
type Result struct {
	Index      int
	DocumentID string
	Result     *consolidation.Result
	Error      error
	Duration   time.Duration
}

// NewWorkerPool creates a worker pool bound to ctx. Each job runs an
// independent engine call, so no state crosses documents.
func NewWorkerPool(ctx context.Context, workers int, engine *consolidation.Engine) *WorkerPool {
	if workers < 1 {
		workers = 1
	}
	if engine == nil {
		engine = consolidation.NewEngine(nil)
	}
	ctx, cancel := context.WithCancel(ctx)

	return &WorkerPool{
		workers: workers,
		jobs:    make(chan *Job, workers*2),
		results: make(chan *Result, workers*2),
		ctx:     ctx,
		cancel:  cancel,
		engine:  engine,
	}
}

// Start initializes worker goroutines
func (wp *WorkerPool) Start() {
	for i := 0; i < wp.workers; i++ {
		wp.wg.Add(1)
		go wp.worker()
	}
}

// Submit adds a job to the queue. It reports false once the pool is cancelled.
func (wp *WorkerPool) Submit(job *Job) bool {
	if wp.ctx.Err() != nil {
		return false
	}
	select {
	case wp.jobs <- job:
		return true
	case <-wp.ctx.Done():
		return false
	}
}

// Close stops accepting jobs and closes the results channel after the
// workers drain the queue
func (wp *WorkerPool) Close() {
	wp.closeOnce.Do(func() {
		close(wp.jobs)
		go func() {
			wp.wg.Wait()
			close(wp.results)
			wp.cancel()
		}()
	})
}

// Cancel abandons queued work
func (wp *WorkerPool) Cancel() {
	wp.cancel()
}

// Results returns the results channel
func (wp *WorkerPool) Results() <-chan *Result {
	return wp.results
}

// worker processes jobs from the queue
func (wp *WorkerPool) worker() {
	defer wp.wg.Done()

	for job := range wp.jobs {
		result := wp.processJob(job)

		select {
		case wp.results <- result:
		case <-wp.ctx.Done():
			return
		}
	}
}

// processJob runs one consolidation
func (wp *WorkerPool) processJob(job *Job) *Result {
	start := time.Now()
	result := &Result{Index: job.Index, DocumentID: job.Document.ID}

	if err := wp.ctx.Err(); err != nil {
		result.Error = err
		return result
	}

	res, err := wp.engine.Consolidate(job.Document, job.Options)
	if err != nil {
		result.Error = fmt.Errorf("document %q: %w", job.Document.ID, err)
	}
	result.Result = res
	result.Duration = time.Since(start)
	return result
}
