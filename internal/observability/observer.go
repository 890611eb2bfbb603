// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

// Package observability records timing and outcome data for consolidation
// runs. Records never carry entity text.
package observability

import (
	"crypto/rand"
	"encoding/json"
	"io"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"
)

// StandardObserver implements observability for all components
type StandardObserver struct {
	level  ObservabilityLevel
	writer io.Writer

	mu      sync.Mutex
	entropy *ulid.MonotonicEntropy
}

type ObservabilityLevel int

const (
	ObservabilityOff     ObservabilityLevel = 0
	ObservabilityMetrics ObservabilityLevel = 1
	ObservabilityDebug   ObservabilityLevel = 2
)

// NewStandardObserver creates observability component. A nil writer
// discards every record.
func NewStandardObserver(level ObservabilityLevel, writer io.Writer) *StandardObserver {
	if writer == nil {
		writer = io.Discard
	}
	return &StandardObserver{
		level:   level,
		writer:  writer,
		entropy: ulid.Monotonic(rand.Reader, 0),
	}
}

// Level reports the configured level
func (o *StandardObserver) Level() ObservabilityLevel {
	if o == nil {
		return ObservabilityOff
	}
	return o.level
}

// NewRunID returns a lexically sortable identifier for one run
func (o *StandardObserver) NewRunID() string {
	if o == nil {
		return ulid.Make().String()
	}
	o.mu.Lock()
	defer o.mu.Unlock()
	return ulid.MustNew(ulid.Now(), o.entropy).String()
}

// StartTiming returns a function to complete timing
func (o *StandardObserver) StartTiming(component, operation, runID string) func(success bool, metadata map[string]interface{}) {
	start := time.Now()

	return func(success bool, metadata map[string]interface{}) {
		if o == nil {
			return
		}
		o.LogOperation(StandardObservabilityData{
			Component:  component,
			Operation:  operation,
			RunID:      runID,
			DurationMs: time.Since(start).Milliseconds(),
			Success:    success,
			Metadata:   metadata,
		})
	}
}

// LogOperation logs operation data
func (o *StandardObserver) LogOperation(data StandardObservabilityData) {
	if o == nil || o.level == ObservabilityOff {
		return
	}

	if data.RunID == "" {
		data.RunID = o.NewRunID()
	}
	data.Timestamp = time.Now().UTC()

	// Pass-level records only in debug mode
	if o.level == ObservabilityMetrics && data.Operation != OperationRun {
		return
	}

	o.mu.Lock()
	defer o.mu.Unlock()
	_ = json.NewEncoder(o.writer).Encode(data)
}

// OperationRun names the record covering a whole consolidation run
const OperationRun = "consolidate"

// StandardObservabilityData for all components
type StandardObservabilityData struct {
	Component   string                 `json:"component"`
	Operation   string                 `json:"operation"`
	RunID       string                 `json:"run_id"`
	DocumentID  string                 `json:"document_id,omitempty"`
	Timestamp   time.Time              `json:"timestamp"`
	DurationMs  int64                  `json:"duration_ms"`
	Success     bool                   `json:"success"`
	Error       string                 `json:"error,omitempty"`
	EntityCount int                    `json:"entity_count,omitempty"`
	Metadata    map[string]interface{} `json:"metadata,omitempty"`
}
