// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package parallel

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"pii-consolidator/internal/config"
	"pii-consolidator/internal/consolidation"
	"pii-consolidator/internal/entity"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// personDocument mentions the same name twice
func personDocument(id, name string) consolidation.Document {
	text := name + " und " + name
	second := len(name) + len(" und ")
	return consolidation.Document{
		ID:   id,
		Text: text,
		Entities: []entity.Entity{
			{ID: id + "-1", Type: entity.Person, Text: name, Start: 0, End: len(name), Confidence: 0.9},
			{ID: id + "-2", Type: entity.Person, Text: name, Start: second, End: second + len(name), Confidence: 0.9},
		},
	}
}

func TestProcessDocuments_OrderAndIsolation(t *testing.T) {
	var docs []consolidation.Document
	for i := 0; i < 50; i++ {
		docs = append(docs, personDocument(fmt.Sprintf("doc-%02d", i), fmt.Sprintf("Person %d", i)))
	}

	p := NewProcessor(consolidation.NewEngine(nil), 4)
	results, stats, err := p.ProcessDocuments(context.Background(), docs, config.Default())
	require.NoError(t, err)
	assert.Equal(t, 50, stats.Documents)
	assert.Equal(t, 4, stats.Workers)
	assert.Zero(t, stats.Failed)

	require.Len(t, results, len(docs))
	for i, r := range results {
		require.NoError(t, r.Error)
		assert.Equal(t, docs[i].ID, r.DocumentID)
		assert.Equal(t, i, r.Index)
		for _, e := range r.Result.Entities {
			assert.Equal(t, "PERSON_1", e.LogicalID, "document %s", r.DocumentID)
		}
	}
}

func TestProcessDocuments_InvalidOptions(t *testing.T) {
	opts := config.Default()
	opts.LinkingStrategy = "soundex"

	p := NewProcessor(nil, 2)
	results, stats, err := p.ProcessDocuments(context.Background(),
		[]consolidation.Document{personDocument("a", "Anna"), personDocument("b", "Bert")}, opts)
	require.Error(t, err)
	assert.True(t, errors.Is(err, config.ErrInvalidOption))
	assert.Equal(t, 2, stats.Failed)
	for _, r := range results {
		assert.Error(t, r.Error)
		assert.Nil(t, r.Result)
	}
}

func TestProcessDocuments_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	docs := []consolidation.Document{personDocument("a", "Anna"), personDocument("b", "Bert"), personDocument("c", "Carl")}
	results, stats, err := NewProcessor(nil, 2).ProcessDocuments(ctx, docs, config.Default())
	require.Error(t, err)
	assert.True(t, errors.Is(err, context.Canceled))
	assert.Equal(t, 3, stats.Failed)
	require.Len(t, results, 3)
	for i, r := range results {
		require.NotNil(t, r)
		assert.Equal(t, docs[i].ID, r.DocumentID)
	}
}

func TestProcessDocuments_Empty(t *testing.T) {
	results, stats, err := NewProcessor(nil, 0).ProcessDocuments(context.Background(), nil, config.Default())
	require.NoError(t, err)
	assert.Empty(t, results)
	assert.Zero(t, stats.Documents)
}

func TestWorkerPool_SubmitAfterCancel(t *testing.T) {
	pool := NewWorkerPool(context.Background(), 1, nil)
	pool.Cancel()
	assert.False(t, pool.Submit(&Job{}))
	pool.Close()
	for range pool.Results() {
	}
}
