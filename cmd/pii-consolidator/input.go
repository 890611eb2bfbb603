// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"pii-consolidator/internal/consolidation"
	"pii-consolidator/internal/entity"
	"pii-consolidator/internal/patterns"
)

// inputDocument is one document as handed over by the detection stage
type inputDocument struct {
	ID          string                `json:"id"`
	Text        string                `json:"text"`
	Entities    []entity.Entity       `json:"entities"`
	Predictions []patterns.Prediction `json:"predictions"`
}

// readInput loads documents from path, or stdin for "-". The file holds a
// single document object or an array of them.
func readInput(path string, stdin io.Reader) ([]inputDocument, error) {
	var data []byte
	var err error
	if path == "-" {
		data, err = io.ReadAll(stdin)
	} else {
		data, err = os.ReadFile(path)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read input %s: %w", path, err)
	}
	return parseInput(data)
}

func parseInput(data []byte) ([]inputDocument, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		return nil, fmt.Errorf("input is empty")
	}

	var docs []inputDocument
	if trimmed[0] == '[' {
		if err := json.Unmarshal(trimmed, &docs); err != nil {
			return nil, fmt.Errorf("failed to parse input documents: %w", err)
		}
	} else {
		var doc inputDocument
		if err := json.Unmarshal(trimmed, &doc); err != nil {
			return nil, fmt.Errorf("failed to parse input document: %w", err)
		}
		docs = []inputDocument{doc}
	}

	for i := range docs {
		if docs[i].ID == "" {
			docs[i].ID = fmt.Sprintf("doc-%d", i+1)
		}
	}
	return docs, nil
}

// toDocuments turns input into engine documents. Token predictions are
// aggregated into entities; with detect set, rule matches are merged in.
func toDocuments(inputs []inputDocument, detector *patterns.Detector) []consolidation.Document {
	docs := make([]consolidation.Document, len(inputs))
	for i, in := range inputs {
		ml := append(entity.CloneAll(in.Entities), patterns.FromPredictions(in.Text, in.Predictions)...)
		for j := range ml {
			if ml[j].ID == "" {
				ml[j].ID = entity.NewID()
			}
		}

		entities := ml
		if detector != nil {
			entities = patterns.MergeDetections(ml, detector.Detect(in.Text))
		}

		docs[i] = consolidation.Document{ID: in.ID, Text: in.Text, Entities: entities}
	}
	return docs
}
