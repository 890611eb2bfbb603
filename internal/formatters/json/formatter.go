// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package json

import (
	"encoding/json"
	"fmt"

	"pii-consolidator/internal/consolidation"
	"pii-consolidator/internal/formatters"
	"pii-consolidator/internal/formatters/shared"
)

// Formatter implements JSON output formatting
type Formatter struct{}

// NewFormatter creates a new JSON formatter
func NewFormatter() *Formatter {
	return &Formatter{}
}

func (f *Formatter) Name() string {
	return "json"
}

func (f *Formatter) Description() string {
	return "Structured JSON output for programmatic consumption"
}

func (f *Formatter) FileExtension() string {
	return ".json"
}

func (f *Formatter) MimeType() string {
	return "application/json"
}

func (f *Formatter) Format(results []*consolidation.Result, options formatters.FormatterOptions) (string, error) {
	response := shared.ConvertResults(results, options)

	var data []byte
	var err error
	if options.Compact {
		data, err = json.Marshal(response)
	} else {
		data, err = json.MarshalIndent(response, "", "  ")
	}
	if err != nil {
		return "", fmt.Errorf("failed to format JSON: %w", err)
	}

	return string(data), nil
}

// Register the formatter during package initialization
func init() {
	formatters.Register(NewFormatter())
}
