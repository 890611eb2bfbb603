// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package csv

import (
	"encoding/csv"
	"fmt"
	"strconv"
	"strings"

	"pii-consolidator/internal/consolidation"
	"pii-consolidator/internal/formatters"
	"pii-consolidator/internal/formatters/shared"
)

// Formatter implements CSV output formatting
type Formatter struct{}

// NewFormatter creates a new CSV formatter
func NewFormatter() *Formatter {
	return &Formatter{}
}

func (f *Formatter) Name() string {
	return "csv"
}

func (f *Formatter) Description() string {
	return "Comma-separated values, one row per entity, for spreadsheet import"
}

func (f *Formatter) FileExtension() string {
	return ".csv"
}

func (f *Formatter) MimeType() string {
	return "text/csv"
}

func (f *Formatter) Format(results []*consolidation.Result, options formatters.FormatterOptions) (string, error) {
	headers := []string{"Document", "Type", "Source", "Confidence", "Confidence Level", "Start", "End", "Logical ID", "Text"}
	if options.Verbose {
		headers = append(headers, "Components")
	}

	var builder strings.Builder
	w := csv.NewWriter(&builder)
	if err := w.Write(headers); err != nil {
		return "", fmt.Errorf("failed to write CSV header: %w", err)
	}

	for _, r := range results {
		if r == nil {
			continue
		}
		for _, e := range shared.MaskEntities(r.Entities, options) {
			row := []string{
				r.DocumentID,
				string(e.Type),
				e.Source.String(),
				strconv.FormatFloat(e.Confidence, 'f', 2, 64),
				shared.GetConfidenceLevel(e.Confidence),
				strconv.Itoa(e.Start),
				strconv.Itoa(e.End),
				e.LogicalID,
				e.Text,
			}
			if options.Verbose {
				parts := make([]string, len(e.Components))
				for i, c := range e.Components {
					parts[i] = fmt.Sprintf("%s[%d:%d]", c.Type, c.Start, c.End)
				}
				row = append(row, strings.Join(parts, " "))
			}
			if err := w.Write(row); err != nil {
				return "", fmt.Errorf("failed to write CSV row: %w", err)
			}
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return "", fmt.Errorf("failed to flush CSV: %w", err)
	}
	return builder.String(), nil
}

// Register the formatter during package initialization
func init() {
	formatters.Register(NewFormatter())
}
