// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package text

import (
	"fmt"
	"strings"

	"pii-consolidator/internal/consolidation"
	"pii-consolidator/internal/entity"
	"pii-consolidator/internal/formatters"
	"pii-consolidator/internal/formatters/shared"

	"github.com/fatih/color"
)

const maxTextWidth = 30

// Formatter implements text-based output formatting
type Formatter struct {
	colors map[string]*color.Color
}

// NewFormatter creates a new text formatter
func NewFormatter() *Formatter {
	return &Formatter{
		colors: map[string]*color.Color{
			"green":   color.New(color.FgGreen),
			"yellow":  color.New(color.FgYellow),
			"red":     color.New(color.FgRed),
			"cyan":    color.New(color.FgCyan),
			"magenta": color.New(color.FgMagenta),
			"blue":    color.New(color.FgBlue),
			"white":   color.New(color.FgWhite, color.Bold),
		},
	}
}

func (f *Formatter) Name() string {
	return "text"
}

func (f *Formatter) Description() string {
	return "Human-readable text output with colors and tables"
}

func (f *Formatter) FileExtension() string {
	return ".txt"
}

func (f *Formatter) MimeType() string {
	return "text/plain; charset=utf-8"
}

func (f *Formatter) Format(results []*consolidation.Result, options formatters.FormatterOptions) (string, error) {
	var builder strings.Builder
	total := 0

	for _, r := range results {
		if r == nil {
			continue
		}
		f.appendDocument(&builder, r, options)
		total += len(r.Entities)
	}

	if total == 0 {
		return "No entities found.", nil
	}

	f.appendSummary(&builder, shared.ConvertResults(results, options).Summary, options)
	return builder.String(), nil
}

// paint applies a named color unless colors are disabled
func (f *Formatter) paint(name string, options formatters.FormatterOptions, format string, args ...interface{}) string {
	if options.NoColor {
		return fmt.Sprintf(format, args...)
	}
	return f.colors[name].Sprintf(format, args...)
}

func (f *Formatter) appendDocument(builder *strings.Builder, r *consolidation.Result, options formatters.FormatterOptions) {
	if len(r.Entities) == 0 {
		return
	}

	title := r.DocumentID
	if title == "" {
		title = "(unnamed document)"
	}
	builder.WriteString(f.paint("white", options, "Document %s", title))
	if options.Verbose {
		builder.WriteString(fmt.Sprintf(" run=%s %dms", r.Metadata.RunID, r.Metadata.DurationMs))
	}
	builder.WriteString("\n")

	builder.WriteString(f.paint("white", options, "%-8s %-16s %-12s %-6s %-11s %-10s %s\n",
		"LEVEL", "TYPE", "SOURCE", "CONF%", "SPAN", "LOGICAL ID", "TEXT"))
	builder.WriteString(strings.Repeat("-", 8+1+16+1+12+1+6+1+11+1+10+1+maxTextWidth) + "\n")

	for _, e := range shared.MaskEntities(r.Entities, options) {
		f.appendEntity(builder, e, options)
	}
	builder.WriteString("\n")
}

func (f *Formatter) appendEntity(builder *strings.Builder, e entity.Entity, options formatters.FormatterOptions) {
	level := shared.GetConfidenceLevel(e.Confidence)
	levelColor := "green"
	switch level {
	case "HIGH":
		levelColor = "red"
	case "MEDIUM":
		levelColor = "yellow"
	}

	typeName := string(e.Type)
	if len(typeName) > 16 {
		typeName = typeName[:13] + "..."
	}
	logicalID := e.LogicalID
	if logicalID == "" {
		logicalID = "-"
	}

	builder.WriteString(f.paint(levelColor, options, "[%-6s]", level))
	builder.WriteString(" ")
	builder.WriteString(f.paint("cyan", options, "%-16s", typeName))
	builder.WriteString(" ")
	builder.WriteString(f.paint("green", options, "%-12s", e.Source.String()))
	builder.WriteString(" ")
	builder.WriteString(f.paint("blue", options, "%5.1f%%", e.Confidence*100))
	builder.WriteString(" ")
	builder.WriteString(f.paint("magenta", options, "%-11s", fmt.Sprintf("%d-%d", e.Start, e.End)))
	builder.WriteString(" ")
	builder.WriteString(fmt.Sprintf("%-10s", logicalID))
	builder.WriteString(" ")
	builder.WriteString(truncate(e.Text))
	builder.WriteString("\n")

	if !options.Verbose {
		return
	}
	for _, c := range e.Components {
		builder.WriteString(fmt.Sprintf("         └ %-14s %d-%d %s\n", c.Type, c.Start, c.End, truncate(c.Text)))
	}
	if e.Metadata.Absorbed != nil && *e.Metadata.Absorbed {
		builder.WriteString(fmt.Sprintf("         absorbed into %s\n", e.Metadata.ConsolidatedInto))
	}
}

func (f *Formatter) appendSummary(builder *strings.Builder, summary shared.Summary, options formatters.FormatterOptions) {
	builder.WriteString(f.paint("white", options, "Summary: %d entities in %d document(s)\n", summary.Entities, summary.Documents))
	builder.WriteString(fmt.Sprintf("  overlaps resolved:      %d\n", summary.OverlapsResolved))
	builder.WriteString(fmt.Sprintf("  addresses consolidated: %d\n", summary.AddressesConsolidated))
	builder.WriteString(fmt.Sprintf("  linked groups:          %d\n", summary.EntitiesLinked))
	if summary.RejectedEntities > 0 {
		builder.WriteString(f.paint("yellow", options, "  rejected spans:         %d\n", summary.RejectedEntities))
	}
	for _, t := range shared.SortedTypes(summary.ByType) {
		builder.WriteString(fmt.Sprintf("  %-22s  %d\n", t, summary.ByType[t]))
	}
}

// truncate flattens whitespace and caps the text column width
func truncate(s string) string {
	s = strings.Join(strings.Fields(s), " ")
	runes := []rune(s)
	if len(runes) > maxTextWidth {
		return string(runes[:maxTextWidth-3]) + "..."
	}
	return s
}

// Register the formatter during package initialization
func init() {
	formatters.Register(NewFormatter())
}
