// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"pii-consolidator/internal/config"
	"pii-consolidator/internal/consolidation"
	"pii-consolidator/internal/formatters"
	_ "pii-consolidator/internal/formatters/csv"
	_ "pii-consolidator/internal/formatters/json"
	_ "pii-consolidator/internal/formatters/text"
	_ "pii-consolidator/internal/formatters/yaml"
	"pii-consolidator/internal/observability"
	"pii-consolidator/internal/parallel"
	"pii-consolidator/internal/patterns"
	"pii-consolidator/internal/redactors"
)

// runSettings are the flags shared by consolidate and evaluate
type runSettings struct {
	configFile string
	profile    string
	detect     bool
	workers    int
	debug      bool
	metrics    bool
}

func addRunFlags(cmd *cobra.Command, s *runSettings) {
	cmd.Flags().StringVar(&s.configFile, "config", "", "configuration file (default: search PII_CONSOLIDATOR_CONFIG, ./pii-consolidator.yaml)")
	cmd.Flags().StringVar(&s.profile, "profile", "", "named option profile from the configuration file")
	cmd.Flags().BoolVar(&s.detect, "detect", false, "add rule-based pattern matches to the input entities")
	cmd.Flags().IntVar(&s.workers, "workers", 0, "documents consolidated in parallel (default: one per CPU)")
	cmd.Flags().BoolVar(&s.debug, "debug", false, "log per-pass timing records to stderr")
	cmd.Flags().BoolVar(&s.metrics, "metrics", false, "log one timing record per document to stderr")
}

// options loads the configuration and resolves the selected profile. An
// explicit --config must load cleanly; a discovered file falls back to
// defaults on error.
func (s runSettings) options() (config.Options, error) {
	if s.configFile == "" {
		return config.LoadConfigOrDefault("").Resolve(s.profile)
	}
	cfg, err := config.LoadConfig(s.configFile)
	if err != nil {
		return config.Options{}, err
	}
	return cfg.Resolve(s.profile)
}

func (s runSettings) observer(stderr io.Writer) *observability.StandardObserver {
	level := observability.ObservabilityOff
	switch {
	case s.debug:
		level = observability.ObservabilityDebug
	case s.metrics:
		level = observability.ObservabilityMetrics
	}
	return observability.NewStandardObserver(level, stderr)
}

// run reads the input and consolidates every document
func (s runSettings) run(cmd *cobra.Command, inputPath string) ([]consolidation.Document, []*parallel.Result, error) {
	opts, err := s.options()
	if err != nil {
		return nil, nil, err
	}

	inputs, err := readInput(inputPath, cmd.InOrStdin())
	if err != nil {
		return nil, nil, err
	}

	var detector *patterns.Detector
	if s.detect {
		detector = patterns.NewDetector()
	}
	docs := toDocuments(inputs, detector)

	engine := consolidation.NewEngine(s.observer(cmd.ErrOrStderr()))
	results, _, err := parallel.NewProcessor(engine, s.workers).ProcessDocuments(cmd.Context(), docs, opts)
	if err != nil {
		return nil, nil, fmt.Errorf("consolidation failed: %w", err)
	}
	return docs, results, nil
}

func consolidateCmd() *cobra.Command {
	var (
		settings     runSettings
		format       string
		output       string
		noColor      bool
		showText     bool
		verbose      bool
		pseudonymize string
	)

	cmd := &cobra.Command{
		Use:   "consolidate [input.json]",
		Short: "Consolidate the entities of one or more documents",
		Long: `Consolidate reads documents as JSON, either a single object or an array:

  {"id": "letter-1", "text": "...", "entities": [...], "predictions": [...]}

entities are already typed detections; predictions are raw token labels
(BIO tagged) from an ML recognizer. Use "-" or no argument to read stdin.

Output formats: ` + strings.Join(formatters.List(), ", "),
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			inputPath := "-"
			if len(args) == 1 {
				inputPath = args[0]
			}

			var strategy redactors.RedactionStrategy
			if pseudonymize != "" {
				var err error
				if strategy, err = redactors.ParseRedactionStrategy(pseudonymize); err != nil {
					return err
				}
			}

			docs, results, err := settings.run(cmd, inputPath)
			if err != nil {
				return err
			}

			var out string
			if pseudonymize != "" {
				out, err = pseudonymizeAll(docs, results, strategy)
			} else {
				if !noColor && (output != "" || !isTerminal(os.Stdout)) {
					noColor = true
				}
				if !cmd.Flags().Changed("format") && output != "" {
					if f, ok := formatters.ForExtension(filepath.Ext(output)); ok {
						format = f.Name()
					}
				}
				out, err = formatters.Export(format, engineResults(results), formatters.FormatterOptions{
					NoColor:  noColor,
					ShowText: showText,
					Verbose:  verbose,
				})
			}
			if err != nil {
				return err
			}

			return writeOutput(cmd.OutOrStdout(), output, out)
		},
	}

	addRunFlags(cmd, &settings)
	cmd.Flags().StringVarP(&format, "format", "f", "json", "output format (default: from --output extension, else json)")
	cmd.Flags().StringVarP(&output, "output", "o", "", "write output to this file instead of stdout")
	cmd.Flags().BoolVar(&noColor, "no-color", false, "disable colored output")
	cmd.Flags().BoolVar(&showText, "show-text", false, "include entity text in the output")
	cmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "include components and run details")
	cmd.Flags().StringVar(&pseudonymize, "pseudonymize", "", "print pseudonymized document text instead (placeholder or mask)")

	return cmd
}

func engineResults(results []*parallel.Result) []*consolidation.Result {
	out := make([]*consolidation.Result, 0, len(results))
	for _, r := range results {
		out = append(out, r.Result)
	}
	return out
}

func pseudonymizeAll(docs []consolidation.Document, results []*parallel.Result, strategy redactors.RedactionStrategy) (string, error) {
	var builder strings.Builder
	for i, r := range results {
		red, err := redactors.Pseudonymize(docs[i].Text, r.Result.Entities, strategy)
		if err != nil {
			return "", fmt.Errorf("document %q: %w", docs[i].ID, err)
		}
		if len(results) > 1 {
			fmt.Fprintf(&builder, "== %s ==\n", docs[i].ID)
		}
		builder.WriteString(red.Text)
		builder.WriteString("\n")
	}
	return builder.String(), nil
}

func writeOutput(stdout io.Writer, path, content string) error {
	if !strings.HasSuffix(content, "\n") {
		content += "\n"
	}
	if path == "" {
		_, err := io.WriteString(stdout, content)
		return err
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		return fmt.Errorf("failed to write output %s: %w", path, err)
	}
	return nil
}
