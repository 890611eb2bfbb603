// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"pii-consolidator/internal/entity"
	"pii-consolidator/internal/evaluation"
	"pii-consolidator/internal/parallel"
)

func evaluateCmd() *cobra.Command {
	var (
		settings   runSettings
		goldenPath string
		asJSON     bool
		noColor    bool
	)

	cmd := &cobra.Command{
		Use:   "evaluate --golden golden.json [input.json]",
		Short: "Score consolidated output against hand-labeled entities",
		Long: `Evaluate consolidates the input documents and compares the result with
a golden file in the same document format. Documents are paired by id.
Entities match one-to-one on base type plus span overlap or equal
normalized text.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			inputPath := "-"
			if len(args) == 1 {
				inputPath = args[0]
			}

			golden, err := readInput(goldenPath, cmd.InOrStdin())
			if err != nil {
				return err
			}
			goldenByID := make(map[string][]entity.Entity, len(golden))
			for _, g := range toDocuments(golden, nil) {
				goldenByID[g.ID] = g.Entities
			}

			_, results, err := settings.run(cmd, inputPath)
			if err != nil {
				return err
			}

			report, missing := compareResults(results, goldenByID)
			for _, id := range missing {
				fmt.Fprintf(cmd.ErrOrStderr(), "warning: no golden entities for document %q\n", id)
			}

			if asJSON {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(report)
			}
			if noColor || !isTerminal(os.Stdout) {
				color.NoColor = true
			}
			printReport(cmd.OutOrStdout(), report)
			return nil
		},
	}

	addRunFlags(cmd, &settings)
	cmd.Flags().StringVar(&goldenPath, "golden", "", "golden document file")
	_ = cmd.MarkFlagRequired("golden")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print the report as JSON")
	cmd.Flags().BoolVar(&noColor, "no-color", false, "disable colored output")

	return cmd
}

// compareResults scores each result against its golden document and
// aggregates the reports. Results without a golden document are skipped.
func compareResults(results []*parallel.Result, golden map[string][]entity.Entity) (evaluation.Report, []string) {
	var reports []evaluation.Report
	var missing []string
	for _, r := range results {
		g, ok := golden[r.DocumentID]
		if !ok {
			missing = append(missing, r.DocumentID)
			continue
		}
		reports = append(reports, evaluation.Compare(r.Result.Entities, g))
	}
	return evaluation.Aggregate(reports), missing
}

func printReport(w io.Writer, report evaluation.Report) {
	header := color.New(color.FgWhite, color.Bold)
	header.Fprintf(w, "%-16s %5s %5s %5s %9s %9s %9s\n", "TYPE", "TP", "FP", "FN", "PRECISION", "RECALL", "F1")

	row := func(name string, s evaluation.Scores) {
		fmt.Fprintf(w, "%-16s %5d %5d %5d %9.3f %9.3f %9.3f\n",
			name, s.TruePositives, s.FalsePositives, s.FalseNegatives, s.Precision, s.Recall, s.F1)
	}
	for _, t := range report.Types() {
		row(string(t), report.ByType[t])
	}

	f1 := color.New(color.FgGreen)
	if report.Overall.F1 < 0.8 {
		f1 = color.New(color.FgYellow)
	}
	if report.Overall.F1 < 0.5 {
		f1 = color.New(color.FgRed)
	}
	f1.Fprintf(w, "%-16s %5d %5d %5d %9.3f %9.3f %9.3f\n", "OVERALL",
		report.Overall.TruePositives, report.Overall.FalsePositives, report.Overall.FalseNegatives,
		report.Overall.Precision, report.Overall.Recall, report.Overall.F1)
}
