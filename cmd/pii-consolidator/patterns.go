// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"pii-consolidator/internal/patterns"
)

func patternsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "patterns",
		Short: "List the built-in rule patterns",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			w := cmd.OutOrStdout()
			fmt.Fprintf(w, "%-20s %-16s %8s  %s\n", "NAME", "TYPE", "PRIORITY", "DESCRIPTION")
			for _, p := range patterns.NewPatternManager().Patterns() {
				fmt.Fprintf(w, "%-20s %-16s %8d  %s\n", p.Name, p.Type, p.Priority, p.Description)
			}
		},
	}
}
