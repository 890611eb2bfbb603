// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

// Package linker groups repeated mentions of the same real-world entity
// under a shared logical identifier.
package linker

import (
	"fmt"
	"sort"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/unicode/norm"

	"pii-consolidator/internal/config"
	"pii-consolidator/internal/entity"
)

// titles are leading salutation tokens dropped by fuzzy keys, in
// case-folded form without a trailing period
var titles = map[string]bool{
	// English
	"mr": true, "mrs": true, "ms": true, "miss": true, "mx": true,
	"dr": true, "prof": true, "sir": true, "dame": true,
	// German
	"herr": true, "frau": true, "fräulein": true, "hr": true, "fr": true,
	// French
	"m": true, "mme": true, "mlle": true, "monsieur": true, "madame": true,
	"mademoiselle": true, "pr": true, "me": true,
}

// Result is the outcome of one linking pass
type Result struct {
	Entities []entity.Entity
	Groups   int
}

// Link assigns {BASE}_{n} logical IDs to every group of two or more entities
// sharing a key. Counters start at 1 per base type on every call and groups
// are numbered in document order of their first mention.
func Link(entities []entity.Entity, strategy config.LinkingStrategy) Result {
	out := entity.CloneAll(entities)
	if len(out) == 0 {
		return Result{Entities: out}
	}

	order := make([]int, len(out))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool {
		return out[order[a]].Start < out[order[b]].Start
	})

	groups := make(map[string][]int)
	var keys []string
	for _, i := range order {
		key := Key(out[i], strategy)
		if _, seen := groups[key]; !seen {
			keys = append(keys, key)
		}
		groups[key] = append(groups[key], i)
	}

	counters := make(map[entity.Type]int)
	formed := 0
	for _, key := range keys {
		members := groups[key]
		if len(members) < 2 {
			out[members[0]].LogicalID = ""
			continue
		}

		base := out[members[0]].Type.BaseType()
		counters[base]++
		id := fmt.Sprintf("%s_%d", base, counters[base])
		for _, i := range members {
			out[i].LogicalID = id
		}
		formed++
	}

	return Result{Entities: out, Groups: formed}
}

// Key builds the grouping key for e under the given strategy
func Key(e entity.Entity, strategy config.LinkingStrategy) string {
	base := string(e.Type.BaseType())
	switch strategy {
	case config.LinkingExact:
		return base + ":" + e.Text
	case config.LinkingFuzzy:
		return base + ":" + StripTitles(Normalize(e.Text))
	default:
		return base + ":" + Normalize(e.Text)
	}
}

// Normalize case-folds text and collapses runs of whitespace
func Normalize(text string) string {
	folded := cases.Fold().String(norm.NFC.String(text))
	return strings.Join(strings.Fields(folded), " ")
}

// StripTitles removes leading salutation tokens from normalized text.
// Text made only of titles is returned unchanged.
func StripTitles(normalized string) string {
	tokens := strings.Fields(normalized)
	i := 0
	for i < len(tokens) && titles[strings.TrimSuffix(tokens[i], ".")] {
		i++
	}
	if i == len(tokens) {
		return normalized
	}
	return strings.Join(tokens[i:], " ")
}
