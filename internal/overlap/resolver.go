// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

// Package overlap collapses competing detections so that every text region
// is claimed by exactly one entity.
package overlap

import (
	"sort"

	"pii-consolidator/internal/config"
	"pii-consolidator/internal/entity"
)

// DefaultPriorities ranks entity types for overlap resolution; higher wins.
// Types missing from a table score 0.
var DefaultPriorities = map[entity.Type]float64{
	entity.SwissAVS:      100,
	entity.IBAN:          95,
	entity.QRReference:   90,
	entity.VATNumber:     85,
	entity.Email:         80,
	entity.Phone:         75,
	entity.PaymentRef:    70,
	entity.InvoiceNumber: 65,

	entity.SwissAddress: 60,
	entity.EUAddress:    58,
	entity.Address:      55,

	entity.Person:       50,
	entity.PersonName:   48,
	entity.Organization: 45,

	entity.Sender:         40,
	entity.Recipient:      38,
	entity.Signature:      35,
	entity.PostalCode:     32,
	entity.SalutationName: 30,
	entity.StreetName:     30,
	entity.City:           30,
	entity.StreetNumber:   28,
	entity.Region:         26,
	entity.Country:        26,
	entity.ReferenceLine:  25,
	entity.LetterDate:     22,

	entity.Date:     20,
	entity.Amount:   18,
	entity.Location: 15,
	entity.Unknown:  0,
}

// Priorities returns the default table with overrides applied
func Priorities(overrides map[entity.Type]float64) map[entity.Type]float64 {
	table := make(map[entity.Type]float64, len(DefaultPriorities)+len(overrides))
	for t, p := range DefaultPriorities {
		table[t] = p
	}
	for t, p := range overrides {
		table[t] = p
	}
	return table
}

// Result is the outcome of one resolution pass
type Result struct {
	Entities []entity.Entity
	Removed  int
}

// Resolve removes span conflicts. Entities are sorted by start (longer spans
// first on ties); each unconsumed entity pivots a cluster of everything that
// overlaps it, and the best-scoring member survives. A nil table means
// DefaultPriorities. Input entities are never modified.
func Resolve(entities []entity.Entity, strategy config.OverlapStrategy, priorities map[entity.Type]float64) Result {
	if len(entities) == 0 {
		return Result{Entities: []entity.Entity{}}
	}
	if priorities == nil {
		priorities = DefaultPriorities
	}

	sorted := make([]entity.Entity, len(entities))
	copy(sorted, entities)
	sort.SliceStable(sorted, func(i, j int) bool {
		if sorted[i].Start != sorted[j].Start {
			return sorted[i].Start < sorted[j].Start
		}
		return sorted[i].Len() > sorted[j].Len()
	})

	consumed := make([]bool, len(sorted))
	kept := make([]entity.Entity, 0, len(sorted))
	keptEnd := -1 // furthest end among kept entities

	for i := range sorted {
		if consumed[i] {
			continue
		}
		pivot := sorted[i]

		cluster := []int{i}
		for j := i + 1; j < len(sorted) && sorted[j].Start < pivot.End; j++ {
			if !consumed[j] && pivot.Overlaps(sorted[j]) {
				cluster = append(cluster, j)
			}
		}

		winner := -1
		var best float64
		for _, idx := range cluster {
			consumed[idx] = true
			candidate := sorted[idx]

			// Already claimed by a winner from an earlier cluster
			if candidate.Start < keptEnd {
				continue
			}

			s := score(candidate, strategy, priorities)
			if winner < 0 || s > best || (s == best && candidate.Len() > sorted[winner].Len()) {
				winner, best = idx, s
			}
		}

		if winner >= 0 {
			kept = append(kept, sorted[winner])
			if sorted[winner].End > keptEnd {
				keptEnd = sorted[winner].End
			}
		}
	}

	return Result{
		Entities: kept,
		Removed:  len(entities) - len(kept),
	}
}

func score(e entity.Entity, strategy config.OverlapStrategy, priorities map[entity.Type]float64) float64 {
	priority := priorities[e.Type]
	if strategy == config.OverlapPriorityOnly {
		return priority
	}
	return priority * e.Confidence
}
