// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package overlap

import (
	"math/rand"
	"testing"

	"pii-consolidator/internal/config"
	"pii-consolidator/internal/entity"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ent(id string, typ entity.Type, start, end int, conf float64) entity.Entity {
	return entity.Entity{ID: id, Type: typ, Start: start, End: end, Confidence: conf, Source: entity.SourceML}
}

func ids(entities []entity.Entity) []string {
	out := make([]string, len(entities))
	for i, e := range entities {
		out[i] = e.ID
	}
	return out
}

func assertNoOverlaps(t *testing.T, entities []entity.Entity) {
	t.Helper()
	for i := range entities {
		for j := i + 1; j < len(entities); j++ {
			if entities[i].Overlaps(entities[j]) {
				t.Fatalf("entities %s [%d,%d) and %s [%d,%d) overlap",
					entities[i].ID, entities[i].Start, entities[i].End,
					entities[j].ID, entities[j].Start, entities[j].End)
			}
		}
	}
}

func TestResolve_Empty(t *testing.T) {
	res := Resolve(nil, config.OverlapConfidenceWeighted, nil)
	assert.NotNil(t, res.Entities)
	assert.Empty(t, res.Entities)
	assert.Zero(t, res.Removed)
}

func TestResolve_NoOverlapKeepsEverything(t *testing.T) {
	input := []entity.Entity{
		ent("b", entity.Email, 20, 30, 0.9),
		ent("a", entity.Person, 0, 10, 0.9),
	}
	res := Resolve(input, config.OverlapConfidenceWeighted, nil)
	assert.Equal(t, []string{"a", "b"}, ids(res.Entities))
	assert.Zero(t, res.Removed)
}

func TestResolve_Strategies(t *testing.T) {
	// IBAN: 95*0.4=38, PERSON: 50*0.9=45
	input := []entity.Entity{
		ent("iban", entity.IBAN, 0, 26, 0.4),
		ent("person", entity.Person, 5, 15, 0.9),
	}

	cases := []struct {
		strategy config.OverlapStrategy
		want     string
	}{
		{config.OverlapPriorityOnly, "iban"},
		{config.OverlapConfidenceWeighted, "person"},
	}
	for _, tc := range cases {
		t.Run(string(tc.strategy), func(t *testing.T) {
			res := Resolve(input, tc.strategy, nil)
			assert.Equal(t, []string{tc.want}, ids(res.Entities))
			assert.Equal(t, 1, res.Removed)
		})
	}
}

func TestResolve_TieBreakLongerSpanWins(t *testing.T) {
	short := ent("short", entity.Person, 2, 6, 0.8)
	long := ent("long", entity.Person, 0, 12, 0.8)

	for _, input := range [][]entity.Entity{{short, long}, {long, short}} {
		res := Resolve(input, config.OverlapConfidenceWeighted, nil)
		assert.Equal(t, []string{"long"}, ids(res.Entities))
	}
}

func TestResolve_RemainingTieKeepsFirst(t *testing.T) {
	first := ent("first", entity.Person, 0, 5, 0.8)
	second := ent("second", entity.Person, 0, 5, 0.8)
	res := Resolve([]entity.Entity{first, second}, config.OverlapConfidenceWeighted, nil)
	assert.Equal(t, []string{"first"}, ids(res.Entities))
}

func TestResolve_UnknownTypeScoresZero(t *testing.T) {
	input := []entity.Entity{
		ent("custom", entity.Type("CUSTOM"), 0, 10, 1.0),
		ent("loc", entity.Location, 2, 8, 0.1),
	}
	res := Resolve(input, config.OverlapConfidenceWeighted, nil)
	assert.Equal(t, []string{"loc"}, ids(res.Entities))
}

func TestResolve_PriorityOverrides(t *testing.T) {
	input := []entity.Entity{
		ent("date", entity.Date, 0, 10, 1.0),
		ent("amount", entity.Amount, 0, 10, 1.0),
	}
	table := Priorities(map[entity.Type]float64{entity.Amount: 99})
	res := Resolve(input, config.OverlapPriorityOnly, table)
	assert.Equal(t, []string{"amount"}, ids(res.Entities))
	assert.Equal(t, float64(20), DefaultPriorities[entity.Date], "defaults must stay untouched")
}

func TestResolve_ChainKeepsInvariant(t *testing.T) {
	// pivot [0,10) loses to [8,20); [12,15) does not touch the pivot but
	// overlaps the kept winner and must be removed
	input := []entity.Entity{
		ent("pivot", entity.Location, 0, 10, 0.5),
		ent("winner", entity.IBAN, 8, 20, 0.9),
		ent("late", entity.SwissAVS, 12, 15, 0.9),
		ent("after", entity.Email, 20, 25, 0.9),
	}
	res := Resolve(input, config.OverlapConfidenceWeighted, nil)
	assert.Equal(t, []string{"winner", "after"}, ids(res.Entities))
	assert.Equal(t, 2, res.Removed)
	assertNoOverlaps(t, res.Entities)
}

func TestResolve_DoesNotMutateInput(t *testing.T) {
	input := []entity.Entity{
		ent("b", entity.Person, 5, 9, 0.9),
		ent("a", entity.Email, 0, 7, 0.9),
	}
	before := append([]entity.Entity(nil), input...)
	Resolve(input, config.OverlapConfidenceWeighted, nil)
	assert.Equal(t, before, input)
}

func TestResolve_RandomizedInvariants(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	types := []entity.Type{entity.Person, entity.IBAN, entity.Email, entity.Date, entity.Address, entity.Unknown}

	for round := 0; round < 200; round++ {
		n := rng.Intn(30)
		input := make([]entity.Entity, n)
		for i := range input {
			start := rng.Intn(100)
			input[i] = ent(
				string(rune('a'+i%26))+string(rune('0'+i/26)),
				types[rng.Intn(len(types))],
				start, start+1+rng.Intn(15),
				rng.Float64(),
			)
		}

		for _, strategy := range []config.OverlapStrategy{config.OverlapPriorityOnly, config.OverlapConfidenceWeighted} {
			res := Resolve(input, strategy, nil)
			assertNoOverlaps(t, res.Entities)
			require.Equal(t, n-len(res.Entities), res.Removed, "conservation")
			if n > 0 {
				require.NotEmpty(t, res.Entities)
			}
		}
	}
}
