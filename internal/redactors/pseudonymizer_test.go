// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package redactors

import (
	"errors"
	"strings"
	"testing"

	"pii-consolidator/internal/entity"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const letter = "Herr Hans Müller wohnt an der Bahnhofstrasse 10, 8001 Zürich. Später kontaktierte Hans Müller erneut."

func at(t *testing.T, id string, typ entity.Type, sub string, from int, logicalID string) entity.Entity {
	t.Helper()
	i := strings.Index(letter[from:], sub)
	require.GreaterOrEqual(t, i, 0, "%q not found", sub)
	start := from + i
	return entity.Entity{ID: id, Type: typ, Text: sub, Start: start, End: start + len(sub), LogicalID: logicalID}
}

func TestPseudonymize_Placeholder(t *testing.T) {
	entities := []entity.Entity{
		at(t, "p1", entity.PersonName, "Hans Müller", 0, "PERSON_1"),
		at(t, "a", entity.SwissAddress, "Bahnhofstrasse 10, 8001 Zürich", 0, ""),
		at(t, "p2", entity.PersonName, "Hans Müller", 20, "PERSON_1"),
	}

	res, err := Pseudonymize(letter, entities, RedactionPlaceholder)
	require.NoError(t, err)
	assert.Equal(t, "Herr [PERSON_1] wohnt an der [ADDRESS_1]. Später kontaktierte [PERSON_1] erneut.", res.Text)
	require.Len(t, res.Replacements, 3)
	assert.Equal(t, "a", res.Replacements[1].EntityID)
	assert.Zero(t, res.Skipped)
}

func TestPseudonymize_FallbackNumbersAfterLogicalIDs(t *testing.T) {
	text := "Anna, Bert, Anna, Carl"
	entities := []entity.Entity{
		{ID: "1", Type: entity.Person, Start: 0, End: 4, LogicalID: "PERSON_1"},
		{ID: "2", Type: entity.Person, Start: 6, End: 10},
		{ID: "3", Type: entity.Person, Start: 12, End: 16, LogicalID: "PERSON_1"},
		{ID: "4", Type: entity.PersonName, Start: 18, End: 22},
	}

	res, err := Pseudonymize(text, entities, RedactionPlaceholder)
	require.NoError(t, err)
	assert.Equal(t, "[PERSON_1], [PERSON_2], [PERSON_1], [PERSON_3]", res.Text)
}

func TestPseudonymize_Mask(t *testing.T) {
	text := "IBAN CH93 0076 2011 6238 5295 7, Tel. +41 44 123 45 67"
	entities := []entity.Entity{
		{ID: "iban", Type: entity.IBAN, Start: 5, End: 31},
		{ID: "tel", Type: entity.Phone, Start: 38, End: 54},
	}

	res, err := Pseudonymize(text, entities, RedactionMask)
	require.NoError(t, err)
	assert.Equal(t, "IBAN XX00 0000 0000 0000 0000 0, Tel. +00 00 000 00 00", res.Text)
}

func TestPseudonymize_SkipsNestedSpans(t *testing.T) {
	// address with its absorbed fragments kept alongside
	text := "Seestrasse 4, 8002 Zürich"
	entities := []entity.Entity{
		{ID: "street", Type: entity.StreetName, Start: 0, End: 10},
		{ID: "addr", Type: entity.SwissAddress, Start: 0, End: 26},
		{ID: "zip", Type: entity.PostalCode, Start: 14, End: 18},
	}

	res, err := Pseudonymize(text, entities, RedactionPlaceholder)
	require.NoError(t, err)
	assert.Equal(t, "[ADDRESS_1]", res.Text)
	assert.Equal(t, 2, res.Skipped)
	require.Len(t, res.Replacements, 1)
	assert.Equal(t, "addr", res.Replacements[0].EntityID)
}

func TestPseudonymize_Errors(t *testing.T) {
	t.Run("span outside text", func(t *testing.T) {
		_, err := Pseudonymize("short", []entity.Entity{{ID: "x", Type: entity.Person, Start: 2, End: 40}}, RedactionPlaceholder)
		var rerr *RedactionError
		require.True(t, errors.As(err, &rerr))
		assert.Equal(t, ErrorPositionMapping, rerr.Type)
		assert.Equal(t, "x", rerr.EntityID)
	})

	t.Run("unknown strategy", func(t *testing.T) {
		_, err := Pseudonymize("text", nil, RedactionStrategy(9))
		var rerr *RedactionError
		require.True(t, errors.As(err, &rerr))
		assert.Equal(t, ErrorConfiguration, rerr.Type)
	})
}

func TestPseudonymize_NoEntities(t *testing.T) {
	res, err := Pseudonymize(letter, nil, RedactionPlaceholder)
	require.NoError(t, err)
	assert.Equal(t, letter, res.Text)
	assert.Empty(t, res.Replacements)
}

func TestParseRedactionStrategy(t *testing.T) {
	cases := []struct {
		in      string
		want    RedactionStrategy
		wantErr bool
	}{
		{"placeholder", RedactionPlaceholder, false},
		{"", RedactionPlaceholder, false},
		{"MASK", RedactionMask, false},
		{"synthetic", 0, true},
	}
	for _, tc := range cases {
		t.Run(tc.in, func(t *testing.T) {
			got, err := ParseRedactionStrategy(tc.in)
			if tc.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
			assert.Equal(t, got, mustParse(t, got.String()))
		})
	}
}

func mustParse(t *testing.T, s string) RedactionStrategy {
	t.Helper()
	got, err := ParseRedactionStrategy(s)
	require.NoError(t, err)
	return got
}
