// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"pii-consolidator/internal/entity"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}
	return path
}

func TestDefault(t *testing.T) {
	opts := Default()
	assert.Equal(t, 50, opts.AddressMaxGap)
	assert.True(t, opts.EnableAddressConsolidation)
	assert.True(t, opts.EnableOverlapResolution)
	assert.True(t, opts.EnableEntityLinking)
	assert.False(t, opts.ShowComponents)
	assert.Equal(t, OverlapConfidenceWeighted, opts.OverlapStrategy)
	assert.Equal(t, LinkingNormalized, opts.LinkingStrategy)
	assert.Equal(t, 0.5, opts.MinConsolidationConfidence)
	assert.True(t, opts.PreserveOriginalSpans)
	assert.Equal(t, 2, opts.MinAddressComponents)
	assert.NoError(t, opts.Validate())
}

func TestLoadConfig_Defaults(t *testing.T) {
	cfg, err := LoadConfig("")
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg.Consolidation)
	require.NotNil(t, cfg.GetProfile("strict"))
	assert.Equal(t, LinkingExact, cfg.GetProfile("strict").Consolidation.LinkingStrategy)
}

func TestLoadConfig_PartialFileKeepsDefaults(t *testing.T) {
	path := writeConfig(t, `
consolidation:
  address_max_gap: 80
  linking_strategy: fuzzy
profiles:
  letters:
    description: Swiss letters
    consolidation:
      show_components: true
`)
	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, 80, cfg.Consolidation.AddressMaxGap)
	assert.Equal(t, LinkingFuzzy, cfg.Consolidation.LinkingStrategy)
	assert.True(t, cfg.Consolidation.EnableEntityLinking, "unset bools must keep their default")
	assert.True(t, cfg.Consolidation.PreserveOriginalSpans)

	letters := cfg.GetProfile("letters")
	require.NotNil(t, letters)
	assert.True(t, letters.Consolidation.ShowComponents)
	assert.Equal(t, 50, letters.Consolidation.AddressMaxGap)
	assert.Equal(t, []string{"letters", "strict"}, cfg.ListProfiles())
}

func TestLoadConfig_InvalidStrategy(t *testing.T) {
	path := writeConfig(t, `
consolidation:
  overlap_strategy: loudest-wins
`)
	_, err := LoadConfig(path)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrInvalidOption))
}

func TestLoadConfig_UnknownPriorityType(t *testing.T) {
	path := writeConfig(t, `
consolidation:
  priorities:
    IBAN: 99
    CREDIT_CARD: 10
`)
	_, err := LoadConfig(path)
	require.Error(t, err)

	var verr *ValidationError
	require.True(t, errors.As(err, &verr))
	assert.Equal(t, "priorities", verr.Field)
}

func TestLoadConfig_MissingFile(t *testing.T) {
	_, err := LoadConfig("/nonexistent/config.yaml")
	assert.Error(t, err)
}

func TestLoadConfigOrDefault_InvalidYAML(t *testing.T) {
	path := writeConfig(t, ":::invalid yaml:::")
	cfg := LoadConfigOrDefault(path)
	require.NotNil(t, cfg)
	assert.Equal(t, Default(), cfg.Consolidation)
}

func TestResolve(t *testing.T) {
	cfg, err := LoadConfig("")
	require.NoError(t, err)

	opts, err := cfg.Resolve("")
	require.NoError(t, err)
	assert.Equal(t, LinkingNormalized, opts.LinkingStrategy)

	opts, err = cfg.Resolve("strict")
	require.NoError(t, err)
	assert.Equal(t, OverlapPriorityOnly, opts.OverlapStrategy)

	_, err = cfg.Resolve("missing")
	assert.Error(t, err)
}

func TestParseStrategies(t *testing.T) {
	cases := []struct {
		input   string
		wantErr bool
	}{
		{"exact", false},
		{" Fuzzy ", false},
		{"normalized", false},
		{"soundex", true},
	}
	for _, tc := range cases {
		t.Run(tc.input, func(t *testing.T) {
			_, err := ParseLinkingStrategy(tc.input)
			assert.Equal(t, tc.wantErr, err != nil)
		})
	}

	s, err := ParseOverlapStrategy("PRIORITY-ONLY")
	require.NoError(t, err)
	assert.Equal(t, OverlapPriorityOnly, s)
}

func TestValidate_CollectsAllErrors(t *testing.T) {
	opts := Default()
	opts.AddressMaxGap = -1
	opts.MinAddressComponents = -1
	opts.MinConsolidationConfidence = 1.5

	err := opts.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "address_max_gap")
	assert.Contains(t, err.Error(), "min_address_components")
	assert.Contains(t, err.Error(), "min_consolidation_confidence")
}

func TestNormalize_CanonicalStrategies(t *testing.T) {
	cases := []struct {
		name        string
		overlap     OverlapStrategy
		linking     LinkingStrategy
		wantOverlap OverlapStrategy
		wantLinking LinkingStrategy
	}{
		{"canonical", OverlapPriorityOnly, LinkingExact, OverlapPriorityOnly, LinkingExact},
		{"mixed case", "Priority-Only", "EXACT", OverlapPriorityOnly, LinkingExact},
		{"padded", " confidence-weighted ", "Fuzzy\t", OverlapConfidenceWeighted, LinkingFuzzy},
		{"empty takes defaults", "", "", OverlapConfidenceWeighted, LinkingNormalized},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			opts := Default()
			opts.OverlapStrategy = tc.overlap
			opts.LinkingStrategy = tc.linking

			got, err := opts.Normalize()
			require.NoError(t, err)
			assert.Equal(t, tc.wantOverlap, got.OverlapStrategy)
			assert.Equal(t, tc.wantLinking, got.LinkingStrategy)
		})
	}
}

func TestNormalize_ZeroOptions(t *testing.T) {
	got, err := Options{AddressMaxGap: 80}.Normalize()
	require.NoError(t, err)
	assert.Equal(t, 80, got.AddressMaxGap)
	assert.Equal(t, OverlapConfidenceWeighted, got.OverlapStrategy)
	assert.Equal(t, LinkingNormalized, got.LinkingStrategy)
	assert.Equal(t, 2, got.MinAddressComponents)
}

func TestNormalize_InvalidReturnsZero(t *testing.T) {
	opts := Default()
	opts.LinkingStrategy = "soundex"
	got, err := opts.Normalize()
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrInvalidOption))
	assert.Equal(t, Options{}, got)
}

func TestLoadConfig_NormalizesStrategyNames(t *testing.T) {
	path := writeConfig(t, `
consolidation:
  overlap_strategy: Priority-Only
  linking_strategy: EXACT
profiles:
  loose:
    consolidation:
      linking_strategy: FUZZY
`)
	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, OverlapPriorityOnly, cfg.Consolidation.OverlapStrategy)
	assert.Equal(t, LinkingExact, cfg.Consolidation.LinkingStrategy)
	assert.Equal(t, LinkingFuzzy, cfg.GetProfile("loose").Consolidation.LinkingStrategy)
}

func TestPriorityOverrides(t *testing.T) {
	opts := Default()
	assert.Nil(t, opts.PriorityOverrides())

	opts.Priorities = map[string]float64{"iban": 120}
	assert.Equal(t, map[entity.Type]float64{entity.IBAN: 120}, opts.PriorityOverrides())
}

func TestFindConfigFile(t *testing.T) {
	t.Run("explicit env file", func(t *testing.T) {
		path := writeConfig(t, "consolidation: {}\n")
		t.Setenv("PII_CONSOLIDATOR_CONFIG", path)
		assert.Equal(t, path, FindConfigFile())
	})

	t.Run("user config dir", func(t *testing.T) {
		dir := t.TempDir()
		require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte("consolidation: {}\n"), 0600))
		t.Setenv("PII_CONSOLIDATOR_CONFIG", "")
		t.Setenv("PII_CONSOLIDATOR_CONFIG_DIR", dir)
		assert.Equal(t, filepath.Join(dir, "config.yaml"), FindConfigFile())
	})

	t.Run("nothing found", func(t *testing.T) {
		t.Setenv("PII_CONSOLIDATOR_CONFIG", "")
		t.Setenv("PII_CONSOLIDATOR_CONFIG_DIR", t.TempDir())
		assert.Empty(t, FindConfigFile())
	})
}

func TestLoadConfig_InvalidPath(t *testing.T) {
	_, err := LoadConfig("bad\x00config.yaml")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "null byte")
}
