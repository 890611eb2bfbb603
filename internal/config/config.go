// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package config

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"gopkg.in/yaml.v3"

	"pii-consolidator/internal/paths"
)

// OverlapStrategy selects how competing overlapping entities are scored
type OverlapStrategy string

const (
	OverlapPriorityOnly       OverlapStrategy = "priority-only"
	OverlapConfidenceWeighted OverlapStrategy = "confidence-weighted"
)

// LinkingStrategy selects how repeated mentions are keyed
type LinkingStrategy string

const (
	LinkingExact      LinkingStrategy = "exact"
	LinkingNormalized LinkingStrategy = "normalized"
	LinkingFuzzy      LinkingStrategy = "fuzzy"
)

// Options controls a single consolidation run. Callers should start from
// Default: the zero value disables every pass. Empty strategies and a zero
// MinAddressComponents are filled in from Default when the options are
// normalized.
type Options struct {
	AddressMaxGap              int             `yaml:"address_max_gap" json:"addressMaxGap"`
	EnableAddressConsolidation bool            `yaml:"enable_address_consolidation" json:"enableAddressConsolidation"`
	EnableOverlapResolution    bool            `yaml:"enable_overlap_resolution" json:"enableOverlapResolution"`
	EnableEntityLinking        bool            `yaml:"enable_entity_linking" json:"enableEntityLinking"`
	ShowComponents             bool            `yaml:"show_components" json:"showComponents"`
	OverlapStrategy            OverlapStrategy `yaml:"overlap_strategy" json:"overlapStrategy"`
	LinkingStrategy            LinkingStrategy `yaml:"linking_strategy" json:"linkingStrategy"`
	MinConsolidationConfidence float64         `yaml:"min_consolidation_confidence" json:"minConsolidationConfidence"`
	PreserveOriginalSpans      bool            `yaml:"preserve_original_spans" json:"preserveOriginalSpans"`
	MinAddressComponents       int             `yaml:"min_address_components" json:"minAddressComponents"`

	// Priorities overrides entries of the default overlap priority table
	Priorities map[string]float64 `yaml:"priorities,omitempty" json:"priorities,omitempty"`
}

// Default returns the options every run starts from
func Default() Options {
	return Options{
		AddressMaxGap:              50,
		EnableAddressConsolidation: true,
		EnableOverlapResolution:    true,
		EnableEntityLinking:        true,
		ShowComponents:             false,
		OverlapStrategy:            OverlapConfidenceWeighted,
		LinkingStrategy:            LinkingNormalized,
		MinConsolidationConfidence: 0.5,
		PreserveOriginalSpans:      true,
		MinAddressComponents:       2,
	}
}

// Config represents the application configuration file
type Config struct {
	// Options applied when no profile is selected
	Consolidation Options `yaml:"consolidation"`

	// Profiles for different document families
	Profiles map[string]Profile `yaml:"profiles"`
}

// Profile is a named set of option overrides
type Profile struct {
	Description   string  `yaml:"description"`
	Consolidation Options `yaml:"consolidation"`
}

// LoadConfig loads configuration from the specified file path
func LoadConfig(configPath string) (*Config, error) {
	config := &Config{
		Consolidation: Default(),
		Profiles:      make(map[string]Profile),
	}

	// Strict profile for documents where only exact repeats may be linked
	config.Profiles["strict"] = Profile{
		Description:   "Priority-only overlap resolution and exact-text linking",
		Consolidation: strictOptions(),
	}

	if configPath == "" {
		return config, nil
	}

	if err := paths.ValidatePath(configPath); err != nil {
		return nil, err
	}
	cleanPath := filepath.Clean(configPath)
	data, err := os.ReadFile(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("error reading config file: %w", err)
	}

	// Profiles are decoded separately so each one starts from the defaults
	var raw struct {
		Consolidation yaml.Node            `yaml:"consolidation"`
		Profiles      map[string]yaml.Node `yaml:"profiles"`
	}
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("error parsing config file: %w", err)
	}

	if !raw.Consolidation.IsZero() {
		if err := raw.Consolidation.Decode(&config.Consolidation); err != nil {
			return nil, fmt.Errorf("error parsing consolidation section: %w", err)
		}
	}

	for name, node := range raw.Profiles {
		profile := Profile{Consolidation: Default()}
		if existing, ok := config.Profiles[name]; ok {
			profile = existing
		}
		if err := node.Decode(&profile); err != nil {
			return nil, fmt.Errorf("error parsing profile %q: %w", name, err)
		}
		config.Profiles[name] = profile
	}

	if err := ValidateConfig(config); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return config, nil
}

// LoadConfigOrDefault loads the given file, falling back to defaults on any error
func LoadConfigOrDefault(configFile string) *Config {
	configPath := configFile
	if configPath == "" {
		configPath = FindConfigFile()
	}

	cfg, err := LoadConfig(configPath)
	if err != nil {
		cfg, _ = LoadConfig("")
	}
	return cfg
}

// FindConfigFile looks for a configuration file in standard locations
func FindConfigFile() string {
	if path := os.Getenv("PII_CONSOLIDATOR_CONFIG"); path != "" && fileExists(path) {
		return path
	}

	for _, name := range []string{"pii-consolidator.yaml", "pii-consolidator.yml", ".pii-consolidator.yaml"} {
		if fileExists(name) {
			return name
		}
	}

	if configFile := paths.GetConfigFile(); fileExists(configFile) {
		return configFile
	}

	return ""
}

// fileExists checks if a file exists
func fileExists(filename string) bool {
	info, err := os.Stat(filename)
	if os.IsNotExist(err) {
		return false
	}
	return err == nil && !info.IsDir()
}

// ListProfiles returns the configured profile names, sorted
func (c *Config) ListProfiles() []string {
	var names []string
	for name := range c.Profiles {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// GetProfile returns the named profile or nil
func (c *Config) GetProfile(name string) *Profile {
	if profile, exists := c.Profiles[name]; exists {
		return &profile
	}
	return nil
}

// Resolve returns the options of the named profile, or the top-level options when name is empty
func (c *Config) Resolve(profileName string) (Options, error) {
	if profileName == "" {
		return c.Consolidation, nil
	}
	profile := c.GetProfile(profileName)
	if profile == nil {
		return Options{}, fmt.Errorf("profile %q not found (available: %v)", profileName, c.ListProfiles())
	}
	return profile.Consolidation, nil
}

func strictOptions() Options {
	opts := Default()
	opts.OverlapStrategy = OverlapPriorityOnly
	opts.LinkingStrategy = LinkingExact
	return opts
}
