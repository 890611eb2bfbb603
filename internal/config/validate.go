// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package config

import (
	"errors"
	"fmt"
	"strings"

	"pii-consolidator/internal/entity"
)

// ErrInvalidOption is wrapped by every option validation failure
var ErrInvalidOption = errors.New("invalid consolidation option")

// ValidationError describes a single rejected option
type ValidationError struct {
	Field  string
	Value  interface{}
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s=%v: %s", e.Field, e.Value, e.Reason)
}

func (e *ValidationError) Unwrap() error {
	return ErrInvalidOption
}

// ParseOverlapStrategy resolves an overlap strategy name
func ParseOverlapStrategy(name string) (OverlapStrategy, error) {
	switch s := OverlapStrategy(strings.ToLower(strings.TrimSpace(name))); s {
	case OverlapPriorityOnly, OverlapConfidenceWeighted:
		return s, nil
	}
	return "", &ValidationError{Field: "overlap_strategy", Value: name, Reason: "expected priority-only or confidence-weighted"}
}

// ParseLinkingStrategy resolves a linking strategy name
func ParseLinkingStrategy(name string) (LinkingStrategy, error) {
	switch s := LinkingStrategy(strings.ToLower(strings.TrimSpace(name))); s {
	case LinkingExact, LinkingNormalized, LinkingFuzzy:
		return s, nil
	}
	return "", &ValidationError{Field: "linking_strategy", Value: name, Reason: "expected exact, normalized or fuzzy"}
}

// Validate checks every option; priority overrides must name taxonomy types
func (o Options) Validate() error {
	_, err := o.Normalize()
	return err
}

// Normalize validates o and returns it in canonical form. Strategy names
// are resolved to their constants, and empty strategies and a zero
// MinAddressComponents take the Default values.
func (o Options) Normalize() (Options, error) {
	var errs []error
	defaults := Default()

	if strings.TrimSpace(string(o.OverlapStrategy)) == "" {
		o.OverlapStrategy = defaults.OverlapStrategy
	} else if s, err := ParseOverlapStrategy(string(o.OverlapStrategy)); err != nil {
		errs = append(errs, err)
	} else {
		o.OverlapStrategy = s
	}
	if strings.TrimSpace(string(o.LinkingStrategy)) == "" {
		o.LinkingStrategy = defaults.LinkingStrategy
	} else if s, err := ParseLinkingStrategy(string(o.LinkingStrategy)); err != nil {
		errs = append(errs, err)
	} else {
		o.LinkingStrategy = s
	}
	if o.MinAddressComponents == 0 {
		o.MinAddressComponents = defaults.MinAddressComponents
	}

	if o.AddressMaxGap < 0 {
		errs = append(errs, &ValidationError{Field: "address_max_gap", Value: o.AddressMaxGap, Reason: "must not be negative"})
	}
	if o.MinAddressComponents < 1 {
		errs = append(errs, &ValidationError{Field: "min_address_components", Value: o.MinAddressComponents, Reason: "must be at least 1"})
	}
	if o.MinConsolidationConfidence < 0 || o.MinConsolidationConfidence > 1 {
		errs = append(errs, &ValidationError{Field: "min_consolidation_confidence", Value: o.MinConsolidationConfidence, Reason: "must be within [0,1]"})
	}
	for name, priority := range o.Priorities {
		if _, err := entity.ParseType(name); err != nil {
			errs = append(errs, &ValidationError{Field: "priorities", Value: name, Reason: "not a known entity type"})
		}
		if priority < 0 {
			errs = append(errs, &ValidationError{Field: "priorities." + name, Value: priority, Reason: "must not be negative"})
		}
	}

	if err := errors.Join(errs...); err != nil {
		return Options{}, err
	}
	return o, nil
}

// ValidateConfig validates the top-level options and every profile, and
// rewrites them in canonical form
func ValidateConfig(config *Config) error {
	if config == nil {
		return fmt.Errorf("configuration cannot be nil")
	}

	opts, err := config.Consolidation.Normalize()
	if err != nil {
		return fmt.Errorf("consolidation: %w", err)
	}
	config.Consolidation = opts

	for _, name := range config.ListProfiles() {
		profile := config.Profiles[name]
		opts, err := profile.Consolidation.Normalize()
		if err != nil {
			return fmt.Errorf("profile %q: %w", name, err)
		}
		profile.Consolidation = opts
		config.Profiles[name] = profile
	}

	return nil
}

// PriorityOverrides converts the validated overrides to typed keys
func (o Options) PriorityOverrides() map[entity.Type]float64 {
	if len(o.Priorities) == 0 {
		return nil
	}
	out := make(map[entity.Type]float64, len(o.Priorities))
	for name, priority := range o.Priorities {
		if t, err := entity.ParseType(name); err == nil {
			out[t] = priority
		}
	}
	return out
}
