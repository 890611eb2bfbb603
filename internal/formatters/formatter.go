// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package formatters

import (
	"fmt"
	"sort"
	"strings"
	"sync"

	"pii-consolidator/internal/consolidation"
)

// FormatterOptions defines configuration options for formatters
type FormatterOptions struct {
	NoColor  bool // Whether to disable colored output
	ShowText bool // Whether to display the entity text; masked otherwise
	Verbose  bool // Whether to display components and run metadata
	Compact  bool // Whether to emit single-line JSON
}

// Formatter renders consolidation results. Implementations register
// themselves from init.
type Formatter interface {
	Format(results []*consolidation.Result, options FormatterOptions) (string, error)

	// Name is the value accepted by --format
	Name() string
	Description() string
	FileExtension() string
	MimeType() string
}

// FormatInfo provides metadata about a formatter
type FormatInfo struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Extension   string `json:"extension"`
	MimeType    string `json:"mimeType"`
}

// Registry maps format names to formatters. Safe for concurrent use.
type Registry struct {
	mu         sync.RWMutex
	formatters map[string]Formatter
}

// NewRegistry creates an empty registry
func NewRegistry() *Registry {
	return &Registry{formatters: make(map[string]Formatter)}
}

// Register adds a formatter. Registering the same name twice panics.
func (r *Registry) Register(formatter Formatter) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, dup := r.formatters[formatter.Name()]; dup {
		panic("formatters: Register called twice for " + formatter.Name())
	}
	r.formatters[formatter.Name()] = formatter
}

// Get retrieves a formatter by name
func (r *Registry) Get(name string) (Formatter, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	formatter, exists := r.formatters[strings.ToLower(name)]
	return formatter, exists
}

// ForExtension finds the formatter writing files with the given extension,
// with or without the leading dot. ".yml" is accepted for YAML.
func (r *Registry) ForExtension(ext string) (Formatter, bool) {
	ext = strings.ToLower(ext)
	if ext != "" && ext[0] != '.' {
		ext = "." + ext
	}
	if ext == ".yml" {
		ext = ".yaml"
	}

	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, f := range r.formatters {
		if f.FileExtension() == ext {
			return f, true
		}
	}
	return nil, false
}

// List returns all registered formatter names in sorted order
func (r *Registry) List() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.formatters))
	for name := range r.formatters {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Export renders results with the named formatter
func (r *Registry) Export(format string, results []*consolidation.Result, options FormatterOptions) (string, error) {
	formatter, exists := r.Get(format)
	if !exists {
		return "", fmt.Errorf("unsupported format '%s'. Available formats: %s", format, strings.Join(r.List(), ", "))
	}
	return formatter.Format(results, options)
}

// DefaultRegistry holds the formatters registered by the subpackages
var DefaultRegistry = NewRegistry()

// Register adds a formatter to the default registry
func Register(formatter Formatter) {
	DefaultRegistry.Register(formatter)
}

// Get looks a formatter up in the default registry
func Get(name string) (Formatter, bool) {
	return DefaultRegistry.Get(name)
}

// ForExtension looks a formatter up in the default registry by extension
func ForExtension(ext string) (Formatter, bool) {
	return DefaultRegistry.ForExtension(ext)
}

// List names the formatters in the default registry
func List() []string {
	return DefaultRegistry.List()
}

// Export renders results with a formatter from the default registry
func Export(format string, results []*consolidation.Result, options FormatterOptions) (string, error) {
	return DefaultRegistry.Export(format, results, options)
}

// GetFormatInfo returns metadata about a specific formatter, or the zero
// value when none is registered under name
func GetFormatInfo(name string) FormatInfo {
	formatter, exists := Get(name)
	if !exists {
		return FormatInfo{}
	}
	return FormatInfo{
		Name:        formatter.Name(),
		Description: formatter.Description(),
		Extension:   formatter.FileExtension(),
		MimeType:    formatter.MimeType(),
	}
}

// GetSupportedFormats returns information about all available formatters
func GetSupportedFormats() []FormatInfo {
	var formats []FormatInfo
	for _, name := range List() {
		formats = append(formats, GetFormatInfo(name))
	}
	return formats
}
