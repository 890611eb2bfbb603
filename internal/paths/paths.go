// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package paths

import (
	"os"
	"path/filepath"
	"runtime"
	"strings"
)

// ConfigDirEnv overrides the per-user configuration directory
const ConfigDirEnv = "PII_CONSOLIDATOR_CONFIG_DIR"

// GetConfigDir returns the pii-consolidator configuration directory.
// The override variable wins; otherwise the platform's user config
// directory is used, falling back to ~/.pii-consolidator.
func GetConfigDir() string {
	if dir := os.Getenv(ConfigDirEnv); dir != "" {
		return dir
	}
	if dir, err := os.UserConfigDir(); err == nil {
		return filepath.Join(dir, "pii-consolidator")
	}
	if home, err := os.UserHomeDir(); err == nil {
		return filepath.Join(home, ".pii-consolidator")
	}
	return ".pii-consolidator"
}

// GetConfigFile returns the path to the per-user config file
func GetConfigFile() string {
	return filepath.Join(GetConfigDir(), "config.yaml")
}

// ValidatePath rejects paths the current platform cannot open
func ValidatePath(path string) error {
	if path == "" {
		return nil
	}
	if strings.ContainsRune(path, 0) {
		return &PathValidationError{Path: path, Reason: "contains null byte"}
	}
	if runtime.GOOS != "windows" {
		return nil
	}

	for i, char := range path {
		if !strings.ContainsRune(`<>:"|?*`, char) {
			continue
		}
		// drive letter, C:
		if char == ':' && i == 1 {
			continue
		}
		return &PathValidationError{Path: path, Reason: "contains invalid character: " + string(char)}
	}
	return nil
}

// PathValidationError represents a path validation error
type PathValidationError struct {
	Path   string
	Reason string
}

func (e *PathValidationError) Error() string {
	return "invalid path '" + e.Path + "': " + e.Reason
}
