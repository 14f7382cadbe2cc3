// Copyright 2026 © The Scriptor Authors
// SPDX-License-Identifier: Apache-2.0

package graph

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// LoadManifest loads a manifest from a YAML or JSON file.
func LoadManifest(path string) (Manifest, error) {
	if strings.TrimSpace(path) == "" {
		return Manifest{}, fmt.Errorf("manifest path is required")
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return Manifest{}, err
	}
	ext := strings.ToLower(filepath.Ext(path))
	switch ext {
	case ".json":
		return ParseJSON(data)
	case ".yaml", ".yml":
		return ParseYAML(data)
	default:
		return parseManifestAuto(data)
	}
}

func parseManifestAuto(data []byte) (Manifest, error) {
	trimmed := strings.TrimSpace(string(data))
	if strings.HasPrefix(trimmed, "{") {
		if m, err := ParseJSON(data); err == nil {
			return m, nil
		}
	}
	if m, err := ParseYAML(data); err == nil {
		return m, nil
	}
	if m, err := ParseJSON(data); err == nil {
		return m, nil
	}
	return Manifest{}, fmt.Errorf("unsupported manifest format")
}
