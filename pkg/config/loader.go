// Package config loads case and run-configuration files for the engine.
// The engine core takes plain structs; file parsing lives here so the
// calculators stay free of format concerns.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	hjson "github.com/hjson/hjson-go/v4"
	yaml "gopkg.in/yaml.v2"

	"smb_valuation/pkg/models"
)

// CaseFile bundles a financial case with its run configuration so a single
// file can describe a complete valuation request.
type CaseFile struct {
	Case   models.FinancialCase `json:"case" yaml:"case"`
	Config models.RunConfig     `json:"config" yaml:"config"`
}

// Load reads a case file in YAML (.yaml/.yml), HJSON (.hjson), or JSON
// (.json) form, chosen by extension.
func Load(path string) (*CaseFile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read case file: %w", err)
	}

	var cf CaseFile
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, &cf); err != nil {
			return nil, fmt.Errorf("parse %s: %w", path, err)
		}
	case ".hjson":
		// HJSON tolerates comments and loose punctuation; normalize it to
		// JSON first so the struct tags stay the single source of truth.
		var loose interface{}
		if err := hjson.Unmarshal(data, &loose); err != nil {
			return nil, fmt.Errorf("parse %s: %w", path, err)
		}
		normalized, err := json.Marshal(loose)
		if err != nil {
			return nil, fmt.Errorf("normalize %s: %w", path, err)
		}
		if err := json.Unmarshal(normalized, &cf); err != nil {
			return nil, fmt.Errorf("parse %s: %w", path, err)
		}
	case ".json":
		if err := json.Unmarshal(data, &cf); err != nil {
			return nil, fmt.Errorf("parse %s: %w", path, err)
		}
	default:
		return nil, fmt.Errorf("unsupported case file extension %q", filepath.Ext(path))
	}

	return &cf, nil
}
