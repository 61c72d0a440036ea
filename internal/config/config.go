// Package config provides process-wide defaults that seed CursorBuildSpec
// construction for the segment scan engine.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/arkilian/scanengine/pkg/segment"
)

// NullPolicy is an alias of segment.NullPolicy so config stays the single
// place defaults are parsed, while the engine itself only ever sees the
// segment package's type. It replaces a process-wide null-handling flag (a
// design notes) with an explicit, non-global setting.
type NullPolicy = segment.NullPolicy

const (
	// NullPolicySQLCompatible treats missing/absent values as SQL NULL,
	// distinct from a column's type-appropriate zero value.
	NullPolicySQLCompatible = segment.NullPolicySQLCompatible
	// NullPolicyLegacy folds missing values into a type's default
	// (0, "", false) instead of a distinguishable null.
	NullPolicyLegacy = segment.NullPolicyLegacy
)

// nullPolicyFromString parses the sql/legacy spelling used in config files
// and environment variables.
func nullPolicyFromString(s string) (NullPolicy, error) {
	switch s {
	case "sql", "":
		return NullPolicySQLCompatible, nil
	case "legacy":
		return NullPolicyLegacy, nil
	default:
		return 0, fmt.Errorf("invalid null_policy: %s (must be sql or legacy)", s)
	}
}

// VectorizeMode is an alias of segment.VectorizeVirtualColumns so config
// stays the single place defaults are parsed, while the engine itself
// only ever sees the segment package's type.
type VectorizeMode = segment.VectorizeVirtualColumns

const (
	VectorizeForce = segment.VectorizeForce
	VectorizeAuto  = segment.VectorizeAuto
	VectorizeOff   = segment.VectorizeOff
)

// vectorizeModeFromString parses the force/auto/false spelling used in
// config files and environment variables.
func vectorizeModeFromString(s string) (VectorizeMode, error) {
	switch s {
	case "force":
		return VectorizeForce, nil
	case "auto", "":
		return VectorizeAuto, nil
	case "false", "off":
		return VectorizeOff, nil
	default:
		return 0, fmt.Errorf("invalid vectorize_virtual_columns: %s (must be force, auto, or false)", s)
	}
}

// ScanDefaults holds the defaults used to seed a CursorBuildSpec's
// query_context when a caller does not supply one explicitly.
type ScanDefaults struct {
	// VectorSize is the default vector cursor batch width.
	VectorSize int `json:"vector_size" yaml:"vector_size"`

	// NullPolicy is the default null-handling policy.
	NullPolicy NullPolicy `json:"null_policy" yaml:"null_policy"`

	// VectorizeVirtualColumns is the default vectorize_virtual_columns mode.
	VectorizeVirtualColumns VectorizeMode `json:"-" yaml:"-"`

	// Debug enables the holder's filter-bundle construction trace log.
	Debug bool `json:"debug" yaml:"debug"`
}

// QueryContext seeds a segment.QueryContext from these defaults.
func (d *ScanDefaults) QueryContext() segment.QueryContext {
	return segment.QueryContext{VectorSize: d.VectorSize, VectorizeVirtualColumns: d.VectorizeVirtualColumns, NullPolicy: d.NullPolicy, Debug: d.Debug}
}

// DefaultScanDefaults returns the engine's built-in defaults.
func DefaultScanDefaults() *ScanDefaults {
	return &ScanDefaults{
		VectorSize:              512,
		NullPolicy:              NullPolicySQLCompatible,
		VectorizeVirtualColumns: VectorizeAuto,
		Debug:                   false,
	}
}

// Validate validates the defaults.
func (d *ScanDefaults) Validate() error {
	if d.VectorSize <= 0 {
		return fmt.Errorf("vector_size must be positive, got %d", d.VectorSize)
	}
	switch d.NullPolicy {
	case NullPolicySQLCompatible, NullPolicyLegacy:
	default:
		return fmt.Errorf("invalid null_policy: %v (must be sql or legacy)", d.NullPolicy)
	}
	switch d.VectorizeVirtualColumns {
	case VectorizeForce, VectorizeAuto, VectorizeOff:
	default:
		return fmt.Errorf("invalid vectorize_virtual_columns: %v (must be force, auto, or false)", d.VectorizeVirtualColumns)
	}
	return nil
}

// rawDefaults mirrors ScanDefaults but keeps vectorize_virtual_columns as
// its on-the-wire string spelling, since VectorizeMode is an int type.
type rawDefaults struct {
	VectorSize              int    `json:"vector_size" yaml:"vector_size"`
	NullPolicy              string `json:"null_policy" yaml:"null_policy"`
	VectorizeVirtualColumns string `json:"vectorize_virtual_columns" yaml:"vectorize_virtual_columns"`
	Debug                   bool   `json:"debug" yaml:"debug"`
}

func (r rawDefaults) apply(cfg *ScanDefaults) error {
	if r.VectorSize != 0 {
		cfg.VectorSize = r.VectorSize
	}
	if r.NullPolicy != "" {
		policy, err := nullPolicyFromString(r.NullPolicy)
		if err != nil {
			return err
		}
		cfg.NullPolicy = policy
	}
	mode, err := vectorizeModeFromString(r.VectorizeVirtualColumns)
	if err != nil {
		return err
	}
	if r.VectorizeVirtualColumns != "" {
		cfg.VectorizeVirtualColumns = mode
	}
	cfg.Debug = r.Debug
	return nil
}

// LoadFromFile loads ScanDefaults from a YAML or JSON file, layered over
// DefaultScanDefaults.
func LoadFromFile(path string) (*ScanDefaults, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: failed to read defaults file: %w", err)
	}

	cfg := DefaultScanDefaults()
	var raw rawDefaults

	ext := strings.ToLower(filepath.Ext(path))
	switch ext {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, &raw); err != nil {
			return nil, fmt.Errorf("config: failed to parse YAML defaults: %w", err)
		}
	case ".json":
		if err := json.Unmarshal(data, &raw); err != nil {
			return nil, fmt.Errorf("config: failed to parse JSON defaults: %w", err)
		}
	default:
		return nil, fmt.Errorf("config: unsupported defaults file format: %s", ext)
	}

	if err := raw.apply(cfg); err != nil {
		return nil, fmt.Errorf("config: invalid defaults: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config: invalid defaults: %w", err)
	}
	return cfg, nil
}

// LoadFromEnv overlays environment variables (ARKILIAN_SCAN_ prefix) onto cfg.
func LoadFromEnv(cfg *ScanDefaults) error {
	if v := os.Getenv("ARKILIAN_SCAN_VECTOR_SIZE"); v != "" {
		fmt.Sscanf(v, "%d", &cfg.VectorSize)
	}
	if v := os.Getenv("ARKILIAN_SCAN_NULL_POLICY"); v != "" {
		policy, err := nullPolicyFromString(v)
		if err != nil {
			return err
		}
		cfg.NullPolicy = policy
	}
	if v := os.Getenv("ARKILIAN_SCAN_VECTORIZE_VIRTUAL_COLUMNS"); v != "" {
		mode, err := vectorizeModeFromString(v)
		if err != nil {
			return err
		}
		cfg.VectorizeVirtualColumns = mode
	}
	if v := os.Getenv("ARKILIAN_SCAN_DEBUG"); v != "" {
		cfg.Debug = v == "true" || v == "1"
	}
	return nil
}
