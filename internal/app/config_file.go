package app

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	yaml "gopkg.in/yaml.v3"

	"github.com/hyperifyio/evidencepdf/internal/render"
)

var (
	// ErrConfigParse is returned when a config file is not valid YAML or JSON.
	ErrConfigParse = errors.New("parse config")
	// ErrInvalidConfig is returned by ValidateConfig.
	ErrInvalidConfig = errors.New("invalid config")
	// ErrNoInputs is returned when there is nothing to convert.
	ErrNoInputs = errors.New("no input files")
)

// FileConfig represents the single-file configuration schema.
type FileConfig struct {
	OutDir string `yaml:"outDir" json:"outDir"`

	Container struct {
		Tag   string `yaml:"tag" json:"tag"`
		Class string `yaml:"class" json:"class"`
	} `yaml:"container" json:"container"`

	Style render.Style `yaml:"style" json:"style"`

	KeepGoing    bool `yaml:"keepGoing" json:"keepGoing"`
	Reproducible bool `yaml:"reproducible" json:"reproducible"`
	Verbose      bool `yaml:"verbose" json:"verbose"`

	Log struct {
		File       string `yaml:"file" json:"file"`
		MaxSizeMB  int    `yaml:"maxSizeMB" json:"maxSizeMB"`
		MaxBackups int    `yaml:"maxBackups" json:"maxBackups"`
		MaxAgeDays int    `yaml:"maxAgeDays" json:"maxAgeDays"`
	} `yaml:"log" json:"log"`
}

// LoadConfigFile reads YAML or JSON into FileConfig.
func LoadConfigFile(path string) (FileConfig, error) {
	var fc FileConfig
	b, err := os.ReadFile(path)
	if err != nil {
		return fc, err
	}
	switch ext := filepath.Ext(path); ext {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(b, &fc); err != nil {
			return fc, fmt.Errorf("%w: yaml: %v", ErrConfigParse, err)
		}
	case ".json":
		if err := json.Unmarshal(b, &fc); err != nil {
			return fc, fmt.Errorf("%w: json: %v", ErrConfigParse, err)
		}
	default:
		// Try YAML then JSON
		if err := yaml.Unmarshal(b, &fc); err != nil {
			if jerr := json.Unmarshal(b, &fc); jerr != nil {
				return fc, fmt.Errorf("%w: %v (yaml) / %v (json)", ErrConfigParse, err, jerr)
			}
		}
	}
	return fc, nil
}

// ApplyFileConfig overlays values from fc into cfg for any fields that are
// still unset. Flags are parsed first, so explicit flags win over the file.
func ApplyFileConfig(cfg *Config, fc FileConfig) {
	if cfg == nil {
		return
	}
	if cfg.OutDir == "" && fc.OutDir != "" {
		cfg.OutDir = fc.OutDir
	}
	if cfg.ContainerTag == "" && fc.Container.Tag != "" {
		cfg.ContainerTag = fc.Container.Tag
	}
	if cfg.ContainerClass == "" && fc.Container.Class != "" {
		cfg.ContainerClass = fc.Container.Class
	}
	cfg.Style = fc.Style.Merge(cfg.Style)
	if !cfg.KeepGoing && fc.KeepGoing {
		cfg.KeepGoing = true
	}
	if !cfg.Reproducible && fc.Reproducible {
		cfg.Reproducible = true
	}
	if !cfg.Verbose && fc.Verbose {
		cfg.Verbose = true
	}
	if cfg.LogFile == "" && fc.Log.File != "" {
		cfg.LogFile = fc.Log.File
	}
	if cfg.LogMaxSizeMB == 0 && fc.Log.MaxSizeMB > 0 {
		cfg.LogMaxSizeMB = fc.Log.MaxSizeMB
	}
	if cfg.LogMaxBackups == 0 && fc.Log.MaxBackups > 0 {
		cfg.LogMaxBackups = fc.Log.MaxBackups
	}
	if cfg.LogMaxAgeDays == 0 && fc.Log.MaxAgeDays > 0 {
		cfg.LogMaxAgeDays = fc.Log.MaxAgeDays
	}
}

// ValidateConfig performs minimal validation before any file is touched.
func ValidateConfig(cfg Config) error {
	if len(cfg.Inputs) == 0 {
		return ErrNoInputs
	}
	for _, in := range cfg.Inputs {
		if strings.TrimSpace(in) == "" {
			return fmt.Errorf("%w: empty input path", ErrInvalidConfig)
		}
	}
	if cfg.LogMaxSizeMB < 0 || cfg.LogMaxBackups < 0 || cfg.LogMaxAgeDays < 0 {
		return fmt.Errorf("%w: negative log rotation limits are not allowed", ErrInvalidConfig)
	}
	if strings.ContainsAny(cfg.ContainerTag, " \t<>/") {
		return fmt.Errorf("%w: container tag %q", ErrInvalidConfig, cfg.ContainerTag)
	}
	return cfg.EffectiveStyle().Validate()
}
