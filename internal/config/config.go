/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except
 * in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the
 *  specific language governing permissions and limitations under the License.
 */

package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// AppConfig is the user-editable configuration persisted to a YAML file in the user scope.
// Environment variables are treated as read-only overrides at runtime.
//
// config_version: bump when the structure changes in a backward-incompatible way.
// Unknown fields are ignored on unmarshal.

type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
	Source bool   `yaml:"source"`
	File   string `yaml:"file"`
}

type HistoryConfig struct {
	MaxBytes   int `yaml:"max_bytes"`
	MaxEntries int `yaml:"max_entries"` // 0 means unlimited
}

type CanvasConfig struct {
	MinResizePx float64 `yaml:"min_resize_px"`
	OriginX     float64 `yaml:"origin_x"`
	OriginY     float64 `yaml:"origin_y"`
}

type ExportConfig struct {
	OutDir  string   `yaml:"out_dir"`
	Formats []string `yaml:"formats"`
}

type TemplatesConfig struct {
	Dir string `yaml:"dir"`
}

type AppConfig struct {
	ConfigVersion int             `yaml:"config_version"`
	Logging       LoggingConfig   `yaml:"logging"`
	History       HistoryConfig   `yaml:"history"`
	Canvas        CanvasConfig    `yaml:"canvas"`
	Export        ExportConfig    `yaml:"export"`
	Templates     TemplatesConfig `yaml:"templates"`
}

// Defaults returns the application defaults.
func Defaults() AppConfig {
	return AppConfig{
		ConfigVersion: 1,
		Logging:       LoggingConfig{Level: "info", Format: "console", Source: false, File: ""},
		History:       HistoryConfig{MaxBytes: 16 * 1024 * 1024, MaxEntries: 0},
		Canvas:        CanvasConfig{MinResizePx: 1},
		Export:        ExportConfig{OutDir: "export", Formats: []string{"html", "react"}},
	}
}

// Env var names used as overrides.
const (
	EnvConfigPath = "PB_CONFIG"
	// EnvLogLevel Logging envs
	EnvLogLevel  = "PB_LOG_LEVEL"
	EnvLogFormat = "PB_LOG_FORMAT"
	EnvLogSource = "PB_LOG_SOURCE"
	EnvLogFile   = "PB_LOG_FILE"

	EnvHistoryMaxBytes   = "PB_HISTORY_MAX_BYTES"
	EnvHistoryMaxEntries = "PB_HISTORY_MAX_ENTRIES"
	EnvMinResizePx       = "PB_CANVAS_MIN_RESIZE_PX"
	EnvExportDir         = "PB_EXPORT_DIR"
	EnvExportFormats     = "PB_EXPORT_FORMATS" // comma separated
	EnvTemplatesDir      = "PB_TEMPLATES_DIR"
)

// envKeys maps dotted config keys to their override variables.
var envKeys = map[string]string{
	"logging.level":        EnvLogLevel,
	"logging.format":       EnvLogFormat,
	"logging.source":       EnvLogSource,
	"logging.file":         EnvLogFile,
	"history.max_bytes":    EnvHistoryMaxBytes,
	"history.max_entries":  EnvHistoryMaxEntries,
	"canvas.min_resize_px": EnvMinResizePx,
	"export.out_dir":       EnvExportDir,
	"export.formats":       EnvExportFormats,
	"templates.dir":        EnvTemplatesDir,
}

// ConfigPath returns the per-user config file path. PB_CONFIG overrides it.
func ConfigPath() (string, error) {
	if p := strings.TrimSpace(os.Getenv(EnvConfigPath)); p != "" {
		return p, nil
	}
	var base string
	switch runtime.GOOS {
	case "windows":
		base = os.Getenv("AppData")
		if base == "" { // fallback
			base = filepath.Join(os.Getenv("USERPROFILE"), "AppData", "Roaming")
		}
		base = filepath.Join(base, "PageBuilder")
	case "darwin":
		base = filepath.Join(os.Getenv("HOME"), "Library", "Application Support", "PageBuilder")
	default: // linux and others
		base = filepath.Join(os.Getenv("HOME"), ".config", "pagebuilder")
	}
	if base == "" {
		return "", errors.New("cannot resolve config directory")
	}
	return filepath.Join(base, "config.yaml"), nil
}

// Load reads the user config file (if present), applies defaults, and merges environment overrides.
func Load() (AppConfig, error) {
	path, err := ConfigPath()
	if err != nil {
		cfg := Defaults()
		applyEnvOverrides(&cfg)
		return cfg, err
	}
	return LoadFrom(path)
}

// LoadFrom is Load with an explicit file path. A missing file yields the
// defaults; a malformed file is an error.
func LoadFrom(path string) (AppConfig, error) {
	cfg := Defaults()
	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		var fileCfg AppConfig
		if err := yaml.Unmarshal(data, &fileCfg); err != nil {
			applyEnvOverrides(&cfg)
			return cfg, fmt.Errorf("parse %s: %w", filepath.Base(path), err)
		}
		mergeInto(&cfg, &fileCfg)
	case !errors.Is(err, os.ErrNotExist):
		applyEnvOverrides(&cfg)
		return cfg, fmt.Errorf("read config: %w", err)
	}
	applyEnvOverrides(&cfg)
	return cfg, cfg.Validate()
}

// Save writes the user config YAML.
func Save(cfg AppConfig) error {
	path, err := ConfigPath()
	if err != nil {
		return err
	}
	return SaveTo(path, cfg)
}

// SaveTo writes cfg as YAML to path.
func SaveTo(path string, cfg AppConfig) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o600)
}

// Validate rejects values no component can run with.
func (c AppConfig) Validate() error {
	var errs []error
	if c.History.MaxBytes < 0 {
		errs = append(errs, fmt.Errorf("history.max_bytes must be >= 0, got %d", c.History.MaxBytes))
	}
	if c.History.MaxEntries < 0 {
		errs = append(errs, fmt.Errorf("history.max_entries must be >= 0, got %d", c.History.MaxEntries))
	}
	if c.Canvas.MinResizePx < 0 {
		errs = append(errs, fmt.Errorf("canvas.min_resize_px must be >= 0, got %g", c.Canvas.MinResizePx))
	}
	switch c.Logging.Format {
	case "", "console", "json":
	default:
		errs = append(errs, fmt.Errorf("logging.format must be console or json, got %q", c.Logging.Format))
	}
	return errors.Join(errs...)
}

func mergeInto(dst *AppConfig, src *AppConfig) {
	if src.ConfigVersion != 0 {
		dst.ConfigVersion = src.ConfigVersion
	}
	// logging
	if strings.TrimSpace(src.Logging.Level) != "" {
		dst.Logging.Level = strings.ToLower(strings.TrimSpace(src.Logging.Level))
	}
	if strings.TrimSpace(src.Logging.Format) != "" {
		dst.Logging.Format = strings.ToLower(strings.TrimSpace(src.Logging.Format))
	}
	dst.Logging.Source = src.Logging.Source
	if strings.TrimSpace(src.Logging.File) != "" {
		dst.Logging.File = strings.TrimSpace(src.Logging.File)
	}
	// history
	if src.History.MaxBytes != 0 {
		dst.History.MaxBytes = src.History.MaxBytes
	}
	if src.History.MaxEntries != 0 {
		dst.History.MaxEntries = src.History.MaxEntries
	}
	// canvas
	if src.Canvas.MinResizePx != 0 {
		dst.Canvas.MinResizePx = src.Canvas.MinResizePx
	}
	dst.Canvas.OriginX = src.Canvas.OriginX
	dst.Canvas.OriginY = src.Canvas.OriginY
	// export
	if strings.TrimSpace(src.Export.OutDir) != "" {
		dst.Export.OutDir = strings.TrimSpace(src.Export.OutDir)
	}
	if len(src.Export.Formats) > 0 {
		dst.Export.Formats = append([]string(nil), src.Export.Formats...)
	}
	if strings.TrimSpace(src.Templates.Dir) != "" {
		dst.Templates.Dir = strings.TrimSpace(src.Templates.Dir)
	}
}

func truthy(v string) bool {
	lv := strings.ToLower(v)
	return lv == "1" || lv == "true" || lv == "on" || lv == "yes"
}

func applyEnvOverrides(cfg *AppConfig) {
	// logging overrides
	if v := strings.TrimSpace(os.Getenv(EnvLogLevel)); v != "" {
		cfg.Logging.Level = strings.ToLower(v)
	}
	if v := strings.TrimSpace(os.Getenv(EnvLogFormat)); v != "" {
		cfg.Logging.Format = strings.ToLower(v)
	}
	if v := strings.TrimSpace(os.Getenv(EnvLogSource)); v != "" {
		cfg.Logging.Source = truthy(v)
	}
	if v := strings.TrimSpace(os.Getenv(EnvLogFile)); v != "" {
		cfg.Logging.File = v
	}
	if v := strings.TrimSpace(os.Getenv(EnvHistoryMaxBytes)); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.History.MaxBytes = n
		}
	}
	if v := strings.TrimSpace(os.Getenv(EnvHistoryMaxEntries)); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.History.MaxEntries = n
		}
	}
	if v := strings.TrimSpace(os.Getenv(EnvMinResizePx)); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			cfg.Canvas.MinResizePx = f
		}
	}
	if v := strings.TrimSpace(os.Getenv(EnvExportDir)); v != "" {
		cfg.Export.OutDir = v
	}
	if v := strings.TrimSpace(os.Getenv(EnvExportFormats)); v != "" {
		var fs []string
		for _, f := range strings.Split(v, ",") {
			if f = strings.TrimSpace(f); f != "" {
				fs = append(fs, f)
			}
		}
		cfg.Export.Formats = fs
	}
	if v := strings.TrimSpace(os.Getenv(EnvTemplatesDir)); v != "" {
		cfg.Templates.Dir = v
	}
}

// EnvOverrideFor returns the env var name if the field is overridden by environment variables.
func EnvOverrideFor(key string) (string, bool) {
	name, ok := envKeys[key]
	if !ok || os.Getenv(name) == "" {
		return "", false
	}
	return name, true
}
