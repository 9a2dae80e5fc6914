/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except
 * in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the
 *  specific language governing permissions and limitations under the License.
 */

// Package config loads the user configuration: a YAML file in the user
// config directory merged onto defaults, with environment variables as
// read-only overrides.
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

	applog "penpath/internal/log"
)

// PenConfig tunes the pen tool. Distances are in screen pixels.
type PenConfig struct {
	CloseTolerance float64 `yaml:"close_tolerance_px"`
	DragThreshold  float64 `yaml:"drag_threshold_px"`
	HandleSize     float64 `yaml:"handle_size_px"`
	AnchorSize     float64 `yaml:"anchor_size_px"`
	HistoryDepth   int     `yaml:"history_depth"`
}

// JournalConfig selects where committed history entries are persisted.
// Driver "sqlite" uses Path, "postgres" uses DSN, "" disables the journal.
type JournalConfig struct {
	Driver string `yaml:"driver"`
	Path   string `yaml:"path"`
	DSN    string `yaml:"dsn"`
}

type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
	Source bool   `yaml:"source"`
	File   string `yaml:"file"`
}

type TelemetryConfig struct {
	OptIn bool   `yaml:"opt_in"`
	File  string `yaml:"file"`
}

// AppConfig is the persisted configuration. Bump ConfigVersion on
// incompatible layout changes.
type AppConfig struct {
	ConfigVersion int             `yaml:"config_version"`
	Pen           PenConfig       `yaml:"pen"`
	Journal       JournalConfig   `yaml:"journal"`
	Logging       LoggingConfig   `yaml:"logging"`
	Telemetry     TelemetryConfig `yaml:"telemetry"`
}

// Defaults returns the application defaults.
func Defaults() AppConfig {
	return AppConfig{
		ConfigVersion: 1,
		Pen: PenConfig{
			CloseTolerance: 10,
			DragThreshold:  2,
			HandleSize:     6,
			AnchorSize:     8,
			HistoryDepth:   200,
		},
		Journal:   JournalConfig{Driver: "sqlite"},
		Logging:   LoggingConfig{Level: "info", Format: "console"},
		Telemetry: TelemetryConfig{OptIn: false},
	}
}

// Env var names used as overrides.
const (
	EnvCloseTolerance = "PEN_CLOSE_TOLERANCE"
	EnvDragThreshold  = "PEN_DRAG_THRESHOLD"
	EnvHistoryDepth   = "PEN_HISTORY_DEPTH"
	EnvJournalDriver  = "PEN_JOURNAL_DRIVER"
	EnvJournalDSN     = "PEN_JOURNAL_DSN"
	EnvTelemetry      = "PEN_TELEMETRY"
	EnvLogLevel       = "PEN_LOG_LEVEL"
	EnvLogFormat      = "PEN_LOG_FORMAT"
	EnvLogSource      = "PEN_LOG_SOURCE"
	EnvLogFile        = "PEN_LOG_FILE"
	// EnvConfigDir replaces the OS config directory, mostly for tests.
	EnvConfigDir = "PEN_CONFIG_DIR"
)

// Dir returns the per-user directory holding config, journal and reports.
func Dir() (string, error) {
	if v := strings.TrimSpace(os.Getenv(EnvConfigDir)); v != "" {
		return v, nil
	}
	var base string
	switch runtime.GOOS {
	case "windows":
		base = os.Getenv("AppData")
		if base == "" {
			base = filepath.Join(os.Getenv("USERPROFILE"), "AppData", "Roaming")
		}
		base = filepath.Join(base, "PenPath")
	case "darwin":
		base = filepath.Join(os.Getenv("HOME"), "Library", "Application Support", "PenPath")
	default:
		if x := os.Getenv("XDG_CONFIG_HOME"); x != "" {
			base = filepath.Join(x, "penpath")
		} else if h := os.Getenv("HOME"); h != "" {
			base = filepath.Join(h, ".config", "penpath")
		}
	}
	if base == "" {
		return "", errors.New("cannot resolve config directory")
	}
	return base, nil
}

// ConfigPath returns the per-user config file path.
func ConfigPath() (string, error) {
	dir, err := Dir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.yaml"), nil
}

// Load reads the user config file if present, merges it onto the defaults
// and applies environment overrides. A missing file is not an error.
func Load() (AppConfig, error) {
	path, err := ConfigPath()
	if err != nil {
		cfg := Defaults()
		applyEnvOverrides(&cfg)
		return cfg, err
	}
	return LoadFile(path)
}

// LoadFile is Load for an explicit path.
func LoadFile(path string) (AppConfig, error) {
	cfg := Defaults()
	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		var fileCfg AppConfig
		if err := yaml.Unmarshal(data, &fileCfg); err != nil {
			applyEnvOverrides(&cfg)
			return cfg, fmt.Errorf("parse %s: %w", path, err)
		}
		mergeInto(&cfg, &fileCfg)
	case !errors.Is(err, os.ErrNotExist):
		applyEnvOverrides(&cfg)
		return cfg, fmt.Errorf("read %s: %w", path, err)
	}
	applyEnvOverrides(&cfg)
	if cfg.Journal.Driver == "sqlite" && cfg.Journal.Path == "" {
		cfg.Journal.Path = filepath.Join(filepath.Dir(path), "journal.db")
	}
	return cfg, nil
}

// Save writes cfg as YAML to the user config path.
func Save(cfg AppConfig) error {
	path, err := ConfigPath()
	if err != nil {
		return err
	}
	return SaveFile(path, cfg)
}

func SaveFile(path string, cfg AppConfig) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o600)
}

func mergeInto(dst *AppConfig, src *AppConfig) {
	if src.ConfigVersion != 0 {
		dst.ConfigVersion = src.ConfigVersion
	}
	if src.Pen.CloseTolerance > 0 {
		dst.Pen.CloseTolerance = src.Pen.CloseTolerance
	}
	if src.Pen.DragThreshold > 0 {
		dst.Pen.DragThreshold = src.Pen.DragThreshold
	}
	if src.Pen.HandleSize > 0 {
		dst.Pen.HandleSize = src.Pen.HandleSize
	}
	if src.Pen.AnchorSize > 0 {
		dst.Pen.AnchorSize = src.Pen.AnchorSize
	}
	if src.Pen.HistoryDepth > 0 {
		dst.Pen.HistoryDepth = src.Pen.HistoryDepth
	}
	if d := strings.ToLower(strings.TrimSpace(src.Journal.Driver)); d != "" {
		dst.Journal.Driver = d
	}
	if p := strings.TrimSpace(src.Journal.Path); p != "" {
		dst.Journal.Path = p
	}
	if d := strings.TrimSpace(src.Journal.DSN); d != "" {
		dst.Journal.DSN = d
	}
	if strings.TrimSpace(src.Logging.Level) != "" {
		dst.Logging.Level = strings.ToLower(strings.TrimSpace(src.Logging.Level))
	}
	if strings.TrimSpace(src.Logging.Format) != "" {
		dst.Logging.Format = strings.ToLower(strings.TrimSpace(src.Logging.Format))
	}
	// booleans come straight from the file so a saved false sticks
	dst.Logging.Source = src.Logging.Source
	if strings.TrimSpace(src.Logging.File) != "" {
		dst.Logging.File = strings.TrimSpace(src.Logging.File)
	}
	dst.Telemetry.OptIn = src.Telemetry.OptIn
	if f := strings.TrimSpace(src.Telemetry.File); f != "" {
		dst.Telemetry.File = f
	}
}

func truthy(v string) bool {
	switch strings.ToLower(v) {
	case "1", "true", "on", "yes":
		return true
	}
	return false
}

func applyEnvOverrides(cfg *AppConfig) {
	env := func(k string) string { return strings.TrimSpace(os.Getenv(k)) }
	if v := env(EnvCloseTolerance); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil && f > 0 {
			cfg.Pen.CloseTolerance = f
		}
	}
	if v := env(EnvDragThreshold); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil && f >= 0 {
			cfg.Pen.DragThreshold = f
		}
	}
	if v := env(EnvHistoryDepth); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.Pen.HistoryDepth = n
		}
	}
	if v := env(EnvJournalDriver); v != "" {
		cfg.Journal.Driver = strings.ToLower(v)
	}
	if v := env(EnvJournalDSN); v != "" {
		cfg.Journal.DSN = v
		if env(EnvJournalDriver) == "" {
			cfg.Journal.Driver = "postgres"
		}
	}
	if v := env(EnvTelemetry); v != "" {
		cfg.Telemetry.OptIn = truthy(v)
	}
	if v := env(EnvLogLevel); v != "" {
		cfg.Logging.Level = strings.ToLower(v)
	}
	if v := env(EnvLogFormat); v != "" {
		cfg.Logging.Format = strings.ToLower(v)
	}
	if v := env(EnvLogSource); v != "" {
		cfg.Logging.Source = truthy(v)
	}
	if v := env(EnvLogFile); v != "" {
		cfg.Logging.File = v
	}
}

var envKeys = map[string]string{
	"pen.close_tolerance_px": EnvCloseTolerance,
	"pen.drag_threshold_px":  EnvDragThreshold,
	"pen.history_depth":      EnvHistoryDepth,
	"journal.driver":         EnvJournalDriver,
	"journal.dsn":            EnvJournalDSN,
	"telemetry.opt_in":       EnvTelemetry,
	"logging.level":          EnvLogLevel,
	"logging.format":         EnvLogFormat,
	"logging.source":         EnvLogSource,
	"logging.file":           EnvLogFile,
}

// EnvOverrideFor returns the env var name if the field is overridden by
// the environment.
func EnvOverrideFor(key string) (string, bool) {
	name, ok := envKeys[key]
	if !ok || os.Getenv(name) == "" {
		return "", false
	}
	return name, true
}

// LogOptions maps the logging section onto logger options.
func (c AppConfig) LogOptions() applog.Options {
	return applog.Options{
		Level:     c.Logging.Level,
		Format:    c.Logging.Format,
		AddSource: c.Logging.Source,
		File:      c.Logging.File,
	}
}
