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
	"os"
	"path/filepath"
	"testing"
)

func TestLoadMissingFileGivesDefaults(t *testing.T) {
	t.Setenv(EnvConfigDir, t.TempDir())
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if cfg.Pen.CloseTolerance != 10 || cfg.Pen.DragThreshold != 2 || cfg.Pen.HistoryDepth != 200 {
		t.Fatalf("pen defaults: %#v", cfg.Pen)
	}
	if cfg.Journal.Driver != "sqlite" || filepath.Base(cfg.Journal.Path) != "journal.db" {
		t.Fatalf("journal defaults: %#v", cfg.Journal)
	}
}

func TestSaveLoadRoundTrip(t *testing.T) {
	t.Setenv(EnvConfigDir, t.TempDir())
	cfg := Defaults()
	cfg.Pen.CloseTolerance = 14
	cfg.Logging.Source = true
	cfg.Telemetry.OptIn = true
	if err := Save(cfg); err != nil {
		t.Fatalf("Save() error: %v", err)
	}
	got, err := Load()
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if got.Pen.CloseTolerance != 14 || !got.Logging.Source || !got.Telemetry.OptIn {
		t.Fatalf("round trip lost fields: %#v", got)
	}
}

func TestLoadFileRejectsBrokenYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("pen: [oops"), 0o600); err != nil {
		t.Fatal(err)
	}
	cfg, err := LoadFile(path)
	if err == nil {
		t.Fatalf("expected parse error")
	}
	if cfg.Pen.CloseTolerance != 10 {
		t.Fatalf("defaults should survive a broken file: %#v", cfg.Pen)
	}
}

func TestEnvOverridesPen(t *testing.T) {
	t.Setenv(EnvConfigDir, t.TempDir())
	t.Setenv(EnvCloseTolerance, "6.5")
	t.Setenv(EnvDragThreshold, "0")
	t.Setenv(EnvHistoryDepth, "-3")
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if cfg.Pen.CloseTolerance != 6.5 || cfg.Pen.DragThreshold != 0 {
		t.Fatalf("pen overrides not applied: %#v", cfg.Pen)
	}
	if cfg.Pen.HistoryDepth != 200 {
		t.Fatalf("invalid history depth must be ignored, got %d", cfg.Pen.HistoryDepth)
	}
	if name, ok := EnvOverrideFor("pen.close_tolerance_px"); !ok || name != EnvCloseTolerance {
		t.Fatalf("EnvOverrideFor = %q, %v", name, ok)
	}
	if _, ok := EnvOverrideFor("pen.handle_size_px"); ok {
		t.Fatalf("handle size has no env override")
	}
}

func TestJournalDSNSwitchesToPostgres(t *testing.T) {
	t.Setenv(EnvConfigDir, t.TempDir())
	t.Setenv(EnvJournalDSN, "postgres://pen@localhost/pen")
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if cfg.Journal.Driver != "postgres" || cfg.Journal.DSN == "" {
		t.Fatalf("journal: %#v", cfg.Journal)
	}
}

func TestMergeIncludesLogging(t *testing.T) {
	dst := Defaults()
	src := Defaults()
	src.Logging.Level = " DEBUG "
	src.Logging.Format = "json"
	src.Logging.Source = true
	src.Logging.File = "/tmp/pen.log"
	mergeInto(&dst, &src)
	if dst.Logging.Level != "debug" || dst.Logging.Format != "json" || !dst.Logging.Source || dst.Logging.File != "/tmp/pen.log" {
		t.Fatalf("logging fields not merged correctly: %#v", dst.Logging)
	}
	opts := dst.LogOptions()
	if opts.Level != "debug" || opts.File != "/tmp/pen.log" || !opts.AddSource {
		t.Fatalf("LogOptions: %#v", opts)
	}
}

func TestEnvOverridesLoggingAndTelemetry(t *testing.T) {
	t.Setenv(EnvConfigDir, t.TempDir())
	t.Setenv(EnvLogLevel, "ERROR")
	t.Setenv(EnvLogSource, "yes")
	t.Setenv(EnvTelemetry, "on")
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if cfg.Logging.Level != "error" || !cfg.Logging.Source || !cfg.Telemetry.OptIn {
		t.Fatalf("env overrides not applied: %#v", cfg)
	}
}
