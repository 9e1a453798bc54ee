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

// isolate points the config path at an empty temp dir.
func isolate(t *testing.T) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), "config.yaml")
	t.Setenv(EnvConfigPath, p)
	return p
}

func TestLoadDefaultsWithoutFile(t *testing.T) {
	isolate(t)
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if cfg.History.MaxBytes != 16*1024*1024 || cfg.Canvas.MinResizePx != 1 || cfg.Export.OutDir != "export" {
		t.Fatalf("unexpected defaults: %#v", cfg)
	}
}

func TestEnvOverridesHistory(t *testing.T) {
	isolate(t)
	t.Setenv(EnvHistoryMaxEntries, "50")
	t.Setenv(EnvHistoryMaxBytes, "not-a-number")
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if cfg.History.MaxEntries != 50 {
		t.Fatalf("History.MaxEntries = %d, want 50", cfg.History.MaxEntries)
	}
	if cfg.History.MaxBytes != Defaults().History.MaxBytes {
		t.Fatalf("unparseable override should be ignored, got %d", cfg.History.MaxBytes)
	}
}

func TestEnvOverridesExportFormats(t *testing.T) {
	isolate(t)
	t.Setenv(EnvExportFormats, "html, svg,,pdf")
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if got := cfg.Export.Formats; len(got) != 3 || got[0] != "html" || got[1] != "svg" || got[2] != "pdf" {
		t.Fatalf("Export.Formats = %v", got)
	}
}

func TestMergeIncludesLogging(t *testing.T) {
	dst := Defaults()
	src := Defaults()
	src.Logging.Level = "debug"
	src.Logging.Format = "json"
	src.Logging.Source = true
	src.Logging.File = "C:/tmp/pb.log"
	mergeInto(&dst, &src)
	if dst.Logging.Level != "debug" || dst.Logging.Format != "json" || !dst.Logging.Source || dst.Logging.File != "C:/tmp/pb.log" {
		t.Fatalf("logging fields not merged correctly: %#v", dst.Logging)
	}
}

func TestMergeKeepsDefaultsForZeroValues(t *testing.T) {
	dst := Defaults()
	var src AppConfig
	src.Canvas.OriginX = 240
	mergeInto(&dst, &src)
	if dst.History.MaxBytes != Defaults().History.MaxBytes || dst.Canvas.MinResizePx != 1 || len(dst.Export.Formats) != 2 {
		t.Fatalf("zero values overwrote defaults: %#v", dst)
	}
	if dst.Canvas.OriginX != 240 {
		t.Fatalf("origin not merged: %#v", dst.Canvas)
	}
}

func TestEnvOverridesLogging(t *testing.T) {
	isolate(t)
	t.Setenv(EnvLogLevel, "error")
	t.Setenv(EnvLogFormat, "json")
	t.Setenv(EnvLogSource, "1")
	t.Setenv(EnvLogFile, "X:/pb.log")
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if cfg.Logging.Level != "error" || cfg.Logging.Format != "json" || !cfg.Logging.Source || cfg.Logging.File != "X:/pb.log" {
		t.Fatalf("env overrides not applied to logging: %#v", cfg.Logging)
	}
}

func TestSaveAndLoadRoundTrip(t *testing.T) {
	path := isolate(t)
	cfg := Defaults()
	cfg.Canvas.OriginX, cfg.Canvas.OriginY = 240, 64
	cfg.Export.Formats = []string{"svg"}
	cfg.Templates.Dir = "/srv/templates"
	if err := Save(cfg); err != nil {
		t.Fatalf("Save() error: %v", err)
	}
	if _, err := os.Stat(path); err != nil {
		t.Fatalf("config not written: %v", err)
	}
	got, err := Load()
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if got.Canvas.OriginX != 240 || got.Canvas.OriginY != 64 || got.Templates.Dir != "/srv/templates" || len(got.Export.Formats) != 1 {
		t.Fatalf("round trip mismatch: %#v", got)
	}
}

func TestLoadFromRejectsBadFile(t *testing.T) {
	p := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(p, []byte("history: [unclosed"), 0o600); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadFrom(p); err == nil {
		t.Fatalf("expected parse error")
	}
	if err := os.WriteFile(p, []byte("canvas:\n  min_resize_px: -4\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadFrom(p); err == nil {
		t.Fatalf("expected validation error")
	}
}

func TestEnvOverrideFor(t *testing.T) {
	t.Setenv(EnvTemplatesDir, "/tmp/t")
	if name, ok := EnvOverrideFor("templates.dir"); !ok || name != EnvTemplatesDir {
		t.Fatalf("EnvOverrideFor = %q, %v", name, ok)
	}
	if _, ok := EnvOverrideFor("unknown.key"); ok {
		t.Fatalf("unknown key reported as overridden")
	}
}
