/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package log

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"os"
	"strings"
	"testing"
	"time"
)

func TestFromEnvAndGetenv(t *testing.T) {
	t.Setenv("PB_LOG_LEVEL", "warn")
	t.Setenv("PB_LOG_FORMAT", "json")
	t.Setenv("PB_LOG_SOURCE", "true")
	// PB_LOG_FILE intentionally unset

	opts := FromEnv()
	if opts.Level != "warn" || opts.Format != "json" || !opts.AddSource || opts.File != "" {
		t.Fatalf("FromEnv mismatch: %+v", opts)
	}

	// Also verify getenv default fallback when var missing
	if err := os.Unsetenv("SOME_UNSET_VAR"); err != nil {
		t.Fatalf("Unsetenv error: %v", err)
	}
	if v := getenv("SOME_UNSET_VAR", "fallback"); v != "fallback" {
		t.Fatalf("getenv fallback failed: %q", v)
	}
}

func TestConsoleHandlerLiftsComponentAndGroups(t *testing.T) {
	var buf bytes.Buffer
	h := newConsoleHandler(&buf, slog.LevelWarn, false)

	if h.Enabled(context.Background(), slog.LevelInfo) {
		t.Fatalf("info should not be enabled at warn level")
	}
	if !h.Enabled(context.Background(), slog.LevelError) {
		t.Fatalf("error should be enabled at warn level")
	}

	var h2 slog.Handler = h.WithAttrs([]slog.Attr{slog.String("component", "canvas"), slog.String("k", "v")})
	h2 = h2.WithGroup("grp")

	r := slog.NewRecord(time.Now(), slog.LevelError, "boom", 0)
	r.AddAttrs(slog.Int("n", 42), slog.Float64("pi", 3.14), slog.Bool("ok", true), slog.String("msg", "two words"))
	if err := h2.Handle(context.Background(), r); err != nil {
		t.Fatalf("handle error: %v", err)
	}

	out := buf.String()
	for _, want := range []string{"ERR [canvas] boom", " k=v", " grp.n=42", " grp.pi=3.14", " grp.ok=true", ` grp.msg="two words"`} {
		if !strings.Contains(out, want) {
			t.Fatalf("missing %q in %q", want, out)
		}
	}
	if strings.Contains(out, "grp.k=") || strings.Contains(out, "component=") {
		t.Fatalf("attrs added before the group must keep their key: %q", out)
	}
}

func TestInitWritesConsoleWithContextAttrs(t *testing.T) {
	var buf bytes.Buffer
	Init(Options{Level: "info", Console: &buf})
	t.Cleanup(func() { Init(Options{Level: "info", Console: io.Discard}) })

	ctx := ContextWith(context.Background(), slog.Int("step", 2))
	WithComponent("script").DebugContext(ctx, "hidden")
	WithComponent("script").InfoContext(ctx, "step rejected")

	out := buf.String()
	if strings.Contains(out, "hidden") {
		t.Fatalf("debug record written at info level: %q", out)
	}
	if !strings.Contains(out, "INF [script] step rejected") || !strings.Contains(out, "step=2") || !strings.Contains(out, "app=pagebuilder") {
		t.Fatalf("unexpected console line: %q", out)
	}
}
