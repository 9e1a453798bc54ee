/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strings"

	"pagebuilder/internal/config"
	"pagebuilder/internal/crash"
	"pagebuilder/internal/export"
	applog "pagebuilder/internal/log"
	"pagebuilder/internal/telemetry"
	"pagebuilder/internal/tree"
	"pagebuilder/internal/version"
)

func usage(w io.Writer) {
	_, _ = fmt.Fprintln(w, "Page Builder")
	_, _ = fmt.Fprintf(w, "Version: %s\n", version.String())
	_, _ = fmt.Fprintln(w)
	_, _ = fmt.Fprintln(w, "Usage:")
	_, _ = fmt.Fprintln(w, "  pagebuilder version|-v|--version               Show version")
	_, _ = fmt.Fprintln(w, "  pagebuilder config                             Show the effective configuration")
	_, _ = fmt.Fprintln(w, "  pagebuilder templates                          List template sections")
	_, _ = fmt.Fprintln(w, "  pagebuilder run [--strict] <script.yaml> [dir]  Replay a session; publish steps write to [dir]")
	_, _ = fmt.Fprintln(w, "  pagebuilder export <script.yaml> <dir> [fmt..] Replay a session and write exports (html react svg pdf png)")
	_, _ = fmt.Fprintln(w, "  pagebuilder layers <script.yaml> [query]       Replay a session and print its layers")
}

func main() {
	cfg, cfgErr := config.Load()
	applog.Init(applog.Options{
		Level:     cfg.Logging.Level,
		Format:    cfg.Logging.Format,
		AddSource: cfg.Logging.Source,
		File:      cfg.Logging.File,
	})
	l := applog.WithComponent("cli")
	if cfgErr != nil {
		l.Warn("config not fully loaded", slog.Any("err", cfgErr))
	}

	var a *app
	defer crash.Recover(crash.State{Dir: cfg.Export.OutDir, Document: func() *tree.Document { return a.document() }})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	l.Debug("start", slog.Int("args", len(os.Args)))
	code := run(ctx, cfg, os.Args[1:], os.Stdout, &a)
	telemetry.Flush(ctx)
	if code != 0 {
		stop()
		os.Exit(code)
	}
}

// run executes one command and returns the process exit code. The session
// it builds is published through ap so a crash report can list its layers.
func run(ctx context.Context, cfg config.AppConfig, args []string, out io.Writer, ap **app) int {
	l := applog.WithComponent("cli")
	if len(args) == 0 {
		usage(out)
		return 0
	}
	fail := func(err error) int {
		l.Error("command failed", slog.String("cmd", args[0]), slog.Any("err", err))
		_, _ = fmt.Fprintln(out, "Error:", err)
		return 1
	}
	session := func(outDir string) (*app, error) {
		a, err := newApp(cfg, outDir)
		if err != nil {
			return nil, err
		}
		*ap = a
		return a, nil
	}

	switch args[0] {
	case "version", "--version", "-v":
		_, _ = fmt.Fprintln(out, "Page Builder")
		_, _ = fmt.Fprintln(out, version.String())
		return 0

	case "config":
		path, _ := config.ConfigPath()
		_, _ = fmt.Fprintf(out, "file: %s\n", path)
		for _, kv := range []struct{ key, val string }{
			{"logging.level", cfg.Logging.Level},
			{"logging.format", cfg.Logging.Format},
			{"history.max_bytes", fmt.Sprint(cfg.History.MaxBytes)},
			{"history.max_entries", fmt.Sprint(cfg.History.MaxEntries)},
			{"canvas.min_resize_px", fmt.Sprint(cfg.Canvas.MinResizePx)},
			{"export.out_dir", cfg.Export.OutDir},
			{"export.formats", strings.Join(cfg.Export.Formats, ",")},
			{"templates.dir", cfg.Templates.Dir},
		} {
			line := fmt.Sprintf("%s: %s", kv.key, kv.val)
			if env, ok := config.EnvOverrideFor(kv.key); ok {
				line += " (from " + env + ")"
			}
			_, _ = fmt.Fprintln(out, line)
		}
		return 0

	case "templates":
		a, err := session("")
		if err != nil {
			return fail(err)
		}
		defer a.close()
		for _, s := range a.lib.List() {
			_, _ = fmt.Fprintf(out, "%-12s %s (%d components)\n", s.ID, s.Name, len(s.Components))
		}
		return 0

	case "run":
		rest := args[1:]
		strict := len(rest) > 0 && rest[0] == "--strict"
		if strict {
			rest = rest[1:]
		}
		if len(rest) < 1 {
			_, _ = fmt.Fprintln(out, "run requires <script.yaml>")
			usage(out)
			return 2
		}
		outDir := ""
		if len(rest) > 1 {
			outDir = rest[1]
		}
		a, err := session(outDir)
		if err != nil {
			return fail(err)
		}
		defer a.close()
		res, err := a.runFile(ctx, rest[0], strict)
		if err != nil {
			return fail(err)
		}
		_, _ = fmt.Fprintf(out, "Ran %d steps; %d components on canvas\n", res.Steps, a.document().Len())
		return 0

	case "export":
		if len(args) < 3 {
			_, _ = fmt.Fprintln(out, "export requires <script.yaml> and <dir>")
			usage(out)
			return 2
		}
		a, err := session(args[2])
		if err != nil {
			return fail(err)
		}
		defer a.close()
		formats := a.formats
		if len(args) > 3 {
			if formats, err = export.ParseFormats(args[3:]); err != nil {
				return fail(err)
			}
		}
		if _, err := a.runFile(ctx, args[1], false); err != nil {
			return fail(err)
		}
		paths, err := export.WriteAll(a.document(), args[2], formats)
		if err != nil {
			return fail(err)
		}
		for _, p := range paths {
			_, _ = fmt.Fprintln(out, "Wrote", p)
		}
		return 0

	case "layers":
		if len(args) < 2 {
			_, _ = fmt.Fprintln(out, "layers requires <script.yaml>")
			usage(out)
			return 2
		}
		a, err := session("")
		if err != nil {
			return fail(err)
		}
		defer a.close()
		if _, err := a.runFile(ctx, args[1], false); err != nil {
			return fail(err)
		}
		rows := a.layers.Entries()
		if len(args) > 2 {
			rows = a.layers.Filter(args[2])
		}
		for _, r := range rows {
			_, _ = fmt.Fprintf(out, "%s%s %s [%s]\n", strings.Repeat("  ", r.Depth), r.Number, r.Name, r.Kind)
		}
		return 0
	}

	usage(out)
	return 2
}
