/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package crash turns a panic in the CLI into a crash report next to the
// exports, then exits non-zero.
package crash

import (
	"bytes"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"runtime/debug"
	"strings"
	"time"

	applog "pagebuilder/internal/log"
	"pagebuilder/internal/telemetry"
	"pagebuilder/internal/tree"
	"pagebuilder/internal/version"
)

// exitFn is used to allow testing of Recover without terminating the test process.
var exitFn = os.Exit

// State tells Recover where to write and what was on the canvas.
// Both fields are optional.
type State struct {
	// Dir receives the report; the temp dir is used when empty.
	Dir string
	// Document returns the live document at crash time.
	Document func() *tree.Document
}

// Recover captures a panic, logs an error with stacktrace and writes an
// error report file listing the layers of the live document.
//
// Usage: defer crash.Recover(st)
func Recover(st State) {
	if r := recover(); r != nil {
		l := applog.WithComponent("crash")
		stack := debug.Stack()
		l.Error("panic recovered", slog.Any("panic", r), slog.String("stack", string(stack)))

		reportPath, err := writeReport(st, r, stack)
		if err != nil {
			l.Error("crash report not written", slog.Any("err", err))
		}

		if _, err := fmt.Fprintf(os.Stderr, "A fatal error occurred. A crash report was saved to: %s\n", reportPath); err != nil {
			l.Error("failed to write crash message to stderr", slog.Any("err", err))
		}
		if _, err := fmt.Fprintf(os.Stderr, "Version: %s\nOS/Arch: %s/%s\n", version.String(), runtime.GOOS, runtime.GOARCH); err != nil {
			l.Error("failed to write version info to stderr", slog.Any("err", err))
		}
		// Exit with a non-zero code to indicate failure in CLI context.
		exitFn(2)
	}
}

// layers renders the flattened layer list; a document that cannot be read
// is reported instead of failing the report.
func layers(st State) (out string) {
	if st.Document == nil {
		return "(no document)\n"
	}
	defer func() {
		if r := recover(); r != nil {
			out = fmt.Sprintf("(document unreadable: %v)\n", r)
		}
	}()
	doc := st.Document()
	if doc == nil || doc.Empty() {
		return "(empty)\n"
	}
	var b strings.Builder
	for _, e := range tree.Flatten(doc) {
		_, _ = fmt.Fprintf(&b, "%s%s [%s] %s\n", strings.Repeat("  ", e.Depth), e.Name, e.Kind, e.ID)
	}
	return b.String()
}

func writeReport(st State, panicVal any, stack []byte) (string, error) {
	dir := os.TempDir()
	if st.Dir != "" {
		dir = st.Dir
		_ = os.MkdirAll(dir, 0o755)
	}
	stamp := time.Now().Format("20060102-150405")
	fname := fmt.Sprintf("crash-%s.log", stamp)
	path := filepath.Join(dir, fname)

	f, err := os.OpenFile(path, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0o644)
	if err != nil {
		return path, err
	}
	defer func() {
		if err := f.Close(); err != nil {
			applog.WithComponent("crash").Error("failed to close crash report file", slog.Any("err", err), slog.String("path", path))
		}
	}()

	var buf bytes.Buffer
	_, _ = fmt.Fprintf(&buf, "Page Builder Crash Report\n")
	_, _ = fmt.Fprintf(&buf, "Timestamp: %s\n", time.Now().Format(time.RFC3339))
	_, _ = fmt.Fprintf(&buf, "Version: %s\n", version.String())
	_, _ = fmt.Fprintf(&buf, "OS/Arch: %s/%s\n", runtime.GOOS, runtime.GOARCH)
	_, _ = fmt.Fprintf(&buf, "\nPanic: %v\n\n", panicVal)
	_, _ = fmt.Fprintf(&buf, "Layers:\n%s\n", layers(st))
	_, _ = fmt.Fprintf(&buf, "Stack:\n%s\n", string(stack))

	// write to file
	if _, err := f.Write(buf.Bytes()); err != nil {
		return path, err
	}
	_ = f.Sync()

	// optionally upload the crash report (opt-in via env); the layer list
	// carries component names only
	telemetry.UploadCrash(buf.Bytes())
	return path, nil
}
