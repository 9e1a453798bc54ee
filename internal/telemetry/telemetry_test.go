/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except
 * in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the
 *  specific language governing permissions and limitations under the License.
 */

package telemetry

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"pagebuilder/internal/bus"
	"pagebuilder/internal/templates"
)

type recorder struct {
	mu      sync.Mutex
	events  []record
	crashes [][]byte
}

func (r *recorder) server(t *testing.T) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/events", func(w http.ResponseWriter, req *http.Request) {
		b, _ := io.ReadAll(req.Body)
		_ = req.Body.Close()
		var e record
		_ = json.Unmarshal(b, &e)
		r.mu.Lock()
		r.events = append(r.events, e)
		r.mu.Unlock()
		w.WriteHeader(http.StatusOK)
	})
	mux.HandleFunc("/crash", func(w http.ResponseWriter, req *http.Request) {
		b, _ := io.ReadAll(req.Body)
		_ = req.Body.Close()
		r.mu.Lock()
		r.crashes = append(r.crashes, b)
		r.mu.Unlock()
		w.WriteHeader(http.StatusOK)
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func (r *recorder) byName() map[string]record {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make(map[string]record, len(r.events))
	for _, e := range r.events {
		out[e.Name] = e
	}
	return out
}

func TestClient_EventAndUploadCrash(t *testing.T) {
	rec := &recorder{}
	srv := rec.server(t)

	c := New(Config{OptIn: true, EventsURL: srv.URL + "/events", CrashURL: srv.URL + "/crash", Timeout: 2 * time.Second})
	defer c.Close()

	if !c.Enabled() {
		t.Fatalf("expected client to be enabled")
	}

	c.Event("started", map[string]string{"k": "v"})
	c.UploadCrash([]byte("STACKTRACE"))
	c.Flush(context.Background())

	rec.mu.Lock()
	defer rec.mu.Unlock()
	if len(rec.events) != 1 {
		t.Fatalf("expected one event, got %d", len(rec.events))
	}
	e := rec.events[0]
	if e.Name != "started" || e.Props["k"] != "v" || e.Version == "" {
		t.Fatalf("event mismatch: %+v", e)
	}
	if e.TS.IsZero() {
		t.Fatalf("missing ts field")
	}
	if len(rec.crashes) != 1 || string(rec.crashes[0]) != "STACKTRACE" {
		t.Fatalf("expected crash upload, got %q", rec.crashes)
	}
}

func TestAttachSendsSessionCountsOnCancel(t *testing.T) {
	rec := &recorder{}
	srv := rec.server(t)
	c := New(Config{OptIn: true, EventsURL: srv.URL + "/events", Timeout: 2 * time.Second})
	defer c.Close()

	b := bus.New(slog.New(slog.DiscardHandler))
	cancel := c.Attach(b)
	b.Publish(bus.PublishRequested{})
	b.Publish(bus.PublishRequested{})
	b.Publish(bus.TemplateSectionAdded{Template: templates.Section{ID: "hero"}})
	b.Publish(bus.PreviewModeToggled{IsPreviewMode: true})
	b.Publish(bus.PreviewModeToggled{IsPreviewMode: false})
	b.Publish(bus.Notice{Level: bus.LevelInfo, Code: bus.CodePublished})
	b.Publish(bus.LayerSelected{ID: "component-1"})
	b.Publish(bus.Notice{Level: bus.LevelError, Code: bus.CodePublishFailed})
	c.Flush(context.Background())

	if got := rec.byName(); len(got) != 1 || got["notice"].Props["code"] != bus.CodePublishFailed {
		t.Fatalf("only the error notice is sent before cancel, got %+v", got)
	}

	cancel()
	cancel()
	b.Publish(bus.UndoRequested{})
	c.Flush(context.Background())

	got := rec.byName()
	session, ok := got["session"]
	if !ok {
		t.Fatalf("no session event: %+v", got)
	}
	want := map[string]string{
		bus.TopicPublishRequested:   "2",
		"template.hero":             "1",
		bus.TopicPreviewModeToggled: "1",
	}
	if len(session.Props) != len(want) {
		t.Fatalf("session props = %v, want %v", session.Props, want)
	}
	for k, v := range want {
		if session.Props[k] != v {
			t.Fatalf("session props = %v, want %v", session.Props, want)
		}
	}
	rec.mu.Lock()
	n := len(rec.events)
	rec.mu.Unlock()
	if n != 2 {
		t.Fatalf("expected notice and one session event, got %d", n)
	}
}

func TestAttachWithoutActionsSendsNothing(t *testing.T) {
	rec := &recorder{}
	srv := rec.server(t)
	c := New(Config{OptIn: true, EventsURL: srv.URL + "/events", Timeout: time.Second})
	defer c.Close()

	b := bus.New(slog.New(slog.DiscardHandler))
	cancel := c.Attach(b)
	b.Publish(bus.LayerSelected{ID: "component-1"})
	cancel()
	c.Flush(context.Background())
	if got := rec.byName(); len(got) != 0 {
		t.Fatalf("expected no events, got %+v", got)
	}
}

func TestClient_DisabledAndEmptyEventName(t *testing.T) {
	var hits int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&hits, 1)
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	c := New(Config{OptIn: false, EventsURL: srv.URL + "/events", CrashURL: srv.URL + "/crash", Timeout: time.Second})
	defer c.Close()
	if c.Enabled() {
		t.Fatalf("expected disabled client")
	}
	c.Event("ignored", nil)
	c.UploadCrash([]byte("ignored"))
	c.Flush(context.Background())
	if atomic.LoadInt32(&hits) != 0 {
		t.Fatalf("expected no requests when disabled")
	}

	c2 := New(Config{OptIn: true, EventsURL: srv.URL + "/events", Timeout: time.Second})
	defer c2.Close()
	c2.Event("", nil)
	c2.Flush(nil) //nolint:staticcheck // nil context is tolerated
	if atomic.LoadInt32(&hits) != 0 {
		t.Fatalf("expected no requests for empty event name")
	}
}

func TestFromEnvAndDefault(t *testing.T) {
	t.Setenv("PB_TELEMETRY_OPT_IN", "on")
	t.Setenv("PB_TELEMETRY_URL", "http://127.0.0.1:0")
	t.Setenv("PB_CRASH_UPLOAD_URL", "")
	t.Setenv("PB_TELEMETRY_TIMEOUT_MS", "100")

	cfg := FromEnv()
	if !cfg.OptIn || cfg.EventsURL == "" || cfg.Timeout != 100*time.Millisecond {
		t.Fatalf("FromEnv did not parse correctly: %+v", cfg)
	}

	c := New(cfg)
	SetDefault(c)
	t.Cleanup(func() { SetDefault(New(Config{})) })
	if Default() != c || !Enabled() {
		t.Fatalf("default client not installed")
	}
}
