/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except
 * in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the
 *  specific language governing permissions and limitations under the License.
 */

// Package telemetry sends opt-in, anonymous usage events and crash reports.
// Nothing leaves the process unless PB_TELEMETRY_OPT_IN is set and an
// endpoint is configured. Events never carry page content: Attach reports how
// often toolbar actions were used in a session, plus the codes of error
// notices.
package telemetry

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"runtime"
	"sort"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"pagebuilder/internal/bus"
	applog "pagebuilder/internal/log"
	"pagebuilder/internal/version"
)

const (
	queueSize    = 64
	flushTimeout = 500 * time.Millisecond
)

// Config holds runtime configuration for telemetry and crash uploads.
//
// Environment variables (read by FromEnv):
//   - PB_TELEMETRY_OPT_IN: 1, true, yes or on enables sending
//   - PB_TELEMETRY_URL: endpoint receiving JSON events
//   - PB_CRASH_UPLOAD_URL: endpoint receiving plain-text crash reports
//   - PB_TELEMETRY_TIMEOUT_MS: request timeout, default 1500
//   - PB_TELEMETRY_DEBUG: non-empty logs every send at debug level
type Config struct {
	OptIn        bool
	EventsURL    string
	CrashURL     string
	Timeout      time.Duration
	DebugLogging bool
}

func FromEnv() Config {
	cfg := Config{
		OptIn:        parseBool(os.Getenv("PB_TELEMETRY_OPT_IN")),
		EventsURL:    strings.TrimSpace(os.Getenv("PB_TELEMETRY_URL")),
		CrashURL:     strings.TrimSpace(os.Getenv("PB_CRASH_UPLOAD_URL")),
		Timeout:      1500 * time.Millisecond,
		DebugLogging: os.Getenv("PB_TELEMETRY_DEBUG") != "",
	}
	if ms, err := strconv.Atoi(strings.TrimSpace(os.Getenv("PB_TELEMETRY_TIMEOUT_MS"))); err == nil && ms > 0 {
		cfg.Timeout = time.Duration(ms) * time.Millisecond
	}
	return cfg
}

func parseBool(v string) bool {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "1", "true", "yes", "on":
		return true
	}
	return false
}

// record is the JSON body of one event.
type record struct {
	Name    string            `json:"name"`
	TS      time.Time         `json:"ts"`
	Version string            `json:"version"`
	OS      string            `json:"os"`
	Arch    string            `json:"arch"`
	Props   map[string]string `json:"props,omitempty"`
}

// Client queues events and posts them from one background goroutine. Event
// never blocks: when the queue is full the event is dropped.
type Client struct {
	cfg Config
	log *slog.Logger
	cli *http.Client

	ctx     context.Context
	stop    context.CancelFunc
	q       chan record
	pending atomic.Int64 // queued or in-flight posts
}

// New starts a client. Close releases it.
func New(cfg Config) *Client {
	ctx, stop := context.WithCancel(context.Background())
	c := &Client{
		cfg:  cfg,
		log:  applog.WithComponent("telemetry"),
		cli:  &http.Client{Timeout: cfg.Timeout},
		ctx:  ctx,
		stop: stop,
		q:    make(chan record, queueSize),
	}
	go c.loop()
	return c
}

// Enabled reports whether events are sent.
func (c *Client) Enabled() bool { return c != nil && c.cfg.OptIn && c.cfg.EventsURL != "" }

// Event queues a named event. props must not contain user content.
func (c *Client) Event(name string, props map[string]string) {
	if !c.Enabled() || name == "" {
		return
	}
	r := record{
		Name:    name,
		TS:      time.Now().UTC(),
		Version: version.String(),
		OS:      runtime.GOOS,
		Arch:    runtime.GOARCH,
	}
	if len(props) > 0 {
		r.Props = make(map[string]string, len(props))
		for k, v := range props {
			r.Props[k] = v
		}
	}
	c.pending.Add(1)
	select {
	case c.q <- r:
	default:
		c.pending.Add(-1)
	}
}

// Attach counts the toolbar actions published on b and sends them as one
// "session" event when the returned cancel is called. Error notices are sent
// as they happen.
func (c *Client) Attach(b *bus.Bus) (cancel func()) {
	var mu sync.Mutex
	counts := make(map[string]int)
	count := func(key string) {
		mu.Lock()
		counts[key]++
		mu.Unlock()
	}
	unsubscribe := b.SubscribeAll(func(e bus.Event) {
		switch ev := e.(type) {
		case bus.TemplateSectionAdded:
			count("template." + ev.Template.ID)
		case bus.PreviewModeToggled:
			if ev.IsPreviewMode {
				count(e.Topic())
			}
		case bus.PublishRequested, bus.UndoRequested, bus.RedoRequested, bus.ClearCanvasRequested:
			count(e.Topic())
		case bus.Notice:
			if ev.Level == bus.LevelError {
				c.Event("notice", map[string]string{"code": ev.Code})
			}
		}
	})
	var once sync.Once
	return func() {
		once.Do(func() {
			unsubscribe()
			mu.Lock()
			defer mu.Unlock()
			if len(counts) == 0 {
				return
			}
			props := make(map[string]string, len(counts))
			for k, n := range counts {
				props[k] = strconv.Itoa(n)
			}
			c.Event("session", props)
		})
	}
}

// Flush waits up to half a second, or until ctx is done, for queued posts.
func (c *Client) Flush(ctx context.Context) {
	if ctx == nil {
		ctx = context.Background()
	}
	t := time.NewTimer(flushTimeout)
	defer t.Stop()
	tick := time.NewTicker(10 * time.Millisecond)
	defer tick.Stop()
	for c.pending.Load() > 0 {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			return
		case <-tick.C:
		}
	}
}

// Close stops the sender and aborts in-flight posts.
func (c *Client) Close() { c.stop() }

func (c *Client) loop() {
	for {
		select {
		case <-c.ctx.Done():
			return
		case r := <-c.q:
			c.send(r)
			c.pending.Add(-1)
		}
	}
}

func (c *Client) post(url, contentType string, body []byte) error {
	req, err := http.NewRequestWithContext(c.ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", contentType)
	resp, err := c.cli.Do(req)
	if err != nil {
		return err
	}
	defer func() { _ = resp.Body.Close() }()
	if resp.StatusCode >= 300 {
		return fmt.Errorf("post %s: %s", url, resp.Status)
	}
	return nil
}

func (c *Client) send(r record) {
	body, err := json.Marshal(r)
	if err != nil {
		return
	}
	err = c.post(c.cfg.EventsURL, "application/json", body)
	if c.cfg.DebugLogging {
		c.log.Debug("telemetry event", slog.String("name", r.Name), slog.String("props", propsString(r.Props)), slog.Any("err", err))
	}
}

func propsString(p map[string]string) string {
	keys := make([]string, 0, len(p))
	for k := range p {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for i, k := range keys {
		keys[i] = k + "=" + p[k]
	}
	return strings.Join(keys, ",")
}

// UploadCrash posts report to the crash endpoint when opted in.
func (c *Client) UploadCrash(report []byte) {
	if c == nil || !c.cfg.OptIn || c.cfg.CrashURL == "" {
		return
	}
	body := append([]byte(nil), report...)
	c.pending.Add(1)
	go func() {
		defer c.pending.Add(-1)
		err := c.post(c.cfg.CrashURL, "text/plain; charset=utf-8", body)
		if c.cfg.DebugLogging {
			c.log.Debug("crash upload", slog.Int("bytes", len(body)), slog.Any("err", err))
		}
	}()
}

var (
	defaultMu     sync.Mutex
	defaultClient *Client
)

// Default returns the package client, creating it from the environment on
// first use.
func Default() *Client {
	defaultMu.Lock()
	defer defaultMu.Unlock()
	if defaultClient == nil {
		defaultClient = New(FromEnv())
	}
	return defaultClient
}

// SetDefault replaces the package client and closes the previous one.
func SetDefault(c *Client) {
	defaultMu.Lock()
	prev := defaultClient
	defaultClient = c
	defaultMu.Unlock()
	if prev != nil && prev != c {
		prev.Close()
	}
}

// Enabled reports whether the package client sends events.
func Enabled() bool { return Default().Enabled() }

// Event queues an event on the package client.
func Event(name string, props map[string]string) { Default().Event(name, props) }

// Attach counts toolbar actions on b with the package client.
func Attach(b *bus.Bus) (cancel func()) { return Default().Attach(b) }

// Flush waits for the package client's queued posts.
func Flush(ctx context.Context) { Default().Flush(ctx) }

// UploadCrash posts a crash report with the package client.
func UploadCrash(report []byte) { Default().UploadCrash(report) }
