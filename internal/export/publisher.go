/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package export

import (
	"fmt"
	"log/slog"
	"strings"
	"time"

	"pagebuilder/internal/bus"
	applog "pagebuilder/internal/log"
	"pagebuilder/internal/tree"
)

// Publisher writes export artifacts whenever the toolbar requests a publish.
type Publisher struct {
	bus     *bus.Bus
	log     *slog.Logger
	source  func() *tree.Document
	outDir  string
	formats []Format
	cancel  func()
	last    []string
}

// NewPublisher subscribes to publish requests. source returns the live
// document; it is read once per request.
func NewPublisher(b *bus.Bus, source func() *tree.Document, outDir string, formats []Format, l *slog.Logger) *Publisher {
	if l == nil {
		l = applog.WithComponent("export")
	}
	p := &Publisher{bus: b, log: l, source: source, outDir: outDir, formats: formats}
	p.cancel = bus.Subscribe(b, func(bus.PublishRequested) { _, _ = p.Publish() })
	return p
}

// Close removes the subscription.
func (p *Publisher) Close() { p.cancel() }

// Last returns the paths written by the most recent successful publish.
func (p *Publisher) Last() []string { return append([]string(nil), p.last...) }

// Publish writes all configured formats and announces the result.
func (p *Publisher) Publish() ([]string, error) {
	start := time.Now()
	l := applog.WithOperation(p.log, "publish")
	doc := p.source()
	paths, err := WriteAll(doc, p.outDir, p.formats)
	if err != nil {
		l.Error("publish failed", slog.String("dir", p.outDir), slog.Any("err", err))
		p.bus.Publish(bus.Notice{Level: bus.LevelError, Code: bus.CodePublishFailed, Message: "Publish failed: " + err.Error()})
		return paths, fmt.Errorf("publish: %w", err)
	}
	p.last = paths
	l.Info("published",
		slog.String("dir", p.outDir),
		slog.Int("files", len(paths)),
		slog.Int("components", doc.Len()),
		slog.Duration("took", time.Since(start)),
	)
	p.bus.Publish(bus.Notice{Level: bus.LevelInfo, Code: bus.CodePublished, Message: "Published " + strings.Join(paths, ", ")})
	return paths, nil
}
