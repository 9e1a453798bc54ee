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
	"log/slog"
	"os"
	"strings"

	"pagebuilder/internal/bus"
	"pagebuilder/internal/canvas"
	"pagebuilder/internal/config"
	"pagebuilder/internal/export"
	applog "pagebuilder/internal/log"
	"pagebuilder/internal/panel"
	"pagebuilder/internal/script"
	"pagebuilder/internal/telemetry"
	"pagebuilder/internal/templates"
	"pagebuilder/internal/tree"
	"pagebuilder/internal/undo"
)

// app wires one editing session: the bus, the history, the canvas and
// every bus participant.
type app struct {
	cfg     config.AppConfig
	log     *slog.Logger
	bus     *bus.Bus
	hist    *undo.Manager
	canvas  *canvas.Controller
	props   *panel.Properties
	layers  *panel.Layers
	lib     *templates.Library
	pub     *export.Publisher
	formats []export.Format
	cancels []func()
}

func newApp(cfg config.AppConfig, outDir string) (*app, error) {
	formats, err := export.ParseFormats(cfg.Export.Formats)
	if err != nil {
		return nil, err
	}
	lib, err := templates.Load(cfg.Templates.Dir)
	if err != nil {
		return nil, fmt.Errorf("load templates: %w", err)
	}
	if outDir == "" {
		outDir = cfg.Export.OutDir
	}

	a := &app{cfg: cfg, log: applog.WithComponent("cli"), lib: lib, formats: formats}
	a.bus = bus.New(nil)
	a.hist = undo.NewManager(undo.Config{MaxBytes: cfg.History.MaxBytes, MaxEntries: cfg.History.MaxEntries})
	a.props = panel.NewProperties(a.bus, nil)
	a.layers = panel.NewLayers(a.bus)
	a.canvas, err = canvas.New(a.bus, a.hist, canvas.Options{
		Origin:      canvas.Point{X: cfg.Canvas.OriginX, Y: cfg.Canvas.OriginY},
		MinResizePx: cfg.Canvas.MinResizePx,
	})
	if err != nil {
		a.props.Close()
		a.layers.Close()
		return nil, fmt.Errorf("canvas: %w", err)
	}
	a.pub = export.NewPublisher(a.bus, a.canvas.Document, outDir, formats, nil)
	a.cancels = append(a.cancels,
		telemetry.Attach(a.bus),
		bus.Subscribe(a.bus, func(n bus.Notice) {
			if n.Level == bus.LevelError || n.Code == bus.CodePublished {
				fmt.Fprintln(os.Stderr, n.Message)
			}
		}),
	)
	return a, nil
}

// document returns the live document; it is safe on a nil app.
func (a *app) document() *tree.Document {
	if a == nil || a.canvas == nil {
		return nil
	}
	return a.canvas.Document()
}

func (a *app) close() {
	for _, c := range a.cancels {
		c()
	}
	a.pub.Close()
	a.canvas.Close()
	a.layers.Close()
	a.props.Close()
}

// runFile parses and replays one session script.
func (a *app) runFile(ctx context.Context, path string, strict bool) (script.Result, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return script.Result{}, fmt.Errorf("read script: %w", err)
	}
	s, errs := script.Parse(data)
	if len(errs) > 0 {
		msgs := make([]string, 0, len(errs))
		for _, e := range errs {
			msgs = append(msgs, e.Error())
		}
		return script.Result{}, fmt.Errorf("%s: %s", path, strings.Join(msgs, "; "))
	}
	if s.Name == "" {
		s.Name = path
	}
	r := &script.Runner{Bus: a.bus, Controller: a.canvas, Templates: a.lib, Properties: a.props, Strict: strict}
	return r.Run(ctx, s)
}
