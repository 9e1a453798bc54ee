/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package script

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"maps"
	"slices"
	"strings"

	"pagebuilder/internal/bus"
	"pagebuilder/internal/canvas"
	"pagebuilder/internal/domain"
	applog "pagebuilder/internal/log"
	"pagebuilder/internal/panel"
	"pagebuilder/internal/templates"
)

// Runner replays scripts. Toolbar actions (undo, redo, clear, preview,
// template, publish) go through the bus like the real toolbar; canvas
// gestures call the controller directly.
type Runner struct {
	Bus        *bus.Bus
	Controller *canvas.Controller
	Templates  *templates.Library
	// Properties receives script updates; a private panel is attached for
	// the run when nil.
	Properties *panel.Properties
	Log        *slog.Logger
	// Strict stops at the first rejected step instead of continuing.
	Strict bool
}

// Result summarizes a run.
type Result struct {
	Steps   int
	Aliases map[string]string
	Notices []bus.Notice
}

// recoverable errors are user-level rejections the controller already
// reported as notices or debug logs.
func recoverable(err error) bool {
	return errors.Is(err, domain.ErrValidation) ||
		errors.Is(err, domain.ErrHistoryExhausted) ||
		errors.Is(err, domain.ErrSelectionMissing) ||
		errors.Is(err, domain.ErrPreviewMode)
}

// Run executes every step in order. It returns on context cancellation, on
// an unrecoverable error, or in strict mode on the first rejected step.
func (r *Runner) Run(ctx context.Context, s Script) (Result, error) {
	l := r.Log
	if l == nil {
		l = applog.WithComponent("script")
	}
	props := r.Properties
	if props == nil {
		props = panel.NewProperties(r.Bus, l)
		defer props.Close()
	}
	res := Result{Aliases: make(map[string]string)}
	cancel := bus.Subscribe(r.Bus, func(n bus.Notice) { res.Notices = append(res.Notices, n) })
	defer cancel()

	for i, st := range s.Steps {
		if err := ctx.Err(); err != nil {
			return res, err
		}
		sctx := applog.ContextWith(ctx, slog.Int("step", i+1), slog.String("op", string(st.Op)), slog.Int("line", st.LineNo))
		l.DebugContext(sctx, "step")
		err := r.step(st, res.Aliases, props)
		res.Steps++
		if err == nil {
			continue
		}
		if recoverable(err) && !r.Strict {
			l.InfoContext(sctx, "step rejected", slog.Any("err", err))
			continue
		}
		l.ErrorContext(sctx, "step failed", slog.Any("err", err))
		return res, fmt.Errorf("line %d: %s: %w", st.LineNo, st.Op, err)
	}
	l.Info("script finished",
		slog.String("name", s.Name),
		slog.Int("steps", res.Steps),
		slog.Int("components", r.Controller.Document().Len()),
	)
	return res, nil
}

func resolve(aliases map[string]string, ref string) string {
	if id, ok := aliases[ref]; ok {
		return id
	}
	return ref
}

func (r *Runner) step(st Step, aliases map[string]string, props *panel.Properties) error {
	c := r.Controller
	switch st.Op {
	case OpDrop:
		kind := st.Kind
		if kind == "" {
			kind = st.Name
		}
		name := st.Name
		if name == "" {
			name = domain.ParseKind(kind).Policy().Label
		}
		var at *canvas.Point
		if len(st.At) == 2 {
			at = &canvas.Point{X: st.At[0], Y: st.At[1]}
		}
		id, err := c.HandleDrop(canvas.DropPayload{Name: name, Kind: kind}, resolve(aliases, st.Parent), at)
		if err != nil {
			return err
		}
		if st.As != "" {
			aliases[st.As] = id
		}
	case OpSelect:
		return c.HandleSelect(resolve(aliases, st.Target))
	case OpUpdate:
		return r.update(st, resolve(aliases, st.Target), props)
	case OpRemove:
		if st.Target == "" {
			return c.RemoveSelected()
		}
		return c.HandleRemove(resolve(aliases, st.Target))
	case OpResize:
		return r.resize(st, resolve(aliases, st.Target))
	case OpUndo:
		r.Bus.Publish(bus.UndoRequested{})
	case OpRedo:
		r.Bus.Publish(bus.RedoRequested{})
	case OpClear:
		r.Bus.Publish(bus.ClearCanvasRequested{})
	case OpPreview:
		r.Bus.Publish(bus.PreviewModeToggled{IsPreviewMode: st.On})
	case OpTemplate:
		if r.Templates == nil {
			return fmt.Errorf("no template library")
		}
		sec, ok := r.Templates.Get(st.Template)
		if !ok {
			return fmt.Errorf("%w: unknown template %q", domain.ErrValidation, st.Template)
		}
		r.Bus.Publish(bus.TemplateSectionAdded{Template: sec})
	case OpPublish:
		r.Bus.Publish(bus.PublishRequested{})
	default:
		return fmt.Errorf("unknown step %q", st.Op)
	}
	return nil
}

// update edits the target through the properties panel, as a user would:
// the target is selected first so the panel mirrors it, then every field is
// sent as an uncommitted edit.
func (r *Runner) update(st Step, target string, p *panel.Properties) error {
	c := r.Controller
	if target == "" {
		target = c.Selection()
	}
	if target == "" {
		return fmt.Errorf("update: %w", domain.ErrSelectionMissing)
	}
	if err := c.HandleSelect(target); err != nil {
		return err
	}
	for _, key := range slices.Sorted(maps.Keys(st.Style)) {
		if err := p.SetStyle(domain.StyleField(key), strings.TrimSpace(st.Style[key]), false); err != nil {
			return err
		}
	}
	if st.Content != nil {
		if err := p.SetContent(*st.Content, false); err != nil {
			return err
		}
	}
	if st.Rename != "" {
		if err := p.SetName(st.Rename, false); err != nil {
			return err
		}
	}
	for _, key := range slices.Sorted(maps.Keys(st.Attributes)) {
		if err := p.SetAttribute(key, st.Attributes[key], false); err != nil {
			return err
		}
	}
	if st.Commit {
		return c.Commit()
	}
	return nil
}

func (r *Runner) resize(st Step, target string) error {
	c := r.Controller
	if target == "" {
		target = c.Selection()
	}
	if err := c.StartResize(target); err != nil {
		return err
	}
	for _, m := range st.Moves {
		if err := c.ResizeMove(canvas.Point{X: m[0], Y: m[1]}); err != nil {
			c.CancelResize()
			return err
		}
	}
	if st.Cancel {
		c.CancelResize()
		return nil
	}
	return c.StopResize()
}
