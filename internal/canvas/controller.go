/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package canvas implements the canvas controller: the single owner of the
// live document, the selection, the preview flag and the resize interaction.
// Panels and the toolbar talk to it only through the bus.
package canvas

import (
	"errors"
	"fmt"
	"log/slog"
	"strconv"

	"github.com/google/uuid"

	"pagebuilder/internal/bus"
	"pagebuilder/internal/domain"
	applog "pagebuilder/internal/log"
	"pagebuilder/internal/templates"
	"pagebuilder/internal/tree"
)

// History is the undo stack the controller records into.
type History interface {
	Push(doc *tree.Document) error
	Undo() (*tree.Document, error)
	Redo() (*tree.Document, error)
}

// Point is a pointer position in canvas pixels.
type Point struct {
	X, Y float64
}

// DropPayload is what the palette puts on the drag transfer.
type DropPayload struct {
	Name string `json:"name"`
	Kind string `json:"type"`
}

// Options configures a Controller. The zero value is usable.
type Options struct {
	// Origin is the canvas origin subtracted from drop and resize positions.
	Origin Point
	// MinResizePx is the smallest width/height a resize can produce (default 1).
	MinResizePx float64
	// NewID generates node ids (default "component-<uuid>").
	NewID func() string
	Logger *slog.Logger
}

// NewID returns a fresh node id.
func NewID() string { return "component-" + uuid.NewString() }

type resizeState struct {
	id    string
	start domain.Style
}

// Controller owns the live document. It is not safe for concurrent use;
// all calls are expected on the single event thread that drives the bus.
type Controller struct {
	bus  *bus.Bus
	hist History
	log  *slog.Logger

	doc      *tree.Document
	selected string
	preview  bool
	resize   *resizeState
	// dirty is set by uncommitted continuous edits.
	dirty bool

	origin Point
	minPx  float64
	newID  func() string

	cancels []func()
}

// New returns a controller wired to b and seeds h with the empty document,
// so the first edit can be undone.
func New(b *bus.Bus, h History, opts Options) (*Controller, error) {
	if opts.MinResizePx <= 0 {
		opts.MinResizePx = 1
	}
	if opts.NewID == nil {
		opts.NewID = NewID
	}
	if opts.Logger == nil {
		opts.Logger = applog.WithComponent("canvas")
	}
	c := &Controller{
		bus:    b,
		hist:   h,
		log:    opts.Logger,
		doc:    tree.New(),
		origin: opts.Origin,
		minPx:  opts.MinResizePx,
		newID:  opts.NewID,
	}
	if err := h.Push(c.doc); err != nil {
		return nil, fmt.Errorf("seed history: %w", err)
	}
	c.subscribe()
	return c, nil
}

func (c *Controller) subscribe() {
	c.cancels = append(c.cancels,
		bus.Subscribe(c.bus, func(e bus.ComponentUpdated) {
			if err := c.HandleUpdate(e.Component); err == nil && e.Commit {
				_ = c.Commit()
			}
		}),
		bus.Subscribe(c.bus, func(e bus.LayerSelected) { _ = c.HandleSelect(e.ID) }),
		bus.Subscribe(c.bus, func(bus.UndoRequested) { _ = c.Undo() }),
		bus.Subscribe(c.bus, func(bus.RedoRequested) { _ = c.Redo() }),
		bus.Subscribe(c.bus, func(e bus.PreviewModeToggled) { c.SetPreviewMode(e.IsPreviewMode) }),
		bus.Subscribe(c.bus, func(bus.ClearCanvasRequested) { _ = c.Clear() }),
		bus.Subscribe(c.bus, func(e bus.TemplateSectionAdded) { _, _ = c.InsertTemplate(e.Template) }),
	)
}

// Close detaches the controller from the bus.
func (c *Controller) Close() {
	for _, cancel := range c.cancels {
		cancel()
	}
	c.cancels = nil
}

// Document returns the live document. Documents are never mutated in place,
// so the returned value stays valid after further edits.
func (c *Controller) Document() *tree.Document { return c.doc }

// Selection returns the selected node id, or "" when nothing is selected.
func (c *Controller) Selection() string { return c.selected }

func (c *Controller) PreviewMode() bool { return c.preview }

// Resizing returns the id of the node being resized.
func (c *Controller) Resizing() (string, bool) {
	if c.resize == nil {
		return "", false
	}
	return c.resize.id, true
}

// SetOrigin moves the canvas origin, e.g. after the canvas scrolled.
func (c *Controller) SetOrigin(p Point) { c.origin = p }

// HandleDrop creates a node from the palette payload under parentID, or at
// the root when parentID is empty, and selects it. Root drops are placed
// absolutely at the drop point relative to the canvas origin; drops into a
// container flow relatively. It returns the new node's id.
func (c *Controller) HandleDrop(p DropPayload, parentID string, at *Point) (string, error) {
	if c.preview {
		return "", c.fail("drop", domain.ErrPreviewMode)
	}
	if p.Name == "" {
		return "", c.fail("drop", fmt.Errorf("%w: empty payload name", domain.ErrValidation))
	}
	if parentID != "" && !c.doc.Has(parentID) {
		return "", c.fail("drop", fmt.Errorf("%w: parent %q not found", domain.ErrValidation, parentID))
	}
	kind := domain.ParseKind(p.Kind)
	n := domain.Node{
		ID:      c.newID(),
		Name:    p.Name,
		Kind:    kind,
		Style:   kind.DefaultStyle(),
		Content: kind.DefaultContent(),
	}
	if parentID == "" {
		var pos Point
		if at != nil {
			pos = *at
		}
		n.Style.Position = domain.PositionAbsolute
		n.Style.Left = px(pos.X - c.origin.X)
		n.Style.Top = px(pos.Y - c.origin.Y)
	} else {
		n.Style.Position = domain.PositionRelative
	}
	if err := c.commitDoc(tree.InsertChild(c.doc, parentID, n)); err != nil {
		return "", c.fail("drop", err)
	}
	c.selected = n.ID
	c.log.Debug("component dropped", slog.String("id", n.ID), slog.String("kind", string(kind)), slog.String("parent", parentID))
	c.broadcastSelection()
	c.broadcastLayers()
	return n.ID, nil
}

// HandleRemove deletes id and its subtree.
func (c *Controller) HandleRemove(id string) error {
	if c.preview {
		return c.fail("remove", domain.ErrPreviewMode)
	}
	if !c.doc.Has(id) {
		return c.fail("remove", fmt.Errorf("%w: %q not found", domain.ErrValidation, id))
	}
	next := tree.RemoveByID(c.doc, id)
	if c.resize != nil && !next.Has(c.resize.id) {
		c.resize = nil
	}
	if err := c.commitDoc(next); err != nil {
		return c.fail("remove", err)
	}
	c.log.Debug("component removed", slog.String("id", id))
	if c.selected != "" && !c.doc.Has(c.selected) {
		c.selected = ""
		c.broadcastSelection()
	}
	c.broadcastLayers()
	return nil
}

// RemoveSelected deletes the selected node.
func (c *Controller) RemoveSelected() error {
	if c.selected == "" {
		return c.fail("remove", domain.ErrSelectionMissing)
	}
	return c.HandleRemove(c.selected)
}

// HandleSelect selects id and broadcasts it with its descendants.
// An empty id clears the selection.
func (c *Controller) HandleSelect(id string) error {
	if c.preview {
		return c.fail("select", domain.ErrPreviewMode)
	}
	if id != "" && !c.doc.Has(id) {
		return c.fail("select", fmt.Errorf("%w: %q not found", domain.ErrValidation, id))
	}
	c.selected = id
	c.broadcastSelection()
	return nil
}

// HandleUpdate replaces the stored node with n without recording history;
// call Commit at the end of the edit.
func (c *Controller) HandleUpdate(n domain.Node) error {
	if c.preview {
		return c.fail("update", domain.ErrPreviewMode)
	}
	if !c.doc.Has(n.ID) {
		return c.fail("update", fmt.Errorf("%w: %q not found", domain.ErrValidation, n.ID))
	}
	next := tree.UpdateByID(c.doc, n)
	if tree.Equal(next, c.doc) {
		return nil
	}
	c.doc = next
	c.dirty = true
	if c.selected != "" && !c.doc.Has(c.selected) {
		c.selected = ""
		c.broadcastSelection()
	}
	c.broadcastLayers()
	return nil
}

// Commit records uncommitted edits as one history entry.
func (c *Controller) Commit() error {
	if !c.dirty {
		return nil
	}
	if err := c.commitDoc(c.doc); err != nil {
		return c.fail("commit", err)
	}
	return nil
}

// Undo restores the previous history entry. A resize in progress is
// cancelled first; uncommitted edits are committed first.
func (c *Controller) Undo() error { return c.travel("undo", c.hist.Undo) }

// Redo restores the next history entry.
func (c *Controller) Redo() error { return c.travel("redo", c.hist.Redo) }

func (c *Controller) travel(op string, move func() (*tree.Document, error)) error {
	if c.preview {
		return c.fail(op, domain.ErrPreviewMode)
	}
	if c.resize != nil {
		c.CancelResize()
	}
	if err := c.Commit(); err != nil {
		return err
	}
	doc, err := move()
	if err != nil {
		return c.fail(op, err)
	}
	c.doc = doc
	if c.selected != "" && !c.doc.Has(c.selected) {
		c.selected = ""
	}
	c.broadcastSelection()
	c.broadcastLayers()
	return nil
}

// Clear empties the canvas and records one history entry.
func (c *Controller) Clear() error {
	if c.preview {
		return c.fail("clear", domain.ErrPreviewMode)
	}
	c.resize = nil
	if err := c.commitDoc(tree.New()); err != nil {
		return c.fail("clear", err)
	}
	c.selected = ""
	c.broadcastSelection()
	c.broadcastLayers()
	return nil
}

// InsertTemplate appends the section's components as new roots with fresh
// ids and records one history entry. It returns the ids of the new roots.
func (c *Controller) InsertTemplate(s templates.Section) ([]string, error) {
	if c.preview {
		return nil, c.fail("template", domain.ErrPreviewMode)
	}
	comps := s.Instantiate(c.newID)
	if len(comps) == 0 {
		return nil, c.fail("template", fmt.Errorf("%w: section %q has no components", domain.ErrValidation, s.ID))
	}
	next := c.doc
	ids := make([]string, 0, len(comps))
	for _, comp := range comps {
		next = tree.InsertSubtree(next, "", comp)
		ids = append(ids, comp.ID)
	}
	if err := c.commitDoc(next); err != nil {
		return nil, c.fail("template", err)
	}
	c.log.Debug("template inserted", slog.String("section", s.ID), slog.Int("roots", len(ids)))
	c.broadcastLayers()
	return ids, nil
}

// SetPreviewMode toggles preview. Entering preview clears the selection and
// cancels any resize.
func (c *Controller) SetPreviewMode(on bool) {
	if on == c.preview {
		return
	}
	if on {
		if c.resize != nil {
			c.CancelResize()
		}
		if c.selected != "" {
			c.selected = ""
			c.broadcastSelection()
		}
	}
	c.preview = on
	c.log.Debug("preview mode", slog.Bool("on", on))
}

// commitDoc pushes next to history and only then makes it live.
func (c *Controller) commitDoc(next *tree.Document) error {
	if err := c.hist.Push(next); err != nil {
		return err
	}
	c.doc = next
	c.dirty = false
	return nil
}

func (c *Controller) broadcastSelection() {
	var s tree.Subtree
	if c.selected != "" {
		s, _ = tree.SubtreeOf(c.doc, c.selected)
	}
	c.bus.Publish(bus.ComponentSelected{Component: s})
}

func (c *Controller) broadcastLayers() {
	c.bus.Publish(bus.LayersUpdated{Components: tree.Flatten(c.doc)})
}

var noticeText = map[string]string{
	"undo": "Nothing to undo",
	"redo": "Nothing to redo",
}

// fail wraps err with op, logs it and, for user-facing errors, publishes a notice.
func (c *Controller) fail(op string, err error) error {
	err = fmt.Errorf("%s: %w", op, err)
	switch {
	case errors.Is(err, domain.ErrValidation):
		c.log.Debug("ignored", slog.String("op", op), slog.Any("err", err))
	case errors.Is(err, domain.ErrHistoryExhausted):
		c.notify(bus.CodeHistoryExhausted, noticeText[op])
	case errors.Is(err, domain.ErrSelectionMissing):
		c.notify(bus.CodeSelectionMissing, "Select a component first")
	case errors.Is(err, domain.ErrPreviewMode):
		c.notify(bus.CodePreviewMode, "Editing is disabled in preview mode")
	default:
		c.log.Error("canvas operation failed", slog.String("op", op), slog.Any("err", err))
	}
	return err
}

func (c *Controller) notify(code, msg string) {
	c.bus.Publish(bus.Notice{Level: bus.LevelWarn, Code: code, Message: msg})
}

func px(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64) + "px"
}
