/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package canvas

import (
	"fmt"
	"log/slog"
	"math"

	"pagebuilder/internal/domain"
	"pagebuilder/internal/tree"
)

// Resize interaction:
//
//	Idle --StartResize(id)--> Resizing(id)
//	Resizing --ResizeMove(p)--> Resizing   live update, no history
//	Resizing --StopResize--> Idle          one history entry
//	Resizing --CancelResize--> Idle        size restored, no history

// StartResize begins resizing id. It is a no-op while another resize is active.
func (c *Controller) StartResize(id string) error {
	if c.preview {
		return c.fail("resize", domain.ErrPreviewMode)
	}
	if c.resize != nil {
		return nil
	}
	n, ok := tree.Find(c.doc, id)
	if !ok {
		return c.fail("resize", fmt.Errorf("%w: %q not found", domain.ErrValidation, id))
	}
	c.resize = &resizeState{id: id, start: n.Style}
	return nil
}

// ResizeMove sets the target's width and height to the pointer position
// minus the canvas origin, clamped to the minimum size. Moves outside a
// resize are ignored.
func (c *Controller) ResizeMove(p Point) error {
	if c.resize == nil {
		return nil
	}
	n, ok := tree.Find(c.doc, c.resize.id)
	if !ok {
		c.resize = nil
		return nil
	}
	n.Style.Width = px(math.Max(p.X-c.origin.X, c.minPx))
	n.Style.Height = px(math.Max(p.Y-c.origin.Y, c.minPx))
	n.Children = nil
	next := tree.UpdateByID(c.doc, n)
	if tree.Equal(next, c.doc) {
		return nil
	}
	c.doc = next
	c.broadcastLayers()
	return nil
}

// StopResize ends the resize and records the final size as one history
// entry. Nothing is recorded when the size did not change.
func (c *Controller) StopResize() error {
	if c.resize == nil {
		return nil
	}
	rs := c.resize
	c.resize = nil
	n, ok := tree.Find(c.doc, rs.id)
	if !ok {
		return nil
	}
	if n.Style == rs.start && !c.dirty {
		return nil
	}
	if err := c.commitDoc(c.doc); err != nil {
		return c.fail("resize", err)
	}
	c.log.Debug("resize committed", slog.String("id", rs.id), slog.String("width", n.Style.Width), slog.String("height", n.Style.Height))
	if c.selected == rs.id {
		c.broadcastSelection()
	}
	c.broadcastLayers()
	return nil
}

// CancelResize ends the resize and restores the size captured at StartResize.
func (c *Controller) CancelResize() {
	if c.resize == nil {
		return
	}
	rs := c.resize
	c.resize = nil
	n, ok := tree.Find(c.doc, rs.id)
	if !ok || n.Style == rs.start {
		return
	}
	n.Style.Width, n.Style.Height = rs.start.Width, rs.start.Height
	n.Children = nil
	c.doc = tree.UpdateByID(c.doc, n)
	c.broadcastLayers()
}
