/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package bus

import (
	"pagebuilder/internal/domain"
	"pagebuilder/internal/templates"
	"pagebuilder/internal/tree"
)

// Event is one of the closed set of messages exchanged between the canvas,
// the panels and the toolbar. Topic returns the wire name of the event.
type Event interface {
	Topic() string
	event()
}

// Topics.
const (
	TopicComponentSelected    = "component-selected"
	TopicComponentUpdated     = "component-updated"
	TopicLayersUpdated        = "layers-updated"
	TopicLayerSelected        = "layer-selected"
	TopicUndoRequested        = "undo-requested"
	TopicRedoRequested        = "redo-requested"
	TopicPreviewModeToggled   = "preview-mode-toggled"
	TopicClearCanvasRequested = "clear-canvas-requested"
	TopicTemplateSectionAdded = "template-section-added"
	TopicStylesPanelRequested = "styles-panel-requested"
	TopicPublishRequested     = "publish-requested"
	TopicNotice               = "notice"
)

// ComponentSelected carries the selected node with its descendants.
// A zero Component (empty ID) means the selection was cleared.
type ComponentSelected struct {
	Component tree.Subtree `json:"component"`
}

// ComponentUpdated carries a replacement for a stored node.
// Commit marks the end of a continuous edit; only committed updates are
// recorded in history.
type ComponentUpdated struct {
	Component domain.Node `json:"component"`
	Commit    bool        `json:"commit,omitempty"`
}

// LayersUpdated carries the flattened layer list after any structural change.
type LayersUpdated struct {
	Components []tree.LayerEntry `json:"components"`
}

type LayerSelected struct {
	ID string `json:"id"`
}

type UndoRequested struct{}

type RedoRequested struct{}

type PreviewModeToggled struct {
	IsPreviewMode bool `json:"isPreviewMode"`
}

type ClearCanvasRequested struct{}

type TemplateSectionAdded struct {
	Template templates.Section `json:"template"`
}

// StylesPanelRequested asks the properties panel to show a tab.
type StylesPanelRequested struct {
	Tab string `json:"tab"`
}

type PublishRequested struct{}

// Notice levels.
const (
	LevelInfo  = "info"
	LevelWarn  = "warn"
	LevelError = "error"
)

// Notice codes.
const (
	CodeValidation       = "validation"
	CodeHistoryExhausted = "history-exhausted"
	CodeSelectionMissing = "selection-missing"
	CodePreviewMode      = "preview-mode"
	CodePublished        = "published"
	CodePublishFailed    = "publish-failed"
)

// Notice is a transient, user-facing message (a toast).
type Notice struct {
	Level   string `json:"level"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

func (ComponentSelected) Topic() string    { return TopicComponentSelected }
func (ComponentUpdated) Topic() string     { return TopicComponentUpdated }
func (LayersUpdated) Topic() string        { return TopicLayersUpdated }
func (LayerSelected) Topic() string        { return TopicLayerSelected }
func (UndoRequested) Topic() string        { return TopicUndoRequested }
func (RedoRequested) Topic() string        { return TopicRedoRequested }
func (PreviewModeToggled) Topic() string   { return TopicPreviewModeToggled }
func (ClearCanvasRequested) Topic() string { return TopicClearCanvasRequested }
func (TemplateSectionAdded) Topic() string { return TopicTemplateSectionAdded }
func (StylesPanelRequested) Topic() string { return TopicStylesPanelRequested }
func (PublishRequested) Topic() string     { return TopicPublishRequested }
func (Notice) Topic() string               { return TopicNotice }

func (ComponentSelected) event()    {}
func (ComponentUpdated) event()     {}
func (LayersUpdated) event()        {}
func (LayerSelected) event()        {}
func (UndoRequested) event()        {}
func (RedoRequested) event()        {}
func (PreviewModeToggled) event()   {}
func (ClearCanvasRequested) event() {}
func (TemplateSectionAdded) event() {}
func (StylesPanelRequested) event() {}
func (PublishRequested) event()     {}
func (Notice) event()               {}
