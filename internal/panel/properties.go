/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package panel holds the headless models behind the properties and layers
// panels. Panels never touch the document; they keep the last broadcast
// snapshot and send edit requests back over the bus.
package panel

import (
	"errors"
	"fmt"
	"log/slog"

	"pagebuilder/internal/bus"
	"pagebuilder/internal/domain"
	applog "pagebuilder/internal/log"
	"pagebuilder/internal/tree"
)

// Properties panel tabs.
const (
	TabStyles   = "styles"
	TabSettings = "settings"
	TabLayers   = "layers"
)

var tabs = map[string]bool{TabStyles: true, TabSettings: true, TabLayers: true}

// Properties tracks the selected component and turns field edits into
// component-updated requests.
type Properties struct {
	bus *bus.Bus
	log *slog.Logger

	tab      string
	selected *tree.Subtree
	cancels  []func()
}

// NewProperties subscribes a properties panel to b. A nil logger uses the
// application logger.
func NewProperties(b *bus.Bus, l *slog.Logger) *Properties {
	if l == nil {
		l = applog.WithComponent("properties")
	}
	p := &Properties{bus: b, log: l, tab: TabStyles}
	p.cancels = append(p.cancels,
		bus.Subscribe(b, p.onSelected),
		bus.Subscribe(b, p.onTabRequested),
		bus.Subscribe(b, p.onLayers),
	)
	return p
}

// Close detaches the panel from the bus.
func (p *Properties) Close() {
	for _, c := range p.cancels {
		c()
	}
	p.cancels = nil
}

func (p *Properties) Tab() string { return p.tab }

// Selected returns the last selection broadcast by the canvas, including
// local edits sent since.
func (p *Properties) Selected() (tree.Subtree, bool) {
	if p.selected == nil {
		return tree.Subtree{}, false
	}
	return *p.selected, true
}

// SetTab switches tabs. Unknown tabs are rejected.
func (p *Properties) SetTab(tab string) error {
	if !tabs[tab] {
		return fmt.Errorf("tab %q: %w", tab, domain.ErrValidation)
	}
	p.tab = tab
	return nil
}

// SetStyle edits one style field of the selection. Colour fields are
// normalized to #rrggbb first. commit marks the end of a continuous edit.
func (p *Properties) SetStyle(f domain.StyleField, value string, commit bool) error {
	n, err := p.current("style")
	if err != nil {
		return err
	}
	if f.IsColor() {
		if value, err = domain.NormalizeColour(value); err != nil {
			return p.fail("style", err)
		}
	}
	st, ok := n.Style.With(f, value)
	if !ok {
		return p.fail("style", fmt.Errorf("%w: unknown style field %q", domain.ErrValidation, f))
	}
	n.Style = st
	return p.send(n, commit)
}

// SetContent edits the content payload of the selection.
func (p *Properties) SetContent(value string, commit bool) error {
	n, err := p.current("content")
	if err != nil {
		return err
	}
	n.Content = value
	return p.send(n, commit)
}

// SetName renames the selection.
func (p *Properties) SetName(name string, commit bool) error {
	n, err := p.current("name")
	if err != nil {
		return err
	}
	if name == "" {
		return p.fail("name", fmt.Errorf("%w: empty name", domain.ErrValidation))
	}
	n.Name = name
	return p.send(n, commit)
}

// SetAttribute sets an element attribute (id, class, href, alt, ...) of the
// selection. An empty value removes the attribute.
func (p *Properties) SetAttribute(key, value string, commit bool) error {
	n, err := p.current("attribute")
	if err != nil {
		return err
	}
	if key == "" {
		return p.fail("attribute", fmt.Errorf("%w: empty attribute name", domain.ErrValidation))
	}
	if value == "" {
		delete(n.Attributes, key)
	} else {
		if n.Attributes == nil {
			n.Attributes = make(map[string]string)
		}
		n.Attributes[key] = value
	}
	return p.send(n, commit)
}

func (p *Properties) current(op string) (domain.Node, error) {
	if p.selected == nil {
		return domain.Node{}, p.fail(op, domain.ErrSelectionMissing)
	}
	return p.selected.Node.Clone(), nil
}

// send publishes the edit and mirrors it locally; the canvas does not
// re-broadcast the selection after updates.
func (p *Properties) send(n domain.Node, commit bool) error {
	p.selected.Node = n.Clone()
	n.Children = nil
	p.bus.Publish(bus.ComponentUpdated{Component: n, Commit: commit})
	return nil
}

func (p *Properties) fail(op string, err error) error {
	err = fmt.Errorf("%s: %w", op, err)
	switch {
	case errors.Is(err, domain.ErrSelectionMissing):
		p.bus.Publish(bus.Notice{Level: bus.LevelWarn, Code: bus.CodeSelectionMissing, Message: "Select a component first"})
	case errors.Is(err, domain.ErrValidation):
		p.bus.Publish(bus.Notice{Level: bus.LevelWarn, Code: bus.CodeValidation, Message: err.Error()})
	}
	p.log.Debug("edit rejected", slog.String("op", op), slog.Any("err", err))
	return err
}

func (p *Properties) onSelected(e bus.ComponentSelected) {
	if e.Component.ID == "" {
		p.selected = nil
		return
	}
	s := e.Component
	p.selected = &s
}

func (p *Properties) onTabRequested(e bus.StylesPanelRequested) {
	tab := e.Tab
	if !tabs[tab] {
		tab = TabStyles
	}
	p.tab = tab
	if p.selected == nil {
		_ = p.fail("tab", domain.ErrSelectionMissing)
	}
}

func (p *Properties) onLayers(e bus.LayersUpdated) {
	if p.selected == nil {
		return
	}
	for _, l := range e.Components {
		if l.ID == p.selected.ID {
			return
		}
	}
	p.selected = nil
}
