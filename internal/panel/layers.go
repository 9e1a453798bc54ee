/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package panel

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/lithammer/fuzzysearch/fuzzy"

	"pagebuilder/internal/bus"
	"pagebuilder/internal/domain"
	"pagebuilder/internal/tree"
)

// Row is one line of the layers panel. Number is the outline position
// ("1", "1.2", "1.2.1").
type Row struct {
	tree.LayerEntry
	Number string `json:"number"`
}

// Layers mirrors the flattened layer list broadcast by the canvas.
type Layers struct {
	bus    *bus.Bus
	rows   []Row
	cancel func()
}

func NewLayers(b *bus.Bus) *Layers {
	l := &Layers{bus: b}
	l.cancel = bus.Subscribe(b, func(e bus.LayersUpdated) { l.rows = number(e.Components) })
	return l
}

func (l *Layers) Close() { l.cancel() }

// Entries returns the rows in document order.
func (l *Layers) Entries() []Row { return append([]Row(nil), l.rows...) }

// Filter returns the rows whose name or path fuzzy-matches query,
// case-insensitively, in document order. An empty query returns all rows.
func (l *Layers) Filter(query string) []Row {
	q := strings.TrimSpace(query)
	if q == "" {
		return l.Entries()
	}
	var out []Row
	for _, r := range l.rows {
		if fuzzy.MatchFold(q, r.Name) || fuzzy.MatchFold(q, r.Path) {
			out = append(out, r)
		}
	}
	return out
}

// Select asks the canvas to select id.
func (l *Layers) Select(id string) error {
	for _, r := range l.rows {
		if r.ID == id {
			l.bus.Publish(bus.LayerSelected{ID: id})
			return nil
		}
	}
	return fmt.Errorf("select layer %q: %w", id, domain.ErrValidation)
}

// number assigns outline numbers from the depth sequence of a pre-order list.
func number(entries []tree.LayerEntry) []Row {
	rows := make([]Row, 0, len(entries))
	var counters []int
	for _, e := range entries {
		if e.Depth < len(counters) {
			counters = counters[:e.Depth+1]
			counters[e.Depth]++
		} else {
			for len(counters) <= e.Depth {
				counters = append(counters, 1)
			}
		}
		parts := make([]string, len(counters))
		for i, c := range counters {
			parts[i] = strconv.Itoa(c)
		}
		rows = append(rows, Row{LayerEntry: e, Number: strings.Join(parts, ".")})
	}
	return rows
}
