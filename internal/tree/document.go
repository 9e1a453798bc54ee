/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package tree implements the canvas document: an arena of placed components
// keyed by id, with ordered root and child id lists.
//
// All exported operations are pure. They return a new *Document and never
// mutate their input, so a Document handed to the history manager or a
// subscriber stays valid while the controller builds the next one.
package tree

import (
	"fmt"

	"pagebuilder/internal/domain"
)

// Document is the forest of placed components at one instant.
// The zero value is not usable; call New.
type Document struct {
	nodes map[string]*domain.Node
	roots []string
}

// New returns an empty document.
func New() *Document {
	return &Document{nodes: make(map[string]*domain.Node)}
}

// Len returns the number of nodes at every depth.
func (d *Document) Len() int {
	if d == nil {
		return 0
	}
	return len(d.nodes)
}

// Empty reports whether the document has no nodes.
func (d *Document) Empty() bool { return d.Len() == 0 }

// Has reports whether id is present anywhere in the document.
func (d *Document) Has(id string) bool {
	if d == nil {
		return false
	}
	_, ok := d.nodes[id]
	return ok
}

// RootIDs returns a copy of the ordered root id list.
func (d *Document) RootIDs() []string {
	if d == nil {
		return nil
	}
	return append([]string(nil), d.roots...)
}

// Roots returns copies of the root-level nodes in order.
func (d *Document) Roots() []domain.Node {
	if d == nil {
		return nil
	}
	out := make([]domain.Node, 0, len(d.roots))
	for _, id := range d.roots {
		out = append(out, d.nodes[id].Clone())
	}
	return out
}

// Children returns copies of the children of id in order.
func (d *Document) Children(id string) []domain.Node {
	if d == nil {
		return nil
	}
	n, ok := d.nodes[id]
	if !ok {
		return nil
	}
	out := make([]domain.Node, 0, len(n.Children))
	for _, cid := range n.Children {
		out = append(out, d.nodes[cid].Clone())
	}
	return out
}

// Clone returns a deep copy of the arena. A nil document clones to an empty one.
func (d *Document) Clone() *Document {
	out := New()
	if d == nil {
		return out
	}
	out.roots = append(make([]string, 0, len(d.roots)), d.roots...)
	for id, n := range d.nodes {
		c := n.Clone()
		out.nodes[id] = &c
	}
	return out
}

// Validate checks the structural invariants: every id unique, every node
// reachable exactly once from the roots, and parent back-references matching
// ownership.
func (d *Document) Validate() error {
	if d == nil {
		return nil
	}
	seen := make(map[string]bool, len(d.nodes))
	var visit func(id, parent string) error
	visit = func(id, parent string) error {
		n, ok := d.nodes[id]
		if !ok {
			return fmt.Errorf("dangling id %q under %q", id, parent)
		}
		if seen[id] {
			return fmt.Errorf("node %q appears more than once", id)
		}
		seen[id] = true
		if n.ID != id {
			return fmt.Errorf("node stored under %q has id %q", id, n.ID)
		}
		if n.ParentID != parent {
			return fmt.Errorf("node %q has parentId %q, owned by %q", id, n.ParentID, parent)
		}
		for _, c := range n.Children {
			if err := visit(c, id); err != nil {
				return err
			}
		}
		return nil
	}
	for _, id := range d.roots {
		if err := visit(id, ""); err != nil {
			return err
		}
	}
	if len(seen) != len(d.nodes) {
		return fmt.Errorf("%d unreachable nodes", len(d.nodes)-len(seen))
	}
	return nil
}

// Snapshot is the explicit value form of the arena, suitable for encoding.
// Nodes are listed in pre-order so encodings are deterministic.
type Snapshot struct {
	Roots []string      `json:"roots" cbor:"roots"`
	Nodes []domain.Node `json:"nodes" cbor:"nodes"`
}

// Snapshot returns a deep copy of the arena as a value.
func (d *Document) Snapshot() Snapshot {
	s := Snapshot{Roots: d.RootIDs(), Nodes: make([]domain.Node, 0, d.Len())}
	Each(d, func(n domain.Node, _ int) bool {
		s.Nodes = append(s.Nodes, n)
		return true
	})
	return s
}

// FromSnapshot rebuilds a document from its value form and validates it.
func FromSnapshot(s Snapshot) (*Document, error) {
	d := New()
	d.roots = append(d.roots, s.Roots...)
	for _, n := range s.Nodes {
		if _, dup := d.nodes[n.ID]; dup {
			return nil, fmt.Errorf("snapshot: duplicate id %q", n.ID)
		}
		c := n.Clone()
		d.nodes[c.ID] = &c
	}
	if err := d.Validate(); err != nil {
		return nil, fmt.Errorf("snapshot: %w", err)
	}
	return d, nil
}

// Equal reports structural equality: same roots in order and equal nodes.
// Nil and empty attribute maps or child lists compare equal.
func Equal(a, b *Document) bool {
	if a.Len() != b.Len() {
		return false
	}
	ar, br := a.RootIDs(), b.RootIDs()
	if len(ar) != len(br) {
		return false
	}
	for i := range ar {
		if ar[i] != br[i] {
			return false
		}
	}
	if a == nil || b == nil {
		return true
	}
	for id, n := range a.nodes {
		m, ok := b.nodes[id]
		if !ok || !NodesEqual(*n, *m) {
			return false
		}
	}
	return true
}

// NodesEqual compares two nodes field by field, including child order.
func NodesEqual(a, b domain.Node) bool {
	if a.ID != b.ID || a.Name != b.Name || a.Kind != b.Kind || a.Style != b.Style ||
		a.Content != b.Content || a.ParentID != b.ParentID {
		return false
	}
	if len(a.Attributes) != len(b.Attributes) {
		return false
	}
	for k, v := range a.Attributes {
		if bv, ok := b.Attributes[k]; !ok || bv != v {
			return false
		}
	}
	return sameIDs(a.Children, b.Children)
}

func sameIDs(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
