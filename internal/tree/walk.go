/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package tree

import (
	"strings"

	"pagebuilder/internal/domain"
)

// PathSeparator joins ancestor names in a LayerEntry path.
const PathSeparator = " > "

// Visitor receives depth-first traversal events. Enter is called before a
// node's children and may return false to skip them; Leave is called after
// them, also for skipped nodes.
type Visitor interface {
	Enter(n domain.Node, depth int) bool
	Leave(n domain.Node, depth int)
}

// Walk traverses d depth-first, parent before children, roots in order.
// It is the read-only contract exporters are built on.
func Walk(d *Document, v Visitor) {
	if d == nil {
		return
	}
	var visit func(id string, depth int)
	visit = func(id string, depth int) {
		n := d.nodes[id]
		c := n.Clone()
		if v.Enter(c, depth) {
			for _, cid := range n.Children {
				visit(cid, depth+1)
			}
		}
		v.Leave(c, depth)
	}
	for _, id := range d.roots {
		visit(id, 0)
	}
}

type visitFunc func(n domain.Node, depth int) bool

func (f visitFunc) Enter(n domain.Node, depth int) bool { return f(n, depth) }
func (visitFunc) Leave(domain.Node, int)                {}

// Each calls fn for every node in pre-order. Returning false skips the node's children.
func Each(d *Document, fn func(n domain.Node, depth int) bool) {
	Walk(d, visitFunc(fn))
}

// LayerEntry is one row of the flattened layer list.
type LayerEntry struct {
	ID    string      `json:"id"`
	Name  string      `json:"name"`
	Kind  domain.Kind `json:"type"`
	Path  string      `json:"path"`
	Depth int         `json:"depth"`
}

// Flatten lists every node in pre-order with its ancestor path.
// A root's path is its own name; deeper paths join ancestor names with PathSeparator.
func Flatten(d *Document) []LayerEntry {
	out := make([]LayerEntry, 0, d.Len())
	var stack []string
	Walk(d, &flattener{out: &out, stack: &stack})
	return out
}

type flattener struct {
	out   *[]LayerEntry
	stack *[]string
}

func (f *flattener) Enter(n domain.Node, depth int) bool {
	*f.stack = append(*f.stack, n.Name)
	*f.out = append(*f.out, LayerEntry{
		ID:    n.ID,
		Name:  n.Name,
		Kind:  n.Kind,
		Path:  strings.Join(*f.stack, PathSeparator),
		Depth: depth,
	})
	return true
}

func (f *flattener) Leave(domain.Node, int) {
	s := *f.stack
	*f.stack = s[:len(s)-1]
}

// Subtree is the nested value form of a node and its descendants, used for
// templates and for payloads that carry a component with its children.
// The embedded Node's id list is ignored; Children holds the nodes themselves.
type Subtree struct {
	domain.Node
	Children []Subtree `json:"children,omitempty"`
}

func (s Subtree) walk(fn func(Subtree)) {
	fn(s)
	for _, c := range s.Children {
		c.walk(fn)
	}
}

// Size returns the number of nodes in s.
func (s Subtree) Size() int {
	n := 0
	s.walk(func(Subtree) { n++ })
	return n
}

// SubtreeOf materializes the node with id and its descendants.
func SubtreeOf(d *Document, id string) (Subtree, bool) {
	if !d.Has(id) {
		return Subtree{}, false
	}
	return d.subtree(id), true
}

// Materialize returns the whole document as nested values, roots in order.
func Materialize(d *Document) []Subtree {
	if d == nil {
		return nil
	}
	out := make([]Subtree, 0, len(d.roots))
	for _, id := range d.roots {
		out = append(out, d.subtree(id))
	}
	return out
}

func (d *Document) subtree(id string) Subtree {
	n := d.nodes[id]
	s := Subtree{Node: n.Clone()}
	for _, cid := range n.Children {
		s.Children = append(s.Children, d.subtree(cid))
	}
	return s
}

// FromSubtrees builds a document whose roots are the given subtrees.
// Subtrees with empty or clashing ids are skipped.
func FromSubtrees(ss []Subtree) *Document {
	d := New()
	for _, s := range ss {
		d = InsertSubtree(d, "", s)
	}
	return d
}

// WithFreshIDs returns a copy of s where every node id is replaced by newID().
func WithFreshIDs(s Subtree, newID func() string) Subtree {
	out := Subtree{Node: s.Node.Clone()}
	out.ID = newID()
	out.Node.Children = nil
	out.ParentID = ""
	for _, c := range s.Children {
		out.Children = append(out.Children, WithFreshIDs(c, newID))
	}
	return out
}
