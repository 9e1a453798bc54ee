/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package tree

import (
	"pagebuilder/internal/domain"
)

// Find returns a copy of the node with the given id.
// Ids are unique, so this is the first match of a depth-first search.
func Find(d *Document, id string) (domain.Node, bool) {
	if d == nil || id == "" {
		return domain.Node{}, false
	}
	n, ok := d.nodes[id]
	if !ok {
		return domain.Node{}, false
	}
	return n.Clone(), true
}

// InsertChild appends n as the last child of parentID, or as the last root
// when parentID is empty. The input is returned unchanged when parentID does
// not resolve or when n's id is empty or already present.
//
// n's own child list is discarded; use InsertSubtree to attach descendants.
func InsertChild(d *Document, parentID string, n domain.Node) *Document {
	if d == nil {
		d = New()
	}
	if n.ID == "" || d.Has(n.ID) {
		return d
	}
	if parentID != "" && !d.Has(parentID) {
		return d
	}
	out := d.Clone()
	out.attach(parentID, n)
	return out
}

// InsertSubtree attaches s and all its descendants under parentID (or at the
// root). Nothing is inserted unless every id in s is non-empty, unique within
// s and absent from d.
func InsertSubtree(d *Document, parentID string, s Subtree) *Document {
	if d == nil {
		d = New()
	}
	if parentID != "" && !d.Has(parentID) {
		return d
	}
	seen := make(map[string]bool)
	ok := true
	s.walk(func(t Subtree) {
		if t.ID == "" || seen[t.ID] || d.Has(t.ID) {
			ok = false
		}
		seen[t.ID] = true
	})
	if !ok {
		return d
	}
	out := d.Clone()
	out.attachSubtree(parentID, s)
	return out
}

// RemoveByID deletes the node with id and its whole subtree. Removing an
// absent id yields a document structurally equal to the input.
func RemoveByID(d *Document, id string) *Document {
	if d == nil {
		return New()
	}
	n, ok := d.nodes[id]
	if !ok {
		return d
	}
	out := d.Clone()
	if n.ParentID == "" {
		out.roots = without(out.roots, id)
	} else if p, ok := out.nodes[n.ParentID]; ok {
		p.Children = without(p.Children, id)
	}
	out.dropSubtree(id)
	return out
}

// UpdateByID replaces the stored node whose id equals updated.ID.
// The node keeps its position and parent. The child list is resolved as follows:
//
//   - nil keeps the existing children;
//   - otherwise every listed id must already be a child of the node. The list
//     may reorder children and may omit some, in which case the omitted
//     children are removed with their subtrees.
//
// A child list naming foreign ids, or an id not present in d, yields the input unchanged.
func UpdateByID(d *Document, updated domain.Node) *Document {
	if d == nil {
		return New()
	}
	cur, ok := d.nodes[updated.ID]
	if !ok {
		return d
	}
	next := updated.Clone()
	next.ParentID = cur.ParentID
	var dropped []string
	if next.Children == nil {
		next.Children = append([]string(nil), cur.Children...)
	} else {
		owned := make(map[string]bool, len(cur.Children))
		for _, c := range cur.Children {
			owned[c] = true
		}
		keep := make(map[string]bool, len(next.Children))
		for _, c := range next.Children {
			if !owned[c] || keep[c] {
				return d
			}
			keep[c] = true
		}
		for _, c := range cur.Children {
			if !keep[c] {
				dropped = append(dropped, c)
			}
		}
		if len(next.Children) == 0 {
			next.Children = nil
		}
	}
	out := d.Clone()
	for _, c := range dropped {
		out.dropSubtree(c)
	}
	out.nodes[next.ID] = &next
	return out
}

func (d *Document) attach(parentID string, n domain.Node) {
	c := n.Clone()
	c.ParentID = parentID
	c.Children = nil
	d.nodes[c.ID] = &c
	if parentID == "" {
		d.roots = append(d.roots, c.ID)
		return
	}
	p := d.nodes[parentID]
	p.Children = append(p.Children, c.ID)
}

func (d *Document) attachSubtree(parentID string, s Subtree) {
	d.attach(parentID, s.Node)
	for _, child := range s.Children {
		d.attachSubtree(s.ID, child)
	}
}

// dropSubtree deletes id and its descendants from the arena. The caller is
// responsible for unlinking id from its owner.
func (d *Document) dropSubtree(id string) {
	n, ok := d.nodes[id]
	if !ok {
		return
	}
	for _, c := range n.Children {
		d.dropSubtree(c)
	}
	delete(d.nodes, id)
}

func without(ids []string, id string) []string {
	out := make([]string, 0, len(ids))
	for _, v := range ids {
		if v != id {
			out = append(out, v)
		}
	}
	if len(out) == 0 {
		return nil
	}
	return out
}
