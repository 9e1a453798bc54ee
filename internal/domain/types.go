/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package domain

// This file defines the placed-component data model of the page builder canvas.
// JSON tags mirror the field names the palette, panels and exporters exchange.

// Node is a single placed component (ComponentNode).
// Children holds the ordered ids of owned child nodes; the owning Document
// stores the child nodes themselves. ParentID is a back-reference only.
type Node struct {
	ID         string            `json:"id"`
	Name       string            `json:"name"`
	Kind       Kind              `json:"type"`
	Style      Style             `json:"styles"`
	Content    string            `json:"content,omitempty"`
	Attributes map[string]string `json:"attributes,omitempty"`
	Children   []string          `json:"children"`
	ParentID   string            `json:"parentId,omitempty"`
}

// Style is the fixed record of presentation properties.
// Values are CSS strings copied verbatim; no layout is computed from them.
type Style struct {
	Width           string `json:"width"`
	Height          string `json:"height"`
	BackgroundColor string `json:"backgroundColor"`
	Color           string `json:"color"`
	FontSize        string `json:"fontSize"`
	FontWeight      string `json:"fontWeight"`
	TextAlign       string `json:"textAlign,omitempty"` // left, center, right, justify, start, end
	Padding         string `json:"padding"`
	Margin          string `json:"margin"`
	BorderRadius    string `json:"borderRadius"`
	Position        string `json:"position,omitempty"` // relative or absolute
	Left            string `json:"left,omitempty"`
	Top             string `json:"top,omitempty"`
}

// Position values.
const (
	PositionAbsolute = "absolute"
	PositionRelative = "relative"
)

// Clone returns a deep copy of n; the attribute map and child list are not shared.
func (n Node) Clone() Node {
	c := n
	if n.Attributes != nil {
		c.Attributes = make(map[string]string, len(n.Attributes))
		for k, v := range n.Attributes {
			c.Attributes[k] = v
		}
	}
	if n.Children != nil {
		c.Children = append(make([]string, 0, len(n.Children)), n.Children...)
	}
	return c
}

// IsRoot reports whether the node sits at the top level of the document.
func (n Node) IsRoot() bool { return n.ParentID == "" }

// StyleField names one editable Style property, using the camelCase keys of the JSON form.
type StyleField string

const (
	FieldWidth           StyleField = "width"
	FieldHeight          StyleField = "height"
	FieldBackgroundColor StyleField = "backgroundColor"
	FieldColor           StyleField = "color"
	FieldFontSize        StyleField = "fontSize"
	FieldFontWeight      StyleField = "fontWeight"
	FieldTextAlign       StyleField = "textAlign"
	FieldPadding         StyleField = "padding"
	FieldMargin          StyleField = "margin"
	FieldBorderRadius    StyleField = "borderRadius"
	FieldPosition        StyleField = "position"
	FieldLeft            StyleField = "left"
	FieldTop             StyleField = "top"
)

// StyleFields lists all fields in their canonical (export) order.
var StyleFields = []StyleField{
	FieldWidth, FieldHeight, FieldBackgroundColor, FieldColor, FieldFontSize, FieldFontWeight,
	FieldPadding, FieldMargin, FieldBorderRadius, FieldTextAlign, FieldPosition, FieldLeft, FieldTop,
}

// IsColor reports whether the field carries a colour value.
func (f StyleField) IsColor() bool { return f == FieldColor || f == FieldBackgroundColor }

func (s *Style) ptr(f StyleField) *string {
	switch f {
	case FieldWidth:
		return &s.Width
	case FieldHeight:
		return &s.Height
	case FieldBackgroundColor:
		return &s.BackgroundColor
	case FieldColor:
		return &s.Color
	case FieldFontSize:
		return &s.FontSize
	case FieldFontWeight:
		return &s.FontWeight
	case FieldTextAlign:
		return &s.TextAlign
	case FieldPadding:
		return &s.Padding
	case FieldMargin:
		return &s.Margin
	case FieldBorderRadius:
		return &s.BorderRadius
	case FieldPosition:
		return &s.Position
	case FieldLeft:
		return &s.Left
	case FieldTop:
		return &s.Top
	}
	return nil
}

// Get returns the value of field f and whether f is a known field.
func (s Style) Get(f StyleField) (string, bool) {
	p := s.ptr(f)
	if p == nil {
		return "", false
	}
	return *p, true
}

// With returns a copy of s with field f set to v. Unknown fields leave s unchanged.
func (s Style) With(f StyleField, v string) (Style, bool) {
	p := s.ptr(f)
	if p == nil {
		return s, false
	}
	*p = v
	return s, true
}

// Pairs returns the non-empty style properties in canonical order.
func (s Style) Pairs() [][2]string {
	out := make([][2]string, 0, len(StyleFields))
	for _, f := range StyleFields {
		if v, _ := s.Get(f); v != "" {
			out = append(out, [2]string{string(f), v})
		}
	}
	return out
}
