/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package export

import (
	"image/color"
	"math"
	"strconv"
	"strings"

	"github.com/lucasb-eyer/go-colorful"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"

	"pagebuilder/internal/domain"
	"pagebuilder/internal/tree"
)

// Box is one laid-out component of a wireframe, in CSS pixels.
type Box struct {
	ID    string
	Kind  domain.Kind
	Label string
	Depth int
	X, Y  float64
	W, H  float64
	Fill  color.RGBA // zero alpha means no fill
	Ink   color.RGBA
}

// Layout is a flat wireframe of a document, boxes in pre-order.
type Layout struct {
	Width, Height float64
	Boxes         []Box
}

const (
	// DefaultCanvasWidth matches the max-width of the exported page container.
	DefaultCanvasWidth = 1200.0
	remPx              = 16.0
	rowGap             = 16.0
	lineHeight         = 13.0
	ellipsis           = "..."
)

var (
	white = color.RGBA{255, 255, 255, 255}
	black = color.RGBA{0, 0, 0, 255}
	guide = color.RGBA{156, 163, 175, 255}
)

// length resolves the first token of a CSS length against rel (for %).
// auto and unparseable values report false.
func length(v string, rel float64) (float64, bool) {
	f := strings.Fields(v)
	if len(f) == 0 {
		return 0, false
	}
	s := strings.ToLower(f[0])
	mul := 1.0
	switch {
	case strings.HasSuffix(s, "px"):
		s = strings.TrimSuffix(s, "px")
	case strings.HasSuffix(s, "rem"):
		s, mul = strings.TrimSuffix(s, "rem"), remPx
	case strings.HasSuffix(s, "em"):
		s, mul = strings.TrimSuffix(s, "em"), remPx
	case strings.HasSuffix(s, "%"):
		s, mul = strings.TrimSuffix(s, "%"), rel/100
	}
	x, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(x) || math.IsInf(x, 0) {
		return 0, false
	}
	return x * mul, true
}

// paint resolves a CSS colour to RGBA. Values without an opaque sRGB form
// (keywords, alpha, colour functions) and invalid values give def.
func paint(css string, def color.RGBA) color.RGBA {
	hex, ok := domain.ColourHex(css)
	if !ok {
		return def
	}
	c, err := colorful.Hex(hex)
	if err != nil {
		return def
	}
	r, g, b := c.RGB255()
	return color.RGBA{R: r, G: g, B: b, A: 255}
}

// FitLabel truncates s with an ellipsis so it fits into maxPx using the
// embedded 7x13 bitmap face.
func FitLabel(s string, maxPx float64) string {
	if float64(measure(s)>>6) <= maxPx {
		return s
	}
	rs := []rune(s)
	for len(rs) > 0 {
		rs = rs[:len(rs)-1]
		cand := string(rs) + ellipsis
		if float64(measure(cand)>>6) <= maxPx {
			return cand
		}
	}
	return ""
}

func measure(s string) fixed.Int26_6 {
	d := &font.Drawer{Face: basicfont.Face7x13}
	return d.MeasureString(s)
}

func label(n domain.Node) string {
	switch n.Kind {
	case domain.KindText, domain.KindButton, domain.KindLink:
		if strings.TrimSpace(n.Content) != "" {
			return n.Content
		}
	}
	return n.Name
}

// Compute lays out doc for a canvas of the given width (DefaultCanvasWidth
// when <= 0). Siblings stack vertically; children of a row share its width
// in equal columns. Absolute roots are placed at their left/top offsets.
func Compute(doc *tree.Document, width float64) Layout {
	if width <= 0 {
		width = DefaultCanvasWidth
	}
	l := &layouter{stack: []frame{{idx: -1, x: 0, w: width}}}
	tree.Walk(doc, l)
	out := Layout{Width: width, Boxes: l.boxes}
	for _, b := range l.boxes {
		out.Height = math.Max(out.Height, b.Y+b.H)
	}
	out.Height = math.Max(out.Height, 1)
	return out
}

type frame struct {
	idx      int
	x, w     float64 // content box
	top, y   float64 // content origin and flow cursor
	pad      float64
	explicit float64 // fixed height, 0 when auto
	row      bool
	cols     int
	col      int
	rowH     float64
	abs      bool
	margin   float64
}

type layouter struct {
	stack []frame
	boxes []Box
}

func (l *layouter) Enter(n domain.Node, depth int) bool {
	p := &l.stack[len(l.stack)-1]
	avail := p.w
	if p.row && p.cols > 0 {
		avail = math.Max((p.w-rowGap*float64(p.cols-1))/float64(p.cols), 1)
	}
	w, ok := length(n.Style.Width, avail)
	if !ok || w <= 0 {
		w = avail
	}
	margin, _ := length(n.Style.Margin, p.w)
	pad, _ := length(n.Style.Padding, w)
	pad = math.Min(math.Max(pad, 0), w/2)

	x, y := p.x, p.y+margin
	if p.row {
		x, y = p.x+float64(p.col)*(avail+rowGap), p.y
	}
	abs := n.Style.Position == domain.PositionAbsolute
	if abs {
		left, _ := length(n.Style.Left, p.w)
		top, _ := length(n.Style.Top, 0)
		x, y = p.x+left, p.top+top
	}
	h, _ := length(n.Style.Height, 0)

	l.boxes = append(l.boxes, Box{
		ID:    n.ID,
		Kind:  n.Kind,
		Label: FitLabel(label(n), w-2*pad),
		Depth: depth,
		X:     x,
		Y:     y,
		W:     w,
		Fill:  paint(n.Style.BackgroundColor, color.RGBA{}),
		Ink:   paint(n.Style.Color, black),
	})
	kids := 0
	if n.Kind.IsContainer() {
		kids = len(n.Children)
	}
	l.stack = append(l.stack, frame{
		idx:      len(l.boxes) - 1,
		x:        x + pad,
		w:        math.Max(w-2*pad, 1),
		top:      y + pad,
		y:        y + pad,
		pad:      pad,
		explicit: math.Max(h, 0),
		row:      n.Kind == domain.KindRow,
		cols:     kids,
		abs:      abs,
		margin:   margin,
	})
	return n.Kind.IsContainer()
}

func (l *layouter) Leave(n domain.Node, depth int) {
	f := l.stack[len(l.stack)-1]
	l.stack = l.stack[:len(l.stack)-1]
	content := f.y - f.top
	if f.row {
		content = f.rowH
	}
	if content <= 0 {
		content = lineHeight
	}
	h := f.explicit
	if h == 0 {
		h = content + 2*f.pad
	}
	l.boxes[f.idx].H = h

	if f.abs {
		return
	}
	p := &l.stack[len(l.stack)-1]
	if p.row {
		p.rowH = math.Max(p.rowH, h)
		p.col++
		return
	}
	p.y += f.margin + h + f.margin
}
