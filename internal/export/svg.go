/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package export

import (
	"bytes"
	"fmt"
	"image/color"
	"math"
	"strings"

	"pagebuilder/internal/tree"
)

// SVGOptions controls SVG export behavior.
// - Width is the canvas width in CSS pixels (DefaultCanvasWidth when 0).
// - Scale multiplies the width/height attributes; the viewBox stays in CSS pixels.
//
//nolint:revive // clarity is preferred
type SVGOptions struct {
	IncludeGuides bool
	Width         float64
	Scale         float64
}

// SVG renders doc as a wireframe: one box per component with its label.
func SVG(doc *tree.Document, opt SVGOptions) []byte {
	lay := Compute(doc, opt.Width)
	scale := opt.Scale
	if scale <= 0 {
		scale = 1
	}
	pxW := int(math.Round(lay.Width * scale))
	pxH := int(math.Round(lay.Height * scale))

	var buf bytes.Buffer
	wf := func(format string, args ...any) {
		_, _ = fmt.Fprintf(&buf, format, args...)
	}

	wf("<?xml version=\"1.0\" encoding=\"UTF-8\"?>\n")
	wf("<svg xmlns=\"http://www.w3.org/2000/svg\" version=\"1.1\" width=\"%dpx\" height=\"%dpx\" viewBox=\"0 0 %g %g\">\n", pxW, pxH, lay.Width, lay.Height)
	// Background white
	wf("  <rect x=\"0\" y=\"0\" width=\"%g\" height=\"%g\" fill=\"#ffffff\"/>\n", lay.Width, lay.Height)
	if opt.IncludeGuides {
		wf("  <rect x=\"0\" y=\"0\" width=\"%g\" height=\"%g\" fill=\"none\" stroke=\"%s\" stroke-width=\"0.5\" stroke-dasharray=\"4 2\"/>\n", lay.Width, lay.Height, svgColor(guide))
	}

	for _, b := range lay.Boxes {
		fill := "none"
		if b.Fill.A > 0 {
			fill = svgColor(b.Fill)
		}
		stroke := svgColor(black)
		if b.Kind.IsContainer() {
			stroke = svgColor(guide)
		}
		wf("  <g id=\"%s\" data-type=\"%s\">\n", escAttr(b.ID), escAttr(string(b.Kind)))
		wf("    <rect x=\"%g\" y=\"%g\" width=\"%g\" height=\"%g\" fill=\"%s\" stroke=\"%s\" stroke-width=\"1\"/>\n", b.X, b.Y, b.W, b.H, fill, stroke)
		if b.Label != "" {
			// baseline one line below the top edge, inset by 4px
			wf("    <text x=\"%g\" y=\"%g\" font-family=\"monospace\" font-size=\"13\" fill=\"%s\">%s</text>\n", b.X+4, b.Y+lineHeight, svgColor(b.Ink), escText(b.Label))
		}
		wf("  </g>\n")
	}
	wf("</svg>\n")
	return buf.Bytes()
}

func svgColor(c color.RGBA) string {
	return fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B)
}

func escText(s string) string {
	return strings.NewReplacer("&", "&amp;", "<", "&lt;", ">", "&gt;").Replace(s)
}

func escAttr(s string) string {
	return strings.NewReplacer("&", "&amp;", "<", "&lt;", ">", "&gt;", "\"", "&quot;").Replace(s)
}
