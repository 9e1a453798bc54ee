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
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"math"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"

	"pagebuilder/internal/domain"
	"pagebuilder/internal/tree"
)

// PNGOptions controls PNG export behavior.
// - Scale: output pixels per CSS pixel (1 when 0)
// - IncludeGuides: draw the canvas outline
// - Width: canvas width in CSS pixels (DefaultCanvasWidth when 0)
//
//nolint:revive // clarity is preferred
type PNGOptions struct {
	IncludeGuides bool
	Scale         float64
	Width         float64
}

// Raster limits for PNG output.
const (
	maxPNGSide   = 1 << 15
	maxPNGPixels = 1 << 26
)

// PNG rasterizes the wireframe of doc and returns the encoded image. A
// canvas larger than the raster limits is ErrValidation.
func PNG(doc *tree.Document, opt PNGOptions) ([]byte, error) {
	lay := Compute(doc, opt.Width)
	scale := opt.Scale
	if scale <= 0 {
		scale = 1
	}
	fw, fh := math.Round(lay.Width*scale), math.Round(lay.Height*scale)
	if fw > maxPNGSide || fh > maxPNGSide || fw*fh > maxPNGPixels {
		return nil, fmt.Errorf("%w: png canvas %.0fx%.0f exceeds %dx%d or %d pixels",
			domain.ErrValidation, fw, fh, maxPNGSide, maxPNGSide, maxPNGPixels)
	}
	at := func(v float64) int { return int(math.Round(v * scale)) }
	pixW, pixH := max(int(fw), 1), max(int(fh), 1)

	img := image.NewRGBA(image.Rect(0, 0, pixW, pixH))
	// Background white
	draw.Draw(img, img.Bounds(), &image.Uniform{C: white}, image.Point{}, draw.Src)
	if opt.IncludeGuides {
		strokeRect(img, 0, 0, pixW-1, pixH-1, guide)
	}

	d := &font.Drawer{Dst: img, Face: basicfont.Face7x13}
	for _, b := range lay.Boxes {
		x, y := at(b.X), at(b.Y)
		x1, y1 := x+at(b.W)-1, y+at(b.H)-1
		if b.Fill.A > 0 {
			fillRect(img, x, y, x1, y1, b.Fill)
		}
		if b.Kind.IsContainer() {
			strokeRect(img, x, y, x1, y1, guide)
		} else {
			strokeRect(img, x, y, x1, y1, black)
		}
		if b.Label != "" {
			// glyphs are not scaled; the label keeps its 7x13 cell
			d.Src = image.NewUniform(b.Ink)
			d.Dot = fixed.P(x+4, y+int(lineHeight)-2)
			d.DrawString(b.Label)
		}
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("encode png: %w", err)
	}
	return buf.Bytes(), nil
}

// strokeRect draws a 1px axis-aligned rectangle border inclusive of endpoints.
// Pixels outside the image are ignored by SetRGBA.
func strokeRect(img *image.RGBA, x0, y0, x1, y1 int, col color.RGBA) {
	// top and bottom
	for x := x0; x <= x1; x++ {
		img.SetRGBA(x, y0, col)
		img.SetRGBA(x, y1, col)
	}
	// left and right
	for y := y0; y <= y1; y++ {
		img.SetRGBA(x0, y, col)
		img.SetRGBA(x1, y, col)
	}
}

func fillRect(img *image.RGBA, x0, y0, x1, y1 int, col color.RGBA) {
	r := image.Rect(x0, y0, x1+1, y1+1).Intersect(img.Bounds())
	draw.Draw(img, r, &image.Uniform{C: col}, image.Point{}, draw.Src)
}
