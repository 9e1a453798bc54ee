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
	"os"
	"path/filepath"

	"github.com/jung-kurt/gofpdf"

	"pagebuilder/internal/tree"
)

// PDFOptions controls PDF export behavior.
// The page is sized to the laid-out canvas; one CSS pixel maps to one point.
// Labels use built-in Courier so text stays vector without embedding and
// matches the fixed-width metrics the labels were fitted with.
//
//nolint:revive // keep options grouped and explicit for clarity
type PDFOptions struct {
	IncludeGuides bool
	Width         float64
	Title         string
}

// PDF writes a one-page wireframe proof of doc to outPath.
func PDF(doc *tree.Document, outPath string, opt PDFOptions) error {
	data, err := renderPDF(doc, opt)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(outPath), 0o755); err != nil {
		return fmt.Errorf("ensure out dir: %w", err)
	}
	return writeFileAtomic(outPath, data)
}

func renderPDF(doc *tree.Document, opt PDFOptions) ([]byte, error) {
	pdf := newPDF(doc, opt)
	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("render pdf: %w", err)
	}
	return buf.Bytes(), nil
}

func newPDF(doc *tree.Document, opt PDFOptions) *gofpdf.Fpdf {
	lay := Compute(doc, opt.Width)
	title := opt.Title
	if title == "" {
		title = "Exported Page"
	}

	pdf := gofpdf.NewCustom(&gofpdf.InitType{
		UnitStr: "pt",
		Size:    gofpdf.SizeType{Wd: lay.Width, Ht: lay.Height},
	})
	pdf.SetTitle(title+" wireframe", false)
	pdf.SetAuthor("Page Builder", false)
	pdf.SetAutoPageBreak(false, 0)
	pdf.SetFont("Courier", "", 11)
	pdf.AddPageFormat("", gofpdf.SizeType{Wd: lay.Width, Ht: lay.Height})

	if opt.IncludeGuides {
		setDrawColor(pdf, guide)
		pdf.SetLineWidth(0.2)
		pdf.Rect(0, 0, lay.Width, lay.Height, "D")
	}

	tr := pdf.UnicodeTranslatorFromDescriptor("")
	pdf.SetLineWidth(1)
	for _, b := range lay.Boxes {
		style := "D"
		if b.Fill.A > 0 {
			setFillColor(pdf, b.Fill)
			style = "FD"
		}
		if b.Kind.IsContainer() {
			setDrawColor(pdf, guide)
		} else {
			setDrawColor(pdf, black)
		}
		pdf.Rect(b.X, b.Y, b.W, b.H, style)
		if b.Label != "" {
			pdf.SetTextColor(int(b.Ink.R), int(b.Ink.G), int(b.Ink.B))
			pdf.Text(b.X+4, b.Y+lineHeight, tr(b.Label))
		}
	}
	return pdf
}

func setDrawColor(pdf *gofpdf.Fpdf, c color.RGBA) {
	pdf.SetDrawColor(int(c.R), int(c.G), int(c.B))
}

func setFillColor(pdf *gofpdf.Fpdf, c color.RGBA) {
	pdf.SetFillColor(int(c.R), int(c.G), int(c.B))
}
