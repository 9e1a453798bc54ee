/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package export

import (
	"errors"
	"fmt"
	"math/rand"
	"os"
	"path/filepath"
	"strings"

	"pagebuilder/internal/domain"
	"pagebuilder/internal/tree"
)

// Format names one export artifact.
type Format string

const (
	FormatHTML  Format = "html"
	FormatReact Format = "react"
	FormatSVG   Format = "svg"
	FormatPDF   Format = "pdf"
	FormatPNG   Format = "png"
)

// AllFormats lists every format in write order.
var AllFormats = []Format{FormatHTML, FormatReact, FormatSVG, FormatPDF, FormatPNG}

// DefaultFormats are written when no formats are configured.
var DefaultFormats = []Format{FormatHTML, FormatReact}

// FileName returns the artifact file name for f.
func (f Format) FileName() string {
	switch f {
	case FormatHTML:
		return "exported_page.html"
	case FormatReact:
		return ReactComponentName + ".jsx"
	case FormatSVG:
		return "wireframe.svg"
	case FormatPDF:
		return "wireframe.pdf"
	case FormatPNG:
		return "wireframe.png"
	}
	return ""
}

// ParseFormats normalizes format names. Unknown names are a validation error.
func ParseFormats(names []string) ([]Format, error) {
	out := make([]Format, 0, len(names))
	seen := make(map[Format]bool, len(names))
	for _, n := range names {
		f := Format(strings.ToLower(strings.TrimSpace(n)))
		if f == "jsx" {
			f = FormatReact
		}
		if f.FileName() == "" {
			return nil, fmt.Errorf("%w: unknown export format %q", domain.ErrValidation, n)
		}
		if !seen[f] {
			seen[f] = true
			out = append(out, f)
		}
	}
	return out, nil
}

// Render produces the bytes of one artifact.
func Render(doc *tree.Document, f Format) ([]byte, error) {
	switch f {
	case FormatHTML:
		return []byte(HTML(doc)), nil
	case FormatReact:
		return []byte(React(doc)), nil
	case FormatSVG:
		return SVG(doc, SVGOptions{IncludeGuides: true}), nil
	case FormatPDF:
		return renderPDF(doc, PDFOptions{IncludeGuides: true})
	case FormatPNG:
		return PNG(doc, PNGOptions{IncludeGuides: true})
	}
	return nil, fmt.Errorf("%w: unknown export format %q", domain.ErrValidation, f)
}

// WriteAll renders every format and writes it into outDir, returning the
// written paths in format order. Each file is replaced atomically; a format
// that fails to render leaves its previous file untouched.
func WriteAll(doc *tree.Document, outDir string, formats []Format) ([]string, error) {
	if strings.TrimSpace(outDir) == "" {
		return nil, fmt.Errorf("%w: empty export directory", domain.ErrValidation)
	}
	if len(formats) == 0 {
		formats = DefaultFormats
	}
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return nil, fmt.Errorf("ensure out dir: %w", err)
	}
	var (
		paths []string
		errs  []error
	)
	for _, f := range formats {
		data, err := Render(doc, f)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		p := filepath.Join(outDir, f.FileName())
		if err := writeFileAtomic(p, data); err != nil {
			errs = append(errs, fmt.Errorf("write %s: %w", f, err))
			continue
		}
		paths = append(paths, p)
	}
	return paths, errors.Join(errs...)
}

// writeFileAtomic writes data to a temp file in the target directory, syncs
// it and renames it over path.
func writeFileAtomic(path string, data []byte) error {
	dir := filepath.Dir(path)
	tmp := filepath.Join(dir, fmt.Sprintf(".%s.tmp-%d-%d", filepath.Base(path), os.Getpid(), rand.Int63()))
	if err := writeFileSync(tmp, data, 0o644); err != nil {
		_ = os.Remove(tmp)
		return err
	}
	// On Windows, rename fails if destination exists; remove first
	_ = os.Remove(path)
	if err := os.Rename(tmp, path); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("rename temp file: %w", err)
	}
	return nil
}

func writeFileSync(path string, data []byte, perm os.FileMode) (err error) {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, perm)
	if err != nil {
		return fmt.Errorf("open temp file: %w", err)
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = cerr
		}
	}()
	if _, err = f.Write(data); err != nil {
		return fmt.Errorf("write temp file: %w", err)
	}
	if err = f.Sync(); err != nil {
		return fmt.Errorf("sync temp file: %w", err)
	}
	return nil
}
