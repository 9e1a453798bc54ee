/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package export

import (
	"fmt"
	"html"
	"strings"

	"pagebuilder/internal/domain"
	"pagebuilder/internal/tree"
)

const htmlHead = `<!DOCTYPE html>
<html lang="en">
<head>
  <meta charset="UTF-8">
  <meta name="viewport" content="width=device-width, initial-scale=1.0">
  <title>Exported Page</title>
  <style>
    body { font-family: system-ui, sans-serif; margin: 0; padding: 0; }
    .container { width: 100%; max-width: 1200px; margin: 0 auto; padding: 1rem; }
  </style>
</head>
<body>
  <div class="container">
`

const htmlTail = `  </div>
</body>
</html>
`

const (
	hintBox   = "padding: 1rem; display: flex; align-items: center; justify-content: center; background-color: #f9fafb;"
	hintCol   = "flex: 1; padding: 2rem; background-color: #f9fafb; display: flex; align-items: center; justify-content: center;"
	hintLabel = "font-size: 0.875rem; color: #6b7280;"
	rowFlex   = "display: flex; width: 100%; gap: 1rem;"
)

// HTML renders doc as a standalone HTML page. Containers render their
// children nested; empty containers get a placeholder.
func HTML(doc *tree.Document) string {
	if doc.Empty() {
		return EmptyHTML
	}
	w := &htmlWriter{}
	w.b.WriteString(htmlHead)
	tree.Walk(doc, w)
	w.b.WriteString(htmlTail)
	return w.b.String()
}

type htmlWriter struct {
	b strings.Builder
}

func (w *htmlWriter) line(depth int, format string, args ...any) {
	w.b.WriteString(strings.Repeat("  ", depth+2))
	fmt.Fprintf(&w.b, format, args...)
	w.b.WriteByte('\n')
}

func (w *htmlWriter) Enter(n domain.Node, depth int) bool {
	style := html.EscapeString(cssDecl(n.Style))
	text := html.EscapeString(n.Content)
	empty := len(n.Children) == 0
	switch n.Kind {
	case domain.KindSection:
		w.line(depth, `<section style="%s">`, style)
		if empty {
			w.line(depth+1, `<div style="%s">`, hintBox)
			w.line(depth+2, `<span style="%s">Section</span>`, hintLabel)
			w.line(depth+1, `</div>`)
		}
		return true
	case domain.KindRow:
		w.line(depth, `<div style="%s">`, html.EscapeString(joinDecl(cssDecl(n.Style), rowFlex)))
		if empty {
			for i := 1; i <= 2; i++ {
				w.line(depth+1, `<div style="%s">`, hintCol)
				w.line(depth+2, `<span style="%s">Column %d</span>`, hintLabel, i)
				w.line(depth+1, `</div>`)
			}
		}
		return true
	case domain.KindColumn, domain.KindContainer:
		if empty {
			w.line(depth, `<div style="%s">%s</div>`, style, html.EscapeString(placeholder(n)))
			return false
		}
		w.line(depth, `<div style="%s">`, style)
		return true
	case domain.KindText:
		w.line(depth, `<p style="%s">%s</p>`, style, text)
	case domain.KindButton:
		w.line(depth, `<button style="%s">%s</button>`, style, text)
	case domain.KindImage:
		w.line(depth, `<img src="%s" alt="%s" style="%s" />`, html.EscapeString(n.Content), html.EscapeString(attr(n, "alt", "Image")), style)
	case domain.KindLink:
		w.line(depth, `<a href="%s" target="%s" style="%s">%s</a>`,
			html.EscapeString(attr(n, "href", "#")), html.EscapeString(attr(n, "target", "")), style, text)
	default:
		w.line(depth, `<div style="%s">%s</div>`, style, html.EscapeString(placeholder(n)))
	}
	return false
}

func (w *htmlWriter) Leave(n domain.Node, depth int) {
	switch n.Kind {
	case domain.KindSection:
		w.line(depth, `</section>`)
	case domain.KindRow:
		w.line(depth, `</div>`)
	case domain.KindColumn, domain.KindContainer:
		if len(n.Children) > 0 {
			w.line(depth, `</div>`)
		}
	}
}
