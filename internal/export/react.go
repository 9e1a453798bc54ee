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
	"strings"

	"pagebuilder/internal/domain"
	"pagebuilder/internal/tree"
)

// ReactComponentName is the name of the generated component.
const ReactComponentName = "ExportedComponent"

// React renders doc as a JSX function component. Text is emitted as string
// expressions so content never needs JSX escaping.
func React(doc *tree.Document) string {
	if doc.Empty() {
		return EmptyReact
	}
	w := &jsxWriter{}
	w.b.WriteString("import React from 'react';\n")
	w.b.WriteString("import { Button } from '@/components/ui/button';\n\n")
	fmt.Fprintf(&w.b, "const %s = () => {\n  return (\n    <div className=\"w-full space-y-4\">\n", ReactComponentName)
	tree.Walk(doc, w)
	fmt.Fprintf(&w.b, "    </div>\n  );\n};\n\nexport default %s;\n", ReactComponentName)
	return w.b.String()
}

type jsxWriter struct {
	b strings.Builder
}

func (w *jsxWriter) line(depth int, format string, args ...any) {
	w.b.WriteString(strings.Repeat("  ", depth+3))
	fmt.Fprintf(&w.b, format, args...)
	w.b.WriteByte('\n')
}

const (
	jsxHintBox   = `className="py-4 flex items-center justify-center bg-gray-50"`
	jsxHintCol   = `className="flex-1 py-8 bg-gray-50 flex items-center justify-center"`
	jsxHintLabel = `className="text-sm text-gray-500"`
)

func (w *jsxWriter) Enter(n domain.Node, depth int) bool {
	style := jsxStyle(n.Style)
	text := "{" + jsString(n.Content) + "}"
	empty := len(n.Children) == 0
	switch n.Kind {
	case domain.KindSection:
		w.line(depth, `<section style={%s} className="w-full">`, style)
		if empty {
			w.line(depth+1, `<div %s>`, jsxHintBox)
			w.line(depth+2, `<span %s>Section</span>`, jsxHintLabel)
			w.line(depth+1, `</div>`)
		}
		return true
	case domain.KindRow:
		w.line(depth, `<div style={%s} className="flex flex-row w-full gap-4">`, style)
		if empty {
			for i := 1; i <= 2; i++ {
				w.line(depth+1, `<div %s>`, jsxHintCol)
				w.line(depth+2, `<span %s>Column %d</span>`, jsxHintLabel, i)
				w.line(depth+1, `</div>`)
			}
		}
		return true
	case domain.KindColumn, domain.KindContainer:
		if empty {
			w.line(depth, `<div style={%s}>{%s}</div>`, style, jsString(placeholder(n)))
			return false
		}
		w.line(depth, `<div style={%s}>`, style)
		return true
	case domain.KindText:
		w.line(depth, `<p style={%s}>%s</p>`, style, text)
	case domain.KindButton:
		w.line(depth, `<Button style={%s}>%s</Button>`, style, text)
	case domain.KindImage:
		w.line(depth, `<img src={%s} alt={%s} style={%s} />`, jsString(n.Content), jsString(attr(n, "alt", "Image")), style)
	case domain.KindLink:
		w.line(depth, `<a href={%s} target={%s} style={%s}>%s</a>`,
			jsString(attr(n, "href", "#")), jsString(attr(n, "target", "")), style, text)
	default:
		w.line(depth, `<div style={%s}>{%s}</div>`, style, jsString(placeholder(n)))
	}
	return false
}

func (w *jsxWriter) Leave(n domain.Node, depth int) {
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
