/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package export turns a canvas document into deliverables: HTML and React
// source, and SVG, PDF and PNG wireframes. Every exporter reads the document
// through tree.Walk only.
package export

import (
	"encoding/json"
	"strings"
	"unicode"

	"pagebuilder/internal/domain"
)

const (
	EmptyHTML  = "<!-- No components to export -->"
	EmptyReact = "// No components to export"
)

// kebab converts a camelCase style key to its CSS property name.
func kebab(key string) string {
	var b strings.Builder
	for _, r := range key {
		if unicode.IsUpper(r) {
			b.WriteByte('-')
			r = unicode.ToLower(r)
		}
		b.WriteRune(r)
	}
	return b.String()
}

// cssDecl renders the non-empty style fields as an inline CSS declaration list.
func cssDecl(st domain.Style) string {
	pairs := st.Pairs()
	parts := make([]string, 0, len(pairs))
	for _, p := range pairs {
		parts = append(parts, kebab(p[0])+": "+p[1])
	}
	return strings.Join(parts, "; ")
}

// jsxStyle renders the style as a JSX object literal with keys in canonical order.
func jsxStyle(st domain.Style) string {
	pairs := st.Pairs()
	parts := make([]string, 0, len(pairs))
	for _, p := range pairs {
		parts = append(parts, jsString(p[0])+":"+jsString(p[1]))
	}
	return "{" + strings.Join(parts, ",") + "}"
}

// joinDecl appends extra declarations to decl.
func joinDecl(decl, extra string) string {
	if decl == "" {
		return extra
	}
	return decl + "; " + extra
}

// jsString quotes s as a JavaScript string literal.
func jsString(s string) string {
	var b strings.Builder
	enc := json.NewEncoder(&b)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(s); err != nil {
		return `""`
	}
	return strings.TrimSuffix(b.String(), "\n")
}

func attr(n domain.Node, key, def string) string {
	if v, ok := n.Attributes[key]; ok && v != "" {
		return v
	}
	return def
}

// placeholder is the label rendered for components without markup of their own.
func placeholder(n domain.Node) string {
	return n.Name + " Component"
}
