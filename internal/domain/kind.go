/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package domain

import "strings"

// Kind is the closed tag selecting a component's rendering and default policy.
// Unrecognized tags are kept verbatim and fall back to the KindUnknown policy.
type Kind string

const (
	KindSection   Kind = "section"
	KindRow       Kind = "row"
	KindColumn    Kind = "column"
	KindContainer Kind = "container"
	KindText      Kind = "text"
	KindButton    Kind = "button"
	KindImage     Kind = "image"
	KindLink      Kind = "link"
	KindVideo     Kind = "video"
	KindMap       Kind = "map"
	KindForm      Kind = "form"
	KindInput     Kind = "input"
	KindUnknown   Kind = "unknown"
)

// Policy bundles every kind-specific decision in one place.
type Policy struct {
	// Container reports whether the kind is meant to hold children.
	Container bool
	// Width is the default width at creation.
	Width string
	// Content is the default content payload at creation.
	Content string
	// Tag is the HTML element used by markup exporters.
	Tag string
	// Label is the human-readable default name.
	Label string
}

const (
	DefaultTextContent  = "This is a sample text. Click to edit."
	DefaultImageContent = "https://via.placeholder.com/300x200"
)

var policies = map[Kind]Policy{
	KindSection:   {Container: true, Width: "100%", Tag: "section", Label: "Section"},
	KindRow:       {Container: true, Width: "100%", Tag: "div", Label: "Row"},
	KindColumn:    {Container: true, Width: "100%", Tag: "div", Label: "Column"},
	KindContainer: {Container: true, Width: "100%", Tag: "div", Label: "Container"},
	KindText:      {Width: "100%", Content: DefaultTextContent, Tag: "p", Label: "Text"},
	KindButton:    {Width: "100%", Content: "Button", Tag: "button", Label: "Button"},
	KindImage:     {Width: "300px", Content: DefaultImageContent, Tag: "img", Label: "Image"},
	KindLink:      {Width: "100%", Content: "Link", Tag: "a", Label: "Link"},
	KindVideo:     {Width: "100%", Tag: "div", Label: "Video"},
	KindMap:       {Width: "100%", Tag: "div", Label: "Map"},
	KindForm:      {Width: "100%", Tag: "form", Label: "Form"},
	KindInput:     {Width: "100%", Tag: "input", Label: "Input"},
	KindUnknown:   {Width: "100%", Tag: "div", Label: "Component"},
}

// Kinds lists the recognized kinds in palette order.
var Kinds = []Kind{
	KindSection, KindRow, KindColumn, KindContainer,
	KindText, KindImage, KindButton, KindLink, KindVideo, KindMap,
	KindForm, KindInput,
}

// ParseKind normalizes a drag-transfer tag. The palette sends display names
// ("Row") as often as tags ("row"), so matching is case-insensitive.
func ParseKind(s string) Kind {
	k := Kind(strings.ToLower(strings.TrimSpace(s)))
	if k == "" {
		return KindUnknown
	}
	return k
}

// Known reports whether k is one of the closed set of kinds.
func (k Kind) Known() bool {
	_, ok := policies[k]
	return ok && k != KindUnknown
}

// Policy returns the policy for k, falling back to KindUnknown.
func (k Kind) Policy() Policy {
	if p, ok := policies[k]; ok {
		return p
	}
	return policies[KindUnknown]
}

// IsContainer reports whether nodes of this kind are intended to hold children.
func (k Kind) IsContainer() bool { return k.Policy().Container }

// DefaultStyle returns the creation-time style for k.
func (k Kind) DefaultStyle() Style {
	return Style{
		Width:           k.Policy().Width,
		Height:          "auto",
		BackgroundColor: "transparent",
		Color:           "#000000",
		FontSize:        "16px",
		FontWeight:      "normal",
		TextAlign:       "left",
		Padding:         "12px",
		Margin:          "0px",
		BorderRadius:    "4px",
	}
}

// DefaultContent returns the creation-time content for k.
func (k Kind) DefaultContent() string { return k.Policy().Content }
