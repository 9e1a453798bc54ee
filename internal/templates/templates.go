/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package templates provides the library of pre-built page sections the
// toolbar can add to the canvas. Built-in sections are embedded; extra
// sections can be loaded from a directory of *.json files. Every section is
// validated against an embedded JSON Schema before use.
package templates

import (
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	gojsonschema "github.com/xeipuuv/gojsonschema"

	"pagebuilder/internal/domain"
	"pagebuilder/internal/tree"
)

//go:embed section.schema.json
var schemaBytes []byte

//go:embed builtin/*.json
var builtinFS embed.FS

// builtinOrder is the toolbar order of the embedded sections.
var builtinOrder = []string{"hero", "features", "contact"}

// Section is a named list of root-level components inserted together.
// Component ids in a section are ignored; fresh ids are assigned on insertion.
type Section struct {
	ID         string         `json:"id"`
	Name       string         `json:"name"`
	Components []tree.Subtree `json:"components"`
}

// Instantiate returns the section's components with fresh ids. Components
// without styles get the default style of their kind.
func (s Section) Instantiate(newID func() string) []tree.Subtree {
	out := make([]tree.Subtree, 0, len(s.Components))
	for _, c := range s.Components {
		out = append(out, withDefaults(tree.WithFreshIDs(c, newID)))
	}
	return out
}

func withDefaults(s tree.Subtree) tree.Subtree {
	if s.Style == (domain.Style{}) {
		s.Style = s.Kind.DefaultStyle()
	}
	if s.Name == "" {
		s.Name = s.Kind.Policy().Label
	}
	for i := range s.Children {
		s.Children[i] = withDefaults(s.Children[i])
	}
	return s
}

// ErrInvalid is returned for sections that do not conform to the schema.
var ErrInvalid = errors.New("invalid template section")

// Parse validates data against the section schema and decodes it.
func Parse(data []byte) (Section, error) {
	res, err := gojsonschema.Validate(gojsonschema.NewBytesLoader(schemaBytes), gojsonschema.NewBytesLoader(data))
	if err != nil {
		return Section{}, fmt.Errorf("schema validate: %w", err)
	}
	if !res.Valid() {
		msgs := make([]string, 0, len(res.Errors()))
		for _, e := range res.Errors() {
			msgs = append(msgs, e.String())
		}
		return Section{}, fmt.Errorf("%w: %s", ErrInvalid, strings.Join(msgs, "; "))
	}
	var s Section
	if err := json.Unmarshal(data, &s); err != nil {
		return Section{}, fmt.Errorf("decode section: %w", err)
	}
	return s, nil
}

// Library holds sections by id, in insertion order.
type Library struct {
	order []string
	byID  map[string]Section
}

// Builtin returns a library with only the embedded sections.
func Builtin() (*Library, error) {
	lib := &Library{byID: make(map[string]Section)}
	for _, id := range builtinOrder {
		data, err := builtinFS.ReadFile("builtin/" + id + ".json")
		if err != nil {
			return nil, fmt.Errorf("read builtin %s: %w", id, err)
		}
		s, err := Parse(data)
		if err != nil {
			return nil, fmt.Errorf("builtin %s: %w", id, err)
		}
		lib.add(s)
	}
	return lib, nil
}

// Load returns the built-in sections plus every *.json section in dir.
// A section in dir replaces a built-in one with the same id. An empty dir
// loads only the built-ins; a missing dir is not an error.
func Load(dir string) (*Library, error) {
	lib, err := Builtin()
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(dir) == "" {
		return lib, nil
	}
	matches, err := filepath.Glob(filepath.Join(dir, "*.json"))
	if err != nil {
		return nil, fmt.Errorf("scan templates dir: %w", err)
	}
	sort.Strings(matches)
	for _, p := range matches {
		data, err := os.ReadFile(p)
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", filepath.Base(p), err)
		}
		s, err := Parse(data)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", filepath.Base(p), err)
		}
		lib.add(s)
	}
	return lib, nil
}

func (l *Library) add(s Section) {
	if _, ok := l.byID[s.ID]; !ok {
		l.order = append(l.order, s.ID)
	}
	l.byID[s.ID] = s
}

// Get returns the section with id.
func (l *Library) Get(id string) (Section, bool) {
	s, ok := l.byID[id]
	return s, ok
}

// List returns all sections in order.
func (l *Library) List() []Section {
	out := make([]Section, 0, len(l.order))
	for _, id := range l.order {
		out = append(out, l.byID[id])
	}
	return out
}
