/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package templates

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"pagebuilder/internal/domain"
)

func TestBuiltinSections(t *testing.T) {
	lib, err := Builtin()
	if err != nil {
		t.Fatalf("Builtin: %v", err)
	}
	list := lib.List()
	if len(list) != 3 || list[0].ID != "hero" || list[1].ID != "features" || list[2].ID != "contact" {
		t.Fatalf("unexpected builtin order: %+v", list)
	}
	hero, ok := lib.Get("hero")
	if !ok || hero.Name != "Hero Section" || len(hero.Components) != 3 {
		t.Fatalf("unexpected hero: %+v", hero)
	}
	cta := hero.Components[2]
	if cta.Kind != domain.KindButton || cta.Content != "Get Started" || cta.Style.BackgroundColor != "#3b82f6" {
		t.Fatalf("unexpected call to action: %+v", cta.Node)
	}
	contact, _ := lib.Get("contact")
	if contact.Components[1].Kind != domain.KindForm {
		t.Fatalf("contact form kind = %s", contact.Components[1].Kind)
	}
}

func TestInstantiateAssignsFreshIDs(t *testing.T) {
	lib, _ := Builtin()
	s, _ := lib.Get("features")
	n := 0
	comps := s.Instantiate(func() string { n++; return fmt.Sprintf("component-%d", n) })
	if len(comps) != 2 || comps[0].ID != "component-1" || comps[1].ID != "component-2" {
		t.Fatalf("unexpected ids: %q %q", comps[0].ID, comps[1].ID)
	}
	again := s.Instantiate(func() string { n++; return fmt.Sprintf("component-%d", n) })
	if again[0].ID == comps[0].ID {
		t.Fatalf("ids reused across instantiations")
	}
	if s.Components[0].ID != "" {
		t.Fatalf("Instantiate mutated the library section")
	}
}

func TestParseRejectsInvalid(t *testing.T) {
	cases := map[string]string{
		"missing components": `{"id":"x","name":"X"}`,
		"bad align":          `{"id":"x","name":"X","components":[{"name":"A","type":"text","styles":{"textAlign":"middle"}}]}`,
		"unknown style":      `{"id":"x","name":"X","components":[{"name":"A","type":"text","styles":{"zIndex":"2"}}]}`,
	}
	for name, data := range cases {
		if _, err := Parse([]byte(data)); !errors.Is(err, ErrInvalid) {
			t.Fatalf("%s: expected ErrInvalid, got %v", name, err)
		}
	}
}

func TestLoadDirAddsAndOverrides(t *testing.T) {
	dir := t.TempDir()
	footer := `{"id":"footer","name":"Footer","components":[{"name":"Copyright","type":"text","content":"(c) 2025","children":[]}]}`
	hero := `{"id":"hero","name":"Custom Hero","components":[{"name":"Row","type":"row","children":[{"name":"Cell","type":"column"}]}]}`
	if err := os.WriteFile(filepath.Join(dir, "footer.json"), []byte(footer), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "hero.json"), []byte(hero), 0o644); err != nil {
		t.Fatal(err)
	}
	lib, err := Load(dir)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(lib.List()) != 4 {
		t.Fatalf("expected 4 sections, got %d", len(lib.List()))
	}
	h, _ := lib.Get("hero")
	if h.Name != "Custom Hero" || len(h.Components[0].Children) != 1 {
		t.Fatalf("override not applied: %+v", h)
	}
	comps := h.Instantiate(func() string { return "id" })
	if comps[0].Children[0].Style.Padding != "12px" {
		t.Fatalf("missing styles should default by kind")
	}
}

func TestLoadRejectsBadFile(t *testing.T) {
	dir := t.TempDir()
	_ = os.WriteFile(filepath.Join(dir, "bad.json"), []byte(`{"id":"Bad Id","name":"x","components":[]}`), 0o644)
	if _, err := Load(dir); err == nil {
		t.Fatalf("expected error for invalid section file")
	}
}
