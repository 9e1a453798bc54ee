/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package script

import (
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

// Parse parses a YAML session script.
// Supported syntax:
//   - The document is either a list of steps or a mapping with "name" and "steps".
//   - A step without arguments is a bare word: "- undo", "- redo", "- clear", "- publish".
//     A bare "- remove" removes the current selection.
//   - A step with arguments is a single-key mapping: "- drop: {kind: text, as: intro, at: [40, 60]}".
//   - select, remove and template accept a scalar shorthand ("- select: intro").
//   - preview accepts a boolean ("- preview: true").
//
// Every malformed step is reported; well-formed steps are still returned.
func Parse(input []byte) (Script, []Error) {
	var s Script
	var errs []Error

	var root yaml.Node
	if err := yaml.Unmarshal(input, &root); err != nil {
		return s, []Error{yamlError(err)}
	}
	if root.Kind == 0 || len(root.Content) == 0 {
		return s, nil
	}
	doc := root.Content[0]

	steps := doc
	if doc.Kind == yaml.MappingNode {
		steps = nil
		for i := 0; i+1 < len(doc.Content); i += 2 {
			k, v := doc.Content[i], doc.Content[i+1]
			switch k.Value {
			case "name":
				s.Name = v.Value
			case "steps":
				steps = v
			default:
				errs = append(errs, errAt(k, "unknown key %q", k.Value))
			}
		}
		if steps == nil {
			return s, append(errs, errAt(doc, "missing steps"))
		}
	}
	if steps.Kind != yaml.SequenceNode {
		return s, append(errs, errAt(steps, "steps must be a list"))
	}

	for _, n := range steps.Content {
		st, err := parseStep(n)
		if err != nil {
			errs = append(errs, *err)
			continue
		}
		s.Steps = append(s.Steps, st)
	}
	return s, errs
}

func parseStep(n *yaml.Node) (Step, *Error) {
	switch n.Kind {
	case yaml.ScalarNode:
		op := Op(strings.ToLower(strings.TrimSpace(n.Value)))
		switch op {
		case OpUndo, OpRedo, OpClear, OpPublish, OpRemove:
			return Step{Op: op, LineNo: n.Line}, nil
		}
		if knownOps[op] {
			return Step{}, errPtr(errAt(n, "%s needs arguments", op))
		}
		return Step{}, errPtr(errAt(n, "unknown step %q", n.Value))
	case yaml.MappingNode:
	default:
		return Step{}, errPtr(errAt(n, "step must be a word or a single-key mapping"))
	}
	if len(n.Content) != 2 {
		return Step{}, errPtr(errAt(n, "step must have exactly one action"))
	}
	k, v := n.Content[0], n.Content[1]
	op := Op(strings.ToLower(k.Value))
	if !knownOps[op] {
		return Step{}, errPtr(errAt(k, "unknown step %q", k.Value))
	}
	st := Step{Op: op, LineNo: k.Line}

	var err error
	switch op {
	case OpDrop:
		var a struct {
			Name   string    `yaml:"name"`
			Kind   string    `yaml:"kind"`
			Parent string    `yaml:"parent"`
			At     []float64 `yaml:"at"`
			As     string    `yaml:"as"`
		}
		if err = v.Decode(&a); err == nil {
			if strings.TrimSpace(a.Kind) == "" && strings.TrimSpace(a.Name) == "" {
				return Step{}, errPtr(errAt(v, "drop needs a kind"))
			}
			if a.At != nil && len(a.At) != 2 {
				return Step{}, errPtr(errAt(v, "at must be [x, y]"))
			}
			st.Name, st.Kind, st.Parent, st.At, st.As = a.Name, a.Kind, a.Parent, a.At, a.As
		}
	case OpSelect, OpRemove:
		st.Target, err = targetOf(v)
	case OpTemplate:
		if v.Kind == yaml.ScalarNode {
			st.Template = v.Value
		} else {
			var a struct {
				ID string `yaml:"id"`
			}
			err = v.Decode(&a)
			st.Template = a.ID
		}
		if err == nil && strings.TrimSpace(st.Template) == "" {
			return Step{}, errPtr(errAt(v, "template needs an id"))
		}
	case OpPreview:
		if v.Kind == yaml.ScalarNode {
			err = v.Decode(&st.On)
		} else {
			var a struct {
				On bool `yaml:"on"`
			}
			err = v.Decode(&a)
			st.On = a.On
		}
	case OpUpdate:
		var a struct {
			Target     string            `yaml:"target"`
			Style      map[string]string `yaml:"style"`
			Content    *string           `yaml:"content"`
			Name       string            `yaml:"name"`
			Attributes map[string]string `yaml:"attributes"`
			Commit     *bool             `yaml:"commit"`
		}
		if err = v.Decode(&a); err == nil {
			st.Target, st.Style, st.Content, st.Rename, st.Attributes = a.Target, a.Style, a.Content, a.Name, a.Attributes
			// updates from a script are discrete edits unless marked otherwise
			st.Commit = a.Commit == nil || *a.Commit
		}
	case OpResize:
		var a struct {
			Target string      `yaml:"target"`
			Moves  [][]float64 `yaml:"moves"`
			Cancel bool        `yaml:"cancel"`
		}
		if err = v.Decode(&a); err == nil {
			for _, m := range a.Moves {
				if len(m) != 2 {
					return Step{}, errPtr(errAt(v, "each move must be [x, y]"))
				}
			}
			st.Target, st.Moves, st.Cancel = a.Target, a.Moves, a.Cancel
		}
	case OpUndo, OpRedo, OpClear, OpPublish:
		// arguments are ignored
	}
	if err != nil {
		return Step{}, errPtr(errAt(v, "%s: %v", op, err))
	}
	return st, nil
}

func targetOf(v *yaml.Node) (string, error) {
	if v.Kind == yaml.ScalarNode {
		return v.Value, nil
	}
	var a struct {
		Target string `yaml:"target"`
	}
	err := v.Decode(&a)
	return a.Target, err
}

func errAt(n *yaml.Node, format string, args ...any) Error {
	return Error{Line: n.Line, Column: n.Column, Message: fmt.Sprintf(format, args...)}
}

func errPtr(e Error) *Error { return &e }

// yamlError converts a yaml syntax error, which carries "line N:" in its text.
func yamlError(err error) Error {
	msg := err.Error()
	var line int
	if i := strings.Index(msg, "line "); i >= 0 {
		_, _ = fmt.Sscanf(msg[i:], "line %d", &line)
	}
	return Error{Line: line, Column: 1, Message: msg}
}
