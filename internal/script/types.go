/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package script

import "fmt"

// Script is a recorded editing session: an ordered list of steps replayed
// against a canvas controller.
type Script struct {
	Name  string
	Steps []Step
}

// Op names what a step does.
type Op string

const (
	OpDrop     Op = "drop"
	OpSelect   Op = "select"
	OpUpdate   Op = "update"
	OpRemove   Op = "remove"
	OpResize   Op = "resize"
	OpUndo     Op = "undo"
	OpRedo     Op = "redo"
	OpClear    Op = "clear"
	OpPreview  Op = "preview"
	OpTemplate Op = "template"
	OpPublish  Op = "publish"
)

var knownOps = map[Op]bool{
	OpDrop: true, OpSelect: true, OpUpdate: true, OpRemove: true, OpResize: true,
	OpUndo: true, OpRedo: true, OpClear: true, OpPreview: true, OpTemplate: true, OpPublish: true,
}

// Step is one session action. Only the fields of its Op are meaningful.
// Parent and Target accept either a node id or an alias bound by a drop's As.
type Step struct {
	Op     Op
	LineNo int // 1-based line of the step in the source

	// drop
	Name   string
	Kind   string
	Parent string
	At     []float64
	As     string

	// select, update, remove, resize
	Target string

	// update
	Style      map[string]string
	Content    *string
	Rename     string
	Attributes map[string]string
	Commit     bool

	// resize
	Moves  [][]float64
	Cancel bool

	// preview
	On bool

	// template
	Template string
}

// Error represents a parse error with position context.
type Error struct {
	Line    int
	Column  int
	Message string
}

func (e Error) Error() string {
	return fmt.Sprintf("line %d, column %d: %s", e.Line, e.Column, e.Message)
}
