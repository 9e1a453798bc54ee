/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package domain

import "errors"

// Error taxonomy. None of these is fatal: callers degrade to a no-op and,
// where the user should know, a transient notice.
var (
	// ErrValidation marks malformed input (empty drop payload, unresolved parent).
	// It is logged at debug level only, since hover drags fire with partial data.
	ErrValidation = errors.New("validation no-op")
	// ErrHistoryExhausted is returned by undo/redo when there is nothing to move to.
	ErrHistoryExhausted = errors.New("no history")
	// ErrSelectionMissing is returned when an edit needs a selected node and there is none.
	ErrSelectionMissing = errors.New("no component selected")
	// ErrPreviewMode is returned for edits attempted while preview mode is active.
	ErrPreviewMode = errors.New("disabled in preview mode")
)
