/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except
 * in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the
 *  specific language governing permissions and limitations under the License.
 */

package undo

import (
	"fmt"
	"sync"
	"time"

	"github.com/fxamacker/cbor/v2"

	"pagebuilder/internal/domain"
	"pagebuilder/internal/tree"
)

// entry is one encoded document snapshot.
// Size is estimated as len(Blob). TS is when the snapshot was captured.
type entry struct {
	Blob []byte
	TS   time.Time
}

// Config controls memory and depth caps and coalescing behavior.
type Config struct {
	// MaxBytes is a soft cap; older entries are pruned when exceeded.
	MaxBytes int
	// MaxEntries limits the number of snapshots kept in memory (0 means unlimited).
	MaxEntries int
	// MinInterval coalesces snapshots pushed within the interval at the tip of the
	// history, replacing the previous one instead of appending. 0 disables coalescing.
	MinInterval time.Duration
	// Now is the clock used to stamp entries; defaults to time.Now.
	Now func() time.Time
}

// Manager is a linear undo/redo history of document snapshots with a cursor.
// Entries are stored CBOR-encoded, so every read decodes an independent deep copy.
// It is safe for concurrent use.
type Manager struct {
	cfg Config
	mu  sync.Mutex
	enc cbor.EncMode

	entries []entry
	cursor  int
	// accounting
	totalBytes int
}

func NewManager(cfg Config) *Manager {
	if cfg.MaxBytes <= 0 {
		cfg.MaxBytes = 16 * 1024 * 1024 // 16 MiB
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	enc, err := cbor.CanonicalEncOptions().EncMode()
	if err != nil {
		// canonical options are static; failure here is a programming error
		panic(err)
	}
	return &Manager{cfg: cfg, enc: enc, cursor: -1}
}

// Push records doc as the newest entry. Entries after the cursor (the redo
// branch) are discarded first.
func (m *Manager) Push(doc *tree.Document) error {
	blob, err := m.enc.Marshal(doc.Snapshot())
	if err != nil {
		return fmt.Errorf("encode snapshot: %w", err)
	}
	now := m.cfg.Now()

	m.mu.Lock()
	defer m.mu.Unlock()
	m.truncateLocked()
	if n := len(m.entries); n > 1 && m.cfg.MinInterval > 0 {
		last := m.entries[n-1]
		if now.Sub(last.TS) < m.cfg.MinInterval {
			// Coalesce: adjust accounting and replace
			m.totalBytes += len(blob) - len(last.Blob)
			m.entries[n-1] = entry{Blob: blob, TS: now}
			m.enforceCapsLocked()
			return nil
		}
	}
	m.entries = append(m.entries, entry{Blob: blob, TS: now})
	m.totalBytes += len(blob)
	m.cursor = len(m.entries) - 1
	m.enforceCapsLocked()
	return nil
}

// Undo moves the cursor back and returns a copy of the entry there.
func (m *Manager) Undo() (*tree.Document, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.cursor <= 0 {
		return nil, fmt.Errorf("undo: %w", domain.ErrHistoryExhausted)
	}
	doc, err := decode(m.entries[m.cursor-1].Blob)
	if err != nil {
		return nil, err
	}
	m.cursor--
	return doc, nil
}

// Redo moves the cursor forward and returns a copy of the entry there.
func (m *Manager) Redo() (*tree.Document, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.cursor >= len(m.entries)-1 {
		return nil, fmt.Errorf("redo: %w", domain.ErrHistoryExhausted)
	}
	doc, err := decode(m.entries[m.cursor+1].Blob)
	if err != nil {
		return nil, err
	}
	m.cursor++
	return doc, nil
}

// Current returns a copy of the entry at the cursor.
func (m *Manager) Current() (*tree.Document, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.cursor < 0 {
		return nil, fmt.Errorf("current: %w", domain.ErrHistoryExhausted)
	}
	return decode(m.entries[m.cursor].Blob)
}

func (m *Manager) CanUndo() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.cursor > 0
}

func (m *Manager) CanRedo() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.cursor < len(m.entries)-1
}

// Len returns the number of entries, including the redo branch.
func (m *Manager) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.entries)
}

// Cursor returns the index of the current entry, or -1 when empty.
func (m *Manager) Cursor() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.cursor
}

// Reset drops every entry to free memory.
func (m *Manager) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries = nil
	m.cursor = -1
	m.totalBytes = 0
}

// Stats returns current sizes for diagnostics.
func (m *Manager) Stats() (totalBytes int, entries int, cursor int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.totalBytes, len(m.entries), m.cursor
}

func decode(blob []byte) (*tree.Document, error) {
	var s tree.Snapshot
	if err := cbor.Unmarshal(blob, &s); err != nil {
		return nil, fmt.Errorf("decode snapshot: %w", err)
	}
	return tree.FromSnapshot(s)
}

func (m *Manager) truncateLocked() {
	if m.cursor >= len(m.entries)-1 {
		return
	}
	for _, e := range m.entries[m.cursor+1:] {
		m.totalBytes -= len(e.Blob)
	}
	m.entries = m.entries[:m.cursor+1]
}

// enforceCapsLocked prunes the oldest entries until both caps hold.
// The entry at the cursor is never pruned.
func (m *Manager) enforceCapsLocked() {
	over := func() bool {
		if m.cfg.MaxEntries > 0 && len(m.entries) > m.cfg.MaxEntries {
			return true
		}
		return m.cfg.MaxBytes > 0 && m.totalBytes > m.cfg.MaxBytes
	}
	for over() && m.cursor > 0 {
		m.totalBytes -= len(m.entries[0].Blob)
		m.entries = append([]entry(nil), m.entries[1:]...)
		m.cursor--
	}
}
