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
	"errors"
	"fmt"
	"sync"
	"time"
)

// ErrNothingToUndo and ErrNothingToRedo are returned when a stack is empty.
var (
	ErrNothingToUndo = errors.New("undo: nothing to undo")
	ErrNothingToRedo = errors.New("undo: nothing to redo")
)

// Command is one labeled, reversible edit. Undo and Redo replay the inverse
// and forward mutation; both must be safe to call repeatedly in alternation.
// Size is an estimate of the memory retained by the closures.
type Command struct {
	Label string
	Undo  func() error
	Redo  func() error
	Size  int
	TS    time.Time
}

// EventKind tells listeners what happened to the history.
type EventKind uint8

const (
	Recorded EventKind = iota
	Undone
	Redone
	Cleared
)

func (k EventKind) String() string {
	switch k {
	case Recorded:
		return "record"
	case Undone:
		return "undo"
	case Redone:
		return "redo"
	case Cleared:
		return "clear"
	}
	return "unknown"
}

// Event is delivered to listeners after the history changed.
type Event struct {
	Kind  EventKind
	Label string
	TS    time.Time
}

// Config controls memory and depth caps.
type Config struct {
	// MaxDepth limits the number of undoable commands (0 means unlimited).
	MaxDepth int
	// MaxBytes is a soft cap on the summed Command.Size; oldest entries are pruned first.
	MaxBytes int
}

// Manager is a linear undo/redo history of labeled commands.
// It is safe for concurrent use; command closures run without the lock held.
type Manager struct {
	cfg Config
	mu  sync.Mutex

	undo []Command
	redo []Command
	// accounting
	totalBytes int

	listeners []func(Event)
	now       func() time.Time
}

func NewManager(cfg Config) *Manager {
	if cfg.MaxBytes <= 0 {
		cfg.MaxBytes = 16 * 1024 * 1024 // 16 MiB
	}
	return &Manager{cfg: cfg, now: time.Now}
}

// OnChange registers a listener called after every record, undo, redo or clear.
func (m *Manager) OnChange(fn func(Event)) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.listeners = append(m.listeners, fn)
}

// Record stores an already applied edit. Any new record invalidates redo.
func (m *Manager) Record(label string, undoFn, redoFn func() error) {
	m.Push(Command{Label: label, Undo: undoFn, Redo: redoFn})
}

// RecordSized is Record with a size estimate counted against MaxBytes.
func (m *Manager) RecordSized(label string, size int, undoFn, redoFn func() error) {
	m.Push(Command{Label: label, Undo: undoFn, Redo: redoFn, Size: size})
}

// Push records a command with explicit size accounting.
func (m *Manager) Push(c Command) {
	if c.TS.IsZero() {
		c.TS = m.now()
	}
	m.mu.Lock()
	m.undo = append(m.undo, c)
	m.totalBytes += c.Size
	for _, r := range m.redo {
		m.totalBytes -= r.Size
	}
	m.redo = nil
	m.enforceCapsLocked()
	m.mu.Unlock()
	m.notify(Event{Kind: Recorded, Label: c.Label, TS: c.TS})
}

// Undo reverts the most recent command and returns its label. If the
// command's closure fails the stacks are left unchanged.
func (m *Manager) Undo() (string, error) {
	m.mu.Lock()
	if len(m.undo) == 0 {
		m.mu.Unlock()
		return "", ErrNothingToUndo
	}
	c := m.undo[len(m.undo)-1]
	m.undo = m.undo[:len(m.undo)-1]
	m.mu.Unlock()

	if err := c.Undo(); err != nil {
		m.mu.Lock()
		m.undo = append(m.undo, c)
		m.mu.Unlock()
		return c.Label, fmt.Errorf("undo %q: %w", c.Label, err)
	}
	m.mu.Lock()
	m.redo = append(m.redo, c)
	m.mu.Unlock()
	m.notify(Event{Kind: Undone, Label: c.Label, TS: m.now()})
	return c.Label, nil
}

// Redo replays the most recently undone command and returns its label.
func (m *Manager) Redo() (string, error) {
	m.mu.Lock()
	if len(m.redo) == 0 {
		m.mu.Unlock()
		return "", ErrNothingToRedo
	}
	c := m.redo[len(m.redo)-1]
	m.redo = m.redo[:len(m.redo)-1]
	m.mu.Unlock()

	if err := c.Redo(); err != nil {
		m.mu.Lock()
		m.redo = append(m.redo, c)
		m.mu.Unlock()
		return c.Label, fmt.Errorf("redo %q: %w", c.Label, err)
	}
	m.mu.Lock()
	m.undo = append(m.undo, c)
	m.enforceCapsLocked()
	m.mu.Unlock()
	m.notify(Event{Kind: Redone, Label: c.Label, TS: m.now()})
	return c.Label, nil
}

func (m *Manager) CanUndo() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.undo) > 0
}

func (m *Manager) CanRedo() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.redo) > 0
}

// UndoLabel returns the label Undo would revert, or "".
func (m *Manager) UndoLabel() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.undo) == 0 {
		return ""
	}
	return m.undo[len(m.undo)-1].Label
}

// RedoLabel returns the label Redo would replay, or "".
func (m *Manager) RedoLabel() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.redo) == 0 {
		return ""
	}
	return m.redo[len(m.redo)-1].Label
}

// Labels lists the undoable commands, oldest first.
func (m *Manager) Labels() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]string, len(m.undo))
	for i, c := range m.undo {
		out[i] = c.Label
	}
	return out
}

// Clear drops both stacks.
func (m *Manager) Clear() {
	m.mu.Lock()
	m.undo, m.redo = nil, nil
	m.totalBytes = 0
	m.mu.Unlock()
	m.notify(Event{Kind: Cleared, TS: m.now()})
}

// Stats returns current sizes for diagnostics.
func (m *Manager) Stats() (totalBytes int, undoDepth int, redoDepth int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.totalBytes, len(m.undo), len(m.redo)
}

func (m *Manager) notify(ev Event) {
	m.mu.Lock()
	ls := append([]func(Event){}, m.listeners...)
	m.mu.Unlock()
	for _, fn := range ls {
		fn(ev)
	}
}

func (m *Manager) enforceCapsLocked() {
	if m.cfg.MaxDepth > 0 && len(m.undo) > m.cfg.MaxDepth {
		// drop the oldest extras
		toDrop := len(m.undo) - m.cfg.MaxDepth
		for i := 0; i < toDrop; i++ {
			m.totalBytes -= m.undo[i].Size
		}
		m.undo = append([]Command{}, m.undo[toDrop:]...)
	}
	for m.cfg.MaxBytes > 0 && m.totalBytes > m.cfg.MaxBytes && len(m.undo) > 1 {
		m.totalBytes -= m.undo[0].Size
		m.undo = m.undo[1:]
	}
}
