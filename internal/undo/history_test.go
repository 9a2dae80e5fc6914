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
	"reflect"
	"testing"
)

type counter struct{ v int }

func (c *counter) record(m *Manager, label string) {
	c.v++
	m.Record(label, func() error { c.v--; return nil }, func() error { c.v++; return nil })
}

func TestUndoRedoBasic(t *testing.T) {
	m := NewManager(Config{MaxDepth: 10})
	c := &counter{}
	c.record(m, "Subpath Start")
	c.record(m, "Add Anchor Point")

	label, err := m.Undo()
	if err != nil || label != "Add Anchor Point" {
		t.Fatalf("undo expected 'Add Anchor Point', got %q err=%v", label, err)
	}
	if c.v != 1 {
		t.Fatalf("expected value 1 after undo, got %d", c.v)
	}
	if m.RedoLabel() != "Add Anchor Point" {
		t.Fatalf("unexpected redo label %q", m.RedoLabel())
	}
	label, err = m.Redo()
	if err != nil || label != "Add Anchor Point" {
		t.Fatalf("redo expected 'Add Anchor Point', got %q err=%v", label, err)
	}
	if c.v != 2 {
		t.Fatalf("expected value 2 after redo, got %d", c.v)
	}
}

func TestRecordClearsRedo(t *testing.T) {
	m := NewManager(Config{})
	c := &counter{}
	c.record(m, "a")
	c.record(m, "b")
	if _, err := m.Undo(); err != nil {
		t.Fatalf("undo: %v", err)
	}
	c.record(m, "c")
	if m.CanRedo() {
		t.Fatalf("expected redo to be invalidated by a new record")
	}
	if got := m.Labels(); !reflect.DeepEqual(got, []string{"a", "c"}) {
		t.Fatalf("unexpected labels %v", got)
	}
}

func TestEmptyStacks(t *testing.T) {
	m := NewManager(Config{})
	if _, err := m.Undo(); !errors.Is(err, ErrNothingToUndo) {
		t.Fatalf("expected ErrNothingToUndo, got %v", err)
	}
	if _, err := m.Redo(); !errors.Is(err, ErrNothingToRedo) {
		t.Fatalf("expected ErrNothingToRedo, got %v", err)
	}
	if m.UndoLabel() != "" || m.RedoLabel() != "" {
		t.Fatalf("expected empty labels")
	}
}

func TestFailingUndoKeepsStacks(t *testing.T) {
	m := NewManager(Config{})
	boom := errors.New("boom")
	m.Record("x", func() error { return boom }, func() error { return nil })
	if _, err := m.Undo(); !errors.Is(err, boom) {
		t.Fatalf("expected wrapped boom, got %v", err)
	}
	if !m.CanUndo() || m.CanRedo() {
		t.Fatalf("failed undo must leave the command on the undo stack")
	}
}

func TestDepthCap(t *testing.T) {
	m := NewManager(Config{MaxDepth: 2})
	c := &counter{}
	c.record(m, "a")
	c.record(m, "b")
	c.record(m, "c")
	if got := m.Labels(); !reflect.DeepEqual(got, []string{"b", "c"}) {
		t.Fatalf("expected oldest command pruned, got %v", got)
	}
}

func TestByteCapAndStats(t *testing.T) {
	m := NewManager(Config{MaxBytes: 8})
	noop := func() error { return nil }
	m.Push(Command{Label: "a", Undo: noop, Redo: noop, Size: 4})
	m.Push(Command{Label: "b", Undo: noop, Redo: noop, Size: 4})
	m.Push(Command{Label: "c", Undo: noop, Redo: noop, Size: 4})
	tb, depth, _ := m.Stats()
	if tb != 8 || depth != 2 {
		t.Fatalf("expected 8 bytes in 2 commands, got tb=%d depth=%d", tb, depth)
	}
	m.Clear()
	if tb, depth, redo := m.Stats(); tb != 0 || depth != 0 || redo != 0 {
		t.Fatalf("expected cleared stats to be zero, got tb=%d depth=%d redo=%d", tb, depth, redo)
	}
}

func TestListenersSeeEveryChange(t *testing.T) {
	m := NewManager(Config{})
	var kinds []string
	m.OnChange(func(ev Event) { kinds = append(kinds, ev.Kind.String()+":"+ev.Label) })
	c := &counter{}
	c.record(m, "a")
	_, _ = m.Undo()
	_, _ = m.Redo()
	want := []string{"record:a", "undo:a", "redo:a"}
	if !reflect.DeepEqual(kinds, want) {
		t.Fatalf("expected %v, got %v", want, kinds)
	}
}

func TestRecordSizedCountsAgainstByteCap(t *testing.T) {
	m := NewManager(Config{MaxBytes: 10})
	noop := func() error { return nil }
	m.RecordSized("a", 6, noop, noop)
	m.RecordSized("b", 6, noop, noop)
	tb, depth, _ := m.Stats()
	if tb != 6 || depth != 1 || m.UndoLabel() != "b" {
		t.Fatalf("expected only b retained, got tb=%d depth=%d label=%q", tb, depth, m.UndoLabel())
	}
}
