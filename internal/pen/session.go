/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package pen turns pointer events into edits of a pathmodel.Model.
//
// A Session owns the model, the last pointer position and the current mode.
// In build mode events go through Interpret and the build state machine; in
// edit mode they move existing anchors and handles. Every committed edit is
// handed to a Recorder as one labeled command whose closures restore model
// snapshots and then re-derive the interaction state with DeriveState.
package pen

import (
	"fmt"
	"log/slog"

	applog "penpath/internal/log"
	"penpath/internal/pathmodel"
	"penpath/internal/vector"
)

// History labels.
const (
	LabelSubpathStart    = "Subpath Start"
	LabelAddAnchor       = "Add Anchor Point"
	LabelMoveAnchor      = "Move Anchor Point"
	LabelCloseSubpath    = "Close Subpath"
	LabelFinishSubpath   = "Finish Subpath"
	LabelDeleteAnchor    = "Delete Anchor Point"
	LabelDeleteSubpath   = "Delete Subpath"
	LabelDeletePath      = "Delete Path"
	LabelRetractHandles  = "Retract Handles"
	LabelChangeType      = "Change Anchor Type"
	LabelConvertToRegion = "Convert Path to Selection"
	LabelTransformPath   = "Transform Path"
)

// Recorder receives committed edits. undo.Manager implements it.
type Recorder interface {
	Record(label string, undoFn, redoFn func() error)
}

// sizedRecorder is a Recorder that caps its memory use.
type sizedRecorder interface {
	RecordSized(label string, size int, undoFn, redoFn func() error)
}

// Mode selects which interpreter sits in front of the shared model.
type Mode uint8

const (
	Build Mode = iota
	Edit
)

func (m Mode) String() string {
	if m == Edit {
		return "EDIT"
	}
	return "BUILD"
}

// ParseMode accepts "build" or "edit".
func ParseMode(s string) (Mode, error) {
	switch s {
	case "build", "BUILD":
		return Build, nil
	case "edit", "EDIT":
		return Edit, nil
	}
	return Build, fmt.Errorf("unknown mode %q", s)
}

// Options configures a Session.
type Options struct {
	Proximity Proximity
	// DragThreshold is the pointer travel in pixels below which a press and
	// release count as a click and leave handles retracted.
	DragThreshold float64
	Logger        *slog.Logger
}

// DefaultOptions returns a 10 px closing tolerance and a 2 px drag threshold.
func DefaultOptions() Options {
	return Options{Proximity: DefaultProximity(), DragThreshold: 2}
}

// gesture is an in-progress press..release interaction.
type gesture struct {
	label  string
	before pathmodel.Snapshot
	edit   EditKind
	target Target
	// pressPos is the raw pointer at press; origin is the dragged element's
	// position at press and grab the pointer offset from it.
	pressPos vector.Pt
	origin   vector.Pt
	grab     vector.Pt
	dragged  bool
}

// Session is the explicit tool state: model, build state, last pointer.
type Session struct {
	model   *pathmodel.Model
	history Recorder
	opts    Options
	log     *slog.Logger

	mode        Mode
	state       BuildState
	lastPointer vector.Pt
	pointerDown bool
	pending     *gesture

	// edit mode selection
	selected pathmodel.ID
}

// NewSession creates a session over an empty model.
func NewSession(history Recorder, opts Options) *Session {
	return NewSessionWithModel(pathmodel.New(), history, opts)
}

// NewSessionWithModel creates a session over an existing model, for example
// one imported from a shape.
func NewSessionWithModel(m *pathmodel.Model, history Recorder, opts Options) *Session {
	if opts.Proximity.Tolerance <= 0 {
		opts.Proximity.Tolerance = vector.DefaultTolerance
	}
	if opts.Proximity.View == (vector.Affine2D{}) {
		opts.Proximity.View = vector.Identity
	}
	if opts.DragThreshold < 0 {
		opts.DragThreshold = 0
	}
	l := opts.Logger
	if l == nil {
		l = applog.WithComponent("pen")
	}
	s := &Session{model: m, history: history, opts: opts, log: l}
	s.rederive()
	return s
}

func (s *Session) Model() *pathmodel.Model { return s.model }
func (s *Session) Mode() Mode              { return s.mode }
func (s *Session) State() State            { return s.state.State }
func (s *Session) LastPointer() vector.Pt  { return s.lastPointer }
func (s *Session) PointerDown() bool       { return s.pointerDown }

// Preview returns the rubber band end point while moving to the next anchor.
func (s *Session) Preview() (vector.Pt, bool) {
	return s.state.Preview, s.state.State == MovingToNextAnchor
}

// Selected returns the anchor selected in edit mode, zero if none.
func (s *Session) Selected() pathmodel.ID { return s.selected }

// SetPointer tells the session where the pointer is when that changed
// outside of pointer events, e.g. an undo shortcut while the button is held.
func (s *Session) SetPointer(p vector.Pt, down bool) {
	s.lastPointer = p
	s.pointerDown = down
}

// SetView updates the path-to-screen transform used for tolerances.
func (s *Session) SetView(v vector.Affine2D) { s.opts.Proximity.View = v }

// Handle dispatches one pointer event.
func (s *Session) Handle(ev Event) {
	if !s.checkConsistency() {
		s.log.Debug("event after consistency fallback", "event", ev.String())
	}
	switch ev.Kind {
	case Press:
		s.pointerDown = true
	case Release:
		s.pointerDown = false
	}
	s.lastPointer = ev.Pos
	if s.mode == Edit {
		s.handleEdit(ev)
		return
	}
	s.handleBuild(ev)
}

func (s *Session) Press(x, y float64, mods Modifiers) {
	s.Handle(Event{Kind: Press, Pos: vector.Pt{X: x, Y: y}, Mods: mods})
}
func (s *Session) Drag(x, y float64, mods Modifiers) {
	s.Handle(Event{Kind: Drag, Pos: vector.Pt{X: x, Y: y}, Mods: mods})
}
func (s *Session) Release(x, y float64, mods Modifiers) {
	s.Handle(Event{Kind: Release, Pos: vector.Pt{X: x, Y: y}, Mods: mods})
}
func (s *Session) Move(x, y float64, mods Modifiers) {
	s.Handle(Event{Kind: Move, Pos: vector.Pt{X: x, Y: y}, Mods: mods})
}

// Click is a press and release at the same point.
func (s *Session) Click(x, y float64, mods Modifiers) {
	s.Press(x, y, mods)
	s.Release(x, y, mods)
}

// ActivateMode switches between build and edit mode. A gesture in progress
// is aborted; the history is untouched and the state is re-derived.
func (s *Session) ActivateMode(m Mode) {
	if s.pending != nil {
		s.Abort()
	}
	if m != s.mode {
		s.log.Debug("mode switch", "from", s.mode.String(), "to", m.String())
	}
	s.mode = m
	s.selected = 0
	s.model.ClearActiveFlags()
	s.rederive()
}

// Abort cancels an in-progress drag: the model returns to its state before
// the press and nothing is recorded.
func (s *Session) Abort() {
	if s.pending != nil {
		s.model.Restore(s.pending.before)
		s.log.Debug("gesture aborted", "label", s.pending.label)
		s.pending = nil
	}
	s.pointerDown = false
	s.rederive()
}

// Rederive recomputes the build state from the model and the last pointer.
func (s *Session) Rederive() { s.rederive() }

func (s *Session) rederive() {
	if s.mode == Edit {
		s.state = BuildState{State: Idle}
		if s.selected != 0 && s.model.Anchor(s.selected) == nil {
			s.selected = 0
		}
		return
	}
	s.state = DeriveState(s.model, s.lastPointer, s.pointerDown)
	if s.state.State == DraggingLastControl && s.pending == nil {
		// a redo while the button is held continues as a handle drag
		last := s.model.Anchor(s.state.Dragged)
		s.pending = &gesture{
			label:    LabelMoveAnchor,
			before:   s.model.Snapshot(),
			target:   Target{Anchor: last.ID, Handle: true, Side: pathmodel.Out},
			pressPos: s.lastPointer,
			origin:   last.Pos,
			dragged:  true,
		}
	}
}

// checkConsistency falls back to Idle when the model was changed behind the
// session's back in a way that invalidates the pending gesture.
func (s *Session) checkConsistency() bool {
	err := s.model.CheckConsistency()
	if err == nil && s.pending != nil && s.pending.target.Valid() && s.model.Anchor(s.pending.target.Anchor) == nil {
		err = fmt.Errorf("anchor #%d of the pending gesture is gone", s.pending.target.Anchor)
	}
	if err == nil {
		return true
	}
	s.log.Warn("inconsistent path model, falling back to idle", "err", err)
	s.pending = nil
	s.state = BuildState{State: Idle}
	return false
}

// commit hands the change since before to the history.
func (s *Session) commit(label string, before pathmodel.Snapshot) bool {
	after := s.model.Snapshot()
	if before.Equal(after) {
		return false
	}
	applog.WithGesture(s.log, label).Debug("commit")
	undoFn := func() error { s.replay(before); return nil }
	redoFn := func() error { s.replay(after); return nil }
	switch h := s.history.(type) {
	case nil:
	case sizedRecorder:
		h.RecordSized(label, before.Size()+after.Size(), undoFn, redoFn)
	default:
		h.Record(label, undoFn, redoFn)
	}
	return true
}

func (s *Session) replay(snap pathmodel.Snapshot) {
	s.pending = nil
	s.model.Restore(snap)
	s.rederive()
}

func (s *Session) begin(label string) *gesture {
	s.pending = &gesture{label: label, before: s.model.Snapshot(), pressPos: s.lastPointer}
	return s.pending
}

// finishGesture commits the pending gesture, if any.
func (s *Session) finishGesture() {
	g := s.pending
	s.pending = nil
	if g != nil {
		s.commit(g.label, g.before)
	}
}

// passedThreshold reports whether the pointer moved far enough from the
// press to count as a drag. Once passed it stays passed.
func (s *Session) passedThreshold(g *gesture, p vector.Pt) bool {
	if g.dragged {
		return true
	}
	a := s.opts.Proximity.View.Apply(g.pressPos)
	b := s.opts.Proximity.View.Apply(p)
	if a.Dist(b) > s.opts.DragThreshold {
		g.dragged = true
	}
	return g.dragged
}
