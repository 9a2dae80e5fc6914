/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package pen

import (
	"errors"

	"penpath/internal/pathmodel"
	"penpath/internal/vector"
)

// situation gathers what Interpret needs to know about the pointer.
func (s *Session) situation(ev Event) Situation {
	sp := s.model.ActiveSubpath()
	sit := Situation{
		State:     s.state.State,
		CanAppend: sp != nil && sp.AcceptsAnchors(),
	}
	if wantsPrevious(ev.Mods) {
		sit.Hit = s.opts.Proximity.HitTest(s.model, ev.Pos, ev.Mods.Has(Break))
	}
	sit.Closing = s.opts.Proximity.FindClosingTarget(sp, ev.Pos) != nil
	return sit
}

func (s *Session) handleBuild(ev Event) {
	act := Interpret(ev, s.situation(ev))
	from := s.state.State
	switch act.Kind {
	case ActNone:
	case ActStartSubpath:
		g := s.begin(LabelSubpathStart)
		a := s.model.StartSubpath(ev.Pos)
		s.startLastControl(g, a, act.Cusp)
	case ActAppendAnchor:
		p := ev.Pos
		last := s.model.ActiveSubpath().Last()
		if act.Constrain && last != nil {
			p = vector.Constrain45(last.Pos, p)
		}
		g := s.begin(LabelAddAnchor)
		a, err := s.model.AppendAnchor(p)
		if err != nil {
			s.reject(ev, err)
			return
		}
		s.startLastControl(g, a, act.Cusp)
	case ActCloseSubpath:
		before := s.model.Snapshot()
		if err := s.model.CloseSubpath(); err != nil {
			s.reject(ev, err)
			return
		}
		s.model.ClearActiveFlags()
		s.commit(LabelCloseSubpath, before)
		s.state = BuildState{State: Idle}
	case ActFinishSubpath:
		before := s.model.Snapshot()
		if err := s.model.FinishSubpath(); err != nil {
			s.reject(ev, err)
			return
		}
		s.model.ClearActiveFlags()
		s.commit(LabelFinishSubpath, before)
		s.state = BuildState{State: Idle}
	case ActDragLastControl:
		s.dragLastControl(ev, act)
	case ActCommitLast:
		s.dragLastControl(ev, act)
		s.finishGesture()
		s.state = DeriveState(s.model, ev.Pos, false)
	case ActPreviewNext:
		s.model.ClearActiveFlags()
		p := ev.Pos
		sp := s.model.ActiveSubpath()
		if last := sp.Last(); act.Constrain && last != nil {
			p = vector.Constrain45(last.Pos, p)
		}
		if first := s.opts.Proximity.FindClosingTarget(sp, ev.Pos); first != nil && ev.Mods == None {
			first.Active = true
		}
		s.state = BuildState{State: MovingToNextAnchor, Preview: p}
	case ActHoverPrevious:
		s.model.ClearActiveFlags()
		markActive(s.model, act.Target)
		s.state = BuildState{State: MoveEditingPrevious, Preview: ev.Pos}
	case ActHoverNothing:
		s.model.ClearActiveFlags()
		s.state = DeriveState(s.model, ev.Pos, false)
	case ActBeginEditPrevious:
		s.beginEdit(ev, act)
		s.state = BuildState{State: DragEditingPrevious}
	case ActDragEditPrevious:
		s.dragEdit(ev, act.Constrain)
	case ActCommitEdit:
		s.dragEdit(ev, act.Constrain)
		s.finishGesture()
		s.model.ClearActiveFlags()
		s.state = DeriveState(s.model, ev.Pos, false)
	}
	if s.state.State != from {
		s.log.Debug("transition", "event", ev.String(), "action", act.String(),
			"from", from.String(), "to", s.state.State.String())
	}
}

// reject drops a gesture whose model precondition failed. Precondition
// errors are expected outcomes of user input and leave the state alone.
func (s *Session) reject(ev Event, err error) {
	s.pending = nil
	if !errors.Is(err, pathmodel.ErrSubpathFinished) &&
		!errors.Is(err, pathmodel.ErrNoActiveSubpath) &&
		!errors.Is(err, pathmodel.ErrTooFewAnchors) &&
		!errors.Is(err, pathmodel.ErrAlreadyClosed) &&
		!errors.Is(err, pathmodel.ErrEmptySubpath) {
		s.log.Warn("build action failed", "event", ev.String(), "err", err)
		return
	}
	s.log.Debug("build action rejected", "event", ev.String(), "err", err)
}

func (s *Session) startLastControl(g *gesture, a *pathmodel.AnchorPoint, cusp bool) {
	if cusp {
		a.Type = pathmodel.Cusp
	}
	g.target = Target{Anchor: a.ID, Handle: true, Side: pathmodel.Out, Retracted: true}
	g.origin = a.Pos
	s.model.ClearActiveFlags()
	s.state = BuildState{State: DraggingLastControl, Dragged: a.ID}
}

// dragLastControl pulls ctrlOut of the newest anchor. Break keeps ctrlIn
// where it is; without it the pair is symmetric.
func (s *Session) dragLastControl(ev Event, act Action) {
	g := s.pending
	if g == nil || !s.passedThreshold(g, ev.Pos) {
		return
	}
	a := s.model.Anchor(g.target.Anchor)
	if a == nil {
		return
	}
	p := ev.Pos
	if act.Constrain {
		p = vector.Constrain45(a.Pos, p)
	}
	if act.Cusp {
		a.Type = pathmodel.Cusp
	} else if a.Type == pathmodel.Cusp {
		_ = s.model.SetAnchorType(a.ID, pathmodel.Symmetric)
	}
	_ = s.model.DragOutHandle(a.ID, p)
}

func markActive(m *pathmodel.Model, t Target) {
	a := m.Anchor(t.Anchor)
	if a == nil {
		return
	}
	if t.Handle {
		a.Handle(t.Side).Active = true
		return
	}
	a.Active = true
}

// beginEdit starts editing an existing anchor or handle. Reclassification
// happens at press time so a click without drag still breaks or drags out.
func (s *Session) beginEdit(ev Event, act Action) {
	g := s.begin(LabelMoveAnchor)
	g.edit = act.Edit
	g.target = act.Target
	a := s.model.Anchor(act.Target.Anchor)
	s.model.ClearActiveFlags()
	markActive(s.model, act.Target)
	switch act.Edit {
	case EditMoveAnchor:
		g.origin = a.Pos
	case EditMoveHandle:
		if a.Type == pathmodel.Symmetric {
			a.Type = pathmodel.Smooth
		}
		g.origin = a.Handle(act.Target.Side).Pos
	case EditBreakHandle:
		a.Type = pathmodel.Cusp
		g.origin = a.Handle(act.Target.Side).Pos
	case EditDragHandle:
		g.origin = a.Handle(act.Target.Side).Pos
	case EditDragOut:
		_ = s.model.RetractHandles(a.ID)
		a.Type = pathmodel.Symmetric
		g.target = Target{Anchor: a.ID, Handle: true, Side: pathmodel.Out, Retracted: true}
		g.origin = a.Pos
	}
	g.grab = g.origin.Sub(ev.Pos)
	if act.Edit == EditDragOut {
		// the handle tip follows the pointer itself
		g.grab = vector.Pt{}
	}
}

// dragEdit moves the element picked by beginEdit.
func (s *Session) dragEdit(ev Event, constrain bool) {
	g := s.pending
	if g == nil || !s.passedThreshold(g, ev.Pos) {
		return
	}
	a := s.model.Anchor(g.target.Anchor)
	if a == nil {
		return
	}
	p := ev.Pos.Add(g.grab)
	switch g.edit {
	case EditMoveAnchor:
		if constrain {
			p = vector.Constrain45(g.origin, p)
		}
		_ = s.model.MoveAnchor(a.ID, p)
	default:
		if constrain {
			p = vector.Constrain45(a.Pos, p)
		}
		_ = s.model.MoveHandle(a.ID, g.target.Side, p)
	}
}
