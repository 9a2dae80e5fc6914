/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package pathmodel

import (
	"math"

	"penpath/internal/vector"
)

// Thresholds used when guessing an anchor type from handle positions.
const (
	symmetricThreshold = 2.0
	collinearThreshold = 0.1
)

// couple applies the type rule after handle s was moved: the opposite
// handle is recomputed for Symmetric and Smooth, left alone for Cusp.
func couple(a *AnchorPoint, s Side) {
	moved := a.Handle(s).Pos
	other := a.Handle(s.Opposite())
	switch a.Type {
	case Symmetric:
		other.Pos = moved.Mirror(a.Pos)
	case Smooth:
		dir := a.Pos.Sub(moved)
		l := dir.Len()
		if l < vector.Epsilon {
			return
		}
		keep := other.Pos.Dist(a.Pos)
		other.Pos = a.Pos.Add(dir.Scale(keep / l))
	case Cusp:
	}
}

// MoveHandle puts handle s of anchor id at p, keeping the type invariant.
func (m *Model) MoveHandle(id ID, s Side, p vector.Pt) error {
	a := m.Anchor(id)
	if a == nil {
		return ErrNotFound
	}
	a.Handle(s).Pos = p
	couple(a, s)
	return nil
}

// DragOutHandle sets ctrlOut to p; a Symmetric anchor mirrors ctrlIn.
func (m *Model) DragOutHandle(id ID, p vector.Pt) error {
	return m.MoveHandle(id, Out, p)
}

// MoveAnchor moves an anchor to p; both handles keep their offsets.
func (m *Model) MoveAnchor(id ID, p vector.Pt) error {
	a := m.Anchor(id)
	if a == nil {
		return ErrNotFound
	}
	d := p.Sub(a.Pos)
	a.Pos = p
	a.CtrlIn.Pos = a.CtrlIn.Pos.Add(d)
	a.CtrlOut.Pos = a.CtrlOut.Pos.Add(d)
	return nil
}

// SetAnchorType reclassifies an anchor. Switching to Symmetric mirrors
// ctrlIn from ctrlOut (or ctrlOut from ctrlIn when ctrlOut is retracted);
// switching to Smooth realigns ctrlIn opposite ctrlOut keeping its length.
// Cusp never moves anything.
func (m *Model) SetAnchorType(id ID, t AnchorType) error {
	a := m.Anchor(id)
	if a == nil {
		return ErrNotFound
	}
	a.Type = t
	if t == Cusp || a.BothRetracted() {
		return nil
	}
	src := Out
	if a.IsRetracted(Out) {
		src = In
	}
	couple(a, src)
	return nil
}

// RetractHandles pulls both handles back onto the anchor.
func (m *Model) RetractHandles(id ID) error {
	a := m.Anchor(id)
	if a == nil {
		return ErrNotFound
	}
	a.CtrlIn.Pos = a.Pos
	a.CtrlOut.Pos = a.Pos
	return nil
}

// HeuristicType guesses the type that matches the current handle positions.
func HeuristicType(a *AnchorPoint) AnchorType {
	inR := a.CtrlIn.Pos.Eq(a.Pos, 1.0)
	outR := a.CtrlOut.Pos.Eq(a.Pos, 1.0)
	switch {
	case inR && outR:
		// so both can be dragged out together
		return Symmetric
	case inR || outR:
		return Cusp
	}
	dOut := a.CtrlOut.Pos.Sub(a.Pos)
	dIn := a.CtrlIn.Pos.Sub(a.Pos)
	if math.Abs(dOut.X+dIn.X) < symmetricThreshold && math.Abs(dOut.Y+dIn.Y) < symmetricThreshold {
		return Symmetric
	}
	cross := dOut.Y*dIn.X - dOut.X*dIn.Y
	dot := dOut.X*dIn.X + dOut.Y*dIn.Y
	if math.Abs(cross) < collinearThreshold && dot < 0 {
		return Smooth
	}
	return Cusp
}

// SetHeuristicTypes classifies every anchor from its handle positions.
// Used after importing geometry that carries no type information. Anchors
// classified Symmetric within the threshold are snapped to exact mirrors.
func (m *Model) SetHeuristicTypes() {
	for _, a := range m.Anchors() {
		a.Type = HeuristicType(a)
		if a.Type == Symmetric && !a.BothRetracted() {
			couple(a, Out)
		}
	}
}
