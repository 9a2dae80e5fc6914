/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package pen

import (
	"penpath/internal/pathmodel"
	"penpath/internal/vector"
)

// Proximity answers "is the pointer on top of this point" in screen space.
// View maps path coordinates to screen pixels; Tolerance is in pixels and
// does not change with zoom.
type Proximity struct {
	Tolerance float64
	View      vector.Affine2D
}

// DefaultProximity uses the default pixel tolerance and an identity view.
func DefaultProximity() Proximity {
	return Proximity{Tolerance: vector.DefaultTolerance, View: vector.Identity}
}

// IsNear compares two path-space points in screen space.
func (px Proximity) IsNear(candidate, target vector.Pt) bool {
	return vector.IsNear(px.View.Apply(candidate), px.View.Apply(target), px.Tolerance)
}

// FindClosingTarget returns the first anchor of sp when the pointer is over it
// and pressing there would close the subpath, otherwise nil.
func (px Proximity) FindClosingTarget(sp *pathmodel.SubPath, pointer vector.Pt) *pathmodel.AnchorPoint {
	if sp == nil || sp.Len() < 2 || !sp.AcceptsAnchors() {
		return nil
	}
	first := sp.First()
	if px.IsNear(pointer, first.Pos) {
		return first
	}
	return nil
}

// HitTest finds the anchor or handle under the pointer. With handlesFirst
// every handle is tested before any anchor, so a retracted handle shadows
// its anchor; otherwise anchors win.
func (px Proximity) HitTest(m *pathmodel.Model, pointer vector.Pt, handlesFirst bool) Target {
	anchors := m.Anchors()
	// later anchors are painted on top, so they are tested first
	testAnchors := func() Target {
		for i := len(anchors) - 1; i >= 0; i-- {
			if a := anchors[i]; px.IsNear(pointer, a.Pos) {
				return Target{Anchor: a.ID}
			}
		}
		return Target{}
	}
	testHandles := func() Target {
		for i := len(anchors) - 1; i >= 0; i-- {
			a := anchors[i]
			for _, side := range []pathmodel.Side{pathmodel.Out, pathmodel.In} {
				if px.IsNear(pointer, a.Handle(side).Pos) {
					return Target{Anchor: a.ID, Handle: true, Side: side, Retracted: a.IsRetracted(side)}
				}
			}
		}
		return Target{}
	}
	if handlesFirst {
		if t := testHandles(); t.Valid() {
			return t
		}
		return testAnchors()
	}
	if t := testAnchors(); t.Valid() {
		return t
	}
	return testHandles()
}
