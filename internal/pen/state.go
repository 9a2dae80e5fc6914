/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package pen

import (
	"fmt"

	"penpath/internal/pathmodel"
	"penpath/internal/vector"
)

// State is the build-mode interaction state.
type State uint8

const (
	// Idle: no path, or the active subpath is finished or closed.
	Idle State = iota
	// DraggingLastControl: pointer down, dragging ctrlOut of the newest anchor.
	DraggingLastControl
	// MovingToNextAnchor: pointer up, previewing the next anchor.
	MovingToNextAnchor
	// MoveEditingPrevious: pointer up with a modifier over an existing element.
	MoveEditingPrevious
	// DragEditingPrevious: pointer down, dragging an existing anchor or handle.
	DragEditingPrevious
)

func (s State) String() string {
	switch s {
	case Idle:
		return "IDLE"
	case DraggingLastControl:
		return "DRAGGING_LAST_CONTROL"
	case MovingToNextAnchor:
		return "MOVING_TO_NEXT_ANCHOR"
	case MoveEditingPrevious:
		return "MOVE_EDITING_PREVIOUS"
	case DragEditingPrevious:
		return "DRAG_EDITING_PREVIOUS"
	}
	return fmt.Sprintf("State(%d)", uint8(s))
}

// PointerDown reports whether the state implies a pressed button.
func (s State) PointerDown() bool {
	return s == DraggingLastControl || s == DragEditingPrevious
}

// BuildState is the interaction state recomputed from the model.
type BuildState struct {
	State State
	// Preview is where the next anchor would land (MovingToNextAnchor).
	Preview vector.Pt
	// Dragged is the anchor whose ctrlOut follows the pointer (DraggingLastControl).
	Dragged pathmodel.ID
}

// DeriveState computes the build state from the model contents and the last
// known pointer. It never looks at a previously stored state, so it is what
// runs after undo, redo and mode switches.
func DeriveState(m *pathmodel.Model, lastPointer vector.Pt, pointerDown bool) BuildState {
	sp := m.ActiveSubpath()
	if sp == nil || !sp.AcceptsAnchors() || sp.Last() == nil {
		return BuildState{State: Idle}
	}
	if pointerDown {
		return BuildState{State: DraggingLastControl, Dragged: sp.Last().ID}
	}
	return BuildState{State: MovingToNextAnchor, Preview: lastPointer}
}
