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
)

// Target is a model element under the pointer. The zero value means nothing.
type Target struct {
	Anchor pathmodel.ID
	// Handle is set when a control point was hit rather than the anchor.
	Handle bool
	Side   pathmodel.Side
	// Retracted is set when the hit handle coincides with its anchor.
	Retracted bool
}

func (t Target) Valid() bool { return t.Anchor != 0 }

func (t Target) String() string {
	switch {
	case !t.Valid():
		return "nothing"
	case t.Handle:
		return fmt.Sprintf("anchor#%d.%s", t.Anchor, t.Side)
	}
	return fmt.Sprintf("anchor#%d", t.Anchor)
}

// ActionKind is the intended build action.
type ActionKind uint8

const (
	ActNone ActionKind = iota
	ActStartSubpath
	ActAppendAnchor
	ActCloseSubpath
	ActFinishSubpath
	ActDragLastControl
	ActCommitLast
	ActPreviewNext
	ActHoverPrevious
	ActBeginEditPrevious
	ActDragEditPrevious
	ActCommitEdit
	ActHoverNothing
)

var actionNames = [...]string{
	ActNone:              "none",
	ActStartSubpath:      "start-subpath",
	ActAppendAnchor:      "append-anchor",
	ActCloseSubpath:      "close-subpath",
	ActFinishSubpath:     "finish-subpath",
	ActDragLastControl:   "drag-last-control",
	ActCommitLast:        "commit-last",
	ActPreviewNext:       "preview-next",
	ActHoverPrevious:     "hover-previous",
	ActBeginEditPrevious: "begin-edit-previous",
	ActDragEditPrevious:  "drag-edit-previous",
	ActCommitEdit:        "commit-edit",
	ActHoverNothing:      "hover-nothing",
}

func (k ActionKind) String() string {
	if int(k) < len(actionNames) {
		return actionNames[k]
	}
	return fmt.Sprintf("ActionKind(%d)", uint8(k))
}

// EditKind selects how an existing element is edited.
type EditKind uint8

const (
	// EditMoveAnchor drags the anchor; both handles keep their offsets.
	EditMoveAnchor EditKind = iota
	// EditMoveHandle drags one handle; a Symmetric anchor becomes Smooth.
	EditMoveHandle
	// EditBreakHandle drags one handle and makes the anchor a Cusp.
	EditBreakHandle
	// EditDragOut retracts both handles, makes the anchor Symmetric and
	// drags ctrlOut out of it.
	EditDragOut
	// EditDragHandle drags one handle honoring the anchor's current type.
	EditDragHandle
)

func (k EditKind) String() string {
	switch k {
	case EditMoveAnchor:
		return "move-anchor"
	case EditMoveHandle:
		return "move-handle"
	case EditBreakHandle:
		return "break-handle"
	case EditDragOut:
		return "drag-out"
	case EditDragHandle:
		return "drag-handle"
	}
	return fmt.Sprintf("EditKind(%d)", uint8(k))
}

// Situation is what the interpreter knows about the model at the pointer.
type Situation struct {
	State State
	// Hit is the element under the pointer honoring hit priority.
	Hit Target
	// Closing is set when the pointer is over the closing target.
	Closing bool
	// CanAppend is set when the active subpath accepts anchors.
	CanAppend bool
}

// Action is the interpreted intent of one pointer event.
type Action struct {
	Kind   ActionKind
	Edit   EditKind
	Target Target
	// Constrain requests 45 degree snapping of the resulting position.
	Constrain bool
	// Cusp requests an independent handle pair for a new or dragged anchor.
	Cusp bool
}

func (a Action) String() string {
	s := a.Kind.String()
	if a.Kind == ActBeginEditPrevious {
		s += "/" + a.Edit.String()
	}
	if a.Target.Valid() {
		s += " " + a.Target.String()
	}
	if a.Constrain {
		s += " constrained"
	}
	if a.Cusp {
		s += " cusp"
	}
	return s
}

// editKindFor maps the held modifier and the hit element to an edit. Break
// wins over EditPrevious when both are held.
func editKindFor(mods Modifiers, hit Target) EditKind {
	if mods.Has(Break) {
		if hit.Handle && !hit.Retracted {
			return EditBreakHandle
		}
		return EditDragOut
	}
	if hit.Handle {
		return EditMoveHandle
	}
	return EditMoveAnchor
}

func wantsPrevious(mods Modifiers) bool { return mods.Has(EditPrevious) || mods.Has(Break) }

// Interpret maps a pointer event to a build action. It has no side effects.
func Interpret(ev Event, s Situation) Action {
	constrain := ev.Mods.Has(Constrain)
	switch ev.Kind {
	case Press:
		if s.State.PointerDown() {
			return Action{}
		}
		if wantsPrevious(ev.Mods) && s.Hit.Valid() {
			return Action{Kind: ActBeginEditPrevious, Edit: editKindFor(ev.Mods, s.Hit), Target: s.Hit, Constrain: constrain}
		}
		if ev.Mods.Has(Finish) || ev.Mods.Has(EditPrevious) {
			if s.CanAppend {
				return Action{Kind: ActFinishSubpath}
			}
			return Action{}
		}
		if s.CanAppend {
			if s.Closing && ev.Mods == None {
				return Action{Kind: ActCloseSubpath}
			}
			return Action{Kind: ActAppendAnchor, Constrain: constrain, Cusp: ev.Mods.Has(Break)}
		}
		return Action{Kind: ActStartSubpath, Cusp: ev.Mods.Has(Break)}

	case Drag:
		switch s.State {
		case DraggingLastControl:
			return Action{Kind: ActDragLastControl, Constrain: constrain, Cusp: ev.Mods.Has(Break)}
		case DragEditingPrevious:
			return Action{Kind: ActDragEditPrevious, Constrain: constrain}
		}
		return Action{}

	case Release:
		switch s.State {
		case DraggingLastControl:
			return Action{Kind: ActCommitLast, Constrain: constrain, Cusp: ev.Mods.Has(Break)}
		case DragEditingPrevious:
			return Action{Kind: ActCommitEdit, Constrain: constrain}
		}
		return Action{}

	case Move:
		if s.State.PointerDown() {
			return Action{}
		}
		if wantsPrevious(ev.Mods) && s.Hit.Valid() {
			return Action{Kind: ActHoverPrevious, Target: s.Hit}
		}
		if s.CanAppend {
			return Action{Kind: ActPreviewNext, Constrain: constrain}
		}
		return Action{Kind: ActHoverNothing}
	}
	return Action{}
}
