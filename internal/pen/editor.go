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
	"penpath/internal/region"
	"penpath/internal/vector"
)

// handleEdit runs edit mode: anchors and handles are dragged in place,
// nothing is ever appended. EditPrevious or Break on a handle breaks it.
func (s *Session) handleEdit(ev Event) {
	switch ev.Kind {
	case Press:
		hit := s.opts.Proximity.HitTest(s.model, ev.Pos, ev.Mods.Has(Break))
		s.model.ClearActiveFlags()
		if !hit.Valid() {
			s.selected = 0
			return
		}
		s.selected = hit.Anchor
		kind := EditMoveAnchor
		if hit.Handle {
			kind = EditDragHandle
			if wantsPrevious(ev.Mods) && !hit.Retracted {
				kind = EditBreakHandle
			}
		} else if ev.Mods.Has(Break) {
			kind = EditDragOut
		}
		s.beginEdit(ev, Action{Kind: ActBeginEditPrevious, Edit: kind, Target: hit})
	case Drag:
		s.dragEdit(ev, ev.Mods.Has(Constrain))
	case Release:
		s.dragEdit(ev, ev.Mods.Has(Constrain))
		s.finishGesture()
		s.model.ClearActiveFlags()
	case Move:
		s.model.ClearActiveFlags()
		if hit := s.opts.Proximity.HitTest(s.model, ev.Pos, ev.Mods.Has(Break)); hit.Valid() {
			markActive(s.model, hit)
		}
	}
}

// Select marks an anchor as the edit-mode selection.
func (s *Session) Select(id pathmodel.ID) bool {
	if s.model.Anchor(id) == nil {
		return false
	}
	s.selected = id
	return true
}

// apply runs a single-step edit outside of a pointer gesture and records it.
func (s *Session) apply(label string, fn func() error) error {
	if s.pending != nil {
		s.Abort()
	}
	before := s.model.Snapshot()
	if err := fn(); err != nil {
		s.model.Restore(before)
		return err
	}
	s.commit(label, before)
	s.rederive()
	return nil
}

// Nudge moves the selected anchor by d, as the arrow keys do.
func (s *Session) Nudge(d vector.Pt) error {
	if s.model.Anchor(s.selected) == nil {
		return pathmodel.ErrNotFound
	}
	// apply may abort a drag and restore the model, so resolve the anchor
	// inside the edit
	return s.apply(LabelMoveAnchor, func() error {
		a := s.model.Anchor(s.selected)
		if a == nil {
			return pathmodel.ErrNotFound
		}
		return s.model.MoveAnchor(a.ID, a.Pos.Add(d))
	})
}

// DeleteAnchor removes an anchor. The history label follows the cascade:
// the last anchor of a subpath deletes the subpath, the last subpath the path.
func (s *Session) DeleteAnchor(id pathmodel.ID) error {
	if s.pending != nil {
		s.Abort()
	}
	if s.model.Anchor(id) == nil {
		return pathmodel.ErrNotFound
	}
	before := s.model.Snapshot()
	removed, err := s.model.DeleteAnchor(id)
	if err != nil {
		return err
	}
	s.commit(deleteLabel(removed), before)
	s.rederive()
	return nil
}

// DeleteSelected deletes the edit-mode selection.
func (s *Session) DeleteSelected() error {
	if s.selected == 0 {
		return pathmodel.ErrNotFound
	}
	return s.DeleteAnchor(s.selected)
}

// DeleteSubpath removes a subpath, or the path when it is the last one.
func (s *Session) DeleteSubpath(id pathmodel.ID) error {
	if s.pending != nil {
		s.Abort()
	}
	before := s.model.Snapshot()
	removed, err := s.model.DeleteSubpath(id)
	if err != nil {
		return err
	}
	s.commit(deleteLabel(removed), before)
	s.rederive()
	return nil
}

// CloseActive closes the active subpath, as the menu action does.
func (s *Session) CloseActive() error {
	return s.apply(LabelCloseSubpath, s.model.CloseSubpath)
}

// FinishActive ends the active subpath without closing it.
func (s *Session) FinishActive() error {
	return s.apply(LabelFinishSubpath, s.model.FinishSubpath)
}

// DeletePath removes the whole path.
func (s *Session) DeletePath() error {
	return s.apply(LabelDeletePath, s.model.DeletePath)
}

// RetractHandles pulls both handles of an anchor onto it.
func (s *Session) RetractHandles(id pathmodel.ID) error {
	return s.apply(LabelRetractHandles, func() error { return s.model.RetractHandles(id) })
}

// SetAnchorType reclassifies an anchor.
func (s *Session) SetAnchorType(id pathmodel.ID, t pathmodel.AnchorType) error {
	return s.apply(LabelChangeType, func() error { return s.model.SetAnchorType(id, t) })
}

// TransformPath applies an affine transform to the whole path.
func (s *Session) TransformPath(m vector.Affine2D) error {
	if !s.model.HasPath() {
		return pathmodel.ErrNoPath
	}
	return s.apply(LabelTransformPath, func() error { return s.model.Transform(m) })
}

func deleteLabel(r pathmodel.Removed) string {
	switch r {
	case pathmodel.RemovedSubPath:
		return LabelDeleteSubpath
	case pathmodel.RemovedPath:
		return LabelDeletePath
	}
	return LabelDeleteAnchor
}

// ConvertToSelection rasterizes the path into a region and removes the path,
// as one undoable step. The session ends up idle with no path.
func (s *Session) ConvertToSelection(rule region.FillRule) (*region.Region, error) {
	if !s.model.HasPath() {
		return nil, pathmodel.ErrNoPath
	}
	r, err := region.FromShape(s.model.ToShape(), rule)
	if err != nil {
		return nil, err
	}
	if err := s.apply(LabelConvertToRegion, s.model.DeletePath); err != nil {
		return nil, err
	}
	return r, nil
}
