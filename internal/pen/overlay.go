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

// StrokeKind tells the painter which outline is being drawn.
type StrokeKind uint8

const (
	// StrokePath is the committed path geometry.
	StrokePath StrokeKind = iota
	// StrokePreview is the rubber band to the next anchor.
	StrokePreview
)

// Painter draws overlay primitives onto a graphics context.
type Painter interface {
	Outline(shape *vector.Path, kind StrokeKind)
	HandleLine(anchor, handle vector.Pt)
	Handle(p vector.Pt, active bool)
	Anchor(p vector.Pt, t pathmodel.AnchorType, active, selected bool)
}

// PaintOverlay draws the path, its anchors and visible handles, and in
// MovingToNextAnchor the segment the next press would add.
func (s *Session) PaintOverlay(p Painter) {
	if !s.model.HasPath() {
		return
	}
	p.Outline(s.model.ToShape(), StrokePath)
	if preview, ok := s.Preview(); ok {
		if last := s.model.ActiveSubpath().Last(); last != nil {
			p.Outline(previewSegment(last, preview), StrokePreview)
		}
	}
	for _, a := range s.model.Anchors() {
		for _, side := range []pathmodel.Side{pathmodel.In, pathmodel.Out} {
			if a.IsRetracted(side) {
				continue
			}
			h := a.Handle(side)
			p.HandleLine(a.Pos, h.Pos)
			p.Handle(h.Pos, h.Active)
		}
		p.Anchor(a.Pos, a.Type, a.Active, s.mode == Edit && a.ID == s.selected)
	}
}

// previewSegment is what the next plain click at p would add: a cubic
// leaving through the last anchor's ctrlOut, or a line if it is retracted.
func previewSegment(last *pathmodel.AnchorPoint, p vector.Pt) *vector.Path {
	seg := &vector.Path{}
	seg.MoveTo(last.Pos.X, last.Pos.Y)
	if last.IsRetracted(pathmodel.Out) {
		seg.LineTo(p.X, p.Y)
		return seg
	}
	seg.CubicTo(last.CtrlOut.Pos.X, last.CtrlOut.Pos.Y, p.X, p.Y, p.X, p.Y)
	return seg
}
