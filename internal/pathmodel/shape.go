/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package pathmodel

import (
	"penpath/internal/vector"
)

// ToShape flattens the model into path commands. A segment whose two
// adjacent handles are both retracted becomes a line, anything else a cubic.
func (m *Model) ToShape() *vector.Path {
	out := &vector.Path{}
	if m.Path == nil {
		return out
	}
	for _, sp := range m.Path.SubPaths {
		appendSubpath(out, sp)
	}
	return out
}

func appendSubpath(out *vector.Path, sp *SubPath) {
	first := sp.First()
	if first == nil {
		return
	}
	out.MoveTo(first.Pos.X, first.Pos.Y)
	for i := 1; i < len(sp.Anchors); i++ {
		segment(out, sp.Anchors[i-1], sp.Anchors[i])
	}
	if sp.Closed {
		segment(out, sp.Last(), first)
		out.Close()
	}
}

func segment(out *vector.Path, from, to *AnchorPoint) {
	if from.IsRetracted(Out) && to.IsRetracted(In) {
		out.LineTo(to.Pos.X, to.Pos.Y)
		return
	}
	c1, c2 := from.CtrlOut.Pos, to.CtrlIn.Pos
	out.CubicTo(c1.X, c1.Y, c2.X, c2.Y, to.Pos.X, to.Pos.Y)
}

// FromShape builds a model from path commands, e.g. a shape converted by a
// selection tool. Anchor types are guessed from the resulting handles and
// coincident neighbors are merged.
func FromShape(shape *vector.Path) *Model {
	m := New()
	var cur *SubPath
	for _, c := range shape.Cmds {
		switch c.Op {
		case vector.MoveTo:
			cur = m.importStart(vector.Pt{X: c.Data[0], Y: c.Data[1]})
		case vector.LineTo:
			if cur == nil {
				cur = m.importStart(vector.Pt{})
			}
			m.AddLine(cur, vector.Pt{X: c.Data[0], Y: c.Data[1]})
		case vector.QuadTo:
			if cur == nil {
				cur = m.importStart(vector.Pt{})
			}
			m.AddQuad(cur, vector.Pt{X: c.Data[0], Y: c.Data[1]}, vector.Pt{X: c.Data[2], Y: c.Data[3]})
		case vector.CubicTo:
			if cur == nil {
				cur = m.importStart(vector.Pt{})
			}
			m.AddCubic(cur,
				vector.Pt{X: c.Data[0], Y: c.Data[1]},
				vector.Pt{X: c.Data[2], Y: c.Data[3]},
				vector.Pt{X: c.Data[4], Y: c.Data[5]})
		case vector.Close:
			if cur != nil {
				closeImported(cur)
			}
			cur = nil
		}
	}
	if m.Path != nil {
		for _, sp := range m.Path.SubPaths {
			sp.Finished = true
		}
	}
	m.MergeOverlappingAnchors()
	m.SetHeuristicTypes()
	return m
}

func (m *Model) importStart(p vector.Pt) *SubPath {
	a := m.StartSubpath(p)
	a.Type = Cusp
	return m.Owner(a)
}

// AddLine appends a straight segment to sp.
func (m *Model) AddLine(sp *SubPath, p vector.Pt) *AnchorPoint {
	a := m.newAnchor(sp, p)
	a.Type = Cusp
	sp.Anchors = append(sp.Anchors, a)
	return a
}

// AddCubic appends a cubic segment: c1 becomes ctrlOut of the current last
// anchor, c2 ctrlIn of the new one.
func (m *Model) AddCubic(sp *SubPath, c1, c2, p vector.Pt) *AnchorPoint {
	if last := sp.Last(); last != nil {
		last.CtrlOut.Pos = c1
	}
	a := m.newAnchor(sp, p)
	a.Type = Cusp
	a.CtrlIn.Pos = c2
	sp.Anchors = append(sp.Anchors, a)
	return a
}

// AddQuad appends a quadratic segment converted to a cubic.
func (m *Model) AddQuad(sp *SubPath, ctrl, p vector.Pt) *AnchorPoint {
	start := p
	if last := sp.Last(); last != nil {
		start = last.Pos
	}
	c1, c2 := vector.QuadToCubic(start, ctrl, p)
	return m.AddCubic(sp, c1, c2, p)
}

// closeImported closes a subpath whose commands returned to the start
// point explicitly: the duplicate last anchor donates its ctrlIn to the first.
func closeImported(sp *SubPath) {
	if n := len(sp.Anchors); n >= 2 {
		first, last := sp.Anchors[0], sp.Anchors[n-1]
		if last.Pos.Eq(first.Pos, vector.Epsilon) {
			first.CtrlIn.Pos = last.CtrlIn.Pos
			sp.Anchors = sp.Anchors[:n-1]
		}
	}
	if len(sp.Anchors) >= 2 {
		sp.Closed = true
	}
	sp.Finished = true
}

// MergeOverlappingAnchors fuses consecutive anchors at the same position:
// the survivor keeps the first anchor's ctrlIn and the second's ctrlOut.
// Returns the number of anchors removed.
func (m *Model) MergeOverlappingAnchors() int {
	if m.Path == nil {
		return 0
	}
	removed := 0
	for _, sp := range m.Path.SubPaths {
		kept := sp.Anchors[:0]
		for _, a := range sp.Anchors {
			if n := len(kept); n > 0 && kept[n-1].Pos.Eq(a.Pos, vector.Epsilon) {
				kept[n-1].CtrlOut.Pos = a.CtrlOut.Pos
				removed++
				continue
			}
			kept = append(kept, a)
		}
		sp.Anchors = kept
		if sp.Closed && len(sp.Anchors) >= 2 {
			first, last := sp.Anchors[0], sp.Anchors[len(sp.Anchors)-1]
			if last.Pos.Eq(first.Pos, vector.Epsilon) {
				first.CtrlIn.Pos = last.CtrlIn.Pos
				sp.Anchors = sp.Anchors[:len(sp.Anchors)-1]
				removed++
			}
		}
		if len(sp.Anchors) < 2 {
			sp.Closed = false
		}
	}
	return removed
}

// Transform applies an affine transform to every anchor and handle.
func (m *Model) Transform(t vector.Affine2D) error {
	if _, ok := t.Invert(); !ok {
		return ErrInvalidTransform
	}
	for _, a := range m.Anchors() {
		a.Pos = t.Apply(a.Pos)
		a.CtrlIn.Pos = t.Apply(a.CtrlIn.Pos)
		a.CtrlOut.Pos = t.Apply(a.CtrlOut.Pos)
	}
	return nil
}
