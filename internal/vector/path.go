/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package vector

import "math"

// Path commands. A Path is the flattened, renderer-facing form of an edited
// path: exporters, the overlay painter and the region rasterizer consume it.

type PathOp uint8

const (
	MoveTo PathOp = iota
	LineTo
	QuadTo  // quadratic bezier (cx, cy, x, y)
	CubicTo // cubic bezier (cx1, cy1, cx2, cy2, x, y)
	Close
)

func (op PathOp) String() string {
	switch op {
	case MoveTo:
		return "M"
	case LineTo:
		return "L"
	case QuadTo:
		return "Q"
	case CubicTo:
		return "C"
	case Close:
		return "Z"
	}
	return "?"
}

func (op PathOp) points() int {
	switch op {
	case MoveTo, LineTo:
		return 1
	case QuadTo:
		return 2
	case CubicTo:
		return 3
	}
	return 0
}

type PathCmd struct {
	Op   PathOp
	Data [6]float64 // enough for cubic; unused slots are zero
}

// End returns the end point of the command. Close has no own end point.
func (c PathCmd) End() (Pt, bool) {
	switch c.Op {
	case MoveTo, LineTo:
		return Pt{c.Data[0], c.Data[1]}, true
	case QuadTo:
		return Pt{c.Data[2], c.Data[3]}, true
	case CubicTo:
		return Pt{c.Data[4], c.Data[5]}, true
	}
	return Pt{}, false
}

type Path struct{ Cmds []PathCmd }

func (p *Path) MoveTo(x, y float64) {
	p.Cmds = append(p.Cmds, PathCmd{Op: MoveTo, Data: [6]float64{x, y}})
}
func (p *Path) LineTo(x, y float64) {
	p.Cmds = append(p.Cmds, PathCmd{Op: LineTo, Data: [6]float64{x, y}})
}
func (p *Path) QuadTo(cx, cy, x, y float64) {
	p.Cmds = append(p.Cmds, PathCmd{Op: QuadTo, Data: [6]float64{cx, cy, x, y}})
}
func (p *Path) CubicTo(cx1, cy1, cx2, cy2, x, y float64) {
	p.Cmds = append(p.Cmds, PathCmd{Op: CubicTo, Data: [6]float64{cx1, cy1, cx2, cy2, x, y}})
}
func (p *Path) Close() { p.Cmds = append(p.Cmds, PathCmd{Op: Close}) }

func (p *Path) Empty() bool { return p == nil || len(p.Cmds) == 0 }

// Transform returns a copy of the path with m applied to every coordinate.
func (p *Path) Transform(m Affine2D) *Path {
	out := &Path{Cmds: make([]PathCmd, len(p.Cmds))}
	for i, c := range p.Cmds {
		n := c
		for j := 0; j < 2*c.Op.points(); j += 2 {
			q := m.Apply(Pt{c.Data[j], c.Data[j+1]})
			n.Data[j], n.Data[j+1] = q.X, q.Y
		}
		out.Cmds[i] = n
	}
	return out
}

// Bounds returns an axis-aligned bounding box of the path using the control
// polygon. That overestimates curves slightly, which is fine for mask
// allocation and export page sizes.
func (p *Path) Bounds() Rect {
	minX, minY := math.Inf(1), math.Inf(1)
	maxX, maxY := math.Inf(-1), math.Inf(-1)
	add := func(x, y float64) {
		minX, minY = math.Min(minX, x), math.Min(minY, y)
		maxX, maxY = math.Max(maxX, x), math.Max(maxY, y)
	}
	for _, c := range p.Cmds {
		switch c.Op {
		case MoveTo, LineTo:
			add(c.Data[0], c.Data[1])
		case QuadTo:
			add(c.Data[0], c.Data[1])
			add(c.Data[2], c.Data[3])
		case CubicTo:
			add(c.Data[0], c.Data[1])
			add(c.Data[2], c.Data[3])
			add(c.Data[4], c.Data[5])
		case Close:
			// no-op for bounds
		}
	}
	if minX > maxX || minY > maxY {
		return Rect{}
	}
	return Rect{X: minX, Y: minY, W: maxX - minX, H: maxY - minY}
}

// QuadToCubic converts a quadratic segment to the equivalent cubic control
// points using the 2/3 rule.
func QuadToCubic(start, ctrl, end Pt) (c1, c2 Pt) {
	c1 = start.Add(ctrl.Sub(start).Scale(2.0 / 3.0))
	c2 = end.Add(ctrl.Sub(end).Scale(2.0 / 3.0))
	return c1, c2
}
