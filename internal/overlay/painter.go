/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package overlay paints pen tool feedback with gg: the path outline,
// anchors, handles and the rubber band to the next anchor.
package overlay

import (
	"image"

	"github.com/gogpu/gg"

	"penpath/internal/pathmodel"
	"penpath/internal/pen"
	"penpath/internal/region"
	"penpath/internal/vector"
)

// Style holds overlay sizes in screen pixels and colors.
type Style struct {
	AnchorSize  float64
	HandleSize  float64
	LineWidth   float64
	PathColor   gg.RGBA
	ActiveColor gg.RGBA
	HandleColor gg.RGBA
	Preview     gg.RGBA
}

// DefaultStyle mirrors common editor defaults: white fill, black outlines.
func DefaultStyle() Style {
	return Style{
		AnchorSize:  8,
		HandleSize:  6,
		LineWidth:   1,
		PathColor:   gg.RGB(0, 0, 0),
		ActiveColor: gg.RGB(1, 0.4, 0),
		HandleColor: gg.RGB(0.2, 0.4, 1),
		Preview:     gg.RGBA2(0, 0, 0, 0.5),
	}
}

// Painter implements pen.Painter on a gg context. View maps path
// coordinates to the context's pixels; marker sizes do not scale with it.
type Painter struct {
	dc    *gg.Context
	view  vector.Affine2D
	style Style
	err   error
}

var _ pen.Painter = (*Painter)(nil)

func NewPainter(dc *gg.Context, view vector.Affine2D, style Style) *Painter {
	return &Painter{dc: dc, view: view, style: style}
}

// Err returns the first rendering error, if any.
func (p *Painter) Err() error { return p.err }

func (p *Painter) keep(err error) {
	if err != nil && p.err == nil {
		p.err = err
	}
}

func (p *Painter) Outline(shape *vector.Path, kind pen.StrokeKind) {
	p.dc.ClearPath()
	region.TraceGG(p.dc, shape.Transform(p.view))
	p.dc.SetLineWidth(p.style.LineWidth)
	if kind == pen.StrokePreview {
		p.setColor(p.style.Preview)
		p.dc.SetDash(4, 4)
		p.keep(p.dc.Stroke())
		p.dc.SetDash()
		return
	}
	p.setColor(p.style.PathColor)
	p.keep(p.dc.Stroke())
}

func (p *Painter) HandleLine(anchor, handle vector.Pt) {
	a, h := p.view.Apply(anchor), p.view.Apply(handle)
	p.setColor(p.style.HandleColor)
	p.dc.SetLineWidth(p.style.LineWidth)
	p.dc.DrawLine(a.X, a.Y, h.X, h.Y)
	p.keep(p.dc.Stroke())
}

func (p *Painter) Handle(pt vector.Pt, active bool) {
	c := p.view.Apply(pt)
	p.dc.DrawCircle(c.X, c.Y, p.style.HandleSize/2)
	p.setColor(p.fill(active))
	p.keep(p.dc.FillPreserve())
	p.setColor(p.style.HandleColor)
	p.keep(p.dc.Stroke())
}

func (p *Painter) Anchor(pt vector.Pt, t pathmodel.AnchorType, active, selected bool) {
	c := vector.SnapToPixel(p.view.Apply(pt))
	s := p.style.AnchorSize
	if t == pathmodel.Cusp {
		// cusps are drawn as diamonds
		p.dc.MoveTo(c.X, c.Y-s/2)
		p.dc.LineTo(c.X+s/2, c.Y)
		p.dc.LineTo(c.X, c.Y+s/2)
		p.dc.LineTo(c.X-s/2, c.Y)
		p.dc.ClosePath()
	} else {
		p.dc.DrawRectangle(c.X-s/2, c.Y-s/2, s, s)
	}
	fill := p.fill(active)
	if selected {
		fill = p.style.PathColor
	}
	p.setColor(fill)
	p.keep(p.dc.FillPreserve())
	p.setColor(p.style.PathColor)
	p.keep(p.dc.Stroke())
}

func (p *Painter) setColor(c gg.RGBA) { p.dc.SetRGBA(c.R, c.G, c.B, c.A) }

func (p *Painter) fill(active bool) gg.RGBA {
	if active {
		return p.style.ActiveColor
	}
	return gg.RGB(1, 1, 1)
}

// Render paints the session overlay into a new transparent image.
func Render(s *pen.Session, w, h int, view vector.Affine2D, style Style) (image.Image, error) {
	dc := gg.NewContext(w, h)
	defer func() { _ = dc.Close() }()
	p := NewPainter(dc, view, style)
	s.PaintOverlay(p)
	if err := p.Err(); err != nil {
		return nil, err
	}
	return dc.Image(), nil
}
