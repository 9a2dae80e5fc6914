/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package region converts path geometry into pixel regions that selection
// tooling can combine with other masks.
package region

import (
	"errors"
	"fmt"
	"image"
	"image/draw"
	"math"

	"github.com/gogpu/gg"
	xvector "golang.org/x/image/vector"

	"penpath/internal/vector"
)

// ErrEmpty is returned when the geometry covers no pixels.
var ErrEmpty = errors.New("region: empty shape")

// FillRule decides which overlapping subpaths count as inside.
type FillRule uint8

const (
	NonZero FillRule = iota
	EvenOdd
)

func (r FillRule) String() string {
	if r == EvenOdd {
		return "evenodd"
	}
	return "nonzero"
}

// ParseFillRule accepts "nonzero" or "evenodd".
func ParseFillRule(s string) (FillRule, error) {
	switch s {
	case "", "nonzero":
		return NonZero, nil
	case "evenodd":
		return EvenOdd, nil
	}
	return NonZero, fmt.Errorf("unknown fill rule %q", s)
}

// Region is a coverage mask in path pixel coordinates. Mask.Rect equals
// Bounds, so Mask.AlphaAt takes path coordinates directly.
type Region struct {
	Bounds image.Rectangle
	Mask   *image.Alpha
	Rule   FillRule
	// Shape is the source geometry, kept for vector-aware consumers.
	Shape *vector.Path
}

// Threshold is the coverage from which a pixel is considered selected.
const Threshold = 128

// Contains reports whether pixel (x, y) is selected.
func (r *Region) Contains(x, y int) bool {
	if r == nil || r.Mask == nil || !(image.Point{X: x, Y: y}).In(r.Bounds) {
		return false
	}
	return r.Mask.AlphaAt(x, y).A >= Threshold
}

// Area counts selected pixels.
func (r *Region) Area() int {
	if r == nil || r.Mask == nil {
		return 0
	}
	n := 0
	for y := r.Bounds.Min.Y; y < r.Bounds.Max.Y; y++ {
		for x := r.Bounds.Min.X; x < r.Bounds.Max.X; x++ {
			if r.Mask.AlphaAt(x, y).A >= Threshold {
				n++
			}
		}
	}
	return n
}

func (r *Region) Empty() bool { return r.Area() == 0 }

// GGMask returns the coverage as a gg mask anchored at Bounds.Min, ready for
// gg.Context.SetMask when compositing the selection.
func (r *Region) GGMask() *gg.Mask {
	return gg.NewMaskFromAlpha(r.Mask)
}

// FromShape rasterizes closed geometry. Open subpaths are closed implicitly,
// as a fill would. Non-zero filling uses the x/image rasterizer, even-odd
// goes through gg which supports both rules.
func FromShape(shape *vector.Path, rule FillRule) (*Region, error) {
	if shape.Empty() {
		return nil, ErrEmpty
	}
	b := shape.Bounds()
	bounds := image.Rect(
		int(math.Floor(b.X)), int(math.Floor(b.Y)),
		int(math.Ceil(b.X+b.W)), int(math.Ceil(b.Y+b.H)),
	)
	if bounds.Empty() {
		return nil, ErrEmpty
	}
	var mask *image.Alpha
	var err error
	switch rule {
	case EvenOdd:
		mask, err = rasterizeGG(shape, bounds)
	default:
		mask = rasterizeNonZero(shape, bounds)
	}
	if err != nil {
		return nil, err
	}
	r := &Region{Bounds: bounds, Mask: mask, Rule: rule, Shape: shape}
	if r.Empty() {
		return nil, ErrEmpty
	}
	return r, nil
}

func rasterizeNonZero(shape *vector.Path, bounds image.Rectangle) *image.Alpha {
	w, h := bounds.Dx(), bounds.Dy()
	ras := xvector.NewRasterizer(w, h)
	ox, oy := float64(bounds.Min.X), float64(bounds.Min.Y)
	f := func(x, y float64) (float32, float32) { return float32(x - ox), float32(y - oy) }
	open := false
	for _, c := range shape.Cmds {
		d := c.Data
		switch c.Op {
		case vector.MoveTo:
			if open {
				ras.ClosePath()
			}
			x, y := f(d[0], d[1])
			ras.MoveTo(x, y)
			open = true
		case vector.LineTo:
			x, y := f(d[0], d[1])
			ras.LineTo(x, y)
		case vector.QuadTo:
			bx, by := f(d[0], d[1])
			cx, cy := f(d[2], d[3])
			ras.QuadTo(bx, by, cx, cy)
		case vector.CubicTo:
			bx, by := f(d[0], d[1])
			cx, cy := f(d[2], d[3])
			dx, dy := f(d[4], d[5])
			ras.CubeTo(bx, by, cx, cy, dx, dy)
		case vector.Close:
			ras.ClosePath()
			open = false
		}
	}
	if open {
		ras.ClosePath()
	}
	local := image.NewAlpha(image.Rect(0, 0, w, h))
	ras.Draw(local, local.Bounds(), image.Opaque, image.Point{})
	local.Rect = bounds
	return local
}

func rasterizeGG(shape *vector.Path, bounds image.Rectangle) (*image.Alpha, error) {
	dc := gg.NewContext(bounds.Dx(), bounds.Dy())
	defer func() { _ = dc.Close() }()
	dc.Translate(float64(-bounds.Min.X), float64(-bounds.Min.Y))
	TraceGG(dc, shape)
	dc.SetFillRule(gg.FillRuleEvenOdd)
	dc.SetRGBA(0, 0, 0, 1)
	if err := dc.Fill(); err != nil {
		return nil, fmt.Errorf("rasterize even-odd: %w", err)
	}
	img := dc.Image()
	out := image.NewAlpha(bounds)
	draw.Draw(out, bounds, img, img.Bounds().Min, draw.Src)
	return out, nil
}

// TraceGG replays path commands on a gg context without stroking or filling.
func TraceGG(dc *gg.Context, shape *vector.Path) {
	for _, c := range shape.Cmds {
		d := c.Data
		switch c.Op {
		case vector.MoveTo:
			dc.MoveTo(d[0], d[1])
		case vector.LineTo:
			dc.LineTo(d[0], d[1])
		case vector.QuadTo:
			dc.QuadraticTo(d[0], d[1], d[2], d[3])
		case vector.CubicTo:
			dc.CubicTo(d[0], d[1], d[2], d[3], d[4], d[5])
		case vector.Close:
			dc.ClosePath()
		}
	}
}
