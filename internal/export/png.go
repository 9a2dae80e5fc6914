/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package export

import (
	"fmt"
	"image"
	"image/png"
	"io"
	"math"

	"github.com/gogpu/gg"

	"penpath/internal/region"
	"penpath/internal/vector"
)

// RenderPNG rasterizes shape with gg. The image covers the frame (bounds
// plus margin) at Scale pixels per path unit.
func RenderPNG(shape *vector.Path, opt Options) (image.Image, error) {
	o := opt.withDefaults()
	fr, err := frame(shape, o)
	if err != nil {
		return nil, err
	}
	w := max(int(math.Ceil(fr.W*o.Scale)), 1)
	h := max(int(math.Ceil(fr.H*o.Scale)), 1)

	dc := gg.NewContext(w, h)
	defer func() { _ = dc.Close() }()
	if o.Background.A > 0 {
		dc.ClearWithColor(gg.FromColor(o.Background))
	}
	dc.Scale(o.Scale, o.Scale)
	dc.Translate(-fr.X, -fr.Y)

	if o.IncludeGuides {
		b := shape.Bounds()
		dc.DrawRectangle(b.X, b.Y, b.W, b.H)
		dc.SetColor(o.GuideColor)
		dc.SetLineWidth(0.5 / o.Scale)
		if err := dc.Stroke(); err != nil {
			return nil, fmt.Errorf("stroke guides: %w", err)
		}
	}

	region.TraceGG(dc, shape)
	if o.Fill.A > 0 {
		if o.Rule == region.EvenOdd {
			dc.SetFillRule(gg.FillRuleEvenOdd)
		} else {
			dc.SetFillRule(gg.FillRuleNonZero)
		}
		dc.SetColor(o.Fill)
		if err := dc.FillPreserve(); err != nil {
			return nil, fmt.Errorf("fill path: %w", err)
		}
	}
	dc.SetColor(o.Stroke)
	dc.SetLineWidth(o.StrokeWidth)
	dc.SetLineJoin(gg.LineJoinRound)
	if err := dc.Stroke(); err != nil {
		return nil, fmt.Errorf("stroke path: %w", err)
	}
	return dc.Image(), nil
}

// WritePNG encodes RenderPNG's output to w.
func WritePNG(w io.Writer, shape *vector.Path, opt Options) error {
	img, err := RenderPNG(shape, opt)
	if err != nil {
		return err
	}
	if err := png.Encode(w, img); err != nil {
		return fmt.Errorf("encode png: %w", err)
	}
	return nil
}
