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
	"image/color"
	"io"

	"github.com/jung-kurt/gofpdf"

	"penpath/internal/region"
	"penpath/internal/vector"
)

// WritePDF writes shape as a single-page vector PDF. One path unit is Scale
// points; the page is the frame, with the origin top-left like the model.
func WritePDF(w io.Writer, shape *vector.Path, opt Options) error {
	o := opt.withDefaults()
	fr, err := frame(shape, o)
	if err != nil {
		return err
	}
	pageW, pageH := fr.W*o.Scale, fr.H*o.Scale

	pdf := gofpdf.NewCustom(&gofpdf.InitType{
		UnitStr: "pt",
		Size:    gofpdf.SizeType{Wd: pageW, Ht: pageH},
	})
	pdf.SetTitle(o.Title, true)
	pdf.SetCreator("penpath", true)
	pdf.SetAutoPageBreak(false, 0)
	pdf.AddPageFormat("", gofpdf.SizeType{Wd: pageW, Ht: pageH})

	// path unit -> page point
	tx := func(x, y float64) (float64, float64) { return (x - fr.X) * o.Scale, (y - fr.Y) * o.Scale }

	if o.Background.A > 0 {
		setFillColor(pdf, o.Background)
		pdf.Rect(0, 0, pageW, pageH, "F")
	}
	if o.IncludeGuides {
		b := shape.Bounds()
		x, y := tx(b.X, b.Y)
		setDrawColor(pdf, o.GuideColor)
		pdf.SetLineWidth(0.2)
		pdf.Rect(x, y, b.W*o.Scale, b.H*o.Scale, "D")
	}

	var cur vector.Pt
	for _, c := range shape.Cmds {
		d := c.Data
		switch c.Op {
		case vector.MoveTo:
			pdf.MoveTo(tx(d[0], d[1]))
			cur = vector.Pt{X: d[0], Y: d[1]}
		case vector.LineTo:
			pdf.LineTo(tx(d[0], d[1]))
			cur = vector.Pt{X: d[0], Y: d[1]}
		case vector.QuadTo:
			end := vector.Pt{X: d[2], Y: d[3]}
			c1, c2 := vector.QuadToCubic(cur, vector.Pt{X: d[0], Y: d[1]}, end)
			curveTo(pdf, tx, c1, c2, end)
			cur = end
		case vector.CubicTo:
			end := vector.Pt{X: d[4], Y: d[5]}
			curveTo(pdf, tx, vector.Pt{X: d[0], Y: d[1]}, vector.Pt{X: d[2], Y: d[3]}, end)
			cur = end
		case vector.Close:
			pdf.ClosePath()
		}
	}
	setDrawColor(pdf, o.Stroke)
	pdf.SetLineWidth(o.StrokeWidth * o.Scale)
	pdf.SetLineJoinStyle("round")
	style := "D"
	if o.Fill.A > 0 {
		setFillColor(pdf, o.Fill)
		style = "FD"
		if o.Rule == region.EvenOdd {
			style = "FD*"
		}
	}
	pdf.DrawPath(style)

	if err := pdf.Error(); err != nil {
		return fmt.Errorf("build pdf: %w", err)
	}
	if err := pdf.Output(w); err != nil {
		return fmt.Errorf("write pdf: %w", err)
	}
	return nil
}

func curveTo(pdf *gofpdf.Fpdf, tx func(x, y float64) (float64, float64), c1, c2, end vector.Pt) {
	x1, y1 := tx(c1.X, c1.Y)
	x2, y2 := tx(c2.X, c2.Y)
	x3, y3 := tx(end.X, end.Y)
	pdf.CurveBezierCubicTo(x1, y1, x2, y2, x3, y3)
}

func setDrawColor(pdf *gofpdf.Fpdf, c color.RGBA) {
	pdf.SetDrawColor(int(c.R), int(c.G), int(c.B))
}

func setFillColor(pdf *gofpdf.Fpdf, c color.RGBA) {
	pdf.SetFillColor(int(c.R), int(c.G), int(c.B))
}
