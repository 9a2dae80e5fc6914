/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package export

import (
	"bytes"
	"fmt"
	"image/color"
	"io"
	"math"
	"strings"

	"penpath/internal/region"
	"penpath/internal/vector"
)

// WriteSVG writes shape as a standalone SVG document. The viewBox is in path
// units, so the outline is not resampled.
func WriteSVG(w io.Writer, shape *vector.Path, opt Options) error {
	o := opt.withDefaults()
	fr, err := frame(shape, o)
	if err != nil {
		return err
	}
	pxW := int(math.Ceil(fr.W * o.Scale))
	pxH := int(math.Ceil(fr.H * o.Scale))

	var buf bytes.Buffer
	var werr error
	wf := func(format string, args ...any) {
		if werr != nil {
			return
		}
		_, werr = fmt.Fprintf(&buf, format, args...)
	}

	wf("<?xml version=\"1.0\" encoding=\"UTF-8\"?>\n")
	wf("<svg xmlns=\"http://www.w3.org/2000/svg\" version=\"1.1\" width=\"%dpx\" height=\"%dpx\" viewBox=\"%g %g %g %g\">\n", pxW, pxH, fr.X, fr.Y, fr.W, fr.H)
	wf("  <title>%s</title>\n", escText(o.Title))
	if o.Background.A > 0 {
		wf("  <rect x=\"%g\" y=\"%g\" width=\"%g\" height=\"%g\" fill=\"%s\"/>\n", fr.X, fr.Y, fr.W, fr.H, svgColor(o.Background))
	}
	if o.IncludeGuides {
		b := shape.Bounds()
		wf("  <rect x=\"%g\" y=\"%g\" width=\"%g\" height=\"%g\" fill=\"none\" stroke=\"%s\" stroke-width=\"0.2\"/>\n", b.X, b.Y, b.W, b.H, svgColor(o.GuideColor))
	}
	fill := "none"
	if o.Fill.A > 0 {
		fill = svgColor(o.Fill)
	}
	wf("  <path d=\"%s\" fill=\"%s\" fill-rule=\"%s\" stroke=\"%s\" stroke-width=\"%g\"/>\n",
		escAttr(PathData(shape)), fill, svgFillRule(o.Rule), svgColor(o.Stroke), o.StrokeWidth)
	wf("</svg>\n")
	if werr != nil {
		return fmt.Errorf("build svg: %w", werr)
	}
	if _, err := w.Write(buf.Bytes()); err != nil {
		return fmt.Errorf("write svg: %w", err)
	}
	return nil
}

// PathData renders shape as an SVG path "d" attribute.
func PathData(shape *vector.Path) string {
	var b strings.Builder
	for i, c := range shape.Cmds {
		if i > 0 {
			b.WriteByte(' ')
		}
		d := c.Data
		switch c.Op {
		case vector.MoveTo:
			fmt.Fprintf(&b, "M %g %g", d[0], d[1])
		case vector.LineTo:
			fmt.Fprintf(&b, "L %g %g", d[0], d[1])
		case vector.QuadTo:
			fmt.Fprintf(&b, "Q %g %g %g %g", d[0], d[1], d[2], d[3])
		case vector.CubicTo:
			fmt.Fprintf(&b, "C %g %g %g %g %g %g", d[0], d[1], d[2], d[3], d[4], d[5])
		case vector.Close:
			b.WriteByte('Z')
		}
	}
	return b.String()
}

func svgFillRule(r region.FillRule) string {
	if r == region.EvenOdd {
		return "evenodd"
	}
	return "nonzero"
}

func svgColor(c color.RGBA) string {
	if c.A < 255 {
		return fmt.Sprintf("rgba(%d,%d,%d,%.3g)", c.R, c.G, c.B, float64(c.A)/255)
	}
	return fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B)
}

func escAttr(s string) string {
	out := make([]byte, 0, len(s))
	for i := 0; i < len(s); i++ {
		ch := s[i]
		switch ch {
		case '"':
			out = append(out, '&', 'q', 'u', 'o', 't', ';')
		case '\n':
			out = append(out, ' ')
		case '\r':
			// skip
		default:
			out = append(out, ch)
		}
	}
	return string(out)
}

func escText(s string) string {
	out := make([]byte, 0, len(s))
	for i := 0; i < len(s); i++ {
		ch := s[i]
		switch ch {
		case '&':
			out = append(out, '&', 'a', 'm', 'p', ';')
		case '<':
			out = append(out, '&', 'l', 't', ';')
		case '>':
			out = append(out, '&', 'g', 't', ';')
		default:
			out = append(out, ch)
		}
	}
	return string(out)
}
