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
	"errors"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"penpath/internal/region"
	"penpath/internal/vector"
)

func square() *vector.Path {
	p := &vector.Path{}
	p.MoveTo(0, 0)
	p.LineTo(40, 0)
	p.LineTo(40, 40)
	p.LineTo(0, 40)
	p.Close()
	return p
}

func TestWriteSVG(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteSVG(&buf, square(), Options{Rule: region.EvenOdd, Fill: color.RGBA{R: 255, A: 255}, Title: "a<b"}); err != nil {
		t.Fatalf("WriteSVG: %v", err)
	}
	s := buf.String()
	for _, want := range []string{
		`viewBox="-8 -8 56 56"`,
		`d="M 0 0 L 40 0 L 40 40 L 0 40 Z"`,
		`fill="#ff0000"`,
		`fill-rule="evenodd"`,
		"<title>a&lt;b</title>",
	} {
		if !strings.Contains(s, want) {
			t.Fatalf("svg lacks %q:\n%s", want, s)
		}
	}
}

func TestPathDataCurves(t *testing.T) {
	p := &vector.Path{}
	p.MoveTo(0, 0)
	p.CubicTo(1, 2, 3, 4, 5, 6)
	p.QuadTo(7, 8, 9, 10)
	if got := PathData(p); got != "M 0 0 C 1 2 3 4 5 6 Q 7 8 9 10" {
		t.Fatalf("PathData = %q", got)
	}
}

func TestRenderPNGFillsInside(t *testing.T) {
	img, err := RenderPNG(square(), Options{Fill: color.RGBA{R: 255, A: 255}})
	if err != nil {
		t.Fatalf("RenderPNG: %v", err)
	}
	if img.Bounds().Dx() != 56 || img.Bounds().Dy() != 56 {
		t.Fatalf("unexpected size %v", img.Bounds())
	}
	r, g, _, a := img.At(28, 28).RGBA()
	if a>>8 < 250 || r>>8 < 200 || g>>8 > 50 {
		t.Fatalf("inside pixel not red: %d %d %d", r>>8, g>>8, a>>8)
	}
	if _, _, _, a := img.At(2, 2).RGBA(); a != 0 {
		t.Fatalf("margin should stay transparent, alpha=%d", a)
	}
}

func TestWritePNGScaleAndBackground(t *testing.T) {
	var buf bytes.Buffer
	if err := WritePNG(&buf, square(), Options{Scale: 2, Margin: -1, Background: color.RGBA{R: 255, G: 255, B: 255, A: 255}}); err != nil {
		t.Fatalf("WritePNG: %v", err)
	}
	img, err := png.Decode(&buf)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if img.Bounds().Dx() != 80 {
		t.Fatalf("expected 80 px wide at scale 2 without margin, got %d", img.Bounds().Dx())
	}
	if _, _, _, a := img.At(40, 40).RGBA(); a>>8 != 255 {
		t.Fatalf("background should be opaque")
	}
}

func TestWritePDF(t *testing.T) {
	p := square()
	p.MoveTo(10, 10)
	p.QuadTo(20, 0, 30, 10)
	var buf bytes.Buffer
	if err := WritePDF(&buf, p, Options{IncludeGuides: true, Fill: color.RGBA{B: 255, A: 255}, Rule: region.EvenOdd}); err != nil {
		t.Fatalf("WritePDF: %v", err)
	}
	if !bytes.HasPrefix(buf.Bytes(), []byte("%PDF-")) {
		t.Fatalf("not a pdf: %q", buf.Bytes()[:min(16, buf.Len())])
	}
}

func TestEmptyPath(t *testing.T) {
	var buf bytes.Buffer
	for _, f := range []Format{FormatSVG, FormatPNG, FormatPDF} {
		if err := Write(&buf, f, &vector.Path{}, Options{}); !errors.Is(err, ErrEmptyPath) {
			t.Fatalf("%s: expected ErrEmptyPath, got %v", f, err)
		}
	}
}

func TestParseFormat(t *testing.T) {
	cases := map[string]Format{"svg": FormatSVG, "out/shape.PNG": FormatPNG, " pdf ": FormatPDF}
	for in, want := range cases {
		got, err := ParseFormat(in)
		if err != nil || got != want {
			t.Fatalf("ParseFormat(%q) = %q, %v", in, got, err)
		}
	}
	if _, err := ParseFormat("shape.cbz"); err == nil {
		t.Fatalf("expected error for cbz")
	}
}

func TestBatchExportPresets(t *testing.T) {
	dir := t.TempDir()
	web, err := BatchExport(square(), BatchOptions{Preset: PresetWeb, OutDir: filepath.Join(dir, "web"), Name: "sq"})
	if err != nil {
		t.Fatalf("web batch: %v", err)
	}
	if len(web) != 2 || filepath.Base(web[0]) != "sq.svg" || filepath.Base(web[1]) != "sq.png" {
		t.Fatalf("unexpected web outputs: %v", web)
	}
	printed, err := BatchExport(square(), BatchOptions{Preset: PresetPrint, OutDir: filepath.Join(dir, "print")})
	if err != nil {
		t.Fatalf("print batch: %v", err)
	}
	for _, p := range append(web, printed...) {
		st, err := os.Stat(p)
		if err != nil || st.Size() == 0 {
			t.Fatalf("missing output %s: %v", p, err)
		}
	}
	if filepath.Base(printed[0]) != "path.pdf" {
		t.Fatalf("unexpected print output: %v", printed)
	}
}

func TestFileAsIgnoresExtension(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.png")
	if err := FileAs(path, FormatSVG, square(), Options{}); err != nil {
		t.Fatalf("FileAs: %v", err)
	}
	b, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(b), "<svg") {
		t.Fatalf("expected SVG content in %s", path)
	}
}
