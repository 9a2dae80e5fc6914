/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package vector

import (
	"math"
	"testing"
)

func TestRectContainsAndInset(t *testing.T) {
	r := R(10, 20, 100, 50)
	if !r.Contains(Pt{10, 20}) || !r.Contains(Pt{110, 70}) {
		t.Fatalf("expected edge points to be contained")
	}
	in := r.Inset(5, 5)
	if in.X != 15 || in.Y != 25 || in.W != 90 || in.H != 40 {
		t.Fatalf("unexpected inset: %+v", in)
	}
}

func TestAffineBasic(t *testing.T) {
	m := Translate(10, 5).Mul(Scale(2, 3))
	p := m.Apply(Pt{1, 1})
	if p.X != 12 || p.Y != 8 { // (1*2+10, 1*3+5)
		t.Fatalf("unexpected transform result: %+v", p)
	}
}

func TestAffineInvert(t *testing.T) {
	m := Translate(10, 5).Mul(Scale(2, 4))
	inv, ok := m.Invert()
	if !ok {
		t.Fatalf("expected invertible matrix")
	}
	p := inv.Apply(m.Apply(Pt{3, 7}))
	if math.Abs(p.X-3) > 1e-9 || math.Abs(p.Y-7) > 1e-9 {
		t.Fatalf("round trip failed: %+v", p)
	}
	if _, ok := Scale(0, 1).Invert(); ok {
		t.Fatalf("expected singular matrix to be rejected")
	}
}

func TestPtMirror(t *testing.T) {
	got := Pt{150, 100}.Mirror(Pt{100, 100})
	if got != (Pt{50, 100}) {
		t.Fatalf("expected (50,100), got %+v", got)
	}
}

func TestFloatRound(t *testing.T) {
	if v := FloatRound(1.23456, 2); v != 1.23 {
		t.Fatalf("expected 1.23, got %v", v)
	}
	if v := FloatRound(1.5, -1); v != 1.5 {
		t.Fatalf("negative places must return input, got %v", v)
	}
}
