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

func TestConstrain45_Horizontal(t *testing.T) {
	got := Constrain45(Pt{100, 100}, Pt{300, 110})
	if got != (Pt{300, 100}) {
		t.Fatalf("expected (300,100), got %+v", got)
	}
}

func TestConstrain45_Vertical(t *testing.T) {
	got := Constrain45(Pt{0, 0}, Pt{-3, -50})
	if got != (Pt{0, -50}) {
		t.Fatalf("expected (0,-50), got %+v", got)
	}
}

func TestConstrain45_Diagonal(t *testing.T) {
	got := Constrain45(Pt{0, 0}, Pt{100, 90})
	if math.Abs(got.X-got.Y) > 1e-9 {
		t.Fatalf("expected point on the diagonal, got %+v", got)
	}
	if math.Abs(got.X-95) > 1e-9 {
		t.Fatalf("expected projection at 95, got %+v", got)
	}
}

func TestConstrain45_ZeroVector(t *testing.T) {
	p := Pt{5, 5}
	if got := Constrain45(p, p); got != p {
		t.Fatalf("expected unchanged point, got %+v", got)
	}
}

func TestIsNear(t *testing.T) {
	if !IsNear(Pt{0, 0}, Pt{6, 8}, 10) {
		t.Fatalf("expected distance 10 to be near with radius 10")
	}
	if IsNear(Pt{0, 0}, Pt{6, 8.1}, 10) {
		t.Fatalf("did not expect point beyond radius to be near")
	}
	if IsNear(Pt{0, 0}, Pt{0, 0}, -1) {
		t.Fatalf("negative radius never matches")
	}
}

func TestSnapToPixel(t *testing.T) {
	if got := SnapToPixel(Pt{10, 10}); got != (Pt{10.5, 10.5}) {
		t.Fatalf("expected (10.5,10.5), got %+v", got)
	}
	if got := SnapToPixel(Pt{-0.2, 3.99}); got != (Pt{-0.5, 3.5}) {
		t.Fatalf("expected (-0.5,3.5), got %+v", got)
	}
}
