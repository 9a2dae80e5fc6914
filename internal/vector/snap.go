/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package vector

// Snapping helpers for interactive tools. These are UI-agnostic and
// deterministic so they can be unit tested without a frontend.

import "math"

// DefaultTolerance is the screen-space radius, in pixels, within which a
// pointer counts as being on top of a point.
const DefaultTolerance = 10.0

// IsNear reports whether candidate lies within radius of target.
func IsNear(candidate, target Pt, radius float64) bool {
	if radius < 0 {
		return false
	}
	dx, dy := candidate.X-target.X, candidate.Y-target.Y
	return dx*dx+dy*dy <= radius*radius
}

// Constrain45 snaps p so that the vector ref->p points along the nearest
// multiple of 45 degrees. The vector is projected onto that direction, so a
// nearly horizontal drag keeps its x and takes ref's y.
func Constrain45(ref, p Pt) Pt {
	v := p.Sub(ref)
	if v.Len() < Epsilon {
		return p
	}
	const step = math.Pi / 4
	angle := math.Round(math.Atan2(v.Y, v.X)/step) * step
	dir := Pt{math.Cos(angle), math.Sin(angle)}
	// Cos/Sin of multiples of 45 degrees are not exact; clean them up so
	// axis-aligned results land exactly on the axis.
	dir.X = FloatRound(dir.X, 12)
	dir.Y = FloatRound(dir.Y, 12)
	proj := v.X*dir.X + v.Y*dir.Y
	return ref.Add(dir.Scale(proj))
}

// SnapToPixel rounds p to the nearest half pixel so strokes render crisp.
func SnapToPixel(p Pt) Pt {
	return Pt{math.Floor(p.X) + 0.5, math.Floor(p.Y) + 0.5}
}
