/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package export writes a path to SVG, PNG and PDF. All formats share
// Options; coordinates stay in path units and Scale maps them to output
// pixels (PNG, SVG width/height) or points (PDF).
package export

import (
	"errors"
	"image/color"

	"penpath/internal/region"
	"penpath/internal/vector"
)

// ErrEmptyPath is returned when there is nothing to export.
var ErrEmptyPath = errors.New("export: empty path")

//nolint:revive // keep options grouped and explicit for clarity
type Options struct {
	// Scale maps path units to output units. Zero means 1.
	Scale float64
	// Margin in path units around the path bounds. Negative means none,
	// zero means 8.
	Margin      float64
	StrokeWidth float64
	Stroke      color.RGBA
	// Fill with zero alpha leaves the path unfilled.
	Fill       color.RGBA
	Rule       region.FillRule
	Background color.RGBA
	// IncludeGuides draws the path bounds as a hairline.
	IncludeGuides bool
	GuideColor    color.RGBA
	Title         string
}

func (o Options) withDefaults() Options {
	if o.Scale <= 0 {
		o.Scale = 1
	}
	switch {
	case o.Margin < 0:
		o.Margin = 0
	case o.Margin == 0:
		o.Margin = 8
	}
	if o.StrokeWidth <= 0 {
		o.StrokeWidth = 1
	}
	if o.Stroke == (color.RGBA{}) {
		o.Stroke = color.RGBA{A: 255}
	}
	if o.GuideColor == (color.RGBA{}) {
		o.GuideColor = color.RGBA{R: 255, A: 255}
	}
	if o.Title == "" {
		o.Title = "penpath"
	}
	return o
}

// frame is the exported area in path units: bounds plus margin.
func frame(shape *vector.Path, o Options) (vector.Rect, error) {
	if shape.Empty() {
		return vector.Rect{}, ErrEmptyPath
	}
	b := shape.Bounds()
	return vector.Rect{X: b.X - o.Margin, Y: b.Y - o.Margin, W: b.W + 2*o.Margin, H: b.H + 2*o.Margin}, nil
}
