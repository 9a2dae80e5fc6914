/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package script

import (
	"context"
	"io"
	"log/slog"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"penpath/internal/pen"
	"penpath/internal/undo"
	"penpath/internal/vector"
)

func quietOptions() pen.Options {
	opts := pen.DefaultOptions()
	opts.Logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	return opts
}

func run(t *testing.T, src string) (*Runner, Result, error) {
	t.Helper()
	sc, errs := Parse([]byte(src))
	require.Empty(t, errs)
	h := undo.NewManager(undo.Config{})
	r := NewRunner(sc, h, quietOptions())
	res, err := r.Run(context.Background(), sc)
	return r, res, err
}

func TestRunTriangleFile(t *testing.T) {
	sc, err := Load(filepath.Join("testdata", "triangle.yaml"))
	require.NoError(t, err)
	h := undo.NewManager(undo.Config{})
	r := NewRunner(sc, h, quietOptions())

	res, err := r.Run(context.Background(), sc)
	require.NoError(t, err)
	assert.Equal(t, len(sc.Steps), res.Steps)
	assert.Empty(t, res.Skipped)
	require.Len(t, res.Regions, 1)
	assert.InDelta(t, 800, res.Regions[0].Area(), 50)
	assert.Equal(t, []string{
		pen.LabelSubpathStart, pen.LabelAddAnchor, pen.LabelAddAnchor,
		pen.LabelCloseSubpath, pen.LabelConvertToRegion,
	}, h.Labels())
}

func TestRunFailedExpectStops(t *testing.T) {
	_, res, err := run(t, `version: 1
steps:
  - {op: click, at: [0, 0]}
  - op: expect
    expect: {anchors: 5}
  - {op: click, at: [30, 0]}
`)
	var ee *ExpectError
	require.ErrorAs(t, err, &ee)
	assert.Equal(t, 4, ee.Line)
	assert.Contains(t, ee.Msg, "1 anchors, want 5")
	assert.Equal(t, 2, res.Steps)
}

func TestRunRejectedStepsAreSkipped(t *testing.T) {
	r, res, err := run(t, `version: 1
steps:
  - {op: undo}
  - {op: finish}
  - {op: click, at: [0, 0]}
  - {op: close}
  - op: expect
    expect: {anchors: 1, state: MOVING_TO_NEXT_ANCHOR}
`)
	require.NoError(t, err)
	assert.Len(t, res.Skipped, 3)
	assert.Equal(t, pen.MovingToNextAnchor, r.Session.State())
}

func TestRunEditModeNudgeAndDelete(t *testing.T) {
	r, _, err := run(t, `version: 1
steps:
  - {op: click, at: [0, 0]}
  - {op: click, at: [50, 0]}
  - {op: finish}
  - {op: mode, mode: edit}
  - {op: click, at: [50, 0]}
  - {op: nudge, at: [0, 5]}
  - op: expect
    expect: {mode: EDIT, undo: Move Anchor Point}
  - {op: delete}
  - op: expect
    expect: {anchors: 1, undo: Delete Anchor Point}
`)
	require.NoError(t, err)
	assert.Equal(t, pen.Edit, r.Session.Mode())
}

func TestSessionOptionsView(t *testing.T) {
	thr := 0.0
	opts := SessionOptions(Script{Tolerance: 4, DragThreshold: &thr, View: View{Scale: 2, Offset: []float64{10, 5}}}, quietOptions())
	assert.Equal(t, 4.0, opts.Proximity.Tolerance)
	assert.Equal(t, 0.0, opts.DragThreshold)
	got := opts.Proximity.View.Apply(vector.Pt{X: 1, Y: 1})
	assert.Equal(t, vector.Pt{X: 12, Y: 7}, got)
}

func TestRunHonorsContext(t *testing.T) {
	sc, errs := Parse([]byte("version: 1\nsteps:\n  - {op: click, at: [0, 0]}\n"))
	require.Empty(t, errs)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := NewRunner(sc, undo.NewManager(undo.Config{}), quietOptions()).Run(ctx, sc)
	assert.ErrorIs(t, err, context.Canceled)
}
