/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package pathmodel

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"penpath/internal/vector"
)

func TestToShape_LinesAndCurves(t *testing.T) {
	m := New()
	m.StartSubpath(pt(0, 0))
	_, err := m.AppendAnchor(pt(100, 0))
	require.NoError(t, err)
	c, err := m.AppendAnchor(pt(100, 100))
	require.NoError(t, err)
	require.NoError(t, m.DragOutHandle(c.ID, pt(120, 100)))
	require.NoError(t, m.CloseSubpath())

	s := m.ToShape()
	ops := make([]vector.PathOp, 0, len(s.Cmds))
	for _, cmd := range s.Cmds {
		ops = append(ops, cmd.Op)
	}
	// a->b straight, b->c curved because c.ctrlIn is dragged, c->a curved via c.ctrlOut
	assert.Equal(t, []vector.PathOp{vector.MoveTo, vector.LineTo, vector.CubicTo, vector.CubicTo, vector.Close}, ops)
	closing := s.Cmds[3]
	assert.Equal(t, [6]float64{120, 100, 0, 0, 0, 0}, closing.Data)
}

func TestToShape_NoPath(t *testing.T) {
	assert.True(t, New().ToShape().Empty())
}

func TestFromShape_RectangleClosesAndMerges(t *testing.T) {
	var s vector.Path
	s.MoveTo(0, 0)
	s.LineTo(10, 0)
	s.LineTo(10, 0)
	s.LineTo(10, 10)
	s.LineTo(0, 10)
	s.LineTo(0, 0)
	s.Close()

	m := FromShape(&s)
	require.True(t, m.HasPath())
	sp := m.Path.SubPaths[0]
	assert.Equal(t, 4, sp.Len())
	assert.True(t, sp.Closed)
	assert.True(t, sp.Finished)
	for _, a := range sp.Anchors {
		assert.Equal(t, Symmetric, a.Type, "retracted corners are symmetric")
	}
	assert.NoError(t, m.CheckConsistency())
}

func TestFromShape_QuadBecomesSmoothCubic(t *testing.T) {
	var s vector.Path
	s.MoveTo(0, 0)
	s.QuadTo(30, 30, 60, 0)
	s.QuadTo(90, -30, 120, 0)

	m := FromShape(&s)
	sp := m.Path.SubPaths[0]
	require.Equal(t, 3, sp.Len())
	mid := sp.Anchors[1]
	assert.Equal(t, Symmetric, mid.Type)
	assert.InDelta(t, 40, mid.CtrlIn.Pos.X, 1e-9)
	assert.InDelta(t, 80, mid.CtrlOut.Pos.X, 1e-9)
}

func TestTransform(t *testing.T) {
	m := New()
	a := m.StartSubpath(pt(1, 1))
	require.NoError(t, m.DragOutHandle(a.ID, pt(2, 1)))
	require.NoError(t, m.Transform(vector.Translate(10, 10)))
	assert.Equal(t, pt(11, 11), a.Pos)
	assert.Equal(t, pt(12, 11), a.CtrlOut.Pos)
	assert.ErrorIs(t, m.Transform(vector.Scale(0, 0)), ErrInvalidTransform)
}

func TestSnapshot_DeepCopyAndRestore(t *testing.T) {
	m := New()
	a := m.StartSubpath(pt(0, 0))
	a.Active = true
	snap := m.Snapshot()

	require.NoError(t, m.MoveAnchor(a.ID, pt(50, 50)))
	assert.Equal(t, pt(0, 0), snap.Path.SubPaths[0].Anchors[0].Pos, "snapshot must not alias live anchors")
	assert.False(t, snap.Path.SubPaths[0].Anchors[0].Active, "hover flag is not part of history")

	m.Restore(snap)
	assert.Equal(t, pt(0, 0), m.Anchor(a.ID).Pos)

	// ids keep growing after restore
	b := m.StartSubpath(pt(5, 5))
	assert.Greater(t, b.ID, a.ID)
}

func TestSnapshot_JSON(t *testing.T) {
	m := New()
	m.StartSubpath(pt(3, 4))
	b, err := json.Marshal(m.Snapshot())
	require.NoError(t, err)

	var s Snapshot
	require.NoError(t, json.Unmarshal(b, &s))
	assert.True(t, s.Equal(m.Snapshot()))

	b, err = json.Marshal(New().Snapshot())
	require.NoError(t, err)
	assert.Equal(t, "null", string(b))
}

func TestCheckConsistency_DetectsBrokenInvariants(t *testing.T) {
	m := New()
	a := m.StartSubpath(pt(0, 0))
	a.CtrlIn.Pos = pt(5, 5)
	m.ActiveSubpath().Closed = true
	err := m.CheckConsistency()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unmirrored")
	assert.Contains(t, err.Error(), "closed but not finished")
}

func TestSnapshotSizeGrowsWithAnchors(t *testing.T) {
	m := New()
	assert.Zero(t, m.Snapshot().Size())
	m.StartSubpath(vector.Pt{})
	one := m.Snapshot().Size()
	_, err := m.AppendAnchor(vector.Pt{X: 10})
	require.NoError(t, err)
	assert.Greater(t, m.Snapshot().Size(), one)
}
