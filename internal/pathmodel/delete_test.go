/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package pathmodel

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDeleteAnchor_Cascade(t *testing.T) {
	m := New()
	a := m.StartSubpath(pt(0, 0))
	b, err := m.AppendAnchor(pt(10, 0))
	require.NoError(t, err)

	r, err := m.DeleteAnchor(b.ID)
	require.NoError(t, err)
	assert.Equal(t, RemovedAnchor, r)
	assert.Equal(t, 1, m.ActiveSubpath().Len())

	r, err = m.DeleteAnchor(a.ID)
	require.NoError(t, err)
	assert.Equal(t, RemovedPath, r)
	assert.False(t, m.HasPath())
}

func TestDeleteAnchor_LastOfOneSubpathKeepsPath(t *testing.T) {
	m := New()
	m.StartSubpath(pt(0, 0))
	_, err := m.AppendAnchor(pt(10, 0))
	require.NoError(t, err)
	lone := m.StartSubpath(pt(100, 100))

	r, err := m.DeleteAnchor(lone.ID)
	require.NoError(t, err)
	assert.Equal(t, RemovedSubPath, r)
	require.True(t, m.HasPath())
	assert.Len(t, m.Path.SubPaths, 1)
	assert.Equal(t, m.Path.SubPaths[0].ID, m.Path.ActiveID)
	assert.NoError(t, m.CheckConsistency())
}

func TestDeleteAnchor_ClosedPairOpens(t *testing.T) {
	m := New()
	m.StartSubpath(pt(0, 0))
	b, _ := m.AppendAnchor(pt(10, 0))
	require.NoError(t, m.CloseSubpath())

	_, err := m.DeleteAnchor(b.ID)
	require.NoError(t, err)
	sp := m.ActiveSubpath()
	assert.False(t, sp.Closed)
	assert.True(t, sp.Finished)
	assert.NoError(t, m.CheckConsistency())
}

func TestDeleteErrors(t *testing.T) {
	m := New()
	_, err := m.DeleteAnchor(42)
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = m.DeleteSubpath(42)
	assert.ErrorIs(t, err, ErrNoPath)
	assert.ErrorIs(t, m.DeletePath(), ErrNoPath)
}
