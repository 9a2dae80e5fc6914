/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package pathmodel

// Removed tells how far a deletion cascaded.
type Removed uint8

const (
	RemovedAnchor Removed = iota
	RemovedSubPath
	RemovedPath
)

func (r Removed) String() string {
	switch r {
	case RemovedSubPath:
		return "subpath"
	case RemovedPath:
		return "path"
	}
	return "anchor"
}

// DeleteAnchor removes an anchor. Removing the last anchor of a subpath
// removes the subpath, removing the last subpath removes the path.
func (m *Model) DeleteAnchor(id ID) (Removed, error) {
	a := m.Anchor(id)
	if a == nil {
		return RemovedAnchor, ErrNotFound
	}
	sp := m.Owner(a)
	if sp == nil {
		return RemovedAnchor, ErrNotFound
	}
	if len(sp.Anchors) == 1 {
		return m.DeleteSubpath(sp.ID)
	}
	i := sp.indexOf(id)
	sp.Anchors = append(sp.Anchors[:i], sp.Anchors[i+1:]...)
	if sp.Closed && len(sp.Anchors) < 2 {
		// a single anchor cannot loop back to itself
		sp.Closed = false
	}
	return RemovedAnchor, nil
}

// DeleteSubpath removes a subpath and, if it was the last, the path.
func (m *Model) DeleteSubpath(id ID) (Removed, error) {
	if m.Path == nil {
		return RemovedSubPath, ErrNoPath
	}
	i := m.Path.indexOf(id)
	if i < 0 {
		return RemovedSubPath, ErrNotFound
	}
	if len(m.Path.SubPaths) == 1 {
		return RemovedPath, m.DeletePath()
	}
	m.Path.SubPaths = append(m.Path.SubPaths[:i], m.Path.SubPaths[i+1:]...)
	if m.Path.ActiveID == id {
		m.Path.ActiveID = m.Path.SubPaths[len(m.Path.SubPaths)-1].ID
	}
	return RemovedSubPath, nil
}

// DeletePath drops the whole path.
func (m *Model) DeletePath() error {
	if m.Path == nil {
		return ErrNoPath
	}
	m.Path = nil
	return nil
}
