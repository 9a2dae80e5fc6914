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
	"fmt"
	"unsafe"

	"github.com/jinzhu/copier"
)

// Snapshot is an immutable deep copy of the path, used as undo payload.
// A nil Path means "no path".
type Snapshot struct {
	Path *Path
}

// Snapshot deep-copies the current path. Hover highlights are not copied.
func (m *Model) Snapshot() Snapshot {
	return Snapshot{Path: clonePath(m.Path)}
}

// Restore replaces the model contents with a copy of s. The snapshot stays
// reusable, so the same undo record can be replayed many times.
func (m *Model) Restore(s Snapshot) {
	m.Path = clonePath(s.Path)
	m.bumpIDs(m.Path)
}

// Equal reports whether two snapshots describe the same geometry and flags.
func (s Snapshot) Equal(o Snapshot) bool {
	a, errA := json.Marshal(s.Path)
	b, errB := json.Marshal(o.Path)
	return errA == nil && errB == nil && string(a) == string(b)
}

// Size estimates the bytes retained by the snapshot.
func (s Snapshot) Size() int {
	if s.Path == nil {
		return 0
	}
	n := int(unsafe.Sizeof(Path{}))
	for _, sp := range s.Path.SubPaths {
		n += int(unsafe.Sizeof(SubPath{})) + len(sp.Anchors)*int(unsafe.Sizeof(AnchorPoint{})+unsafe.Sizeof(uintptr(0)))
	}
	return n
}

// MarshalJSON encodes the snapshot for the history journal.
func (s Snapshot) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.Path)
}

// UnmarshalJSON decodes a journal entry.
func (s *Snapshot) UnmarshalJSON(b []byte) error {
	var p *Path
	if err := json.Unmarshal(b, &p); err != nil {
		return fmt.Errorf("decode path snapshot: %w", err)
	}
	s.Path = p
	return nil
}

func clonePath(p *Path) *Path {
	if p == nil {
		return nil
	}
	var out Path
	if err := copier.CopyWithOption(&out, p, copier.Option{DeepCopy: true}); err != nil {
		// copier only fails on mismatched kinds, impossible for identical types
		panic(fmt.Sprintf("pathmodel: clone path: %v", err))
	}
	return &out
}
