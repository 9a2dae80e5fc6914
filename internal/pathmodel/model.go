/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package pathmodel

import (
	"errors"

	"penpath/internal/vector"
)

// Precondition errors. Callers compare with errors.Is; the model is left
// untouched whenever one of these is returned.
var (
	ErrNoPath           = errors.New("pathmodel: no path")
	ErrNoActiveSubpath  = errors.New("pathmodel: no active subpath")
	ErrSubpathFinished  = errors.New("pathmodel: subpath is finished")
	ErrTooFewAnchors    = errors.New("pathmodel: closing needs at least 2 anchors")
	ErrAlreadyClosed    = errors.New("pathmodel: subpath already closed")
	ErrNotFound         = errors.New("pathmodel: element not found")
	ErrEmptySubpath     = errors.New("pathmodel: subpath has no anchors")
	ErrInvalidTransform = errors.New("pathmodel: transform is not invertible")
)

// Model owns at most one Path. A nil Path means "no path": it is created by
// the first StartSubpath and removed when its last subpath goes away.
type Model struct {
	Path   *Path
	nextID ID
}

func New() *Model { return &Model{} }

// HasPath reports whether a path exists.
func (m *Model) HasPath() bool { return m.Path != nil }

func (m *Model) newID() ID {
	m.nextID++
	return m.nextID
}

// bumpIDs makes sure ids handed out later never collide with ids already in p.
func (m *Model) bumpIDs(p *Path) {
	if p == nil {
		return
	}
	if p.ID > m.nextID {
		m.nextID = p.ID
	}
	for _, sp := range p.SubPaths {
		if sp.ID > m.nextID {
			m.nextID = sp.ID
		}
		for _, a := range sp.Anchors {
			if a.ID > m.nextID {
				m.nextID = a.ID
			}
		}
	}
}

// ActiveSubpath returns the subpath receiving new anchors, or nil.
func (m *Model) ActiveSubpath() *SubPath { return m.Path.Active() }

// SubPath resolves a subpath id.
func (m *Model) SubPath(id ID) *SubPath {
	if m.Path == nil {
		return nil
	}
	if i := m.Path.indexOf(id); i >= 0 {
		return m.Path.SubPaths[i]
	}
	return nil
}

// Anchor resolves an anchor id.
func (m *Model) Anchor(id ID) *AnchorPoint {
	if m.Path == nil {
		return nil
	}
	for _, sp := range m.Path.SubPaths {
		if i := sp.indexOf(id); i >= 0 {
			return sp.Anchors[i]
		}
	}
	return nil
}

// Owner returns the subpath an anchor belongs to, following its back-reference.
func (m *Model) Owner(a *AnchorPoint) *SubPath {
	if a == nil {
		return nil
	}
	return m.SubPath(a.SubPathID)
}

// Anchors returns every anchor in path order.
func (m *Model) Anchors() []*AnchorPoint {
	if m.Path == nil {
		return nil
	}
	out := make([]*AnchorPoint, 0, m.Path.NumAnchors())
	for _, sp := range m.Path.SubPaths {
		out = append(out, sp.Anchors...)
	}
	return out
}

// ClearActiveFlags resets all hover highlights.
func (m *Model) ClearActiveFlags() {
	for _, a := range m.Anchors() {
		a.Active = false
		a.CtrlIn.Active = false
		a.CtrlOut.Active = false
	}
}

func (m *Model) newAnchor(sp *SubPath, p vector.Pt) *AnchorPoint {
	return &AnchorPoint{
		ID:        m.newID(),
		SubPathID: sp.ID,
		Pos:       p,
		CtrlIn:    ControlPoint{Pos: p},
		CtrlOut:   ControlPoint{Pos: p},
		Type:      Symmetric,
	}
}

// StartSubpath creates a new subpath holding one anchor at p and makes it
// active. The path is created if absent. A previously active subpath that is
// still open is finished first, so at most one subpath accepts anchors.
func (m *Model) StartSubpath(p vector.Pt) *AnchorPoint {
	if m.Path == nil {
		m.Path = &Path{ID: m.newID()}
	}
	if prev := m.Path.Active(); prev != nil && !prev.Finished {
		prev.Finished = true
	}
	sp := &SubPath{ID: m.newID(), PathID: m.Path.ID}
	a := m.newAnchor(sp, p)
	sp.Anchors = append(sp.Anchors, a)
	m.Path.SubPaths = append(m.Path.SubPaths, sp)
	m.Path.ActiveID = sp.ID
	return a
}

// AppendAnchor adds an anchor with retracted handles to the active subpath.
func (m *Model) AppendAnchor(p vector.Pt) (*AnchorPoint, error) {
	sp := m.ActiveSubpath()
	if sp == nil {
		return nil, ErrNoActiveSubpath
	}
	if !sp.AcceptsAnchors() {
		return nil, ErrSubpathFinished
	}
	a := m.newAnchor(sp, p)
	sp.Anchors = append(sp.Anchors, a)
	return a, nil
}

// CloseSubpath closes the active subpath back to its first anchor.
func (m *Model) CloseSubpath() error {
	sp := m.ActiveSubpath()
	if sp == nil {
		return ErrNoActiveSubpath
	}
	if sp.Closed {
		return ErrAlreadyClosed
	}
	if len(sp.Anchors) < 2 {
		return ErrTooFewAnchors
	}
	sp.Closed = true
	sp.Finished = true
	return nil
}

// FinishSubpath ends the active subpath as an open path.
func (m *Model) FinishSubpath() error {
	sp := m.ActiveSubpath()
	if sp == nil {
		return ErrNoActiveSubpath
	}
	if sp.Finished {
		return ErrSubpathFinished
	}
	if len(sp.Anchors) == 0 {
		return ErrEmptySubpath
	}
	sp.Finished = true
	return nil
}
