/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package pathmodel holds the geometric data edited by the pen tool:
// a Path owns SubPaths, a SubPath owns AnchorPoints and every anchor owns
// two control points. Parent links are ids resolved through the Model, so
// the tree has a single owner and deletions never leave dangling pointers.
package pathmodel

import (
	"fmt"
	"strings"

	"penpath/internal/vector"
)

// ID identifies a path, subpath or anchor within one Model.
type ID uint64

// AnchorType controls how the two handles of an anchor are coupled.
type AnchorType uint8

const (
	// Symmetric handles mirror each other through the anchor.
	Symmetric AnchorType = iota
	// Smooth handles stay collinear through the anchor, lengths are independent.
	Smooth
	// Cusp handles move independently.
	Cusp
)

func (t AnchorType) String() string {
	switch t {
	case Symmetric:
		return "SYMMETRIC"
	case Smooth:
		return "SMOOTH"
	case Cusp:
		return "CUSP"
	}
	return fmt.Sprintf("AnchorType(%d)", uint8(t))
}

// ParseAnchorType accepts the names printed by String, case-insensitive.
func ParseAnchorType(s string) (AnchorType, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "SYMMETRIC":
		return Symmetric, nil
	case "SMOOTH":
		return Smooth, nil
	case "CUSP":
		return Cusp, nil
	}
	return 0, fmt.Errorf("unknown anchor type %q", s)
}

// Side selects one of the two handles of an anchor.
type Side uint8

const (
	In Side = iota
	Out
)

func (s Side) String() string {
	if s == In {
		return "in"
	}
	return "out"
}

// Opposite returns the other handle.
func (s Side) Opposite() Side {
	if s == In {
		return Out
	}
	return In
}

// ControlPoint is a handle owned by exactly one side of an anchor.
type ControlPoint struct {
	Pos vector.Pt `json:"pos"`
	// Active is a hover highlight; it never reaches snapshots or history.
	Active bool `json:"-" copier:"-"`
}

// AnchorPoint is a vertex of a subpath with its incoming and outgoing handles.
type AnchorPoint struct {
	ID        ID           `json:"id"`
	SubPathID ID           `json:"subpath"`
	Pos       vector.Pt    `json:"pos"`
	CtrlIn    ControlPoint `json:"in"`
	CtrlOut   ControlPoint `json:"out"`
	Type      AnchorType   `json:"type"`
	Active    bool         `json:"-" copier:"-"`
}

// Handle returns the control point on the given side.
func (a *AnchorPoint) Handle(s Side) *ControlPoint {
	if s == In {
		return &a.CtrlIn
	}
	return &a.CtrlOut
}

// IsRetracted reports whether the handle on side s coincides with the anchor.
func (a *AnchorPoint) IsRetracted(s Side) bool {
	return a.Handle(s).Pos.Eq(a.Pos, vector.Epsilon)
}

// BothRetracted reports whether the anchor has no visible handles.
func (a *AnchorPoint) BothRetracted() bool {
	return a.IsRetracted(In) && a.IsRetracted(Out)
}

func (a *AnchorPoint) String() string {
	return fmt.Sprintf("anchor#%d %s (%.1f,%.1f) in=(%.1f,%.1f) out=(%.1f,%.1f)",
		a.ID, a.Type, a.Pos.X, a.Pos.Y, a.CtrlIn.Pos.X, a.CtrlIn.Pos.Y, a.CtrlOut.Pos.X, a.CtrlOut.Pos.Y)
}

// SubPath is one continuous chain of anchors.
type SubPath struct {
	ID       ID             `json:"id"`
	PathID   ID             `json:"path"`
	Anchors  []*AnchorPoint `json:"anchors"`
	Closed   bool           `json:"closed"`
	Finished bool           `json:"finished"`
}

func (sp *SubPath) Len() int { return len(sp.Anchors) }

// First returns the first anchor or nil.
func (sp *SubPath) First() *AnchorPoint {
	if len(sp.Anchors) == 0 {
		return nil
	}
	return sp.Anchors[0]
}

// Last returns the most recently appended anchor or nil.
func (sp *SubPath) Last() *AnchorPoint {
	if len(sp.Anchors) == 0 {
		return nil
	}
	return sp.Anchors[len(sp.Anchors)-1]
}

// CanClose reports whether CloseSubpath would succeed.
func (sp *SubPath) CanClose() bool {
	return len(sp.Anchors) >= 2 && !sp.Closed
}

// AcceptsAnchors reports whether new anchors may be appended by the builder.
func (sp *SubPath) AcceptsAnchors() bool {
	return !sp.Finished && !sp.Closed
}

func (sp *SubPath) indexOf(id ID) int {
	for i, a := range sp.Anchors {
		if a.ID == id {
			return i
		}
	}
	return -1
}

// Path is an ordered set of subpaths. Order is z-order when combining into a region.
type Path struct {
	ID       ID         `json:"id"`
	SubPaths []*SubPath `json:"subpaths"`
	// ActiveID is the subpath that receives new anchors, zero if none.
	ActiveID ID `json:"active"`
}

// Active returns the subpath receiving new anchors or nil.
func (p *Path) Active() *SubPath {
	if p == nil || p.ActiveID == 0 {
		return nil
	}
	for _, sp := range p.SubPaths {
		if sp.ID == p.ActiveID {
			return sp
		}
	}
	return nil
}

// NumAnchors counts anchors over all subpaths.
func (p *Path) NumAnchors() int {
	if p == nil {
		return 0
	}
	n := 0
	for _, sp := range p.SubPaths {
		n += len(sp.Anchors)
	}
	return n
}

func (p *Path) indexOf(id ID) int {
	for i, sp := range p.SubPaths {
		if sp.ID == id {
			return i
		}
	}
	return -1
}
