/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package pen

import (
	"fmt"
	"strings"

	"penpath/internal/vector"
)

// Modifiers is the bitset of keys held during a pointer event.
type Modifiers uint8

const (
	// Constrain snaps to 45 degree directions (shift).
	Constrain Modifiers = 1 << iota
	// EditPrevious redirects a gesture to an existing anchor or handle (ctrl).
	EditPrevious
	// Break splits a handle pair or drags out retracted handles (alt).
	Break
	// Finish ends the active subpath without closing it.
	Finish
)

// None is the empty modifier set.
const None Modifiers = 0

func (m Modifiers) Has(f Modifiers) bool { return m&f != 0 }

func (m Modifiers) String() string {
	if m == None {
		return "none"
	}
	var parts []string
	for _, f := range []struct {
		bit  Modifiers
		name string
	}{{Constrain, "constrain"}, {EditPrevious, "edit-previous"}, {Break, "break"}, {Finish, "finish"}} {
		if m.Has(f.bit) {
			parts = append(parts, f.name)
		}
	}
	return strings.Join(parts, "+")
}

// ParseModifiers accepts names joined by '+' or ',' (e.g. "shift+alt").
// Key names are accepted as aliases.
func ParseModifiers(s string) (Modifiers, error) {
	var m Modifiers
	for _, raw := range strings.FieldsFunc(s, func(r rune) bool { return r == '+' || r == ',' || r == ' ' }) {
		switch strings.ToLower(raw) {
		case "none":
		case "constrain", "shift":
			m |= Constrain
		case "edit-previous", "editprevious", "ctrl", "control":
			m |= EditPrevious
		case "break", "alt":
			m |= Break
		case "finish":
			m |= Finish
		default:
			return m, fmt.Errorf("unknown modifier %q", raw)
		}
	}
	return m, nil
}

// EventKind is the pointer action.
type EventKind uint8

const (
	Press EventKind = iota
	Drag
	Release
	Move
)

func (k EventKind) String() string {
	switch k {
	case Press:
		return "press"
	case Drag:
		return "drag"
	case Release:
		return "release"
	case Move:
		return "move"
	}
	return fmt.Sprintf("EventKind(%d)", uint8(k))
}

// ParseEventKind is the inverse of EventKind.String.
func ParseEventKind(s string) (EventKind, error) {
	for _, k := range []EventKind{Press, Drag, Release, Move} {
		if strings.EqualFold(s, k.String()) {
			return k, nil
		}
	}
	return 0, fmt.Errorf("unknown event kind %q", s)
}

// Event is a pointer event in path coordinates.
type Event struct {
	Kind EventKind
	Pos  vector.Pt
	Mods Modifiers
}

func (e Event) String() string {
	return fmt.Sprintf("%s(%.1f,%.1f %s)", e.Kind, e.Pos.X, e.Pos.Y, e.Mods)
}
