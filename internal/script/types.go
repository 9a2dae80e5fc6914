/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package script

import "fmt"

// Script is a recorded or hand-written pointer session. YAML and JSON are
// both accepted; JSON is valid YAML.
//
//	version: 1
//	name: triangle
//	view: {scale: 2}
//	steps:
//	  - {op: click, at: [0, 0]}
//	  - {op: press, at: [40, 0]}
//	  - {op: drag, at: [60, 10], mods: shift}
//	  - {op: release, at: [60, 10]}
//	  - {op: undo}
//	  - {op: expect, expect: {state: MOVING_TO_NEXT_ANCHOR, anchors: 1}}
type Script struct {
	Version int    `yaml:"version" json:"version"`
	Name    string `yaml:"name,omitempty" json:"name,omitempty"`
	View    View   `yaml:"view,omitempty" json:"view,omitempty"`

	// Tolerance and DragThreshold override the session defaults (pixels).
	Tolerance     float64  `yaml:"tolerance,omitempty" json:"tolerance,omitempty"`
	DragThreshold *float64 `yaml:"drag_threshold,omitempty" json:"drag_threshold,omitempty"`
	Steps         []Step   `yaml:"steps" json:"steps"`
}

// View is the path-to-screen mapping the script was recorded with.
type View struct {
	Scale  float64   `yaml:"scale,omitempty" json:"scale,omitempty"`
	Offset []float64 `yaml:"offset,omitempty" json:"offset,omitempty"`
}

// Op names a step.
type Op string

const (
	OpPress      Op = "press"
	OpDrag       Op = "drag"
	OpRelease    Op = "release"
	OpMove       Op = "move"
	OpClick      Op = "click"
	OpUndo       Op = "undo"
	OpRedo       Op = "redo"
	OpMode       Op = "mode"
	OpAbort      Op = "abort"
	OpFinish     Op = "finish"
	OpClose      Op = "close"
	OpDelete     Op = "delete"
	OpDeletePath Op = "delete-path"
	OpNudge      Op = "nudge"
	OpConvert    Op = "convert"
	OpExpect     Op = "expect"
)

// pointerOps take a position in At.
var pointerOps = map[Op]bool{OpPress: true, OpDrag: true, OpRelease: true, OpMove: true, OpClick: true}

// Step is one script instruction. At is a point for pointer ops and the
// offset for nudge. Count repeats undo and redo.
type Step struct {
	Op     Op        `yaml:"op" json:"op"`
	At     []float64 `yaml:"at,omitempty" json:"at,omitempty"`
	Mods   string    `yaml:"mods,omitempty" json:"mods,omitempty"`
	Count  int       `yaml:"count,omitempty" json:"count,omitempty"`
	Mode   string    `yaml:"mode,omitempty" json:"mode,omitempty"`
	Rule   string    `yaml:"rule,omitempty" json:"rule,omitempty"`
	Expect *Expect   `yaml:"expect,omitempty" json:"expect,omitempty"`

	// Line is the 1-based source line of the step.
	Line int `yaml:"-" json:"-"`
}

// Expect asserts session state at a point in the script. Unset fields are
// not checked.
type Expect struct {
	State    string  `yaml:"state,omitempty" json:"state,omitempty"`
	Mode     string  `yaml:"mode,omitempty" json:"mode,omitempty"`
	Anchors  *int    `yaml:"anchors,omitempty" json:"anchors,omitempty"`
	Subpaths *int    `yaml:"subpaths,omitempty" json:"subpaths,omitempty"`
	Undo     *string `yaml:"undo,omitempty" json:"undo,omitempty"`
	Redo     *string `yaml:"redo,omitempty" json:"redo,omitempty"`
	Closed   *bool   `yaml:"closed,omitempty" json:"closed,omitempty"`
}

// Error represents a parse or validation error with position context.
type Error struct {
	Line    int
	Column  int
	Field   string
	Message string
}

func (e Error) Error() string {
	switch {
	case e.Line > 0 && e.Field != "":
		return fmt.Sprintf("line %d: %s: %s", e.Line, e.Field, e.Message)
	case e.Line > 0:
		return fmt.Sprintf("line %d: %s", e.Line, e.Message)
	case e.Field != "":
		return e.Field + ": " + e.Message
	}
	return e.Message
}
