/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package script

import (
	"path/filepath"
	"strings"
	"testing"
)

func TestParseStepsAndLines(t *testing.T) {
	input := `version: 1
name: basic
view: {scale: 2, offset: [10, 5]}
steps:
  - {op: click, at: [0, 0]}
  - op: press
    at: [10, 0]
    mods: shift+alt
  - {op: undo, count: 2}
  - {op: mode, mode: edit}
`
	s, errs := Parse([]byte(input))
	if len(errs) != 0 {
		t.Fatalf("unexpected errors: %+v", errs)
	}
	if s.Name != "basic" || s.View.Scale != 2 || len(s.View.Offset) != 2 {
		t.Fatalf("header not decoded: %+v", s)
	}
	if len(s.Steps) != 4 {
		t.Fatalf("expected 4 steps, got %d", len(s.Steps))
	}
	if s.Steps[1].Op != OpPress || s.Steps[1].Mods != "shift+alt" || s.Steps[1].Line != 6 {
		t.Fatalf("unexpected press step: %+v", s.Steps[1])
	}
	if s.Steps[2].Count != 2 || s.Steps[3].Mode != "edit" {
		t.Fatalf("unexpected steps: %+v", s.Steps[2:])
	}
}

func TestParseAcceptsJSON(t *testing.T) {
	s, errs := Parse([]byte(`{"version": 1, "steps": [{"op": "click", "at": [1, 2]}]}`))
	if len(errs) != 0 {
		t.Fatalf("unexpected errors: %+v", errs)
	}
	if len(s.Steps) != 1 || s.Steps[0].At[1] != 2 {
		t.Fatalf("unexpected steps: %+v", s.Steps)
	}
}

func TestParseSchemaErrorsCarryLines(t *testing.T) {
	input := `version: 1
steps:
  - {op: click, at: [0, 0]}
  - {op: jump, at: [1, 1]}
`
	_, errs := Parse([]byte(input))
	if len(errs) == 0 {
		t.Fatalf("expected a schema error for unknown op")
	}
	found := false
	for _, e := range errs {
		if e.Line == 4 && strings.HasPrefix(e.Field, "steps.1") {
			found = true
		}
	}
	if !found {
		t.Fatalf("no error points at line 4: %+v", errs)
	}
}

func TestParseArgumentChecks(t *testing.T) {
	input := `version: 1
steps:
  - {op: press}
  - {op: click, at: [0, 0], mods: hyper}
  - {op: convert, rule: winding}
  - {op: expect}
`
	_, errs := Parse([]byte(input))
	if len(errs) != 4 {
		t.Fatalf("expected 4 errors, got %d: %+v", len(errs), errs)
	}
	if errs[0].Line != 3 || !strings.Contains(errs[0].Message, "at: [x, y]") {
		t.Fatalf("unexpected first error: %+v", errs[0])
	}
	if !strings.Contains(errs[1].Error(), "line 4") {
		t.Fatalf("Error() lacks line: %q", errs[1].Error())
	}
}

func TestParseRejectsBrokenYAML(t *testing.T) {
	if _, errs := Parse([]byte("version: [1")); len(errs) != 1 {
		t.Fatalf("expected one yaml error, got %+v", errs)
	}
	if _, errs := Parse(nil); len(errs) != 1 {
		t.Fatalf("expected one error for empty input, got %+v", errs)
	}
}

func TestLoadFile(t *testing.T) {
	s, err := Load(filepath.Join("testdata", "triangle.yaml"))
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if s.Name != "triangle" || len(s.Steps) == 0 {
		t.Fatalf("unexpected script: %+v", s)
	}
	if _, err := Load(filepath.Join("testdata", "missing.yaml")); err == nil {
		t.Fatalf("expected error for missing file")
	}
}
