/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package main

import (
	"testing"

	"penpath/internal/config"
	"penpath/internal/export"
)

func TestParseOutputs(t *testing.T) {
	outs, err := parseOutputs([]string{"--svg", "a.svg", "--pdf", "b.pdf"})
	if err != nil {
		t.Fatalf("parseOutputs: %v", err)
	}
	if len(outs) != 2 || outs[0] != (output{export.FormatSVG, "a.svg"}) || outs[1] != (output{export.FormatPDF, "b.pdf"}) {
		t.Fatalf("unexpected outputs: %v", outs)
	}
	// the flag wins over the extension
	outs, err = parseOutputs([]string{"--svg", "out.png"})
	if err != nil || len(outs) != 1 || outs[0].Format != export.FormatSVG {
		t.Fatalf("flag format not honored: %v %v", outs, err)
	}
	if _, err := parseOutputs([]string{"--png"}); err == nil {
		t.Fatalf("missing file name must fail")
	}
	if _, err := parseOutputs([]string{"--eps", "x"}); err == nil {
		t.Fatalf("unknown flag must fail")
	}
}

func TestPenOptionsFollowConfig(t *testing.T) {
	cfg := config.Defaults()
	cfg.Pen.CloseTolerance = 14
	cfg.Pen.DragThreshold = 0
	a := &app{cfg: cfg}
	opts := a.penOptions()
	if opts.Proximity.Tolerance != 14 || opts.DragThreshold != 0 {
		t.Fatalf("options: %+v", opts)
	}
}
