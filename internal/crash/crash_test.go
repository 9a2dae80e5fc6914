/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package crash

import (
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestWriteReportCreatesFileInTemp(t *testing.T) {
	path, err := writeReport(nil, "boom", []byte("stacktrace"))
	if err != nil {
		t.Fatalf("writeReport error: %v", err)
	}
	t.Cleanup(func() { _ = os.Remove(path) })
	b, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read report: %v", err)
	}
	s := string(b)
	if !strings.Contains(s, "penpath crash report") || !strings.Contains(s, "Panic: boom") {
		t.Fatalf("report content: %s", s)
	}
}

func TestRecoverWritesReportAndDump(t *testing.T) {
	oldStderr := os.Stderr
	r, w, _ := os.Pipe()
	os.Stderr = w
	defer func() {
		_ = w.Close()
		os.Stderr = oldStderr
		_, _ = io.Copy(io.Discard, r)
	}()

	code := 0
	oldExit := exitFn
	exitFn = func(c int) { code = c }
	defer func() { exitFn = oldExit }()

	dir := t.TempDir()
	func() {
		defer Recover(&Rescue{Dir: dir, Dump: func() ([]byte, error) { return []byte(`{"path":null}`), nil }})
		panic("boom")
	}()

	if code != 2 {
		t.Fatalf("exit code = %d, want 2", code)
	}
	reports, _ := filepath.Glob(filepath.Join(dir, "crash-*.log"))
	dumps, _ := filepath.Glob(filepath.Join(dir, "crash-*-path.json"))
	if len(reports) != 1 || len(dumps) != 1 {
		t.Fatalf("reports=%v dumps=%v", reports, dumps)
	}
	b, _ := os.ReadFile(dumps[0])
	if string(b) != `{"path":null}` {
		t.Fatalf("dump = %q", b)
	}
}

func TestRecoverWithoutPanicIsNoop(t *testing.T) {
	oldExit := exitFn
	exitFn = func(int) { t.Fatalf("exit must not be called") }
	defer func() { exitFn = oldExit }()
	func() {
		defer Recover(nil)
	}()
}

func TestDumpErrorStillExits(t *testing.T) {
	oldStderr := os.Stderr
	os.Stderr, _ = os.OpenFile(os.DevNull, os.O_WRONLY, 0)
	defer func() { os.Stderr = oldStderr }()
	code := 0
	oldExit := exitFn
	exitFn = func(c int) { code = c }
	defer func() { exitFn = oldExit }()

	dir := t.TempDir()
	func() {
		defer Recover(&Rescue{Dir: dir, Dump: func() ([]byte, error) { return nil, errors.New("no model") }})
		panic("boom")
	}()
	if code != 2 {
		t.Fatalf("exit code = %d", code)
	}
	if dumps, _ := filepath.Glob(filepath.Join(dir, "*-path.json")); len(dumps) != 0 {
		t.Fatalf("no dump expected, got %v", dumps)
	}
}
