/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package crash turns a panic into a report file plus, when available, a
// JSON dump of the path being edited, and exits with code 2.
package crash

import (
	"bytes"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"runtime/debug"
	"time"

	applog "penpath/internal/log"
	"penpath/internal/telemetry"
	"penpath/internal/version"
)

// exitFn is swapped in tests.
var exitFn = os.Exit

// Rescue describes what to preserve when the process dies. Dir defaults to
// the temp directory; Dump returns the current path as JSON.
type Rescue struct {
	Dir  string
	Dump func() ([]byte, error)
}

// Recover captures a panic, logs it, writes a report and the path dump,
// then exits. Use as: defer crash.Recover(&crash.Rescue{...})
func Recover(r *Rescue) {
	v := recover()
	if v == nil {
		return
	}
	l := applog.WithComponent("crash")
	stack := debug.Stack()
	l.Error("panic recovered", slog.Any("panic", v), slog.String("stack", string(stack)))

	reportPath, err := writeReport(r, v, stack)
	if err != nil {
		l.Error("crash report not written", slog.Any("err", err))
	}
	if dump, err := writeDump(r); err != nil {
		l.Error("path dump failed", slog.Any("err", err))
	} else if dump != "" {
		l.Info("path dump written", slog.String("path", dump))
	}

	_, _ = fmt.Fprintf(os.Stderr, "A fatal error occurred. A crash report was saved to: %s\n", reportPath)
	_, _ = fmt.Fprintf(os.Stderr, "Version: %s\nOS/Arch: %s/%s\n", version.String(), runtime.GOOS, runtime.GOARCH)
	exitFn(2)
}

func reportDir(r *Rescue) string {
	if r != nil && r.Dir != "" {
		_ = os.MkdirAll(r.Dir, 0o755)
		return r.Dir
	}
	return os.TempDir()
}

func writeReport(r *Rescue, panicVal any, stack []byte) (string, error) {
	stamp := time.Now().Format("20060102-150405")
	path := filepath.Join(reportDir(r), fmt.Sprintf("crash-%s.log", stamp))

	var buf bytes.Buffer
	_, _ = fmt.Fprintf(&buf, "penpath crash report\n")
	_, _ = fmt.Fprintf(&buf, "Timestamp: %s\n", time.Now().Format(time.RFC3339))
	_, _ = fmt.Fprintf(&buf, "Version: %s\n", version.String())
	_, _ = fmt.Fprintf(&buf, "OS/Arch: %s/%s\n", runtime.GOOS, runtime.GOARCH)
	_, _ = fmt.Fprintf(&buf, "\nPanic: %v\n\n", panicVal)
	_, _ = fmt.Fprintf(&buf, "Stack:\n%s\n", stack)

	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		return path, err
	}
	// the report carries no path geometry, only the stack
	telemetry.UploadCrash(buf.Bytes())
	return path, nil
}

func writeDump(r *Rescue) (string, error) {
	if r == nil || r.Dump == nil {
		return "", nil
	}
	b, err := r.Dump()
	if err != nil {
		return "", err
	}
	path := filepath.Join(reportDir(r), fmt.Sprintf("crash-%s-path.json", time.Now().Format("20060102-150405")))
	return path, os.WriteFile(path, b, 0o644)
}
