/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except
 * in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the
 *  specific language governing permissions and limitations under the License.
 */

package telemetry

import (
	"bufio"
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"penpath/internal/undo"
)

func TestClientPostsEventsAndCrash(t *testing.T) {
	var mu sync.Mutex
	var events, crashes [][]byte
	mux := http.NewServeMux()
	collect := func(dst *[][]byte) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			b, _ := io.ReadAll(r.Body)
			mu.Lock()
			*dst = append(*dst, b)
			mu.Unlock()
		}
	}
	mux.HandleFunc("/events", collect(&events))
	mux.HandleFunc("/crash", collect(&crashes))
	srv := httptest.NewServer(mux)
	defer srv.Close()

	c := New(Config{OptIn: true, EventsURL: srv.URL + "/events", CrashURL: srv.URL + "/crash", Timeout: 2 * time.Second})
	if !c.Enabled() {
		t.Fatalf("expected client to be enabled")
	}
	c.Event("started", map[string]any{"mode": "BUILD"})
	c.Close()
	c.UploadCrash([]byte("panic: boom"))

	mu.Lock()
	defer mu.Unlock()
	if len(events) != 1 {
		t.Fatalf("events = %d, want 1", len(events))
	}
	var m map[string]any
	if err := json.Unmarshal(events[0], &m); err != nil {
		t.Fatalf("bad event json: %v", err)
	}
	if m["name"] != "started" || m["mode"] != "BUILD" || m["version"] == "" {
		t.Fatalf("unexpected payload: %v", m)
	}
	if len(crashes) != 1 || !bytes.Equal(crashes[0], []byte("panic: boom")) {
		t.Fatalf("crash upload missing: %q", crashes)
	}
}

func TestHistoryEventsGoToFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "events.jsonl")
	c := New(Config{OptIn: true, File: path})

	h := undo.NewManager(undo.Config{})
	h.OnChange(c.ObserveHistory)
	h.Record("Subpath Start", func() error { return nil }, func() error { return nil })
	h.Record("Add Anchor Point", func() error { return nil }, func() error { return nil })
	if _, err := h.Undo(); err != nil {
		t.Fatal(err)
	}

	counts := c.Counts()
	if counts["record:Add Anchor Point"] != 1 || counts["undo:Add Anchor Point"] != 1 {
		t.Fatalf("counts = %v", counts)
	}
	c.Close()

	f, err := os.Open(path)
	if err != nil {
		t.Fatalf("open events file: %v", err)
	}
	defer f.Close()
	var names []string
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		var m map[string]any
		if err := json.Unmarshal(sc.Bytes(), &m); err != nil {
			t.Fatalf("bad line %q: %v", sc.Text(), err)
		}
		names = append(names, m["name"].(string))
	}
	if len(names) != 4 || names[3] != "session_summary" {
		t.Fatalf("names = %v", names)
	}
}

func TestDisabledClientDropsEverything(t *testing.T) {
	path := filepath.Join(t.TempDir(), "events.jsonl")
	c := New(Config{OptIn: false, File: path})
	c.Event("started", nil)
	c.ObserveHistory(undo.Event{Kind: undo.Recorded, Label: "Subpath Start"})
	c.Close()
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Fatalf("nothing should be written without opt-in, stat err = %v", err)
	}
	if len(c.Counts()) != 0 {
		t.Fatalf("counts should stay empty")
	}
}

func TestFromEnv(t *testing.T) {
	t.Setenv("PEN_TELEMETRY", "yes")
	t.Setenv("PEN_TELEMETRY_FILE", "/tmp/x.jsonl")
	t.Setenv("PEN_TELEMETRY_TIMEOUT_MS", "250")
	cfg := FromEnv()
	if !cfg.OptIn || cfg.File != "/tmp/x.jsonl" || cfg.Timeout != 250*time.Millisecond {
		t.Fatalf("FromEnv = %#v", cfg)
	}
}
