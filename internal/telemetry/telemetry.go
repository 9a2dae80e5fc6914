/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except
 * in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the
 *  specific language governing permissions and limitations under the License.
 */

// Package telemetry sends opt-in, anonymous usage events: which history
// labels are recorded, undone and redone, never coordinates or paths.
// Events go to an HTTP endpoint or are appended to a JSON lines file.
package telemetry

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"os"
	"runtime"
	"strings"
	"sync"
	"time"

	applog "penpath/internal/log"
	"penpath/internal/undo"
	"penpath/internal/version"
)

// Config holds telemetry settings. Nothing is sent unless OptIn is set and
// a sink (EventsURL or File) is configured.
//
// FromEnv reads
//   - PEN_TELEMETRY: "1", "true", "yes" or "on" to opt in
//   - PEN_TELEMETRY_URL: endpoint for JSON events
//   - PEN_TELEMETRY_FILE: JSON lines file, used when no URL is set
//   - PEN_CRASH_UPLOAD_URL: endpoint for crash reports
//   - PEN_TELEMETRY_TIMEOUT_MS: request timeout, default 1500
type Config struct {
	OptIn        bool
	EventsURL    string
	File         string
	CrashURL     string
	Timeout      time.Duration
	DebugLogging bool
}

func FromEnv() Config {
	cfg := Config{
		OptIn:        parseBool(os.Getenv("PEN_TELEMETRY")),
		EventsURL:    strings.TrimSpace(os.Getenv("PEN_TELEMETRY_URL")),
		File:         strings.TrimSpace(os.Getenv("PEN_TELEMETRY_FILE")),
		CrashURL:     strings.TrimSpace(os.Getenv("PEN_CRASH_UPLOAD_URL")),
		Timeout:      1500 * time.Millisecond,
		DebugLogging: os.Getenv("PEN_TELEMETRY_DEBUG") != "",
	}
	if ms := strings.TrimSpace(os.Getenv("PEN_TELEMETRY_TIMEOUT_MS")); ms != "" {
		if v, err := time.ParseDuration(ms + "ms"); err == nil {
			cfg.Timeout = v
		}
	}
	return cfg
}

func parseBool(v string) bool {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "1", "true", "yes", "on":
		return true
	}
	return false
}

// Client is an async sender with a bounded queue. Events are dropped when
// the queue is full or delivery fails; callers never block.
type Client struct {
	cfg  Config
	log  *slog.Logger
	cli  *http.Client
	q    chan map[string]any
	done chan struct{}
	wg   sync.WaitGroup
	once sync.Once

	mu     sync.Mutex
	counts map[string]int
}

var (
	defaultClient *Client
	defaultOnce   sync.Once
)

// InitDefault installs a default client from the environment on first use.
func InitDefault() {
	defaultOnce.Do(func() { defaultClient = New(FromEnv()) })
}

// New starts a client.
func New(cfg Config) *Client {
	c := &Client{
		cfg:    cfg,
		log:    applog.WithComponent("telemetry"),
		cli:    &http.Client{Timeout: cfg.Timeout},
		q:      make(chan map[string]any, 64),
		done:   make(chan struct{}),
		counts: map[string]int{},
	}
	c.wg.Add(1)
	go c.loop()
	return c
}

// Enabled reports whether the user opted in and a sink is configured.
func (c *Client) Enabled() bool {
	return c != nil && c.cfg.OptIn && (c.cfg.EventsURL != "" || c.cfg.File != "")
}

func Enabled() bool {
	InitDefault()
	return defaultClient.Enabled()
}

// Event queues a named event. Props must not carry user content.
func (c *Client) Event(name string, props map[string]any) {
	if !c.Enabled() || name == "" {
		return
	}
	payload := map[string]any{
		"name":    name,
		"ts":      time.Now().UTC().Format(time.RFC3339Nano),
		"version": version.String(),
		"os":      runtime.GOOS,
		"arch":    runtime.GOARCH,
	}
	for k, v := range props {
		payload[k] = v
	}
	select {
	case c.q <- payload:
	default:
	}
}

func Event(name string, props map[string]any) { InitDefault(); defaultClient.Event(name, props) }

// ObserveHistory counts history activity per label. Register it with
// undo.Manager.OnChange.
func (c *Client) ObserveHistory(ev undo.Event) {
	if !c.Enabled() {
		return
	}
	key := ev.Kind.String() + ":" + ev.Label
	c.mu.Lock()
	c.counts[key]++
	c.mu.Unlock()
	c.Event("history", map[string]any{"kind": ev.Kind.String(), "label": ev.Label})
}

// Counts returns a copy of the per "kind:label" counters.
func (c *Client) Counts() map[string]int {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make(map[string]int, len(c.counts))
	for k, v := range c.counts {
		out[k] = v
	}
	return out
}

// Flush waits briefly for the queue to drain.
func (c *Client) Flush(ctx context.Context) {
	deadline := time.Now().Add(500 * time.Millisecond)
	for len(c.q) > 0 && time.Now().Before(deadline) {
		select {
		case <-ctx.Done():
			return
		case <-time.After(25 * time.Millisecond):
		}
	}
}

// Close sends a summary event, stops the sender and waits for it.
func (c *Client) Close() {
	c.once.Do(func() {
		if counts := c.Counts(); len(counts) > 0 {
			props := map[string]any{}
			for k, v := range counts {
				props[k] = v
			}
			c.Event("session_summary", props)
		}
		close(c.done)
		c.wg.Wait()
	})
}

func (c *Client) loop() {
	defer c.wg.Done()
	for {
		select {
		case item := <-c.q:
			c.send(item)
		case <-c.done:
			for {
				select {
				case item := <-c.q:
					c.send(item)
				default:
					return
				}
			}
		}
	}
}

func (c *Client) send(item map[string]any) {
	buf, err := json.Marshal(item)
	if err != nil {
		return
	}
	if c.cfg.EventsURL == "" {
		c.appendFile(buf)
		return
	}
	req, err := http.NewRequest(http.MethodPost, c.cfg.EventsURL, bytes.NewReader(buf))
	if err != nil {
		return
	}
	req.Header.Set("Content-Type", "application/json")
	resp, err := c.cli.Do(req)
	if err != nil {
		if c.cfg.DebugLogging {
			c.log.Debug("telemetry send failed", slog.Any("err", err))
		}
		return
	}
	_ = resp.Body.Close()
}

func (c *Client) appendFile(line []byte) {
	f, err := os.OpenFile(c.cfg.File, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		if c.cfg.DebugLogging {
			c.log.Debug("telemetry file open failed", slog.Any("err", err))
		}
		return
	}
	_, _ = f.Write(append(line, '\n'))
	_ = f.Close()
}

// UploadCrash posts a crash report if the user opted in and a crash URL is set.
func (c *Client) UploadCrash(report []byte) {
	if c == nil || !c.cfg.OptIn || c.cfg.CrashURL == "" {
		return
	}
	req, err := http.NewRequest(http.MethodPost, c.cfg.CrashURL, bytes.NewReader(report))
	if err != nil {
		return
	}
	req.Header.Set("Content-Type", "text/plain; charset=utf-8")
	resp, err := c.cli.Do(req)
	if err != nil {
		if c.cfg.DebugLogging {
			c.log.Debug("crash upload failed", slog.Any("err", err))
		}
		return
	}
	_ = resp.Body.Close()
}

func UploadCrash(report []byte) { InitDefault(); defaultClient.UploadCrash(report) }
