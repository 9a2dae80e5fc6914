/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package journal persists the committed history of pen sessions: one row
// per record, undo or redo with its label and the path snapshot after it.
// The default store is an embedded SQLite file; Postgres is available for
// shared setups.
package journal

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	applog "penpath/internal/log"
	"penpath/internal/pathmodel"
	"penpath/internal/undo"
)

// ErrNoEntries is returned by Latest for an unknown session.
var ErrNoEntries = errors.New("journal: no entries")

// Entry is one journaled history change.
type Entry struct {
	Seq      int64
	Session  string
	Kind     string // record, undo, redo, clear
	Label    string
	Snapshot []byte // pathmodel.Snapshot as JSON
	TS       time.Time
}

// Store is a journal backend.
type Store interface {
	Append(ctx context.Context, e Entry) error
	List(ctx context.Context, session string) ([]Entry, error)
	Latest(ctx context.Context, session string) (Entry, error)
	Sessions(ctx context.Context) ([]string, error)
	Close() error
}

// Open picks a store by driver name: "sqlite" opens path, "postgres"
// connects to dsn.
func Open(ctx context.Context, driver, path, dsn string) (Store, error) {
	switch strings.ToLower(strings.TrimSpace(driver)) {
	case "sqlite", "":
		return OpenSQLite(ctx, path)
	case "postgres", "pg":
		return OpenPostgres(ctx, dsn)
	}
	return nil, fmt.Errorf("journal: unknown driver %q", driver)
}

// sqlStore implements Store over database/sql. bind rewrites '?'
// placeholders for drivers that use numbered ones.
type sqlStore struct {
	db   *sql.DB
	bind func(string) string
	log  *slog.Logger
}

func (s *sqlStore) Append(ctx context.Context, e Entry) error {
	if e.TS.IsZero() {
		e.TS = time.Now()
	}
	_, err := s.db.ExecContext(ctx, s.bind(`INSERT INTO entries (session, kind, label, snapshot, ts) VALUES (?, ?, ?, ?, ?)`),
		e.Session, e.Kind, e.Label, e.Snapshot, e.TS.UTC().Format(time.RFC3339Nano))
	if err != nil {
		return fmt.Errorf("journal append: %w", err)
	}
	return nil
}

func (s *sqlStore) List(ctx context.Context, session string) ([]Entry, error) {
	rows, err := s.db.QueryContext(ctx, s.bind(`SELECT seq, session, kind, label, snapshot, ts FROM entries WHERE session = ? ORDER BY seq`), session)
	if err != nil {
		return nil, fmt.Errorf("journal list: %w", err)
	}
	defer func() { _ = rows.Close() }()
	var out []Entry
	for rows.Next() {
		e, err := scanEntry(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

func (s *sqlStore) Latest(ctx context.Context, session string) (Entry, error) {
	row := s.db.QueryRowContext(ctx, s.bind(`SELECT seq, session, kind, label, snapshot, ts FROM entries WHERE session = ? ORDER BY seq DESC LIMIT 1`), session)
	e, err := scanEntry(row)
	if errors.Is(err, sql.ErrNoRows) {
		return Entry{}, ErrNoEntries
	}
	return e, err
}

func (s *sqlStore) Sessions(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT session FROM entries GROUP BY session ORDER BY MIN(seq)`)
	if err != nil {
		return nil, fmt.Errorf("journal sessions: %w", err)
	}
	defer func() { _ = rows.Close() }()
	var out []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		out = append(out, id)
	}
	return out, rows.Err()
}

func (s *sqlStore) Close() error { return s.db.Close() }

type scanner interface{ Scan(dest ...any) error }

func scanEntry(r scanner) (Entry, error) {
	var e Entry
	var ts string
	if err := r.Scan(&e.Seq, &e.Session, &e.Kind, &e.Label, &e.Snapshot, &ts); err != nil {
		return e, err
	}
	t, err := time.Parse(time.RFC3339Nano, ts)
	if err != nil {
		return e, fmt.Errorf("journal entry %d: bad timestamp %q: %w", e.Seq, ts, err)
	}
	e.TS = t
	return e, nil
}

// Attach journals every change of h. snap is read after the change, so it
// reflects the model the user now sees. Write errors are logged, never
// surfaced: the editor keeps working when the journal is unavailable.
func Attach(ctx context.Context, st Store, h *undo.Manager, session string, snap func() pathmodel.Snapshot) {
	l := applog.WithOperation(applog.WithComponent("journal"), "append").With(slog.String("session", session))
	h.OnChange(func(ev undo.Event) {
		var payload []byte
		if ev.Kind != undo.Cleared {
			b, err := snap().MarshalJSON()
			if err != nil {
				l.Warn("snapshot encoding failed", slog.String("label", ev.Label), slog.Any("err", err))
				return
			}
			payload = b
		}
		e := Entry{Session: session, Kind: ev.Kind.String(), Label: ev.Label, Snapshot: payload, TS: ev.TS}
		if err := st.Append(ctx, e); err != nil {
			l.Warn("journal write failed", slog.String("label", ev.Label), slog.Any("err", err))
		}
	})
}

// Resume loads the newest snapshot of a session into a fresh model.
func Resume(ctx context.Context, st Store, session string) (*pathmodel.Model, error) {
	e, err := st.Latest(ctx, session)
	if err != nil {
		return nil, err
	}
	m := pathmodel.New()
	if len(e.Snapshot) == 0 {
		return m, nil
	}
	var snap pathmodel.Snapshot
	if err := snap.UnmarshalJSON(e.Snapshot); err != nil {
		return nil, fmt.Errorf("journal entry %d: %w", e.Seq, err)
	}
	m.Restore(snap)
	return m, nil
}
