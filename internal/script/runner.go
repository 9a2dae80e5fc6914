/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package script

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	applog "penpath/internal/log"
	"penpath/internal/pathmodel"
	"penpath/internal/pen"
	"penpath/internal/region"
	"penpath/internal/undo"
	"penpath/internal/vector"
)

// ExpectError is returned when an expect step does not hold.
type ExpectError struct {
	Line int
	Msg  string
}

func (e *ExpectError) Error() string { return fmt.Sprintf("line %d: expect: %s", e.Line, e.Msg) }

// Result summarizes a run.
type Result struct {
	Steps int
	// Skipped lists steps whose edit was rejected by the model, for example
	// finish without an open subpath. They do not stop the run.
	Skipped []string
	// Regions holds the output of convert steps in order.
	Regions []*region.Region
}

// Runner replays a script against a session and its history.
type Runner struct {
	Session *pen.Session
	History *undo.Manager
	log     *slog.Logger
}

// SessionOptions applies the script's view and thresholds to base.
func SessionOptions(sc Script, base pen.Options) pen.Options {
	opts := base
	if sc.Tolerance > 0 {
		opts.Proximity.Tolerance = sc.Tolerance
	}
	if sc.DragThreshold != nil {
		opts.DragThreshold = *sc.DragThreshold
	}
	view := vector.Identity
	if sc.View.Scale > 0 {
		view = vector.Scale(sc.View.Scale, sc.View.Scale)
	}
	if len(sc.View.Offset) == 2 {
		view = vector.Translate(sc.View.Offset[0], sc.View.Offset[1]).Mul(view)
	}
	opts.Proximity.View = view
	return opts
}

// NewRunner builds a fresh session for sc recording into h.
func NewRunner(sc Script, h *undo.Manager, base pen.Options) *Runner {
	return &Runner{
		Session: pen.NewSession(h, SessionOptions(sc, base)),
		History: h,
		log:     applog.WithOperation(applog.WithComponent("script"), "replay").With(slog.String("script", sc.Name)),
	}
}

// Run executes every step. It stops at the first failed expectation or when
// ctx is done.
func (r *Runner) Run(ctx context.Context, sc Script) (Result, error) {
	var res Result
	for i, st := range sc.Steps {
		if err := ctx.Err(); err != nil {
			return res, err
		}
		err := r.step(st, &res)
		res.Steps++
		var ee *ExpectError
		switch {
		case err == nil:
		case errors.As(err, &ee):
			return res, err
		case rejected(err):
			r.log.Debug("step rejected", slog.Int("step", i), slog.Int("line", st.Line), slog.String("op", string(st.Op)), slog.Any("err", err))
			res.Skipped = append(res.Skipped, fmt.Sprintf("line %d: %s: %v", st.Line, st.Op, err))
		default:
			return res, fmt.Errorf("line %d: %s: %w", st.Line, st.Op, err)
		}
	}
	r.log.Info("script replayed", slog.Int("steps", res.Steps), slog.Int("skipped", len(res.Skipped)))
	return res, nil
}

func rejected(err error) bool {
	for _, target := range []error{
		pathmodel.ErrTooFewAnchors, pathmodel.ErrAlreadyClosed, pathmodel.ErrSubpathFinished,
		pathmodel.ErrNoActiveSubpath, pathmodel.ErrNotFound, pathmodel.ErrNoPath, pathmodel.ErrEmptySubpath,
		undo.ErrNothingToUndo, undo.ErrNothingToRedo, region.ErrEmpty,
	} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}

func (r *Runner) step(st Step, res *Result) error {
	s := r.Session
	mods, _ := pen.ParseModifiers(st.Mods)
	if pointerOps[st.Op] {
		x, y := st.At[0], st.At[1]
		switch st.Op {
		case OpPress:
			s.Press(x, y, mods)
		case OpDrag:
			s.Drag(x, y, mods)
		case OpRelease:
			s.Release(x, y, mods)
		case OpMove:
			s.Move(x, y, mods)
		case OpClick:
			s.Click(x, y, mods)
		}
		return nil
	}
	switch st.Op {
	case OpUndo, OpRedo:
		n := max(st.Count, 1)
		for range n {
			var err error
			if st.Op == OpUndo {
				_, err = r.History.Undo()
			} else {
				_, err = r.History.Redo()
			}
			if err != nil {
				return err
			}
		}
	case OpMode:
		m, err := pen.ParseMode(st.Mode)
		if err != nil {
			return err
		}
		s.ActivateMode(m)
	case OpAbort:
		s.Abort()
	case OpFinish:
		return s.FinishActive()
	case OpClose:
		return s.CloseActive()
	case OpDelete:
		return s.DeleteSelected()
	case OpDeletePath:
		return s.DeletePath()
	case OpNudge:
		return s.Nudge(vector.Pt{X: st.At[0], Y: st.At[1]})
	case OpConvert:
		rule, err := region.ParseFillRule(st.Rule)
		if err != nil {
			return err
		}
		reg, err := s.ConvertToSelection(rule)
		if err != nil {
			return err
		}
		res.Regions = append(res.Regions, reg)
	case OpExpect:
		return r.check(st)
	default:
		return fmt.Errorf("unknown op %q", st.Op)
	}
	return nil
}

func (r *Runner) check(st Step) error {
	e := st.Expect
	if e == nil {
		return nil
	}
	s := r.Session
	var fails []string
	if e.State != "" && !strings.EqualFold(e.State, s.State().String()) {
		fails = append(fails, fmt.Sprintf("state %s, want %s", s.State(), e.State))
	}
	if e.Mode != "" && !strings.EqualFold(e.Mode, s.Mode().String()) {
		fails = append(fails, fmt.Sprintf("mode %s, want %s", s.Mode(), e.Mode))
	}
	p := s.Model().Path
	if e.Anchors != nil && p.NumAnchors() != *e.Anchors {
		fails = append(fails, fmt.Sprintf("%d anchors, want %d", p.NumAnchors(), *e.Anchors))
	}
	if e.Subpaths != nil {
		n := 0
		if p != nil {
			n = len(p.SubPaths)
		}
		if n != *e.Subpaths {
			fails = append(fails, fmt.Sprintf("%d subpaths, want %d", n, *e.Subpaths))
		}
	}
	if e.Undo != nil && r.History.UndoLabel() != *e.Undo {
		fails = append(fails, fmt.Sprintf("undo label %q, want %q", r.History.UndoLabel(), *e.Undo))
	}
	if e.Redo != nil && r.History.RedoLabel() != *e.Redo {
		fails = append(fails, fmt.Sprintf("redo label %q, want %q", r.History.RedoLabel(), *e.Redo))
	}
	if e.Closed != nil {
		closed := p != nil && len(p.SubPaths) > 0 && p.SubPaths[len(p.SubPaths)-1].Closed
		if closed != *e.Closed {
			fails = append(fails, fmt.Sprintf("last subpath closed=%v, want %v", closed, *e.Closed))
		}
	}
	if len(fails) > 0 {
		return &ExpectError{Line: st.Line, Msg: strings.Join(fails, "; ")}
	}
	return nil
}
