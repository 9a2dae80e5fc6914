/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"penpath/internal/config"
	"penpath/internal/crash"
	"penpath/internal/export"
	"penpath/internal/journal"
	applog "penpath/internal/log"
	"penpath/internal/overlay"
	"penpath/internal/pathmodel"
	"penpath/internal/pen"
	"penpath/internal/region"
	"penpath/internal/script"
	"penpath/internal/telemetry"
	"penpath/internal/ui"
	"penpath/internal/undo"
	"penpath/internal/vector"
	"penpath/internal/version"
)

func usage() {
	fmt.Println("penpath - vector pen tool")
	fmt.Printf("Version: %s\n", version.String())
	fmt.Println()
	fmt.Println("Usage:")
	fmt.Println("  penpath version|-v|--version                     Show version")
	fmt.Println("  penpath replay <script.yaml> [--svg f] [--png f] [--pdf f]")
	fmt.Println("                                                   Run a gesture script and export the result")
	fmt.Println("  penpath export <script.yaml> <web|print> <dir>   Run a script and batch export with a preset")
	fmt.Println("  penpath ui [--resume <session>]                  Launch the editor (build with -tags fyne)")
	fmt.Println("  penpath journal list [session]                   List journaled sessions or one session's entries")
	fmt.Println("  penpath journal resume <session> [out.svg]       Restore a session's latest path")
}

// app is the wiring shared by all subcommands.
type app struct {
	cfg     config.AppConfig
	log     *slog.Logger
	history *undo.Manager
	tel     *telemetry.Client
	store   journal.Store
	session *pen.Session
}

func main() {
	cfg, cfgErr := config.Load()
	applog.Init(cfg.LogOptions())
	defer func() { _ = applog.Close() }()
	l := applog.WithComponent("cli")
	if cfgErr != nil {
		l.Warn("config not loaded, using defaults", slog.Any("err", cfgErr))
	}

	a := &app{cfg: cfg, log: l}
	dir, _ := config.Dir()
	defer crash.Recover(&crash.Rescue{Dir: dir, Dump: a.dump})

	args := os.Args
	l.Debug("start", slog.Int("args", len(args)))
	if len(args) < 2 {
		usage()
		return
	}
	switch args[1] {
	case "version", "--version", "-v":
		fmt.Println("penpath - vector pen tool")
		fmt.Println(version.String())
		return
	case "help", "-h", "--help":
		usage()
		return
	}

	ctx := context.Background()
	a.start(ctx)
	defer a.stop()

	var err error
	switch args[1] {
	case "replay":
		if len(args) < 3 {
			fmt.Println("replay requires <script.yaml>")
			usage()
			os.Exit(2)
		}
		err = a.replay(ctx, args[2], args[3:])
	case "export":
		if len(args) < 5 {
			fmt.Println("export requires <script.yaml> <preset> <dir>")
			usage()
			os.Exit(2)
		}
		err = a.batch(ctx, args[2], args[3], args[4])
	case "ui":
		err = a.ui(ctx, args[2:])
	case "journal":
		if len(args) < 3 {
			fmt.Println("journal requires list or resume")
			usage()
			os.Exit(2)
		}
		err = a.journal(ctx, args[2], args[3:])
	default:
		usage()
		os.Exit(2)
	}
	if err != nil {
		l.Error("command failed", slog.String("cmd", args[1]), slog.Any("err", err))
		fmt.Println("Error:", err)
		a.stop()
		os.Exit(1)
	}
}

// start creates the history, telemetry client and journal. A journal that
// cannot be opened is logged and skipped.
func (a *app) start(ctx context.Context) {
	a.history = undo.NewManager(undo.Config{MaxDepth: a.cfg.Pen.HistoryDepth})

	tc := telemetry.FromEnv()
	tc.OptIn = tc.OptIn || a.cfg.Telemetry.OptIn
	if tc.File == "" {
		tc.File = a.cfg.Telemetry.File
	}
	a.tel = telemetry.New(tc)
	a.history.OnChange(a.tel.ObserveHistory)

	if a.cfg.Journal.Driver == "" {
		return
	}
	st, err := journal.Open(ctx, a.cfg.Journal.Driver, a.cfg.Journal.Path, a.cfg.Journal.DSN)
	if err != nil {
		a.log.Warn("journal unavailable", slog.String("driver", a.cfg.Journal.Driver), slog.Any("err", err))
		return
	}
	a.store = st
}

func (a *app) stop() {
	if a.tel != nil {
		a.tel.Close()
	}
	if a.store != nil {
		_ = a.store.Close()
		a.store = nil
	}
}

func (a *app) penOptions() pen.Options {
	opts := pen.DefaultOptions()
	opts.Proximity.Tolerance = a.cfg.Pen.CloseTolerance
	opts.DragThreshold = a.cfg.Pen.DragThreshold
	return opts
}

// attach journals the history of the current session under a fresh id.
func (a *app) attach(ctx context.Context, prefix string) string {
	if a.store == nil || a.session == nil {
		return ""
	}
	id := prefix + "-" + time.Now().UTC().Format("20060102T150405.000")
	s := a.session
	journal.Attach(ctx, a.store, a.history, id, func() pathmodel.Snapshot { return s.Model().Snapshot() })
	a.log.Info("journal attached", slog.String("session", id))
	return id
}

func (a *app) dump() ([]byte, error) {
	if a.session == nil {
		return nil, nil
	}
	return a.session.Model().Snapshot().MarshalJSON()
}

func (a *app) run(ctx context.Context, path string) (script.Result, error) {
	sc, err := script.Load(path)
	if err != nil {
		return script.Result{}, err
	}
	r := script.NewRunner(sc, a.history, a.penOptions())
	a.session = r.Session
	a.attach(ctx, "replay")
	res, err := r.Run(ctx, sc)
	for _, why := range res.Skipped {
		fmt.Println("skipped:", why)
	}
	return res, err
}

// resultShape is what a replay exports: the open path, or the geometry of
// the last conversion when the script converted the path to a selection.
func (a *app) resultShape(res script.Result) *vector.Path {
	shape := a.session.Model().ToShape()
	if shape.Empty() && len(res.Regions) > 0 {
		if last := res.Regions[len(res.Regions)-1]; last != nil && last.Shape != nil {
			return last.Shape
		}
	}
	return shape
}

func (a *app) exportOptions() export.Options {
	return export.Options{Rule: region.NonZero}
}

func (a *app) replay(ctx context.Context, path string, rest []string) error {
	outs, err := parseOutputs(rest)
	if err != nil {
		return err
	}
	res, err := a.run(ctx, path)
	if err != nil {
		return err
	}
	fmt.Printf("ran %d steps\n", res.Steps)
	for i, label := range a.history.Labels() {
		fmt.Printf("%3d  %s\n", i+1, label)
	}
	for _, reg := range res.Regions {
		fmt.Printf("selection %s area=%d bounds=%v\n", reg.Rule, reg.Area(), reg.Bounds)
	}
	shape := a.resultShape(res)
	for _, out := range outs {
		if err := export.FileAs(out.Path, out.Format, shape, a.exportOptions()); err != nil {
			return err
		}
		fmt.Println("wrote", out.Path, "as", out.Format)
	}
	return nil
}

func (a *app) batch(ctx context.Context, path, preset, dir string) error {
	res, err := a.run(ctx, path)
	if err != nil {
		return err
	}
	name := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	files, err := export.BatchExport(a.resultShape(res), export.BatchOptions{Preset: export.PresetName(preset), Name: name, OutDir: dir})
	if err != nil {
		return err
	}
	for _, f := range files {
		fmt.Println("wrote", f)
	}
	return nil
}

func (a *app) ui(ctx context.Context, rest []string) error {
	m := pathmodel.New()
	if len(rest) == 2 && rest[0] == "--resume" {
		if a.store == nil {
			return fmt.Errorf("resume needs a journal")
		}
		restored, err := journal.Resume(ctx, a.store, rest[1])
		if err != nil {
			return err
		}
		m = restored
	}
	a.session = pen.NewSessionWithModel(m, a.history, a.penOptions())
	a.attach(ctx, "ui")

	style := overlay.DefaultStyle()
	style.AnchorSize = a.cfg.Pen.AnchorSize
	style.HandleSize = a.cfg.Pen.HandleSize
	dir, _ := config.Dir()
	return ui.Run(ui.Env{
		Session:   a.session,
		History:   a.history,
		Style:     style,
		Rule:      region.NonZero,
		ExportDir: dir,
		Title:     "PenPath " + version.Version,
	})
}

func (a *app) journal(ctx context.Context, sub string, rest []string) error {
	if a.store == nil {
		return fmt.Errorf("journal disabled or unavailable (driver %q)", a.cfg.Journal.Driver)
	}
	switch sub {
	case "list":
		if len(rest) == 0 {
			ids, err := a.store.Sessions(ctx)
			if err != nil {
				return err
			}
			for _, id := range ids {
				fmt.Println(id)
			}
			return nil
		}
		entries, err := a.store.List(ctx, rest[0])
		if err != nil {
			return err
		}
		for _, e := range entries {
			fmt.Printf("%6d  %s  %-6s %s\n", e.Seq, e.TS.Local().Format("2006-01-02 15:04:05"), e.Kind, e.Label)
		}
		return nil
	case "resume":
		if len(rest) == 0 {
			return fmt.Errorf("resume requires <session>")
		}
		m, err := journal.Resume(ctx, a.store, rest[0])
		if err != nil {
			return err
		}
		subpaths := 0
		if m.Path != nil {
			subpaths = len(m.Path.SubPaths)
		}
		fmt.Printf("restored %d subpaths, %d anchors\n", subpaths, len(m.Anchors()))
		if len(rest) > 1 {
			if err := export.File(rest[1], m.ToShape(), a.exportOptions()); err != nil {
				return err
			}
			fmt.Println("wrote", rest[1])
		}
		return nil
	}
	return fmt.Errorf("unknown journal command %q", sub)
}

// output is one requested export file.
type output struct {
	Format export.Format
	Path   string
}

// parseOutputs reads --svg/--png/--pdf flags. The flag picks the format,
// the file name is taken as given.
func parseOutputs(args []string) ([]output, error) {
	var outs []output
	for i := 0; i < len(args); i++ {
		switch args[i] {
		case "--svg", "--png", "--pdf":
			if i+1 >= len(args) {
				return nil, fmt.Errorf("%s requires a file name", args[i])
			}
			outs = append(outs, output{Format: export.Format(strings.TrimPrefix(args[i], "--")), Path: args[i+1]})
			i++
		default:
			return nil, fmt.Errorf("unknown argument %s", strconv.Quote(args[i]))
		}
	}
	return outs, nil
}
