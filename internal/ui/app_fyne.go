//go:build fyne && cgo

/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except
 * in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the
 *  specific language governing permissions and limitations under the License.
 */

package ui

import (
	"fmt"
	"image"
	"image/color"
	"log/slog"
	"path/filepath"
	"time"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/app"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/driver/desktop"
	"fyne.io/fyne/v2/widget"

	"penpath/internal/export"
	applog "penpath/internal/log"
	"penpath/internal/overlay"
	"penpath/internal/pen"
	"penpath/internal/undo"
)

// Run opens the editor window and blocks until it is closed.
func Run(env Env) error {
	l := applog.WithComponent("ui")
	l.Info("starting UI")

	fyneApp := app.NewWithID("penpath")
	title := env.Title
	if title == "" {
		title = "Pen Path"
	}
	w := fyneApp.NewWindow(title)
	prefs := fyneApp.Preferences()
	w.Resize(fyne.NewSize(
		float32(max(prefs.IntWithFallback("window.width", 1000), 640)),
		float32(max(prefs.IntWithFallback("window.height", 700), 480)),
	))

	ctl := NewController(env)
	status := widget.NewLabel(ctl.Status())
	pc := NewPenCanvas(ctl, env.Style)
	refresh := func(msg string) {
		s := ctl.Status()
		if msg != "" {
			s = msg + " | " + s
		}
		status.SetText(s)
		pc.Refresh()
	}
	pc.OnChange = func() { refresh("") }
	env.History.OnChange(func(ev undo.Event) {
		l.Debug("history", slog.String("kind", ev.Kind.String()), slog.String("label", ev.Label))
	})

	modes := widget.NewRadioGroup([]string{"Build", "Edit"}, func(v string) {
		if v == "Edit" {
			ctl.Session.ActivateMode(pen.Edit)
		} else {
			ctl.Session.ActivateMode(pen.Build)
		}
		refresh("")
	})
	modes.Horizontal = true
	modes.SetSelected("Build")

	doUndo := func() {
		label, err := ctl.Undo()
		if err != nil {
			refresh(describe("undo", err))
			return
		}
		refresh("Undo " + label)
	}
	doRedo := func() {
		label, err := ctl.Redo()
		if err != nil {
			refresh(describe("redo", err))
			return
		}
		refresh("Redo " + label)
	}
	doConvert := func() {
		r, err := ctl.Convert()
		if err != nil {
			refresh(describe("convert", err))
			return
		}
		refresh(fmt.Sprintf("Selection %v", r.Bounds))
	}
	doExport := func() {
		dir := env.ExportDir
		if dir == "" {
			dir = "."
		}
		out := filepath.Join(dir, fmt.Sprintf("path-%s.svg", time.Now().Format("20060102-150405")))
		if err := export.File(out, ctl.Session.Model().ToShape(), export.Options{Rule: ctl.Rule}); err != nil {
			refresh(describe("export", err))
			return
		}
		l.Info("exported", slog.String("file", out))
		refresh("Exported " + out)
	}

	toolbar := container.NewHBox(
		modes,
		widget.NewButton("Undo", doUndo),
		widget.NewButton("Redo", doRedo),
		widget.NewButton("Finish", func() { _ = ctl.Session.FinishActive(); refresh("") }),
		widget.NewButton("Close", func() { _ = ctl.Session.CloseActive(); refresh("") }),
		widget.NewButton("To Selection", doConvert),
		widget.NewButton("Export SVG", doExport),
	)

	w.Canvas().AddShortcut(&desktop.CustomShortcut{KeyName: fyne.KeyZ, Modifier: fyne.KeyModifierShortcutDefault}, func(fyne.Shortcut) { doUndo() })
	w.Canvas().AddShortcut(&desktop.CustomShortcut{KeyName: fyne.KeyZ, Modifier: fyne.KeyModifierShortcutDefault | fyne.KeyModifierShift}, func(fyne.Shortcut) { doRedo() })
	w.Canvas().SetOnTypedKey(func(ev *fyne.KeyEvent) {
		if ctl.Key(string(ev.Name)) {
			if ev.Name == fyne.KeyE {
				modes.SetSelected("Edit")
			} else if ev.Name == fyne.KeyB {
				modes.SetSelected("Build")
			}
			refresh("")
		}
	})

	w.SetContent(container.NewBorder(toolbar, status, nil, nil, pc))
	w.SetOnClosed(func() {
		sz := w.Canvas().Size()
		prefs.SetInt("window.width", int(sz.Width))
		prefs.SetInt("window.height", int(sz.Height))
	})
	w.ShowAndRun()
	return nil
}

// PenCanvas draws the session overlay and feeds pointer input to a
// Controller. Shift, ctrl and alt map to constrain, edit-previous and break.
type PenCanvas struct {
	widget.BaseWidget
	ctl   *Controller
	style overlay.Style
	log   *slog.Logger

	down     bool
	panning  bool
	OnChange func()
}

var (
	_ desktop.Mouseable = (*PenCanvas)(nil)
	_ desktop.Hoverable = (*PenCanvas)(nil)
	_ fyne.Draggable    = (*PenCanvas)(nil)
	_ fyne.Scrollable   = (*PenCanvas)(nil)
)

func NewPenCanvas(ctl *Controller, style overlay.Style) *PenCanvas {
	pc := &PenCanvas{ctl: ctl, style: style, log: applog.WithComponent("ui")}
	pc.ExtendBaseWidget(pc)
	return pc
}

func (p *PenCanvas) CreateRenderer() fyne.WidgetRenderer {
	bg := canvas.NewRectangle(color.White)
	raster := canvas.NewRaster(func(w, h int) image.Image {
		img, err := overlay.Render(p.ctl.Session, w, h, p.ctl.View(), p.style)
		if err != nil {
			p.log.Warn("overlay render failed", slog.Any("err", err))
			return image.NewRGBA(image.Rect(0, 0, w, h))
		}
		return img
	})
	return &penCanvasRenderer{pc: p, bg: bg, raster: raster, objects: []fyne.CanvasObject{bg, raster}}
}

func (p *PenCanvas) MinSize() fyne.Size { return fyne.NewSize(400, 300) }

func (p *PenCanvas) setMods(m fyne.KeyModifier) {
	p.ctl.SetModifiers(m&fyne.KeyModifierShift != 0, m&fyne.KeyModifierControl != 0, m&fyne.KeyModifierAlt != 0)
}

func (p *PenCanvas) changed() {
	if p.OnChange != nil {
		p.OnChange()
		return
	}
	p.Refresh()
}

func (p *PenCanvas) MouseDown(e *desktop.MouseEvent) {
	p.setMods(e.Modifier)
	if e.Button == desktop.MouseButtonSecondary {
		p.panning = true
		return
	}
	p.down = true
	p.ctl.Pointer(pen.Press, float64(e.Position.X), float64(e.Position.Y))
	p.changed()
}

func (p *PenCanvas) MouseUp(e *desktop.MouseEvent) {
	p.setMods(e.Modifier)
	if p.panning {
		p.panning = false
		return
	}
	if !p.down {
		return
	}
	p.down = false
	p.ctl.Pointer(pen.Release, float64(e.Position.X), float64(e.Position.Y))
	p.changed()
}

func (p *PenCanvas) Dragged(e *fyne.DragEvent) {
	if p.panning {
		p.ctl.Pan(float64(e.Dragged.DX), float64(e.Dragged.DY))
		p.changed()
		return
	}
	if !p.down {
		return
	}
	p.ctl.Pointer(pen.Drag, float64(e.Position.X), float64(e.Position.Y))
	p.changed()
}

func (p *PenCanvas) DragEnd() {}

func (p *PenCanvas) MouseIn(e *desktop.MouseEvent) { p.MouseMoved(e) }

func (p *PenCanvas) MouseMoved(e *desktop.MouseEvent) {
	p.setMods(e.Modifier)
	if p.down {
		return
	}
	p.ctl.Pointer(pen.Move, float64(e.Position.X), float64(e.Position.Y))
	p.changed()
}

func (p *PenCanvas) MouseOut() {}

func (p *PenCanvas) Scrolled(e *fyne.ScrollEvent) {
	factor := 1.0 + float64(e.Scrolled.DY)*0.01
	if factor <= 0 {
		return
	}
	p.ctl.ZoomAt(factor, float64(e.Position.X), float64(e.Position.Y))
	p.changed()
}

type penCanvasRenderer struct {
	pc      *PenCanvas
	bg      *canvas.Rectangle
	raster  *canvas.Raster
	objects []fyne.CanvasObject
}

func (r *penCanvasRenderer) Destroy()                     {}
func (r *penCanvasRenderer) Objects() []fyne.CanvasObject { return r.objects }
func (r *penCanvasRenderer) MinSize() fyne.Size           { return r.pc.MinSize() }
func (r *penCanvasRenderer) Refresh()                     { r.raster.Refresh(); canvas.Refresh(r.pc) }

func (r *penCanvasRenderer) Layout(size fyne.Size) {
	r.bg.Resize(size)
	r.raster.Resize(size)
}
