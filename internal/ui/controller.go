/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except
 * in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the
 *  specific language governing permissions and limitations under the License.
 */

// Package ui hosts a pen session in a desktop window. The toolkit-free
// Controller maps screen input to session calls; the fyne canvas in
// app_fyne.go only forwards events to it.
package ui

import (
	"errors"
	"fmt"
	"log/slog"
	"math"

	applog "penpath/internal/log"
	"penpath/internal/overlay"
	"penpath/internal/pen"
	"penpath/internal/region"
	"penpath/internal/undo"
	"penpath/internal/vector"
)

// Env is what a window edits.
type Env struct {
	Session *pen.Session
	History *undo.Manager
	Style   overlay.Style
	Rule    region.FillRule
	// ExportDir receives files from the export action.
	ExportDir string
	Title     string
}

// Controller owns the view transform and the held modifier keys.
type Controller struct {
	Session *pen.Session
	History *undo.Manager
	Rule    region.FillRule

	zoom float64
	pan  vector.Pt
	mods pen.Modifiers

	// Region is the result of the last conversion, nil before.
	Region *region.Region

	log *slog.Logger
}

func NewController(env Env) *Controller {
	c := &Controller{
		Session: env.Session,
		History: env.History,
		Rule:    env.Rule,
		zoom:    1,
		log:     applog.WithComponent("ui"),
	}
	c.Session.SetView(c.View())
	return c
}

// View maps path coordinates to screen pixels.
func (c *Controller) View() vector.Affine2D {
	return vector.Translate(c.pan.X, c.pan.Y).Mul(vector.Scale(c.zoom, c.zoom))
}

func (c *Controller) Zoom() float64 { return c.zoom }

// ToPath converts a screen position to path coordinates.
func (c *Controller) ToPath(x, y float64) vector.Pt {
	return vector.Pt{X: (x - c.pan.X) / c.zoom, Y: (y - c.pan.Y) / c.zoom}
}

// SetModifiers records the held keys. Fyne drag events carry no modifiers,
// so the last known state is reused for them.
func (c *Controller) SetModifiers(shift, ctrl, alt bool) {
	var m pen.Modifiers
	if shift {
		m |= pen.Constrain
	}
	if ctrl {
		m |= pen.EditPrevious
	}
	if alt {
		m |= pen.Break
	}
	c.mods = m
}

func (c *Controller) Modifiers() pen.Modifiers { return c.mods }

// Pointer forwards a screen-space pointer event.
func (c *Controller) Pointer(kind pen.EventKind, x, y float64) {
	c.Session.Handle(pen.Event{Kind: kind, Pos: c.ToPath(x, y), Mods: c.mods})
}

// ZoomAt scales by factor keeping the screen point (x, y) fixed. Zoom is
// clamped to [0.1, 16].
func (c *Controller) ZoomAt(factor, x, y float64) {
	anchor := c.ToPath(x, y)
	c.zoom = math.Min(16, math.Max(0.1, c.zoom*factor))
	c.pan = vector.Pt{X: x - anchor.X*c.zoom, Y: y - anchor.Y*c.zoom}
	c.Session.SetView(c.View())
}

// Pan moves the view by a screen delta.
func (c *Controller) Pan(dx, dy float64) {
	c.pan = c.pan.Add(vector.Pt{X: dx, Y: dy})
	c.Session.SetView(c.View())
}

// Key handles a named key press and reports whether it was consumed.
// Names follow fyne.KeyName.
func (c *Controller) Key(name string) bool {
	step := 1.0
	if c.mods.Has(pen.Constrain) {
		step = 10
	}
	var err error
	switch name {
	case "Escape":
		c.Session.Abort()
	case "Delete", "BackSpace":
		err = c.Session.DeleteSelected()
	case "Return", "Enter":
		err = c.Session.FinishActive()
	case "Up":
		err = c.Session.Nudge(vector.Pt{Y: -step})
	case "Down":
		err = c.Session.Nudge(vector.Pt{Y: step})
	case "Left":
		err = c.Session.Nudge(vector.Pt{X: -step})
	case "Right":
		err = c.Session.Nudge(vector.Pt{X: step})
	case "B":
		c.Session.ActivateMode(pen.Build)
	case "E":
		c.Session.ActivateMode(pen.Edit)
	default:
		return false
	}
	if err != nil {
		c.log.Debug("key rejected", slog.String("key", name), slog.Any("err", err))
	}
	return true
}

func (c *Controller) Undo() (string, error) { return c.History.Undo() }
func (c *Controller) Redo() (string, error) { return c.History.Redo() }

// Convert turns the path into a selection region.
func (c *Controller) Convert() (*region.Region, error) {
	r, err := c.Session.ConvertToSelection(c.Rule)
	if err != nil {
		return nil, err
	}
	c.Region = r
	return r, nil
}

// Status is the one-line summary shown under the canvas.
func (c *Controller) Status() string {
	s := fmt.Sprintf("%s | %s | zoom %.0f%%", c.Session.Mode(), c.Session.State(), c.zoom*100)
	if l := c.History.UndoLabel(); l != "" {
		s += " | undo: " + l
	}
	if c.Region != nil {
		s += fmt.Sprintf(" | selection: %d px", c.Region.Area())
	}
	return s
}

// describe turns an action error into status text.
func describe(action string, err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, undo.ErrNothingToUndo), errors.Is(err, undo.ErrNothingToRedo):
		return "Nothing to " + action
	}
	return action + " failed: " + err.Error()
}
