/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * Licensed under the Apache License, Version 2.0
 */

package export

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"penpath/internal/vector"
)

// PresetName represents a named export preset.
type PresetName string

const (
	PresetWeb   PresetName = "web"
	PresetPrint PresetName = "print"
)

// Format is an output file format.
type Format string

const (
	FormatSVG Format = "svg"
	FormatPNG Format = "png"
	FormatPDF Format = "pdf"
)

// ParseFormat accepts a format name or a file name with that extension.
func ParseFormat(s string) (Format, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if ext := filepath.Ext(s); ext != "" {
		s = strings.TrimPrefix(ext, ".")
	}
	switch Format(s) {
	case FormatSVG, FormatPNG, FormatPDF:
		return Format(s), nil
	}
	return "", fmt.Errorf("unknown format: %s", s)
}

// Write dispatches to the writer for f.
func Write(w io.Writer, f Format, shape *vector.Path, opt Options) error {
	switch f {
	case FormatSVG:
		return WriteSVG(w, shape, opt)
	case FormatPNG:
		return WritePNG(w, shape, opt)
	case FormatPDF:
		return WritePDF(w, shape, opt)
	}
	return fmt.Errorf("unknown format: %s", f)
}

// File writes shape to path, picking the format from the extension. The
// parent directory is created.
func File(path string, shape *vector.Path, opt Options) error {
	f, err := ParseFormat(path)
	if err != nil {
		return err
	}
	return FileAs(path, f, shape, opt)
}

// FileAs writes shape to path in format f regardless of the extension.
func FileAs(path string, f Format, shape *vector.Path, opt Options) error {
	if shape.Empty() {
		return ErrEmptyPath
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("ensure out dir: %w", err)
	}
	out, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", f, err)
	}
	if err := Write(out, f, shape, opt); err != nil {
		_ = out.Close()
		return err
	}
	if err := out.Close(); err != nil {
		return fmt.Errorf("close %s: %w", f, err)
	}
	return nil
}

// BatchOptions controls batch export of one path into several formats.
//
// Files are named <Name>.<format> in OutDir. Formats defaults to the
// preset's formats; IncludeGuides and Scale override the preset.
//
//nolint:revive // keep fields explicit for clarity
type BatchOptions struct {
	Preset        PresetName
	Formats       []string
	Name          string
	OutDir        string
	Scale         float64
	IncludeGuides *bool
	Style         Options
}

// BatchExport writes shape in every requested format and returns the
// written paths in format order.
func BatchExport(shape *vector.Path, opt BatchOptions) ([]string, error) {
	if shape.Empty() {
		return nil, ErrEmptyPath
	}
	formats := opt.Formats
	if len(formats) == 0 {
		formats = presetDefaultFormats(opt.Preset)
	}
	name := opt.Name
	if name == "" {
		name = "path"
	}
	o := opt.Style
	o.Scale = presetScale(opt.Preset)
	if opt.Scale > 0 {
		o.Scale = opt.Scale
	}
	o.IncludeGuides = presetIncludeGuides(opt.Preset)
	if opt.IncludeGuides != nil {
		o.IncludeGuides = *opt.IncludeGuides
	}

	var written []string
	for _, raw := range formats {
		f, err := ParseFormat(raw)
		if err != nil {
			return written, err
		}
		out := filepath.Join(opt.OutDir, name+"."+string(f))
		if err := File(out, shape, o); err != nil {
			return written, fmt.Errorf("%s: %w", f, err)
		}
		written = append(written, out)
	}
	return written, nil
}

func presetDefaultFormats(p PresetName) []string {
	switch p {
	case PresetWeb:
		return []string{"svg", "png"}
	case PresetPrint:
		return []string{"pdf"}
	default:
		return []string{"svg"}
	}
}

// presetScale is 2x for web rasters (high density screens) and 1 pt per
// unit for print.
func presetScale(p PresetName) float64 {
	if p == PresetWeb {
		return 2
	}
	return 1
}

func presetIncludeGuides(p PresetName) bool {
	return p == PresetPrint
}
