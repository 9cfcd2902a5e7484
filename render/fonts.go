// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package render

import (
	"fmt"
	"os"
	"sync"

	"github.com/gogpu/gg/text"
	"golang.org/x/image/font/gofont/goregular"
)

// Fonts supplies the face used for text elements. The zero value uses the
// Go Regular font.
type Fonts struct {
	once   sync.Once
	data   []byte
	source *text.FontSource
	err    error

	// mu serializes glyph rasterization, which shares caches inside the
	// font source.
	mu sync.Mutex
}

// NewFonts creates a font set from TrueType or OpenType data.
func NewFonts(data []byte) *Fonts {
	return &Fonts{data: data}
}

// LoadFonts reads a font file.
func LoadFonts(path string) (*Fonts, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("render: font: %w", err)
	}
	f := NewFonts(data)
	if _, err := f.Source(); err != nil {
		return nil, err
	}
	return f, nil
}

// Source parses the font on first use.
func (f *Fonts) Source() (*text.FontSource, error) {
	f.once.Do(func() {
		data := f.data
		if len(data) == 0 {
			data = goregular.TTF
		}
		f.source, f.err = text.NewFontSource(data)
		if f.err != nil {
			f.err = fmt.Errorf("render: font: %w", f.err)
		}
	})
	return f.source, f.err
}

// Face returns a face at the given pixel size.
func (f *Fonts) Face(size float64) (text.Face, error) {
	src, err := f.Source()
	if err != nil {
		return nil, err
	}
	return src.Face(size), nil
}
