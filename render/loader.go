// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package render

import (
	"bytes"
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"image"
	_ "image/gif" // register decoder
	_ "image/jpeg"
	_ "image/png"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	_ "golang.org/x/image/webp"

	"github.com/gogpu/studio/internal/cache"
	"github.com/gogpu/studio/internal/filter"
)

// ErrUnknownRef is returned by loaders that cannot resolve a reference.
var ErrUnknownRef = errors.New("render: unknown image reference")

// Loader resolves the source reference of an image element to pixels.
type Loader interface {
	Load(ctx context.Context, ref string) (image.Image, error)
}

// LoaderFunc adapts a function to the Loader interface.
type LoaderFunc func(ctx context.Context, ref string) (image.Image, error)

// Load calls f.
func (f LoaderFunc) Load(ctx context.Context, ref string) (image.Image, error) {
	return f(ctx, ref)
}

// FileLoader resolves data: URIs and file paths. Relative paths are
// joined to Root.
type FileLoader struct {
	Root string
}

// Load decodes the referenced image. PNG, JPEG, GIF and WebP are
// supported.
func (l FileLoader) Load(_ context.Context, ref string) (image.Image, error) {
	var data []byte
	var err error
	if strings.HasPrefix(ref, "data:") {
		data, err = DecodeDataURI(ref)
	} else {
		path := ref
		if l.Root != "" && !filepath.IsAbs(path) {
			path = filepath.Join(l.Root, path)
		}
		data, err = os.ReadFile(path)
	}
	if err != nil {
		return nil, err
	}
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("render: decode %s: %w", shortRef(ref), err)
	}
	return img, nil
}

// DecodeDataURI returns the payload of a data: URI.
func DecodeDataURI(uri string) ([]byte, error) {
	rest, ok := strings.CutPrefix(uri, "data:")
	if !ok {
		return nil, fmt.Errorf("render: not a data URI")
	}
	meta, payload, ok := strings.Cut(rest, ",")
	if !ok {
		return nil, fmt.Errorf("render: malformed data URI")
	}
	if strings.HasSuffix(meta, ";base64") {
		data, err := base64.StdEncoding.DecodeString(payload)
		if err != nil {
			return nil, fmt.Errorf("render: data URI: %w", err)
		}
		return data, nil
	}
	s, err := url.PathUnescape(payload)
	if err != nil {
		return nil, fmt.Errorf("render: data URI: %w", err)
	}
	return []byte(s), nil
}

// MapLoader serves images from memory.
type MapLoader map[string]image.Image

// Load returns the image stored under ref.
func (m MapLoader) Load(_ context.Context, ref string) (image.Image, error) {
	img, ok := m[ref]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownRef, shortRef(ref))
	}
	return img, nil
}

// imageSource caches decoded images as NRGBA keyed by reference.
type imageSource struct {
	loader Loader
	cache  *cache.Cache[string, *image.NRGBA]
}

func newImageSource(l Loader, size int) *imageSource {
	return &imageSource{loader: l, cache: cache.New[string, *image.NRGBA](size)}
}

// get returns the decoded image. The result is shared and must not be
// modified.
func (s *imageSource) get(ctx context.Context, ref string) (*image.NRGBA, error) {
	return s.cache.GetOrCreate(ref, func() (*image.NRGBA, error) {
		img, err := s.loader.Load(ctx, ref)
		if err != nil {
			return nil, err
		}
		return filter.ToNRGBA(img), nil
	})
}

// shortRef keeps data URIs out of log lines and errors.
func shortRef(ref string) string {
	if strings.HasPrefix(ref, "data:") {
		if meta, _, ok := strings.Cut(ref, ","); ok {
			return meta + ",..."
		}
		return "data:..."
	}
	return ref
}
