package export

import (
	"context"
	"fmt"
	"io"
	"sort"
	"sync"

	"github.com/gogpu/studio/document"
)

// Encoder writes one rendition of a scene. Implementations must not
// modify s.
type Encoder interface {
	Encode(ctx context.Context, w io.Writer, s *document.Scene, o Options) error
}

// EncoderFunc adapts a function to Encoder.
type EncoderFunc func(ctx context.Context, w io.Writer, s *document.Scene, o Options) error

// Encode calls f.
func (f EncoderFunc) Encode(ctx context.Context, w io.Writer, s *document.Scene, o Options) error {
	return f(ctx, w, s, o)
}

// Format describes a registered output format.
type Format struct {
	Name      string
	Extension string
	MediaType string
	Raster    bool
	Encoder   Encoder
}

var (
	registryMu sync.RWMutex
	formats    = make(map[string]Format)
)

// Register adds a format under f.Name, following the database/sql driver
// pattern:
//
//	func init() {
//	    export.Register(export.Format{Name: "webp", Extension: "webp", Encoder: enc})
//	}
//
// Register panics if the encoder is nil or the name is taken.
func Register(f Format) {
	registryMu.Lock()
	defer registryMu.Unlock()

	if f.Encoder == nil {
		panic("export: Register encoder is nil")
	}
	if _, dup := formats[f.Name]; dup {
		panic("export: Register called twice for " + f.Name)
	}
	if f.Extension == "" {
		f.Extension = f.Name
	}
	formats[f.Name] = f
}

// Unregister removes a format. Unknown names are ignored.
func Unregister(name string) {
	registryMu.Lock()
	defer registryMu.Unlock()
	delete(formats, name)
}

// Lookup returns the format registered under name.
func Lookup(name string) (Format, error) {
	registryMu.RLock()
	f, ok := formats[name]
	registryMu.RUnlock()

	if !ok {
		return Format{}, fmt.Errorf("%w %q", ErrUnknownFormat, name)
	}
	return f, nil
}

// Formats returns the registered format names in sorted order.
func Formats() []string {
	registryMu.RLock()
	defer registryMu.RUnlock()

	names := make([]string, 0, len(formats))
	for name := range formats {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
