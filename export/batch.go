package export

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"path"
	"strings"
	"sync"
	"time"

	"github.com/klauspost/compress/zip"
	"golang.org/x/sync/errgroup"

	"github.com/gogpu/studio/document"
	"github.com/gogpu/studio/internal/logging"
	"github.com/gogpu/studio/render"
)

// DefaultConcurrency is the number of renditions encoded in parallel.
const DefaultConcurrency = 4

// Ratio is one target box of a batch export.
type Ratio struct {
	Name   string `json:"name" yaml:"name"`
	Width  int    `json:"width" yaml:"width"`
	Height int    `json:"height" yaml:"height"`
}

// Progress reports the completion of one ratio. Err is non-nil when the
// ratio failed.
type Progress struct {
	Done  int
	Total int
	Name  string
	Err   error
}

// Rendition is one encoded output of a batch.
type Rendition struct {
	Ratio    Ratio
	Filename string
	Data     []byte
}

// BatchResult holds the renditions that succeeded, in ratio order, the
// archive bundling them and the names of ratios that failed.
type BatchResult struct {
	Renditions []Rendition
	Archive    []byte
	Failed     []string
	Errors     []error
}

// BatchOption configures ExportMany and Start.
type BatchOption func(*batchConfig)

type batchConfig struct {
	format      string
	concurrency int
	renderer    *render.Renderer
	progress    func(Progress)
}

// WithFormat sets the format of every rendition. The default is png.
func WithFormat(name string) BatchOption {
	return func(c *batchConfig) {
		c.format = name
	}
}

// WithConcurrency bounds the number of renditions encoded at once.
func WithConcurrency(n int) BatchOption {
	return func(c *batchConfig) {
		if n > 0 {
			c.concurrency = n
		}
	}
}

// WithRenderer sets the renderer used for raster formats.
func WithRenderer(r *render.Renderer) BatchOption {
	return func(c *batchConfig) {
		c.renderer = r
	}
}

// WithProgress registers a callback invoked once per finished ratio.
// Calls are serialized.
func WithProgress(fn func(Progress)) BatchOption {
	return func(c *batchConfig) {
		c.progress = fn
	}
}

func newBatchConfig(opts []BatchOption) batchConfig {
	c := batchConfig{format: "png", concurrency: DefaultConcurrency}
	for _, opt := range opts {
		opt(&c)
	}
	return c
}

// ExportMany renders s once per ratio, each on its own clone adapted to
// the ratio's box with the content-fit transform, and bundles the results
// into a zip archive. A failing ratio is logged and listed in
// BatchResult.Failed; the others still complete. If ctx is canceled all
// renditions are discarded and ctx's error is returned.
func ExportMany(ctx context.Context, s *document.Scene, ratios []Ratio, opts ...BatchOption) (*BatchResult, error) {
	return newBatch(s, ratios, newBatchConfig(opts)).run(ctx)
}

type batch struct {
	cfg    batchConfig
	ratios []Ratio
	names  []string
	scenes []*document.Scene
}

// newBatch clones s for every ratio and fixes the archive names up front,
// so the caller may keep editing s while the batch runs.
func newBatch(s *document.Scene, ratios []Ratio, cfg batchConfig) *batch {
	b := &batch{
		cfg:    cfg,
		ratios: append([]Ratio(nil), ratios...),
		names:  make([]string, len(ratios)),
		scenes: make([]*document.Scene, len(ratios)),
	}
	ext := cfg.format
	if f, err := Lookup(cfg.format); err == nil {
		ext = f.Extension
	}
	taken := nameSet{}
	for i, r := range ratios {
		b.names[i] = taken.unique(SanitizeName(r.Name), ext)
		b.scenes[i] = s.Clone()
	}
	return b
}

func (b *batch) run(ctx context.Context) (*BatchResult, error) {
	total := len(b.ratios)
	if total == 0 {
		return nil, ErrNoRatios
	}
	if _, err := Lookup(b.cfg.format); err != nil {
		return nil, &ExportError{Target: b.cfg.format, Err: err}
	}

	log := logging.Logger()
	log.Info("export: batch started", "ratios", total, "format", b.cfg.format)
	start := time.Now()

	data := make([][]byte, total)
	errs := make([]error, total)

	var mu sync.Mutex
	done := 0
	report := func(i int, err error) {
		mu.Lock()
		defer mu.Unlock()
		done++
		if b.cfg.progress != nil {
			b.cfg.progress(Progress{Done: done, Total: total, Name: b.ratios[i].Name, Err: err})
		}
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(b.cfg.concurrency)
	for i := range b.ratios {
		if gctx.Err() != nil {
			break
		}
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			out, err := b.render(gctx, i)
			if err != nil {
				if ctx.Err() != nil {
					return ctx.Err()
				}
				errs[i] = &ExportError{Target: b.ratios[i].Name, Err: err}
				log.Warn("export: ratio failed", "ratio", b.ratios[i].Name, "err", err)
			}
			data[i] = out
			report(i, errs[i])
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		log.Info("export: batch canceled", "err", err)
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		log.Info("export: batch canceled", "err", err)
		return nil, err
	}

	res := &BatchResult{}
	for i, r := range b.ratios {
		if errs[i] != nil {
			res.Failed = append(res.Failed, r.Name)
			res.Errors = append(res.Errors, errs[i])
			continue
		}
		res.Renditions = append(res.Renditions, Rendition{Ratio: r, Filename: b.names[i], Data: data[i]})
	}
	var buf bytes.Buffer
	if err := WriteArchive(&buf, res.Renditions); err != nil {
		return nil, &ExportError{Target: "archive", Err: err}
	}
	res.Archive = buf.Bytes()

	log.Info("export: batch finished",
		"ok", len(res.Renditions),
		"failed", len(res.Failed),
		"elapsed", time.Since(start))
	return res, nil
}

// render adapts the i-th clone to its ratio and encodes it.
func (b *batch) render(ctx context.Context, i int) ([]byte, error) {
	r := b.ratios[i]
	if r.Width <= 0 || r.Height <= 0 {
		return nil, fmt.Errorf("%w: %dx%d", ErrBadRatio, r.Width, r.Height)
	}
	s := b.scenes[i]
	if _, err := s.Resize(float64(r.Width), float64(r.Height)); err != nil {
		return nil, err
	}
	return ExportOne(ctx, s, b.cfg.format, Options{Renderer: b.cfg.renderer})
}

// WriteArchive writes the renditions to w as a zip archive. Entries that
// are already compressed are stored.
func WriteArchive(w io.Writer, renditions []Rendition) error {
	zw := zip.NewWriter(w)
	for _, r := range renditions {
		method := zip.Deflate
		if f, err := Lookup(formatOf(r.Filename)); err == nil && f.Raster {
			method = zip.Store
		}
		fw, err := zw.CreateHeader(&zip.FileHeader{
			Name:     r.Filename,
			Method:   method,
			Modified: time.Now(),
		})
		if err != nil {
			return err
		}
		if _, err := fw.Write(r.Data); err != nil {
			return err
		}
	}
	return zw.Close()
}

// formatOf maps a file extension back to a registered format name.
func formatOf(filename string) string {
	ext := strings.TrimPrefix(path.Ext(filename), ".")
	registryMu.RLock()
	defer registryMu.RUnlock()
	for name, f := range formats {
		if f.Extension == ext {
			return name
		}
	}
	return ext
}
