package studio

import (
	"github.com/gogpu/studio/document"
	"github.com/gogpu/studio/history"
	"github.com/gogpu/studio/render"
)

// Option configures an Editor during creation.
//
// Example:
//
//	ed := studio.New(1080, 1080,
//	    studio.WithHistoryCapacity(100),
//	    studio.WithRenderer(render.New(render.WithLoader(loader))))
type Option func(*editorOptions)

type editorOptions struct {
	capacity  int
	renderer  *render.Renderer
	sceneOpts []document.Option
}

func defaultOptions() editorOptions {
	return editorOptions{capacity: history.DefaultCapacity}
}

// WithHistoryCapacity sets the number of undo frames kept.
func WithHistoryCapacity(n int) Option {
	return func(o *editorOptions) {
		o.capacity = n
	}
}

// WithRenderer sets the renderer used for exports and thumbnails.
// The default is render.Default().
func WithRenderer(r *render.Renderer) Option {
	return func(o *editorOptions) {
		o.renderer = r
	}
}

// WithSceneOptions passes options through to document.New or
// document.Deserialize, e.g. a background color or id generator.
func WithSceneOptions(opts ...document.Option) Option {
	return func(o *editorOptions) {
		o.sceneOpts = append(o.sceneOpts, opts...)
	}
}
