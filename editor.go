package studio

import (
	"context"
	"errors"
	"image"

	"github.com/gogpu/studio/adjust"
	"github.com/gogpu/studio/document"
	"github.com/gogpu/studio/export"
	"github.com/gogpu/studio/history"
	"github.com/gogpu/studio/internal/logging"
	"github.com/gogpu/studio/render"
)

// Editor is an editing session: a live scene, its undo log and access to
// the export pipeline. Structural edits (add, remove, group, ungroup,
// import) always get their own undo frame; other edits inside an open
// transaction are coalesced into one frame at Commit.
type Editor struct {
	scene    *document.Scene
	history  *history.Log
	renderer *render.Renderer
}

// New creates an editor over an empty scene of the given canvas size.
func New(width, height float64, opts ...Option) *Editor {
	o := apply(opts)
	return newEditor(document.New(width, height, o.sceneOpts...), o)
}

// Open creates an editor over a serialized scene.
func Open(data []byte, opts ...Option) (*Editor, error) {
	o := apply(opts)
	s, err := document.Deserialize(data, o.sceneOpts...)
	if err != nil {
		return nil, err
	}
	return newEditor(s, o), nil
}

func apply(opts []Option) editorOptions {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

func newEditor(s *document.Scene, o editorOptions) *Editor {
	r := o.renderer
	if r == nil {
		r = render.Default()
	}
	ed := &Editor{
		scene:    s,
		history:  history.New(history.WithCapacity(o.capacity)),
		renderer: r,
	}
	// A freshly built or decoded scene always serializes.
	_ = ed.history.Reset(s)
	return ed
}

// Scene returns the live scene for read access. Edits made directly on it
// bypass the undo log.
func (ed *Editor) Scene() *document.Scene { return ed.scene }

// History returns the undo log.
func (ed *Editor) History() *history.Log { return ed.history }

// Subscribe registers fn for scene change events.
func (ed *Editor) Subscribe(fn func(document.Event)) (cancel func()) {
	return ed.scene.Subscribe(fn)
}

// structural records an undo frame immediately.
func (ed *Editor) structural() error {
	return ed.rollback(ed.history.CaptureNow(ed.scene))
}

// edited records an undo frame, deferred while a transaction is open.
func (ed *Editor) edited() error {
	return ed.rollback(ed.history.Capture(ed.scene))
}

// rollback restores the active frame after a failed capture.
func (ed *Editor) rollback(err error) error {
	if err == nil {
		return nil
	}
	logging.Logger().Warn("studio: capture failed, restoring last frame", "err", err)
	if f, ok := ed.history.Current(); ok {
		if rerr := ed.scene.Restore(f); rerr != nil {
			return errors.Join(err, rerr)
		}
	}
	return err
}

// Add inserts a new element on top of the paint order.
func (ed *Editor) Add(spec document.Spec) (string, error) {
	id, err := ed.scene.AddElement(spec)
	if err != nil {
		return "", err
	}
	if err := ed.structural(); err != nil {
		return "", err
	}
	return id, nil
}

// Remove deletes elements and returns the ids actually removed. Stale ids
// are ignored.
func (ed *Editor) Remove(ids ...string) ([]string, error) {
	removed := ed.scene.RemoveElements(ids...)
	if len(removed) == 0 {
		return nil, nil
	}
	if err := ed.structural(); err != nil {
		return nil, err
	}
	return removed, nil
}

// Group merges top-level elements into a new group.
func (ed *Editor) Group(ids ...string) (string, error) {
	id, err := ed.scene.Group(ids...)
	if err != nil {
		return "", err
	}
	if err := ed.structural(); err != nil {
		return "", err
	}
	return id, nil
}

// Ungroup dissolves a group into its children.
func (ed *Editor) Ungroup(id string) ([]string, error) {
	ids, err := ed.scene.Ungroup(id)
	if err != nil {
		return nil, err
	}
	if err := ed.structural(); err != nil {
		return nil, err
	}
	return ids, nil
}

// Import merges the elements of a snapshot into the scene.
func (ed *Editor) Import(data []byte) ([]string, error) {
	ids, err := ed.scene.Import(data)
	if err != nil {
		return nil, err
	}
	if err := ed.structural(); err != nil {
		return nil, err
	}
	return ids, nil
}

// Mutate applies a patch. It reports false for a stale id.
func (ed *Editor) Mutate(id string, p document.Patch) (bool, error) {
	ok, err := ed.scene.Mutate(id, p)
	if err != nil || !ok {
		return ok, err
	}
	if err := ed.edited(); err != nil {
		return false, err
	}
	return true, nil
}

// ReplaceImageSource swaps an image element's pixels, keeping its id,
// name and transform.
func (ed *Editor) ReplaceImageSource(id, ref string, naturalWidth, naturalHeight int) (bool, error) {
	ok, err := ed.scene.ReplaceImageSource(id, ref, naturalWidth, naturalHeight)
	if err != nil || !ok {
		return ok, err
	}
	if err := ed.edited(); err != nil {
		return false, err
	}
	return true, nil
}

// Adjust sets or, with nil params, clears an image element's color
// adjustment.
func (ed *Editor) Adjust(id string, p *adjust.Params) (bool, error) {
	ok, err := adjust.Apply(ed.scene, id, p)
	if err != nil || !ok {
		return ok, err
	}
	if err := ed.edited(); err != nil {
		return false, err
	}
	return true, nil
}

// Blur sets an image element's blur radius. Zero removes the blur.
func (ed *Editor) Blur(id string, radius float64) (bool, error) {
	var ok bool
	var err error
	if radius == 0 {
		ok, err = ed.scene.RemoveFilter(id, document.FilterBlur)
	} else {
		ok, err = ed.scene.SetFilter(id, document.Filter{Kind: document.FilterBlur, Radius: radius})
	}
	if err != nil || !ok {
		return ok, err
	}
	if err := ed.edited(); err != nil {
		return false, err
	}
	return true, nil
}

// Reorder moves a top-level element to newIndex in paint order.
func (ed *Editor) Reorder(id string, newIndex int) error {
	return ed.zorder(ed.scene.Reorder(id, newIndex))
}

// BringForward moves a top-level element one step up.
func (ed *Editor) BringForward(id string) error { return ed.zorder(ed.scene.BringForward(id)) }

// SendBackward moves a top-level element one step down.
func (ed *Editor) SendBackward(id string) error { return ed.zorder(ed.scene.SendBackward(id)) }

// BringToFront moves a top-level element to the top.
func (ed *Editor) BringToFront(id string) error { return ed.zorder(ed.scene.BringToFront(id)) }

// SendToBack moves a top-level element to the bottom.
func (ed *Editor) SendToBack(id string) error { return ed.zorder(ed.scene.SendToBack(id)) }

func (ed *Editor) zorder(err error) error {
	if err != nil {
		return err
	}
	return ed.edited()
}

// SetBackground changes the canvas color.
func (ed *Editor) SetBackground(color string) error {
	if err := ed.scene.SetBackground(color); err != nil {
		return err
	}
	return ed.edited()
}

// Resize fits the content to a new canvas size.
func (ed *Editor) Resize(width, height float64) (document.Fit, error) {
	fit, err := ed.scene.Resize(width, height)
	if err != nil {
		return fit, err
	}
	if err := ed.edited(); err != nil {
		return document.Fit{}, err
	}
	return fit, nil
}

// Begin opens a transaction. Non-structural edits until the matching
// Commit produce a single undo frame.
func (ed *Editor) Begin() { ed.history.BeginTransaction() }

// Commit closes the innermost transaction.
func (ed *Editor) Commit() error { return ed.rollback(ed.history.CommitTransaction(ed.scene)) }

// Undo restores the previous frame. It reports false when there is
// nothing to undo.
func (ed *Editor) Undo() (bool, error) {
	return ed.history.Undo(ed.restore)
}

// Redo restores the next frame. It reports false when there is nothing
// to redo.
func (ed *Editor) Redo() (bool, error) {
	return ed.history.Redo(ed.restore)
}

func (ed *Editor) restore(f history.Frame) error {
	return ed.scene.Restore(f)
}

// CanUndo reports whether Undo would change the scene.
func (ed *Editor) CanUndo() bool { return ed.history.CanUndo() }

// CanRedo reports whether Redo would change the scene.
func (ed *Editor) CanRedo() bool { return ed.history.CanRedo() }

// Save serializes the scene.
func (ed *Editor) Save() ([]byte, error) { return ed.scene.Serialize() }

// Load replaces the scene with a snapshot and starts a fresh undo log.
func (ed *Editor) Load(data []byte) error {
	if err := ed.scene.Restore(data); err != nil {
		return err
	}
	return ed.history.Reset(ed.scene)
}

// Render rasterizes the live scene.
func (ed *Editor) Render(ctx context.Context, o render.Options) (*image.RGBA, error) {
	return ed.renderer.Render(ctx, ed.scene, o)
}

// Export encodes the live scene in the named format.
func (ed *Editor) Export(ctx context.Context, format string, o export.Options) ([]byte, error) {
	if o.Renderer == nil {
		o.Renderer = ed.renderer
	}
	return export.ExportOne(ctx, ed.scene, format, o)
}

// ExportMany starts a background batch export of the scene fitted to
// each ratio. The scene is cloned before ExportMany returns.
func (ed *Editor) ExportMany(ctx context.Context, ratios []export.Ratio, opts ...export.BatchOption) *export.Job {
	opts = append([]export.BatchOption{export.WithRenderer(ed.renderer)}, opts...)
	return export.Start(ctx, ed.scene, ratios, opts...)
}

// Thumbnail renders a PNG preview no larger than maxEdge on either side.
func (ed *Editor) Thumbnail(ctx context.Context, maxEdge int) ([]byte, error) {
	return export.Thumbnail(ctx, ed.scene, maxEdge, ed.renderer)
}
