// Package history implements a bounded, linear undo/redo log of opaque
// document snapshots.
//
// The log has two modes. While Recording, Capture appends frames. While an
// undo or redo frame is being applied the log is Replaying and Capture is
// a no-op, so listeners that capture on every change cannot write the
// replayed state back into the log.
package history

import (
	"bytes"
	"errors"

	"github.com/gogpu/studio/internal/logging"
)

// DefaultCapacity is the number of frames kept when no capacity is given.
const DefaultCapacity = 50

// ErrReplaying is returned when undo or redo is requested while a frame is
// already being applied.
var ErrReplaying = errors.New("history: replay in progress")

// Frame is one serialized capture of the document.
type Frame []byte

// Snapshotter produces a frame of its current state.
type Snapshotter interface {
	Serialize() ([]byte, error)
}

// Mode is the state of the log.
type Mode uint8

// Log modes.
const (
	Recording Mode = iota
	Replaying
)

// String returns a human-readable name for the mode.
func (m Mode) String() string {
	if m == Replaying {
		return "replaying"
	}
	return "recording"
}

// Log is an ordered sequence of frames with a cursor at the active frame.
// Invariant: 0 <= cursor < len(frames) whenever frames is non-empty.
//
// A Log is not safe for concurrent use.
type Log struct {
	frames   []Frame
	cursor   int
	capacity int
	mode     Mode

	txDepth int
	pending bool
}

// Option configures a Log.
type Option func(*Log)

// WithCapacity bounds the number of frames. Values below 1 are ignored.
func WithCapacity(n int) Option {
	return func(l *Log) {
		if n >= 1 {
			l.capacity = n
		}
	}
}

// New creates an empty log.
func New(opts ...Option) *Log {
	l := &Log{capacity: DefaultCapacity}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Len returns the number of frames held.
func (l *Log) Len() int { return len(l.frames) }

// Cursor returns the index of the active frame, or -1 when empty.
func (l *Log) Cursor() int {
	if len(l.frames) == 0 {
		return -1
	}
	return l.cursor
}

// Capacity returns the maximum number of frames.
func (l *Log) Capacity() int { return l.capacity }

// Mode returns the current mode.
func (l *Log) Mode() Mode { return l.mode }

// CanUndo reports whether an earlier frame exists.
func (l *Log) CanUndo() bool { return l.cursor > 0 }

// CanRedo reports whether a later frame exists.
func (l *Log) CanRedo() bool { return l.cursor < len(l.frames)-1 }

// Current returns the active frame.
func (l *Log) Current() (Frame, bool) {
	if len(l.frames) == 0 {
		return nil, false
	}
	return l.frames[l.cursor], true
}

// Frames returns the held frames, oldest first. The frames are shared and
// must not be modified.
func (l *Log) Frames() []Frame {
	return append([]Frame(nil), l.frames...)
}

// Reset discards every frame and seeds the log with the state of s.
func (l *Log) Reset(s Snapshotter) error {
	data, err := s.Serialize()
	if err != nil {
		return err
	}
	l.frames = []Frame{data}
	l.cursor = 0
	l.txDepth = 0
	l.pending = false
	return nil
}

// Capture records the state of s. It is a no-op while replaying and is
// deferred to CommitTransaction while a transaction is open.
func (l *Log) Capture(s Snapshotter) error {
	if l.mode == Replaying {
		return nil
	}
	if l.txDepth > 0 {
		l.pending = true
		return nil
	}
	return l.record(s)
}

// CaptureNow records the state of s even inside an open transaction.
// Structural edits use it so they always get their own frame.
func (l *Log) CaptureNow(s Snapshotter) error {
	if l.mode == Replaying {
		return nil
	}
	return l.record(s)
}

func (l *Log) record(s Snapshotter) error {
	data, err := s.Serialize()
	if err != nil {
		return err
	}
	if cur, ok := l.Current(); ok && bytes.Equal(cur, data) {
		return nil
	}
	if len(l.frames) > 0 {
		l.frames = l.frames[:l.cursor+1]
	}
	l.frames = append(l.frames, data)
	l.cursor = len(l.frames) - 1
	if over := len(l.frames) - l.capacity; over > 0 {
		copy(l.frames, l.frames[over:])
		for i := len(l.frames) - over; i < len(l.frames); i++ {
			l.frames[i] = nil
		}
		l.frames = l.frames[:len(l.frames)-over]
		l.cursor -= over
	}
	logging.Logger().Debug("history: captured", "frames", len(l.frames), "cursor", l.cursor, "bytes", len(data))
	return nil
}

// BeginTransaction opens a coalescing boundary. Captures until the
// matching CommitTransaction collapse into at most one frame.
// Transactions nest; only the outermost commit records.
func (l *Log) BeginTransaction() {
	l.txDepth++
}

// CommitTransaction closes the innermost transaction. When the outermost
// transaction closes with deferred captures, the state of s is recorded.
func (l *Log) CommitTransaction(s Snapshotter) error {
	if l.txDepth == 0 {
		return nil
	}
	l.txDepth--
	if l.txDepth > 0 || !l.pending {
		return nil
	}
	l.pending = false
	return l.Capture(s)
}

// InTransaction reports whether a transaction is open.
func (l *Log) InTransaction() bool { return l.txDepth > 0 }

// Undo applies the previous frame. It reports false when there is nothing
// to undo. If apply fails the cursor does not move and the error is
// returned.
func (l *Log) Undo(apply func(Frame) error) (bool, error) {
	if !l.CanUndo() {
		return false, nil
	}
	return l.replay(l.cursor-1, apply)
}

// Redo applies the next frame. It mirrors Undo.
func (l *Log) Redo(apply func(Frame) error) (bool, error) {
	if !l.CanRedo() {
		return false, nil
	}
	return l.replay(l.cursor+1, apply)
}

func (l *Log) replay(target int, apply func(Frame) error) (bool, error) {
	if l.mode == Replaying {
		return false, ErrReplaying
	}
	l.mode = Replaying
	err := apply(l.frames[target])
	l.mode = Recording
	if err != nil {
		logging.Logger().Warn("history: replay failed", "target", target, "err", err)
		return false, err
	}
	l.cursor = target
	l.pending = false
	logging.Logger().Debug("history: replayed", "cursor", l.cursor)
	return true, nil
}
