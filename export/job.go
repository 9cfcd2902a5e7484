package export

import (
	"context"

	"github.com/gogpu/studio/document"
)

// Job is a batch export running in the background.
type Job struct {
	cancel   context.CancelFunc
	progress chan Progress
	done     chan struct{}
	result   *BatchResult
	err      error
}

// Start launches ExportMany in a new goroutine. The scene is cloned before
// Start returns, so s may be edited while the job runs. Progress events
// are delivered on Progress as well as to any WithProgress callback.
func Start(ctx context.Context, s *document.Scene, ratios []Ratio, opts ...BatchOption) *Job {
	ctx, cancel := context.WithCancel(ctx)
	j := &Job{
		cancel:   cancel,
		progress: make(chan Progress, len(ratios)),
		done:     make(chan struct{}),
	}

	cfg := newBatchConfig(opts)
	user := cfg.progress
	cfg.progress = func(p Progress) {
		if user != nil {
			user(p)
		}
		j.progress <- p
	}
	b := newBatch(s, ratios, cfg)

	go func() {
		defer close(j.done)
		defer close(j.progress)
		defer cancel()
		j.result, j.err = b.run(ctx)
	}()
	return j
}

// Progress returns a channel of per-ratio completions. It is buffered
// for every ratio and closed when the job ends.
func (j *Job) Progress() <-chan Progress { return j.progress }

// Done is closed when the job ends.
func (j *Job) Done() <-chan struct{} { return j.done }

// Cancel stops the job. Renditions produced so far are discarded.
func (j *Job) Cancel() { j.cancel() }

// Wait blocks until the job ends and returns its result.
func (j *Job) Wait() (*BatchResult, error) {
	<-j.done
	return j.result, j.err
}
