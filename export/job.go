package export

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"
)

// State is the lifecycle state of an export job.
type State string

const (
	StateIdle      State = "idle"
	StateExporting State = "exporting"
	StateDone      State = "done"
	StateFailed    State = "failed"
)

// Status is a snapshot of a job.
type Status struct {
	State State
	// Progress is in [0, 100].
	Progress   float64
	Generation string
	Archive    *Archive
	Err        error
}

// RunFunc performs one export run, reporting progress as a fraction in [0, 1].
type RunFunc func(ctx context.Context, progress func(float64)) (*Archive, error)

// Job serializes export runs: idle -> exporting -> done|failed -> idle.
// Every run carries a generation token; Cancel replaces the token so the
// completion of a superseded run is dropped.
type Job struct {
	mu       sync.Mutex
	state    State
	progress float64
	gen      string
	cancel   context.CancelFunc
	archive  *Archive
	err      error
	onChange func(Status)
}

// NewJob returns an idle job. onChange, when set, receives every transition
// and progress update.
func NewJob(onChange func(Status)) *Job {
	return &Job{state: StateIdle, onChange: onChange}
}

// Status returns the current snapshot.
func (j *Job) Status() Status {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.snapshot()
}

func (j *Job) snapshot() Status {
	return Status{State: j.state, Progress: j.progress, Generation: j.gen, Archive: j.archive, Err: j.err}
}

func (j *Job) notify(s Status) {
	if j.onChange != nil {
		j.onChange(s)
	}
}

// Run executes fn as the job's current generation and blocks until it
// returns. It fails with ErrBusy while another run is exporting, and with
// ErrCanceled when Cancel superseded this run.
func (j *Job) Run(ctx context.Context, fn RunFunc) (*Archive, error) {
	j.mu.Lock()
	if j.state == StateExporting {
		j.mu.Unlock()
		return nil, ErrBusy
	}
	runCtx, cancel := context.WithCancel(ctx)
	gen := uuid.NewString()
	j.state, j.progress, j.gen, j.cancel = StateExporting, 0, gen, cancel
	j.archive, j.err = nil, nil
	start := j.snapshot()
	j.mu.Unlock()
	j.notify(start)
	defer cancel()

	archive, err := fn(runCtx, func(frac float64) {
		j.mu.Lock()
		if j.gen != gen || j.state != StateExporting {
			j.mu.Unlock()
			return
		}
		j.progress = clampPercent(frac * 100)
		s := j.snapshot()
		j.mu.Unlock()
		j.notify(s)
	})

	j.mu.Lock()
	if j.gen != gen {
		j.mu.Unlock()
		return nil, ErrCanceled
	}
	j.cancel = nil
	if err != nil {
		j.state, j.err = StateFailed, err
	} else {
		j.state, j.progress, j.archive = StateDone, 100, archive
	}
	end := j.snapshot()
	j.mu.Unlock()
	j.notify(end)
	if err != nil {
		return nil, err
	}
	return archive, nil
}

// Cancel aborts the running export, if any, and returns the job to idle.
func (j *Job) Cancel() {
	j.mu.Lock()
	if j.cancel != nil {
		j.cancel()
		j.cancel = nil
	}
	j.gen = uuid.NewString()
	j.state, j.progress, j.archive, j.err = StateIdle, 0, nil, nil
	s := j.snapshot()
	j.mu.Unlock()
	j.notify(s)
}

// Reset acknowledges a finished run and returns the job to idle.
func (j *Job) Reset() error {
	j.mu.Lock()
	if j.state == StateExporting {
		j.mu.Unlock()
		return fmt.Errorf("%w: cancel it first", ErrBusy)
	}
	j.state, j.progress, j.archive, j.err = StateIdle, 0, nil, nil
	s := j.snapshot()
	j.mu.Unlock()
	j.notify(s)
	return nil
}

func clampPercent(v float64) float64 {
	switch {
	case v < 0:
		return 0
	case v > 100:
		return 100
	}
	return v
}
