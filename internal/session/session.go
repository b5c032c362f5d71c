// Package session implements the upload/analysis workflow as a state machine.
//
// Transitions never perform I/O or speak. Each one returns a Notice that the
// caller dispatches afterwards, so state can be inspected before any side
// effect runs.
package session

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/alkime/sonify/internal/analysis"
	"github.com/alkime/sonify/internal/backend"
)

// ErrSuperseded cancels an upload whose result nobody will look at anymore.
var ErrSuperseded = errors.New("upload superseded by a newer selection")

// Spoken status messages.
const (
	MsgStarting      = "Starting sonification."
	MsgComplete      = "Sonification complete. Your audio is ready."
	MsgUploadFailed  = "Upload failed."
	MsgNothingToSay  = "Nothing to repeat yet."
	MsgPlaybackStart = "Playing your graph."
)

// State is the workflow position.
type State int

const (
	StateIdle State = iota
	StateUploading
	StateSucceeded
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "Idle"
	case StateUploading:
		return "Uploading"
	case StateSucceeded:
		return "Succeeded"
	case StateFailed:
		return "Failed"
	default:
		return "Unknown"
	}
}

// Notice is a status message for the user, typically spoken.
type Notice struct {
	Text string
	// Interrupt preempts whatever is being spoken instead of queueing.
	Interrupt bool
}

// IsZero reports whether there is nothing to announce.
func (n Notice) IsZero() bool {
	return n.Text == ""
}

// Snapshot is a copy of the observable workflow state.
type Snapshot struct {
	State    State
	UploadID uint64
	FileName string
	Audio    analysis.AudioReference
	Result   *analysis.Result
	Err      error
}

// Ticket authorizes one upload. Its context is cancelled when a newer
// selection supersedes it.
type Ticket struct {
	ID    uint64
	Ctx   context.Context
	Image *backend.Image
}

// AudioResolver turns a backend audio identifier into a retrievable reference.
type AudioResolver func(audioFile string) analysis.AudioReference

// Workflow tracks one user's uploads. It is safe for concurrent use.
type Workflow struct {
	resolve AudioResolver
	timeout time.Duration

	mu       sync.Mutex
	state    State
	uploadID uint64
	fileName string
	audio    analysis.AudioReference
	result   *analysis.Result
	err      error
	cancel   context.CancelFunc
}

// Option configures a Workflow.
type Option func(*Workflow)

// WithUploadTimeout bounds each upload. Zero leaves uploads unbounded.
func WithUploadTimeout(d time.Duration) Option {
	return func(w *Workflow) {
		w.timeout = d
	}
}

// New creates an idle workflow.
func New(resolve AudioResolver, opts ...Option) *Workflow {
	w := &Workflow{resolve: resolve}
	for _, opt := range opts {
		opt(w)
	}

	return w
}

// Snapshot returns the current state.
func (w *Workflow) Snapshot() Snapshot {
	w.mu.Lock()
	defer w.mu.Unlock()

	return Snapshot{
		State:    w.state,
		UploadID: w.uploadID,
		FileName: w.fileName,
		Audio:    w.audio,
		Result:   w.result,
		Err:      w.err,
	}
}

// Select starts a new upload for img from any state. Previous results are
// cleared immediately and a pending upload is cancelled. A nil image is a
// no-op and returns ok=false.
func (w *Workflow) Select(parent context.Context, img *backend.Image) (Ticket, Notice, bool) {
	if img == nil {
		return Ticket{}, Notice{}, false
	}

	w.mu.Lock()
	defer w.mu.Unlock()

	if w.cancel != nil {
		w.cancel()
		w.cancel = nil
	}

	ctx, cancel := context.WithCancel(parent)
	if w.timeout > 0 {
		var stop context.CancelFunc
		ctx, stop = context.WithTimeout(ctx, w.timeout)
		inner := cancel
		cancel = func() {
			stop()
			inner()
		}
	}

	w.uploadID++
	w.state = StateUploading
	w.fileName = img.Name
	w.audio = ""
	w.result = nil
	w.err = nil
	w.cancel = cancel

	return Ticket{ID: w.uploadID, Ctx: ctx, Image: img},
		Notice{Text: MsgStarting, Interrupt: true},
		true
}

// Complete records a successful response for upload id. Responses for
// superseded uploads are ignored and return ok=false.
func (w *Workflow) Complete(id uint64, resp *backend.Response) (Notice, bool) {
	if resp == nil {
		return w.Fail(id, backend.ErrMissingAudioFile)
	}

	w.mu.Lock()
	defer w.mu.Unlock()

	if !w.currentLocked(id) {
		return Notice{}, false
	}

	w.releaseLocked()
	w.state = StateSucceeded
	w.audio = w.resolve(resp.AudioFile)
	w.err = nil

	if resp.Analysis == nil {
		w.result = nil
		return Notice{Text: MsgComplete}, true
	}

	res := *resp.Analysis
	w.result = &res

	return Notice{Text: res.Summary()}, true
}

// Fail records a failed upload. Audio and analysis stay absent.
func (w *Workflow) Fail(id uint64, err error) (Notice, bool) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if !w.currentLocked(id) {
		return Notice{}, false
	}

	w.releaseLocked()
	w.state = StateFailed
	w.audio = ""
	w.result = nil
	w.err = err

	return Notice{Text: MsgUploadFailed, Interrupt: true}, true
}

// Acknowledge dismisses a failure, returning to Idle.
func (w *Workflow) Acknowledge() {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.state != StateFailed {
		return
	}

	w.state = StateIdle
	w.fileName = ""
	w.err = nil
}

// Close cancels any pending upload.
func (w *Workflow) Close() {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.cancel != nil {
		w.cancel()
		w.cancel = nil
	}
}

func (w *Workflow) currentLocked(id uint64) bool {
	return w.state == StateUploading && id == w.uploadID
}

func (w *Workflow) releaseLocked() {
	if w.cancel != nil {
		w.cancel()
		w.cancel = nil
	}
}
