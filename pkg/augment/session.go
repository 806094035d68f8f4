package augment

import (
	"fmt"
	"image"
	"slices"
	"sync/atomic"

	"github.com/menta2k/sketchpad/internal/logger"
	"github.com/menta2k/sketchpad/pkg/dispatch"
	"github.com/menta2k/sketchpad/pkg/types"
)

// State is the lifecycle stage of a Session
type State int32

const (
	Idle State = iota
	Running
	Finished
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Running:
		return "running"
	case Finished:
		return "finished"
	}
	return fmt.Sprintf("State(%d)", int32(s))
}

// Step is the result of applying one filter
type Step struct {
	Index  int
	Filter Filter
	Image  *image.RGBA
}

// Handler receives session events on the caller's queue
type Handler interface {
	// StepProduced delivers the image of one filter. Steps arrive in
	// filter order.
	StepProduced(s *Session, step Step)
	// SessionFinished is delivered once, after the last step or the first
	// failure. err wraps ErrFilterFailed on failure.
	SessionFinished(s *Session, err error)
}

// HandlerFuncs adapts plain functions to Handler. Nil fields are skipped.
type HandlerFuncs struct {
	Step     func(s *Session, step Step)
	Finished func(s *Session, err error)
}

func (h HandlerFuncs) StepProduced(s *Session, step Step) {
	if h.Step != nil {
		h.Step(s, step)
	}
}

func (h HandlerFuncs) SessionFinished(s *Session, err error) {
	if h.Finished != nil {
		h.Finished(s, err)
	}
}

// Session runs one filter list over one image on a background goroutine.
// It can be started once; callers that lose interest simply ignore its
// remaining events.
type Session struct {
	filters []Filter
	engine  engine
	state   atomic.Int32
}

// NewSession creates an idle session. The filter list is copied.
func NewSession(filters []Filter, opts ...Option) *Session {
	return &Session{
		filters: slices.Clone(filters),
		engine:  engine{opts: newOptions(opts)},
	}
}

// State returns the current lifecycle stage
func (s *Session) State() State {
	return State(s.state.Load())
}

// Filters returns a copy of the filter list
func (s *Session) Filters() []Filter {
	return slices.Clone(s.filters)
}

// ImageSize is the size of every emitted image
func (s *Session) ImageSize() image.Point {
	return s.engine.opts.size
}

// Start begins applying the filters to initial. Every event is posted to
// q, and the next filter is computed only after the previous step's event
// has run there. Starting a session twice is a precondition violation.
func (s *Session) Start(initial image.Image, h Handler, q dispatch.Queue) error {
	if initial == nil || h == nil || q == nil {
		return fmt.Errorf("%w: session needs an image, a handler and a queue", types.ErrPreconditionViolation)
	}
	if !s.state.CompareAndSwap(int32(Idle), int32(Running)) {
		return fmt.Errorf("%w: session already %s", types.ErrPreconditionViolation, s.State())
	}

	go s.run(initial, h, q)
	return nil
}

func (s *Session) run(initial image.Image, h Handler, q dispatch.Queue) {
	log := logger.L().With("filters", len(s.filters))
	log.Debug("augmentation started")

	current := initial
	for i, f := range s.filters {
		img, err := s.engine.step(current, f)
		if err != nil {
			s.finish(h, q, fmt.Errorf("step %d %s: %w", i, f, err))
			return
		}

		step := Step{Index: i, Filter: f, Image: img}
		if !deliver(q, func() { h.StepProduced(s, step) }) {
			log.Debug("augmentation abandoned", "step", i)
			s.state.Store(int32(Finished))
			return
		}
		current = img
	}
	s.finish(h, q, nil)
}

func (s *Session) finish(h Handler, q dispatch.Queue, err error) {
	if err != nil {
		logger.L().Warn("augmentation failed", "error", err)
	}
	delivered := deliver(q, func() {
		s.state.Store(int32(Finished))
		h.SessionFinished(s, err)
	})
	if !delivered {
		s.state.Store(int32(Finished))
	}
}

// deliver posts fn and waits until it has run. It reports false when q
// rejected fn or discarded it before it ran.
func deliver(q dispatch.Queue, fn func()) bool {
	done := make(chan struct{})
	if !q.Post(func() {
		defer close(done)
		fn()
	}) {
		return false
	}
	select {
	case <-done:
		return true
	case <-dispatch.Done(q):
		return false
	}
}
