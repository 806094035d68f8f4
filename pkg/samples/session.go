package samples

import (
	"fmt"

	"github.com/google/uuid"

	"github.com/menta2k/sketchpad/internal/logger"
	"github.com/menta2k/sketchpad/pkg/canvas"
	"github.com/menta2k/sketchpad/pkg/export"
	"github.com/menta2k/sketchpad/pkg/types"
)

// SampleSize is the side of the square JPEG every sample is exported at
const SampleSize = 300

// ExportSample renders c as a SampleSize JPEG ready for CompleteRequest
func ExportSample(c *canvas.Canvas) ([]byte, error) {
	return export.FromCanvas[[]byte](c, export.Bitmap{
		Width:   SampleSize,
		Height:  SampleSize,
		Format:  export.JPEG,
		Quality: export.DefaultQuality,
	})
}

// Request asks the user to draw one sample of Label
type Request struct {
	ID    uuid.UUID
	Label types.Class
}

// Session hands out one request at a time, always for the label with the
// fewest contributions. It is not safe for concurrent use.
type Session struct {
	store         *Store
	contributions map[types.Class]int
	active        *Request
}

// NewSession starts counting from what the store already holds
func NewSession(store *Store) *Session {
	return &Session{store: store, contributions: store.Counts()}
}

// Contributions returns a copy of the per-label counts
func (s *Session) Contributions() map[types.Class]int {
	out := make(map[types.Class]int, len(s.contributions))
	for k, v := range s.contributions {
		out[k] = v
	}
	return out
}

// Active returns the pending request, if any
func (s *Session) Active() (Request, bool) {
	if s.active == nil {
		return Request{}, false
	}
	return *s.active, true
}

// Start issues the first request
func (s *Session) Start() (Request, error) {
	if s.active != nil {
		return Request{}, fmt.Errorf("%w: a request is already active", types.ErrPreconditionViolation)
	}
	return s.next(), nil
}

// CompleteRequest stores the JPEG sample for the active request and issues
// the next one
func (s *Session) CompleteRequest(id uuid.UUID, jpeg []byte) (Request, error) {
	if s.active == nil {
		return Request{}, fmt.Errorf("%w: no request was started", types.ErrPreconditionViolation)
	}
	if s.active.ID != id {
		return Request{}, fmt.Errorf("%w: request %s is not the active one", types.ErrPreconditionViolation, id)
	}

	label := s.active.Label
	path, err := s.store.Save(label, jpeg)
	if err != nil {
		return Request{}, err
	}
	s.contributions[label]++
	logger.L().Info("sample saved", "label", string(label), "path", path, "count", s.contributions[label])

	return s.next(), nil
}

func (s *Session) next() Request {
	labels := s.store.Labels()
	lowest := labels[0]
	for _, label := range labels[1:] {
		if s.contributions[label] < s.contributions[lowest] {
			lowest = label
		}
	}
	r := Request{ID: uuid.New(), Label: lowest}
	s.active = &r
	return r
}
