package walkplan

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	apperrors "github.com/yanqian/walkcast/pkg/errors"
)

// ErrSuperseded is returned when a newer submission took over the surface
// before this one finished.
var ErrSuperseded = apperrors.Wrap(apperrors.CodeSuperseded, "a newer submission replaced this one", nil)

var errNothingRendered = apperrors.Wrap(apperrors.CodeNotFound, "surface has nothing rendered yet", nil)

// Ticket identifies one submission against a surface.
type Ticket struct {
	ctx        context.Context
	generation uint64
}

// Context is cancelled as soon as a newer submission begins on the same surface.
func (t Ticket) Context() context.Context { return t.ctx }

// Generation is the surface generation this submission renders.
func (t Ticket) Generation() uint64 { return t.generation }

// Surface is the single-owner render target of one client: the current list
// and chart plus a generation counter that orders submissions.
type Surface struct {
	id string

	mu         sync.Mutex
	generation uint64
	cancel     context.CancelFunc
	view       View
	rendered   bool
	lastUsed   time.Time
}

func newSurface(id string, now time.Time) *Surface {
	return &Surface{id: id, lastUsed: now}
}

// ID returns the surface identifier handed back to clients.
func (s *Surface) ID() string { return s.id }

// Begin starts a new submission. The previous in-flight submission, if any,
// has its context cancelled and can no longer commit. The returned release
// func must be called when the submission ends.
func (s *Surface) Begin(ctx context.Context) (Ticket, func()) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.cancel != nil {
		s.cancel()
	}
	s.generation++
	subCtx, cancel := context.WithCancel(ctx)
	s.cancel = cancel
	ticket := Ticket{ctx: subCtx, generation: s.generation}

	release := func() {
		cancel()
		s.mu.Lock()
		if s.generation == ticket.generation {
			s.cancel = nil
		}
		s.mu.Unlock()
	}
	return ticket, release
}

// Current reports whether the ticket still owns the surface.
func (s *Surface) Current(t Ticket) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.generation == t.generation
}

// Commit replaces the displayed list and chart. The previous chart is
// destroyed before the new one is installed. Stale tickets get ErrSuperseded
// and leave the surface untouched.
func (s *Surface) Commit(t Ticket, view View) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if t.generation != s.generation {
		return ErrSuperseded
	}
	if s.view.Chart != nil {
		s.view.Chart.Destroy()
	}
	view.SurfaceID = s.id
	view.Generation = t.generation
	s.view = view
	s.rendered = true
	return nil
}

// Snapshot returns the displayed view and whether anything was rendered yet.
func (s *Surface) Snapshot() (View, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.view, s.rendered
}

// RenderChart runs render against the displayed chart while holding the
// surface, so no Commit can destroy the chart mid render.
func (s *Surface) RenderChart(render func(*Chart) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.rendered || s.view.Chart == nil {
		return errNothingRendered
	}
	return render(s.view.Chart)
}

func (s *Surface) touch(now time.Time) {
	s.mu.Lock()
	s.lastUsed = now
	s.mu.Unlock()
}

func (s *Surface) idleSince(now time.Time, ttl time.Duration) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cancel == nil && now.Sub(s.lastUsed) > ttl
}

// SurfaceRegistry owns every live surface. Surfaces that stay idle longer
// than the TTL are dropped on the next Acquire.
type SurfaceRegistry struct {
	mu       sync.Mutex
	surfaces map[string]*Surface
	ttl      time.Duration
	now      func() time.Time
}

// NewSurfaceRegistry constructs a registry; ttl <= 0 disables eviction.
func NewSurfaceRegistry(ttl time.Duration) *SurfaceRegistry {
	return &SurfaceRegistry{
		surfaces: make(map[string]*Surface),
		ttl:      ttl,
		now:      time.Now,
	}
}

// Acquire returns the surface for id, creating it when needed. An empty id
// allocates a fresh surface; a non-empty id must be a UUID.
func (r *SurfaceRegistry) Acquire(id string) (*Surface, error) {
	if id == "" {
		id = uuid.NewString()
	} else if _, err := uuid.Parse(id); err != nil {
		return nil, apperrors.Wrap(apperrors.CodeInvalidInput, "surfaceId must be a UUID", err)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	now := r.now()
	r.evictLocked(now)
	surface, ok := r.surfaces[id]
	if !ok {
		surface = newSurface(id, now)
		r.surfaces[id] = surface
	}
	surface.touch(now)
	return surface, nil
}

// Lookup returns an existing surface.
func (r *SurfaceRegistry) Lookup(id string) (*Surface, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	surface, ok := r.surfaces[id]
	return surface, ok
}

// Len reports the number of live surfaces.
func (r *SurfaceRegistry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.surfaces)
}

func (r *SurfaceRegistry) evictLocked(now time.Time) {
	if r.ttl <= 0 {
		return
	}
	for id, surface := range r.surfaces {
		if surface.idleSince(now, r.ttl) {
			delete(r.surfaces, id)
		}
	}
}
