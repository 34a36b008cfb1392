package session

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/dmitrijs2005/citizenportal/internal/client/models"
	"github.com/dmitrijs2005/citizenportal/internal/client/repositories/snapshot"
	"github.com/dmitrijs2005/citizenportal/internal/logging"
)

var (
	ErrNotAuthenticated  = errors.New("not authenticated")
	ErrIllegalTransition = errors.New("illegal login step transition")
	ErrPersist           = errors.New("failed to persist session")
)

// Listener observes state changes. It receives a copy of the new state and
// runs outside the authority's lock.
type Listener func(models.State)

// Authority is the session store and login state machine.
type Authority struct {
	mu        sync.Mutex
	state     models.State
	repo      snapshot.Repository
	log       logging.Logger
	listeners map[int]Listener
	nextID    int
}

// New rehydrates the authority from repo. A corrupt record is discarded and
// the session starts logged out; any other load error is returned so that
// data the client cannot read is never overwritten.
func New(ctx context.Context, repo snapshot.Repository, log logging.Logger) (*Authority, error) {
	a := &Authority{
		repo:      repo,
		log:       log.With("component", "session"),
		listeners: make(map[int]Listener),
	}

	state, found, err := repo.Load(ctx)
	switch {
	case errors.Is(err, snapshot.ErrCorrupt):
		a.log.Warn(ctx, "discarding unreadable session record", "error", err)
		state = models.InitialState()
	case err != nil:
		return nil, fmt.Errorf("load session: %w", err)
	}

	state, repaired := state.Normalize()
	a.state = state

	if repaired {
		a.log.Warn(ctx, "repaired inconsistent session record", "step", state.CurrentStep)
		if err := a.persist(ctx); err != nil {
			return nil, err
		}
	}

	a.log.Debug(ctx, "session restored", "found", found, "authenticated", state.IsAuthenticated, "step", state.CurrentStep)
	return a, nil
}

// State returns a copy of the current state.
func (a *Authority) State() models.State {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.state.Clone()
}

func (a *Authority) IsAuthenticated() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.state.IsAuthenticated
}

// User returns a copy of the stored profile, or nil when logged out.
func (a *Authority) User() *models.User {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.state.User.Clone()
}

func (a *Authority) CurrentStep() models.Step {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.state.CurrentStep
}

// Login marks the session authenticated with user, replacing any stored
// profile, and moves the cursor to completed. It accepts any prior state;
// identity must have been verified by the caller.
func (a *Authority) Login(ctx context.Context, user models.User) error {
	return a.mutate(ctx, "login", func(s *models.State) error {
		s.IsAuthenticated = true
		s.User = &user
		s.CurrentStep = models.StepCompleted
		s.TempData = models.TempData{}
		return nil
	})
}

// Logout returns the session to the initial state. Safe to repeat.
func (a *Authority) Logout(ctx context.Context) error {
	return a.mutate(ctx, "logout", func(s *models.State) error {
		*s = models.InitialState()
		return nil
	})
}

// UpdateUser replaces the stored profile wholesale. Fields missing from user
// are lost; callers that want a merge must merge before calling. It is
// refused with ErrNotAuthenticated while logged out.
func (a *Authority) UpdateUser(ctx context.Context, user models.User) error {
	return a.mutate(ctx, "update_user", func(s *models.State) error {
		if !s.IsAuthenticated {
			return ErrNotAuthenticated
		}
		s.User = &user
		return nil
	})
}

// SetStep moves the cursor to step without checking that the move is a
// legal transition. Values outside the enumeration are rejected. Prefer
// Advance.
func (a *Authority) SetStep(ctx context.Context, step models.Step) error {
	return a.mutate(ctx, "set_step", func(s *models.State) error {
		if !step.Valid() {
			return fmt.Errorf("%w: %q", models.ErrUnknownStep, step)
		}
		s.CurrentStep = step
		return nil
	})
}

// Advance moves the cursor to to, which must be the single legal successor
// of the current step. completed is reachable only through Login.
func (a *Authority) Advance(ctx context.Context, to models.Step) error {
	return a.mutate(ctx, "advance", func(s *models.State) error {
		if to.Terminal() || !models.CanAdvance(s.CurrentStep, to) {
			return fmt.Errorf("%w: %s -> %s", ErrIllegalTransition, s.CurrentStep, to)
		}
		s.CurrentStep = to
		return nil
	})
}

// SetTempData shallow-merges partial into the captured flow values.
func (a *Authority) SetTempData(ctx context.Context, partial models.TempData) error {
	return a.mutate(ctx, "set_temp_data", func(s *models.State) error {
		s.TempData = s.TempData.Merge(partial)
		return nil
	})
}

// ResetAuth aborts an in-progress flow: the cursor returns to mobile and the
// captured values are dropped. Authentication and profile are untouched.
func (a *Authority) ResetAuth(ctx context.Context) error {
	return a.mutate(ctx, "reset", func(s *models.State) error {
		s.CurrentStep = models.StepMobile
		s.TempData = models.TempData{}
		return nil
	})
}

// Clear logs out and removes the persisted record.
func (a *Authority) Clear(ctx context.Context) error {
	a.mu.Lock()
	a.state = models.InitialState()
	err := a.repo.Delete(ctx)
	snap := a.state.Clone()
	listeners := a.snapshotListeners()
	a.mu.Unlock()

	notify(listeners, snap)
	if err != nil {
		a.log.Error(ctx, "failed to delete session record", "error", err)
		return fmt.Errorf("%w: %w", ErrPersist, err)
	}
	a.log.Info(ctx, "session cleared")
	return nil
}

// Subscribe registers fn for state changes and returns a function that
// removes it.
func (a *Authority) Subscribe(fn Listener) (unsubscribe func()) {
	a.mu.Lock()
	defer a.mu.Unlock()

	id := a.nextID
	a.nextID++
	a.listeners[id] = fn

	return func() {
		a.mu.Lock()
		defer a.mu.Unlock()
		delete(a.listeners, id)
	}
}

// Close drops all listeners. The authority stays usable.
func (a *Authority) Close() {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.listeners = make(map[int]Listener)
}

func (a *Authority) mutate(ctx context.Context, op string, fn func(s *models.State) error) error {
	a.mu.Lock()

	next := a.state.Clone()
	if err := fn(&next); err != nil {
		a.mu.Unlock()
		a.log.Debug(ctx, "session operation refused", "op", op, "error", err)
		return err
	}

	prev := a.state.CurrentStep
	a.state = next
	perr := a.persist(ctx)
	snap := a.state.Clone()
	listeners := a.snapshotListeners()
	a.mu.Unlock()

	if prev != snap.CurrentStep {
		a.log.Info(ctx, "login step changed", "op", op, "from", prev, "to", snap.CurrentStep)
	}
	notify(listeners, snap)
	return perr
}

// persist writes the current state; a.mu must be held.
func (a *Authority) persist(ctx context.Context) error {
	if err := a.repo.Save(ctx, a.state); err != nil {
		a.log.Error(ctx, "failed to persist session", "error", err)
		return fmt.Errorf("%w: %w", ErrPersist, err)
	}
	return nil
}

func (a *Authority) snapshotListeners() []Listener {
	out := make([]Listener, 0, len(a.listeners))
	for _, l := range a.listeners {
		out = append(out, l)
	}
	return out
}

func notify(listeners []Listener, s models.State) {
	for _, l := range listeners {
		l(s.Clone())
	}
}
