// Package store is a minimal unidirectional-dataflow store: actions are
// queued from any goroutine and applied one at a time by Run, which then
// notifies watchers with the new state.
package store

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
)

// ErrRunning is returned when Run is called on a store that is already running.
var ErrRunning = errors.New("store: already running")

// Reducer computes the next state.
type Reducer[S, A any] func(S, A) S

// Store serializes actions through a single reducer loop.
type Store[S, A any] struct {
	reducer Reducer[S, A]
	logger  *slog.Logger

	mu    sync.RWMutex
	state S

	qmu   sync.Mutex
	queue []A
	wake  chan struct{}

	wmu      sync.Mutex
	watchers []func(S)

	running sync.Mutex
}

// Option configures a Store.
type Option func(*options)

type options struct {
	logger *slog.Logger
}

// WithLogger sets the logger used for reducer panics. Default: slog.Default().
func WithLogger(l *slog.Logger) Option {
	return func(o *options) { o.logger = l }
}

// New creates a store at init. Nothing is applied until Run is called.
func New[S, A any](init S, reducer Reducer[S, A], opts ...Option) *Store[S, A] {
	o := options{}
	for _, fn := range opts {
		fn(&o)
	}
	if o.logger == nil {
		o.logger = slog.Default()
	}
	return &Store[S, A]{
		reducer: reducer,
		logger:  o.logger,
		state:   init,
		wake:    make(chan struct{}, 1),
	}
}

// Dispatch queues an action. Safe for concurrent use and never blocks on the
// reducer loop.
func (s *Store[S, A]) Dispatch(a A) {
	s.qmu.Lock()
	s.queue = append(s.queue, a)
	s.qmu.Unlock()
	select {
	case s.wake <- struct{}{}:
	default:
	}
}

// Watch registers fn and calls it immediately with the current state.
// Subsequent calls happen on the Run goroutine after every applied action,
// in order. fn must not call Watch.
func (s *Store[S, A]) Watch(fn func(S)) {
	s.wmu.Lock()
	defer s.wmu.Unlock()
	s.watchers = append(s.watchers, fn)
	fn(s.State())
}

// State returns the last computed state.
func (s *Store[S, A]) State() S {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state
}

// Run applies queued actions until ctx is done. It returns ctx.Err().
func (s *Store[S, A]) Run(ctx context.Context) error {
	if !s.running.TryLock() {
		return ErrRunning
	}
	defer s.running.Unlock()

	for {
		for _, a := range s.drain() {
			s.apply(a)
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-s.wake:
		}
	}
}

func (s *Store[S, A]) drain() []A {
	s.qmu.Lock()
	defer s.qmu.Unlock()
	q := s.queue
	s.queue = nil
	return q
}

func (s *Store[S, A]) apply(a A) {
	next, err := s.reduce(a)
	if err != nil {
		s.logger.Error("store: action dropped", "error", err)
		return
	}

	s.mu.Lock()
	s.state = next
	s.mu.Unlock()

	// Held across notification so a concurrent Watch cannot deliver an
	// older state after a newer one.
	s.wmu.Lock()
	defer s.wmu.Unlock()
	for _, fn := range s.watchers {
		fn(next)
	}
}

func (s *Store[S, A]) reduce(a A) (next S, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("reducer panic on %v: %v", a, r)
		}
	}()
	return s.reducer(s.State(), a), nil
}
