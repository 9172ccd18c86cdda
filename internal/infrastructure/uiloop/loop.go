// Package uiloop provides the goroutine that owns user-facing state.
// Background workers hand it callbacks instead of touching that state.
package uiloop

import (
	"context"
	"errors"
	"sync"

	"github.com/rs/zerolog"
)

const defaultBuffer = 64

// ErrStopped is returned by RunOnUI once the loop has stopped.
var ErrStopped = errors.New("ui loop stopped")

// Loop runs queued callbacks one at a time on a single goroutine.
type Loop struct {
	tasks    chan func()
	stopping chan struct{}
	done     chan struct{}
	log      zerolog.Logger

	mu      sync.RWMutex
	stopped bool
}

// New creates a loop with room for buffer pending callbacks.
func New(buffer int, log zerolog.Logger) *Loop {
	if buffer <= 0 {
		buffer = defaultBuffer
	}
	return &Loop{
		tasks:    make(chan func(), buffer),
		stopping: make(chan struct{}),
		done:     make(chan struct{}),
		log:      log.With().Str("component", "ui_loop").Logger(),
	}
}

// Run executes callbacks until ctx is cancelled, then runs whatever is
// still queued and returns.
func (l *Loop) Run(ctx context.Context) {
	defer close(l.done)
	for {
		select {
		case <-ctx.Done():
			close(l.stopping)
			l.mu.Lock()
			l.stopped = true
			close(l.tasks)
			l.mu.Unlock()
			for fn := range l.tasks {
				l.call(fn)
			}
			return
		case fn := <-l.tasks:
			l.call(fn)
		}
	}
}

// Done is closed once Run has returned.
func (l *Loop) Done() <-chan struct{} {
	return l.done
}

// RunOnUI queues fn to run on the loop goroutine.
func (l *Loop) RunOnUI(fn func()) error {
	l.mu.RLock()
	defer l.mu.RUnlock()
	if l.stopped {
		return ErrStopped
	}
	select {
	case l.tasks <- fn:
		return nil
	case <-l.stopping:
		return ErrStopped
	}
}

func (l *Loop) call(fn func()) {
	defer func() {
		if r := recover(); r != nil {
			l.log.Error().Interface("panic", r).Msg("ui callback panicked")
		}
	}()
	fn()
}
