package homomorphism

import (
	"context"

	"github.com/datalogplus/pie"
)

// SubstitutionIterator is the pull-based lazy sequence a search produces,
// mirroring fact.TupleIterator so callers compose the two uniformly.
type SubstitutionIterator interface {
	Next() (pie.Substitution, bool)
	Err() error
	// Close releases the producing goroutine if the consumer stops before
	// exhausting the iterator. Safe to call after exhaustion.
	Close()
}

// substitutionStream backs a SubstitutionIterator with a channel fed by a
// goroutine running the recursive backtracking search, grounded on
// gitrdm-gokando's Stream/Goal design (core.go): a channel-based sequence
// with a context-driven cancellation path so an abandoned consumer doesn't
// leak the producer.
type substitutionStream struct {
	ctx    context.Context
	cancel context.CancelFunc
	ch     chan pie.Substitution
	errCh  chan error
	err    error
	closed bool
}

func newSubstitutionStream(parent context.Context) *substitutionStream {
	ctx, cancel := context.WithCancel(parent)
	return &substitutionStream{
		ctx:    ctx,
		cancel: cancel,
		ch:     make(chan pie.Substitution),
		errCh:  make(chan error, 1),
	}
}

// emit delivers a solution to the consumer, or reports false if the
// consumer has already closed the stream (the producer should stop).
func (s *substitutionStream) emit(sub pie.Substitution) bool {
	select {
	case s.ch <- sub:
		return true
	case <-s.ctx.Done():
		return false
	}
}

func (s *substitutionStream) fail(err error) {
	select {
	case s.errCh <- err:
	default:
	}
}

func (s *substitutionStream) Next() (pie.Substitution, bool) {
	if s.closed {
		return pie.Substitution{}, false
	}
	select {
	case sub, ok := <-s.ch:
		if !ok {
			s.drainErr()
			return pie.Substitution{}, false
		}
		return sub, true
	case err := <-s.errCh:
		s.err = err
		s.closed = true
		return pie.Substitution{}, false
	}
}

func (s *substitutionStream) drainErr() {
	select {
	case err := <-s.errCh:
		s.err = err
	default:
	}
}

func (s *substitutionStream) Err() error { return s.err }

func (s *substitutionStream) Close() {
	if s.closed {
		return
	}
	s.closed = true
	s.cancel()
}
