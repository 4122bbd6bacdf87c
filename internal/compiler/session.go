package compiler

import (
	"context"
	"sync"
)

// Session retains the last successful Result across recompiles, for
// interactive consumers that keep serving the previous good world while
// the author is mid-edit.
type Session struct {
	opts []Option

	mu   sync.Mutex
	last Result
	good bool
}

// NewSession builds a session; the options apply to every compile.
func NewSession(opts ...Option) *Session {
	return &Session{opts: opts}
}

// Compile runs one compilation and records it when successful.
func (s *Session) Compile(ctx context.Context, entry string) Result {
	res := Compile(ctx, entry, s.opts...)
	if res.Success {
		s.mu.Lock()
		s.last = res
		s.good = true
		s.mu.Unlock()
	}
	return res
}

// LastGood returns the most recent successful result, if any.
func (s *Session) LastGood() (Result, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.last, s.good
}
