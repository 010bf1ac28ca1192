// Copyright 2026 The Bazel Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package starlarkconv

import (
	"go.starlark.net/starlark"
	"go.uber.org/zap"
)

// DefaultMaxDepth is the nesting limit of a Scope created by NewScope.
const DefaultMaxDepth = 1000

// A Scope holds the state of a single conversion call. It is passed by
// pointer through every recursive Decode and Encode call and must not
// be retained once the outermost call returns; neither may any
// starlark.Value passed to it.
//
// A nil *Scope is valid and behaves like NewScope(): the codecs that
// descend into containers and records replace it by a new Scope.
type Scope struct {
	depth    int
	maxDepth int
	log      *zap.Logger
}

// A ScopeOption configures a Scope.
type ScopeOption func(*Scope)

// WithMaxDepth limits how deeply nested a decoded value may be.
// Starlark lists and dicts may contain themselves, so some limit is
// needed for any value that is not known to be acyclic.
func WithMaxDepth(n int) ScopeOption {
	return func(s *Scope) { s.maxDepth = n }
}

// WithLogger sets the logger of the scope, overriding Logger().
func WithLogger(l *zap.Logger) ScopeOption {
	return func(s *Scope) { s.log = l }
}

// NewScope returns a scope for one conversion call.
func NewScope(opts ...ScopeOption) *Scope {
	s := &Scope{maxDepth: DefaultMaxDepth}
	for _, opt := range opts {
		opt(s)
	}
	if s.log == nil {
		s.log = Logger()
	}
	return s
}

// Enter records that the caller is about to decode the elements of the
// container v. Each successful Enter must be paired with Leave.
func (s *Scope) Enter(v starlark.Value) error {
	if s == nil {
		return nil
	}
	limit := s.maxDepth
	if limit <= 0 {
		limit = DefaultMaxDepth
	}
	if s.depth >= limit {
		return newError(UnsupportedValueType, typeOf(v), "nesting exceeds %d levels (cyclic value?)", limit)
	}
	s.depth++
	return nil
}

// orNew returns s, or a new Scope if s is nil.
func (s *Scope) orNew() *Scope {
	if s == nil {
		return NewScope()
	}
	return s
}

// Leave undoes a successful Enter.
func (s *Scope) Leave() {
	if s != nil && s.depth > 0 {
		s.depth--
	}
}

// Logger returns the logger of the scope.
func (s *Scope) Logger() *zap.Logger {
	if s == nil || s.log == nil {
		return Logger()
	}
	return s.log
}
