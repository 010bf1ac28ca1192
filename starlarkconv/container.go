// Copyright 2026 The Bazel Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package starlarkconv

import "go.starlark.net/starlark"

// Optional returns a Codec for *T. None and undefined decode to nil
// without consulting c; nil encodes to None.
func Optional[T any](c Codec[T]) Codec[*T] { return optionalCodec[T]{c} }

type optionalCodec[T any] struct{ elem Codec[T] }

func (c optionalCodec[T]) Decode(s *Scope, v starlark.Value) (*T, error) {
	if IsNullOrUndefined(v) {
		return nil, nil
	}
	x, err := c.elem.Decode(s, v)
	if err != nil {
		return nil, err
	}
	return &x, nil
}

func (c optionalCodec[T]) Encode(s *Scope, x *T) starlark.Value {
	if x == nil {
		return starlark.None
	}
	return c.elem.Encode(s, *x)
}

// Sequence returns a Codec for []T. It decodes any array-shaped value
// (list, tuple, range) element by element, in index order, and encodes
// a new list.
func Sequence[T any](c Codec[T]) Codec[[]T] { return sequenceCodec[T]{c} }

type sequenceCodec[T any] struct{ elem Codec[T] }

func (c sequenceCodec[T]) Decode(s *Scope, v starlark.Value) ([]T, error) {
	if !IsArray(v) {
		return nil, newError(ExpectedArray, typeOf(v), "")
	}
	s = s.orNew()
	if err := s.Enter(v); err != nil {
		return nil, err
	}
	defer s.Leave()

	a := v.(starlark.Indexable)
	n := a.Len()
	out := make([]T, 0, n)
	for i := 0; i < n; i++ {
		x, err := c.elem.Decode(s, a.Index(i))
		if err != nil {
			return nil, within(err, indexSegment(i))
		}
		out = append(out, x)
	}
	return out, nil
}

func (c sequenceCodec[T]) Encode(s *Scope, x []T) starlark.Value {
	elems := make([]starlark.Value, len(x))
	for i, e := range x {
		elems[i] = c.elem.Encode(s, e)
	}
	return starlark.NewList(elems)
}
