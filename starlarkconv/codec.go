// Copyright 2026 The Bazel Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package starlarkconv converts between Go values and Starlark values.
//
// Each supported Go type T has a Codec[T] that decodes a starlark.Value
// into a T and encodes a T back into a starlark.Value. Scalar codecs
// (Bool, String, Int32, Float64, ...) apply the loose coercions of a
// dynamically typed host: any value can be decoded as a bool or a
// string, and most values can be decoded as numbers. Fixed-width
// integers reject values that do not fit.
//
// Container codecs are built from element codecs:
//
//	Optional(Int32)            // *int32; None decodes to nil
//	Sequence(String)           // []string, from a list or tuple
//	Mapping(Float64)           // map[string]float64, from a dict or struct
//
// Records are Go structs that implement Decodable and Encodable, usually
// by running the starlarkgen command:
//
//	//go:generate go run github.com/mibes404/starlark-derive/cmd/starlarkgen -type Point
//
// Struct[Point]() then returns the Codec of such a record. Records can
// also be described at run time with Record, Field and OptionalField.
//
// Decoding fails fast: the first failure aborts the whole conversion and
// is returned as an *Error whose Kind, Field and Path locate it.
package starlarkconv // import "github.com/mibes404/starlark-derive/starlarkconv"

import "go.starlark.net/starlark"

// A Codec converts between Go values of type T and Starlark values.
//
// Decode never retains v, and Encode always succeeds.
type Codec[T any] interface {
	Decode(s *Scope, v starlark.Value) (T, error)
	Encode(s *Scope, x T) starlark.Value
}

// Decode decodes v using c in a new Scope.
func Decode[T any](v starlark.Value, c Codec[T], opts ...ScopeOption) (T, error) {
	return c.Decode(NewScope(opts...), v)
}

// Encode encodes x using c in a new Scope.
func Encode[T any](x T, c Codec[T], opts ...ScopeOption) starlark.Value {
	return c.Encode(NewScope(opts...), x)
}

// Raw is the identity Codec for starlark.Value.
// Undefined decodes, and nil encodes, to None.
var Raw Codec[starlark.Value] = rawCodec{}

type rawCodec struct{}

func (rawCodec) Decode(_ *Scope, v starlark.Value) (starlark.Value, error) {
	if v == nil {
		return starlark.None, nil
	}
	return v, nil
}

func (rawCodec) Encode(_ *Scope, x starlark.Value) starlark.Value {
	if x == nil {
		return starlark.None
	}
	return x
}
