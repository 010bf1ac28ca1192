// Copyright 2026 The Bazel Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package starlarkconv

import "go.starlark.net/starlark"

// Decodable is implemented by records that can be decoded from a
// Starlark object or dict.
//
// DecodeStarlark must leave the receiver unchanged if it fails.
type Decodable interface {
	DecodeStarlark(s *Scope, v starlark.Value) error
}

// Encodable is implemented by records that can be encoded as a
// Starlark struct.
type Encodable interface {
	EncodeStarlark(s *Scope) starlark.Value
}

type recordPtr[T any] interface {
	*T
	Decodable
}

// Struct returns the Codec of the record type T, whose value
// implements Encodable and whose pointer implements Decodable.
func Struct[T Encodable, P recordPtr[T]]() Codec[T] { return structCodec[T, P]{} }

type structCodec[T Encodable, P recordPtr[T]] struct{}

func (structCodec[T, P]) Decode(s *Scope, v starlark.Value) (T, error) {
	var x T
	s = s.orNew()
	if err := s.Enter(v); err != nil {
		return x, err
	}
	defer s.Leave()
	if err := P(&x).DecodeStarlark(s, v); err != nil {
		var zero T
		return zero, err
	}
	return x, nil
}

func (structCodec[T, P]) Encode(s *Scope, x T) starlark.Value { return x.EncodeStarlark(s) }

// ExpectObject returns an ExpectedObject error unless v is an object or
// a dict. Records with no fields use it to check the shape of v.
func ExpectObject(v starlark.Value) error {
	if !isObjectLike(v) {
		return newError(ExpectedObject, typeOf(v), "")
	}
	return nil
}

// A RecordField describes one field of a record of type T.
type RecordField[T any] interface {
	decode(s *Scope, v starlark.Value, x *T) error
	encode(s *Scope, x *T, obj *Object)
}

// Field describes a mandatory field. ref returns the address of the
// field within a record.
//
//	starlarkconv.Field("x", starlarkconv.Int32, func(p *Point) *int32 { return &p.X })
func Field[T, F any](name string, c Codec[F], ref func(*T) *F) RecordField[T] {
	return mandatoryField[T, F]{name, c, ref}
}

// OptionalField describes a field that may be missing or None, in which
// case it decodes to nil.
func OptionalField[T, F any](name string, c Codec[F], ref func(*T) **F) RecordField[T] {
	return optionalField[T, F]{name, c, ref}
}

type mandatoryField[T, F any] struct {
	name string
	c    Codec[F]
	ref  func(*T) *F
}

func (f mandatoryField[T, F]) decode(s *Scope, v starlark.Value, x *T) error {
	y, err := GetField(s, v, f.name, f.c)
	if err != nil {
		return err
	}
	*f.ref(x) = y
	return nil
}

func (f mandatoryField[T, F]) encode(s *Scope, x *T, obj *Object) {
	obj.Set(f.name, f.c.Encode(s, *f.ref(x)))
}

type optionalField[T, F any] struct {
	name string
	c    Codec[F]
	ref  func(*T) **F
}

func (f optionalField[T, F]) decode(s *Scope, v starlark.Value, x *T) error {
	y, err := GetOptionalField(s, v, f.name, f.c)
	if err != nil {
		return err
	}
	*f.ref(x) = y
	return nil
}

func (f optionalField[T, F]) encode(s *Scope, x *T, obj *Object) {
	p := *f.ref(x)
	if p == nil {
		obj.Set(f.name, starlark.None)
		return
	}
	obj.Set(f.name, f.c.Encode(s, *p))
}

// Record returns a Codec for T built from field descriptions, for
// record types that do not implement Decodable and Encodable.
// It behaves like the methods generated by starlarkgen: decoding visits
// the fields in order and yields a value only if all of them succeed,
// and encoding produces a struct with exactly the described fields.
func Record[T any](fields ...RecordField[T]) Codec[T] {
	return recordCodec[T]{fields}
}

type recordCodec[T any] struct{ fields []RecordField[T] }

func (c recordCodec[T]) Decode(s *Scope, v starlark.Value) (T, error) {
	var x, zero T
	if err := ExpectObject(v); err != nil {
		return zero, err
	}
	s = s.orNew()
	if err := s.Enter(v); err != nil {
		return zero, err
	}
	defer s.Leave()
	for _, f := range c.fields {
		if err := f.decode(s, v, &x); err != nil {
			return zero, err
		}
	}
	return x, nil
}

func (c recordCodec[T]) Encode(s *Scope, x T) starlark.Value {
	obj := NewObject(len(c.fields))
	for _, f := range c.fields {
		f.encode(s, &x, obj)
	}
	return obj.Value()
}
