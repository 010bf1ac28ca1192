// Copyright 2026 The Bazel Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package starlarkconv

// This file derives codecs from Go types at run time.

import (
	"fmt"
	"reflect"

	"go.starlark.net/starlark"
)

// Reflect returns a Codec for T derived from its type by reflection.
//
// Struct types follow the rules of starlarkgen: exported fields are
// visible under their Go name or the name of a `starlark:"name"` tag,
// `starlark:"-"` hides a field, and a pointer field is optional.
// Types whose pointer implements Decodable and whose value implements
// Encodable use their methods. Unlike starlarkgen, Reflect also accepts
// defined types whose underlying type is supported, such as
// type Celsius float64.
//
// Reflect fails for types with no codec: channels, functions,
// interfaces other than starlark.Value, complex numbers, uint, uint64,
// uintptr, embedded struct fields, and maps whose keys are not scalars.
func Reflect[T any]() (Codec[T], error) {
	t := reflect.TypeOf((*T)(nil)).Elem()
	c, err := newReflectCodec(t, make(map[reflect.Type]reflectCodec))
	if err != nil {
		return nil, err
	}
	return reflected[T]{c}, nil
}

type reflected[T any] struct{ c reflectCodec }

func (r reflected[T]) Decode(s *Scope, v starlark.Value) (T, error) {
	var out T
	x, err := r.c.decode(s, v)
	if err != nil {
		return out, err
	}
	reflect.ValueOf(&out).Elem().Set(x)
	return out, nil
}

func (r reflected[T]) Encode(s *Scope, x T) starlark.Value {
	return r.c.encode(s, reflect.ValueOf(&x).Elem())
}

// A reflectCodec is a Codec for values of one reflect.Type.
type reflectCodec interface {
	decode(s *Scope, v starlark.Value) (reflect.Value, error)
	encode(s *Scope, x reflect.Value) starlark.Value
}

var (
	valueType     = reflect.TypeOf((*starlark.Value)(nil)).Elem()
	decodableType = reflect.TypeOf((*Decodable)(nil)).Elem()
	encodableType = reflect.TypeOf((*Encodable)(nil)).Elem()
)

func newReflectCodec(t reflect.Type, seen map[reflect.Type]reflectCodec) (reflectCodec, error) {
	if c, ok := seen[t]; ok {
		return c, nil // recursive type
	}
	if t == valueType {
		return scalarOf(t, Raw), nil
	}
	if t.Implements(encodableType) && reflect.PointerTo(t).Implements(decodableType) {
		return reflectMethods{t}, nil
	}

	switch t.Kind() {
	case reflect.Bool:
		return scalarOf(t, Bool), nil
	case reflect.String:
		return scalarOf(t, String), nil
	case reflect.Int:
		return scalarOf(t, Int), nil
	case reflect.Int8:
		return scalarOf(t, Int8), nil
	case reflect.Int16:
		return scalarOf(t, Int16), nil
	case reflect.Int32:
		return scalarOf(t, Int32), nil
	case reflect.Int64:
		return scalarOf(t, Int64), nil
	case reflect.Uint8:
		return scalarOf(t, Uint8), nil
	case reflect.Uint16:
		return scalarOf(t, Uint16), nil
	case reflect.Uint32:
		return scalarOf(t, Uint32), nil
	case reflect.Float32:
		return scalarOf(t, Float32), nil
	case reflect.Float64:
		return scalarOf(t, Float64), nil

	case reflect.Pointer, reflect.Slice, reflect.Map:
		if t.Name() == "" {
			return newCompositeCodec(t, seen)
		}
		// A defined type may refer to itself, as in type List []List.
		ref := new(reflectRef)
		seen[t] = ref
		c, err := newCompositeCodec(t, seen)
		if err != nil {
			return nil, err
		}
		ref.c = c
		return c, nil

	case reflect.Struct:
		rs := &reflectStruct{t: t}
		seen[t] = rs
		if err := rs.init(seen); err != nil {
			return nil, err
		}
		return rs, nil
	}
	return nil, fmt.Errorf("unsupported type %s", t)
}

func newCompositeCodec(t reflect.Type, seen map[reflect.Type]reflectCodec) (reflectCodec, error) {
	switch t.Kind() {
	case reflect.Pointer:
		elem, err := newReflectCodec(t.Elem(), seen)
		if err != nil {
			return nil, err
		}
		return reflectOptional{t, elem}, nil

	case reflect.Slice:
		elem, err := newReflectCodec(t.Elem(), seen)
		if err != nil {
			return nil, err
		}
		return reflectSequence{t, elem}, nil

	case reflect.Map:
		key, err := newReflectCodec(t.Key(), seen)
		if err != nil {
			return nil, err
		}
		if !isScalarKind(t.Key().Kind()) {
			return nil, fmt.Errorf("unsupported map key type %s", t.Key())
		}
		val, err := newReflectCodec(t.Elem(), seen)
		if err != nil {
			return nil, err
		}
		return reflectMapping{t, key, val}, nil
	}
	panic("unreachable")
}

// reflectRef forwards to the codec of a defined type that was still
// being built when it was first referenced.
type reflectRef struct{ c reflectCodec }

func (r *reflectRef) decode(s *Scope, v starlark.Value) (reflect.Value, error) {
	return r.c.decode(s, v)
}

func (r *reflectRef) encode(s *Scope, x reflect.Value) starlark.Value { return r.c.encode(s, x) }

func isScalarKind(k reflect.Kind) bool {
	switch k {
	case reflect.Bool, reflect.String,
		reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint8, reflect.Uint16, reflect.Uint32,
		reflect.Float32, reflect.Float64:
		return true
	}
	return false
}

// reflectScalar adapts a Codec[T] to values of type t, whose underlying
// type is that of T.
type reflectScalar[T any] struct {
	t reflect.Type
	c Codec[T]
}

func scalarOf[T any](t reflect.Type, c Codec[T]) reflectCodec { return reflectScalar[T]{t, c} }

func (r reflectScalar[T]) decode(s *Scope, v starlark.Value) (reflect.Value, error) {
	x, err := r.c.Decode(s, v)
	if err != nil {
		return reflect.Value{}, err
	}
	return reflect.ValueOf(&x).Elem().Convert(r.t), nil
}

func (r reflectScalar[T]) encode(s *Scope, x reflect.Value) starlark.Value {
	var y T
	p := reflect.ValueOf(&y).Elem()
	p.Set(x.Convert(p.Type()))
	return r.c.Encode(s, y)
}

// reflectMethods uses the Decodable and Encodable methods of t.
type reflectMethods struct{ t reflect.Type }

func (r reflectMethods) decode(s *Scope, v starlark.Value) (reflect.Value, error) {
	p := reflect.New(r.t)
	if err := p.Interface().(Decodable).DecodeStarlark(s, v); err != nil {
		return reflect.Value{}, err
	}
	return p.Elem(), nil
}

func (r reflectMethods) encode(s *Scope, x reflect.Value) starlark.Value {
	return x.Interface().(Encodable).EncodeStarlark(s)
}

type reflectOptional struct {
	t    reflect.Type
	elem reflectCodec
}

func (r reflectOptional) decode(s *Scope, v starlark.Value) (reflect.Value, error) {
	if IsNullOrUndefined(v) {
		return reflect.Zero(r.t), nil
	}
	x, err := r.elem.decode(s, v)
	if err != nil {
		return reflect.Value{}, err
	}
	p := reflect.New(r.t.Elem())
	p.Elem().Set(x)
	return p, nil
}

func (r reflectOptional) encode(s *Scope, x reflect.Value) starlark.Value {
	if x.IsNil() {
		return starlark.None
	}
	return r.elem.encode(s, x.Elem())
}

type reflectSequence struct {
	t    reflect.Type
	elem reflectCodec
}

func (r reflectSequence) decode(s *Scope, v starlark.Value) (reflect.Value, error) {
	if !IsArray(v) {
		return reflect.Value{}, newError(ExpectedArray, typeOf(v), "")
	}
	s = s.orNew()
	if err := s.Enter(v); err != nil {
		return reflect.Value{}, err
	}
	defer s.Leave()

	a := v.(starlark.Indexable)
	out := reflect.MakeSlice(r.t, a.Len(), a.Len())
	for i := 0; i < a.Len(); i++ {
		x, err := r.elem.decode(s, a.Index(i))
		if err != nil {
			return reflect.Value{}, within(err, indexSegment(i))
		}
		out.Index(i).Set(x)
	}
	return out, nil
}

func (r reflectSequence) encode(s *Scope, x reflect.Value) starlark.Value {
	elems := make([]starlark.Value, x.Len())
	for i := range elems {
		elems[i] = r.elem.encode(s, x.Index(i))
	}
	return starlark.NewList(elems)
}

type reflectMapping struct {
	t        reflect.Type
	key, val reflectCodec
}

func (r reflectMapping) decode(s *Scope, v starlark.Value) (reflect.Value, error) {
	if !IsMap(v) && !IsObject(v) {
		return reflect.Value{}, newError(ExpectedMap, typeOf(v), "")
	}
	s = s.orNew()
	if err := s.Enter(v); err != nil {
		return reflect.Value{}, err
	}
	defer s.Leave()

	out := reflect.MakeMap(r.t)
	err := entries(v, func(key string, x starlark.Value) error {
		k, err := r.key.decode(s, starlark.String(key))
		if err != nil {
			return within(err, keySegment(key))
		}
		val, err := r.val.decode(s, x)
		if err != nil {
			return within(err, keySegment(key))
		}
		out.SetMapIndex(k, val)
		return nil
	})
	if err != nil {
		return reflect.Value{}, err
	}
	return out, nil
}

func (r reflectMapping) encode(s *Scope, x reflect.Value) starlark.Value {
	items := make([]starlark.Tuple, 0, x.Len())
	iter := x.MapRange()
	for iter.Next() {
		items = append(items, starlark.Tuple{r.key.encode(s, iter.Key()), r.val.encode(s, iter.Value())})
	}
	return newDict(items)
}

type reflectStruct struct {
	t      reflect.Type
	fields []reflectField
}

type reflectField struct {
	index    int
	name     string
	optional bool
	c        reflectCodec
}

func (r *reflectStruct) init(seen map[reflect.Type]reflectCodec) error {
	names := make(map[string]string)
	for i := 0; i < r.t.NumField(); i++ {
		sf := r.t.Field(i)
		if sf.Anonymous {
			return fmt.Errorf("%s.%s: embedded fields are not supported", r.t.Name(), sf.Name)
		}
		if !sf.IsExported() {
			continue
		}
		name := sf.Name
		if tag, ok := sf.Tag.Lookup("starlark"); ok {
			if tag == "-" {
				continue
			}
			if tag != "" {
				name = tag
			}
		}
		if prev, ok := names[name]; ok {
			return fmt.Errorf("%s.%s: Starlark name %q already used by %s", r.t.Name(), sf.Name, name, prev)
		}
		names[name] = sf.Name

		c, err := newReflectCodec(sf.Type, seen)
		if err != nil {
			return fmt.Errorf("%s.%s: %v", r.t.Name(), sf.Name, err)
		}
		optional := sf.Type.Kind() == reflect.Pointer
		r.fields = append(r.fields, reflectField{i, name, optional, c})
	}
	return nil
}

func (r *reflectStruct) decode(s *Scope, v starlark.Value) (reflect.Value, error) {
	if err := ExpectObject(v); err != nil {
		return reflect.Value{}, err
	}
	s = s.orNew()
	if err := s.Enter(v); err != nil {
		return reflect.Value{}, err
	}
	defer s.Leave()
	out := reflect.New(r.t).Elem()
	for _, f := range r.fields {
		x, err := field(s, v, f.name)
		if err != nil {
			return reflect.Value{}, err
		}
		if x == nil && !f.optional {
			return reflect.Value{}, fieldError(FieldNotFound, f.name, nil)
		}
		y, err := f.c.decode(s, x)
		if err != nil {
			return reflect.Value{}, fieldFailed(s, err, f.name, x)
		}
		out.Field(f.index).Set(y)
	}
	return out, nil
}

func (r *reflectStruct) encode(s *Scope, x reflect.Value) starlark.Value {
	obj := NewObject(len(r.fields))
	for _, f := range r.fields {
		obj.Set(f.name, f.c.encode(s, x.Field(f.index)))
	}
	return obj.Value()
}
