// Copyright 2026 The Bazel Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package starlarkconv

import (
	"fmt"
	"sort"

	"go.starlark.net/starlark"
	"go.starlark.net/syntax"
)

// Mapping returns a Codec for map[string]T.
//
// It decodes a dict, whose keys are converted to text with str(), or a
// plain object such as a struct, whose own attributes become the
// entries. It encodes a dict.
func Mapping[T any](c Codec[T]) Codec[map[string]T] {
	return mappingCodec[string, T]{key: String, val: c}
}

// ObjectMapping is like Mapping but encodes a struct instead of a dict.
func ObjectMapping[T any](c Codec[T]) Codec[map[string]T] {
	return mappingCodec[string, T]{key: String, val: c, object: true}
}

// KeyedMapping returns a Codec for map[K]V. Each key is first
// converted to text as by Mapping, and that text is then decoded by
// key. Encoding produces a dict keyed by the encoded keys.
func KeyedMapping[K comparable, V any](key Codec[K], val Codec[V]) Codec[map[K]V] {
	return mappingCodec[K, V]{key: key, val: val}
}

// KeyedObjectMapping is like KeyedMapping but encodes a struct whose
// field names are the str() forms of the encoded keys.
func KeyedObjectMapping[K comparable, V any](key Codec[K], val Codec[V]) Codec[map[K]V] {
	return mappingCodec[K, V]{key: key, val: val, object: true}
}

type mappingCodec[K comparable, V any] struct {
	key    Codec[K]
	val    Codec[V]
	object bool // encode as struct
}

func (c mappingCodec[K, V]) Decode(s *Scope, v starlark.Value) (map[K]V, error) {
	if !IsMap(v) && !IsObject(v) {
		return nil, newError(ExpectedMap, typeOf(v), "")
	}
	s = s.orNew()
	if err := s.Enter(v); err != nil {
		return nil, err
	}
	defer s.Leave()

	out := make(map[K]V)
	err := entries(v, func(key string, x starlark.Value) error {
		k, err := c.key.Decode(s, starlark.String(key))
		if err != nil {
			return within(err, keySegment(key))
		}
		val, err := c.val.Decode(s, x)
		if err != nil {
			return within(err, keySegment(key))
		}
		out[k] = val
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// entries calls fn for each entry of the dict or object v, in order,
// until fn fails. Dict keys are converted to text with str().
func entries(v starlark.Value, fn func(key string, x starlark.Value) error) error {
	if m, ok := v.(starlark.IterableMapping); ok {
		for _, kv := range m.Items() {
			if err := fn(toText(kv[0]), kv[1]); err != nil {
				return err
			}
		}
		return nil
	}

	h := v.(starlark.HasAttrs)
	for _, name := range h.AttrNames() {
		x, err := h.Attr(name)
		if err != nil {
			return &Error{Kind: FailedToGetPropertyNames, Got: typeOf(v), Path: []string{keySegment(name)}, Cause: err}
		}
		if x == nil {
			continue // listed but absent
		}
		if err := fn(name, x); err != nil {
			return err
		}
	}
	return nil
}

func (c mappingCodec[K, V]) Encode(s *Scope, x map[K]V) starlark.Value {
	if c.object {
		obj := NewObject(len(x))
		for k, val := range x {
			obj.Set(toText(c.key.Encode(s, k)), c.val.Encode(s, val))
		}
		return obj.Value()
	}

	items := make([]starlark.Tuple, 0, len(x))
	for k, val := range x {
		items = append(items, starlark.Tuple{c.key.Encode(s, k), c.val.Encode(s, val)})
	}
	return newDict(items)
}

// newDict returns a dict of the given key/value pairs. Go maps are
// unordered but dicts are not, so the pairs are first sorted by key to
// keep the result independent of map iteration order.
func newDict(items []starlark.Tuple) *starlark.Dict {
	sort.SliceStable(items, func(i, j int) bool {
		lt, err := starlark.Compare(syntax.LT, items[i][0], items[j][0])
		return err == nil && lt
	})
	d := starlark.NewDict(len(items))
	for _, kv := range items {
		if err := d.SetKey(kv[0], kv[1]); err != nil {
			panic(fmt.Sprintf("internal error: key %s: %s", kv[0], err))
		}
	}
	return d
}
