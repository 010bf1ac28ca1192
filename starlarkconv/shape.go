// Copyright 2026 The Bazel Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package starlarkconv

// This file classifies Starlark values into the shapes the converters
// care about. A Go nil starlark.Value stands for "undefined": an
// attribute or key that is absent, as opposed to one bound to None.

import (
	"math"

	"go.starlark.net/starlark"
)

// IsUndefined reports whether v is absent.
func IsUndefined(v starlark.Value) bool { return v == nil }

// IsNullOrUndefined reports whether v is None or absent.
func IsNullOrUndefined(v starlark.Value) bool { return v == nil || v == starlark.None }

// IsArray reports whether v is array-shaped: indexable, but not a
// string or bytes.
func IsArray(v starlark.Value) bool {
	switch v.(type) {
	case starlark.String, starlark.Bytes:
		return false
	case starlark.Indexable:
		return true
	}
	return false
}

// IsMap reports whether v is an associative map such as a dict.
func IsMap(v starlark.Value) bool {
	_, ok := v.(starlark.IterableMapping)
	return ok
}

// IsObject reports whether v is a plain object: a value with
// attributes (such as a struct or module) that is not one of the
// built-in strings, sequences or mappings, whose attributes are methods.
func IsObject(v starlark.Value) bool {
	switch v.(type) {
	case starlark.String, starlark.Bytes, starlark.Indexable, starlark.Iterable, starlark.Mapping:
		return false
	case starlark.HasAttrs:
		return true
	}
	return false
}

func isInt32(v starlark.Value) (int32, bool) {
	i, ok := v.(starlark.Int)
	if !ok {
		return 0, false
	}
	x, ok := i.Int64()
	if !ok || x < math.MinInt32 || x > math.MaxInt32 {
		return 0, false
	}
	return int32(x), true
}

func isUint32(v starlark.Value) (uint32, bool) {
	i, ok := v.(starlark.Int)
	if !ok {
		return 0, false
	}
	x, ok := i.Uint64()
	if !ok || x > math.MaxUint32 {
		return 0, false
	}
	return uint32(x), true
}

// typeOf returns the Starlark type name of v, for error messages.
func typeOf(v starlark.Value) string {
	if v == nil {
		return "undefined"
	}
	return v.Type()
}
