// Copyright 2026 The Bazel Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package starlarkconv

import (
	"go.starlark.net/starlark"
	"go.starlark.net/starlarkstruct"
)

// An Object accumulates the named fields of an encoded record.
// Value returns them as a struct, whose fields print and compare
// in name order.
type Object struct {
	fields starlark.StringDict
}

// NewObject returns an empty Object with room for n fields.
func NewObject(n int) *Object {
	return &Object{fields: make(starlark.StringDict, n)}
}

// Set binds the field name to v, replacing any previous binding.
// A nil v is stored as None.
func (o *Object) Set(name string, v starlark.Value) {
	if v == nil {
		v = starlark.None
	}
	o.fields[name] = v
}

// Len returns the number of fields set so far.
func (o *Object) Len() int { return len(o.fields) }

// Value returns the object as a new Starlark struct.
func (o *Object) Value() starlark.Value {
	return starlarkstruct.FromStringDict(starlarkstruct.Default, o.fields)
}

// lookup returns the value of the field name of the object-like value v.
// found is false if v has no such field; err is non-nil only if the
// lookup itself failed.
func lookup(v starlark.Value, name string) (x starlark.Value, found bool, err error) {
	if m, ok := v.(starlark.Mapping); ok {
		return m.Get(starlark.String(name))
	}
	x, err = v.(starlark.HasAttrs).Attr(name)
	if err != nil {
		if _, ok := err.(starlark.NoSuchAttrError); ok {
			return nil, false, nil
		}
		return nil, false, err
	}
	return x, x != nil, nil
}

// isObjectLike reports whether lookup may be applied to v.
func isObjectLike(v starlark.Value) bool { return IsObject(v) || IsMap(v) }
