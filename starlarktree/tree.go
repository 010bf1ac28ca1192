// Copyright 2026 The Bazel Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package starlarktree converts Starlark values to and from JSON-like
// trees of *structpb.Value, which do not depend on the interpreter and
// may outlive a conversion.
//
// A tree holds null, booleans, float64 numbers, strings, lists and
// string-keyed structs. Decoding a Starlark value into a tree accepts
// lists, tuples and other array-shaped values, dicts (whose keys are
// converted with str()) and plain objects such as structs; any other
// value, such as a function or a set, is an UnsupportedValueType error.
//
// Encoding a tree is total. Integer-valued numbers become Starlark ints,
// clamped to the int64 range; other numbers become floats.
package starlarktree // import "github.com/mibes404/starlark-derive/starlarktree"

import (
	"math"
	"sort"

	"github.com/mibes404/starlark-derive/starlarkconv"
	"go.starlark.net/starlark"
	"google.golang.org/protobuf/types/known/structpb"
)

// Codec is the starlarkconv.Codec of tree values.
var Codec starlarkconv.Codec[*structpb.Value] = codec{}

// FromStarlark returns the tree form of v.
func FromStarlark(s *starlarkconv.Scope, v starlark.Value) (*structpb.Value, error) {
	return Codec.Decode(s, v)
}

// ToStarlark returns a new Starlark value equivalent to the tree v.
// A nil tree is None.
func ToStarlark(v *structpb.Value) starlark.Value {
	switch k := v.GetKind().(type) {
	case *structpb.Value_BoolValue:
		return starlark.Bool(k.BoolValue)
	case *structpb.Value_NumberValue:
		return number(k.NumberValue)
	case *structpb.Value_StringValue:
		return starlark.String(k.StringValue)
	case *structpb.Value_ListValue:
		values := k.ListValue.GetValues()
		elems := make([]starlark.Value, len(values))
		for i, x := range values {
			elems[i] = ToStarlark(x)
		}
		return starlark.NewList(elems)
	case *structpb.Value_StructValue:
		fields := k.StructValue.GetFields()
		keys := make([]string, 0, len(fields))
		for key := range fields {
			keys = append(keys, key)
		}
		sort.Strings(keys)
		d := starlark.NewDict(len(keys))
		for _, key := range keys {
			_ = d.SetKey(starlark.String(key), ToStarlark(fields[key])) // can't fail
		}
		return d
	}
	return starlark.None
}

// number converts a tree number, which is always a float64.
//
// Integral numbers too large for int64 become math.MaxInt64. Those too
// small become math.MinInt64 rather than the maximum, so that the sign of
// the number survives.
func number(f float64) starlark.Value {
	if math.IsNaN(f) || math.IsInf(f, 0) || f != math.Trunc(f) {
		return starlark.Float(f)
	}
	switch {
	case f >= math.MaxInt64: // 2^63, the nearest float64
		return starlark.MakeInt64(math.MaxInt64)
	case f < math.MinInt64:
		return starlark.MakeInt64(math.MinInt64)
	}
	return starlark.MakeInt64(int64(f))
}

type codec struct{}

func (codec) Decode(s *starlarkconv.Scope, v starlark.Value) (*structpb.Value, error) {
	switch v := v.(type) {
	case starlark.NoneType:
		return structpb.NewNullValue(), nil
	case starlark.Bool:
		return structpb.NewBoolValue(bool(v)), nil
	case starlark.Int:
		return structpb.NewNumberValue(float64(v.Float())), nil
	case starlark.Float:
		return structpb.NewNumberValue(float64(v)), nil
	case starlark.String, starlark.Bytes:
		text, err := starlarkconv.String.Decode(s, v)
		if err != nil {
			return nil, err
		}
		return structpb.NewStringValue(text), nil
	}

	switch {
	case starlarkconv.IsArray(v):
		values, err := starlarkconv.Sequence(Codec).Decode(s, v)
		if err != nil {
			return nil, err
		}
		return structpb.NewListValue(&structpb.ListValue{Values: values}), nil
	case starlarkconv.IsMap(v), starlarkconv.IsObject(v):
		fields, err := starlarkconv.Mapping(Codec).Decode(s, v)
		if err != nil {
			return nil, err
		}
		return structpb.NewStructValue(&structpb.Struct{Fields: fields}), nil
	}

	got := "undefined"
	if v != nil {
		got = v.Type()
	}
	return nil, &starlarkconv.Error{Kind: starlarkconv.UnsupportedValueType, Got: got}
}

func (codec) Encode(_ *starlarkconv.Scope, x *structpb.Value) starlark.Value { return ToStarlark(x) }
