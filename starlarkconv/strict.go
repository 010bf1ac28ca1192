// Copyright 2026 The Bazel Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package starlarkconv

import "go.starlark.net/starlark"

// Strict scalar codecs. Unlike their loose counterparts they accept
// only values that already have the requested type, and report an
// Expected* error for anything else. They encode like the loose ones.
var (
	StrictBool    Codec[bool]    = strictBoolCodec{}
	StrictString  Codec[string]  = strictStringCodec{}
	StrictInt32   Codec[int32]   = strictInt32Codec{}
	StrictFloat64 Codec[float64] = strictFloat64Codec{}
)

type strictBoolCodec struct{ boolCodec }

func (strictBoolCodec) Decode(_ *Scope, v starlark.Value) (bool, error) {
	b, ok := v.(starlark.Bool)
	if !ok {
		return false, newError(ExpectedBoolean, typeOf(v), "")
	}
	return bool(b), nil
}

type strictStringCodec struct{ stringCodec }

func (strictStringCodec) Decode(_ *Scope, v starlark.Value) (string, error) {
	s, ok := v.(starlark.String)
	if !ok {
		return "", newError(ExpectedString, typeOf(v), "")
	}
	return string(s), nil
}

type strictInt32Codec struct{ int32Codec }

func (strictInt32Codec) Decode(_ *Scope, v starlark.Value) (int32, error) {
	x, ok := isInt32(v)
	if !ok {
		return 0, newError(ExpectedI32, typeOf(v), "")
	}
	return x, nil
}

type strictFloat64Codec struct{ float64Codec }

// Decode accepts floats and ints.
func (strictFloat64Codec) Decode(_ *Scope, v starlark.Value) (float64, error) {
	switch v := v.(type) {
	case starlark.Float:
		return float64(v), nil
	case starlark.Int:
		return float64(v.Float()), nil
	}
	return 0, newError(ExpectedF64, typeOf(v), "")
}
