// Copyright 2026 The Bazel Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package starlarkconv

import (
	"math"
	"strconv"

	"go.starlark.net/starlark"
)

// Scalar codecs.
//
// The Bool, String and Int32 decoders never fail. Int16 and Int8 fail
// only with OutOfRange.
var (
	Bool    Codec[bool]    = boolCodec{}
	String  Codec[string]  = stringCodec{}
	Int8    Codec[int8]    = int8Codec{}
	Int16   Codec[int16]   = int16Codec{}
	Int32   Codec[int32]   = int32Codec{}
	Int64   Codec[int64]   = int64Codec{}
	Int     Codec[int]     = intCodec{}
	Uint8   Codec[uint8]   = uint8Codec{}
	Uint16  Codec[uint16]  = uint16Codec{}
	Uint32  Codec[uint32]  = uint32Codec{}
	Float32 Codec[float32] = float32Codec{}
	Float64 Codec[float64] = float64Codec{}
)

func outOfRange(v starlark.Value, x interface{}, typ string) *Error {
	return newError(OutOfRange, typeOf(v), "%v does not fit in %s", x, typ)
}

type boolCodec struct{}

// Decode returns the truth value of v.
func (boolCodec) Decode(_ *Scope, v starlark.Value) (bool, error) { return truth(v), nil }
func (boolCodec) Encode(_ *Scope, x bool) starlark.Value { return starlark.Bool(x) }

type stringCodec struct{}

// Decode returns str(v).
func (stringCodec) Decode(_ *Scope, v starlark.Value) (string, error) { return toText(v), nil }
func (stringCodec) Encode(_ *Scope, x string) starlark.Value { return starlark.String(x) }

type int32Codec struct{}

// Decode truncates and wraps the numeric form of v.
func (int32Codec) Decode(_ *Scope, v starlark.Value) (int32, error) { return toInt32(v), nil }
func (int32Codec) Encode(_ *Scope, x int32) starlark.Value { return starlark.MakeInt64(int64(x)) }

type int16Codec struct{}

func (int16Codec) Decode(_ *Scope, v starlark.Value) (int16, error) {
	x := toInt32(v)
	if x < math.MinInt16 || x > math.MaxInt16 {
		return 0, outOfRange(v, x, "int16")
	}
	return int16(x), nil
}

func (int16Codec) Encode(_ *Scope, x int16) starlark.Value { return starlark.MakeInt64(int64(x)) }

type int8Codec struct{}

func (int8Codec) Decode(_ *Scope, v starlark.Value) (int8, error) {
	x := toInt32(v)
	if x < math.MinInt8 || x > math.MaxInt8 {
		return 0, outOfRange(v, x, "int8")
	}
	return int8(x), nil
}

func (int8Codec) Encode(_ *Scope, x int8) starlark.Value { return starlark.MakeInt64(int64(x)) }

type uint32Codec struct{}

// Decode returns v as is if it is already a uint32 and 0 for None.
// Anything else must have an exact integer form within range.
func (uint32Codec) Decode(_ *Scope, v starlark.Value) (uint32, error) {
	if x, ok := isUint32(v); ok {
		return x, nil
	}
	if IsNullOrUndefined(v) {
		return 0, nil
	}
	i, ok := toBigInt(v)
	if !ok {
		return 0, newError(ExpectedU32, typeOf(v), "")
	}
	if i.Sign() < 0 || i.BitLen() > 32 {
		return 0, outOfRange(v, i, "uint32")
	}
	return uint32(i.Uint64()), nil
}

func (uint32Codec) Encode(_ *Scope, x uint32) starlark.Value { return starlark.MakeUint64(uint64(x)) }

type uint16Codec struct{}

func (uint16Codec) Decode(s *Scope, v starlark.Value) (uint16, error) {
	x, err := uint32Codec{}.Decode(s, v)
	if err != nil {
		return 0, err
	}
	if x > math.MaxUint16 {
		return 0, outOfRange(v, x, "uint16")
	}
	return uint16(x), nil
}

func (uint16Codec) Encode(_ *Scope, x uint16) starlark.Value { return starlark.MakeUint64(uint64(x)) }

type uint8Codec struct{}

func (uint8Codec) Decode(s *Scope, v starlark.Value) (uint8, error) {
	x, err := uint32Codec{}.Decode(s, v)
	if err != nil {
		return 0, err
	}
	if x > math.MaxUint8 {
		return 0, outOfRange(v, x, "uint8")
	}
	return uint8(x), nil
}

func (uint8Codec) Encode(_ *Scope, x uint8) starlark.Value { return starlark.MakeUint64(uint64(x)) }

type int64Codec struct{}

// Decode requires an exact integer form of v. None is rejected.
func (int64Codec) Decode(_ *Scope, v starlark.Value) (int64, error) {
	i, ok := toBigInt(v)
	if !ok {
		return 0, newError(ExpectedI64, typeOf(v), "")
	}
	if !i.IsInt64() {
		return 0, outOfRange(v, i, "int64")
	}
	return i.Int64(), nil
}

func (int64Codec) Encode(_ *Scope, x int64) starlark.Value { return starlark.MakeInt64(x) }

type intCodec struct{}

func (intCodec) Decode(s *Scope, v starlark.Value) (int, error) {
	x, err := int64Codec{}.Decode(s, v)
	if err != nil {
		return 0, err
	}
	if strconv.IntSize == 32 && (x < math.MinInt32 || x > math.MaxInt32) {
		return 0, outOfRange(v, x, "int")
	}
	return int(x), nil
}

func (intCodec) Encode(_ *Scope, x int) starlark.Value { return starlark.MakeInt(x) }

type float64Codec struct{}

// Decode returns the numeric form of v, which may be NaN.
func (float64Codec) Decode(_ *Scope, v starlark.Value) (float64, error) {
	f, ok := toNumber(v)
	if !ok {
		return 0, newError(ExpectedF64, typeOf(v), "")
	}
	return f, nil
}

func (float64Codec) Encode(_ *Scope, x float64) starlark.Value { return starlark.Float(x) }

type float32Codec struct{}

// Decode narrows the float64 form of v; precision loss is silent.
func (float32Codec) Decode(s *Scope, v starlark.Value) (float32, error) {
	f, err := float64Codec{}.Decode(s, v)
	return float32(f), err
}

func (float32Codec) Encode(_ *Scope, x float32) starlark.Value { return starlark.Float(float64(x)) }
