// Copyright 2026 The Bazel Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package starlarkconv

import (
	"errors"
	"math"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"go.starlark.net/starlark"
)

type decodeFunc func(starlark.Value) (interface{}, error)

func decoder[T any](c Codec[T]) decodeFunc {
	return func(v starlark.Value) (interface{}, error) {
		x, err := c.Decode(nil, v)
		return x, err
	}
}

type scalarTest struct {
	name    string
	decode  decodeFunc
	v       starlark.Value
	want    interface{}
	wantErr Kind
}

func runScalarTests(t *testing.T, tests []scalarTest) {
	t.Helper()
	for _, test := range tests {
		got, err := test.decode(test.v)
		if test.wantErr != 0 {
			var e *Error
			if !errors.As(err, &e) || e.Kind != test.wantErr {
				t.Errorf("%s(%v): got (%v, %v), want %v error", test.name, test.v, got, err, test.wantErr)
			}
			continue
		}
		if err != nil {
			t.Errorf("%s(%v) failed: %v", test.name, test.v, err)
			continue
		}
		if diff := cmp.Diff(test.want, got, cmpopts.EquateNaNs()); diff != "" {
			t.Errorf("%s(%v) mismatch (-want +got):\n%s", test.name, test.v, diff)
		}
	}
}

func TestDecodeScalar(t *testing.T) {
	var (
		boolean = decoder(Bool)
		str     = decoder(String)
		i8      = decoder(Int8)
		i16     = decoder(Int16)
		i32     = decoder(Int32)
		i64     = decoder(Int64)
		i       = decoder(Int)
		u8      = decoder(Uint8)
		u16     = decoder(Uint16)
		u32     = decoder(Uint32)
		f32     = decoder(Float32)
		f64     = decoder(Float64)
	)
	runScalarTests(t, []scalarTest{
		{"Bool", boolean, starlark.String(""), false, 0},
		{"Bool", boolean, starlark.MakeInt(3), true, 0},
		{"Bool", boolean, nil, false, 0},

		{"String", str, starlark.MakeInt(3), "3", 0},
		{"String", str, starlark.None, "None", 0},
		{"String", str, starlark.String("plain"), "plain", 0},

		{"Int32", i32, starlark.Float(1.9), int32(1), 0},
		{"Int32", i32, starlark.String("42"), int32(42), 0},
		{"Int32", i32, starlark.MakeInt64(1 << 31), int32(math.MinInt32), 0},
		{"Int32", i32, starlark.None, int32(0), 0},
		{"Int32", i32, nil, int32(0), 0},

		{"Int16", i16, starlark.MakeInt(-5), int16(-5), 0},
		{"Int16", i16, starlark.MakeInt(40000), nil, OutOfRange},
		{"Int8", i8, starlark.MakeInt(127), int8(127), 0},
		{"Int8", i8, starlark.MakeInt(128), nil, OutOfRange},

		// None is zero for uint32, but a negative value is an error.
		{"Uint32", u32, starlark.None, uint32(0), 0},
		{"Uint32", u32, nil, uint32(0), 0},
		{"Uint32", u32, starlark.MakeUint64(math.MaxUint32), uint32(math.MaxUint32), 0},
		{"Uint32", u32, starlark.String("12"), uint32(12), 0},
		{"Uint32", u32, starlark.Float(7), uint32(7), 0},
		{"Uint32", u32, starlark.MakeInt(-1), nil, OutOfRange},
		{"Uint32", u32, starlark.String("-1"), nil, OutOfRange},
		{"Uint32", u32, starlark.MakeInt64(1 << 32), nil, OutOfRange},
		{"Uint32", u32, starlark.Float(1.5), nil, ExpectedU32},
		{"Uint32", u32, starlark.NewList(nil), nil, ExpectedU32},
		{"Uint16", u16, starlark.MakeInt(65535), uint16(65535), 0},
		{"Uint16", u16, starlark.MakeInt(65536), nil, OutOfRange},
		{"Uint8", u8, starlark.MakeInt(256), nil, OutOfRange},
		{"Uint8", u8, starlark.String("x"), nil, ExpectedU32},

		{"Int64", i64, starlark.MakeInt64(math.MaxInt64), int64(math.MaxInt64), 0},
		{"Int64", i64, starlark.MakeInt64(math.MinInt64), int64(math.MinInt64), 0},
		{"Int64", i64, starlark.Float(3), int64(3), 0},
		{"Int64", i64, starlark.String("0x10"), int64(16), 0},
		{"Int64", i64, starlark.True, int64(1), 0},
		{"Int64", i64, bigPow2(63, 0), nil, OutOfRange},
		{"Int64", i64, starlark.None, nil, ExpectedI64},
		{"Int64", i64, starlark.Float(0.5), nil, ExpectedI64},
		{"Int", i, starlark.MakeInt(-9), -9, 0},
		{"Int", i, starlark.String("ten"), nil, ExpectedI64},

		{"Float64", f64, starlark.MakeInt(2), 2.0, 0},
		{"Float64", f64, starlark.None, 0.0, 0},
		{"Float64", f64, starlark.String("x"), math.NaN(), 0},
		{"Float64", f64, nil, math.NaN(), 0},
		{"Float64", f64, starlark.NewList(nil), nil, ExpectedF64},
		{"Float32", f32, starlark.Float(0.5), float32(0.5), 0},
		{"Float32", f32, starlark.NewDict(0), nil, ExpectedF64},
	})
}

func TestDecodeStrict(t *testing.T) {
	runScalarTests(t, []scalarTest{
		{"StrictBool", decoder(StrictBool), starlark.True, true, 0},
		{"StrictBool", decoder(StrictBool), starlark.MakeInt(1), nil, ExpectedBoolean},
		{"StrictString", decoder(StrictString), starlark.String("s"), "s", 0},
		{"StrictString", decoder(StrictString), starlark.MakeInt(1), nil, ExpectedString},
		{"StrictString", decoder(StrictString), nil, nil, ExpectedString},
		{"StrictInt32", decoder(StrictInt32), starlark.MakeInt(-7), int32(-7), 0},
		{"StrictInt32", decoder(StrictInt32), starlark.Float(1), nil, ExpectedI32},
		{"StrictInt32", decoder(StrictInt32), starlark.MakeInt64(1 << 40), nil, ExpectedI32},
		{"StrictFloat64", decoder(StrictFloat64), starlark.MakeInt(2), 2.0, 0},
		{"StrictFloat64", decoder(StrictFloat64), starlark.Float(0.25), 0.25, 0},
		{"StrictFloat64", decoder(StrictFloat64), starlark.String("1"), nil, ExpectedF64},
	})
}

func roundTrip[T comparable](t *testing.T, name string, c Codec[T], xs ...T) {
	t.Helper()
	for _, x := range xs {
		v := c.Encode(nil, x)
		got, err := c.Decode(nil, v)
		if err != nil {
			t.Errorf("%s: Decode(Encode(%v)) failed: %v", name, x, err)
		} else if got != x {
			t.Errorf("%s: Decode(Encode(%v)) = %v", name, x, got)
		}
	}
}

func TestScalarRoundTrip(t *testing.T) {
	roundTrip(t, "Bool", Bool, true, false)
	roundTrip(t, "String", String, "", "hello", "üñî", "None")
	roundTrip(t, "Int8", Int8, math.MinInt8, 0, math.MaxInt8)
	roundTrip(t, "Int16", Int16, math.MinInt16, 0, math.MaxInt16)
	roundTrip(t, "Int32", Int32, math.MinInt32, -1, 0, math.MaxInt32)
	roundTrip(t, "Int64", Int64, math.MinInt64, 0, math.MaxInt64)
	roundTrip(t, "Int", Int, -1, 0, 1<<30)
	roundTrip(t, "Uint8", Uint8, 0, math.MaxUint8)
	roundTrip(t, "Uint16", Uint16, 0, math.MaxUint16)
	roundTrip(t, "Uint32", Uint32, 0, 1, math.MaxUint32)
	roundTrip(t, "Float32", Float32, 0, 0.5, -3.25, math.MaxFloat32)
	roundTrip(t, "Float64", Float64, 0, math.Pi, -1e300, math.Inf(-1))
	roundTrip(t, "StrictBool", StrictBool, true)
	roundTrip(t, "StrictString", StrictString, "x")
	roundTrip(t, "StrictInt32", StrictInt32, math.MinInt32, math.MaxInt32)
	roundTrip(t, "StrictFloat64", StrictFloat64, 1.5)
}

func TestRaw(t *testing.T) {
	got, err := Raw.Decode(nil, nil)
	if err != nil || got != starlark.None {
		t.Errorf("Raw.Decode(undefined) = %v, %v; want None", got, err)
	}
	s := starlark.String("x")
	if got, _ := Raw.Decode(nil, s); got != s {
		t.Errorf("Raw.Decode(%v) = %v", s, got)
	}
	if got := Raw.Encode(nil, nil); got != starlark.None {
		t.Errorf("Raw.Encode(nil) = %v, want None", got)
	}
}
