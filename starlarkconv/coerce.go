// Copyright 2026 The Bazel Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package starlarkconv

// This file defines the loose coercions that the scalar decoders apply.
// They follow the conversions a dynamically typed host performs
// implicitly: every value has a truth value and a string form, most
// values have a numeric form, and integer-valued ones have an exact
// big integer form.

import (
	"math"
	"math/big"
	"strconv"
	"strings"

	"go.starlark.net/starlark"
)

// truth returns the truth value of v. Undefined is false.
func truth(v starlark.Value) bool {
	if v == nil {
		return false
	}
	return bool(v.Truth())
}

// toText returns the str() form of v. Strings are returned without
// quotation; invalid UTF-8 is replaced by U+FFFD.
func toText(v starlark.Value) string {
	switch v := v.(type) {
	case nil:
		return starlark.None.String()
	case starlark.String:
		return strings.ToValidUTF8(string(v), "\uFFFD")
	case starlark.Bytes:
		return strings.ToValidUTF8(string(v), "\uFFFD")
	default:
		return v.String()
	}
}

// toNumber returns the numeric form of v.
// ok is false if v has no numeric form at all.
func toNumber(v starlark.Value) (f float64, ok bool) {
	switch v := v.(type) {
	case nil:
		return math.NaN(), true
	case starlark.NoneType:
		return 0, true
	case starlark.Bool:
		if v {
			return 1, true
		}
		return 0, true
	case starlark.Int:
		return float64(v.Float()), true
	case starlark.Float:
		return float64(v), true
	case starlark.String:
		return parseNumber(string(v)), true
	case starlark.Bytes:
		return parseNumber(string(v)), true
	}
	return 0, false
}

// parseNumber parses a numeric literal surrounded by optional space.
// The empty string is zero; anything unparseable is NaN.
func parseNumber(s string) float64 {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0
	}
	if i, ok := parseInteger(s); ok {
		f, _ := new(big.Float).SetInt(i).Float64()
		return f
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		if ne, ok := err.(*strconv.NumError); ok && ne.Err == strconv.ErrRange {
			return f // ±Inf or 0
		}
		return math.NaN()
	}
	return f
}

// parseInteger parses a signed integer literal. A 0x, 0o or 0b prefix
// selects the base; otherwise the literal is decimal, even with
// leading zeros.
func parseInteger(s string) (*big.Int, bool) {
	digits := strings.TrimLeft(s, "+-")
	if len(s)-len(digits) > 1 {
		return nil, false
	}
	base := 10
	if len(digits) > 1 && digits[0] == '0' {
		switch digits[1] {
		case 'x', 'X', 'o', 'O', 'b', 'B':
			base = 0
		}
	}
	return new(big.Int).SetString(s, base)
}

// toInt32 returns the numeric form of v truncated towards zero and
// wrapped modulo 2^32. Values without a finite numeric form are zero.
func toInt32(v starlark.Value) int32 {
	if i, ok := v.(starlark.Int); ok {
		if x, ok := i.Int64(); ok {
			return int32(x)
		}
		low := new(big.Int).And(i.BigInt(), big.NewInt(math.MaxUint32))
		return int32(uint32(low.Uint64()))
	}
	f, ok := toNumber(v)
	if !ok || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0
	}
	const two32 = 1 << 32
	m := math.Mod(math.Trunc(f), two32)
	if m < 0 {
		m += two32
	}
	return int32(uint32(m))
}

// toBigInt returns the exact integer form of v. It fails for values
// that are not integer-valued, including None and fractional floats.
func toBigInt(v starlark.Value) (*big.Int, bool) {
	switch v := v.(type) {
	case starlark.Int:
		return v.BigInt(), true
	case starlark.Bool:
		if v {
			return big.NewInt(1), true
		}
		return big.NewInt(0), true
	case starlark.Float:
		f := float64(v)
		if math.IsNaN(f) || math.IsInf(f, 0) || f != math.Trunc(f) {
			return nil, false
		}
		i, _ := big.NewFloat(f).Int(nil)
		return i, true
	case starlark.String:
		return parseBigInt(string(v))
	case starlark.Bytes:
		return parseBigInt(string(v))
	}
	return nil, false
}

func parseBigInt(s string) (*big.Int, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return big.NewInt(0), true
	}
	return parseInteger(s)
}
