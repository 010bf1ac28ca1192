// Copyright 2026 The Bazel Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package starlarkconv

import (
	"errors"

	"go.starlark.net/starlark"
	"go.uber.org/zap"
)

// GetField decodes the field name of the object or dict v using c.
//
// It fails with FieldNotFound if v has no such field. A field bound
// to None is present, and its value is decoded by c.
func GetField[T any](s *Scope, v starlark.Value, name string, c Codec[T]) (T, error) {
	var zero T
	x, err := field(s, v, name)
	if err != nil {
		return zero, err
	}
	if x == nil {
		return zero, fieldError(FieldNotFound, name, nil)
	}
	r, err := c.Decode(s, x)
	if err != nil {
		return zero, fieldFailed(s, err, name, x)
	}
	return r, nil
}

// GetOptionalField is like GetField, but returns nil, without calling
// c, if the field is missing or None.
func GetOptionalField[T any](s *Scope, v starlark.Value, name string, c Codec[T]) (*T, error) {
	x, err := field(s, v, name)
	if err != nil {
		return nil, err
	}
	if IsNullOrUndefined(x) {
		return nil, nil
	}
	r, err := c.Decode(s, x)
	if err != nil {
		return nil, fieldFailed(s, err, name, x)
	}
	return &r, nil
}

// field returns the value of the named field, or nil if v lacks it.
func field(s *Scope, v starlark.Value, name string) (starlark.Value, error) {
	if !isObjectLike(v) {
		return nil, newError(ExpectedObject, typeOf(v), "")
	}
	x, found, err := lookup(v, name)
	if err != nil {
		s.Logger().Debug("field lookup failed", zap.String("field", name), zap.String("type", v.Type()), zap.Error(err))
		return nil, fieldError(InvalidField, name, err)
	}
	if !found {
		return nil, nil
	}
	return x, nil
}

func fieldFailed(s *Scope, err error, name string, x starlark.Value) error {
	var e *Error
	if errors.As(err, &e) && len(e.Path) == 0 {
		// Log once, where the failure originates.
		s.Logger().Debug("cannot decode field",
			zap.String("field", name),
			zap.Stringer("kind", e.Kind),
			zap.String("got", typeOf(x)))
	}
	return withinField(err, name)
}
