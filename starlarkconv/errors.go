// Copyright 2026 The Bazel Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package starlarkconv

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// Kind categorizes a conversion failure.
type Kind int

const (
	ExpectedObject Kind = iota + 1
	ExpectedArray
	ExpectedMap
	ExpectedBoolean
	ExpectedString
	ExpectedI32
	ExpectedU32
	ExpectedI64
	ExpectedF64
	OutOfRange
	InvalidField
	FieldNotFound
	FailedToGetPropertyNames
	UnsupportedValueType
)

var kindNames = [...]string{
	ExpectedObject:           "expected object",
	ExpectedArray:            "expected array",
	ExpectedMap:              "expected map",
	ExpectedBoolean:          "expected boolean",
	ExpectedString:           "expected string",
	ExpectedI32:              "expected int32",
	ExpectedU32:              "expected uint32",
	ExpectedI64:              "expected int64",
	ExpectedF64:              "expected float64",
	OutOfRange:               "out of range",
	InvalidField:             "invalid field",
	FieldNotFound:            "field not found",
	FailedToGetPropertyNames: "failed to get property names",
	UnsupportedValueType:     "unsupported value type",
}

func (k Kind) String() string {
	if k > 0 && int(k) < len(kindNames) {
		return kindNames[k]
	}
	return "Kind(" + strconv.Itoa(int(k)) + ")"
}

// Sentinel errors, one per Kind, for use with errors.Is.
var (
	ErrExpectedObject           = &Error{Kind: ExpectedObject}
	ErrExpectedArray            = &Error{Kind: ExpectedArray}
	ErrExpectedMap              = &Error{Kind: ExpectedMap}
	ErrExpectedBoolean          = &Error{Kind: ExpectedBoolean}
	ErrExpectedString           = &Error{Kind: ExpectedString}
	ErrExpectedI32              = &Error{Kind: ExpectedI32}
	ErrExpectedU32              = &Error{Kind: ExpectedU32}
	ErrExpectedI64              = &Error{Kind: ExpectedI64}
	ErrExpectedF64              = &Error{Kind: ExpectedF64}
	ErrOutOfRange               = &Error{Kind: OutOfRange}
	ErrInvalidField             = &Error{Kind: InvalidField}
	ErrFieldNotFound            = &Error{Kind: FieldNotFound}
	ErrFailedToGetPropertyNames = &Error{Kind: FailedToGetPropertyNames}
	ErrUnsupportedValueType     = &Error{Kind: UnsupportedValueType}
)

// Error is the error type returned by every decoder in this package.
//
// Field is the name of the innermost record field whose decoding failed,
// if any. Path locates the failing value starting from the outermost
// value that was decoded; segments are field names, "[i]" list indices
// and "[key]" mapping keys.
type Error struct {
	Kind   Kind
	Field  string
	Path   []string
	Got    string // Starlark type of the offending value, if known
	Detail string
	Cause  error
}

func (e *Error) Error() string {
	var b strings.Builder
	b.WriteString(e.Kind.String())
	if len(e.Path) > 0 {
		b.WriteString(" at ")
		b.WriteString(e.pathString())
	} else if e.Field != "" {
		b.WriteString(" at ")
		b.WriteString(e.Field)
	}
	if e.Got != "" {
		b.WriteString(": got ")
		b.WriteString(e.Got)
	}
	if e.Detail != "" {
		if e.Got != "" {
			b.WriteString(", ")
		} else {
			b.WriteString(": ")
		}
		b.WriteString(e.Detail)
	}
	if e.Cause != nil {
		b.WriteString(" (")
		b.WriteString(e.Cause.Error())
		b.WriteByte(')')
	}
	return b.String()
}

func (e *Error) pathString() string {
	var b strings.Builder
	for i, seg := range e.Path {
		if i > 0 && !strings.HasPrefix(seg, "[") {
			b.WriteByte('.')
		}
		b.WriteString(seg)
	}
	return b.String()
}

func (e *Error) Unwrap() error { return e.Cause }

// Is reports whether target is an *Error of the same Kind.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && t.Kind == e.Kind
}

func newError(kind Kind, got string, format string, args ...interface{}) *Error {
	e := &Error{Kind: kind, Got: got}
	if format != "" {
		e.Detail = fmt.Sprintf(format, args...)
	}
	return e
}

// fieldError reports an error that belongs to the named record field.
func fieldError(kind Kind, field string, cause error) *Error {
	return &Error{Kind: kind, Field: field, Path: []string{field}, Cause: cause}
}

// within returns a copy of err whose path is prefixed with seg. The
// *Error inside err is never modified, so sentinels such as
// ErrOutOfRange may be returned by any codec. An error that merely
// wraps an *Error is replaced by the copy. Errors that are not
// conversion errors are wrapped so that the path is never lost.
func within(err error, seg string) error {
	var e *Error
	if !errors.As(err, &e) {
		return &Error{Kind: UnsupportedValueType, Path: []string{seg}, Cause: err}
	}
	c := *e
	c.Path = append([]string{seg}, e.Path...)
	return &c
}

// withinField is within for record fields; it also records the field
// name the first time an error crosses a record boundary.
func withinField(err error, field string) error {
	err = within(err, field)
	if e := err.(*Error); e.Field == "" {
		e.Field = field
	}
	return err
}

func indexSegment(i int) string { return "[" + strconv.Itoa(i) + "]" }
func keySegment(k string) string { return "[" + strconv.Quote(k) + "]" }
