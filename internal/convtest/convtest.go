// Copyright 2026 The Bazel Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package convtest reads files of conversion test cases.
//
// A case file consists of Starlark programs separated by "---" lines.
// Each program binds the global variable value. A line containing
// "###" states what decoding value should do: the rest of the line is
// either the word ok or a Go string literal holding a regular
// expression that the decoding error must match.
//
// Example:
//
//	value = struct(age = "x") ### `expected int32 at age`
//	---
//	value = {"age": 1} ### ok
//
// A client test executes each case with Value, decodes the result, and
// passes the error (possibly nil) to Check, which reports any mismatch
// to the case's reporter, typically a testing.T.
package convtest // import "github.com/mibes404/starlark-derive/internal/convtest"

import (
	"fmt"
	"os"
	"regexp"
	"strconv"
	"strings"

	"go.starlark.net/starlark"
)

// A Case is one program of a case file.
type Case struct {
	Source string // padded with newlines so that line numbers match the file
	Line   int    // line of the expectation

	filename string
	report   Reporter
	want     *regexp.Regexp // nil if decoding should succeed
}

// Reporter is implemented by *testing.T.
type Reporter interface {
	Errorf(format string, args ...interface{})
}

// Read parses the case file filename. It reports failures using report.
func Read(filename string, report Reporter) []*Case {
	data, err := os.ReadFile(filename)
	if err != nil {
		report.Errorf("%s", err)
		return nil
	}
	return parse(filename, string(data), report)
}

func parse(filename, data string, report Reporter) []*Case {
	var cases []*Case
	linenum := 1
	for _, chunk := range strings.Split(strings.ReplaceAll(data, "\r\n", "\n"), "\n---\n") {
		c := &Case{
			Source:   strings.Repeat("\n", linenum-1) + chunk,
			filename: filename,
			report:   report,
		}
		start := linenum
		lines := strings.Split(chunk, "\n")
		for _, line := range lines {
			if hashes := strings.Index(line, "###"); hashes >= 0 {
				if c.Line != 0 {
					report.Errorf("\n%s:%d: second expectation in case starting at line %d", filename, linenum, start)
				}
				c.Line = linenum
				c.want = c.expectation(strings.TrimSpace(line[hashes+len("###"):]))
			}
			linenum++
		}
		linenum++ // the --- line
		if c.Line == 0 {
			report.Errorf("\n%s:%d: case has no ### expectation", filename, start)
			continue
		}
		cases = append(cases, c)
	}
	return cases
}

func (c *Case) expectation(rest string) *regexp.Regexp {
	if rest == "ok" {
		return nil
	}
	pattern, err := strconv.Unquote(rest)
	if err != nil {
		c.report.Errorf("\n%s:%d: not ok or a quoted regexp: %s", c.filename, c.Line, rest)
		return nil
	}
	rx, err := regexp.Compile(pattern)
	if err != nil {
		c.report.Errorf("\n%s:%d: %v", c.filename, c.Line, err)
		return nil
	}
	return rx
}

// Value executes the case and returns its global value, or nil if
// execution failed, which is reported.
func (c *Case) Value(predeclared starlark.StringDict) starlark.Value {
	thread := &starlark.Thread{Name: fmt.Sprintf("%s:%d", c.filename, c.Line)}
	globals, err := starlark.ExecFile(thread, c.filename, c.Source, predeclared)
	if err != nil {
		c.report.Errorf("\n%s", err)
		return nil
	}
	v, ok := globals["value"]
	if !ok {
		c.report.Errorf("\n%s:%d: program does not bind value", c.filename, c.Line)
		return nil
	}
	return v
}

// Check reports err unless it is what the case expects.
func (c *Case) Check(err error) {
	switch {
	case c.want == nil && err != nil:
		c.report.Errorf("\n%s:%d: unexpected error: %v", c.filename, c.Line, err)
	case c.want != nil && err == nil:
		c.report.Errorf("\n%s:%d: expected error matching %q", c.filename, c.Line, c.want)
	case c.want != nil && !c.want.MatchString(err.Error()):
		c.report.Errorf("\n%s:%d: error %q does not match pattern %q", c.filename, c.Line, err, c.want)
	}
}
