// Copyright 2026 The Bazel Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package derive

import (
	"fmt"
	"go/ast"
	"go/parser"
	"go/token"
	"go/types"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
)

// recordImports and methods let stub packages declare record types.
const recordImports = "\nimport (\n\t\"go.starlark.net/starlark\"\n\t\"github.com/mibes404/starlark-derive/starlarkconv\"\n)\n"

func methods(name string) string {
	return "\nfunc (*" + name + ") DecodeStarlark(*starlarkconv.Scope, starlark.Value) error { return nil }" +
		"\nfunc (" + name + ") EncodeStarlark(*starlarkconv.Scope) starlark.Value { return nil }\n"
}

// stubs declares just enough of the packages that records refer to.
var stubs = map[string]string{
	starlarkPath: "package starlark\ntype Value interface{ String() string }",
	structpbPath: "package structpb\ntype Value struct{ kind int }",
	convPath: `package starlarkconv
import "go.starlark.net/starlark"
type Scope struct{}
type Codec[T any] interface {
	Decode(*Scope, starlark.Value) (T, error)
	Encode(*Scope, T) starlark.Value
}
type Decodable interface{ DecodeStarlark(*Scope, starlark.Value) error }
type Encodable interface{ EncodeStarlark(*Scope) starlark.Value }
func Struct[T Encodable, P interface{ *T; Decodable }]() Codec[T] { return nil }
func Optional[T any](Codec[T]) Codec[*T] { return nil }
func GetField[T any](*Scope, starlark.Value, string, Codec[T]) (T, error) { var z T; return z, nil }
func GetOptionalField[T any](*Scope, starlark.Value, string, Codec[T]) (*T, error) { return nil, nil }
func ExpectObject(starlark.Value) error { return nil }
type Object struct{}
func NewObject(int) *Object { return nil }
func (*Object) Set(string, starlark.Value) {}
func (*Object) Value() starlark.Value { return nil }
var String Codec[string]
var Int32 Codec[int32]
`,
	"example.com/geo":       "package geo" + recordImports + "type Point struct{ X, Y float64 }" + methods("Point"),
	"example.com/other/geo": "package geo" + recordImports + "type Point struct{ Z int }" + methods("Point"),
	"example.com/s":         "package s" + recordImports + "type T struct{}" + methods("T"),
	"example.com/v":         "package v" + recordImports + "type T struct{}" + methods("T"),
	"example.com/fwhere":    "package fWhere" + recordImports + "type T struct{}" + methods("T"),
}

type importer map[string]*types.Package

func (imp importer) Import(path string) (*types.Package, error) {
	if pkg, ok := imp[path]; ok {
		return pkg, nil
	}
	src, ok := stubs[path]
	if !ok {
		return nil, &types.Error{Msg: "no package " + path}
	}
	pkg, err := check(path, src, imp)
	if err != nil {
		return nil, err
	}
	imp[path] = pkg
	return pkg, nil
}

func check(path, src string, imp types.Importer) (*types.Package, error) {
	return checkFiles(path, imp, src)
}

func checkFiles(path string, imp types.Importer, srcs ...string) (*types.Package, error) {
	fset := token.NewFileSet()
	var files []*ast.File
	for i, src := range srcs {
		f, err := parser.ParseFile(fset, fmt.Sprintf("%s_%d.go", path, i), src, 0)
		if err != nil {
			return nil, err
		}
		files = append(files, f)
	}
	conf := types.Config{Importer: imp}
	return conf.Check(path, fset, files, nil)
}

// load type-checks the source of package records.
func load(t *testing.T, src string) *types.Package {
	t.Helper()
	pkg, err := check("example.com/records", "package records\n"+src, importer{})
	if err != nil {
		t.Fatalf("type-checking failed: %v", err)
	}
	return pkg
}

func describe(t *testing.T, pkg *types.Package, name string) (*Record, error) {
	t.Helper()
	obj := pkg.Scope().Lookup(name)
	if obj == nil {
		t.Fatalf("no type %s", name)
	}
	return Describe(obj.Type().(*types.Named))
}

const recordsSrc = `
import (
	"example.com/geo"
	"go.starlark.net/starlark"
	"google.golang.org/protobuf/types/known/structpb"
)

type Simple struct {
	YesNo  bool   ` + "`starlark:\"yes_no\"`" + `
	Name   string
	Age    int32
	Opt    *int32 ` + "`starlark:\"opt\"`" + `
	Avg    float64
	Hidden string ` + "`starlark:\"-\"`" + `
	secret int
}

type Everything struct {
	Small   int8
	Medium  int16
	Big     int64
	Word    int
	Byte    uint8
	Short   uint16
	Count   uint32
	Ratio   float32
	List    []string
	Nested  [][]*int32
	Dict    map[string]Simple
	ByID    map[int64]bool
	Tree    *structpb.Value
	Raw     starlark.Value
	Child   *Simple
	Where   geo.Point
	Ptr     **bool
}

type Empty struct{}
`

func TestDescribe(t *testing.T) {
	pkg := load(t, recordsSrc)
	r, err := describe(t, pkg, "Simple")
	if err != nil {
		t.Fatal(err)
	}
	type field struct {
		GoName, Name, Codec string
		Optional            bool
	}
	var got []field
	for _, f := range r.Fields {
		got = append(got, field{f.GoName, f.Name, f.Codec, f.Optional})
	}
	want := []field{
		{"YesNo", "yes_no", "starlarkconv.Bool", false},
		{"Name", "Name", "starlarkconv.String", false},
		{"Age", "Age", "starlarkconv.Int32", false},
		{"Opt", "opt", "starlarkconv.Int32", true},
		{"Avg", "Avg", "starlarkconv.Float64", false},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("fields mismatch (-want +got):\n%s", diff)
	}
}

func TestDescribeCodecs(t *testing.T) {
	pkg := load(t, recordsSrc)
	r, err := describe(t, pkg, "Everything")
	if err != nil {
		t.Fatal(err)
	}
	got := make(map[string]string)
	for _, f := range r.Fields {
		c := f.Codec
		if f.Optional {
			c = "?" + c
		}
		got[f.GoName] = c
	}
	want := map[string]string{
		"Small":  "starlarkconv.Int8",
		"Medium": "starlarkconv.Int16",
		"Big":    "starlarkconv.Int64",
		"Word":   "starlarkconv.Int",
		"Byte":   "starlarkconv.Uint8",
		"Short":  "starlarkconv.Uint16",
		"Count":  "starlarkconv.Uint32",
		"Ratio":  "starlarkconv.Float32",
		"List":   "starlarkconv.Sequence(starlarkconv.String)",
		"Nested": "starlarkconv.Sequence(starlarkconv.Sequence(starlarkconv.Optional(starlarkconv.Int32)))",
		"Dict":   "starlarkconv.Mapping(starlarkconv.Struct[Simple]())",
		"ByID":   "starlarkconv.KeyedMapping(starlarkconv.Int64, starlarkconv.Bool)",
		"Tree":   "starlarktree.Codec",
		"Raw":    "starlarkconv.Raw",
		"Child":  "?starlarkconv.Struct[Simple]()",
		"Where":  "starlarkconv.Struct[geo.Point]()",
		"Ptr":    "?starlarkconv.Optional(starlarkconv.Bool)",
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("codecs mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{
		`"example.com/geo"`,
		`"github.com/mibes404/starlark-derive/starlarkconv"`,
		`"github.com/mibes404/starlark-derive/starlarktree"`,
		`"go.starlark.net/starlark"`,
	}, r.importSpecs()); diff != "" {
		t.Errorf("imports mismatch (-want +got):\n%s", diff)
	}
}

func TestDescribeErrors(t *testing.T) {
	for _, test := range []struct {
		src, name, want string
	}{
		{"type E struct{ Base }\ntype Base struct{}", "E", "E.Base: embedded fields are not supported"},
		{"type N int", "N", "N: not a struct type"},
		{"type G[T any] struct{ X T }", "G", "G: generic types are not supported"},
		{"type C struct{ Ch chan int }", "C", "C.Ch: unsupported type chan int"},
		{"type F struct{ Fn func() }", "F", "F.Fn: unsupported type func()"},
		{"type U struct{ N uint64 }", "U", "U.N: unsupported type uint64"},
		{"type I struct{ X interface{} }", "I", "I.X: unsupported type interface{}"},
		{"type K struct{ M map[complex128]int }", "K", "K.M: unsupported map key type complex128"},
		{"type Celsius float64\ntype T struct{ C Celsius }", "T", "T.C: unsupported type Celsius"},
		{"type D struct {\n\tA int `starlark:\"x\"`\n\tB int `starlark:\"x\"`\n}", "D", `D.B: Starlark name "x" already used by A`},
		{"type s struct{ A int }", "s", "s: type name conflicts with the generated code"},
		{"type obj struct{}\ntype O struct{ X obj }", "O", "O.X: type name obj conflicts with the generated code"},
	} {
		pkg := load(t, test.src)
		_, err := describe(t, pkg, test.name)
		if err == nil {
			t.Errorf("Describe(%s) succeeded, want error %q", test.name, test.want)
		} else if err.Error() != test.want {
			t.Errorf("Describe(%s) = %q, want %q", test.name, err, test.want)
		}
	}
}

func TestGenerate(t *testing.T) {
	pkg := load(t, recordsSrc)
	out, err := GenerateTypes(pkg, []string{"Simple", "Empty"})
	if err != nil {
		t.Fatal(err)
	}
	if _, err := parser.ParseFile(token.NewFileSet(), "out.go", out, 0); err != nil {
		t.Fatalf("generated code does not parse: %v\n%s", err, out)
	}
	src := string(out)
	for _, want := range []string{
		"// Code generated by starlarkgen. DO NOT EDIT.\n\npackage records\n",
		"func (x *Simple) DecodeStarlark(s *starlarkconv.Scope, v starlark.Value) error {\n",
		"\tfYesNo, err := starlarkconv.GetField(s, v, \"yes_no\", starlarkconv.Bool)\n",
		"\tfOpt, err := starlarkconv.GetOptionalField(s, v, \"opt\", starlarkconv.Int32)\n",
		"\t*x = Simple{\n\t\tYesNo: fYesNo,\n",
		"func (x Simple) EncodeStarlark(s *starlarkconv.Scope) starlark.Value {\n\tobj := starlarkconv.NewObject(5)\n",
		"\tobj.Set(\"opt\", starlarkconv.Optional(starlarkconv.Int32).Encode(s, x.Opt))\n",
		"func (x *Empty) DecodeStarlark(s *starlarkconv.Scope, v starlark.Value) error {\n\tif err := starlarkconv.ExpectObject(v); err != nil {\n",
	} {
		if !strings.Contains(src, want) {
			t.Errorf("generated code lacks %q:\n%s", want, src)
		}
	}
	if strings.Contains(src, "starlarktree") {
		t.Errorf("generated code imports starlarktree needlessly:\n%s", src)
	}

	// Fields are encoded in declaration order.
	if i, j := strings.Index(src, `obj.Set("yes_no"`), strings.Index(src, `obj.Set("Avg"`); i < 0 || j < i {
		t.Errorf("fields not encoded in declaration order:\n%s", src)
	}
}

func TestGenerateTypesErrors(t *testing.T) {
	pkg := load(t, "type N int\nvar V int\ntype R struct{}")
	for _, names := range [][]string{{"Missing"}, {"V"}, {"N"}, {"R", "R"}} {
		if _, err := GenerateTypes(pkg, names); err == nil {
			t.Errorf("GenerateTypes(%q) succeeded unexpectedly", names)
		}
	}
}

const shadowSrc = `
import (
	"example.com/fwhere"
	"example.com/geo"
	other "example.com/other/geo"
	"example.com/s"
	"example.com/v"
)

type Shadow struct {
	A     s.T
	B     v.T
	Here  geo.Point
	There other.Point
	Where fWhere.T
	Name  string
}

type OnlyHere struct{ P geo.Point }

type OnlyThere struct{ P other.Point }
`

func TestGenerateRenamesImports(t *testing.T) {
	imp := importer{}
	pkg, err := checkFiles("example.com/records", imp, "package records\n"+shadowSrc)
	if err != nil {
		t.Fatal(err)
	}
	r, err := describe(t, pkg, "Shadow")
	if err != nil {
		t.Fatal(err)
	}
	got := make(map[string]string)
	for _, f := range r.Fields {
		got[f.GoName] = f.Codec
	}
	want := map[string]string{
		"A":     "starlarkconv.Struct[s2.T]()",
		"B":     "starlarkconv.Struct[v2.T]()",
		"Here":  "starlarkconv.Struct[geo.Point]()",
		"There": "starlarkconv.Struct[geo2.Point]()",
		"Where": "starlarkconv.Struct[fWhere2.T]()",
		"Name":  "starlarkconv.String",
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("codecs mismatch (-want +got):\n%s", diff)
	}

	// The generated methods must type-check next to the declarations.
	out, err := GenerateTypes(pkg, []string{"Shadow"})
	if err != nil {
		t.Fatal(err)
	}
	if _, err := checkFiles("example.com/records", imp, "package records\n"+shadowSrc, string(out)); err != nil {
		t.Errorf("generated code does not type-check: %v\n%s", err, out)
	}

	// Records generated together must agree on package names.
	_, err = GenerateTypes(pkg, []string{"OnlyHere", "OnlyThere"})
	if err == nil || !strings.Contains(err.Error(), "package name geo refers to both") {
		t.Errorf("GenerateTypes(OnlyHere, OnlyThere) = %v, want package name conflict", err)
	}
}
