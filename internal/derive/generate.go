// Copyright 2026 The Bazel Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package derive

import (
	"bytes"
	"fmt"
	"go/types"
	"sort"

	"golang.org/x/tools/imports"
)

// Generate returns the formatted source of a Go file of package pkg
// that declares the methods of the given records.
//
// DecodeStarlark decodes every field into a local variable before
// assigning the record, so the receiver is left untouched on failure.
// EncodeStarlark sets the fields of a new object in declaration order.
func Generate(pkg *types.Package, records []*Record) ([]byte, error) {
	paths := make(map[string]string) // package name -> path
	seen := make(map[string]bool)
	var specs []string
	for _, r := range records {
		for path, name := range r.imports {
			if prev, ok := paths[name]; ok && prev != path {
				return nil, fmt.Errorf("%s: package name %s refers to both %s and %s", r.Name, name, prev, path)
			}
			paths[name] = path
			if spec := importSpec(path, name); !seen[spec] {
				seen[spec] = true
				specs = append(specs, spec)
			}
		}
	}
	sort.Strings(specs)

	buf := new(bytes.Buffer)
	fmt.Fprintf(buf, "// Code generated by starlarkgen. DO NOT EDIT.\n\n")
	fmt.Fprintf(buf, "package %s\n\n", pkg.Name())
	fmt.Fprintf(buf, "import (\n")
	for _, spec := range specs {
		fmt.Fprintf(buf, "\t%s\n", spec)
	}
	fmt.Fprintf(buf, ")\n")

	for _, r := range records {
		writeDecode(buf, r)
		writeEncode(buf, r)
	}

	out, err := imports.Process(pkg.Name()+"_starlark.go", buf.Bytes(), &imports.Options{Comments: true, TabIndent: true, TabWidth: 8, FormatOnly: true})
	if err != nil {
		return nil, fmt.Errorf("formatting generated code: %v\n%s", err, buf.Bytes())
	}
	return out, nil
}

func writeDecode(buf *bytes.Buffer, r *Record) {
	fmt.Fprintf(buf, "\n// DecodeStarlark sets x from the fields of the Starlark struct or dict v.\n")
	fmt.Fprintf(buf, "func (x *%s) DecodeStarlark(s *starlarkconv.Scope, v starlark.Value) error {\n", r.Name)
	if len(r.Fields) == 0 {
		fmt.Fprintf(buf, "\tif err := starlarkconv.ExpectObject(v); err != nil {\n\t\treturn err\n\t}\n")
	}
	for _, f := range r.Fields {
		get := "GetField"
		if f.Optional {
			get = "GetOptionalField"
		}
		fmt.Fprintf(buf, "\t%s, err := starlarkconv.%s(s, v, %q, %s)\n", f.local(), get, f.Name, f.Codec)
		fmt.Fprintf(buf, "\tif err != nil {\n\t\treturn err\n\t}\n")
	}
	if len(r.Fields) == 0 {
		fmt.Fprintf(buf, "\t*x = %s{}\n", r.Name)
	} else {
		fmt.Fprintf(buf, "\t*x = %s{\n", r.Name)
		for _, f := range r.Fields {
			fmt.Fprintf(buf, "\t\t%s: %s,\n", f.GoName, f.local())
		}
		fmt.Fprintf(buf, "\t}\n")
	}
	fmt.Fprintf(buf, "\treturn nil\n}\n")
}

func writeEncode(buf *bytes.Buffer, r *Record) {
	fmt.Fprintf(buf, "\n// EncodeStarlark returns x as a Starlark struct.\n")
	fmt.Fprintf(buf, "func (x %s) EncodeStarlark(s *starlarkconv.Scope) starlark.Value {\n", r.Name)
	fmt.Fprintf(buf, "\tobj := starlarkconv.NewObject(%d)\n", len(r.Fields))
	for _, f := range r.Fields {
		c := f.Codec
		if f.Optional {
			c = "starlarkconv.Optional(" + c + ")"
		}
		fmt.Fprintf(buf, "\tobj.Set(%q, %s.Encode(s, x.%s))\n", f.Name, c, f.GoName)
	}
	fmt.Fprintf(buf, "\treturn obj.Value()\n}\n")
}

// GenerateTypes describes and generates the named types of pkg.
func GenerateTypes(pkg *types.Package, names []string) ([]byte, error) {
	var records []*Record
	listed := make(map[string]bool)
	for _, name := range names {
		if listed[name] {
			return nil, fmt.Errorf("%s.%s: type listed twice", pkg.Path(), name)
		}
		listed[name] = true
		obj, ok := pkg.Scope().Lookup(name).(*types.TypeName)
		if !ok {
			return nil, fmt.Errorf("%s.%s: no such type", pkg.Path(), name)
		}
		named, ok := obj.Type().(*types.Named)
		if !ok {
			return nil, fmt.Errorf("%s.%s: not a defined type", pkg.Path(), name)
		}
		r, err := Describe(named)
		if err != nil {
			return nil, err
		}
		records = append(records, r)
	}
	return Generate(pkg, records)
}
