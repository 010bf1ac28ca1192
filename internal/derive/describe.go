// Copyright 2026 The Bazel Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package derive generates the DecodeStarlark and EncodeStarlark
// methods of Go struct types, as used by the starlarkgen command.
package derive

import (
	"fmt"
	"go/types"
	"reflect"
	"sort"
	"strconv"
	"strings"
)

const (
	convPath     = "github.com/mibes404/starlark-derive/starlarkconv"
	treePath     = "github.com/mibes404/starlark-derive/starlarktree"
	starlarkPath = "go.starlark.net/starlark"
	structpbPath = "google.golang.org/protobuf/types/known/structpb"
)

// A Record describes a struct type whose methods are to be generated.
type Record struct {
	Name   string // type name
	Fields []*Field

	pkg     *types.Package
	imports map[string]string // path -> package name
	locals  map[string]bool   // variables of DecodeStarlark
}

// generatedNames are declared or imported by every generated method.
var generatedNames = map[string]bool{
	"x": true, "s": true, "v": true, "obj": true, "err": true,
	"starlark": true, "starlarkconv": true, "starlarktree": true,
}

// A Field describes one Starlark-visible field of a Record.
type Field struct {
	GoName   string
	Name     string // Starlark field name
	Type     types.Type
	Optional bool   // pointer field; missing or None decodes to nil
	Codec    string // expression of the codec; of the pointee if Optional
}

// Describe returns the description of the named struct type.
//
// Exported fields are visible to Starlark under their Go name, or the
// name given by a `starlark:"name"` tag; a `starlark:"-"` tag hides a
// field. Unexported fields are ignored. Embedded fields and fields
// whose type has no codec are errors.
func Describe(named *types.Named) (*Record, error) {
	obj := named.Obj()
	if named.TypeParams().Len() > 0 {
		return nil, fmt.Errorf("%s: generic types are not supported", obj.Name())
	}
	st, ok := named.Underlying().(*types.Struct)
	if !ok {
		return nil, fmt.Errorf("%s: not a struct type", obj.Name())
	}

	r := &Record{
		Name:    obj.Name(),
		pkg:     obj.Pkg(),
		imports: map[string]string{starlarkPath: "starlark", convPath: "starlarkconv"},
		locals:  make(map[string]bool),
	}
	if r.taken(r.Name) {
		return nil, fmt.Errorf("%s: type name conflicts with the generated code", r.Name)
	}
	for i := 0; i < st.NumFields(); i++ {
		r.locals[(&Field{GoName: st.Field(i).Name()}).local()] = true
	}
	qualify := func(p *types.Package) string {
		if p == obj.Pkg() {
			return ""
		}
		return r.importName(p)
	}

	seen := make(map[string]string)
	for i := 0; i < st.NumFields(); i++ {
		v := st.Field(i)
		if v.Embedded() {
			return nil, fmt.Errorf("%s.%s: embedded fields are not supported", r.Name, v.Name())
		}
		if !v.Exported() {
			continue
		}
		name := v.Name()
		if tag, ok := reflect.StructTag(st.Tag(i)).Lookup("starlark"); ok {
			if tag == "-" {
				continue
			}
			if tag != "" {
				name = tag
			}
		}
		if prev, ok := seen[name]; ok {
			return nil, fmt.Errorf("%s.%s: Starlark name %q already used by %s", r.Name, v.Name(), name, prev)
		}
		seen[name] = v.Name()

		f := &Field{GoName: v.Name(), Name: name, Type: v.Type()}
		t := types.Unalias(v.Type())
		if p, ok := t.(*types.Pointer); ok && !isTree(t) {
			f.Optional = true
			t = p.Elem()
		}
		c, err := codecOf(t, qualify, r)
		if err != nil {
			return nil, fmt.Errorf("%s.%s: %v", r.Name, v.Name(), err)
		}
		f.Codec = c
		r.Fields = append(r.Fields, f)
	}
	return r, nil
}

// codecOf returns the expression for the codec of t.
func codecOf(t types.Type, qualify types.Qualifier, r *Record) (string, error) {
	t = types.Unalias(t)
	switch {
	case isTree(t):
		r.imports[treePath] = "starlarktree"
		return "starlarktree.Codec", nil
	case isNamed(t, starlarkPath, "Value"):
		return "starlarkconv.Raw", nil
	}

	switch t := t.(type) {
	case *types.Basic:
		if c, ok := basicCodecs[t.Kind()]; ok {
			return "starlarkconv." + c, nil
		}
	case *types.Pointer:
		elem, err := codecOf(t.Elem(), qualify, r)
		if err != nil {
			return "", err
		}
		return "starlarkconv.Optional(" + elem + ")", nil
	case *types.Slice:
		elem, err := codecOf(t.Elem(), qualify, r)
		if err != nil {
			return "", err
		}
		return "starlarkconv.Sequence(" + elem + ")", nil
	case *types.Map:
		val, err := codecOf(t.Elem(), qualify, r)
		if err != nil {
			return "", err
		}
		if b, ok := types.Unalias(t.Key()).(*types.Basic); ok && b.Kind() == types.String {
			return "starlarkconv.Mapping(" + val + ")", nil
		}
		key, ok := t.Key().(*types.Basic)
		if !ok || basicCodecs[key.Kind()] == "" {
			return "", fmt.Errorf("unsupported map key type %s", types.TypeString(t.Key(), qualify))
		}
		return "starlarkconv.KeyedMapping(starlarkconv." + basicCodecs[key.Kind()] + ", " + val + ")", nil
	case *types.Named:
		if _, ok := t.Underlying().(*types.Struct); ok || hasMethod(t, "DecodeStarlark") {
			if t.TypeArgs().Len() > 0 {
				break
			}
			if qualify(t.Obj().Pkg()) == "" && r.taken(t.Obj().Name()) {
				return "", fmt.Errorf("type name %s conflicts with the generated code", t.Obj().Name())
			}
			return "starlarkconv.Struct[" + types.TypeString(t, qualify) + "]()", nil
		}
	}
	return "", fmt.Errorf("unsupported type %s", types.TypeString(t, qualify))
}

var basicCodecs = map[types.BasicKind]string{
	types.Bool:    "Bool",
	types.String:  "String",
	types.Int:     "Int",
	types.Int8:    "Int8",
	types.Int16:   "Int16",
	types.Int32:   "Int32",
	types.Int64:   "Int64",
	types.Uint8:   "Uint8",
	types.Uint16:  "Uint16",
	types.Uint32:  "Uint32",
	types.Float32: "Float32",
	types.Float64: "Float64",
}

// isTree reports whether t is *structpb.Value.
func isTree(t types.Type) bool {
	p, ok := types.Unalias(t).(*types.Pointer)
	return ok && isNamed(p.Elem(), structpbPath, "Value")
}

func isNamed(t types.Type, path, name string) bool {
	n, ok := types.Unalias(t).(*types.Named)
	if !ok {
		return false
	}
	obj := n.Obj()
	return obj.Pkg() != nil && obj.Pkg().Path() == path && obj.Name() == name
}

func hasMethod(t *types.Named, name string) bool {
	obj, _, _ := types.LookupFieldOrMethod(types.NewPointer(t), true, t.Obj().Pkg(), name)
	_, ok := obj.(*types.Func)
	return ok
}

// importName returns the name by which the generated code refers to p,
// renaming p if its name is already in use.
func (r *Record) importName(p *types.Package) string {
	if name, ok := r.imports[p.Path()]; ok {
		return name
	}
	if p.Path() == treePath {
		r.imports[treePath] = "starlarktree"
		return "starlarktree"
	}
	name := p.Name()
	for i := 2; r.taken(name) || r.pkg.Scope().Lookup(name) != nil; i++ {
		name = p.Name() + strconv.Itoa(i)
	}
	r.imports[p.Path()] = name
	return name
}

// taken reports whether name is declared by the generated code of r.
func (r *Record) taken(name string) bool {
	if generatedNames[name] || r.locals[name] {
		return true
	}
	for _, n := range r.imports {
		if n == name {
			return true
		}
	}
	return false
}

// local returns the name of the variable holding the decoded field.
func (f *Field) local() string { return "f" + f.GoName }

// importSpecs returns the import declarations needed by the methods of r.
func (r *Record) importSpecs() []string {
	var specs []string
	for path, name := range r.imports {
		specs = append(specs, importSpec(path, name))
	}
	sort.Strings(specs)
	return specs
}

func importSpec(path, name string) string {
	spec := strconv.Quote(path)
	if !strings.HasSuffix(path, "/"+name) && path != name {
		spec = name + " " + spec
	}
	return spec
}
