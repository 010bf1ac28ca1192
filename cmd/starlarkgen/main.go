// Copyright 2026 The Bazel Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// The starlarkgen command generates the DecodeStarlark and
// EncodeStarlark methods of Go struct types, making them usable with
// starlarkconv.Struct. It is meant to be run by go generate:
//
//	//go:generate go run github.com/mibes404/starlark-derive/cmd/starlarkgen -type Config,Rule
//
// The package is the one in the current directory unless a package
// pattern is given. The output file defaults to <first type>_starlark.go
// in the package directory.
package main

import (
	"flag"
	"fmt"
	"go/token"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/mibes404/starlark-derive/internal/derive"
	"golang.org/x/tools/go/packages"
)

var (
	typeNames = flag.String("type", "", "comma-separated list of type names; required")
	output    = flag.String("o", "", "output file name; default <type>_starlark.go")
)

func usage() {
	fmt.Fprintf(os.Stderr, "usage: starlarkgen -type T[,T...] [-o file] [package]\n")
	flag.PrintDefaults()
}

func main() {
	log.SetPrefix("starlarkgen: ")
	log.SetFlags(0)

	flag.Usage = usage
	flag.Parse()
	if flag.NArg() > 1 {
		flag.Usage()
		os.Exit(2)
	}
	names, err := parseTypeNames(*typeNames)
	if err != nil {
		log.Print(err)
		flag.Usage()
		os.Exit(2)
	}

	pattern := "."
	if flag.NArg() == 1 {
		pattern = flag.Arg(0)
	}
	cfg := &packages.Config{Mode: packages.NeedName | packages.NeedFiles | packages.NeedTypes | packages.NeedImports}
	pkgs, err := packages.Load(cfg, pattern)
	if err != nil {
		log.Fatal(err)
	}
	if packages.PrintErrors(pkgs) > 0 {
		os.Exit(1)
	}
	if len(pkgs) != 1 {
		log.Fatalf("%d packages match %q, want 1", len(pkgs), pattern)
	}
	pkg := pkgs[0]

	src, err := derive.GenerateTypes(pkg.Types, names)
	if err != nil {
		log.Fatal(err)
	}

	filename := *output
	if filename == "" {
		dir := "."
		if len(pkg.GoFiles) > 0 {
			dir = filepath.Dir(pkg.GoFiles[0])
		}
		filename = filepath.Join(dir, strings.ToLower(names[0])+"_starlark.go")
	}
	if err := os.WriteFile(filename, src, 0o666); err != nil {
		log.Fatal(err)
	}
}

// parseTypeNames splits the -type flag into type names.
func parseTypeNames(list string) ([]string, error) {
	var names []string
	seen := make(map[string]bool)
	for _, name := range strings.Split(list, ",") {
		name = strings.TrimSpace(name)
		switch {
		case name == "":
			continue
		case !token.IsIdentifier(name):
			return nil, fmt.Errorf("-type: invalid type name %q", name)
		case seen[name]:
			return nil, fmt.Errorf("-type: %s listed twice", name)
		}
		seen[name] = true
		names = append(names, name)
	}
	if len(names) == 0 {
		return nil, fmt.Errorf("-type: no type names given")
	}
	return names, nil
}
