// Copyright 2026 The Bazel Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// The starbridge command moves example records between Go and Starlark.
//
// With no arguments, it encodes a sample list of records as Starlark
// values, decodes them again, checks that nothing was lost, and prints
// both forms. Given a Starlark file, or a program with -c, it executes
// it and decodes the global named by -global as a list of records.
// With -json it decodes the records from a JSON file instead, and with
// -i it starts a read-eval-print loop that prints each value as JSON.
package main // import "github.com/mibes404/starlark-derive/cmd/starbridge"

import (
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/google/go-cmp/cmp"
	"github.com/mibes404/starlark-derive/examples/records"
	"github.com/mibes404/starlark-derive/starlarkconv"
	"github.com/mibes404/starlark-derive/starlarktree"
	"go.starlark.net/lib/json"
	"go.starlark.net/lib/math"
	"go.starlark.net/lib/proto"
	"go.starlark.net/lib/time"
	"go.starlark.net/starlark"
	"go.starlark.net/starlarkstruct"
	"go.uber.org/zap"
	"google.golang.org/protobuf/reflect/protoregistry"
	"google.golang.org/protobuf/testing/protocmp"
)

// flags
var (
	execprog    = flag.String("c", "", "execute program `prog`")
	jsonFile    = flag.String("json", "", "decode the records from JSON `file`")
	interactive = flag.Bool("i", false, "start a read-eval-print loop")
	global      = flag.String("global", "", "name of the global holding the records (default $STARBRIDGE_GLOBAL or records)")
	maxDepth    = flag.Int("maxdepth", 0, "nesting limit of decoded values (default $STARBRIDGE_MAX_DEPTH or 1000)")
	logLevel    = flag.String("log", "", "log level (default $STARBRIDGE_LOG_LEVEL or info)")
)

var parentList = starlarkconv.Sequence(starlarkconv.Struct[records.ParentObject]())

func main() {
	os.Exit(doMain())
}

func doMain() int {
	log.SetPrefix("starbridge: ")
	log.SetFlags(0)
	flag.Parse()

	cfg, err := loadConfig()
	check(err)
	if *global != "" {
		cfg.Global = *global
	}
	if *maxDepth > 0 {
		cfg.MaxDepth = *maxDepth
	}
	if *logLevel != "" {
		cfg.LogLevel = *logLevel
	}

	logger, err := newLogger(cfg.LogLevel)
	check(err)
	defer logger.Sync()
	starlarkconv.SetLogger(logger)

	b := &bridge{
		log:  logger,
		opts: []starlarkconv.ScopeOption{starlarkconv.WithMaxDepth(cfg.MaxDepth), starlarkconv.WithLogger(logger)},
	}

	thread := &starlark.Thread{Name: "starbridge"}
	proto.SetPool(thread, protoregistry.GlobalFiles)
	predeclared := starlark.StringDict{
		"json":   json.Module,
		"math":   math.Module,
		"proto":  proto.Module,
		"struct": starlark.NewBuiltin("struct", starlarkstruct.Make),
		"time":   time.Module,
	}

	switch {
	case *interactive:
		if flag.NArg() > 0 || *execprog != "" || *jsonFile != "" {
			log.Print("-i takes no other input")
			return 2
		}
		fmt.Println("Welcome to starbridge; values are printed as JSON trees")
		thread.Name = "REPL"
		r := &repl{thread: thread, globals: make(starlark.StringDict), opts: b.opts, log: logger}
		for k, v := range predeclared {
			r.globals[k] = v
		}
		r.run()
		return 0
	case *jsonFile != "":
		data, err := os.ReadFile(*jsonFile)
		check(err)
		tree, err := starlarktree.UnmarshalJSON(data)
		check(err)
		return b.decode(*jsonFile, starlarktree.ToStarlark(tree))
	case flag.NArg() == 1 || *execprog != "":
		var (
			filename string
			src      interface{}
		)
		if *execprog != "" {
			filename = "cmdline"
			src = *execprog
		} else {
			filename = flag.Arg(0)
		}
		thread.Name = "exec " + filename
		globals, err := starlark.ExecFile(thread, filename, src, predeclared)
		if err != nil {
			printError(err)
			return 1
		}
		v, ok := globals[cfg.Global]
		if !ok {
			log.Printf("%s does not define %s", filename, cfg.Global)
			return 1
		}
		return b.decode(filename, v)
	case flag.NArg() == 0:
		return b.sample()
	default:
		log.Print("want at most one Starlark file name")
		return 2
	}
}

type bridge struct {
	log  *zap.Logger
	opts []starlarkconv.ScopeOption
}

// sample round-trips records.Sample through Starlark.
func (b *bridge) sample() int {
	in := records.Sample()
	v := starlarkconv.Encode(in, parentList, b.opts...)
	fmt.Println(v)

	out, err := starlarkconv.Decode(v, parentList, b.opts...)
	if err != nil {
		log.Print(err)
		return 1
	}
	if diff := cmp.Diff(in, out, protocmp.Transform()); diff != "" {
		log.Printf("round trip changed the records (-in +out):\n%s", diff)
		return 1
	}
	b.log.Info("round trip ok", zap.Int("records", len(out)))
	return b.print(out)
}

// decode decodes v as a list of records and prints them as JSON.
func (b *bridge) decode(source string, v starlark.Value) int {
	out, err := starlarkconv.Decode(v, parentList, b.opts...)
	if err != nil {
		b.log.Error("cannot decode records", zap.String("source", source), zap.Error(err))
		return 1
	}
	for i, p := range out {
		b.log.Info("decoded record",
			zap.Int("index", i),
			zap.String("name", p.Nested.Name),
			zap.Int32("age", p.Nested.Age),
			zap.Int("children", len(p.Children)))
	}
	return b.print(out)
}

func (b *bridge) print(out []records.ParentObject) int {
	tree, err := starlarktree.FromStarlark(starlarkconv.NewScope(b.opts...), starlarkconv.Encode(out, parentList))
	if err != nil {
		log.Print(err)
		return 1
	}
	data, err := starlarktree.MarshalIndentJSON(tree, "  ")
	if err != nil {
		log.Print(err)
		return 1
	}
	fmt.Println(string(data))
	return 0
}

func check(err error) {
	if err != nil {
		log.Fatal(err)
	}
}
