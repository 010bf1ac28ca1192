// Copyright 2026 The Bazel Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package main

// This file implements the read/eval/print loop of the -i flag.
//
// Each input line that parses as an expression is evaluated and its
// value printed as a JSON tree. Other input is read until a blank line
// and executed as statements, whose bindings persist.

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"

	"github.com/chzyer/readline"
	"github.com/mibes404/starlark-derive/starlarkconv"
	"github.com/mibes404/starlark-derive/starlarktree"
	"go.starlark.net/starlark"
	"go.starlark.net/syntax"
	"go.uber.org/zap"
)

var interrupted = make(chan os.Signal, 1)

type repl struct {
	thread  *starlark.Thread
	globals starlark.StringDict
	opts    []starlarkconv.ScopeOption
	log     *zap.Logger
}

func (r *repl) run() {
	signal.Notify(interrupted, os.Interrupt)
	defer signal.Stop(interrupted)

	rl, err := readline.New(">>> ")
	if err != nil {
		printError(err)
		return
	}
	defer rl.Close()
	for {
		if err := r.rep(rl); err != nil {
			if err == readline.ErrInterrupt {
				fmt.Println(err)
				continue
			}
			break
		}
	}
	fmt.Println()
}

// rep reads, evaluates, and prints one item.
//
// It returns an error (possibly readline.ErrInterrupt) only if readline
// failed. Starlark and conversion errors are printed.
func (r *repl) rep(rl *readline.Instance) error {
	// A SIGINT cancels the context of the current item; during Readline,
	// Control-C makes Readline return ErrInterrupt instead.
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() {
		select {
		case <-interrupted:
			cancel()
		case <-ctx.Done():
		}
	}()
	r.thread.SetLocal("context", ctx)

	eof := false
	rl.SetPrompt(">>> ")
	readline := func() ([]byte, error) {
		line, err := rl.Readline()
		rl.SetPrompt("... ")
		if err != nil {
			if err == io.EOF {
				eof = true
			}
			return nil, err
		}
		return []byte(line + "\n"), nil
	}

	f, err := syntax.ParseCompoundStmt("<stdin>", readline)
	if err != nil {
		if eof {
			return io.EOF
		}
		printError(err)
		return nil
	}

	expr := soleExpr(f)
	if expr == nil {
		if err := starlark.ExecREPLChunk(f, r.thread, r.globals); err != nil {
			printError(err)
		}
		return nil
	}

	v, err := starlark.EvalExpr(r.thread, expr, r.globals)
	if err != nil {
		printError(err)
		return nil
	}
	tree, err := starlarktree.FromStarlark(starlarkconv.NewScope(r.opts...), v)
	if err != nil {
		r.log.Debug("value has no tree form", zap.String("type", v.Type()), zap.Error(err))
		fmt.Printf("%s  # %v\n", v, err)
		return nil
	}
	b, err := starlarktree.MarshalJSON(tree)
	if err != nil {
		printError(err)
		return nil
	}
	fmt.Println(string(b))
	return nil
}

func soleExpr(f *syntax.File) syntax.Expr {
	if len(f.Stmts) == 1 {
		if stmt, ok := f.Stmts[0].(*syntax.ExprStmt); ok {
			return stmt.X
		}
	}
	return nil
}

// printError prints err to stderr, with a backtrace if it is a Starlark
// evaluation error.
func printError(err error) {
	if evalErr, ok := err.(*starlark.EvalError); ok {
		fmt.Fprintln(os.Stderr, evalErr.Backtrace())
	} else {
		fmt.Fprintln(os.Stderr, err)
	}
}
