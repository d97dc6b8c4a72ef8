/*
 * TSBTAPE - Main process.
 *
 * Copyright 2025, Richard Cornwell
 *
 * Permission is hereby granted, free of charge, to any person obtaining a copy
 * of this software and associated documentation files (the "Software"), to deal
 * in the Software without restriction, including without limitation the rights
 * to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
 * copies of the Software, and to permit persons to whom the Software is
 * furnished to do so, subject to the following conditions:
 *
 * The above copyright notice and this permission notice shall be included in
 * all copies or substantial portions of the Software.
 *
 * THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
 * IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
 * FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
 * AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
 * LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
 * OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN THE
 * SOFTWARE.
 *
 */

package main

import (
	"fmt"
	"log/slog"
	"os"

	getopt "github.com/pborman/getopt/v2"

	"github.com/rcornwell/tsbtape/internal/basic"
	"github.com/rcornwell/tsbtape/internal/dispatch"
	"github.com/rcornwell/tsbtape/internal/simhtape"
	"github.com/rcornwell/tsbtape/internal/tsbconfig"
	"github.com/rcornwell/tsbtape/internal/tsblog"
)

var Logger *slog.Logger

func main() {
	optFile := getopt.StringLong("file", 'f', "", "Tape image in SIMH .tap format (required)")
	optRaw := getopt.BoolLong("raw", 'r', "Show raw tape block structure")
	optCatalog := getopt.BoolLong("catalog", 't', "Catalog the tape")
	optDump := getopt.BoolLong("dump", 'd', "Dump tokens of matched BASIC programs")
	optExtract := getopt.BoolLong("extract", 'x', "Extract files from tape")
	optToAccess := getopt.BoolLong("access", 'a', "Convert 2000F to Access, or force Access dialect")
	optTo2000F := getopt.BoolLong("2000f", 'c', "Convert Access to 2000F")
	optIgnore := getopt.BoolLong("ignore-errors", 'e', "Recover from conversion errors as REM")
	optStdout := getopt.BoolLong("stdout", 'O', "Extract to stdout instead of host files")
	optVerbose := getopt.CounterLong("verbose", 'v', "Verbose output (stackable)")
	optDebug := getopt.BoolLong("debug", 'D', "Debug output")
	optHelp := getopt.BoolLong("help", 'h', "Help")
	getopt.Parse()

	if *optHelp {
		getopt.Usage()
		os.Exit(0)
	}

	programLevel := new(slog.LevelVar)
	programLevel.Set(slog.LevelInfo)
	Logger = slog.New(tsblog.NewHandler(os.Stderr, &slog.HandlerOptions{Level: programLevel}, *optDebug))
	slog.SetDefault(Logger)

	if *optFile == "" {
		Logger.Error("-f must be specified")
		getopt.Usage()
		os.Exit(1)
	}

	op, err := selectOperation(*optRaw, *optCatalog, *optDump, *optExtract, *optToAccess, *optTo2000F)
	if err != nil {
		Logger.Error(err.Error())
		getopt.Usage()
		os.Exit(1)
	}

	cfg := tsbconfig.Context{
		Verbose:      *optVerbose,
		IgnoreErrors: *optIgnore,
		Debug:        *optDebug,
		Stdout:       *optStdout,
	}
	// -a is overloaded: alone it names the 2000F->Access conversion
	// operation, but alongside another operation flag it instead forces
	// the dialect, for reading a tape whose label is missing or lies.
	if *optToAccess && op != opConvertToAccess {
		cfg.Dialect = tsbconfig.DialectAccess
	}

	args := getopt.Args()

	in, err := os.Open(*optFile)
	if err != nil {
		Logger.Error(err.Error())
		os.Exit(1)
	}
	defer in.Close()
	tap := simhtape.NewReader(in)

	counter := tsblog.NewFileCounter(Logger, cfg.Verbose)

	var exitCode int
	switch op {
	case opRaw:
		exitCode, err = runUnary(args, "-r", func() (int, error) {
			return dispatch.Dump(tap, os.Stdout, cfg)
		})
	case opCatalog:
		exitCode, err = runUnary(args, "-t", func() (int, error) {
			return dispatch.Catalog(tap, os.Stdout, cfg)
		})
	case opDumpTokens:
		exitCode, err = runVariadic(args, "-d", func() (int, error) {
			return dispatch.DumpTokens(tap, args, cfg, counter, Logger, os.Stdout)
		})
	case opExtract:
		exitCode, err = runVariadic(args, "-x", func() (int, error) {
			return dispatch.Extract(tap, args, cfg, counter, Logger)
		})
	case opConvertToAccess, opConvertTo2000F:
		exitCode, err = runConvert(args, op, tap, cfg, counter)
	}

	if err != nil {
		Logger.Error(err.Error())
	}
	os.Exit(exitCode)
}

type operation int

const (
	opNone operation = iota
	opRaw
	opCatalog
	opDumpTokens
	opExtract
	opConvertToAccess
	opConvertTo2000F
)

// selectOperation picks the single requested operation, mirroring
// tsbtap.c's OP_R/OP_T/OP_X exclusivity check, extended with the dump,
// extract and convert operations this tool merges in. -a only counts as
// an operation (2000F->Access conversion) when no other operation flag
// is present; otherwise it is a dialect-forcing modifier, the overload
// spec.md §6 calls out.
func selectOperation(raw, catalog, dump, extract, toAccess, to2000F bool) (operation, error) {
	type candidate struct {
		set bool
		op  operation
	}
	candidates := []candidate{
		{raw, opRaw},
		{catalog, opCatalog},
		{dump, opDumpTokens},
		{extract, opExtract},
		{to2000F, opConvertTo2000F},
	}

	n := 0
	chosen := opNone
	for _, c := range candidates {
		if c.set {
			n++
			chosen = c.op
		}
	}
	if n > 1 {
		return opNone, fmt.Errorf("must specify exactly one of -r, -t, -d, -x, -c, -a")
	}
	if n == 1 {
		return chosen, nil
	}
	if toAccess {
		return opConvertToAccess, nil
	}
	return opNone, fmt.Errorf("must specify exactly one of -r, -t, -d, -x, -c, -a")
}

func runUnary(args []string, flag string, run func() (int, error)) (int, error) {
	if len(args) > 0 {
		return 1, fmt.Errorf("files not allowed with %s", flag)
	}
	return run()
}

func runVariadic(args []string, flag string, run func() (int, error)) (int, error) {
	if len(args) == 0 {
		return 1, fmt.Errorf("no files specified with %s", flag)
	}
	return run()
}

// runConvert opens the destination .tap path given as the sole
// remaining positional argument and drives the conversion.
func runConvert(args []string, op operation, tap *simhtape.Reader, cfg tsbconfig.Context, counter *tsblog.FileCounter) (int, error) {
	if len(args) != 1 {
		return 1, fmt.Errorf("conversion requires exactly one output .tap path")
	}
	out, err := os.Create(args[0])
	if err != nil {
		return 2, err
	}
	defer out.Close()
	otap := simhtape.NewWriter(out)

	dir := basic.DirectionFtoA
	if op == opConvertTo2000F {
		dir = basic.DirectionAtoF
	}
	return dispatch.Convert(tap, otap, dir, cfg, counter, Logger)
}
