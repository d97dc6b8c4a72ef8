/*
 * TSBTAPE - Raw block dump (-r).
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

package dispatch

import (
	"fmt"
	"io"

	"github.com/rcornwell/tsbtape/internal/hexdump"
	"github.com/rcornwell/tsbtape/internal/simhtape"
	"github.com/rcornwell/tsbtape/internal/tsbconfig"
)

// Dump implements the -r operation: a raw hex/ASCII dump of every block
// on the tape, truncated per verbosity level, grounded on tsbtap.c's
// do_ropt.
func Dump(tap *simhtape.Reader, out io.Writer, cfg tsbconfig.Context) (int, error) {
	blockNum := 0

	for {
		block, kind, err := tap.ReadBlock()
		if err != nil {
			return 2, err
		}
		switch kind {
		case simhtape.KindEOM:
			return 0, nil
		case simhtape.KindMark:
			fmt.Fprintln(out, "  --mark--")
			continue
		}

		lim := rawDumpLimit(cfg.Verbose, len(block))
		fmt.Fprintf(out, "block %d, length %d\n", blockNum, len(block))
		fmt.Fprint(out, hexdump.FormatBlock(block[:lim]))
		blockNum++
	}
}

// rawDumpLimit returns how many leading bytes of a block to print at the
// given verbosity, per tsbtap.c's do_ropt: 32 bytes at verbose 0, 128 at
// verbose 1, the full block at verbose 2 and above.
func rawDumpLimit(verbose, blockLen int) int {
	lim := 32
	switch {
	case verbose >= 2:
		lim = blockLen
	case verbose == 1:
		lim = 128
	}
	if lim > blockLen {
		lim = blockLen
	}
	return lim
}
