/*
 * TSBTAPE - Operation dispatch: catalog, raw dump, extract, convert.
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

// Package dispatch drives the four tape operations (raw dump, catalog,
// extract, convert) over a decoded tape image, grounded on
// original_source/tsbtap.c's do_ropt/do_topt/do_xopt and convert.c's
// do_aopt/do_copt main loops: read blocks sequentially, recognize the
// TSB label to pin down the dialect, then treat every other data block
// as the head of a (directory entry, file body) tape file terminated by
// a tape mark.
package dispatch

import (
	"errors"
	"fmt"

	"github.com/rcornwell/tsbtape/internal/basic"
	"github.com/rcornwell/tsbtape/internal/simhtape"
	"github.com/rcornwell/tsbtape/internal/tsbconfig"
)

// dirHeader returns the per-block header width (0 or 2 bytes) a tape
// file's body carries for the given dialect, per spec.md §4.2.
func dirHeader(d tsbconfig.Dialect) int {
	if d == tsbconfig.Dialect2000F {
		return 2
	}
	return 0
}

// readAll drains fr to the next tape mark, returning every byte of the
// current tape file's body. Grounded on tsbprog.c's prog_init, which
// reads a program into memory without relying on the directory entry's
// length field: BASIC programs are self-delimiting on tape by the mark
// that follows them, not by a byte count.
func readAll(fr *simhtape.FileReader) ([]byte, error) {
	var buf []byte
	for {
		chunk, err := fr.GetBytes(512)
		buf = append(buf, chunk...)
		if errors.Is(err, simhtape.ErrShortRead) {
			return buf, nil
		}
		if err != nil {
			return buf, err
		}
	}
}

// frSource adapts a FileReader to the basic package's get-bytes closure
// convention (short reads signalled by a shorter-than-requested slice,
// not an error), capturing any genuine I/O failure seen along the way.
type frSource struct {
	fr  *simhtape.FileReader
	err error
}

func (s *frSource) get(n int) []byte {
	b, err := s.fr.GetBytes(n)
	if err != nil && !errors.Is(err, simhtape.ErrShortRead) {
		s.err = err
	}
	return b
}

// deviceName renders a packed device word as two letters and a number,
// e.g. "TB3".
func deviceName(dev uint16) string {
	return fmt.Sprintf("%c%c%d", 'A'+byte(dev>>10), 'A'+byte((dev>>5)&0x1f), dev&0x1f)
}

// symtabBase returns the additive symbol-table header size for a
// dialect (tsbconfig.SymtabOffsetAccess/SymtabOffset2000F).
func symtabBase(dialect tsbconfig.Dialect) int {
	if dialect == tsbconfig.DialectAccess {
		return tsbconfig.SymtabOffsetAccess
	}
	return tsbconfig.SymtabOffset2000F
}

// decompactProgram de-compacts a CSAVEd program's line numbers and
// symbol references back into an ordinary statement stream, then trims
// the buffer to the statement text, discarding the trailing symbol
// table. start is the program's load address in words (the directory
// entry's RecordOrAddr field); dialect selects the symbol-table header
// size to add to DetectSymtab's offset. This is an enrichment beyond
// the original tool, which refuses to handle CSAVEd programs at all —
// see DESIGN.md.
func decompactProgram(buf []byte, start int, dialect tsbconfig.Dialect) ([]byte, error) {
	symOff, err := basic.DetectSymtab(buf, len(buf), start)
	if err != nil {
		return nil, err
	}

	if symOff > len(buf) {
		symOff = len(buf)
	}

	p := basic.NewProgram(buf)
	if err := p.SetLogicalSize(symOff); err != nil {
		return nil, err
	}
	rel := basic.NewRelocator(start, symOff+symtabBase(dialect))
	if err := rel.Relocate(p); err != nil {
		return nil, err
	}
	return buf[:symOff], nil
}
