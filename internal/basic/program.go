/*
 * TSBTAPE - Tokenized BASIC program buffer.
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

// Package basic decodes and re-encodes HP Time-Shared BASIC tokenized
// program text: the program buffer (this file), the statement walker,
// the token decoder/pretty-printer, CSAVE relocation, HP floating point,
// dialect tables, record-data extraction and the 2000F/Access dialect
// transducer.
package basic

import "fmt"

// Program is the in-memory copy of a tokenized BASIC program's bytes,
// read once off tape. It exposes a sequential cursor for statement
// walking plus random access for CSAVE symbol-table and line-number
// dereferencing, grounded on tsbprog.c's prog_ctx_t.
type Program struct {
	buf       []byte
	pos       int // sequential read position
	logical   int // program text length, excluding any CSAVE symbol table
	nread     int // total bytes actually present (program + symtab)
	relocated bool
}

// NewProgram wraps buf as a Program. The logical size defaults to the
// full buffer; call SetLogicalSize once the directory entry's length is
// known.
func NewProgram(buf []byte) *Program {
	return &Program{buf: buf, logical: len(buf), nread: len(buf)}
}

// Len returns the total number of bytes read from tape, including any
// trailing CSAVE symbol table.
func (p *Program) Len() int { return p.nread }

// SetLogicalSize restricts sequential reads (GetNext, RemainingLogical)
// to the first n bytes, used to exclude a CSAVE symbol table from
// statement walking. n must be positive and no larger than the buffer.
func (p *Program) SetLogicalSize(n int) error {
	if n <= 0 || n > p.nread {
		return fmt.Errorf("basic: invalid logical size %d (have %d bytes)", n, p.nread)
	}
	p.logical = n
	return nil
}

// LogicalSize returns the current logical size (program text only).
func (p *Program) LogicalSize() int { return p.logical }

// RemainingLogical returns the number of bytes left before the
// sequential cursor reaches the logical size.
func (p *Program) RemainingLogical() int {
	return p.logical - p.pos
}

// GetNext reads up to n bytes sequentially, advancing the cursor. It
// never reads past the logical size and returns fewer than n bytes (or
// nil) at end of program text, mirroring prog_getbytes's short reads.
func (p *Program) GetNext(n int) []byte {
	left := p.RemainingLogical()
	if n > left {
		n = left
	}
	if n <= 0 {
		return nil
	}
	b := p.buf[p.pos : p.pos+n]
	p.pos += n
	return b
}

// GetAt reads up to n bytes at an absolute byte offset, without
// disturbing the sequential cursor. Offsets may reach into the CSAVE
// symbol table beyond the logical size, mirroring prog_getbytesat.
func (p *Program) GetAt(off, n int) ([]byte, error) {
	if off < 0 || off > p.nread {
		return nil, fmt.Errorf("basic: offset %d out of range (have %d bytes)", off, p.nread)
	}
	left := p.nread - off
	if n > left {
		n = left
	}
	if n <= 0 {
		return nil, nil
	}
	return p.buf[off : off+n], nil
}

// PutAt overwrites n bytes at an absolute offset, used by CSAVE
// relocation to rewrite destination addresses in place.
func (p *Program) PutAt(off int, data []byte) error {
	if off < 0 || off+len(data) > p.nread {
		return fmt.Errorf("basic: write at %d,%d out of range (have %d bytes)", off, len(data), p.nread)
	}
	copy(p.buf[off:off+len(data)], data)
	return nil
}

// Mark is a saved cursor position for rollback-and-replay (the dialect
// transducer rewinds to the start of a statement it cannot translate
// and re-emits it as a REM).
type Mark struct {
	pos int
}

// Mark captures the current sequential cursor.
func (p *Program) Mark() Mark { return Mark{pos: p.pos} }

// Reset restores the sequential cursor to a previously captured Mark.
func (p *Program) Reset(m Mark) { p.pos = m.pos }

// Cursor returns the current sequential read offset, in bytes from the
// start of the program buffer.
func (p *Program) Cursor() int { return p.pos }
