/*
 * TSBTAPE - Statement walker.
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

package basic

import (
	"encoding/binary"
	"errors"
)

// ErrTruncatedStatement is returned when a statement's header is cut
// short or claims more 16-bit words than remain in the program buffer.
var ErrTruncatedStatement = errors.New("basic: truncated statement")

// ErrEndOfProgram is returned by NextStatement once the program's
// logical text has been fully consumed.
var ErrEndOfProgram = errors.New("basic: end of program")

// Statement is one walked BASIC line: its line number and the
// sub-cursor over its 2*wordCount-4 body bytes, grounded on
// tsbprog.c's stmt_ctx_t.
type Statement struct {
	LineNo int
	prog   *Program
	left   int // bytes remaining in this statement's body
}

// NextStatement reads the 4-byte line_no/word_count header and returns
// a Statement bounded to the following 2*wordCount-4 bytes. It returns
// ErrEndOfProgram when the program buffer is exhausted, or
// ErrTruncatedStatement when fewer than 4 header bytes remain or the
// header claims more bytes than remain.
func NextStatement(p *Program) (*Statement, error) {
	hdr := p.GetNext(4)
	if len(hdr) == 0 {
		return nil, ErrEndOfProgram
	}
	if len(hdr) < 4 {
		return nil, ErrTruncatedStatement
	}
	lineNo := int(binary.BigEndian.Uint16(hdr[0:2]))
	wordCount := int(binary.BigEndian.Uint16(hdr[2:4]))
	left := 2*wordCount - 4
	if left < 0 || left > p.RemainingLogical() {
		return nil, ErrTruncatedStatement
	}
	return &Statement{LineNo: lineNo, prog: p, left: left}, nil
}

// GetBytes reads up to n bytes (n must be even) from the statement
// body, never crossing into the next statement. It returns fewer than
// n bytes at the statement boundary.
func (s *Statement) GetBytes(n int) []byte {
	if n > s.left {
		n = s.left
	}
	if n <= 0 {
		return nil
	}
	b := s.prog.GetNext(n)
	s.left -= len(b)
	return b
}

// Remaining reports how many body bytes are left unread.
func (s *Statement) Remaining() int { return s.left }

// Skip discards any unread bytes remaining in the statement body,
// positioning the program cursor at the start of the next statement.
func (s *Statement) Skip() {
	for s.left > 0 {
		if len(s.GetBytes(s.left)) == 0 {
			break
		}
	}
}
