/*
 * TSBTAPE - 2000F/Access dialect transducer.
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
	"fmt"
	"strings"

	"github.com/rcornwell/tsbtape/internal/tsbconfig"
)

// Direction selects which way a Transducer re-encodes a program's tokens.
type Direction int

const (
	DirectionFtoA Direction = iota // 2000F program onto an Access tape
	DirectionAtoF                  // Access program onto a 2000F tape
)

// ErrUnsupportedConstruct is returned (when IgnoreErrors is false) for a
// statement the target dialect cannot express.
var ErrUnsupportedConstruct = errors.New("basic: unsupported construct")

// ErrStatementTooLong is returned (when IgnoreErrors is false) for a
// statement whose re-encoding exceeds the target dialect's per-statement
// byte limit.
var ErrStatementTooLong = errors.New("basic: statement too long")

// Transducer re-encodes one dialect's tokenized statements into the
// other's, grounded on original_source/convert.c's convert_prog_ftoa and
// convert_prog_atof.
type Transducer struct {
	Direction    Direction
	IgnoreErrors bool
}

// NewTransducer builds a Transducer for the given direction.
func NewTransducer(dir Direction, ignoreErrors bool) *Transducer {
	return &Transducer{Direction: dir, IgnoreErrors: ignoreErrors}
}

func (t *Transducer) limit() int {
	if t.Direction == DirectionFtoA {
		return tsbconfig.StmtLenAccess
	}
	return tsbconfig.StmtLen2000F
}

func (t *Transducer) sourceDialect() tsbconfig.Dialect {
	if t.Direction == DirectionFtoA {
		return tsbconfig.Dialect2000F
	}
	return tsbconfig.DialectAccess
}

// ConvertStatement re-encodes the next statement from p, returning the
// complete replacement statement (4-byte line/length header plus body).
// It returns ErrEndOfProgram once p's logical text is exhausted.
//
// When the re-encoded statement overflows the target dialect's length
// limit, or (Access-to-2000F only) uses a construct the target dialect
// cannot express, and IgnoreErrors is set, the statement is replaced with
// a REM carrying a one-byte reason code followed by the original
// statement re-printed in its source dialect's syntax. With IgnoreErrors
// unset this is a fatal error for the file.
func (t *Transducer) ConvertStatement(p *Program) ([]byte, error) {
	mark := p.Mark()
	stmt, err := NextStatement(p)
	if err != nil {
		return nil, err
	}
	lineNo := stmt.LineNo

	var body []byte
	var reason byte
	if t.Direction == DirectionFtoA {
		body, err = t.convertFtoA(stmt)
	} else {
		body, reason, err = t.convertAtoF(stmt)
	}
	if err != nil {
		return nil, err
	}

	if reason == 0 && len(body) > t.limit() {
		reason = t.overflowReason()
	}

	if reason != 0 {
		if !t.IgnoreErrors {
			if reason == t.overflowReason() {
				return nil, ErrStatementTooLong
			}
			return nil, ErrUnsupportedConstruct
		}
		p.Reset(mark)
		stmt2, err := NextStatement(p)
		if err != nil {
			return nil, err
		}
		body, err = t.renderAsRem(stmt2, reason)
		if err != nil {
			return nil, err
		}
	}

	if len(body)%2 != 0 {
		body = append(body, 0)
	}

	out := make([]byte, 4+len(body))
	binary.BigEndian.PutUint16(out[0:2], uint16(lineNo))
	binary.BigEndian.PutUint16(out[2:4], uint16(len(body)/2+2))
	copy(out[4:], body)
	return out, nil
}

// overflowReason is the reason byte used when a statement's re-encoding
// simply runs too long, matching convert_prog_ftoa's literal 'T' and
// convert_prog_atof's lowercase 't'.
func (t *Transducer) overflowReason() byte {
	if t.Direction == DirectionFtoA {
		return 'T'
	}
	return 't'
}

// renderAsRem takes stmt (already rewound to its start-of-statement mark
// and re-walked by the caller) and emits a REM statement body whose raw tail is
// "!<reason><source text>", grounded on convert.c's REM-fallback block
// (sink_putc('!')/sink_putc(reason) then print_stmt). The leading token
// is an ordinary REM token (op code plus the '!' flag byte decodeStatement
// already knows how to print), so the result decodes exactly like any
// other REM statement.
func (t *Transducer) renderAsRem(stmt *Statement, reason byte) ([]byte, error) {
	var text strings.Builder
	d := NewDecoder(t.sourceDialect())
	if err := d.decodeStatement(&text, stmt); err != nil {
		return nil, fmt.Errorf("basic: rendering fallback REM: %w", err)
	}

	body := make([]byte, 2)
	binary.BigEndian.PutUint16(body, uint16(OpRem)<<9|uint16('!'))
	body = append(body, reason)
	body = append(body, text.String()...)
	return body, nil
}

// convertFtoA re-encodes one 2000F-tokenized statement's body into Access
// token form, grounded on convert.c's convert_prog_ftoa inner loop.
// REM/FILES/IMAGE bodies and numeric/string literal payloads pass through
// unchanged; the Access-only matrix functions ZER/CON/IDN/INV/TRN are
// shifted into their Access function-table slots, and a synthetic
// end-of-formula marker is inserted just before a LEN(v$) call's closing paren,
// since 2000F has no such marker but Access requires one.
func (t *Transducer) convertFtoA(stmt *Statement) ([]byte, error) {
	var buf []byte
	stmtOp := -1
	lenState := 0

	for {
		raw := stmt.GetBytes(2)
		if len(raw) != 2 {
			return buf, nil
		}
		tb := [2]byte{raw[0], raw[1]}
		token := binary.BigEndian.Uint16(tb[:])
		op := int((token >> 9) & 0x3f)
		name := int((token >> 4) & 0x1f)
		typ := int(token & 0xf)

		if stmtOp < 0 {
			stmtOp = op
			switch op {
			case OpImage, OpRem, OpFiles:
				buf = append(buf, tb[:]...)
				for {
					chunk := stmt.GetBytes(256)
					if len(chunk) == 0 {
						break
					}
					buf = append(buf, chunk...)
				}
				continue
			}
		} else {
			switch op {
			case 010: // )
				if lenState == 3 {
					buf = append(buf, 0, 0)
					lenState = 0
				}
			case 013: // (
				if lenState == 1 {
					lenState = 2
				}
			}
		}

		if token&0x8000 != 0 && typ == 017 {
			switch name {
			case 015: // LEN
				lenState = 1
			case 024, 025, 026, 027, 030: // ZER CON IDN INV TRN
				name += 7
				tb[0] &^= 1
				tb[0] |= byte((name >> 4) & 1)
				tb[1] &^= 0xf << 4
				tb[1] |= byte(name << 4)
				token = binary.BigEndian.Uint16(tb[:])
			}
		}

		buf = append(buf, tb[:]...)

		switch {
		case token&0x8000 != 0 && typ == 0:
			fbuf := stmt.GetBytes(4)
			if len(fbuf) != 4 {
				return nil, fmt.Errorf("basic: number extends past end of statement")
			}
			buf = append(buf, fbuf...)

		case token&0x8000 != 0 && typ == 3:
			v := stmt.GetBytes(2)
			if len(v) != 2 {
				return nil, fmt.Errorf("basic: value extends past end of statement")
			}
			buf = append(buf, v...)
			if stmtOp == OpCom || stmtOp == OpDim || op == OpUsing {
				continue
			}
			for {
				v := stmt.GetBytes(2)
				if len(v) != 2 {
					break
				}
				buf = append(buf, v...)
			}

		case token&0x8000 == 0 && op == 1: // string constant
			length := (int(token&0xff) + 1) &^ 1
			data := stmt.GetBytes(length)
			if len(data) != length {
				return nil, fmt.Errorf("basic: string extends past end of statement")
			}
			for _, c := range data {
				switch c {
				case '\016':
					c = '\n'
				case '\017':
					c = '\r'
				}
				buf = append(buf, c)
			}

		case token&0x8000 == 0 && typ == 0: // null or string variable
			if name != 0 && lenState == 2 {
				lenState = 3
			}
		}
	}
}

// convertAtoF re-encodes one Access-tokenized statement's body into
// 2000F token form, grounded on convert.c's convert_prog_atof inner loop.
// It returns a non-zero reason byte (never an error) for any construct
// 2000F cannot express, leaving the caller to decide between a hard
// failure and a REM fallback.
func (t *Transducer) convertAtoF(stmt *Statement) ([]byte, byte, error) {
	var buf []byte
	stmtOp := -1
	dimState := 0
	lenState := 0
	prtState := 0

	for {
		raw := stmt.GetBytes(2)
		if len(raw) != 2 {
			return buf, 0, nil
		}
		tb := [2]byte{raw[0], raw[1]}
		token := binary.BigEndian.Uint16(tb[:])
		op := int((token >> 9) & 0x3f)
		name := int((token >> 4) & 0x1f)
		typ := int(token & 0xf)

		if stmtOp < 0 {
			stmtOp = op
			switch op {
			case OpImage, OpRem, OpFiles:
				buf = append(buf, tb[:]...)
				for {
					chunk := stmt.GetBytes(256)
					if len(chunk) == 0 {
						break
					}
					buf = append(buf, chunk...)
				}
				continue
			case OpCom, OpDim:
				dimState = 1
			case 042: // ASSIGN, supported as-is
			case 065: // PRINT
				prtState = 1
			default:
				if op <= 044 {
					return nil, 's', nil
				}
			}
		} else {
			switch op {
			case 0: // end of formula, synthesized by the forward direction
				if lenState == 3 {
					lenState = 0
					continue
				}
				fallthrough
			case 1: // "
				if lenState == 2 {
					return nil, 'i', nil
				}
			case 4: // #(file)
				if prtState == 1 {
					prtState = 2
				}
			case 011: // ]
				if dimState > 0 {
					dimState = 1
				}
			case 012: // [
				if dimState == 2 {
					dimState = 3
				}
			case 013: // (
				if lenState == 1 {
					lenState = 2
				}
			case 042: // ** -> ^
				op = 024
				tb[0] &^= 0x3f << 1
				tb[0] |= byte(op << 1)
				token = binary.BigEndian.Uint16(tb[:])
			case 043: // USING
				if prtState == 2 {
					return nil, 'u', nil
				}
			case 044, 045, 046, 047: // RR WR NR ERROR
				return nil, 'o', nil
			}
		}

		if token&0x8000 == 0 {
			if op == 1 { // string constant
				if token&0xff > tsbconfig.StringMax2000F {
					return nil, 'l', nil
				}
			} else if typ == 0 { // null or string variable
				if name > 032 {
					return nil, 'v', nil
				}
				if name != 0 {
					if lenState == 2 {
						lenState = 3
					}
					if dimState == 1 {
						dimState = 2
					}
				}
			}
		} else if typ == 017 {
			switch name {
			case 015: // LEN
				lenState = 1
			case 0, 023, 024, 025, 026, 027, 030, 031, 032:
				return nil, 'f', nil
			case 033, 034, 035, 036, 037: // ZER CON IDN INV TRN
				name -= 7
				tb[0] &^= 1
				tb[0] |= byte((name >> 4) & 1)
				tb[1] &^= 0xf << 4
				tb[1] |= byte(name << 4)
				token = binary.BigEndian.Uint16(tb[:])
			}
		}

		buf = append(buf, tb[:]...)

		switch {
		case token&0x8000 != 0 && typ == 0:
			fbuf := stmt.GetBytes(4)
			if len(fbuf) != 4 {
				return nil, 0, fmt.Errorf("basic: number extends past end of statement")
			}
			buf = append(buf, fbuf...)

		case token&0x8000 != 0 && typ == 3:
			v := stmt.GetBytes(2)
			if len(v) != 2 {
				return nil, 0, fmt.Errorf("basic: value extends past end of statement")
			}
			buf = append(buf, v...)
			if op == OpUsing {
				continue
			}
			if dimState != 0 {
				if dimState == 3 && binary.BigEndian.Uint16(v) > tsbconfig.StringMax2000F {
					return nil, 'd', nil
				}
				continue
			}
			for {
				v := stmt.GetBytes(2)
				if len(v) != 2 {
					break
				}
				buf = append(buf, v...)
			}

		case token&0x8000 == 0 && op == 1: // string constant
			length := (int(token&0xff) + 1) &^ 1
			data := stmt.GetBytes(length)
			if len(data) != length {
				return nil, 0, fmt.Errorf("basic: string extends past end of statement")
			}
			for _, c := range data {
				switch c {
				case '\n':
					c = '\016'
				case '\r':
					c = '\017'
				}
				buf = append(buf, c)
			}
		}
	}
}
