/*
 * TSBTAPE - Token decoder and pretty-printer.
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
	"fmt"
	"strings"

	"github.com/rcornwell/tsbtape/internal/tsbconfig"
)

// Decoder walks a relocated (if originally CSAVEd) Program and renders
// each statement as TSB source text, grounded on tsbprog.c's
// extract_program and its four print_* helpers.
type Decoder struct {
	Dialect tsbconfig.Dialect
}

// NewDecoder constructs a Decoder for the given dialect.
func NewDecoder(d tsbconfig.Dialect) *Decoder {
	return &Decoder{Dialect: d}
}

// DecodeProgram renders every statement in p, one line per statement, in
// line-number order. It stops and returns an error (but keeps whatever
// text was already decoded) on the first statement that is out of
// order, truncated, or otherwise malformed, matching extract_program's
// single-pass-then-stop behavior.
func (d *Decoder) DecodeProgram(p *Program) (string, error) {
	var out strings.Builder
	prevLine := 0
	for {
		stmt, err := NextStatement(p)
		if err == ErrEndOfProgram {
			break
		}
		if err != nil {
			return out.String(), err
		}
		if stmt.LineNo > 9999 || stmt.LineNo <= prevLine {
			return out.String(), fmt.Errorf("basic: lines out of order at %d", stmt.LineNo)
		}
		prevLine = stmt.LineNo

		fmt.Fprintf(&out, "%d ", stmt.LineNo)
		if err := d.decodeStatement(&out, stmt); err != nil {
			return out.String(), fmt.Errorf("basic: line %d: %w", stmt.LineNo, err)
		}
		out.WriteByte('\n')
	}
	return out.String(), nil
}

func (d *Decoder) decodeStatement(out *strings.Builder, stmt *Statement) error {
	statementNames := StatementNames(d.Dialect)
	operatorNames := OperatorNames(d.Dialect)
	names := &statementNames
	first := true
	var stmtOp int

	for {
		tbuf := stmt.GetBytes(2)
		if len(tbuf) != 2 {
			return nil
		}
		token := binary.BigEndian.Uint16(tbuf)
		op := int((token >> 9) & 0x3f)
		name := names[op]

		if name != "" {
			out.WriteByte(' ')
		}
		out.WriteString(name)

		if first {
			stmtOp = op
			switch op {
			case OpFiles:
				out.WriteByte(' ')
				fallthrough
			case OpRem:
				if token&0xff != 0 {
					out.WriteByte(byte(token & 0xff))
				}
				fallthrough
			case OpImage:
				writeRawTail(out, stmt)
				return nil
			}
		}

		if err := d.decodeOperand(out, token, stmtOp, stmt); err != nil {
			return err
		}

		first = false
		names = &operatorNames
	}
}

// writeRawTail copies the remainder of the statement body verbatim
// (REM/FILES/IMAGE payloads are raw bytes, not tokens), dropping a
// single trailing NUL pad byte if present.
func writeRawTail(out *strings.Builder, stmt *Statement) {
	tail := stmt.GetBytes(stmt.Remaining())
	if len(tail) > 0 && tail[len(tail)-1] == 0 {
		tail = tail[:len(tail)-1]
	}
	out.Write(tail)
}

func (d *Decoder) decodeOperand(out *strings.Builder, token uint16, stmtOp int, stmt *Statement) error {
	op := int((token >> 9) & 0x3f)

	switch {
	case token&0x8000 != 0:
		typ := token & 0xf
		switch typ {
		case 0:
			fbuf := stmt.GetBytes(4)
			if len(fbuf) != 4 {
				return fmt.Errorf("number extends past end of statement")
			}
			out.WriteByte(' ')
			out.WriteString(FormatNumber(DecodeFloat(fbuf)))
		case 3:
			out.WriteByte(' ')
			return d.printIntOperand(out, token, stmtOp, stmt)
		default:
			out.WriteByte(' ')
			if typ == 017 && d.Dialect != tsbconfig.DialectAccess {
				// 2000F numbers ZER..TRN 024-030; the shared table holds them 7 slots on.
				if n := (token >> 4) & 0x1f; n >= 024 && n <= 030 {
					token += 7 << 4
				}
			}
			s, err := printOtherOperand(token)
			if err != nil {
				return err
			}
			out.WriteString(s)
		}

	case op == 1:
		out.WriteByte(' ')
		return d.printStrOperand(out, token, stmt)

	default:
		out.WriteByte(' ')
		out.WriteString(printVarOperand(token))
	}
	return nil
}

// printIntOperand renders a line-number / DIM-bound operand. Because
// CSAVE relocation (if any) already ran over the buffer before decode,
// the value read here is always the final line number or dimension
// bound, never a pre-relocation address.
func (d *Decoder) printIntOperand(out *strings.Builder, token uint16, stmtOp int, stmt *Statement) error {
	buf := stmt.GetBytes(2)
	if len(buf) != 2 {
		return fmt.Errorf("value extends past end of statement")
	}
	val := binary.BigEndian.Uint16(buf)
	fmt.Fprintf(out, "%d", val)

	isDim := stmtOp == OpCom || stmtOp == OpDim
	if isDim || int((token>>9)&0x3f) == OpUsing {
		return nil
	}
	for {
		buf := stmt.GetBytes(2)
		if len(buf) != 2 {
			return nil
		}
		val = binary.BigEndian.Uint16(buf)
		fmt.Fprintf(out, ",%d", val)
	}
}

// printVarOperand renders a kind=0 variable-reference token.
func printVarOperand(token uint16) string {
	name := (token >> 4) & 0x1f
	typ := token & 0xf

	if name > 032 { // string variable with a trailing digit 0 or 1
		return fmt.Sprintf("%c%d$", 'A'+byte((token-0xb0)&0x1f), boolToInt(name > 034))
	}

	switch typ {
	case 0: // string variable
		if name == 0 {
			return ""
		}
		return fmt.Sprintf("%c$", '@'+byte(name))
	case 1, 2, 3, 4: // array, or simple variable with no digit
		return fmt.Sprintf("%c", '@'+byte(name))
	case 017: // user-defined function
		return fmt.Sprintf("FN%c", '@'+byte(name))
	default: // simple variable with digit 0-9
		return fmt.Sprintf("%c%d", '@'+byte(name), typ-5)
	}
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

// printOtherOperand renders a kind=1 function/parameter operand.
func printOtherOperand(token uint16) (string, error) {
	name := (token >> 4) & 0x1f
	typ := token & 0xf

	switch typ {
	case 0, 3:
		return "", fmt.Errorf("internal error: unexpected operand type")
	case 1, 2:
		return "", fmt.Errorf("unknown operand type")
	case 4: // formal parameter, no digit
		return fmt.Sprintf("%c", '@'+byte(name)), nil
	case 017: // built-in function
		fname, dollar := builtinFunctionName(int(name))
		if dollar {
			fname += "$"
		}
		return fname, nil
	default: // formal parameter with digit 0-9
		return fmt.Sprintf("%c%d", '@'+byte(name), typ-5), nil
	}
}

// printStrOperand renders a string literal, with dialect-specific
// escaping of non-printable bytes.
func (d *Decoder) printStrOperand(out *strings.Builder, token uint16, stmt *Statement) error {
	length := int(token & 0xff)
	if length == 0 {
		out.WriteString(`""`)
		return nil
	}
	nread := (length + 1) &^ 1
	buf := stmt.GetBytes(nread)
	if len(buf) != nread {
		return fmt.Errorf("string extends past end of statement")
	}
	buf = buf[:length]

	if d.Dialect == tsbconfig.DialectAccess {
		inQuote := false
		for _, c := range buf {
			if c >= 32 && c < 127 && c != '"' {
				if !inQuote {
					out.WriteByte('"')
				}
				inQuote = true
				out.WriteByte(c)
			} else {
				if inQuote {
					out.WriteByte('"')
				}
				inQuote = false
				fmt.Fprintf(out, "'%d", c)
			}
		}
		if inQuote {
			out.WriteByte('"')
		}
		return nil
	}

	out.WriteByte('"')
	for _, c := range buf {
		switch c {
		case '\n':
			c = '\016'
		case '\r':
			c = '\017'
		case '\016':
			c = '\n'
		case '\017':
			c = '\r'
		}
		out.WriteByte(c)
	}
	out.WriteByte('"')
	return nil
}
