/*
 * TSBTAPE - Dialect transducer tests.
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
	"strings"
	"testing"

	"github.com/rcornwell/tsbtape/internal/tsbconfig"
)

// buildLenOfStringVar assembles "LET" followed by a LEN(A$) formula:
// LEN-function, "(", A$ variable, ")".
func buildLenOfStringVar(lineNo int) []byte {
	var body []byte
	body = append(body, tok(38<<9)...)             // LET
	body = append(body, tok(0x8000|015<<4|017)...) // LEN function
	body = append(body, tok(013<<9)...)            // (
	body = append(body, tok(1<<4|0)...)            // A$ (name=1, type=0)
	body = append(body, tok(010<<9)...)            // )
	return buildStatement(lineNo, body)
}

func TestConvertFtoAInsertsEndOfFormulaAfterLenOfStringVar(t *testing.T) {
	p := NewProgram(buildLenOfStringVar(10))
	stmt, err := NextStatement(p)
	if err != nil {
		t.Fatalf("NextStatement: %v", err)
	}
	tr := NewTransducer(DirectionFtoA, false)
	body, err := tr.convertFtoA(stmt)
	if err != nil {
		t.Fatalf("convertFtoA: %v", err)
	}
	// LET(2) + LEN(2) + ((2) + A$(2) + synthetic end-of-formula(2) + )(2) = 12 bytes
	if len(body) != 12 {
		t.Fatalf("body len = %d, want 12: % x", len(body), body)
	}
	if body[8] != 0 || body[9] != 0 {
		t.Fatalf("missing synthetic end-of-formula marker: % x", body)
	}
}

func TestConvertFtoAShiftsMatrixFunctions(t *testing.T) {
	// ZER function, name=024 octal pre-shift.
	body := append(tok(38<<9), tok(0x8000|024<<4|017)...)
	p := NewProgram(buildStatement(10, body))
	stmt, _ := NextStatement(p)

	tr := NewTransducer(DirectionFtoA, false)
	out, err := tr.convertFtoA(stmt)
	if err != nil {
		t.Fatalf("convertFtoA: %v", err)
	}
	gotName := (uint16(out[2])<<8 | uint16(out[3])) >> 4 & 0x1f
	if gotName != 024+7 {
		t.Fatalf("shifted name = %#o, want %#o", gotName, 024+7)
	}
}

func TestConvertAtoFShiftsMatrixFunctionsBack(t *testing.T) {
	body := append(tok(38<<9), tok(0x8000|(024+7)<<4|017)...)
	p := NewProgram(buildStatement(10, body))
	stmt, _ := NextStatement(p)

	tr := NewTransducer(DirectionAtoF, false)
	out, reason, err := tr.convertAtoF(stmt)
	if err != nil {
		t.Fatalf("convertAtoF: %v", err)
	}
	if reason != 0 {
		t.Fatalf("unexpected reason %q", reason)
	}
	gotName := (uint16(out[2])<<8 | uint16(out[3])) >> 4 & 0x1f
	if gotName != 024 {
		t.Fatalf("unshifted name = %#o, want %#o", gotName, 024)
	}
}

func TestConvertAtoFUnsupportedStatement(t *testing.T) {
	// SYSTEM (Access-only, index 26) as the leading statement token.
	body := tok(26 << 9)
	p := NewProgram(buildStatement(10, body))
	stmt, _ := NextStatement(p)

	tr := NewTransducer(DirectionAtoF, false)
	_, reason, err := tr.convertAtoF(stmt)
	if err != nil {
		t.Fatalf("convertAtoF: %v", err)
	}
	if reason != 's' {
		t.Fatalf("reason = %q, want 's'", reason)
	}
}

func TestConvertStatementFailsHardWithoutIgnoreErrors(t *testing.T) {
	body := tok(26 << 9)
	p := NewProgram(buildStatement(10, body))

	tr := NewTransducer(DirectionAtoF, false)
	if _, err := tr.ConvertStatement(p); err != ErrUnsupportedConstruct {
		t.Fatalf("ConvertStatement error = %v, want ErrUnsupportedConstruct", err)
	}
}

func TestConvertStatementFallsBackToRemWithIgnoreErrors(t *testing.T) {
	body := tok(26 << 9)
	p := NewProgram(buildStatement(10, body))

	tr := NewTransducer(DirectionAtoF, true)
	out, err := tr.ConvertStatement(p)
	if err != nil {
		t.Fatalf("ConvertStatement: %v", err)
	}

	d := NewDecoder(tsbconfig.DialectAccess)
	text, err := d.DecodeProgram(NewProgram(out))
	if err != nil {
		t.Fatalf("DecodeProgram on rewritten buffer: %v", err)
	}
	if !strings.HasPrefix(text, "10 ") {
		t.Fatalf("rendered output = %q, want line 10", text)
	}
	if !strings.Contains(text, "REM!s") {
		t.Fatalf("rendered output = %q, want REM with reason marker !s", text)
	}
	if !strings.Contains(text, "SYSTEM") {
		t.Fatalf("rendered output = %q, want original SYSTEM text preserved", text)
	}
}

func TestConvertStatementEndOfProgram(t *testing.T) {
	p := NewProgram(nil)
	tr := NewTransducer(DirectionFtoA, false)
	if _, err := tr.ConvertStatement(p); err != ErrEndOfProgram {
		t.Fatalf("ConvertStatement error = %v, want ErrEndOfProgram", err)
	}
}
