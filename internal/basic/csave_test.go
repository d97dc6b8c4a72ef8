/*
 * TSBTAPE - CSAVE relocation tests.
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

import "testing"

func TestRelocateGotoDestination(t *testing.T) {
	stmt1Body := append(tok(42<<9), tok(0x8003)...) // GOTO, int-operand marker
	stmt1Body = append(stmt1Body, tok(5)...)        // raw dest word address = 5
	buf := append(buildStatement(10, stmt1Body), buildStatement(20, nil)...)

	p := NewProgram(buf)
	r := NewRelocator(0, 0)
	if err := r.Relocate(p); err != nil {
		t.Fatalf("Relocate: %v", err)
	}

	got, err := p.GetAt(8, 2)
	if err != nil {
		t.Fatalf("GetAt: %v", err)
	}
	if got[0] != 0 || got[1] != 20 {
		t.Fatalf("relocated dest = %v, want line number 20", got)
	}
}

func TestRelocateIsIdempotent(t *testing.T) {
	stmt1Body := append(tok(42<<9), tok(0x8003)...)
	stmt1Body = append(stmt1Body, tok(5)...)
	buf := append(buildStatement(10, stmt1Body), buildStatement(20, nil)...)

	p := NewProgram(buf)
	r := NewRelocator(0, 0)
	if err := r.Relocate(p); err != nil {
		t.Fatalf("first Relocate: %v", err)
	}
	before, _ := p.GetAt(8, 2)
	if err := r.Relocate(p); err != nil {
		t.Fatalf("second Relocate: %v", err)
	}
	after, _ := p.GetAt(8, 2)
	if string(before) != string(after) {
		t.Fatalf("second Relocate mutated buffer: before=%v after=%v", before, after)
	}
}

func TestRelocateCorruptedDestination(t *testing.T) {
	stmt1Body := append(tok(42<<9), tok(0x8003)...)
	stmt1Body = append(stmt1Body, tok(9999)...) // address far out of range
	buf := buildStatement(10, stmt1Body)

	p := NewProgram(buf)
	r := NewRelocator(0, 0)
	if err := r.Relocate(p); err != ErrCorruptedDestination {
		t.Fatalf("Relocate error = %v, want ErrCorruptedDestination", err)
	}
}

func TestRelocateSkipsDimBounds(t *testing.T) {
	// DIM A(10): dim marker value is a bound, not an address; must survive untouched.
	stmt1Body := append(tok(uint16(OpDim)<<9), tok(0x8003)...)
	stmt1Body = append(stmt1Body, tok(10)...)
	buf := buildStatement(10, stmt1Body)

	p := NewProgram(buf)
	r := NewRelocator(0, 0)
	if err := r.Relocate(p); err != nil {
		t.Fatalf("Relocate: %v", err)
	}
	got, _ := p.GetAt(8, 2)
	if got[1] != 10 {
		t.Fatalf("DIM bound mutated: got %v, want untouched 10", got)
	}
}

func TestDetectSymtab(t *testing.T) {
	buf := make([]byte, 20)
	// symtab pointer word at offset len-12 = 8, pointing to word address
	// start+4, i.e. byte offset 8 within the buffer.
	buf[8], buf[9] = 0, 14 // start(10) + 4
	off, err := DetectSymtab(buf, 20, 10)
	if err != nil {
		t.Fatalf("DetectSymtab: %v", err)
	}
	if off != 8 {
		t.Fatalf("DetectSymtab offset = %d, want 8", off)
	}
}
