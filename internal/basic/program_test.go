/*
 * TSBTAPE - Program buffer tests.
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

func TestProgramGetNextRespectsLogicalSize(t *testing.T) {
	p := NewProgram([]byte("0123456789"))
	if err := p.SetLogicalSize(6); err != nil {
		t.Fatalf("SetLogicalSize: %v", err)
	}
	if got := string(p.GetNext(4)); got != "0123" {
		t.Fatalf("GetNext(4) = %q", got)
	}
	if got := string(p.GetNext(10)); got != "45" {
		t.Fatalf("GetNext(10) at tail = %q, want \"45\"", got)
	}
	if p.RemainingLogical() != 0 {
		t.Fatalf("RemainingLogical() = %d, want 0", p.RemainingLogical())
	}
	if got := p.GetNext(1); got != nil {
		t.Fatalf("GetNext past logical size = %v, want nil", got)
	}
}

func TestProgramGetAtReachesPastLogicalSize(t *testing.T) {
	p := NewProgram([]byte("0123456789"))
	_ = p.SetLogicalSize(4)
	got, err := p.GetAt(6, 4)
	if err != nil {
		t.Fatalf("GetAt: %v", err)
	}
	if string(got) != "6789" {
		t.Fatalf("GetAt(6,4) = %q, want 6789", got)
	}
}

func TestProgramGetAtOutOfRange(t *testing.T) {
	p := NewProgram([]byte("0123"))
	if _, err := p.GetAt(-1, 1); err == nil {
		t.Fatal("expected error for negative offset")
	}
	if _, err := p.GetAt(100, 1); err == nil {
		t.Fatal("expected error for offset past buffer")
	}
}

func TestProgramPutAt(t *testing.T) {
	p := NewProgram([]byte("0123456789"))
	if err := p.PutAt(2, []byte("XY")); err != nil {
		t.Fatalf("PutAt: %v", err)
	}
	got, _ := p.GetAt(0, 10)
	if string(got) != "01XY456789" {
		t.Fatalf("after PutAt = %q", got)
	}
	if err := p.PutAt(8, []byte("XYZ")); err == nil {
		t.Fatal("expected error writing past end")
	}
}

func TestProgramMarkReset(t *testing.T) {
	p := NewProgram([]byte("0123456789"))
	p.GetNext(4)
	m := p.Mark()
	p.GetNext(4)
	if p.Cursor() != 8 {
		t.Fatalf("Cursor() = %d, want 8", p.Cursor())
	}
	p.Reset(m)
	if p.Cursor() != 4 {
		t.Fatalf("Cursor() after Reset = %d, want 4", p.Cursor())
	}
}

func TestSetLogicalSizeRejectsOutOfRange(t *testing.T) {
	p := NewProgram([]byte("01234"))
	if err := p.SetLogicalSize(0); err == nil {
		t.Fatal("expected error for zero size")
	}
	if err := p.SetLogicalSize(100); err == nil {
		t.Fatal("expected error for size exceeding buffer")
	}
}
