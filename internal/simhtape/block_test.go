/*
 * TSBTAPE - SIMH tape container codec tests.
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

package simhtape

import (
	"bytes"
	"testing"
)

func TestWriteReadRoundTrip(t *testing.T) {
	var buf bytes.Buffer
	w := NewWriter(&buf)

	blocks := [][]byte{
		[]byte("HELLO "), // even length
		[]byte("HELLO!"), // even length
		[]byte("ODD"),    // odd length, needs pad
	}

	for _, blk := range blocks {
		if err := w.WriteBlock(blk); err != nil {
			t.Fatalf("WriteBlock(%q): %v", blk, err)
		}
	}
	if err := w.WriteMark(); err != nil {
		t.Fatalf("WriteMark: %v", err)
	}

	r := NewReader(bytes.NewReader(buf.Bytes()))
	for i, want := range blocks {
		got, kind, err := r.ReadBlock()
		if err != nil {
			t.Fatalf("block %d: ReadBlock: %v", i, err)
		}
		if kind != KindData {
			t.Fatalf("block %d: want KindData, got %v", i, kind)
		}
		if !bytes.Equal(got, want) {
			t.Fatalf("block %d: got %q want %q", i, got, want)
		}
	}

	_, kind, err := r.ReadBlock()
	if err != nil {
		t.Fatalf("mark: ReadBlock: %v", err)
	}
	if kind != KindMark {
		t.Fatalf("want KindMark, got %v", kind)
	}

	_, kind, err = r.ReadBlock()
	if err != nil {
		t.Fatalf("eof: ReadBlock: %v", err)
	}
	if kind != KindEOM {
		t.Fatalf("want KindEOM at natural truncation, got %v", kind)
	}
}

func TestReadBlockEOMSentinel(t *testing.T) {
	buf := []byte{0xFF, 0xFF, 0xFF, 0xFF}
	r := NewReader(bytes.NewReader(buf))
	_, kind, err := r.ReadBlock()
	if err != nil {
		t.Fatalf("ReadBlock: %v", err)
	}
	if kind != KindEOM {
		t.Fatalf("want KindEOM, got %v", kind)
	}
}

func TestReadBlockOddLengthWithPad(t *testing.T) {
	// 3-byte payload "ODD" + pad byte, framed explicitly with pad present.
	payload := []byte("ODD")
	raw := []byte{3, 0, 0, 0}
	raw = append(raw, payload...)
	raw = append(raw, 0) // pad
	raw = append(raw, 3, 0, 0, 0)

	r := NewReader(bytes.NewReader(raw))
	got, kind, err := r.ReadBlock()
	if err != nil {
		t.Fatalf("ReadBlock: %v", err)
	}
	if kind != KindData || !bytes.Equal(got, payload) {
		t.Fatalf("got %v/%q want KindData/%q", kind, got, payload)
	}
}

func TestReadBlockOddLengthWithoutPad(t *testing.T) {
	// 3-byte payload "ODD", no pad byte at all (non-conforming writer
	// the codec must still accept per spec.md invariant).
	payload := []byte("ODD")
	raw := []byte{3, 0, 0, 0}
	raw = append(raw, payload...)
	raw = append(raw, 3, 0, 0, 0)

	r := NewReader(bytes.NewReader(raw))
	got, kind, err := r.ReadBlock()
	if err != nil {
		t.Fatalf("ReadBlock: %v", err)
	}
	if kind != KindData || !bytes.Equal(got, payload) {
		t.Fatalf("got %v/%q want KindData/%q", kind, got, payload)
	}
}

func TestReadBlockBadTrailer(t *testing.T) {
	raw := []byte{4, 0, 0, 0, 'A', 'B', 'C', 'D', 5, 0, 0, 0}
	r := NewReader(bytes.NewReader(raw))
	_, _, err := r.ReadBlock()
	if err == nil {
		t.Fatal("expected error for mismatched trailer")
	}
}

func TestReadBlockTruncatedMidPayload(t *testing.T) {
	raw := []byte{10, 0, 0, 0, 'A', 'B'}
	r := NewReader(bytes.NewReader(raw))
	_, _, err := r.ReadBlock()
	if err == nil {
		t.Fatal("expected error for truncated payload")
	}
}
