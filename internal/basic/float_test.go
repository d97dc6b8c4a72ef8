/*
 * TSBTAPE - HP float decode/render tests.
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
	"math"
	"testing"
)

func TestDecodeEncodeFloatRoundTrip(t *testing.T) {
	cases := []float64{0.5, -0.5, 1, -1, 3.14159, 100, -12345.625}
	for _, v := range cases {
		enc := EncodeFloat(v)
		got := DecodeFloat(enc[:])
		if math.Abs(got-v) > 1e-5 {
			t.Errorf("round trip %v -> %v", v, got)
		}
	}
}

func TestDecodeFloatZero(t *testing.T) {
	buf := [4]byte{}
	if got := DecodeFloat(buf[:]); got != 0 {
		t.Fatalf("DecodeFloat(zero) = %v, want 0", got)
	}
}

func TestFormatNumberLeadingZeroStripped(t *testing.T) {
	if got := FormatNumber(0.5); got != ".5" {
		t.Fatalf("FormatNumber(0.5) = %q, want .5", got)
	}
	if got := FormatNumber(-0.25); got != "-.25" {
		t.Fatalf("FormatNumber(-0.25) = %q, want -.25", got)
	}
}

func TestFormatNumberIntegerTrailingDot(t *testing.T) {
	if got := FormatNumber(100000); got != "100000." {
		t.Fatalf("FormatNumber(100000) = %q, want 100000.", got)
	}
	if got := FormatNumber(100); got != "100" {
		t.Fatalf("FormatNumber(100) = %q, want 100 (below threshold)", got)
	}
}

func TestFormatNumberPlainInteger(t *testing.T) {
	if got := FormatNumber(42); got != "42" {
		t.Fatalf("FormatNumber(42) = %q, want 42", got)
	}
}
