/*
 * TSBTAPE - HP 4-byte floating point decode and TSB numeric rendering.
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
	"strconv"
	"strings"
)

// DecodeFloat unpacks a 4-byte HP floating point value, grounded on
// tsbtap.c's print_number: sign bit in byte 0 bit 7, 23-bit mantissa
// across byte0&0x7f/byte1/byte2 as a fraction in [0,1), 7-bit exponent
// in byte 3 bits 1-7, exponent sign in byte 3 bit 0.
func DecodeFloat(buf []byte) float64 {
	_ = buf[3] // bounds check hint
	mantissa := (uint32(buf[0]&0x7f) << 16) | (uint32(buf[1]) << 8) | uint32(buf[2])
	val := float64(mantissa) / float64(1<<23)
	if buf[0]&0x80 != 0 {
		val = -val
	}
	expt := uint(buf[3] >> 1)
	if buf[3]&1 != 0 {
		val /= float64(uint64(1) << (128 - expt))
	} else {
		val *= float64(uint64(1) << expt)
	}
	return val
}

// EncodeFloat packs a float64 into the 4-byte HP format. Values outside
// the representable exponent range are clamped to the nearest
// representable magnitude; this is only reached when re-encoding values
// that were themselves decoded from a valid on-tape float (CSAVE
// relocation never reconstructs floats from host text).
func EncodeFloat(v float64) [4]byte {
	var buf [4]byte
	if v == 0 {
		return buf
	}
	neg := v < 0
	if neg {
		v = -v
	}
	expt := 0
	for v >= 1 {
		v /= 2
		expt++
	}
	for v < 0.5 {
		v *= 2
		expt--
	}
	mantissa := uint32(math.Round(v * float64(1<<23)))
	if mantissa >= 1<<23 {
		mantissa = (1 << 23) - 1
	}
	if expt > 127 {
		expt, mantissa = 127, (1<<23)-1
	} else if expt < -128 {
		return buf
	}
	buf[0] = byte(mantissa >> 16)
	if neg {
		buf[0] |= 0x80
	}
	buf[1] = byte(mantissa >> 8)
	buf[2] = byte(mantissa)
	if expt < 0 {
		buf[3] = byte((128+expt)<<1 | 1)
	} else {
		buf[3] = byte(expt << 1)
	}
	return buf
}

// FormatNumber renders a decoded HP float the way TSB prints numeric
// literals: Go's %G as a starting point, then post-processed per
// spec.md's numeric-literal rendering rules (leading-0 stripping,
// forced scientific notation past 6 significant digits, unrolled small
// negative exponents, trailing-dot on large integers).
func FormatNumber(v float64) string {
	s := strconv.FormatFloat(v, 'G', -1, 64)
	neg := strings.HasPrefix(s, "-")
	if neg {
		s = s[1:]
	}

	mantissa, exp, hasExp := strings.Cut(s, "E")

	if hasExp {
		n, _ := strconv.Atoi(exp)
		if n < 0 && n >= -6 {
			// Unroll small negative exponents into plain decimal.
			s = strconv.FormatFloat(v, 'f', -1, 64)
			if neg {
				s = strings.TrimPrefix(s, "-")
			}
			mantissa, exp, hasExp = s, "", false
		} else {
			exp = strings.TrimPrefix(exp, "+")
			mantissa = strings.TrimSuffix(mantissa, ".")
		}
	} else {
		digits := strings.ReplaceAll(strings.TrimLeft(mantissa, "0."), ".", "")
		digits = strings.TrimLeft(digits, "0")
		if len(digits) > 6 {
			s = strconv.FormatFloat(v, 'E', 6, 64)
			if neg {
				s = strings.TrimPrefix(s, "-")
			}
			mantissa, exp, hasExp = strings.Cut(s, "E")
			mantissa = trimTrailingZeros(mantissa)
			n, _ := strconv.Atoi(exp)
			exp = strconv.Itoa(n)
		}
	}

	if strings.HasPrefix(mantissa, "0.") {
		mantissa = mantissa[1:]
	}

	out := mantissa
	if hasExp {
		out = mantissa + "E" + signedExp(exp)
	} else if !strings.Contains(out, ".") {
		if abs := math.Abs(v); abs > 32767 && abs < 1000000 {
			out += "."
		}
	}

	if neg {
		out = "-" + out
	}
	return out
}

func trimTrailingZeros(s string) string {
	if !strings.Contains(s, ".") {
		return s
	}
	s = strings.TrimRight(s, "0")
	return strings.TrimSuffix(s, ".")
}

func signedExp(exp string) string {
	if strings.HasPrefix(exp, "-") {
		return exp
	}
	return "+" + exp
}
