/*
 * TSBTAPE - Raw block hex dump formatting.
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

// Package hexdump formats raw tape block bytes for the -r dump operation,
// in the same hex-table style as the teacher's util/hex package.
package hexdump

import "strings"

var hexDigits = "0123456789ABCDEF"

// FormatBlock renders one tape block as offset-prefixed hex with an ASCII
// gutter, 16 bytes per line.
func FormatBlock(data []byte) string {
	var out strings.Builder
	for off := 0; off < len(data); off += 16 {
		end := off + 16
		if end > len(data) {
			end = len(data)
		}
		row := data[off:end]

		out.WriteString(formatOffset(off))
		out.WriteString("  ")
		for i := 0; i < 16; i++ {
			if i < len(row) {
				FormatByte(&out, row[i])
			} else {
				out.WriteString("  ")
			}
			out.WriteByte(' ')
			if i == 7 {
				out.WriteByte(' ')
			}
		}
		out.WriteString(" |")
		for _, b := range row {
			if b >= 32 && b < 127 {
				out.WriteByte(b)
			} else {
				out.WriteByte('.')
			}
		}
		out.WriteString("|\n")
	}
	return out.String()
}

// FormatByte writes the two-hex-digit representation of data to str.
func FormatByte(str *strings.Builder, data byte) {
	str.WriteByte(hexDigits[(data>>4)&0xf])
	str.WriteByte(hexDigits[data&0xf])
}

func formatOffset(off int) string {
	var b strings.Builder
	shift := 28
	for range 8 {
		b.WriteByte(hexDigits[(uint32(off)>>shift)&0xf])
		shift -= 4
	}
	return b.String()
}
