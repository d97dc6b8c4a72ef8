/*
 * TSBTAPE - Record-oriented BASIC data file and ASCII file extraction.
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
)

const (
	recordBlockBytes = 512
	eofMarker        = 0xFFFF
	eorMarker        = 0xFFFE
)

// RecordReader walks one 512-byte-padded record at a time out of a
// record-oriented data or ASCII file body, grounded on tsbtap.c's
// rec_ctx_t / rec_init / rec_getbytes / rec_skip.
type RecordReader struct {
	get     func(n int) []byte // pulls raw bytes from the tape-file framer
	recSize int                // record payload, in bytes
	left    int
	pad     int
}

// NewRecordReader builds a RecordReader over a byte source (typically
// simhtape.FileReader.GetBytes), with records of recWords 16-bit words.
func NewRecordReader(get func(n int) []byte, recWords int) (*RecordReader, error) {
	if recWords <= 0 || recWords > 256 {
		return nil, fmt.Errorf("basic: invalid record size %d words", recWords)
	}
	recSize := 2 * recWords
	return &RecordReader{get: get, recSize: recSize, left: recSize, pad: recordBlockBytes - recSize}, nil
}

func (r *RecordReader) resetRecord() {
	r.left = r.recSize
}

// getBytes reads up to n bytes (n must be even) from the current
// record, never crossing into the next record's padding.
func (r *RecordReader) getBytes(n int) []byte {
	if n > r.left {
		n = r.left
	}
	if n <= 0 {
		return nil
	}
	b := r.get(n)
	r.left -= len(b)
	return b
}

// skipRecord discards the remainder of the current record plus its pad
// bytes, positioning at the start of the next record.
func (r *RecordReader) skipRecord() {
	r.get(r.left + r.pad)
	r.left = 0
}

// ExtractDataFile renders a BASIC-formatted record file as CSV, one
// record per line, grounded on tsbtap.c's extract_basic_file. Each item
// is either a quoted string or an HP float; a 0xFFFF item ends the file
// with a trailing " END" marker, a 0xFFFE item ends the current record.
func ExtractDataFile(get func(n int) []byte, recWords int) (string, error) {
	rr, err := NewRecordReader(get, recWords)
	if err != nil {
		return "", err
	}

	var out strings.Builder
	for {
		rr.resetRecord()
		sep := ""
		done := false

		for {
			code := rr.getBytes(2)
			if len(code) != 2 {
				break
			}
			v := binary.BigEndian.Uint16(code)

			if v == eofMarker {
				out.WriteString(" END")
				done = true
				break
			}
			if v == eorMarker {
				break
			}

			if code[0] == 0x02 { // string item: byte0=0x02, byte1=length
				strLen := int(code[1])
				nbytes := (strLen + 1) &^ 1
				data := rr.getBytes(nbytes)
				if len(data) != nbytes {
					return out.String(), fmt.Errorf("basic: string extends past end of record")
				}
				fmt.Fprintf(&out, "%s%s", sep, quoteCSVField(string(data[:strLen])))
				sep = ","
				continue
			}

			bits := v & 0xc000
			if bits != 0x8000 && bits != 0x4000 && v != 0 {
				return out.String(), fmt.Errorf("basic: unrecognized data item 0x%04x", v)
			}
			rest := rr.getBytes(2)
			if len(rest) != 2 {
				return out.String(), fmt.Errorf("basic: number extends past end of record")
			}
			var fbuf [4]byte
			copy(fbuf[0:2], code)
			copy(fbuf[2:4], rest)
			fmt.Fprintf(&out, "%s%s", sep, FormatNumber(DecodeFloat(fbuf[:])))
			sep = ","
		}

		rr.skipRecord()
		out.WriteByte('\n')
		if done {
			break
		}
	}
	return out.String(), nil
}

// quoteCSVField wraps a BASIC string item in double quotes, doubling
// any embedded quote and backslash-escaping embedded NUL/newline bytes.
// This is deliberately not encoding/csv: the wire format's escaping
// rule is not RFC 4180 and encoding/csv's writer would corrupt embedded
// control bytes.
func quoteCSVField(s string) string {
	var b strings.Builder
	b.WriteByte('"')
	for i := 0; i < len(s); i++ {
		switch c := s[i]; c {
		case '"':
			b.WriteString(`""`)
		case 0:
			b.WriteString(`\0`)
		case '\n':
			b.WriteString(`\n`)
		default:
			b.WriteByte(c)
		}
	}
	b.WriteByte('"')
	return b.String()
}

// ExtractASCIIFile renders a plain-ASCII record file as newline-per-item
// text, grounded on tsbtap.c's extract_ascii_file. A 0xFFFF item ends
// the file; a 0xFFFE item ends the current record (and is otherwise
// silent, matching the original's per-record loop).
func ExtractASCIIFile(get func(n int) []byte) (string, error) {
	rr, err := NewRecordReader(get, 256)
	if err != nil {
		return "", err
	}

	var out strings.Builder
	for {
		rr.resetRecord()
		done := false

		for {
			code := rr.getBytes(2)
			if len(code) != 2 {
				done = true
				break
			}
			strLen := int(binary.BigEndian.Uint16(code))
			if strLen == eofMarker {
				done = true
				break
			}
			if strLen == eorMarker {
				break
			}
			nbytes := (strLen + 1) &^ 1
			data := rr.getBytes(nbytes)
			if len(data) != nbytes {
				return out.String(), fmt.Errorf("basic: string extends past end of ASCII file")
			}
			out.Write(data[:strLen])
			out.WriteByte('\n')
		}

		rr.skipRecord()
		if done {
			break
		}
	}
	return out.String(), nil
}
