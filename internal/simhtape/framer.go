/*
 * TSBTAPE - Tape-file framer: blocks between tape marks as a byte stream.
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
	"errors"
)

// ErrShortRead is returned by GetBytes when fewer than the requested
// number of bytes remain before the next tape mark.
var ErrShortRead = errors.New("simhtape: short read, tape mark or EOM reached")

// FileReader presents the span of blocks between the current tape
// position and the next tape mark as a contiguous byte stream, optionally
// skipping a fixed per-block header prefix (hdr bytes: 0 for Access, 2 for
// pre-Access length-prefixed blocks).
//
// Grounded on original_source/tfilefmt.c's tfile_ctx_t.
type FileReader struct {
	tape *Reader
	hdr  int

	buf    []byte
	pos    int
	atMark bool
	atEOM  bool
}

// NewFileReader constructs a FileReader around tape. first is the block
// already read by the caller (the first block of the file), hdr is the
// per-block header size to skip.
func NewFileReader(tape *Reader, hdr int, first []byte) (*FileReader, error) {
	fr := &FileReader{tape: tape, hdr: hdr}
	fr.acceptBlock(first)
	return fr, nil
}

func (fr *FileReader) acceptBlock(block []byte) {
	if len(block) < fr.hdr {
		fr.buf = nil
		return
	}
	fr.buf = block[fr.hdr:]
	fr.pos = 0
}

// fill pulls the next block from the tape if the current one is exhausted.
// Returns true if there is more data available.
func (fr *FileReader) fill() (bool, error) {
	if fr.pos < len(fr.buf) {
		return true, nil
	}
	if fr.atMark || fr.atEOM {
		return false, nil
	}
	block, kind, err := fr.tape.ReadBlock()
	if err != nil {
		return false, err
	}
	switch kind {
	case KindMark:
		fr.atMark = true
		return false, nil
	case KindEOM:
		fr.atEOM = true
		return false, nil
	default:
		fr.acceptBlock(block)
		return fr.pos < len(fr.buf), nil
	}
}

// GetBytes copies exactly n bytes into a freshly allocated slice. If fewer
// than n bytes remain before the next tape mark or EOM, it returns as much
// as was available together with ErrShortRead.
func (fr *FileReader) GetBytes(n int) ([]byte, error) {
	out := make([]byte, 0, n)
	for len(out) < n {
		ok, err := fr.fill()
		if err != nil {
			return out, err
		}
		if !ok {
			return out, ErrShortRead
		}
		take := n - len(out)
		if avail := len(fr.buf) - fr.pos; take > avail {
			take = avail
		}
		out = append(out, fr.buf[fr.pos:fr.pos+take]...)
		fr.pos += take
	}
	return out, nil
}

// SkipBytes advances the logical stream by n bytes without copying them.
func (fr *FileReader) SkipBytes(n int) error {
	for n > 0 {
		ok, err := fr.fill()
		if err != nil {
			return err
		}
		if !ok {
			return ErrShortRead
		}
		skip := n
		if avail := len(fr.buf) - fr.pos; skip > avail {
			skip = avail
		}
		fr.pos += skip
		n -= skip
	}
	return nil
}

// SkipToMark drains the rest of the current tape file, used to
// resynchronize regardless of how much the consumer actually read.
func (fr *FileReader) SkipToMark() error {
	for {
		ok, err := fr.fill()
		if err != nil {
			return err
		}
		if !ok {
			return nil
		}
		fr.pos = len(fr.buf)
	}
}

// AtEOM reports whether the framer drained to end of medium instead of a
// tape mark (a malformed or truncated image).
func (fr *FileReader) AtEOM() bool { return fr.atEOM }

// FileWriter accumulates bytes into canonical-size blocks and emits them
// through a Writer, terminating the tape file with a tape mark.
type FileWriter struct {
	tape *Writer
	hdr  int

	blockSize int
	acc       []byte
	written   int
}

// NewFileWriter constructs a FileWriter around tape. hdr is the per-block
// header size to prefix (0 for Access, 2 for pre-Access).
func NewFileWriter(tape *Writer, hdr int) *FileWriter {
	return &FileWriter{tape: tape, hdr: hdr, blockSize: 2048}
}

// PutBytes copies buf into the internal block accumulator, flushing full
// blocks to the tape as needed.
func (fw *FileWriter) PutBytes(buf []byte) error {
	for len(buf) > 0 {
		room := fw.blockSize - len(fw.acc)
		n := len(buf)
		if n > room {
			n = room
		}
		fw.acc = append(fw.acc, buf[:n]...)
		buf = buf[n:]
		if len(fw.acc) == fw.blockSize {
			if err := fw.flushBlock(); err != nil {
				return err
			}
		}
	}
	return nil
}

func (fw *FileWriter) flushBlock() error {
	payload := fw.acc
	fw.acc = nil
	if len(payload) == 0 {
		return nil
	}
	block := payload
	if fw.hdr == 2 {
		block = make([]byte, 2+len(payload))
		neg := uint16(-int16(len(payload) / 2))
		block[0] = byte(neg >> 8) // big-endian, matching every other
		block[1] = byte(neg)      // on-tape 16-bit word
		copy(block[2:], payload)
	}
	fw.written += len(payload)
	return fw.tape.WriteBlock(block)
}

// WriteFile flushes the current accumulator (padding up to minBytes if
// requested), then writes a tape mark.
func (fw *FileWriter) WriteFile(minBytes int) error {
	if len(fw.acc) < minBytes {
		pad := make([]byte, minBytes-len(fw.acc))
		fw.acc = append(fw.acc, pad...)
	}
	if len(fw.acc) > 0 {
		if err := fw.flushBlock(); err != nil {
			return err
		}
	}
	return fw.tape.WriteMark()
}
