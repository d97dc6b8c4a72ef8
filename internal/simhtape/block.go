/*
 * TSBTAPE - SIMH tape container codec.
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

// Package simhtape implements the SIMH magnetic-tape container format: a
// sequence of length-framed blocks and zero-length tape marks. This is
// component C1 (block codec) and C2 (tape-file framer) of the tape
// conversion pipeline.
package simhtape

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
)

// Kind distinguishes the three outcomes of a block read.
type Kind int

const (
	KindData Kind = iota
	KindMark
	KindEOM
)

// eomMarker is the SIMH end-of-medium sentinel.
const eomMarker uint32 = 0xFFFFFFFF

var (
	// ErrBadTrailer is returned when a block's trailing length word does
	// not match its header, even after accounting for pad byte.
	ErrBadTrailer = errors.New("simhtape: trailer length mismatch")
	// ErrWrongDirection is returned when a read-side method is called on
	// a write-direction codec, or vice versa.
	ErrWrongDirection = errors.New("simhtape: wrong direction")
	// ErrBlockTooLarge guards against a corrupt length header causing an
	// unbounded allocation.
	ErrBlockTooLarge = errors.New("simhtape: block length implausibly large")

	maxBlockLen uint32 = 16 * 1024 * 1024
)

// Reader reads SIMH-framed blocks from the underlying stream, strictly
// sequentially; there is no seeking. A read is an exclusive borrow of the
// internal scratch buffer, valid until the next call to ReadBlock.
type Reader struct {
	r       io.Reader
	scratch []byte
	errored bool
	atEOM   bool
	offset  int64
}

// NewReader constructs a Reader over r, starting at the beginning of a
// SIMH image.
func NewReader(r io.Reader) *Reader {
	return &Reader{r: r}
}

// Offset reports the byte offset within the underlying stream of the next
// unread byte, for error reporting.
func (b *Reader) Offset() int64 { return b.offset }

// ReadBlock reads one SIMH frame. It returns (payload, KindData, nil) for
// a data block, (nil, KindMark, nil) for a tape mark, or (nil, KindEOM,
// nil) at end of medium / end of stream. Any other failure is a hard
// error and the Reader must not be used again.
func (b *Reader) ReadBlock() ([]byte, Kind, error) {
	if b.errored {
		return nil, KindEOM, errors.New("simhtape: reader already errored")
	}

	hdr, err := b.readLen()
	if err != nil {
		if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
			b.atEOM = true
			return nil, KindEOM, nil
		}
		b.errored = true
		return nil, KindEOM, fmt.Errorf("simhtape: reading block header at offset %d: %w", b.offset, err)
	}

	if hdr == eomMarker {
		b.atEOM = true
		return nil, KindEOM, nil
	}
	if hdr == 0 {
		return nil, KindMark, nil
	}
	if hdr > maxBlockLen {
		b.errored = true
		return nil, KindEOM, fmt.Errorf("%w: %d bytes at offset %d", ErrBlockTooLarge, hdr, b.offset)
	}

	n := int(hdr)
	if cap(b.scratch) < n {
		b.scratch = make([]byte, n)
	}
	payload := b.scratch[:n]
	if _, err := io.ReadFull(b.r, payload); err != nil {
		b.errored = true
		return nil, KindEOM, fmt.Errorf("simhtape: short payload at offset %d: %w", b.offset, err)
	}
	b.offset += int64(n)

	odd := n&1 != 0
	candidate, cbuf, terr := b.readLenBytes()
	if terr != nil {
		b.errored = true
		return nil, KindEOM, fmt.Errorf("simhtape: reading block trailer at offset %d: %w", b.offset, terr)
	}

	trailer := candidate
	if odd && candidate != hdr {
		// An explicit pad byte was present in what we just read: cbuf[0]
		// is the pad byte, and cbuf[1:4] are the first three bytes of
		// the real trailer. Read one more byte to complete it.
		var extra [1]byte
		if _, err := io.ReadFull(b.r, extra[:]); err != nil {
			b.errored = true
			return nil, KindEOM, fmt.Errorf("simhtape: reading padded trailer at offset %d: %w", b.offset, err)
		}
		b.offset++
		trailer = uint32(cbuf[1]) | uint32(cbuf[2])<<8 | uint32(cbuf[3])<<16 | uint32(extra[0])<<24
	}
	if trailer != hdr {
		b.errored = true
		return nil, KindEOM, fmt.Errorf("%w: header=%d trailer=%d at offset %d", ErrBadTrailer, hdr, trailer, b.offset)
	}

	return payload, KindData, nil
}

// AtEOM reports whether the last ReadBlock call hit end of medium.
func (b *Reader) AtEOM() bool { return b.atEOM }

func (b *Reader) readLen() (uint32, error) {
	var buf [4]byte
	if _, err := io.ReadFull(b.r, buf[:]); err != nil {
		return 0, err
	}
	b.offset += 4
	return binary.LittleEndian.Uint32(buf[:]), nil
}

// readLenBytes reads a 4-byte little-endian length word and also returns
// the raw bytes, so the odd-payload pad-byte recovery path can reinterpret
// them without re-reading from the stream.
func (b *Reader) readLenBytes() (uint32, [4]byte, error) {
	var buf [4]byte
	if _, err := io.ReadFull(b.r, buf[:]); err != nil {
		return 0, buf, err
	}
	b.offset += 4
	return binary.LittleEndian.Uint32(buf[:]), buf, nil
}

// Writer writes SIMH-framed blocks to the underlying stream.
type Writer struct {
	w io.Writer
}

// NewWriter constructs a Writer over w.
func NewWriter(w io.Writer) *Writer {
	return &Writer{w: w}
}

// WriteBlock writes payload as a framed data block: header, payload, pad
// byte if the payload length is odd, trailer.
func (b *Writer) WriteBlock(payload []byte) error {
	n := len(payload)
	if err := b.writeLen(uint32(n)); err != nil {
		return err
	}
	if n > 0 {
		if _, err := b.w.Write(payload); err != nil {
			return fmt.Errorf("simhtape: writing payload: %w", err)
		}
	}
	if n&1 != 0 {
		if _, err := b.w.Write([]byte{0}); err != nil {
			return fmt.Errorf("simhtape: writing pad byte: %w", err)
		}
	}
	return b.writeLen(uint32(n))
}

// WriteMark writes a tape mark: a single zero-length header with no
// trailer.
func (b *Writer) WriteMark() error {
	return b.writeLen(0)
}

func (b *Writer) writeLen(n uint32) error {
	var buf [4]byte
	binary.LittleEndian.PutUint32(buf[:], n)
	if _, err := b.w.Write(buf[:]); err != nil {
		return fmt.Errorf("simhtape: writing length word: %w", err)
	}
	return nil
}
