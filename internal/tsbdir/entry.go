/*
 * TSBTAPE - TSB label block and directory entry decoding.
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

// Package tsbdir decodes the TSB label block (20 bytes, one per tape) and
// the per-file directory entry (24 bytes, one per tape file), per
// spec.md §3. The bit-packed name/date layout is grounded on the same
// "word holds two 6/7-bit characters plus stolen flag bits" shape as
// _examples/other_examples' pdp8/os8fs fileEntry.
package tsbdir

import (
	"encoding/binary"
	"errors"
	"fmt"
	"time"

	"github.com/rcornwell/tsbtape/internal/tsbconfig"
)

// LabelSize and EntrySize are the on-tape sizes of the two structures.
const (
	LabelSize = 20
	EntrySize = 24

	labelSignature = "LBTS"
)

// ErrNotALabel is returned by ParseLabel when the block does not carry the
// "LBTS" signature.
var ErrNotALabel = errors.New("tsbdir: not a label block")

// Date represents a TSB last-access / reel date: year (high 7 bits,
// offset from 1900) and Julian day of year (low 9 bits).
type Date struct {
	Year int // full year, e.g. 1990
	Day  int // 1-based Julian day of year
}

// decodeDate unpacks a 16-bit date word.
func decodeDate(word uint16) Date {
	return Date{
		Year: 1900 + int(word>>9),
		Day:  int(word & 0x1ff),
	}
}

// encodeDate packs a Date back into a 16-bit date word.
func encodeDate(d Date) uint16 {
	return uint16((d.Year-1900)&0x7f)<<9 | uint16(d.Day&0x1ff)
}

// Time converts a Date to a time.Time (UTC, midnight), for setting a host
// file's modification time.
func (d Date) Time() time.Time {
	return time.Date(d.Year, time.January, 1, 0, 0, 0, 0, time.UTC).AddDate(0, 0, d.Day-1)
}

// Label holds the decoded fields of a 20-byte TSB label block.
type Label struct {
	Reel        uint16
	Date        Date
	OSLevel     uint16
	FeatLevel   uint16
	LengthWords int16 // the raw leading length word, two's complement
}

// Dialect reports the TSB generation implied by the label's OS level.
func (l Label) Dialect() tsbconfig.Dialect {
	if l.OSLevel >= tsbconfig.AccessOSLevel {
		return tsbconfig.DialectAccess
	}
	return tsbconfig.Dialect2000F
}

// IsLabel reports whether buf's signature and length are consistent with
// a TSB label block, without fully parsing it.
func IsLabel(buf []byte) bool {
	return len(buf) >= LabelSize && string(buf[2:6]) == labelSignature
}

// ParseLabel decodes a label block. buf must be at least LabelSize bytes.
func ParseLabel(buf []byte) (Label, error) {
	if !IsLabel(buf) {
		return Label{}, ErrNotALabel
	}
	return Label{
		LengthWords: int16(binary.BigEndian.Uint16(buf[0:2])),
		Reel:        binary.BigEndian.Uint16(buf[8:10]),
		Date:        decodeDate(binary.BigEndian.Uint16(buf[10:12])),
		OSLevel:     binary.BigEndian.Uint16(buf[16:18]),
		FeatLevel:   binary.BigEndian.Uint16(buf[18:20]),
	}, nil
}

// EncodeLabel renders a Label back into a LabelSize-byte block.
// lengthWordsOverride, when non-zero, is written verbatim as the leading
// length word (convert.c writes -18/2 for 2000F and -20/2 for Access,
// which count header bytes differently per dialect — see spec.md §3).
func EncodeLabel(l Label, lengthWordsOverride int16) []byte {
	buf := make([]byte, LabelSize)
	binary.BigEndian.PutUint16(buf[0:2], uint16(lengthWordsOverride))
	copy(buf[2:6], labelSignature)
	binary.BigEndian.PutUint16(buf[8:10], l.Reel)
	binary.BigEndian.PutUint16(buf[10:12], encodeDate(l.Date))
	binary.BigEndian.PutUint16(buf[16:18], l.OSLevel)
	binary.BigEndian.PutUint16(buf[18:20], l.FeatLevel)
	return buf
}

// Entry holds the decoded fields of a 24-byte directory entry.
type Entry struct {
	UserLetter byte   // A-Z
	UserNumber int    // 0-999
	Name       string // 6 chars, trailing space padding kept
	NameRaw    [6]byte

	ASCIIOrProtected bool // high bit of byte 2: ASCII-file (Access) / protected (2000F)
	BASICFormatted   bool // high bit of byte 4: record/data file
	CSAVECompacted   bool // high bit of byte 6: CSAVE-compacted program

	RecordOrAddr uint16 // record size in words (data file) or start address (program)
	AccessDate   Date

	DrumOrFlags uint16 // drum address (2000F) or flags word (Access)
	DeviceHi    uint16 // offset 16
	DeviceLo    uint16 // offset 18

	LengthWords int16 // raw, two's complement -words
}

// Access flags word bit layout (offset 14-15), per spec.md §3.
const (
	AccessFlagFCP        = 1 << 11
	AccessFlagMWA        = 1 << 12
	AccessFlagPFA        = 1 << 13
	AccessFlagOut        = 1 << 14
	AccessFlagIn         = 1 << 15
	AccessFlagUnresticed = 1
	AccessFlagProtected  = 2
	AccessFlagLocked     = 4
)

// UID renders the user id as TSB normally prints it, e.g. "C513".
func (e Entry) UID() string {
	return fmt.Sprintf("%c%03d", e.UserLetter, e.UserNumber)
}

// Length returns the file length in 16-bit words (always positive: the
// on-tape field is the two's complement of this value).
func (e Entry) Length() int {
	return int(-e.LengthWords)
}

// IsDevice reports whether an ASCII file's directory entry actually
// refers to a non-file device rather than tape-resident data.
func (e Entry) IsDevice() bool {
	return e.DeviceHi == 0xFFFF
}

// ParseEntry decodes a 24-byte directory entry.
func ParseEntry(buf []byte) (Entry, error) {
	if len(buf) < EntrySize {
		return Entry{}, fmt.Errorf("tsbdir: directory entry too short: %d bytes", len(buf))
	}

	uidWord := binary.BigEndian.Uint16(buf[0:2])
	e := Entry{
		UserLetter: 'A' + byte(uidWord>>10),
		UserNumber: int(uidWord & 0x3ff),
	}

	var name [6]byte
	copy(name[:], buf[2:8])
	e.NameRaw = name
	e.ASCIIOrProtected = name[0]&0x80 != 0
	e.BASICFormatted = name[2]&0x80 != 0
	e.CSAVECompacted = name[4]&0x80 != 0
	decoded := [6]byte{
		name[0] & 0x7f, name[1] & 0x7f,
		name[2] & 0x7f, name[3] & 0x7f,
		name[4] & 0x7f, name[5] & 0x7f,
	}
	e.Name = string(decoded[:])

	e.RecordOrAddr = binary.BigEndian.Uint16(buf[8:10])
	e.AccessDate = decodeDate(binary.BigEndian.Uint16(buf[10:12]))
	e.DrumOrFlags = binary.BigEndian.Uint16(buf[14:16])
	e.DeviceHi = binary.BigEndian.Uint16(buf[16:18])
	e.DeviceLo = binary.BigEndian.Uint16(buf[18:20])
	e.LengthWords = int16(binary.BigEndian.Uint16(buf[22:24]))

	return e, nil
}

// EncodeEntry renders e back into a 24-byte on-tape directory entry.
func EncodeEntry(e Entry) []byte {
	buf := make([]byte, EntrySize)

	uidWord := uint16(e.UserLetter-'A')<<10 | uint16(e.UserNumber&0x3ff)
	binary.BigEndian.PutUint16(buf[0:2], uidWord)

	var raw [6]byte
	copy(raw[:], e.Name)
	for i := len(e.Name); i < 6; i++ {
		raw[i] = ' '
	}
	for i := range raw {
		raw[i] &= 0x7f
	}
	if e.ASCIIOrProtected {
		raw[0] |= 0x80
	}
	if e.BASICFormatted {
		raw[2] |= 0x80
	}
	if e.CSAVECompacted {
		raw[4] |= 0x80
	}
	copy(buf[2:8], raw[:])

	binary.BigEndian.PutUint16(buf[8:10], e.RecordOrAddr)
	binary.BigEndian.PutUint16(buf[10:12], encodeDate(e.AccessDate))
	binary.BigEndian.PutUint16(buf[14:16], e.DrumOrFlags)
	binary.BigEndian.PutUint16(buf[16:18], e.DeviceHi)
	binary.BigEndian.PutUint16(buf[18:20], e.DeviceLo)
	binary.BigEndian.PutUint16(buf[22:24], uint16(e.LengthWords))

	return buf
}
