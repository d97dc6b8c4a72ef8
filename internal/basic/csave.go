/*
 * TSBTAPE - CSAVE relocation pass.
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
	"errors"
	"fmt"
)

// ErrCorruptedDestination is returned when a relocated line-number
// address (GOTO/GOSUB and the like; DIM/COM bounds are never relocated)
// points outside the program buffer.
var ErrCorruptedDestination = errors.New("basic: corrupted destination line number")

// ErrCorruptedSymtab is returned when a variable token's symbol-table
// index does not resolve to a valid symbol table entry.
var ErrCorruptedSymtab = errors.New("basic: corrupted symbol table")

// DetectSymtab locates a CSAVEd program's trailing symbol table. entryLenBytes
// is the directory entry's file length in bytes (2 * word count); start is
// the load address in words from the directory entry. It returns the
// symbol table's byte offset within the program buffer, grounded on
// tsbprog.c's extract_program CSAVE branch.
func DetectSymtab(buf []byte, entryLenBytes, start int) (int, error) {
	off := entryLenBytes - 12
	if off < 0 || off+2 > len(buf) {
		return 0, fmt.Errorf("basic: can't find symbol table for CSAVEd program")
	}
	ptr := int(binary.BigEndian.Uint16(buf[off : off+2]))
	symtab := (ptr - start) * 2
	if symtab <= 0 {
		return 0, fmt.Errorf("basic: invalid symbol table address for CSAVEd program")
	}
	return symtab, nil
}

// Relocator rewrites a CSAVEd program's compacted addresses and symbol
// indices back into ordinary line numbers and variable tokens, grounded
// on spec.md §4.6. It runs once, as a single forward walk, mutating the
// Program buffer in place via Program.PutAt.
type Relocator struct {
	start        int
	symtabOffset int
}

// NewRelocator builds a Relocator for a program loaded at the given
// start address (words) with its symbol table at symtabOffset (bytes,
// from DetectSymtab).
func NewRelocator(start, symtabOffset int) *Relocator {
	return &Relocator{start: start, symtabOffset: symtabOffset}
}

// Relocate walks p's statement stream and rewrites every destination
// address and symbol-table reference in place. Calling it a second time
// on an already-relocated Program is a no-op: p tracks whether it has
// been relocated and Relocate returns immediately if so.
func (r *Relocator) Relocate(p *Program) error {
	if p.relocated {
		return nil
	}
	p.relocated = true

statements:
	for {
		stmt, err := NextStatement(p)
		if err == ErrEndOfProgram {
			return nil
		}
		if err != nil {
			return err
		}

		stmtOp := -1
		for {
			offset := p.Cursor()
			tbuf := stmt.GetBytes(2)
			if len(tbuf) != 2 {
				continue statements
			}
			token := binary.BigEndian.Uint16(tbuf)
			op := int((token >> 9) & 0x3f)

			if stmtOp < 0 {
				stmtOp = op
				switch op {
				case OpFiles, OpRem, OpImage:
					stmt.Skip()
					continue statements
				}
			}

			switch {
			case token&0x8000 != 0:
				switch token & 0xf {
				case 0:
					stmt.GetBytes(4)
				case 3:
					if err := r.relocateIntOperand(p, stmt, token, stmtOp); err != nil {
						return err
					}
				}

			case op == 1:
				length := int(token & 0xff)
				stmt.GetBytes((length + 1) &^ 1)

			default:
				idx := int(token & 0x1ff)
				if idx != 0 {
					sym, err := r.lookupSymbol(p, idx)
					if err != nil {
						return err
					}
					buf := make([]byte, 2)
					binary.BigEndian.PutUint16(buf, sym)
					if err := p.PutAt(offset, buf); err != nil {
						return err
					}
				}
			}
		}
	}
}

func (r *Relocator) relocateIntOperand(p *Program, stmt *Statement, token uint16, stmtOp int) error {
	isDim := stmtOp == OpCom || stmtOp == OpDim

	offset := p.Cursor()
	buf := stmt.GetBytes(2)
	if len(buf) != 2 {
		return fmt.Errorf("basic: value extends past end of statement")
	}
	if !isDim {
		if err := r.relocateOne(p, offset, buf); err != nil {
			return err
		}
	}
	if isDim || int((token>>9)&0x3f) == OpUsing {
		return nil
	}

	for {
		offset := p.Cursor()
		buf := stmt.GetBytes(2)
		if len(buf) != 2 {
			return nil
		}
		if err := r.relocateOne(p, offset, buf); err != nil {
			return err
		}
	}
}

func (r *Relocator) relocateOne(p *Program, offset int, buf []byte) error {
	val := int(binary.BigEndian.Uint16(buf))
	destOff := (val - r.start) * 2
	dest, err := p.GetAt(destOff, 2)
	if err != nil || len(dest) != 2 {
		return ErrCorruptedDestination
	}
	return p.PutAt(offset, dest)
}

func (r *Relocator) lookupSymbol(p *Program, idx int) (uint16, error) {
	buf, err := p.GetAt(r.symtabOffset+4*(idx-1), 2)
	if err != nil || len(buf) != 2 {
		return 0, ErrCorruptedSymtab
	}
	return binary.BigEndian.Uint16(buf), nil
}
