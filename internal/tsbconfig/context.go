/*
 * TSBTAPE - Global run configuration.
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

// Package tsbconfig holds the process-wide configuration record shared
// read-only by every component, replacing module-scope globals.
package tsbconfig

// Dialect selects the TSB generation a program or tape is interpreted as.
type Dialect int

const (
	DialectUnknown Dialect = iota
	Dialect2000F
	DialectAccess
)

func (d Dialect) String() string {
	switch d {
	case Dialect2000F:
		return "2000F"
	case DialectAccess:
		return "Access"
	default:
		return "unknown"
	}
}

// Per-dialect constants referenced by the decoder, transducer and
// directory/label code. See DESIGN.md for the Open Question resolution
// behind the 2000F/Access level values.
const (
	AccessOSLevel = 5000 // label osLevel >= AccessOSLevel implies Access

	SysLevelAccess  = 5000
	FeatLevelAccess = 1
	SysLevel2000F   = 2000
	FeatLevel2000F  = 0

	StmtLen2000F  = 204 // max 2000F statement length in bytes
	StmtLenAccess = 999 // max Access statement length in bytes

	StringMax2000F = 72 // max user-visible string literal length on 2000F

	SymtabOffsetAccess = 12 // symptr_offset, Access
	SymtabOffset2000F  = 14 // symptr_offset, 2000F

	CanonicalBlockSize = 2048 // canonical tape block size in bytes
)

// Context is the immutable, process-wide configuration passed by value to
// every component. No locks are required: it is built once in main and
// never mutated afterward.
type Context struct {
	Dialect      Dialect // forced dialect, or DialectUnknown to auto-detect
	Verbose      int     // stackable -v count
	IgnoreErrors bool    // -e: recover from semantic/structural errors where possible
	Debug        bool    // -D
	Stdout       bool    // -O: extract to stdout instead of host files
}
