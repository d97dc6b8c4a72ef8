/*
 * TSBTAPE - Tape directory catalog (-t).
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

package dispatch

import (
	"fmt"
	"io"

	"github.com/rcornwell/tsbtape/internal/simhtape"
	"github.com/rcornwell/tsbtape/internal/tsbconfig"
	"github.com/rcornwell/tsbtape/internal/tsbdir"
)

// Catalog implements the -t operation: print every file's directory
// entry, grouped by user id, with the -v verbosity levels spec.md §7
// describes. Grounded on tsbtap.c's do_topt/print_direntry.
func Catalog(tap *simhtape.Reader, out io.Writer, cfg tsbconfig.Context) (int, error) {
	dialect := cfg.Dialect
	prevUID := ""
	exitCode := 0

loop:
	for {
		block, kind, err := tap.ReadBlock()
		if err != nil {
			return 2, err
		}
		switch kind {
		case simhtape.KindEOM:
			break loop
		case simhtape.KindMark:
			fmt.Fprintln(out, "  --mark--")
			continue
		}

		if tsbdir.IsLabel(block) {
			lbl, lerr := tsbdir.ParseLabel(block)
			if lerr != nil {
				exitCode = 2
				continue
			}
			if dialect == tsbconfig.DialectUnknown {
				dialect = lbl.Dialect()
			}
			fmt.Fprintf(out, "\nTSB Dump reel %-2d  %s  oslvl %d-%d\n",
				lbl.Reel, formatDate(lbl.Date), lbl.OSLevel, lbl.FeatLevel)
			continue
		}

		if len(block) < tsbdir.EntrySize {
			fmt.Fprintln(out, "Unrecognized tape block")
			continue
		}
		entry, eerr := tsbdir.ParseEntry(block)
		if eerr != nil {
			exitCode = 2
			continue
		}
		prevUID = printDirEntry(out, entry, dialect, prevUID, cfg.Verbose)
	}

	if prevUID != "" && cfg.Verbose == 0 {
		fmt.Fprintln(out)
	}
	return exitCode, nil
}

func formatDate(d tsbdir.Date) string {
	return d.Time().Format("2-Jan-2006")
}

// printDirEntry renders one directory entry line, grounded on
// tsbtap.c's print_direntry. It returns the entry's uid, for the
// caller to detect the user-id group boundary on the next call.
func printDirEntry(out io.Writer, e tsbdir.Entry, dialect tsbconfig.Dialect, prevUID string, verbose int) string {
	typ, mode, sanct := byte(' '), byte(' '), byte(' ')
	length := -int(e.LengthWords)

	if e.BASICFormatted {
		typ = 'F'
		length = int(e.LengthWords) // record files store the length unsigned
	} else if e.CSAVECompacted {
		typ = 'C'
	}

	access := dialect == tsbconfig.DialectAccess
	if access {
		if e.ASCIIOrProtected {
			typ = 'A'
		}
		if typ == 'F' && e.DrumOrFlags&tsbdir.AccessFlagMWA != 0 {
			typ = 'M'
		}
		switch {
		case e.DrumOrFlags&tsbdir.AccessFlagUnresticed != 0:
			mode = 'U'
		case e.DrumOrFlags&tsbdir.AccessFlagProtected != 0:
			mode = 'P'
		case e.DrumOrFlags&tsbdir.AccessFlagLocked != 0:
			mode = 'L'
		}
	} else {
		if e.ASCIIOrProtected {
			mode = 'P'
		}
		if e.DrumOrFlags != 0 {
			sanct = 'S'
		}
	}

	uid := e.UID()
	if uid != prevUID {
		if verbose == 0 && prevUID != "" {
			fmt.Fprintln(out)
		}
		fmt.Fprintf(out, "\n%s:\n", uid)
	}

	fmt.Fprintf(out, "%-6s %c%c%c %4d", e.Name, typ, mode, sanct, length)

	if verbose > 0 {
		fmt.Fprintf(out, "  %s", formatDate(e.AccessDate))
		if verbose > 1 {
			fmt.Fprintf(out, " flags=0x%04x", e.DrumOrFlags)
		}
		if e.BASICFormatted {
			fmt.Fprintf(out, " recsz=%d", e.RecordOrAddr)
		}
		if typ == 'A' && e.IsDevice() {
			fmt.Fprintf(out, " device=%s", deviceName(e.DeviceLo))
		}
		if e.DrumOrFlags&tsbdir.AccessFlagFCP != 0 {
			fmt.Fprint(out, " FCP")
		}
		if e.DrumOrFlags&tsbdir.AccessFlagPFA != 0 {
			fmt.Fprint(out, " PFA")
		}
		fmt.Fprintln(out)
	} else {
		fmt.Fprint(out, "\t")
	}

	return uid
}
