/*
 * TSBTAPE - 2000F/Access dialect tape conversion (-a, -c).
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
	"errors"
	"fmt"
	"log/slog"

	"github.com/rcornwell/tsbtape/internal/basic"
	"github.com/rcornwell/tsbtape/internal/simhtape"
	"github.com/rcornwell/tsbtape/internal/tsbconfig"
	"github.com/rcornwell/tsbtape/internal/tsbdir"
	"github.com/rcornwell/tsbtape/internal/tsblog"
)

// ErrAlreadyTargetDialect is returned when the tape's label already
// matches the requested conversion's target dialect, mirroring
// convert.c's "already in Access/2000F format" refusal.
var ErrAlreadyTargetDialect = errors.New("dispatch: tape is already in the target dialect")

// Convert implements the -a (2000F to Access) and -c (Access to 2000F)
// operations, grounded on original_source/convert.c's do_aopt/do_copt.
func Convert(tap *simhtape.Reader, otap *simhtape.Writer, dir basic.Direction, cfg tsbconfig.Context, counter *tsblog.FileCounter, logger *slog.Logger) (int, error) {
	var ofw *simhtape.FileWriter
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
			if err := otap.WriteMark(); err != nil {
				return 2, err
			}
			continue
		}

		if tsbdir.IsLabel(block) {
			lbl, err := tsbdir.ParseLabel(block)
			if err != nil {
				return 2, err
			}
			newLabel, lengthOverride, err := convertLabel(lbl, dir)
			if err != nil {
				return 1, err
			}
			if err := otap.WriteBlock(tsbdir.EncodeLabel(newLabel, lengthOverride)); err != nil {
				return 2, err
			}
			if err := otap.WriteMark(); err != nil {
				return 2, err
			}
			continue
		}

		if len(block) < tsbdir.EntrySize {
			continue
		}
		entry, err := tsbdir.ParseEntry(block)
		if err != nil {
			exitCode = 2
			continue
		}

		srcHdr, outHdr := headerWidths(dir)
		fr, err := simhtape.NewFileReader(tap, srcHdr, block[tsbdir.EntrySize:])
		if err != nil {
			return 2, err
		}

		// 2000F has no ASCII-file concept; Access ASCII files are skipped
		// on the way to 2000F.
		if dir == basic.DirectionAtoF && entry.ASCIIOrProtected {
			logger.Info("skipped ASCII file", "uid", entry.UID(), "name", entry.Name)
			if err := fr.SkipToMark(); err != nil {
				return 2, err
			}
			continue
		}

		if ofw == nil {
			ofw = simhtape.NewFileWriter(otap, outHdr)
		}

		counter.Reset()
		label := entry.UID() + "/" + entry.Name
		if cerr := convertOne(fr, ofw, entry, dir, cfg.IgnoreErrors, cfg.Verbose, logger); cerr != nil {
			counter.ReportError(label, cerr)
			exitCode = 2
		}

		if err := fr.SkipToMark(); err != nil {
			return 2, err
		}
	}

	return exitCode, nil
}

// headerWidths returns the (source, output) per-block header widths for
// a conversion direction: 2000F tape files carry a 2-byte length prefix,
// Access tape files carry none.
func headerWidths(dir basic.Direction) (src, out int) {
	if dir == basic.DirectionFtoA {
		return 2, 0
	}
	return 0, 2
}

// convertLabel rewrites a TSB label for the opposite dialect, grounded
// on convert.c's do_aopt/do_copt label handling. It fails if the label
// already names the conversion's target dialect.
func convertLabel(lbl tsbdir.Label, dir basic.Direction) (tsbdir.Label, int16, error) {
	if dir == basic.DirectionFtoA {
		if lbl.Dialect() == tsbconfig.DialectAccess {
			return tsbdir.Label{}, 0, ErrAlreadyTargetDialect
		}
		lbl.OSLevel = tsbconfig.SysLevelAccess
		lbl.FeatLevel = tsbconfig.FeatLevelAccess
		return lbl, int16(-20 / 2), nil
	}
	if lbl.Dialect() == tsbconfig.Dialect2000F {
		return tsbdir.Label{}, 0, ErrAlreadyTargetDialect
	}
	lbl.OSLevel = tsbconfig.SysLevel2000F
	lbl.FeatLevel = tsbconfig.FeatLevel2000F
	return lbl, int16(-18 / 2), nil
}

// convertOne translates one tape file's directory entry and body and
// writes the result to ofw as a complete output tape file.
func convertOne(fr *simhtape.FileReader, ofw *simhtape.FileWriter, entry tsbdir.Entry, dir basic.Direction, ignoreErrors bool, verbose int, logger *slog.Logger) error {
	outEntry, renamed := translateFlags(entry, dir)

	if entry.BASICFormatted {
		if err := ofw.PutBytes(tsbdir.EncodeEntry(outEntry)); err != nil {
			return err
		}
		if err := copyRaw(fr, ofw); err != nil {
			return err
		}
		if err := ofw.WriteFile(24); err != nil {
			return err
		}
		logConverted(logger, verbose, entry, outEntry, renamed)
		return nil
	}

	buf, err := readAll(fr)
	if err != nil {
		return err
	}

	if entry.CSAVECompacted {
		srcDialect := tsbconfig.Dialect2000F
		if dir == basic.DirectionAtoF {
			srcDialect = tsbconfig.DialectAccess
		}
		buf, err = decompactProgram(buf, int(entry.RecordOrAddr), srcDialect)
		if err != nil {
			return err
		}
		outEntry.CSAVECompacted = false
	}

	out, err := convertProgramBuf(buf, dir, ignoreErrors)
	if err != nil {
		return err
	}

	if err := ofw.PutBytes(tsbdir.EncodeEntry(outEntry)); err != nil {
		return err
	}
	if err := ofw.PutBytes(out); err != nil {
		return err
	}
	if err := ofw.WriteFile(24); err != nil {
		return err
	}
	logConverted(logger, verbose, entry, outEntry, renamed)
	return nil
}

// logConverted reports a converted file and, when the on-tape name had
// to be rewritten, the name it was rewritten to, grounded on convert.c's
// verbose "Converted %s -> %s" report.
func logConverted(logger *slog.Logger, verbose int, entry, outEntry tsbdir.Entry, renamed bool) {
	if verbose <= 0 {
		return
	}
	if renamed {
		logger.Info("converted", "uid", entry.UID(), "name", entry.Name, "renamed_to", outEntry.Name)
		return
	}
	logger.Info("converted", "uid", entry.UID(), "name", entry.Name)
}

// translateFlags rewrites the protect/lock bits between the 2000F
// single protected bit and the Access flags word, grounded on convert.c's
// do_aopt/do_copt flag-handling blocks. Converting to Access also
// sanitizes the file name, since Access imposes a stricter character set
// than 2000F; the returned bool reports whether the name was changed.
func translateFlags(e tsbdir.Entry, dir basic.Direction) (tsbdir.Entry, bool) {
	out := e
	if dir == basic.DirectionFtoA {
		out.DrumOrFlags = 0
		if e.ASCIIOrProtected {
			out.ASCIIOrProtected = false
			out.DrumOrFlags |= tsbdir.AccessFlagProtected
		}
		name, renamed := sanitizeName(out.Name)
		out.Name = name
		return out, renamed
	}
	if e.DrumOrFlags&(tsbdir.AccessFlagProtected|tsbdir.AccessFlagLocked) != 0 {
		out.ASCIIOrProtected = true
	}
	out.DrumOrFlags = 0
	return out, false
}

// sanitizeName replaces any character outside [A-Z0-9] with 'Z',
// stopping at the name's first space (the trailing-padding terminator),
// grounded on convert.c's inline replace-invalid-characters loop.
func sanitizeName(name string) (string, bool) {
	b := []byte(name)
	renamed := false
	for i, c := range b {
		if c == ' ' {
			break
		}
		if !(c >= 'A' && c <= 'Z' || c >= '0' && c <= '9') {
			b[i] = 'Z'
			renamed = true
		}
	}
	return string(b), renamed
}

// copyRaw streams a BASIC-formatted (record) file's body through
// unmodified, grounded on convert.c's raw_copy.
func copyRaw(fr *simhtape.FileReader, ofw *simhtape.FileWriter) error {
	for {
		chunk, err := fr.GetBytes(512)
		if len(chunk) > 0 {
			if werr := ofw.PutBytes(chunk); werr != nil {
				return werr
			}
		}
		if errors.Is(err, simhtape.ErrShortRead) {
			return nil
		}
		if err != nil {
			return err
		}
	}
}

// convertProgramBuf runs every statement in buf through a Transducer for
// the given direction, concatenating the re-encoded statements.
func convertProgramBuf(buf []byte, dir basic.Direction, ignoreErrors bool) ([]byte, error) {
	p := basic.NewProgram(buf)
	tr := basic.NewTransducer(dir, ignoreErrors)

	var out []byte
	for {
		stmt, err := tr.ConvertStatement(p)
		if err == basic.ErrEndOfProgram {
			return out, nil
		}
		if err != nil {
			return nil, fmt.Errorf("dispatch: converting statement at byte %d: %w", p.Cursor(), err)
		}
		out = append(out, stmt...)
	}
}
