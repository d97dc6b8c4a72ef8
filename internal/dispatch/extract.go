/*
 * TSBTAPE - File extraction (-x) and token dump (-d).
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
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/rcornwell/tsbtape/internal/basic"
	"github.com/rcornwell/tsbtape/internal/glob"
	"github.com/rcornwell/tsbtape/internal/simhtape"
	"github.com/rcornwell/tsbtape/internal/tsbconfig"
	"github.com/rcornwell/tsbtape/internal/tsbdir"
	"github.com/rcornwell/tsbtape/internal/tsblog"
)

// Extract implements the -x operation: matched files are written to host
// files under a per-uid directory, with the tape's access date applied as
// the host file's mtime. Grounded on tsbtap.c's do_xopt.
func Extract(tap *simhtape.Reader, args []string, cfg tsbconfig.Context, counter *tsblog.FileCounter, logger *slog.Logger) (int, error) {
	return walk(tap, args, cfg, counter, logger, true, nil)
}

// DumpTokens implements the -d operation: matched BASIC programs are
// decoded and printed to out instead of written to host files. Record
// and ASCII files are read but not printed, and nothing is logged for
// them; a device entry is reported as an error, as under -x.
func DumpTokens(tap *simhtape.Reader, args []string, cfg tsbconfig.Context, counter *tsblog.FileCounter, logger *slog.Logger, out io.Writer) (int, error) {
	return walk(tap, args, cfg, counter, logger, false, out)
}

// walk drives the shared tape scan for -x and -d: find the directory
// entry of every tape file, check it against the glob match set, and
// hand matched entries to extractOne.
func walk(tap *simhtape.Reader, args []string, cfg tsbconfig.Context, counter *tsblog.FileCounter, logger *slog.Logger, toHost bool, out io.Writer) (int, error) {
	set, err := glob.CompileSet(args)
	if err != nil {
		return 1, err
	}

	dialect := cfg.Dialect
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
			continue
		}

		if tsbdir.IsLabel(block) {
			lbl, lerr := tsbdir.ParseLabel(block)
			if lerr == nil && dialect == tsbconfig.DialectUnknown {
				dialect = lbl.Dialect()
			}
			continue
		}
		if len(block) < tsbdir.EntrySize {
			continue
		}
		entry, eerr := tsbdir.ParseEntry(block)
		if eerr != nil {
			exitCode = 2
			continue
		}

		fr, ferr := simhtape.NewFileReader(tap, dirHeader(dialect), block[tsbdir.EntrySize:])
		if ferr != nil {
			return 2, ferr
		}

		if !set.Match(entry.UID(), entry.Name) {
			if serr := fr.SkipToMark(); serr != nil {
				return 2, serr
			}
			continue
		}

		counter.Reset()
		label := entry.UID() + "/" + entry.Name
		if err := extractOne(fr, entry, dialect, cfg, toHost, out); err != nil {
			counter.ReportError(label, err)
			exitCode = 2
		}
		if serr := fr.SkipToMark(); serr != nil {
			return 2, serr
		}
	}

	for _, name := range set.Unmatched() {
		logger.Error("file not found", "name", name)
		exitCode = 3
	}
	return exitCode, nil
}

// extractOne dispatches on the directory entry's type and renders the
// tape file's body as text (record/CSV, ASCII, or decoded program), then
// delivers it either to a host file or to out, per toHost.
func extractOne(fr *simhtape.FileReader, entry tsbdir.Entry, dialect tsbconfig.Dialect, cfg tsbconfig.Context, toHost bool, out io.Writer) error {
	access := dialect == tsbconfig.DialectAccess

	var text string
	var ext string
	var err error

	switch {
	case access && entry.ASCIIOrProtected:
		if entry.IsDevice() {
			return fmt.Errorf("dispatch: %s is a device, not tape-resident data", entry.Name)
		}
		text, err = basic.ExtractASCIIFile((&frSource{fr: fr}).get)
		ext = "txt"

	case entry.BASICFormatted:
		src := &frSource{fr: fr}
		text, err = basic.ExtractDataFile(src.get, int(entry.RecordOrAddr))
		if err == nil {
			err = src.err
		}
		ext = "csv"

	default:
		var buf []byte
		buf, err = readAll(fr)
		if err != nil {
			return err
		}
		if entry.CSAVECompacted {
			buf, err = decompactProgram(buf, int(entry.RecordOrAddr), dialect)
			if err != nil {
				return err
			}
		}
		d := basic.NewDecoder(dialect)
		text, err = d.DecodeProgram(basic.NewProgram(buf))
		ext = "bas"
	}
	if err != nil {
		return err
	}

	if !toHost {
		if ext != "bas" {
			return nil // -d only prints decoded program token text
		}
		fmt.Fprint(out, text)
		return nil
	}

	return writeHostFile(entry, ext, text, cfg)
}

// writeHostFile creates (or appends a disambiguating suffix to) the host
// file for a matched tape file, then stamps it with the tape file's
// access date, grounded on outfile.c's out_open/set_mtime.
func writeHostFile(entry tsbdir.Entry, ext, text string, cfg tsbconfig.Context) error {
	if cfg.Stdout {
		_, err := io.WriteString(os.Stdout, text)
		return err
	}

	dir := entry.UID()
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}

	f, path, err := createExclusive(dir, strings.TrimRight(entry.Name, " "), ext)
	if err != nil {
		return err
	}
	if _, err := io.WriteString(f, text); err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}
	t := entry.AccessDate.Time()
	return os.Chtimes(path, t, t)
}

// createExclusive implements outfile.c's out_open duplicate-name
// resolution: try "name.ext" first, then up to 100 numbered variants
// "name.N.ext" on EEXIST.
func createExclusive(dir, base, ext string) (*os.File, string, error) {
	path := filepath.Join(dir, base+"."+ext)
	f, err := os.OpenFile(path, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o644)
	if err == nil {
		return f, path, nil
	}
	if !os.IsExist(err) {
		return nil, "", err
	}

	for i := 1; i <= 100; i++ {
		path = filepath.Join(dir, fmt.Sprintf("%s.%d.%s", base, i, ext))
		f, err = os.OpenFile(path, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o644)
		if err == nil {
			return f, path, nil
		}
		if !os.IsExist(err) {
			return nil, "", err
		}
	}
	return nil, "", fmt.Errorf("dispatch: too many duplicate names for %s.%s", base, ext)
}
