/*
 * TSBTAPE - Tape directory catalog tests.
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
	"bytes"
	"strings"
	"testing"

	"github.com/rcornwell/tsbtape/internal/simhtape"
	"github.com/rcornwell/tsbtape/internal/tsbconfig"
	"github.com/rcornwell/tsbtape/internal/tsbdir"
)

func buildCatalogTape(t *testing.T, lbl tsbdir.Label, entries []tsbdir.Entry) *simhtape.Reader {
	t.Helper()
	var buf bytes.Buffer
	w := simhtape.NewWriter(&buf)
	if err := w.WriteBlock(tsbdir.EncodeLabel(lbl, -10)); err != nil {
		t.Fatalf("WriteBlock label: %v", err)
	}
	if err := w.WriteMark(); err != nil {
		t.Fatalf("WriteMark: %v", err)
	}
	for _, e := range entries {
		if err := w.WriteBlock(tsbdir.EncodeEntry(e)); err != nil {
			t.Fatalf("WriteBlock entry: %v", err)
		}
		if err := w.WriteMark(); err != nil {
			t.Fatalf("WriteMark: %v", err)
		}
	}
	return simhtape.NewReader(bytes.NewReader(buf.Bytes()))
}

func TestCatalogPrintsLabelAndEntry(t *testing.T) {
	lbl := tsbdir.Label{
		Reel:      1,
		Date:      tsbdir.Date{Year: 1990, Day: 1},
		OSLevel:   tsbconfig.SysLevelAccess,
		FeatLevel: tsbconfig.FeatLevelAccess,
	}
	entry := tsbdir.Entry{
		UserLetter:  'C',
		UserNumber:  513,
		Name:        "HELLO ",
		LengthWords: -10,
	}
	tap := buildCatalogTape(t, lbl, []tsbdir.Entry{entry})

	var out bytes.Buffer
	code, err := Catalog(tap, &out, tsbconfig.Context{})
	if err != nil {
		t.Fatalf("Catalog: %v", err)
	}
	if code != 0 {
		t.Fatalf("exit code = %d, want 0", code)
	}

	text := out.String()
	if !strings.Contains(text, "reel 1") {
		t.Errorf("output %q missing reel header", text)
	}
	if !strings.Contains(text, "C513:") {
		t.Errorf("output %q missing uid group header", text)
	}
	if !strings.Contains(text, "HELLO") || !strings.Contains(text, "10") {
		t.Errorf("output %q missing entry line", text)
	}
}

func TestCatalogGroupsEntriesByUID(t *testing.T) {
	lbl := tsbdir.Label{OSLevel: tsbconfig.SysLevel2000F, FeatLevel: tsbconfig.FeatLevel2000F}
	entries := []tsbdir.Entry{
		{UserLetter: 'A', UserNumber: 1, Name: "ONE   ", LengthWords: -1},
		{UserLetter: 'A', UserNumber: 1, Name: "TWO   ", LengthWords: -2},
		{UserLetter: 'B', UserNumber: 2, Name: "THREE ", LengthWords: -3},
	}
	tap := buildCatalogTape(t, lbl, entries)

	var out bytes.Buffer
	if _, err := Catalog(tap, &out, tsbconfig.Context{}); err != nil {
		t.Fatalf("Catalog: %v", err)
	}
	text := out.String()
	if strings.Count(text, "A001:") != 1 {
		t.Errorf("expected one A001 group header, got %q", text)
	}
	if !strings.Contains(text, "B002:") {
		t.Errorf("output %q missing B002 group header", text)
	}
}

func TestCatalogVerboseShowsDate(t *testing.T) {
	lbl := tsbdir.Label{OSLevel: tsbconfig.SysLevelAccess, FeatLevel: tsbconfig.FeatLevelAccess}
	entry := tsbdir.Entry{
		UserLetter:  'C',
		UserNumber:  1,
		Name:        "FOO   ",
		AccessDate:  tsbdir.Date{Year: 1988, Day: 12},
		LengthWords: -5,
	}
	tap := buildCatalogTape(t, lbl, []tsbdir.Entry{entry})

	var out bytes.Buffer
	if _, err := Catalog(tap, &out, tsbconfig.Context{Verbose: 1}); err != nil {
		t.Fatalf("Catalog: %v", err)
	}
	if !strings.Contains(out.String(), "12-Jan-1988") {
		t.Errorf("verbose output %q missing access date", out.String())
	}
}

func TestCatalogBASICFormattedLengthPrintedUnsigned(t *testing.T) {
	lbl := tsbdir.Label{OSLevel: tsbconfig.SysLevel2000F}
	entry := tsbdir.Entry{
		UserLetter:     'D',
		UserNumber:     9,
		Name:           "DATA  ",
		BASICFormatted: true,
		LengthWords:    7, // record files store the length unsigned on tape
	}
	tap := buildCatalogTape(t, lbl, []tsbdir.Entry{entry})

	var out bytes.Buffer
	if _, err := Catalog(tap, &out, tsbconfig.Context{}); err != nil {
		t.Fatalf("Catalog: %v", err)
	}
	if !strings.Contains(out.String(), "F") {
		t.Errorf("output %q missing F type marker", out.String())
	}
	if !strings.Contains(out.String(), "F      7") {
		t.Errorf("output %q missing unsigned length 7", out.String())
	}
}
