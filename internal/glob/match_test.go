/*
 * TSBTAPE - File-name argument matching tests.
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

package glob

import "testing"

func TestPatternMatch(t *testing.T) {
	cases := []struct {
		pattern  string
		uid      string
		name     string
		wantBool bool
	}{
		{"HELLO", "C513", "HELLO", true},
		{"hello", "C513", "HELLO", true},
		{"HEL*", "C513", "HELLO", true},
		{"HEL?O", "C513", "HELLO", true},
		{"GOODBYE", "C513", "HELLO", false},
		{"C513/HELLO", "C513", "HELLO", true},
		{"C999/HELLO", "C513", "HELLO", false},
		{"*/HELLO", "C513", "HELLO", true},
		{"HELLO", "C513", "HELLO  ", true}, // trailing-space-padded tape name
	}

	for _, c := range cases {
		p, err := Compile(c.pattern)
		if err != nil {
			t.Fatalf("Compile(%q): %v", c.pattern, err)
		}
		if got := p.Match(c.uid, c.name); got != c.wantBool {
			t.Errorf("Compile(%q).Match(%q,%q) = %v, want %v", c.pattern, c.uid, c.name, got, c.wantBool)
		}
	}
}

func TestSetUnmatched(t *testing.T) {
	s, err := CompileSet([]string{"HELLO", "MISSING"})
	if err != nil {
		t.Fatalf("CompileSet: %v", err)
	}
	if !s.Match("C513", "HELLO") {
		t.Fatal("expected HELLO to match")
	}
	unmatched := s.Unmatched()
	if len(unmatched) != 1 || unmatched[0] != "MISSING" {
		t.Fatalf("got %v, want [MISSING]", unmatched)
	}
}

func TestSetEmptyMatchesAll(t *testing.T) {
	s, err := CompileSet(nil)
	if err != nil {
		t.Fatalf("CompileSet: %v", err)
	}
	if !s.Match("C513", "ANYTHING") {
		t.Fatal("empty set should match everything")
	}
}
