/*
 * TSBTAPE - File-name argument matching (name or uid/name, with wildcards).
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

// Package glob implements spec.md §6's file-argument match syntax: each
// argument is either "name" or "uid/name", matched case-insensitively
// with *, ?, and character-class wildcards.
package glob

import (
	"fmt"
	"strings"

	"github.com/gobwas/glob"
)

// Pattern matches a catalog entry's (uid, name) pair against a single CLI
// file argument.
type Pattern struct {
	uid  glob.Glob // nil means "any uid"
	name glob.Glob
	raw  string
}

// Compile parses a single file argument ("name" or "uid/name") into a
// Pattern. gobwas/glob is case-sensitive, so both the pattern and the
// candidates it is matched against are lower-cased first.
func Compile(arg string) (*Pattern, error) {
	uidPart, namePart, hasUID := strings.Cut(arg, "/")
	if !hasUID {
		namePart = uidPart
		uidPart = ""
	}

	p := &Pattern{raw: arg}
	if uidPart != "" {
		g, err := glob.Compile(strings.ToLower(uidPart))
		if err != nil {
			return nil, fmt.Errorf("glob: bad uid pattern %q: %w", uidPart, err)
		}
		p.uid = g
	}
	g, err := glob.Compile(strings.ToLower(namePart))
	if err != nil {
		return nil, fmt.Errorf("glob: bad name pattern %q: %w", namePart, err)
	}
	p.name = g
	return p, nil
}

// Match reports whether uid/name satisfies the pattern.
func (p *Pattern) Match(uid, name string) bool {
	if p.uid != nil && !p.uid.Match(strings.ToLower(uid)) {
		return false
	}
	return p.name.Match(strings.ToLower(strings.TrimRight(name, " ")))
}

// String returns the original argument text, for "file not found"
// reporting.
func (p *Pattern) String() string { return p.raw }

// Set compiles every argument and tracks, for each, whether it matched at
// least one catalog entry (spec.md §6 exit code 3: "at least one requested
// file not found").
type Set struct {
	patterns []*Pattern
	matched  []bool
}

// CompileSet compiles every argument in args.
func CompileSet(args []string) (*Set, error) {
	s := &Set{patterns: make([]*Pattern, len(args)), matched: make([]bool, len(args))}
	for i, a := range args {
		p, err := Compile(a)
		if err != nil {
			return nil, err
		}
		s.patterns[i] = p
	}
	return s, nil
}

// Match reports whether uid/name matches any pattern in the set, marking
// every matching pattern as satisfied. An empty set matches everything
// (no -x/-d arguments means "all files").
func (s *Set) Match(uid, name string) bool {
	if len(s.patterns) == 0 {
		return true
	}
	matched := false
	for i, p := range s.patterns {
		if p.Match(uid, name) {
			s.matched[i] = true
			matched = true
		}
	}
	return matched
}

// Unmatched returns the original argument text of every pattern that
// never matched a catalog entry.
func (s *Set) Unmatched() []string {
	var out []string
	for i, p := range s.patterns {
		if !s.matched[i] {
			out = append(out, p.String())
		}
	}
	return out
}
