package main

import "regexp"

// Crate references at the top level of a use or extern crate statement.
var (
	useStmt    = regexp.MustCompile(`(?m)^\s*(?:pub\s+)?use\s+(?:::)?([A-Za-z_][A-Za-z0-9_]*)\s*(?:::|;)`)
	externStmt = regexp.MustCompile(`(?m)^\s*extern\s+crate\s+([A-Za-z_][A-Za-z0-9_]*)`)
)

// Names that appear in use paths but never name an external crate.
var builtinCrates = map[string]bool{
	"std":        true,
	"core":       true,
	"alloc":      true,
	"crate":      true,
	"self":       true,
	"super":      true,
	"proc_macro": true,
}

// inferCrates scans the directive-stripped bodies for crates referenced by
// use and extern crate statements. Best effort: cargo remains the authority
// on whether the result resolves.
func inferCrates(files []SourceFile) map[string]struct{} {
	crates := map[string]struct{}{}
	for _, f := range files {
		for _, re := range []*regexp.Regexp{useStmt, externStmt} {
			for _, match := range re.FindAllStringSubmatch(f.Body, -1) {
				if name := match[1]; !builtinCrates[name] {
					crates[name] = struct{}{}
				}
			}
		}
	}
	return crates
}
