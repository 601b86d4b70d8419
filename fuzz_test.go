//go:build go1.18
// +build go1.18

package main

import (
	"strings"
	"testing"
	"unicode/utf8"
)

// ===== FUZZ TESTS FOR INPUT PROCESSING =====

// FuzzScanDirectives exercises the directive scanner with arbitrary file
// content. The scanner processes user-controlled bytes before any other
// stage, so it must never panic and must keep its body invariant.
func FuzzScanDirectives(f *testing.F) {
	f.Add("//# serde = \"1.0\"\nfn main() {}\n", false)
	f.Add("#!/usr/bin/env cargo-play\n//# a = \"1\"\n", false)
	f.Add("//# a = \"1\"\n\n//# b = \"2\"\n", true)
	f.Add("//#\n//#\n//#", false)
	f.Add("", false)
	f.Add("\n\n\n", true)
	f.Add("//# dev: x = \"*\"\nbody", false)
	f.Add(strings.Repeat("//# k = \"v\"\n", 50), false)

	f.Fuzz(func(t *testing.T, content string, allowBlank bool) {
		if !utf8.ValidString(content) {
			t.Skip("invalid UTF-8 input")
		}
		if len(content) > 1<<16 {
			t.Skip("input too long")
		}

		defer func() {
			if r := recover(); r != nil {
				t.Errorf("scanDirectives panicked on %q: %v", content, r)
			}
		}()

		deps, devDeps, body := scanDirectives(content, allowBlank)

		// The body is always a literal suffix of the input.
		if !strings.HasSuffix(content, body) {
			t.Errorf("body %q is not a suffix of input %q", body, content)
		}

		// Directive lines are single lines with the prefix stripped.
		for _, d := range append(append([]string(nil), deps...), devDeps...) {
			if strings.Contains(d, "\n") {
				t.Errorf("directive %q spans lines", d)
			}
			if d == "" {
				t.Error("empty directive survived scanning")
			}
		}
	})
}
