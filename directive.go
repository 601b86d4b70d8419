package main

import (
	"strings"

	"github.com/BurntSushi/toml"
)

const directivePrefix = "//#"

// Manifest sections a directive is not allowed to define. Package identity
// always comes from the skeleton.
var reservedSections = map[string]bool{
	"package":   true,
	"bin":       true,
	"lib":       true,
	"workspace": true,
	"profile":   true,
}

// scanDirectives splits content into directive lines and the remaining body.
// The block starts at the top of the file, after an optional shebang and any
// leading blank lines, and runs while lines carry the //# prefix. A blank
// line inside the block ends it unless allowBlank is set. Lines prefixed
// with "dev:" after the marker are routed to dev-dependencies.
func scanDirectives(content string, allowBlank bool) (deps, devDeps []string, body string) {
	lines := strings.Split(content, "\n")
	i := 0

	// shebang and leading blanks never count against the block
	for i < len(lines) && (strings.HasPrefix(lines[i], "#!") || strings.TrimSpace(lines[i]) == "") {
		i++
	}

	for i < len(lines) {
		line := lines[i]
		if strings.TrimSpace(line) == "" && allowBlank {
			i++
			continue
		}
		if !strings.HasPrefix(line, directivePrefix) {
			break
		}
		rest := strings.TrimSpace(line[len(directivePrefix):])
		switch {
		case rest == "":
		case strings.HasPrefix(rest, "dev:"):
			if dev := strings.TrimSpace(rest[len("dev:"):]); dev != "" {
				devDeps = append(devDeps, dev)
			}
		default:
			deps = append(deps, rest)
		}
		i++
	}

	return deps, devDeps, strings.Join(lines[i:], "\n")
}

// parseFragment decodes the extracted directive lines of one file into a
// Fragment. Malformed TOML and reserved manifest sections are fatal and
// reported against the originating file.
func parseFragment(file string, deps, devDeps []string) (Fragment, error) {
	frag := Fragment{File: file}

	var err error
	if frag.Deps, err = decodeDirectiveTable(strings.Join(deps, "\n")); err != nil {
		return Fragment{}, &DirectiveParseError{File: file, Err: err}
	}
	if frag.DevDeps, err = decodeDirectiveTable(strings.Join(devDeps, "\n")); err != nil {
		return Fragment{}, &DirectiveParseError{File: file, Err: err}
	}

	for _, table := range []map[string]interface{}{frag.Deps, frag.DevDeps} {
		for name := range table {
			if reservedSections[name] {
				return Fragment{}, &DirectiveParseError{
					File: file,
					Err:  errReservedSection(name),
				}
			}
		}
	}
	return frag, nil
}

func decodeDirectiveTable(text string) (map[string]interface{}, error) {
	table := map[string]interface{}{}
	if strings.TrimSpace(text) == "" {
		return table, nil
	}
	if _, err := toml.Decode(text, &table); err != nil {
		return nil, err
	}
	return table, nil
}

type errReservedSection string

func (e errReservedSection) Error() string {
	return "directives may only declare dependencies, not [" + string(e) + "]"
}

// extractSource reads nothing itself; it takes the raw bytes of one input
// and produces the immutable SourceFile the rest of the pipeline works on.
func extractSource(path string, raw []byte, allowBlank bool) (SourceFile, error) {
	deps, devDeps, body := scanDirectives(string(raw), allowBlank)
	frag, err := parseFragment(path, deps, devDeps)
	if err != nil {
		return SourceFile{}, err
	}
	return SourceFile{Path: path, Raw: raw, Fragment: frag, Body: body}, nil
}
