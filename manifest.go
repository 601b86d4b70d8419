package main

import (
	"bytes"
	"reflect"
	"strings"

	"github.com/BurntSushi/toml"
)

// Fragment is the parsed directive subtree of one input file, attributed to
// its origin for error messages.
type Fragment struct {
	File    string
	Deps    map[string]interface{}
	DevDeps map[string]interface{}
}

type cargoPackage struct {
	Name    string `toml:"name"`
	Version string `toml:"version"`
	Edition string `toml:"edition"`
}

type cargoBin struct {
	Name string `toml:"name"`
	Path string `toml:"path"`
}

// Manifest is the merged Cargo.toml document: skeleton identity fields plus
// every fragment's dependency entries.
type Manifest struct {
	Package         cargoPackage           `toml:"package"`
	Bin             []cargoBin             `toml:"bin"`
	Dependencies    map[string]interface{} `toml:"dependencies"`
	DevDependencies map[string]interface{} `toml:"dev-dependencies,omitempty"`
}

// origin remembers which file first contributed a key, for conflict reports.
type origin struct {
	value interface{}
	file  string
}

// mergeManifest folds fragments into the skeleton in input-file order.
// Identical duplicate values deduplicate; differing values for the same key
// fail with a MergeConflictError naming both contributors. The skeleton's
// package fields are never touched by fragments.
func mergeManifest(name, edition string, fragments []Fragment) (*Manifest, error) {
	m := &Manifest{
		Package: cargoPackage{
			Name:    name,
			Version: "0.1.0",
			Edition: edition,
		},
		Bin: []cargoBin{{
			Name: name,
			Path: "src/main.rs",
		}},
		Dependencies:    map[string]interface{}{},
		DevDependencies: map[string]interface{}{},
	}

	seenDeps := map[string]origin{}
	seenDev := map[string]origin{}
	for _, frag := range fragments {
		if err := mergeTable(m.Dependencies, seenDeps, "dependencies", frag.File, frag.Deps); err != nil {
			return nil, err
		}
		if err := mergeTable(m.DevDependencies, seenDev, "dev-dependencies", frag.File, frag.DevDeps); err != nil {
			return nil, err
		}
	}
	return m, nil
}

func mergeTable(dst map[string]interface{}, seen map[string]origin, section, file string, src map[string]interface{}) error {
	for key, value := range src {
		prev, ok := seen[key]
		if !ok {
			seen[key] = origin{value: value, file: file}
			dst[key] = value
			continue
		}
		if !reflect.DeepEqual(prev.value, value) {
			return &MergeConflictError{
				Key:        section + "." + key,
				FirstFile:  prev.file,
				SecondFile: file,
			}
		}
	}
	return nil
}

// addInferred joins crates discovered by source scanning at version "*",
// skipping anything already declared. Comparison normalizes dashes to
// underscores since use statements cannot contain a dash.
func (m *Manifest) addInferred(crates map[string]struct{}) {
	declared := map[string]bool{}
	for name := range m.Dependencies {
		declared[strings.ReplaceAll(name, "-", "_")] = true
	}
	for name := range crates {
		if !declared[name] {
			m.Dependencies[name] = "*"
		}
	}
}

// render produces the Cargo.toml bytes. The encoder writes struct fields in
// declaration order and map keys sorted, so equal manifests always render
// to equal bytes; the identity hash depends on that.
func (m *Manifest) render() ([]byte, error) {
	var buf bytes.Buffer
	if err := toml.NewEncoder(&buf).Encode(m); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
