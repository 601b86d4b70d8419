package main

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/BurntSushi/toml"
)

// ===== MANIFEST MERGE TESTS =====

func TestMergeManifestSkeleton(t *testing.T) {
	m, err := mergeManifest("play-abc", "2018", nil)
	if err != nil {
		t.Fatalf("mergeManifest() unexpected error: %v", err)
	}
	if m.Package.Name != "play-abc" || m.Package.Version != "0.1.0" || m.Package.Edition != "2018" {
		t.Errorf("skeleton package = %+v", m.Package)
	}
	if len(m.Bin) != 1 || m.Bin[0].Name != "play-abc" || m.Bin[0].Path != "src/main.rs" {
		t.Errorf("skeleton bin = %+v", m.Bin)
	}
}

func TestMergeManifestDuplicatesAndConflicts(t *testing.T) {
	tests := []struct {
		name      string
		fragments []Fragment
		wantErr   bool
		wantKey   string
		check     func(*testing.T, *Manifest)
	}{
		{
			name: "identical duplicates deduplicate",
			fragments: []Fragment{
				{File: "a.rs", Deps: map[string]interface{}{"dep": "1.0"}},
				{File: "b.rs", Deps: map[string]interface{}{"dep": "1.0"}},
			},
			check: func(t *testing.T, m *Manifest) {
				if m.Dependencies["dep"] != "1.0" {
					t.Errorf("Dependencies[dep] = %v, want 1.0", m.Dependencies["dep"])
				}
				if len(m.Dependencies) != 1 {
					t.Errorf("dependency count = %d, want 1", len(m.Dependencies))
				}
			},
		},
		{
			name: "conflicting versions fail",
			fragments: []Fragment{
				{File: "a.rs", Deps: map[string]interface{}{"dep": "1.0"}},
				{File: "b.rs", Deps: map[string]interface{}{"dep": "2.0"}},
			},
			wantErr: true,
			wantKey: "dependencies.dep",
		},
		{
			name: "equal inline tables deduplicate",
			fragments: []Fragment{
				{File: "a.rs", Deps: map[string]interface{}{"dep": map[string]interface{}{"version": "1.0"}}},
				{File: "b.rs", Deps: map[string]interface{}{"dep": map[string]interface{}{"version": "1.0"}}},
			},
			check: func(t *testing.T, m *Manifest) {
				if len(m.Dependencies) != 1 {
					t.Errorf("dependency count = %d, want 1", len(m.Dependencies))
				}
			},
		},
		{
			name: "string versus table conflicts",
			fragments: []Fragment{
				{File: "a.rs", Deps: map[string]interface{}{"dep": "1.0"}},
				{File: "b.rs", Deps: map[string]interface{}{"dep": map[string]interface{}{"version": "1.0"}}},
			},
			wantErr: true,
			wantKey: "dependencies.dep",
		},
		{
			name: "dev dependencies merge separately",
			fragments: []Fragment{
				{File: "a.rs", Deps: map[string]interface{}{"dep": "1.0"}},
				{File: "b.rs", DevDeps: map[string]interface{}{"dep": "2.0"}},
			},
			check: func(t *testing.T, m *Manifest) {
				if m.Dependencies["dep"] != "1.0" || m.DevDependencies["dep"] != "2.0" {
					t.Errorf("deps = %v, dev = %v", m.Dependencies, m.DevDependencies)
				}
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, err := mergeManifest("play-x", "2018", tt.fragments)
			if tt.wantErr {
				var conflict *MergeConflictError
				if !errors.As(err, &conflict) {
					t.Fatalf("error = %v, want *MergeConflictError", err)
				}
				if conflict.Key != tt.wantKey {
					t.Errorf("Key = %q, want %q", conflict.Key, tt.wantKey)
				}
				if conflict.FirstFile != "a.rs" || conflict.SecondFile != "b.rs" {
					t.Errorf("files = %q/%q, want a.rs/b.rs", conflict.FirstFile, conflict.SecondFile)
				}
				if !strings.Contains(err.Error(), "a.rs") || !strings.Contains(err.Error(), "b.rs") {
					t.Errorf("message %q does not name both files", err.Error())
				}
				return
			}
			if err != nil {
				t.Fatalf("mergeManifest() unexpected error: %v", err)
			}
			tt.check(t, m)
		})
	}
}

func TestMergeManifestIdempotent(t *testing.T) {
	frag := Fragment{File: "a.rs", Deps: map[string]interface{}{"serde": "1.0", "rand": "0.8"}}

	once, err := mergeManifest("play-x", "2018", []Fragment{frag})
	if err != nil {
		t.Fatalf("single merge failed: %v", err)
	}
	twice, err := mergeManifest("play-x", "2018", []Fragment{frag, frag})
	if err != nil {
		t.Fatalf("double merge failed: %v", err)
	}

	a, err := once.render()
	if err != nil {
		t.Fatalf("render failed: %v", err)
	}
	b, err := twice.render()
	if err != nil {
		t.Fatalf("render failed: %v", err)
	}
	if !bytes.Equal(a, b) {
		t.Errorf("merging the same fragment twice changed the manifest:\n%s\nvs\n%s", a, b)
	}
}

// ===== RENDERING TESTS =====

func TestRenderDeterministic(t *testing.T) {
	m, err := mergeManifest("play-x", "2021", []Fragment{{
		File: "a.rs",
		Deps: map[string]interface{}{"zzz": "1", "aaa": "2", "mmm": "3"},
	}})
	if err != nil {
		t.Fatalf("mergeManifest() failed: %v", err)
	}

	first, err := m.render()
	if err != nil {
		t.Fatalf("render failed: %v", err)
	}
	for i := 0; i < 5; i++ {
		again, err := m.render()
		if err != nil {
			t.Fatalf("render failed: %v", err)
		}
		if !bytes.Equal(first, again) {
			t.Fatalf("render is not deterministic:\n%s\nvs\n%s", first, again)
		}
	}
}

func TestRenderRoundTrips(t *testing.T) {
	m, err := mergeManifest("play-x", "2018", []Fragment{{
		File: "a.rs",
		Deps: map[string]interface{}{
			"serde": "1.0",
			"rand":  map[string]interface{}{"version": "0.8"},
		},
		DevDeps: map[string]interface{}{"criterion": "0.5"},
	}})
	if err != nil {
		t.Fatalf("mergeManifest() failed: %v", err)
	}
	rendered, err := m.render()
	if err != nil {
		t.Fatalf("render failed: %v", err)
	}

	var decoded struct {
		Package         cargoPackage           `toml:"package"`
		Bin             []cargoBin             `toml:"bin"`
		Dependencies    map[string]interface{} `toml:"dependencies"`
		DevDependencies map[string]interface{} `toml:"dev-dependencies"`
	}
	if _, err := toml.Decode(string(rendered), &decoded); err != nil {
		t.Fatalf("rendered manifest is not valid TOML: %v\n%s", err, rendered)
	}
	if decoded.Package.Name != "play-x" || decoded.Package.Edition != "2018" {
		t.Errorf("package = %+v", decoded.Package)
	}
	if decoded.Dependencies["serde"] != "1.0" {
		t.Errorf("dependencies.serde = %v", decoded.Dependencies["serde"])
	}
	if decoded.DevDependencies["criterion"] != "0.5" {
		t.Errorf("dev-dependencies.criterion = %v", decoded.DevDependencies["criterion"])
	}
}

// ===== INFERENCE TESTS =====

func TestAddInferred(t *testing.T) {
	m, err := mergeManifest("play-x", "2018", []Fragment{{
		File: "a.rs",
		Deps: map[string]interface{}{"serde-json": "1.0"},
	}})
	if err != nil {
		t.Fatalf("mergeManifest() failed: %v", err)
	}

	m.addInferred(map[string]struct{}{
		"serde_json": {}, // already declared as serde-json
		"rand":       {},
	})

	if _, ok := m.Dependencies["serde_json"]; ok {
		t.Error("declared dependency re-added under normalized name")
	}
	if m.Dependencies["rand"] != "*" {
		t.Errorf("Dependencies[rand] = %v, want *", m.Dependencies["rand"])
	}
}

func TestInferCrates(t *testing.T) {
	files := []SourceFile{
		{Body: "use rand::Rng;\nuse std::io;\nextern crate flate2;\nfn main() {}\n"},
		{Body: "pub use serde::Serialize;\nuse crate::helper;\nuse self::x;\n"},
	}
	got := inferCrates(files)

	for _, want := range []string{"rand", "flate2", "serde"} {
		if _, ok := got[want]; !ok {
			t.Errorf("missing inferred crate %q (got %v)", want, got)
		}
	}
	for _, banned := range []string{"std", "crate", "self"} {
		if _, ok := got[banned]; ok {
			t.Errorf("builtin %q inferred as a crate", banned)
		}
	}
}
