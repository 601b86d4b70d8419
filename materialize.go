package main

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/agilira/orpheus/pkg/orpheus"
	"go.uber.org/zap"
)

// TempProject is a materialized project directory, owned by the run that
// created it until cargo takes over.
type TempProject struct {
	Identity string
	Dir      string
	Reused   bool
}

// Materializer writes merged manifests and source bodies into Store
// directories. The store is passed in explicitly so tests can point it at
// a scratch root.
type Materializer struct {
	store *Store
	log   *zap.Logger
}

func NewMaterializer(store *Store, log *zap.Logger) *Materializer {
	return &Materializer{store: store, log: log}
}

// plannedFile is one file the project layout expects, with the exact bytes
// it must contain.
type plannedFile struct {
	path string
	data []byte
}

// Materialize lays the project out on disk, or reuses the existing
// directory when every expected file already matches byte-for-byte. Any
// write failure removes the directory: a half-written project must never
// pass the next reuse check.
func (m *Materializer) Materialize(identity string, manifest []byte, files []SourceFile) (*TempProject, error) {
	dir := m.store.Dir(identity)
	layout, err := projectLayout(dir, manifest, files)
	if err != nil {
		return nil, err
	}

	if wellFormed(layout) {
		m.log.Debug("reusing project directory", zap.String("dir", dir))
		return &TempProject{Identity: identity, Dir: dir, Reused: true}, nil
	}

	m.log.Debug("materializing project", zap.String("dir", dir), zap.Int("files", len(layout)))
	for _, pf := range layout {
		if err := writeFileAtomic(pf.path, pf.data, 0o644); err != nil {
			_ = os.RemoveAll(dir)
			return nil, &MaterializationError{Path: pf.path, Err: err}
		}
	}
	return &TempProject{Identity: identity, Dir: dir}, nil
}

// projectLayout computes the expected on-disk shape: the manifest, the entry
// point as src/main.rs, and every further input as a module file at its
// path relative to the entry point's directory.
func projectLayout(dir string, manifest []byte, files []SourceFile) ([]plannedFile, error) {
	layout := []plannedFile{
		{path: filepath.Join(dir, "Cargo.toml"), data: manifest},
	}
	if len(files) == 0 {
		return layout, nil
	}

	src := filepath.Join(dir, "src")
	layout = append(layout, plannedFile{
		path: filepath.Join(src, "main.rs"),
		data: []byte(files[0].Body),
	})

	base := filepath.Dir(files[0].Path)
	for _, f := range files[1:] {
		rel, err := filepath.Rel(base, f.Path)
		if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
			return nil, &MaterializationError{
				Path: f.Path,
				Err:  fmt.Errorf("not reachable from entry point directory %s", base),
			}
		}
		layout = append(layout, plannedFile{
			path: filepath.Join(src, rel),
			data: []byte(f.Body),
		})
	}
	return layout, nil
}

// wellFormed reports whether every planned file already exists with exactly
// the planned content.
func wellFormed(layout []plannedFile) bool {
	for _, pf := range layout {
		got, err := os.ReadFile(pf.path)
		if err != nil || !bytes.Equal(got, pf.data) {
			return false
		}
	}
	return true
}

// writeFileAtomic writes via a temp name in the target directory and
// renames into place, so a crash mid-write leaves no partial file under the
// final name.
func writeFileAtomic(path string, data []byte, perm os.FileMode) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	tmp, err := os.CreateTemp(dir, ".play-*")
	if err != nil {
		return err
	}
	name := tmp.Name()
	if _, err = tmp.Write(data); err == nil {
		err = tmp.Chmod(perm)
	}
	if cerr := tmp.Close(); err == nil {
		err = cerr
	}
	if err == nil {
		err = os.Rename(name, path)
	}
	if err != nil {
		_ = os.Remove(name)
	}
	return err
}

// saveProject exports a materialized project to dest for the user to keep.
// dest must not already exist.
func saveProject(dir, dest string) error {
	if _, err := os.Stat(dest); err == nil {
		return orpheus.ExecutionError("save", fmt.Sprintf("destination already exists: %s", dest))
	}
	err := filepath.WalkDir(dir, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		rel, err := filepath.Rel(dir, path)
		if err != nil {
			return err
		}
		target := filepath.Join(dest, rel)
		if d.IsDir() {
			return os.MkdirAll(target, 0o755)
		}
		return copyFile(path, target)
	})
	if err != nil {
		return &MaterializationError{Path: dest, Err: err}
	}
	fmt.Printf("Generated project at %s\n", dest)
	return nil
}

func copyFile(from, to string) error {
	in, err := os.Open(from)
	if err != nil {
		return err
	}
	defer in.Close()
	out, err := os.Create(to)
	if err != nil {
		return err
	}
	if _, err = io.Copy(out, in); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}
