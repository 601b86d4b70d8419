package main

import (
	"os"
	"path/filepath"

	"go.uber.org/zap"
)

// Store is the content-addressed collection of materialized projects, one
// directory per ProjectIdentity under Root. Repeated runs on unchanged
// input land in the same directory, which is what makes cargo's own
// incremental build kick in. Two simultaneous invocations with the same
// identity may race on materialization; the store makes no mutual-exclusion
// guarantee.
type Store struct {
	Root string
	log  *zap.Logger
}

func NewStore(root string, log *zap.Logger) *Store {
	return &Store{Root: root, log: log}
}

// Dir maps an identity to its project directory.
func (s *Store) Dir(identity string) string {
	return filepath.Join(s.Root, "cargo-play."+identity)
}

// Remove drops the project directory for identity. A directory that never
// existed is not an error.
func (s *Store) Remove(identity string) error {
	dir := s.Dir(identity)
	s.log.Debug("removing project directory", zap.String("dir", dir))
	err := os.RemoveAll(dir)
	if err != nil && !os.IsNotExist(err) {
		return &MaterializationError{Path: dir, Err: err}
	}
	return nil
}
