package main

import (
	"errors"
	"fmt"
)

// Exit codes for failures that happen before cargo produces a result of its
// own. A nonzero exit from cargo (or from the program it runs) is forwarded
// verbatim and never remapped.
const (
	ExitUsage           = 1
	ExitDirectiveParse  = 2
	ExitMergeConflict   = 3
	ExitMaterialization = 4
	ExitBuildProcess    = 5
)

// DirectiveParseError reports a malformed //# fragment. Err is the TOML
// decode error and carries the position inside the fragment.
type DirectiveParseError struct {
	File string
	Err  error
}

func (e *DirectiveParseError) Error() string {
	return fmt.Sprintf("%s: invalid dependency directive: %v", e.File, e.Err)
}

func (e *DirectiveParseError) Unwrap() error { return e.Err }

// MergeConflictError reports two files asserting different values for the
// same manifest key.
type MergeConflictError struct {
	Key        string
	FirstFile  string
	SecondFile string
}

func (e *MergeConflictError) Error() string {
	return fmt.Sprintf("conflicting values for %s: declared by both %s and %s",
		e.Key, e.FirstFile, e.SecondFile)
}

// MaterializationError reports a filesystem failure while preparing the
// temporary project.
type MaterializationError struct {
	Path string
	Err  error
}

func (e *MaterializationError) Error() string {
	return fmt.Sprintf("cannot materialize %s: %v", e.Path, e.Err)
}

func (e *MaterializationError) Unwrap() error { return e.Err }

// BuildProcessError reports that the external tool could not be spawned at
// all, as opposed to running and exiting nonzero.
type BuildProcessError struct {
	Tool string
	Err  error
}

func (e *BuildProcessError) Error() string {
	return fmt.Sprintf("cannot spawn %s: %v", e.Tool, e.Err)
}

func (e *BuildProcessError) Unwrap() error { return e.Err }

// exitCodeFor maps a pipeline error onto the exit-code table above.
func exitCodeFor(err error) int {
	var (
		directive   *DirectiveParseError
		conflict    *MergeConflictError
		materialize *MaterializationError
		spawn       *BuildProcessError
	)
	switch {
	case errors.As(err, &directive):
		return ExitDirectiveParse
	case errors.As(err, &conflict):
		return ExitMergeConflict
	case errors.As(err, &materialize):
		return ExitMaterialization
	case errors.As(err, &spawn):
		return ExitBuildProcess
	default:
		return ExitUsage
	}
}
