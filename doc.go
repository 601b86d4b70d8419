/*
Package main implements cargo-play, a runner for loose Rust source files.

cargo-play takes one or more .rs files, synthesizes a temporary Cargo
package around them and hands the result to cargo, so a single file can be
built and run without hand-authoring a manifest and directory layout.

# Dependency Directives

External dependencies are declared inline at the top of a source file, one
per line, prefixed with //#. The text after the prefix is ordinary
Cargo.toml dependency syntax:

	//# serde = "1.0"
	//# rand = { version = "0.8", features = ["small_rng"] }
	//# dev: criterion = "0.5"

	fn main() {
	    println!("hello");
	}

A "dev:" marker routes the line to dev-dependencies. The block is contiguous
from the top of the file (after an optional shebang); the first
non-directive line ends it. Whether a blank line inside the block ends it
too is a configuration choice (see below).

Directives from all input files are merged into one manifest. The same
dependency declared twice with the same value is deduplicated; two files
declaring different values for the same dependency is a merge conflict and
aborts the run naming both files.

# Project Materialization

Each run computes a fingerprint over the input paths, their contents and
the merged manifest, and materializes the project under a directory keyed
by that fingerprint in the OS temp dir. Re-running on unchanged input finds
every file already in place and performs no writes, which lets cargo's
incremental build make repeated runs near-instant. The first input file
becomes src/main.rs; further files are placed as modules at their paths
relative to the entry point.

The directory is removed when the run finishes unless -keep or -cached is
set. With -cached, a binary produced by a previous run is executed directly
without invoking cargo at all.

# Usage

	cargo-play hello.rs
	cargo-play -release -cached main.rs util.rs -- --port 8080
	cargo-play -a test -e 2021 lib_under_test.rs
	cargo-play -save ./myproject main.rs

Arguments after -- are forwarded to the program. A leading +nightly selects
the toolchain, and invocation as "cargo play" works as well. The exit code
is cargo's (or the program's) own exit code; failures before cargo is
invoked use distinct codes (2 directive parse, 3 merge conflict, 4
materialization I/O, 5 tool spawn).

# Configuration

An optional cargo-play.yaml in the working directory supplies defaults:

	edition: "2021"
	toolchain: nightly
	cached: true
	directives:
	  allow_blank: true

directives.allow_blank makes the scanner skip blank lines inside the
directive block instead of treating them as terminators.
*/
package main
