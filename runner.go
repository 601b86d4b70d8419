package main

import (
	"errors"
	"os"
	"os/exec"
	"os/signal"
	"strings"
	"syscall"

	"go.uber.org/zap"
)

// cargoArgs assembles the cargo invocation for one Opt: optional +toolchain,
// the subcommand, profile, user-supplied cargo flags, and the program args
// after a literal --.
func cargoArgs(opt *Opt) []string {
	var args []string
	if opt.Toolchain != "" {
		args = append(args, "+"+opt.Toolchain)
	}
	args = append(args, string(opt.Action))
	if opt.Release && opt.Action != ActionTest {
		args = append(args, "--release")
	}
	if opt.CargoOption != "" {
		args = append(args, strings.Fields(opt.CargoOption)...)
	}
	if len(opt.Args) > 0 {
		args = append(args, "--")
		args = append(args, opt.Args...)
	}
	return args
}

// runCargo invokes cargo inside the materialized project with the parent's
// stdio attached, so diagnostics and program output stream live. Blocks
// until cargo exits and returns its exit code verbatim.
func runCargo(opt *Opt, projectDir string, log *zap.Logger) (int, error) {
	args := cargoArgs(opt)
	log.Debug("spawning cargo", zap.Strings("args", args), zap.String("dir", projectDir))

	cmd := exec.Command("cargo", args...)
	cmd.Dir = projectDir
	return runInherited(cmd)
}

// runCachedBinary executes a previously built binary directly, skipping
// cargo entirely.
func runCachedBinary(bin string, args []string, log *zap.Logger) (int, error) {
	log.Debug("running cached binary", zap.String("bin", bin))
	return runInherited(exec.Command(bin, args...))
}

// runInherited starts the child with inherited stdio, forwards SIGINT and
// SIGTERM so an interrupted run terminates the child rather than orphaning
// it, and waits. No timeout: a build may legitimately run arbitrarily long.
func runInherited(cmd *exec.Cmd) (int, error) {
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr

	if err := cmd.Start(); err != nil {
		return 0, &BuildProcessError{Tool: cmd.Path, Err: err}
	}

	sigc := make(chan os.Signal, 1)
	signal.Notify(sigc, os.Interrupt, syscall.SIGTERM)
	done := make(chan struct{})
	go func() {
		for {
			select {
			case sig := <-sigc:
				_ = cmd.Process.Signal(sig)
			case <-done:
				return
			}
		}
	}()

	err := cmd.Wait()
	close(done)
	signal.Stop(sigc)

	if err != nil {
		var exit *exec.ExitError
		if errors.As(err, &exit) {
			if code := exit.ExitCode(); code >= 0 {
				return code, nil
			}
			// killed by signal
			return 1, nil
		}
		return 0, &BuildProcessError{Tool: cmd.Path, Err: err}
	}
	return 0, nil
}
