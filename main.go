package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/agilira/orpheus/pkg/orpheus"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

const configFile = "cargo-play.yaml"

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(argv []string) int {
	opt, err := parseOpt(argv)
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return 0
		}
		fmt.Fprintln(os.Stderr, err)
		return ExitUsage
	}

	logger := zap.NewNop()
	if opt.Verbose {
		logger, _ = zap.NewDevelopment()
	}
	defer func() { _ = logger.Sync() }()

	code, err := play(opt, NewStore(os.TempDir(), logger), logger)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return exitCodeFor(err)
	}
	return code
}

// play is the whole pipeline: read inputs, extract directives, merge the
// manifest, materialize (or reuse) the temp project and hand it to cargo.
// All pre-build failures abort before cargo is ever invoked.
func play(opt *Opt, store *Store, log *zap.Logger) (int, error) {
	name, err := packageName(opt.Src)
	if err != nil {
		return 0, err
	}

	files, err := loadSources(opt)
	if err != nil {
		return 0, err
	}

	fragments := make([]Fragment, 0, len(files))
	for _, f := range files {
		fragments = append(fragments, f.Fragment)
	}
	manifest, err := mergeManifest(name, opt.Edition, fragments)
	if err != nil {
		return 0, err
	}
	if opt.Infer {
		manifest.addInferred(inferCrates(files))
	}
	rendered, err := manifest.render()
	if err != nil {
		return 0, err
	}

	identity, err := projectIdentity(files, rendered)
	if err != nil {
		return 0, err
	}
	log.Debug("resolved project identity",
		zap.String("identity", identity), zap.String("package", name))

	if opt.Clean {
		if err := store.Remove(identity); err != nil {
			return 0, err
		}
	}

	// A binary left behind by a previous cached run can be executed as-is.
	if opt.Cached && opt.Action == ActionRun {
		bin := filepath.Join(store.Dir(identity), "target", opt.profileDir(), name)
		if info, err := os.Stat(bin); err == nil && !info.IsDir() {
			return runCachedBinary(bin, opt.Args, log)
		}
	}

	proj, err := NewMaterializer(store, log).Materialize(identity, rendered, files)
	if err != nil {
		return 0, err
	}

	// Retention: --keep for inspection, --cached so the next run can reuse
	// the directory. Everything else is removed on every exit path.
	if !opt.Keep && !opt.Cached {
		defer func() { _ = store.Remove(identity) }()
	}

	if opt.Save != "" {
		return 0, saveProject(proj.Dir, opt.Save)
	}

	return runCargo(opt, proj.Dir, log)
}

// loadSources reads every input and runs directive extraction. The first
// failure aborts the run: no partial builds.
func loadSources(opt *Opt) ([]SourceFile, error) {
	files := make([]SourceFile, 0, len(opt.Src))
	for _, path := range opt.Src {
		raw, err := os.ReadFile(path)
		if err != nil {
			return nil, orpheus.NotFoundError("input",
				fmt.Sprintf("cannot read input file %s: %v", path, err))
		}
		sf, err := extractSource(path, raw, opt.AllowBlank)
		if err != nil {
			return nil, err
		}
		files = append(files, sf)
	}
	return files, nil
}

// parseOpt resolves one invocation: cargo-play.yaml defaults, then flags on
// top. A leading "play" argument (invocation as a cargo subcommand) and a
// +toolchain argument are peeled off before flag parsing; everything after
// -- is forwarded to the program untouched.
func parseOpt(argv []string) (*Opt, error) {
	cfg, err := loadConfig(configFile)
	if err != nil {
		return nil, err
	}

	if len(argv) > 0 && argv[0] == "play" {
		argv = argv[1:]
	}

	head := argv
	var tail []string
	for i, a := range argv {
		if a == "--" {
			head, tail = argv[:i], argv[i+1:]
			break
		}
	}

	toolchain := cfg.Toolchain
	var pruned []string
	for _, a := range head {
		if strings.HasPrefix(a, "+") && len(a) > 1 {
			toolchain = a[1:]
			continue
		}
		pruned = append(pruned, a)
	}

	opt := &Opt{Args: tail, AllowBlank: cfg.Directives.AllowBlank}
	var action string

	fs := flag.NewFlagSet("cargo-play", flag.ContinueOnError)
	fs.StringVar(&opt.Edition, "edition", defaultStr(cfg.Edition, "2018"), "Rust edition for the generated package")
	fs.StringVar(&opt.Edition, "e", defaultStr(cfg.Edition, "2018"), "shorthand for -edition")
	fs.StringVar(&action, "action", string(ActionRun), "cargo action: run, build or test")
	fs.StringVar(&action, "a", string(ActionRun), "shorthand for -action")
	fs.BoolVar(&opt.Release, "release", false, "build with the release profile")
	fs.StringVar(&opt.Toolchain, "toolchain", toolchain, "rust toolchain to run cargo with")
	fs.BoolVar(&opt.Clean, "clean", false, "drop the cached project directory before building")
	fs.BoolVar(&opt.Clean, "c", false, "shorthand for -clean")
	fs.BoolVar(&opt.Cached, "cached", cfg.Cached, "reuse the cached project and any previously built binary")
	fs.BoolVar(&opt.Keep, "keep", cfg.Keep, "keep the temporary project directory for inspection")
	fs.BoolVar(&opt.Keep, "k", cfg.Keep, "shorthand for -keep")
	fs.BoolVar(&opt.Infer, "infer", false, "infer dependencies from use statements")
	fs.BoolVar(&opt.Infer, "i", false, "shorthand for -infer")
	fs.StringVar(&opt.Save, "save", "", "export the generated project to this directory instead of building")
	fs.StringVar(&opt.CargoOption, "cargo-option", "", "extra flags forwarded to cargo")
	fs.BoolVar(&opt.Verbose, "v", false, "verbose debug logging")
	if err := fs.Parse(pruned); err != nil {
		return nil, err
	}

	if !editions[opt.Edition] {
		return nil, fmt.Errorf("unsupported edition %q (expected 2015, 2018, 2021 or 2024)", opt.Edition)
	}
	switch CargoAction(action) {
	case ActionRun, ActionBuild, ActionTest:
		opt.Action = CargoAction(action)
	default:
		return nil, fmt.Errorf("unsupported action %q (expected run, build or test)", action)
	}

	if fs.NArg() == 0 {
		fs.Usage()
		return nil, errors.New("no input files")
	}
	for _, arg := range fs.Args() {
		abs, err := filepath.Abs(arg)
		if err != nil {
			return nil, err
		}
		opt.Src = append(opt.Src, abs)
	}
	return opt, nil
}

// loadConfig reads the optional tool config. A missing file is the zero
// config; a malformed one is a hard error.
func loadConfig(path string) (Config, error) {
	var cfg Config
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, err
	}
	defer f.Close()
	if err := yaml.NewDecoder(f).Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
		return Config{}, fmt.Errorf("%s: %v", path, err)
	}
	return cfg, nil
}

func defaultStr(v, fallback string) string {
	if v != "" {
		return v
	}
	return fallback
}
