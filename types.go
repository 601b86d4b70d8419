package main

// CargoAction selects the cargo subcommand to invoke against the
// synthesized project.
type CargoAction string

const (
	ActionRun   CargoAction = "run"
	ActionBuild CargoAction = "build"
	ActionTest  CargoAction = "test"
)

// Editions cargo accepts for the generated package.
var editions = map[string]bool{
	"2015": true,
	"2018": true,
	"2021": true,
	"2024": true,
}

// Opt holds one resolved invocation: config-file defaults overlaid with
// command-line flags. Src is absolute paths in argument order; the first
// entry becomes src/main.rs.
type Opt struct {
	Src         []string
	Action      CargoAction
	Release     bool
	Edition     string
	Toolchain   string
	Clean       bool
	Cached      bool
	Keep        bool
	Infer       bool
	Save        string
	CargoOption string
	AllowBlank  bool
	Verbose     bool
	Args        []string // forwarded to the program after --
}

// Config is the optional cargo-play.yaml in the working directory. It only
// supplies defaults; flags always win.
type Config struct {
	Edition    string          `yaml:"edition"`
	Toolchain  string          `yaml:"toolchain"`
	Keep       bool            `yaml:"keep"`
	Cached     bool            `yaml:"cached"`
	Directives DirectivePolicy `yaml:"directives"`
}

// DirectivePolicy controls directive-block scanning. AllowBlank decides
// whether a blank line inside the //# block terminates it (the default)
// or is skipped over.
type DirectivePolicy struct {
	AllowBlank bool `yaml:"allow_blank"`
}

// SourceFile is one user-supplied input, immutable once read.
type SourceFile struct {
	Path     string
	Raw      []byte
	Fragment Fragment
	Body     string // content after the directive block
}

// profileDir returns the target subdirectory cargo builds into.
func (o *Opt) profileDir() string {
	if o.Release {
		return "release"
	}
	return "debug"
}
