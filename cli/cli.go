package cli

import (
	"errors"
	"fmt"
	"io"

	"github.com/spf13/pflag"

	"github.com/sokinpui/routepin/internal/config"
)

// Config holds all the command-line flag values.
type Config struct {
	Root        string
	Filename    string
	Directive   string
	Marker      string
	Anchors     []string
	Workers     int
	ConfigFile  string
	EnvFile     string
	Nvim        bool
	Copy        bool
	NoAnimation bool
	Verbose     bool

	flags *pflag.FlagSet
}

// Parse defines and parses command-line flags using pflag. Usage and
// argument errors are written to out.
func Parse(args []string, out io.Writer) (*Config, error) {
	cfg := &Config{}
	fs := pflag.NewFlagSet("routepin", pflag.ContinueOnError)
	fs.SetOutput(out)

	// Define flags
	fs.StringVarP(&cfg.Filename, "filename", "f", config.DefaultFilename, "Exact file name to patch.")
	fs.StringVarP(&cfg.Directive, "directive", "d", config.DefaultDirective, "Line to insert before the first handler.")
	fs.StringVarP(&cfg.Marker, "marker", "m", "", "Substring that marks the directive as present (default: directive text before '=').")
	fs.StringArrayVarP(&cfg.Anchors, "anchor", "a", append([]string(nil), config.DefaultAnchors...), "Line prefix marking the insertion point. Repeat for several.")
	fs.IntVarP(&cfg.Workers, "workers", "w", 1, "Number of files processed in parallel.")
	fs.StringVarP(&cfg.ConfigFile, "config", "c", "", fmt.Sprintf("YAML config file (default: ./%s if present).", config.DefaultConfigFile))
	fs.StringVar(&cfg.EnvFile, "env-file", ".env", "Environment file read before ROUTEPIN_* variables.")
	fs.BoolVar(&cfg.Nvim, "nvim", false, "Reload updated files in the Neovim instance at $NVIM_LISTEN_ADDRESS.")
	fs.BoolVar(&cfg.Copy, "copy", false, "Copy the run summary to the clipboard.")
	fs.BoolVar(&cfg.NoAnimation, "no-animation", false, "Disable the spinner and print plain progress lines.")
	fs.BoolVarP(&cfg.Verbose, "verbose", "v", false, "Print debug logs.")

	fs.Usage = func() {
		fmt.Fprintln(out, "Usage: routepin [flags] [root]")
		fmt.Fprintf(out, "\nInsert a directive before the first route handler of every %s under root (default: %s).\n", config.DefaultFilename, config.DefaultRoot)
		fmt.Fprintln(out, "\nExample: routepin -w 4 src/app/api")
		fmt.Fprintln(out, "\nFlags:")
		fs.PrintDefaults()
	}

	// With ContinueOnError pflag prints usage for --help only.
	fail := func(err error) (*Config, error) {
		fmt.Fprintln(out, "Error:", err)
		fs.Usage()
		return nil, err
	}

	if err := fs.Parse(args); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return nil, err
		}
		return fail(err)
	}

	switch fs.NArg() {
	case 0:
	case 1:
		cfg.Root = fs.Arg(0)
	default:
		return fail(fmt.Errorf("expected at most one root directory, got %d", fs.NArg()))
	}

	cfg.flags = fs
	return cfg, nil
}

// Options resolves the run configuration: defaults, then the config file,
// then the environment, then flags given explicitly on the command line.
func (c *Config) Options() (*config.Options, error) {
	path, required := c.ConfigFile, true
	if path == "" {
		path, required = config.DefaultConfigFile, false
	}

	opts, err := config.Load(path, required)
	if err != nil {
		return nil, err
	}
	if err := opts.ApplyEnv(c.EnvFile); err != nil {
		return nil, err
	}

	if c.Root != "" {
		opts.Root = c.Root
	}
	if c.changed("filename") {
		opts.Filename = c.Filename
	}
	if c.changed("directive") {
		opts.Directive = c.Directive
	}
	if c.changed("marker") {
		opts.Marker = c.Marker
	}
	if c.changed("anchor") {
		opts.Anchors = append([]string(nil), c.Anchors...)
	}
	if c.changed("workers") {
		opts.Workers = c.Workers
	}

	if err := opts.Validate(); err != nil {
		return nil, err
	}
	return opts, nil
}

func (c *Config) changed(name string) bool {
	return c.flags != nil && c.flags.Changed(name)
}
