package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const (
	// DefaultConfigFile is read from the working directory when no config
	// path is given and the file exists.
	DefaultConfigFile = "routepin.yaml"

	DefaultRoot      = "app/api"
	DefaultFilename  = "route.ts"
	DefaultDirective = `export const dynamic = "force-dynamic"`

	envPrefix = "ROUTEPIN_"
)

// DefaultAnchors are the Next.js route handler declarations.
var DefaultAnchors = []string{
	"export async function GET",
	"export async function POST",
	"export async function PUT",
	"export async function DELETE",
	"export async function PATCH",
}

// Options configures a run.
type Options struct {
	Root      string   `yaml:"root"`
	Filename  string   `yaml:"filename"`
	Directive string   `yaml:"directive"`
	Marker    string   `yaml:"marker"`
	Anchors   []string `yaml:"anchors"`
	Workers   int      `yaml:"workers"`
}

// ValidationError lists every problem found in an Options value.
type ValidationError struct {
	Problems []string
}

func (e *ValidationError) Error() string {
	return "invalid configuration: " + strings.Join(e.Problems, "; ")
}

// Default returns the reference configuration.
func Default() *Options {
	return &Options{
		Root:      DefaultRoot,
		Filename:  DefaultFilename,
		Directive: DefaultDirective,
		Anchors:   append([]string(nil), DefaultAnchors...),
		Workers:   1,
	}
}

// Load returns the defaults overlaid with the YAML file at path. A missing
// file is an error only when required is true.
func Load(path string, required bool) (*Options, error) {
	opts := Default()
	if path == "" {
		return opts, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) && !required {
			return opts, nil
		}
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	var file Options
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
	}
	opts.merge(&file)
	return opts, nil
}

// merge copies every non-zero field of other into o.
func (o *Options) merge(other *Options) {
	if other.Root != "" {
		o.Root = other.Root
	}
	if other.Filename != "" {
		o.Filename = other.Filename
	}
	if other.Directive != "" {
		o.Directive = other.Directive
	}
	if other.Marker != "" {
		o.Marker = other.Marker
	}
	if len(other.Anchors) > 0 {
		o.Anchors = append([]string(nil), other.Anchors...)
	}
	if other.Workers != 0 {
		o.Workers = other.Workers
	}
}

// ApplyEnv loads envFile (if present, without overriding the real
// environment) and then applies ROUTEPIN_* variables.
func (o *Options) ApplyEnv(envFile string) error {
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil && !errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("failed to load %s: %w", envFile, err)
		}
	}

	env := Options{
		Root:      os.Getenv(envPrefix + "ROOT"),
		Filename:  os.Getenv(envPrefix + "FILENAME"),
		Directive: os.Getenv(envPrefix + "DIRECTIVE"),
		Marker:    os.Getenv(envPrefix + "MARKER"),
	}
	if v := os.Getenv(envPrefix + "ANCHORS"); v != "" {
		for _, a := range strings.Split(v, ",") {
			if a = strings.TrimSpace(a); a != "" {
				env.Anchors = append(env.Anchors, a)
			}
		}
	}
	if v := os.Getenv(envPrefix + "WORKERS"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("invalid %sWORKERS %q: %w", envPrefix, v, err)
		}
		env.Workers = n
	}
	o.merge(&env)
	return nil
}

// EffectiveMarker is the idempotency marker: the explicit Marker, or the
// directive up to its first '='.
func (o *Options) EffectiveMarker() string {
	if o.Marker != "" {
		return o.Marker
	}
	return DeriveMarker(o.Directive)
}

// DeriveMarker returns the declaration part of a directive, e.g.
// "export const dynamic" for `export const dynamic = "force-dynamic"`.
func DeriveMarker(directive string) string {
	head, _, _ := strings.Cut(directive, "=")
	if m := strings.TrimSpace(head); m != "" {
		return m
	}
	return strings.TrimSpace(directive)
}

// Validate checks the options before a run.
func (o *Options) Validate() error {
	var problems []string

	if o.Root == "" {
		problems = append(problems, "root is empty")
	}
	switch {
	case o.Filename == "":
		problems = append(problems, "filename is empty")
	case strings.ContainsAny(o.Filename, `/\`):
		problems = append(problems, fmt.Sprintf("filename %q must not contain a path separator", o.Filename))
	}
	switch {
	case strings.TrimSpace(o.Directive) == "":
		problems = append(problems, "directive is empty")
	case strings.ContainsAny(o.Directive, "\r\n"):
		problems = append(problems, "directive must be a single line")
	}
	if o.EffectiveMarker() == "" {
		problems = append(problems, "marker is empty")
	}
	if len(o.Anchors) == 0 {
		problems = append(problems, "at least one anchor is required")
	}
	seen := make(map[string]bool, len(o.Anchors))
	for i, a := range o.Anchors {
		if a == "" {
			problems = append(problems, fmt.Sprintf("anchors[%d] is empty", i))
			continue
		}
		if seen[a] {
			problems = append(problems, fmt.Sprintf("anchors[%d]: duplicate %q", i, a))
		}
		seen[a] = true
	}
	if o.Workers < 1 {
		problems = append(problems, fmt.Sprintf("workers must be at least 1, got %d", o.Workers))
	}

	if len(problems) > 0 {
		return &ValidationError{Problems: problems}
	}
	return nil
}
