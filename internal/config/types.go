package config

import (
	"path/filepath"
	"strings"
)

const (
	// ChannelStable tracks the stable release branch of the SDK.
	ChannelStable = "stable"
	// ChannelBeta tracks the beta release branch of the SDK.
	ChannelBeta = "beta"

	// TemplateApp generates an application project.
	TemplateApp = "app"
	// TemplatePlugin generates a plugin project with native host code.
	TemplatePlugin = "plugin"

	// UpdateReset reconciles a diverged checkout by hard-resetting to the
	// remote branch.
	UpdateReset = "reset"
	// UpdateReclone deletes the checkout and clones from scratch.
	UpdateReclone = "reclone"
	// UpdateSkip leaves a diverged checkout untouched.
	UpdateSkip = "skip"

	// LanguageSwift and LanguageObjC are the iOS host-language choices for
	// plugin templates.
	LanguageSwift = "swift"
	LanguageObjC  = "objc"

	// LanguageKotlin and LanguageJava are the Android host-language choices
	// for plugin templates.
	LanguageKotlin = "kotlin"
	LanguageJava   = "java"

	// DefaultOrg is the organization identifier used when none is supplied.
	DefaultOrg = "com.example"
)

// ValidPlatforms enumerates the platform tokens the project generator accepts.
var ValidPlatforms = []string{"ios", "android", "macos", "linux", "windows", "web"}

var (
	validIOSLanguages     = []string{LanguageSwift, LanguageObjC}
	validAndroidLanguages = []string{LanguageKotlin, LanguageJava}
)

// Config is the immutable run descriptor shared by every pipeline stage.
// Construct it with New; a Config obtained from New has passed validation and
// no stage mutates it afterwards.
type Config struct {
	ProjectName     string   `validate:"required"`
	Platforms       []string `validate:"required,min=1,dive,oneof=ios android macos linux windows web"`
	Org             string
	Channel         string `validate:"required,oneof=stable beta"`
	OutputDir       string
	Template        string `validate:"required,oneof=app plugin"`
	IOSLanguage     string
	AndroidLanguage string
	UpdateMode      string `validate:"required,oneof=reset reclone skip"`
	DryRun          bool
	Verbose         bool
}

// Options carries raw user input for constructing a Config. Zero-valued
// fields fall back to the same defaults the CLI flags advertise.
type Options struct {
	ProjectName     string
	Platforms       []string
	Org             string
	Channel         string
	OutputDir       string
	Template        string
	IOSLanguage     string
	AndroidLanguage string
	UpdateMode      string
	DryRun          bool
	Verbose         bool
}

// New builds a validated run descriptor from raw input. Platform tokens are
// normalised to lowercase and de-duplicated. Validation is all-or-nothing: on
// failure no Config is returned.
func New(opts Options) (*Config, error) {
	cfg := &Config{
		ProjectName:     opts.ProjectName,
		Platforms:       normalizePlatforms(opts.Platforms),
		Org:             defaultString(opts.Org, DefaultOrg),
		Channel:         defaultString(opts.Channel, ChannelStable),
		OutputDir:       defaultString(opts.OutputDir, "."),
		Template:        defaultString(opts.Template, TemplateApp),
		IOSLanguage:     defaultString(opts.IOSLanguage, LanguageSwift),
		AndroidLanguage: defaultString(opts.AndroidLanguage, LanguageKotlin),
		UpdateMode:      defaultString(opts.UpdateMode, UpdateReset),
		DryRun:          opts.DryRun,
		Verbose:         opts.Verbose,
	}

	if err := Validate(cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

// ProjectPath returns the output directory joined with the project name. The
// path is always computed, never stored.
func (c *Config) ProjectPath() string {
	return filepath.Join(c.OutputDir, c.ProjectName)
}

// PackageName returns the sanitized package identifier derived from the
// project name.
func (c *Config) PackageName() string {
	return SanitizePackageName(c.ProjectName)
}

// PlatformsCSV returns the platform set in the comma-separated form the
// project generator expects.
func (c *Config) PlatformsCSV() string {
	return strings.Join(c.Platforms, ",")
}

// HasPlatform reports whether the descriptor targets the given platform.
func (c *Config) HasPlatform(name string) bool {
	for _, p := range c.Platforms {
		if p == name {
			return true
		}
	}
	return false
}

func normalizePlatforms(raw []string) []string {
	if raw == nil {
		return nil
	}

	seen := make(map[string]struct{}, len(raw))
	out := make([]string, 0, len(raw))
	for _, p := range raw {
		token := strings.ToLower(strings.TrimSpace(p))
		if _, ok := seen[token]; ok {
			continue
		}
		seen[token] = struct{}{}
		out = append(out, token)
	}
	return out
}

func defaultString(value, fallback string) string {
	if value == "" {
		return fallback
	}
	return value
}
