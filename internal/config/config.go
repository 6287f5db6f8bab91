// SPDX-License-Identifier: MPL-2.0

package config

import (
	"context"
	_ "embed"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"slices"
	"strings"

	"github.com/zensh/zensh/internal/issue"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	"github.com/spf13/viper"
)

const (
	// AppName is the application name.
	AppName = "zensh"
	// ConfigFileName is the name of the config file (without extension).
	ConfigFileName = "config"
	// ConfigFileExt is the config file extension.
	ConfigFileExt = "cue"
	// HistoryFileName is the saved input history inside the config directory.
	HistoryFileName = "history"
	// EnvPrefix prefixes environment overrides, e.g. ZENSH_SCRIPT_MAX_DEPTH.
	EnvPrefix = "ZENSH"

	// maxConfigFileSize guards against pointing --config at something huge.
	maxConfigFileSize = 1 << 20
)

//go:embed config_schema.cue
var configSchema string

// ConfigDir returns the zensh configuration directory: $ZENSH_CONFIG_DIR when
// set, otherwise %APPDATA% on Windows, ~/Library/Application Support on macOS
// and $XDG_CONFIG_HOME (default ~/.config) elsewhere.
//
//nolint:revive // ConfigDir is more descriptive than Dir for external callers
func ConfigDir() (string, error) {
	if dir, ok := overriddenConfigDir(); ok {
		return dir, nil
	}

	var base string
	switch runtime.GOOS {
	case "windows":
		base = os.Getenv("APPDATA")
		if base == "" {
			base = filepath.Join(os.Getenv("USERPROFILE"), "AppData", "Roaming")
		}
	case "darwin":
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("failed to get home directory: %w", err)
		}
		base = filepath.Join(home, "Library", "Application Support")
	default:
		base = os.Getenv("XDG_CONFIG_HOME")
		if base == "" {
			home, err := os.UserHomeDir()
			if err != nil {
				return "", fmt.Errorf("failed to get home directory: %w", err)
			}
			base = filepath.Join(home, ".config")
		}
	}

	return filepath.Join(base, AppName), nil
}

// DefaultPath returns the config file path inside dir, or inside ConfigDir
// when dir is empty.
func DefaultPath(dir string) (string, error) {
	if dir == "" {
		var err error
		if dir, err = ConfigDir(); err != nil {
			return "", err
		}
	}
	return filepath.Join(dir, ConfigFileName+"."+ConfigFileExt), nil
}

// HistoryPath returns where interactive input lines are saved, or "" when
// shell.save_history is off.
func HistoryPath(cfg *Config) (string, error) {
	if !cfg.Shell.SaveHistory {
		return "", nil
	}
	if cfg.Shell.HistoryFile != "" {
		return cfg.Shell.HistoryFile, nil
	}
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, HistoryFileName), nil
}

// newViper returns a viper instance holding the defaults and bound to the
// ZENSH_ environment.
func newViper() *viper.Viper {
	v := viper.New()

	d := DefaultConfig()
	v.SetDefault("shell.prompt", d.Shell.Prompt)
	v.SetDefault("shell.on_error", string(d.Shell.OnError))
	v.SetDefault("shell.markdown_style", d.Shell.MarkdownStyle)
	v.SetDefault("shell.core_utils", d.Shell.CoreUtils)
	v.SetDefault("shell.history_limit", d.Shell.HistoryLimit)
	v.SetDefault("shell.save_history", d.Shell.SaveHistory)
	v.SetDefault("shell.history_file", d.Shell.HistoryFile)
	v.SetDefault("script.extension", string(d.Script.Extension))
	v.SetDefault("script.max_depth", d.Script.MaxDepth)
	v.SetDefault("script.on_error", string(d.Script.OnError))
	v.SetDefault("log.level", d.Log.Level)
	v.SetDefault("log.file", d.Log.File)
	v.SetDefault("ui.color_scheme", string(d.UI.ColorScheme))
	v.SetDefault("ui.verbose", d.UI.Verbose)
	v.SetDefault("server.host", d.Server.Host)
	v.SetDefault("server.port", d.Server.Port)
	v.SetDefault("server.token_ttl", string(d.Server.TokenTTL))

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	return v
}

// loadWithOptions resolves and loads the configuration without touching
// package state. A missing file is not an error: defaults apply.
func loadWithOptions(ctx context.Context, opts LoadOptions) (*Config, error) {
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("load config canceled: %w", ctx.Err())
	default:
	}

	v := newViper()

	path, err := resolvePath(opts)
	if err != nil {
		return nil, err
	}
	if path != "" {
		if err := loadCUEIntoViper(v, path); err != nil {
			return nil, issue.NewErrorContext().
				WithOperation("load configuration").
				WithResource(path).
				WithSuggestion("Check that the file contains valid CUE syntax").
				WithSuggestion("Compare it with the output of 'zensh config show'").
				Wrap(err).
				BuildError()
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	if cfg.Aliases == nil {
		cfg.Aliases = map[string]string{}
	}
	if cfg.Macros == nil {
		cfg.Macros = map[string]MacroConfig{}
	}
	cfg.Source = path

	if valid, errs := cfg.IsValid(); !valid {
		return nil, issue.NewErrorContext().
			WithOperation("validate configuration").
			WithResource(path).
			WithSuggestion("Check ZENSH_* environment variables for typos").
			Wrap(errs[0]).
			BuildError()
	}

	return &cfg, nil
}

// resolvePath applies the lookup order: explicit file, config directory,
// then ./config.cue. It returns "" when no file exists.
func resolvePath(opts LoadOptions) (string, error) {
	if opts.ConfigFilePath != "" {
		if !fileExists(opts.ConfigFilePath) {
			return "", issue.NewErrorContext().
				WithOperation("load configuration").
				WithResource(opts.ConfigFilePath).
				WithSuggestion("Verify the file path is correct").
				WithSuggestion("Run 'zensh config init' to create a default file").
				Wrap(fmt.Errorf("config file not found: %s", opts.ConfigFilePath)).
				BuildError()
		}
		return opts.ConfigFilePath, nil
	}

	dirPath, err := DefaultPath(opts.ConfigDirPath)
	if err != nil {
		return "", err
	}
	if fileExists(dirPath) {
		return dirPath, nil
	}

	local := ConfigFileName + "." + ConfigFileExt
	if fileExists(local) {
		return local, nil
	}
	return "", nil
}

// loadCUEIntoViper validates a CUE file against #Config and merges it into v.
func loadCUEIntoViper(v *viper.Viper, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}
	if len(data) > maxConfigFileSize {
		return fmt.Errorf("%s: file size %d bytes exceeds maximum %d bytes", path, len(data), maxConfigFileSize)
	}

	cctx := cuecontext.New()

	schemaValue := cctx.CompileString(configSchema)
	if schemaValue.Err() != nil {
		return fmt.Errorf("internal error: failed to compile config schema: %w", schemaValue.Err())
	}

	userValue := cctx.CompileBytes(data, cue.Filename(path))
	if userValue.Err() != nil {
		return formatCUEError(userValue.Err(), path)
	}

	unified := schemaValue.LookupPath(cue.ParsePath("#Config")).Unify(userValue)
	if err := unified.Validate(cue.Concrete(false)); err != nil {
		return formatCUEError(err, path)
	}

	var configMap map[string]any
	if err := unified.Decode(&configMap); err != nil {
		return formatCUEError(err, path)
	}

	if err := v.MergeConfigMap(configMap); err != nil {
		return fmt.Errorf("failed to merge config: %w", err)
	}
	return nil
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}

// CreateDefaultConfig writes the default configuration to path unless a file
// already exists there. It reports whether a file was written.
func CreateDefaultConfig(path string) (bool, error) {
	if fileExists(path) {
		return false, nil
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return false, fmt.Errorf("failed to create config directory: %w", err)
	}
	if err := os.WriteFile(path, []byte(GenerateCUE(DefaultConfig())), 0o644); err != nil {
		return false, fmt.Errorf("failed to write config file: %w", err)
	}
	return true, nil
}

// GenerateCUE renders cfg as a CUE document accepted by the schema.
func GenerateCUE(cfg *Config) string {
	var sb strings.Builder

	sb.WriteString("// zensh configuration file\n\n")

	sb.WriteString("shell: {\n")
	fmt.Fprintf(&sb, "\tprompt:         %q\n", cfg.Shell.Prompt)
	fmt.Fprintf(&sb, "\ton_error:       %q\n", cfg.Shell.OnError)
	fmt.Fprintf(&sb, "\tmarkdown_style: %q\n", cfg.Shell.MarkdownStyle)
	fmt.Fprintf(&sb, "\tcore_utils:     %v\n", cfg.Shell.CoreUtils)
	fmt.Fprintf(&sb, "\thistory_limit:  %d\n", cfg.Shell.HistoryLimit)
	fmt.Fprintf(&sb, "\tsave_history:   %v\n", cfg.Shell.SaveHistory)
	fmt.Fprintf(&sb, "\thistory_file:   %q\n", cfg.Shell.HistoryFile)
	sb.WriteString("}\n")

	sb.WriteString("\nscript: {\n")
	fmt.Fprintf(&sb, "\textension: %q\n", cfg.Script.Extension)
	fmt.Fprintf(&sb, "\tmax_depth: %d\n", cfg.Script.MaxDepth)
	fmt.Fprintf(&sb, "\ton_error:  %q\n", cfg.Script.OnError)
	sb.WriteString("}\n")

	sb.WriteString("\nlog: {\n")
	fmt.Fprintf(&sb, "\tlevel: %q\n", cfg.Log.Level)
	if cfg.Log.File != "" {
		fmt.Fprintf(&sb, "\tfile:  %q\n", cfg.Log.File)
	}
	sb.WriteString("}\n")

	sb.WriteString("\nui: {\n")
	fmt.Fprintf(&sb, "\tcolor_scheme: %q\n", cfg.UI.ColorScheme)
	fmt.Fprintf(&sb, "\tverbose:      %v\n", cfg.UI.Verbose)
	sb.WriteString("}\n")

	sb.WriteString("\nserver: {\n")
	fmt.Fprintf(&sb, "\thost:      %q\n", cfg.Server.Host)
	fmt.Fprintf(&sb, "\tport:      %d\n", cfg.Server.Port)
	fmt.Fprintf(&sb, "\ttoken_ttl: %q\n", cfg.Server.TokenTTL)
	sb.WriteString("}\n")

	if len(cfg.Aliases) > 0 {
		sb.WriteString("\naliases: {\n")
		for _, name := range sortedKeys(cfg.Aliases) {
			fmt.Fprintf(&sb, "\t%q: %q\n", name, cfg.Aliases[name])
		}
		sb.WriteString("}\n")
	}

	if len(cfg.Macros) > 0 {
		sb.WriteString("\nmacros: {\n")
		for _, name := range sortedKeys(cfg.Macros) {
			m := cfg.Macros[name]
			fmt.Fprintf(&sb, "\t%q: {\n", name)
			if m.Description != "" {
				fmt.Fprintf(&sb, "\t\tdescription: %q\n", m.Description)
			}
			fmt.Fprintf(&sb, "\t\tbody:        %q\n", m.Body)
			sb.WriteString("\t}\n")
		}
		sb.WriteString("}\n")
	}

	return sb.String()
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}
