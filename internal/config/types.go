// SPDX-License-Identifier: MPL-2.0

package config

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"
)

const (
	// PolicyContinue keeps evaluating after a failing statement.
	PolicyContinue ErrorPolicy = "continue"
	// PolicyAbort stops at the first failing statement.
	PolicyAbort ErrorPolicy = "abort"

	// ColorSchemeAuto detects the terminal color scheme automatically.
	ColorSchemeAuto ColorScheme = "auto"
	// ColorSchemeDark forces the dark scheme.
	ColorSchemeDark ColorScheme = "dark"
	// ColorSchemeLight forces the light scheme.
	ColorSchemeLight ColorScheme = "light"
)

var (
	// ErrInvalidErrorPolicy is returned when an ErrorPolicy value is not recognized.
	ErrInvalidErrorPolicy = errors.New("invalid error policy")
	// ErrInvalidColorScheme is returned when a ColorScheme value is not recognized.
	ErrInvalidColorScheme = errors.New("invalid color scheme")
	// ErrInvalidScriptExtension is returned for an empty or non-alphanumeric extension.
	ErrInvalidScriptExtension = errors.New("invalid script extension")
	// ErrInvalidDuration is returned when a Duration does not parse.
	ErrInvalidDuration = errors.New("invalid duration")
	// ErrInvalidMacro is returned when a macro has no body.
	ErrInvalidMacro = errors.New("invalid macro")
	// ErrInvalidConfig is the sentinel error wrapped by InvalidConfigError.
	ErrInvalidConfig = errors.New("invalid config")

	extensionPattern = regexp.MustCompile(`^[A-Za-z0-9_-]+$`)
)

type (
	// ErrorPolicy is the configured failure policy name.
	ErrorPolicy string

	// ColorScheme specifies the terminal color scheme preference.
	ColorScheme string

	// ScriptExtension is the recognized script suffix, without the dot.
	ScriptExtension string

	// Duration is a Go duration string such as "90m".
	Duration string

	// InvalidValueError reports one rejected field value. It unwraps to the
	// field's sentinel error.
	InvalidValueError struct {
		Field    string
		Value    string
		Expected string
		Sentinel error
	}

	// InvalidConfigError collects field-level errors of a Config.
	InvalidConfigError struct {
		FieldErrors []error
	}

	// Config holds the application configuration.
	Config struct {
		Shell   ShellConfig            `json:"shell" toml:"shell" mapstructure:"shell"`
		Script  ScriptConfig           `json:"script" toml:"script" mapstructure:"script"`
		Log     LogConfig              `json:"log" toml:"log" mapstructure:"log"`
		UI      UIConfig               `json:"ui" toml:"ui" mapstructure:"ui"`
		Server  ServerConfig           `json:"server" toml:"server" mapstructure:"server"`
		Aliases map[string]string      `json:"aliases" toml:"aliases" mapstructure:"aliases"`
		Macros  map[string]MacroConfig `json:"macros" toml:"macros" mapstructure:"macros"`

		// Source is the file the configuration was read from; empty for defaults.
		Source string `json:"-" toml:"-" mapstructure:"-"`
	}

	// ShellConfig configures interactive sessions.
	ShellConfig struct {
		// Prompt is the label inside the prompt brackets.
		Prompt string `json:"prompt" toml:"prompt" mapstructure:"prompt"`
		// OnError is the failure policy for interactive input.
		OnError ErrorPolicy `json:"on_error" toml:"on_error" mapstructure:"on_error"`
		// MarkdownStyle is the glamour style used by detailed help.
		MarkdownStyle string `json:"markdown_style" toml:"markdown_style" mapstructure:"markdown_style"`
		// CoreUtils registers the files command category.
		CoreUtils bool `json:"core_utils" toml:"core_utils" mapstructure:"core_utils"`
		// HistoryLimit bounds the undo history per session.
		HistoryLimit int `json:"history_limit" toml:"history_limit" mapstructure:"history_limit"`
		// SaveHistory persists terminal input lines across sessions.
		SaveHistory bool `json:"save_history" toml:"save_history" mapstructure:"save_history"`
		// HistoryFile is where input lines are saved; empty means "history"
		// in the configuration directory.
		HistoryFile string `json:"history_file" toml:"history_file" mapstructure:"history_file"`
	}

	// ScriptConfig configures the script runner.
	ScriptConfig struct {
		Extension ScriptExtension `json:"extension" toml:"extension" mapstructure:"extension"`
		MaxDepth  int             `json:"max_depth" toml:"max_depth" mapstructure:"max_depth"`
		OnError   ErrorPolicy     `json:"on_error" toml:"on_error" mapstructure:"on_error"`
	}

	// LogConfig configures the process logger.
	LogConfig struct {
		Level string `json:"level" toml:"level" mapstructure:"level"`
		// File, when set, receives log output instead of stderr.
		File string `json:"file,omitempty" toml:"file,omitempty" mapstructure:"file"`
	}

	// UIConfig configures the user interface.
	UIConfig struct {
		ColorScheme ColorScheme `json:"color_scheme" toml:"color_scheme" mapstructure:"color_scheme"`
		Verbose     bool        `json:"verbose" toml:"verbose" mapstructure:"verbose"`
	}

	// ServerConfig configures `zensh serve`.
	ServerConfig struct {
		Host     string   `json:"host" toml:"host" mapstructure:"host"`
		Port     int      `json:"port" toml:"port" mapstructure:"port"`
		TokenTTL Duration `json:"token_ttl" toml:"token_ttl" mapstructure:"token_ttl"`
	}

	// MacroConfig is a user command whose body is evaluated like a script.
	MacroConfig struct {
		Description string `json:"description,omitempty" toml:"description,omitempty" mapstructure:"description"`
		Body        string `json:"body" toml:"body" mapstructure:"body"`
	}
)

// Error implements the error interface.
func (e *InvalidValueError) Error() string {
	return fmt.Sprintf("%s: invalid value %q (valid: %s)", e.Field, e.Value, e.Expected)
}

// Unwrap returns the field's sentinel for errors.Is() compatibility.
func (e *InvalidValueError) Unwrap() error { return e.Sentinel }

// Error implements the error interface.
func (e *InvalidConfigError) Error() string {
	msgs := make([]string, 0, len(e.FieldErrors))
	for _, fe := range e.FieldErrors {
		msgs = append(msgs, fe.Error())
	}
	return fmt.Sprintf("invalid config: %s", strings.Join(msgs, "; "))
}

// Unwrap returns ErrInvalidConfig followed by the field errors, so
// errors.Is() matches both the config sentinel and each field's sentinel.
func (e *InvalidConfigError) Unwrap() []error {
	return append([]error{ErrInvalidConfig}, e.FieldErrors...)
}

// String returns the policy name.
func (p ErrorPolicy) String() string { return string(p) }

// IsValid reports whether the policy is continue or abort.
func (p ErrorPolicy) IsValid() (bool, []error) {
	switch p {
	case PolicyContinue, PolicyAbort:
		return true, nil
	default:
		return false, []error{&InvalidValueError{Value: string(p), Expected: "continue, abort", Sentinel: ErrInvalidErrorPolicy}}
	}
}

// String returns the scheme name.
func (cs ColorScheme) String() string { return string(cs) }

// IsValid reports whether the scheme is auto, dark or light.
func (cs ColorScheme) IsValid() (bool, []error) {
	switch cs {
	case ColorSchemeAuto, ColorSchemeDark, ColorSchemeLight:
		return true, nil
	default:
		return false, []error{&InvalidValueError{Value: string(cs), Expected: "auto, dark, light", Sentinel: ErrInvalidColorScheme}}
	}
}

// String returns the extension.
func (x ScriptExtension) String() string { return string(x) }

// IsValid reports whether the extension is a non-empty word without a dot.
func (x ScriptExtension) IsValid() (bool, []error) {
	if !extensionPattern.MatchString(string(x)) {
		return false, []error{&InvalidValueError{Value: string(x), Expected: "letters, digits, '-' or '_'", Sentinel: ErrInvalidScriptExtension}}
	}
	return true, nil
}

// Std parses the duration. Invalid values yield zero.
func (d Duration) Std() time.Duration {
	v, err := time.ParseDuration(string(d))
	if err != nil {
		return 0
	}
	return v
}

// IsValid reports whether the duration parses and is positive.
func (d Duration) IsValid() (bool, []error) {
	if v, err := time.ParseDuration(string(d)); err != nil || v <= 0 {
		return false, []error{&InvalidValueError{Value: string(d), Expected: "a positive duration such as 1h or 30m", Sentinel: ErrInvalidDuration}}
	}
	return true, nil
}

// IsValid checks the values CUE cannot see after environment overrides.
func (c Config) IsValid() (bool, []error) {
	var errs []error
	check := func(field string, isValid func() (bool, []error)) {
		valid, fieldErrs := isValid()
		if valid {
			return
		}
		for _, fe := range fieldErrs {
			var ive *InvalidValueError
			if errors.As(fe, &ive) {
				ive.Field = field
			}
			errs = append(errs, fe)
		}
	}

	check("shell.on_error", c.Shell.OnError.IsValid)
	check("script.on_error", c.Script.OnError.IsValid)
	check("script.extension", c.Script.Extension.IsValid)
	check("ui.color_scheme", c.UI.ColorScheme.IsValid)
	check("server.token_ttl", c.Server.TokenTTL.IsValid)
	if c.Script.MaxDepth <= 0 {
		errs = append(errs, &InvalidValueError{Field: "script.max_depth", Value: fmt.Sprint(c.Script.MaxDepth), Expected: "a positive integer", Sentinel: ErrInvalidConfig})
	}
	for name, m := range c.Macros {
		if strings.TrimSpace(m.Body) == "" {
			errs = append(errs, &InvalidValueError{Field: "macros." + name + ".body", Expected: "a non-empty body", Sentinel: ErrInvalidMacro})
		}
	}

	if len(errs) > 0 {
		return false, []error{&InvalidConfigError{FieldErrors: errs}}
	}
	return true, nil
}

// DefaultConfig returns the built-in defaults.
func DefaultConfig() *Config {
	return &Config{
		Shell: ShellConfig{
			Prompt:        "SHELL",
			OnError:       PolicyContinue,
			MarkdownStyle: "auto",
			CoreUtils:     true,
			HistoryLimit:  100,
			SaveHistory:   true,
		},
		Script: ScriptConfig{
			Extension: "zensh",
			MaxDepth:  500,
			OnError:   PolicyAbort,
		},
		Log: LogConfig{
			Level: "warn",
		},
		UI: UIConfig{
			ColorScheme: ColorSchemeAuto,
		},
		Server: ServerConfig{
			Host:     "127.0.0.1",
			Port:     2222,
			TokenTTL: "1h",
		},
		Aliases: map[string]string{},
		Macros:  map[string]MacroConfig{},
	}
}
