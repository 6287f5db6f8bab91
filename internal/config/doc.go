// SPDX-License-Identifier: MPL-2.0

// Package config handles zensh configuration using Viper with CUE as the file format.
//
// The file is looked up at --config, then ~/.config/zensh/config.cue (the XDG,
// macOS or Windows equivalent), then ./config.cue. It is validated against the
// embedded config_schema.cue before being merged over the defaults, and every
// key can be overridden from the environment with the ZENSH_ prefix
// (ZENSH_SCRIPT_MAX_DEPTH=100).
package config
