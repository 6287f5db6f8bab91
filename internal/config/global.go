// SPDX-License-Identifier: MPL-2.0

package config

import "os"

// ConfigDirEnv relocates the configuration directory on every platform.
const ConfigDirEnv = EnvPrefix + "_CONFIG_DIR"

// configDirOverride pins the directory for the whole process; tests use it
// where os.UserHomeDir() would ignore a HOME set by the test.
var configDirOverride string

// SetConfigDirOverride pins the configuration directory, taking precedence
// over ConfigDirEnv. An empty dir clears the pin.
func SetConfigDirOverride(dir string) {
	configDirOverride = dir
}

// Reset clears the directory pinned with SetConfigDirOverride.
func Reset() {
	SetConfigDirOverride("")
}

// overriddenConfigDir returns the pinned or environment-selected directory.
func overriddenConfigDir() (string, bool) {
	if configDirOverride != "" {
		return configDirOverride, true
	}
	if dir := os.Getenv(ConfigDirEnv); dir != "" {
		return dir, true
	}
	return "", false
}
