// SPDX-License-Identifier: MPL-2.0

// Package cmd contains the zensh command line: the interactive shell (the
// default command), one-shot evaluation with -c, script execution, the SSH
// server, the script watcher and configuration management.
package cmd
