// SPDX-License-Identifier: MPL-2.0

// Package issue provides actionable errors and markdown troubleshooting pages
// for failures surfaced by the zensh CLI.
package issue
