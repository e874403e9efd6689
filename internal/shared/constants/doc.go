// Package constants centralizes configuration defaults shared across the CLI.
//
// Fetch timeouts, concurrency limits, and the default document path live here
// so cmd/ and internal/ agree on them without introducing import cycles.
package constants
