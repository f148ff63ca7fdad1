// Package file provides the file-based configuration adapter.
//
// Adapters:
//   - ConfigStore: read-only TOML configuration loaded once at startup
package file
