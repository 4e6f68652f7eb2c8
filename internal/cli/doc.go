// Package cli parses command-line arguments into an application
// configuration and maps failures onto process exit codes.
package cli
