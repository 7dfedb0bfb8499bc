// Package model defines the domain types and value objects for portfinder.
//
// This package contains pure data structures with no external dependencies.
// Probe outcomes, found endpoints and the error kinds a search can end with
// all live here, so the probers, the search driver and the CLI agree on one
// vocabulary.
//
// The package also defines exit codes (ExitCode) and a custom error type
// (CLIError) that carries exit codes for proper OS process exit handling.
package model
