// Package model defines the domain types and value objects for the
// portsight CLI.
//
// This package contains pure data structures with no external dependencies.
// The central entity is the EndpointMap — a mapping from service name to the
// externally reachable URLs discovered for that service. CommandResult is
// the immutable record of a single remote command invocation, and Publisher
// mirrors one published-port entry from a `docker compose ps --format json`
// record.
//
// The package also defines exit codes (ExitCode) and a custom error type
// (CLIError) that carries exit codes for proper OS process exit handling.
package model
