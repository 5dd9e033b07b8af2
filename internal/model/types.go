package model

import (
	"fmt"
	"sort"
	"time"
)

// Port range accepted anywhere in the system. Any port outside this range
// is silently discarded by every parser — a URL must never carry an
// impossible port number.
const (
	MinPort = 1
	MaxPort = 65535
)

// UnknownServicesKey is the synthetic service name used by the listener-dump
// discovery strategy. A raw listener dump carries no container identity, so
// every port it finds is attributed to this single placeholder entry.
//
// Whether this degraded labeling is acceptable long-term is an open product
// question; until it is answered, the key is preserved as-is.
const UnknownServicesKey = "unknown-services"

// ValidPort reports whether the given port number can appear in a URL.
func ValidPort(port int) bool {
	return port >= MinPort && port <= MaxPort
}

// ServiceURL builds the canonical URL for a published port on the target
// host. All four discovery strategies produce URLs through this single
// function so the EndpointMap stays uniform regardless of which strategy
// succeeded.
func ServiceURL(host string, port int) string {
	return fmt.Sprintf("http://%s:%d", host, port)
}

// CommandResult is the immutable record of a single remote command
// invocation. It is produced exactly once per dispatch and is never
// partially filled: a failure to execute at all yields ExitCode -1 with
// Error populated and Output empty.
type CommandResult struct {
	// Command is the exact command string that was dispatched.
	Command string `json:"command"`

	// ExitCode is the remote process exit status. -1 means the command
	// never ran to completion (no session, transport error, cancellation).
	ExitCode int `json:"exitCode"`

	// Output is the captured stdout text.
	Output string `json:"output"`

	// Error is the captured stderr text, or a transport failure message
	// when the command could not be executed at all.
	Error string `json:"error"`

	// Elapsed is the wall-clock duration of the invocation, recorded for
	// diagnostics.
	Elapsed time.Duration `json:"elapsed"`
}

// Failed reports whether the invocation ended with a nonzero exit status
// (including the -1 transport-failure convention).
func (r CommandResult) Failed() bool {
	return r.ExitCode != 0
}

// Publisher is a single container-to-host port mapping entry as reported by
// `docker compose ps --format json`. The field names match the JSON keys
// Compose emits, so the struct deserializes directly from a ps record line.
type Publisher struct {
	// TargetPort is the port inside the container.
	TargetPort int `json:"TargetPort"`

	// PublishedPort is the port exposed on the host. 0 means the port is
	// internal-only and not published.
	PublishedPort int `json:"PublishedPort"`

	// Protocol is the transport protocol, typically "tcp" or "udp".
	Protocol string `json:"Protocol"`
}

// EndpointMap maps a service/container name to the ordered list of
// externally reachable URLs discovered for it.
//
// Invariants:
//   - every port embedded in a URL lies in [MinPort, MaxPort]
//   - URLs within one service's list are distinct
//   - services with zero valid URLs are absent from the map, with one
//     deliberate exception: the compose-file strategy records a service
//     whose ports section parsed but yielded nothing valid as an entry
//     with an empty list, which the report renders as a warning row
//
// An EndpointMap is constructed fresh by each parser invocation and is not
// mutated after the parser returns it.
type EndpointMap map[string][]string

// IsEmpty reports whether the map contains no services at all. Note that a
// map holding only services with empty URL lists is NOT empty — those
// entries are a deliberate "configured but nothing published" signal.
func (m EndpointMap) IsEmpty() bool {
	return len(m) == 0
}

// ServiceNames returns the service names in lexicographic order. Iterating
// a Go map is intentionally randomized, so every consumer that needs
// deterministic output goes through this accessor.
func (m EndpointMap) ServiceNames() []string {
	names := make([]string, 0, len(m))
	for name := range m {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// URLCount returns the total number of URLs across all services.
func (m EndpointMap) URLCount() int {
	total := 0
	for _, urls := range m {
		total += len(urls)
	}
	return total
}

// ExitCode defines standard CLI exit codes. These codes allow scripts and
// CI systems to programmatically determine the outcome of a command.
type ExitCode int

const (
	// ExitSuccess indicates the command completed successfully. Discovering
	// zero exposed ports is still a success — "nothing published" is a
	// valid answer, not a failure.
	ExitSuccess ExitCode = 0

	// ExitGeneralError indicates an unspecified error occurred.
	ExitGeneralError ExitCode = 1

	// ExitConfigError indicates the target configuration file was missing
	// or invalid.
	ExitConfigError ExitCode = 2

	// ExitConnectFailed indicates the SSH connection to the target host
	// could not be established.
	ExitConnectFailed ExitCode = 3
)

// CLIError is a custom error type that carries an exit code.
// This allows the CLI layer to translate domain errors into
// appropriate process exit codes.
type CLIError struct {
	// Code is the exit code to return to the OS.
	Code ExitCode

	// Message is the human-readable error description.
	Message string

	// Err is the underlying error, if any.
	Err error
}

// Error satisfies the error interface. It returns the human-readable
// error message, optionally including the underlying error.
func (e *CLIError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

// Unwrap returns the underlying error for use with errors.Is/errors.As.
func (e *CLIError) Unwrap() error {
	return e.Err
}

// NewCLIError creates a new CLIError with the given exit code and message.
func NewCLIError(code ExitCode, message string) *CLIError {
	return &CLIError{Code: code, Message: message}
}

// WrapCLIError creates a new CLIError that wraps an existing error.
func WrapCLIError(code ExitCode, message string, err error) *CLIError {
	return &CLIError{Code: code, Message: message, Err: err}
}
