package discovery

import (
	"context"
	"io"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/telmark/portsight/internal/model"
)

// fakeExecutor is a scripted Executor: each known command returns its
// canned result, anything else fails with exit code -1. It records every
// dispatched command so tests can assert on call order and count.
type fakeExecutor struct {
	results map[string]model.CommandResult
	calls   []string
}

func (f *fakeExecutor) Run(ctx context.Context, command string) model.CommandResult {
	f.calls = append(f.calls, command)
	if result, ok := f.results[command]; ok {
		return result
	}
	return model.CommandResult{Command: command, ExitCode: -1, Error: "command not scripted"}
}

// ok wraps stdout text in a successful CommandResult.
func ok(output string) model.CommandResult {
	return model.CommandResult{ExitCode: 0, Output: output}
}

// newTestCascade builds a cascade around the fake executor with logging
// discarded.
func newTestCascade(exec *fakeExecutor) *Cascade {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return NewCascade(exec, log)
}

// TestDiscover_ShortCircuitsOnFirstStrategy verifies that when the JSON
// listing already yields endpoints, no further remote command is issued —
// the session is a shared resource and every extra round trip is waste.
func TestDiscover_ShortCircuitsOnFirstStrategy(t *testing.T) {
	exec := &fakeExecutor{results: map[string]model.CommandResult{
		composePSJSONCommand: ok(`{"Name":"app-web-1","Publishers":[{"TargetPort":80,"PublishedPort":8080,"Protocol":"tcp"}]}`),
	}}
	cascade := newTestCascade(exec)

	endpoints := cascade.Discover(context.Background(), "", "host")

	require.Equal(t, model.EndpointMap{"app-web-1": {"http://host:8080"}}, endpoints)
	assert.Equal(t, []string{composePSJSONCommand}, exec.calls,
		"exactly one remote command should have been dispatched")
}

// TestDiscover_JSONFallbackBinary verifies that a failing primary compose
// invocation triggers the standalone docker-compose fallback, and that its
// output is parsed instead.
func TestDiscover_JSONFallbackBinary(t *testing.T) {
	exec := &fakeExecutor{results: map[string]model.CommandResult{
		composePSJSONCommand:  {ExitCode: 127, Error: "docker: 'compose' is not a docker command"},
		composePSJSONFallback: ok(`{"Name":"app-web-1","Publishers":[{"TargetPort":80,"PublishedPort":8080,"Protocol":"tcp"}]}`),
	}}
	cascade := newTestCascade(exec)

	endpoints := cascade.Discover(context.Background(), "", "host")

	require.Equal(t, []string{"http://host:8080"}, endpoints["app-web-1"])
	assert.Equal(t, []string{composePSJSONCommand, composePSJSONFallback}, exec.calls)
}

// TestDiscover_NoFallbackWhenPrimarySucceedsEmpty verifies that a clean
// zero-exit listing with no containers does NOT trigger the fallback
// binary — the cascade moves on to the next strategy instead.
func TestDiscover_NoFallbackWhenPrimarySucceedsEmpty(t *testing.T) {
	exec := &fakeExecutor{results: map[string]model.CommandResult{
		composePSJSONCommand:  ok(""),
		composePSTableCommand: ok("NAME\tPORTS\napp-web-1\t0.0.0.0:8080->80/tcp\n"),
	}}
	cascade := newTestCascade(exec)

	endpoints := cascade.Discover(context.Background(), "", "host")

	require.Equal(t, []string{"http://host:8080"}, endpoints["app-web-1"])
	assert.Equal(t, []string{composePSJSONCommand, composePSTableCommand}, exec.calls,
		"the docker-compose fallback must not run after a clean empty listing")
}

// TestDiscover_FallsThroughToComposeFile verifies the third strategy,
// including the .yaml extension fallback.
func TestDiscover_FallsThroughToComposeFile(t *testing.T) {
	exec := &fakeExecutor{results: map[string]model.CommandResult{
		composeFileFallback: ok("services:\n  web:\n    ports:\n      - \"8080:80\"\n"),
	}}
	cascade := newTestCascade(exec)

	endpoints := cascade.Discover(context.Background(), "", "host")

	require.Equal(t, []string{"http://host:8080"}, endpoints["web"])
	assert.Equal(t, []string{
		composePSJSONCommand, composePSJSONFallback,
		composePSTableCommand,
		composeFileCommand, composeFileFallback,
	}, exec.calls)
}

// TestDiscover_FallsThroughToListenerDump verifies the last-resort
// strategy and its synthetic service key.
func TestDiscover_FallsThroughToListenerDump(t *testing.T) {
	exec := &fakeExecutor{results: map[string]model.CommandResult{
		listenerDumpCommand: ok("8080\n8443\n"),
	}}
	cascade := newTestCascade(exec)

	endpoints := cascade.Discover(context.Background(), "", "host")

	require.Equal(t,
		[]string{"http://host:8080", "http://host:8443"},
		endpoints[model.UnknownServicesKey])
}

// TestDiscover_AllStrategiesEmpty verifies the defined terminal outcome:
// every strategy failing yields an empty — and non-nil — map, not an error.
func TestDiscover_AllStrategiesEmpty(t *testing.T) {
	exec := &fakeExecutor{}
	cascade := newTestCascade(exec)

	endpoints := cascade.Discover(context.Background(), "", "host")

	require.NotNil(t, endpoints)
	assert.True(t, endpoints.IsEmpty())
	// Two commands for the JSON strategy (primary + fallback), one for the
	// table, two for the compose file, one for the listener dump.
	assert.Len(t, exec.calls, 6, "every strategy should have been attempted")
}

// TestDiscover_CommandsRunFromWorkDir verifies that a non-empty project
// directory wraps every command in a cd.
func TestDiscover_CommandsRunFromWorkDir(t *testing.T) {
	exec := &fakeExecutor{results: map[string]model.CommandResult{
		"cd '/srv/app' && " + composePSJSONCommand: ok(`{"Name":"web","Publishers":[{"PublishedPort":8080}]}`),
	}}
	cascade := newTestCascade(exec)

	endpoints := cascade.Discover(context.Background(), "/srv/app", "host")

	assert.Equal(t, []string{"http://host:8080"}, endpoints["web"])
}

// TestInDir verifies working-directory wrapping, including the empty-dir
// passthrough and shell quoting of awkward paths.
func TestInDir(t *testing.T) {
	assert.Equal(t, "ls", inDir("", "ls"))
	assert.Equal(t, "cd '/srv/app' && ls", inDir("/srv/app", "ls"))
	assert.Equal(t, `cd '/srv/my app' && ls`, inDir("/srv/my app", "ls"))
	assert.Equal(t, `cd '/srv/o'\''brien' && ls`, inDir("/srv/o'brien", "ls"),
		"embedded single quotes must be escaped for POSIX shells")
}
