// cascade.go orchestrates the four discovery strategies against a remote
// command executor, in fixed priority order, stopping at the first strategy
// that yields a non-empty endpoint map.
package discovery

import (
	"context"
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/telmark/portsight/internal/model"
)

// Remote commands issued by the cascade. Every command is wrapped with a
// `cd` into the project directory before dispatch, because compose commands
// and the compose file itself are only meaningful from there.
const (
	// Strategy 1: structured JSON listing, with an alternate compose
	// binary as fallback for hosts running the standalone v1 client.
	composePSJSONCommand  = "docker compose ps --format json"
	composePSJSONFallback = "docker-compose ps --format json"

	// Strategy 2: legacy tab-delimited table listing.
	composePSTableCommand = `docker compose ps --format 'table {{.Name}}\t{{.Ports}}'`

	// Strategy 3: the compose file contents, trying both extensions.
	composeFileCommand  = "cat docker-compose.yml"
	composeFileFallback = "cat docker-compose.yaml"

	// Strategy 4: listening ports owned by docker-proxy, reduced to a
	// sorted, deduplicated list of bare numbers by the remote pipeline.
	listenerDumpCommand = `ss -tlnp 2>/dev/null | grep docker-proxy | grep -oE ':[0-9]+\s' | grep -oE '[0-9]+' | sort -un`
)

// Executor runs one command string against an already-connected remote
// session. It never returns an error: execution failures surface as a
// CommandResult with exit code -1 and diagnostic error text, which the
// cascade treats as "this strategy produced nothing".
type Executor interface {
	Run(ctx context.Context, command string) model.CommandResult
}

// Cascade discovers exposed ports by trying each strategy in priority
// order. It holds no per-discovery state; a single Cascade can serve any
// number of sequential Discover calls.
type Cascade struct {
	exec Executor
	log  logrus.FieldLogger
}

// NewCascade creates a Cascade that issues remote commands through the
// given executor and reports progress through the given logger.
func NewCascade(exec Executor, log logrus.FieldLogger) *Cascade {
	return &Cascade{exec: exec, log: log}
}

// Discover returns the endpoint map produced by the first strategy that
// finds anything, running every remote command from workDir and building
// URLs against host.
//
// An empty result map is a valid, non-error outcome meaning "no exposed
// ports detected". Cancellation is honored by the executor per command; a
// cancelled command simply yields an empty strategy result, so a caller
// that wants a full abort must stop re-entering the cascade.
func (c *Cascade) Discover(ctx context.Context, workDir, host string) model.EndpointMap {
	strategies := []struct {
		name string
		run  func() model.EndpointMap
	}{
		{"compose-ps-json", func() model.EndpointMap { return c.jsonStrategy(ctx, workDir, host) }},
		{"compose-ps-table", func() model.EndpointMap { return c.tableStrategy(ctx, workDir, host) }},
		{"compose-file", func() model.EndpointMap { return c.fileStrategy(ctx, workDir, host) }},
		{"listener-dump", func() model.EndpointMap { return c.listenerStrategy(ctx, workDir, host) }},
	}

	for _, strategy := range strategies {
		endpoints := strategy.run()
		if !endpoints.IsEmpty() {
			c.log.WithFields(logrus.Fields{
				"strategy": strategy.name,
				"services": len(endpoints),
				"urls":     endpoints.URLCount(),
			}).Info("port discovery succeeded")
			return endpoints
		}
		c.log.WithField("strategy", strategy.name).Debug("strategy found nothing, falling through")
	}

	c.log.Info("no exposed ports detected by any strategy")
	return model.EndpointMap{}
}

// jsonStrategy runs the structured JSON listing, retrying with the
// standalone docker-compose binary when the primary invocation fails.
func (c *Cascade) jsonStrategy(ctx context.Context, workDir, host string) model.EndpointMap {
	result := c.exec.Run(ctx, inDir(workDir, composePSJSONCommand))
	if result.Failed() {
		result = c.exec.Run(ctx, inDir(workDir, composePSJSONFallback))
	}
	return ParseComposeJSON(result.Output, host)
}

// tableStrategy runs the legacy table listing.
func (c *Cascade) tableStrategy(ctx context.Context, workDir, host string) model.EndpointMap {
	result := c.exec.Run(ctx, inDir(workDir, composePSTableCommand))
	return ParseComposeTable(result.Output, host)
}

// fileStrategy reads the compose file, trying the alternate extension when
// the primary filename does not exist.
func (c *Cascade) fileStrategy(ctx context.Context, workDir, host string) model.EndpointMap {
	result := c.exec.Run(ctx, inDir(workDir, composeFileCommand))
	if result.Failed() {
		result = c.exec.Run(ctx, inDir(workDir, composeFileFallback))
	}
	return ParseComposeFile(result.Output, host)
}

// listenerStrategy runs the docker-proxy listener dump pipeline.
func (c *Cascade) listenerStrategy(ctx context.Context, workDir, host string) model.EndpointMap {
	result := c.exec.Run(ctx, inDir(workDir, listenerDumpCommand))
	return ParseListenerDump(result.Output, host)
}

// inDir wraps a command so it executes from the given remote directory.
// An empty directory means "wherever the login shell lands", typically the
// remote user's home.
func inDir(dir, command string) string {
	if dir == "" {
		return command
	}
	return fmt.Sprintf("cd %s && %s", shellQuote(dir), command)
}

// shellQuote single-quotes a string for POSIX shells, escaping any embedded
// single quotes. Remote project paths come from user configuration and may
// contain spaces.
func shellQuote(s string) string {
	return "'" + strings.ReplaceAll(s, "'", `'\''`) + "'"
}
