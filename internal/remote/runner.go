package remote

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/telmark/portsight/internal/model"
)

// Runner executes commands on a single remote session and converts every
// outcome — success, nonzero exit, transport failure, cancellation — into a
// model.CommandResult. Run never returns an error and never panics; that
// guarantee is what lets the discovery cascade treat any failed command as
// simply "this strategy produced nothing".
type Runner struct {
	sess Session
	log  logrus.FieldLogger
}

// NewRunner creates a Runner bound to the given session. The logger is the
// injected diagnostic capability: every dispatch and completion is logged
// through it, so the core stays testable without capturing process output.
func NewRunner(sess Session, log logrus.FieldLogger) *Runner {
	return &Runner{sess: sess, log: log}
}

// Run executes one command string on the remote session.
//
// If the session is absent or no longer connected, Run returns immediately
// with exit code -1 and a descriptive error, without attempting execution.
// Cancellation of ctx aborts the wait for remote completion; the partial
// result is returned with exit code -1.
func (r *Runner) Run(ctx context.Context, command string) model.CommandResult {
	r.log.WithField("command", command).Debug("dispatching remote command")

	if r.sess == nil || !r.sess.Connected() {
		result := model.CommandResult{
			Command:  command,
			ExitCode: -1,
			Error:    "remote session is not connected",
		}
		r.log.WithField("command", command).Warn("skipped remote command: session not connected")
		return result
	}

	start := time.Now()
	stdout, stderr, exitCode, err := r.sess.Execute(ctx, command)
	elapsed := time.Since(start)

	result := model.CommandResult{
		Command:  command,
		ExitCode: exitCode,
		Output:   stdout,
		Error:    stderr,
		Elapsed:  elapsed,
	}
	if err != nil {
		// Transport-level failure: the command never ran to completion.
		result.ExitCode = -1
		result.Error = err.Error()
	}

	entry := r.log.WithFields(logrus.Fields{
		"command": command,
		"exit":    result.ExitCode,
		"elapsed": elapsed.Round(time.Millisecond).String(),
	})
	if result.Failed() {
		entry.WithField("stderr", result.Error).Warn("remote command failed")
	} else {
		entry.Debug("remote command completed")
	}

	return result
}
