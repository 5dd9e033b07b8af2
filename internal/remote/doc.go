// Package remote provides command execution on an already-authenticated
// remote host over SSH.
//
// The package deliberately separates two concerns:
//
//   - Session is the transport: a connected handle that can execute one
//     command string and hand back stdout, stderr, and an exit status.
//     SSHSession is the production implementation on golang.org/x/crypto/ssh.
//   - Runner is the execution policy: it checks the session is usable,
//     measures elapsed time, logs every dispatch, and converts every
//     possible failure into a model.CommandResult. Runner.Run never
//     returns an error — transport problems become exit code -1 results.
//
// Discovery depends only on the Runner's behavior, so tests substitute a
// fake Session and never touch the network.
package remote
