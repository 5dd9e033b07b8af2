package remote

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net"
	"os"
	"time"

	"golang.org/x/crypto/ssh"
)

// SSHConfig holds everything needed to establish an SSH connection to the
// target host. Either Password or KeyFile must be set; when both are set,
// key authentication is attempted first.
type SSHConfig struct {
	// Host is the hostname or IP address of the target.
	Host string

	// Port is the SSH port, typically 22.
	Port int

	// User is the login user on the target host.
	User string

	// Password enables password authentication (and keyboard-interactive
	// as a fallback, which some SSH servers require instead).
	Password string

	// KeyFile is the path to a PEM-encoded private key for public-key
	// authentication.
	KeyFile string

	// Timeout bounds both the TCP dial and the SSH handshake.
	Timeout time.Duration
}

// Session is an established remote shell connection capable of executing
// command strings. It is a shared, stateful resource: one command executes
// to completion before the next is issued, so callers must not use a single
// Session concurrently.
type Session interface {
	// Connected reports whether the underlying transport is still usable.
	Connected() bool

	// Execute runs the command remotely and returns captured stdout,
	// captured stderr, and the remote exit status. A clean nonzero exit is
	// NOT an error — err is reserved for transport-level failures
	// (connection dropped, session refused, cancellation), in which case
	// exitCode is -1.
	Execute(ctx context.Context, command string) (stdout, stderr string, exitCode int, err error)
}

// SSHSession is the production Session implementation backed by an
// *ssh.Client. Each Execute opens a fresh SSH channel, so remote commands
// do not share shell state.
type SSHSession struct {
	client *ssh.Client
}

// Dial establishes an SSH connection to the host described by cfg.
// The context bounds the TCP dial; cfg.Timeout additionally bounds the
// SSH handshake.
//
// Host key verification is intentionally disabled: portsight targets hosts
// the operator already deploys to over SSH, and the tool has no channel for
// interactive fingerprint confirmation.
func Dial(ctx context.Context, cfg SSHConfig) (*SSHSession, error) {
	auth, err := authMethods(cfg)
	if err != nil {
		return nil, err
	}

	clientConfig := &ssh.ClientConfig{
		User:            cfg.User,
		Auth:            auth,
		HostKeyCallback: ssh.InsecureIgnoreHostKey(),
		Timeout:         cfg.Timeout,
	}

	address := net.JoinHostPort(cfg.Host, fmt.Sprintf("%d", cfg.Port))

	dialer := &net.Dialer{Timeout: cfg.Timeout}
	conn, err := dialer.DialContext(ctx, "tcp", address)
	if err != nil {
		return nil, fmt.Errorf("failed to dial %s: %w", address, err)
	}

	sshConn, chans, reqs, err := ssh.NewClientConn(conn, address, clientConfig)
	if err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("SSH handshake with %s failed: %w", address, err)
	}

	return &SSHSession{client: ssh.NewClient(sshConn, chans, reqs)}, nil
}

// authMethods assembles the SSH authentication chain from the config.
func authMethods(cfg SSHConfig) ([]ssh.AuthMethod, error) {
	var methods []ssh.AuthMethod

	if cfg.KeyFile != "" {
		pem, err := os.ReadFile(cfg.KeyFile)
		if err != nil {
			return nil, fmt.Errorf("failed to read key file %s: %w", cfg.KeyFile, err)
		}
		signer, err := ssh.ParsePrivateKey(pem)
		if err != nil {
			return nil, fmt.Errorf("failed to parse key file %s: %w", cfg.KeyFile, err)
		}
		methods = append(methods, ssh.PublicKeys(signer))
	}

	if cfg.Password != "" {
		methods = append(methods,
			ssh.Password(cfg.Password),
			// Some sshd configurations only offer keyboard-interactive.
			// Answer every prompt with the configured password.
			ssh.KeyboardInteractive(func(user, instruction string, questions []string, echos []bool) ([]string, error) {
				answers := make([]string, len(questions))
				for i := range questions {
					answers[i] = cfg.Password
				}
				return answers, nil
			}),
		)
	}

	if len(methods) == 0 {
		return nil, errors.New("no SSH authentication configured: set a password or a key file")
	}
	return methods, nil
}

// Connected probes the transport with a keepalive request. This is cheaper
// than opening a session channel and does not count against the server's
// session limit.
func (s *SSHSession) Connected() bool {
	if s == nil || s.client == nil {
		return false
	}
	_, _, err := s.client.SendRequest("keepalive@openssh.com", true, nil)
	return err == nil
}

// Execute runs one command on a fresh SSH channel, capturing stdout and
// stderr separately.
//
// Cancellation aborts the wait for remote completion: the channel is torn
// down and whatever output arrived so far is returned with exit code -1.
// The remote process itself is not rolled back.
func (s *SSHSession) Execute(ctx context.Context, command string) (string, string, int, error) {
	session, err := s.client.NewSession()
	if err != nil {
		return "", "", -1, fmt.Errorf("failed to open SSH channel: %w", err)
	}
	defer func() { _ = session.Close() }()

	var stdout, stderr bytes.Buffer
	session.Stdout = &stdout
	session.Stderr = &stderr

	if err := session.Start(command); err != nil {
		return "", "", -1, fmt.Errorf("failed to start remote command: %w", err)
	}

	done := make(chan error, 1)
	go func() { done <- session.Wait() }()

	select {
	case err := <-done:
		if err == nil {
			return stdout.String(), stderr.String(), 0, nil
		}
		// A clean nonzero exit carries its status in *ssh.ExitError and is
		// reported through exitCode, not err.
		var exitErr *ssh.ExitError
		if errors.As(err, &exitErr) {
			return stdout.String(), stderr.String(), exitErr.ExitStatus(), nil
		}
		return stdout.String(), stderr.String(), -1, err

	case <-ctx.Done():
		// Closing the session unblocks the Wait goroutine; its result is
		// discarded via the buffered channel.
		_ = session.Signal(ssh.SIGKILL)
		_ = session.Close()
		return stdout.String(), stderr.String(), -1, ctx.Err()
	}
}

// Close tears down the SSH connection.
func (s *SSHSession) Close() error {
	if s.client == nil {
		return nil
	}
	err := s.client.Close()
	s.client = nil
	return err
}
