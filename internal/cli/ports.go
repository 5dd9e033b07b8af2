// Package cli — ports.go implements the "portsight ports" command.
//
// The ports command connects to the target host over SSH, runs the
// discovery cascade against the remote Compose project, and prints the
// resulting endpoint map as an operator-facing table or as JSON.
package cli

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/telmark/portsight/internal/config"
	"github.com/telmark/portsight/internal/discovery"
	"github.com/telmark/portsight/internal/model"
	"github.com/telmark/portsight/internal/remote"
	"github.com/telmark/portsight/internal/report"
)

// portsFlags holds the flag values for the ports command.
// These are bound to cobra flags in NewPortsCommand.
type portsFlags struct {
	// configPath points at an explicit target definition file. When empty,
	// the current directory is searched for the default file names.
	configPath string

	// Flag overrides for individual target fields. Any non-zero value
	// beats the corresponding config file value, and together they allow
	// running without a config file at all.
	host       string
	user       string
	password   string
	keyFile    string
	sshPort    int
	projectDir string
}

// NewPortsCommand creates the "ports" cobra command.
// It is called from NewRootCommand to register as a subcommand.
func NewPortsCommand() *cobra.Command {
	flags := &portsFlags{}

	cmd := &cobra.Command{
		Use:   "ports",
		Short: "Discover the ports the remote deployment exposes",
		Long: `Connect to the target host over SSH and report which ports its
Compose services publish, as a table of service names and URLs.

The target is read from a portsight.yml / portsight.jsonc file in the
current directory unless --config or individual flags say otherwise.

Examples:
  portsight ports
  portsight ports --config staging.yml
  portsight ports --host app.example.com --user deploy --key ~/.ssh/id_ed25519 --dir /srv/app`,

		Args: cobra.NoArgs,

		RunE: func(cmd *cobra.Command, args []string) error {
			return runPorts(cmd.Context(), flags)
		},
	}

	cmd.Flags().StringVarP(&flags.configPath, "config", "c", "", "Path to the target definition file")
	cmd.Flags().StringVar(&flags.host, "host", "", "Target host (overrides config)")
	cmd.Flags().StringVar(&flags.user, "user", "", "SSH user (overrides config)")
	cmd.Flags().StringVar(&flags.password, "password", "", "SSH password (overrides config)")
	cmd.Flags().StringVar(&flags.keyFile, "key", "", "SSH private key file (overrides config)")
	cmd.Flags().IntVar(&flags.sshPort, "port", 0, "SSH port (overrides config)")
	cmd.Flags().StringVar(&flags.projectDir, "dir", "", "Remote Compose project directory (overrides config)")

	return cmd
}

// runPorts is the main logic function for the ports command.
// It resolves the target, connects over SSH, runs the discovery cascade,
// and outputs results in the appropriate format.
func runPorts(ctx context.Context, flags *portsFlags) error {
	// Step 1: Resolve the target from config file and flag overrides.
	target, err := resolveTarget(flags)
	if err != nil {
		return err // resolveTarget already returns CLIError with ExitConfigError
	}

	// Step 2: Establish the SSH session.
	sess, err := remote.Dial(ctx, remote.SSHConfig{
		Host:     target.Host,
		Port:     target.SSHPort,
		User:     target.User,
		Password: target.Password,
		KeyFile:  target.KeyFile,
		Timeout:  target.ConnectTimeout(),
	})
	if err != nil {
		return model.WrapCLIError(model.ExitConnectFailed,
			fmt.Sprintf("could not connect to %s", target.Host), err)
	}
	// defer ensures the SSH connection is closed when this function
	// returns, releasing the remote session slot.
	defer func() { _ = sess.Close() }()

	logger.WithField("host", target.Host).Debug("connected to target host")

	// Step 3: Run the discovery cascade. Discovery never fails — an empty
	// map is the defined "nothing published" outcome.
	runner := remote.NewRunner(sess, logger)
	cascade := discovery.NewCascade(runner, logger)
	endpoints := cascade.Discover(ctx, target.ProjectDir, target.Host)

	// Step 4: Output results in the appropriate format.
	printPortsResult(target.Host, endpoints)
	return nil
}

// resolveTarget loads the target definition and overlays flag overrides.
//
// Resolution order: --config path if given, otherwise the default file
// names in the current directory, otherwise an empty target — which is
// still usable when --host/--user/... flags supply everything.
func resolveTarget(flags *portsFlags) (*config.Target, error) {
	var target *config.Target

	switch {
	case flags.configPath != "":
		loaded, err := config.Load(flags.configPath)
		if err != nil {
			return nil, model.WrapCLIError(model.ExitConfigError, "invalid target definition", err)
		}
		target = loaded

	default:
		path, err := config.Locate(".")
		if err != nil {
			// No file found. Fall back to flags only; Validate below
			// reports what is missing.
			target = &config.Target{}
			target.ApplyDefaults()
			break
		}
		loaded, err := config.Load(path)
		if err != nil {
			return nil, model.WrapCLIError(model.ExitConfigError, "invalid target definition", err)
		}
		logger.WithField("config", path).Debug("loaded target definition")
		target = loaded
	}

	// Flag overrides beat file values.
	if flags.host != "" {
		target.Host = flags.host
	}
	if flags.user != "" {
		target.User = flags.user
	}
	if flags.password != "" {
		target.Password = flags.password
	}
	if flags.keyFile != "" {
		target.KeyFile = flags.keyFile
	}
	if flags.sshPort != 0 {
		target.SSHPort = flags.sshPort
	}
	if flags.projectDir != "" {
		target.ProjectDir = flags.projectDir
	}

	if err := target.Validate(); err != nil {
		return nil, model.WrapCLIError(model.ExitConfigError, "incomplete target definition", err)
	}
	return target, nil
}

// printPortsResult outputs the endpoint map in text or JSON format,
// depending on the global --json flag.
func printPortsResult(host string, endpoints model.EndpointMap) {
	if IsJSONOutput() {
		printPortsResultJSON(host, endpoints)
	} else {
		fmt.Println(report.Render(endpoints))
	}
}

// portsServiceJSON is the JSON output structure for a single service
// in the ports command.
type portsServiceJSON struct {
	Name string   `json:"name"`
	URLs []string `json:"urls"`
}

// portsResultJSON is the top-level JSON output structure for the ports
// command.
type portsResultJSON struct {
	Host     string             `json:"host"`
	Services []portsServiceJSON `json:"services"`
}

// buildPortsResultJSON converts an endpoint map into the JSON output
// structure, with services in deterministic name order. Exported logic is
// kept out of the printing path so it can be unit tested.
func buildPortsResultJSON(host string, endpoints model.EndpointMap) portsResultJSON {
	result := portsResultJSON{
		Host: host,
		// Use an empty slice instead of nil so JSON output shows []
		// instead of null when nothing was discovered.
		Services: make([]portsServiceJSON, 0, len(endpoints)),
	}

	for _, name := range endpoints.ServiceNames() {
		urls := endpoints[name]
		if urls == nil {
			urls = []string{}
		}
		result.Services = append(result.Services, portsServiceJSON{Name: name, URLs: urls})
	}
	return result
}

// printPortsResultJSON outputs the endpoint map as structured JSON.
func printPortsResultJSON(host string, endpoints model.EndpointMap) {
	data, _ := json.MarshalIndent(buildPortsResultJSON(host, endpoints), "", "  ")
	fmt.Println(string(data))
}
