// Command oobctl forces a one-time PXE boot or power-cycles a machine
// through its out-of-band management controller. It is invoked once per
// target by an external orchestrator, prints a single machine-readable
// JSON line on stdout, and exits 0 on success, 1 on any failure. Logs go
// to stderr so stdout stays parseable.
package main

import (
	"fmt"
	"io"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"oobctl/pkg/oob"
)

const usageMsg = "usage: oobctl <oob_address> <username> <password> <set_boot|reset>"

func main() {
	// Optional .env next to the binary; missing file is fine.
	_ = godotenv.Load()

	os.Exit(execute(os.Args[1:], os.Stdout, nil))
}

// execute wires the CLI and returns the process exit code. A non-nil
// transport substitutes the real HTTP transport; tests use this to run the
// whole dispatch path against a fake BMC.
func execute(args []string, out io.Writer, transport oob.Transport) int {
	exitCode := 0

	rootCmd := &cobra.Command{
		Use:   "oobctl <oob_address> <username> <password> <set_boot|reset>",
		Short: "One-shot PXE boot override and power control for BMCs",
		Long: `oobctl drives the Redfish interface of a machine's BMC to either
force the next boot to PXE (set_boot) or power-cycle the machine (reset).
It tolerates non-compliant vendor firmware by cascading over OEM endpoint
variants, and prints one JSON result line per invocation.`,
		// Everything after the command name is positional: passwords may
		// start with a dash.
		DisableFlagParsing: true,
		SilenceUsage:       true,
		SilenceErrors:      true,
		Run: func(cmd *cobra.Command, args []string) {
			exitCode = run(args, out, transport)
		},
	}

	rootCmd.SetArgs(args)
	rootCmd.SetOut(io.Discard)
	if err := rootCmd.Execute(); err != nil {
		result := oob.UsageResult(fmt.Sprintf("invocation failed: %v", err))
		_ = result.Write(out)
		return result.ExitCode()
	}
	return exitCode
}

func run(args []string, out io.Writer, transport oob.Transport) int {
	if len(args) != 4 {
		result := oob.UsageResult(usageMsg)
		_ = result.Write(out)
		return result.ExitCode()
	}

	policy := oob.PolicyFromEnv()
	target := oob.Target{
		Address:  args[0],
		Username: args[1],
		Password: args[2],
	}
	action := args[3]

	if transport == nil {
		transport = oob.NewHTTPTransport(target, policy.Timeout)
	}
	controller := oob.NewController(transport, policy)

	result := oob.ResultFrom(controller.Run(target, action))
	_ = result.Write(out)
	return result.ExitCode()
}
