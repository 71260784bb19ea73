// Command relaybridgectl is the operator CLI for a running RelayBridge
// gateway: validating a config file before deploying it, checking the
// gateway's circuit breaker health, and resetting breakers by hand.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func main() {
	root := &cobra.Command{
		Use:           "relaybridgectl",
		Short:         "Operate a RelayBridge gateway",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.AddCommand(newValidateCmd())
	root.AddCommand(newStatusCmd())
	root.AddCommand(newResetCircuitCmd())

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
