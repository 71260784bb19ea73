package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/relaybridge/relaybridge"
)

func newValidateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "validate <config-file>",
		Short: "Load and validate a gateway config file without starting a server",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := relaybridge.LoadConfig(args[0])
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "config OK: %d provider(s), failure_threshold=%d, reset_timeout=%s\n",
				len(cfg.Providers), cfg.Gateway.CircuitBreaker.FailureThreshold, cfg.Gateway.CircuitBreaker.ResetTimeout)
			for _, p := range cfg.Providers {
				fmt.Fprintf(cmd.OutOrStdout(), "  - %s (%s) credential_mode=%s\n", p.Name, p.BaseURL, p.CredentialMode)
			}
			return nil
		},
	}
}
