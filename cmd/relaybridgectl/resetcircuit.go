package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newResetCircuitCmd() *cobra.Command {
	var addr string
	cmd := &cobra.Command{
		Use:   "reset-circuit",
		Short: "Reset every circuit breaker on a running gateway",
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := doRequest("POST", addr, "/_reset_circuit"); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "all circuit breakers reset")
			return nil
		},
	}
	cmd.Flags().StringVar(&addr, "addr", defaultAddr, "gateway base URL")
	return cmd
}
