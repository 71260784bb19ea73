package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
)

type breakerStatusView struct {
	IsOpen        bool     `json:"is_open"`
	FailureCount  int      `json:"failure_count"`
	RemainingTime *float64 `json:"remaining_time"`
}

type healthView struct {
	Status          string                       `json:"status"`
	Providers       []string                     `json:"providers"`
	CircuitBreakers map[string]breakerStatusView `json:"circuit_breakers"`
}

func newStatusCmd() *cobra.Command {
	var addr string
	cmd := &cobra.Command{
		Use:   "status",
		Short: "Query a running gateway's /_health endpoint",
		RunE: func(cmd *cobra.Command, args []string) error {
			body, err := doRequest("GET", addr, "/_health")
			if err != nil {
				return err
			}
			var health healthView
			if err := json.Unmarshal(body, &health); err != nil {
				return fmt.Errorf("decode health response: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "status: %s\n", health.Status)
			for _, name := range health.Providers {
				b := health.CircuitBreakers[name]
				state := "closed"
				if b.IsOpen {
					state = "open"
				}
				fmt.Fprintf(cmd.OutOrStdout(), "  %-20s %-7s failures=%d", name, state, b.FailureCount)
				if b.RemainingTime != nil {
					fmt.Fprintf(cmd.OutOrStdout(), " remaining=%.0fs", *b.RemainingTime)
				}
				fmt.Fprintln(cmd.OutOrStdout())
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&addr, "addr", defaultAddr, "gateway base URL")
	return cmd
}
