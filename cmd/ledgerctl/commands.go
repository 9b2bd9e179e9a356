package main

import (
	"time"

	"github.com/spf13/cobra"
)

var (
	matchLimit    int
	tasksAll      bool
	tasksAutoOnly bool
	tokenSubject  string
	tokenTTL      time.Duration

	rootCmd = &cobra.Command{
		Use:           "ledgerctl",
		Short:         "Operator tool for the brokerage ledger",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	reconcileCmd = &cobra.Command{
		Use:   "reconcile",
		Short: "Recompute auto tasks and print the open count",
		Args:  cobra.NoArgs,
		RunE:  runReconcile, // cmd_reconcile.go
	}

	matchCmd = &cobra.Command{
		Use:   "match [customer-id]",
		Short: "Rank properties for a customer",
		Args:  cobra.ExactArgs(1),
		RunE:  runMatch, // cmd_match.go
	}

	tasksCmd = &cobra.Command{
		Use:   "tasks",
		Short: "List tasks, due first",
		Args:  cobra.NoArgs,
		RunE:  runTasks, // cmd_tasks.go
	}

	tokenCmd = &cobra.Command{
		Use:   "token",
		Short: "Mint an API bearer token signed with API_JWT_SECRET",
		Args:  cobra.NoArgs,
		RunE:  runToken, // cmd_token.go
	}
)

func init() {
	matchCmd.Flags().IntVar(&matchLimit, "limit", 30, "maximum number of matches")
	tasksCmd.Flags().BoolVar(&tasksAll, "all", false, "include done tasks")
	tasksCmd.Flags().BoolVar(&tasksAutoOnly, "auto", false, "only reconciler-owned tasks")
	tokenCmd.Flags().StringVar(&tokenSubject, "subject", "operator", "token subject")
	tokenCmd.Flags().DurationVar(&tokenTTL, "ttl", 24*time.Hour, "token lifetime")

	rootCmd.AddCommand(reconcileCmd, matchCmd, tasksCmd, tokenCmd)
}
