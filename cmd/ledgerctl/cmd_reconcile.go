package main

import (
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"
)

func runReconcile(cmd *cobra.Command, args []string) error {
	e, err := openEnv(cmd.Context())
	if err != nil {
		return err
	}
	defer e.Close()

	open, err := e.reconciler.Reconcile(cmd.Context())
	return printReconcile(cmd.OutOrStdout(), open, err)
}

// printReconcile reports the open count and every joined write failure.
// Only a pass that never reached the count is returned as an error.
func printReconcile(w io.Writer, open int, err error) error {
	var failures []error
	if err != nil {
		if joined, ok := err.(interface{ Unwrap() []error }); ok {
			failures = joined.Unwrap()
		} else {
			return err
		}
	}
	fmt.Fprintf(w, "open auto tasks: %d\n", open)
	for _, f := range failures {
		fmt.Fprintf(w, "  failed: %v\n", f)
	}
	if len(failures) > 0 {
		return errors.New("reconciliation finished with failures")
	}
	return nil
}
