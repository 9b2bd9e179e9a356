package main

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"github.com/xelth-com/brokerledger/internal/models"
	"github.com/xelth-com/brokerledger/internal/store"
)

func runTasks(cmd *cobra.Command, args []string) error {
	e, err := openEnv(cmd.Context())
	if err != nil {
		return err
	}
	defer e.Close()

	filter := store.TaskFilter{IncludeDone: tasksAll}
	if tasksAutoOnly {
		filter.Origin = models.OriginAuto
	}
	list, err := e.store.ListTasks(cmd.Context(), filter)
	if err != nil {
		return err
	}
	return printTasks(cmd.OutOrStdout(), list)
}

func printTasks(w io.Writer, list []models.Task) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tSTATUS\tDUE\tKIND\tENTITY\tTITLE")
	for _, t := range list {
		due := "-"
		if t.DueAt != nil && *t.DueAt != "" {
			due = *t.DueAt
		}
		entity := "none"
		if ref := t.Entity(); !ref.IsNone() {
			entity = ref.String()
		}
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s\t%s\n", t.ID, t.Status, due, t.Kind, entity, t.Title)
	}
	return tw.Flush()
}
