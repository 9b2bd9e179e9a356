package main

import (
	"fmt"
	"io"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"github.com/xelth-com/brokerledger/internal/matching"
	"github.com/xelth-com/brokerledger/internal/metrics"
	"github.com/xelth-com/brokerledger/internal/proposal"
	"github.com/xelth-com/brokerledger/internal/store"
)

func runMatch(cmd *cobra.Command, args []string) error {
	id, err := strconv.ParseUint(args[0], 10, 64)
	if err != nil {
		return fmt.Errorf("invalid customer id %q", args[0])
	}

	e, err := openEnv(cmd.Context())
	if err != nil {
		return err
	}
	defer e.Close()

	c, err := e.store.GetCustomer(cmd.Context(), uint(id), false)
	if err != nil {
		return err
	}
	props, err := e.store.ListProperties(cmd.Context(), store.PropertyFilter{})
	if err != nil {
		return err
	}
	metrics.MatchCandidates.Observe(float64(len(props)))

	fmt.Fprintf(cmd.OutOrStdout(), "customer %d %s\n", c.ID, c.CustomerName)
	return printMatches(cmd.OutOrStdout(), matching.Match(c, props, matchLimit))
}

func printMatches(w io.Writer, results []matching.Result) error {
	if len(results) == 0 {
		fmt.Fprintln(w, "no matching properties")
		return nil
	}
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "RANK\tID\tSCORE\tPROPERTY\tPRICE\tREASONS")
	for i, r := range results {
		fmt.Fprintf(tw, "%d\t%d\t%d\t%s\t%s\t%s\n",
			i+1, r.PropertyID, r.Score, r.Property.Label(), proposal.PriceSummary(r.Property), strings.Join(r.Reasons, ", "))
	}
	return tw.Flush()
}
