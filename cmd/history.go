package cmd

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"txn-extract/internal/store"
)

var (
	historyLimit int
	showStats    bool
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Show saved extractions",
	Args:  cobra.NoArgs,
	RunE:  runHistory,
}

func init() {
	historyCmd.Flags().IntVarP(&historyLimit, "limit", "n", store.DefaultListLimit, "Maximum number of records to show")
	historyCmd.Flags().BoolVar(&showStats, "stats", false, "Show totals per type and category instead of records")
}

func runHistory(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()

	conn, err := store.Open(ctx, cfg.DBPath)
	if err != nil {
		return err
	}
	defer conn.Close()

	h := store.NewHistory(conn)
	tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
	defer tw.Flush()

	if showStats {
		stats, err := h.Stats(ctx, cfg.UserID)
		if err != nil {
			return err
		}
		fmt.Fprintln(tw, "TYPE\tCATEGORY\tCOUNT\tTOTAL")
		for _, s := range stats {
			fmt.Fprintf(tw, "%s\t%s\t%d\t%s\n", s.Type, s.Category, s.Count, s.Total.String())
		}
		return nil
	}

	records, err := h.List(ctx, cfg.UserID, historyLimit)
	if err != nil {
		return err
	}
	fmt.Fprintln(tw, "DATE\tAMOUNT\tTYPE\tCATEGORY\tSOURCE\tDESCRIPTION")
	for _, r := range records {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\n",
			r.Date.Format("2006-01-02"), r.Amount.String(), r.Type, r.Category, r.Source, r.Description)
	}
	return nil
}
