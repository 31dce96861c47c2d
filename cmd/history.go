package cmd

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/kilianp07/relplan/app"
	"github.com/kilianp07/relplan/core/runlog"
)

var (
	historyAlg   string
	historySince time.Duration
	historyLimit int
	historyJSON  bool
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "List stored planning runs",
	RunE:  runHistory,
}

func init() {
	historyCmd.Flags().StringVarP(&historyAlg, "algorithm", "a", "", "only runs of this algorithm")
	historyCmd.Flags().DurationVar(&historySince, "since", 0, "only runs newer than this duration, e.g. 24h")
	historyCmd.Flags().IntVarP(&historyLimit, "limit", "n", 20, "most recent runs to show (0 = all)")
	historyCmd.Flags().BoolVar(&historyJSON, "json", false, "print records as JSON")
	rootCmd.AddCommand(historyCmd)
}

func runHistory(cmd *cobra.Command, args []string) error {
	if historyLimit < 0 {
		return fmt.Errorf("limit must not be negative")
	}
	q := runlog.Query{Algorithm: historyAlg, Limit: historyLimit}
	if historySince > 0 {
		q.Start = time.Now().Add(-historySince)
	}
	return withService(func(ctx context.Context, svc *app.Service) error {
		recs, err := svc.History(ctx, q)
		if err != nil {
			return err
		}
		if historyJSON {
			return printJSON(os.Stdout, recs)
		}
		renderHistory(os.Stdout, recs)
		return nil
	})
}
