package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/kilianp07/relplan/app"
)

var compareData dataFlags

var compareCmd = &cobra.Command{
	Use:   "compare",
	Short: "Run several algorithms on the same data and compare their plans",
	Long: "Runs the algorithms listed under compare in the configuration, or every\n" +
		"available algorithm with its defaults, and prints one row per algorithm.",
	RunE: runCompare,
}

func init() {
	compareData.register(compareCmd)
	rootCmd.AddCommand(compareCmd)
}

func runCompare(cmd *cobra.Command, args []string) error {
	algs, err := cfg.Algorithms()
	if err != nil {
		return err
	}
	p, err := compareData.load()
	if err != nil {
		return fmt.Errorf("load data: %w", err)
	}
	return withService(func(ctx context.Context, svc *app.Service) error {
		outs, err := svc.Compare(ctx, p, algs)
		renderComparison(os.Stdout, outs)
		if best := app.Best(outs); best >= 0 {
			fmt.Fprintf(os.Stdout, "best algorithm: %s (fitness %.2f)\n", outs[best].Result.Algorithm, outs[best].Result.Fitness)
		}
		return err
	})
}
