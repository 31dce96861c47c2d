package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/kilianp07/relplan/app"
	"github.com/kilianp07/relplan/core/model"
	"github.com/kilianp07/relplan/core/search"
)

var (
	planData   dataFlags
	planAlg    string
	planSeed   int64
	planExport string
	planJSON   bool
)

var planCmd = &cobra.Command{
	Use:   "plan",
	Short: "Search a plan with the configured algorithm",
	RunE:  runPlan,
}

func init() {
	planData.register(planCmd)
	planCmd.Flags().StringVarP(&planAlg, "algorithm", "a", "", "greedy, hill_climbing, genetic or incremental_genetic")
	planCmd.Flags().Int64Var(&planSeed, "seed", 0, "random seed (0 = time based)")
	planCmd.Flags().StringVarP(&planExport, "export", "o", "", "write the plan to a .json or .csv file")
	planCmd.Flags().BoolVar(&planJSON, "json", false, "print the outcome as JSON")
	rootCmd.AddCommand(planCmd)
}

func runPlan(cmd *cobra.Command, args []string) error {
	sc := cfg.Search
	if planAlg != "" && planAlg != sc.Algorithm {
		// options tuned for another algorithm do not carry over
		sc = search.Config{Algorithm: planAlg, Seed: sc.Seed, Parallelism: sc.Parallelism, Penalties: sc.Penalties}
	}
	if cmd.Flags().Changed("seed") {
		sc.Seed = planSeed
	}
	alg, err := search.New(sc)
	if err != nil {
		return err
	}
	if planExport != "" {
		cfg.Export.Path = planExport
		cfg.Export.Format = ""
		cfg.Export.SetDefaults()
	}
	p, err := planData.load()
	if err != nil {
		return fmt.Errorf("load data: %w", err)
	}
	return withService(func(ctx context.Context, svc *app.Service) error {
		out, err := svc.Plan(ctx, p, alg)
		if out.Result.Best == nil || errors.Is(err, model.ErrInvariantViolation) {
			return err
		}
		if planJSON {
			if perr := printJSON(os.Stdout, out); perr != nil {
				return perr
			}
		} else {
			renderOutcome(os.Stdout, out, p)
		}
		return err
	})
}
