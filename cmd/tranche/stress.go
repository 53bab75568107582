package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/Veraticus/tranche/internal/cli"
	"github.com/Veraticus/tranche/internal/scenario"
)

func stressCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "stress DEAL_ID",
		Short: "Stress a stored deal's expected losses against its credit enhancement",
		Long: `Apply base, moderate and severe multiples to the deal's expected
cumulative net loss and compare each with its credit enhancement, then run a
seeded Monte Carlo simulation of the loss distribution.`,
		Args: cobra.ExactArgs(1),
		RunE: runStress,
	}
	cmd.Flags().Int("simulations", scenario.DefaultSimulations, "Monte Carlo paths (0 skips the simulation)")
	cmd.Flags().Uint64("seed", 1, "random seed")
	cmd.Flags().Float64("volatility", scenario.DefaultVolatility, "log-space volatility of simulated losses")
	cmd.Flags().Bool("json", false, "print results as JSON")
	return cmd
}

func runStress(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	simulations, _ := cmd.Flags().GetInt("simulations")
	seed, _ := cmd.Flags().GetUint64("seed")
	volatility, _ := cmd.Flags().GetFloat64("volatility")
	asJSON, _ := cmd.Flags().GetBool("json")

	store, err := initStorage(ctx)
	if err != nil {
		return fmt.Errorf("failed to initialize storage: %w", err)
	}
	defer closeStorage(store)

	deal, err := store.GetDeal(ctx, args[0])
	if err != nil {
		return notFound("deal", args[0], err)
	}

	stress, err := scenario.StressTest(deal, nil)
	if err != nil {
		return err
	}

	var sim *scenario.SimulationResult
	if simulations > 0 {
		res, err := scenario.Simulate(ctx, deal, scenario.SimulationOptions{
			Simulations: simulations,
			Seed:        seed,
			Volatility:  volatility,
		})
		if err != nil {
			return err
		}
		sim = &res
	}

	if asJSON {
		return writeJSON(os.Stdout, struct {
			Simulation *scenario.SimulationResult `json:"simulation,omitempty"`
			Stress     scenario.StressResult      `json:"stress"`
		}{Stress: stress, Simulation: sim})
	}

	fmt.Println(cli.RenderStress(&stress)) //nolint:forbidigo // User-facing output
	if sim != nil {
		fmt.Println()                          //nolint:forbidigo // User-facing output
		fmt.Println(cli.RenderSimulation(sim)) //nolint:forbidigo // User-facing output
	}
	return nil
}
