package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/Veraticus/tranche/internal/cli"
	"github.com/Veraticus/tranche/internal/common"
	"github.com/Veraticus/tranche/internal/service"
)

func dealsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "deals",
		Short: "Inspect stored new-issue deals",
	}
	cmd.AddCommand(dealsListCmd(), dealsShowCmd(), dealsDeleteCmd())
	return cmd
}

func dealsListCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List stored deals, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			sector, _ := cmd.Flags().GetString("sector")
			minConfidence, _ := cmd.Flags().GetInt("min-confidence")
			limit, _ := cmd.Flags().GetInt("limit")
			asJSON, _ := cmd.Flags().GetBool("json")

			store, err := initStorage(cmd.Context())
			if err != nil {
				return fmt.Errorf("failed to initialize storage: %w", err)
			}
			defer closeStorage(store)

			deals, err := store.ListDeals(cmd.Context(), service.DealFilter{
				Sector:        sector,
				MinConfidence: minConfidence,
				Limit:         limit,
			})
			if err != nil {
				return fmt.Errorf("failed to list deals: %w", err)
			}

			if asJSON {
				return writeJSON(os.Stdout, deals)
			}
			fmt.Println(cli.RenderDealList(deals, cfg.Review.ConfidenceThreshold)) //nolint:forbidigo // User-facing output
			return nil
		},
	}
	cmd.Flags().String("sector", "", "only deals in this sector")
	cmd.Flags().Int("min-confidence", 0, "only deals with at least this confidence")
	cmd.Flags().Int("limit", 50, "maximum number of deals")
	cmd.Flags().Bool("json", false, "print as JSON")
	return cmd
}

func dealsShowCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "show ID",
		Short: "Show one deal with its capital structure",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			asJSON, _ := cmd.Flags().GetBool("json")

			store, err := initStorage(cmd.Context())
			if err != nil {
				return fmt.Errorf("failed to initialize storage: %w", err)
			}
			defer closeStorage(store)

			deal, err := store.GetDeal(cmd.Context(), args[0])
			if err != nil {
				return notFound("deal", args[0], err)
			}

			if asJSON {
				return writeJSON(os.Stdout, deal)
			}
			fmt.Println(cli.RenderDeal(deal, cfg.Review.ConfidenceThreshold)) //nolint:forbidigo // User-facing output
			return nil
		},
	}
	cmd.Flags().Bool("json", false, "print as JSON")
	return cmd
}

func dealsDeleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete ID",
		Short: "Delete a deal and its note classes",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := initStorage(cmd.Context())
			if err != nil {
				return fmt.Errorf("failed to initialize storage: %w", err)
			}
			defer closeStorage(store)

			if err := store.DeleteDeal(cmd.Context(), args[0]); err != nil {
				return notFound("deal", args[0], err)
			}
			fmt.Println(cli.FormatSuccess("Deleted deal " + args[0])) //nolint:forbidigo // User-facing output
			return nil
		},
	}
}

func reportsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "reports",
		Short: "Inspect stored surveillance reports",
	}
	cmd.AddCommand(reportsListCmd(), reportsShowCmd(), reportsDeleteCmd())
	return cmd
}

func reportsListCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List stored surveillance reports, latest report date first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			dealID, _ := cmd.Flags().GetString("deal")
			limit, _ := cmd.Flags().GetInt("limit")
			asJSON, _ := cmd.Flags().GetBool("json")

			store, err := initStorage(cmd.Context())
			if err != nil {
				return fmt.Errorf("failed to initialize storage: %w", err)
			}
			defer closeStorage(store)

			reports, err := store.ListSurveillance(cmd.Context(), service.ReportFilter{
				DealIdentifier: dealID,
				Limit:          limit,
			})
			if err != nil {
				return fmt.Errorf("failed to list reports: %w", err)
			}

			if asJSON {
				return writeJSON(os.Stdout, reports)
			}
			fmt.Println(cli.RenderReportList(reports, cfg.Review.ConfidenceThreshold)) //nolint:forbidigo // User-facing output
			return nil
		},
	}
	cmd.Flags().String("deal", "", "only reports for this deal identifier")
	cmd.Flags().Int("limit", 50, "maximum number of reports")
	cmd.Flags().Bool("json", false, "print as JSON")
	return cmd
}

func reportsShowCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "show ID",
		Short: "Show one surveillance report",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			asJSON, _ := cmd.Flags().GetBool("json")

			store, err := initStorage(cmd.Context())
			if err != nil {
				return fmt.Errorf("failed to initialize storage: %w", err)
			}
			defer closeStorage(store)

			report, err := store.GetSurveillance(cmd.Context(), args[0])
			if err != nil {
				return notFound("report", args[0], err)
			}

			if asJSON {
				return writeJSON(os.Stdout, report)
			}
			fmt.Println(cli.RenderReport(report, cfg.Review.ConfidenceThreshold)) //nolint:forbidigo // User-facing output
			return nil
		},
	}
	cmd.Flags().Bool("json", false, "print as JSON")
	return cmd
}

func reportsDeleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete ID",
		Short: "Delete a surveillance report",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := initStorage(cmd.Context())
			if err != nil {
				return fmt.Errorf("failed to initialize storage: %w", err)
			}
			defer closeStorage(store)

			if err := store.DeleteSurveillance(cmd.Context(), args[0]); err != nil {
				return notFound("report", args[0], err)
			}
			fmt.Println(cli.FormatSuccess("Deleted report " + args[0])) //nolint:forbidigo // User-facing output
			return nil
		},
	}
}

func notFound(kind, id string, err error) error {
	if errors.Is(err, common.ErrNotFound) {
		return common.NewUserError(fmt.Sprintf("no %s with id %s", kind, id), err)
	}
	return fmt.Errorf("failed to load %s %s: %w", kind, id, err)
}
