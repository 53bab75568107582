package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/Veraticus/tranche/internal/cli"
	"github.com/Veraticus/tranche/internal/export"
	"github.com/Veraticus/tranche/internal/service"
)

func exportCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export stored records as CSV",
		Long: `Write stored records as CSV for spreadsheets. Without --out the CSV
goes to standard output.`,
	}
	cmd.PersistentFlags().String("out", "", "output file (default: stdout)")

	cmd.AddCommand(&cobra.Command{
		Use:   "deals",
		Short: "Export deals, one row per deal",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runExport(cmd, func(w *export.Writer, out io.Writer, store service.Storage) error {
				deals, err := store.ListDeals(cmd.Context(), service.DealFilter{})
				if err != nil {
					return fmt.Errorf("failed to list deals: %w", err)
				}
				return w.WriteDeals(out, deals)
			})
		},
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "classes",
		Short: "Export the capital structure of every deal, one row per note class",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runExport(cmd, func(w *export.Writer, out io.Writer, store service.Storage) error {
				deals, err := store.ListDeals(cmd.Context(), service.DealFilter{})
				if err != nil {
					return fmt.Errorf("failed to list deals: %w", err)
				}
				return w.WriteNoteClasses(out, deals)
			})
		},
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "reports",
		Short: "Export surveillance reports, one row per report",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runExport(cmd, func(w *export.Writer, out io.Writer, store service.Storage) error {
				reports, err := store.ListSurveillance(cmd.Context(), service.ReportFilter{})
				if err != nil {
					return fmt.Errorf("failed to list reports: %w", err)
				}
				return w.WriteReports(out, reports)
			})
		},
	})
	return cmd
}

func runExport(cmd *cobra.Command, write func(*export.Writer, io.Writer, service.Storage) error) error {
	outPath, _ := cmd.Flags().GetString("out")

	store, err := initStorage(cmd.Context())
	if err != nil {
		return fmt.Errorf("failed to initialize storage: %w", err)
	}
	defer closeStorage(store)

	var out io.Writer = os.Stdout
	if outPath != "" {
		f, err := os.Create(outPath) //nolint:gosec // path comes from the command line
		if err != nil {
			return fmt.Errorf("failed to create %s: %w", outPath, err)
		}
		defer func() {
			if closeErr := f.Close(); closeErr != nil {
				slog.Error("failed to close export file", "error", closeErr)
			}
		}()
		out = f
	}

	if err := write(export.NewWriter(slog.Default()), out, store); err != nil {
		return err
	}
	if outPath != "" {
		fmt.Fprintln(os.Stderr, cli.FormatSuccess("Wrote "+outPath))
	}
	return nil
}
