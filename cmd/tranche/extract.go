package main

import (
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/Veraticus/tranche/internal/cli"
	"github.com/Veraticus/tranche/internal/engine"
	"github.com/Veraticus/tranche/internal/textextract"
)

func classifyCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "classify FILE",
		Short: "Decide whether a document is a new-issue or surveillance report",
		Long: `Score the document against the new-issue and surveillance vocabularies
and print the winning type with its confidence. Nothing is stored.`,
		Args: cobra.ExactArgs(1),
		RunE: runClassify,
	}
	cmd.Flags().Bool("json", false, "print the classification as JSON")
	return cmd
}

func runClassify(cmd *cobra.Command, args []string) error {
	asJSON, _ := cmd.Flags().GetBool("json")

	eng, err := newEngine()
	if err != nil {
		return err
	}
	text, err := textextract.New().ExtractFile(cmd.Context(), args[0])
	if err != nil {
		return err
	}

	c := eng.ClassifyDocument(text)
	if asJSON {
		return writeJSON(os.Stdout, c)
	}
	fmt.Println(cli.RenderClassification(c)) //nolint:forbidigo // User-facing output
	return nil
}

func extractCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "extract FILE",
		Short: "Extract a deal or surveillance record from one document",
		Long: `Extract text from a PDF, DOCX, TXT or Markdown file, classify it, and
assemble the matching record. Use --type to skip auto-detection and --save to
store the record.`,
		Args: cobra.ExactArgs(1),
		RunE: runExtract,
	}
	cmd.Flags().String("type", "auto", "document type: auto, new-issue or surveillance")
	cmd.Flags().Bool("save", false, "store the extracted record")
	cmd.Flags().Bool("json", false, "print the record as JSON")
	return cmd
}

func runExtract(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	typeFlag, _ := cmd.Flags().GetString("type")
	save, _ := cmd.Flags().GetBool("save")
	asJSON, _ := cmd.Flags().GetBool("json")

	docType, err := parseTypeFlag(typeFlag)
	if err != nil {
		return err
	}
	eng, err := newEngine()
	if err != nil {
		return err
	}

	opts := engine.BatchOptions{Type: docType, ReviewThreshold: cfg.Review.ConfidenceThreshold}
	if save {
		store, err := initStorage(ctx)
		if err != nil {
			return fmt.Errorf("failed to initialize storage: %w", err)
		}
		defer closeStorage(store)
		opts.Sink = store
	}

	res := eng.ProcessFile(ctx, textextract.New(), args[0], opts)
	if res.Err != nil && res.Result.Deal == nil && res.Result.Report == nil {
		return res.Err
	}

	slog.Debug("Extracted document", "path", res.Path, "duration", res.Duration.Round(time.Millisecond))

	if asJSON {
		if err := writeJSON(os.Stdout, res.Result); err != nil {
			return err
		}
	} else {
		fmt.Println(cli.RenderResult(&res.Result, cfg.Review.ConfidenceThreshold)) //nolint:forbidigo // User-facing output
	}

	if res.Err != nil {
		return res.Err
	}
	if res.Saved && !asJSON {
		fmt.Println(cli.FormatSuccess("Saved record " + savedID(&res))) //nolint:forbidigo // User-facing output
	}
	return nil
}

func savedID(res *engine.FileResult) string {
	switch {
	case res.Result.Deal != nil:
		return res.Result.Deal.ID
	case res.Result.Report != nil:
		return res.Result.Report.ID
	}
	return ""
}
