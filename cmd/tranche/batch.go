package main

import (
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sort"

	"github.com/spf13/cobra"

	"github.com/Veraticus/tranche/internal/cli"
	"github.com/Veraticus/tranche/internal/common"
	"github.com/Veraticus/tranche/internal/engine"
	"github.com/Veraticus/tranche/internal/textextract"
	"github.com/Veraticus/tranche/internal/watch"
)

func batchCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "batch PATH|GLOB...",
		Short: "Extract every supported document matching the given paths",
		Long: `Extract documents in parallel. Arguments may be files, glob patterns
or directories (searched recursively for .pdf, .docx, .txt and .md files).
A failure on one file is reported and never stops the batch.`,
		Args: cobra.MinimumNArgs(1),
		RunE: runBatch,
	}
	cmd.Flags().Int("workers", 0, "parallel workers (default: batch.workers)")
	cmd.Flags().Bool("save", false, "store extracted records")
	cmd.Flags().String("type", "auto", "document type: auto, new-issue or surveillance")
	cmd.Flags().Bool("json", false, "print the summary as JSON")
	return cmd
}

func runBatch(cmd *cobra.Command, args []string) error {
	workers, _ := cmd.Flags().GetInt("workers")
	save, _ := cmd.Flags().GetBool("save")
	typeFlag, _ := cmd.Flags().GetString("type")
	asJSON, _ := cmd.Flags().GetBool("json")

	docType, err := parseTypeFlag(typeFlag)
	if err != nil {
		return err
	}
	if workers <= 0 {
		workers = cfg.Batch.Workers
	}

	paths, err := expandInputs(args)
	if err != nil {
		return err
	}
	if len(paths) == 0 {
		return common.NewUserError("no supported documents found", common.ErrNotFound)
	}

	eng, err := newEngine()
	if err != nil {
		return err
	}

	handler := cli.NewInterruptHandler(os.Stderr)
	ctx := handler.HandleInterrupts(cmd.Context(), "Batch", save)
	ctx = common.WithLogger(ctx, slog.Default().With("command", "batch"))

	opts := engine.BatchOptions{
		Type:            docType,
		Workers:         workers,
		ReviewThreshold: cfg.Review.ConfidenceThreshold,
	}
	if save {
		store, err := initStorage(ctx)
		if err != nil {
			return fmt.Errorf("failed to initialize storage: %w", err)
		}
		defer closeStorage(store)
		opts.Sink = store
	}

	var progress *cli.BatchProgress
	if !asJSON {
		progress = cli.NewBatchProgress(os.Stderr, len(paths))
		opts.OnResult = progress.OnResult
	}

	summary, err := eng.ProcessFiles(ctx, textextract.New(), paths, opts)
	if progress != nil {
		progress.Finish()
	}
	if summary == nil {
		return err
	}

	if asJSON {
		fmt.Println(summary.GetDisplay()) //nolint:forbidigo // User-facing output
	} else {
		fmt.Println(cli.RenderBatchSummary(summary)) //nolint:forbidigo // User-facing output
	}
	if err != nil && handler.WasInterrupted() {
		return nil
	}
	return err
}

// expandInputs resolves files, globs and directories into a sorted,
// de-duplicated list of supported documents.
func expandInputs(args []string) ([]string, error) {
	seen := make(map[string]struct{})
	var paths []string
	add := func(p string) {
		if !textextract.Supported(p) {
			return
		}
		if _, ok := seen[p]; ok {
			return
		}
		seen[p] = struct{}{}
		paths = append(paths, p)
	}

	for _, arg := range args {
		matches, err := filepath.Glob(arg)
		if err != nil {
			return nil, fmt.Errorf("invalid pattern %q: %w", arg, err)
		}
		if len(matches) == 0 {
			return nil, common.NewUserError(fmt.Sprintf("no files match %s", arg), common.ErrNotFound)
		}

		for _, match := range matches {
			info, err := os.Stat(match)
			if err != nil {
				return nil, err
			}
			if !info.IsDir() {
				add(match)
				continue
			}
			err = filepath.WalkDir(match, func(p string, d fs.DirEntry, walkErr error) error {
				if walkErr != nil {
					return walkErr
				}
				if d.Type().IsRegular() {
					add(p)
				}
				return nil
			})
			if err != nil {
				return nil, fmt.Errorf("failed to scan %s: %w", match, err)
			}
		}
	}

	sort.Strings(paths)
	return paths, nil
}

func watchCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "watch [DIR]",
		Short: "Extract and store documents as they arrive in an inbox folder",
		Long: `Watch a directory and process each supported document once it has
stopped changing. Records are always stored. DIR defaults to watch.dir.`,
		Args: cobra.MaximumNArgs(1),
		RunE: runWatch,
	}
	cmd.Flags().Bool("existing", false, "also process documents already in the directory")
	cmd.Flags().Duration("settle", 0, "quiet period before a file is read (default: watch.settle)")
	return cmd
}

func runWatch(cmd *cobra.Command, args []string) error {
	existing, _ := cmd.Flags().GetBool("existing")
	settle, _ := cmd.Flags().GetDuration("settle")

	dir := cfg.Watch.Dir
	if len(args) == 1 {
		dir = args[0]
	}
	if dir == "" {
		return common.NewUserError("no inbox directory: pass DIR or set watch.dir", common.ErrMissingConfig)
	}
	if settle <= 0 {
		settle = cfg.Watch.Settle
	}

	eng, err := newEngine()
	if err != nil {
		return err
	}

	handler := cli.NewInterruptHandler(os.Stderr)
	ctx := handler.HandleInterrupts(cmd.Context(), "Watch", true)
	ctx = common.WithLogger(ctx, slog.Default().With("command", "watch", "dir", dir))

	store, err := initStorage(ctx)
	if err != nil {
		return fmt.Errorf("failed to initialize storage: %w", err)
	}
	defer closeStorage(store)

	threshold := cfg.Review.ConfidenceThreshold
	w, err := watch.New(eng, textextract.New(), watch.Options{
		Dir:             dir,
		Settle:          settle,
		ProcessExisting: existing,
		Batch: engine.BatchOptions{
			Sink:            store,
			ReviewThreshold: threshold,
			OnResult: func(res engine.FileResult) {
				printWatchResult(res, threshold)
			},
		},
	})
	if err != nil {
		return err
	}

	fmt.Println(cli.InfoStyle.Render(fmt.Sprintf("%s Watching %s (Ctrl+C to stop)", cli.FolderIcon, dir))) //nolint:forbidigo // User-facing output
	return w.Run(ctx)
}

func printWatchResult(res engine.FileResult, threshold int) {
	name := filepath.Base(res.Path)
	switch {
	case res.Err != nil:
		fmt.Println(cli.FormatError(fmt.Sprintf("%s: %v", name, res.Err))) //nolint:forbidigo // User-facing output
	case res.Result.ConfidenceScore() < threshold:
		fmt.Println(cli.FormatWarning(fmt.Sprintf("%s: %s saved, %s (confidence %d)", //nolint:forbidigo // User-facing output
			name, res.Result.Classification.Type, cli.ReviewNotice, res.Result.ConfidenceScore())))
	default:
		fmt.Println(cli.FormatSuccess(fmt.Sprintf("%s: %s saved (confidence %d)", //nolint:forbidigo // User-facing output
			name, res.Result.Classification.Type, res.Result.ConfidenceScore())))
	}
}
