package engine

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/Veraticus/tranche/internal/common"
	"github.com/Veraticus/tranche/internal/model"
	"github.com/Veraticus/tranche/internal/service"
)

// BatchOptions configures batch file processing.
type BatchOptions struct {
	Sink            service.RecordSink // Optional; records are saved when set
	OnResult        func(FileResult)   // Called once per file from a single goroutine
	Type            model.DocumentType // Empty means auto-detect
	Workers         int                // Number of parallel workers
	ReviewThreshold int                // Confidence below this is flagged for review
}

// DefaultBatchOptions returns sensible defaults.
func DefaultBatchOptions() BatchOptions {
	return BatchOptions{
		Workers:         4,
		ReviewThreshold: 50,
	}
}

// FileResult contains the outcome for one input file.
type FileResult struct {
	Err         error
	Path        string
	Result      model.ExtractionResult
	Duration    time.Duration
	Index       int
	Saved       bool
	NeedsReview bool
}

// BatchSummary contains statistics about the batch run.
type BatchSummary struct {
	Results        []FileResult
	TotalFiles     int
	NewIssues      int
	Surveillance   int
	NeedsReview    int
	Saved          int
	FailedCount    int
	ProcessingTime time.Duration
}

type fileJob struct {
	path  string
	index int
}

// ProcessFiles extracts every path on a worker pool. A failure on one file is
// recorded in its FileResult and never aborts the batch. Results come back in
// input order. Cancelling ctx stops workers from picking up new files.
func (e *Engine) ProcessFiles(ctx context.Context, src service.TextSource, paths []string, opts BatchOptions) (*BatchSummary, error) {
	if src == nil {
		return nil, fmt.Errorf("text source is required")
	}
	if opts.Workers <= 0 {
		opts.Workers = DefaultBatchOptions().Workers
	}

	startTime := time.Now()
	summary := &BatchSummary{TotalFiles: len(paths)}
	if len(paths) == 0 {
		common.LogInfo(ctx, "No files to process", nil)
		return summary, nil
	}

	common.LogInfo(ctx, "Starting batch extraction", common.Fields{
		"files":   len(paths),
		"workers": opts.Workers,
		"type":    opts.Type,
	})

	results := e.processFilesParallel(ctx, src, paths, opts)
	sort.Slice(results, func(i, j int) bool { return results[i].Index < results[j].Index })

	for _, r := range results {
		switch {
		case r.Err != nil && r.Result.Deal == nil && r.Result.Report == nil:
			summary.FailedCount++
			common.LogError(ctx, r.Err, "Failed to process file", common.Fields{"path": r.Path})
			continue
		case r.Err != nil:
			summary.FailedCount++
			common.LogError(ctx, r.Err, "Failed to save record", common.Fields{"path": r.Path})
		}
		if r.Result.Deal != nil {
			summary.NewIssues++
		} else {
			summary.Surveillance++
		}
		if r.NeedsReview {
			summary.NeedsReview++
		}
		if r.Saved {
			summary.Saved++
		}
	}

	summary.Results = results
	summary.ProcessingTime = time.Since(startTime)

	if err := ctx.Err(); err != nil {
		return summary, fmt.Errorf("batch interrupted: %w", err)
	}
	return summary, nil
}

// processFilesParallel fans paths out to opts.Workers workers.
func (e *Engine) processFilesParallel(ctx context.Context, src service.TextSource, paths []string, opts BatchOptions) []FileResult {
	// Create work channel
	workChan := make(chan fileJob, len(paths))
	for i, p := range paths {
		workChan <- fileJob{path: p, index: i}
	}
	close(workChan)

	// Results channel
	resultsChan := make(chan FileResult, len(paths))

	// Start workers
	var wg sync.WaitGroup
	wg.Add(opts.Workers)

	for i := 0; i < opts.Workers; i++ {
		go func(workerID int) {
			defer wg.Done()
			e.fileWorker(ctx, workerID, src, workChan, resultsChan, opts)
		}(i)
	}

	// Wait for workers and close results
	go func() {
		wg.Wait()
		close(resultsChan)
	}()

	// Collect results
	results := make([]FileResult, 0, len(paths))
	for result := range resultsChan {
		if opts.OnResult != nil {
			opts.OnResult(result)
		}
		results = append(results, result)
	}

	return results
}

// fileWorker processes files from the work channel.
func (e *Engine) fileWorker(
	ctx context.Context,
	workerID int,
	src service.TextSource,
	workChan <-chan fileJob,
	resultsChan chan<- FileResult,
	opts BatchOptions,
) {
	for job := range workChan {
		select {
		case <-ctx.Done():
			return
		default:
		}

		common.LogDebug(ctx, "worker processing file", common.Fields{
			"worker_id": workerID,
			"path":      job.path,
		})
		res := e.ProcessFile(ctx, src, job.path, opts)
		res.Index = job.index
		resultsChan <- res
	}
}

// ProcessFile extracts and optionally saves a single file.
func (e *Engine) ProcessFile(ctx context.Context, src service.TextSource, path string, opts BatchOptions) FileResult {
	start := time.Now()
	res := FileResult{Path: path}

	text, err := src.ExtractFile(ctx, path)
	if err != nil {
		res.Err = err
		res.Duration = time.Since(start)
		return res
	}

	if opts.Type == "" {
		res.Result = e.Extract(text, path)
	} else {
		res.Result = e.ExtractAs(opts.Type, text, path)
	}
	res.NeedsReview = res.Result.ConfidenceScore() < opts.ReviewThreshold

	now := time.Now().UTC()
	switch {
	case res.Result.Deal != nil:
		res.Result.Deal.ExtractedAt = now
	case res.Result.Report != nil:
		res.Result.Report.ExtractedAt = now
	}

	if opts.Sink != nil {
		if err := Save(ctx, opts.Sink, &res.Result); err != nil {
			res.Err = err
		} else {
			res.Saved = true
		}
	}

	res.Duration = time.Since(start)
	return res
}

// Save writes whichever record result carries to sink.
func Save(ctx context.Context, sink service.RecordSink, result *model.ExtractionResult) error {
	switch {
	case result.Deal != nil:
		if err := sink.SaveDeal(ctx, result.Deal); err != nil {
			return fmt.Errorf("failed to save deal: %w", err)
		}
	case result.Report != nil:
		if err := sink.SaveSurveillance(ctx, result.Report); err != nil {
			return fmt.Errorf("failed to save surveillance report: %w", err)
		}
	}
	return nil
}

// GetDisplay returns a JSON representation of the summary.
func (s *BatchSummary) GetDisplay() string {
	if s.TotalFiles == 0 {
		return `{"message":"No files to process"}`
	}

	type summaryJSON struct {
		ProcessingTime string `json:"processing_time"`
		TotalFiles     int    `json:"total_files"`
		NewIssues      int    `json:"new_issues"`
		Surveillance   int    `json:"surveillance"`
		NeedsReview    int    `json:"needs_review"`
		Saved          int    `json:"saved"`
		FailedCount    int    `json:"failed_count"`
	}

	data := summaryJSON{
		TotalFiles:     s.TotalFiles,
		NewIssues:      s.NewIssues,
		Surveillance:   s.Surveillance,
		NeedsReview:    s.NeedsReview,
		Saved:          s.Saved,
		FailedCount:    s.FailedCount,
		ProcessingTime: s.ProcessingTime.Round(time.Millisecond).String(),
	}

	bytes, err := json.Marshal(data)
	if err != nil {
		return fmt.Sprintf(`{"error":"Failed to marshal summary: %v"}`, err)
	}

	return string(bytes)
}
