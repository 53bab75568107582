package cli

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/schollz/progressbar/v3"

	"github.com/Veraticus/tranche/internal/engine"
)

// BatchProgress drives a progress bar from engine batch results. Its
// OnResult method is meant for engine.BatchOptions.OnResult, which is
// called from a single goroutine.
type BatchProgress struct {
	bar    *progressbar.ProgressBar
	failed int
	review int
}

// NewBatchProgress creates a progress bar for total files.
func NewBatchProgress(writer io.Writer, total int) *BatchProgress {
	if writer == nil {
		writer = os.Stderr
	}
	p := &BatchProgress{}
	p.bar = progressbar.NewOptions(total,
		progressbar.OptionSetWriter(writer),
		progressbar.OptionEnableColorCodes(true),
		progressbar.OptionShowCount(),
		progressbar.OptionShowElapsedTimeOnFinish(),
		progressbar.OptionSetWidth(40),
		progressbar.OptionSetDescription("[cyan][bold]Extracting documents...[reset]"),
		progressbar.OptionSetTheme(progressbar.Theme{
			Saucer:        "[green]=[reset]",
			SaucerHead:    "[green]>[reset]",
			SaucerPadding: " ",
			BarStart:      "[",
			BarEnd:        "]",
		}),
		progressbar.OptionOnCompletion(func() {
			if _, err := fmt.Fprintln(writer); err != nil {
				slog.Warn("Failed to write newline after progress bar", "error", err)
			}
		}),
	)
	return p
}

// OnResult advances the bar and updates its description with the last file.
func (p *BatchProgress) OnResult(res engine.FileResult) {
	switch {
	case res.Err != nil:
		p.failed++
	case res.NeedsReview:
		p.review++
	}

	desc := fmt.Sprintf("[cyan]%s[reset]", filepath.Base(res.Path))
	if p.failed > 0 || p.review > 0 {
		desc += fmt.Sprintf(" [yellow](%d review, %d failed)[reset]", p.review, p.failed)
	}
	p.bar.Describe(desc)

	if err := p.bar.Add(1); err != nil {
		slog.Warn("Failed to update progress bar", "error", err)
	}
}

// Finish completes the bar even when the batch stopped early.
func (p *BatchProgress) Finish() {
	if err := p.bar.Finish(); err != nil {
		slog.Warn("Failed to finish progress bar", "error", err)
	}
}

// Counts returns the failed and needs-review totals seen so far.
func (p *BatchProgress) Counts() (failed, review int) {
	return p.failed, p.review
}
