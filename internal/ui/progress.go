package ui

import (
	"fmt"
	"io"
	"os"

	"github.com/fatih/color"
	"github.com/schollz/progressbar/v3"
)

// RetryProgress shows the retry rounds of a run as a progress bar
type RetryProgress struct {
	bar    *progressbar.ProgressBar
	writer io.Writer
}

// NewRetryProgress creates a retry progress bar writing to stderr
func NewRetryProgress() *RetryProgress {
	return NewRetryProgressTo(os.Stderr)
}

// NewRetryProgressTo creates a retry progress bar writing to w
func NewRetryProgressTo(w io.Writer) *RetryProgress {
	return &RetryProgress{writer: w}
}

// Retry starts the bar on the first attempt and advances it on every attempt
func (p *RetryProgress) Retry(attempt, budget, targets int) {
	if p.bar == nil {
		p.bar = progressbar.NewOptions(budget,
			progressbar.OptionSetWidth(30),
			progressbar.OptionSetTheme(progressbar.Theme{
				Saucer:        color.CyanString("█"),
				SaucerHead:    color.CyanString("█"),
				SaucerPadding: "░",
				BarStart:      "│",
				BarEnd:        "│",
			}),
			progressbar.OptionEnableColorCodes(true),
			progressbar.OptionSetWriter(p.writer),
			progressbar.OptionOnCompletion(func() {
				fmt.Fprint(p.writer, "\n")
			}),
			progressbar.OptionSetRenderBlankState(true),
		)
	}

	p.bar.Describe(
		color.CyanString("Retry %d/%d: ", attempt, budget) +
			color.RedString("[%d failing]", targets),
	)
	_ = p.bar.Set(attempt - 1)
}

// Finish completes the progress bar
func (p *RetryProgress) Finish() {
	if p.bar != nil {
		_ = p.bar.Finish()
	}
}
