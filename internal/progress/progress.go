// Package progress reports upload progress on the terminal.
package progress

import (
	"fmt"
	"io"
	"os"

	"github.com/schollz/progressbar/v3"

	"github.com/leadpanel/panelctl/internal/constants"
)

// Reporter receives progress of one transfer.
type Reporter interface {
	Start(total int64, description string)
	Update(current int64)
	Finish()
}

// CLIProgress draws a byte progress bar.
type CLIProgress struct {
	out io.Writer
	bar *progressbar.ProgressBar
}

// NewCLIProgress creates a bar writing to out, or stderr when out is nil.
func NewCLIProgress(out io.Writer) *CLIProgress {
	if out == nil {
		out = os.Stderr
	}
	return &CLIProgress{out: out}
}

// Start initializes the progress bar with total size and description.
func (p *CLIProgress) Start(total int64, description string) {
	out := p.out
	p.bar = progressbar.NewOptions64(total,
		progressbar.OptionSetDescription(description),
		progressbar.OptionSetWriter(out),
		progressbar.OptionShowBytes(true),
		progressbar.OptionSetWidth(40),
		progressbar.OptionThrottle(constants.ProgressThrottle),
		progressbar.OptionOnCompletion(func() {
			fmt.Fprint(out, "\n")
		}),
		progressbar.OptionSetRenderBlankState(true),
	)
}

// Update moves the bar to current bytes.
func (p *CLIProgress) Update(current int64) {
	if p.bar != nil {
		_ = p.bar.Set64(current)
	}
}

// Finish completes the progress bar.
func (p *CLIProgress) Finish() {
	if p.bar != nil {
		_ = p.bar.Finish()
	}
}

// NoOpProgress discards progress. Used for --quiet and --json runs.
type NoOpProgress struct{}

func (NoOpProgress) Start(int64, string) {}
func (NoOpProgress) Update(int64)        {}
func (NoOpProgress) Finish()             {}

// Reader wraps an io.Reader and reports bytes read.
type Reader struct {
	reader   io.Reader
	reporter Reporter
	current  int64
}

// NewReader wraps r. Start must already have been called on reporter.
func NewReader(r io.Reader, reporter Reporter) *Reader {
	if reporter == nil {
		reporter = NoOpProgress{}
	}
	return &Reader{reader: r, reporter: reporter}
}

// Read implements io.Reader.
func (pr *Reader) Read(p []byte) (int, error) {
	n, err := pr.reader.Read(p)
	pr.current += int64(n)
	pr.reporter.Update(pr.current)
	return n, err
}

// Count returns the bytes read so far.
func (pr *Reader) Count() int64 {
	return pr.current
}
