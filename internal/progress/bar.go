// Package progress defines the narrow observer interface the replication
// core reports progress through, plus a schollz/progressbar/v3-backed
// implementation for CLI use. The core never imports progressbar directly;
// it only depends on the Bar interface.
package progress

import (
	"io"

	"github.com/schollz/progressbar/v3"
)

// Bar is the progress-reporting contract a processor drives: set the total
// length once total record count is known, increment as batches complete,
// and finish with a terminal message. Implementations must tolerate
// SetLength(0) without panicking (an empty entity still finishes cleanly).
type Bar interface {
	SetLength(n uint64)
	Inc(n uint64)
	FinishWithMessage(msg string)
}

// Console renders a single-line terminal bar via progressbar/v3.
type Console struct {
	bar *progressbar.ProgressBar
}

// NewConsole creates a Console bar writing to w, labelled with description.
func NewConsole(w io.Writer, description string) *Console {
	bar := progressbar.NewOptions64(0,
		progressbar.OptionSetDescription(description),
		progressbar.OptionSetWriter(w),
		progressbar.OptionShowCount(),
		progressbar.OptionShowIts(),
		progressbar.OptionSetTheme(progressbar.Theme{
			Saucer:        "█",
			SaucerPadding: "░",
			BarStart:      "[",
			BarEnd:        "]",
		}),
	)
	return &Console{bar: bar}
}

func (c *Console) SetLength(n uint64) {
	c.bar.ChangeMax64(int64(n))
}

func (c *Console) Inc(n uint64) {
	_ = c.bar.Add64(int64(n))
}

func (c *Console) FinishWithMessage(msg string) {
	c.bar.Describe(msg)
	_ = c.bar.Finish()
}
