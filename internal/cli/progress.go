package cli

import (
	"os"
	"strings"
	"time"

	"github.com/schollz/progressbar/v3"
	"golang.org/x/term"
)

type indexProgressReporter struct {
	bar   *progressbar.ProgressBar
	label string
}

// newIndexProgressReporter draws a spinner on stderr when it is a terminal.
// The total file count is unknown up front, so no percentage is shown.
func newIndexProgressReporter(label string, asJSON bool) *indexProgressReporter {
	if asJSON || !term.IsTerminal(int(os.Stderr.Fd())) {
		return &indexProgressReporter{}
	}
	bar := progressbar.NewOptions(-1,
		progressbar.OptionSetWriter(os.Stderr),
		progressbar.OptionSetDescription(label),
		progressbar.OptionSpinnerType(14),
		progressbar.OptionShowCount(),
		progressbar.OptionSetItsString("files"),
		progressbar.OptionShowIts(),
		progressbar.OptionThrottle(65*time.Millisecond),
		progressbar.OptionClearOnFinish(),
	)
	return &indexProgressReporter{bar: bar, label: label}
}

func (r *indexProgressReporter) Update(file string) {
	if r.bar == nil {
		return
	}
	file = strings.TrimSpace(file)
	if len(file) > 60 {
		file = "..." + file[len(file)-57:]
	}
	r.bar.Describe(r.label + " " + file)
	_ = r.bar.Add(1)
}

func (r *indexProgressReporter) Done() {
	if r.bar == nil {
		return
	}
	_ = r.bar.Finish()
}
