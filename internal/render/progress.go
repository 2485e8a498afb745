package render

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"golang.org/x/term"
)

const (
	progressDoneRune    = "█"
	progressPendingRune = "▒"

	defaultTerminalWidth = 80
)

// ClearCurrentTerminalLine erases the line the cursor is on.
func ClearCurrentTerminalLine(w io.Writer) {
	w.Write([]byte("\r\033[K"))
}

// PrintProgressLine prints line followed by a progress bar filling the rest
// of the terminal and an ETA.
func PrintProgressLine(w io.Writer, line string, progress float64, eta time.Duration) {
	terminalWidth := defaultTerminalWidth
	if f, ok := w.(*os.File); ok {
		if width, _, err := term.GetSize(int(f.Fd())); err == nil {
			terminalWidth = width
		}
	}
	terminalWidth -= len(line) + 2 + 12
	terminalWidth = max(terminalWidth, 0)
	progressChunks := min(int(progress*float64(terminalWidth)), terminalWidth)
	progressLine := strings.Repeat(progressDoneRune, progressChunks)
	progressLine += strings.Repeat(progressPendingRune, terminalWidth-progressChunks)

	fmt.Fprintf(w, "%s %s ETA %02d:%02d:%02d", line, progressLine,
		int64(eta.Hours()), int64(eta.Minutes())%60, int64(eta.Seconds())%60)
}

// Progress redraws a progress line each time a benchmark completes.
type Progress struct {
	w     io.Writer
	start time.Time
}

// NewProgress returns a progress printer writing to w. The ETA is measured
// from the time of the call.
func NewProgress(w io.Writer) *Progress {
	return &Progress{w: w, start: time.Now()}
}

// Update is suitable for hikaku.WithProgress.
func (p *Progress) Update(done, total int) {
	if total == 0 {
		return
	}
	elapsed := time.Since(p.start)
	eta := time.Duration(int64(elapsed) / int64(max(done, 1)) * int64(total-done))
	ClearCurrentTerminalLine(p.w)
	PrintProgressLine(p.w, fmt.Sprintf("Benchmark %d/%d", done, total), float64(done)/float64(total), eta)
}

// Done clears the progress line.
func (p *Progress) Done() {
	ClearCurrentTerminalLine(p.w)
}
