// Package progress reports traversal progress on an interactive terminal.
package progress

import (
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"github.com/mattn/go-isatty"
)

const (
	defaultInterval = 100 * time.Millisecond
	progressFormat  = "\r%s: %d entries"
	clearLine       = "\r\033[K"
)

// Reporter prints a single updating status line. It is safe for concurrent use.
// A disabled Reporter ignores every call.
type Reporter struct {
	writer   io.Writer
	label    string
	enabled  bool
	interval time.Duration
	now      func() time.Time

	mutex       sync.Mutex
	lastPrinted time.Time
	latest      int64
	printed     bool
}

// NewTerminalReporter reports to file only when file is a terminal.
func NewTerminalReporter(file *os.File, label string) *Reporter {
	enabled := file != nil && (isatty.IsTerminal(file.Fd()) || isatty.IsCygwinTerminal(file.Fd()))
	return NewReporter(file, label, enabled, defaultInterval)
}

// NewReporter builds a reporter that writes at most once per interval.
func NewReporter(writer io.Writer, label string, enabled bool, interval time.Duration) *Reporter {
	return &Reporter{
		writer:   writer,
		label:    label,
		enabled:  enabled && writer != nil,
		interval: interval,
		now:      time.Now,
	}
}

// Enabled reports whether the reporter prints anything.
func (reporter *Reporter) Enabled() bool {
	return reporter != nil && reporter.enabled
}

// Update records the visited entry count and redraws the line when the interval elapsed.
func (reporter *Reporter) Update(visited int64) {
	if !reporter.Enabled() {
		return
	}
	reporter.mutex.Lock()
	defer reporter.mutex.Unlock()
	if visited > reporter.latest {
		reporter.latest = visited
	}
	currentTime := reporter.now()
	if reporter.printed && currentTime.Sub(reporter.lastPrinted) < reporter.interval {
		return
	}
	reporter.lastPrinted = currentTime
	reporter.printed = true
	fmt.Fprintf(reporter.writer, progressFormat, reporter.label, reporter.latest)
}

// Finish erases the status line if one was printed.
func (reporter *Reporter) Finish() {
	if !reporter.Enabled() {
		return
	}
	reporter.mutex.Lock()
	defer reporter.mutex.Unlock()
	if reporter.printed {
		fmt.Fprint(reporter.writer, clearLine)
		reporter.printed = false
	}
}
