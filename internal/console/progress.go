// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package console

import (
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/jedib0t/go-pretty/v6/progress"
)

const labelWidth = 40

// Progress reports download progress. Implementations are safe for
// concurrent use by download workers.
type Progress interface {
	// Start begins rendering; Stop flushes and ends it.
	Start()
	Stop()

	// Page tracks completed tasks for one listing page.
	Page(label string, total int) Counter

	// Transfer tracks bytes of one download; total <= 0 means unknown.
	Transfer(label string, total int64) Counter

	// Log prints a line without corrupting the bars.
	Log(format string, a ...any)
}

// Counter is one tracked quantity.
type Counter interface {
	Add(n int64)
	Done()
	Fail()
}

// Label shortens a title for a tracker message.
func Label(prefix, title string) string {
	r := []rune(title)
	if len(r) > labelWidth {
		return prefix + string(r[:labelWidth]) + "..."
	}
	return prefix + title
}

// Bars renders live progress bars with go-pretty.
type Bars struct {
	pw progress.Writer
}

// NewBars renders to w.
func NewBars(w io.Writer) *Bars {
	pw := progress.NewWriter()
	pw.SetOutputWriter(w)
	pw.SetAutoStop(false)
	pw.SetTrackerLength(25)
	pw.SetTrackerPosition(progress.PositionRight)
	pw.SetUpdateFrequency(200 * time.Millisecond)
	pw.SetStyle(progress.StyleDefault)
	pw.Style().Visibility.Value = true
	pw.Style().Visibility.Speed = true
	return &Bars{pw: pw}
}

func (b *Bars) Start() { go b.pw.Render() }

func (b *Bars) Stop() {
	b.pw.Stop()
	for b.pw.IsRenderInProgress() {
		time.Sleep(10 * time.Millisecond)
	}
}

func (b *Bars) Page(label string, total int) Counter {
	t := &progress.Tracker{Message: label, Total: int64(total), Units: progress.UnitsDefault}
	b.pw.AppendTracker(t)
	return tracker{t}
}

func (b *Bars) Transfer(label string, total int64) Counter {
	if total < 0 {
		total = 0
	}
	t := &progress.Tracker{Message: label, Total: total, Units: progress.UnitsBytes}
	b.pw.AppendTracker(t)
	return tracker{t}
}

func (b *Bars) Log(format string, a ...any) { b.pw.Log(format, a...) }

type tracker struct{ t *progress.Tracker }

func (t tracker) Add(n int64) { t.t.Increment(n) }
func (t tracker) Done()       { t.t.MarkAsDone() }
func (t tracker) Fail()       { t.t.MarkAsErrored() }

// Lines prints only log lines, one per call. It suits non-interactive
// output and tests.
type Lines struct {
	mu sync.Mutex
	w  io.Writer
}

// NewLines writes log lines to w. A nil w discards them.
func NewLines(w io.Writer) *Lines {
	if w == nil {
		w = io.Discard
	}
	return &Lines{w: w}
}

func (l *Lines) Start() {}
func (l *Lines) Stop()  {}

func (l *Lines) Page(string, int) Counter        { return nopCounter{} }
func (l *Lines) Transfer(string, int64) Counter { return nopCounter{} }

func (l *Lines) Log(format string, a ...any) {
	l.mu.Lock()
	defer l.mu.Unlock()
	fmt.Fprintf(l.w, format+"\n", a...)
}

type nopCounter struct{}

func (nopCounter) Add(int64) {}
func (nopCounter) Done()     {}
func (nopCounter) Fail()     {}
