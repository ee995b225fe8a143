// Package progressbar implements functionality of printing progress
// bars of concurrent workers to the terminal window
package progressbar

import (
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/logrusorgru/aurora"
)

// Bar is a progress bar that is safe for concurrent use. A Bar does not
// print itself, a Display renders it periodically.
type Bar struct {
	mu sync.Mutex

	label string

	// width determines the number of characters wide that the progress
	// bar should be
	width float64

	// maxProgress determines the number of times Increment() should
	// be called before the progress bar reaches 100%.
	maxProgress     float64
	currentProgress float64

	status    string
	failed    bool
	startTime time.Time

	au aurora.Aurora
}

// NewBar returns a new progress bar that is width characters wide and
// reaches 100% capacity after max Increment() calls
func NewBar(label string, width, max int) *Bar {
	return newBar(label, width, max, aurora.NewAurora(false))
}

func newBar(label string, width, max int, au aurora.Aurora) *Bar {
	if max < 1 {
		max = 1
	}
	return &Bar{
		label:       label,
		width:       float64(width),
		maxProgress: float64(max),
		startTime:   time.Now(),
		au:          au,
	}
}

// Increment increments the internal progress counter
func (p *Bar) Increment() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.currentProgress < p.maxProgress {
		p.currentProgress++
	}
}

// SetStatus sets the text displayed after the bar
func (p *Bar) SetStatus(format string, args ...interface{}) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.status = fmt.Sprintf(format, args...)
}

// Fail marks the bar as failed with the argument reason
func (p *Bar) Fail(reason error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.failed = true
	p.status = reason.Error()
}

// Progress returns the fraction of the bar that is complete
func (p *Bar) Progress() float64 {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.currentProgress / p.maxProgress
}

func (p *Bar) String() string {
	p.mu.Lock()
	defer p.mu.Unlock()

	var bar strings.Builder
	bar.WriteString(p.label)
	bar.WriteString(" |")

	currentProg := p.currentProgress / p.maxProgress * p.width
	for i := 0.0; i < currentProg; i++ {
		bar.WriteString("█")
	}
	for i := currentProg; i < p.width; i++ {
		bar.WriteString(" ")
	}
	bar.WriteString(fmt.Sprintf("| [%.2f%% | elapsed: %v]",
		p.currentProgress/p.maxProgress*100,
		time.Since(p.startTime).Truncate(time.Second)))

	if p.status == "" {
		return bar.String()
	}
	bar.WriteString(" ")
	switch {
	case p.failed:
		bar.WriteString(p.au.Red(p.status).String())
	case p.currentProgress >= p.maxProgress:
		bar.WriteString(p.au.Green(p.status).String())
	default:
		bar.WriteString(p.au.Cyan(p.status).String())
	}
	return bar.String()
}
