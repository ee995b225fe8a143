package progressbar

import (
	"context"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/gosuri/uilive"
	"github.com/logrusorgru/aurora"
)

// Display renders a set of Bars on consecutive terminal lines, one line
// per Bar, updating them in place every updateEvery.
type Display struct {
	mu   sync.Mutex
	bars []*Bar

	writer  *uilive.Writer
	writers []io.Writer

	updateEvery time.Duration
	au          aurora.Aurora

	done     chan struct{}
	stopped  sync.WaitGroup
	stopOnce sync.Once
}

// NewDisplay returns a new Display writing to out. If colors is true,
// bar statuses are colored with ANSI escape codes.
func NewDisplay(out io.Writer, updateEvery time.Duration,
	colors bool) *Display {
	writer := uilive.New()
	writer.Out = out

	return &Display{
		writer:      writer,
		updateEvery: updateEvery,
		au:          aurora.NewAurora(colors),
		done:        make(chan struct{}),
	}
}

// NewBar adds a new Bar to the display and returns it. Bars should be
// added before the Display is started.
func (d *Display) NewBar(label string, width, max int) *Bar {
	d.mu.Lock()
	defer d.mu.Unlock()

	bar := newBar(label, width, max, d.au)
	d.bars = append(d.bars, bar)
	d.writers = append(d.writers, d.writer.Newline())
	return bar
}

// Start starts rendering the display until Stop is called or ctx is
// done
func (d *Display) Start(ctx context.Context) {
	d.stopped.Add(1)
	go func() {
		defer d.stopped.Done()

		tick := time.NewTicker(d.updateEvery)
		defer tick.Stop()
		for {
			select {
			case <-d.done:
				d.print()
				return
			case <-ctx.Done():
				d.print()
				return
			case <-tick.C:
				d.print()
			}
		}
	}()
}

// Stop renders the final state of every Bar and stops the display. It
// is safe to call Stop more than once.
func (d *Display) Stop() {
	d.stopOnce.Do(func() {
		close(d.done)
	})
	d.stopped.Wait()
}

func (d *Display) print() {
	d.mu.Lock()
	defer d.mu.Unlock()

	for i, bar := range d.bars {
		fmt.Fprintln(d.writers[i], bar.String())
	}
	d.writer.Flush()
}
