package tracker

import (
	"bufio"
	"fmt"
	"math"
	"os"
)

const (
	actionLogHeader = "Iter | Action | Reward | Done | Acc_r"
	stateLogHeader  = "Danger | CoinDir | CoinAdj | BankDir | BankAdj"
)

// BestEpisode keeps the ticks of the episode with the highest return.
// On Save, the action log, the state log and the accumulated reward
// plot of that episode are written to disk.
type BestEpisode struct {
	current []Tick
	best    []Tick

	bestReturn float64

	actionLog string
	stateLog  string
	plot      string
}

// NewBestEpisode returns a new BestEpisode that writes the action log,
// state log and plot of the best episode to the argument files. An
// empty plot filename disables plotting.
func NewBestEpisode(actionLog, stateLog, plot string) *BestEpisode {
	return &BestEpisode{
		actionLog:  actionLog,
		stateLog:   stateLog,
		plot:       plot,
		bestReturn: math.Inf(-1),
	}
}

// Track implements the Tracker interface
func (b *BestEpisode) Track(t Tick) {
	b.current = append(b.current, t)
	if !t.Last {
		return
	}

	if t.Return > b.bestReturn {
		b.bestReturn = t.Return
		b.best = b.current
	}
	b.current = nil
}

// Best returns the return of the best episode tracked so far and
// whether any episode has finished yet
func (b *BestEpisode) Best() (float64, bool) {
	return b.bestReturn, b.best != nil
}

// Save implements the Tracker interface
func (b *BestEpisode) Save() error {
	if err := b.writeLog(b.actionLog, actionLogHeader, actionRow); err != nil {
		return fmt.Errorf("save: %w", err)
	}
	if err := b.writeLog(b.stateLog, stateLogHeader, stateRow); err != nil {
		return fmt.Errorf("save: %w", err)
	}

	if b.plot == "" || len(b.best) == 0 {
		return nil
	}
	returns := make([]float64, len(b.best))
	for i, t := range b.best {
		returns[i] = t.Return
	}
	if err := SavePlot(b.plot, returns); err != nil {
		return fmt.Errorf("save: %w", err)
	}
	return nil
}

func (b *BestEpisode) writeLog(filename, header string,
	row func(Tick) string) error {
	file, err := os.Create(filename)
	if err != nil {
		return fmt.Errorf("writeLog: could not open log file: %w", err)
	}

	w := bufio.NewWriter(file)
	fmt.Fprintln(w, header)
	for _, t := range b.best {
		fmt.Fprintln(w, row(t))
	}
	if err := w.Flush(); err != nil {
		file.Close()
		return fmt.Errorf("writeLog: %w", err)
	}
	if err := file.Close(); err != nil {
		return fmt.Errorf("writeLog: could not close log file: %w", err)
	}
	return nil
}

func actionRow(t Tick) string {
	return fmt.Sprintf("%d | %d | %.4f | %t | %.4f", t.Number-1, t.Action,
		t.Reward, t.Done, t.Return)
}

func stateRow(t Tick) string {
	return fmt.Sprintf("%v | %v | %v | %v | %v", t.Danger, t.CoinDir,
		t.CoinAdj, t.BankDir, t.BankAdj)
}
