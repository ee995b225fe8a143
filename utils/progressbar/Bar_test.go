package progressbar

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"
	"time"
)

func TestBarIncrementSaturates(t *testing.T) {
	bar := NewBar("worker 0", 10, 3)
	for i := 0; i < 5; i++ {
		bar.Increment()
	}
	if p := bar.Progress(); p != 1 {
		t.Errorf("want progress 1 have %v", p)
	}
	if s := bar.String(); !strings.Contains(s, "100.00%") {
		t.Errorf("full bar renders as %q", s)
	}
}

func TestBarStatus(t *testing.T) {
	bar := NewBar("worker 1", 4, 2)
	bar.Increment()
	bar.SetStatus("best %.1f", -12.0)

	s := bar.String()
	if !strings.HasPrefix(s, "worker 1 |") || !strings.Contains(s, "50.00%") {
		t.Errorf("half bar renders as %q", s)
	}
	if !strings.HasSuffix(s, "best -12.0") {
		t.Errorf("status missing from %q", s)
	}

	bar.Fail(errors.New("no map"))
	if s := bar.String(); !strings.HasSuffix(s, "no map") {
		t.Errorf("failure missing from %q", s)
	}
}

func TestDisplayRendersEveryBar(t *testing.T) {
	var out bytes.Buffer
	d := NewDisplay(&out, time.Hour, false)
	a := d.NewBar("worker 0", 5, 1)
	b := d.NewBar("worker 1", 5, 1)
	a.SetStatus("alpha")
	b.SetStatus("beta")

	d.Start(context.Background())
	d.Stop()
	d.Stop()

	s := out.String()
	if !strings.Contains(s, "alpha") || !strings.Contains(s, "beta") {
		t.Errorf("display output missing a bar: %q", s)
	}
}
