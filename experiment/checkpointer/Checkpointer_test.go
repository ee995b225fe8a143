package checkpointer

import (
	"errors"
	"reflect"
	"testing"
)

// recorder records the paths it is checkpointed to
type recorder struct {
	paths []string
	err   error
}

func (r *recorder) Checkpoint(path string) error {
	if r.err != nil {
		return r.err
	}
	r.paths = append(r.paths, path)
	return nil
}

func TestBest(t *testing.T) {
	r := &recorder{}
	c := NewBest(r, "model.bin")

	returns := []float64{-100, -200, -100, -50, -50, -10}
	want := []bool{true, false, false, true, false, true}
	for i, ret := range returns {
		saved, err := c.Checkpoint(i, ret)
		if err != nil {
			t.Fatal(err)
		}
		if saved != want[i] {
			t.Errorf("episode %v with return %v: want saved %v have %v", i,
				ret, want[i], saved)
		}
	}
	if len(r.paths) != 3 {
		t.Errorf("want 3 checkpoints have %v", len(r.paths))
	}
}

func TestBestPropagatesErrors(t *testing.T) {
	errDisk := errors.New("disk full")
	c := NewBest(&recorder{err: errDisk}, "model.bin")
	if _, err := c.Checkpoint(0, 1); !errors.Is(err, errDisk) {
		t.Errorf("want disk error have %v", err)
	}
}

func TestNEpisode(t *testing.T) {
	r := &recorder{}
	c, err := NewNEpisode(2, r, FilenameEnumerator(0, "model-", ".bin"))
	if err != nil {
		t.Fatal(err)
	}

	for i := 0; i < 5; i++ {
		if _, err := c.Checkpoint(i, 0); err != nil {
			t.Fatal(err)
		}
	}

	want := []string{"model-1.bin", "model-2.bin"}
	if !reflect.DeepEqual(r.paths, want) {
		t.Errorf("want checkpoints %v have %v", want, r.paths)
	}

	if _, err := NewNEpisode(0, r, nil); err == nil {
		t.Error("zero interval accepted")
	}
}
