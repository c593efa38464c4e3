package oracle_test

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"tubarchive/internal/models"
	"tubarchive/internal/oracle"
	"tubarchive/internal/probe"
)

// fakeProber returns canned durations per path and counts calls.
type fakeProber struct {
	mu        sync.Mutex
	durations map[string]float64
	errs      map[string]error
	calls     atomic.Int64
}

func newFakeProber() *fakeProber {
	return &fakeProber{
		durations: make(map[string]float64),
		errs:      make(map[string]error),
	}
}

func (f *fakeProber) set(path string, secs float64) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.durations[path] = secs
}

func (f *fakeProber) fail(path string, err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.errs[path] = err
}

func (f *fakeProber) Duration(_ context.Context, path string) (float64, error) {
	f.calls.Add(1)
	f.mu.Lock()
	defer f.mu.Unlock()
	if err, ok := f.errs[path]; ok {
		return 0, err
	}
	secs, ok := f.durations[path]
	if !ok {
		return 0, &probe.ProbeError{Path: path, Err: errors.New("no canned duration")}
	}
	return secs, nil
}

func touch(t *testing.T, path string) string {
	t.Helper()
	if err := os.WriteFile(path, []byte("media"), 0o644); err != nil {
		t.Fatalf("writing %q: %v", path, err)
	}
	return path
}

func item(d time.Duration) models.MediaItem {
	return models.MediaItem{ID: "abc123", Title: "test upload", Duration: d}
}

func TestCombinedToleranceBoundary(t *testing.T) {
	t.Parallel()

	tests := []struct {
		probed float64
		want   bool
	}{
		{100, true},
		{102.9, true},
		{97.1, true},
		{103, false},
		{97, false},
		{250, false},
	}
	for _, tt := range tests {
		t.Run(fmt.Sprintf("%v", tt.probed), func(t *testing.T) {
			t.Parallel()
			dir := t.TempDir()
			combined := touch(t, filepath.Join(dir, "abc123.mp4"))

			p := newFakeProber()
			p.set(combined, tt.probed)
			o := oracle.New(p, 3*time.Second)

			got := o.IsComplete(context.Background(), item(100*time.Second), oracle.Candidates{Combined: combined}, nil)
			if got != tt.want {
				t.Fatalf("probed %v against 100s: got %v, want %v", tt.probed, got, tt.want)
			}
		})
	}
}

func TestCombinedShortCircuits(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	c := oracle.Candidates{
		Combined: touch(t, filepath.Join(dir, "abc123.mp4")),
		Video:    touch(t, filepath.Join(dir, "[video] abc123.mp4")),
		Audio:    touch(t, filepath.Join(dir, "[audio] abc123.mp4")),
	}
	p := newFakeProber()
	p.set(c.Combined, 60)
	p.set(c.Video, 60)
	p.set(c.Audio, 60)

	r := oracle.New(p, 0).Check(context.Background(), item(time.Minute), c, nil)
	if !r.Complete() || !r.Converted() {
		t.Fatalf("expected converted result, got %+v", r)
	}
	if n := p.calls.Load(); n != 1 {
		t.Fatalf("expected only the combined file to be probed, got %d probes", n)
	}
}

func TestSeparateStreamsBothMustMatch(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name         string
		video, audio float64
		want         bool
	}{
		{"both match", 300.5, 299.2, true},
		{"video off", 290, 300, false},
		{"audio off", 300, 310, false},
		{"both off", 10, 10, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			dir := t.TempDir()
			c := oracle.Candidates{
				Combined: filepath.Join(dir, "abc123.mp4"),
				Video:    touch(t, filepath.Join(dir, "[video] abc123.mp4")),
				Audio:    touch(t, filepath.Join(dir, "[audio] abc123.mp4")),
			}
			p := newFakeProber()
			p.set(c.Video, tt.video)
			p.set(c.Audio, tt.audio)

			r := oracle.New(p, 3*time.Second).Check(context.Background(), item(300*time.Second), c, nil)
			if r.Complete() != tt.want {
				t.Fatalf("got complete=%v, want %v (%+v)", r.Complete(), tt.want, r)
			}
			if r.Converted() {
				t.Fatalf("missing combined file cannot be converted")
			}
			if r.Combined.State != oracle.Missing {
				t.Fatalf("expected combined state missing, got %v", r.Combined.State)
			}
		})
	}
}

func TestSingleStreamIsIncompleteWithoutProbing(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	c := oracle.Candidates{
		Combined: filepath.Join(dir, "abc123.mp4"),
		Video:    touch(t, filepath.Join(dir, "[video] abc123.mp4")),
		Audio:    filepath.Join(dir, "[audio] abc123.mp4"),
	}
	p := newFakeProber()
	p.set(c.Video, 60)

	if oracle.New(p, 0).IsComplete(context.Background(), item(time.Minute), c, nil) {
		t.Fatalf("expected incomplete with audio missing")
	}
	if n := p.calls.Load(); n != 0 {
		t.Fatalf("expected no probes, got %d", n)
	}
}

func TestNothingPresent(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	r := oracle.New(newFakeProber(), 0).Check(context.Background(), item(time.Minute), oracle.Candidates{
		Combined: filepath.Join(dir, "a.mp4"),
		Video:    filepath.Join(dir, "v.mp4"),
		Audio:    filepath.Join(dir, "a.m4a"),
	}, nil)
	if r.Complete() {
		t.Fatalf("expected incomplete")
	}
	if len(r.Removals()) != 0 {
		t.Fatalf("expected nothing to remove, got %v", r.Removals())
	}
}

func TestProbeFailureFlagsRemoval(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	combined := touch(t, filepath.Join(dir, "abc123.mp4"))

	p := newFakeProber()
	p.fail(combined, errors.New("exit status 1"))

	r := oracle.New(p, 0).Check(context.Background(), item(time.Minute), oracle.Candidates{Combined: combined}, nil)
	if r.Complete() {
		t.Fatalf("expected incomplete after probe failure")
	}
	if r.Combined.State != oracle.ProbeFailed {
		t.Fatalf("expected probe-failed, got %v", r.Combined.State)
	}
	if !errors.Is(r.Combined.Err, probe.ErrUnprobeable) {
		t.Fatalf("expected error to match ErrUnprobeable, got %v", r.Combined.Err)
	}
	if got := r.Removals(); len(got) != 1 || got[0] != combined {
		t.Fatalf("expected %q flagged for removal, got %v", combined, got)
	}
	if _, err := os.Stat(combined); err != nil {
		t.Fatalf("oracle must not delete files: %v", err)
	}
}

func TestCancelledProbeIsNotFlaggedForRemoval(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	combined := touch(t, filepath.Join(dir, "abc123.mp4"))

	p := newFakeProber()
	p.fail(combined, &probe.ProbeError{Path: combined, Err: context.Canceled})

	memo := oracle.NewMemo()
	r := oracle.New(p, 0).Check(context.Background(), item(time.Minute), oracle.Candidates{Combined: combined}, memo)
	if r.Complete() {
		t.Fatalf("expected incomplete")
	}
	if len(r.Removals()) != 0 {
		t.Fatalf("cancelled probe should not flag removal, got %v", r.Removals())
	}
	if memo.Len() != 0 {
		t.Fatalf("cancelled probe should not be memoised")
	}
}

func TestIdempotent(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	c := oracle.Candidates{
		Video: touch(t, filepath.Join(dir, "v.mp4")),
		Audio: touch(t, filepath.Join(dir, "a.mp4")),
	}
	p := newFakeProber()
	p.set(c.Video, 59)
	p.set(c.Audio, 64)

	o := oracle.New(p, 0)
	first := o.Check(context.Background(), item(time.Minute), c, nil)
	second := o.Check(context.Background(), item(time.Minute), c, nil)
	if first != second {
		t.Fatalf("expected identical results, got %+v then %+v", first, second)
	}
}

func TestMemoSkipsReprobeUntilFileChanges(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	combined := touch(t, filepath.Join(dir, "abc123.mp4"))

	p := newFakeProber()
	p.set(combined, 12)

	o := oracle.New(p, 0)
	memo := oracle.NewMemo()
	c := oracle.Candidates{Combined: combined}

	if o.IsComplete(context.Background(), item(time.Minute), c, memo) {
		t.Fatalf("12s file should not match 60s")
	}
	if o.IsComplete(context.Background(), item(time.Minute), c, memo) {
		t.Fatalf("12s file should not match 60s")
	}
	if n := p.calls.Load(); n != 1 {
		t.Fatalf("expected memo to prevent a second probe, got %d probes", n)
	}

	// Rewrite the file with different content, as a fresh transfer would.
	if err := os.WriteFile(combined, []byte("a complete media file"), 0o644); err != nil {
		t.Fatalf("rewrite: %v", err)
	}
	p.set(combined, 60)

	if !o.IsComplete(context.Background(), item(time.Minute), c, memo) {
		t.Fatalf("expected rewritten file to be re-probed and match")
	}
	if n := p.calls.Load(); n != 2 {
		t.Fatalf("expected a fresh probe after rewrite, got %d probes", n)
	}
}

func TestItemToleranceOverride(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	combined := touch(t, filepath.Join(dir, "abc123.mp4"))
	p := newFakeProber()
	p.set(combined, 65)

	it := item(time.Minute)
	o := oracle.New(p, 3*time.Second)
	if o.IsComplete(context.Background(), it, oracle.Candidates{Combined: combined}, nil) {
		t.Fatalf("5s off should fail the default tolerance")
	}
	it.Tolerance = 10 * time.Second
	if !o.IsComplete(context.Background(), it, oracle.Candidates{Combined: combined}, nil) {
		t.Fatalf("5s off should pass a 10s item tolerance")
	}
}

func TestConcurrentChecksMatchSequential(t *testing.T) {
	t.Parallel()

	const n = 32
	dir := t.TempDir()
	p := newFakeProber()

	items := make([]models.MediaItem, n)
	cands := make([]oracle.Candidates, n)
	for i := range n {
		items[i] = models.MediaItem{ID: fmt.Sprintf("id%02d", i), Duration: time.Duration(100+i) * time.Second}
		cands[i] = oracle.Candidates{
			Combined: touch(t, filepath.Join(dir, fmt.Sprintf("id%02d.mp4", i))),
		}
		// Every third item is off by 5s.
		off := 0.0
		if i%3 == 0 {
			off = 5
		}
		p.set(cands[i].Combined, float64(100+i)+off)
	}

	o := oracle.New(p, 3*time.Second)
	sequential := make([]bool, n)
	for i := range n {
		sequential[i] = o.IsComplete(context.Background(), items[i], cands[i], nil)
	}

	concurrent := make([]bool, n)
	memo := oracle.NewMemo()
	var wg sync.WaitGroup
	for i := range n {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			concurrent[i] = o.IsComplete(context.Background(), items[i], cands[i], memo)
		}(i)
	}
	wg.Wait()

	for i := range n {
		if sequential[i] != concurrent[i] {
			t.Errorf("item %d: sequential %v, concurrent %v", i, sequential[i], concurrent[i])
		}
		if want := i%3 != 0; concurrent[i] != want {
			t.Errorf("item %d: got %v, want %v", i, concurrent[i], want)
		}
	}
}
