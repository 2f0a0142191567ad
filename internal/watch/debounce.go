package watch

import (
	"context"
	"time"
)

type readyFile struct {
	path string
	gen  uint64
}

type pendingFile struct {
	timer *time.Timer
	gen   uint64
}

// debouncer delays a path until no event for it arrived for delay. Every arm
// gets a new generation; only the latest one is accepted by take, so a timer
// that fired just before being re-armed is ignored. Not safe for concurrent
// use: arm, take and stop belong to the watch loop.
type debouncer struct {
	delay   time.Duration
	ready   chan readyFile
	pending map[string]pendingFile
	gen     uint64
}

func newDebouncer(delay time.Duration) *debouncer {
	return &debouncer{
		delay:   delay,
		ready:   make(chan readyFile, 64),
		pending: make(map[string]pendingFile),
	}
}

func (d *debouncer) arm(ctx context.Context, path string) uint64 {
	if p, ok := d.pending[path]; ok {
		p.timer.Stop()
	}
	d.gen++
	f := readyFile{path: path, gen: d.gen}
	d.pending[path] = pendingFile{
		gen: f.gen,
		timer: time.AfterFunc(d.delay, func() {
			select {
			case d.ready <- f:
			case <-ctx.Done():
			}
		}),
	}
	return f.gen
}

// take reports whether f is the current generation for its path and, if so,
// forgets the path.
func (d *debouncer) take(f readyFile) bool {
	p, ok := d.pending[f.path]
	if !ok || p.gen != f.gen {
		return false
	}
	delete(d.pending, f.path)
	return true
}

func (d *debouncer) stop() {
	for _, p := range d.pending {
		p.timer.Stop()
	}
}
