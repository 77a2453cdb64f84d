// Package progress tracks a publish batch and renders it to the terminal.
//
// A Reporter owns the batch State and drives one Renderer through the
// Idle -> Running -> Stopped lifecycle. Rendering runs on its own schedule and
// only reads Snapshots, so the publishing loop never blocks on the display.
package progress

import "time"

// DefaultInterval is the redraw cadence of the live renderers.
const DefaultInterval = 100 * time.Millisecond

// Sink receives progress events from the publishing loop.
type Sink interface {
	Start(total int)
	Update(file string, success bool)
	Stop()
}

// SnapshotFunc returns the current progress.
type SnapshotFunc func() Snapshot

// Renderer presents progress. Start begins an independent render cycle and
// returns immediately; Stop halts it and waits for it to exit; Summary is
// called once after Stop with the final snapshot.
type Renderer interface {
	Start(snap SnapshotFunc)
	Stop()
	Summary(final Snapshot)
}

// Reporter is the Sink backed by a Renderer.
type Reporter struct {
	state    *State
	renderer Renderer
}

var _ Sink = (*Reporter)(nil)

// NewReporter returns an idle reporter drawing with r.
func NewReporter(r Renderer) *Reporter {
	return &Reporter{state: newState(nil), renderer: r}
}

// Start resets the counters and begins rendering. Ignored while running.
func (r *Reporter) Start(total int) {
	if !r.state.start(total) {
		return
	}
	r.renderer.Start(r.state.Snapshot)
}

// Update records the outcome of one object. It never renders.
func (r *Reporter) Update(file string, success bool) {
	r.state.update(file, success)
}

// Stop halts rendering and prints the final summary. Safe to call twice.
func (r *Reporter) Stop() {
	if !r.state.stop() {
		return
	}
	r.renderer.Stop()
	r.renderer.Summary(r.state.Snapshot())
}

// Snapshot returns the current progress.
func (r *Reporter) Snapshot() Snapshot {
	return r.state.Snapshot()
}

// Discard is the Sink used when animation is off.
type Discard struct{}

var _ Sink = Discard{}

func (Discard) Start(int)           {}
func (Discard) Update(string, bool) {}
func (Discard) Stop()               {}
