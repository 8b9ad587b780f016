package viewhost

import (
	"sync"

	"github.com/armper/PandaGen-sub001/domain"
	"github.com/armper/PandaGen-sub001/kernerr"
)

// Host tracks the latest published Frame per view and rejects any
// publish whose revision does not strictly exceed the last one seen
// for that view_id (spec §6: "publishers that regress are rejected").
type Host struct {
	mu     sync.Mutex
	latest map[domain.ViewId]Frame
}

func NewHost() *Host {
	return &Host{latest: make(map[domain.ViewId]Frame)}
}

// Publish stores frame as the new latest for its ViewId, or rejects it
// with RevisionNotMonotonic if frame.Revision does not strictly exceed
// the view's current revision. A view's first publish always succeeds
// regardless of its revision value.
func (h *Host) Publish(frame Frame) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	existing, ok := h.latest[frame.ViewId]
	if ok && frame.Revision <= existing.Revision {
		return kernerr.NewRevisionNotMonotonic(existing.Revision+1, frame.Revision)
	}
	h.latest[frame.ViewId] = frame
	return nil
}

// Latest returns the most recently published frame for viewId.
func (h *Host) Latest(viewId domain.ViewId) (Frame, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	frame, ok := h.latest[viewId]
	return frame, ok
}

// Snapshot returns every view's latest frame, for a renderer's pure
// function of "the current frame set" (spec §5).
func (h *Host) Snapshot() []Frame {
	h.mu.Lock()
	defer h.mu.Unlock()
	out := make([]Frame, 0, len(h.latest))
	for _, frame := range h.latest {
		out = append(out, frame)
	}
	return out
}
