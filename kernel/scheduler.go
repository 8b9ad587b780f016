package kernel

import "sync"

// Clock is the kernel's logical monotonic clock (C5). There is no
// wall-clock correlation: time only advances via Sleep/AdvanceTime,
// never implicitly.
type Clock struct {
	mu      sync.Mutex
	nowNs   uint64
	onAdvance func(deltaEndNs uint64)
}

func NewClock() *Clock {
	return &Clock{}
}

// NowNanos returns the current logical time.
func (c *Clock) NowNanos() uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.nowNs
}

// setAdvanceHook lets the channel fabric wire in delayed-queue draining without
// the clock needing to know about channels.
func (c *Clock) setAdvanceHook(hook func(nowNs uint64)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.onAdvance = func(nowNs uint64) { hook(nowNs) }
}

// Sleep advances time by deltaNs and drains the delayed queue.
func (c *Clock) Sleep(deltaNs uint64) uint64 {
	c.mu.Lock()
	c.nowNs += deltaNs
	now := c.nowNs
	hook := c.onAdvance
	c.mu.Unlock()
	if hook != nil {
		hook(now)
	}
	return now
}

// AdvanceTime is a test surface identical to Sleep but callable from
// outside any task (spec §4.6).
func (c *Clock) AdvanceTime(deltaNs uint64) uint64 {
	return c.Sleep(deltaNs)
}

// YieldEvent is the audit record for a scheduler yield hint — a no-op
// in the single-threaded simulation, but still logged.
type YieldEvent struct {
	Caller      string
	TimestampNs uint64
}

func (e YieldEvent) Timestamp() uint64 { return e.TimestampNs }

// Scheduler wraps the Clock with the Yield no-op and its audit log.
type Scheduler struct {
	Clock *Clock
	audit *AuditLog[YieldEvent]
}

func NewScheduler(clock *Clock) *Scheduler {
	return &Scheduler{Clock: clock, audit: NewAuditLog[YieldEvent]()}
}

func (s *Scheduler) AuditLog() *AuditLog[YieldEvent] {
	return s.audit
}

// Yield is a scheduler hint; recorded for audit, otherwise a no-op.
func (s *Scheduler) Yield(caller string) {
	s.audit.Record(YieldEvent{Caller: caller, TimestampNs: s.Clock.NowNanos()})
}
