package kernel

import (
	"container/heap"

	"github.com/armper/PandaGen-sub001/domain"
	"github.com/armper/PandaGen-sub001/kernerr"
)

// ChannelEvent is the channel fabric's audit event (C11).
type ChannelEvent struct {
	Kind        string // "Sent" | "Dropped" | "Delayed" | "Delivered" | "Crashed"
	ChannelId   domain.ChannelId
	Action      string
	TimestampNs uint64
}

func (e ChannelEvent) Timestamp() uint64 { return e.TimestampNs }

// pendingMessage is one entry in a channel's FIFO ready queue.
type pendingMessage struct {
	envelope domain.MessageEnvelope
}

type channelState struct {
	channelId domain.ChannelId
	capacity  int
	ready     []pendingMessage
}

// delayedEntry is one entry of the per-kernel delayed-queue min-heap,
// keyed by deadline, draining on every Sleep/AdvanceTime.
type delayedEntry struct {
	deadlineNs uint64
	channelId  domain.ChannelId
	envelope   domain.MessageEnvelope
	seq        int
}

type delayedQueue []*delayedEntry

func (q delayedQueue) Len() int { return len(q) }
func (q delayedQueue) Less(i, j int) bool {
	if q[i].deadlineNs != q[j].deadlineNs {
		return q[i].deadlineNs < q[j].deadlineNs
	}
	return q[i].seq < q[j].seq
}
func (q delayedQueue) Swap(i, j int) { q[i], q[j] = q[j], q[i] }
func (q *delayedQueue) Push(x interface{}) {
	*q = append(*q, x.(*delayedEntry))
}
func (q *delayedQueue) Pop() interface{} {
	old := *q
	n := len(old)
	item := old[n-1]
	*q = old[:n-1]
	return item
}

const defaultChannelCapacity = 64

// ChannelFabric is the kernel's C3 manager: bounded FIFO channels plus
// a shared delayed-delivery queue drained by the clock.
type ChannelFabric struct {
	clock     *Clock
	injector  *FaultInjector
	terminate func(domain.TaskId)

	channels map[domain.ChannelId]*channelState
	delayed  delayedQueue
	seq      int

	audit *AuditLog[ChannelEvent]
}

// NewChannelFabric wires terminate as the effect a CrashOnSend,
// CrashOnRecv or CrashAfterMessages lifecycle fault applies to the
// task performing the send/recv (spec §4.7); terminate is typically
// Kernel.TerminateTask, bound the same way Capabilities is bound to
// Kernel.isTaskAlive. A nil terminate still records the Crashed audit
// event but has no effect on the task, which is all a fabric-only test
// that never spawned a real task needs.
func NewChannelFabric(clock *Clock, injector *FaultInjector, terminate func(domain.TaskId)) *ChannelFabric {
	f := &ChannelFabric{
		clock:     clock,
		injector:  injector,
		terminate: terminate,
		channels:  make(map[domain.ChannelId]*channelState),
		audit:     NewAuditLog[ChannelEvent](),
	}
	clock.setAdvanceHook(f.drainDelayed)
	return f
}

func (f *ChannelFabric) AuditLog() *AuditLog[ChannelEvent] {
	return f.audit
}

// CreateChannel allocates a new bounded FIFO channel.
func (f *ChannelFabric) CreateChannel() domain.ChannelId {
	id := domain.NewChannelId()
	f.channels[id] = &channelState{channelId: id, capacity: defaultChannelCapacity}
	return id
}

// Send enqueues env onto channel on behalf of caller, consulting the
// fault injector first for a lifecycle crash, then for drop, then for
// delay (spec §4.3, §4.7).
func (f *ChannelFabric) Send(channel domain.ChannelId, env domain.MessageEnvelope, caller domain.TaskId) error {
	ch, ok := f.channels[channel]
	if !ok {
		return kernerr.New(kernerr.ObjectNotFound, map[string]interface{}{"channel_id": channel})
	}

	now := f.clock.NowNanos()

	if f.injector != nil && f.injector.ShouldCrashOnSend() {
		f.audit.Record(ChannelEvent{Kind: "Crashed", ChannelId: channel, Action: env.Action, TimestampNs: now})
		if f.terminate != nil {
			f.terminate(caller)
		}
	}

	if f.injector != nil && f.injector.ShouldDropMessage(channel, env, env.Action) {
		f.audit.Record(ChannelEvent{Kind: "Dropped", ChannelId: channel, Action: env.Action, TimestampNs: now})
		return nil
	}

	if f.injector != nil {
		if d, ok := f.injector.GetMessageDelay(); ok {
			f.seq++
			heap.Push(&f.delayed, &delayedEntry{
				deadlineNs: now + uint64(d.Nanoseconds()),
				channelId:  channel,
				envelope:   env,
				seq:        f.seq,
			})
			f.audit.Record(ChannelEvent{Kind: "Delayed", ChannelId: channel, Action: env.Action, TimestampNs: now})
			return nil
		}
	}

	if len(ch.ready) >= ch.capacity {
		return kernerr.NewChannelFull(channel, ch.capacity)
	}
	ch.ready = append(ch.ready, pendingMessage{envelope: env})
	f.audit.Record(ChannelEvent{Kind: "Sent", ChannelId: channel, Action: env.Action, TimestampNs: now})
	return nil
}

// Receive pops the head of channel's ready queue on behalf of caller,
// applying any pending reordering fault first. Returns a distinct
// "empty" error rather than blocking — this is cooperative, not
// preemptive, scheduling. A successful delivery counts toward
// CrashAfterMessages and is crashed outright by CrashOnRecv (spec §4.7).
func (f *ChannelFabric) Receive(channel domain.ChannelId, caller domain.TaskId) (domain.MessageEnvelope, error) {
	ch, ok := f.channels[channel]
	if !ok {
		return domain.MessageEnvelope{}, kernerr.New(kernerr.ObjectNotFound, map[string]interface{}{"channel_id": channel})
	}

	if f.injector != nil {
		f.injector.ApplyReordering(ch.ready)
	}

	if len(ch.ready) == 0 {
		return domain.MessageEnvelope{}, kernerr.NewChannelEmpty(channel)
	}

	msg := ch.ready[0]
	ch.ready = ch.ready[1:]
	now := f.clock.NowNanos()
	f.audit.Record(ChannelEvent{Kind: "Delivered", ChannelId: channel, Action: msg.envelope.Action, TimestampNs: now})

	if f.injector != nil {
		f.injector.RecordMessageProcessed()
		if f.injector.ShouldCrashOnRecv() {
			f.audit.Record(ChannelEvent{Kind: "Crashed", ChannelId: channel, Action: msg.envelope.Action, TimestampNs: now})
			if f.terminate != nil {
				f.terminate(caller)
			}
		}
	}
	return msg.envelope, nil
}

// drainDelayed moves every delayed entry whose deadline has passed
// into its channel's ready queue, in deadline order. Wired as the
// clock's advance hook so no caller needs to drive this explicitly.
func (f *ChannelFabric) drainDelayed(nowNs uint64) {
	for f.delayed.Len() > 0 && f.delayed[0].deadlineNs <= nowNs {
		entry := heap.Pop(&f.delayed).(*delayedEntry)
		ch, ok := f.channels[entry.channelId]
		if !ok {
			continue
		}
		ch.ready = append(ch.ready, pendingMessage{envelope: entry.envelope})
	}
}
