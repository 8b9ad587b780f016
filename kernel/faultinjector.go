package kernel

import (
	"time"

	"github.com/armper/PandaGen-sub001/domain"
)

// MessageFault is one entry of a FaultPlan affecting message delivery,
// ported from original_source/sim_kernel/src/fault_injection.rs.
type MessageFault struct {
	kind string

	count        int
	channel      domain.ChannelId
	action       string
	delay        time.Duration
	index        int
	offset       int
}

func DropNext(count int) MessageFault {
	return MessageFault{kind: "DropNext", count: count}
}

func DropNextOnChannel(channel domain.ChannelId, count int) MessageFault {
	return MessageFault{kind: "DropNextOnChannel", channel: channel, count: count}
}

func DropMatching(action string) MessageFault {
	return MessageFault{kind: "DropMatching", action: action}
}

func DelayNext(d time.Duration) MessageFault {
	return MessageFault{kind: "Delay", delay: d}
}

func ReorderWindow(index, offset int) MessageFault {
	return MessageFault{kind: "ReorderWindow", index: index, offset: offset}
}

// LifecycleFault is one entry of a FaultPlan affecting task lifecycle.
type LifecycleFault struct {
	kind  string
	count int
}

func CrashOnSend() LifecycleFault            { return LifecycleFault{kind: "CrashOnSend"} }
func CrashOnRecv() LifecycleFault            { return LifecycleFault{kind: "CrashOnRecv"} }
func CrashAfterMessages(count int) LifecycleFault {
	return LifecycleFault{kind: "CrashAfterMessages", count: count}
}

// FaultPlan is a composable, deterministic description of faults to
// inject (C8). It carries no randomness: the same plan applied to the
// same sequence of operations always produces the same faults.
type FaultPlan struct {
	messageFaults   []MessageFault
	lifecycleFaults []LifecycleFault
}

func NewFaultPlan() FaultPlan {
	return FaultPlan{}
}

func (p FaultPlan) WithMessageFault(f MessageFault) FaultPlan {
	p.messageFaults = append(append([]MessageFault{}, p.messageFaults...), f)
	return p
}

func (p FaultPlan) WithLifecycleFault(f LifecycleFault) FaultPlan {
	p.lifecycleFaults = append(append([]LifecycleFault{}, p.lifecycleFaults...), f)
	return p
}

// FaultInjector applies a FaultPlan to message delivery. It is
// stateful: DropNext/DropNextOnChannel/Delay each consume themselves
// as they fire, matching the original's counter semantics exactly.
type FaultInjector struct {
	plan FaultPlan

	messagesProcessed  int
	dropNextCount      int
	dropNextOnChannel  map[domain.ChannelId]int
	delayNextCount     int
	delayDuration      time.Duration
	hasDelay           bool
	crashAfterMessages int
	hasCrashAfter      bool
	shouldCrashOnSend  bool
	shouldCrashOnRecv  bool
}

func NewFaultInjector(plan FaultPlan) *FaultInjector {
	inj := &FaultInjector{
		plan:              plan,
		dropNextOnChannel: make(map[domain.ChannelId]int),
	}
	for _, f := range plan.messageFaults {
		switch f.kind {
		case "DropNext":
			inj.dropNextCount = f.count
		case "DropNextOnChannel":
			inj.dropNextOnChannel[f.channel] = f.count
		case "Delay":
			inj.delayNextCount = 1
			inj.delayDuration = f.delay
			inj.hasDelay = true
		}
	}
	for _, f := range plan.lifecycleFaults {
		switch f.kind {
		case "CrashOnSend":
			inj.shouldCrashOnSend = true
		case "CrashOnRecv":
			inj.shouldCrashOnRecv = true
		case "CrashAfterMessages":
			inj.crashAfterMessages = f.count
			inj.hasCrashAfter = true
		}
	}
	return inj
}

// ShouldDropMessage reports whether the given send should be dropped
// (discarded with no error — the drop is the delivery semantics).
func (inj *FaultInjector) ShouldDropMessage(channel domain.ChannelId, env domain.MessageEnvelope, action string) bool {
	if inj.dropNextCount > 0 {
		inj.dropNextCount--
		return true
	}
	if count, ok := inj.dropNextOnChannel[channel]; ok && count > 0 {
		inj.dropNextOnChannel[channel] = count - 1
		return true
	}
	for _, f := range inj.plan.messageFaults {
		if f.kind == "DropMatching" && f.action == action {
			return true
		}
	}
	return false
}

// GetMessageDelay returns the delay to apply to the next send, if any,
// consuming the one-shot Delay fault.
func (inj *FaultInjector) GetMessageDelay() (time.Duration, bool) {
	if inj.delayNextCount > 0 {
		inj.delayNextCount--
		return inj.delayDuration, inj.hasDelay
	}
	return 0, false
}

// ApplyReordering swaps entries in a channel's ready queue before a
// receive, per any ReorderWindow faults in the plan.
func (inj *FaultInjector) ApplyReordering(messages []pendingMessage) {
	for _, f := range inj.plan.messageFaults {
		if f.kind != "ReorderWindow" {
			continue
		}
		if f.index < len(messages) && f.index+f.offset < len(messages) {
			messages[f.index], messages[f.index+f.offset] = messages[f.index+f.offset], messages[f.index]
		}
	}
}

func (inj *FaultInjector) ShouldCrashOnSend() bool { return inj.shouldCrashOnSend }
func (inj *FaultInjector) ShouldCrashOnRecv() bool { return inj.shouldCrashOnRecv }

// RecordMessageProcessed increments the processed-message counter and
// arms the crash-on-recv flag once CrashAfterMessages{n} is reached.
func (inj *FaultInjector) RecordMessageProcessed() {
	inj.messagesProcessed++
	if inj.hasCrashAfter && inj.messagesProcessed >= inj.crashAfterMessages {
		inj.shouldCrashOnRecv = true
	}
}

func (inj *FaultInjector) MessagesProcessed() int { return inj.messagesProcessed }
