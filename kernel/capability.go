package kernel

import (
	"github.com/armper/PandaGen-sub001/domain"
	"github.com/armper/PandaGen-sub001/kernerr"
)

// CapabilityEvent is the capability registry's audit event (C11),
// grounded on original_source/tests_resilience/tests/capability_lifecycle.rs
// (CapabilityEvent::{Granted,Delegated,Dropped,Invalidated}).
type CapabilityEvent struct {
	Kind      string
	CapId     domain.CapId
	Grantee   domain.TaskId
	FromTask  domain.TaskId
	ToTask    domain.TaskId
	Holder    domain.TaskId
	TimestampNs uint64
}

func (e CapabilityEvent) Timestamp() uint64 { return e.TimestampNs }

func grantedEvent(capId domain.CapId, grantee domain.TaskId, now uint64) CapabilityEvent {
	return CapabilityEvent{Kind: "Granted", CapId: capId, Grantee: grantee, TimestampNs: now}
}

func delegatedEvent(capId domain.CapId, from, to domain.TaskId, now uint64) CapabilityEvent {
	return CapabilityEvent{Kind: "Delegated", CapId: capId, FromTask: from, ToTask: to, TimestampNs: now}
}

func droppedEvent(capId domain.CapId, holder domain.TaskId, now uint64) CapabilityEvent {
	return CapabilityEvent{Kind: "Dropped", CapId: capId, Holder: holder, TimestampNs: now}
}

func invalidatedEvent(capId domain.CapId, holder domain.TaskId, now uint64) CapabilityEvent {
	return CapabilityEvent{Kind: "Invalidated", CapId: capId, Holder: holder, TimestampNs: now}
}

// capEntry is the registry's internal record: cap_id -> (holder, kind, subject).
type capEntry struct {
	holder  domain.TaskId
	kind    domain.CapKind
	subject string
}

// CapabilityRegistry is the kernel's C2 manager. It never exposes the
// underlying map; every mutation goes through Grant/Delegate/Drop so
// move semantics (at most one holder per cap_id) hold by construction.
type CapabilityRegistry struct {
	clock   *Clock
	isAlive func(domain.TaskId) bool

	entries map[domain.CapId]capEntry
	audit   *AuditLog[CapabilityEvent]
}

func NewCapabilityRegistry(clock *Clock, isAlive func(domain.TaskId) bool) *CapabilityRegistry {
	return &CapabilityRegistry{
		clock:   clock,
		isAlive: isAlive,
		entries: make(map[domain.CapId]capEntry),
		audit:   NewAuditLog[CapabilityEvent](),
	}
}

func (r *CapabilityRegistry) AuditLog() *AuditLog[CapabilityEvent] {
	return r.audit
}

// Grant records ownership of cap under task. Fails if task is not alive.
func (r *CapabilityRegistry) Grant(task domain.TaskId, cap domain.Cap) error {
	if !r.isAlive(task) {
		return kernerr.NewTaskNotFound(task)
	}
	r.entries[cap.CapId] = capEntry{holder: task, kind: cap.Kind, subject: cap.Subject}
	r.audit.Record(grantedEvent(cap.CapId, task, r.clock.NowNanos()))
	return nil
}

// Delegate atomically moves capId from from to to. Fails if capId
// does not exist, if from is not the current holder, or if to is not
// alive.
func (r *CapabilityRegistry) Delegate(capId domain.CapId, from, to domain.TaskId) error {
	entry, ok := r.entries[capId]
	if !ok {
		return kernerr.NewMissingCapability(capId)
	}
	if entry.holder != from {
		return kernerr.NewWrongPrincipal(capId, from)
	}
	if !r.isAlive(to) {
		return kernerr.NewTaskNotFound(to)
	}
	entry.holder = to
	r.entries[capId] = entry
	r.audit.Record(delegatedEvent(capId, from, to, r.clock.NowNanos()))
	return nil
}

// Drop removes ownership of capId. Fails if holder is not the current owner.
func (r *CapabilityRegistry) Drop(capId domain.CapId, holder domain.TaskId) error {
	entry, ok := r.entries[capId]
	if !ok || entry.holder != holder {
		return kernerr.NewMissingCapability(capId)
	}
	delete(r.entries, capId)
	r.audit.Record(droppedEvent(capId, holder, r.clock.NowNanos()))
	return nil
}

// IsValid reports whether task is the current owner of capId.
func (r *CapabilityRegistry) IsValid(capId domain.CapId, task domain.TaskId) bool {
	entry, ok := r.entries[capId]
	return ok && entry.holder == task
}

// InvalidateForTask drops every cap held by task, emitting one
// Invalidated event per cap. Called during task termination.
func (r *CapabilityRegistry) InvalidateForTask(task domain.TaskId) {
	now := r.clock.NowNanos()
	var toRemove []domain.CapId
	for capId, entry := range r.entries {
		if entry.holder == task {
			toRemove = append(toRemove, capId)
		}
	}
	for _, capId := range toRemove {
		delete(r.entries, capId)
		r.audit.Record(invalidatedEvent(capId, task, now))
	}
}
