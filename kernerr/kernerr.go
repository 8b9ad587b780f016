// Package kernerr defines the closed, structured error taxonomy for
// the kernel (spec §7). Every error is a concrete Go type carrying
// typed fields — never a free-form string — so a caller can recover
// the original identifiers with errors.As instead of parsing text.
package kernerr

import (
	"errors"
	"fmt"
)

// Code names one of the closed set of kernel error kinds.
type Code string

const (
	// Authority errors — never retried by the kernel.
	InsufficientAuthority Code = "InsufficientAuthority"
	WrongObject           Code = "WrongObject"
	WrongPrincipal        Code = "WrongPrincipal"
	WrongCapabilityKind   Code = "WrongCapabilityKind"
	MissingCapability     Code = "MissingCapability"

	// Lifecycle errors — terminal for the operation.
	TaskNotFound             Code = "TaskNotFound"
	AlreadyFinalized         Code = "AlreadyFinalized"
	ServiceAlreadyRegistered Code = "ServiceAlreadyRegistered"
	ServiceNotFound          Code = "ServiceNotFound"

	// Resource errors — recoverable by the caller.
	ChannelFull             Code = "ChannelFull"
	ChannelEmpty            Code = "ChannelEmpty"
	ResourceBudgetExhausted Code = "ResourceBudgetExhausted"

	// Transaction errors — caller may rollback and retry.
	ObjectNotFound  Code = "ObjectNotFound"
	VersionConflict Code = "VersionConflict"
	JournalIO       Code = "JournalIO"

	// Consensus errors — election may be retried by the harness.
	QuorumNotReached Code = "QuorumNotReached"
	LeaderRequired   Code = "LeaderRequired"
	NodeNotFound     Code = "NodeNotFound"

	// Schema errors — fatal for the operation, never silently coerced.
	SchemaMismatch       Code = "SchemaMismatch"
	UnsupportedVersion   Code = "UnsupportedVersion"
	RevisionNotMonotonic Code = "RevisionNotMonotonic"
	UnsupportedMigration Code = "UnsupportedMigration"

	// Memory errors.
	AddressSpaceNotFound Code = "AddressSpaceNotFound"
	RegionNotFound       Code = "RegionNotFound"
	PermissionDenied     Code = "PermissionDenied"
	NoCapability         Code = "NoCapability"
	RegionOverlap        Code = "RegionOverlap"

	// Lifecycle/cancellation errors.
	Cancelled Code = "Cancelled"
	Timeout   Code = "Timeout"
)

// Error is the single structured error type returned across the
// kernel surface. Fields holds whichever typed data the Code implies;
// callers that need a specific field read it directly rather than
// parsing Error().
type Error struct {
	Code   Code
	Fields map[string]interface{}
}

func New(code Code, fields map[string]interface{}) *Error {
	return &Error{Code: code, Fields: fields}
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s%s", e.Code, formatFields(e.Fields))
}

func formatFields(fields map[string]interface{}) string {
	if len(fields) == 0 {
		return ""
	}
	out := " {"
	first := true
	for k, v := range fields {
		if !first {
			out += ", "
		}
		first = false
		out += fmt.Sprintf("%s=%v", k, v)
	}
	return out + "}"
}

// Field reads a single typed field, returning ok=false if absent.
func (e *Error) Field(name string) (interface{}, bool) {
	v, ok := e.Fields[name]
	return v, ok
}

// Is reports whether err carries the given Code, unwrapping *Error.
func Is(err error, code Code) bool {
	var kerr *Error
	if !errors.As(err, &kerr) {
		return false
	}
	return kerr.Code == code
}

func f(kv ...interface{}) map[string]interface{} {
	m := make(map[string]interface{}, len(kv)/2)
	for i := 0; i+1 < len(kv); i += 2 {
		key, ok := kv[i].(string)
		if !ok {
			continue
		}
		m[key] = kv[i+1]
	}
	return m
}

// Constructors below name every field that surfaces in spec §6/§7 so
// callers never need to build a *Error by hand.

func NewInsufficientAuthority(reason string) *Error {
	return New(InsufficientAuthority, f("reason", reason))
}

// NewWrongObject reports a capability presented against an object it
// was never bound to (want is the object the cap was issued for, got
// is the one the caller presented it against).
func NewWrongObject(capId interface{}, want, got interface{}) *Error {
	return New(WrongObject, f("cap_id", capId, "want", want, "got", got))
}

// NewWrongPrincipal reports an operation naming a task that is not the
// capability's current holder.
func NewWrongPrincipal(capId interface{}, presented interface{}) *Error {
	return New(WrongPrincipal, f("cap_id", capId, "presented", presented))
}

func NewWrongCapabilityKind(capId interface{}, want, got string) *Error {
	return New(WrongCapabilityKind, f("cap_id", capId, "want", want, "got", got))
}

func NewMissingCapability(capId interface{}) *Error {
	return New(MissingCapability, f("cap_id", capId))
}

func NewTaskNotFound(taskId interface{}) *Error {
	return New(TaskNotFound, f("task_id", taskId))
}

func NewAlreadyFinalized(txId interface{}) *Error {
	return New(AlreadyFinalized, f("tx_id", txId))
}

func NewServiceAlreadyRegistered(serviceId interface{}) *Error {
	return New(ServiceAlreadyRegistered, f("service_id", serviceId))
}

func NewServiceNotFound(serviceId interface{}) *Error {
	return New(ServiceNotFound, f("service_id", serviceId))
}

func NewChannelFull(channelId interface{}, capacity int) *Error {
	return New(ChannelFull, f("channel_id", channelId, "capacity", capacity))
}

func NewChannelEmpty(channelId interface{}) *Error {
	return New(ChannelEmpty, f("channel_id", channelId))
}

func NewResourceBudgetExhausted(resource string, limit, usage uint64) *Error {
	return New(ResourceBudgetExhausted, f("resource", resource, "limit", limit, "usage", usage))
}

func NewObjectNotFound(objectId interface{}) *Error {
	return New(ObjectNotFound, f("object_id", objectId))
}

func NewVersionConflict(objectId interface{}) *Error {
	return New(VersionConflict, f("object_id", objectId))
}

func NewQuorumNotReached(have, need int) *Error {
	return New(QuorumNotReached, f("have", have, "need", need))
}

func NewLeaderRequired(nodeId interface{}) *Error {
	return New(LeaderRequired, f("node_id", nodeId))
}

func NewNodeNotFound(nodeId interface{}) *Error {
	return New(NodeNotFound, f("node_id", nodeId))
}

func NewSchemaMismatch(want, got interface{}) *Error {
	return New(SchemaMismatch, f("want", want, "got", got))
}

func NewUnsupportedVersion(version interface{}) *Error {
	return New(UnsupportedVersion, f("version", version))
}

func NewRevisionNotMonotonic(expected, actual uint64) *Error {
	return New(RevisionNotMonotonic, f("expected", expected, "actual", actual))
}

func NewUnsupportedMigration(from, to interface{}) *Error {
	return New(UnsupportedMigration, f("from", from, "to", to))
}

func NewAddressSpaceNotFound(spaceId interface{}) *Error {
	return New(AddressSpaceNotFound, f("space_id", spaceId))
}

func NewRegionNotFound(regionId interface{}) *Error {
	return New(RegionNotFound, f("region_id", regionId))
}

func NewPermissionDenied(regionId interface{}, accessType string, permissions interface{}) *Error {
	return New(PermissionDenied, f("region_id", regionId, "access_type", accessType, "permissions", permissions))
}

func NewNoCapability(regionId interface{}) *Error {
	return New(NoCapability, f("region_id", regionId))
}

func NewRegionOverlap(spaceId interface{}) *Error {
	return New(RegionOverlap, f("space_id", spaceId))
}

func NewCancelled(reason string) *Error {
	return New(Cancelled, f("reason", reason))
}

func NewTimeout() *Error {
	return New(Timeout, nil)
}
