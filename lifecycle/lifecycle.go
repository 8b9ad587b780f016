// Package lifecycle provides deterministic cancellation and timeout
// primitives. Cancellation is cooperative: the kernel never
// force-unwinds a task, it only exposes a token callers poll
// explicitly via ThrowIfCancelled (spec §5).
package lifecycle

import (
	"sync"
	"time"

	"github.com/armper/PandaGen-sub001/kernerr"
)

// CancellationReason names why a CancellationSource fired.
type CancellationReason struct {
	Kind   string
	Detail string
}

func UserCancel() CancellationReason         { return CancellationReason{Kind: "UserCancel"} }
func TimeoutReason() CancellationReason      { return CancellationReason{Kind: "Timeout"} }
func SupervisorCancel() CancellationReason   { return CancellationReason{Kind: "SupervisorCancel"} }
func DependencyFailed() CancellationReason   { return CancellationReason{Kind: "DependencyFailed"} }
func CustomReason(detail string) CancellationReason {
	return CancellationReason{Kind: "Custom", Detail: detail}
}

func (r CancellationReason) String() string {
	if r.Kind == "Custom" {
		return r.Detail
	}
	return r.Kind
}

type sharedState struct {
	mu        sync.Mutex
	cancelled bool
	reason    CancellationReason
}

// CancellationToken is a cheap-to-clone handle that can be checked for
// cancellation. It never blocks and the kernel never inspects it
// implicitly — callers must poll ThrowIfCancelled themselves.
type CancellationToken struct {
	shared *sharedState
}

// None returns a token that is never cancelled, for operations that
// don't support cancellation.
func None() CancellationToken {
	return CancellationToken{shared: &sharedState{}}
}

func (t CancellationToken) IsCancelled() bool {
	t.shared.mu.Lock()
	defer t.shared.mu.Unlock()
	return t.shared.cancelled
}

func (t CancellationToken) Reason() (CancellationReason, bool) {
	t.shared.mu.Lock()
	defer t.shared.mu.Unlock()
	return t.shared.reason, t.shared.cancelled
}

func (t CancellationToken) ThrowIfCancelled() error {
	if reason, cancelled := t.Reason(); cancelled {
		return kernerr.NewCancelled(reason.String())
	}
	return nil
}

// CancellationSource is the controller side: it creates tokens and can
// cancel all of them at once.
type CancellationSource struct {
	shared *sharedState
}

func NewCancellationSource() CancellationSource {
	return CancellationSource{shared: &sharedState{}}
}

func (s CancellationSource) Token() CancellationToken {
	return CancellationToken{shared: s.shared}
}

func (s CancellationSource) Cancel(reason CancellationReason) {
	s.shared.mu.Lock()
	defer s.shared.mu.Unlock()
	s.shared.cancelled = true
	s.shared.reason = reason
}

func (s CancellationSource) IsCancelled() bool {
	return CancellationToken(s).IsCancelled()
}

// Deadline is an absolute point in logical time.
type Deadline struct {
	Nanos uint64
}

func DeadlineAt(nanos uint64) Deadline { return Deadline{Nanos: nanos} }

func (d Deadline) HasPassed(nowNanos uint64) bool {
	return nowNanos >= d.Nanos
}

// TimeRemaining returns the remaining duration, or false if the
// deadline has passed.
func (d Deadline) TimeRemaining(nowNanos uint64) (time.Duration, bool) {
	if nowNanos >= d.Nanos {
		return 0, false
	}
	return time.Duration(d.Nanos-nowNanos) * time.Nanosecond, true
}

// Timeout is a relative duration, converted to a Deadline once a
// reference "now" is known.
type Timeout struct {
	Duration time.Duration
}

func After(d time.Duration) Timeout           { return Timeout{Duration: d} }
func FromMillis(ms uint64) Timeout            { return Timeout{Duration: time.Duration(ms) * time.Millisecond} }
func FromSeconds(s uint64) Timeout            { return Timeout{Duration: time.Duration(s) * time.Second} }

func (t Timeout) ToDeadline(nowNanos uint64) Deadline {
	return Deadline{Nanos: nowNanos + uint64(t.Duration.Nanoseconds())}
}
