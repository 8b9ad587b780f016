package kernel

import (
	"github.com/sirupsen/logrus"

	"github.com/armper/PandaGen-sub001/domain"
	"github.com/armper/PandaGen-sub001/kernerr"
	"github.com/armper/PandaGen-sub001/kernelfmt"
)

// SyscallName enumerates the complete syscall set (spec §4.1).
type SyscallName string

const (
	SyscallSpawnTask          SyscallName = "SpawnTask"
	SyscallCreateChannel      SyscallName = "CreateChannel"
	SyscallSend               SyscallName = "Send"
	SyscallRecv               SyscallName = "Recv"
	SyscallSleep              SyscallName = "Sleep"
	SyscallNow                SyscallName = "Now"
	SyscallYield              SyscallName = "Yield"
	SyscallGrant              SyscallName = "Grant"
	SyscallRegisterService    SyscallName = "RegisterService"
	SyscallLookupService      SyscallName = "LookupService"
	SyscallCreateAddressSpace SyscallName = "CreateAddressSpace"
	SyscallAllocateRegion     SyscallName = "AllocateRegion"
	SyscallAccessRegion       SyscallName = "AccessRegion"
)

// Syscall is a tagged variant carrying a typed argument record — the
// only way a caller may request kernel work (spec §4.1, §6).
type Syscall struct {
	Name SyscallName

	SpawnDescriptor TaskDescriptor
	Channel         domain.ChannelId
	Message         domain.MessageEnvelope
	SleepNanos      uint64
	GrantTask       domain.TaskId
	GrantCap        domain.Cap
	ServiceId       domain.ServiceId
	SpaceCap        domain.AddressSpaceCap
	RegionSizeBytes uint64
	RegionPerms     domain.MemoryPerms
	RegionBacking   domain.MemoryBacking
	RegionCap       domain.MemoryRegionCap
	AccessType      domain.MemoryAccessType
}

// SyscallResult is the tagged-union result returned by the gate.
type SyscallResult struct {
	TaskHandle  *TaskHandle
	ChannelId   *domain.ChannelId
	Message     *domain.MessageEnvelope
	NowNanos    *uint64
	SpaceCap    *domain.AddressSpaceCap
	RegionCap   *domain.MemoryRegionCap
}

func okResult() SyscallResult { return SyscallResult{} }

// SyscallEvent is the gate's audit event (C11), ported from
// original_source/sim_kernel/src/syscall_gate.rs.
type SyscallEvent struct {
	Kind        string // Invoked | Completed | Rejected | BypassAttempt
	Caller      domain.ExecutionId
	SyscallName string
	Reason      string
	TimestampNs uint64
}

func (e SyscallEvent) Timestamp() uint64 { return e.TimestampNs }

// SyscallGate is the kernel's C7 manager: the only entry point from
// user to kernel. Ordinary syscalls are dispatched against KernelApi;
// memory syscalls require the fuller KernelApi+MemoryOps surface so
// they cannot be satisfied by a partial fake.
type SyscallGate struct {
	audit *AuditLog[SyscallEvent]
}

func NewSyscallGate() *SyscallGate {
	return &SyscallGate{audit: NewAuditLog[SyscallEvent]()}
}

func (g *SyscallGate) AuditLog() *AuditLog[SyscallEvent] {
	return g.audit
}

// Execute dispatches an ordinary syscall against the KernelApi surface.
func (g *SyscallGate) Execute(k KernelApi, caller domain.ExecutionId, sc Syscall, nowNanos uint64) (SyscallResult, error) {
	g.audit.Record(SyscallEvent{Kind: "Invoked", Caller: caller, SyscallName: string(sc.Name), TimestampNs: nowNanos})

	result, err := g.dispatch(k, caller, sc)
	g.recordOutcome(caller, sc.Name, nowNanos, err)
	return result, err
}

// ExecuteWithMemory dispatches a memory syscall, which requires the
// full KernelApi+MemoryOps surface.
func (g *SyscallGate) ExecuteWithMemory(k interface {
	KernelApi
	MemoryOps
}, caller domain.ExecutionId, sc Syscall, nowNanos uint64) (SyscallResult, error) {
	g.audit.Record(SyscallEvent{Kind: "Invoked", Caller: caller, SyscallName: string(sc.Name), TimestampNs: nowNanos})

	var result SyscallResult
	var err error

	switch sc.Name {
	case SyscallCreateAddressSpace:
		cap := k.CreateAddressSpaceOp(caller)
		result = SyscallResult{SpaceCap: &cap}
	case SyscallAllocateRegion:
		region := domain.NewMemoryRegion(sc.RegionSizeBytes, sc.RegionPerms, sc.RegionBacking)
		var regionCap domain.MemoryRegionCap
		regionCap, err = k.AllocateRegionOp(sc.SpaceCap, region, caller)
		if err == nil {
			result = SyscallResult{RegionCap: &regionCap}
		}
	case SyscallAccessRegion:
		err = k.AccessRegionOp(sc.RegionCap, sc.AccessType, caller)
		if err == nil {
			result = okResult()
		}
	default:
		err = g.dispatchNonMemory(k, caller, sc, &result)
	}

	g.recordOutcome(caller, sc.Name, nowNanos, err)
	return result, err
}

func (g *SyscallGate) dispatchNonMemory(k KernelApi, caller domain.ExecutionId, sc Syscall, result *SyscallResult) error {
	r, err := g.dispatch(k, caller, sc)
	*result = r
	return err
}

func (g *SyscallGate) dispatch(k KernelApi, caller domain.ExecutionId, sc Syscall) (SyscallResult, error) {
	switch sc.Name {
	case SyscallSpawnTask:
		handle, err := k.SpawnTask(sc.SpawnDescriptor)
		if err != nil {
			return SyscallResult{}, err
		}
		return SyscallResult{TaskHandle: &handle}, nil
	case SyscallCreateChannel:
		ch := k.CreateChannelOp()
		return SyscallResult{ChannelId: &ch}, nil
	case SyscallSend:
		if err := k.SendMessage(sc.Channel, sc.Message, caller); err != nil {
			return SyscallResult{}, err
		}
		return okResult(), nil
	case SyscallRecv:
		msg, err := k.ReceiveMessage(sc.Channel, caller)
		if err != nil {
			return SyscallResult{}, err
		}
		return SyscallResult{Message: &msg}, nil
	case SyscallSleep:
		k.SleepOp(sc.SleepNanos)
		return okResult(), nil
	case SyscallNow:
		now := k.NowOp()
		return SyscallResult{NowNanos: &now}, nil
	case SyscallYield:
		k.YieldOp(caller.String())
		return okResult(), nil
	case SyscallGrant:
		if err := k.GrantCapability(sc.GrantTask, sc.GrantCap); err != nil {
			return SyscallResult{}, err
		}
		return okResult(), nil
	case SyscallRegisterService:
		if err := k.RegisterServiceOp(sc.ServiceId, sc.Channel); err != nil {
			return SyscallResult{}, err
		}
		return okResult(), nil
	case SyscallLookupService:
		ch, err := k.LookupServiceOp(sc.ServiceId)
		if err != nil {
			return SyscallResult{}, err
		}
		return SyscallResult{ChannelId: &ch}, nil
	case SyscallCreateAddressSpace, SyscallAllocateRegion, SyscallAccessRegion:
		return SyscallResult{}, kernerr.NewInsufficientAuthority(string(sc.Name) + " requires the memory syscall entry point")
	default:
		return SyscallResult{}, kernerr.NewInsufficientAuthority("unknown syscall")
	}
}

func (g *SyscallGate) recordOutcome(caller domain.ExecutionId, name SyscallName, nowNanos uint64, err error) {
	if err != nil {
		g.audit.Record(SyscallEvent{Kind: "Rejected", Caller: caller, SyscallName: string(name), Reason: err.Error(), TimestampNs: nowNanos})
		logrus.Debugf("syscall %s rejected for %s: %v", name, kernelfmt.Short(caller), err)
		return
	}
	g.audit.Record(SyscallEvent{Kind: "Completed", Caller: caller, SyscallName: string(name), TimestampNs: nowNanos})
}

// RecordBypassAttempt logs a direct kernel access that did not go
// through the gate (spec §4.1). The caller reports the bypass; no
// manager in this package detects or reports one on its own.
func (g *SyscallGate) RecordBypassAttempt(caller domain.ExecutionId, nowNanos uint64) {
	g.audit.Record(SyscallEvent{Kind: "BypassAttempt", Caller: caller, TimestampNs: nowNanos})
	logrus.Warnf("syscall gate bypass attempt by %s", kernelfmt.Short(caller))
}
