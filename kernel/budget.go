package kernel

import (
	"github.com/armper/PandaGen-sub001/domain"
	"github.com/armper/PandaGen-sub001/kernerr"
)

// ResourceKind names one of the counters the budget tracks per
// ExecutionId (C12).
type ResourceKind string

const (
	ResourceStorageOps ResourceKind = "storage_ops"
	ResourcePackets    ResourceKind = "packets"
	ResourceMemory     ResourceKind = "memory"
	ResourceCpuTicks   ResourceKind = "cpu_ticks"
)

// ResourceLimits caps consumption per ExecutionId. A zero value for a
// field means "unbounded" for that resource.
type ResourceLimits struct {
	StorageOps uint64
	Packets    uint64
	Memory     uint64
	CpuTicks   uint64
}

func (l ResourceLimits) limitFor(kind ResourceKind) uint64 {
	switch kind {
	case ResourceStorageOps:
		return l.StorageOps
	case ResourcePackets:
		return l.Packets
	case ResourceMemory:
		return l.Memory
	case ResourceCpuTicks:
		return l.CpuTicks
	default:
		return 0
	}
}

type usageCounters struct {
	storageOps uint64
	packets    uint64
	memory     uint64
	cpuTicks   uint64
}

func (u *usageCounters) get(kind ResourceKind) uint64 {
	switch kind {
	case ResourceStorageOps:
		return u.storageOps
	case ResourcePackets:
		return u.packets
	case ResourceMemory:
		return u.memory
	case ResourceCpuTicks:
		return u.cpuTicks
	default:
		return 0
	}
}

func (u *usageCounters) add(kind ResourceKind, amount uint64) {
	switch kind {
	case ResourceStorageOps:
		u.storageOps += amount
	case ResourcePackets:
		u.packets += amount
	case ResourceMemory:
		u.memory += amount
	case ResourceCpuTicks:
		u.cpuTicks += amount
	}
}

// BudgetTracker is the kernel's C12 manager. Every execution gets the
// same limits unless SetLimits is called for it explicitly.
type BudgetTracker struct {
	defaultLimits ResourceLimits
	limits        map[domain.ExecutionId]ResourceLimits
	usage         map[domain.ExecutionId]*usageCounters
}

func NewBudgetTracker(defaultLimits ResourceLimits) *BudgetTracker {
	return &BudgetTracker{
		defaultLimits: defaultLimits,
		limits:        make(map[domain.ExecutionId]ResourceLimits),
		usage:         make(map[domain.ExecutionId]*usageCounters),
	}
}

func (b *BudgetTracker) SetLimits(execution domain.ExecutionId, limits ResourceLimits) {
	b.limits[execution] = limits
}

func (b *BudgetTracker) limitsFor(execution domain.ExecutionId) ResourceLimits {
	if l, ok := b.limits[execution]; ok {
		return l
	}
	return b.defaultLimits
}

func (b *BudgetTracker) usageFor(execution domain.ExecutionId) *usageCounters {
	u, ok := b.usage[execution]
	if !ok {
		u = &usageCounters{}
		b.usage[execution] = u
	}
	return u
}

// TryConsume charges amount of kind against execution's budget,
// failing with ResourceBudgetExhausted if the limit (when non-zero)
// would be exceeded. Consultation and charge happen atomically.
func (b *BudgetTracker) TryConsume(execution domain.ExecutionId, kind ResourceKind, amount uint64) error {
	limit := b.limitsFor(execution).limitFor(kind)
	usage := b.usageFor(execution)
	current := usage.get(kind)

	if limit > 0 && current+amount > limit {
		return kernerr.NewResourceBudgetExhausted(string(kind), limit, current)
	}
	usage.add(kind, amount)
	return nil
}

func (b *BudgetTracker) Usage(execution domain.ExecutionId, kind ResourceKind) uint64 {
	return b.usageFor(execution).get(kind)
}
