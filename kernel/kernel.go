// Package kernel implements the PandaGen simulated microkernel: the
// syscall gate (C7) and the managers it dispatches to — capabilities
// (C2), channels (C3), services (C4), the scheduler/clock (C5),
// address spaces (C6), the fault injector (C8), and resource budgets
// (C12). The Kernel value is the single serialization point: every
// manager is owned by it, and there is no concurrent mutator.
package kernel

import (
	"github.com/sirupsen/logrus"

	"github.com/armper/PandaGen-sub001/domain"
	"github.com/armper/PandaGen-sub001/kernelfmt"
)

// KernelApi is the ordinary-syscall surface: everything the gate's
// Execute can dispatch to without requiring memory operations. Tests
// exercise fakes of this interface instead of a full Kernel.
type KernelApi interface {
	SpawnTask(descriptor TaskDescriptor) (TaskHandle, error)
	TerminateTask(task domain.TaskId)
	CreateChannelOp() domain.ChannelId
	SendMessage(channel domain.ChannelId, msg domain.MessageEnvelope, caller domain.ExecutionId) error
	ReceiveMessage(channel domain.ChannelId, caller domain.ExecutionId) (domain.MessageEnvelope, error)
	SleepOp(deltaNanos uint64) uint64
	NowOp() uint64
	YieldOp(caller string)
	GrantCapability(task domain.TaskId, cap domain.Cap) error
	IsCapabilityValid(capId domain.CapId, task domain.TaskId) bool
	DelegateCapability(capId domain.CapId, from, to domain.TaskId) error
	DropCapability(capId domain.CapId, holder domain.TaskId) error
	RegisterServiceOp(serviceId domain.ServiceId, channel domain.ChannelId) error
	LookupServiceOp(serviceId domain.ServiceId) (domain.ChannelId, error)
}

// MemoryOps is the additional surface memory syscalls require; a
// caller must hold KernelApi+MemoryOps to reach ExecuteWithMemory.
type MemoryOps interface {
	CreateAddressSpaceOp(execution domain.ExecutionId) domain.AddressSpaceCap
	AllocateRegionOp(spaceCap domain.AddressSpaceCap, region domain.MemoryRegion, caller domain.ExecutionId) (domain.MemoryRegionCap, error)
	AccessRegionOp(regionCap domain.MemoryRegionCap, access domain.MemoryAccessType, caller domain.ExecutionId) error
}

// Kernel is the concrete simulated kernel: it owns every manager and
// is the sole mutator of kernel state.
type Kernel struct {
	Clock       *Clock
	Scheduler   *Scheduler
	Gate        *SyscallGate
	Capabilities *CapabilityRegistry
	Channels    *ChannelFabric
	Services    *ServiceRegistry
	AddressSpaces *AddressSpaceManager
	Budget      *BudgetTracker
	Injector    *FaultInjector

	tasks           map[domain.TaskId]*taskRecord
	executionToTask map[domain.ExecutionId]domain.TaskId
}

// New builds a Kernel with an empty fault plan and default resource limits.
func New() *Kernel {
	return NewWithFaultPlan(NewFaultPlan())
}

// NewWithFaultPlan builds a Kernel whose channel fabric consults the
// given deterministic fault plan.
func NewWithFaultPlan(plan FaultPlan) *Kernel {
	clock := NewClock()
	injector := NewFaultInjector(plan)

	k := &Kernel{
		Clock:         clock,
		Scheduler:     NewScheduler(clock),
		Gate:          NewSyscallGate(),
		Services:      NewServiceRegistry(),
		AddressSpaces: NewAddressSpaceManager(clock),
		Budget:        NewBudgetTracker(ResourceLimits{}),
		Injector:      injector,

		tasks:           make(map[domain.TaskId]*taskRecord),
		executionToTask: make(map[domain.ExecutionId]domain.TaskId),
	}
	k.Capabilities = NewCapabilityRegistry(clock, k.isTaskAlive)
	k.Channels = NewChannelFabric(clock, injector, k.TerminateTask)
	return k
}

func (k *Kernel) isTaskAlive(task domain.TaskId) bool {
	rec, ok := k.tasks[task]
	return ok && rec.alive
}

// SpawnTask creates a new task and its owning execution context.
func (k *Kernel) SpawnTask(descriptor TaskDescriptor) (TaskHandle, error) {
	taskId := domain.NewTaskId()
	executionId := domain.NewExecutionId()
	k.tasks[taskId] = &taskRecord{taskId: taskId, executionId: executionId, descriptor: descriptor, alive: true}
	k.executionToTask[executionId] = taskId
	logrus.Debugf("spawned task %s (%q) execution=%s", kernelfmt.Short(taskId), descriptor.Name, kernelfmt.Short(executionId))
	return TaskHandle{TaskId: taskId, ExecutionId: executionId}, nil
}

// TerminateTask tears a task down: marks it dead, then invalidates its
// capabilities and destroys its address space. Mirrors
// capability_lifecycle.rs's crash/terminate scenarios.
func (k *Kernel) TerminateTask(task domain.TaskId) {
	rec, ok := k.tasks[task]
	if !ok || !rec.alive {
		return
	}
	rec.alive = false
	k.Capabilities.InvalidateForTask(task)
	_ = k.AddressSpaces.DestroyAddressSpace(rec.executionId)
	logrus.Debugf("terminated task %s", kernelfmt.Short(task))
}

func (k *Kernel) executionFor(task domain.TaskId) (domain.ExecutionId, bool) {
	rec, ok := k.tasks[task]
	if !ok {
		return domain.ExecutionId{}, false
	}
	return rec.executionId, true
}

func (k *Kernel) CreateChannelOp() domain.ChannelId {
	return k.Channels.CreateChannel()
}

func (k *Kernel) SendMessage(channel domain.ChannelId, msg domain.MessageEnvelope, caller domain.ExecutionId) error {
	return k.Channels.Send(channel, msg, k.executionToTask[caller])
}

func (k *Kernel) ReceiveMessage(channel domain.ChannelId, caller domain.ExecutionId) (domain.MessageEnvelope, error) {
	return k.Channels.Receive(channel, k.executionToTask[caller])
}

func (k *Kernel) SleepOp(deltaNanos uint64) uint64 {
	return k.Clock.Sleep(deltaNanos)
}

func (k *Kernel) NowOp() uint64 {
	return k.Clock.NowNanos()
}

func (k *Kernel) YieldOp(caller string) {
	k.Scheduler.Yield(caller)
}

func (k *Kernel) GrantCapability(task domain.TaskId, cap domain.Cap) error {
	return k.Capabilities.Grant(task, cap)
}

func (k *Kernel) IsCapabilityValid(capId domain.CapId, task domain.TaskId) bool {
	return k.Capabilities.IsValid(capId, task)
}

func (k *Kernel) DelegateCapability(capId domain.CapId, from, to domain.TaskId) error {
	return k.Capabilities.Delegate(capId, from, to)
}

func (k *Kernel) DropCapability(capId domain.CapId, holder domain.TaskId) error {
	return k.Capabilities.Drop(capId, holder)
}

func (k *Kernel) RegisterServiceOp(serviceId domain.ServiceId, channel domain.ChannelId) error {
	return k.Services.Register(serviceId, channel)
}

func (k *Kernel) LookupServiceOp(serviceId domain.ServiceId) (domain.ChannelId, error) {
	return k.Services.Lookup(serviceId)
}

func (k *Kernel) CreateAddressSpaceOp(execution domain.ExecutionId) domain.AddressSpaceCap {
	return k.AddressSpaces.CreateAddressSpace(execution)
}

func (k *Kernel) AllocateRegionOp(spaceCap domain.AddressSpaceCap, region domain.MemoryRegion, caller domain.ExecutionId) (domain.MemoryRegionCap, error) {
	return k.AddressSpaces.AllocateRegion(spaceCap, region, caller)
}

func (k *Kernel) AccessRegionOp(regionCap domain.MemoryRegionCap, access domain.MemoryAccessType, caller domain.ExecutionId) error {
	return k.AddressSpaces.AccessRegion(regionCap, access, caller)
}

var _ KernelApi = (*Kernel)(nil)
var _ MemoryOps = (*Kernel)(nil)
