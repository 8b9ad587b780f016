package kernel_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/armper/PandaGen-sub001/domain"
	"github.com/armper/PandaGen-sub001/kernel"
	"github.com/armper/PandaGen-sub001/kernerr"
)

func newAliveRegistry(alive ...domain.TaskId) (*kernel.CapabilityRegistry, func(domain.TaskId) bool) {
	set := make(map[domain.TaskId]bool, len(alive))
	for _, t := range alive {
		set[t] = true
	}
	isAlive := func(t domain.TaskId) bool { return set[t] }
	return kernel.NewCapabilityRegistry(kernel.NewClock(), isAlive), isAlive
}

func TestGrantRecordsOwnershipAndAuditEvent(t *testing.T) {
	task := domain.NewTaskId()
	registry, _ := newAliveRegistry(task)
	cap := domain.NewCap(domain.CapId(1), domain.CapRead, "obj-1")

	assert.NoError(t, registry.Grant(task, cap))
	assert.True(t, registry.IsValid(cap.CapId, task))
	assert.Equal(t, 1, registry.AuditLog().Len())
}

func TestGrantFailsForDeadTask(t *testing.T) {
	registry, _ := newAliveRegistry()
	cap := domain.NewCap(domain.CapId(1), domain.CapRead, "obj-1")

	err := registry.Grant(domain.NewTaskId(), cap)
	assert.True(t, kernerr.Is(err, kernerr.TaskNotFound))
}

func TestDelegateMovesOwnershipExactlyOnce(t *testing.T) {
	from, to := domain.NewTaskId(), domain.NewTaskId()
	registry, _ := newAliveRegistry(from, to)
	cap := domain.NewCap(domain.CapId(1), domain.CapRead, "obj-1")
	assert.NoError(t, registry.Grant(from, cap))

	assert.NoError(t, registry.Delegate(cap.CapId, from, to))
	assert.False(t, registry.IsValid(cap.CapId, from))
	assert.True(t, registry.IsValid(cap.CapId, to))
}

func TestDelegateFailsIfFromIsNotHolder(t *testing.T) {
	holder, imposter, to := domain.NewTaskId(), domain.NewTaskId(), domain.NewTaskId()
	registry, _ := newAliveRegistry(holder, imposter, to)
	cap := domain.NewCap(domain.CapId(1), domain.CapRead, "obj-1")
	assert.NoError(t, registry.Grant(holder, cap))

	err := registry.Delegate(cap.CapId, imposter, to)
	assert.True(t, kernerr.Is(err, kernerr.WrongPrincipal))
}

func TestDelegateFailsForUnknownCapability(t *testing.T) {
	from, to := domain.NewTaskId(), domain.NewTaskId()
	registry, _ := newAliveRegistry(from, to)

	err := registry.Delegate(domain.CapId(99), from, to)
	assert.True(t, kernerr.Is(err, kernerr.MissingCapability))
}

func TestDropRemovesOwnership(t *testing.T) {
	task := domain.NewTaskId()
	registry, _ := newAliveRegistry(task)
	cap := domain.NewCap(domain.CapId(1), domain.CapRead, "obj-1")
	assert.NoError(t, registry.Grant(task, cap))

	assert.NoError(t, registry.Drop(cap.CapId, task))
	assert.False(t, registry.IsValid(cap.CapId, task))
}

func TestInvalidateForTaskDropsEveryHeldCap(t *testing.T) {
	task := domain.NewTaskId()
	registry, _ := newAliveRegistry(task)
	capA := domain.NewCap(domain.CapId(1), domain.CapRead, "obj-1")
	capB := domain.NewCap(domain.CapId(2), domain.CapWrite, "obj-2")
	assert.NoError(t, registry.Grant(task, capA))
	assert.NoError(t, registry.Grant(task, capB))

	registry.InvalidateForTask(task)

	assert.False(t, registry.IsValid(capA.CapId, task))
	assert.False(t, registry.IsValid(capB.CapId, task))
	assert.Equal(t, 2, registry.AuditLog().CountWhere(func(e kernel.CapabilityEvent) bool {
		return e.Kind == "Invalidated"
	}))
}
