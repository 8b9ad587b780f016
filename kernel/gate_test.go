package kernel_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/armper/PandaGen-sub001/domain"
	"github.com/armper/PandaGen-sub001/kernel"
	"github.com/armper/PandaGen-sub001/kernerr"
)

func TestExecuteSpawnTaskDispatchesAndRecordsCompleted(t *testing.T) {
	k := kernel.New()
	gate := k.Gate
	caller := domain.NewExecutionId()

	sc := kernel.Syscall{Name: kernel.SyscallSpawnTask, SpawnDescriptor: kernel.NewTaskDescriptor("worker")}
	result, err := gate.Execute(k, caller, sc, 10)
	assert.NoError(t, err)
	assert.NotNil(t, result.TaskHandle)
	assert.NotEqual(t, domain.TaskId{}, result.TaskHandle.TaskId)

	events := gate.AuditLog().Events()
	assert.Len(t, events, 2)
	assert.Equal(t, "Invoked", events[0].Kind)
	assert.Equal(t, "Completed", events[1].Kind)
}

func TestExecuteRejectedSyscallRecordsReason(t *testing.T) {
	k := kernel.New()
	gate := k.Gate
	caller := domain.NewExecutionId()

	sc := kernel.Syscall{Name: kernel.SyscallLookupService, ServiceId: domain.NewServiceId()}
	_, err := gate.Execute(k, caller, sc, 5)
	assert.Error(t, err)

	events := gate.AuditLog().Events()
	assert.Len(t, events, 2)
	assert.Equal(t, "Rejected", events[1].Kind)
	assert.NotEmpty(t, events[1].Reason)
}

func TestExecuteRejectsMemorySyscallsWithInsufficientAuthority(t *testing.T) {
	k := kernel.New()
	gate := k.Gate
	caller := domain.NewExecutionId()

	sc := kernel.Syscall{Name: kernel.SyscallCreateAddressSpace}
	_, err := gate.Execute(k, caller, sc, 0)
	assert.True(t, kernerr.Is(err, kernerr.InsufficientAuthority))
}

func TestExecuteWithMemoryCreatesSpaceAllocatesAndAccesses(t *testing.T) {
	k := kernel.New()
	gate := k.Gate
	caller := domain.NewExecutionId()

	spaceResult, err := gate.ExecuteWithMemory(k, caller, kernel.Syscall{Name: kernel.SyscallCreateAddressSpace}, 0)
	assert.NoError(t, err)
	assert.NotNil(t, spaceResult.SpaceCap)

	allocResult, err := gate.ExecuteWithMemory(k, caller, kernel.Syscall{
		Name:            kernel.SyscallAllocateRegion,
		SpaceCap:        *spaceResult.SpaceCap,
		RegionSizeBytes: 4096,
		RegionPerms:     domain.ReadWritePerms(),
		RegionBacking:   domain.AnonymousBacking(),
	}, 0)
	assert.NoError(t, err)
	assert.NotNil(t, allocResult.RegionCap)

	_, err = gate.ExecuteWithMemory(k, caller, kernel.Syscall{
		Name:       kernel.SyscallAccessRegion,
		RegionCap:  *allocResult.RegionCap,
		AccessType: domain.AccessRead,
	}, 0)
	assert.NoError(t, err)
}

func TestExecuteWithMemoryStillDispatchesOrdinarySyscalls(t *testing.T) {
	k := kernel.New()
	gate := k.Gate
	caller := domain.NewExecutionId()
	k.Clock.AdvanceTime(42)

	sc := kernel.Syscall{Name: kernel.SyscallNow}
	result, err := gate.ExecuteWithMemory(k, caller, sc, 42)
	assert.NoError(t, err)
	assert.NotNil(t, result.NowNanos)
	assert.Equal(t, uint64(42), *result.NowNanos)
}

func TestRecordBypassAttemptIsAudited(t *testing.T) {
	k := kernel.New()
	gate := k.Gate
	caller := domain.NewExecutionId()

	gate.RecordBypassAttempt(caller, 7)

	events := gate.AuditLog().Events()
	assert.Len(t, events, 1)
	assert.Equal(t, "BypassAttempt", events[0].Kind)
}
