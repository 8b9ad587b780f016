package kernel_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/armper/PandaGen-sub001/domain"
	"github.com/armper/PandaGen-sub001/internal/kernelmocks"
	"github.com/armper/PandaGen-sub001/kernel"
)

// These tests dispatch against a bare KernelApi/MemoryOps fake instead
// of a full Kernel, so a manager's own error path can be exercised in
// isolation without reproducing the state that would trigger it for real.

func TestExecutePropagatesSpawnTaskFailure(t *testing.T) {
	api := new(kernelmocks.KernelApi)
	api.On("SpawnTask", mock.Anything).Return(kernel.TaskHandle{}, errors.New("spawn refused"))

	gate := kernel.NewSyscallGate()
	caller := domain.NewExecutionId()
	_, err := gate.Execute(api, caller, kernel.Syscall{Name: kernel.SyscallSpawnTask}, 0)

	assert.EqualError(t, err, "spawn refused")
	api.AssertExpectations(t)
}

func TestExecuteWithMemoryDispatchesAllocateRegionThroughMemoryOps(t *testing.T) {
	api := new(mockKernelApiAndMemoryOps)
	region := domain.NewMemoryRegion(4096, domain.ReadOnlyPerms(), domain.AnonymousBacking())
	spaceCap := domain.AddressSpaceCap{SpaceId: domain.NewAddressSpaceId(), CapId: domain.CapId(1)}
	regionCap := domain.MemoryRegionCap{SpaceId: spaceCap.SpaceId, RegionId: region.RegionId, CapId: domain.CapId(2)}

	api.MemoryOps.On("AllocateRegionOp", spaceCap, mock.AnythingOfType("domain.MemoryRegion"), mock.Anything).Return(regionCap, nil)

	gate := kernel.NewSyscallGate()
	caller := domain.NewExecutionId()
	result, err := gate.ExecuteWithMemory(api, caller, kernel.Syscall{
		Name:            kernel.SyscallAllocateRegion,
		SpaceCap:        spaceCap,
		RegionSizeBytes: 4096,
		RegionPerms:     domain.ReadOnlyPerms(),
		RegionBacking:   domain.AnonymousBacking(),
	}, 0)

	assert.NoError(t, err)
	assert.Equal(t, regionCap, *result.RegionCap)
	api.MemoryOps.AssertExpectations(t)
}

// mockKernelApiAndMemoryOps embeds both fakes so it satisfies the
// combined interface ExecuteWithMemory requires.
type mockKernelApiAndMemoryOps struct {
	kernelmocks.KernelApi
	kernelmocks.MemoryOps
}
