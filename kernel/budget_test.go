package kernel_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/armper/PandaGen-sub001/domain"
	"github.com/armper/PandaGen-sub001/kernel"
	"github.com/armper/PandaGen-sub001/kernerr"
)

func TestTryConsumeWithinLimitSucceeds(t *testing.T) {
	tracker := kernel.NewBudgetTracker(kernel.ResourceLimits{Packets: 10})
	execution := domain.NewExecutionId()

	assert.NoError(t, tracker.TryConsume(execution, kernel.ResourcePackets, 4))
	assert.Equal(t, uint64(4), tracker.Usage(execution, kernel.ResourcePackets))
}

func TestTryConsumeRejectsOverLimit(t *testing.T) {
	tracker := kernel.NewBudgetTracker(kernel.ResourceLimits{Packets: 10})
	execution := domain.NewExecutionId()

	assert.NoError(t, tracker.TryConsume(execution, kernel.ResourcePackets, 8))
	err := tracker.TryConsume(execution, kernel.ResourcePackets, 8)
	assert.True(t, kernerr.Is(err, kernerr.ResourceBudgetExhausted))
	// a rejected charge must not have been applied
	assert.Equal(t, uint64(8), tracker.Usage(execution, kernel.ResourcePackets))
}

func TestZeroLimitMeansUnbounded(t *testing.T) {
	tracker := kernel.NewBudgetTracker(kernel.ResourceLimits{})
	execution := domain.NewExecutionId()

	assert.NoError(t, tracker.TryConsume(execution, kernel.ResourceCpuTicks, 1_000_000))
}

func TestPerExecutionLimitsOverrideDefault(t *testing.T) {
	tracker := kernel.NewBudgetTracker(kernel.ResourceLimits{StorageOps: 1})
	execution := domain.NewExecutionId()
	tracker.SetLimits(execution, kernel.ResourceLimits{StorageOps: 100})

	assert.NoError(t, tracker.TryConsume(execution, kernel.ResourceStorageOps, 50))
}

func TestUsageIsIndependentPerExecution(t *testing.T) {
	tracker := kernel.NewBudgetTracker(kernel.ResourceLimits{Memory: 100})
	a, b := domain.NewExecutionId(), domain.NewExecutionId()

	assert.NoError(t, tracker.TryConsume(a, kernel.ResourceMemory, 90))
	assert.NoError(t, tracker.TryConsume(b, kernel.ResourceMemory, 90))
}
