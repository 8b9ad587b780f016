package kernel_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/armper/PandaGen-sub001/kernel"
)

func TestClockStartsAtZeroAndOnlyAdvancesExplicitly(t *testing.T) {
	clock := kernel.NewClock()
	assert.Equal(t, uint64(0), clock.NowNanos())

	got := clock.Sleep(100)
	assert.Equal(t, uint64(100), got)
	assert.Equal(t, uint64(100), clock.NowNanos())

	// reading the time again must not itself advance it
	assert.Equal(t, uint64(100), clock.NowNanos())
}

func TestAdvanceTimeIsCumulative(t *testing.T) {
	clock := kernel.NewClock()
	clock.AdvanceTime(50)
	clock.AdvanceTime(25)
	assert.Equal(t, uint64(75), clock.NowNanos())
}

func TestYieldIsANoOpThatRecordsAudit(t *testing.T) {
	clock := kernel.NewClock()
	scheduler := kernel.NewScheduler(clock)

	scheduler.Yield("task-a")
	before := clock.NowNanos()
	scheduler.Yield("task-a")
	after := clock.NowNanos()

	assert.Equal(t, before, after)
	assert.Equal(t, 2, scheduler.AuditLog().Len())
}
