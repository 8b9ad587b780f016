package kernel_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/armper/PandaGen-sub001/domain"
	"github.com/armper/PandaGen-sub001/kernel"
	"github.com/armper/PandaGen-sub001/kernerr"
)

func TestSpawnTaskThenTerminateInvalidatesCapabilitiesAndSpace(t *testing.T) {
	k := kernel.New()

	handle, err := k.SpawnTask(kernel.NewTaskDescriptor("victim"))
	assert.NoError(t, err)

	cap := domain.NewCap(domain.CapId(1), domain.CapUntyped, domain.NewChannelId().String())
	assert.NoError(t, k.GrantCapability(handle.TaskId, cap))
	assert.True(t, k.IsCapabilityValid(cap.CapId, handle.TaskId))

	spaceCap := k.CreateAddressSpaceOp(handle.ExecutionId)
	region := domain.NewMemoryRegion(4096, domain.ReadWritePerms(), domain.AnonymousBacking())
	regionCap, err := k.AllocateRegionOp(spaceCap, region, handle.ExecutionId)
	assert.NoError(t, err)

	k.TerminateTask(handle.TaskId)

	assert.False(t, k.IsCapabilityValid(cap.CapId, handle.TaskId))
	err = k.AccessRegionOp(regionCap, domain.AccessRead, handle.ExecutionId)
	assert.True(t, kernerr.Is(err, kernerr.NoCapability))
}

func TestTerminateTaskOnUnknownOrDeadTaskIsANoOp(t *testing.T) {
	k := kernel.New()
	k.TerminateTask(domain.NewTaskId())

	handle, err := k.SpawnTask(kernel.NewTaskDescriptor("ephemeral"))
	assert.NoError(t, err)
	k.TerminateTask(handle.TaskId)
	k.TerminateTask(handle.TaskId)
}

func TestEndToEndSyscallDispatchThroughGateRegisterAndLookupService(t *testing.T) {
	k := kernel.New()
	caller := domain.NewExecutionId()

	chanResult, err := k.Gate.Execute(k, caller, kernel.Syscall{Name: kernel.SyscallCreateChannel}, 0)
	assert.NoError(t, err)
	channelId := *chanResult.ChannelId

	serviceId := domain.NewServiceId()
	_, err = k.Gate.Execute(k, caller, kernel.Syscall{
		Name:      kernel.SyscallRegisterService,
		ServiceId: serviceId,
		Channel:   channelId,
	}, 0)
	assert.NoError(t, err)

	lookupResult, err := k.Gate.Execute(k, caller, kernel.Syscall{
		Name:      kernel.SyscallLookupService,
		ServiceId: serviceId,
	}, 0)
	assert.NoError(t, err)
	assert.Equal(t, channelId, *lookupResult.ChannelId)
}

func TestCrashOnSendFaultTerminatesCallingTaskThroughFullKernel(t *testing.T) {
	plan := kernel.NewFaultPlan().WithLifecycleFault(kernel.CrashOnSend())
	k := kernel.NewWithFaultPlan(plan)

	handle, err := k.SpawnTask(kernel.NewTaskDescriptor("sender"))
	assert.NoError(t, err)
	cap := domain.NewCap(domain.CapId(1), domain.CapUntyped, domain.NewChannelId().String())
	assert.NoError(t, k.GrantCapability(handle.TaskId, cap))

	channelId := k.CreateChannelOp()
	msg := domain.NewMessageEnvelope(domain.NewServiceId(), "ping", domain.NewSchemaVersion(1, 0), domain.MessagePayload{SchemaId: "test", Bytes: []byte("x")})

	assert.NoError(t, k.SendMessage(channelId, msg, handle.ExecutionId))
	assert.False(t, k.IsCapabilityValid(cap.CapId, handle.TaskId))
}

func TestEndToEndSendAndRecvThroughGate(t *testing.T) {
	k := kernel.New()
	caller := domain.NewExecutionId()

	chanResult, err := k.Gate.Execute(k, caller, kernel.Syscall{Name: kernel.SyscallCreateChannel}, 0)
	assert.NoError(t, err)
	channelId := *chanResult.ChannelId

	msg := domain.NewMessageEnvelope(domain.NewServiceId(), "ping", domain.NewSchemaVersion(1, 0), domain.MessagePayload{SchemaId: "test", Bytes: []byte("x")})
	_, err = k.Gate.Execute(k, caller, kernel.Syscall{Name: kernel.SyscallSend, Channel: channelId, Message: msg}, 0)
	assert.NoError(t, err)

	recvResult, err := k.Gate.Execute(k, caller, kernel.Syscall{Name: kernel.SyscallRecv, Channel: channelId}, 0)
	assert.NoError(t, err)
	assert.Equal(t, "ping", recvResult.Message.Action)
}
