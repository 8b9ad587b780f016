package kernel

import "github.com/armper/PandaGen-sub001/domain"

// TaskDescriptor is the caller-supplied record describing a task to spawn.
type TaskDescriptor struct {
	Name string
}

func NewTaskDescriptor(name string) TaskDescriptor {
	return TaskDescriptor{Name: name}
}

// TaskHandle is returned from SpawnTask: the new task's id plus the
// execution context it runs in.
type TaskHandle struct {
	TaskId      domain.TaskId
	ExecutionId domain.ExecutionId
}

type taskRecord struct {
	taskId      domain.TaskId
	executionId domain.ExecutionId
	descriptor  TaskDescriptor
	alive       bool
}
