// Package domain holds the core value types shared by every kernel
// manager: identifiers, the message envelope, capability tokens and
// the address-space/memory-region data model. Nothing in this package
// has behavior beyond constructors, stringers, small permission and
// lookup helpers, and the JSON payload encode/decode helpers — the
// managers that operate on these types live in package kernel.
package domain

import "github.com/google/uuid"

// TaskId identifies a logical unit of scheduling that holds capabilities.
type TaskId uuid.UUID

// ExecutionId identifies a logical execution context, owner of an
// address space and zero or more capabilities.
type ExecutionId uuid.UUID

// ServiceId identifies a process-wide discovery endpoint.
type ServiceId uuid.UUID

// ChannelId identifies a bounded FIFO delivery endpoint.
type ChannelId uuid.UUID

// ObjectId identifies a multi-version storage object.
type ObjectId uuid.UUID

// VersionId identifies a single immutable object version.
type VersionId uuid.UUID

// TransactionId identifies a storage transaction's staging scope.
type TransactionId uuid.UUID

// AddressSpaceId identifies a logical address space.
type AddressSpaceId uuid.UUID

// MemoryRegionId identifies a region within an address space.
type MemoryRegionId uuid.UUID

// ConsensusNodeId identifies a node within a consensus cluster.
type ConsensusNodeId uuid.UUID

// ViewId identifies a published view frame's identity across revisions.
type ViewId uuid.UUID

func NewTaskId() TaskId                 { return TaskId(uuid.New()) }
func NewExecutionId() ExecutionId       { return ExecutionId(uuid.New()) }
func NewServiceId() ServiceId           { return ServiceId(uuid.New()) }
func NewChannelId() ChannelId           { return ChannelId(uuid.New()) }
func NewObjectId() ObjectId             { return ObjectId(uuid.New()) }
func NewVersionId() VersionId           { return VersionId(uuid.New()) }
func NewTransactionId() TransactionId   { return TransactionId(uuid.New()) }
func NewAddressSpaceId() AddressSpaceId { return AddressSpaceId(uuid.New()) }
func NewMemoryRegionId() MemoryRegionId { return MemoryRegionId(uuid.New()) }
func NewConsensusNodeId() ConsensusNodeId {
	return ConsensusNodeId(uuid.New())
}
func NewViewId() ViewId { return ViewId(uuid.New()) }

func (id TaskId) String() string           { return uuid.UUID(id).String() }
func (id ExecutionId) String() string      { return uuid.UUID(id).String() }
func (id ServiceId) String() string        { return uuid.UUID(id).String() }
func (id ChannelId) String() string        { return uuid.UUID(id).String() }
func (id ObjectId) String() string         { return uuid.UUID(id).String() }
func (id VersionId) String() string        { return uuid.UUID(id).String() }
func (id TransactionId) String() string    { return uuid.UUID(id).String() }
func (id AddressSpaceId) String() string   { return uuid.UUID(id).String() }
func (id MemoryRegionId) String() string   { return uuid.UUID(id).String() }
func (id ConsensusNodeId) String() string  { return uuid.UUID(id).String() }
func (id ViewId) String() string           { return uuid.UUID(id).String() }

// CapId is a 64-bit authority token id, monotonically assigned within
// a single Kernel instance. Assignment is owned by the registry that
// issues it; callers of the Cap constructors (NewCap) may also pick
// an explicit id (mirroring the original simulation's test harness,
// which grants capabilities with caller-chosen ids for determinism).
type CapId uint64
