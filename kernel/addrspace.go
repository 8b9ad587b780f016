package kernel

import (
	"encoding/binary"

	iradix "github.com/hashicorp/go-immutable-radix"

	"github.com/armper/PandaGen-sub001/domain"
	"github.com/armper/PandaGen-sub001/kernerr"
)

// AddressSpaceEvent is the address-space manager's audit event (C11),
// ported from original_source/sim_kernel/src/address_space.rs.
type AddressSpaceEvent struct {
	Kind        string // SpaceCreated | SpaceActivated | SpaceDestroyed | RegionAllocated | RegionDeallocated | AccessAttempted
	SpaceId     domain.AddressSpaceId
	ExecutionId domain.ExecutionId
	RegionId    domain.MemoryRegionId
	SizeBytes   uint64
	Permissions domain.MemoryPerms
	AccessType  domain.MemoryAccessType
	Allowed     bool
	TimestampNs uint64
}

func (e AddressSpaceEvent) Timestamp() uint64 { return e.TimestampNs }

type spaceCapEntry struct {
	spaceId domain.AddressSpaceId
	owner   domain.ExecutionId
}

type regionCapEntry struct {
	regionId domain.MemoryRegionId
	spaceId  domain.AddressSpaceId
	owner    domain.ExecutionId
}

// regionSpan is the logical [offset, offset+size) range of an
// allocated region, tracked so AllocateRegion can reject overlaps.
type regionSpan struct {
	offset uint64
	size   uint64
}

// spaceEntry tracks one address space plus a radix index over its
// regions' logical byte offsets, used only to reject overlapping
// allocations — the simulation has no MMU, so this is bookkeeping
// rather than real page-table management.
type spaceEntry struct {
	space      *domain.AddressSpace
	byOffset   *iradix.Tree
	spans      map[domain.MemoryRegionId]regionSpan
	nextOffset uint64
}

func (e *regionSpan) overlaps(otherOffset, otherSize uint64) bool {
	return otherOffset < e.offset+e.size && e.offset < otherOffset+otherSize
}

// AddressSpaceManager is the kernel's C6 manager.
type AddressSpaceManager struct {
	clock *Clock

	spaces           map[domain.AddressSpaceId]*spaceEntry
	executionToSpace map[domain.ExecutionId]domain.AddressSpaceId
	nextCapId        uint64
	spaceCaps        map[domain.CapId]spaceCapEntry
	regionCaps       map[domain.CapId]regionCapEntry
	currentSpace     *domain.AddressSpaceId

	audit *AuditLog[AddressSpaceEvent]
}

func NewAddressSpaceManager(clock *Clock) *AddressSpaceManager {
	return &AddressSpaceManager{
		clock:            clock,
		spaces:           make(map[domain.AddressSpaceId]*spaceEntry),
		executionToSpace: make(map[domain.ExecutionId]domain.AddressSpaceId),
		nextCapId:        1,
		spaceCaps:        make(map[domain.CapId]spaceCapEntry),
		regionCaps:       make(map[domain.CapId]regionCapEntry),
		audit:            NewAuditLog[AddressSpaceEvent](),
	}
}

func (m *AddressSpaceManager) AuditLog() *AuditLog[AddressSpaceEvent] {
	return m.audit
}

func (m *AddressSpaceManager) allocCapId() domain.CapId {
	id := domain.CapId(m.nextCapId)
	m.nextCapId++
	return id
}

// CreateAddressSpace allocates a new space for execution and returns
// the capability binding the space-id and owner-exec together.
func (m *AddressSpaceManager) CreateAddressSpace(execution domain.ExecutionId) domain.AddressSpaceCap {
	space := domain.NewAddressSpace(execution)
	entry := &spaceEntry{space: space, byOffset: iradix.New(), spans: make(map[domain.MemoryRegionId]regionSpan)}
	m.spaces[space.SpaceId] = entry
	m.executionToSpace[execution] = space.SpaceId

	capId := m.allocCapId()
	m.spaceCaps[capId] = spaceCapEntry{spaceId: space.SpaceId, owner: execution}

	m.audit.Record(AddressSpaceEvent{
		Kind:        "SpaceCreated",
		SpaceId:     space.SpaceId,
		ExecutionId: execution,
		TimestampNs: m.clock.NowNanos(),
	})

	return domain.AddressSpaceCap{SpaceId: space.SpaceId, CapId: capId}
}

// AllocateRegion validates the space capability and appends region to
// the space at the next free logical offset (a bump allocator, which
// by construction cannot overlap an existing region), returning a
// MemoryRegionCap.
func (m *AddressSpaceManager) AllocateRegion(spaceCap domain.AddressSpaceCap, region domain.MemoryRegion, caller domain.ExecutionId) (domain.MemoryRegionCap, error) {
	entry, ok := m.spaces[spaceCap.SpaceId]
	if !ok {
		return domain.MemoryRegionCap{}, kernerr.NewAddressSpaceNotFound(spaceCap.SpaceId)
	}
	return m.allocateRegionAt(spaceCap, region, entry.nextOffset, caller)
}

// AllocateRegionAtOffset allocates region at an explicit logical
// offset, rejecting the request with RegionOverlap if it intersects
// any region already in the space. Exposed for callers (and tests)
// that need precise placement rather than bump allocation.
func (m *AddressSpaceManager) AllocateRegionAtOffset(spaceCap domain.AddressSpaceCap, region domain.MemoryRegion, offset uint64, caller domain.ExecutionId) (domain.MemoryRegionCap, error) {
	return m.allocateRegionAt(spaceCap, region, offset, caller)
}

func (m *AddressSpaceManager) allocateRegionAt(spaceCap domain.AddressSpaceCap, region domain.MemoryRegion, offset uint64, caller domain.ExecutionId) (domain.MemoryRegionCap, error) {
	capEntry, ok := m.spaceCaps[spaceCap.CapId]
	if !ok || capEntry.spaceId != spaceCap.SpaceId || capEntry.owner != caller {
		return domain.MemoryRegionCap{}, kernerr.NewAddressSpaceNotFound(spaceCap.SpaceId)
	}

	entry, ok := m.spaces[spaceCap.SpaceId]
	if !ok {
		return domain.MemoryRegionCap{}, kernerr.NewAddressSpaceNotFound(spaceCap.SpaceId)
	}

	for _, span := range entry.spans {
		if span.overlaps(offset, region.SizeBytes) {
			return domain.MemoryRegionCap{}, kernerr.NewRegionOverlap(spaceCap.SpaceId)
		}
	}

	key := offsetKey(offset)
	txn := entry.byOffset.Txn()
	txn.Insert(key, region.RegionId)
	entry.byOffset = txn.Commit()
	entry.spans[region.RegionId] = regionSpan{offset: offset, size: region.SizeBytes}
	if next := offset + region.SizeBytes; next > entry.nextOffset {
		entry.nextOffset = next
	}

	entry.space.Regions = append(entry.space.Regions, region)

	capId := m.allocCapId()
	m.regionCaps[capId] = regionCapEntry{regionId: region.RegionId, spaceId: spaceCap.SpaceId, owner: caller}

	m.audit.Record(AddressSpaceEvent{
		Kind:        "RegionAllocated",
		SpaceId:     spaceCap.SpaceId,
		RegionId:    region.RegionId,
		SizeBytes:   region.SizeBytes,
		Permissions: region.Permissions,
		TimestampNs: m.clock.NowNanos(),
	})

	return domain.MemoryRegionCap{SpaceId: spaceCap.SpaceId, RegionId: region.RegionId, CapId: capId}, nil
}

func offsetKey(offset uint64) []byte {
	buf := make([]byte, 8)
	binary.BigEndian.PutUint64(buf, offset)
	return buf
}

// AccessRegion validates capability ownership, then checks the
// region's permission bits. Logs the outcome whether allowed or denied.
func (m *AddressSpaceManager) AccessRegion(regionCap domain.MemoryRegionCap, access domain.MemoryAccessType, caller domain.ExecutionId) error {
	capEntry, ok := m.regionCaps[regionCap.CapId]
	if !ok {
		return kernerr.NewNoCapability(regionCap.RegionId)
	}
	if capEntry.regionId != regionCap.RegionId || capEntry.spaceId != regionCap.SpaceId {
		return kernerr.NewWrongObject(regionCap.CapId, capEntry.regionId, regionCap.RegionId)
	}
	if capEntry.owner != caller {
		return kernerr.NewNoCapability(regionCap.RegionId)
	}

	entry, ok := m.spaces[regionCap.SpaceId]
	if !ok {
		return kernerr.NewAddressSpaceNotFound(regionCap.SpaceId)
	}

	region := entry.space.FindRegion(regionCap.RegionId)
	if region == nil {
		return kernerr.NewRegionNotFound(regionCap.RegionId)
	}

	allowed := region.Permissions.Allows(access)

	m.audit.Record(AddressSpaceEvent{
		Kind:        "AccessAttempted",
		SpaceId:     regionCap.SpaceId,
		RegionId:    regionCap.RegionId,
		AccessType:  access,
		Allowed:     allowed,
		TimestampNs: m.clock.NowNanos(),
	})

	if !allowed {
		return kernerr.NewPermissionDenied(regionCap.RegionId, access.String(), region.Permissions)
	}
	return nil
}

// ActivateSpace performs a logical context switch: execution's space
// becomes the single current space.
func (m *AddressSpaceManager) ActivateSpace(execution domain.ExecutionId) error {
	spaceId, ok := m.executionToSpace[execution]
	if !ok {
		return kernerr.NewAddressSpaceNotFound(domain.AddressSpaceId{})
	}
	if m.currentSpace != nil {
		if prev, ok := m.spaces[*m.currentSpace]; ok {
			prev.space.IsCurrent = false
		}
	}
	m.currentSpace = &spaceId
	if entry, ok := m.spaces[spaceId]; ok {
		entry.space.IsCurrent = true
	}

	m.audit.Record(AddressSpaceEvent{
		Kind:        "SpaceActivated",
		SpaceId:     spaceId,
		ExecutionId: execution,
		TimestampNs: m.clock.NowNanos(),
	})
	return nil
}

func (m *AddressSpaceManager) CurrentSpace() (domain.AddressSpaceId, bool) {
	if m.currentSpace == nil {
		return domain.AddressSpaceId{}, false
	}
	return *m.currentSpace, true
}

func (m *AddressSpaceManager) SpaceForExecution(execution domain.ExecutionId) (*domain.AddressSpace, bool) {
	spaceId, ok := m.executionToSpace[execution]
	if !ok {
		return nil, false
	}
	entry, ok := m.spaces[spaceId]
	if !ok {
		return nil, false
	}
	return entry.space, true
}

// DestroyAddressSpace invalidates every space-and-region cap for
// execution's space and clears current if it was active.
func (m *AddressSpaceManager) DestroyAddressSpace(execution domain.ExecutionId) error {
	spaceId, ok := m.executionToSpace[execution]
	if !ok {
		return kernerr.NewAddressSpaceNotFound(domain.AddressSpaceId{})
	}
	delete(m.executionToSpace, execution)
	delete(m.spaces, spaceId)

	for capId, entry := range m.spaceCaps {
		if entry.spaceId == spaceId {
			delete(m.spaceCaps, capId)
		}
	}
	for capId, entry := range m.regionCaps {
		if entry.spaceId == spaceId {
			delete(m.regionCaps, capId)
		}
	}

	if m.currentSpace != nil && *m.currentSpace == spaceId {
		m.currentSpace = nil
	}

	m.audit.Record(AddressSpaceEvent{
		Kind:        "SpaceDestroyed",
		SpaceId:     spaceId,
		TimestampNs: m.clock.NowNanos(),
	})
	return nil
}
