package domain

// MemoryAccessType names one of the three access modes checked against
// a region's permission bits.
type MemoryAccessType int

const (
	AccessRead MemoryAccessType = iota
	AccessWrite
	AccessExecute
)

func (a MemoryAccessType) String() string {
	switch a {
	case AccessRead:
		return "Read"
	case AccessWrite:
		return "Write"
	case AccessExecute:
		return "Execute"
	default:
		return "Unknown"
	}
}

// MemoryPerms is the {R?, W?, X?} permission set carried by a region.
type MemoryPerms struct {
	Read    bool
	Write   bool
	Execute bool
}

func ReadOnlyPerms() MemoryPerms  { return MemoryPerms{Read: true} }
func ReadWritePerms() MemoryPerms { return MemoryPerms{Read: true, Write: true} }
func ReadExecPerms() MemoryPerms  { return MemoryPerms{Read: true, Execute: true} }

func (p MemoryPerms) Allows(access MemoryAccessType) bool {
	switch access {
	case AccessRead:
		return p.Read
	case AccessWrite:
		return p.Write
	case AccessExecute:
		return p.Execute
	default:
		return false
	}
}

// MemoryBackingKind distinguishes how a region's bytes are backed.
type MemoryBackingKind int

const (
	BackingAnonymous MemoryBackingKind = iota
	BackingFile
	BackingShared
)

// MemoryBacking names the storage behind a region. ObjectId is only
// meaningful when Kind is BackingFile.
type MemoryBacking struct {
	Kind   MemoryBackingKind
	Object ObjectId
}

func AnonymousBacking() MemoryBacking { return MemoryBacking{Kind: BackingAnonymous} }
func SharedBacking() MemoryBacking    { return MemoryBacking{Kind: BackingShared} }
func FileBacking(object ObjectId) MemoryBacking {
	return MemoryBacking{Kind: BackingFile, Object: object}
}

// MemoryRegion is a non-overlapping span within an address space.
type MemoryRegion struct {
	RegionId    MemoryRegionId
	SizeBytes   uint64
	Permissions MemoryPerms
	Backing     MemoryBacking
}

func NewMemoryRegion(sizeBytes uint64, perms MemoryPerms, backing MemoryBacking) MemoryRegion {
	return MemoryRegion{
		RegionId:    NewMemoryRegionId(),
		SizeBytes:   sizeBytes,
		Permissions: perms,
		Backing:     backing,
	}
}

func (r MemoryRegion) CanRead() bool    { return r.Permissions.Read }
func (r MemoryRegion) CanWrite() bool   { return r.Permissions.Write }
func (r MemoryRegion) CanExecute() bool { return r.Permissions.Execute }

// AddressSpaceCap names a space and the cap id under which the
// address-space manager recorded the space's owning execution; the
// manager validates a later operation by looking that cap id up in its
// own table, since the value itself does not carry the owner.
type AddressSpaceCap struct {
	SpaceId AddressSpaceId
	CapId   CapId
}

// MemoryRegionCap grants access to one region within one space.
type MemoryRegionCap struct {
	SpaceId  AddressSpaceId
	RegionId MemoryRegionId
	CapId    CapId
}

// AddressSpace is the logical per-execution memory context: a set of
// non-overlapping regions plus whether it is the currently-active space.
type AddressSpace struct {
	SpaceId        AddressSpaceId
	OwnerExecution ExecutionId
	Regions        []MemoryRegion
	IsCurrent      bool
}

func NewAddressSpace(owner ExecutionId) *AddressSpace {
	return &AddressSpace{
		SpaceId:        NewAddressSpaceId(),
		OwnerExecution: owner,
	}
}

func (s *AddressSpace) FindRegion(id MemoryRegionId) *MemoryRegion {
	for i := range s.Regions {
		if s.Regions[i].RegionId == id {
			return &s.Regions[i]
		}
	}
	return nil
}
