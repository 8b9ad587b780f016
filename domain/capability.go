package domain

// CapKind names the authority a capability grants over a storage
// object. Generic kernel objects (channels, services, address
// spaces...) use an untyped authority token instead (Cap[Untyped]).
type CapKind int

const (
	CapRead CapKind = iota
	CapWrite
	CapExecute
	CapDelete
	CapGrant
	CapOwn
	// CapUntyped marks a generic kernel-object authority token
	// (Cap<()> in the spec's notation) that carries no storage kind.
	CapUntyped
)

func (k CapKind) String() string {
	switch k {
	case CapRead:
		return "Read"
	case CapWrite:
		return "Write"
	case CapExecute:
		return "Execute"
	case CapDelete:
		return "Delete"
	case CapGrant:
		return "Grant"
	case CapOwn:
		return "Own"
	case CapUntyped:
		return "Untyped"
	default:
		return "Unknown"
	}
}

// Untyped is the payload type of a generic kernel-object capability
// (Cap<()> in the original notation) — a bare authority token with no
// associated storage-object kind.
type Untyped struct{}

// Cap is the quadruple (cap_id, object_of_authority, kind, holder)
// minus holder, which is tracked by the registry rather than the
// value itself — move semantics mean only the registry may say who
// currently holds a cap. Subject identifies the object of authority;
// for untyped kernel-object caps it is typically a stringified id.
type Cap struct {
	CapId   CapId
	Kind    CapKind
	Subject string
}

// NewCap constructs a capability value with an explicit id. Kernel
// managers that mint their own capabilities (address-space and
// memory-region caps) assign ids from a private counter instead; this
// constructor exists for callers — and tests — that need a
// capability value before handing it to Grant.
func NewCap(id CapId, kind CapKind, subject string) Cap {
	return Cap{CapId: id, Kind: kind, Subject: subject}
}

// NewUntypedCap builds a Cap<()> equivalent: an authority token with
// no storage-object kind, used for generic kernel objects.
func NewUntypedCap(id CapId) Cap {
	return Cap{CapId: id, Kind: CapUntyped, Subject: ""}
}
