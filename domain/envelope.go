package domain

// SchemaVersion is a (major, minor) pair carried by every message
// envelope and every migratable storage object.
type SchemaVersion struct {
	Major uint32
	Minor uint32
}

func NewSchemaVersion(major, minor uint32) SchemaVersion {
	return SchemaVersion{Major: major, Minor: minor}
}

// MessagePayload is a self-describing opaque blob. The fabric never
// interprets Bytes; consumers parse by (SchemaId, Version).
type MessagePayload struct {
	SchemaId string
	Version  SchemaVersion
	Bytes    []byte
}

// MessageEnvelope is the wire format for IPC and for persistence of
// snapshots: (service_id, action, schema, payload).
type MessageEnvelope struct {
	ServiceId ServiceId
	Action    string
	Schema    SchemaVersion
	Payload   MessagePayload
}

func NewMessageEnvelope(serviceId ServiceId, action string, schema SchemaVersion, payload MessagePayload) MessageEnvelope {
	return MessageEnvelope{
		ServiceId: serviceId,
		Action:    action,
		Schema:    schema,
		Payload:   payload,
	}
}
