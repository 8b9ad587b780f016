package domain

import gojson "github.com/goccy/go-json"

// NewJSONPayload encodes v as the payload bytes under the given
// schema id/version. The fabric treats the result as opaque; only
// consumers that know (schemaId, version) decode it back.
func NewJSONPayload(schemaId string, version SchemaVersion, v interface{}) (MessagePayload, error) {
	bytes, err := gojson.Marshal(v)
	if err != nil {
		return MessagePayload{}, err
	}
	return MessagePayload{SchemaId: schemaId, Version: version, Bytes: bytes}, nil
}

// DecodeJSONPayload decodes a payload produced by NewJSONPayload into
// v. Callers are expected to have already checked SchemaId/Version.
func DecodeJSONPayload(payload MessagePayload, v interface{}) error {
	return gojson.Unmarshal(payload.Bytes, v)
}
