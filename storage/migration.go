package storage

import "github.com/armper/PandaGen-sub001/kernerr"

// SchemaVersion is a 1-based object schema version: v1, v2, v3, ...
type SchemaVersion uint32

// MigrationFunc transforms an object's raw bytes from one schema
// version to the immediate next version. Must be deterministic and
// pure — no I/O, no global state.
type MigrationFunc func(data []byte) ([]byte, error)

// SequentialMigrator applies a chain of single-step migrations,
// ported from original_source/services_storage/src/migration.rs.
// migrations[0] is v1->v2, migrations[1] is v2->v3, and so on.
type SequentialMigrator struct {
	migrations []MigrationFunc
}

func NewSequentialMigrator() *SequentialMigrator {
	return &SequentialMigrator{}
}

// AddMigration appends the next step in the chain. Must be added in
// order: 1->2, then 2->3, then 3->4.
func (m *SequentialMigrator) AddMigration(f MigrationFunc) *SequentialMigrator {
	m.migrations = append(m.migrations, f)
	return m
}

// SupportsMigration reports whether from->to is a forward (or
// no-op) path this migrator can execute.
func (m *SequentialMigrator) SupportsMigration(from, to SchemaVersion) bool {
	if from == to {
		return true
	}
	if from > to {
		return false
	}
	fromIdx := int(from)
	toIdx := int(to)
	return fromIdx > 0 && toIdx <= len(m.migrations)+1
}

// Migrate transforms data from schema version `from` to `to`,
// rejecting downgrades and missing intermediate steps with
// UnsupportedMigration.
func (m *SequentialMigrator) Migrate(from, to SchemaVersion, data []byte) ([]byte, error) {
	if from == to {
		out := make([]byte, len(data))
		copy(out, data)
		return out, nil
	}
	if from > to {
		return nil, kernerr.NewUnsupportedMigration(from, to)
	}

	fromIdx := int(from)
	toIdx := int(to)
	const minVersionIdx = 1
	if fromIdx < minVersionIdx || toIdx > len(m.migrations)+1 {
		return nil, kernerr.NewUnsupportedMigration(from, to)
	}

	current := make([]byte, len(data))
	copy(current, data)
	for i := fromIdx - 1; i < toIdx-1; i++ {
		if i >= len(m.migrations) {
			return nil, kernerr.NewUnsupportedMigration(from, to)
		}
		migrated, err := m.migrations[i](current)
		if err != nil {
			return nil, err
		}
		current = migrated
	}
	return current, nil
}

// MigrationLineage records that an object's data moved from one
// schema version to another, for audit/debugging purposes.
type MigrationLineage struct {
	From        SchemaVersion
	To          SchemaVersion
	TimestampNs uint64
}

func NewMigrationLineage(from, to SchemaVersion, timestampNs uint64) MigrationLineage {
	return MigrationLineage{From: from, To: to, TimestampNs: timestampNs}
}
