package storage

import (
	"github.com/armper/PandaGen-sub001/domain"
	"github.com/armper/PandaGen-sub001/kernerr"
)

type versionEntry struct {
	versionId domain.VersionId
	data      []byte
}

type pendingWrite struct {
	objectId  domain.ObjectId
	versionId domain.VersionId
	data      []byte
}

// JournaledStorage is the kernel's C9 engine: per-object version
// lists, an append-only journal, and per-transaction staged writes.
// Ported from original_source/services_storage/src/journaled_storage.rs.
type JournaledStorage struct {
	journal *Journal
	snap    *Snapshotter

	objects map[domain.ObjectId][]versionEntry
	pending map[domain.TransactionId][]pendingWrite
}

func NewJournaledStorage(journal *Journal) *JournaledStorage {
	return &JournaledStorage{
		journal: journal,
		objects: make(map[domain.ObjectId][]versionEntry),
		pending: make(map[domain.TransactionId][]pendingWrite),
	}
}

// UseSnapshotter attaches a durable side-table that mirrors every
// commit's newest object versions. Optional: storage works without
// one, just slower to warm up after a restart.
func (s *JournaledStorage) UseSnapshotter(snap *Snapshotter) {
	s.snap = snap
}

func (s *JournaledStorage) BeginTransaction() *Transaction {
	return NewTransaction()
}

// Read returns the VersionId a transaction currently observes for
// object_id: its own staged write if any (newest first within the
// tx), else the latest committed version.
func (s *JournaledStorage) Read(tx *Transaction, objectId domain.ObjectId) (domain.VersionId, error) {
	if !tx.IsActive() {
		return domain.VersionId{}, kernerr.NewAlreadyFinalized(tx.Id())
	}
	if pending, ok := s.pending[tx.Id()]; ok {
		for i := len(pending) - 1; i >= 0; i-- {
			if pending[i].objectId == objectId {
				return pending[i].versionId, nil
			}
		}
	}
	versions, ok := s.objects[objectId]
	if !ok || len(versions) == 0 {
		versionId, _, found, err := s.snapshotFallback(objectId)
		if err != nil {
			return domain.VersionId{}, err
		}
		if found {
			return versionId, nil
		}
		return domain.VersionId{}, kernerr.NewObjectNotFound(objectId)
	}
	return versions[len(versions)-1].versionId, nil
}

// ReadData is Read's byte-payload counterpart.
func (s *JournaledStorage) ReadData(tx *Transaction, objectId domain.ObjectId) ([]byte, error) {
	if !tx.IsActive() {
		return nil, kernerr.NewAlreadyFinalized(tx.Id())
	}
	if pending, ok := s.pending[tx.Id()]; ok {
		for i := len(pending) - 1; i >= 0; i-- {
			if pending[i].objectId == objectId {
				return pending[i].data, nil
			}
		}
	}
	versions, ok := s.objects[objectId]
	if !ok || len(versions) == 0 {
		_, data, found, err := s.snapshotFallback(objectId)
		if err != nil {
			return nil, err
		}
		if found {
			return data, nil
		}
		return nil, kernerr.NewObjectNotFound(objectId)
	}
	return versions[len(versions)-1].data, nil
}

// snapshotFallback serves objectId straight out of the durable
// snapshot side-table when it isn't already warm in memory — one
// bbolt lookup instead of requiring a full Recover/journal replay
// first. The result is cached into s.objects so a repeat read doesn't
// pay the lookup twice.
func (s *JournaledStorage) snapshotFallback(objectId domain.ObjectId) (domain.VersionId, []byte, bool, error) {
	if s.snap == nil {
		return domain.VersionId{}, nil, false, nil
	}
	versionId, data, found, err := s.snap.Get(objectId)
	if err != nil || !found {
		return domain.VersionId{}, nil, false, err
	}
	s.objects[objectId] = []versionEntry{{versionId: versionId, data: data}}
	return versionId, data, true, nil
}

// Write stages a write under tx and appends a Write record to the
// journal before staging, per the journal protocol in spec §4.8.
func (s *JournaledStorage) Write(tx *Transaction, objectId domain.ObjectId, data []byte) (domain.VersionId, error) {
	if !tx.IsActive() {
		return domain.VersionId{}, kernerr.NewAlreadyFinalized(tx.Id())
	}

	versionId := domain.NewVersionId()
	write := pendingWrite{objectId: objectId, versionId: versionId, data: append([]byte(nil), data...)}

	if err := s.journal.Append(JournalEntry{
		Kind:      JournalWrite,
		TxId:      tx.Id(),
		ObjectId:  objectId,
		VersionId: versionId,
		Data:      write.data,
	}); err != nil {
		return domain.VersionId{}, err
	}

	s.pending[tx.Id()] = append(s.pending[tx.Id()], write)
	return versionId, nil
}

// Commit appends a Commit record then promotes tx's pending writes to
// their objects' version lists.
func (s *JournaledStorage) Commit(tx *Transaction) error {
	if !tx.IsActive() {
		return kernerr.NewAlreadyFinalized(tx.Id())
	}

	if err := s.journal.Append(JournalEntry{Kind: JournalCommit, TxId: tx.Id()}); err != nil {
		return err
	}

	if pending, ok := s.pending[tx.Id()]; ok {
		for _, w := range pending {
			s.objects[w.objectId] = append(s.objects[w.objectId], versionEntry{versionId: w.versionId, data: w.data})
			if s.snap != nil {
				if err := s.snap.Put(w.objectId, w.versionId, w.data); err != nil {
					return err
				}
			}
		}
		delete(s.pending, tx.Id())
	}

	tx.state = Committed
	return nil
}

// Rollback discards pending writes without touching the journal — the
// absence of a matching Commit is the rollback signal on recovery.
func (s *JournaledStorage) Rollback(tx *Transaction) error {
	if !tx.IsActive() {
		return kernerr.NewAlreadyFinalized(tx.Id())
	}
	delete(s.pending, tx.Id())
	tx.state = RolledBack
	return nil
}

// Recover rebuilds the version store from a single forward read of the
// journal: it collects the ids of transactions whose Commit appears,
// then replays only those transactions' Write records, in journal
// order. Objects the replay never touched are then seeded from the
// snapshot side-table, when one is attached.
func (s *JournaledStorage) Recover() error {
	entries, err := s.journal.ReadAll()
	if err != nil {
		return err
	}

	s.objects = make(map[domain.ObjectId][]versionEntry)
	s.pending = make(map[domain.TransactionId][]pendingWrite)

	committed := make(map[domain.TransactionId]bool)
	for _, entry := range entries {
		if entry.Kind == JournalCommit {
			committed[entry.TxId] = true
		}
	}

	// Second pass: replay Write entries in journal order, keeping only
	// the ones whose transaction eventually committed. Writes without
	// a matching commit (an aborted or crashed transaction) are dropped.
	for _, entry := range entries {
		if entry.Kind != JournalWrite || !committed[entry.TxId] {
			continue
		}
		s.objects[entry.ObjectId] = append(s.objects[entry.ObjectId], versionEntry{versionId: entry.VersionId, data: entry.Data})
	}

	// The journal may have been rotated or pruned ahead of an object's
	// full write history (or never have held it at all, on a fresh
	// process pointed at an existing snapshot file): anything the
	// replay above never touched can still be served from the durable
	// snapshot side-table rather than left missing.
	if s.snap != nil {
		snapshot, err := s.snap.All()
		if err != nil {
			return err
		}
		for objectId, record := range snapshot {
			if _, ok := s.objects[objectId]; ok {
				continue
			}
			s.objects[objectId] = []versionEntry{{versionId: record.VersionId, data: record.Data}}
		}
	}
	return nil
}
