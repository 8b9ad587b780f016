package storage

import (
	"time"

	gojson "github.com/goccy/go-json"
	bolt "go.etcd.io/bbolt"

	"github.com/armper/PandaGen-sub001/domain"
	"github.com/armper/PandaGen-sub001/kernerr"
)

var snapshotBucketName = []byte("objects")

const snapshotOpenTimeout = 100 * time.Millisecond

// snapshotRecord is the bucket value: the latest committed version for
// an object, so a restart can serve it even when the journal no longer
// holds its write history.
type snapshotRecord struct {
	VersionId domain.VersionId `json:"version_id"`
	Data      []byte           `json:"data"`
}

// Snapshotter is a durable side-table of latest-committed-version
// snapshots sitting behind the write-ahead journal: a committed
// object's newest version is mirrored here so a read can serve it
// before any Recover, and Recover can restore objects its journal
// replay did not touch (Recover still scans the whole journal), the way the teacher's ingest
// cache mirrors hot blocks to a bolt-backed store.
type Snapshotter struct {
	db *bolt.DB
}

// OpenSnapshotter opens (creating if absent) a bbolt file at path and
// ensures its single bucket exists.
func OpenSnapshotter(path string) (*Snapshotter, error) {
	db, err := bolt.Open(path, 0o644, &bolt.Options{Timeout: snapshotOpenTimeout})
	if err != nil {
		return nil, kernerr.New(kernerr.JournalIO, map[string]interface{}{"reason": err.Error()})
	}
	if err := db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(snapshotBucketName)
		return err
	}); err != nil {
		db.Close()
		return nil, kernerr.New(kernerr.JournalIO, map[string]interface{}{"reason": err.Error()})
	}
	return &Snapshotter{db: db}, nil
}

func (s *Snapshotter) Close() error {
	return s.db.Close()
}

// Put mirrors objectId's newest committed version into the side-table,
// overwriting whatever snapshot it held before.
func (s *Snapshotter) Put(objectId domain.ObjectId, versionId domain.VersionId, data []byte) error {
	encoded, err := gojson.Marshal(snapshotRecord{VersionId: versionId, Data: data})
	if err != nil {
		return kernerr.New(kernerr.JournalIO, map[string]interface{}{"reason": err.Error()})
	}
	key := objectKey(objectId)
	if err := s.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(snapshotBucketName).Put(key, encoded)
	}); err != nil {
		return kernerr.New(kernerr.JournalIO, map[string]interface{}{"reason": err.Error()})
	}
	return nil
}

// Get returns the snapshotted version+data for objectId, if any.
func (s *Snapshotter) Get(objectId domain.ObjectId) (domain.VersionId, []byte, bool, error) {
	key := objectKey(objectId)
	var record snapshotRecord
	var found bool
	if err := s.db.View(func(tx *bolt.Tx) error {
		raw := tx.Bucket(snapshotBucketName).Get(key)
		if raw == nil {
			return nil
		}
		found = true
		return gojson.Unmarshal(append([]byte(nil), raw...), &record)
	}); err != nil {
		return domain.VersionId{}, nil, false, kernerr.New(kernerr.JournalIO, map[string]interface{}{"reason": err.Error()})
	}
	if !found {
		return domain.VersionId{}, nil, false, nil
	}
	return record.VersionId, record.Data, true, nil
}

// All returns every snapshotted object, for a full-table seed of
// JournaledStorage.objects ahead of a journal replay.
func (s *Snapshotter) All() (map[domain.ObjectId]snapshotRecord, error) {
	out := make(map[domain.ObjectId]snapshotRecord)
	if err := s.db.View(func(tx *bolt.Tx) error {
		return tx.Bucket(snapshotBucketName).ForEach(func(k, v []byte) error {
			objectId, err := objectIdFromKey(k)
			if err != nil {
				return nil
			}
			var record snapshotRecord
			if err := gojson.Unmarshal(append([]byte(nil), v...), &record); err != nil {
				return nil
			}
			out[objectId] = record
			return nil
		})
	}); err != nil {
		return nil, kernerr.New(kernerr.JournalIO, map[string]interface{}{"reason": err.Error()})
	}
	return out, nil
}

func objectKey(objectId domain.ObjectId) []byte {
	return append([]byte(nil), objectId[:]...)
}

func objectIdFromKey(k []byte) (domain.ObjectId, error) {
	var objectId domain.ObjectId
	if len(k) != len(objectId) {
		return domain.ObjectId{}, kernerr.New(kernerr.JournalIO, map[string]interface{}{"reason": "malformed snapshot key"})
	}
	copy(objectId[:], k)
	return objectId, nil
}
