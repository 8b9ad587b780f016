package storage_test

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/armper/PandaGen-sub001/domain"
	"github.com/armper/PandaGen-sub001/storage"
)

func TestSnapshotterPutGetRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "snap.db")
	snap, err := storage.OpenSnapshotter(path)
	assert.NoError(t, err)
	defer snap.Close()

	objectId := domain.NewObjectId()
	versionId := domain.NewVersionId()
	assert.NoError(t, snap.Put(objectId, versionId, []byte("payload")))

	gotVersion, gotData, found, err := snap.Get(objectId)
	assert.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, versionId, gotVersion)
	assert.Equal(t, []byte("payload"), gotData)
}

func TestSnapshotterGetMissingObject(t *testing.T) {
	path := filepath.Join(t.TempDir(), "snap.db")
	snap, err := storage.OpenSnapshotter(path)
	assert.NoError(t, err)
	defer snap.Close()

	_, _, found, err := snap.Get(domain.NewObjectId())
	assert.NoError(t, err)
	assert.False(t, found)
}

func TestJournaledStorageMirrorsCommitsToSnapshotter(t *testing.T) {
	fs := newMemFs()
	journal := storage.NewJournal(fs, "/journal.log")
	engine := storage.NewJournaledStorage(journal)

	snapPath := filepath.Join(t.TempDir(), "snap.db")
	snap, err := storage.OpenSnapshotter(snapPath)
	assert.NoError(t, err)
	defer snap.Close()
	engine.UseSnapshotter(snap)

	tx := engine.BeginTransaction()
	objectId := domain.NewObjectId()
	versionId, err := engine.Write(tx, objectId, []byte("v1"))
	assert.NoError(t, err)
	assert.NoError(t, engine.Commit(tx))

	gotVersion, gotData, found, err := snap.Get(objectId)
	assert.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, versionId, gotVersion)
	assert.Equal(t, []byte("v1"), gotData)
}
