package storage_test

import (
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"

	"github.com/armper/PandaGen-sub001/domain"
	"github.com/armper/PandaGen-sub001/kernerr"
	"github.com/armper/PandaGen-sub001/storage"
)

func newMemFs() afero.Fs {
	return afero.NewMemMapFs()
}

func newEngine(fs afero.Fs) *storage.JournaledStorage {
	return storage.NewJournaledStorage(storage.NewJournal(fs, "/journal.log"))
}

func TestWriteThenCommitMakesVersionReadable(t *testing.T) {
	engine := newEngine(newMemFs())
	objectId := domain.NewObjectId()

	tx := engine.BeginTransaction()
	versionId, err := engine.Write(tx, objectId, []byte("hello"))
	assert.NoError(t, err)
	assert.NoError(t, engine.Commit(tx))

	reader := engine.BeginTransaction()
	got, err := engine.Read(reader, objectId)
	assert.NoError(t, err)
	assert.Equal(t, versionId, got)

	data, err := engine.ReadData(reader, objectId)
	assert.NoError(t, err)
	assert.Equal(t, []byte("hello"), data)
}

func TestRollbackDiscardsPendingWrites(t *testing.T) {
	engine := newEngine(newMemFs())
	objectId := domain.NewObjectId()

	tx := engine.BeginTransaction()
	_, err := engine.Write(tx, objectId, []byte("discarded"))
	assert.NoError(t, err)
	assert.NoError(t, engine.Rollback(tx))

	_, err = engine.Read(engine.BeginTransaction(), objectId)
	assert.True(t, kernerr.Is(err, kernerr.ObjectNotFound))
}

func TestOperationsOnFinalizedTransactionFail(t *testing.T) {
	engine := newEngine(newMemFs())
	tx := engine.BeginTransaction()
	assert.NoError(t, engine.Commit(tx))

	_, err := engine.Write(tx, domain.NewObjectId(), []byte("x"))
	assert.True(t, kernerr.Is(err, kernerr.AlreadyFinalized))

	err = engine.Commit(tx)
	assert.True(t, kernerr.Is(err, kernerr.AlreadyFinalized))
}

func TestReadSeesOwnPendingWriteBeforeCommit(t *testing.T) {
	engine := newEngine(newMemFs())
	objectId := domain.NewObjectId()

	committerTx := engine.BeginTransaction()
	_, err := engine.Write(committerTx, objectId, []byte("committed"))
	assert.NoError(t, err)
	assert.NoError(t, engine.Commit(committerTx))

	readerTx := engine.BeginTransaction()
	staged, err := engine.Write(readerTx, objectId, []byte("staged"))
	assert.NoError(t, err)

	got, err := engine.Read(readerTx, objectId)
	assert.NoError(t, err)
	assert.Equal(t, staged, got)
}

func TestRecoverReplaysOnlyCommittedWritesInJournalOrder(t *testing.T) {
	fs := newMemFs()
	engine := newEngine(fs)

	objA := domain.NewObjectId()
	objB := domain.NewObjectId()

	txCommitted := engine.BeginTransaction()
	v1, err := engine.Write(txCommitted, objA, []byte("a1"))
	assert.NoError(t, err)

	txAborted := engine.BeginTransaction()
	_, err = engine.Write(txAborted, objB, []byte("b1-never-committed"))
	assert.NoError(t, err)

	v2, err := engine.Write(txCommitted, objA, []byte("a2"))
	assert.NoError(t, err)
	assert.NoError(t, engine.Commit(txCommitted))
	// txAborted is simply abandoned: no Commit record ever reaches the
	// journal for it, so recovery must drop its writes entirely.

	recovered := newEngine(fs)
	assert.NoError(t, recovered.Recover())

	tx := recovered.BeginTransaction()
	gotVersion, err := recovered.Read(tx, objA)
	assert.NoError(t, err)
	assert.Equal(t, v2, gotVersion)
	assert.NotEqual(t, v1, gotVersion)

	_, err = recovered.Read(tx, objB)
	assert.True(t, kernerr.Is(err, kernerr.ObjectNotFound))
}

func TestRecoverToleratesTruncatedTrailingRecord(t *testing.T) {
	fs := newMemFs()
	engine := newEngine(fs)

	objectId := domain.NewObjectId()
	tx := engine.BeginTransaction()
	_, err := engine.Write(tx, objectId, []byte("whole"))
	assert.NoError(t, err)
	assert.NoError(t, engine.Commit(tx))

	raw, err := afero.ReadFile(fs, "/journal.log")
	assert.NoError(t, err)
	assert.NoError(t, afero.WriteFile(fs, "/journal.log", append(raw, 0x00, 0x00, 0x00, 0x7f), 0o644))

	recovered := newEngine(fs)
	assert.NoError(t, recovered.Recover())

	tx2 := recovered.BeginTransaction()
	_, err = recovered.Read(tx2, objectId)
	assert.NoError(t, err)
}
