package storage

import (
	"bufio"
	"encoding/binary"
	"io"
	"os"

	gojson "github.com/goccy/go-json"
	"github.com/gofrs/flock"
	"github.com/spf13/afero"

	"github.com/armper/PandaGen-sub001/domain"
	"github.com/armper/PandaGen-sub001/kernerr"
)

func osAppendFlags() int {
	return os.O_APPEND | os.O_CREATE | os.O_WRONLY
}

// JournalEntryKind distinguishes the two record shapes append-only
// journal entries may take (spec §6: "record := Write{...} | Commit{tx}").
type JournalEntryKind string

const (
	JournalWrite  JournalEntryKind = "Write"
	JournalCommit JournalEntryKind = "Commit"
)

// JournalEntry is one append-only journal record.
type JournalEntry struct {
	Kind      JournalEntryKind `json:"kind"`
	TxId      domain.TransactionId `json:"tx_id"`
	ObjectId  domain.ObjectId      `json:"object_id,omitempty"`
	VersionId domain.VersionId     `json:"version_id,omitempty"`
	Data      []byte               `json:"data,omitempty"`
}

// Journal is an append-only, length-prefixed record stream (spec §6).
// Writes go through an afero.Fs so tests can swap in an in-memory
// filesystem; concurrent writers across processes are serialized with
// a gofrs/flock advisory lock on a sibling file, path + ".lock", which
// flock always takes on the host filesystem rather than through the
// afero.Fs.
type Journal struct {
	fs   afero.Fs
	path string
}

func NewJournal(fs afero.Fs, path string) *Journal {
	return &Journal{fs: fs, path: path}
}

// Append writes one length-prefixed record to the journal, under an
// exclusive advisory lock so concurrent kernel instances (or a test
// and its recovery pass) never interleave partial writes.
func (j *Journal) Append(entry JournalEntry) error {
	lock := flock.New(j.path + ".lock")
	if err := lock.Lock(); err != nil {
		return kernerr.New(kernerr.JournalIO, map[string]interface{}{"reason": err.Error()})
	}
	defer lock.Unlock()

	f, err := j.fs.OpenFile(j.path, osAppendFlags(), 0o644)
	if err != nil {
		return kernerr.New(kernerr.JournalIO, map[string]interface{}{"reason": err.Error()})
	}
	defer f.Close()

	encoded, err := gojson.Marshal(entry)
	if err != nil {
		return kernerr.New(kernerr.JournalIO, map[string]interface{}{"reason": err.Error()})
	}

	var lenPrefix [4]byte
	binary.BigEndian.PutUint32(lenPrefix[:], uint32(len(encoded)))

	if _, err := f.Write(lenPrefix[:]); err != nil {
		return kernerr.New(kernerr.JournalIO, map[string]interface{}{"reason": err.Error()})
	}
	if _, err := f.Write(encoded); err != nil {
		return kernerr.New(kernerr.JournalIO, map[string]interface{}{"reason": err.Error()})
	}
	return nil
}

// ReadAll performs the single forward scan that rebuilds the version
// store (spec §6). A stream truncated mid-record (a torn write from a
// simulated crash) stops cleanly at the last complete record rather
// than erroring.
func (j *Journal) ReadAll() ([]JournalEntry, error) {
	f, err := j.fs.Open(j.path)
	if err != nil {
		if isNotExist(err) {
			return nil, nil
		}
		return nil, kernerr.New(kernerr.JournalIO, map[string]interface{}{"reason": err.Error()})
	}
	defer f.Close()

	reader := bufio.NewReader(f)
	var entries []JournalEntry
	for {
		var lenPrefix [4]byte
		if _, err := io.ReadFull(reader, lenPrefix[:]); err != nil {
			if err == io.EOF || err == io.ErrUnexpectedEOF {
				break
			}
			return nil, kernerr.New(kernerr.JournalIO, map[string]interface{}{"reason": err.Error()})
		}
		recordLen := binary.BigEndian.Uint32(lenPrefix[:])
		buf := make([]byte, recordLen)
		if _, err := io.ReadFull(reader, buf); err != nil {
			if err == io.EOF || err == io.ErrUnexpectedEOF {
				break
			}
			return nil, kernerr.New(kernerr.JournalIO, map[string]interface{}{"reason": err.Error()})
		}
		var entry JournalEntry
		if err := gojson.Unmarshal(buf, &entry); err != nil {
			return nil, kernerr.New(kernerr.JournalIO, map[string]interface{}{"reason": err.Error()})
		}
		entries = append(entries, entry)
	}
	return entries, nil
}

func isNotExist(err error) bool {
	return err != nil && afero.IsNotExist(err)
}
