// Package settings is the command-palette settings-overrides document
// (spec §6): a small per-user key/value override map, persisted as a
// single versioned JSON file. The UI that edits these overrides is out
// of scope (spec §1); this package owns the data type, the codec, and
// the load/merge/save cycle the original's settings layer wraps it in.
package settings

import (
	"sort"

	gojson "github.com/goccy/go-json"
	"github.com/spf13/afero"

	"github.com/armper/PandaGen-sub001/kernerr"
)

// CurrentVersion is the only schema version this package writes or
// accepts on load. A mismatch is a hard error (spec §8: "implementers
// should not attempt silent upgrade").
const CurrentVersion uint32 = 1

// Data is the wire shape of the settings-overrides document:
// {version, user_overrides: map<user, map<key, value>>}.
type Data struct {
	Version       uint32                            `json:"version"`
	UserOverrides map[string]map[string]interface{} `json:"user_overrides"`
}

func newData() Data {
	return Data{Version: CurrentVersion, UserOverrides: make(map[string]map[string]interface{})}
}

// Document is the in-memory, mutable handle produced by Load and
// consumed by SetOverride/Save.
type Document struct {
	fs   afero.Fs
	path string
	data Data
}

// Load reads path through fs, or starts a fresh CurrentVersion
// document if the file does not yet exist. A document at a different
// version is rejected with SchemaMismatch rather than migrated.
func Load(fs afero.Fs, path string) (*Document, error) {
	raw, err := afero.ReadFile(fs, path)
	if err != nil {
		if afero.IsNotExist(err) {
			return &Document{fs: fs, path: path, data: newData()}, nil
		}
		return nil, kernerr.New(kernerr.JournalIO, map[string]interface{}{"reason": err.Error()})
	}

	var data Data
	if err := gojson.Unmarshal(raw, &data); err != nil {
		return nil, kernerr.New(kernerr.JournalIO, map[string]interface{}{"reason": err.Error()})
	}
	if data.Version != CurrentVersion {
		return nil, kernerr.NewSchemaMismatch(CurrentVersion, data.Version)
	}
	if data.UserOverrides == nil {
		data.UserOverrides = make(map[string]map[string]interface{})
	}
	return &Document{fs: fs, path: path, data: data}, nil
}

// SetOverride records key=value for user, replacing any prior value.
func (d *Document) SetOverride(user, key string, value interface{}) {
	if d.data.UserOverrides[user] == nil {
		d.data.UserOverrides[user] = make(map[string]interface{})
	}
	d.data.UserOverrides[user][key] = value
}

// Override returns the stored value for user/key, if any.
func (d *Document) Override(user, key string) (interface{}, bool) {
	userMap, ok := d.data.UserOverrides[user]
	if !ok {
		return nil, false
	}
	value, ok := userMap[key]
	return value, ok
}

// Users returns every user with at least one override, sorted, for
// stable-ordered listing (spec §6).
func (d *Document) Users() []string {
	users := make([]string, 0, len(d.data.UserOverrides))
	for user := range d.data.UserOverrides {
		users = append(users, user)
	}
	sort.Strings(users)
	return users
}

// Save writes the document back to its path as CurrentVersion JSON.
// goccy/go-json sorts map keys on marshal, so the file's
// user_overrides keys come out stably ordered across saves.
func (d *Document) Save() error {
	d.data.Version = CurrentVersion
	encoded, err := gojson.MarshalIndent(d.data, "", "  ")
	if err != nil {
		return kernerr.New(kernerr.JournalIO, map[string]interface{}{"reason": err.Error()})
	}
	if err := afero.WriteFile(d.fs, d.path, encoded, 0o644); err != nil {
		return kernerr.New(kernerr.JournalIO, map[string]interface{}{"reason": err.Error()})
	}
	return nil
}
