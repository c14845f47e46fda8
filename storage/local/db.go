// Package localstore is the on-device record store: the authoritative
// side of every dual write. Collections live in one JSON document in
// the data dir, mirroring the layout the web client keeps in browser
// storage (users, students, adaptations, reports, currentSession).
package localstore

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sync"

	"github.com/pkg/errors"

	"github.com/incluso/backend/core/school"
	"github.com/incluso/backend/core/user"
)

const storeFile = "records.json"

type collections struct {
	Users       []user.User         `json:"users"`
	Credentials []user.Credential   `json:"credentials"`
	Students    []school.Student    `json:"students"`
	Adaptations []school.Adaptation `json:"adaptations"`
	Reports     []school.Report     `json:"reports"`
	Session     *user.Session       `json:"currentSession,omitempty"`
}

// DB guards the collections with a single RWMutex; every mutation is a
// full read-modify-write of the document. The system has one logical
// writer (the active session) so finer-grained locking buys nothing.
type DB struct {
	sync.RWMutex
	path string
	data collections
}

func Open(dataDir string) (*DB, error) {
	if err := os.MkdirAll(dataDir, 0o755); err != nil {
		return nil, errors.Wrap(err, "localstore: creating data dir")
	}

	db := &DB{path: filepath.Join(dataDir, storeFile)}
	raw, err := os.ReadFile(db.path)
	if os.IsNotExist(err) {
		return db, nil
	}
	if err != nil {
		return nil, errors.Wrap(err, "localstore: reading store")
	}
	if err := json.Unmarshal(raw, &db.data); err != nil {
		return nil, errors.Wrap(err, "localstore: store is corrupt")
	}
	return db, nil
}

// save persists the whole document; callers must hold the write lock.
func (db *DB) save() error {
	raw, err := json.MarshalIndent(db.data, "", "  ")
	if err != nil {
		return errors.Wrap(err, "localstore: encoding store")
	}
	tmp := db.path + ".tmp"
	if err := os.WriteFile(tmp, raw, 0o644); err != nil {
		return errors.Wrap(err, "localstore: writing store")
	}
	return errors.Wrap(os.Rename(tmp, db.path), "localstore: writing store")
}
