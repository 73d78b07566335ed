package credentials

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/tidwall/jsonc"

	fbxerrors "github.com/maksimkurb/fbx-go/src/internal/errors"
	"github.com/maksimkurb/fbx-go/src/internal/log"
	"github.com/maksimkurb/fbx-go/src/internal/utils"
)

const fileMode os.FileMode = 0o600

// FileStore keeps the record in a JSON file.
type FileStore struct {
	path string
	mu   sync.Mutex
}

// NewFileStore returns a store backed by path. The file is not touched
// until Load or Save is called.
func NewFileStore(path string) *FileStore {
	return &FileStore{path: path}
}

// Path returns the backing file path.
func (s *FileStore) Path() string {
	return s.path
}

// Load reads the record. Comments and trailing commas in a hand-edited
// file are accepted.
func (s *FileStore) Load() (Record, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := os.ReadFile(s.path)
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			log.Warnf("Cannot read credentials file %s: %v", s.path, err)
		}
		return Record{}, false
	}

	var rec Record
	if err := json.Unmarshal(jsonc.ToJSON(data), &rec); err != nil {
		log.Warnf("Ignoring corrupt credentials file %s: %v", s.path, err)
		return Record{}, false
	}
	if rec.AppToken == "" {
		log.Warnf("Ignoring credentials file %s: no app_token", s.path)
		return Record{}, false
	}

	log.Debugf("Loaded app token %s (track_id=%d) from %s", log.Redact(rec.AppToken), rec.TrackID, s.path)
	return rec, true
}

// Save writes the record atomically with owner-only permissions.
func (s *FileStore) Save(rec Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := json.MarshalIndent(rec, "", "  ")
	if err != nil {
		return fbxerrors.NewInternalError("encode credentials", err)
	}
	data = append(data, '\n')

	if err := os.MkdirAll(filepath.Dir(s.path), 0o700); err != nil {
		return fbxerrors.NewConfigError(fmt.Sprintf("create credentials directory for %s", s.path), err)
	}

	unlock, err := lockFile(s.path + ".lock")
	if err != nil {
		return fbxerrors.NewConfigError(fmt.Sprintf("lock credentials file %s", s.path), err)
	}
	defer unlock()

	if err := utils.WriteFileAtomic(s.path, data, fileMode); err != nil {
		return fbxerrors.NewConfigError(fmt.Sprintf("write credentials file %s", s.path), err)
	}

	log.Debugf("Saved app token %s to %s", log.Redact(rec.AppToken), s.path)
	return nil
}

// Clear removes the file. A missing file is not an error. The lock file
// stays in place, other processes may hold a lock on it.
func (s *FileStore) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := os.Stat(filepath.Dir(s.path)); errors.Is(err, os.ErrNotExist) {
		return nil
	}

	unlock, err := lockFile(s.path + ".lock")
	if err != nil {
		return fbxerrors.NewConfigError(fmt.Sprintf("lock credentials file %s", s.path), err)
	}
	defer unlock()

	if err := os.Remove(s.path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fbxerrors.NewConfigError(fmt.Sprintf("remove credentials file %s", s.path), err)
	}
	return nil
}
