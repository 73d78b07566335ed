package credentials

import (
	"sync"
)

// Identity describes the application to the box. It is sent on
// registration and recorded next to the issued app token.
type Identity struct {
	AppID      string `json:"app_id" validate:"required,app_id"`
	AppName    string `json:"app_name" validate:"required,max=128"`
	AppVersion string `json:"app_version" validate:"required,max=64"`
	DeviceName string `json:"device_name" validate:"required,max=128"`
}

// Record is what a Store persists.
type Record struct {
	AppToken string   `json:"app_token"`
	TrackID  int      `json:"track_id"`
	AppDesc  Identity `json:"app_desc"`
}

// Matches reports whether the record was issued to the same application.
// A token issued to another app_id is useless; name, version and device
// name changes do not invalidate it.
func (r Record) Matches(id Identity) bool {
	return r.AppToken != "" && r.AppDesc.AppID == id.AppID
}

// Store loads and saves the app token record.
type Store interface {
	// Load returns the stored record, or false when there is none.
	Load() (Record, bool)
	// Save replaces the stored record.
	Save(rec Record) error
	// Clear forgets the stored record.
	Clear() error
}

// MemoryStore keeps the record in memory.
type MemoryStore struct {
	mu  sync.RWMutex
	rec *Record
}

// NewMemoryStore returns a store pre-filled with recs[0] when given.
func NewMemoryStore(recs ...Record) *MemoryStore {
	s := &MemoryStore{}
	if len(recs) > 0 {
		rec := recs[0]
		s.rec = &rec
	}
	return s
}

func (s *MemoryStore) Load() (Record, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.rec == nil {
		return Record{}, false
	}
	return *s.rec, true
}

func (s *MemoryStore) Save(rec Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rec = &rec
	return nil
}

func (s *MemoryStore) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rec = nil
	return nil
}
