package api

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/samcharles93/wasmrev/internal/recovery"
)

// Recovery is a stored recovery as returned by the API.
type Recovery struct {
	recovery.Report
	Object    string `json:"object"`
	CreatedAt int64  `json:"created_at"`
	Size      int    `json:"module_bytes"`
}

type RecoveryStore struct {
	mu         sync.Mutex
	recoveries map[string]Recovery
}

func NewRecoveryStore() *RecoveryStore {
	return &RecoveryStore{
		recoveries: make(map[string]Recovery),
	}
}

// Save records res under a fresh id and returns the stored view.
func (s *RecoveryStore) Save(res *recovery.Result, prefix string, size int, now time.Time) Recovery {
	rec := Recovery{
		Report:    res.Report(prefix, false),
		Object:    "recovery",
		CreatedAt: now.Unix(),
		Size:      size,
	}
	rec.ID = newRecoveryID()

	s.mu.Lock()
	s.recoveries[rec.ID] = rec
	s.mu.Unlock()
	return rec
}

func (s *RecoveryStore) Get(id string) (Recovery, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec, ok := s.recoveries[id]
	return rec, ok
}

func (s *RecoveryStore) Delete(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.recoveries[id]; !ok {
		return false
	}
	delete(s.recoveries, id)
	return true
}

func (s *RecoveryStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.recoveries)
}

func newRecoveryID() string {
	return "rec_" + uuid.NewString()
}
