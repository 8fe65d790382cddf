package task

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"sync"
	"time"
)

// FileStore is a mutex-guarded in-memory task map mirrored to a flat JSON
// file. Every mutation rewrites the whole file atomically from the in-memory
// copy (write-through): a crash loses at most the latest update and never
// corrupts prior state.
type FileStore struct {
	mu     sync.Mutex
	path   string // empty means in-memory only
	tasks  map[string]Task
	lastID int64
	log    *slog.Logger
}

// NewFileStore opens (or creates) a store mirrored at path. An empty path
// yields a memory-only store, which tests use. A missing or empty file is
// not an error; an unreadable one is.
func NewFileStore(path string, log *slog.Logger) (*FileStore, error) {
	if log == nil {
		log = slog.Default()
	}
	s := &FileStore{
		path:  path,
		tasks: make(map[string]Task),
		log:   log,
	}
	if path == "" {
		return s, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return s, nil
		}
		return nil, &StoreError{Op: "load", Err: err}
	}
	if len(data) == 0 {
		return s, nil
	}
	if err := json.Unmarshal(data, &s.tasks); err != nil {
		return nil, &StoreError{Op: "load", Err: err}
	}
	return s, nil
}

// Create implements Store.Create. The returned id is usable even when the
// flush fails; the error then only reports the persistence problem.
func (s *FileStore) Create(data map[string]any) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now().UTC()
	id := s.nextIDLocked(now)
	s.tasks[id] = Task{
		ID:        id,
		Status:    StatusPending,
		CreatedAt: now,
		UpdatedAt: now,
		Data:      data,
	}
	return id, s.flushLocked()
}

// SetStatus implements Store.SetStatus, enforcing the monotonic lifecycle
// pending -> processing -> completed|failed.
func (s *FileStore) SetStatus(id string, status Status) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	t, ok := s.tasks[id]
	if !ok {
		return ErrNotFound
	}
	if t.Status.Terminal() {
		return fmt.Errorf("%w: %s is %s", ErrTerminal, id, t.Status)
	}
	if !validTransition(t.Status, status) {
		return fmt.Errorf("invalid transition %s -> %s for task %s", t.Status, status, id)
	}

	t.Status = status
	t.UpdatedAt = time.Now().UTC()
	s.tasks[id] = t
	return s.flushLocked()
}

// MergeData implements Store.MergeData.
func (s *FileStore) MergeData(id string, data map[string]any) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	t, ok := s.tasks[id]
	if !ok {
		return ErrNotFound
	}
	if t.Data == nil {
		t.Data = make(map[string]any, len(data))
	}
	for k, v := range data {
		t.Data[k] = v
	}
	t.UpdatedAt = time.Now().UTC()
	s.tasks[id] = t
	return s.flushLocked()
}

// Get implements Store.Get.
func (s *FileStore) Get(id string) (Task, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	t, ok := s.tasks[id]
	return t, ok
}

// ListByStatus implements Store.ListByStatus.
func (s *FileStore) ListByStatus(status Status) []Task {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]Task, 0)
	for _, t := range s.tasks {
		if t.Status == status {
			out = append(out, t)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out
}

func validTransition(from, to Status) bool {
	switch from {
	case StatusPending:
		return to == StatusProcessing || to == StatusFailed
	case StatusProcessing:
		return to == StatusCompleted || to == StatusFailed
	}
	return false
}

// nextIDLocked returns a time-derived token that is strictly increasing even
// when two creates land on the same nanosecond. Caller must hold s.mu.
func (s *FileStore) nextIDLocked(now time.Time) string {
	n := now.UnixNano()
	if n <= s.lastID {
		n = s.lastID + 1
	}
	s.lastID = n
	return strconv.FormatInt(n, 36)
}

// flushLocked rewrites the mirror file wholesale from the in-memory map,
// via a temp file and rename so readers never observe a partial write.
// Caller must hold s.mu.
func (s *FileStore) flushLocked() error {
	if s.path == "" {
		return nil
	}

	data, err := json.MarshalIndent(s.tasks, "", "  ")
	if err != nil {
		return &StoreError{Op: "encode", Err: err}
	}

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return &StoreError{Op: "flush", Err: err}
	}

	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return &StoreError{Op: "flush", Err: err}
	}
	if err := os.Rename(tmp, s.path); err != nil {
		return &StoreError{Op: "flush", Err: err}
	}
	return nil
}
