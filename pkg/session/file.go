package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
	"time"
)

// FileStore keeps sessions as JSON files in a directory.
type FileStore struct {
	mu      sync.RWMutex
	baseDir string
}

// NewFileStore creates a file-based session store.
// If baseDir is empty, it defaults to <user config dir>/kintree/sessions.
func NewFileStore(baseDir string) (*FileStore, error) {
	if baseDir == "" {
		dir, err := os.UserConfigDir()
		if err != nil {
			return nil, fmt.Errorf("get config dir: %w", err)
		}
		baseDir = filepath.Join(dir, "kintree", "sessions")
	}
	if err := os.MkdirAll(baseDir, 0o700); err != nil {
		return nil, fmt.Errorf("create session dir: %w", err)
	}
	return &FileStore{baseDir: baseDir}, nil
}

func (s *FileStore) sessionPath(id string) (string, error) {
	if id == "" || filepath.Base(id) != id || id == "." || id == ".." {
		return "", fmt.Errorf("%w: %q", ErrInvalidID, id)
	}
	return filepath.Join(s.baseDir, id+".json"), nil
}

func (s *FileStore) Get(_ context.Context, id string) (*Session, error) {
	path, err := s.sessionPath(id)
	if err != nil {
		return nil, err
	}

	s.mu.RLock()
	data, err := os.ReadFile(path)
	s.mu.RUnlock()
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read session file: %w", err)
	}

	var sess Session
	if err := json.Unmarshal(data, &sess); err != nil {
		return nil, fmt.Errorf("parse session: %w", err)
	}
	if sess.IsExpired() {
		_ = s.Delete(context.Background(), id)
		return nil, nil
	}
	return &sess, nil
}

func (s *FileStore) Set(_ context.Context, sess *Session) error {
	path, err := s.sessionPath(sess.ID)
	if err != nil {
		return err
	}
	data, err := json.MarshalIndent(sess, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal session: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return fmt.Errorf("write session file: %w", err)
	}
	return nil
}

func (s *FileStore) Delete(_ context.Context, id string) error {
	path, err := s.sessionPath(id)
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := os.Remove(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("remove session file: %w", err)
	}
	return nil
}

func (s *FileStore) Cleanup(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	entries, err := os.ReadDir(s.baseDir)
	if err != nil {
		return fmt.Errorf("read session dir: %w", err)
	}
	now := time.Now()
	for _, entry := range entries {
		if entry.IsDir() || filepath.Ext(entry.Name()) != ".json" {
			continue
		}
		path := filepath.Join(s.baseDir, entry.Name())
		data, err := os.ReadFile(path)
		if err != nil {
			continue
		}
		var sess Session
		if err := json.Unmarshal(data, &sess); err != nil {
			continue
		}
		if !sess.ExpiresAt.IsZero() && now.After(sess.ExpiresAt) {
			_ = os.Remove(path)
		}
	}
	return nil
}

// Path returns the base directory for session files.
func (s *FileStore) Path() string { return s.baseDir }

var _ Store = (*FileStore)(nil)

// =============================================================================
// Explorer resume
// =============================================================================

// resumeTTL keeps explorer snapshots for a month of inactivity.
const resumeTTL = 30 * 24 * time.Hour

// ResumeStore saves one explorer snapshot per dataset in a FileStore.
type ResumeStore struct {
	store *FileStore
}

// NewResumeStore creates a resume store in dir (see NewFileStore).
func NewResumeStore(dir string) (*ResumeStore, error) {
	store, err := NewFileStore(dir)
	if err != nil {
		return nil, err
	}
	return &ResumeStore{store: store}, nil
}

func resumeID(datasetHash string) string {
	if len(datasetHash) > 32 {
		datasetHash = datasetHash[:32]
	}
	return "resume-" + datasetHash
}

// Load returns the saved session for the dataset, or nil when there is none
// or when it was taken from different data.
func (r *ResumeStore) Load(ctx context.Context, datasetHash string) (*Session, error) {
	sess, err := r.store.Get(ctx, resumeID(datasetHash))
	if err != nil || !sess.Matches(datasetHash) {
		return nil, err
	}
	return sess, nil
}

// Save stores sess as the snapshot of its dataset.
func (r *ResumeStore) Save(ctx context.Context, sess *Session) error {
	sess.ID = resumeID(sess.DatasetHash)
	sess.Touch(resumeTTL)
	return r.store.Set(ctx, sess)
}

// Forget removes the snapshot of the dataset.
func (r *ResumeStore) Forget(ctx context.Context, datasetHash string) error {
	return r.store.Delete(ctx, resumeID(datasetHash))
}

// Path returns the directory snapshots are stored in.
func (r *ResumeStore) Path() string { return r.store.Path() }
