// Package session persists interactive view state between requests and runs.
//
// A [Session] pairs a dataset hash with a [view.Snapshot]: which nodes are
// expanded, what is focused, and the viewport. Two backends implement
// [Store]:
//   - [MemoryStore]: in-process storage for the HTTP shell, one session per
//     browser tab
//   - [FileStore]: JSON files for the terminal explorer, so `explore --resume`
//     continues where the last run stopped
//
// A session is only meaningful for the dataset it was taken from. Callers
// check [Session.Matches] and discard snapshots of a different dataset.
//
// # Usage
//
//	store := session.NewMemoryStore()
//	sess := session.New(doc.Hash(), session.DefaultTTL)
//	sess.View = controller.Snapshot()
//	_ = store.Set(ctx, sess)
//
//	sess, err := store.Get(ctx, id)
//	if err != nil || sess == nil || !sess.Matches(doc.Hash()) {
//	    // start from the initial view
//	}
package session

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/matzehuels/kintree/pkg/view"
)

// Sentinel errors for session operations.
var (
	// ErrNotFound is returned when a session does not exist.
	ErrNotFound = errors.New("session not found")

	// ErrInvalidID is returned for ids that are not valid session ids.
	ErrInvalidID = errors.New("invalid session id")
)

// DefaultTTL is how long an idle session is kept.
const DefaultTTL = 24 * time.Hour

// Session is the saved view state of one viewer.
type Session struct {
	ID          string        `json:"id"`
	DatasetHash string        `json:"dataset_hash"`
	View        view.Snapshot `json:"view"`
	CreatedAt   time.Time     `json:"created_at"`
	UpdatedAt   time.Time     `json:"updated_at"`
	ExpiresAt   time.Time     `json:"expires_at"`
}

// New creates a session with a random id for the dataset with the given hash.
func New(datasetHash string, ttl time.Duration) *Session {
	now := time.Now()
	return &Session{
		ID:          uuid.NewString(),
		DatasetHash: datasetHash,
		CreatedAt:   now,
		UpdatedAt:   now,
		ExpiresAt:   now.Add(ttl),
	}
}

// IsExpired returns true if the session has expired.
func (s *Session) IsExpired() bool {
	return !s.ExpiresAt.IsZero() && time.Now().After(s.ExpiresAt)
}

// Touch records an update and extends the expiry by ttl.
func (s *Session) Touch(ttl time.Duration) {
	s.UpdatedAt = time.Now()
	s.ExpiresAt = s.UpdatedAt.Add(ttl)
}

// Matches reports whether the session was taken from the dataset with the
// given hash.
func (s *Session) Matches(datasetHash string) bool {
	return s != nil && s.DatasetHash == datasetHash
}

// ValidateID checks that id is a session id issued by [New].
func ValidateID(id string) error {
	if _, err := uuid.Parse(id); err != nil {
		return fmt.Errorf("%w: %q", ErrInvalidID, id)
	}
	return nil
}

// Store is the interface for session storage backends.
type Store interface {
	// Get retrieves a session by ID.
	// Returns nil, nil if the session doesn't exist or has expired.
	Get(ctx context.Context, id string) (*Session, error)

	// Set stores a session.
	Set(ctx context.Context, s *Session) error

	// Delete removes a session.
	Delete(ctx context.Context, id string) error

	// Cleanup removes expired sessions.
	Cleanup(ctx context.Context) error
}
