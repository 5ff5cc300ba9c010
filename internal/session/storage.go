// Package session manages per-user trigger authoring conversations.
package session

import "context"

// Storage defines the persistence contract for authoring sessions.
type Storage interface {
	// Get returns the active session for the specified user.
	Get(ctx context.Context, userID int64) (*Session, error)
	// Set saves the provided session for the specified user.
	Set(ctx context.Context, userID int64, session *Session) error
	// Clear removes the session for the specified user.
	Clear(ctx context.Context, userID int64) error
	// GetAll returns every active session.
	GetAll(ctx context.Context) ([]*Session, error)
}
