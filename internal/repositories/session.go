package repositories

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/desertthunder/coursemap/internal/models"
)

// SessionNamespace is the kv_store key the auth session is stored under.
const SessionNamespace = "auth-storage"

// SessionRepository persists the auth [models.Session] as a single JSON value in kv_store.
type SessionRepository struct {
	db        *sql.DB
	namespace string
}

// NewSessionRepository creates a SessionRepository under [SessionNamespace].
func NewSessionRepository(db *sql.DB) *SessionRepository {
	return &SessionRepository{db: db, namespace: SessionNamespace}
}

// Load returns the stored session, or an empty one when nothing is stored.
func (r *SessionRepository) Load() (models.Session, error) {
	var (
		session models.Session
		value   string
	)

	err := r.db.QueryRow("SELECT value FROM kv_store WHERE namespace = ?", r.namespace).Scan(&value)
	if err == sql.ErrNoRows {
		return session, nil
	}
	if err != nil {
		return session, fmt.Errorf("failed to query session: %w", err)
	}

	if err := json.Unmarshal([]byte(value), &session); err != nil {
		return models.Session{}, fmt.Errorf("failed to decode session: %w", err)
	}
	return session, nil
}

// Save replaces the stored session.
func (r *SessionRepository) Save(session models.Session) error {
	data, err := json.Marshal(session)
	if err != nil {
		return fmt.Errorf("failed to encode session: %w", err)
	}

	query := `
		INSERT INTO kv_store (namespace, value, updated_at) VALUES (?, ?, ?)
		ON CONFLICT(namespace) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at
	`
	if _, err := r.db.Exec(query, r.namespace, string(data), time.Now()); err != nil {
		return fmt.Errorf("failed to save session: %w", err)
	}
	return nil
}

// Clear removes the stored session.
func (r *SessionRepository) Clear() error {
	if _, err := r.db.Exec("DELETE FROM kv_store WHERE namespace = ?", r.namespace); err != nil {
		return fmt.Errorf("failed to clear session: %w", err)
	}
	return nil
}
