package repositories

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/desertthunder/coursemap/internal/models"
	"github.com/desertthunder/coursemap/internal/shared"
)

// DraftRepository implements [models.Repository] for [models.DraftRecord].
type DraftRepository struct {
	db *sql.DB
}

// NewDraftRepository creates a new [DraftRepository] with the given database connection
func NewDraftRepository(db *sql.DB) *DraftRepository {
	return &DraftRepository{db: db}
}

var _ models.Repository[*models.DraftRecord] = (*DraftRepository)(nil)

const draftColumns = "id, sequence, course_id, title, payload, created_at, updated_at, deleted_at"

// Create inserts a draft. The record keeps its ID when it already has one.
func (r *DraftRepository) Create(d *models.DraftRecord) error {
	if d.DraftID == "" {
		d.DraftID = shared.GenerateID()
	}
	if err := d.Validate(); err != nil {
		return fmt.Errorf("%w: %w", shared.ErrValidation, err)
	}

	sequence, err := NextSequence(r.db, "course_drafts")
	if err != nil {
		return fmt.Errorf("failed to generate sequence: %w", err)
	}

	now := time.Now()
	d.Sequence, d.Created, d.Updated = sequence, now, now

	query := `
		INSERT INTO course_drafts (id, sequence, course_id, title, payload, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`
	if _, err := r.db.Exec(query, d.DraftID, d.Sequence, nullString(d.CourseID), d.Title, string(d.Payload), d.Created, d.Updated); err != nil {
		return fmt.Errorf("failed to insert draft: %w", err)
	}
	return nil
}

// Get retrieves a draft by ID, excluding soft-deleted drafts.
func (r *DraftRepository) Get(id string) (*models.DraftRecord, error) {
	row := r.db.QueryRow("SELECT "+draftColumns+" FROM course_drafts WHERE id = ? AND deleted_at IS NULL", id)
	d, err := scanDraft(row)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("%w: draft %s", shared.ErrNotFound, id)
	}
	return d, err
}

// GetBySequence retrieves a draft by its human-readable number.
func (r *DraftRepository) GetBySequence(sequence int) (*models.DraftRecord, error) {
	row := r.db.QueryRow("SELECT "+draftColumns+" FROM course_drafts WHERE sequence = ? AND deleted_at IS NULL", sequence)
	d, err := scanDraft(row)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("%w: draft #%d", shared.ErrNotFound, sequence)
	}
	return d, err
}

// Latest returns the most recently updated draft.
func (r *DraftRepository) Latest() (*models.DraftRecord, error) {
	row := r.db.QueryRow("SELECT " + draftColumns + " FROM course_drafts WHERE deleted_at IS NULL ORDER BY updated_at DESC, sequence DESC LIMIT 1")
	d, err := scanDraft(row)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("%w: no drafts", shared.ErrNotFound)
	}
	return d, err
}

// Update stores a new title and payload for an existing draft.
func (r *DraftRepository) Update(d *models.DraftRecord) error {
	if err := d.Validate(); err != nil {
		return fmt.Errorf("%w: %w", shared.ErrValidation, err)
	}

	d.Updated = time.Now()
	query := `
		UPDATE course_drafts
		SET course_id = ?, title = ?, payload = ?, updated_at = ?
		WHERE id = ? AND deleted_at IS NULL
	`
	result, err := r.db.Exec(query, nullString(d.CourseID), d.Title, string(d.Payload), d.Updated, d.DraftID)
	if err != nil {
		return fmt.Errorf("failed to update draft: %w", err)
	}
	return affected(result, "draft", d.DraftID)
}

// Save creates d when it is not stored yet and updates it otherwise.
func (r *DraftRepository) Save(d *models.DraftRecord) error {
	if d.DraftID != "" {
		var exists bool
		err := r.db.QueryRow("SELECT EXISTS(SELECT 1 FROM course_drafts WHERE id = ? AND deleted_at IS NULL)", d.DraftID).Scan(&exists)
		if err != nil {
			return fmt.Errorf("failed to check draft: %w", err)
		}
		if exists {
			return r.Update(d)
		}
	}
	return r.Create(d)
}

// Delete soft-deletes a draft by ID.
func (r *DraftRepository) Delete(id string) error {
	result, err := r.db.Exec("UPDATE course_drafts SET deleted_at = ? WHERE id = ? AND deleted_at IS NULL", time.Now(), id)
	if err != nil {
		return fmt.Errorf("failed to delete draft: %w", err)
	}
	return affected(result, "draft", id)
}

// List retrieves drafts matching criteria ("course_id", "title"), excluding soft-deleted drafts.
func (r *DraftRepository) List(criteria map[string]any) ([]*models.DraftRecord, error) {
	query := "SELECT " + draftColumns + " FROM course_drafts WHERE deleted_at IS NULL"
	args := []any{}

	if courseID, ok := criteria["course_id"].(string); ok && courseID != "" {
		query += " AND course_id = ?"
		args = append(args, courseID)
	}
	if title, ok := criteria["title"].(string); ok && title != "" {
		query += " AND title LIKE ?"
		args = append(args, "%"+title+"%")
	}

	query += " ORDER BY sequence ASC"

	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query drafts: %w", err)
	}
	defer rows.Close()

	var drafts []*models.DraftRecord
	for rows.Next() {
		d, err := scanDraft(rows)
		if err != nil {
			return nil, err
		}
		drafts = append(drafts, d)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}
	return drafts, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanDraft(s scanner) (*models.DraftRecord, error) {
	var (
		d         models.DraftRecord
		courseID  sql.NullString
		payload   string
		deletedAt sql.NullTime
	)

	err := s.Scan(&d.DraftID, &d.Sequence, &courseID, &d.Title, &payload, &d.Created, &d.Updated, &deletedAt)
	if err == sql.ErrNoRows {
		return nil, err
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan draft: %w", err)
	}

	d.CourseID = courseID.String
	d.Payload = []byte(payload)
	if deletedAt.Valid {
		d.DeletedAt = &deletedAt.Time
	}
	return &d, nil
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
