package models

import (
	"fmt"
	"time"
)

// DraftRecord is a course draft persisted between CLI invocations.
//
// Payload holds the JSON-encoded editor draft; CourseID is set when the draft edits an existing course.
type DraftRecord struct {
	DraftID   string     `json:"id"`
	Sequence  int        `json:"sequence"`
	CourseID  string     `json:"course_id,omitempty"`
	Title     string     `json:"title"`
	Payload   []byte     `json:"payload"`
	Created   time.Time  `json:"created_at"`
	Updated   time.Time  `json:"updated_at"`
	DeletedAt *time.Time `json:"deleted_at,omitempty"`
}

func (d *DraftRecord) ID() string           { return d.DraftID }
func (d *DraftRecord) CreatedAt() time.Time { return d.Created }
func (d *DraftRecord) UpdatedAt() time.Time { return d.Updated }

func (d *DraftRecord) Validate() error {
	if d.DraftID == "" {
		return fmt.Errorf("draft id is required")
	}
	if len(d.Payload) == 0 {
		return fmt.Errorf("draft payload is required")
	}
	return nil
}

// ExportRun records a finished bulk export.
type ExportRun struct {
	RunID      string     `json:"id"`
	Format     string     `json:"format"`
	OutputDir  string     `json:"output_dir"`
	Total      int        `json:"total"`
	Succeeded  int        `json:"succeeded"`
	Failed     int        `json:"failed"`
	StartedAt  time.Time  `json:"started_at"`
	FinishedAt *time.Time `json:"finished_at,omitempty"`
}

func (e *ExportRun) ID() string           { return e.RunID }
func (e *ExportRun) CreatedAt() time.Time { return e.StartedAt }

func (e *ExportRun) UpdatedAt() time.Time {
	if e.FinishedAt != nil {
		return *e.FinishedAt
	}
	return e.StartedAt
}

func (e *ExportRun) Validate() error {
	if e.RunID == "" {
		return fmt.Errorf("export run id is required")
	}
	if e.Format == "" {
		return fmt.Errorf("export format is required")
	}
	return nil
}
