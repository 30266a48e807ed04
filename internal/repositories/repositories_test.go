package repositories

import (
	"database/sql"
	"errors"
	"testing"

	"github.com/desertthunder/coursemap/internal/models"
	"github.com/desertthunder/coursemap/internal/shared"
)

// setupTestDB creates an in-memory SQLite database with migrations applied
func setupTestDB(t *testing.T) *sql.DB {
	t.Helper()

	db, err := shared.NewDatabase(":memory:")
	if err != nil {
		t.Fatalf("failed to create test database: %v", err)
	}

	if err := shared.RunMigrations(db); err != nil {
		db.Close()
		t.Fatalf("failed to run migrations: %v", err)
	}

	return db
}

func TestNextSequence(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()

	for want := 1; want <= 3; want++ {
		got, err := NextSequence(db, "course_drafts")
		if err != nil {
			t.Fatalf("NextSequence failed: %v", err)
		}
		if got != want {
			t.Errorf("expected sequence %d, got %d", want, got)
		}
	}

	if _, err := NextSequence(db, "missing"); err == nil {
		t.Error("expected error for unknown sequence table")
	}
}

func TestSessionRepository(t *testing.T) {
	t.Run("Load empty", func(t *testing.T) {
		db := setupTestDB(t)
		defer db.Close()

		session, err := NewSessionRepository(db).Load()
		if err != nil {
			t.Fatalf("Load failed: %v", err)
		}
		if session.Authenticated() {
			t.Error("expected empty session")
		}
	})

	t.Run("Save and Load", func(t *testing.T) {
		db := setupTestDB(t)
		defer db.Close()

		repo := NewSessionRepository(db)
		want := models.Session{
			Token:   "a.b.c",
			Claims:  &models.Claims{Email: "walker@example.com", Nickname: "walker"},
			Profile: &models.UserProfile{Email: "walker@example.com", Nickname: "walker", CourseCount: 3},
		}

		if err := repo.Save(want); err != nil {
			t.Fatalf("Save failed: %v", err)
		}

		got, err := repo.Load()
		if err != nil {
			t.Fatalf("Load failed: %v", err)
		}
		if got.Token != want.Token {
			t.Errorf("expected token %q, got %q", want.Token, got.Token)
		}
		if got.Claims == nil || got.Claims.Nickname != "walker" {
			t.Errorf("expected claims to round trip, got %+v", got.Claims)
		}
		if got.Profile == nil || got.Profile.CourseCount != 3 {
			t.Errorf("expected profile to round trip, got %+v", got.Profile)
		}
	})

	t.Run("Save overwrites", func(t *testing.T) {
		db := setupTestDB(t)
		defer db.Close()

		repo := NewSessionRepository(db)
		if err := repo.Save(models.Session{Token: "first"}); err != nil {
			t.Fatalf("Save failed: %v", err)
		}
		if err := repo.Save(models.Session{Token: "second"}); err != nil {
			t.Fatalf("Save failed: %v", err)
		}

		var count int
		if err := db.QueryRow("SELECT COUNT(*) FROM kv_store").Scan(&count); err != nil {
			t.Fatalf("count failed: %v", err)
		}
		if count != 1 {
			t.Errorf("expected 1 row, got %d", count)
		}

		got, _ := repo.Load()
		if got.Token != "second" {
			t.Errorf("expected latest token, got %q", got.Token)
		}
	})

	t.Run("Clear", func(t *testing.T) {
		db := setupTestDB(t)
		defer db.Close()

		repo := NewSessionRepository(db)
		if err := repo.Save(models.Session{Token: "a.b.c"}); err != nil {
			t.Fatalf("Save failed: %v", err)
		}
		if err := repo.Clear(); err != nil {
			t.Fatalf("Clear failed: %v", err)
		}

		got, err := repo.Load()
		if err != nil {
			t.Fatalf("Load failed: %v", err)
		}
		if got.Authenticated() {
			t.Error("expected cleared session")
		}
	})

	t.Run("Load corrupt value", func(t *testing.T) {
		db := setupTestDB(t)
		defer db.Close()

		if _, err := db.Exec("INSERT INTO kv_store (namespace, value) VALUES (?, ?)", SessionNamespace, "{not json"); err != nil {
			t.Fatalf("insert failed: %v", err)
		}
		if _, err := NewSessionRepository(db).Load(); err == nil {
			t.Error("expected decode error")
		}
	})
}

func newDraft(title string) *models.DraftRecord {
	return &models.DraftRecord{Title: title, Payload: []byte(`{"title":"` + title + `"}`)}
}

func TestDraftRepository(t *testing.T) {
	t.Run("Create", func(t *testing.T) {
		db := setupTestDB(t)
		defer db.Close()

		repo := NewDraftRepository(db)
		first, second := newDraft("Seongsu walk"), newDraft("Jeju east")

		if err := repo.Create(first); err != nil {
			t.Fatalf("failed to create draft: %v", err)
		}
		if err := repo.Create(second); err != nil {
			t.Fatalf("failed to create draft: %v", err)
		}

		if first.ID() == "" {
			t.Error("draft ID should be set after creation")
		}
		if first.Sequence != 1 || second.Sequence != 2 {
			t.Errorf("expected sequences 1 and 2, got %d and %d", first.Sequence, second.Sequence)
		}
	})

	t.Run("Create keeps provided ID", func(t *testing.T) {
		db := setupTestDB(t)
		defer db.Close()

		repo := NewDraftRepository(db)
		d := newDraft("Mapo")
		d.DraftID = "draft-1"

		if err := repo.Create(d); err != nil {
			t.Fatalf("failed to create draft: %v", err)
		}
		if d.DraftID != "draft-1" {
			t.Errorf("expected provided ID, got %s", d.DraftID)
		}
	})

	t.Run("Create rejects empty payload", func(t *testing.T) {
		db := setupTestDB(t)
		defer db.Close()

		err := NewDraftRepository(db).Create(&models.DraftRecord{Title: "empty"})
		if !errors.Is(err, shared.ErrValidation) {
			t.Errorf("expected ErrValidation, got %v", err)
		}
	})

	t.Run("Get", func(t *testing.T) {
		db := setupTestDB(t)
		defer db.Close()

		repo := NewDraftRepository(db)
		d := newDraft("Bukchon")
		d.CourseID = "42"
		if err := repo.Create(d); err != nil {
			t.Fatalf("failed to create draft: %v", err)
		}

		got, err := repo.Get(d.ID())
		if err != nil {
			t.Fatalf("failed to get draft: %v", err)
		}
		if got.Title != "Bukchon" || got.CourseID != "42" {
			t.Errorf("unexpected draft: %+v", got)
		}
		if string(got.Payload) != string(d.Payload) {
			t.Errorf("expected payload %s, got %s", d.Payload, got.Payload)
		}

		bySeq, err := repo.GetBySequence(d.Sequence)
		if err != nil {
			t.Fatalf("failed to get draft by sequence: %v", err)
		}
		if bySeq.ID() != d.ID() {
			t.Errorf("expected %s, got %s", d.ID(), bySeq.ID())
		}
	})

	t.Run("Get missing", func(t *testing.T) {
		db := setupTestDB(t)
		defer db.Close()

		_, err := NewDraftRepository(db).Get("nope")
		if !errors.Is(err, shared.ErrNotFound) {
			t.Errorf("expected ErrNotFound, got %v", err)
		}
	})

	t.Run("Update", func(t *testing.T) {
		db := setupTestDB(t)
		defer db.Close()

		repo := NewDraftRepository(db)
		d := newDraft("Before")
		if err := repo.Create(d); err != nil {
			t.Fatalf("failed to create draft: %v", err)
		}

		d.Title = "After"
		d.Payload = []byte(`{"title":"After"}`)
		if err := repo.Update(d); err != nil {
			t.Fatalf("failed to update draft: %v", err)
		}

		got, err := repo.Get(d.ID())
		if err != nil {
			t.Fatalf("failed to get draft: %v", err)
		}
		if got.Title != "After" {
			t.Errorf("expected updated title, got %s", got.Title)
		}
	})

	t.Run("Save creates then updates", func(t *testing.T) {
		db := setupTestDB(t)
		defer db.Close()

		repo := NewDraftRepository(db)
		d := newDraft("Hongdae")
		d.DraftID = "fixed"

		if err := repo.Save(d); err != nil {
			t.Fatalf("Save (create) failed: %v", err)
		}
		d.Title = "Hongdae night"
		if err := repo.Save(d); err != nil {
			t.Fatalf("Save (update) failed: %v", err)
		}

		drafts, err := repo.List(nil)
		if err != nil {
			t.Fatalf("List failed: %v", err)
		}
		if len(drafts) != 1 || drafts[0].Title != "Hongdae night" {
			t.Errorf("expected a single updated draft, got %+v", drafts)
		}
	})

	t.Run("Delete", func(t *testing.T) {
		db := setupTestDB(t)
		defer db.Close()

		repo := NewDraftRepository(db)
		d := newDraft("Gone")
		if err := repo.Create(d); err != nil {
			t.Fatalf("failed to create draft: %v", err)
		}

		if err := repo.Delete(d.ID()); err != nil {
			t.Fatalf("failed to delete draft: %v", err)
		}
		if _, err := repo.Get(d.ID()); err == nil {
			t.Error("expected error getting deleted draft")
		}
		if err := repo.Delete(d.ID()); err == nil {
			t.Error("expected error deleting twice")
		}
		if err := repo.Update(d); err == nil {
			t.Error("expected error updating deleted draft")
		}
	})

	t.Run("List", func(t *testing.T) {
		db := setupTestDB(t)
		defer db.Close()

		repo := NewDraftRepository(db)
		a, b, c := newDraft("Seoul forest"), newDraft("Busan beach"), newDraft("Seoul palace")
		b.CourseID = "7"
		for _, d := range []*models.DraftRecord{a, b, c} {
			if err := repo.Create(d); err != nil {
				t.Fatalf("failed to create draft: %v", err)
			}
		}

		all, err := repo.List(map[string]any{})
		if err != nil {
			t.Fatalf("List failed: %v", err)
		}
		if len(all) != 3 {
			t.Fatalf("expected 3 drafts, got %d", len(all))
		}
		if all[0].Sequence != 1 || all[2].Sequence != 3 {
			t.Error("expected drafts ordered by sequence")
		}

		seoul, _ := repo.List(map[string]any{"title": "Seoul"})
		if len(seoul) != 2 {
			t.Errorf("expected 2 Seoul drafts, got %d", len(seoul))
		}

		linked, _ := repo.List(map[string]any{"course_id": "7"})
		if len(linked) != 1 || linked[0].ID() != b.ID() {
			t.Errorf("expected the linked draft, got %+v", linked)
		}
	})

	t.Run("Latest", func(t *testing.T) {
		db := setupTestDB(t)
		defer db.Close()

		repo := NewDraftRepository(db)
		if _, err := repo.Latest(); !errors.Is(err, shared.ErrNotFound) {
			t.Errorf("expected ErrNotFound on empty table, got %v", err)
		}

		first, second := newDraft("one"), newDraft("two")
		_ = repo.Create(first)
		_ = repo.Create(second)

		got, err := repo.Latest()
		if err != nil {
			t.Fatalf("Latest failed: %v", err)
		}
		if got.ID() != second.ID() {
			t.Errorf("expected latest draft %s, got %s", second.ID(), got.ID())
		}
	})
}

func TestExportRunRepository(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()

	repo := NewExportRunRepository(db)
	run := &models.ExportRun{Format: "markdown", OutputDir: "./exports", Total: 3}

	if err := repo.Start(run); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	if run.RunID == "" || run.StartedAt.IsZero() {
		t.Fatal("expected ID and start time to be set")
	}

	run.Succeeded, run.Failed = 2, 1
	if err := repo.Finish(run); err != nil {
		t.Fatalf("Finish failed: %v", err)
	}

	runs, err := repo.Recent(5)
	if err != nil {
		t.Fatalf("Recent failed: %v", err)
	}
	if len(runs) != 1 {
		t.Fatalf("expected 1 run, got %d", len(runs))
	}
	if runs[0].Succeeded != 2 || runs[0].Failed != 1 || runs[0].FinishedAt == nil {
		t.Errorf("unexpected run: %+v", runs[0])
	}

	if err := repo.Start(&models.ExportRun{}); !errors.Is(err, shared.ErrValidation) {
		t.Errorf("expected ErrValidation for missing format, got %v", err)
	}
	if err := repo.Finish(&models.ExportRun{RunID: "missing"}); err == nil {
		t.Error("expected error finishing unknown run")
	}
}
