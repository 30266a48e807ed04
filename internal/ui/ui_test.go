package ui

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/desertthunder/coursemap/internal/catalog"
	"github.com/desertthunder/coursemap/internal/editor"
	"github.com/desertthunder/coursemap/internal/formatter"
	"github.com/desertthunder/coursemap/internal/mapview"
	"github.com/desertthunder/coursemap/internal/models"
	"github.com/desertthunder/coursemap/internal/shared"
	"github.com/desertthunder/coursemap/internal/store"
	"github.com/desertthunder/coursemap/internal/tasks"
)

type fakeCourses struct {
	mu         sync.Mutex
	courses    map[string]*models.CourseDetails
	categories []models.Category
	like       models.LikeState
	likeErr    error
	created    int
	sent       []models.CourseRequest
}

func (f *fakeCourses) List(_ context.Context, q models.CourseQuery) (models.Page[models.CourseSummary], error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	page := models.Page[models.CourseSummary]{Number: q.Page, TotalPages: 1, Last: true}
	for _, c := range f.courses {
		page.Content = append(page.Content, c.Summarize())
	}
	return page, nil
}

func (f *fakeCourses) Get(_ context.Context, id string) (*models.CourseDetails, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	c, ok := f.courses[id]
	if !ok {
		return nil, shared.ErrNotFound
	}
	copied := *c
	return &copied, nil
}

func (f *fakeCourses) Create(_ context.Context, _ string, req models.CourseRequest) (*models.CourseDetails, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.created++
	f.sent = append(f.sent, req)
	return &models.CourseDetails{ID: "new", Title: req.Title, Spots: req.Spots}, nil
}

// Update answers like a backend that replies 204 No Content.
func (f *fakeCourses) Update(_ context.Context, _ string, _ string, req models.CourseRequest) (*models.CourseDetails, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sent = append(f.sent, req)
	return nil, nil
}

func (f *fakeCourses) Delete(context.Context, string, string) error {
	return shared.ErrNotImplemented
}

func (f *fakeCourses) ToggleLike(context.Context, string, string) (models.LikeState, error) {
	return f.like, f.likeErr
}

func (f *fakeCourses) Recommendations(context.Context, string) (*models.Recommendations, error) {
	return nil, shared.ErrNotImplemented
}

func (f *fakeCourses) Categories(context.Context) ([]models.Category, error) {
	return f.categories, nil
}

type staticToken string

func (s staticToken) Token() string { return string(s) }

type memoryDrafts struct {
	saved []*models.DraftRecord
}

func (d *memoryDrafts) Save(r *models.DraftRecord) error {
	d.saved = append(d.saved, r)
	return nil
}

func coord(v float64) *float64 { return &v }

func sampleCourse() *models.CourseDetails {
	return &models.CourseDetails{
		ID:        "c1",
		Title:     "Seongsu walk",
		LikeCount: 5,
		Spots: []models.Spot{
			{OrderNo: 1, Title: "Cafe", Lat: coord(37.544), Lng: coord(127.055), Price: 6000, StayMinutes: 40},
			{OrderNo: 2, Title: "Gallery", Lat: coord(37.546), Lng: coord(127.058), Price: 0, StayMinutes: 60},
		},
	}
}

// publishableCourse is sampleCourse with every field a submit requires.
func publishableCourse() *models.CourseDetails {
	c := sampleCourse()
	c.Summary = "Coffee and art"
	c.CategoryID = "cat-date"
	c.CoverImageURL = "https://img.example.com/c1.jpg"
	c.RegionCode = "SEOUL_SEONGDONG"
	return c
}

func newTestModel(t *testing.T, api *fakeCourses, token string) *Model {
	t.Helper()
	regions := catalog.DefaultRegions()
	courses := store.NewCourseStore(api, staticToken(token), nil)
	return NewModel(context.Background(), Deps{
		Courses:   courses,
		Tokens:    staticToken(token),
		API:       api,
		Engine:    tasks.NewCourseEngine(api, nil, nil),
		Drafts:    &memoryDrafts{},
		Validator: editor.NewValidator(regions, shared.EditorConfig{MinSpots: 2, MaxTitleLength: 20}),
		Regions:   regions,
		Export:    tasks.BulkExportOpts{Format: formatter.FormatJSON, OutputDir: t.TempDir(), NumWorkers: 1},
	})
}

func runes(s string) tea.KeyMsg { return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)} }

func press(m *Model, keys ...tea.KeyMsg) tea.Cmd {
	var cmd tea.Cmd
	for _, k := range keys {
		_, cmd = m.Update(k)
	}
	return cmd
}

func TestCourseList(t *testing.T) {
	api := &fakeCourses{courses: map[string]*models.CourseDetails{"c1": sampleCourse()}}

	t.Run("fetched page fills the list", func(t *testing.T) {
		m := newTestModel(t, api, "")
		m.Update(m.Init()())

		require.True(t, m.listReady)
		assert.Len(t, m.courseList.Items(), 1)
		c, ok := m.selectedCourse()
		require.True(t, ok)
		assert.Equal(t, "c1", c.ID)
	})

	t.Run("enter opens the detail view", func(t *testing.T) {
		m := newTestModel(t, api, "")
		m.Update(m.Init()())

		cmd := press(m, tea.KeyMsg{Type: tea.KeyEnter})
		require.NotNil(t, cmd)
		assert.Equal(t, DetailView, m.view)
		assert.Equal(t, "c1", m.detailID)
	})

	t.Run("n opens an empty editor", func(t *testing.T) {
		m := newTestModel(t, api, "")
		m.Update(m.Init()())

		press(m, runes("n"))
		assert.Equal(t, EditorView, m.view)
		require.NotNil(t, m.draft)
		assert.Equal(t, 0, m.draft.Spots.Len())
	})

	t.Run("course item description", func(t *testing.T) {
		item := courseItem{course: models.CourseSummary{Title: "A", RegionName: "성동구", LikeCount: 3}}
		assert.Equal(t, "성동구 • ♥ 3", item.Description())
	})
}

func TestDetailView(t *testing.T) {
	t.Run("fetched course pins located spots", func(t *testing.T) {
		api := &fakeCourses{courses: map[string]*models.CourseDetails{"c1": sampleCourse()}}
		m := newTestModel(t, api, "")

		m.Update(m.openDetail("c1")())

		markers := m.detailView.Markers()
		require.Len(t, markers, 2)
		assert.Equal(t, []models.LatLng{markers[0].Position, markers[1].Position}, m.detailView.Path())
		assert.Equal(t, mapview.SizeLarge, markers[0].Size)
		assert.Equal(t, mapview.SizeNormal, markers[1].Size)
		assert.Contains(t, m.View(), "Seongsu walk")

		press(m, tea.KeyMsg{Type: tea.KeyTab})
		assert.Equal(t, 2, m.activeSpot)
		assert.Equal(t, mapview.SizeLarge, m.detailView.Markers()[1].Size)

		press(m, tea.KeyMsg{Type: tea.KeyTab})
		assert.Equal(t, 1, m.activeSpot)
	})

	t.Run("response for another course is ignored", func(t *testing.T) {
		api := &fakeCourses{courses: map[string]*models.CourseDetails{"c1": sampleCourse()}}
		m := newTestModel(t, api, "")

		first := m.openDetail("c1")
		m.openDetail("c2")
		m.Update(first())

		assert.Empty(t, m.detailView.Markers())
		assert.Contains(t, m.View(), "Loading course")
	})

	t.Run("like commits the server state", func(t *testing.T) {
		api := &fakeCourses{
			courses: map[string]*models.CourseDetails{"c1": sampleCourse()},
			like:    models.LikeState{Liked: true, LikeCount: 9},
		}
		m := newTestModel(t, api, "token")
		m.Update(m.openDetail("c1")())

		m.Update(m.toggleLike("c1")())
		assert.Equal(t, models.LikeState{Liked: true, LikeCount: 9}, m.deps.Courses.Like("c1"))
		assert.Equal(t, store.LikeCommitted, m.deps.Courses.Transition("c1"))
		assert.Contains(t, m.View(), "♥ 9")
	})

	t.Run("failed like rolls back and reports", func(t *testing.T) {
		api := &fakeCourses{
			courses: map[string]*models.CourseDetails{"c1": sampleCourse()},
			likeErr: errors.New("boom"),
		}
		m := newTestModel(t, api, "token")
		m.Update(m.openDetail("c1")())

		m.Update(m.toggleLike("c1")())
		assert.Equal(t, models.LikeState{Liked: false, LikeCount: 5}, m.deps.Courses.Like("c1"))
		assert.Contains(t, m.status, "Like failed")
		assert.Contains(t, m.View(), "not saved")
	})

	t.Run("like without a session asks to sign in", func(t *testing.T) {
		api := &fakeCourses{courses: map[string]*models.CourseDetails{"c1": sampleCourse()}}
		m := newTestModel(t, api, "")
		m.Update(m.openDetail("c1")())

		m.Update(m.toggleLike("c1")())
		assert.Contains(t, m.status, "Sign in")
	})

	t.Run("esc clears the detail", func(t *testing.T) {
		api := &fakeCourses{courses: map[string]*models.CourseDetails{"c1": sampleCourse()}}
		m := newTestModel(t, api, "")
		m.Update(m.openDetail("c1")())
		provider := m.detailMap

		press(m, tea.KeyMsg{Type: tea.KeyEsc})
		assert.Equal(t, CourseListView, m.view)
		assert.Zero(t, provider.ListenerCount())
		course, err := m.deps.Courses.Detail()
		assert.Nil(t, course)
		assert.NoError(t, err)
	})

	t.Run("e edits the loaded course", func(t *testing.T) {
		api := &fakeCourses{courses: map[string]*models.CourseDetails{"c1": sampleCourse()}}
		m := newTestModel(t, api, "")
		m.Update(m.openDetail("c1")())

		press(m, runes("e"))
		require.Equal(t, EditorView, m.view)
		assert.Equal(t, "c1", m.draft.CourseID)
		assert.Equal(t, 2, m.draft.Spots.Len())
		assert.Len(t, m.editView.Markers(), 2)
	})
}

func TestEditorView(t *testing.T) {
	open := func(t *testing.T) *Model {
		m := newTestModel(t, &fakeCourses{}, "token")
		m.openEditor(editor.NewCourseDraft(), CourseListView)
		return m
	}

	t.Run("enter adds a spot at the cursor", func(t *testing.T) {
		m := open(t)
		want := m.editMap.CellToLatLng(m.cursor)

		press(m, tea.KeyMsg{Type: tea.KeyEnter})
		require.Equal(t, 1, m.draft.Spots.Len())
		got, ok := m.draft.Spots.Spots()[0].Coordinate()
		require.True(t, ok)
		assert.Equal(t, want, got)
		assert.Equal(t, 1, m.selected)
		assert.Len(t, m.editView.Markers(), 1)
	})

	t.Run("K and J reorder, x deletes", func(t *testing.T) {
		m := open(t)
		press(m, tea.KeyMsg{Type: tea.KeyEnter}, runes("l"), runes("l"), runes("l"), tea.KeyMsg{Type: tea.KeyEnter})
		require.Equal(t, 2, m.draft.Spots.Len())
		assert.Equal(t, 2, m.selected)
		second, _ := m.draft.Spots.Spots()[1].Coordinate()

		press(m, runes("K"))
		assert.Equal(t, 1, m.selected)
		first, _ := m.draft.Spots.Spots()[0].Coordinate()
		assert.Equal(t, second, first)

		press(m, runes("K"))
		assert.Equal(t, 1, m.selected)

		press(m, runes("J"))
		assert.Equal(t, 2, m.selected)

		press(m, runes("x"))
		assert.Equal(t, 1, m.draft.Spots.Len())
		assert.Equal(t, 1, m.selected)
		assert.Len(t, m.editView.Markers(), 1)
	})

	t.Run("m drags the selected spot to the cursor", func(t *testing.T) {
		m := open(t)
		press(m, tea.KeyMsg{Type: tea.KeyEnter}, runes("j"), runes("j"))
		want := m.editMap.CellToLatLng(m.cursor)

		press(m, runes("m"))
		got, _ := m.draft.Spots.Spots()[0].Coordinate()
		assert.Equal(t, want, got)
	})

	t.Run("m on a stale spot logs and changes nothing", func(t *testing.T) {
		m := open(t)
		press(m, tea.KeyMsg{Type: tea.KeyEnter})
		before := m.draft.Spots.Spots()

		var buf bytes.Buffer
		m.logger = log.New(&buf)
		m.selected = 3
		press(m, runes("j"), runes("m"))

		assert.Equal(t, before, m.draft.Spots.Spots())
		assert.Contains(t, buf.String(), "relocate ignored")
	})

	t.Run("cursor at the edge pans the map", func(t *testing.T) {
		m := open(t)
		m.cursor = mapview.Cell{Col: 0, Row: 0}
		before := m.editMap.Viewport().Center

		press(m, runes("h"))
		assert.Equal(t, mapview.Cell{Col: 0, Row: 0}, m.cursor)
		assert.Less(t, m.editMap.Viewport().Center.Lng, before.Lng)
	})

	t.Run("t renames the selected spot", func(t *testing.T) {
		m := open(t)
		press(m, tea.KeyMsg{Type: tea.KeyEnter}, runes("t"))
		require.Equal(t, inputSpotTitle, m.inputMode)

		press(m, runes("Cafe"), tea.KeyMsg{Type: tea.KeyEnter})
		assert.Equal(t, inputNone, m.inputMode)
		assert.Equal(t, "Cafe", m.draft.Spots.Spots()[0].Title)
	})

	t.Run("esc in the prompt keeps the title", func(t *testing.T) {
		m := open(t)
		m.draft.Title = "Before"
		press(m, runes("T"), runes("!"), tea.KeyMsg{Type: tea.KeyEsc})
		assert.Equal(t, "Before", m.draft.Title)
		assert.Equal(t, EditorView, m.view)
	})

	t.Run("invalid draft is not submitted", func(t *testing.T) {
		api := &fakeCourses{}
		m := newTestModel(t, api, "token")
		m.openEditor(editor.NewCourseDraft(), CourseListView)
		press(m, tea.KeyMsg{Type: tea.KeyEnter})

		cmd := press(m, runes("s"))
		assert.Nil(t, cmd)
		assert.NotEmpty(t, m.problems)
		assert.Zero(t, api.created)
	})

	t.Run("enter keeps the route through the spots", func(t *testing.T) {
		m := open(t)
		press(m, tea.KeyMsg{Type: tea.KeyEnter})
		assert.Empty(t, m.editView.Path())

		press(m, runes("l"), runes("l"), tea.KeyMsg{Type: tea.KeyEnter})
		assert.Equal(t, m.draft.Spots.Coordinates(), m.editView.Path())
		assert.Contains(t, m.editMap.Render(nil), "-")
	})

	t.Run("prompts fill the course fields", func(t *testing.T) {
		api := &fakeCourses{categories: []models.Category{{ID: "cat-date", Name: "Date", Slug: "date"}}}
		m := newTestModel(t, api, "token")
		m.openEditor(editor.NewCourseDraft(), CourseListView)

		press(m, runes("D"), runes("Coffee and art"), tea.KeyMsg{Type: tea.KeyEnter})
		assert.Equal(t, "Coffee and art", m.draft.Summary)

		press(m, runes("g"), runes("seoul"), tea.KeyMsg{Type: tea.KeyEnter})
		assert.Equal(t, "SEOUL", m.draft.MajorRegion)
		assert.Contains(t, m.status, "SEOUL_SEONGDONG")

		press(m, runes("g"), runes("/SEOUL_SEONGDONG"), tea.KeyMsg{Type: tea.KeyEnter})
		assert.Equal(t, "SEOUL_SEONGDONG", m.draft.SubRegion)

		press(m, runes("g"), tea.KeyMsg{Type: tea.KeyCtrlU}, runes("ATLANTIS"), tea.KeyMsg{Type: tea.KeyEnter})
		assert.Equal(t, "SEOUL", m.draft.MajorRegion, "unknown region keeps the old one")
		assert.Contains(t, m.status, "ATLANTIS")

		press(m, runes("c"), runes("cover.jpg"), tea.KeyMsg{Type: tea.KeyEnter})
		assert.Empty(t, m.draft.CoverImageURL)
		press(m, runes("c"), tea.KeyMsg{Type: tea.KeyCtrlU}, runes("https://img.example.com/c.jpg"), tea.KeyMsg{Type: tea.KeyEnter})
		assert.Equal(t, "https://img.example.com/c.jpg", m.draft.CoverImageURL)

		cmd := press(m, runes("C"), runes("date"), tea.KeyMsg{Type: tea.KeyEnter})
		require.NotNil(t, cmd)
		m.Update(cmd())
		assert.Equal(t, "cat-date", m.draft.CategoryID)

		cmd = press(m, runes("C"), runes("hiking"), tea.KeyMsg{Type: tea.KeyEnter})
		require.NotNil(t, cmd)
		m.Update(cmd())
		assert.Equal(t, "cat-date", m.draft.CategoryID)
		assert.Contains(t, m.status, "hiking")

		assert.Contains(t, m.View(), "Coffee and art")
	})

	t.Run("prompts set spot price and stay", func(t *testing.T) {
		m := open(t)
		press(m, tea.KeyMsg{Type: tea.KeyEnter})

		press(m, runes("p"), tea.KeyMsg{Type: tea.KeyCtrlU}, runes("6000"), tea.KeyMsg{Type: tea.KeyEnter})
		press(m, runes("y"), tea.KeyMsg{Type: tea.KeyCtrlU}, runes("45"), tea.KeyMsg{Type: tea.KeyEnter})
		spot := m.draft.Spots.Spots()[0]
		assert.Equal(t, 6000, spot.Price)
		assert.Equal(t, 45, spot.StayMinutes)

		press(m, runes("p"), tea.KeyMsg{Type: tea.KeyCtrlU}, runes("-5"), tea.KeyMsg{Type: tea.KeyEnter})
		assert.Equal(t, 6000, m.draft.Spots.Spots()[0].Price)
		assert.NotEmpty(t, m.status)

		_, _, editing := m.draft.Spots.Editing()
		assert.False(t, editing, "rejected value closes the edit")
	})

	t.Run("w saves the draft payload", func(t *testing.T) {
		m := open(t)
		m.draft.Title = "Saved"
		press(m, tea.KeyMsg{Type: tea.KeyEnter})

		cmd := press(m, runes("w"))
		require.NotNil(t, cmd)
		m.Update(cmd())

		drafts := m.deps.Drafts.(*memoryDrafts)
		require.Len(t, drafts.saved, 1)
		assert.Equal(t, m.draft.ID, drafts.saved[0].DraftID)
		assert.Equal(t, "Saved", drafts.saved[0].Title)
		assert.Contains(t, m.status, "Draft saved")
	})

	t.Run("esc releases the map listeners", func(t *testing.T) {
		m := open(t)
		provider := m.editMap
		require.NotZero(t, provider.ListenerCount())

		press(m, tea.KeyMsg{Type: tea.KeyEsc})
		assert.Equal(t, CourseListView, m.view)
		assert.Zero(t, provider.ListenerCount())
	})
}

func TestEditorSubmit(t *testing.T) {
	edit := func(t *testing.T, api *fakeCourses) *Model {
		m := newTestModel(t, api, "token")
		m.Update(m.openDetail("c1")())
		press(m, runes("e"))
		require.Equal(t, EditorView, m.view)
		return m
	}

	t.Run("empty update answer opens the course", func(t *testing.T) {
		api := &fakeCourses{courses: map[string]*models.CourseDetails{"c1": publishableCourse()}}
		m := edit(t, api)

		cmd := press(m, runes("s"))
		require.NotNil(t, cmd)
		require.Empty(t, m.problems)

		var next tea.Cmd
		require.NotPanics(t, func() { _, next = m.Update(cmd()) })
		assert.NotNil(t, next)
		assert.Equal(t, DetailView, m.view)
		assert.Equal(t, "c1", m.detailID)
		assert.Nil(t, m.draft)
		require.Len(t, api.sent, 1)
		assert.Zero(t, api.created)
	})

	t.Run("missing course in the result falls back to the draft", func(t *testing.T) {
		m := newTestModel(t, &fakeCourses{}, "token")

		d := editor.NewCourseDraft()
		d.CourseID = "c9"
		m.openEditor(d, CourseListView)
		m.submitting = true
		require.NotPanics(t, func() { m.Update(draftSubmittedMsg(nil, nil)) })
		assert.False(t, m.submitting)
		assert.Equal(t, DetailView, m.view)
		assert.Equal(t, "c9", m.detailID)

		m.openEditor(editor.NewCourseDraft(), CourseListView)
		m.Update(draftSubmittedMsg(nil, nil))
		assert.Equal(t, CourseListView, m.view)
	})

	t.Run("request is taken when s is pressed", func(t *testing.T) {
		api := &fakeCourses{courses: map[string]*models.CourseDetails{"c1": publishableCourse()}}
		m := edit(t, api)

		cmd := press(m, runes("s"))
		require.NotNil(t, cmd)
		assert.True(t, m.submitting)

		press(m, runes("x"), runes("T"), tea.KeyMsg{Type: tea.KeyEnter})
		assert.Equal(t, 2, m.draft.Spots.Len(), "editing is locked while submitting")
		assert.Equal(t, inputNone, m.inputMode)

		require.NoError(t, m.draft.Spots.Delete(1))
		m.draft.Title = "Changed"

		m.Update(cmd())
		require.Len(t, api.sent, 1)
		assert.Equal(t, "Seongsu walk", api.sent[0].Title)
		assert.Len(t, api.sent[0].Spots, 2)
		assert.False(t, m.submitting)
	})

	t.Run("failed submit unlocks the editor", func(t *testing.T) {
		api := &fakeCourses{courses: map[string]*models.CourseDetails{"c1": publishableCourse()}}
		m := edit(t, api)

		press(m, runes("s"))
		m.Update(draftSubmittedMsg(nil, shared.ErrAPIRequest))
		assert.False(t, m.submitting)
		assert.Equal(t, EditorView, m.view)

		press(m, runes("x"))
		assert.Equal(t, 1, m.draft.Spots.Len())
	})
}

func TestExportView(t *testing.T) {
	api := &fakeCourses{courses: map[string]*models.CourseDetails{"c1": sampleCourse()}}
	m := newTestModel(t, api, "")

	cmd := m.startExport([]string{"c1"})
	require.Equal(t, ExportView, m.view)
	for cmd != nil {
		_, cmd = m.Update(cmd())
	}

	require.NoError(t, m.exportErr)
	require.NotNil(t, m.exported)
	assert.Equal(t, 1, m.exported.SuccessfulExports)
	_, err := os.Stat(filepath.Join(m.exported.OutputDirectory, tasks.ManifestFile))
	assert.NoError(t, err)
	assert.Contains(t, m.View(), "Export complete")

	press(m, tea.KeyMsg{Type: tea.KeyEsc})
	assert.Equal(t, CourseListView, m.view)
}
