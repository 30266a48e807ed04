package ui

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/log"

	"github.com/desertthunder/coursemap/internal/catalog"
	"github.com/desertthunder/coursemap/internal/editor"
	"github.com/desertthunder/coursemap/internal/mapview"
	"github.com/desertthunder/coursemap/internal/models"
	"github.com/desertthunder/coursemap/internal/services"
	"github.com/desertthunder/coursemap/internal/shared"
	"github.com/desertthunder/coursemap/internal/store"
	"github.com/desertthunder/coursemap/internal/tasks"
)

// ViewState represents the current view in the TUI.
type ViewState int

const (
	CourseListView ViewState = iota
	DetailView
	EditorView
	ExportView
)

// pendingRedraw is how long after an optimistic change the view is redrawn.
const pendingRedraw = 30 * time.Millisecond

// DraftSaver persists editor drafts between sessions.
type DraftSaver interface {
	Save(record *models.DraftRecord) error
}

// Deps are the collaborators the TUI drives. Engine and Drafts are optional.
type Deps struct {
	Courses   *store.CourseStore
	Tokens    store.TokenSource
	API       services.CourseAPI
	Engine    *tasks.CourseEngine
	Drafts    DraftSaver
	Validator *editor.Validator
	Regions   *catalog.Regions
	Query     models.CourseQuery
	Map       shared.MapConfig
	Export    tasks.BulkExportOpts
	Logger    *log.Logger
}

// Model represents the TUI application state.
type Model struct {
	ctx    context.Context
	deps   Deps
	logger *log.Logger
	view   ViewState
	width  int
	height int
	status string
	help   help.Model
	keys   keyMap

	courseList list.Model
	listReady  bool

	detailID   string
	activeSpot int
	detailMap  *mapview.GridProvider
	detailView *mapview.Adapter

	draft      *editor.CourseDraft
	returnTo   ViewState
	selected   int
	cursor     mapview.Cell
	mapEmpty   bool
	problems   []string
	editMap    *mapview.GridProvider
	editView   *mapview.Adapter
	input      textinput.Model
	inputMode  inputMode
	submitting bool

	progressChan <-chan tasks.ProgressUpdate
	exportDone   <-chan exportResult
	progress     tasks.ProgressUpdate
	exported     *tasks.BulkExportResult
	exportErr    error
}

// NewModel creates a new TUI model with the provided dependencies.
func NewModel(ctx context.Context, deps Deps) *Model {
	logger := deps.Logger
	if logger == nil {
		logger = log.Default()
	}
	if deps.Regions == nil {
		deps.Regions = catalog.DefaultRegions()
	}
	return &Model{
		ctx:    ctx,
		deps:   deps,
		logger: logger,
		view:   CourseListView,
		help:   help.New(),
		keys:   newKeyMap(),
		input:  textinput.New(),
	}
}

// Init initializes the TUI by fetching the first page of courses.
func (m *Model) Init() tea.Cmd {
	return m.fetchCourses(m.deps.Query)
}

// Update handles incoming messages and updates the model state.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		if m.listReady {
			m.courseList.SetSize(msg.Width-4, msg.Height-6)
		}
		return m, nil

	case tea.KeyMsg:
		switch m.view {
		case CourseListView:
			return m.handleListKeys(msg)
		case DetailView:
			return m.handleDetailKeys(msg)
		case EditorView:
			return m.handleEditorKeys(msg)
		case ExportView:
			return m.handleExportKeys(msg)
		}

	case Msg:
		return m.handleMsg(msg)
	}

	return m.updateList(msg)
}

func (m *Model) handleMsg(msg Msg) (tea.Model, tea.Cmd) {
	switch msg.kind {
	case MsgCoursesFetched:
		data := msg.data.(coursesResult)
		if data.err != nil {
			m.status = styles.err.Render(fmt.Sprintf("Could not load courses: %v", data.err))
		} else {
			m.status = ""
		}
		m.setCourses(data.page)
		return m, nil

	case MsgDetailFetched:
		data := msg.data.(detailResult)
		if errors.Is(data.err, shared.ErrStaleResponse) || data.id != m.detailID {
			return m, nil
		}
		if data.err == nil {
			m.syncDetailMarkers(true)
		}
		return m, nil

	case MsgLikeToggled:
		data := msg.data.(likeResult)
		switch {
		case data.err == nil, errors.Is(data.err, shared.ErrStaleResponse):
		case errors.Is(data.err, shared.ErrNotAuthenticated):
			m.status = styles.warn.Render("Sign in with `cmap auth login` to like courses")
		default:
			m.status = styles.err.Render(fmt.Sprintf("Like failed: %v", data.err))
		}
		return m, nil

	case MsgRefresh:
		return m, nil

	case MsgDraftSaved:
		if err, _ := msg.data.(error); err != nil {
			m.status = styles.err.Render(fmt.Sprintf("Could not save draft: %v", err))
		} else {
			m.status = styles.ok.Render("Draft saved")
		}
		return m, nil

	case MsgDraftSubmitted:
		return m.handleSubmitted(msg.data.(submitResult))

	case MsgCategoryResolved:
		m.applyCategory(msg.data.(categoryResult))
		return m, nil

	case MsgProgressUpdate:
		m.progress = msg.data.(tasks.ProgressUpdate)
		return m, m.waitForProgress()

	case MsgExportComplete:
		data := msg.data.(exportResult)
		m.exported, m.exportErr = data.result, data.err
		m.progressChan, m.exportDone = nil, nil
		return m, nil
	}
	return m, nil
}

// View renders the UI based on the current view state.
func (m *Model) View() string {
	switch m.view {
	case CourseListView:
		return m.renderList()
	case DetailView:
		return m.renderDetail()
	case EditorView:
		return m.renderEditor()
	case ExportView:
		return m.renderExport()
	default:
		return ""
	}
}

func (m *Model) setCourses(page models.Page[models.CourseSummary]) {
	items := courseItems(page.Content)
	if !m.listReady {
		m.courseList = list.New(items, list.NewDefaultDelegate(), 0, 0)
		m.courseList.SetSize(max(m.width-4, 0), max(m.height-6, 0))
		m.listReady = true
	} else {
		m.courseList.SetItems(items)
	}
	m.courseList.Title = fmt.Sprintf("Courses (page %d/%d)", page.Number+1, max(page.TotalPages, 1))
}

func (m *Model) selectedCourse() (models.CourseSummary, bool) {
	if !m.listReady {
		return models.CourseSummary{}, false
	}
	item, ok := m.courseList.SelectedItem().(courseItem)
	if !ok {
		return models.CourseSummary{}, false
	}
	return item.course, true
}

func (m *Model) handleListKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.listReady && m.courseList.FilterState() == list.Filtering {
		return m.updateList(msg)
	}

	switch {
	case key.Matches(msg, m.keys.quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.enter):
		if c, ok := m.selectedCourse(); ok {
			return m, m.openDetail(c.ID)
		}
		return m, nil
	case key.Matches(msg, m.keys.newDraft):
		m.openEditor(editor.NewCourseDraft(), CourseListView)
		return m, nil
	case key.Matches(msg, m.keys.refresh):
		return m, m.fetchCourses(m.deps.Courses.Query())
	case key.Matches(msg, m.keys.nextPage):
		page, _ := m.deps.Courses.Courses()
		if page.Last {
			return m, nil
		}
		q := m.deps.Courses.Query()
		q.Page++
		return m, m.fetchCourses(q)
	case key.Matches(msg, m.keys.prevPage):
		q := m.deps.Courses.Query()
		if q.Page == 0 {
			return m, nil
		}
		q.Page--
		return m, m.fetchCourses(q)
	case key.Matches(msg, m.keys.export):
		if c, ok := m.selectedCourse(); ok {
			return m, m.startExport([]string{c.ID})
		}
		return m, nil
	}

	return m.updateList(msg)
}

func (m *Model) handleExportKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.progressChan != nil {
		return m, nil
	}
	switch {
	case key.Matches(msg, m.keys.quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.back), key.Matches(msg, m.keys.enter):
		m.view = CourseListView
		m.exported, m.exportErr = nil, nil
	}
	return m, nil
}

func (m *Model) updateList(msg tea.Msg) (tea.Model, tea.Cmd) {
	if m.view != CourseListView || !m.listReady {
		return m, nil
	}
	var cmd tea.Cmd
	m.courseList, cmd = m.courseList.Update(msg)
	return m, cmd
}

func (m *Model) fetchCourses(q models.CourseQuery) tea.Cmd {
	courses := m.deps.Courses
	return func() tea.Msg {
		page, err := courses.FetchCourses(m.ctx, q)
		return coursesFetchedMsg(page, err)
	}
}

func (m *Model) startExport(ids []string) tea.Cmd {
	if m.deps.Engine == nil {
		m.status = styles.warn.Render("Export is not configured")
		return nil
	}

	prog := make(chan tasks.ProgressUpdate, 50)
	done := make(chan exportResult, 1)
	m.progressChan, m.exportDone = prog, done
	m.progress = tasks.ProgressUpdate{}
	m.exported, m.exportErr = nil, nil
	m.view = ExportView

	engine, opts := m.deps.Engine, m.deps.Export
	go func() {
		result, err := engine.BulkExport(m.ctx, prog, ids, opts)
		close(prog)
		done <- exportResult{result, err}
	}()

	return m.waitForProgress()
}

func (m *Model) waitForProgress() tea.Cmd {
	prog, done := m.progressChan, m.exportDone
	if prog == nil {
		return nil
	}
	return func() tea.Msg {
		update, ok := <-prog
		if !ok {
			r := <-done
			return exportCompleteMsg(r.result, r.err)
		}
		return progressUpdateMsg(update)
	}
}

func redraw() tea.Cmd {
	return tea.Tick(pendingRedraw, func(time.Time) tea.Msg { return refreshMsg() })
}

func (m *Model) renderList() string {
	if !m.listReady {
		if m.status != "" {
			return fmt.Sprintf("%s\n\nPress q to quit", m.status)
		}
		return "Loading courses..."
	}

	helpKeys := []key.Binding{m.keys.enter, m.keys.newDraft, m.keys.export, m.keys.prevPage, m.keys.nextPage, m.keys.quit}
	helpView := m.help.ShortHelpView(helpKeys)
	var b strings.Builder
	b.WriteString(m.courseList.View())
	if m.status != "" {
		b.WriteString("\n" + m.status)
	}
	b.WriteString("\n\n" + helpView)
	return b.String()
}

func (m *Model) renderExport() string {
	title := styles.title.Render("Exporting Course")

	if m.progressChan != nil {
		phase := "Processing..."
		switch m.progress.Phase {
		case tasks.FetchDetails:
			phase = fmt.Sprintf("Fetching details (%d/%d)", m.progress.Step, m.progress.Total)
		case tasks.ExportCourse:
			phase = fmt.Sprintf("Writing files (%d/%d)", m.progress.Step, m.progress.Total)
		case tasks.WriteManifest:
			phase = "Writing manifest..."
		}
		return fmt.Sprintf("%s\n\n%s\n%s", title, phase, m.progress.Message)
	}

	helpView := m.help.ShortHelpView([]key.Binding{m.keys.back, m.keys.quit})
	if m.exportErr != nil {
		return fmt.Sprintf("%s\n\n%s\n\n%s", title, styles.err.Render(fmt.Sprintf("Export failed: %v", m.exportErr)), helpView)
	}
	if m.exported == nil {
		return fmt.Sprintf("%s\n\n%s", title, helpView)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "%s\n\n", styles.ok.Render("✓ Export complete"))
	fmt.Fprintf(&b, "Output: %s\n", m.exported.OutputDirectory)
	for _, r := range m.exported.Results {
		if r.Success {
			fmt.Fprintf(&b, "  • %s (%d files)\n", r.Title, len(r.Files))
		} else {
			fmt.Fprintf(&b, "  • %s\n", styles.warn.Render(fmt.Sprintf("%s: %s", r.CourseID, r.ErrorMsg)))
		}
	}
	return fmt.Sprintf("%s\n\n%s\n%s", title, b.String(), helpView)
}
