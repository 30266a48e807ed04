package ui

import (
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/desertthunder/coursemap/internal/catalog"
	"github.com/desertthunder/coursemap/internal/editor"
	"github.com/desertthunder/coursemap/internal/mapview"
	"github.com/desertthunder/coursemap/internal/models"
	"github.com/desertthunder/coursemap/internal/shared"
)

type inputMode int

const (
	inputNone inputMode = iota
	inputSpotTitle
	inputCourseTitle
	inputSummary
	inputCategory
	inputRegion
	inputCover
	inputSpotPrice
	inputSpotStay
)

// openEditor starts editing d on a fresh map. esc returns to from.
func (m *Model) openEditor(d *editor.CourseDraft, from ViewState) {
	m.closeEditMap()

	v := m.initialViewport()
	if points := d.Spots.Coordinates(); len(points) > 0 {
		v.Center = mapview.Centroid(points)
	}

	m.draft = d
	m.returnTo = from
	m.problems = nil
	m.status = ""
	m.inputMode = inputNone
	m.submitting = false
	m.selected = min(1, d.Spots.Len())
	m.editMap = mapview.NewGridProvider(m.deps.Map.GridWidth, m.deps.Map.GridHeight, v)
	w, h := m.editMap.Size()
	m.cursor = mapview.Cell{Col: w / 2, Row: h / 2}
	m.editView = mapview.NewAdapter(m.editMap, v)
	m.editView.Bind(mapview.Handlers{
		OnClick:   m.addSpotAt,
		OnDragEnd: m.relocateSpot,
		OnEmpty:   func(empty bool) { m.mapEmpty = empty },
	})
	m.syncEditorMarkers()
	m.view = EditorView
}

func (m *Model) closeEditMap() {
	if m.editView != nil {
		m.editView.Close()
	}
	m.editMap, m.editView = nil, nil
}

func (m *Model) leaveEditor() tea.Cmd {
	m.closeEditMap()
	m.draft = nil
	m.inputMode = inputNone
	m.submitting = false
	m.status = ""

	if m.returnTo == DetailView && m.detailID != "" {
		return m.openDetail(m.detailID)
	}
	m.view = CourseListView
	return nil
}

func (m *Model) addSpotAt(p models.LatLng) {
	s := m.draft.Spots.AddAt(p)
	m.selected = s.OrderNo
	m.problems = nil
}

func (m *Model) relocateSpot(id string, p models.LatLng) {
	orderNo, err := strconv.Atoi(id)
	if err != nil {
		return
	}
	if err := m.draft.Spots.SetCoordinate(orderNo, p); err != nil {
		m.logger.Warn("drag ignored", "spot", id, "error", err)
	}
}

func (m *Model) syncEditorMarkers() {
	if m.editView == nil || m.draft == nil {
		return
	}
	m.editView.SetPath(m.draft.Spots.Coordinates())
	m.editView.SetMarkers(spotMarkers(m.draft.Spots.Spots(), true), strconv.Itoa(m.selected))
}

func (m *Model) moveCursor(dCol, dRow int) {
	w, h := m.editMap.Size()
	col, row := m.cursor.Col+dCol, m.cursor.Row+dRow
	if col < 0 || col >= w || row < 0 || row >= h {
		m.editMap.Pan(dCol, dRow)
		return
	}
	m.cursor = mapview.Cell{Col: col, Row: row}
}

func (m *Model) handleEditorKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.inputMode != inputNone {
		return m.handleInputKeys(msg)
	}
	if m.submitting {
		if msg.String() == "ctrl+c" {
			return m, tea.Quit
		}
		return m, nil
	}

	spots := m.draft.Spots
	switch {
	case msg.String() == "ctrl+c":
		return m, tea.Quit
	case key.Matches(msg, m.keys.back):
		return m, m.leaveEditor()
	case key.Matches(msg, m.keys.up):
		m.moveCursor(0, -1)
	case key.Matches(msg, m.keys.down):
		m.moveCursor(0, 1)
	case key.Matches(msg, m.keys.left):
		m.moveCursor(-1, 0)
	case key.Matches(msg, m.keys.right):
		m.moveCursor(1, 0)
	case key.Matches(msg, m.keys.zoomIn):
		m.editMap.Zoom(1)
	case key.Matches(msg, m.keys.zoomOut):
		m.editMap.Zoom(-1)
	case key.Matches(msg, m.keys.enter):
		m.editMap.Click(m.cursor)
	case key.Matches(msg, m.keys.relocate):
		if m.selected > 0 && !m.editMap.Drag(strconv.Itoa(m.selected), m.cursor) {
			// Spots without a coordinate have no marker to drag yet.
			if err := spots.SetCoordinate(m.selected, m.editMap.CellToLatLng(m.cursor)); err != nil {
				m.logger.Warn("relocate ignored", "spot", m.selected, "error", err)
			}
		}
	case key.Matches(msg, m.keys.next):
		if n := spots.Len(); n > 0 {
			m.selected = m.selected%n + 1
		}
	case key.Matches(msg, m.keys.prev):
		if n := spots.Len(); n > 0 {
			m.selected = (m.selected-2+n)%n + 1
		}
	case key.Matches(msg, m.keys.moveUp):
		if err := spots.MoveUp(m.selected); err == nil && m.selected > 1 {
			m.selected--
		}
	case key.Matches(msg, m.keys.moveDown):
		if err := spots.MoveDown(m.selected); err == nil && m.selected < spots.Len() {
			m.selected++
		}
	case key.Matches(msg, m.keys.remove):
		if err := spots.Delete(m.selected); err == nil {
			m.selected = min(m.selected, spots.Len())
		}
	case key.Matches(msg, m.keys.rename):
		s, err := spots.Get(m.selected)
		if err != nil {
			return m, nil
		}
		return m, m.beginInput(inputSpotTitle, "Spot title: ", s.Title)
	case key.Matches(msg, m.keys.retitle):
		return m, m.beginInput(inputCourseTitle, "Course title: ", m.draft.Title)
	case key.Matches(msg, m.keys.summary):
		return m, m.beginInput(inputSummary, "Summary: ", m.draft.Summary)
	case key.Matches(msg, m.keys.category):
		return m, m.beginInput(inputCategory, "Category (id, slug or name): ", "")
	case key.Matches(msg, m.keys.region):
		value := m.draft.MajorRegion
		if m.draft.SubRegion != "" {
			value += "/" + m.draft.SubRegion
		}
		return m, m.beginInput(inputRegion, "Region (MAJOR or MAJOR/SUB): ", value)
	case key.Matches(msg, m.keys.cover):
		return m, m.beginInput(inputCover, "Cover image URL: ", m.draft.CoverImageURL)
	case key.Matches(msg, m.keys.price), key.Matches(msg, m.keys.stay):
		s, err := spots.Get(m.selected)
		if err != nil {
			return m, nil
		}
		if key.Matches(msg, m.keys.price) {
			return m, m.beginInput(inputSpotPrice, "Spot price (won): ", strconv.Itoa(s.Price))
		}
		return m, m.beginInput(inputSpotStay, "Spot stay (minutes): ", strconv.Itoa(s.StayMinutes))
	case key.Matches(msg, m.keys.save):
		return m, m.saveDraft()
	case key.Matches(msg, m.keys.submit):
		return m, m.submitDraft()
	default:
		return m, nil
	}

	m.syncEditorMarkers()
	return m, nil
}

func (m *Model) beginInput(mode inputMode, prompt, value string) tea.Cmd {
	m.inputMode = mode
	m.input.Prompt = prompt
	m.input.SetValue(value)
	m.input.CursorEnd()
	return m.input.Focus()
}

func (m *Model) handleInputKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEsc:
		m.inputMode = inputNone
		m.input.Blur()
		return m, nil
	case tea.KeyEnter:
		cmd := m.commitInput(strings.TrimSpace(m.input.Value()))
		m.inputMode = inputNone
		m.input.Blur()
		m.syncEditorMarkers()
		return m, cmd
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

// commitInput applies a prompt's value to the draft. Only the category lookup needs the backend.
func (m *Model) commitInput(value string) tea.Cmd {
	m.status = ""
	switch m.inputMode {
	case inputCourseTitle:
		m.draft.Title = value
	case inputSummary:
		m.draft.Summary = value
	case inputCover:
		if value != "" && !strings.HasPrefix(value, "http://") && !strings.HasPrefix(value, "https://") {
			m.status = styles.warn.Render("Upload local images with `cmap upload` and paste the URL")
			return nil
		}
		m.draft.CoverImageURL = value
	case inputRegion:
		m.setRegion(value)
	case inputCategory:
		return m.resolveCategory(value)
	case inputSpotTitle, inputSpotPrice, inputSpotStay:
		m.editSpot(value)
	}
	return nil
}

func (m *Model) editSpot(value string) {
	s, err := m.draft.Spots.BeginEdit(m.selected)
	if err != nil {
		return
	}

	if m.inputMode == inputSpotTitle {
		s.Title = value
	} else {
		n, err := strconv.Atoi(value)
		if err != nil || n < 0 {
			m.draft.Spots.Cancel()
			m.status = styles.err.Render("Enter a whole number of zero or more")
			return
		}
		if m.inputMode == inputSpotPrice {
			s.Price = n
		} else {
			s.StayMinutes = n
		}
	}

	if _, err := m.draft.Spots.Save(s); err != nil {
		m.status = styles.err.Render(err.Error())
	}
}

func (m *Model) setRegion(value string) {
	major, sub, _ := strings.Cut(strings.ToUpper(strings.ReplaceAll(value, " ", "/")), "/")

	sel := catalog.NewSelection(m.deps.Regions)
	if err := sel.SelectMajor(major); err != nil {
		m.status = styles.err.Render(err.Error())
		return
	}
	if sub != "" {
		if err := sel.SelectSub(sub); err != nil {
			m.status = styles.err.Render(err.Error())
			return
		}
	}

	m.draft.MajorRegion, m.draft.SubRegion = sel.Major(), sel.Sub()
	if sel.NeedsSub() {
		codes := []string{}
		for _, r := range sel.Options() {
			codes = append(codes, r.Code)
		}
		m.status = styles.warn.Render("Choose a sub-region: " + strings.Join(codes, ", "))
	}
}

func (m *Model) resolveCategory(ref string) tea.Cmd {
	if ref == "" {
		return nil
	}
	if m.deps.API == nil {
		m.status = styles.warn.Render("Categories are not available")
		return nil
	}

	api, ctx := m.deps.API, m.ctx
	return func() tea.Msg {
		categories, err := api.Categories(ctx)
		if err != nil {
			return categoryResolvedMsg(models.Category{}, err)
		}
		category, ok := catalog.FindCategory(categories, ref)
		if !ok {
			return categoryResolvedMsg(models.Category{}, fmt.Errorf("%w: unknown category %q", shared.ErrInvalidArgument, ref))
		}
		return categoryResolvedMsg(category, nil)
	}
}

func (m *Model) applyCategory(r categoryResult) {
	if m.draft == nil {
		return
	}
	if r.err != nil {
		m.status = styles.err.Render(r.err.Error())
		return
	}
	m.draft.CategoryID = r.category.ID
	m.status = styles.ok.Render("Category: " + r.category.Name)
}

func (m *Model) saveDraft() tea.Cmd {
	if m.deps.Drafts == nil {
		m.status = styles.warn.Render("Draft storage is not configured")
		return nil
	}

	payload, err := json.Marshal(m.draft)
	if err != nil {
		m.status = styles.err.Render(err.Error())
		return nil
	}
	record := &models.DraftRecord{
		DraftID:  m.draft.ID,
		CourseID: m.draft.CourseID,
		Title:    m.draft.Title,
		Payload:  payload,
	}
	drafts := m.deps.Drafts
	return func() tea.Msg {
		return draftSavedMsg(drafts.Save(record))
	}
}

// submitDraft validates and snapshots the draft synchronously; the command only sends the snapshot. Editing
// is locked until the result arrives.
func (m *Model) submitDraft() tea.Cmd {
	if m.deps.Validator == nil || m.deps.API == nil {
		m.status = styles.warn.Render("Submitting is not configured")
		return nil
	}

	m.problems = nil
	req, err := m.deps.Validator.Prepare(m.draft)
	if err != nil {
		var verr *editor.ValidationError
		if errors.As(err, &verr) {
			m.problems = verr.Problems
		} else {
			m.problems = []string{err.Error()}
		}
		return nil
	}

	token := ""
	if m.deps.Tokens != nil {
		token = m.deps.Tokens.Token()
	}
	if token == "" {
		m.status = styles.warn.Render("Sign in with `cmap auth login` to publish courses")
		return nil
	}

	m.status = styles.help.Render("Submitting...")
	m.submitting = true
	ctx, api, courseID := m.ctx, m.deps.API, m.draft.CourseID
	return func() tea.Msg {
		course, err := editor.Publish(ctx, api, token, courseID, req)
		return draftSubmittedMsg(course, err)
	}
}

func (m *Model) handleSubmitted(r submitResult) (tea.Model, tea.Cmd) {
	m.submitting = false
	if m.draft == nil {
		return m, nil
	}
	if r.err != nil {
		var verr *editor.ValidationError
		if errors.As(r.err, &verr) {
			m.problems = verr.Problems
			m.status = ""
		} else {
			m.status = styles.err.Render(fmt.Sprintf("Submit failed: %v", r.err))
		}
		return m, nil
	}

	courseID := m.draft.CourseID
	if r.course != nil && r.course.ID != "" {
		courseID = r.course.ID
	}
	m.logger.Info("course submitted", "id", courseID, "title", m.draft.Title)
	m.closeEditMap()
	m.draft = nil

	refresh := m.fetchCourses(m.deps.Courses.Query())
	if courseID == "" {
		m.view = CourseListView
		m.status = styles.ok.Render("Course published")
		return m, refresh
	}
	return m, tea.Batch(m.openDetail(courseID), refresh)
}

func (m *Model) renderEditor() string {
	if m.draft == nil {
		return ""
	}

	title := "New course"
	if m.draft.CourseID != "" {
		title = "Editing course"
	}
	if m.draft.Title != "" {
		title = fmt.Sprintf("%s: %s", title, m.draft.Title)
	}

	region := m.draft.MajorRegion
	if m.draft.SubRegion != "" {
		region += "/" + m.draft.SubRegion
	}

	var b strings.Builder
	b.WriteString(styles.title.Render(title) + "\n")
	for _, f := range [][2]string{
		{"Summary", m.draft.Summary},
		{"Category", m.draft.CategoryID},
		{"Region", region},
		{"Cover", m.draft.CoverImageURL},
	} {
		if f[1] == "" {
			f[1] = styles.help.Render("(none)")
		}
		fmt.Fprintf(&b, "%s: %s\n", f[0], f[1])
	}
	b.WriteString("\n")
	spots := m.draft.Spots.Spots()
	if len(spots) == 0 {
		b.WriteString(styles.help.Render("Move the cursor and press enter to add a spot") + "\n")
	}
	for _, s := range spots {
		line := spotLine(s)
		if s.OrderNo == m.selected {
			line = styles.active.Render("› " + line)
		} else {
			line = "  " + line
		}
		b.WriteString(line + "\n")
	}
	fmt.Fprintf(&b, "\nTotal: %s, %s\n",
		shared.FormatWon(m.draft.Spots.TotalCost()), shared.FormatMinutes(m.draft.Spots.TotalStayMinutes()))

	if m.mapEmpty && len(spots) > 0 {
		b.WriteString(styles.help.Render("No spots in view") + "\n")
	}
	for _, p := range m.problems {
		b.WriteString(styles.err.Render("• "+p) + "\n")
	}
	if m.status != "" {
		b.WriteString(m.status + "\n")
	}

	panel := lipgloss.JoinHorizontal(lipgloss.Top, styles.frame.Render(m.editMap.Render(&m.cursor)), "  ", b.String())

	var footer string
	if m.inputMode != inputNone {
		footer = m.input.View()
	} else {
		footer = m.help.ShortHelpView([]key.Binding{
			m.keys.enter, m.keys.next, m.keys.moveUp, m.keys.moveDown, m.keys.remove,
			m.keys.rename, m.keys.price, m.keys.stay, m.keys.save, m.keys.submit, m.keys.back,
		}) + "\n" + m.help.ShortHelpView([]key.Binding{
			m.keys.retitle, m.keys.summary, m.keys.category, m.keys.region, m.keys.cover,
		})
	}
	return fmt.Sprintf("%s\n\n%s", panel, footer)
}
