package ui

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/desertthunder/coursemap/internal/editor"
	"github.com/desertthunder/coursemap/internal/mapview"
	"github.com/desertthunder/coursemap/internal/models"
	"github.com/desertthunder/coursemap/internal/shared"
	"github.com/desertthunder/coursemap/internal/store"
)

func (m *Model) initialViewport() mapview.Viewport {
	center := mapview.DefaultCenter
	if m.deps.Map.DefaultLat != 0 || m.deps.Map.DefaultLng != 0 {
		center = models.LatLng{Lat: m.deps.Map.DefaultLat, Lng: m.deps.Map.DefaultLng}
	}
	zoom := m.deps.Map.DefaultZoom
	if zoom == 0 {
		zoom = 13
	}
	return mapview.Viewport{Center: center, Zoom: zoom}
}

func (m *Model) openDetail(id string) tea.Cmd {
	m.closeDetailMap()

	v := m.initialViewport()
	m.detailID = id
	m.activeSpot = 1
	m.detailMap = mapview.NewGridProvider(m.deps.Map.GridWidth, m.deps.Map.GridHeight, v)
	m.detailView = mapview.NewAdapter(m.detailMap, v)
	m.detailView.Bind(mapview.Handlers{})
	m.status = ""
	m.view = DetailView

	courses := m.deps.Courses
	return func() tea.Msg {
		course, err := courses.FetchCourseDetails(m.ctx, id)
		return detailFetchedMsg(id, course, err)
	}
}

func (m *Model) closeDetailMap() {
	if m.detailView != nil {
		m.detailView.Close()
	}
	m.detailMap, m.detailView = nil, nil
}

func (m *Model) leaveDetail() {
	m.deps.Courses.ClearCourseDetails()
	m.closeDetailMap()
	m.detailID = ""
	m.status = ""
	m.view = CourseListView
}

// syncDetailMarkers pins every located spot, drawing the active one large. fit recenters on the course.
func (m *Model) syncDetailMarkers(fit bool) {
	course, err := m.deps.Courses.Detail()
	if err != nil || course == nil || course.ID != m.detailID || m.detailView == nil {
		return
	}

	markers := spotMarkers(course.Spots, false)
	var route []models.LatLng
	for _, mk := range markers {
		route = append(route, mk.Position)
	}
	m.detailView.SetPath(route)
	m.detailView.SetMarkers(markers, strconv.Itoa(m.activeSpot))
	if fit && len(route) > 0 {
		m.detailView.FitTo(route)
	}
}

func spotMarkers(spots []models.Spot, draggable bool) []mapview.Marker {
	markers := make([]mapview.Marker, 0, len(spots))
	for _, s := range spots {
		p, ok := s.Coordinate()
		if !ok {
			continue
		}
		markers = append(markers, mapview.Marker{
			ID:        strconv.Itoa(s.OrderNo),
			Position:  p,
			Label:     strconv.Itoa(s.OrderNo),
			Draggable: draggable,
		})
	}
	return markers
}

func (m *Model) handleDetailKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	course, _ := m.deps.Courses.Detail()
	if course != nil && course.ID != m.detailID {
		course = nil
	}

	switch {
	case key.Matches(msg, m.keys.quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.back):
		m.leaveDetail()
		return m, nil
	case key.Matches(msg, m.keys.like):
		if m.detailID == "" {
			return m, nil
		}
		return m, tea.Batch(m.toggleLike(m.detailID), redraw())
	case key.Matches(msg, m.keys.edit):
		if course == nil {
			return m, nil
		}
		m.closeDetailMap()
		m.openEditor(editor.DraftFromCourse(course, m.deps.Regions), DetailView)
		return m, nil
	case key.Matches(msg, m.keys.next), key.Matches(msg, m.keys.prev):
		if course == nil || len(course.Spots) == 0 {
			return m, nil
		}
		step := 1
		if key.Matches(msg, m.keys.prev) {
			step = -1
		}
		n := len(course.Spots)
		m.activeSpot = (m.activeSpot-1+step+n)%n + 1
		m.syncDetailMarkers(false)
	case key.Matches(msg, m.keys.zoomIn):
		if m.detailMap != nil {
			m.detailMap.Zoom(1)
		}
	case key.Matches(msg, m.keys.zoomOut):
		if m.detailMap != nil {
			m.detailMap.Zoom(-1)
		}
	}
	return m, nil
}

func (m *Model) toggleLike(id string) tea.Cmd {
	courses := m.deps.Courses
	return func() tea.Msg {
		state, err := courses.ToggleLike(m.ctx, id)
		return likeToggledMsg(id, state, err)
	}
}

func (m *Model) renderDetail() string {
	course, err := m.deps.Courses.Detail()
	helpView := m.help.ShortHelpView([]key.Binding{m.keys.like, m.keys.next, m.keys.edit, m.keys.back, m.keys.quit})

	if err != nil {
		return fmt.Sprintf("%s\n\n%s", styles.err.Render(fmt.Sprintf("Could not load course: %v", err)), helpView)
	}
	if course == nil || course.ID != m.detailID {
		return "Loading course..."
	}

	var b strings.Builder
	b.WriteString(styles.title.Render(course.Title) + "\n")
	if course.Summary != "" {
		b.WriteString(course.Summary + "\n")
	}

	meta := []string{}
	if course.RegionName != "" {
		meta = append(meta, course.RegionName)
	}
	if course.CreatorDisplayName != "" {
		meta = append(meta, "by "+course.CreatorDisplayName)
	}
	if len(course.Tags) > 0 {
		meta = append(meta, "#"+strings.Join(course.Tags, " #"))
	}
	if len(meta) > 0 {
		b.WriteString(styles.help.Render(strings.Join(meta, " • ")) + "\n")
	}
	b.WriteString(m.likeLine(course.ID) + "\n\n")

	for _, s := range course.Spots {
		line := spotLine(s)
		if s.OrderNo == m.activeSpot {
			line = styles.active.Render("› " + line)
		} else {
			line = "  " + line
		}
		b.WriteString(line + "\n")
	}
	fmt.Fprintf(&b, "\nTotal: %s, %s\n", shared.FormatWon(course.TotalCost()), shared.FormatMinutes(course.TotalStayMinutes()))
	if m.status != "" {
		b.WriteString(m.status + "\n")
	}

	panel := b.String()
	if m.detailMap != nil {
		panel = lipgloss.JoinHorizontal(lipgloss.Top, styles.frame.Render(m.detailMap.Render(nil)), "  ", panel)
	}
	return fmt.Sprintf("%s\n\n%s", panel, helpView)
}

func (m *Model) likeLine(id string) string {
	state := m.deps.Courses.Like(id)
	heart := "♡"
	if state.Liked {
		heart = "♥"
	}
	line := fmt.Sprintf("%s %d", heart, state.LikeCount)
	if state.Liked {
		line = styles.liked.Render(line)
	}
	switch m.deps.Courses.Transition(id) {
	case store.LikePending:
		line += styles.help.Render(" (saving...)")
	case store.LikeRolledBack:
		line += styles.warn.Render(" (not saved)")
	}
	return line
}
