package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/list"
	"github.com/desertthunder/coursemap/internal/models"
	"github.com/desertthunder/coursemap/internal/shared"
)

var (
	_ list.Item = courseItem{}
)

// courseItem wraps [models.CourseSummary] to implement [list.Item].
type courseItem struct {
	course models.CourseSummary
}

func (i courseItem) FilterValue() string { return i.course.Title + " " + i.course.RegionName }
func (i courseItem) Title() string       { return i.course.Title }
func (i courseItem) Description() string {
	parts := make([]string, 0, 4)
	if i.course.RegionName != "" {
		parts = append(parts, i.course.RegionName)
	}
	if i.course.EstimatedCost > 0 {
		parts = append(parts, shared.FormatWon(i.course.EstimatedCost))
	}
	if i.course.DurationMinutes > 0 {
		parts = append(parts, shared.FormatMinutes(i.course.DurationMinutes))
	}
	parts = append(parts, fmt.Sprintf("♥ %d", i.course.LikeCount))
	return strings.Join(parts, " • ")
}

func courseItems(courses []models.CourseSummary) []list.Item {
	items := make([]list.Item, len(courses))
	for i, c := range courses {
		items[i] = courseItem{course: c}
	}
	return items
}

// spotLine renders a spot row for the detail and editor panels.
func spotLine(s models.Spot) string {
	title := s.Title
	if title == "" {
		title = "(untitled)"
	}
	line := fmt.Sprintf("%d. %s", s.OrderNo, title)
	var extra []string
	if s.StayMinutes > 0 {
		extra = append(extra, shared.FormatMinutes(s.StayMinutes))
	}
	if s.Price > 0 {
		extra = append(extra, shared.FormatWon(s.Price))
	}
	if _, ok := s.Coordinate(); !ok {
		extra = append(extra, "no location")
	}
	if len(extra) > 0 {
		line += " [" + strings.Join(extra, ", ") + "]"
	}
	return line
}
