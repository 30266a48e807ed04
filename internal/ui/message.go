package ui

import (
	tea "github.com/charmbracelet/bubbletea"
	"github.com/desertthunder/coursemap/internal/models"
	"github.com/desertthunder/coursemap/internal/tasks"
)

// MsgKind enumerates all message types in the application.
type MsgKind int

// Msg represents all possible messages in the TUI (Elm-style message union).
type Msg struct {
	kind MsgKind
	data any
}

var (
	_ tea.Msg = Msg{}
)

const (
	MsgCoursesFetched MsgKind = iota
	MsgDetailFetched
	MsgLikeToggled
	MsgRefresh
	MsgDraftSaved
	MsgDraftSubmitted
	MsgProgressUpdate
	MsgExportComplete
	MsgCategoryResolved
)

type coursesResult struct {
	page models.Page[models.CourseSummary]
	err  error
}

type detailResult struct {
	id     string
	course *models.CourseDetails
	err    error
}

type likeResult struct {
	id    string
	state models.LikeState
	err   error
}

type submitResult struct {
	course *models.CourseDetails
	err    error
}

type categoryResult struct {
	category models.Category
	err      error
}

type exportResult struct {
	result *tasks.BulkExportResult
	err    error
}

// coursesFetchedMsg is the constructor for [MsgCoursesFetched]
func coursesFetchedMsg(page models.Page[models.CourseSummary], err error) Msg {
	return Msg{kind: MsgCoursesFetched, data: coursesResult{page, err}}
}

// detailFetchedMsg is the constructor for [MsgDetailFetched]
func detailFetchedMsg(id string, course *models.CourseDetails, err error) Msg {
	return Msg{kind: MsgDetailFetched, data: detailResult{id, course, err}}
}

// likeToggledMsg is the constructor for [MsgLikeToggled]
func likeToggledMsg(id string, state models.LikeState, err error) Msg {
	return Msg{kind: MsgLikeToggled, data: likeResult{id, state, err}}
}

// refreshMsg redraws after store state changed outside of Update.
func refreshMsg() Msg {
	return Msg{kind: MsgRefresh}
}

// draftSavedMsg is the constructor for [MsgDraftSaved]
func draftSavedMsg(err error) Msg {
	return Msg{kind: MsgDraftSaved, data: err}
}

// draftSubmittedMsg is the constructor for [MsgDraftSubmitted]
func draftSubmittedMsg(course *models.CourseDetails, err error) Msg {
	return Msg{kind: MsgDraftSubmitted, data: submitResult{course, err}}
}

// progressUpdateMsg is the constructor for [MsgProgressUpdate]
func progressUpdateMsg(update tasks.ProgressUpdate) Msg {
	return Msg{kind: MsgProgressUpdate, data: update}
}

// exportCompleteMsg is the constructor for [MsgExportComplete]
func exportCompleteMsg(result *tasks.BulkExportResult, err error) Msg {
	return Msg{kind: MsgExportComplete, data: exportResult{result, err}}
}

// categoryResolvedMsg is the constructor for [MsgCategoryResolved]
func categoryResolvedMsg(category models.Category, err error) Msg {
	return Msg{kind: MsgCategoryResolved, data: categoryResult{category, err}}
}
