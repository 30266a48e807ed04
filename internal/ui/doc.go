// Package ui implements an interactive terminal interface using bubbletea's Elm architecture.
//
// The TUI provides a multi-view workflow for browsing and authoring courses:
//  1. [CourseListView] : Browse courses page by page, filter by title or region
//  2. [DetailView] : Spots, totals, a map of the route and the like toggle
//  3. [EditorView] : Build a course by placing spots on the map grid
//  4. [ExportView] : Monitor an export of the selected course
//
// The (view) [Model] implements bubbletea/Elm's standard Init/Update/View pattern, receiving messages via the Msg union type.
// Like toggles are optimistic: the [store.CourseStore] flips state before the request returns and the view
// redraws shortly after, so a pending like is visible immediately.
//
// Keyboard navigation uses vim-style bindings with contextual help displayed via charmbracelet/bubbles/help.
package ui
