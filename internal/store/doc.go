// Package store holds the client's shared mutable state.
//
// [AuthStore] owns the session (token, decoded claims, cached profile) and persists every change through a
// [SessionStore]. [CourseStore] owns the course list, the current course detail and per-course like state.
//
// Both stores are safe for concurrent use: network calls run without the lock held and their results are
// applied afterwards, so a TUI can fire requests from goroutines.
//
// Out-of-order responses are resolved by sequence numbers:
//   - course detail: the most recently requested id wins; older responses return [shared.ErrStaleResponse]
//   - like toggle: only the latest toggle per course may commit or roll back
package store
