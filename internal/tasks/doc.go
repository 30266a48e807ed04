// Package tasks runs long course operations with real-time progress reporting.
//
// # Operations
//
// [CourseEngine] provides:
//
//  1. [CourseEngine.BulkExport] : export many courses to files
//     - fetches each course detail, rate limited
//     - writes it in the requested [formatter.Format] on a worker pool (default 5, max 10 workers)
//     - writes export_manifest.json summarizing every course
//     - records the run when a [RunRecorder] is configured
//
//  2. [CourseEngine.CollectAll] : walk the course list page by page until the last page
//
// # Progress Reporting
//
// Operations accept a progress channel that may be nil. Updates are sent with select/default so a slow
// reader never blocks the work; updates are dropped instead.
package tasks
