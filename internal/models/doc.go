// Package models defines domain entities and persistence interfaces for the coursemap client.
//
// The package contains two categories of types:
//
// 1. Data Transfer Objects (DTOs): wire shapes exchanged with the course backend
//   - [CourseSummary] : list entry with cover, region, totals and like count
//   - [CourseDetails] : full course with ordered [Spot] values
//   - [CourseRequest] : create/update body built from an editor draft
//   - [Category], [Region], [UserProfile], [LikeState], [Recommendations]
//   - [Page] : Spring-style pagination envelope
//
// 2. Persistent Entities: records kept in the local sqlite database
//   - [DraftRecord] : an in-progress course draft that survives between CLI invocations
//   - [ExportRun] : a completed bulk export
//
// Persistent entities implement the [Model] interface; [Repository] defines the CRUD contract used by the
// sqlite repositories.
package models
