// Package repositories implements SQLite persistence for the client's local state.
//
// Key Implementations:
//   - [SessionRepository] : namespaced key/value state; holds the auth session under "auth-storage"
//   - [DraftRepository] : course drafts kept between CLI invocations, with soft delete
//   - [ExportRunRepository] : bulk export history
//
// Sequence numbers provide stable, human-readable ordering (draft #3) independent of UUIDs and creation
// timestamps. The [NextSequence] function atomically increments per-table sequence counters in dedicated
// sequence tables.
package repositories
