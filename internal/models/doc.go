// Package models defines domain entities and persistence interfaces for ytclone.
//
// The package contains two categories of types:
//
// 1. Data Transfer Objects (DTOs): provider-neutral views of YouTube Data API resources
//   - [Playlist] : playlist metadata (the collection being copied)
//   - [Item] : one playlist entry wrapping a [Resource] and its position
//   - [Snapshot] : a playlist with its complete, position-ordered item list
//
// 2. Persistent Entities: database-backed records of copy runs
//   - [CopyJob] : one invocation of the copy command and its counters
//   - [ItemOutcome] : the terminal state of a single insertion request within a job
//
// Persistent entities implement the [Model] interface providing ID, timestamps and validation.
// The [Repository] interface defines standard CRUD operations for database access.
package models
