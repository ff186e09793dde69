// Package tasks copies a YouTube playlist into a new playlist on the same account, reporting progress as it goes.
//
// # Core Operations
//
// [CopyEngine.Run] chains three steps:
//
//  1. [Loader.Load] : resolve the source playlist
//     - Looks the id up and refuses zero or several matches
//     - Reads every page of items
//     - Sorts by position and renumbers to 0..N-1
//
//  2. [Replicator.Replicate] : derive the destination playlist
//     - Drops id, etag, owner channel and item count
//     - Prepends the configured title prefix
//     - Creates the playlist unless this is a dry run
//
//  3. [Engine.Run] : insert the items in rounds
//     - One [InsertionRequest] per item, tracked by a [Ledger]
//     - Each round submits every pending request through a [BatchSubmitter]
//     - [Classify] decides between completed, skipped, retried and fatal
//
// # Rounds and Renumbering
//
// Between rounds every request is pending, completed or skipped. Transient failures (5xx, dropped connections,
// truncated responses) go back to pending and are resubmitted in the next round without backoff, until
// [EngineOpts.MaxRounds] if set. A 403 or 404 skips the item; every unresolved request whose original position
// comes after it moves down one place so the destination has no hole. Completed requests are never moved, so a
// skip found in a later round can still leave a gap.
//
// [GroupedSubmitter] sends a round as one batch request and handles outcomes in arrival order.
// [SequentialSubmitter] sends one request at a time. Both feed the same outcome handler.
//
// # Progress Reporting
//
// Operations take an optional channel of [ProgressUpdate]. Sends block until the receiver reads them or the
// context is done, so every per-item marker reaches the renderer. Per-item updates carry an [ItemEvent].
//
// # Outcome Recording
//
// The optional [OutcomeRecorder] is told about every completed or skipped request.
// Recording errors are logged and ignored so they never disrupt a copy.
package tasks
