// Package repositories implements SQLite persistence for copy history and stored credentials.
//
// Key Implementations:
//   - [CopyJobRepository] : one row per copy run plus the per-item outcomes it produced
//   - [CredentialRepository] : OAuth tokens keyed by profile, satisfying services.TokenStore
//   - [OutcomeRecorder] : adapts [CopyJobRepository] to the insertion engine's recorder hook
//
// Jobs carry a sequence number next to their UUID so history can be listed in run order.
// [NextSequence] increments the per-table counter held in a dedicated "<table>_sequence" table.
package repositories
