// Package services implements a client for the parts of the YouTube Data API v3 that playlist copying needs.
//
// # YouTube Service
//
// [YouTubeService] talks to the REST endpoints over an [http.Client] that is expected to carry OAuth2 credentials.
// It exposes four single-request operations:
//   - [YouTubeService.LookupPlaylist] : playlists.list by id
//   - [YouTubeService.ListItems] : one page of playlistItems.list
//   - [YouTubeService.CreatePlaylist] : playlists.insert
//   - [YouTubeService.InsertItem] : playlistItems.insert
//
// # Batch Requests
//
// [YouTubeService.InsertItems] packs many playlistItems.insert calls into one multipart/mixed request against the
// batch endpoint and reports every part's outcome through a callback before it returns.
// Callers pass their own correlation keys; those keys never leave the process, parts are numbered instead.
//
// # Authentication
//
// [NewOAuthConfig] builds the Google OAuth2 config for the youtube scope and [AuthCodeURL] the consent URL for it.
// [NewAuthenticatedClient] loads a stored token through a [TokenStore] and writes refreshed tokens back.
//
// # Transport
//
// [NewTransport] stacks an optional [rate.Limiter] and request logging on top of a base [http.RoundTripper].
//
// # Error Handling
//
// Non-2xx responses become [*APIError], carrying the HTTP status and the first Google error reason.
// Undecodable bodies wrap [shared.ErrMalformedResponse]. Transport failures are wrapped with %w so callers can
// inspect the underlying [net.Error] or syscall error.
package services
