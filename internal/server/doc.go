// Package server runs the short-lived loopback server that completes the OAuth authorization code flow.
//
// # Router Infrastructure
//
// The [Router] interface defines HTTP routing with middleware support. [BasicRouter] registers routes on an
// [http.ServeMux] with method patterns. [Middleware] added first wraps outermost; [Logging] is the only one used.
//
// # OAuth Callback Handler
//
// [OAuthHandler] serves the path of the configured redirect URI. It checks the state parameter, exchanges the
// authorization code and publishes a single [OAuthResult]. Later callbacks are rejected.
//
// # Callback Server
//
// [CallbackServer] binds the configured host and port, serves the handler until a result arrives and then shuts
// down. The auth command starts it, opens the consent page in a browser and waits with a two minute timeout.
package server
