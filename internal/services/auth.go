package services

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"

	"github.com/desertthunder/ytclone/internal/shared"
	"golang.org/x/oauth2"
)

const (
	googleAuthURL  = "https://accounts.google.com/o/oauth2/auth"
	googleTokenURL = "https://oauth2.googleapis.com/token"

	// YouTubeScope grants read and write access to the account's playlists.
	YouTubeScope = "https://www.googleapis.com/auth/youtube"
)

// TokenStore persists OAuth tokens keyed by a profile name.
//
// LoadToken returns [shared.ErrRecordNotFound] when no token is stored for profile.
type TokenStore interface {
	LoadToken(ctx context.Context, profile string) (*oauth2.Token, error)
	SaveToken(ctx context.Context, profile string, token *oauth2.Token) error
}

// NewOAuthConfig builds the authorization-code configuration for the installed-app flow.
func NewOAuthConfig(clientID, clientSecret, redirectURI string) (*oauth2.Config, error) {
	if clientID == "" || clientSecret == "" {
		return nil, fmt.Errorf("%w: client id and secret are required", shared.ErrMissingCredentials)
	}

	return &oauth2.Config{
		ClientID:     clientID,
		ClientSecret: clientSecret,
		RedirectURL:  redirectURI,
		Scopes:       []string{YouTubeScope},
		Endpoint: oauth2.Endpoint{
			AuthURL:   googleAuthURL,
			TokenURL:  googleTokenURL,
			AuthStyle: oauth2.AuthStyleInParams,
		},
	}, nil
}

// AuthCodeURL returns the consent page URL, requesting a refresh token.
func AuthCodeURL(config *oauth2.Config, state string) string {
	return config.AuthCodeURL(state, oauth2.AccessTypeOffline, oauth2.ApprovalForce)
}

// NewAuthenticatedClient returns an HTTP client that authorizes requests with the token stored under profile,
// refreshing it as needed and saving refreshed tokens back to store.
//
// base is used both for API calls and for token refreshes. A nil base uses [http.DefaultTransport].
func NewAuthenticatedClient(ctx context.Context, config *oauth2.Config, store TokenStore, profile string, base http.RoundTripper) (*http.Client, error) {
	token, err := store.LoadToken(ctx, profile)
	if errors.Is(err, shared.ErrRecordNotFound) {
		return nil, fmt.Errorf("%w: no stored token for profile %q, run the auth command first", shared.ErrNotAuthenticated, profile)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load token: %w", err)
	}

	if base == nil {
		base = http.DefaultTransport
	}
	refreshCtx := context.WithValue(ctx, oauth2.HTTPClient, &http.Client{Transport: base})

	src := &persistingTokenSource{
		ctx:     ctx,
		base:    config.TokenSource(refreshCtx, token),
		store:   store,
		profile: profile,
		last:    token.AccessToken,
	}

	return &http.Client{
		Transport: &oauth2.Transport{
			Source: oauth2.ReuseTokenSource(token, src),
			Base:   base,
		},
	}, nil
}

// persistingTokenSource saves every token whose access token differs from the last one seen.
type persistingTokenSource struct {
	ctx     context.Context
	base    oauth2.TokenSource
	store   TokenStore
	profile string

	mu   sync.Mutex
	last string
}

func (s *persistingTokenSource) Token() (*oauth2.Token, error) {
	token, err := s.base.Token()
	if err != nil {
		return nil, fmt.Errorf("%w: token refresh failed: %v", shared.ErrNotAuthenticated, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if token.AccessToken != s.last {
		if err := s.store.SaveToken(s.ctx, s.profile, token); err != nil {
			return nil, fmt.Errorf("failed to save refreshed token: %w", err)
		}
		s.last = token.AccessToken
	}
	return token, nil
}
