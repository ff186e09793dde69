package main

import (
	"context"
	"fmt"
	"time"

	"github.com/urfave/cli/v3"
	"golang.org/x/oauth2"

	"github.com/desertthunder/ytclone/internal/repositories"
	"github.com/desertthunder/ytclone/internal/server"
	"github.com/desertthunder/ytclone/internal/services"
	"github.com/desertthunder/ytclone/internal/shared"
)

const authTimeout = 2 * time.Minute

func (r *Runner) oauthConfig() (*oauth2.Config, error) {
	id, secret, err := r.config.Credentials.ResolveClient()
	if err != nil {
		return nil, err
	}

	redirect := r.config.Credentials.RedirectURI
	if redirect == "" {
		redirect = fmt.Sprintf("http://%s/callback", r.config.Server.Addr())
	}
	return services.NewOAuthConfig(id, secret, redirect)
}

// Auth runs the authorization code flow against a loopback callback server and stores the token.
func (r *Runner) Auth(ctx context.Context, cmd *cli.Command) error {
	oauthConfig, err := r.oauthConfig()
	if err != nil {
		return err
	}

	db, err := r.database()
	if err != nil {
		return err
	}

	token, err := r.doOAuth(ctx, oauthConfig, !cmd.Bool("no-browser"))
	if err != nil {
		return err
	}

	if err := repositories.NewCredentialRepository(db).SaveToken(ctx, r.profile(), token); err != nil {
		return err
	}

	r.logger.Info("authorization successful", "profile", r.profile())
	r.writePlain("You can now run: ytclone <playlist-id>\n")
	return nil
}

// Logout deletes the stored token for the configured profile.
func (r *Runner) Logout(ctx context.Context, cmd *cli.Command) error {
	db, err := r.database()
	if err != nil {
		return err
	}

	if err := repositories.NewCredentialRepository(db).DeleteToken(ctx, r.profile()); err != nil {
		return err
	}
	r.logger.Info("token removed", "profile", r.profile())
	return nil
}

// doOAuth executes the OAuth2 authorization flow with a local HTTP server
func (r *Runner) doOAuth(ctx context.Context, config *oauth2.Config, openBrowser bool) (*oauth2.Token, error) {
	state, err := shared.GenerateState()
	if err != nil {
		return nil, fmt.Errorf("failed to generate state token: %w", err)
	}

	callback := server.NewCallbackServer(r.config.Server.Addr(), server.NewOAuthHandler(config, state), r.logger)
	if err := callback.Start(); err != nil {
		return nil, err
	}

	authURL := services.AuthCodeURL(config, state)
	if !openBrowser {
		fmt.Fprintf(r.progress, "Open this URL in your browser:\n%s\n\n", authURL)
	} else if err := shared.OpenBrowser(authURL); err != nil {
		r.logger.Warn("failed to open browser automatically", "error", err)
		fmt.Fprintf(r.progress, "Could not open a browser. Open this URL instead:\n%s\n\n", authURL)
	}

	fmt.Fprintf(r.progress, "Waiting for authorization (%s timeout)...\n", authTimeout)
	return callback.Wait(ctx, authTimeout)
}
