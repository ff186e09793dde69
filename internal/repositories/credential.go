package repositories

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"golang.org/x/oauth2"

	"github.com/desertthunder/ytclone/internal/shared"
)

// CredentialRepository stores OAuth tokens as JSON keyed by profile name.
//
// It satisfies services.TokenStore so refreshed tokens are written back as they are issued.
type CredentialRepository struct {
	db *sql.DB
}

// NewCredentialRepository creates a new CredentialRepository with the given database connection
func NewCredentialRepository(db *sql.DB) *CredentialRepository {
	return &CredentialRepository{db: db}
}

// LoadToken returns the token stored for profile or [shared.ErrRecordNotFound].
func (r *CredentialRepository) LoadToken(ctx context.Context, profile string) (*oauth2.Token, error) {
	var raw string
	err := r.db.QueryRowContext(ctx, `SELECT token FROM credentials WHERE profile = ?`, profile).Scan(&raw)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: credentials for %s", shared.ErrRecordNotFound, profile)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load credentials: %w", err)
	}

	var token oauth2.Token
	if err := json.Unmarshal([]byte(raw), &token); err != nil {
		return nil, fmt.Errorf("%w: stored token for %s: %v", shared.ErrInvalidCredentials, profile, err)
	}
	return &token, nil
}

// SaveToken inserts or replaces the token for profile.
func (r *CredentialRepository) SaveToken(ctx context.Context, profile string, token *oauth2.Token) error {
	if profile == "" || token == nil {
		return fmt.Errorf("%w: profile and token are required", shared.ErrInvalidInput)
	}

	raw, err := json.Marshal(token)
	if err != nil {
		return fmt.Errorf("failed to encode token: %w", err)
	}

	var expiry *time.Time
	if !token.Expiry.IsZero() {
		expiry = &token.Expiry
	}
	now := time.Now()

	query := `
		INSERT INTO credentials (profile, token, expires_at, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT (profile) DO UPDATE SET
			token = excluded.token,
			expires_at = excluded.expires_at,
			updated_at = excluded.updated_at
	`
	if _, err := r.db.ExecContext(ctx, query, profile, string(raw), expiry, now, now); err != nil {
		return fmt.Errorf("failed to save credentials: %w", err)
	}
	return nil
}

// DeleteToken forgets the token for profile. Deleting an absent profile is not an error.
func (r *CredentialRepository) DeleteToken(ctx context.Context, profile string) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM credentials WHERE profile = ?`, profile); err != nil {
		return fmt.Errorf("failed to delete credentials: %w", err)
	}
	return nil
}
