package shared

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"fmt"
	"os"

	"github.com/BurntSushi/toml"
)

//go:embed config.example.toml
var exampleConf []byte

// Config represents the application configuration loaded from a TOML file.
type Config struct {
	Credentials CredentialsConfig `toml:"credentials"`
	YouTube     YouTubeConfig     `toml:"youtube"`
	Copy        CopyConfig        `toml:"copy"`
	Database    DatabaseConfig    `toml:"database"`
	Server      ServerConfig      `toml:"server"`
}

// CredentialsConfig contains the OAuth2 client used to authorize against the YouTube Data API.
type CredentialsConfig struct {
	ClientID          string `toml:"client_id"`
	ClientSecret      string `toml:"client_secret"`
	ClientSecretsFile string `toml:"client_secrets_file"`
	RedirectURI       string `toml:"redirect_uri"`
	Profile           string `toml:"profile"` // key the token is stored under
}

// YouTubeConfig contains API endpoints and transport settings.
type YouTubeConfig struct {
	APIURL            string  `toml:"api_url"`
	BatchURL          string  `toml:"batch_url"`
	RequestsPerSecond float64 `toml:"requests_per_second"` // 0 disables the limiter
}

// CopyConfig contains defaults for the copy command. Flags override them.
type CopyConfig struct {
	Prefix    string `toml:"prefix"`
	Batch     bool   `toml:"batch"`
	MaxRounds int    `toml:"max_rounds"` // 0 retries transient failures forever
}

// DatabaseConfig contains database connection settings.
type DatabaseConfig struct {
	Path         string `toml:"path"`
	MaxOpenConns int    `toml:"max_open_conns"`
	MaxIdleConns int    `toml:"max_idle_conns"`
}

// ServerConfig contains the loopback server settings used by the OAuth flow.
type ServerConfig struct {
	Host string `toml:"host"`
	Port int    `toml:"port"`
}

// Addr returns the host:port the OAuth callback server listens on.
func (s ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

// LoadConfig reads and parses a TOML configuration file from the specified path.
//
// Keys missing from the file keep the values of [DefaultConfig].
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	config := DefaultConfig()
	if err := toml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("%w: failed to parse config: %v", ErrInvalidConfig, err)
	}

	return config, nil
}

// DefaultConfig returns a Config with sensible defaults loaded from the embedded example config.
func DefaultConfig() *Config {
	var config Config
	if err := toml.Unmarshal(exampleConf, &config); err != nil {
		panic(fmt.Sprintf("failed to parse embedded default config: %v", err))
	}
	return &config
}

// CreateConfigFile creates a config.toml file at the specified path using the embedded example config.
func CreateConfigFile(path string) error {
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("config file already exists at %s", path)
	}

	if err := os.WriteFile(path, exampleConf, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// SaveConfig encodes config as TOML and writes it to path.
func SaveConfig(path string, config *Config) error {
	var buf bytes.Buffer
	if err := toml.NewEncoder(&buf).Encode(config); err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}

	if err := os.WriteFile(path, buf.Bytes(), 0600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

// ClientSecrets is the subset of a Google client_secrets.json file that the OAuth flow needs.
type ClientSecrets struct {
	ClientID     string
	ClientSecret string
	RedirectURIs []string
}

// LoadClientSecrets reads a Google client_secrets.json file.
//
// Both the "installed" and "web" application layouts are accepted.
func LoadClientSecrets(path string) (*ClientSecrets, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to read client secrets: %v", ErrMissingCredentials, err)
	}

	type entry struct {
		ClientID     string   `json:"client_id"`
		ClientSecret string   `json:"client_secret"`
		RedirectURIs []string `json:"redirect_uris"`
	}
	var file struct {
		Installed *entry `json:"installed"`
		Web       *entry `json:"web"`
	}
	if err := json.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("%w: malformed client secrets file: %v", ErrInvalidCredentials, err)
	}

	e := file.Installed
	if e == nil {
		e = file.Web
	}
	if e == nil || e.ClientID == "" {
		return nil, fmt.Errorf("%w: client secrets file has no client_id", ErrInvalidCredentials)
	}

	return &ClientSecrets{ClientID: e.ClientID, ClientSecret: e.ClientSecret, RedirectURIs: e.RedirectURIs}, nil
}

// ResolveClient returns the OAuth client id and secret, preferring values set inline over the secrets file.
func (c CredentialsConfig) ResolveClient() (id, secret string, err error) {
	if c.ClientID != "" && c.ClientSecret != "" {
		return c.ClientID, c.ClientSecret, nil
	}
	if c.ClientSecretsFile == "" {
		return "", "", fmt.Errorf("%w: set credentials.client_id/client_secret or credentials.client_secrets_file", ErrMissingCredentials)
	}

	secrets, err := LoadClientSecrets(c.ClientSecretsFile)
	if err != nil {
		return "", "", err
	}
	return secrets.ClientID, secrets.ClientSecret, nil
}
