package cli

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"portfolio/internal/client"
)

// ErrNotLoggedIn is returned by admin commands without a stored session.
var ErrNotLoggedIn = errors.New("not logged in, run 'folio login' first")

// sessionFile is the on-disk form of a login.
type sessionFile struct {
	Server  string         `yaml:"server"`
	Session client.Session `yaml:"session"`
}

// configDir returns FOLIO_CONFIG_DIR or the user config directory.
func configDir() (string, error) {
	if dir := os.Getenv("FOLIO_CONFIG_DIR"); dir != "" {
		return dir, nil
	}
	base, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(base, "folio"), nil
}

func sessionPath() (string, error) {
	dir, err := configDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "session.yaml"), nil
}

// loadSession reads the stored session for server.
func loadSession(server string) (*client.Session, error) {
	path, err := sessionPath()
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, ErrNotLoggedIn
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read session: %w", err)
	}
	var f sessionFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("failed to parse session: %w", err)
	}
	if f.Session.Token == "" || f.Server != server {
		return nil, ErrNotLoggedIn
	}
	return &f.Session, nil
}

func saveSession(server string, s *client.Session) error {
	path, err := sessionPath()
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	data, err := yaml.Marshal(sessionFile{Server: server, Session: *s})
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o600)
}

func clearSession() error {
	path, err := sessionPath()
	if err != nil {
		return err
	}
	if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}
	return nil
}
