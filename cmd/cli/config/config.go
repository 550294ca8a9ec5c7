package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
)

const (
	defaultAPIURL = "http://localhost:8080"
	tokenFileName = ".timetable_token"
)

// ErrNotLoggedIn is returned when no session token is stored locally.
var ErrNotLoggedIn = errors.New("not logged in: run `timetable login` first")

// APIURL returns the base URL for the timetable API.
// It can be overridden with the TIMETABLE_API_URL environment variable.
func APIURL() string {
	if v := os.Getenv("TIMETABLE_API_URL"); v != "" {
		return strings.TrimRight(v, "/")
	}
	return defaultAPIURL
}

// TokenPath is where the session token lives. TIMETABLE_TOKEN_FILE overrides ~/.timetable_token.
func TokenPath() string {
	if v := os.Getenv("TIMETABLE_TOKEN_FILE"); v != "" {
		return v
	}
	dir, _ := os.UserHomeDir()
	return filepath.Join(dir, tokenFileName)
}

// ==========================
// Token Storage Helpers
// ==========================
func SaveToken(token string) error {
	return os.WriteFile(TokenPath(), []byte(token), 0600)
}

func LoadToken() (string, error) {
	data, err := os.ReadFile(TokenPath())
	if errors.Is(err, os.ErrNotExist) {
		return "", ErrNotLoggedIn
	}
	if err != nil {
		return "", err
	}
	token := strings.TrimSpace(string(data))
	if token == "" {
		return "", ErrNotLoggedIn
	}
	return token, nil
}

// RemoveToken deletes the stored token. It reports false when there was none.
func RemoveToken() (bool, error) {
	err := os.Remove(TokenPath())
	if errors.Is(err, os.ErrNotExist) {
		return false, nil
	}
	return err == nil, err
}
