// Package client provides OAuth2 HTTP clients for the Google Sheets API.
//
// The server path (New) is headless: it requires a token minted earlier
// by the interactive Authorize flow (the "setup" subcommand).
package client

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"path/filepath"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
)

// New creates an HTTP client from a client secret file and a previously
// saved token. It never starts an interactive flow; run Authorize first.
func New(secretPath, tokenPath string, scopes ...string) (*http.Client, error) {
	cfg, err := configFromFile(secretPath, scopes...)
	if err != nil {
		return nil, err
	}

	tok, err := tokenFromFile(tokenPath)
	if err != nil {
		return nil, fmt.Errorf("loading token (run setup first): %w", err)
	}

	return cfg.Client(context.Background(), tok), nil
}

func configFromFile(secretPath string, scopes ...string) (*oauth2.Config, error) {
	b, err := os.ReadFile(secretPath)
	if err != nil {
		return nil, fmt.Errorf("reading client secret file: %w", err)
	}

	cfg, err := google.ConfigFromJSON(b, scopes...)
	if err != nil {
		return nil, fmt.Errorf("parsing client secret: %w", err)
	}
	return cfg, nil
}

func tokenFromFile(path string) (*oauth2.Token, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	tok := &oauth2.Token{}
	if err := json.NewDecoder(f).Decode(tok); err != nil {
		return nil, fmt.Errorf("decoding token file: %w", err)
	}
	return tok, nil
}

func saveToken(path string, token *oauth2.Token) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return fmt.Errorf("creating token directory: %w", err)
	}

	f, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE|os.O_TRUNC, 0o600)
	if err != nil {
		return fmt.Errorf("creating token file: %w", err)
	}
	defer f.Close()

	if err := json.NewEncoder(f).Encode(token); err != nil {
		return fmt.Errorf("encoding token: %w", err)
	}
	return nil
}
