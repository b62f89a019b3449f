// Package credentials resolves a bearer token for an account index.
package credentials

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"

	"golang.org/x/oauth2/google"

	"github.com/samims/indexer/internal/config"
	appErr "github.com/samims/indexer/internal/errors"
)

// Source returns a bearer token for the zero-based account index.
// Failures wrap errors.ErrCredentialUnavailable.
type Source interface {
	Token(ctx context.Context, index int) (string, error)
}

// FileSource mints tokens from service-account key files named by a
// pattern such as account%d.json, numbered from 1.
type FileSource struct {
	dir     string
	pattern string
	scope   string
	logger  *slog.Logger
}

func NewFileSource(cfg config.CredentialsConfig, logger *slog.Logger) *FileSource {
	return &FileSource{
		dir:     cfg.Dir,
		pattern: cfg.Pattern,
		scope:   cfg.Scope,
		logger:  logger.With("layer", "credentials"),
	}
}

// Path is the key file of the account at index.
func (s *FileSource) Path(index int) string {
	return filepath.Join(s.dir, fmt.Sprintf(s.pattern, index+1))
}

func (s *FileSource) Token(ctx context.Context, index int) (string, error) {
	path := s.Path(index)

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return "", appErr.NewCredential("%s not found!", path)
		}
		return "", appErr.NewCredential("read %s: %v", path, err)
	}

	jwtCfg, err := google.JWTConfigFromJSON(data, s.scope)
	if err != nil {
		return "", appErr.NewCredential("invalid key file %s: %v", path, err)
	}

	tok, err := jwtCfg.TokenSource(ctx).Token()
	if err != nil {
		return "", appErr.NewCredential("token exchange for %s: %v", path, err)
	}

	s.logger.Info("Access token obtained",
		slog.Int("account", index+1),
		slog.String("client_email", jwtCfg.Email),
		slog.Time("expiry", tok.Expiry))
	return tok.AccessToken, nil
}

// Static serves fixed tokens by index. An empty entry or an index out of
// range is reported as unavailable.
type Static []string

func (s Static) Token(_ context.Context, index int) (string, error) {
	if index < 0 || index >= len(s) || s[index] == "" {
		return "", appErr.NewCredential("no token for account %d", index+1)
	}
	return s[index], nil
}
