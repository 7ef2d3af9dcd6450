// Package settings persists runtime-editable configuration, most notably
// the Gemini credential, so the service can run without the key in its
// environment. The env var still wins when present.
package settings

import (
	"context"
	"encoding/json"
	"errors"
	"strings"

	"github.com/woodchen-ink/aice-ps/internal/infra"
	"github.com/woodchen-ink/aice-ps/internal/sqlinline"
)

const (
	KeyGeminiAPIKey  = "gemini_api_key"
	KeyGeminiBaseURL = "gemini_base_url"
)

type Store struct {
	sql infra.SQLExecutor
}

func NewStore(sql infra.SQLExecutor) *Store {
	return &Store{sql: sql}
}

// Value returns the stored setting, or "" when it was never set.
func (s *Store) Value(ctx context.Context, name string) (string, error) {
	row := s.sql.QueryRow(ctx, sqlinline.QSelectSetting, name)
	var value string
	if err := row.Scan(&value); err != nil {
		if infra.IsNoRows(err) {
			return "", nil
		}
		return "", err
	}
	return strings.TrimSpace(value), nil
}

// SetValue upserts the setting.
func (s *Store) SetValue(ctx context.Context, name, value string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return errors.New("setting name is required")
	}
	props, err := json.Marshal(map[string]any{})
	if err != nil {
		return err
	}
	_, err = s.sql.Exec(ctx, sqlinline.QUpsertSetting, name, value, props)
	return err
}

// Delete removes the setting, if present.
func (s *Store) Delete(ctx context.Context, name string) error {
	_, err := s.sql.Exec(ctx, sqlinline.QDeleteSetting, name)
	return err
}

func (s *Store) GeminiAPIKey(ctx context.Context) (string, error) {
	return s.Value(ctx, KeyGeminiAPIKey)
}

func (s *Store) SetGeminiAPIKey(ctx context.Context, key string) error {
	key = strings.TrimSpace(key)
	if key == "" {
		return errors.New("gemini api key is required")
	}
	return s.SetValue(ctx, KeyGeminiAPIKey, key)
}

func (s *Store) GeminiBaseURL(ctx context.Context) (string, error) {
	return s.Value(ctx, KeyGeminiBaseURL)
}

func (s *Store) SetGeminiBaseURL(ctx context.Context, baseURL string) error {
	return s.SetValue(ctx, KeyGeminiBaseURL, strings.TrimSpace(baseURL))
}
