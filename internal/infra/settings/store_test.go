package settings

import (
	"context"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

type fakeRow struct {
	value string
	err   error
}

func (r fakeRow) Scan(dest ...any) error {
	if r.err != nil {
		return r.err
	}
	if len(dest) > 0 {
		if p, ok := dest[0].(*string); ok {
			*p = r.value
		}
	}
	return nil
}

type fakeSQL struct {
	rows  map[string]fakeRow
	execs [][]any
}

func (f *fakeSQL) Exec(ctx context.Context, query string, args ...any) (pgconn.CommandTag, error) {
	f.execs = append(f.execs, args)
	return pgconn.CommandTag{}, nil
}

func (f *fakeSQL) QueryRow(ctx context.Context, query string, args ...any) pgx.Row {
	name, _ := args[0].(string)
	if row, ok := f.rows[name]; ok {
		return row
	}
	return fakeRow{err: pgx.ErrNoRows}
}

func (f *fakeSQL) Query(ctx context.Context, query string, args ...any) (pgx.Rows, error) {
	return nil, pgx.ErrNoRows
}

func TestStoreReturnsEmptyWhenUnset(t *testing.T) {
	store := NewStore(&fakeSQL{})
	got, err := store.GeminiAPIKey(context.Background())
	if err != nil {
		t.Fatalf("GeminiAPIKey: %v", err)
	}
	if got != "" {
		t.Fatalf("expected empty key, got %q", got)
	}
}

func TestStoreTrimsStoredValue(t *testing.T) {
	store := NewStore(&fakeSQL{rows: map[string]fakeRow{
		KeyGeminiAPIKey: {value: "  abc123  "},
	}})
	got, err := store.GeminiAPIKey(context.Background())
	if err != nil {
		t.Fatalf("GeminiAPIKey: %v", err)
	}
	if got != "abc123" {
		t.Fatalf("key = %q, want abc123", got)
	}
}

func TestSetGeminiAPIKeyRejectsEmpty(t *testing.T) {
	store := NewStore(&fakeSQL{})
	if err := store.SetGeminiAPIKey(context.Background(), "   "); err == nil {
		t.Fatalf("expected error for empty key")
	}
}

func TestSetValueWritesThrough(t *testing.T) {
	sql := &fakeSQL{}
	store := NewStore(sql)
	if err := store.SetGeminiAPIKey(context.Background(), "key-1"); err != nil {
		t.Fatalf("SetGeminiAPIKey: %v", err)
	}
	if len(sql.execs) != 1 {
		t.Fatalf("execs = %d, want 1", len(sql.execs))
	}
	if sql.execs[0][0] != KeyGeminiAPIKey || sql.execs[0][1] != "key-1" {
		t.Fatalf("unexpected exec args: %v", sql.execs[0])
	}
}
