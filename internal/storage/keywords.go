package storage

import (
	"context"
	"database/sql"

	"github.com/jmoiron/sqlx"
)

type KeywordStore struct {
	db *sqlx.DB
}

func NewKeywordStore(db *sqlx.DB) *KeywordStore {
	return &KeywordStore{db: db}
}

// GetOrCreate registers a keyword and returns its id. Keyword text is not
// schema-unique, so duplicates inserted out of band keep their own rows;
// lookups resolve to the oldest matching row.
func (s *KeywordStore) GetOrCreate(ctx context.Context, name string) (int64, error) {
	var id int64
	err := s.db.QueryRowContext(ctx,
		"SELECT id FROM keywords WHERE name = $1 ORDER BY id LIMIT 1", name,
	).Scan(&id)

	if err == sql.ErrNoRows {
		err = s.db.QueryRowContext(ctx,
			"INSERT INTO keywords (name) VALUES ($1) RETURNING id", name,
		).Scan(&id)
	}
	if err != nil {
		return 0, err
	}
	return id, nil
}

// GetByName returns the oldest keyword row with the exact name
func (s *KeywordStore) GetByName(ctx context.Context, name string) (*Keyword, error) {
	var keyword Keyword
	err := s.db.GetContext(ctx, &keyword,
		"SELECT id, name, created_at FROM keywords WHERE name = $1 ORDER BY id LIMIT 1", name)
	if err != nil {
		return nil, err
	}
	return &keyword, nil
}

// List returns all registered keywords ordered by name
func (s *KeywordStore) List(ctx context.Context) ([]Keyword, error) {
	var keywords []Keyword
	err := s.db.SelectContext(ctx, &keywords,
		"SELECT id, name, created_at FROM keywords ORDER BY name")
	return keywords, err
}

// Names returns just the keyword strings, for adapters that filter on them
func (s *KeywordStore) Names(ctx context.Context) ([]string, error) {
	var names []string
	err := s.db.SelectContext(ctx, &names, "SELECT name FROM keywords ORDER BY name")
	return names, err
}

// Delete removes a keyword by name; linked sentiment rows cascade
func (s *KeywordStore) Delete(ctx context.Context, name string) error {
	_, err := s.db.ExecContext(ctx, "DELETE FROM keywords WHERE name = $1", name)
	return err
}
