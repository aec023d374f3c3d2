package storage

import (
	"context"
	"database/sql"

	"github.com/jmoiron/sqlx"
)

type WebsiteStore struct {
	db *sqlx.DB
}

func NewWebsiteStore(db *sqlx.DB) *WebsiteStore {
	return &WebsiteStore{db: db}
}

// GetOrCreate returns the id of the website with the given name, inserting
// it first if it does not exist
func (s *WebsiteStore) GetOrCreate(ctx context.Context, name string) (int64, error) {
	var id int64
	err := s.db.QueryRowContext(ctx,
		`INSERT INTO websites (name) VALUES ($1)
		 ON CONFLICT (name) DO NOTHING
		 RETURNING id`,
		name,
	).Scan(&id)

	if err == sql.ErrNoRows {
		err = s.db.QueryRowContext(ctx,
			"SELECT id FROM websites WHERE name = $1", name,
		).Scan(&id)
	}
	if err != nil {
		return 0, err
	}
	return id, nil
}

// List returns all websites ordered by name
func (s *WebsiteStore) List(ctx context.Context) ([]Website, error) {
	var websites []Website
	err := s.db.SelectContext(ctx, &websites, "SELECT id, name FROM websites ORDER BY name")
	return websites, err
}
