package storage

import (
	"context"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
)

// Connect opens and pings a PostgreSQL connection
func Connect(ctx context.Context, dsn string) (*sqlx.DB, error) {
	db, err := sqlx.Open("postgres", dsn)
	if err != nil {
		return nil, err
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, err
	}
	return db, nil
}

var schema = []string{
	`CREATE TABLE IF NOT EXISTS websites (
		id   BIGSERIAL PRIMARY KEY,
		name TEXT NOT NULL UNIQUE
	)`,
	// Keyword text is deliberately not unique; operator-entered duplicates
	// keep their own rows
	`CREATE TABLE IF NOT EXISTS keywords (
		id         BIGSERIAL PRIMARY KEY,
		name       TEXT NOT NULL,
		created_at TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
	`CREATE TABLE IF NOT EXISTS news_details (
		id             BIGSERIAL PRIMARY KEY,
		website_id     BIGINT NOT NULL REFERENCES websites(id),
		website_name   TEXT NOT NULL DEFAULT '',
		title          TEXT NOT NULL,
		article_url    TEXT NOT NULL,
		image_url      TEXT NOT NULL DEFAULT '',
		category       TEXT NOT NULL DEFAULT '',
		published_time TIMESTAMPTZ,
		language       TEXT NOT NULL DEFAULT '',
		author         TEXT NOT NULL DEFAULT '',
		description    TEXT NOT NULL DEFAULT '',
		created_at     TIMESTAMPTZ NOT NULL DEFAULT now(),
		CONSTRAINT unique_website_category_url UNIQUE (website_id, category, article_url)
	)`,
	`CREATE TABLE IF NOT EXISTS news_keywords (
		news_id    BIGINT NOT NULL REFERENCES news_details(id) ON DELETE CASCADE,
		keyword_id BIGINT NOT NULL REFERENCES keywords(id) ON DELETE CASCADE,
		PRIMARY KEY (news_id, keyword_id)
	)`,
	`CREATE TABLE IF NOT EXISTS sentiment_results (
		id              BIGSERIAL PRIMARY KEY,
		news_id         BIGINT NOT NULL REFERENCES news_details(id) ON DELETE CASCADE,
		keyword_id      BIGINT REFERENCES keywords(id) ON DELETE CASCADE,
		title           TEXT NOT NULL DEFAULT '',
		website_name    TEXT NOT NULL DEFAULT '',
		category        TEXT NOT NULL DEFAULT '',
		sentiment_label TEXT NOT NULL,
		sentiment_score DOUBLE PRECISION NOT NULL,
		positive_score  DOUBLE PRECISION NOT NULL DEFAULT 0,
		negative_score  DOUBLE PRECISION NOT NULL DEFAULT 0,
		neutral_score   DOUBLE PRECISION NOT NULL DEFAULT 0,
		processed_at    TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
	// Keyword-less backfill rows share the uniqueness slot 0
	`CREATE UNIQUE INDEX IF NOT EXISTS uniq_sentiment_news_keyword
		ON sentiment_results (news_id, COALESCE(keyword_id, 0))`,
	`CREATE INDEX IF NOT EXISTS idx_sentiment_processed_at
		ON sentiment_results (processed_at)`,
}

// Migrate creates the schema if it does not exist yet
func Migrate(ctx context.Context, db *sqlx.DB) error {
	for _, stmt := range schema {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return err
		}
	}
	return nil
}
