package storage

import (
	"context"
	"strconv"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
)

type SentimentStore struct {
	db *sqlx.DB
}

func NewSentimentStore(db *sqlx.DB) *SentimentStore {
	return &SentimentStore{db: db}
}

// Upsert writes one sentiment result, replacing any earlier result for the
// same (news, keyword) pair. Keyword-less rows conflict with each other
// through the COALESCE unique index.
func (s *SentimentStore) Upsert(ctx context.Context, result *SentimentResult) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO sentiment_results (
			news_id, keyword_id, title, website_name, category,
			sentiment_label, sentiment_score,
			positive_score, negative_score, neutral_score, processed_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		ON CONFLICT (news_id, COALESCE(keyword_id, 0)) DO UPDATE SET
			title = EXCLUDED.title,
			website_name = EXCLUDED.website_name,
			category = EXCLUDED.category,
			sentiment_label = EXCLUDED.sentiment_label,
			sentiment_score = EXCLUDED.sentiment_score,
			positive_score = EXCLUDED.positive_score,
			negative_score = EXCLUDED.negative_score,
			neutral_score = EXCLUDED.neutral_score,
			processed_at = EXCLUDED.processed_at`,
		result.NewsID,
		result.KeywordID,
		result.Title,
		result.WebsiteName,
		result.Category,
		result.Label,
		result.Score,
		result.Positive,
		result.Negative,
		result.Neutral,
		result.ProcessedAt,
	)
	return err
}

// ListByNews returns all sentiment rows for one article
func (s *SentimentStore) ListByNews(ctx context.Context, newsID int64) ([]SentimentResult, error) {
	var results []SentimentResult
	err := s.db.SelectContext(ctx, &results,
		"SELECT * FROM sentiment_results WHERE news_id = $1 ORDER BY id", newsID)
	return results, err
}

// SentimentFilter narrows an aggregation to one keyword and an optional
// time window, website and category. Zero times leave that bound open.
type SentimentFilter struct {
	Keyword  string
	Website  string
	Category string
	From     time.Time
	To       time.Time
}

// Rollup is the aggregate over the sentiment rows matching a filter
type Rollup struct {
	Count       int64            `json:"count"`
	AvgScore    float64          `json:"avg_score"`
	AvgPositive float64          `json:"avg_positive"`
	AvgNegative float64          `json:"avg_negative"`
	AvgNeutral  float64          `json:"avg_neutral"`
	ByLabel     map[string]int64 `json:"by_label"`
}

// Aggregate computes the rollup for a keyword. A filter matching no rows
// yields a zero rollup, not an error.
func (s *SentimentStore) Aggregate(ctx context.Context, filter SentimentFilter) (*Rollup, error) {
	where, args := buildSentimentWhere(filter)

	rollup := &Rollup{ByLabel: map[string]int64{}}
	err := s.db.QueryRowContext(ctx,
		`SELECT
			COUNT(*),
			COALESCE(AVG(sr.sentiment_score), 0),
			COALESCE(AVG(sr.positive_score), 0),
			COALESCE(AVG(sr.negative_score), 0),
			COALESCE(AVG(sr.neutral_score), 0)
		FROM sentiment_results sr
		JOIN keywords k ON k.id = sr.keyword_id`+where,
		args...,
	).Scan(&rollup.Count, &rollup.AvgScore, &rollup.AvgPositive, &rollup.AvgNegative, &rollup.AvgNeutral)
	if err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT sr.sentiment_label, COUNT(*)
		FROM sentiment_results sr
		JOIN keywords k ON k.id = sr.keyword_id`+where+
			" GROUP BY sr.sentiment_label",
		args...,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var label string
		var count int64
		if err := rows.Scan(&label, &count); err != nil {
			return nil, err
		}
		rollup.ByLabel[label] = count
	}
	return rollup, rows.Err()
}

func buildSentimentWhere(filter SentimentFilter) (string, []interface{}) {
	clauses := []string{"k.name = $1"}
	args := []interface{}{filter.Keyword}

	add := func(clause string, arg interface{}) {
		args = append(args, arg)
		clauses = append(clauses, clause+"$"+strconv.Itoa(len(args)))
	}

	if filter.Website != "" {
		add("sr.website_name = ", filter.Website)
	}
	if filter.Category != "" {
		add("sr.category = ", filter.Category)
	}
	if !filter.From.IsZero() {
		add("sr.processed_at >= ", filter.From)
	}
	if !filter.To.IsZero() {
		add("sr.processed_at < ", filter.To)
	}

	return " WHERE " + strings.Join(clauses, " AND "), args
}
