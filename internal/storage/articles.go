package storage

import (
	"context"
	"database/sql"
	"strconv"
	"strings"

	"github.com/jmoiron/sqlx"
)

type ArticleStore struct {
	db *sqlx.DB
}

func NewArticleStore(db *sqlx.DB) *ArticleStore {
	return &ArticleStore{db: db}
}

// GetOrCreate inserts the article unless one already exists for the same
// (website, category, article_url). It returns the row id and whether the
// insert happened; existing rows are never updated.
func (s *ArticleStore) GetOrCreate(ctx context.Context, article *Article) (int64, bool, error) {
	var id int64
	err := s.db.QueryRowContext(ctx,
		`INSERT INTO news_details (
			website_id, website_name, title, article_url, image_url,
			category, published_time, language, author, description
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		ON CONFLICT (website_id, category, article_url) DO NOTHING
		RETURNING id`,
		article.WebsiteID,
		article.WebsiteName,
		article.Title,
		article.ArticleURL,
		article.ImageURL,
		article.Category,
		article.PublishedTime,
		article.Language,
		article.Author,
		article.Description,
	).Scan(&id)

	if err == nil {
		article.ID = id
		return id, true, nil
	}
	if err != sql.ErrNoRows {
		return 0, false, err
	}

	err = s.db.QueryRowContext(ctx,
		`SELECT id FROM news_details
		 WHERE website_id = $1 AND category = $2 AND article_url = $3`,
		article.WebsiteID, article.Category, article.ArticleURL,
	).Scan(&id)
	if err != nil {
		return 0, false, err
	}
	article.ID = id
	return id, false, nil
}

// LinkKeywords attaches the matched keywords to an article
func (s *ArticleStore) LinkKeywords(ctx context.Context, articleID int64, keywordIDs []int64) error {
	if len(keywordIDs) == 0 {
		return nil
	}

	var sb strings.Builder
	sb.WriteString("INSERT INTO news_keywords (news_id, keyword_id) VALUES ")
	args := make([]interface{}, 0, len(keywordIDs)+1)
	args = append(args, articleID)

	for i, keywordID := range keywordIDs {
		if i > 0 {
			sb.WriteString(", ")
		}
		sb.WriteString("($1, $")
		sb.WriteString(strconv.Itoa(i + 2))
		sb.WriteString(")")
		args = append(args, keywordID)
	}
	sb.WriteString(" ON CONFLICT DO NOTHING")

	_, err := s.db.ExecContext(ctx, sb.String(), args...)
	return err
}

// GetByID returns one article
func (s *ArticleStore) GetByID(ctx context.Context, id int64) (*Article, error) {
	var article Article
	err := s.db.GetContext(ctx, &article,
		"SELECT * FROM news_details WHERE id = $1", id)
	if err != nil {
		return nil, err
	}
	return &article, nil
}

// ListWithoutSentiment returns articles that have no sentiment row at all,
// oldest first, capped at limit
func (s *ArticleStore) ListWithoutSentiment(ctx context.Context, limit int) ([]Article, error) {
	var articles []Article
	err := s.db.SelectContext(ctx, &articles,
		`SELECT n.* FROM news_details n
		 WHERE NOT EXISTS (
			SELECT 1 FROM sentiment_results sr WHERE sr.news_id = n.id
		 )
		 ORDER BY n.id
		 LIMIT $1`,
		limit,
	)
	return articles, err
}
