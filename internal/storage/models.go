package storage

import "time"

// Website is a crawled news source
type Website struct {
	ID   int64  `db:"id"`
	Name string `db:"name"`
}

// Keyword is a registered tracking keyword
type Keyword struct {
	ID        int64     `db:"id"`
	Name      string    `db:"name"`
	CreatedAt time.Time `db:"created_at"`
}

// Article is one persisted news item
type Article struct {
	ID            int64      `db:"id"`
	WebsiteID     int64      `db:"website_id"`
	WebsiteName   string     `db:"website_name"`
	Title         string     `db:"title"`
	ArticleURL    string     `db:"article_url"`
	ImageURL      string     `db:"image_url"`
	Category      string     `db:"category"`
	PublishedTime *time.Time `db:"published_time"`
	Language      string     `db:"language"`
	Author        string     `db:"author"`
	Description   string     `db:"description"`
	CreatedAt     time.Time  `db:"created_at"`
}

// SentimentResult is one classification outcome for an (article, keyword)
// pair. KeywordID is nil for title-level backfill results that are not
// scoped to any keyword.
type SentimentResult struct {
	ID          int64     `db:"id"`
	NewsID      int64     `db:"news_id"`
	KeywordID   *int64    `db:"keyword_id"`
	Title       string    `db:"title"`
	WebsiteName string    `db:"website_name"`
	Category    string    `db:"category"`
	Label       string    `db:"sentiment_label"`
	Score       float64   `db:"sentiment_score"`
	Positive    float64   `db:"positive_score"`
	Negative    float64   `db:"negative_score"`
	Neutral     float64   `db:"neutral_score"`
	ProcessedAt time.Time `db:"processed_at"`
}
