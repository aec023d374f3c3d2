package publisher

import "context"

// ArticleEvent announces one newly persisted article to downstream consumers
type ArticleEvent struct {
	NewsID      int64    `json:"news_id"`
	Website     string   `json:"website"`
	Category    string   `json:"category"`
	Title       string   `json:"title"`
	ArticleURL  string   `json:"article_url"`
	Keywords    []string `json:"keywords,omitempty"`
	PublishedAt string   `json:"published_at,omitempty"`
}

// Publisher represents a service for publishing new-article events
type Publisher interface {
	// PublishArticle publishes one event to the stream
	PublishArticle(ctx context.Context, event ArticleEvent) error

	// TrimStream trims the stream to the configured maximum length
	TrimStream(ctx context.Context) error

	// Close closes the publisher connection
	Close() error
}
