package ingest

import (
	"context"
	"time"

	"skandan/tamilnewsworker/internal/scraper"
	"skandan/tamilnewsworker/internal/storage"
	"skandan/tamilnewsworker/logger"
	apperrors "skandan/tamilnewsworker/pkg/errors"
	"skandan/tamilnewsworker/services/publisher"
)

// WebsiteStore resolves website names to ids
type WebsiteStore interface {
	GetOrCreate(ctx context.Context, name string) (int64, error)
}

// KeywordStore resolves keyword names to ids
type KeywordStore interface {
	GetOrCreate(ctx context.Context, name string) (int64, error)
}

// ArticleStore persists articles and their keyword links
type ArticleStore interface {
	GetOrCreate(ctx context.Context, article *storage.Article) (int64, bool, error)
	LinkKeywords(ctx context.Context, articleID int64, keywordIDs []int64) error
}

// Analyzer scores a freshly inserted article
type Analyzer interface {
	AnalyzeArticle(ctx context.Context, article *storage.Article) error
}

// RunStats summarizes one adapter run
type RunStats struct {
	Adapter    string        `json:"adapter"`
	Website    string        `json:"website"`
	Category   string        `json:"category"`
	Pages      int           `json:"pages"`
	Scrolls    int           `json:"scrolls"`
	Clicks     int           `json:"clicks"`
	Found      int           `json:"found"`
	Persisted  int           `json:"persisted"`
	Duplicates int           `json:"duplicates"`
	Errors     int           `json:"errors"`
	Skipped    bool          `json:"skipped,omitempty"`
	Blocked    bool          `json:"blocked,omitempty"`
	Duration   time.Duration `json:"duration"`
}

// Coordinator drives one adapter run end to end: crawl, deduplicate,
// persist, link keywords, publish the event and trigger sentiment scoring.
// Publisher and analyzer are optional.
type Coordinator struct {
	websites  WebsiteStore
	keywords  KeywordStore
	articles  ArticleStore
	analyzer  Analyzer
	publisher publisher.Publisher
	log       *logger.Logger
}

// NewCoordinator creates a coordinator over the given stores
func NewCoordinator(websites WebsiteStore, keywords KeywordStore, articles ArticleStore, analyzer Analyzer, pub publisher.Publisher) *Coordinator {
	return &Coordinator{
		websites:  websites,
		keywords:  keywords,
		articles:  articles,
		analyzer:  analyzer,
		publisher: pub,
		log:       logger.ForCoordinator(),
	}
}

// Run crawls one adapter and persists everything it emits. Storage failures
// on single articles are counted and logged, never fatal to the run; a
// failed traversal returns the partial stats together with the error.
func (c *Coordinator) Run(ctx context.Context, adapter scraper.Adapter) (*RunStats, error) {
	start := time.Now()
	stats := &RunStats{
		Adapter:  adapter.Name(),
		Website:  adapter.Website(),
		Category: adapter.Category(),
	}

	websiteID, err := c.websites.GetOrCreate(ctx, adapter.Website())
	if err != nil {
		stats.Duration = time.Since(start)
		return stats, apperrors.NewPersistence(adapter.Website(), "get or create website", err)
	}

	traversal, crawlErr := adapter.Crawl(ctx, func(raw scraper.RawArticle) error {
		c.ingestOne(ctx, adapter, websiteID, raw, stats)
		return nil
	})

	stats.Pages = traversal.Pages
	stats.Scrolls = traversal.Scrolls
	stats.Clicks = traversal.Clicks
	stats.Found = traversal.Found
	stats.Duration = time.Since(start)

	c.log.Info().
		Str("adapter", stats.Adapter).
		Int("pages", stats.Pages).
		Int("scrolls", stats.Scrolls).
		Int("clicks", stats.Clicks).
		Int("found", stats.Found).
		Int("persisted", stats.Persisted).
		Int("duplicates", stats.Duplicates).
		Int("errors", stats.Errors).
		Dur("duration", stats.Duration).
		Msg("Crawl finished")

	if crawlErr != nil {
		stats.Blocked = apperrors.IsBlockingSignal(crawlErr)
		return stats, crawlErr
	}
	return stats, nil
}

// ingestOne persists one scraped article and runs the post-insert hooks
func (c *Coordinator) ingestOne(ctx context.Context, adapter scraper.Adapter, websiteID int64, raw scraper.RawArticle, stats *RunStats) {
	article := &storage.Article{
		WebsiteID:     websiteID,
		WebsiteName:   adapter.Website(),
		Title:         raw.Title,
		ArticleURL:    raw.URL,
		ImageURL:      raw.ImageURL,
		Category:      adapter.Category(),
		PublishedTime: raw.PublishedAt,
		Language:      "ta",
		Author:        raw.Author,
		Description:   raw.Description,
	}

	_, created, err := c.articles.GetOrCreate(ctx, article)
	if err != nil {
		stats.Errors++
		c.log.Warn().Err(err).Str("url", raw.URL).Msg("Error persisting article")
		return
	}
	if !created {
		stats.Duplicates++
		return
	}
	stats.Persisted++

	if len(raw.MatchedKeywords) > 0 {
		keywordIDs := make([]int64, 0, len(raw.MatchedKeywords))
		for _, name := range raw.MatchedKeywords {
			id, err := c.keywords.GetOrCreate(ctx, name)
			if err != nil {
				stats.Errors++
				c.log.Warn().Err(err).Str("keyword", name).Msg("Error resolving keyword")
				continue
			}
			keywordIDs = append(keywordIDs, id)
		}
		if err := c.articles.LinkKeywords(ctx, article.ID, keywordIDs); err != nil {
			stats.Errors++
			c.log.Warn().Err(err).Int64("news_id", article.ID).Msg("Error linking keywords")
		}
	}

	if c.publisher != nil {
		event := publisher.ArticleEvent{
			NewsID:     article.ID,
			Website:    article.WebsiteName,
			Category:   article.Category,
			Title:      article.Title,
			ArticleURL: article.ArticleURL,
			Keywords:   raw.MatchedKeywords,
		}
		if raw.PublishedAt != nil {
			event.PublishedAt = raw.PublishedAt.Format(time.RFC3339)
		}
		if err := c.publisher.PublishArticle(ctx, event); err != nil {
			stats.Errors++
			c.log.Warn().Err(err).Int64("news_id", article.ID).Msg("Error publishing article event")
		}
	}

	// Sentiment runs only on first insert; re-crawls of the same URL are
	// deduplicated above and never rescore
	if c.analyzer != nil {
		if err := c.analyzer.AnalyzeArticle(ctx, article); err != nil {
			stats.Errors++
			c.log.Warn().Err(err).Int64("news_id", article.ID).Msg("Error analyzing article")
		}
	}
}
