package scraper

import (
	"context"
	"strings"

	"github.com/mmcdole/gofeed"

	"skandan/tamilnewsworker/logger"
	apperrors "skandan/tamilnewsworker/pkg/errors"
)

// RSSAdapter pulls articles from a syndication feed. It is a cheap
// complement to the browser-driven adapters for sources that publish one.
type RSSAdapter struct {
	name     string
	website  string
	category string
	feedURL  string
	keywords []string
	parser   *gofeed.Parser
	log      *logger.Logger
}

// NewRSSAdapter creates an adapter reading the given feed URL. An optional
// keyword list filters items the same way the browser adapters do.
func NewRSSAdapter(name, website, category, feedURL string, keywords []string) *RSSAdapter {
	return &RSSAdapter{
		name:     name,
		website:  website,
		category: category,
		feedURL:  feedURL,
		keywords: keywords,
		parser:   gofeed.NewParser(),
		log:      logger.ForAdapter(name),
	}
}

func (a *RSSAdapter) Name() string     { return a.name }
func (a *RSSAdapter) Website() string  { return a.website }
func (a *RSSAdapter) Category() string { return a.category }

// Crawl fetches the feed once and emits every matching item. Feed reads
// count as a single page.
func (a *RSSAdapter) Crawl(ctx context.Context, emit EmitFunc) (TraversalStats, error) {
	var stats TraversalStats

	feed, err := a.parser.ParseURLWithContext(a.feedURL, ctx)
	if err != nil {
		return stats, apperrors.NewNetwork(a.website, "fetch feed "+a.feedURL, err)
	}
	stats.Pages = 1
	stats.Found = len(feed.Items)
	a.log.Info().Int("found", len(feed.Items)).Msg("Fetched feed")

	for _, item := range feed.Items {
		article := RawArticle{
			Title:       strings.TrimSpace(item.Title),
			URL:         strings.TrimSpace(item.Link),
			Description: strings.TrimSpace(item.Description),
		}
		if article.Title == "" || article.URL == "" {
			continue
		}
		if item.PublishedParsed != nil {
			utc := item.PublishedParsed.UTC()
			article.PublishedAt = &utc
		}
		if item.Image != nil {
			article.ImageURL = item.Image.URL
		}
		if len(item.Authors) > 0 {
			article.Author = item.Authors[0].Name
		}

		if len(a.keywords) > 0 {
			var matched []string
			for _, keyword := range a.keywords {
				if strings.Contains(article.Title, keyword) || strings.Contains(article.Description, keyword) {
					matched = append(matched, keyword)
				}
			}
			if len(matched) == 0 {
				continue
			}
			article.MatchedKeywords = matched
		}

		if err := emit(article); err != nil {
			return stats, err
		}
	}

	return stats, nil
}
