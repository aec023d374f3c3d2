package scraper

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"skandan/tamilnewsworker/internal/browser"
	"skandan/tamilnewsworker/logger"
	apperrors "skandan/tamilnewsworker/pkg/errors"
)

const defaultNavTimeout = 60 * time.Second

// SiteAdapter crawls one site/category combination. Traversal strategy and
// field selectors come from the config; the browser session is opened per
// crawl and driven strictly sequentially.
type SiteAdapter struct {
	cfg      AdapterConfig
	sessions browser.Factory
	log      *logger.Logger
}

// NewSiteAdapter creates a site adapter from its configuration
func NewSiteAdapter(cfg AdapterConfig, sessions browser.Factory) *SiteAdapter {
	if cfg.NavTimeout == 0 {
		cfg.NavTimeout = defaultNavTimeout
	}
	return &SiteAdapter{
		cfg:      cfg,
		sessions: sessions,
		log:      logger.ForAdapter(cfg.Name),
	}
}

// Name returns the adapter's name for logging and identification
func (a *SiteAdapter) Name() string { return a.cfg.Name }

// Website returns the display name of the news source
func (a *SiteAdapter) Website() string { return a.cfg.Website }

// Category returns the category label this adapter crawls
func (a *SiteAdapter) Category() string { return a.cfg.Category }

// Crawl opens a session and walks the site with the configured traversal
func (a *SiteAdapter) Crawl(ctx context.Context, emit EmitFunc) (TraversalStats, error) {
	var stats TraversalStats

	page, err := a.sessions(ctx)
	if err != nil {
		return stats, apperrors.NewNetwork(a.cfg.Website, "open browser session", err)
	}
	defer page.Close(ctx)

	switch t := a.cfg.Traversal.(type) {
	case *PagedTraversal:
		return a.crawlPaged(ctx, page, t, emit)
	case *ScrollTraversal:
		return a.crawlScrolled(ctx, page, t, emit)
	case *ClickTraversal:
		return a.crawlClicked(ctx, page, t, emit)
	default:
		return stats, apperrors.NewConfiguration(fmt.Sprintf("adapter %s has no traversal strategy", a.cfg.Name), nil)
	}
}

// crawlPaged iterates numbered pages, stopping when a page yields no items
func (a *SiteAdapter) crawlPaged(ctx context.Context, page browser.Session, t *PagedTraversal, emit EmitFunc) (TraversalStats, error) {
	var stats TraversalStats

	for pageNum := 1; pageNum <= t.MaxPages; pageNum++ {
		stats.Pages++
		url := t.PageURL(pageNum)

		a.log.Debug().Int("page", pageNum).Str("url", url).Msg("Scraping page")
		if err := page.Navigate(ctx, url, a.cfg.NavTimeout); err != nil {
			// Navigation failure is fatal to the run; counts so far stand
			return stats, apperrors.NewNetwork(a.cfg.Website, fmt.Sprintf("navigate page %d (%s)", pageNum, url), err)
		}

		items, err := page.QueryAll(ctx, a.cfg.Selectors.Item)
		if err != nil {
			a.log.Warn().Err(err).Int("page", pageNum).Msg("Item query failed, skipping page")
			continue
		}

		if len(items) == 0 {
			a.log.Info().Int("page", pageNum).Msg("No more articles found, stopping")
			break
		}
		stats.Found += len(items)

		if err := a.processItems(ctx, items, pageNum, emit); err != nil {
			return stats, err
		}
	}

	return stats, nil
}

// crawlScrolled scrolls until the page height stabilizes, trying one
// "load more" click before concluding the feed is exhausted
func (a *SiteAdapter) crawlScrolled(ctx context.Context, page browser.Session, t *ScrollTraversal, emit EmitFunc) (TraversalStats, error) {
	var stats TraversalStats

	if err := page.Navigate(ctx, a.cfg.URL, a.cfg.NavTimeout); err != nil {
		return stats, apperrors.NewNetwork(a.cfg.Website, "navigate "+a.cfg.URL, err)
	}

	previousHeight, err := browser.PageHeight(ctx, page)
	if err != nil {
		return stats, apperrors.NewNetwork(a.cfg.Website, "read page height", err)
	}

	step := t.ScrollStep
	if step == 0 {
		step = 3000
	}

	for stats.Scrolls < t.MaxScrolls {
		if err := page.Scroll(ctx, step); err != nil {
			a.log.Warn().Err(err).Msg("Scroll failed, stopping")
			break
		}
		if err := page.Wait(ctx, t.SettleWait); err != nil {
			return stats, err
		}

		currentHeight, err := browser.PageHeight(ctx, page)
		if err != nil {
			a.log.Warn().Err(err).Msg("Height check failed, stopping")
			break
		}

		if currentHeight == previousHeight {
			// Height stalled; a hidden "load more" control may still be present
			currentHeight, err = a.tryLoadMore(ctx, page, t, previousHeight)
			if err != nil || currentHeight == previousHeight {
				break
			}
		}

		previousHeight = currentHeight
		stats.Scrolls++
	}

	return a.collectItems(ctx, page, stats, emit)
}

// tryLoadMore clicks the fallback control once and reports the new height.
// Any failure is reported as an unchanged height.
func (a *SiteAdapter) tryLoadMore(ctx context.Context, page browser.Session, t *ScrollTraversal, previousHeight int) (int, error) {
	if t.LoadMore == "" {
		return previousHeight, nil
	}

	button, err := page.Query(ctx, t.LoadMore)
	if err != nil {
		if !errors.Is(err, browser.ErrNoElement) {
			a.log.Warn().Err(err).Msg("Load-more lookup failed")
		}
		return previousHeight, nil
	}

	a.log.Debug().Msg("Clicking load-more control")
	if err := button.Click(ctx); err != nil {
		a.log.Warn().Err(err).Msg("Load-more click failed")
		return previousHeight, nil
	}
	if err := page.Wait(ctx, t.SettleWait); err != nil {
		return previousHeight, err
	}

	height, err := browser.PageHeight(ctx, page)
	if err != nil {
		return previousHeight, nil
	}
	return height, nil
}

// crawlClicked clicks the load-more button until it disappears or the
// click budget is spent
func (a *SiteAdapter) crawlClicked(ctx context.Context, page browser.Session, t *ClickTraversal, emit EmitFunc) (TraversalStats, error) {
	var stats TraversalStats

	if err := page.Navigate(ctx, a.cfg.URL, a.cfg.NavTimeout); err != nil {
		return stats, apperrors.NewNetwork(a.cfg.Website, "navigate "+a.cfg.URL, err)
	}

	for stats.Clicks < t.MaxClicks {
		button, err := page.Query(ctx, t.Button)
		if err != nil {
			if !errors.Is(err, browser.ErrNoElement) {
				a.log.Warn().Err(err).Msg("Load-more lookup failed")
			}
			a.log.Info().Int("clicks", stats.Clicks).Msg("No more load-more button, stopping")
			break
		}
		if err := button.Click(ctx); err != nil {
			a.log.Warn().Err(err).Msg("Load-more click failed, stopping")
			break
		}
		if err := page.Wait(ctx, t.SettleWait); err != nil {
			return stats, err
		}
		stats.Clicks++
	}

	return a.collectItems(ctx, page, stats, emit)
}

// collectItems gathers all item elements from the fully expanded page and
// processes them in order
func (a *SiteAdapter) collectItems(ctx context.Context, page browser.Session, stats TraversalStats, emit EmitFunc) (TraversalStats, error) {
	items, err := page.QueryAll(ctx, a.cfg.Selectors.Item)
	if err != nil {
		return stats, apperrors.NewParsing(a.cfg.Website, "query items", err)
	}
	stats.Found = len(items)
	a.log.Info().Int("found", len(items)).Msg("Collected articles")

	if err := a.processItems(ctx, items, 0, emit); err != nil {
		return stats, err
	}
	return stats, nil
}

// processItems extracts, filters and emits each item; a failure on one item
// never aborts its siblings
func (a *SiteAdapter) processItems(ctx context.Context, items []browser.Element, pageNum int, emit EmitFunc) error {
	for i, el := range items {
		article, err := a.extractItem(ctx, el)
		if err != nil {
			a.log.Warn().
				Err(err).
				Int("page", pageNum).
				Int("item", i).
				Msg("Error parsing article")
			continue
		}

		keep, err := a.keywordFilter(ctx, article)
		if err != nil {
			a.log.Warn().
				Err(err).
				Str("url", article.URL).
				Msg("Error matching keywords")
			continue
		}
		if !keep {
			continue
		}

		if err := emit(*article); err != nil {
			return err
		}
	}
	return nil
}

// extractItem pulls the article fields out of one item element. Title and
// link are required; image, author, date and description degrade to empty
// values when their elements are missing or unreadable.
func (a *SiteAdapter) extractItem(ctx context.Context, el browser.Element) (*RawArticle, error) {
	if a.cfg.Extract != nil {
		return a.cfg.Extract(ctx, el, a)
	}
	sel := a.cfg.Selectors

	titleEl, err := el.Query(ctx, sel.Title)
	if err != nil {
		return nil, apperrors.NewParsing(a.cfg.Website, "title element", err)
	}
	title, err := titleEl.Text(ctx)
	if err != nil {
		return nil, apperrors.NewParsing(a.cfg.Website, "title text", err)
	}
	title = strings.TrimSpace(title)
	if title == "" {
		return nil, apperrors.NewParsing(a.cfg.Website, "empty title", nil)
	}

	var linkEl browser.Element
	if sel.LinkInTitle {
		linkEl, err = titleEl.Query(ctx, "a")
	} else {
		linkEl, err = el.Query(ctx, sel.Link)
	}
	if err != nil {
		return nil, apperrors.NewParsing(a.cfg.Website, "link element", err)
	}
	href, err := linkEl.Attribute(ctx, "href")
	if err != nil {
		return nil, apperrors.NewParsing(a.cfg.Website, "link href", err)
	}
	href = strings.TrimSpace(href)
	if href == "" {
		return nil, apperrors.NewParsing(a.cfg.Website, "empty link", nil)
	}

	article := &RawArticle{
		Title: title,
		URL:   a.ResolveURL(href),
	}

	if sel.Image != "" {
		article.ImageURL = a.extractImage(ctx, el)
	}

	if sel.Author != "" {
		if authorEl, err := el.Query(ctx, sel.Author); err == nil {
			if author, err := authorEl.Text(ctx); err == nil {
				article.Author = strings.TrimSpace(author)
			}
		}
	}

	if sel.Date != "" && a.cfg.ParseDate != nil {
		article.PublishedAt = a.extractDate(ctx, el)
	}

	if sel.Description != "" {
		if descEl, err := el.Query(ctx, sel.Description); err == nil {
			if desc, err := descEl.Text(ctx); err == nil {
				article.Description = strings.TrimSpace(desc)
			}
		}
	}

	return article, nil
}

// extractImage reads the image source trying each configured attribute;
// failures degrade to no image
func (a *SiteAdapter) extractImage(ctx context.Context, el browser.Element) string {
	imgEl, err := el.Query(ctx, a.cfg.Selectors.Image)
	if err != nil {
		return ""
	}

	attrs := a.cfg.Selectors.ImageAttrs
	if len(attrs) == 0 {
		attrs = []string{"src"}
	}
	for _, attr := range attrs {
		if src, err := imgEl.Attribute(ctx, attr); err == nil && src != "" {
			return a.ResolveURL(strings.TrimSpace(src))
		}
	}
	return ""
}

// extractDate reads the raw date string (attribute or text) and parses it;
// unparseable dates degrade to an absent timestamp
func (a *SiteAdapter) extractDate(ctx context.Context, el browser.Element) *time.Time {
	dateEl, err := el.Query(ctx, a.cfg.Selectors.Date)
	if err != nil {
		return nil
	}

	var raw string
	if a.cfg.Selectors.DateAttr != "" {
		raw, err = dateEl.Attribute(ctx, a.cfg.Selectors.DateAttr)
	} else {
		raw, err = dateEl.Text(ctx)
	}
	if err != nil {
		return nil
	}
	return a.cfg.ParseDate(raw)
}

// keywordFilter decides whether an article should be persisted. Matching is
// plain substring containment against the title and, when a body fetcher is
// configured, the full article body. Non-matching articles are dropped
// before any write happens.
func (a *SiteAdapter) keywordFilter(ctx context.Context, article *RawArticle) (bool, error) {
	if a.cfg.Keyword == "" && len(a.cfg.Keywords) == 0 {
		return true, nil
	}

	body := article.Description
	if a.cfg.FetchBody != nil {
		fetched, err := a.cfg.FetchBody(ctx, article.URL)
		if err != nil {
			return false, apperrors.NewNetwork(a.cfg.Website, "fetch article body "+article.URL, err)
		}
		article.Description = fetched
		body = fetched
		if body == "" {
			return false, nil
		}
	}

	contains := func(keyword string) bool {
		return strings.Contains(article.Title, keyword) ||
			(body != "" && strings.Contains(body, keyword))
	}

	if a.cfg.Keyword != "" {
		if !contains(a.cfg.Keyword) {
			return false, nil
		}
		article.MatchedKeywords = []string{a.cfg.Keyword}
		return true, nil
	}

	var matched []string
	for _, keyword := range a.cfg.Keywords {
		if contains(keyword) {
			matched = append(matched, keyword)
		}
	}
	if len(matched) == 0 {
		return false, nil
	}
	article.MatchedKeywords = matched
	return true, nil
}

// ResolveURL resolves a possibly relative href against the site base URL
func (a *SiteAdapter) ResolveURL(href string) string {
	if href == "" {
		return ""
	}
	if strings.HasPrefix(href, "http://") || strings.HasPrefix(href, "https://") {
		return href
	}
	if strings.HasPrefix(href, "//") {
		return "https:" + href
	}
	return a.cfg.BaseURL + href
}
