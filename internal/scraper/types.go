package scraper

import (
	"context"
	"time"

	"skandan/tamilnewsworker/internal/browser"
)

// RawArticle is one scraped article record before persistence
type RawArticle struct {
	Title           string
	URL             string
	ImageURL        string
	Author          string
	Description     string
	PublishedAt     *time.Time
	MatchedKeywords []string
}

// EmitFunc receives scraped articles one at a time, in page order
type EmitFunc func(RawArticle) error

// TraversalStats counts the work one crawl performed
type TraversalStats struct {
	Pages   int
	Scrolls int
	Clicks  int
	Found   int
}

// Adapter is the contract every site adapter implements
type Adapter interface {
	// Name returns the adapter's name for logging and identification
	Name() string

	// Website returns the display name of the news source
	Website() string

	// Category returns the category label this adapter crawls
	Category() string

	// Crawl walks the site and emits each extracted article
	Crawl(ctx context.Context, emit EmitFunc) (TraversalStats, error)
}

// DateParserFunc turns a source date string into a UTC timestamp,
// returning nil when the string cannot be parsed
type DateParserFunc func(text string) *time.Time

// BodyFetcherFunc fetches the full body text of an article by URL
type BodyFetcherFunc func(ctx context.Context, url string) (string, error)

// ExtractFunc overrides the default field extraction for one item element
type ExtractFunc func(ctx context.Context, el browser.Element, a *SiteAdapter) (*RawArticle, error)

// Selectors contains CSS selectors for the fields of one article element
type Selectors struct {
	Item        string
	Title       string
	LinkInTitle bool // anchor is nested inside the title element
	Link        string
	Image       string
	ImageAttrs  []string // attribute fallbacks, e.g. data-src then src
	Author      string
	Date        string
	DateAttr    string // read the date from this attribute instead of text
	Description string
}

// PagedTraversal iterates numbered pages until one yields zero items
type PagedTraversal struct {
	MaxPages int
	PageURL  func(page int) string
}

// ScrollTraversal scrolls until the page height stops growing, with one
// "load more" click as fallback before giving up
type ScrollTraversal struct {
	MaxScrolls int
	ScrollStep int
	LoadMore   string
	SettleWait time.Duration
}

// ClickTraversal clicks a "load more" control until it disappears
type ClickTraversal struct {
	MaxClicks  int
	Button     string
	SettleWait time.Duration
}

// AdapterConfig contains configuration for a site adapter
type AdapterConfig struct {
	Name       string
	Website    string
	Category   string
	URL        string
	BaseURL    string
	Selectors  Selectors
	ParseDate  DateParserFunc
	Traversal  interface{} // *PagedTraversal, *ScrollTraversal or *ClickTraversal
	Extract    ExtractFunc
	FetchBody  BodyFetcherFunc
	Keyword    string   // ad hoc keyword filter
	Keywords   []string // registry keyword filter
	NavTimeout time.Duration
}
