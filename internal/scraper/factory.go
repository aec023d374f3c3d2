package scraper

import (
	"fmt"
	"time"

	"skandan/tamilnewsworker/config"
	"skandan/tamilnewsworker/internal/browser"
)

const settleWait = 2 * time.Second

// CreateCategoryAdapters creates the full set of category adapters from the
// configuration. Category runs persist every article they find.
func CreateCategoryAdapters(cfg *config.Config, sessions browser.Factory) []Adapter {
	configurations := []AdapterConfig{
		{
			// Hindu Tamil latest-news listing, numbered path segments
			Name:     "hindu_tamil_latest",
			Website:  "Hindu Tamil",
			Category: "Latest News",
			URL:      cfg.HinduTamilLatestURL,
			BaseURL:  "https://www.hindutamil.in",
			Selectors: Selectors{
				Item:   "div.card-outer._shareContainer",
				Title:  "p.card-text",
				Link:   "a[href]",
				Image:  "img",
				Author: ".card-bottom span",
				Date:   ".card-bottom .date",
			},
			ParseDate: ParseTamilDate,
			Traversal: &PagedTraversal{
				MaxPages: 10,
				PageURL:  numberedPathPager(cfg.HinduTamilLatestURL),
			},
		},
		{
			// BBC Tamil India topic feed, ?page= query pagination
			Name:     "bbc_tamil_india",
			Website:  "BBC Tamil",
			Category: "India",
			URL:      cfg.BBCTamilIndiaURL,
			BaseURL:  "https://www.bbc.com",
			Selectors: Selectors{
				Item:        "li.bbc-t44f9r",
				Title:       "h2",
				LinkInTitle: true,
				Image:       "img",
				Date:        "time",
				DateAttr:    "datetime",
			},
			ParseDate: ParseISOTime,
			Traversal: &PagedTraversal{
				MaxPages: 5,
				PageURL:  queryPager(cfg.BBCTamilIndiaURL),
			},
		},
		{
			// DinaThanthi cinema listing; thumbnails lazy-load via data-src
			Name:     "dinathanthi_cinema",
			Website:  "DinaThanthi",
			Category: "Cinema",
			URL:      cfg.DinaThanthiCinemaURL,
			BaseURL:  "https://www.dailythanthi.com",
			Selectors: Selectors{
				Item:        "div.ListingNewsWithMEDImage",
				Title:       "h3",
				Link:        "a[href]",
				Image:       "img",
				ImageAttrs:  []string{"data-src", "src"},
				Date:        "span.convert-to-localtime",
				DateAttr:    "data-datestring",
				Description: "div",
			},
			ParseDate: ParseDataDatestring,
			Traversal: &PagedTraversal{
				MaxPages: 5,
				PageURL:  queryPager(cfg.DinaThanthiCinemaURL),
			},
		},
		{
			// News18 Tamil latest-news tag page behind a load-more button
			Name:     "news18_latest",
			Website:  "News18 Tamil",
			Category: "Latest News",
			URL:      cfg.News18LatestURL,
			BaseURL:  "https://tamil.news18.com",
			Selectors: Selectors{
				Item:  "li.jsx-1600056326",
				Title: "div.hd",
				Link:  "a[href]",
				Image: "img",
			},
			Traversal: &ClickTraversal{
				MaxClicks:  10,
				Button:     "button.load_more",
				SettleWait: settleWait,
			},
		},
		{
			// News18 Tamil Tamilnadu section, same pattern with different
			// generated class names
			Name:     "news18_tamilnadu",
			Website:  "News18 Tamil",
			Category: "Tamilnadu",
			URL:      cfg.News18TamilnaduURL,
			BaseURL:  "https://tamil.news18.com",
			Selectors: Selectors{
				Item:  "li.jsx-c82f6dc2e757e0b3",
				Title: "figcaption",
				Link:  "a[href]",
				Image: "img",
			},
			Traversal: &ClickTraversal{
				MaxClicks:  10,
				Button:     "button.Load_more",
				SettleWait: settleWait,
			},
		},
		{
			// Puthiyathalaimurai infinite-scroll feed
			Name:     "puthiyathalaimurai_latest",
			Website:  "Puthiyathalaimurai",
			Category: "Latest News",
			URL:      cfg.PuthiyathalaimuraiLatestURL,
			BaseURL:  "https://www.puthiyathalaimurai.com",
			Selectors: Selectors{
				Item:        "div.four-col-five-stories-m_card__2lzhH",
				Title:       "h6",
				Link:        "a[href]",
				Image:       "img",
				Author:      "div.author-name",
				Date:        "time",
				DateAttr:    "datetime",
				Description: "div.read-time-m_read-time-wrapper__3GyC_",
			},
			ParseDate: ParseISOTime,
			Traversal: &ScrollTraversal{
				MaxScrolls: 20,
				ScrollStep: 3000,
				LoadMore:   `div[data-test-id="load-more"]`,
				SettleWait: settleWait,
			},
		},
	}

	adapters := make([]Adapter, 0, len(configurations)+1)
	for _, ac := range configurations {
		adapters = append(adapters, NewSiteAdapter(ac, sessions))
	}

	if cfg.BBCTamilRSSURL != "" {
		adapters = append(adapters, NewRSSAdapter("bbc_tamil_rss", "BBC Tamil", "Top Stories", cfg.BBCTamilRSSURL, nil))
	}

	return adapters
}

// CreateKeywordAdapters creates the Tamilnadu keyword adapters. Each one
// persists only articles matching at least one of the given keywords.
func CreateKeywordAdapters(cfg *config.Config, sessions browser.Factory, keywords []string) []Adapter {
	configurations := []AdapterConfig{
		{
			// Hindu Tamil listing text is headline-only, so matching also
			// fetches the article body before deciding
			Name:     "key_hindu_tamil_tamilnadu",
			Website:  "Hindu Tamil",
			Category: "Tamilnadu",
			URL:      cfg.HinduTamilTamilnaduURL,
			BaseURL:  "https://www.hindutamil.in",
			Selectors: Selectors{
				Item:   "div.card-outer._shareContainer",
				Title:  "p.card-text",
				Link:   "a[href]",
				Image:  "img",
				Author: ".card-bottom span",
				Date:   ".card-bottom .date",
			},
			ParseDate: ParseTamilDate,
			Traversal: &PagedTraversal{
				MaxPages: 3,
				PageURL:  numberedPathPager(cfg.HinduTamilTamilnaduURL),
			},
			FetchBody: NewBodyFetcher("div#pgContentPrint p"),
			Keywords:  keywords,
		},
		{
			Name:     "key_bbc_tamil_tamilnadu",
			Website:  "BBC Tamil",
			Category: "Tamilnadu",
			URL:      cfg.BBCTamilTamilnaduURL,
			BaseURL:  "https://www.bbc.com",
			Selectors: Selectors{
				Item:        "li.bbc-t44f9r",
				Title:       "h2",
				LinkInTitle: true,
				Image:       "img",
				Date:        "time",
				DateAttr:    "datetime",
			},
			ParseDate: ParseISOTime,
			Traversal: &PagedTraversal{
				MaxPages: 15,
				PageURL:  queryPager(cfg.BBCTamilTamilnaduURL),
			},
			Keywords: keywords,
		},
		{
			// DinaThanthi publishes Tamilnadu news at high volume, so the
			// page budget is much larger here
			Name:     "key_dinathanthi_tamilnadu",
			Website:  "DinaThanthi",
			Category: "Tamilnadu",
			URL:      cfg.DinaThanthiTamilnaduURL,
			BaseURL:  "https://www.dailythanthi.com",
			Selectors: Selectors{
				Item:        "div.ListingNewsWithMEDImage",
				Title:       "h3",
				Link:        "a[href]",
				Image:       "img",
				ImageAttrs:  []string{"data-src", "src"},
				Date:        "span.convert-to-localtime",
				DateAttr:    "data-datestring",
				Description: "div",
			},
			ParseDate: ParseDataDatestring,
			Traversal: &PagedTraversal{
				MaxPages: 80,
				PageURL:  queryPager(cfg.DinaThanthiTamilnaduURL),
			},
			Keywords: keywords,
		},
		{
			// News18 exposes the section as numbered pages as well, which
			// is cheaper than clicking through for keyword sweeps
			Name:     "key_news18_tamilnadu",
			Website:  "News18 Tamil",
			Category: "Tamilnadu",
			URL:      cfg.News18TamilnaduURL,
			BaseURL:  "https://tamil.news18.com",
			Selectors: Selectors{
				Item:  "li.jsx-d0e08582aab1ee73",
				Title: "figcaption",
				Link:  "a[href]",
				Image: "img",
			},
			Traversal: &PagedTraversal{
				MaxPages: 25,
				PageURL: func(page int) string {
					if page == 1 {
						return cfg.News18TamilnaduURL
					}
					return fmt.Sprintf("%spage-%d/", cfg.News18TamilnaduURL, page)
				},
			},
			Keywords: keywords,
		},
		{
			Name:     "key_puthiyathalaimurai_tamilnadu",
			Website:  "Puthiyathalaimurai",
			Category: "Tamilnadu",
			URL:      cfg.PuthiyathalaimuraiTamilnaduURL,
			BaseURL:  "https://www.puthiyathalaimurai.com",
			Selectors: Selectors{
				Item:        "div.four-col-five-stories-m_card__2lzhH",
				Title:       "h6",
				Link:        "a[href]",
				Image:       "img",
				Author:      "div.author-name",
				Date:        "time",
				DateAttr:    "datetime",
				Description: "div.read-time-m_read-time-wrapper__3GyC_",
			},
			ParseDate: ParseISOTime,
			Traversal: &ScrollTraversal{
				MaxScrolls: 10,
				ScrollStep: 3000,
				LoadMore:   `div[data-test-id="load-more"]`,
				SettleWait: settleWait,
			},
			Keywords: keywords,
		},
	}

	adapters := make([]Adapter, 0, len(configurations))
	for _, ac := range configurations {
		adapters = append(adapters, NewSiteAdapter(ac, sessions))
	}
	return adapters
}

// numberedPathPager builds page URLs of the form base, base/2, base/3, ...
func numberedPathPager(base string) func(int) string {
	return func(page int) string {
		if page == 1 {
			return base
		}
		return fmt.Sprintf("%s/%d", base, page)
	}
}

// queryPager builds page URLs of the form base?page=N
func queryPager(base string) func(int) string {
	return func(page int) string {
		return fmt.Sprintf("%s?page=%d", base, page)
	}
}
