package scraper

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"skandan/tamilnewsworker/internal/browser"
	apperrors "skandan/tamilnewsworker/pkg/errors"
)

func pagedConfig(base string, maxPages int) AdapterConfig {
	return AdapterConfig{
		Name:      "test_site",
		Website:   "Test Site",
		Category:  "Latest News",
		URL:       base,
		BaseURL:   "https://example.com",
		Selectors: itemSelectors(),
		ParseDate: ParseTamilDate,
		Traversal: &PagedTraversal{
			MaxPages: maxPages,
			PageURL:  queryPager(base),
		},
	}
}

func collect(t *testing.T, adapter Adapter) ([]RawArticle, TraversalStats) {
	t.Helper()
	var articles []RawArticle
	stats, err := adapter.Crawl(context.Background(), func(a RawArticle) error {
		articles = append(articles, a)
		return nil
	})
	require.NoError(t, err)
	return articles, stats
}

func TestPagedCrawl_StopsOnEmptyPage(t *testing.T) {
	session := &fakeSession{
		pages: map[string][]browser.Element{
			"https://example.com/news?page=1": {
				newItem("முதல் செய்தி", "/news/1", "https://cdn.example.com/1.jpg", "Staff", "26 ஜூன், 2025"),
				newItem("இரண்டாம் செய்தி", "https://example.com/news/2", "", "", ""),
				newItem("மூன்றாம் செய்தி", "/news/3", "", "", ""),
			},
		},
	}
	adapter := NewSiteAdapter(pagedConfig("https://example.com/news", 10), session.factory())

	articles, stats := collect(t, adapter)

	// Page 2 was visited, found empty, and the loop stopped there
	assert.Equal(t, 2, stats.Pages)
	assert.Equal(t, 3, stats.Found)
	require.Len(t, articles, 3)

	first := articles[0]
	assert.Equal(t, "முதல் செய்தி", first.Title)
	assert.Equal(t, "https://example.com/news/1", first.URL)
	assert.Equal(t, "https://cdn.example.com/1.jpg", first.ImageURL)
	assert.Equal(t, "Staff", first.Author)
	require.NotNil(t, first.PublishedAt)
	assert.Equal(t, time.Date(2025, 6, 26, 0, 0, 0, 0, time.UTC), *first.PublishedAt)

	// Absolute link passes through untouched
	assert.Equal(t, "https://example.com/news/2", articles[1].URL)
	assert.True(t, session.closed)
}

func TestPagedCrawl_HonorsPageBudget(t *testing.T) {
	pages := map[string][]browser.Element{}
	for i := 1; i <= 10; i++ {
		pages[fmt.Sprintf("https://example.com/news?page=%d", i)] = []browser.Element{
			newItem(fmt.Sprintf("செய்தி %d", i), fmt.Sprintf("/news/%d", i), "", "", ""),
		}
	}
	session := &fakeSession{pages: pages}
	adapter := NewSiteAdapter(pagedConfig("https://example.com/news", 3), session.factory())

	articles, stats := collect(t, adapter)

	assert.Equal(t, 3, stats.Pages)
	assert.Len(t, articles, 3)
}

func TestPagedCrawl_SkipsBrokenItemsAndDegradesOptionalFields(t *testing.T) {
	session := &fakeSession{
		pages: map[string][]browser.Element{
			"https://example.com/news?page=1": {
				newItem("", "/news/1", "", "", ""),                   // no title element
				newItem("தலைப்பு மட்டும்", "", "", "", ""),           // no link element
				newItem("நல்ல செய்தி", "/news/3", "", "", "garbage"), // unparseable date
			},
		},
	}
	adapter := NewSiteAdapter(pagedConfig("https://example.com/news", 10), session.factory())

	articles, stats := collect(t, adapter)

	assert.Equal(t, 3, stats.Found)
	require.Len(t, articles, 1)
	assert.Equal(t, "நல்ல செய்தி", articles[0].Title)
	assert.Empty(t, articles[0].ImageURL)
	assert.Empty(t, articles[0].Author)
	assert.Nil(t, articles[0].PublishedAt)
}

func TestPagedCrawl_NavigationFailureIsFatal(t *testing.T) {
	session := &fakeSession{
		failURL: "https://example.com/news?page=1",
		failErr: errors.New("HTTP 403 Forbidden"),
	}
	adapter := NewSiteAdapter(pagedConfig("https://example.com/news", 10), session.factory())

	stats, err := adapter.Crawl(context.Background(), func(RawArticle) error { return nil })

	require.Error(t, err)
	assert.Equal(t, 1, stats.Pages)
	assert.True(t, apperrors.IsBlockingSignal(err))

	var crawlErr *apperrors.CrawlError
	require.ErrorAs(t, err, &crawlErr)
	assert.Equal(t, apperrors.ErrorTypeNetwork, crawlErr.Type)
}

func TestScrollCrawl_StopsWhenHeightStalls(t *testing.T) {
	session := &fakeSession{
		pages: map[string][]browser.Element{
			"https://example.com/feed": {
				newItem("ஒன்று", "/news/1", "", "", ""),
				newItem("இரண்டு", "/news/2", "", "", ""),
			},
		},
		// initial, grow, stall, load-more grows once, final stall
		heights:   []int{100, 200, 200, 300, 300, 300},
		buttonSel: `div[data-test-id="load-more"]`,
		buttons:   1,
	}
	cfg := AdapterConfig{
		Name:      "test_scroll",
		Website:   "Test Site",
		Category:  "Latest News",
		URL:       "https://example.com/feed",
		BaseURL:   "https://example.com",
		Selectors: itemSelectors(),
		Traversal: &ScrollTraversal{
			MaxScrolls: 20,
			ScrollStep: 3000,
			LoadMore:   `div[data-test-id="load-more"]`,
			SettleWait: time.Millisecond,
		},
	}
	adapter := NewSiteAdapter(cfg, session.factory())

	articles, stats := collect(t, adapter)

	assert.Equal(t, 2, stats.Scrolls)
	assert.Equal(t, 2, stats.Found)
	assert.Len(t, articles, 2)
	assert.Equal(t, 1, session.clicks)
}

func TestScrollCrawl_HonorsScrollBudget(t *testing.T) {
	heights := make([]int, 0, 30)
	for i := 0; i < 30; i++ {
		heights = append(heights, 100*(i+1)) // never stalls
	}
	session := &fakeSession{
		pages:   map[string][]browser.Element{"https://example.com/feed": {}},
		heights: heights,
	}
	cfg := AdapterConfig{
		Name:      "test_scroll",
		Website:   "Test Site",
		Category:  "Latest News",
		URL:       "https://example.com/feed",
		BaseURL:   "https://example.com",
		Selectors: itemSelectors(),
		Traversal: &ScrollTraversal{MaxScrolls: 5, SettleWait: time.Millisecond},
	}
	adapter := NewSiteAdapter(cfg, session.factory())

	_, stats := collect(t, adapter)

	assert.Equal(t, 5, stats.Scrolls)
	assert.Equal(t, 5, session.scrolls)
}

func TestClickCrawl_StopsWhenButtonDisappears(t *testing.T) {
	session := &fakeSession{
		pages: map[string][]browser.Element{
			"https://example.com/tag/latest": {
				newItem("ஒன்று", "/news/1", "", "", ""),
			},
		},
		buttonSel: "button.load_more",
		buttons:   2,
	}
	cfg := AdapterConfig{
		Name:      "test_click",
		Website:   "Test Site",
		Category:  "Latest News",
		URL:       "https://example.com/tag/latest",
		BaseURL:   "https://example.com",
		Selectors: itemSelectors(),
		Traversal: &ClickTraversal{MaxClicks: 10, Button: "button.load_more", SettleWait: time.Millisecond},
	}
	adapter := NewSiteAdapter(cfg, session.factory())

	articles, stats := collect(t, adapter)

	assert.Equal(t, 2, stats.Clicks)
	assert.Len(t, articles, 1)
}

func TestClickCrawl_HonorsClickBudget(t *testing.T) {
	session := &fakeSession{
		pages:     map[string][]browser.Element{"https://example.com/tag/latest": {}},
		buttonSel: "button.load_more",
		buttons:   99,
	}
	cfg := AdapterConfig{
		Name:      "test_click",
		Website:   "Test Site",
		Category:  "Latest News",
		URL:       "https://example.com/tag/latest",
		BaseURL:   "https://example.com",
		Selectors: itemSelectors(),
		Traversal: &ClickTraversal{MaxClicks: 3, Button: "button.load_more", SettleWait: time.Millisecond},
	}
	adapter := NewSiteAdapter(cfg, session.factory())

	_, stats := collect(t, adapter)

	assert.Equal(t, 3, stats.Clicks)
}

func TestKeywordFilter_TitleMatch(t *testing.T) {
	session := &fakeSession{
		pages: map[string][]browser.Element{
			"https://example.com/news?page=1": {
				newItem("சென்னை மாநகராட்சி அறிவிப்பு", "/news/1", "", "", ""),
				newItem("மும்பை பங்குச்சந்தை", "/news/2", "", "", ""),
			},
		},
	}
	cfg := pagedConfig("https://example.com/news", 10)
	cfg.Keywords = []string{"சென்னை", "மதுரை"}
	adapter := NewSiteAdapter(cfg, session.factory())

	articles, stats := collect(t, adapter)

	assert.Equal(t, 2, stats.Found)
	require.Len(t, articles, 1)
	assert.Equal(t, []string{"சென்னை"}, articles[0].MatchedKeywords)
}

func TestKeywordFilter_BodyFetch(t *testing.T) {
	session := &fakeSession{
		pages: map[string][]browser.Element{
			"https://example.com/news?page=1": {
				newItem("பொது செய்தி ஒன்று", "/news/1", "", "", ""),
				newItem("பொது செய்தி இரண்டு", "/news/2", "", "", ""),
				newItem("பொது செய்தி மூன்று", "/news/3", "", "", ""),
			},
		},
	}
	bodies := map[string]string{
		"https://example.com/news/1": "கட்டுரையில் சென்னை பற்றி குறிப்பு உள்ளது",
		"https://example.com/news/2": "வேறு எதோ ஒரு உள்ளடக்கம்",
		"https://example.com/news/3": "", // body page came back empty
	}
	cfg := pagedConfig("https://example.com/news", 10)
	cfg.Keywords = []string{"சென்னை"}
	cfg.FetchBody = func(ctx context.Context, url string) (string, error) {
		return bodies[url], nil
	}
	adapter := NewSiteAdapter(cfg, session.factory())

	articles, _ := collect(t, adapter)

	require.Len(t, articles, 1)
	assert.Equal(t, "https://example.com/news/1", articles[0].URL)
	assert.Equal(t, "கட்டுரையில் சென்னை பற்றி குறிப்பு உள்ளது", articles[0].Description)
	assert.Equal(t, []string{"சென்னை"}, articles[0].MatchedKeywords)
}

func TestResolveURL(t *testing.T) {
	adapter := NewSiteAdapter(pagedConfig("https://example.com/news", 1), nil)

	assert.Equal(t, "https://example.com/a", adapter.ResolveURL("/a"))
	assert.Equal(t, "https://other.com/a", adapter.ResolveURL("https://other.com/a"))
	assert.Equal(t, "https://cdn.example.com/i.jpg", adapter.ResolveURL("//cdn.example.com/i.jpg"))
	assert.Equal(t, "", adapter.ResolveURL(""))
}
