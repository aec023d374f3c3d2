package scraper

import (
	"context"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"skandan/tamilnewsworker/helpers"
)

// NewBodyFetcher returns a BodyFetcherFunc that downloads an article page
// over plain HTTP and joins the text of every paragraph under selector.
// Sites that render article bodies server-side do not need a browser here.
func NewBodyFetcher(selector string) BodyFetcherFunc {
	return func(ctx context.Context, url string) (string, error) {
		if err := ctx.Err(); err != nil {
			return "", err
		}

		reader, err := helpers.FetchWithRandomHeaders(url)
		if err != nil {
			return "", err
		}

		doc, err := goquery.NewDocumentFromReader(reader)
		if err != nil {
			return "", err
		}

		var parts []string
		doc.Find(selector).Each(func(_ int, s *goquery.Selection) {
			if text := strings.TrimSpace(s.Text()); text != "" {
				parts = append(parts, text)
			}
		})
		return strings.Join(parts, " "), nil
	}
}
