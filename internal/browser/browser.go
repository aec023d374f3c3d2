package browser

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// ErrNoElement is returned by Query when a selector matches nothing.
var ErrNoElement = errors.New("no element matches selector")

// Element is a handle to a DOM element on the currently loaded page.
type Element interface {
	// Text returns the rendered text of the element
	Text(ctx context.Context) (string, error)

	// Attribute returns the value of the named attribute ("" when absent)
	Attribute(ctx context.Context, name string) (string, error)

	// Click simulates a click on the element
	Click(ctx context.Context) error

	// Query finds the first descendant matching the selector
	Query(ctx context.Context, selector string) (Element, error)

	// QueryAll finds all descendants matching the selector
	QueryAll(ctx context.Context, selector string) ([]Element, error)
}

// Session is a single navigable browser session. Adapters drive exactly one
// session at a time; all DOM access refers to the last navigated page.
type Session interface {
	// Navigate loads the URL, waiting at most timeout for the page load
	Navigate(ctx context.Context, url string, timeout time.Duration) error

	// Query finds the first element matching the selector, ErrNoElement when absent
	Query(ctx context.Context, selector string) (Element, error)

	// QueryAll finds all elements matching the selector
	QueryAll(ctx context.Context, selector string) ([]Element, error)

	// Scroll scrolls the page down by dy pixels
	Scroll(ctx context.Context, dy int) error

	// Wait pauses for d, giving dynamic content time to settle
	Wait(ctx context.Context, d time.Duration) error

	// Evaluate runs a script in the page and returns its result
	Evaluate(ctx context.Context, script string) (interface{}, error)

	// Close releases the session
	Close(ctx context.Context) error
}

// Factory opens a fresh session. Each ingestion run gets its own.
type Factory func(ctx context.Context) (Session, error)

// PageHeight returns the current document height, used by the infinite
// scroll strategy to detect that no further content is loading.
func PageHeight(ctx context.Context, s Session) (int, error) {
	v, err := s.Evaluate(ctx, "return document.body.scrollHeight")
	if err != nil {
		return 0, err
	}
	switch h := v.(type) {
	case float64:
		return int(h), nil
	case int:
		return h, nil
	default:
		return 0, fmt.Errorf("unexpected scrollHeight result %T", v)
	}
}
