package scraper

import (
	"context"
	"errors"
	"time"

	"skandan/tamilnewsworker/internal/browser"
)

// fakeElement is a hand-rolled browser.Element for tests
type fakeElement struct {
	text     string
	attrs    map[string]string
	children map[string][]browser.Element
	onClick  func()
}

func (e *fakeElement) Text(ctx context.Context) (string, error) {
	return e.text, nil
}

func (e *fakeElement) Attribute(ctx context.Context, name string) (string, error) {
	return e.attrs[name], nil
}

func (e *fakeElement) Click(ctx context.Context) error {
	if e.onClick != nil {
		e.onClick()
	}
	return nil
}

func (e *fakeElement) Query(ctx context.Context, selector string) (browser.Element, error) {
	children := e.children[selector]
	if len(children) == 0 {
		return nil, browser.ErrNoElement
	}
	return children[0], nil
}

func (e *fakeElement) QueryAll(ctx context.Context, selector string) ([]browser.Element, error) {
	return e.children[selector], nil
}

// fakeSession is a scriptable browser.Session. Paged tests map URLs to
// items, scroll tests consume the heights slice, click tests count down the
// buttons budget.
type fakeSession struct {
	pages       map[string][]browser.Element
	failURL     string
	failErr     error
	current     string
	heights     []int
	heightCalls int
	buttonSel   string
	buttons     int
	clicks      int
	scrolls     int
	closed      bool
}

func (s *fakeSession) factory() browser.Factory {
	return func(ctx context.Context) (browser.Session, error) {
		return s, nil
	}
}

func (s *fakeSession) Navigate(ctx context.Context, url string, timeout time.Duration) error {
	if s.failURL != "" && url == s.failURL {
		return s.failErr
	}
	s.current = url
	return nil
}

func (s *fakeSession) Query(ctx context.Context, selector string) (browser.Element, error) {
	if selector == s.buttonSel {
		if s.buttons <= 0 {
			return nil, browser.ErrNoElement
		}
		return &fakeElement{onClick: func() {
			s.buttons--
			s.clicks++
		}}, nil
	}
	elements, err := s.QueryAll(ctx, selector)
	if err != nil {
		return nil, err
	}
	if len(elements) == 0 {
		return nil, browser.ErrNoElement
	}
	return elements[0], nil
}

func (s *fakeSession) QueryAll(ctx context.Context, selector string) ([]browser.Element, error) {
	return s.pages[s.current], nil
}

func (s *fakeSession) Scroll(ctx context.Context, dy int) error {
	s.scrolls++
	return nil
}

func (s *fakeSession) Wait(ctx context.Context, d time.Duration) error {
	return nil
}

func (s *fakeSession) Evaluate(ctx context.Context, script string) (interface{}, error) {
	if len(s.heights) == 0 {
		return 0, errors.New("no heights scripted")
	}
	idx := s.heightCalls
	if idx >= len(s.heights) {
		idx = len(s.heights) - 1
	}
	s.heightCalls++
	return s.heights[idx], nil
}

func (s *fakeSession) Close(ctx context.Context) error {
	s.closed = true
	return nil
}

// newItem builds a story card element with the given fields. Empty fields
// leave the corresponding child element out entirely.
func newItem(title, href, imgSrc, author, date string) *fakeElement {
	children := map[string][]browser.Element{}
	if title != "" {
		children["h3"] = []browser.Element{&fakeElement{text: title}}
	}
	if href != "" {
		children["a[href]"] = []browser.Element{&fakeElement{attrs: map[string]string{"href": href}}}
	}
	if imgSrc != "" {
		children["img"] = []browser.Element{&fakeElement{attrs: map[string]string{"src": imgSrc}}}
	}
	if author != "" {
		children[".author"] = []browser.Element{&fakeElement{text: author}}
	}
	if date != "" {
		children[".date"] = []browser.Element{&fakeElement{text: date}}
	}
	return &fakeElement{children: children}
}

func itemSelectors() Selectors {
	return Selectors{
		Item:   "div.story",
		Title:  "h3",
		Link:   "a[href]",
		Image:  "img",
		Author: ".author",
		Date:   ".date",
	}
}
