package browser

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// webElementKey is the W3C WebDriver element identifier key.
const webElementKey = "element-6066-11e4-a52e-4f735466cecf"

// WebDriverSession implements Session over the W3C WebDriver wire protocol
// (chromedriver, geckodriver, or a Selenium grid).
type WebDriverSession struct {
	addr      string
	sessionID string
	client    *http.Client
}

// NewWebDriverSession creates a headless browser session against a WebDriver
// endpoint such as http://localhost:4444.
func NewWebDriverSession(ctx context.Context, addr string) (*WebDriverSession, error) {
	s := &WebDriverSession{
		addr:   addr,
		client: &http.Client{Timeout: 90 * time.Second},
	}

	payload := map[string]interface{}{
		"capabilities": map[string]interface{}{
			"alwaysMatch": map[string]interface{}{
				"browserName": "chrome",
				"goog:chromeOptions": map[string]interface{}{
					"args": []string{"--headless=new", "--disable-gpu", "--no-sandbox"},
				},
			},
		},
	}

	var resp struct {
		Value struct {
			SessionID string `json:"sessionId"`
		} `json:"value"`
	}
	if err := s.do(ctx, http.MethodPost, "/session", payload, &resp); err != nil {
		return nil, fmt.Errorf("create webdriver session: %w", err)
	}
	if resp.Value.SessionID == "" {
		return nil, fmt.Errorf("webdriver returned empty session id")
	}
	s.sessionID = resp.Value.SessionID
	return s, nil
}

// NewWebDriverFactory returns a Factory that opens a fresh session per run.
func NewWebDriverFactory(addr string) Factory {
	return func(ctx context.Context) (Session, error) {
		return NewWebDriverSession(ctx, addr)
	}
}

// Navigate loads the URL with the given page-load timeout
func (s *WebDriverSession) Navigate(ctx context.Context, url string, timeout time.Duration) error {
	if timeout > 0 {
		_ = s.do(ctx, http.MethodPost, s.path("/timeouts"), map[string]interface{}{
			"pageLoad": timeout.Milliseconds(),
		}, nil)
	}
	if err := s.do(ctx, http.MethodPost, s.path("/url"), map[string]string{"url": url}, nil); err != nil {
		return fmt.Errorf("navigate %s: %w", url, err)
	}
	return nil
}

// Query finds the first element matching the CSS selector
func (s *WebDriverSession) Query(ctx context.Context, selector string) (Element, error) {
	elements, err := s.QueryAll(ctx, selector)
	if err != nil {
		return nil, err
	}
	if len(elements) == 0 {
		return nil, ErrNoElement
	}
	return elements[0], nil
}

// QueryAll finds all elements matching the CSS selector
func (s *WebDriverSession) QueryAll(ctx context.Context, selector string) ([]Element, error) {
	return s.findElements(ctx, s.path("/elements"), selector)
}

// Scroll scrolls the window down by dy pixels
func (s *WebDriverSession) Scroll(ctx context.Context, dy int) error {
	_, err := s.Evaluate(ctx, fmt.Sprintf("window.scrollBy(0, %d)", dy))
	return err
}

// Wait pauses for d or until the context is cancelled
func (s *WebDriverSession) Wait(ctx context.Context, d time.Duration) error {
	select {
	case <-time.After(d):
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Evaluate runs a synchronous script in the page
func (s *WebDriverSession) Evaluate(ctx context.Context, script string) (interface{}, error) {
	var resp struct {
		Value interface{} `json:"value"`
	}
	payload := map[string]interface{}{
		"script": script,
		"args":   []interface{}{},
	}
	if err := s.do(ctx, http.MethodPost, s.path("/execute/sync"), payload, &resp); err != nil {
		return nil, err
	}
	return resp.Value, nil
}

// Close deletes the remote session
func (s *WebDriverSession) Close(ctx context.Context) error {
	return s.do(ctx, http.MethodDelete, s.path(""), nil, nil)
}

func (s *WebDriverSession) path(suffix string) string {
	return "/session/" + s.sessionID + suffix
}

// findElements issues an element search against path and wraps the results
func (s *WebDriverSession) findElements(ctx context.Context, path, selector string) ([]Element, error) {
	payload := map[string]string{
		"using": "css selector",
		"value": selector,
	}
	var resp struct {
		Value []map[string]string `json:"value"`
	}
	if err := s.do(ctx, http.MethodPost, path, payload, &resp); err != nil {
		return nil, fmt.Errorf("find %q: %w", selector, err)
	}

	elements := make([]Element, 0, len(resp.Value))
	for _, ref := range resp.Value {
		if id, ok := ref[webElementKey]; ok {
			elements = append(elements, &webDriverElement{session: s, id: id})
		}
	}
	return elements, nil
}

// do sends one WebDriver command and decodes the response into out
func (s *WebDriverSession) do(ctx context.Context, method, path string, payload, out interface{}) error {
	var body io.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return err
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, s.addr+path, body)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}

	if resp.StatusCode != http.StatusOK {
		var wdErr struct {
			Value struct {
				Error   string `json:"error"`
				Message string `json:"message"`
			} `json:"value"`
		}
		if json.Unmarshal(data, &wdErr) == nil && wdErr.Value.Error != "" {
			return fmt.Errorf("webdriver %s (status %d): %s", wdErr.Value.Error, resp.StatusCode, wdErr.Value.Message)
		}
		return fmt.Errorf("webdriver unexpected status %d", resp.StatusCode)
	}

	if out != nil {
		if err := json.Unmarshal(data, out); err != nil {
			return fmt.Errorf("decode webdriver response: %w", err)
		}
	}
	return nil
}

// webDriverElement is an Element backed by a remote element reference.
type webDriverElement struct {
	session *WebDriverSession
	id      string
}

func (e *webDriverElement) path(suffix string) string {
	return e.session.path("/element/" + e.id + suffix)
}

// Text returns the rendered text of the element
func (e *webDriverElement) Text(ctx context.Context) (string, error) {
	var resp struct {
		Value string `json:"value"`
	}
	if err := e.session.do(ctx, http.MethodGet, e.path("/text"), nil, &resp); err != nil {
		return "", err
	}
	return resp.Value, nil
}

// Attribute returns the value of the named attribute, "" when absent
func (e *webDriverElement) Attribute(ctx context.Context, name string) (string, error) {
	var resp struct {
		Value *string `json:"value"`
	}
	if err := e.session.do(ctx, http.MethodGet, e.path("/attribute/"+name), nil, &resp); err != nil {
		return "", err
	}
	if resp.Value == nil {
		return "", nil
	}
	return *resp.Value, nil
}

// Click simulates a click on the element
func (e *webDriverElement) Click(ctx context.Context) error {
	return e.session.do(ctx, http.MethodPost, e.path("/click"), map[string]interface{}{}, nil)
}

// Query finds the first descendant matching the selector
func (e *webDriverElement) Query(ctx context.Context, selector string) (Element, error) {
	elements, err := e.QueryAll(ctx, selector)
	if err != nil {
		return nil, err
	}
	if len(elements) == 0 {
		return nil, ErrNoElement
	}
	return elements[0], nil
}

// QueryAll finds all descendants matching the selector
func (e *webDriverElement) QueryAll(ctx context.Context, selector string) ([]Element, error) {
	return e.session.findElements(ctx, e.path("/elements"), selector)
}
