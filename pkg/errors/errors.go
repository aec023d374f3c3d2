package errors

import (
	"fmt"
	"strings"
	"time"
)

// ErrorType represents the type of error
type ErrorType string

const (
	// ErrorTypeNetwork represents navigation/fetch errors
	ErrorTypeNetwork ErrorType = "network"
	// ErrorTypeParsing represents DOM/field extraction errors
	ErrorTypeParsing ErrorType = "parsing"
	// ErrorTypeBlocked represents blocking signals (403, captcha, denial pages)
	ErrorTypeBlocked ErrorType = "blocked"
	// ErrorTypeClassification represents sentiment classifier errors
	ErrorTypeClassification ErrorType = "classification"
	// ErrorTypePersistence represents storage errors
	ErrorTypePersistence ErrorType = "persistence"
	// ErrorTypeValidation represents caller input validation errors
	ErrorTypeValidation ErrorType = "validation"
	// ErrorTypeConfiguration represents configuration errors
	ErrorTypeConfiguration ErrorType = "configuration"
)

// CrawlError represents an error scoped to one unit of work (a page, an
// article, a keyword) together with the site it belongs to.
type CrawlError struct {
	Type    ErrorType
	Site    string
	Message string
	Err     error
	Time    time.Time
}

// Error implements the error interface
func (e *CrawlError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[%s] %s: %s - %v", e.Type, e.Site, e.Message, e.Err)
	}
	return fmt.Sprintf("[%s] %s: %s", e.Type, e.Site, e.Message)
}

// Unwrap returns the underlying error
func (e *CrawlError) Unwrap() error {
	return e.Err
}

// IsRetryable returns true if the error is retryable
func (e *CrawlError) IsRetryable() bool {
	switch e.Type {
	case ErrorTypeNetwork:
		return true
	default:
		return false
	}
}

// New creates a new CrawlError
func New(errType ErrorType, site, message string, err error) *CrawlError {
	return &CrawlError{
		Type:    errType,
		Site:    site,
		Message: message,
		Err:     err,
		Time:    time.Now(),
	}
}

// NewNetwork creates a new network error
func NewNetwork(site, message string, err error) *CrawlError {
	return New(ErrorTypeNetwork, site, message, err)
}

// NewParsing creates a new parsing error
func NewParsing(site, message string, err error) *CrawlError {
	return New(ErrorTypeParsing, site, message, err)
}

// NewBlocked creates a new blocking-signal error
func NewBlocked(site, message string, err error) *CrawlError {
	return New(ErrorTypeBlocked, site, message, err)
}

// NewClassification creates a new classifier error
func NewClassification(site, message string, err error) *CrawlError {
	return New(ErrorTypeClassification, site, message, err)
}

// NewPersistence creates a new storage error
func NewPersistence(site, message string, err error) *CrawlError {
	return New(ErrorTypePersistence, site, message, err)
}

// NewValidation creates a new validation error
func NewValidation(site, message string) *CrawlError {
	return New(ErrorTypeValidation, site, message, nil)
}

// NewConfiguration creates a new configuration error
func NewConfiguration(message string, err error) *CrawlError {
	return New(ErrorTypeConfiguration, "", message, err)
}

// blockingMarkers are substrings that indicate a site is rate limiting or
// denying the crawler rather than failing for an unrelated reason.
var blockingMarkers = []string{"403", "denied", "captcha", "blocked"}

// IsBlockingSignal reports whether an error message looks like an IP block,
// captcha wall or access denial so operators can tell rate limiting apart
// from ordinary crawl bugs.
func IsBlockingSignal(err error) bool {
	if err == nil {
		return false
	}
	msg := strings.ToLower(err.Error())
	for _, marker := range blockingMarkers {
		if strings.Contains(msg, marker) {
			return true
		}
	}
	return false
}
