package analytics

import (
	"context"
	"fmt"
	"strings"
	"time"

	"skandan/tamilnewsworker/internal/storage"
	apperrors "skandan/tamilnewsworker/pkg/errors"
)

// Named aggregation windows
const (
	RangeToday   = "today"
	RangeWeekly  = "weekly"
	RangeMonthly = "monthly"
)

// Aggregator computes sentiment rollups
type Aggregator interface {
	Aggregate(ctx context.Context, filter storage.SentimentFilter) (*storage.Rollup, error)
}

// Query selects the sentiment rows to aggregate. Either Range names a
// window relative to now, or Start/End bound it explicitly; all empty means
// all time.
type Query struct {
	Keyword  string
	Range    string
	Start    time.Time
	End      time.Time
	Website  string
	Category string
}

// Service answers sentiment aggregation queries
type Service struct {
	store Aggregator
	now   func() time.Time
}

// NewService creates the aggregation service
func NewService(store Aggregator) *Service {
	return &Service{store: store, now: time.Now}
}

// KeywordRollup validates the query and returns the rollup. A keyword with
// no matching rows yields a zero rollup; an unknown range name is a
// validation error.
func (s *Service) KeywordRollup(ctx context.Context, query Query) (*storage.Rollup, error) {
	keyword := strings.TrimSpace(query.Keyword)
	if keyword == "" {
		return nil, apperrors.NewValidation("", "keyword is required")
	}

	filter := storage.SentimentFilter{
		Keyword:  keyword,
		Website:  query.Website,
		Category: query.Category,
		From:     query.Start,
		To:       query.End,
	}

	if query.Range != "" {
		if !query.Start.IsZero() || !query.End.IsZero() {
			return nil, apperrors.NewValidation("", "range and explicit start/end are mutually exclusive")
		}
		from, err := s.rangeStart(query.Range)
		if err != nil {
			return nil, err
		}
		filter.From = from
	}

	if !filter.From.IsZero() && !filter.To.IsZero() && !filter.To.After(filter.From) {
		return nil, apperrors.NewValidation("", "end must be after start")
	}

	return s.store.Aggregate(ctx, filter)
}

// rangeStart maps a window name to its lower bound
func (s *Service) rangeStart(name string) (time.Time, error) {
	now := s.now().UTC()
	switch name {
	case RangeToday:
		return time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC), nil
	case RangeWeekly:
		return now.AddDate(0, 0, -7), nil
	case RangeMonthly:
		return now.AddDate(0, -1, 0), nil
	default:
		return time.Time{}, apperrors.NewValidation("", fmt.Sprintf("unknown range %q", name))
	}
}
