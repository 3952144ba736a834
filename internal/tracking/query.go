package tracking

import (
	"context"
	"strings"
)

const (
	DefaultPageSize = 200
	MaxPageSize     = 1000
)

// QueryService provides paged read access to recorded clicks.
type QueryService struct {
	reader  ClickReader
	maxSize int
}

// NewQueryService creates a query service. Page sizes above maxSize are
// clamped; a non-positive maxSize falls back to MaxPageSize.
func NewQueryService(reader ClickReader, maxSize int) *QueryService {
	if maxSize <= 0 {
		maxSize = MaxPageSize
	}

	return &QueryService{reader: reader, maxSize: maxSize}
}

// ListClicks returns matching clicks, most recent first.
func (s *QueryService) ListClicks(ctx context.Context, filter ClickFilter) ([]ClickRow, error) {
	filter = s.normalize(filter)

	rows, err := s.reader.ListClicks(ctx, filter)
	if err != nil {
		return nil, err
	}

	if rows == nil {
		rows = []ClickRow{}
	}

	return rows, nil
}

func (s *QueryService) normalize(filter ClickFilter) ClickFilter {
	filter.Campaign = strings.TrimSpace(filter.Campaign)
	filter.Email = strings.TrimSpace(filter.Email)
	filter.Token = strings.TrimSpace(filter.Token)

	switch {
	case filter.Limit <= 0:
		filter.Limit = min(DefaultPageSize, s.maxSize)
	case filter.Limit > s.maxSize:
		filter.Limit = s.maxSize
	}

	if filter.Offset < 0 {
		filter.Offset = 0
	}

	return filter
}
