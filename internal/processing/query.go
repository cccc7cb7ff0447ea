package processing

import (
	"errors"
	"strconv"
	"strings"

	"github.com/spacesedan/polarity/internal/models"
)

const (
	SORT_DESC_MARKER = "desc"
	DATE_LAYOUT      = "20060102"
)

var (
	ErrInvalidDateRange = errors.New("invalid date_range")
	ErrInvalidLimit     = errors.New("invalid limit")
)

// ParseQueryOptions converts raw query values into QueryOptions. Empty values
// are treated as absent.
func ParseQueryOptions(sort, limit, dateRange string) (models.QueryOptions, error) {
	var opts models.QueryOptions

	switch sort {
	case "":
		opts.Sort = models.SortNone
	case SORT_DESC_MARKER:
		opts.Sort = models.SortDescending
	default:
		opts.Sort = models.SortAscending
	}

	if limit != "" {
		n, err := strconv.Atoi(strings.TrimSpace(limit))
		if err != nil || n <= 0 {
			return models.QueryOptions{}, ErrInvalidLimit
		}
		opts.Limit = n
	}

	if dateRange != "" {
		r, err := ParseDateRange(dateRange)
		if err != nil {
			return models.QueryOptions{}, err
		}
		opts.DateRange = &r
	}

	return opts, nil
}

// ParseDateRange parses "YYYYMMDD,YYYYMMDD". Anything other than exactly two
// 8-digit tokens is rejected.
func ParseDateRange(raw string) (models.DateRange, error) {
	parts := strings.Split(raw, ",")
	if len(parts) != 2 {
		return models.DateRange{}, ErrInvalidDateRange
	}

	start := strings.TrimSpace(parts[0])
	end := strings.TrimSpace(parts[1])
	if !isDateToken(start) || !isDateToken(end) {
		return models.DateRange{}, ErrInvalidDateRange
	}

	return models.DateRange{Start: start, End: end}, nil
}

func isDateToken(s string) bool {
	if len(s) != len(DATE_LAYOUT) {
		return false
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}
