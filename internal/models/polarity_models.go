package models

import "encoding/json"

type SentimentClass string

const (
	SentimentPositive SentimentClass = "Positive"
	SentimentNegative SentimentClass = "Negative"
	SentimentNeutral  SentimentClass = "Neutral"
)

// ScoredComment is the per-request view returned by /polarity.
type ScoredComment struct {
	ID             json.RawMessage `json:"UID_comment"`
	Text           string          `json:"text_comment"`
	PolarityScore  float64         `json:"polarity_score"`
	SentimentClass SentimentClass  `json:"sentiment_class"`
	Date           string          `json:"date"`
	CreatedAt      int64           `json:"-"`
}

type SortOrder int

const (
	SortNone SortOrder = iota
	SortAscending
	SortDescending
)

type DateRange struct {
	Start string
	End   string
}

// Contains compares YYYYMMDD strings lexicographically, which matches
// chronological order for fixed-width dates.
func (r DateRange) Contains(date string) bool {
	return r.Start <= date && date <= r.End
}

type QueryOptions struct {
	Sort      SortOrder
	Limit     int
	DateRange *DateRange
}
