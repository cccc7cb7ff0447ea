// Package sentiment turns comment text into a polarity score and a
// three-way classification. Engines are swappable behind Scorer.
package sentiment

import (
	"context"
	"errors"
	"math"

	"github.com/spacesedan/polarity/internal/models"
)

var ErrScoringFailed = errors.New("sentiment scoring failed")

// Scorer maps text to a polarity score in [-1, 1]. Implementations must be
// deterministic for a given text and safe for concurrent use.
type Scorer interface {
	Score(ctx context.Context, text string) (float64, error)
}

type Result struct {
	Polarity float64
	Class    models.SentimentClass
}

func Classify(polarity float64) models.SentimentClass {
	switch {
	case polarity > 0:
		return models.SentimentPositive
	case polarity < 0:
		return models.SentimentNegative
	default:
		return models.SentimentNeutral
	}
}

// Analyze scores text and classifies it. Scores outside [-1, 1] are clamped.
func Analyze(ctx context.Context, scorer Scorer, text string) (Result, error) {
	polarity, err := scorer.Score(ctx, text)
	if err != nil {
		return Result{Polarity: 0, Class: models.SentimentNeutral}, err
	}
	if math.IsNaN(polarity) {
		return Result{Polarity: 0, Class: models.SentimentNeutral}, ErrScoringFailed
	}

	polarity = math.Max(-1, math.Min(1, polarity))
	return Result{Polarity: polarity, Class: Classify(polarity)}, nil
}
