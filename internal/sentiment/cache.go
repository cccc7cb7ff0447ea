package sentiment

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"log/slog"
)

type ScoreStore interface {
	GetScore(ctx context.Context, key string) (float64, bool, error)
	SetScore(ctx context.Context, key string, score float64) error
}

// CachedScorer memoizes an engine's scores in a ScoreStore. Store failures
// are logged and the engine is used directly.
type CachedScorer struct {
	next   Scorer
	store  ScoreStore
	prefix string
}

func NewCachedScorer(next Scorer, store ScoreStore, engine string) *CachedScorer {
	return &CachedScorer{
		next:   next,
		store:  store,
		prefix: "sentiment:" + engine + ":",
	}
}

func (c *CachedScorer) Score(ctx context.Context, text string) (float64, error) {
	key := c.key(text)

	score, found, err := c.store.GetScore(ctx, key)
	if err != nil {
		slog.Warn("[CachedScorer] Cache lookup failed",
			slog.String("key", key),
			slog.String("error", err.Error()))
	} else if found {
		return score, nil
	}

	score, err = c.next.Score(ctx, text)
	if err != nil {
		return score, err
	}

	if err := c.store.SetScore(ctx, key, score); err != nil {
		slog.Warn("[CachedScorer] Cache write failed",
			slog.String("key", key),
			slog.String("error", err.Error()))
	}
	return score, nil
}

func (c *CachedScorer) key(text string) string {
	sum := sha256.Sum256([]byte(text))
	return c.prefix + hex.EncodeToString(sum[:])
}
