// Package processing turns a subfeddit's upstream comments into the scored,
// filtered and ordered list served by /polarity.
package processing

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/spacesedan/polarity/internal/models"
	"github.com/spacesedan/polarity/internal/sentiment"
)

const (
	DEFAULT_PAGE_SIZE     = 22000
	DEFAULT_COMMENT_LIMIT = 25
	DEFAULT_SCORE_WORKERS = 4
)

type Resolver interface {
	Resolve(name string) (int, error)
}

type CommentFetcher interface {
	FetchComments(ctx context.Context, subfedditID int, limit int) ([]models.RawComment, error)
}

type Options struct {
	// PageSize is the single-request comment ceiling; older comments beyond
	// it are never seen.
	PageSize int
	// DefaultLimit applies when a request has no limit. Zero means unlimited.
	DefaultLimit int
	Workers      int
}

type Pipeline struct {
	resolver Resolver
	fetcher  CommentFetcher
	scorer   sentiment.Scorer
	opts     Options
}

func NewPipeline(resolver Resolver, fetcher CommentFetcher, scorer sentiment.Scorer, opts Options) *Pipeline {
	if opts.PageSize <= 0 {
		opts.PageSize = DEFAULT_PAGE_SIZE
	}
	if opts.Workers <= 0 {
		opts.Workers = DEFAULT_SCORE_WORKERS
	}
	if opts.DefaultLimit < 0 {
		opts.DefaultLimit = 0
	}
	return &Pipeline{resolver: resolver, fetcher: fetcher, scorer: scorer, opts: opts}
}

// Polarity resolves the subfeddit, fetches its comments and returns them
// scored. Order of operations: newest first, date filter, limit, then the
// optional polarity sort. The limit therefore caps the most recent comments,
// not the top-N by polarity.
func (p *Pipeline) Polarity(ctx context.Context, subfeddit string, q models.QueryOptions) ([]models.ScoredComment, error) {
	start := time.Now()

	id, err := p.resolver.Resolve(subfeddit)
	if err != nil {
		return nil, err
	}

	raw, err := p.fetcher.FetchComments(ctx, id, p.opts.PageSize)
	if err != nil {
		return nil, fmt.Errorf("[Pipeline] failed to fetch comments for %q: %w", subfeddit, err)
	}

	SortByRecency(raw)
	scored := p.ScoreAll(ctx, raw)

	if q.DateRange != nil {
		scored = FilterByDate(scored, *q.DateRange)
	}

	limit := q.Limit
	if limit <= 0 {
		limit = p.opts.DefaultLimit
	}
	scored = Limit(scored, limit)

	SortByPolarity(scored, q.Sort)

	slog.Debug("[Pipeline] Polarity computed",
		slog.String("subfeddit", subfeddit),
		slog.Int("subfedditID", id),
		slog.Int("fetched", len(raw)),
		slog.Int("returned", len(scored)),
		slog.Duration("elapsed", time.Since(start)))

	return scored, nil
}

// ScoreAll scores comments on a bounded worker pool. Output index i always
// corresponds to input index i. A comment that cannot be scored is logged and
// reported as Neutral with score 0.
func (p *Pipeline) ScoreAll(ctx context.Context, raw []models.RawComment) []models.ScoredComment {
	scored := make([]models.ScoredComment, len(raw))

	var g errgroup.Group
	g.SetLimit(p.opts.Workers)

	for i := range raw {
		i := i
		g.Go(func() error {
			c := raw[i]
			res, err := sentiment.Analyze(ctx, p.scorer, c.Text)
			if err != nil {
				slog.Warn("[Pipeline] Failed to score comment, using neutral",
					slog.String("commentID", string(c.ID)),
					slog.String("error", err.Error()))
			}
			scored[i] = models.ScoredComment{
				ID:             c.ID,
				Text:           c.Text,
				PolarityScore:  res.Polarity,
				SentimentClass: res.Class,
				Date:           FormatDate(c.CreatedAt),
				CreatedAt:      c.CreatedAt,
			}
			return nil
		})
	}
	_ = g.Wait()

	return scored
}

func FormatDate(unix int64) string {
	return time.Unix(unix, 0).UTC().Format(DATE_LAYOUT)
}

// SortByRecency orders comments newest first; equal timestamps keep their
// upstream order.
func SortByRecency(comments []models.RawComment) {
	sort.SliceStable(comments, func(i, j int) bool {
		return comments[i].CreatedAt > comments[j].CreatedAt
	})
}

func FilterByDate(comments []models.ScoredComment, r models.DateRange) []models.ScoredComment {
	filtered := make([]models.ScoredComment, 0, len(comments))
	for _, c := range comments {
		if r.Contains(c.Date) {
			filtered = append(filtered, c)
		}
	}
	return filtered
}

// Limit keeps the first n comments. n <= 0 keeps everything.
func Limit(comments []models.ScoredComment, n int) []models.ScoredComment {
	if n <= 0 || n >= len(comments) {
		return comments
	}
	return comments[:n]
}

// SortByPolarity is stable so ties keep their chronological order.
func SortByPolarity(comments []models.ScoredComment, order models.SortOrder) {
	switch order {
	case models.SortAscending:
		sort.SliceStable(comments, func(i, j int) bool {
			return comments[i].PolarityScore < comments[j].PolarityScore
		})
	case models.SortDescending:
		sort.SliceStable(comments, func(i, j int) bool {
			return comments[i].PolarityScore > comments[j].PolarityScore
		})
	}
}
