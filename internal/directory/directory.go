// Package directory resolves subfeddit names to upstream identifiers.
//
// The name table is built from one bulk listing before the server accepts
// requests. Each table is an immutable snapshot; Refresh replaces the whole
// snapshot atomically and keeps the previous one when the upstream fails.
package directory

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"sync/atomic"
	"time"

	"github.com/spacesedan/polarity/internal/models"
)

var ErrUnknownSubfeddit = errors.New("unknown subfeddit")

type NotFoundError struct {
	Name string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("subfeddit %q not found", e.Name)
}

func (e *NotFoundError) Is(target error) bool { return target == ErrUnknownSubfeddit }

type SubfedditLister interface {
	FetchSubfeddits(ctx context.Context) ([]models.Subfeddit, error)
}

type Directory struct {
	lister   SubfedditLister
	snapshot atomic.Pointer[map[string]int]
}

// Build fetches the subfeddit listing and returns a ready Directory. An error
// here is meant to stop process startup.
func Build(ctx context.Context, lister SubfedditLister) (*Directory, error) {
	d := &Directory{lister: lister}
	if err := d.Refresh(ctx); err != nil {
		return nil, fmt.Errorf("[Directory] failed to build subfeddit directory: %w", err)
	}
	return d, nil
}

// FromMap builds a Directory from a fixed table. Refresh is a no-op.
func FromMap(ids map[string]int) *Directory {
	table := make(map[string]int, len(ids))
	for name, id := range ids {
		table[name] = id
	}
	d := &Directory{}
	d.snapshot.Store(&table)
	return d
}

func (d *Directory) Resolve(name string) (int, error) {
	table := d.snapshot.Load()
	if table == nil {
		return 0, &NotFoundError{Name: name}
	}
	id, ok := (*table)[name]
	if !ok {
		return 0, &NotFoundError{Name: name}
	}
	return id, nil
}

func (d *Directory) Names() []string {
	table := d.snapshot.Load()
	if table == nil {
		return []string{}
	}
	names := make([]string, 0, len(*table))
	for name := range *table {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func (d *Directory) Len() int {
	table := d.snapshot.Load()
	if table == nil {
		return 0
	}
	return len(*table)
}

func (d *Directory) Refresh(ctx context.Context) error {
	if d.lister == nil {
		return nil
	}

	subfeddits, err := d.lister.FetchSubfeddits(ctx)
	if err != nil {
		return err
	}

	table := make(map[string]int, len(subfeddits))
	for _, s := range subfeddits {
		if prev, dup := table[s.Username]; dup {
			slog.Warn("[Directory] Duplicate subfeddit name, keeping first id",
				slog.String("name", s.Username),
				slog.Int("keptID", prev),
				slog.Int("droppedID", s.ID))
			continue
		}
		table[s.Username] = s.ID
	}

	d.snapshot.Store(&table)
	slog.Info("[Directory] Subfeddit directory loaded", slog.Int("subfeddits", len(table)))
	return nil
}

// RunRefresher re-fetches the listing every interval until ctx is done.
func (d *Directory) RunRefresher(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		return
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := d.Refresh(ctx); err != nil {
				slog.Warn("[Directory] Refresh failed, keeping previous snapshot",
					slog.String("error", err.Error()))
			}
		}
	}
}
