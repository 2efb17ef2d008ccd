// Package catalog supplies priced products for game rounds. The game core
// only depends on the Source capability; where the items come from (a scraped
// sqlite database, fixtures, a remote shop API) is this package's concern.
package catalog

import (
	"context"
	"errors"
	"fmt"
	"math/rand"

	"github.com/priceparty/priceparty-server/internal/game"
)

// ProviderAll requests a mixed draw across every provider the source knows.
const ProviderAll = "all"

var (
	ErrUnknownProvider = errors.New("unknown product provider")
	ErrNotEnough       = errors.New("provider has too few products")
)

// Source hands out catalog items for rounds.
type Source interface {
	// Fetch returns count products drawn from the named provider, or from a
	// round-robin split across all providers when provider is ProviderAll.
	Fetch(ctx context.Context, provider string, count int) ([]game.Product, error)
	// Providers lists the selectable provider names, in a stable order.
	Providers() []string
}

// SplitCounts divides total across providers round-robin: everyone gets
// total/N, and the first total%N providers (in the given order) get one extra.
func SplitCounts(total int, providers []string) map[string]int {
	counts := make(map[string]int, len(providers))
	if len(providers) == 0 || total <= 0 {
		return counts
	}
	base := total / len(providers)
	extra := total % len(providers)
	for i, p := range providers {
		counts[p] = base
		if i < extra {
			counts[p]++
		}
	}
	return counts
}

// fetchAll draws from every provider per SplitCounts and interleaves the
// results so consecutive rounds alternate providers.
func fetchAll(ctx context.Context, s Source, count int) ([]game.Product, error) {
	providers := s.Providers()
	if len(providers) == 0 {
		return nil, ErrUnknownProvider
	}
	counts := SplitCounts(count, providers)

	batches := make([][]game.Product, 0, len(providers))
	for _, p := range providers {
		if counts[p] == 0 {
			continue
		}
		batch, err := s.Fetch(ctx, p, counts[p])
		if err != nil {
			return nil, fmt.Errorf("provider %s: %w", p, err)
		}
		batches = append(batches, batch)
	}

	products := make([]game.Product, 0, count)
	for i := 0; len(products) < count; i++ {
		progressed := false
		for _, batch := range batches {
			if i < len(batch) {
				products = append(products, batch[i])
				progressed = true
				if len(products) == count {
					break
				}
			}
		}
		if !progressed {
			break
		}
	}
	if len(products) < count {
		return nil, fmt.Errorf("%w: wanted %d, got %d", ErrNotEnough, count, len(products))
	}
	return products, nil
}

// StaticSource serves products from memory, grouped by provider. Used in
// tests and as the built-in demo catalog when no database is configured.
type StaticSource struct {
	byProvider map[string][]game.Product
	order      []string
}

// NewStaticSource groups the given products by their Provider field.
func NewStaticSource(products []game.Product) *StaticSource {
	s := &StaticSource{byProvider: make(map[string][]game.Product)}
	for _, p := range products {
		if _, seen := s.byProvider[p.Provider]; !seen {
			s.order = append(s.order, p.Provider)
		}
		s.byProvider[p.Provider] = append(s.byProvider[p.Provider], p)
	}
	return s
}

func (s *StaticSource) Providers() []string {
	out := make([]string, len(s.order))
	copy(out, s.order)
	return out
}

func (s *StaticSource) Fetch(ctx context.Context, provider string, count int) ([]game.Product, error) {
	if provider == ProviderAll || provider == "" {
		return fetchAll(ctx, s, count)
	}
	pool, ok := s.byProvider[provider]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownProvider, provider)
	}
	if len(pool) < count {
		return nil, fmt.Errorf("%w: %s has %d, wanted %d", ErrNotEnough, provider, len(pool), count)
	}
	picked := make([]game.Product, len(pool))
	copy(picked, pool)
	rand.Shuffle(len(picked), func(i, j int) {
		picked[i], picked[j] = picked[j], picked[i]
	})
	return picked[:count], nil
}
