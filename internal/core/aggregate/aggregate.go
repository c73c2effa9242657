// Package aggregate folds tokenized records into per-author word counts in parallel.
//
// A batch is split into contiguous shards, one per worker. Each worker owns the
// partial corpus it folds and hands it back over a channel; partials are then
// merged pairwise in a tree. Nothing is shared between goroutines while they
// run, and because freq.MergeCounts is commutative and associative the result
// does not depend on the worker count, the shard boundaries or scheduling.
package aggregate

import (
	"context"
	"runtime"

	"userfreqs/internal/core/freq"

	"golang.org/x/sync/errgroup"
)

// Item is one decoded record waiting to be tokenized
type Item struct {
	Author string
	Body   string
}

// Counter tokenizes one text into counts; implementations must be pure
type Counter interface {
	Count(body string) freq.WordCount
}

// Aggregator reduces batches of items into a corpus
type Aggregator struct {
	workers int
	tok     Counter
}

// New constructs an Aggregator; workers <= 0 means GOMAXPROCS
func New(workers int, tok Counter) *Aggregator {
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	return &Aggregator{workers: workers, tok: tok}
}

// Workers returns the configured pool size
func (a *Aggregator) Workers() int { return a.workers }

// Fold tokenizes items sequentially into a fresh corpus
func (a *Aggregator) Fold(items []Item) freq.Corpus {
	part := freq.New()
	for _, it := range items {
		part.Add(it.Author, a.tok.Count(it.Body))
	}
	return part
}

// Reduce folds items across the worker pool and returns the merged batch corpus.
// The returned corpus is owned by the caller
func (a *Aggregator) Reduce(ctx context.Context, items []Item) (freq.Corpus, error) {
	if len(items) == 0 {
		return freq.New(), nil
	}
	n := min(a.workers, len(items))
	if n == 1 {
		return a.Fold(items), ctx.Err()
	}

	parts := make(chan freq.Corpus, n)
	g, gctx := errgroup.WithContext(ctx)
	for i := range n {
		lo, hi := shard(len(items), n, i)
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			parts <- a.Fold(items[lo:hi])
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	close(parts)

	partials := make([]freq.Corpus, 0, n)
	for p := range parts {
		partials = append(partials, p)
	}
	return Combine(ctx, partials)
}

// Combine merges partial corpora pairwise, level by level, until one remains.
// Inputs are consumed: the result may alias any of them
func Combine(ctx context.Context, partials []freq.Corpus) (freq.Corpus, error) {
	if len(partials) == 0 {
		return freq.New(), nil
	}
	for len(partials) > 1 {
		next := make([]freq.Corpus, (len(partials)+1)/2)
		g, gctx := errgroup.WithContext(ctx)
		for i := 0; i < len(partials); i += 2 {
			if i+1 == len(partials) {
				next[i/2] = partials[i]
				continue
			}
			l, r := partials[i], partials[i+1]
			g.Go(func() error {
				if err := gctx.Err(); err != nil {
					return err
				}
				// fold the smaller side into the larger one
				if l.Authors() < r.Authors() {
					l, r = r, l
				}
				l.Merge(r)
				next[i/2] = l
				return nil
			})
		}
		if err := g.Wait(); err != nil {
			return nil, err
		}
		partials = next
	}
	return partials[0], nil
}

// shard returns the [lo, hi) bounds of shard i when total items are split n ways
func shard(total, n, i int) (lo, hi int) {
	size, rem := total/n, total%n
	lo = i*size + min(i, rem)
	hi = lo + size
	if i < rem {
		hi++
	}
	return lo, hi
}
