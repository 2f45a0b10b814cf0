package models

import (
	"context"
	"runtime"

	"golang.org/x/exp/rand"
	"golang.org/x/sync/errgroup"
)

// GenerateParallel simulates the paths of p on up to workers goroutines.
// Path i draws from its own source seeded with PathSeed(seed, i), so the
// result depends only on seed and never on workers or scheduling. It is not
// equal to Generate with a single shared source.
//
// onPath, if set, is called once per finished path and must be safe for
// concurrent use.
func (g *GBM) GenerateParallel(ctx context.Context, p SimulationParameters, seed uint64, workers int, onPath func(path int)) (PathSet, error) {
	if err := p.ValidateGBM(); err != nil {
		return nil, err
	}
	steps, err := g.Limits.checkGrid(p.Horizon, p.Step, p.PathCount)
	if err != nil {
		return nil, err
	}
	if workers < 1 {
		workers = runtime.GOMAXPROCS(0)
	}

	paths := make(PathSet, p.PathCount)
	eg, gctx := errgroup.WithContext(ctx)
	eg.SetLimit(workers)

	for i := range paths {
		if gctx.Err() != nil {
			break
		}
		i := i
		eg.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			rng := rand.New(rand.NewSource(PathSeed(seed, i)))
			paths[i] = simulatePath(p, steps, rng)
			if onPath != nil {
				onPath(i)
			}
			return nil
		})
	}

	if err := eg.Wait(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return paths, nil
}

// PathSeed derives the seed of path i from a master seed (SplitMix64).
func PathSeed(seed uint64, i int) uint64 {
	z := seed + uint64(i+1)*0x9e3779b97f4a7c15
	z = (z ^ (z >> 30)) * 0xbf58476d1ce4e5b9
	z = (z ^ (z >> 27)) * 0x94d049bb133111eb
	return z ^ (z >> 31)
}
