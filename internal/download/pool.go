// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package download

import (
	"context"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/pdiddy/paper-scraper/pkg/types"
)

// Task performs one download and reports its outcome.
type Task func(ctx context.Context) types.DownloadResult

// Run executes tasks on at most workers goroutines and returns their results
// in completion order. onResult, when non-nil, is called once per result as
// it completes; calls are serialized. A task failure never stops the others.
func Run(ctx context.Context, workers int, tasks []Task, onResult func(types.DownloadResult)) []types.DownloadResult {
	if workers < 1 {
		workers = 1
	}

	var (
		mu      sync.Mutex
		results = make([]types.DownloadResult, 0, len(tasks))
	)

	var g errgroup.Group
	g.SetLimit(workers)
	for _, task := range tasks {
		g.Go(func() error {
			res := task(ctx)
			mu.Lock()
			defer mu.Unlock()
			results = append(results, res)
			if onResult != nil {
				onResult(res)
			}
			return nil
		})
	}
	_ = g.Wait()
	return results
}
