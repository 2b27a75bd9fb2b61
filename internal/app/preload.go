// Package app sequences process startup: preload tasks run concurrently and
// the readiness gate opens only once all of them succeed.
package app

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/jsmfood/food-ordering/internal/pkg/metrics"
)

// Gate reports whether startup has completed. The zero value is closed.
type Gate struct {
	ready atomic.Bool
}

// Ready reports whether the gate is open.
func (g *Gate) Ready() bool { return g.ready.Load() }

func (g *Gate) open() { g.ready.Store(true) }

// Task is one unit of startup work.
type Task struct {
	Name string
	Run  func(ctx context.Context) error
}

// Preload runs tasks concurrently and opens gate when all succeed. The first
// failure cancels the others and is returned; the gate then stays closed.
func Preload(ctx context.Context, gate *Gate, log zerolog.Logger, tasks ...Task) error {
	g, gctx := errgroup.WithContext(ctx)
	for _, task := range tasks {
		task := task
		g.Go(func() error {
			start := time.Now()
			err := task.Run(gctx)
			metrics.PreloadDuration.WithLabelValues(task.Name).Observe(time.Since(start).Seconds())
			if err != nil {
				return fmt.Errorf("preload %s: %w", task.Name, err)
			}
			log.Debug().Str("task", task.Name).Dur("took", time.Since(start)).Msg("preload task done")
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	gate.open()
	log.Info().Int("tasks", len(tasks)).Msg("startup complete")
	return nil
}
