package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/lysyi3m/blepo/app/database"
	"github.com/lysyi3m/blepo/app/feed"
	"github.com/lysyi3m/blepo/app/shorts"
	"github.com/lysyi3m/blepo/app/video"
)

// Pipeline turns a channel list into the ordered list of videos worth
// watching: fresh, unwatched and not short-form.
type Pipeline struct {
	source         feed.Source
	classifier     shorts.Classifier
	now            func() time.Time
	maxConcurrency int
}

type Option func(*Pipeline)

func WithClock(now func() time.Time) Option {
	return func(p *Pipeline) {
		p.now = now
	}
}

// WithMaxConcurrency caps the goroutines of each stage. Zero or less means
// one goroutine per channel or video.
func WithMaxConcurrency(n int) Option {
	return func(p *Pipeline) {
		p.maxConcurrency = n
	}
}

func New(source feed.Source, classifier shorts.Classifier, opts ...Option) *Pipeline {
	p := &Pipeline{
		source:     source,
		classifier: classifier,
		now:        time.Now,
	}

	for _, opt := range opts {
		opt(p)
	}

	return p
}

// Run loads the watched snapshot once and aggregates against it. A store
// failure aborts before anything is fetched, and a cancelled context yields
// its error instead of a partial list.
func (p *Pipeline) Run(ctx context.Context, channels []video.Channel, window video.FetchWindow, store database.WatchedStore) ([]video.Video, error) {
	watched, err := store.LoadWatched()
	if err != nil {
		return nil, fmt.Errorf("failed to load watched videos: %w", err)
	}

	videos := p.Aggregate(ctx, channels, window, watched)
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("aggregation interrupted: %w", err)
	}

	return videos, nil
}

// Aggregate never fails as a whole: a channel that cannot be fetched is
// logged and contributes nothing.
func (p *Pipeline) Aggregate(ctx context.Context, channels []video.Channel, window video.FetchWindow, watched video.WatchedSet) []video.Video {
	runID := uuid.NewString()
	start := time.Now()
	cutoff := window.Cutoff(p.now())

	logger := slog.With("run_id", runID)
	logger.Debug("Aggregation started", "channels", len(channels), "cutoff", cutoff)

	merged := p.fetchAll(ctx, logger, channels, cutoff)
	video.SortNewestFirst(merged)

	unwatched := video.FilterUnwatched(merged, watched)
	result := p.dropShorts(ctx, unwatched)

	logger.Info("Aggregation completed",
		"channels", len(channels),
		"fetched", len(merged),
		"unwatched", len(unwatched),
		"candidates", len(result),
		"duration", time.Since(start))

	return result
}

func (p *Pipeline) fetchAll(ctx context.Context, logger *slog.Logger, channels []video.Channel, cutoff time.Time) []video.Video {
	results := make([][]video.Video, len(channels))

	var g errgroup.Group
	if p.maxConcurrency > 0 {
		g.SetLimit(p.maxConcurrency)
	}

	for i, channel := range channels {
		g.Go(func() error {
			videos, err := p.source.Fetch(ctx, channel)
			if err != nil {
				logger.Warn("Failed to fetch channel", "channel", channel.Name, "error", err)
				return nil
			}
			results[i] = video.FilterByWindow(videos, cutoff)
			return nil
		})
	}
	g.Wait()

	return slices.Concat(results...)
}

func (p *Pipeline) dropShorts(ctx context.Context, videos []video.Video) []video.Video {
	isShort := make([]bool, len(videos))

	var g errgroup.Group
	if p.maxConcurrency > 0 {
		g.SetLimit(p.maxConcurrency)
	}

	for i, v := range videos {
		g.Go(func() error {
			isShort[i] = p.classifier.IsShort(ctx, v.ID)
			return nil
		})
	}
	g.Wait()

	result := make([]video.Video, 0, len(videos))
	for i, v := range videos {
		if !isShort[i] {
			result = append(result, v)
		}
	}
	return result
}
