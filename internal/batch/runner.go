// Package batch evaluates many list comparisons concurrently, with optional
// result caching.
package batch

import (
	"context"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/ricesearch/rbo/internal/cache"
	apperrors "github.com/ricesearch/rbo/internal/pkg/errors"
	"github.com/ricesearch/rbo/internal/pkg/logger"
	"github.com/ricesearch/rbo/internal/rbo"
)

// Config configures a Runner.
type Config struct {
	// P is the RBO weighting parameter.
	P float64

	// Mode selects tie-corrected or raw overlap.
	Mode rbo.OverlapMode

	// Workers bounds concurrent comparisons (default: 4).
	Workers int
}

// Pair is one comparison to evaluate.
type Pair struct {
	ID    string
	Left  rbo.List[string]
	Right rbo.List[string]

	// Err marks a pair that failed before comparison, such as a score
	// mapping that could not be ranked. It is reported as the outcome.
	Err error
}

// Outcome is the result of one pair. Exactly one of Result and Error is set.
type Outcome struct {
	ID     string      `json:"id"`
	Result *rbo.Result `json:"result,omitempty"`
	Error  string      `json:"error,omitempty"`
	Code   string      `json:"code,omitempty"`
	Cached bool        `json:"cached,omitempty"`
}

// Runner evaluates comparisons with a shared p, mode and cache.
type Runner struct {
	cfg   Config
	cache cache.Cache
	log   *logger.Logger
}

// NewRunner creates a runner. c may be nil to disable caching.
func NewRunner(cfg Config, c cache.Cache, log *logger.Logger) (*Runner, error) {
	if err := rbo.ValidateP(cfg.P); err != nil {
		return nil, err
	}
	if cfg.Workers <= 0 {
		cfg.Workers = 4
	}
	if log == nil {
		log = logger.Discard()
	}
	return &Runner{
		cfg:   cfg,
		cache: c,
		log:   log.WithComponent("batch"),
	}, nil
}

// Compare evaluates one pair, consulting the cache first. The second return
// value reports a cache hit. Cache failures are logged and do not fail the
// comparison.
func (r *Runner) Compare(ctx context.Context, left, right rbo.List[string]) (rbo.Result, bool, error) {
	var key string
	if r.cache != nil {
		key = cache.Key(left, right, r.cfg.P, r.cfg.Mode)
		res, ok, err := r.cache.Get(ctx, key)
		if err != nil {
			r.log.WithError(err).Warn("Cache read failed")
		} else if ok {
			return res, true, nil
		}
	}

	res, err := rbo.Compute(left, right, r.cfg.P, rbo.Options{Mode: r.cfg.Mode})
	if err != nil {
		return rbo.Result{}, false, err
	}

	if r.cache != nil {
		if err := r.cache.Set(ctx, key, res); err != nil {
			r.log.WithError(err).Warn("Cache write failed")
		}
	}
	return res, false, nil
}

// Run evaluates pairs concurrently and returns outcomes in input order. A
// failing pair is recorded in its outcome; only context cancellation aborts
// the run.
func (r *Runner) Run(ctx context.Context, pairs []Pair) ([]Outcome, Summary, error) {
	start := time.Now()
	outcomes := make([]Outcome, len(pairs))

	eg, gctx := errgroup.WithContext(ctx)
	eg.SetLimit(r.cfg.Workers)

	for i, p := range pairs {
		eg.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}

			log := r.log.WithPair(p.ID)
			var (
				res    rbo.Result
				cached bool
				err    = p.Err
			)
			if err == nil {
				res, cached, err = r.Compare(gctx, p.Left, p.Right)
			}
			out := Outcome{ID: p.ID, Cached: cached}
			if err != nil {
				out.Error = err.Error()
				out.Code = apperrors.CodeOf(err)
				log.WithError(err).Debug("Comparison failed")
			} else {
				out.Result = &res
				log.Debug("Comparison done", "min", res.Min, "res", res.Res, "ext", res.Ext, "cached", cached)
			}
			outcomes[i] = out
			return nil
		})
	}

	if err := eg.Wait(); err != nil {
		return nil, Summary{}, err
	}

	summary := Summarize(outcomes)
	r.log.Info("Batch complete",
		"pairs", summary.Pairs,
		"failed", summary.Failed,
		"cache_hits", summary.CacheHits,
		"duration", time.Since(start),
	)
	return outcomes, summary, nil
}
