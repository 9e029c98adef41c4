package reconciler

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/weiawesome/wes-io-live/interaction-service/internal/config"
	pkglog "github.com/weiawesome/wes-io-live/pkg/log"
)

// HotSet tracks the users whose cached counters changed since they were
// last reconciled.
type HotSet interface {
	HotUsers(ctx context.Context, n int64) (map[string]float64, error)
	ClearHotUser(ctx context.Context, userID string, score float64) (bool, error)
}

// CounterCache recounts a cached profile's counters from the follower sets
// and the post feed.
type CounterCache interface {
	RecountCounters(ctx context.Context, userID string) error
}

// Reconciler periodically recounts hot users' cached counters, repairing
// increments lost to concurrent writers.
type Reconciler struct {
	hot     HotSet
	cache   CounterCache
	cfg     config.ReconcilerConfig
	cron    *cron.Cron
	rootCtx context.Context
}

// New creates a new Reconciler.
func New(hot HotSet, cache CounterCache, cfg config.ReconcilerConfig) *Reconciler {
	if cfg.Interval <= 0 {
		cfg.Interval = 60 * time.Second
	}
	if cfg.TopN <= 0 {
		cfg.TopN = 100
	}
	return &Reconciler{
		hot:   hot,
		cache: cache,
		cfg:   cfg,
		cron:  cron.New(),
	}
}

// Start schedules the reconciliation and returns immediately.
func (r *Reconciler) Start(ctx context.Context) error {
	r.rootCtx = ctx
	spec := fmt.Sprintf("@every %s", r.cfg.Interval)
	if _, err := r.cron.AddFunc(spec, func() { r.Reconcile(r.rootCtx) }); err != nil {
		return fmt.Errorf("schedule reconciler: %w", err)
	}
	r.cron.Start()
	return nil
}

// Stop unschedules the reconciler. The returned context is done once a
// running pass has finished.
func (r *Reconciler) Stop() context.Context {
	return r.cron.Stop()
}

// Reconcile runs one pass. Failures for one user are logged and the pass
// moves on. A user stays hot when its counters changed during the pass.
func (r *Reconciler) Reconcile(ctx context.Context) {
	l := pkglog.L()

	hot, err := r.hot.HotUsers(ctx, int64(r.cfg.TopN))
	if err != nil {
		l.Error().Err(err).Msg("reconciler: failed to get hot users")
		return
	}
	if len(hot) == 0 {
		l.Debug().Msg("reconciler: no hot users to reconcile")
		return
	}

	synced := 0
	for userID, score := range hot {
		if err := r.cache.RecountCounters(ctx, userID); err != nil {
			l.Error().Err(err).Str(pkglog.FieldUserID, userID).Msg("reconciler: failed to recount counters")
			continue
		}
		cleared, err := r.hot.ClearHotUser(ctx, userID, score)
		if err != nil {
			l.Error().Err(err).Str(pkglog.FieldUserID, userID).Msg("reconciler: failed to clear hot user")
			continue
		}
		if !cleared {
			l.Debug().Str(pkglog.FieldUserID, userID).Msg("reconciler: counters changed during pass, keeping user hot")
		}
		synced++
	}

	l.Info().Int("count", synced).Msg("reconciler: counter reconciliation complete")
}
