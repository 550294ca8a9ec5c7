// Package scheduler runs the periodic background jobs of the API server.
package scheduler

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"

	"github.com/crucial707/timetable/internal/metrics"
)

// TotalsSource reports table sizes.
type TotalsSource interface {
	Totals(ctx context.Context) (users, entries int64, err error)
}

const refreshTimeout = 10 * time.Second

// RefreshStats reads the current totals once and publishes them as gauges.
func RefreshStats(ctx context.Context, src TotalsSource, log *logrus.Logger) error {
	ctx, cancel := context.WithTimeout(ctx, refreshTimeout)
	defer cancel()

	users, entries, err := src.Totals(ctx)
	if err != nil {
		log.WithError(err).Warn("scheduler: refresh stats")
		return err
	}
	metrics.SetTotals(users, entries)
	log.WithFields(logrus.Fields{"users": users, "entries": entries}).Debug("scheduler: stats refreshed")
	return nil
}

// Run refreshes the stats gauges on spec until ctx is cancelled. An initial refresh
// happens immediately. It returns an error only for an invalid spec.
func Run(ctx context.Context, spec string, src TotalsSource, log *logrus.Logger) error {
	c := cron.New()
	if _, err := c.AddFunc(spec, func() { _ = RefreshStats(ctx, src, log) }); err != nil {
		return err
	}

	// Initial load
	_ = RefreshStats(ctx, src, log)
	c.Start()
	log.WithField("cron", spec).Info("scheduler: stats job started")

	<-ctx.Done()
	<-c.Stop().Done()
	return nil
}
