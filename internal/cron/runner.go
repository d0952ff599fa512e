package cronrunner

import (
	"context"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// Runner schedules background jobs on 6-field cron specs (seconds enabled,
// so "0 0 17 * * *" fires once a day at 17:00).
type Runner struct {
	cron   *cron.Cron
	logger *zap.Logger
	base   context.Context
}

func New(logger *zap.Logger, base context.Context) *Runner {
	if base == nil {
		base = context.Background()
	}
	return &Runner{
		cron:   cron.New(cron.WithSeconds()),
		logger: logger,
		base:   base,
	}
}

// Add registers job under spec. Jobs receive the runner's base context, so
// process shutdown cancels whatever run is in flight.
func (r *Runner) Add(spec string, job func(context.Context)) (cron.EntryID, error) {
	return r.cron.AddFunc(spec, func() {
		ctx := context.Background()
		if r != nil && r.base != nil {
			ctx = r.base
		}
		job(ctx)
	})
}

func (r *Runner) Start() {
	if r.logger != nil {
		r.logger.Info("cron started")
	}
	r.cron.Start()
}

// Stop waits for running jobs to finish before returning.
func (r *Runner) Stop() {
	ctx := r.cron.Stop()
	<-ctx.Done()
	if r.logger != nil {
		r.logger.Info("cron stopped")
	}
}
