// Package jobs runs the periodic housekeeping of the gym: expiring
// registrations, moving sessions along and closing visits left open.
package jobs

import (
	"alcyxob/gym-app/internal/config"
	"alcyxob/gym-app/internal/metrics"
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"
)

const (
	JobExpireSubscriptions = "expire_subscriptions"
	JobAdvanceSessions     = "advance_sessions"
	JobAutoCheckOut        = "auto_checkout"

	jobTimeout = time.Minute
)

type SubscriptionExpirer interface {
	ExpireEnded(ctx context.Context) (int64, error)
}

type SessionAdvancer interface {
	Advance(ctx context.Context) (started, completed int, err error)
}

type VisitCloser interface {
	AutoCheckOut(ctx context.Context) (int, error)
}

// Runner wires the services into cron entries.
type Runner struct {
	subs     SubscriptionExpirer
	sessions SessionAdvancer
	visits   VisitCloser
	metrics  *metrics.Metrics
	log      logrus.FieldLogger
	cron     *cron.Cron
}

func NewRunner(subs SubscriptionExpirer, sessions SessionAdvancer, visits VisitCloser, m *metrics.Metrics, log logrus.FieldLogger) *Runner {
	return &Runner{subs: subs, sessions: sessions, visits: visits, metrics: m, log: log}
}

func (r *Runner) ExpireSubscriptions(ctx context.Context) error {
	n, err := r.subs.ExpireEnded(ctx)
	if err != nil {
		return err
	}
	if n > 0 {
		r.log.WithField("count", n).Info("registrations expired")
	}
	return nil
}

func (r *Runner) AdvanceSessions(ctx context.Context) error {
	started, completed, err := r.sessions.Advance(ctx)
	if started > 0 || completed > 0 {
		r.log.WithFields(logrus.Fields{"started": started, "completed": completed}).Info("sessions advanced")
	}
	return err
}

func (r *Runner) AutoCheckOut(ctx context.Context) error {
	n, err := r.visits.AutoCheckOut(ctx)
	if n > 0 {
		r.log.WithField("count", n).Info("open visits checked out")
	}
	return err
}

// RunAll runs every job once, e.g. at startup to catch up after downtime.
func (r *Runner) RunAll(ctx context.Context) {
	r.run(ctx, JobExpireSubscriptions, r.ExpireSubscriptions)
	r.run(ctx, JobAdvanceSessions, r.AdvanceSessions)
}

func (r *Runner) run(ctx context.Context, name string, job func(context.Context) error) {
	ctx, cancel := context.WithTimeout(ctx, jobTimeout)
	defer cancel()
	err := job(ctx)
	r.metrics.JobRun(name, err)
	if err != nil {
		r.log.WithError(err).WithField("job", name).Error("scheduled job failed")
	}
}

// Start schedules the jobs in the gym's time zone and starts the cron loop.
func (r *Runner) Start(cfg config.JobsConfig, loc *time.Location) error {
	if loc == nil {
		loc = time.UTC
	}
	c := cron.New(
		cron.WithLocation(loc),
		cron.WithChain(cron.Recover(cronLogger{r.log}), cron.SkipIfStillRunning(cronLogger{r.log})),
	)
	entries := []struct {
		name string
		spec string
		job  func(context.Context) error
	}{
		{JobExpireSubscriptions, cfg.ExpireSpec, r.ExpireSubscriptions},
		{JobAdvanceSessions, cfg.SessionTick, r.AdvanceSessions},
		{JobAutoCheckOut, cfg.CheckoutSpec, r.AutoCheckOut},
	}
	for _, e := range entries {
		e := e
		if _, err := c.AddFunc(e.spec, func() { r.run(context.Background(), e.name, e.job) }); err != nil {
			return fmt.Errorf("schedule %s (%q): %w", e.name, e.spec, err)
		}
		r.log.WithFields(logrus.Fields{"job": e.name, "spec": e.spec}).Info("job scheduled")
	}
	r.cron = c
	c.Start()
	return nil
}

// Stop waits for running jobs to finish or ctx to expire.
func (r *Runner) Stop(ctx context.Context) {
	if r.cron == nil {
		return
	}
	select {
	case <-r.cron.Stop().Done():
	case <-ctx.Done():
	}
}

// cronLogger adapts logrus to cron.Logger.
type cronLogger struct {
	log logrus.FieldLogger
}

func (l cronLogger) Info(msg string, keysAndValues ...interface{}) {
	l.log.WithFields(kv(keysAndValues)).Debug(msg)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	l.log.WithError(err).WithFields(kv(keysAndValues)).Error(msg)
}

func kv(keysAndValues []interface{}) logrus.Fields {
	fields := logrus.Fields{}
	for i := 0; i+1 < len(keysAndValues); i += 2 {
		fields[fmt.Sprint(keysAndValues[i])] = keysAndValues[i+1]
	}
	return fields
}
