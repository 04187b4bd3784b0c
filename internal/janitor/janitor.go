// Package janitor runs periodic cleanup of idle chat sessions and expired
// search cache entries.
package janitor

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"
)

// Default schedules.
const (
	DefaultSessionSchedule = "@every 10m"
	DefaultCacheSchedule   = "@hourly"
)

// jobTimeout bounds a single cache purge.
const jobTimeout = time.Minute

// SessionPurger drops idle sessions.
type SessionPurger interface {
	PurgeExpired() int
}

// CachePurger drops expired cache entries.
type CachePurger interface {
	PurgeExpired(ctx context.Context) (int, error)
}

// Janitor schedules the cleanup jobs.
type Janitor struct {
	cron   *cron.Cron
	logger zerolog.Logger
}

// New creates a Janitor. Overlapping runs of the same job are skipped.
func New(logger zerolog.Logger) *Janitor {
	cl := cronLogger{logger: logger}
	return &Janitor{
		cron: cron.New(
			cron.WithLogger(cl),
			cron.WithChain(cron.Recover(cl), cron.SkipIfStillRunning(cl)),
		),
		logger: logger,
	}
}

// AddSessionPurge runs p on a cron schedule such as "@every 10m".
func (j *Janitor) AddSessionPurge(schedule string, p SessionPurger) error {
	if _, err := j.cron.AddFunc(schedule, func() { j.purgeSessions(p) }); err != nil {
		return fmt.Errorf("scheduling session purge %q: %w", schedule, err)
	}
	return nil
}

// AddCachePurge runs p on a cron schedule; name labels its log lines.
func (j *Janitor) AddCachePurge(schedule, name string, p CachePurger) error {
	if _, err := j.cron.AddFunc(schedule, func() { j.purgeCache(name, p) }); err != nil {
		return fmt.Errorf("scheduling %s purge %q: %w", name, schedule, err)
	}
	return nil
}

// Jobs returns the number of scheduled jobs.
func (j *Janitor) Jobs() int {
	return len(j.cron.Entries())
}

// Start starts the scheduler in its own goroutine.
func (j *Janitor) Start() {
	j.cron.Start()
}

// Stop stops the scheduler and waits for running jobs.
func (j *Janitor) Stop() {
	ctx := j.cron.Stop()
	<-ctx.Done()
}

func (j *Janitor) purgeSessions(p SessionPurger) {
	if n := p.PurgeExpired(); n > 0 {
		j.logger.Info().Int("sessions", n).Msg("purged idle sessions")
	}
}

func (j *Janitor) purgeCache(name string, p CachePurger) {
	ctx, cancel := context.WithTimeout(context.Background(), jobTimeout)
	defer cancel()

	n, err := p.PurgeExpired(ctx)
	if err != nil {
		j.logger.Warn().Err(err).Str("cache", name).Msg("cache purge failed")
		return
	}
	if n > 0 {
		j.logger.Info().Int("entries", n).Str("cache", name).Msg("purged expired cache entries")
	}
}

// cronLogger adapts zerolog to cron.Logger.
type cronLogger struct {
	logger zerolog.Logger
}

func (l cronLogger) Info(msg string, keysAndValues ...any) {
	l.logger.Debug().Fields(keysAndValues).Msg(msg)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...any) {
	l.logger.Error().Err(err).Fields(keysAndValues).Msg(msg)
}
