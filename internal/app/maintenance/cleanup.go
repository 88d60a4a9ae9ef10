package maintenance

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/multierr"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/nutralink/directory/internal/models"
	"github.com/nutralink/directory/internal/monitoring"
	"github.com/nutralink/directory/internal/services"
	"github.com/nutralink/directory/pkg/logger"
)

const (
	defaultSchedule               = "@hourly"
	defaultSearchLogRetentionDays = 90
	defaultAuditRetentionDays     = 365

	JobSearchLogs = "search_log_cleanup"
	JobAudit      = "audit_cleanup"
	JobCache      = "cache_cleanup"
	JobEmails     = "email_cleanup"
)

// Purger removes expired cache rows. cache.DatabaseStore satisfies it.
type Purger interface {
	PurgeExpired(ctx context.Context, now time.Time) (int64, error)
}

type job struct {
	name string
	run  func(ctx context.Context) (int64, error)
}

// Cleaner runs the retention jobs: search logs, audit logs, expired cache
// rows and, when configured, old outreach emails.
type Cleaner struct {
	db       *gorm.DB
	audit    *services.AuditService
	purger   Purger
	cron     *cron.Cron
	now      func() time.Time
	log      *zap.Logger
	schedule string

	searchLogRetention int
	auditRetention     int
	emailRetention     int

	jobs []job
}

// Option customises the Cleaner.
type Option func(*Cleaner)

// WithCron injects a preconfigured cron instance, primarily for testing.
func WithCron(c *cron.Cron) Option {
	return func(cleaner *Cleaner) {
		if c != nil {
			cleaner.cron = c
		}
	}
}

// WithNow overrides the clock used for retention cutoffs.
func WithNow(now func() time.Time) Option {
	return func(cleaner *Cleaner) {
		if now != nil {
			cleaner.now = now
		}
	}
}

// WithSchedule overrides the cron expression shared by every job.
func WithSchedule(spec string) Option {
	return func(cleaner *Cleaner) {
		if spec != "" {
			cleaner.schedule = spec
		}
	}
}

// WithCachePurger enables the cache cleanup job.
func WithCachePurger(purger Purger) Option {
	return func(cleaner *Cleaner) {
		cleaner.purger = purger
	}
}

// WithSearchLogRetentionDays sets how long search logs are kept. Zero or less
// keeps the default.
func WithSearchLogRetentionDays(days int) Option {
	return func(cleaner *Cleaner) {
		if days > 0 {
			cleaner.searchLogRetention = days
		}
	}
}

// WithAuditRetentionDays sets how long audit logs are kept.
func WithAuditRetentionDays(days int) Option {
	return func(cleaner *Cleaner) {
		if days > 0 {
			cleaner.auditRetention = days
		}
	}
}

// WithEmailRetentionDays enables pruning of outreach emails older than days.
func WithEmailRetentionDays(days int) Option {
	return func(cleaner *Cleaner) {
		if days > 0 {
			cleaner.emailRetention = days
		}
	}
}

// NewCleaner constructs a Cleaner. A nil db skips the table jobs and a nil
// audit service skips audit retention.
func NewCleaner(db *gorm.DB, audit *services.AuditService, opts ...Option) *Cleaner {
	cleaner := &Cleaner{
		db:                 db,
		audit:              audit,
		now:                time.Now,
		schedule:           defaultSchedule,
		searchLogRetention: defaultSearchLogRetentionDays,
		auditRetention:     defaultAuditRetentionDays,
		log:                logger.WithModule("maintenance"),
	}

	for _, opt := range opts {
		opt(cleaner)
	}

	if cleaner.cron == nil {
		cleaner.cron = cron.New(cron.WithLogger(cron.DiscardLogger))
	}

	if cleaner.db != nil {
		cleaner.jobs = append(cleaner.jobs, job{name: JobSearchLogs, run: cleaner.cleanupSearchLogs})
	}
	if cleaner.audit != nil {
		cleaner.jobs = append(cleaner.jobs, job{name: JobAudit, run: func(ctx context.Context) (int64, error) {
			return cleaner.audit.CleanupOlderThan(ctx, cleaner.auditRetention)
		}})
	}
	if cleaner.purger != nil {
		cleaner.jobs = append(cleaner.jobs, job{name: JobCache, run: func(ctx context.Context) (int64, error) {
			return cleaner.purger.PurgeExpired(ctx, cleaner.now())
		}})
	}
	if cleaner.db != nil && cleaner.emailRetention > 0 {
		cleaner.jobs = append(cleaner.jobs, job{name: JobEmails, run: cleaner.cleanupEmails})
	}

	return cleaner
}

// Jobs lists the names of the enabled jobs.
func (c *Cleaner) Jobs() []string {
	names := make([]string, len(c.jobs))
	for i, j := range c.jobs {
		names[i] = j.name
	}
	return names
}

// Start registers the jobs with the cron scheduler and launches it if at least one job is enabled.
func (c *Cleaner) Start() error {
	if len(c.jobs) == 0 {
		return nil
	}

	for _, j := range c.jobs {
		if _, err := c.cron.AddFunc(c.schedule, func() {
			_ = c.execute(context.Background(), j)
		}); err != nil {
			return fmt.Errorf("maintenance: schedule %s: %w", j.name, err)
		}
	}

	c.cron.Start()
	return nil
}

// Stop halts the underlying scheduler, waiting for any running jobs to complete.
func (c *Cleaner) Stop() context.Context {
	if c.cron == nil {
		return context.Background()
	}
	return c.cron.Stop()
}

// RunOnce executes every job sequentially and returns the combined errors.
func (c *Cleaner) RunOnce(ctx context.Context) error {
	if ctx == nil {
		ctx = context.Background()
	}

	var errs error
	for _, j := range c.jobs {
		errs = multierr.Append(errs, c.execute(ctx, j))
	}
	return errs
}

func (c *Cleaner) execute(ctx context.Context, j job) error {
	started := time.Now()
	removed, err := j.run(ctx)
	duration := time.Since(started)

	if err != nil {
		monitoring.RecordMaintenanceRun(j.name, "failure", err.Error(), duration)
		c.log.Warn("maintenance job failed", zap.String("job", j.name), zap.Error(err))
		return fmt.Errorf("maintenance: %s: %w", j.name, err)
	}

	monitoring.RecordMaintenanceRun(j.name, "success", fmt.Sprintf("removed %d rows", removed), duration)
	if removed > 0 {
		c.log.Info("maintenance job completed",
			zap.String("job", j.name),
			zap.Int64("removed", removed),
			zap.Duration("duration", duration),
		)
	}
	return nil
}

func (c *Cleaner) cleanupSearchLogs(ctx context.Context) (int64, error) {
	return CleanupOlderThan(ctx, c.db, &models.SearchLog{}, c.now().AddDate(0, 0, -c.searchLogRetention))
}

func (c *Cleaner) cleanupEmails(ctx context.Context) (int64, error) {
	return CleanupOlderThan(ctx, c.db, &models.WorkspaceEmail{}, c.now().AddDate(0, 0, -c.emailRetention))
}

// CleanupOlderThan deletes rows of model created before cutoff.
func CleanupOlderThan(ctx context.Context, db *gorm.DB, model any, cutoff time.Time) (int64, error) {
	if db == nil {
		return 0, errors.New("cleanup: db is required")
	}
	if ctx == nil {
		ctx = context.Background()
	}

	result := db.WithContext(ctx).Where("created_at < ?", cutoff).Delete(model)
	if result.Error != nil {
		return 0, result.Error
	}
	return result.RowsAffected, nil
}
