package main

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/multierr"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/nutralink/directory/internal/api"
	"github.com/nutralink/directory/internal/app"
	"github.com/nutralink/directory/internal/app/maintenance"
	iauth "github.com/nutralink/directory/internal/auth"
	"github.com/nutralink/directory/internal/cache"
	"github.com/nutralink/directory/internal/database"
	"github.com/nutralink/directory/internal/events"
	"github.com/nutralink/directory/internal/middleware"
	"github.com/nutralink/directory/internal/monitoring"
	"github.com/nutralink/directory/internal/monitoring/checks"
	"github.com/nutralink/directory/internal/realtime"
	"github.com/nutralink/directory/internal/search"
	"github.com/nutralink/directory/internal/services"
	"github.com/nutralink/directory/pkg/logger"
	"github.com/nutralink/directory/pkg/mail"
)

const probeTimeout = 2 * time.Second

// runtimeStack bundles long-lived services used by the HTTP server.
type runtimeStack struct {
	DB         *gorm.DB
	Redis      *cache.RedisStore
	Publisher  events.Publisher
	Hub        *realtime.Hub
	Monitoring *monitoring.Module
	Cleaner    *maintenance.Cleaner
	Router     *gin.Engine
}

// bootstrapRuntime initialises the database, caches, services and the HTTP router.
func bootstrapRuntime(ctx context.Context, cfg *app.Config, log *zap.Logger) (*runtimeStack, error) {
	stack := &runtimeStack{}
	var err error
	success := false

	defer func() {
		if !success {
			_ = stack.Shutdown(context.Background(), log)
		}
	}()

	// enable gin debug mode
	if debug, _ := os.LookupEnv("GIN_DEBUG"); debug != "true" {
		gin.SetMode(gin.ReleaseMode)
	}

	stack.DB, err = initialiseDatabase(cfg)
	if err != nil {
		return nil, err
	}

	generated, err := app.ApplyRuntimeDefaults(ctx, cfg, stack.DB)
	if err != nil {
		return nil, err
	}
	for key := range generated {
		log.Info("generated runtime secret", zap.String("key", key))
	}

	jwtSvc, err := iauth.NewJWTService(cfg.Auth.JWTServiceConfig())
	if err != nil {
		return nil, fmt.Errorf("initialise jwt service: %w", err)
	}

	dbStore := cache.NewDatabaseStore(stack.DB)
	var store cache.Store = dbStore
	if cfg.Cache.Redis.Enabled {
		if stack.Redis, err = cache.NewRedisStore(ctx, cfg.Cache.RedisClientConfig()); err != nil {
			log.Warn("redis unavailable; falling back to database-backed cache", zap.Error(err))
			stack.Redis = nil
		} else {
			store = stack.Redis
			log.Info("redis connected", zap.String("addr", cfg.Cache.Redis.Address))
		}
	}

	stack.Publisher, err = initialisePublisher(cfg, log)
	if err != nil {
		return nil, err
	}

	mailer, err := initialiseMailer(cfg, log)
	if err != nil {
		return nil, err
	}

	parser, err := initialiseParser(cfg)
	if err != nil {
		return nil, err
	}

	stack.Hub = realtime.NewHub(cfg.Server.CORSOrigins...)

	stack.Monitoring, err = initialiseMonitoring(cfg, stack)
	if err != nil {
		return nil, err
	}

	auditSvc, err := services.NewAuditService(stack.DB)
	if err != nil {
		return nil, fmt.Errorf("initialise audit service: %w", err)
	}

	if cfg.Maintenance.Enabled {
		stack.Cleaner = maintenance.NewCleaner(stack.DB, auditSvc, maintenanceOptions(cfg, dbStore)...)
		if err := stack.Cleaner.Start(); err != nil {
			return nil, fmt.Errorf("start maintenance jobs: %w", err)
		}
		log.Info("maintenance scheduled", zap.Strings("jobs", stack.Cleaner.Jobs()), zap.String("schedule", cfg.Maintenance.Schedule))
	}

	stack.Router, err = api.NewRouter(stack.DB, jwtSvc, cfg, api.Dependencies{
		Parser:     parser,
		Cache:      store,
		Publisher:  stack.Publisher,
		Mailer:     mailer,
		Hub:        stack.Hub,
		Monitoring: stack.Monitoring,
		RateStore:  middleware.NewCacheRateStore(store),
		Audit:      auditSvc,
	})
	if err != nil {
		return nil, fmt.Errorf("build api router: %w", err)
	}

	success = true
	return stack, nil
}

// Shutdown stops background jobs and releases resources, returning every
// failure encountered along the way.
func (s *runtimeStack) Shutdown(ctx context.Context, log *zap.Logger) error {
	if s == nil {
		return nil
	}

	var errs error
	if s.Cleaner != nil {
		stopCtx := s.Cleaner.Stop()
		select {
		case <-stopCtx.Done():
		case <-ctx.Done():
			log.Warn("maintenance jobs still running at shutdown")
		}
	}

	if s.Publisher != nil {
		if err := s.Publisher.Close(); err != nil {
			errs = multierr.Append(errs, fmt.Errorf("close event publisher: %w", err))
		}
	}

	if s.Redis != nil {
		if err := s.Redis.Close(); err != nil {
			errs = multierr.Append(errs, fmt.Errorf("close redis: %w", err))
		}
	}

	if s.DB != nil {
		errs = multierr.Append(errs, closeDatabase(s.DB))
	}

	return errs
}

func initialiseDatabase(cfg *app.Config) (*gorm.DB, error) {
	dbCfg := cfg.Database.ConnectionConfig()
	db, err := database.Open(dbCfg)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	if err := database.AutoMigrateAndSeed(db, cfg.Database.SeedDemo); err != nil {
		_ = closeDatabase(db)
		return nil, fmt.Errorf("auto-migrate database: %w", err)
	}

	driver := dbCfg.Driver
	if driver == "" {
		driver = "sqlite"
	}
	log := logger.WithModule("database")
	log.Info("database connected", zap.String("driver", driver), zap.Bool("seed_demo", cfg.Database.SeedDemo))

	return db, nil
}

func initialisePublisher(cfg *app.Config, log *zap.Logger) (events.Publisher, error) {
	if !cfg.Events.Enabled {
		return events.NewNoopPublisher(), nil
	}
	publisher, err := events.NewAMQPPublisher(cfg.Events.URL, cfg.Events.Exchange)
	if err != nil {
		return nil, fmt.Errorf("connect event broker: %w", err)
	}
	log.Info("event publisher connected", zap.String("exchange", cfg.Events.Exchange))
	return publisher, nil
}

// initialiseMailer returns a nil mailer when SMTP is disabled; outreach then
// records emails without delivering them.
func initialiseMailer(cfg *app.Config, log *zap.Logger) (mail.Mailer, error) {
	if !cfg.Email.SMTP.Enabled {
		log.Info("smtp disabled; outreach emails are recorded only")
		return nil, nil
	}
	mailer, err := mail.NewSMTPMailer(cfg.Email.SMTPSettings())
	if err != nil {
		return nil, fmt.Errorf("initialise smtp mailer: %w", err)
	}
	return mailer, nil
}

// initialiseParser layers the optional dictionary file over the built-in vocabulary.
func initialiseParser(cfg *app.Config) (*search.Parser, error) {
	path := strings.TrimSpace(cfg.Search.DictionaryPath)
	if path == "" {
		return search.NewParser(nil), nil
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open search dictionary: %w", err)
	}
	defer f.Close()

	dict, err := search.LoadDictionary(f)
	if err != nil {
		return nil, fmt.Errorf("load search dictionary %q: %w", path, err)
	}
	return search.NewParser(dict), nil
}

func initialiseMonitoring(cfg *app.Config, stack *runtimeStack) (*monitoring.Module, error) {
	module, err := monitoring.NewModule(monitoring.Options{})
	if err != nil {
		return nil, fmt.Errorf("initialise monitoring: %w", err)
	}
	monitoring.SetModule(module)

	health := module.Health()
	health.RegisterLiveness(checks.Database(stack.DB, probeTimeout))
	health.RegisterReadiness(checks.Database(stack.DB, probeTimeout))

	// A nil *RedisStore must not reach the probe as a non-nil interface.
	var pinger checks.RedisPinger
	if stack.Redis != nil {
		pinger = stack.Redis
	}
	health.RegisterReadiness(checks.Redis(pinger, cfg.Cache.Redis.Enabled, probeTimeout))
	health.RegisterReadiness(checks.Realtime(stack.Hub))
	if cfg.Maintenance.Enabled {
		health.RegisterReadiness(checks.Maintenance(0))
	}
	return module, nil
}

func maintenanceOptions(cfg *app.Config, purger maintenance.Purger) []maintenance.Option {
	opts := []maintenance.Option{
		maintenance.WithCachePurger(purger),
		maintenance.WithSearchLogRetentionDays(cfg.Maintenance.SearchLogRetentionDays),
		maintenance.WithAuditRetentionDays(cfg.Maintenance.AuditRetentionDays),
		maintenance.WithEmailRetentionDays(cfg.Maintenance.EmailRetentionDays),
	}
	if schedule := strings.TrimSpace(cfg.Maintenance.Schedule); schedule != "" {
		opts = append(opts, maintenance.WithSchedule(schedule))
	}
	return opts
}

func closeDatabase(db *gorm.DB) error {
	if db == nil {
		return nil
	}

	sqlDB, err := db.DB()
	if err != nil {
		return fmt.Errorf("obtain sql db: %w", err)
	}

	if err := sqlDB.Close(); err != nil {
		return fmt.Errorf("close database: %w", err)
	}
	return nil
}
