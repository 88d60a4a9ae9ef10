package checks

import (
	"context"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/nutralink/directory/internal/monitoring"
)

const defaultDatabaseTimeout = 2 * time.Second

// Database pings the directory database and reports the connection pool
// usage in the probe details. A pool with no idle connection left is degraded.
func Database(db *gorm.DB, timeout time.Duration) monitoring.Check {
	return monitoring.NewCheck("database", func(ctx context.Context) monitoring.ProbeResult {
		start := time.Now()
		if db == nil {
			return monitoring.ProbeResult{Status: monitoring.StatusDown, Details: "database not configured"}
		}

		sqlDB, err := db.DB()
		if err != nil {
			return monitoring.ResultFromError("database", err, time.Since(start))
		}

		probeCtx, cancel := context.WithTimeout(ctx, orDefault(timeout, defaultDatabaseTimeout))
		defer cancel()
		if err := sqlDB.PingContext(probeCtx); err != nil {
			return monitoring.ResultFromError("database", err, time.Since(start))
		}

		stats := sqlDB.Stats()
		status := monitoring.StatusUp
		if stats.MaxOpenConnections > 0 && stats.InUse >= stats.MaxOpenConnections {
			status = monitoring.StatusDegraded
		}
		return monitoring.ProbeResult{
			Status:   status,
			Details:  fmt.Sprintf("%d open, %d in use", stats.OpenConnections, stats.InUse),
			Duration: time.Since(start),
		}
	})
}

func orDefault(d, fallback time.Duration) time.Duration {
	if d <= 0 {
		return fallback
	}
	return d
}
