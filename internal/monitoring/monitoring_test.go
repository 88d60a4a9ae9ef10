package monitoring_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/nutralink/directory/internal/database/testutil"
	"github.com/nutralink/directory/internal/monitoring"
	"github.com/nutralink/directory/internal/monitoring/checks"
)

func setupModule(t *testing.T) *monitoring.Module {
	t.Helper()

	mod, err := monitoring.NewModule(monitoring.Options{SkipDefaultGatherer: true})
	require.NoError(t, err)
	monitoring.SetModule(mod)
	return mod
}

func TestSummaryAggregatesMetrics(t *testing.T) {
	setupModule(t)

	monitoring.RecordSearch(false, 4, 20*time.Millisecond)
	monitoring.RecordSearch(true, 0, 2*time.Millisecond)
	monitoring.RecordRealtimeConnection(1)
	monitoring.RecordRealtimeBroadcast("saved.companies")
	monitoring.RecordRealtimeFailure("saved.companies", "backpressure", "drop")
	monitoring.RecordMaintenanceRun("search_log_cleanup", "success", "", time.Second)

	summary := monitoring.Snapshot()
	require.Equal(t, uint64(2), summary.Search.Total)
	require.Equal(t, uint64(1), summary.Search.CacheHits)
	require.Equal(t, uint64(1), summary.Search.EmptyResults)
	require.InDelta(t, 0.011, summary.Search.AverageLatencySeconds, 0.0001)
	require.False(t, summary.Search.LastSearchAt.IsZero())
	require.Equal(t, int64(1), summary.Realtime.ActiveConnections)
	require.Equal(t, uint64(1), summary.Realtime.Broadcasts)
	require.NotNil(t, summary.Realtime.LastFailure)
	require.Len(t, summary.Maintenance.Jobs, 1)
	require.Equal(t, "success", summary.Maintenance.Jobs[0].LastStatus)
}

func TestRealtimeConnectionGaugeNeverNegative(t *testing.T) {
	setupModule(t)

	monitoring.RecordRealtimeConnection(-3)
	require.Zero(t, monitoring.Snapshot().Realtime.ActiveConnections)
}

func TestHandlerExposesModuleMetrics(t *testing.T) {
	mod := setupModule(t)
	monitoring.ObserveAPILatency("get", "/api/search", "200", 5*time.Millisecond)

	rec := httptest.NewRecorder()
	mod.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	require.True(t, strings.Contains(body, `directory_api_latency_seconds_count{method="GET",path="api/search",status="200"} 1`), body)
}

func TestHealthManagerEvaluate(t *testing.T) {
	manager := monitoring.NewHealthManager()
	manager.RegisterReadiness(monitoring.NewCheck("database", func(ctx context.Context) monitoring.ProbeResult {
		return monitoring.ProbeResult{Status: monitoring.StatusUp}
	}))
	manager.RegisterReadiness(monitoring.NewCheck("redis", func(ctx context.Context) monitoring.ProbeResult {
		return monitoring.ProbeResult{Status: monitoring.StatusDown, Details: "connection refused"}
	}))

	report := manager.EvaluateReadiness(context.Background())
	require.False(t, report.Success)
	require.Equal(t, monitoring.StatusDown, report.Status)
	require.Len(t, report.Checks, 2)
	require.Equal(t, "redis", report.Checks[1].Component)
}

func TestHealthManagerRecoversPanics(t *testing.T) {
	manager := monitoring.NewHealthManager()
	manager.RegisterLiveness(monitoring.NewCheck("broken", func(ctx context.Context) monitoring.ProbeResult {
		panic("boom")
	}))

	report := manager.EvaluateLiveness(context.Background())
	require.Equal(t, monitoring.StatusDown, report.Status)
	require.Equal(t, "boom", report.Checks[0].Details)
	require.Equal(t, "broken", report.Checks[0].Component)
	require.False(t, report.Success)
}

func TestHealthManagerPanicKeepsLaterProbes(t *testing.T) {
	manager := monitoring.NewHealthManager()
	manager.RegisterReadiness(monitoring.NewCheck("cache", func(ctx context.Context) monitoring.ProbeResult {
		panic(errors.New("nil store"))
	}))
	manager.RegisterReadiness(monitoring.NewCheck("database", func(ctx context.Context) monitoring.ProbeResult {
		return monitoring.ProbeResult{Status: monitoring.StatusUp}
	}))
	manager.RegisterReadiness(monitoring.NewCheck("", nil))

	report := manager.EvaluateReadiness(context.Background())
	require.Equal(t, monitoring.StatusDown, report.Status)
	require.Len(t, report.Checks, 2)
	require.Equal(t, "nil store", report.Checks[0].Details)
	require.Equal(t, monitoring.StatusUp, report.Checks[1].Status)
	require.Equal(t, "database", report.Checks[1].Component)
}

func TestHealthManagerEmptyStatusIsDown(t *testing.T) {
	manager := monitoring.NewHealthManager()
	manager.RegisterLiveness(monitoring.NewCheck("silent", func(ctx context.Context) monitoring.ProbeResult {
		return monitoring.ProbeResult{}
	}))
	manager.RegisterLiveness(monitoring.NewCheck("unimplemented", nil))

	report := manager.EvaluateLiveness(context.Background())
	require.Equal(t, monitoring.StatusDown, report.Status)
	require.Equal(t, monitoring.StatusDown, report.Checks[0].Status)
	require.Equal(t, "no probe registered", report.Checks[1].Details)
}

func TestDatabaseCheck(t *testing.T) {
	require.Equal(t, monitoring.StatusDown, checks.Database(nil, 0).Run(context.Background()).Status)

	db := testutil.MustOpenTestDB(t)
	sqlDB, err := db.DB()
	require.NoError(t, err)

	result := checks.Database(db, time.Second).Run(context.Background())
	require.Equal(t, monitoring.StatusUp, result.Status)
	require.Contains(t, result.Details, "in use")

	require.NoError(t, sqlDB.Close())
	closed := checks.Database(db, time.Second).Run(context.Background())
	require.Equal(t, monitoring.StatusDown, closed.Status)
}

func TestResultFromError(t *testing.T) {
	require.Equal(t, monitoring.StatusUp, monitoring.ResultFromError("db", nil, time.Second).Status)
	require.Equal(t, monitoring.StatusDegraded, monitoring.ResultFromError("db", context.DeadlineExceeded, 0).Status)
	require.Equal(t, monitoring.StatusDown, monitoring.ResultFromError("db", errors.New("refused"), 0).Status)
}

func TestMaintenanceCheck(t *testing.T) {
	setupModule(t)

	monitoring.RecordMaintenanceRun("search_log_cleanup", "success", "", time.Second)
	monitoring.RecordMaintenanceRun("cache_cleanup", "failure", "timeout", time.Second)

	result := checks.Maintenance(0).Run(context.Background())
	require.Equal(t, monitoring.StatusDown, result.Status)
	require.Contains(t, result.Details, "cache_cleanup")
}

type pingerFunc func(ctx context.Context) error

func (f pingerFunc) Ping(ctx context.Context) error { return f(ctx) }

func TestRedisCheck(t *testing.T) {
	disabled := checks.Redis(nil, false, 0).Run(context.Background())
	require.Equal(t, monitoring.StatusUp, disabled.Status)

	failing := checks.Redis(pingerFunc(func(context.Context) error { return errors.New("refused") }), true, 0).Run(context.Background())
	require.Equal(t, monitoring.StatusDegraded, failing.Status)
	require.Equal(t, "refused", failing.Details)

	unreachable := checks.Redis(nil, true, 0).Run(context.Background())
	require.Equal(t, monitoring.StatusDegraded, unreachable.Status)
	require.Contains(t, unreachable.Details, "database cache")

	healthy := checks.Redis(pingerFunc(func(context.Context) error { return nil }), true, time.Second).Run(context.Background())
	require.Equal(t, monitoring.StatusUp, healthy.Status)
}

type connectionCounter int

func (c connectionCounter) ConnectionCount() int { return int(c) }

func TestRealtimeCheck(t *testing.T) {
	setupModule(t)

	require.Equal(t, monitoring.StatusDegraded, checks.Realtime(nil).Run(context.Background()).Status)

	result := checks.Realtime(connectionCounter(2)).Run(context.Background())
	require.Equal(t, monitoring.StatusUp, result.Status)
	require.Contains(t, result.Details, "2 connections")

	monitoring.RecordRealtimeFailure("saved.companies", "backpressure", "client too slow")
	result = checks.Realtime(connectionCounter(1)).Run(context.Background())
	require.Equal(t, monitoring.StatusDegraded, result.Status)
	require.Contains(t, result.Details, "backpressure")
	require.Contains(t, result.Details, "client too slow")
}
