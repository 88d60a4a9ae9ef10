package monitoring

import (
	"sync"
	"sync/atomic"
	"time"
)

type statStore struct {
	searchTotal     atomic.Uint64
	searchCacheHits atomic.Uint64
	searchEmpty     atomic.Uint64
	searchLatencyNs atomic.Uint64
	searchLastAt    atomic.Int64 // unix nano

	realtimeConnections atomic.Int64
	realtimeBroadcasts  atomic.Uint64
	realtimeFailures    atomic.Uint64
	realtimeLastFailure atomic.Value // *FailureRecord

	maintenance sync.Map // string -> *maintenanceStats
}

func newStatStore() *statStore {
	store := &statStore{}
	store.realtimeLastFailure.Store((*FailureRecord)(nil))
	return store
}

func (s *statStore) cloneMaintenance() []MaintenanceJobSummary {
	summaries := []MaintenanceJobSummary{}
	s.maintenance.Range(func(key, value any) bool {
		job := key.(string)
		stats := value.(*maintenanceStats)
		summaries = append(summaries, stats.snapshot(job))
		return true
	})
	return summaries
}

func (s *statStore) summary() Summary {
	lastFailure, _ := s.realtimeLastFailure.Load().(*FailureRecord)

	total := s.searchTotal.Load()
	var avgSeconds float64
	if total > 0 {
		avgSeconds = float64(s.searchLatencyNs.Load()) / float64(total) / float64(time.Second)
	}
	var lastSearch time.Time
	if at := s.searchLastAt.Load(); at > 0 {
		lastSearch = time.Unix(0, at)
	}

	return Summary{
		GeneratedAt: time.Now(),
		Search: SearchSummary{
			Total:                 total,
			CacheHits:             s.searchCacheHits.Load(),
			EmptyResults:          s.searchEmpty.Load(),
			AverageLatencySeconds: avgSeconds,
			LastSearchAt:          lastSearch,
		},
		Realtime: RealtimeSummary{
			ActiveConnections: s.realtimeConnections.Load(),
			Broadcasts:        s.realtimeBroadcasts.Load(),
			Failures:          s.realtimeFailures.Load(),
			LastFailure:       lastFailure,
		},
		Maintenance: MaintenanceSummary{
			Jobs: s.cloneMaintenance(),
		},
	}
}

func (s *statStore) recordSearch(cacheHit, empty bool, d time.Duration) {
	if d < 0 {
		d = 0
	}
	s.searchTotal.Add(1)
	if cacheHit {
		s.searchCacheHits.Add(1)
	}
	if empty {
		s.searchEmpty.Add(1)
	}
	s.searchLatencyNs.Add(uint64(d))
	s.searchLastAt.Store(time.Now().UnixNano())
}

func (s *statStore) recordRealtimeConnection(delta int64) {
	newValue := s.realtimeConnections.Add(delta)
	if newValue < 0 {
		s.realtimeConnections.Store(0)
	}
}

func (s *statStore) recordRealtimeBroadcast() {
	s.realtimeBroadcasts.Add(1)
}

func (s *statStore) recordRealtimeFailure(record FailureRecord) {
	s.realtimeFailures.Add(1)
	cloned := record
	s.realtimeLastFailure.Store(&cloned)
}

func (s *statStore) maintenanceEntry(job string) *maintenanceStats {
	value, ok := s.maintenance.Load(job)
	if ok {
		return value.(*maintenanceStats)
	}
	stats := &maintenanceStats{}
	actual, _ := s.maintenance.LoadOrStore(job, stats)
	return actual.(*maintenanceStats)
}

type maintenanceStats struct {
	lastStatus           atomic.Value // string
	lastError            atomic.Value // string
	lastRun              atomic.Int64 // unix nano
	lastDuration         atomic.Int64 // nanoseconds
	consecutiveFailures  atomic.Uint64
	totalRuns            atomic.Uint64
	lastSuccessfulRun    atomic.Int64
	consecutiveSuccesses atomic.Uint64
}

func (m *maintenanceStats) snapshot(job string) MaintenanceJobSummary {
	status, _ := m.lastStatus.Load().(string)
	errMsg, _ := m.lastError.Load().(string)

	summary := MaintenanceJobSummary{
		Job:                 job,
		LastStatus:          status,
		LastDuration:        time.Duration(m.lastDuration.Load()),
		LastError:           errMsg,
		ConsecutiveFailures: m.consecutiveFailures.Load(),
		ConsecutiveSuccess:  m.consecutiveSuccesses.Load(),
		TotalRuns:           m.totalRuns.Load(),
	}
	if at := m.lastRun.Load(); at > 0 {
		summary.LastRunAt = time.Unix(0, at)
	}
	if at := m.lastSuccessfulRun.Load(); at > 0 {
		summary.LastSuccessAt = time.Unix(0, at)
	}
	return summary
}

func (m *maintenanceStats) record(result, message string, duration time.Duration) {
	if duration < 0 {
		duration = 0
	}
	now := time.Now()
	m.lastStatus.Store(result)
	m.lastError.Store(message)
	m.lastRun.Store(now.UnixNano())
	m.lastDuration.Store(int64(duration))
	m.totalRuns.Add(1)

	switch result {
	case "success":
		m.consecutiveFailures.Store(0)
		m.consecutiveSuccesses.Add(1)
		m.lastSuccessfulRun.Store(now.UnixNano())
	default:
		m.consecutiveFailures.Add(1)
		m.consecutiveSuccesses.Store(0)
	}
}
