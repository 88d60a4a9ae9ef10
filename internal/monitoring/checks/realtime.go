package checks

import (
	"context"
	"fmt"
	"time"

	"github.com/nutralink/directory/internal/monitoring"
)

// realtimeFailureWindow is how long a delivery failure keeps the hub degraded.
const realtimeFailureWindow = 15 * time.Minute

// RealtimeObserver is satisfied by realtime.Hub.
type RealtimeObserver interface {
	ConnectionCount() int
}

// Realtime probes the websocket hub that pushes saved-company and outreach
// updates. The hub is degraded while its latest delivery failure is recent.
func Realtime(observer RealtimeObserver) monitoring.Check {
	return monitoring.NewCheck("realtime", func(ctx context.Context) monitoring.ProbeResult {
		if observer == nil {
			return monitoring.ProbeResult{Status: monitoring.StatusDegraded, Details: "realtime hub unavailable"}
		}

		details := fmt.Sprintf("%d connections", observer.ConnectionCount())
		last := monitoring.Snapshot().Realtime.LastFailure
		if last == nil || time.Since(last.Occurred) > realtimeFailureWindow {
			return monitoring.ProbeResult{Status: monitoring.StatusUp, Details: details}
		}
		return monitoring.ProbeResult{
			Status:  monitoring.StatusDegraded,
			Details: fmt.Sprintf("%s; %s on %s: %s", details, last.Type, last.Stream, last.Message),
		}
	})
}
