package checks

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/nutralink/directory/internal/monitoring"
)

const defaultMaintenanceMaxAge = 6 * time.Hour

// Maintenance inspects the retention jobs recorded by the cleaner. A job whose
// latest run failed marks the probe down; a job that has not succeeded within
// maxAge marks it degraded. Jobs that never ran are listed but not penalised.
func Maintenance(maxAge time.Duration) monitoring.Check {
	maxAge = orDefault(maxAge, defaultMaintenanceMaxAge)

	return monitoring.NewCheck("maintenance", func(ctx context.Context) monitoring.ProbeResult {
		jobs := monitoring.Snapshot().Maintenance.Jobs
		if len(jobs) == 0 {
			return monitoring.ProbeResult{Status: monitoring.StatusUp, Details: "no runs recorded yet"}
		}
		sort.Slice(jobs, func(i, j int) bool { return jobs[i].Job < jobs[j].Job })

		now := time.Now()
		status := monitoring.StatusUp
		var notes []string
		for _, job := range jobs {
			switch {
			case job.TotalRuns == 0:
				notes = append(notes, job.Job+" pending")
			case job.ConsecutiveFailures > 0:
				status = monitoring.StatusDown
				notes = append(notes, fmt.Sprintf("%s failed %d times: %s", job.Job, job.ConsecutiveFailures, job.LastError))
			case now.Sub(job.LastSuccessAt) > maxAge:
				if status == monitoring.StatusUp {
					status = monitoring.StatusDegraded
				}
				notes = append(notes, job.Job+" last succeeded "+job.LastSuccessAt.UTC().Format(time.RFC3339))
			}
		}

		return monitoring.ProbeResult{Status: status, Details: strings.Join(notes, "; ")}
	})
}
