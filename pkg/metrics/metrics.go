package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// SearchDetections counts which query features the parser detected.
	SearchDetections = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "directory_search_detections_total",
			Help: "Query features detected by the search parser",
		},
		[]string{"feature"},
	)

	SavedCompanyChanges = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "directory_saved_company_changes_total",
			Help: "Saved company mutations by action (save|unsave)",
		},
		[]string{"action"},
	)

	OutreachEmails = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "directory_outreach_emails_total",
			Help: "Outreach emails by delivery status",
		},
		[]string{"status"},
	)

	EventsPublished = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "directory_events_published_total",
			Help: "Domain events handed to the publisher by result (success|failure)",
		},
		[]string{"type", "result"},
	)
)
