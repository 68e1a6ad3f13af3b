package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	EventsCreated = promauto.NewCounter(prometheus.CounterOpts{
		Name: "calnotes_event_rows_created_total",
		Help: "Event rows inserted, instances included",
	})

	EventsDeleted = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "calnotes_event_rows_deleted_total",
		Help: "Event rows deleted by mode (single or series)",
	}, []string{"mode"})

	EventsUpdated = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "calnotes_event_rows_updated_total",
		Help: "Event rows updated by mode (single or series)",
	}, []string{"mode"})

	SharesCreated = promauto.NewCounter(prometheus.CounterOpts{
		Name: "calnotes_shares_created_total",
		Help: "Shares created",
	})

	ShareResponses = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "calnotes_share_responses_total",
		Help: "Share responses by resulting status",
	}, []string{"status"})

	DoctorFindings = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "calnotes_doctor_findings_total",
		Help: "Share inconsistencies found by kind",
	}, []string{"kind"})

	RefreshPublished = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "calnotes_refresh_published_total",
		Help: "Tab refreshes published by tab",
	}, []string{"tab"})
)

const (
	ModeSingle = "single"
	ModeSeries = "series"
)
