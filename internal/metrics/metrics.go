package metrics

import (
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "teledigest"

// Drop reasons used with EntriesDropped.
const (
	DropUnresolvedDate = "unresolved_date"
	DropOutsideWindow  = "outside_window"
	DropIncomplete     = "incomplete"
	DropDuplicate      = "duplicate"
	DropIrrelevant     = "irrelevant"
)

var (
	SourcesFetched = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "sources_fetched_total",
			Help:      "Feed sources fetched, by outcome",
		},
		[]string{"source", "status"},
	)

	EntriesDropped = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "entries_dropped_total",
			Help:      "Feed entries dropped before selection, by reason",
		},
		[]string{"reason"},
	)

	RecordsSelected = promauto.NewGauge(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "records_selected",
			Help:      "Records in the last digest",
		},
	)

	RankingOutcomes = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "ranking_total",
			Help:      "Ranking calls, by outcome (ranked or fallback)",
		},
		[]string{"outcome"},
	)

	MailsSent = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "mails_sent_total",
			Help:      "Mails submitted, by kind and status",
		},
		[]string{"kind", "status"},
	)

	RunDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "run_duration_seconds",
			Help:      "Duration of digest runs",
			Buckets:   []float64{1, 5, 10, 30, 60, 120, 300},
		},
	)
)

func RecordSource(source string, ok bool) {
	status := "ok"
	if !ok {
		status = "error"
	}
	SourcesFetched.WithLabelValues(source, status).Inc()
}

func RecordDrop(reason string) {
	EntriesDropped.WithLabelValues(reason).Inc()
}

func RecordRanking(ranked bool) {
	outcome := "ranked"
	if !ranked {
		outcome = "fallback"
	}
	RankingOutcomes.WithLabelValues(outcome).Inc()
}

func RecordMail(kind string, err error) {
	status := "ok"
	if err != nil {
		status = "error"
	}
	MailsSent.WithLabelValues(kind, status).Inc()
}

// Status is the health view of the last runs served on /health.
type Status struct {
	mu sync.RWMutex

	RunsTotal      int64
	RunsFailed     int64
	LastSelected   int
	LastDuration   time.Duration
	LastRunTime    time.Time
	LastErrorTime  time.Time
	LastError      string
	IsHealthy      bool
	LastSourceErrs []string
}

var Global = &Status{IsHealthy: true}

// RecordRun stores the outcome of one run and observes its duration.
func (s *Status) RecordRun(selected int, duration time.Duration, sourceErrs []string, runErr error) {
	RunDuration.Observe(duration.Seconds())
	RecordsSelected.Set(float64(selected))

	s.mu.Lock()
	defer s.mu.Unlock()

	s.RunsTotal++
	s.LastSelected = selected
	s.LastDuration = duration
	s.LastRunTime = time.Now()
	s.LastSourceErrs = append([]string(nil), sourceErrs...)
	if runErr != nil {
		s.RunsFailed++
		s.LastError = runErr.Error()
		s.LastErrorTime = s.LastRunTime
		s.IsHealthy = false
		return
	}
	s.IsHealthy = true
}

func (s *Status) Healthy() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.IsHealthy
}

func (s *Status) GetStats() map[string]interface{} {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stats := map[string]interface{}{
		"runs_total":       s.RunsTotal,
		"runs_failed":      s.RunsFailed,
		"last_selected":    s.LastSelected,
		"last_duration_ms": s.LastDuration.Milliseconds(),
		"last_error":       s.LastError,
		"source_errors":    s.LastSourceErrs,
		"is_healthy":       s.IsHealthy,
	}
	if !s.LastRunTime.IsZero() {
		stats["last_run_time"] = s.LastRunTime.Format(time.RFC3339)
	}
	if !s.LastErrorTime.IsZero() {
		stats["last_error_time"] = s.LastErrorTime.Format(time.RFC3339)
	}
	return stats
}
