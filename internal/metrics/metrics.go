package metrics

import (
	"regexp"
	"strconv"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	// RequestDuration tracks HTTP request duration in seconds by method, path, status.
	RequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path", "status"},
	)

	// RequestTotal counts HTTP requests by method, path, status.
	RequestTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	// EntryCreates counts schedule create attempts by result (created, invalid, conflict, error).
	EntryCreates = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "schedule_entry_creates_total",
			Help: "Schedule entry create attempts by result",
		},
		[]string{"result"},
	)

	// PatchFields counts per-field outcomes of sparse patches. target is schedule or profile.
	PatchFields = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "patch_field_updates_total",
			Help: "Per-field sparse patch outcomes",
		},
		[]string{"target", "field", "result"},
	)

	// Users and ScheduleEntries are table sizes, refreshed by the stats job.
	Users = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "timetable_users",
		Help: "Registered users",
	})
	ScheduleEntries = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "timetable_schedule_entries",
		Help: "Stored schedule entries",
	})
)

var (
	numericPathSegment = regexp.MustCompile(`/[0-9]+(/|$)`)
	initOnce           sync.Once
)

func init() {
	initOnce.Do(func() {
		prometheus.MustRegister(RequestDuration, RequestTotal, EntryCreates, PatchFields, Users, ScheduleEntries)
	})
}

// NormalizePath reduces cardinality by replacing numeric path segments with {id}.
func NormalizePath(path string) string {
	return numericPathSegment.ReplaceAllString(path, "/{id}$1")
}

// RecordRequest records duration and count for an HTTP request. Call from middleware with method, path, statusCode, duration.
func RecordRequest(method, path string, statusCode int, durationSeconds float64) {
	path = NormalizePath(path)
	status := strconv.Itoa(statusCode)
	RequestDuration.WithLabelValues(method, path, status).Observe(durationSeconds)
	RequestTotal.WithLabelValues(method, path, status).Inc()
}

func IncEntryCreate(result string) {
	EntryCreates.WithLabelValues(result).Inc()
}

func IncPatchField(target, field string, ok bool) {
	result := "failed"
	if ok {
		result = "updated"
	}
	PatchFields.WithLabelValues(target, field, result).Inc()
}

// SetTotals publishes the latest table sizes.
func SetTotals(users, entries int64) {
	Users.Set(float64(users))
	ScheduleEntries.Set(float64(entries))
}
