package handler

import (
	"fmt"
	"net/http"
	"sort"

	"github.com/castpro/castpro/internal/metrics"
)

// MetricsHandler exposes in-memory metrics.
type MetricsHandler struct {
	snapshotter metrics.Snapshotter
}

// NewMetricsHandler creates a new MetricsHandler.
func NewMetricsHandler(snapshotter metrics.Snapshotter) *MetricsHandler {
	return &MetricsHandler{snapshotter: snapshotter}
}

// Metrics returns metrics in Prometheus exposition format.
func (h *MetricsHandler) Metrics(w http.ResponseWriter, r *http.Request) {
	if h.snapshotter == nil {
		w.WriteHeader(http.StatusServiceUnavailable)
		return
	}

	snap := h.snapshotter.Snapshot()

	w.Header().Set("Content-Type", "text/plain; version=0.0.4")

	writeMetric(w, "castpro_users_registered_total %d\n", snap.UsersRegistered)
	writeMetric(w, "castpro_logins_total{status=\"success\"} %d\n", snap.LoginSuccesses)
	writeMetric(w, "castpro_logins_total{status=\"failure\"} %d\n", snap.LoginFailures)

	writeMetric(w, "castpro_items_created_total %d\n", snap.ItemsCreated)
	writeMetric(w, "castpro_items_updated_total %d\n", snap.ItemsUpdated)
	writeMetric(w, "castpro_items_deleted_total %d\n", snap.ItemsDeleted)

	statuses := make([]string, 0, len(snap.ChatRequestsByStatus))
	for status := range snap.ChatRequestsByStatus {
		statuses = append(statuses, status)
	}
	sort.Strings(statuses)
	for _, status := range statuses {
		writeMetric(w, "castpro_chat_requests_total{status=%q} %d\n", status, snap.ChatRequestsByStatus[status])
	}

	writeMetric(w, "castpro_chat_upstream_duration_seconds_count %d\n", snap.ChatUpstreamDurationCount)
	writeMetric(w, "castpro_chat_upstream_duration_seconds_sum %.6f\n", float64(snap.ChatUpstreamDurationTotalNs)/1e9)
}

func writeMetric(w http.ResponseWriter, format string, args ...any) {
	_, _ = fmt.Fprintf(w, format, args...)
}
