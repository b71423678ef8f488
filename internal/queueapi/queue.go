package queueapi

import (
	"encoding/json"
	"net/http"
	"strconv"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/go-chi/chi/v5"

	"github.com/linnemanlabs/medqueue/internal/model"
	"github.com/linnemanlabs/medqueue/internal/queue"
)

// queueView is the contract presentation code renders: the reconciled
// item list plus derived stats, both from the same cache snapshot.
type queueView struct {
	Department string            `json:"department"`
	Queue      []model.QueueItem `json:"queue"`
	Stats      queue.Stats       `json:"stats"`
}

func (a *API) view() queueView {
	return queueView{
		Department: a.sync.Department(),
		Queue:      a.sync.Snapshot(),
		Stats:      a.sync.Stats(),
	}
}

func (a *API) handleGetQueue(w http.ResponseWriter, r *http.Request) {
	span := trace.SpanFromContext(r.Context())
	span.SetAttributes(attribute.String("medqueue.department", a.sync.Department()))

	writeJSON(w, http.StatusOK, a.view())
}

func (a *API) handleSetDepartment(w http.ResponseWriter, r *http.Request) {
	var in struct {
		Department string `json:"department"`
	}
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil || in.Department == "" {
		writeError(w, http.StatusBadRequest, "department is required")
		return
	}

	span := trace.SpanFromContext(r.Context())
	span.SetAttributes(attribute.String("medqueue.department", in.Department))

	if err := a.sync.SetDepartment(r.Context(), in.Department); err != nil {
		// The view already fell back to empty; the next poll retries.
		a.logger.Error(r.Context(), err, "department switch refresh failed", "department", in.Department)
	}
	writeJSON(w, http.StatusOK, a.view())
}

func (a *API) handleStatusChange(w http.ResponseWriter, r *http.Request) {
	queueID, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || queueID <= 0 {
		writeError(w, http.StatusBadRequest, "invalid queue id")
		return
	}
	status := model.QueueStatus(r.URL.Query().Get("status"))
	if status == "" {
		writeError(w, http.StatusBadRequest, "status is required")
		return
	}

	span := trace.SpanFromContext(r.Context())
	span.SetAttributes(
		attribute.Int64("medqueue.queue_id", queueID),
		attribute.String("medqueue.status", string(status)),
	)

	// Optimistic: the response reflects the requested state before the
	// store confirms it. A rejected mutation resynchronizes via refresh.
	a.sync.RequestStatusChange(r.Context(), queueID, status)
	writeJSON(w, http.StatusAccepted, a.view())
}

func (a *API) handleSimulate(w http.ResponseWriter, r *http.Request) {
	if a.simulator == nil {
		writeError(w, http.StatusNotImplemented, "simulation not configured")
		return
	}

	ok := a.simulator.Run(r.Context())
	if a.OnSimulate != nil {
		a.OnSimulate(ok)
	}
	if ok {
		a.sync.Kick()
	}
	writeJSON(w, http.StatusOK, map[string]bool{"ok": ok})
}

func (a *API) handleStats(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, a.sync.Stats())
}

func (a *API) handleDashboardStats(w http.ResponseWriter, r *http.Request) {
	stats, err := a.directory.DashboardStats(r.Context())
	if err != nil {
		a.logger.Error(r.Context(), err, "dashboard stats fetch failed")
		writeError(w, http.StatusBadGateway, "stats unavailable")
		return
	}
	writeJSON(w, http.StatusOK, stats)
}
