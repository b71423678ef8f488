// Package queueapi exposes the reconciled queue view, stats, and
// triage operations over HTTP for presentation code. Rendering and
// navigation live elsewhere; this is the data contract.
package queueapi

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/linnemanlabs/go-core/log"
	"github.com/linnemanlabs/go-core/xerrors"

	"github.com/linnemanlabs/medqueue/internal/model"
	"github.com/linnemanlabs/medqueue/internal/queue"
)

// Directory defines the store operations the API forwards: patient
// registration, lookup, visit submission, aggregate stats.
type Directory interface {
	CreatePatient(ctx context.Context, p *model.Patient) (int64, error)
	LookupPatients(ctx context.Context, name, email string) ([]model.Patient, error)
	PatientHistory(ctx context.Context, patientID int64) ([]model.MedicalHistoryEntry, error)
	CreateVisit(ctx context.Context, v *model.VisitInput) (int64, error)
	DashboardStats(ctx context.Context) (*model.DashboardStats, error)
}

// Simulator triggers one synthetic patient arrival.
type Simulator interface {
	Run(ctx context.Context) bool
}

// Explainer produces an advisory explanation for one queue item.
type Explainer interface {
	Explain(ctx context.Context, item *model.QueueItem) (string, error)
}

// API holds dependencies for HTTP handlers.
type API struct {
	logger    log.Logger
	sync      *queue.Synchronizer
	directory Directory
	simulator Simulator
	explainer Explainer

	// OnSimulate, when set, observes simulation outcomes for metrics.
	OnSimulate func(ok bool)
}

// New creates a new API handler.
func New(logger log.Logger, sync *queue.Synchronizer, directory Directory, simulator Simulator, explainer Explainer) *API {
	if logger == nil {
		logger = log.Nop()
	}
	if sync == nil {
		panic(xerrors.New("queue synchronizer is required"))
	}
	if directory == nil {
		panic(xerrors.New("store directory is required"))
	}
	return &API{
		logger:    logger,
		sync:      sync,
		directory: directory,
		simulator: simulator,
		explainer: explainer,
	}
}

// RegisterRoutes attaches API endpoints to the router.
func (a *API) RegisterRoutes(r chi.Router) {
	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/queue", a.handleGetQueue)
		r.Post("/queue/department", a.handleSetDepartment)
		r.Patch("/queue/{id}/status", a.handleStatusChange)
		r.Post("/simulate", a.handleSimulate)

		r.Post("/patients", a.handleCreatePatient)
		r.Get("/patients/lookup", a.handleLookupPatients)
		r.Get("/patients/{id}/history", a.handlePatientHistory)
		r.Post("/visits", a.handleCreateVisit)

		r.Post("/explain", a.handleExplain)

		r.Get("/stats", a.handleStats)
		r.Get("/dashboard/stats", a.handleDashboardStats)
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
