package queueapi

import (
	"encoding/json"
	"net/http"
	"strconv"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/go-chi/chi/v5"

	"github.com/linnemanlabs/medqueue/internal/model"
)

func (a *API) handleCreatePatient(w http.ResponseWriter, r *http.Request) {
	var p model.Patient
	if err := json.NewDecoder(r.Body).Decode(&p); err != nil {
		writeError(w, http.StatusBadRequest, "invalid payload")
		return
	}
	// Rejected before any network call.
	if err := p.Validate(); err != nil {
		writeError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}

	id, err := a.directory.CreatePatient(r.Context(), &p)
	if err != nil {
		a.logger.Error(r.Context(), err, "patient registration failed", "patient", p.FullName)
		writeError(w, http.StatusBadGateway, "registration failed")
		return
	}

	trace.SpanFromContext(r.Context()).SetAttributes(attribute.Int64("medqueue.patient_id", id))

	a.sync.Kick()
	writeJSON(w, http.StatusCreated, map[string]any{"patient_id": id})
}

func (a *API) handleLookupPatients(w http.ResponseWriter, r *http.Request) {
	name := r.URL.Query().Get("name")
	email := r.URL.Query().Get("email")
	if name == "" && email == "" {
		writeError(w, http.StatusBadRequest, "name or email is required")
		return
	}

	patients, err := a.directory.LookupPatients(r.Context(), name, email)
	if err != nil {
		a.logger.Error(r.Context(), err, "patient lookup failed")
		writeError(w, http.StatusBadGateway, "lookup failed")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"patients": patients})
}

func (a *API) handlePatientHistory(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		writeError(w, http.StatusBadRequest, "invalid patient id")
		return
	}

	history, err := a.directory.PatientHistory(r.Context(), id)
	if err != nil {
		a.logger.Error(r.Context(), err, "history fetch failed", "patient_id", id)
		writeError(w, http.StatusBadGateway, "history unavailable")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"history": history})
}

func (a *API) handleCreateVisit(w http.ResponseWriter, r *http.Request) {
	var v model.VisitInput
	if err := json.NewDecoder(r.Body).Decode(&v); err != nil {
		writeError(w, http.StatusBadRequest, "invalid payload")
		return
	}
	// Empty or unparsable numeric vitals never default silently; the
	// submission is rejected here, before any network call.
	if err := v.Validate(); err != nil {
		writeError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}

	id, err := a.directory.CreateVisit(r.Context(), &v)
	if err != nil {
		a.logger.Error(r.Context(), err, "visit submission failed", "patient_id", v.PatientID)
		writeError(w, http.StatusBadGateway, "visit submission failed")
		return
	}

	trace.SpanFromContext(r.Context()).SetAttributes(attribute.Int64("medqueue.visit_id", id))

	a.sync.Kick()
	writeJSON(w, http.StatusCreated, map[string]any{"visit_id": id})
}
