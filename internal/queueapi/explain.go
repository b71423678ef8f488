package queueapi

import (
	"encoding/json"
	"errors"
	"net/http"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/linnemanlabs/medqueue/internal/explain"
)

func (a *API) handleExplain(w http.ResponseWriter, r *http.Request) {
	if a.explainer == nil {
		writeError(w, http.StatusNotImplemented, "explanations not configured")
		return
	}

	var in struct {
		VisitID int64 `json:"visit_id"`
	}
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil || in.VisitID <= 0 {
		writeError(w, http.StatusBadRequest, "visit_id is required")
		return
	}

	span := trace.SpanFromContext(r.Context())
	span.SetAttributes(attribute.Int64("medqueue.visit_id", in.VisitID))

	item, ok := a.sync.ItemByVisit(in.VisitID)
	if !ok {
		writeError(w, http.StatusNotFound, "visit not on current queue")
		return
	}

	text, err := a.explainer.Explain(r.Context(), item)
	if errors.Is(err, explain.ErrSuperseded) {
		writeError(w, http.StatusConflict, "superseded by a newer request")
		return
	}
	if err != nil {
		// Coordinator-backed explainers degrade to a fallback text and
		// never reach here; a bare provider might.
		a.logger.Error(r.Context(), err, "explanation failed", "visit_id", in.VisitID)
		text = explain.Fallback
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"visit_id":    in.VisitID,
		"risk_level":  item.Prediction.RiskLevel,
		"risk_score":  item.Prediction.RiskScore,
		"explanation": text,
	})
}
