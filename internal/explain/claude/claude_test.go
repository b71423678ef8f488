package claude

import (
	"strings"
	"testing"

	"github.com/linnemanlabs/medqueue/internal/model"
)

func TestBuildPrompt(t *testing.T) {
	t.Parallel()

	item := &model.QueueItem{
		QueueID:       5,
		PriorityScore: 0.92,
		Status:        model.StatusPending,
		Prediction: model.RiskPrediction{
			RiskScore: 0.87,
			RiskLevel: "High",
			Visit: model.VisitSummary{
				VisitID:        11,
				ChiefComplaint: "Chest Pain for 2 hours",
				Patient:        model.PatientSummary{FullName: "Jane Doe", Age: 61, Gender: model.GenderFemale},
			},
		},
	}

	got := buildPrompt(item)

	for _, want := range []string{
		"Age: 61",
		"Gender: Female",
		"Chief Complaint: Chest Pain for 2 hours",
		"Risk Level: High",
		"Risk Score: 0.87",
		"Queue Priority: 0.92",
		"MAX 3 lines",
	} {
		if !strings.Contains(got, want) {
			t.Errorf("prompt missing %q:\n%s", want, got)
		}
	}

	// Patient name is deliberately excluded from what is sent out.
	if strings.Contains(got, "Jane Doe") {
		t.Errorf("prompt leaks patient name:\n%s", got)
	}
}

func TestNew_SetsModel(t *testing.T) {
	t.Parallel()

	p := New("sk-test", "claude-sonnet-4-20250514")
	if p == nil {
		t.Fatal("New() = nil")
	}
	if string(p.model) != "claude-sonnet-4-20250514" {
		t.Errorf("model = %q", p.model)
	}
}
