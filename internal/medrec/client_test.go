package medrec

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/linnemanlabs/medqueue/internal/model"
)

func newTestClient(t *testing.T, h http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	return New(srv.URL, nil)
}

func TestCreatePatient(t *testing.T) {
	t.Parallel()

	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/patients" {
			t.Errorf("got %s %s, want POST /patients", r.Method, r.URL.Path)
		}
		var p model.Patient
		if err := json.NewDecoder(r.Body).Decode(&p); err != nil {
			t.Errorf("decode body: %v", err)
		}
		if p.FullName != "Jane Doe" {
			t.Errorf("full_name = %q, want Jane Doe", p.FullName)
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"patient_id": 42, "message": "created"}`))
	})

	id, err := c.CreatePatient(context.Background(), &model.Patient{
		FullName: "Jane Doe", Age: 30, Gender: model.GenderFemale,
	})
	if err != nil {
		t.Fatalf("CreatePatient() = %v", err)
	}
	if id != 42 {
		t.Errorf("patient id = %d, want 42", id)
	}
}

func TestCreatePatient_MissingID(t *testing.T) {
	t.Parallel()

	c := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"message": "ok"}`))
	})

	_, err := c.CreatePatient(context.Background(), &model.Patient{FullName: "X", Gender: model.GenderMale})
	if err == nil || !strings.Contains(err.Error(), "missing patient_id") {
		t.Fatalf("err = %v, want missing patient_id", err)
	}
}

func TestCreatePatient_ServerError(t *testing.T) {
	t.Parallel()

	c := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, `{"detail": "duplicate contact"}`, http.StatusConflict)
	})

	_, err := c.CreatePatient(context.Background(), &model.Patient{FullName: "X", Gender: model.GenderMale})
	if err == nil || !strings.Contains(err.Error(), "status 409") {
		t.Fatalf("err = %v, want status 409", err)
	}
}

func TestLookupPatients(t *testing.T) {
	t.Parallel()

	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/patients/lookup" {
			t.Errorf("path = %s, want /patients/lookup", r.URL.Path)
		}
		q := r.URL.Query()
		if q.Get("name") != "smith" || q.Get("email") != "j@example.com" {
			t.Errorf("query = %v, want name=smith email=j@example.com", q)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"patients": [{"patient_id": 1, "full_name": "James Smith", "age": 44, "gender": "Male"}]}`))
	})

	got, err := c.LookupPatients(context.Background(), "smith", "j@example.com")
	if err != nil {
		t.Fatalf("LookupPatients() = %v", err)
	}
	if len(got) != 1 || got[0].FullName != "James Smith" {
		t.Errorf("patients = %+v, want one James Smith", got)
	}
}

func TestLookupPatients_NoMatches(t *testing.T) {
	t.Parallel()

	c := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"patients": []}`))
	})

	got, err := c.LookupPatients(context.Background(), "nobody", "")
	if err != nil {
		t.Fatalf("LookupPatients() = %v, want nil error for zero matches", err)
	}
	if len(got) != 0 {
		t.Errorf("patients = %+v, want empty", got)
	}
}

func TestPatientHistory(t *testing.T) {
	t.Parallel()

	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/patients/7/history" {
			t.Errorf("path = %s, want /patients/7/history", r.URL.Path)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"history": [{"condition_name": "Asthma", "is_chronic": true}]}`))
	})

	got, err := c.PatientHistory(context.Background(), 7)
	if err != nil {
		t.Fatalf("PatientHistory() = %v", err)
	}
	if len(got) != 1 || got[0].Condition != "Asthma" || !got[0].Chronic {
		t.Errorf("history = %+v, want one chronic Asthma entry", got)
	}
}

func TestCreateVisit(t *testing.T) {
	t.Parallel()

	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/patient-visits" {
			t.Errorf("got %s %s, want POST /patient-visits", r.Method, r.URL.Path)
		}
		var v model.VisitInput
		if err := json.NewDecoder(r.Body).Decode(&v); err != nil {
			t.Errorf("decode body: %v", err)
		}
		if v.PatientID != 7 || len(v.Symptoms) != 1 {
			t.Errorf("body = %+v, want patient 7 with one symptom", v)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"visit_id": 99, "message": "queued"}`))
	})

	id, err := c.CreateVisit(context.Background(), &model.VisitInput{
		PatientID:      7,
		ChiefComplaint: "Cough for 1 week",
		BPSystolic:     118, BPDiastolic: 76, HeartRate: 72, Temperature: 98.7,
		Symptoms: []model.SymptomObservation{{Name: "Cough", Severity: 2, Duration: "1 week"}},
	})
	if err != nil {
		t.Fatalf("CreateVisit() = %v", err)
	}
	if id != 99 {
		t.Errorf("visit id = %d, want 99", id)
	}
}

func TestQueue(t *testing.T) {
	t.Parallel()

	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/queues/Emergency" {
			t.Errorf("path = %s, want /queues/Emergency", r.URL.Path)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"queue": [
			{"queue_id": 1, "priority_score": 0.9, "status": "pending", "triage_predictions": {
				"risk_score": 0.8, "risk_level": "High", "patient_visits": {
					"visit_id": 11, "visit_timestamp": "2025-06-01T10:30:00", "chief_complaint": "Chest Pain",
					"patients": {"full_name": "Jane Doe", "age": 61, "gender": "Female"}
				}
			}}
		]}`))
	})

	got, err := c.Queue(context.Background(), "Emergency")
	if err != nil {
		t.Fatalf("Queue() = %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("len = %d, want 1", len(got))
	}
	it := got[0]
	if it.QueueID != 1 || it.Status != model.StatusPending || it.Prediction.Visit.Patient.FullName != "Jane Doe" {
		t.Errorf("item = %+v, want queue 1 pending Jane Doe", it)
	}
}

func TestQueue_MalformedItemFailsFetch(t *testing.T) {
	t.Parallel()

	c := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		// Second item has no queue_id.
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"queue": [
			{"queue_id": 1, "status": "pending", "triage_predictions": {"patient_visits": {"patients": {}}}},
			{"status": "pending", "triage_predictions": {"patient_visits": {"patients": {}}}}
		]}`))
	})

	_, err := c.Queue(context.Background(), "Emergency")
	if err == nil || !strings.Contains(err.Error(), "item 1") {
		t.Fatalf("err = %v, want item 1 validation failure", err)
	}
}

func TestQueue_RetriesServerErrors(t *testing.T) {
	t.Parallel()

	var calls atomic.Int32
	c := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		if calls.Add(1) == 1 {
			http.Error(w, "boom", http.StatusInternalServerError)
			return
		}
		_, _ = w.Write([]byte(`{"queue": []}`))
	})

	got, err := c.Queue(context.Background(), "Emergency")
	if err != nil {
		t.Fatalf("Queue() = %v, want success after retry", err)
	}
	if len(got) != 0 {
		t.Errorf("queue = %+v, want empty", got)
	}
	if calls.Load() != 2 {
		t.Errorf("calls = %d, want 2", calls.Load())
	}
}

func TestUpdateQueueStatus(t *testing.T) {
	t.Parallel()

	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPatch || r.URL.Path != "/queue/5/status" {
			t.Errorf("got %s %s, want PATCH /queue/5/status", r.Method, r.URL.Path)
		}
		if got := r.URL.Query().Get("status"); got != "treating" {
			t.Errorf("status query = %q, want treating", got)
		}
		_, _ = w.Write([]byte(`{"message": "updated"}`))
	})

	if err := c.UpdateQueueStatus(context.Background(), 5, model.StatusTreating); err != nil {
		t.Fatalf("UpdateQueueStatus() = %v", err)
	}
}

func TestUpdateQueueStatus_DoesNotRetry(t *testing.T) {
	t.Parallel()

	var calls atomic.Int32
	c := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		calls.Add(1)
		http.Error(w, "boom", http.StatusInternalServerError)
	})

	if err := c.UpdateQueueStatus(context.Background(), 5, model.StatusTreating); err == nil {
		t.Fatal("UpdateQueueStatus() = nil, want error")
	}
	if calls.Load() != 1 {
		t.Errorf("calls = %d, want 1 (writes must not be replayed)", calls.Load())
	}
}

func TestExplain(t *testing.T) {
	t.Parallel()

	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/triage-explain" {
			t.Errorf("got %s %s, want POST /triage-explain", r.Method, r.URL.Path)
		}
		var body map[string]int64
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			t.Errorf("decode body: %v", err)
		}
		if body["visit_id"] != 11 {
			t.Errorf("visit_id = %d, want 11", body["visit_id"])
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"visit_id": 11, "explanation": "Elevated vitals with acute chest pain."}`))
	})

	got, err := c.Explain(context.Background(), 11)
	if err != nil {
		t.Fatalf("Explain() = %v", err)
	}
	if got != "Elevated vitals with acute chest pain." {
		t.Errorf("explanation = %q", got)
	}
}

func TestExplain_EmptyExplanation(t *testing.T) {
	t.Parallel()

	c := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"visit_id": 11, "explanation": ""}`))
	})

	_, err := c.Explain(context.Background(), 11)
	if err == nil || !strings.Contains(err.Error(), "missing explanation") {
		t.Fatalf("err = %v, want missing explanation", err)
	}
}

func TestDashboardStats(t *testing.T) {
	t.Parallel()

	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/dashboard/stats" {
			t.Errorf("path = %s, want /dashboard/stats", r.URL.Path)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"total_patients": 120, "active_visits": 14, "high_risk_patients": 3, "medium_risk_patients": 6, "low_risk_patients": 5, "avg_wait_time": 27}`))
	})

	got, err := c.DashboardStats(context.Background())
	if err != nil {
		t.Fatalf("DashboardStats() = %v", err)
	}
	if got.TotalPatients != 120 || got.HighRisk != 3 || got.AvgWaitMinutes != 27 {
		t.Errorf("stats = %+v", got)
	}
}
