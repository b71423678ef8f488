// Package model holds the shared value types for the triage queue:
// patients, visits, risk predictions, and queue items as they cross the
// boundary to the remote store/scoring service.
package model

import (
	"fmt"
	"strings"
	"time"
)

// Gender is the enumerated patient gender.
type Gender string

const (
	GenderMale   Gender = "Male"
	GenderFemale Gender = "Female"
	GenderOther  Gender = "Other"
)

// QueueStatus tracks where a queue item is in its workflow.
//
// The four values below are the known states; the remote service may
// send others and they are passed through uninterpreted.
type QueueStatus string

const (
	// StatusPending means waiting to be seen
	StatusPending QueueStatus = "pending"

	// StatusTreating means currently under treatment
	StatusTreating QueueStatus = "treating"

	// StatusCompleted means treatment finished (terminal)
	StatusCompleted QueueStatus = "completed"

	// StatusDischarged means released without completion (terminal)
	StatusDischarged QueueStatus = "discharged"
)

// Terminal reports whether the status removes an item from the visible queue.
func (s QueueStatus) Terminal() bool {
	return s == StatusCompleted || s == StatusDischarged
}

// MedicalHistoryEntry is one prior condition on a patient record.
// Created at registration time and never independently mutated.
type MedicalHistoryEntry struct {
	Condition     string `json:"condition_name"`
	Chronic       bool   `json:"is_chronic"`
	Notes         string `json:"notes,omitempty"`
	DiagnosisDate string `json:"diagnosis_date,omitempty"`
}

// Patient is the registration shape sent to the remote store. The store
// assigns ID on creation.
type Patient struct {
	ID             int64                 `json:"patient_id,omitempty"`
	FullName       string                `json:"full_name"`
	Age            int                   `json:"age"`
	Gender         Gender                `json:"gender"`
	ContactInfo    string                `json:"contact_info,omitempty"`
	MedicalHistory []MedicalHistoryEntry `json:"medical_history,omitempty"`
}

// Validate checks registration input before it is sent anywhere.
func (p *Patient) Validate() error {
	if strings.TrimSpace(p.FullName) == "" {
		return fmt.Errorf("full_name is required")
	}
	if p.Age < 0 || p.Age > 130 {
		return fmt.Errorf("age %d out of range (0..130)", p.Age)
	}
	switch p.Gender {
	case GenderMale, GenderFemale, GenderOther:
	default:
		return fmt.Errorf("gender %q is not one of Male/Female/Other", p.Gender)
	}
	return nil
}

// SymptomObservation is one reported symptom on a visit.
type SymptomObservation struct {
	Name     string `json:"symptom_name"`
	Severity int    `json:"severity_score"`
	Duration string `json:"duration"`
}

// Validate checks the severity bound. All other fields are opaque text.
func (s *SymptomObservation) Validate() error {
	if strings.TrimSpace(s.Name) == "" {
		return fmt.Errorf("symptom_name is required")
	}
	if s.Severity < 1 || s.Severity > 5 {
		return fmt.Errorf("severity_score %d out of range (1..5)", s.Severity)
	}
	return nil
}

// VisitInput is the visit-submission shape. Vitals ride flat on the
// visit the way the remote store expects them. A visit is immutable
// after creation; the store assigns the timestamp and triggers scoring.
type VisitInput struct {
	PatientID      int64                `json:"patient_id"`
	ChiefComplaint string               `json:"chief_complaint"`
	BPSystolic     int                  `json:"bp_systolic"`
	BPDiastolic    int                  `json:"bp_diastolic"`
	HeartRate      int                  `json:"heart_rate"`
	Temperature    float64              `json:"temperature"`
	Symptoms       []SymptomObservation `json:"symptoms"`
}

// Validate rejects a visit before any network call is made.
func (v *VisitInput) Validate() error {
	if v.PatientID <= 0 {
		return fmt.Errorf("patient_id is required")
	}
	if strings.TrimSpace(v.ChiefComplaint) == "" {
		return fmt.Errorf("chief_complaint is required")
	}
	if v.BPSystolic <= 0 || v.BPDiastolic <= 0 || v.HeartRate <= 0 || v.Temperature <= 0 {
		return fmt.Errorf("vitals must all be positive numbers")
	}
	if len(v.Symptoms) == 0 {
		return fmt.Errorf("at least one symptom is required")
	}
	for i := range v.Symptoms {
		if err := v.Symptoms[i].Validate(); err != nil {
			return fmt.Errorf("symptom %d: %w", i, err)
		}
	}
	return nil
}

// PatientSummary is the patient slice embedded in a queue item.
type PatientSummary struct {
	FullName    string `json:"full_name"`
	Age         int    `json:"age"`
	Gender      Gender `json:"gender"`
	ContactInfo string `json:"contact_info,omitempty"`
}

// VisitSummary is the visit slice embedded in a queue item.
type VisitSummary struct {
	VisitID        int64          `json:"visit_id"`
	Timestamp      string         `json:"visit_timestamp"`
	ChiefComplaint string         `json:"chief_complaint"`
	Patient        PatientSummary `json:"patients"`
}

// RiskPrediction belongs to exactly one visit. The score is
// conventionally 0.0..1.0 but not strictly bounded, and the label may
// disagree with the score; consumers must tolerate both.
type RiskPrediction struct {
	RiskScore float64      `json:"risk_score"`
	RiskLevel string       `json:"risk_level"`
	Visit     VisitSummary `json:"patient_visits"`
}

// QueueItem is the unit of triage prioritization: a server-assigned
// priority, a workflow status, and the prediction chain down to the
// patient.
type QueueItem struct {
	QueueID       int64          `json:"queue_id"`
	PriorityScore float64        `json:"priority_score"`
	Status        QueueStatus    `json:"status"`
	Prediction    RiskPrediction `json:"triage_predictions"`
}

// Validate rejects malformed queue items coming back from the remote
// service rather than letting undefined fields propagate.
func (q *QueueItem) Validate() error {
	if q.QueueID <= 0 {
		return fmt.Errorf("queue_id is required")
	}
	if q.Status == "" {
		return fmt.Errorf("status is required")
	}
	if q.Prediction.Visit.Timestamp != "" {
		if _, err := ParseClinicalTime(q.Prediction.Visit.Timestamp); err != nil {
			return fmt.Errorf("visit_timestamp: %w", err)
		}
	}
	return nil
}

// VisitTime returns the visit timestamp normalized to UTC, and false if
// it is absent or unparsable.
func (q *QueueItem) VisitTime() (time.Time, bool) {
	t, err := ParseClinicalTime(q.Prediction.Visit.Timestamp)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}

// DashboardStats is the aggregate counts shape from the remote store.
type DashboardStats struct {
	TotalPatients  int `json:"total_patients"`
	ActiveVisits   int `json:"active_visits"`
	HighRisk       int `json:"high_risk_patients"`
	MediumRisk     int `json:"medium_risk_patients"`
	LowRisk        int `json:"low_risk_patients"`
	AvgWaitMinutes int `json:"avg_wait_time"`
}

// clinicalLayouts are the timestamp shapes the remote store emits.
// Zoneless layouts are interpreted as UTC by convention.
var clinicalLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05.999999999",
	"2006-01-02",
}

// ParseClinicalTime parses an ISO-8601 timestamp from the remote store.
// Timestamps without an explicit zone are treated as UTC; subtracting a
// local-time interpretation from time.Now() would corrupt every wait
// computation downstream.
func ParseClinicalTime(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, fmt.Errorf("empty timestamp")
	}
	for _, layout := range clinicalLayouts {
		t, err := time.ParseInLocation(layout, s, time.UTC)
		if err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized timestamp %q", s)
}
