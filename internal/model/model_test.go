package model

import (
	"strings"
	"testing"
	"time"
)

func validPatient() Patient {
	return Patient{
		FullName:    "James Smith",
		Age:         45,
		Gender:      GenderMale,
		ContactInfo: "james.smith@example.com",
	}
}

func TestPatientValidate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		mutate    func(*Patient)
		wantErr   bool
		errSubstr string
	}{
		{name: "valid", mutate: nil, wantErr: false},
		{name: "empty name", mutate: func(p *Patient) { p.FullName = "" }, wantErr: true, errSubstr: "full_name"},
		{name: "whitespace name", mutate: func(p *Patient) { p.FullName = "   " }, wantErr: true, errSubstr: "full_name"},
		{name: "negative age", mutate: func(p *Patient) { p.Age = -1 }, wantErr: true, errSubstr: "age"},
		{name: "age above max", mutate: func(p *Patient) { p.Age = 131 }, wantErr: true, errSubstr: "age"},
		{name: "age zero is valid", mutate: func(p *Patient) { p.Age = 0 }, wantErr: false},
		{name: "age at max", mutate: func(p *Patient) { p.Age = 130 }, wantErr: false},
		{name: "female", mutate: func(p *Patient) { p.Gender = GenderFemale }, wantErr: false},
		{name: "other gender", mutate: func(p *Patient) { p.Gender = GenderOther }, wantErr: false},
		{name: "empty gender", mutate: func(p *Patient) { p.Gender = "" }, wantErr: true, errSubstr: "gender"},
		{name: "unknown gender", mutate: func(p *Patient) { p.Gender = "X" }, wantErr: true, errSubstr: "gender"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			p := validPatient()
			if tt.mutate != nil {
				tt.mutate(&p)
			}
			err := p.Validate()
			if (err != nil) != tt.wantErr {
				t.Fatalf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil && !strings.Contains(err.Error(), tt.errSubstr) {
				t.Errorf("error %q does not contain %q", err, tt.errSubstr)
			}
		})
	}
}

func validVisit() VisitInput {
	return VisitInput{
		PatientID:      7,
		ChiefComplaint: "Chest Pain",
		BPSystolic:     150,
		BPDiastolic:    95,
		HeartRate:      110,
		Temperature:    99.1,
		Symptoms: []SymptomObservation{
			{Name: "Chest Pain", Severity: 5, Duration: "2 hours"},
		},
	}
}

func TestVisitInputValidate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		mutate    func(*VisitInput)
		wantErr   bool
		errSubstr string
	}{
		{name: "valid", mutate: nil, wantErr: false},
		{name: "missing patient", mutate: func(v *VisitInput) { v.PatientID = 0 }, wantErr: true, errSubstr: "patient_id"},
		{name: "negative patient", mutate: func(v *VisitInput) { v.PatientID = -3 }, wantErr: true, errSubstr: "patient_id"},
		{name: "empty complaint", mutate: func(v *VisitInput) { v.ChiefComplaint = " " }, wantErr: true, errSubstr: "chief_complaint"},
		{name: "zero systolic", mutate: func(v *VisitInput) { v.BPSystolic = 0 }, wantErr: true, errSubstr: "vitals"},
		{name: "zero diastolic", mutate: func(v *VisitInput) { v.BPDiastolic = 0 }, wantErr: true, errSubstr: "vitals"},
		{name: "zero heart rate", mutate: func(v *VisitInput) { v.HeartRate = 0 }, wantErr: true, errSubstr: "vitals"},
		{name: "zero temperature", mutate: func(v *VisitInput) { v.Temperature = 0 }, wantErr: true, errSubstr: "vitals"},
		{name: "no symptoms", mutate: func(v *VisitInput) { v.Symptoms = nil }, wantErr: true, errSubstr: "at least one symptom"},
		{
			name: "symptom severity below range",
			mutate: func(v *VisitInput) {
				v.Symptoms = append(v.Symptoms, SymptomObservation{Name: "Fever", Severity: 0, Duration: "1 day"})
			},
			wantErr:   true,
			errSubstr: "symptom 1",
		},
		{
			name: "symptom severity above range",
			mutate: func(v *VisitInput) {
				v.Symptoms[0].Severity = 6
			},
			wantErr:   true,
			errSubstr: "severity_score",
		},
		{
			name: "unnamed symptom",
			mutate: func(v *VisitInput) {
				v.Symptoms[0].Name = ""
			},
			wantErr:   true,
			errSubstr: "symptom_name",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			v := validVisit()
			if tt.mutate != nil {
				tt.mutate(&v)
			}
			err := v.Validate()
			if (err != nil) != tt.wantErr {
				t.Fatalf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil && !strings.Contains(err.Error(), tt.errSubstr) {
				t.Errorf("error %q does not contain %q", err, tt.errSubstr)
			}
		})
	}
}

func TestQueueStatusTerminal(t *testing.T) {
	t.Parallel()

	tests := []struct {
		status QueueStatus
		want   bool
	}{
		{StatusPending, false},
		{StatusTreating, false},
		{StatusCompleted, true},
		{StatusDischarged, true},
		{QueueStatus("triaged"), false}, // unknown statuses stay visible
		{QueueStatus(""), false},
	}
	for _, tt := range tests {
		if got := tt.status.Terminal(); got != tt.want {
			t.Errorf("Terminal(%q) = %v, want %v", tt.status, got, tt.want)
		}
	}
}

func TestParseClinicalTime(t *testing.T) {
	t.Parallel()

	t.Run("zoneless equals explicit UTC", func(t *testing.T) {
		t.Parallel()
		zoned, err := ParseClinicalTime("2025-06-01T10:30:00Z")
		if err != nil {
			t.Fatalf("parse zoned: %v", err)
		}
		bare, err := ParseClinicalTime("2025-06-01T10:30:00")
		if err != nil {
			t.Fatalf("parse zoneless: %v", err)
		}
		if !zoned.Equal(bare) {
			t.Errorf("zoneless %v != zoned %v", bare, zoned)
		}
		if bare.Location() != time.UTC {
			t.Errorf("location = %v, want UTC", bare.Location())
		}
	})

	t.Run("accepted layouts", func(t *testing.T) {
		t.Parallel()
		for _, s := range []string{
			"2025-06-01T10:30:00.123456Z",
			"2025-06-01T10:30:00.123456",
			"2025-06-01 10:30:00",
			"2025-06-01 10:30:00.5",
			"2025-06-01",
			"  2025-06-01T10:30:00Z  ",
		} {
			if _, err := ParseClinicalTime(s); err != nil {
				t.Errorf("ParseClinicalTime(%q) = %v, want nil", s, err)
			}
		}
	})

	t.Run("offset is normalized to UTC", func(t *testing.T) {
		t.Parallel()
		got, err := ParseClinicalTime("2025-06-01T12:30:00+02:00")
		if err != nil {
			t.Fatalf("parse: %v", err)
		}
		want := time.Date(2025, 6, 1, 10, 30, 0, 0, time.UTC)
		if !got.Equal(want) || got.Location() != time.UTC {
			t.Errorf("got %v, want %v in UTC", got, want)
		}
	})

	t.Run("rejected inputs", func(t *testing.T) {
		t.Parallel()
		for _, s := range []string{"", "   ", "not-a-time", "01/06/2025", "2025-13-40T99:99:99Z"} {
			if _, err := ParseClinicalTime(s); err == nil {
				t.Errorf("ParseClinicalTime(%q) = nil error, want error", s)
			}
		}
	})
}

func TestQueueItemValidate(t *testing.T) {
	t.Parallel()

	valid := func() QueueItem {
		return QueueItem{
			QueueID:       12,
			PriorityScore: 0.8,
			Status:        StatusPending,
			Prediction: RiskPrediction{
				RiskScore: 0.75,
				RiskLevel: "High",
				Visit: VisitSummary{
					VisitID:        34,
					Timestamp:      "2025-06-01T10:30:00",
					ChiefComplaint: "Chest Pain",
					Patient:        PatientSummary{FullName: "Jane Doe", Age: 60, Gender: GenderFemale},
				},
			},
		}
	}

	tests := []struct {
		name    string
		mutate  func(*QueueItem)
		wantErr bool
	}{
		{name: "valid", mutate: nil, wantErr: false},
		{name: "missing queue id", mutate: func(q *QueueItem) { q.QueueID = 0 }, wantErr: true},
		{name: "missing status", mutate: func(q *QueueItem) { q.Status = "" }, wantErr: true},
		{name: "bad timestamp", mutate: func(q *QueueItem) { q.Prediction.Visit.Timestamp = "junk" }, wantErr: true},
		{name: "absent timestamp is tolerated", mutate: func(q *QueueItem) { q.Prediction.Visit.Timestamp = "" }, wantErr: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			q := valid()
			if tt.mutate != nil {
				tt.mutate(&q)
			}
			if err := q.Validate(); (err != nil) != tt.wantErr {
				t.Fatalf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestQueueItemVisitTime(t *testing.T) {
	t.Parallel()

	q := QueueItem{Prediction: RiskPrediction{Visit: VisitSummary{Timestamp: "2025-06-01 10:30:00"}}}
	got, ok := q.VisitTime()
	if !ok {
		t.Fatal("VisitTime() ok = false, want true")
	}
	want := time.Date(2025, 6, 1, 10, 30, 0, 0, time.UTC)
	if !got.Equal(want) {
		t.Errorf("VisitTime() = %v, want %v", got, want)
	}

	q.Prediction.Visit.Timestamp = ""
	if _, ok := q.VisitTime(); ok {
		t.Error("VisitTime() ok = true for empty timestamp, want false")
	}
}
