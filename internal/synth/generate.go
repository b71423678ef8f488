// Package synth fabricates internally consistent patient and visit
// records used to exercise the live queue under load. Generation is
// pure; submission is the Simulator's job.
package synth

import (
	"fmt"
	"math"
	"math/rand/v2"
	"strings"

	"github.com/linnemanlabs/medqueue/internal/model"
)

var firstNamesMale = []string{
	"James", "John", "Robert", "Michael", "William",
	"David", "Richard", "Joseph", "Thomas", "Charles",
}

var firstNamesFemale = []string{
	"Mary", "Patricia", "Jennifer", "Linda", "Elizabeth",
	"Barbara", "Susan", "Jessica", "Sarah", "Karen",
}

var lastNames = []string{
	"Smith", "Johnson", "Williams", "Brown", "Jones",
	"Garcia", "Miller", "Davis", "Rodriguez", "Martinez",
}

type condition struct {
	name    string
	chronic bool
}

// The "None" entries are over-represented on purpose to skew the draw
// toward healthy baselines.
var conditionPool = []condition{
	{"Hypertension", true},
	{"Type 2 Diabetes", true},
	{"Asthma", true},
	{"None", false},
	{"None", false},
	{"None", false},
	{"COPD", true},
	{"Coronary Artery Disease", true},
	{"Hyperlipidemia", true},
}

// Symptom is one catalog entry: a severity range, a typical duration,
// and a department affinity. The affinity is informational only; it is
// not enforced as a routing constraint.
type Symptom struct {
	Name       string
	MinSev     int
	MaxSev     int
	Duration   string
	Department string

	// acute marks the highest-acuity catalog entry. It forces maximum
	// severity and drives the cardiac vitals escalation.
	acute bool
}

// Catalog is the fixed symptom pool the generator draws from.
var Catalog = []Symptom{
	{Name: "Chest Pain", MinSev: 3, MaxSev: 5, Duration: "2 hours", Department: "Cardiology", acute: true},
	{Name: "Shortness of Breath", MinSev: 2, MaxSev: 5, Duration: "1 day", Department: "Respiratory"},
	{Name: "Severe Headache", MinSev: 2, MaxSev: 4, Duration: "3 days", Department: "Neurology"},
	{Name: "High Fever", MinSev: 3, MaxSev: 5, Duration: "2 days", Department: "General Medicine"},
	{Name: "Abdominal Pain", MinSev: 2, MaxSev: 5, Duration: "4 hours", Department: "General Medicine"},
	{Name: "Dizziness", MinSev: 1, MaxSev: 3, Duration: "Morning", Department: "Neurology"},
	{Name: "Palpitations", MinSev: 2, MaxSev: 4, Duration: "30 mins", Department: "Cardiology"},
	{Name: "Cough", MinSev: 1, MaxSev: 3, Duration: "1 week", Department: "Respiratory"},
}

const (
	minAge = 18
	maxAge = 90

	baselineSystolic  = 120
	baselineDiastolic = 80
	baselineHeartRate = 80
	baselineTempF     = 98.6

	// Escalation applied to systolic and heart rate for acute cardiac
	// presentations and noisy over-triage.
	systolicEscalation  = 50
	heartRateEscalation = 35

	// Probability that an otherwise ordinary draw gets escalated,
	// modeling over-triage at intake.
	escalationChance = 0.40

	healthyHistoryChance = 0.60

	syntheticDiagnosisDate = "2020-01-01"
)

// Generator produces randomized patient/visit tuples.
type Generator struct {
	rng *rand.Rand
}

// New creates a generator seeded from the shared random source.
func New() *Generator {
	return NewWithRand(rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64())))
}

// NewWithRand creates a generator with a caller-supplied source, for
// deterministic tests.
func NewWithRand(rng *rand.Rand) *Generator {
	return &Generator{rng: rng}
}

// GenerateVisit fabricates one (patient, visit) tuple. It performs no
// I/O and cannot fail; the caller is responsible for submission. The
// returned visit has no patient id yet since the store assigns ids.
func (g *Generator) GenerateVisit() (model.Patient, model.VisitInput) {
	patient := g.patient()
	visit := g.visit()
	return patient, visit
}

func (g *Generator) patient() model.Patient {
	gender := model.GenderMale
	pool := firstNamesMale
	if g.rng.IntN(2) == 0 {
		gender = model.GenderFemale
		pool = firstNamesFemale
	}
	name := pick(g.rng, pool) + " " + pick(g.rng, lastNames)

	return model.Patient{
		FullName: name,
		Age:      g.intIn(minAge, maxAge),
		Gender:   gender,
		// Derived from the name, so duplicate names legitimately
		// collide. Intentional, not a defect.
		ContactInfo:    strings.ReplaceAll(strings.ToLower(name), " ", ".") + "@example.com",
		MedicalHistory: g.history(),
	}
}

func (g *Generator) history() []model.MedicalHistoryEntry {
	if g.rng.Float64() < healthyHistoryChance {
		return nil
	}

	var entries []model.MedicalHistoryEntry
	n := g.intIn(1, 2)
	for range n {
		cond := pick(g.rng, conditionPool)
		if cond.name == "None" {
			continue
		}
		if hasCondition(entries, cond.name) {
			continue
		}
		entries = append(entries, model.MedicalHistoryEntry{
			Condition:     cond.name,
			Chronic:       cond.chronic,
			Notes:         "Patient reports history of " + cond.name,
			DiagnosisDate: syntheticDiagnosisDate,
		})
	}
	return entries
}

func (g *Generator) visit() model.VisitInput {
	symptom := pick(g.rng, Catalog)

	severity := g.intIn(symptom.MinSev, symptom.MaxSev)
	if symptom.acute || g.rng.Float64() < escalationChance {
		severity = 5
	}

	sys := baselineSystolic + g.intIn(-10, 40)
	dia := baselineDiastolic + g.intIn(-10, 20)
	hr := baselineHeartRate + g.intIn(-10, 40)
	temp := baselineTempF + g.rng.Float64()*2

	// Second, independent coin flip: vitals can spike without the
	// severity score following, and vice versa.
	if symptom.acute || g.rng.Float64() < escalationChance {
		sys += systolicEscalation
		hr += heartRateEscalation
	}

	return model.VisitInput{
		ChiefComplaint: fmt.Sprintf("%s for %s", symptom.Name, symptom.Duration),
		BPSystolic:     sys,
		BPDiastolic:    dia,
		HeartRate:      hr,
		Temperature:    math.Round(temp*10) / 10,
		Symptoms: []model.SymptomObservation{{
			Name:     symptom.Name,
			Severity: severity,
			Duration: symptom.Duration,
		}},
	}
}

func (g *Generator) intIn(low, high int) int {
	return low + g.rng.IntN(high-low+1)
}

func pick[T any](rng *rand.Rand, pool []T) T {
	return pool[rng.IntN(len(pool))]
}

func hasCondition(entries []model.MedicalHistoryEntry, name string) bool {
	for _, e := range entries {
		if e.Condition == name {
			return true
		}
	}
	return false
}
