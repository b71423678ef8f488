package synth

import (
	"context"
	"errors"
	"testing"

	"github.com/linnemanlabs/medqueue/internal/model"
)

type fakeSubmitter struct {
	patientErr error
	visitErr   error

	patients []model.Patient
	visits   []model.VisitInput
}

func (f *fakeSubmitter) CreatePatient(_ context.Context, p *model.Patient) (int64, error) {
	if f.patientErr != nil {
		return 0, f.patientErr
	}
	f.patients = append(f.patients, *p)
	return int64(len(f.patients)), nil
}

func (f *fakeSubmitter) CreateVisit(_ context.Context, v *model.VisitInput) (int64, error) {
	if f.visitErr != nil {
		return 0, f.visitErr
	}
	f.visits = append(f.visits, *v)
	return int64(len(f.visits)) + 100, nil
}

func TestSimulatorRun_Success(t *testing.T) {
	t.Parallel()

	sub := &fakeSubmitter{}
	sim := NewSimulator(seededGen(11), sub, nil)

	if ok := sim.Run(context.Background()); !ok {
		t.Fatal("Run() = false, want true")
	}
	if len(sub.patients) != 1 || len(sub.visits) != 1 {
		t.Fatalf("patients=%d visits=%d, want 1 and 1", len(sub.patients), len(sub.visits))
	}
	if got, want := sub.visits[0].PatientID, int64(1); got != want {
		t.Errorf("visit patient_id = %d, want assigned id %d", got, want)
	}
}

func TestSimulatorRun_PatientFailureStopsSubmission(t *testing.T) {
	t.Parallel()

	sub := &fakeSubmitter{patientErr: errors.New("store down")}
	sim := NewSimulator(seededGen(12), sub, nil)

	if ok := sim.Run(context.Background()); ok {
		t.Fatal("Run() = true, want false on registration failure")
	}
	if len(sub.visits) != 0 {
		t.Errorf("visit submitted after failed registration")
	}
}

func TestSimulatorRun_VisitFailure(t *testing.T) {
	t.Parallel()

	sub := &fakeSubmitter{visitErr: errors.New("scoring rejected")}
	sim := NewSimulator(seededGen(13), sub, nil)

	if ok := sim.Run(context.Background()); ok {
		t.Fatal("Run() = true, want false on visit failure")
	}
	if len(sub.patients) != 1 {
		t.Errorf("patients = %d, want 1 (registration succeeded)", len(sub.patients))
	}
}
