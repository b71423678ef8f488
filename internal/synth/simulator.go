package synth

import (
	"context"

	"github.com/linnemanlabs/go-core/log"

	"github.com/linnemanlabs/medqueue/internal/model"
)

// Submitter is the slice of the store client the simulator needs.
type Submitter interface {
	CreatePatient(ctx context.Context, p *model.Patient) (int64, error)
	CreateVisit(ctx context.Context, v *model.VisitInput) (int64, error)
}

// Simulator generates a synthetic arrival and submits it to the remote
// store, which scores it and places it on a queue.
type Simulator struct {
	gen    *Generator
	client Submitter
	logger log.Logger
}

// NewSimulator creates a simulator around the given generator and client.
func NewSimulator(gen *Generator, client Submitter, logger log.Logger) *Simulator {
	if logger == nil {
		logger = log.Nop()
	}
	return &Simulator{gen: gen, client: client, logger: logger}
}

// Run fabricates and submits one patient arrival. Submission failures
// are logged and reported as false; they never propagate.
func (s *Simulator) Run(ctx context.Context) bool {
	patient, visit := s.gen.GenerateVisit()

	pid, err := s.client.CreatePatient(ctx, &patient)
	if err != nil {
		s.logger.Error(ctx, err, "simulated registration failed", "patient", patient.FullName)
		return false
	}

	visit.PatientID = pid
	vid, err := s.client.CreateVisit(ctx, &visit)
	if err != nil {
		s.logger.Error(ctx, err, "simulated visit submission failed",
			"patient_id", pid,
			"complaint", visit.ChiefComplaint,
		)
		return false
	}

	s.logger.Info(ctx, "simulated arrival",
		"patient_id", pid,
		"visit_id", vid,
		"complaint", visit.ChiefComplaint,
		"severity", visit.Symptoms[0].Severity,
	)
	return true
}
