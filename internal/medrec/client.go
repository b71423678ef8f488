// Package medrec is the client for the remote medical-records and
// risk-scoring service. Every read and write of patient, visit, and
// queue state goes through this request/response contract; nothing is
// persisted locally.
package medrec

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/linnemanlabs/go-core/log"

	"github.com/linnemanlabs/medqueue/internal/model"
)

const (
	httpTimeout    = 30 * time.Second
	retryCount     = 2
	retryWait      = 500 * time.Millisecond
	retryWaitMax   = 3 * time.Second
	explainTimeout = 120 * time.Second
)

// Client talks to the remote store/scoring service.
type Client struct {
	http    *resty.Client
	explain *resty.Client
	logger  log.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithTransport sets the underlying round tripper on both clients,
// typically to add otel instrumentation.
func WithTransport(rt http.RoundTripper) Option {
	return func(c *Client) {
		c.http.SetTransport(rt)
		c.explain.SetTransport(rt)
	}
}

// New creates a client for the service at baseURL.
func New(baseURL string, logger log.Logger, opts ...Option) *Client {
	if logger == nil {
		logger = log.Nop()
	}

	base := resty.New().
		SetBaseURL(baseURL).
		SetTimeout(httpTimeout).
		SetRetryCount(retryCount).
		SetRetryWaitTime(retryWait).
		SetRetryMaxWaitTime(retryWaitMax).
		SetHeader("Content-Type", "application/json").
		SetHeader("Accept", "application/json")

	// Retry only idempotent reads. Replaying a POST would duplicate a
	// patient or a visit.
	base.AddRetryCondition(func(r *resty.Response, err error) bool {
		if r == nil || r.Request == nil || r.Request.Method != http.MethodGet {
			return false
		}
		return err != nil || r.StatusCode() >= http.StatusInternalServerError
	})

	// Explanation generation sits on an LLM and can take far longer
	// than a store round trip.
	expl := resty.New().
		SetBaseURL(baseURL).
		SetTimeout(explainTimeout).
		SetHeader("Content-Type", "application/json").
		SetHeader("Accept", "application/json")

	c := &Client{http: base, explain: expl, logger: logger}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// CreatePatient registers a patient plus initial history and returns
// the store-assigned patient id.
func (c *Client) CreatePatient(ctx context.Context, p *model.Patient) (int64, error) {
	var out struct {
		PatientID int64  `json:"patient_id"`
		Message   string `json:"message"`
	}
	resp, err := c.http.R().
		SetContext(ctx).
		SetBody(p).
		SetResult(&out).
		Post("/patients")
	if err != nil {
		return 0, fmt.Errorf("create patient: %w", err)
	}
	if resp.IsError() {
		return 0, fmt.Errorf("create patient: status %d: %s", resp.StatusCode(), resp.String())
	}
	if out.PatientID <= 0 {
		return 0, fmt.Errorf("create patient: response missing patient_id")
	}
	return out.PatientID, nil
}

// LookupPatients searches by name and/or contact email. Zero matches is
// not an error.
func (c *Client) LookupPatients(ctx context.Context, name, email string) ([]model.Patient, error) {
	var out struct {
		Patients []model.Patient `json:"patients"`
	}
	req := c.http.R().SetContext(ctx).SetResult(&out)
	if name != "" {
		req.SetQueryParam("name", name)
	}
	if email != "" {
		req.SetQueryParam("email", email)
	}
	resp, err := req.Get("/patients/lookup")
	if err != nil {
		return nil, fmt.Errorf("lookup patients: %w", err)
	}
	if resp.IsError() {
		return nil, fmt.Errorf("lookup patients: status %d: %s", resp.StatusCode(), resp.String())
	}
	return out.Patients, nil
}

// PatientHistory returns the history entries for one patient.
func (c *Client) PatientHistory(ctx context.Context, patientID int64) ([]model.MedicalHistoryEntry, error) {
	var out struct {
		History []model.MedicalHistoryEntry `json:"history"`
	}
	resp, err := c.http.R().
		SetContext(ctx).
		SetResult(&out).
		Get("/patients/" + strconv.FormatInt(patientID, 10) + "/history")
	if err != nil {
		return nil, fmt.Errorf("patient history: %w", err)
	}
	if resp.IsError() {
		return nil, fmt.Errorf("patient history: status %d: %s", resp.StatusCode(), resp.String())
	}
	return out.History, nil
}

// CreateVisit submits a visit with vitals and symptoms. The store
// triggers risk scoring and queue placement server-side and returns the
// assigned visit id.
func (c *Client) CreateVisit(ctx context.Context, v *model.VisitInput) (int64, error) {
	var out struct {
		VisitID int64  `json:"visit_id"`
		Message string `json:"message"`
	}
	resp, err := c.http.R().
		SetContext(ctx).
		SetBody(v).
		SetResult(&out).
		Post("/patient-visits")
	if err != nil {
		return 0, fmt.Errorf("create visit: %w", err)
	}
	if resp.IsError() {
		return 0, fmt.Errorf("create visit: status %d: %s", resp.StatusCode(), resp.String())
	}
	if out.VisitID <= 0 {
		return 0, fmt.Errorf("create visit: response missing visit_id")
	}
	return out.VisitID, nil
}

// Queue fetches the current queue for one department. Each item is
// schema-checked before it is handed to the cache; a malformed item
// fails the whole fetch rather than leaking undefined fields.
func (c *Client) Queue(ctx context.Context, department string) ([]model.QueueItem, error) {
	var out struct {
		Queue []model.QueueItem `json:"queue"`
	}
	resp, err := c.http.R().
		SetContext(ctx).
		SetResult(&out).
		SetPathParam("department", department).
		Get("/queues/{department}")
	if err != nil {
		return nil, fmt.Errorf("fetch queue %q: %w", department, err)
	}
	if resp.IsError() {
		return nil, fmt.Errorf("fetch queue %q: status %d: %s", department, resp.StatusCode(), resp.String())
	}
	for i := range out.Queue {
		if err := out.Queue[i].Validate(); err != nil {
			return nil, fmt.Errorf("fetch queue %q: item %d: %w", department, i, err)
		}
	}
	return out.Queue, nil
}

// UpdateQueueStatus requests a status transition for one queue item.
func (c *Client) UpdateQueueStatus(ctx context.Context, queueID int64, status model.QueueStatus) error {
	resp, err := c.http.R().
		SetContext(ctx).
		SetQueryParam("status", string(status)).
		Patch("/queue/" + strconv.FormatInt(queueID, 10) + "/status")
	if err != nil {
		return fmt.Errorf("update queue %d status: %w", queueID, err)
	}
	if resp.IsError() {
		return fmt.Errorf("update queue %d status: status %d: %s", queueID, resp.StatusCode(), resp.String())
	}
	return nil
}

// Explain requests a natural-language explanation for one visit's risk
// classification.
func (c *Client) Explain(ctx context.Context, visitID int64) (string, error) {
	var out struct {
		VisitID     int64  `json:"visit_id"`
		Explanation string `json:"explanation"`
	}
	resp, err := c.explain.R().
		SetContext(ctx).
		SetBody(map[string]int64{"visit_id": visitID}).
		SetResult(&out).
		Post("/triage-explain")
	if err != nil {
		return "", fmt.Errorf("explain visit %d: %w", visitID, err)
	}
	if resp.IsError() {
		return "", fmt.Errorf("explain visit %d: status %d: %s", visitID, resp.StatusCode(), resp.String())
	}
	if out.Explanation == "" {
		return "", fmt.Errorf("explain visit %d: response missing explanation", visitID)
	}
	return out.Explanation, nil
}

// DashboardStats fetches the aggregate counts the store derives across
// all departments.
func (c *Client) DashboardStats(ctx context.Context) (*model.DashboardStats, error) {
	var out model.DashboardStats
	resp, err := c.http.R().
		SetContext(ctx).
		SetResult(&out).
		Get("/dashboard/stats")
	if err != nil {
		return nil, fmt.Errorf("dashboard stats: %w", err)
	}
	if resp.IsError() {
		return nil, fmt.Errorf("dashboard stats: status %d: %s", resp.StatusCode(), resp.String())
	}
	return &out, nil
}
