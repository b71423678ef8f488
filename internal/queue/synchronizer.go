// Package queue owns the client-side view of server-owned queue state:
// periodic refresh, optimistic status mutations, reconciliation against
// server truth, and the derived metrics consumers display.
package queue

import (
	"context"
	"sync"
	"time"

	"github.com/linnemanlabs/go-core/log"
	"github.com/oklog/ulid/v2"

	"github.com/linnemanlabs/medqueue/internal/model"
	"github.com/linnemanlabs/medqueue/internal/risk"
)

// DefaultInterval is the periodic refresh cadence.
const DefaultInterval = 5 * time.Second

// DefaultDepartment is the queue shown before any selection is made.
const DefaultDepartment = "Emergency"

// Departments is the known department catalog. Like statuses, the set
// is open: the store may serve queues for departments not listed here.
var Departments = []string{
	"Emergency",
	"Cardiology",
	"Respiratory",
	"Neurology",
	"General Medicine",
	"Orthopedics",
}

// Fetcher is the slice of the store client the synchronizer needs.
type Fetcher interface {
	Queue(ctx context.Context, department string) ([]model.QueueItem, error)
	UpdateQueueStatus(ctx context.Context, queueID int64, status model.QueueStatus) error
}

// Notifier receives high-risk arrivals observed during refresh.
type Notifier interface {
	Notify(ctx context.Context, department string, item *model.QueueItem) error
}

// Options configures a Synchronizer.
type Options struct {
	Interval   time.Duration // refresh cadence, DefaultInterval if zero
	Department string        // initial department, DefaultDepartment if empty
	Metrics    *Metrics      // optional instrumentation
	Notifier   Notifier      // optional high-risk arrival notifications
	Now        func() time.Time
}

// Synchronizer maintains the local cache for one selected department.
//
// The cache holds, per item, either the status last confirmed by the
// server or a client-requested status awaiting confirmation - nothing
// else. Each refresh replaces the department view wholesale; pending
// optimistic writes are not merged back in, so an overlapping refresh
// can momentarily resurrect a state the server has not yet confirmed.
// That last-response-wins behavior is deliberate and is reconciled by
// the next poll cycle.
type Synchronizer struct {
	client   Fetcher
	logger   log.Logger
	metrics  *Metrics
	notifier Notifier
	interval time.Duration
	now      func() time.Time

	kick chan struct{}

	mu         sync.Mutex
	department string
	items      []model.QueueItem
	pending    map[int64]model.QueueStatus // queue id -> requested status awaiting server confirmation
	seen       map[int64]struct{}          // queue ids observed since the last department switch
}

// New creates a synchronizer over the given store client.
func New(client Fetcher, logger log.Logger, opts Options) *Synchronizer {
	if logger == nil {
		logger = log.Nop()
	}
	if opts.Interval <= 0 {
		opts.Interval = DefaultInterval
	}
	if opts.Department == "" {
		opts.Department = DefaultDepartment
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &Synchronizer{
		client:     client,
		logger:     logger,
		metrics:    opts.Metrics,
		notifier:   opts.Notifier,
		interval:   opts.Interval,
		now:        opts.Now,
		kick:       make(chan struct{}, 1),
		department: opts.Department,
		pending:    make(map[int64]model.QueueStatus),
		seen:       make(map[int64]struct{}),
	}
}

// Run drives the periodic refresh until ctx is cancelled. The timer is
// owned by this call, not by package state: cancel the context and the
// polling stops. In-flight fetches are not aborted; their results are
// discarded if the department has changed by the time they return.
func (s *Synchronizer) Run(ctx context.Context) {
	_ = s.Refresh(ctx)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			_ = s.Refresh(ctx)
		case <-s.kick:
			_ = s.Refresh(ctx)
		}
	}
}

// Kick schedules an on-demand refresh on the Run loop. Used after any
// mutating action so the view converges faster than the next tick.
func (s *Synchronizer) Kick() {
	select {
	case s.kick <- struct{}{}:
	default:
	}
}

// Department returns the currently selected department.
func (s *Synchronizer) Department() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.department
}

// SetDepartment switches the view to another department, clearing the
// cache and refreshing immediately. A no-op if already selected.
func (s *Synchronizer) SetDepartment(ctx context.Context, department string) error {
	s.mu.Lock()
	if department == s.department {
		s.mu.Unlock()
		return nil
	}
	s.department = department
	s.items = nil
	s.seen = make(map[int64]struct{})
	s.mu.Unlock()

	return s.Refresh(ctx)
}

// Refresh fetches queue state for the selected department and replaces
// the local cache wholesale. A transport failure falls back to an empty
// view and is reported, never fatal. Overlapping refreshes are not
// deduplicated; each applies its result when it returns.
func (s *Synchronizer) Refresh(ctx context.Context) error {
	s.mu.Lock()
	dept := s.department
	s.mu.Unlock()

	refreshID := ulid.Make().String()
	start := s.now()

	items, err := s.client.Queue(ctx, dept)

	if s.metrics != nil {
		outcome := "success"
		if err != nil {
			outcome = "error"
		}
		s.metrics.RefreshesTotal.WithLabelValues(outcome).Inc()
		s.metrics.RefreshDuration.Observe(s.now().Sub(start).Seconds())
	}
	if err != nil {
		s.logger.Error(ctx, err, "queue refresh failed",
			"department", dept,
			"refresh_id", refreshID,
		)
		items = nil
	}

	s.apply(ctx, dept, items)
	return err
}

// apply installs a refresh result. Results for a department that is no
// longer selected are dropped; results for the current department win
// regardless of request order.
func (s *Synchronizer) apply(ctx context.Context, dept string, items []model.QueueItem) {
	visible := items[:0:0]
	for _, it := range items {
		if it.Status.Terminal() {
			continue
		}
		visible = append(visible, it)
	}

	s.mu.Lock()
	if dept != s.department {
		s.mu.Unlock()
		return
	}
	var arrivals []model.QueueItem
	for _, it := range visible {
		if _, ok := s.seen[it.QueueID]; !ok {
			s.seen[it.QueueID] = struct{}{}
			arrivals = append(arrivals, it)
		}
	}
	s.items = visible
	s.mu.Unlock()

	if s.metrics != nil {
		s.metrics.QueueDepth.WithLabelValues(dept).Set(float64(len(visible)))
	}

	for i := range arrivals {
		s.noteArrival(ctx, dept, &arrivals[i])
	}
}

func (s *Synchronizer) noteArrival(ctx context.Context, dept string, item *model.QueueItem) {
	bucket := risk.Classify(item.Prediction.RiskScore, item.Prediction.RiskLevel)
	if s.metrics != nil {
		s.metrics.ArrivalsTotal.WithLabelValues(string(bucket)).Inc()
	}
	if bucket != risk.BucketHigh || s.notifier == nil {
		return
	}

	// Advisory path: notification failure must never stall a refresh.
	item = cloneItem(item)
	go func(ctx context.Context) {
		if err := s.notifier.Notify(ctx, dept, item); err != nil {
			s.logger.Error(ctx, err, "high risk arrival notification failed",
				"queue_id", item.QueueID,
				"department", dept,
			)
		}
	}(context.WithoutCancel(ctx))
}

// RequestStatusChange applies a status transition optimistically and
// issues it to the store asynchronously. Terminal statuses remove the
// item from the visible list at once; others update in place preserving
// position. At most one mutation is outstanding per queue id - a second
// request simply overwrites the pending slot. On store failure the
// optimistic write is discarded by a full recovery refresh; there is no
// field-level rollback.
func (s *Synchronizer) RequestStatusChange(ctx context.Context, queueID int64, status model.QueueStatus) {
	s.mu.Lock()
	if status.Terminal() {
		kept := s.items[:0:0]
		for _, it := range s.items {
			if it.QueueID != queueID {
				kept = append(kept, it)
			}
		}
		s.items = kept
	} else {
		for i := range s.items {
			if s.items[i].QueueID == queueID {
				s.items[i].Status = status
				break
			}
		}
	}
	s.pending[queueID] = status
	s.mu.Unlock()

	go s.pushStatus(context.WithoutCancel(ctx), queueID, status)
}

func (s *Synchronizer) pushStatus(ctx context.Context, queueID int64, status model.QueueStatus) {
	err := s.client.UpdateQueueStatus(ctx, queueID, status)

	s.mu.Lock()
	if s.pending[queueID] == status {
		delete(s.pending, queueID)
	}
	s.mu.Unlock()

	if s.metrics != nil {
		outcome := "success"
		if err != nil {
			outcome = "error"
		}
		s.metrics.MutationsTotal.WithLabelValues(string(status), outcome).Inc()
	}

	if err != nil {
		s.logger.Error(ctx, err, "status change rejected, resynchronizing",
			"queue_id", queueID,
			"status", status,
		)
		_ = s.Refresh(ctx)
	}
}

// Snapshot returns a copy of the current visible queue.
func (s *Synchronizer) Snapshot() []model.QueueItem {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]model.QueueItem, len(s.items))
	copy(out, s.items)
	return out
}

// ItemByVisit finds the cached queue item for a visit id.
func (s *Synchronizer) ItemByVisit(visitID int64) (*model.QueueItem, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.items {
		if s.items[i].Prediction.Visit.VisitID == visitID {
			return cloneItem(&s.items[i]), true
		}
	}
	return nil, false
}

func cloneItem(it *model.QueueItem) *model.QueueItem {
	cp := *it
	return &cp
}
