package queue

import (
	"math"
	"time"

	"github.com/linnemanlabs/medqueue/internal/model"
	"github.com/linnemanlabs/medqueue/internal/risk"
)

// Stats is the derived view over the current department queue.
type Stats struct {
	Department     string `json:"department"`
	Total          int    `json:"total"`
	Pending        int    `json:"pending"`
	AvgWaitMinutes int    `json:"avg_wait_minutes"`
	HighRisk       int    `json:"high_risk"`
	MediumRisk     int    `json:"medium_risk"`
	LowRisk        int    `json:"low_risk"`
}

// Stats recomputes the derived metrics from the current cache.
func (s *Synchronizer) Stats() Stats {
	s.mu.Lock()
	dept := s.department
	items := make([]model.QueueItem, len(s.items))
	copy(items, s.items)
	s.mu.Unlock()

	st := Stats{
		Department:     dept,
		Total:          len(items),
		AvgWaitMinutes: AverageWaitMinutes(s.now(), items),
	}
	for _, it := range items {
		if it.Status == model.StatusPending {
			st.Pending++
		}
		switch risk.Classify(it.Prediction.RiskScore, it.Prediction.RiskLevel) {
		case risk.BucketHigh:
			st.HighRisk++
		case risk.BucketMedium:
			st.MediumRisk++
		default:
			st.LowRisk++
		}
	}
	return st
}

// AverageWaitMinutes is the arithmetic mean of elapsed minutes since
// visit time over pending items, rounded to the nearest integer. With
// zero pending items the divisor is floored to 1, yielding 0 rather
// than a division error. Timestamps are normalized to UTC before
// subtraction; items with unusable timestamps are skipped.
func AverageWaitMinutes(now time.Time, items []model.QueueItem) int {
	var total time.Duration
	var count int
	for i := range items {
		if items[i].Status != model.StatusPending {
			continue
		}
		ts, ok := items[i].VisitTime()
		if !ok {
			continue
		}
		elapsed := now.UTC().Sub(ts)
		if elapsed < 0 {
			elapsed = 0
		}
		total += elapsed
		count++
	}
	if count == 0 {
		count = 1
	}
	return int(math.Round(total.Minutes() / float64(count)))
}
