// Package explain manages advisory "explain this case" requests: one
// in-flight request per surface, newer requests superseding older ones,
// and a fixed fallback so a failed explanation never blocks the queue
// workflow.
package explain

import (
	"context"
	"errors"
	"sync"

	"github.com/linnemanlabs/go-core/log"
	"github.com/oklog/ulid/v2"

	"github.com/linnemanlabs/medqueue/internal/model"
)

// Fallback is returned whenever explanation generation fails. The path
// is advisory; errors degrade, they do not propagate.
const Fallback = "Failed to generate explanation. Please try again."

// ErrSuperseded means a newer explanation request replaced this one
// while it was in flight. The transport was not cancelled; only the
// result is discarded.
var ErrSuperseded = errors.New("explanation request superseded")

// Provider generates an explanation for one queue item.
type Provider interface {
	Explain(ctx context.Context, item *model.QueueItem) (string, error)
}

// Hooks are optional callbacks for instrumentation.
type Hooks struct {
	OnResult func(outcome string)
}

// Coordinator serializes the view over concurrent explanation requests.
type Coordinator struct {
	provider Provider
	logger   log.Logger
	hooks    Hooks

	mu      sync.Mutex
	current string // token of the most recently started request
}

// NewCoordinator creates a coordinator over the given provider.
func NewCoordinator(provider Provider, logger log.Logger, hooks Hooks) *Coordinator {
	if logger == nil {
		logger = log.Nop()
	}
	return &Coordinator{provider: provider, logger: logger, hooks: hooks}
}

// Explain requests an explanation for one queue item. If another
// request starts while this one is pending, this one's result is
// discarded and ErrSuperseded returned. Provider failures yield the
// Fallback text with a nil error.
func (c *Coordinator) Explain(ctx context.Context, item *model.QueueItem) (string, error) {
	token := ulid.Make().String()
	c.mu.Lock()
	c.current = token
	c.mu.Unlock()

	text, err := c.provider.Explain(ctx, item)

	c.mu.Lock()
	stale := c.current != token
	c.mu.Unlock()

	if stale {
		c.emit("superseded")
		return "", ErrSuperseded
	}
	if err != nil {
		c.logger.Error(ctx, err, "explanation generation failed",
			"visit_id", item.Prediction.Visit.VisitID,
		)
		c.emit("fallback")
		return Fallback, nil
	}
	c.emit("success")
	return text, nil
}

func (c *Coordinator) emit(outcome string) {
	if c.hooks.OnResult != nil {
		c.hooks.OnResult(outcome)
	}
}

// VisitExplainer is the slice of the store client the remote provider
// needs.
type VisitExplainer interface {
	Explain(ctx context.Context, visitID int64) (string, error)
}

// RemoteProvider delegates explanation to the store/scoring service's
// own explain endpoint.
type RemoteProvider struct {
	client VisitExplainer
}

// NewRemoteProvider wraps the store client as a Provider.
func NewRemoteProvider(client VisitExplainer) *RemoteProvider {
	return &RemoteProvider{client: client}
}

// Explain requests the explanation for the item's visit.
func (p *RemoteProvider) Explain(ctx context.Context, item *model.QueueItem) (string, error) {
	return p.client.Explain(ctx, item.Prediction.Visit.VisitID)
}
