// Package disposition enforces the safety protocol between a suggestion
// and any destructive action. Every candidate moves through a closed state
// machine; the only way to reach Executed is through an explicit
// confirmation, and no configuration can bypass that.
package disposition

import (
	"context"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"github.com/mesaifali/trashdoctor/pkg/models"
)

// Executor is the narrow boundary to the external action primitives. It is
// called exclusively from the Confirmed state.
type Executor interface {
	// Archive moves a file into the archive and returns its new location.
	Archive(ctx context.Context, path string) (string, error)
	// Delete removes a file permanently.
	Delete(ctx context.Context, path string) error
}

// ConflictError reports a transition that lost a race or was illegal from
// the candidate's current state. The state it carries is the one observed
// after the winning transition.
type ConflictError struct {
	ID    string
	State models.DispositionState
	Op    string
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("disposition conflict: cannot %s candidate %s in state %s", e.Op, e.ID, e.State)
}

// NotFoundError reports an unknown candidate ID.
type NotFoundError struct {
	ID string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("unknown candidate: %s", e.ID)
}

// tracked wraps a candidate with its transition lock and retry budget.
type tracked struct {
	mu sync.Mutex
	c  *models.Candidate

	// retried marks the single automatic retry after a first failure as
	// spent; the next failure is terminal.
	retried bool
}

// Gate owns the disposition state of every candidate in one scan run.
// Transitions on one candidate are atomic: of two concurrent calls at most
// one wins and the other observes the post-transition state as a conflict.
type Gate struct {
	mu       sync.RWMutex
	tracked  map[string]*tracked
	executor Executor
	logger   *zap.Logger
}

// NewGate creates a gate backed by the given executor.
func NewGate(executor Executor, logger *zap.Logger) *Gate {
	return &Gate{
		tracked:  make(map[string]*tracked),
		executor: executor,
		logger:   logger,
	}
}

// Register places a freshly scored candidate under the gate's control.
func (g *Gate) Register(c *models.Candidate) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.tracked[c.ID] = &tracked{c: c}
}

// State returns the current disposition of a candidate.
func (g *Gate) State(id string) (models.DispositionState, error) {
	t, err := g.lookup(id)
	if err != nil {
		return "", err
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.c.Disposition, nil
}

// Confirm transitions Suggested -> Confirmed. Confirmation is the explicit
// human approval; nothing executes without it.
func (g *Gate) Confirm(id string) error {
	t, err := g.lookup(id)
	if err != nil {
		return err
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	if t.c.Disposition != models.DispositionSuggested {
		return &ConflictError{ID: id, State: t.c.Disposition, Op: "confirm"}
	}
	t.c.Disposition = models.DispositionConfirmed
	g.logger.Info("Candidate confirmed",
		zap.String("id", id),
		zap.String("path", t.c.Entry.Path),
		zap.String("suggestion", string(t.c.Suggestion)))
	return nil
}

// Reject transitions Suggested -> Rejected. Terminal.
func (g *Gate) Reject(id string) error {
	t, err := g.lookup(id)
	if err != nil {
		return err
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	if t.c.Disposition != models.DispositionSuggested {
		return &ConflictError{ID: id, State: t.c.Disposition, Op: "reject"}
	}
	t.c.Disposition = models.DispositionRejected
	g.logger.Info("Candidate rejected",
		zap.String("id", id),
		zap.String("path", t.c.Entry.Path))
	return nil
}

// Execute runs the external action for a Confirmed candidate and records
// the outcome. A first executor failure is retried exactly once through an
// automatic Failed -> Confirmed transition; a second failure is terminal
// and needs a fresh scan run to reconsider the file.
//
// There is deliberately no path from Suggested to here.
func (g *Gate) Execute(ctx context.Context, id string) error {
	t, err := g.lookup(id)
	if err != nil {
		return err
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	if t.c.Disposition != models.DispositionConfirmed {
		return &ConflictError{ID: id, State: t.c.Disposition, Op: "execute"}
	}
	if t.c.Suggestion == models.SuggestKeep {
		return fmt.Errorf("candidate %s is suggested for keeping, nothing to execute", id)
	}

	err = g.runExecutor(ctx, t.c)
	if err == nil {
		t.c.Disposition = models.DispositionExecuted
		return nil
	}
	t.c.Disposition = models.DispositionFailed
	t.c.DispositionNote = err.Error()
	g.logger.Warn("Execution failed",
		zap.String("id", id),
		zap.String("path", t.c.Entry.Path),
		zap.Error(err))

	if t.retried {
		return err
	}
	t.retried = true

	// Automatic single retry: Failed -> Confirmed -> executor.
	t.c.Disposition = models.DispositionConfirmed
	if err := g.runExecutor(ctx, t.c); err != nil {
		t.c.Disposition = models.DispositionFailed
		t.c.DispositionNote = err.Error()
		g.logger.Warn("Execution retry failed, candidate is terminal",
			zap.String("id", id),
			zap.String("path", t.c.Entry.Path),
			zap.Error(err))
		return err
	}

	t.c.Disposition = models.DispositionExecuted
	t.c.DispositionNote = ""
	return nil
}

// runExecutor dispatches on the suggestion. Keep candidates have no
// action; executing one is a caller bug surfaced as an error.
func (g *Gate) runExecutor(ctx context.Context, c *models.Candidate) error {
	switch c.Suggestion {
	case models.SuggestArchive:
		location, err := g.executor.Archive(ctx, c.Entry.Path)
		if err != nil {
			return err
		}
		c.ArchivedLocation = location
		return nil
	case models.SuggestDelete:
		return g.executor.Delete(ctx, c.Entry.Path)
	default:
		return fmt.Errorf("candidate %s has no executable suggestion (%s)", c.ID, c.Suggestion)
	}
}

func (g *Gate) lookup(id string) (*tracked, error) {
	g.mu.RLock()
	defer g.mu.RUnlock()
	t, ok := g.tracked[id]
	if !ok {
		return nil, &NotFoundError{ID: id}
	}
	return t, nil
}
