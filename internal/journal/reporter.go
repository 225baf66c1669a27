package journal

import (
	"context"
	"time"

	rgerror "github.com/msto63/robogrid/foundation/core/error"
	rglog "github.com/msto63/robogrid/foundation/core/log"
	"github.com/msto63/robogrid/internal/engine"
)

// Reporter writes every engine outcome to a Store
type Reporter struct {
	store   Store
	timeout time.Duration
	logger  *rglog.Logger
}

var _ engine.Reporter = (*Reporter)(nil)

// NewReporter creates a Reporter. A nil logger uses the default logger.
func NewReporter(store Store, logger *rglog.Logger) *Reporter {
	if logger == nil {
		logger = rglog.GetDefault()
	}
	return &Reporter{
		store:   store,
		timeout: 2 * time.Second,
		logger:  logger.WithField("component", "journal"),
	}
}

// OnOutcome records o. Storage failures are logged, never propagated to
// the engine.
func (r *Reporter) OnOutcome(o engine.Outcome) {
	ctx, cancel := context.WithTimeout(context.Background(), r.timeout)
	defer cancel()

	entry := EntryFromOutcome(o)
	timer := r.logger.WithRunID(o.RunID).StartTimer("journal.record").WithField("kind", entry.Kind)
	if err := r.store.Record(ctx, entry); err != nil {
		timer.StopWithError(rgerror.Wrap(err, "failed to journal outcome").WithCode(rgerror.CodeStorageError))
		return
	}
	timer.Stop()
}
