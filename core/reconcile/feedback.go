package reconcile

import (
	"go.uber.org/zap"
)

// Feedback is the write-only operator channel. The importer never reads it back.
type Feedback interface {
	// Progress reports a running count of processed records of kind.
	Progress(kind Kind, count int)
	// Dropped reports a record abandoned for reason. Called exactly once per dropped record.
	Dropped(kind Kind, sourceID int64, reason error)
}

// ZapFeedback writes feedback through a zap logger.
type ZapFeedback struct {
	logger *zap.Logger
	every  int
}

// NewZapFeedback creates a sink that logs progress every `every` records
// (at debug level) and one warning per dropped record.
func NewZapFeedback(logger *zap.Logger, every int) *ZapFeedback {
	if every <= 0 {
		every = 1
	}
	return &ZapFeedback{logger: logger, every: every}
}

// Progress logs the running count when it crosses the configured step.
func (f *ZapFeedback) Progress(kind Kind, count int) {
	if count%f.every != 0 {
		return
	}
	f.logger.Debug("Progress", zap.String("kind", string(kind)), zap.Int("count", count))
}

// Dropped logs a single warning naming the record and the reason.
func (f *ZapFeedback) Dropped(kind Kind, sourceID int64, reason error) {
	f.logger.Warn(string(kind)+" dropped",
		zap.String("kind", string(kind)),
		zap.Int64("source_id", sourceID),
		zap.String("reason", reason.Error()),
	)
}

// Discard is a Feedback that drops everything.
type Discard struct{}

func (Discard) Progress(Kind, int)         {}
func (Discard) Dropped(Kind, int64, error) {}
