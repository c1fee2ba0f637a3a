package audit

import "context"

// Recorder is what record managers depend on, so tests can swap the
// database-backed Auditor for a no-op.
type Recorder interface {
	LogEvent(ctx context.Context, params LogEventParam) error
}

// NopRecorder discards every event.
type NopRecorder struct{}

func (NopRecorder) LogEvent(ctx context.Context, params LogEventParam) error {
	return nil
}
