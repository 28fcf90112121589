package ports

import (
	"context"
	"time"

	"NewsDigest/internal/domain"
)

// SourceAdapter pulls normalized items from one upstream source.
// Implementations drop records they cannot parse and report total failure as an error.
type SourceAdapter interface {
	Name() string
	Fetch(ctx context.Context) ([]domain.Item, error)
}

// DigestWriter persists the rendered digest to the configured output target.
type DigestWriter interface {
	WriteDigest(ctx context.Context, digest string) error
}

// Notifier streams a digest (or its preview) to Telegram or other channels.
type Notifier interface {
	PublishDigest(ctx context.Context, digest string) error
}

// FetchRecorder observes per-adapter fetch outcomes.
type FetchRecorder interface {
	ObserveFetch(adapter string, items int, err error, elapsed time.Duration)
}

// StageRecorder observes collection sizes between pipeline stages.
type StageRecorder interface {
	ObserveStage(stage string, items int)
}

// MetricsSink records a run and exports it once the run is over.
type MetricsSink interface {
	FetchRecorder
	StageRecorder
	WriteTextfile(path string) error
}
