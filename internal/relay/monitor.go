package relay

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"
)

// LivenessProbe exposes the feed's staleness to the monitor.
type LivenessProbe interface {
	MsSinceLastUpdate() int64
}

// Monitor watches a feed's liveness and fails when it stalls, so the
// supervisor can tear the pipeline down and rebuild it.
type Monitor struct {
	probe         LivenessProbe
	interval      time.Duration
	deadThreshold time.Duration
	logger        *zap.Logger
}

func NewMonitor(probe LivenessProbe, interval, deadThreshold time.Duration, logger *zap.Logger) *Monitor {
	if logger == nil {
		logger = zap.NewNop()
	}
	if interval <= 0 {
		interval = time.Minute
	}
	if deadThreshold <= 0 {
		deadThreshold = 5 * time.Minute
	}
	return &Monitor{
		probe:         probe,
		interval:      interval,
		deadThreshold: deadThreshold,
		logger:        logger,
	}
}

// Watch blocks until the feed stalls past the dead threshold or the context
// ends.
func (m *Monitor) Watch(ctx context.Context) error {
	ticker := time.NewTicker(m.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}

		since := m.probe.MsSinceLastUpdate()
		if since > m.deadThreshold.Milliseconds() {
			return fmt.Errorf("feed has had no updates for %dms", since)
		}
		m.logger.Debug("feed alive", zap.Int64("ms_since_update", since))
	}
}
