package relay

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"fillRelay/internal/decode"
	"fillRelay/internal/model"
)

// State is the feed's lifecycle position.
type State int32

const (
	StateIdle State = iota
	StateRunning
	StateStopping
	StateStopped
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateRunning:
		return "running"
	case StateStopping:
		return "stopping"
	case StateStopped:
		return "stopped"
	default:
		return fmt.Sprintf("state(%d)", int32(s))
	}
}

// Broadcaster is the publisher transport capability injected into the feed.
// Broadcast must not block on subscriber delivery.
type Broadcaster interface {
	Broadcast(message []byte)
	Close() error
}

// FillRecorder receives one increment per decoded fill.
type FillRecorder interface {
	RecordFill(market string, isGlobal, takerIsBuy bool)
}

const (
	bootstrapRetries = 3
	bootstrapBackoff = 500 * time.Millisecond
)

// FeedConfig holds runtime settings for the feed.
type FeedConfig struct {
	ProgramAddress string
	PollInterval   time.Duration
	QueryDelay     time.Duration
	StopTimeout    time.Duration
	DedupCap       int
	// MaxRunTime bounds the poll loop; zero runs forever. Diagnostic use.
	MaxRunTime time.Duration
}

// Feed drives the poll, fetch, decode, publish loop. One feed owns its
// cursor, recency set, and liveness timestamp exclusively; nothing mutates
// them from outside the loop.
type Feed struct {
	cfg     FeedConfig
	ledger  LedgerClient
	catalog CatalogClient
	poller  *Poller
	tracker *Tracker
	decoder *decode.Decoder
	hub     Broadcaster
	fills   FillRecorder
	logger  *zap.Logger

	mu    sync.Mutex
	state State
	stop  chan struct{}
	done  chan struct{}

	lastUpdate atomic.Int64 // unix milliseconds
	markets    []string
}

// NewFeed builds a feed with its dependencies.
func NewFeed(cfg FeedConfig, ledger LedgerClient, catalogClient CatalogClient, hub Broadcaster, fills FillRecorder, logger *zap.Logger) *Feed {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.PollInterval <= 0 {
		cfg.PollInterval = 10 * time.Second
	}
	if cfg.StopTimeout <= 0 {
		cfg.StopTimeout = 30 * time.Second
	}

	f := &Feed{
		cfg:     cfg,
		ledger:  ledger,
		catalog: catalogClient,
		poller:  NewPoller(ledger, catalogClient, cfg.QueryDelay, logger),
		tracker: NewTracker(cfg.DedupCap),
		decoder: decode.NewDecoder(),
		hub:     hub,
		fills:   fills,
		logger:  logger,
		stop:    make(chan struct{}),
		done:    make(chan struct{}),
	}
	f.lastUpdate.Store(time.Now().UnixMilli())
	return f
}

// State returns the current lifecycle state.
func (f *Feed) State() State {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.state
}

// MsSinceLastUpdate is the liveness probe: milliseconds since the last
// completed poll cycle.
func (f *Feed) MsSinceLastUpdate() int64 {
	return time.Now().UnixMilli() - f.lastUpdate.Load()
}

// Run executes the poll loop until Stop is called, the context ends, or the
// configured max run time elapses. The publisher transport is closed on exit.
func (f *Feed) Run(ctx context.Context) error {
	f.mu.Lock()
	if f.state != StateIdle {
		state := f.state
		f.mu.Unlock()
		return fmt.Errorf("feed already started (state %s)", state)
	}
	f.state = StateRunning
	f.mu.Unlock()

	defer close(f.done)
	defer f.setState(StateStopped)
	defer func() {
		if err := f.hub.Close(); err != nil {
			f.logger.Warn("close publisher transport", zap.Error(err))
		}
	}()

	if err := f.bootstrap(ctx); err != nil {
		return err
	}

	var deadline <-chan time.Time
	if f.cfg.MaxRunTime > 0 {
		timer := time.NewTimer(f.cfg.MaxRunTime)
		defer timer.Stop()
		deadline = timer.C
	}

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-f.stop:
			f.logger.Info("stop requested, ending poll loop")
			return nil
		case <-deadline:
			f.logger.Info("max run time reached, ending poll loop")
			return nil
		case <-time.After(f.cfg.PollInterval):
		}

		f.runCycle(ctx)
	}
}

// bootstrap fetches the market watch list and seeds the cursor from the
// latest finalized program signature. A catalog failure leaves the watch
// list empty; a cursor failure is fatal.
func (f *Feed) bootstrap(ctx context.Context) error {
	err := withRetry(ctx, bootstrapRetries, bootstrapBackoff, func(ctx context.Context) error {
		markets, err := f.catalog.MarketAddresses(ctx)
		if err != nil {
			return err
		}
		f.markets = markets
		return nil
	})
	if err != nil {
		f.logger.Error("fetch market addresses failed", zap.Error(err))
	}
	f.logger.Info("watching markets", zap.Strings("markets", f.markets))

	var latest model.SignatureRef
	err = withRetry(ctx, bootstrapRetries, bootstrapBackoff, func(ctx context.Context) error {
		var err error
		latest, err = f.ledger.LatestSignature(ctx, f.cfg.ProgramAddress)
		return err
	})
	if err != nil {
		return fmt.Errorf("seed cursor: %w", err)
	}

	f.tracker.Reset(latest)
	f.logger.Info("cursor seeded", zap.String("signature", latest.ID), zap.Uint64("slot", latest.Slot))
	return nil
}

// runCycle is one iteration of the loop: poll, process in chronological
// order, then advance the cursor and liveness in one place so a failure
// mid-cycle never leaves them partially updated.
func (f *Feed) runCycle(ctx context.Context) {
	refs := f.poller.PollOnce(ctx, f.markets, f.tracker.Cursor().LastSignature)

	for _, ref := range refs {
		if !f.tracker.ShouldProcess(ref) {
			continue
		}
		f.handleSignature(ctx, ref)
		f.tracker.MarkProcessed(ref)
	}

	if len(refs) > 0 {
		last := refs[len(refs)-1]
		f.tracker.Advance(last)
		f.logger.Info("cursor advanced",
			zap.String("signature", last.ID),
			zap.Uint64("slot", last.Slot),
			zap.Int("signatures", len(refs)),
		)
	}

	f.lastUpdate.Store(time.Now().UnixMilli())
	f.tracker.Trim()
}

// handleSignature fetches one transaction and publishes every decodable
// payload from its logs. All failure modes skip forward: the stream never
// halts on a single bad transaction or payload.
func (f *Feed) handleSignature(ctx context.Context, ref model.SignatureRef) {
	tx, err := f.ledger.Transaction(ctx, ref.ID)
	if err != nil {
		f.logger.Warn("fetch transaction failed", zap.String("signature", ref.ID), zap.Error(err))
		return
	}
	if tx == nil || len(tx.LogLines) == 0 {
		f.logger.Debug("no log messages", zap.String("signature", ref.ID))
		return
	}
	if tx.Failed {
		f.logger.Debug("skipping failed transaction", zap.String("signature", ref.ID))
		return
	}

	for _, payload := range decode.ExtractPayloads(tx.LogLines) {
		if !f.decoder.CanDecode(payload.Discriminator) {
			continue
		}
		event, err := f.decoder.Decode(payload, ref)
		if err != nil {
			f.logger.Warn("decode payload failed", zap.String("signature", ref.ID), zap.Error(err))
			continue
		}
		f.publish(event)
	}
}

func (f *Feed) publish(event model.Event) {
	message, err := json.Marshal(model.Envelope{Type: event.EventType(), Data: event})
	if err != nil {
		f.logger.Warn("marshal event failed", zap.Error(err))
		return
	}

	f.hub.Broadcast(message)

	if fill, ok := event.(*model.FillEvent); ok {
		if f.fills != nil {
			f.fills.RecordFill(fill.Market, fill.IsMakerGlobal, fill.TakerIsBuy)
		}
		f.logger.Info("fill published",
			zap.String("market", fill.Market),
			zap.String("signature", fill.Signature),
			zap.Uint64("slot", fill.Slot),
		)
		return
	}
	f.logger.Info("order published", zap.String("type", event.EventType()))
}

// Stop signals the loop to end at its next iteration boundary and waits for
// it to exit, bounded by the configured stop timeout.
func (f *Feed) Stop() error {
	f.mu.Lock()
	switch f.state {
	case StateIdle, StateStopped:
		f.mu.Unlock()
		return nil
	case StateRunning:
		f.state = StateStopping
		close(f.stop)
	}
	f.mu.Unlock()

	select {
	case <-f.done:
		return nil
	case <-time.After(f.cfg.StopTimeout):
		return fmt.Errorf("failed to stop feed after %s", f.cfg.StopTimeout)
	}
}

func (f *Feed) setState(state State) {
	f.mu.Lock()
	f.state = state
	f.mu.Unlock()
}
