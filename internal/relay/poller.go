package relay

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"fillRelay/internal/model"
)

// LedgerClient is the ledger query surface the relay consumes.
type LedgerClient interface {
	SignaturesForAddress(ctx context.Context, address, until string) ([]model.SignatureRef, error)
	LatestSignature(ctx context.Context, address string) (model.SignatureRef, error)
	Transaction(ctx context.Context, id string) (*model.TransactionLogs, error)
}

// CatalogClient supplies the market watch list and accepts reconciliation
// hints.
type CatalogClient interface {
	MarketAddresses(ctx context.Context) ([]string, error)
	CheckOrdersAndFills(ctx context.Context, market string) error
}

// Poller queries the ledger for new signatures across all watched markets.
type Poller struct {
	ledger     LedgerClient
	catalog    CatalogClient
	queryDelay time.Duration
	logger     *zap.Logger
}

func NewPoller(ledger LedgerClient, catalog CatalogClient, queryDelay time.Duration, logger *zap.Logger) *Poller {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Poller{
		ledger:     ledger,
		catalog:    catalog,
		queryDelay: queryDelay,
		logger:     logger,
	}
}

// PollOnce queries every market concurrently for signatures newer than
// until, each query preceded by a fixed delay as rate-limit courtesy to the
// RPC endpoint. Per-address results arrive newest-first; the merged batch is
// reversed so the caller processes oldest-first. Query failures are logged
// and that market contributes nothing this cycle; the unchanged cursor
// retries it naturally next cycle.
func (p *Poller) PollOnce(ctx context.Context, markets []string, until string) []model.SignatureRef {
	var (
		mu    sync.Mutex
		refs  []model.SignatureRef
		quiet []string
	)

	var wg sync.WaitGroup
	for _, market := range markets {
		wg.Add(1)
		go func(market string) {
			defer wg.Done()

			if !sleepCtx(ctx, p.queryDelay) {
				return
			}

			found, err := p.ledger.SignaturesForAddress(ctx, market, until)
			if err != nil {
				p.logger.Warn("list signatures failed", zap.String("market", market), zap.Error(err))
				return
			}

			mu.Lock()
			defer mu.Unlock()
			if len(found) == 0 {
				quiet = append(quiet, market)
				return
			}
			refs = append(refs, found...)
		}(market)
	}
	wg.Wait()

	// Markets with no new activity get a best-effort reconciliation nudge.
	for _, market := range quiet {
		if err := p.catalog.CheckOrdersAndFills(ctx, market); err != nil {
			p.logger.Warn("reconciliation failed", zap.String("market", market), zap.Error(err))
		}
	}

	for i, j := 0, len(refs)-1; i < j; i, j = i+1, j-1 {
		refs[i], refs[j] = refs[j], refs[i]
	}
	return refs
}

// sleepCtx sleeps for d, returning false if the context ended first.
func sleepCtx(ctx context.Context, d time.Duration) bool {
	if d <= 0 {
		return ctx.Err() == nil
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-timer.C:
		return true
	}
}
