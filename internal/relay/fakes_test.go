package relay

import (
	"context"
	"sync"

	"fillRelay/internal/model"
)

// fakeLedger serves one scripted signature batch per market, then nothing.
type fakeLedger struct {
	mu           sync.Mutex
	latest       model.SignatureRef
	latestErr    error
	signatures   map[string][]model.SignatureRef
	transactions map[string]*model.TransactionLogs
}

func (l *fakeLedger) SignaturesForAddress(_ context.Context, address, _ string) ([]model.SignatureRef, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	refs := l.signatures[address]
	delete(l.signatures, address)
	return refs, nil
}

func (l *fakeLedger) LatestSignature(context.Context, string) (model.SignatureRef, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.latest, l.latestErr
}

func (l *fakeLedger) Transaction(_ context.Context, id string) (*model.TransactionLogs, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.transactions[id], nil
}

type fakeCatalog struct {
	mu         sync.Mutex
	markets    []string
	reconciled []string
	err        error
}

func (c *fakeCatalog) MarketAddresses(context.Context) ([]string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.markets, nil
}

func (c *fakeCatalog) CheckOrdersAndFills(_ context.Context, market string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.reconciled = append(c.reconciled, market)
	return c.err
}

func (c *fakeCatalog) reconciledMarkets() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]string(nil), c.reconciled...)
}

type fakeHub struct {
	mu       sync.Mutex
	messages [][]byte
	closed   bool
}

func (h *fakeHub) Broadcast(message []byte) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.messages = append(h.messages, append([]byte(nil), message...))
}

func (h *fakeHub) Close() error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.closed = true
	return nil
}

func (h *fakeHub) broadcasts() [][]byte {
	h.mu.Lock()
	defer h.mu.Unlock()
	return append([][]byte(nil), h.messages...)
}

func (h *fakeHub) isClosed() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.closed
}

type recordedFill struct {
	market     string
	isGlobal   bool
	takerIsBuy bool
}

type fakeFills struct {
	mu    sync.Mutex
	fills []recordedFill
}

func (f *fakeFills) RecordFill(market string, isGlobal, takerIsBuy bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.fills = append(f.fills, recordedFill{market: market, isGlobal: isGlobal, takerIsBuy: takerIsBuy})
}

func (f *fakeFills) recorded() []recordedFill {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]recordedFill(nil), f.fills...)
}
