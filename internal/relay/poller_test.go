package relay

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"fillRelay/internal/model"
)

func TestPollOnceRestoresChronologicalOrder(t *testing.T) {
	// Per-address queries return newest-first.
	ledger := &fakeLedger{
		signatures: map[string][]model.SignatureRef{
			"market-a": {
				{ID: "s7", Slot: 7},
				{ID: "s5", Slot: 5},
				{ID: "s3", Slot: 3},
			},
		},
	}
	poller := NewPoller(ledger, &fakeCatalog{}, 0, zap.NewNop())

	refs := poller.PollOnce(context.Background(), []string{"market-a"}, "cursor")

	require.Equal(t, []model.SignatureRef{
		{ID: "s3", Slot: 3},
		{ID: "s5", Slot: 5},
		{ID: "s7", Slot: 7},
	}, refs)
}

func TestPollOnceQuietMarketTriggersReconciliation(t *testing.T) {
	ledger := &fakeLedger{
		signatures: map[string][]model.SignatureRef{
			"busy": {{ID: "s1", Slot: 1}},
		},
	}
	catalogClient := &fakeCatalog{}
	poller := NewPoller(ledger, catalogClient, 0, zap.NewNop())

	refs := poller.PollOnce(context.Background(), []string{"busy", "quiet"}, "")

	require.Len(t, refs, 1)
	require.Equal(t, []string{"quiet"}, catalogClient.reconciledMarkets())
}

func TestPollOnceReconciliationErrorIgnored(t *testing.T) {
	ledger := &fakeLedger{signatures: map[string][]model.SignatureRef{}}
	catalogClient := &fakeCatalog{err: errors.New("catalog down")}
	poller := NewPoller(ledger, catalogClient, 0, zap.NewNop())

	refs := poller.PollOnce(context.Background(), []string{"quiet"}, "")

	require.Empty(t, refs)
	require.Equal(t, []string{"quiet"}, catalogClient.reconciledMarkets())
}

func TestPollOnceNoMarkets(t *testing.T) {
	poller := NewPoller(&fakeLedger{}, &fakeCatalog{}, 0, zap.NewNop())
	require.Empty(t, poller.PollOnce(context.Background(), nil, ""))
}
