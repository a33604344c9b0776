package chain

import (
	"context"
	"errors"
	"fmt"

	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/rpc"

	"fillRelay/internal/model"
)

// Client wraps the Solana JSON-RPC client and provides helper methods.
type Client struct {
	rpcClient *rpc.Client
}

// NewClient creates a new ledger client from the RPC URL.
func NewClient(rpcURL string) *Client {
	return &Client{rpcClient: rpc.New(rpcURL)}
}

// Close closes the underlying RPC client.
func (c *Client) Close() {
	if c.rpcClient != nil {
		_ = c.rpcClient.Close()
	}
}

// SignaturesForAddress lists finalized signatures referencing the address,
// newer than the until signature, in the RPC's newest-first order. An empty
// until lists the most recent page.
func (c *Client) SignaturesForAddress(ctx context.Context, address, until string) ([]model.SignatureRef, error) {
	account, err := solana.PublicKeyFromBase58(address)
	if err != nil {
		return nil, fmt.Errorf("parse address %s: %w", address, err)
	}

	opts := &rpc.GetSignaturesForAddressOpts{Commitment: rpc.CommitmentFinalized}
	if until != "" {
		untilSig, err := solana.SignatureFromBase58(until)
		if err != nil {
			return nil, fmt.Errorf("parse until signature: %w", err)
		}
		opts.Until = untilSig
	}

	out, err := c.rpcClient.GetSignaturesForAddressWithOpts(ctx, account, opts)
	if err != nil {
		return nil, fmt.Errorf("get signatures for %s: %w", address, err)
	}

	refs := make([]model.SignatureRef, 0, len(out))
	for _, sig := range out {
		refs = append(refs, model.SignatureRef{ID: sig.Signature.String(), Slot: sig.Slot})
	}
	return refs, nil
}

// LatestSignature returns the most recent finalized signature referencing the
// address. A single point lookup, used to seed the cursor at startup.
func (c *Client) LatestSignature(ctx context.Context, address string) (model.SignatureRef, error) {
	account, err := solana.PublicKeyFromBase58(address)
	if err != nil {
		return model.SignatureRef{}, fmt.Errorf("parse address %s: %w", address, err)
	}

	limit := 1
	out, err := c.rpcClient.GetSignaturesForAddressWithOpts(ctx, account, &rpc.GetSignaturesForAddressOpts{
		Limit:      &limit,
		Commitment: rpc.CommitmentFinalized,
	})
	if err != nil {
		return model.SignatureRef{}, fmt.Errorf("get latest signature for %s: %w", address, err)
	}
	if len(out) == 0 {
		return model.SignatureRef{}, fmt.Errorf("no signatures found for %s", address)
	}

	return model.SignatureRef{ID: out[0].Signature.String(), Slot: out[0].Slot}, nil
}

// Transaction fetches a transaction's log output by signature. Returns
// (nil, nil) when the ledger no longer has the transaction.
func (c *Client) Transaction(ctx context.Context, id string) (*model.TransactionLogs, error) {
	sig, err := solana.SignatureFromBase58(id)
	if err != nil {
		return nil, fmt.Errorf("parse signature: %w", err)
	}

	maxVersion := uint64(0)
	out, err := c.rpcClient.GetTransaction(ctx, sig, &rpc.GetTransactionOpts{
		MaxSupportedTransactionVersion: &maxVersion,
		Commitment:                     rpc.CommitmentConfirmed,
	})
	if err != nil {
		if errors.Is(err, rpc.ErrNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("get transaction %s: %w", id, err)
	}
	if out == nil || out.Meta == nil {
		return nil, nil
	}

	return &model.TransactionLogs{
		ID:       id,
		Slot:     out.Slot,
		LogLines: out.Meta.LogMessages,
		Failed:   out.Meta.Err != nil,
	}, nil
}
