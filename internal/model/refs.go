package model

// SignatureRef identifies a confirmed transaction on the ledger.
type SignatureRef struct {
	ID   string `json:"signature"`
	Slot uint64 `json:"slot"`
}

// TransactionLogs holds the log output of a fetched transaction.
// Failed marks transactions that aborted on chain; their logs must be ignored.
type TransactionLogs struct {
	ID       string
	Slot     uint64
	LogLines []string
	Failed   bool
}

// Cursor is the low-water mark below which signatures are treated as handled.
type Cursor struct {
	LastSignature string
	LastSlot      uint64
}
