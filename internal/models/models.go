package models

import (
	"math"
	"time"
)

// Status is the custody state carried by a transaction. The set is open; unknown
// values are kept verbatim.
type Status string

const (
	StatusInTransit Status = "in-transit"
	StatusDelivered Status = "delivered"
	StatusReceived  Status = "received"
	StatusMined     Status = "mined"
)

// Timestamp is a unix time in seconds. The ledger service may send fractional seconds.
type Timestamp float64

// Time converts the timestamp to wall time. Seconds are scaled to milliseconds once.
func (ts Timestamp) Time() time.Time {
	return time.UnixMilli(int64(math.Round(float64(ts) * 1000)))
}

// Transaction represents a custody event recorded in a block.
type Transaction struct {
	ID          string                 `json:"id,omitempty"`
	Sender      string                 `json:"sender"`
	Recipient   string                 `json:"recipient"`
	ProductID   string                 `json:"product_id"`
	ProductName string                 `json:"product_name"`
	Location    string                 `json:"location"`
	Status      Status                 `json:"status"`
	Timestamp   Timestamp              `json:"timestamp,omitempty"`
	Metadata    map[string]interface{} `json:"metadata,omitempty"`
}

// TransactionRequest is the body of a transaction submission.
type TransactionRequest struct {
	Sender      string                 `json:"sender" validate:"required"`
	Recipient   string                 `json:"recipient" validate:"required"`
	ProductID   string                 `json:"product_id" validate:"required"`
	ProductName string                 `json:"product_name" validate:"required"`
	Location    string                 `json:"location" validate:"required"`
	Status      Status                 `json:"status" validate:"required"`
	Metadata    map[string]interface{} `json:"metadata,omitempty"`
}

// Block represents a ledger block.
type Block struct {
	Index        uint64        `json:"index"`
	Timestamp    Timestamp     `json:"timestamp"`
	Proof        int64         `json:"proof"`
	PreviousHash string        `json:"previous_hash"`
	Transactions []Transaction `json:"transactions"`
}

// Chain is the full ordered sequence of blocks as served by the ledger.
type Chain []Block

// Stats is a point-in-time aggregate computed by the ledger service.
type Stats struct {
	TotalBlocks         int `json:"total_blocks"`
	TotalTransactions   int `json:"total_transactions"`
	TotalProducts       int `json:"total_products"`
	PendingTransactions int `json:"pending_transactions"`
}

// HistoryEntry is one custody event of a product together with the block that holds it.
type HistoryEntry struct {
	BlockIndex  uint64      `json:"block_index"`
	Timestamp   Timestamp   `json:"timestamp"`
	BlockHash   string      `json:"block_hash,omitempty"`
	Transaction Transaction `json:"transaction"`
}

type SubmitResult struct {
	Message     string       `json:"message"`
	Transaction *Transaction `json:"transaction,omitempty"`
}

type MineResult struct {
	Message      string        `json:"message"`
	Index        uint64        `json:"index"`
	Proof        int64         `json:"proof"`
	PreviousHash string        `json:"previous_hash"`
	Transactions []Transaction `json:"transactions"`
}

type ChainValidity struct {
	Valid  bool `json:"valid"`
	Length int  `json:"length"`
}

type Health struct {
	Status  string `json:"status"`
	Service string `json:"service"`
}
