// Package render maps ledger data to view structures. Every function is pure: the same input
// always yields the same output and nothing is read from or written to the network.
package render

import (
	"fmt"
	"time"

	"github.com/liftedinit/custody/internal/models"
)

const (
	EmptyChainMessage   = "No blocks in the chain yet."
	NoHistoryMessage    = "No history found for this product ID."
	NoProductsMessage   = "No products recorded yet."
	HashPreviewLength   = 20
	HashPreviewEllipsis = "..."

	// TimeLayout mirrors a browser's default locale string, e.g. "11/14/2023, 10:13:20 PM".
	TimeLayout = "1/2/2006, 3:04:05 PM"
)

type StatsView struct {
	TotalBlocks         int `json:"total_blocks"`
	TotalTransactions   int `json:"total_transactions"`
	TotalProducts       int `json:"total_products"`
	PendingTransactions int `json:"pending_transactions"`
}

type ChainView struct {
	Empty   bool        `json:"empty"`
	Message string      `json:"message,omitempty"`
	Blocks  []BlockView `json:"blocks"`
}

type BlockView struct {
	Index            uint64            `json:"index"`
	Time             string            `json:"time"`
	Proof            int64             `json:"proof"`
	PreviousHash     string            `json:"previous_hash"`
	TransactionCount int               `json:"transaction_count"`
	Transactions     []TransactionView `json:"transactions"`
}

type TransactionView struct {
	Header      string `json:"header"`
	ProductName string `json:"product_name"`
	ProductID   string `json:"product_id"`
	Sender      string `json:"sender"`
	Recipient   string `json:"recipient"`
	Location    string `json:"location"`
	Status      string `json:"status"`
	StatusClass string `json:"status_class"`
}

type HistoryView struct {
	Empty   bool              `json:"empty"`
	Message string            `json:"message,omitempty"`
	Items   []HistoryItemView `json:"items"`
}

type HistoryItemView struct {
	Header      string          `json:"header"`
	BlockIndex  uint64          `json:"block_index"`
	Time        string          `json:"time"`
	Transaction TransactionView `json:"transaction"`
}

type ValidityView struct {
	Valid  bool   `json:"valid"`
	Length int    `json:"length"`
	Text   string `json:"text"`
}

type ProductsView struct {
	Empty    bool     `json:"empty"`
	Message  string   `json:"message,omitempty"`
	Products []string `json:"products"`
}

func Stats(s models.Stats) StatsView {
	return StatsView(s)
}

// Chain renders one block unit per block, in input order.
func Chain(chain models.Chain, loc *time.Location) ChainView {
	if len(chain) == 0 {
		return ChainView{Empty: true, Message: EmptyChainMessage, Blocks: []BlockView{}}
	}

	blocks := make([]BlockView, 0, len(chain))
	for _, b := range chain {
		txs := make([]TransactionView, 0, len(b.Transactions))
		for _, tx := range b.Transactions {
			txs = append(txs, Transaction(tx))
		}
		blocks = append(blocks, BlockView{
			Index:            b.Index,
			Time:             Timestamp(b.Timestamp, loc),
			Proof:            b.Proof,
			PreviousHash:     PreviewHash(b.PreviousHash),
			TransactionCount: len(b.Transactions),
			Transactions:     txs,
		})
	}
	return ChainView{Blocks: blocks}
}

func Transaction(tx models.Transaction) TransactionView {
	return TransactionView{
		Header:      fmt.Sprintf("%s (%s)", tx.ProductName, tx.ProductID),
		ProductName: tx.ProductName,
		ProductID:   tx.ProductID,
		Sender:      tx.Sender,
		Recipient:   tx.Recipient,
		Location:    tx.Location,
		Status:      string(tx.Status),
		StatusClass: StatusClass(tx.Status),
	}
}

// History renders entries in the order received. It never re-sorts.
func History(entries []models.HistoryEntry, loc *time.Location) HistoryView {
	if len(entries) == 0 {
		return HistoryView{Empty: true, Message: NoHistoryMessage, Items: []HistoryItemView{}}
	}

	items := make([]HistoryItemView, 0, len(entries))
	for _, e := range entries {
		when := Timestamp(e.Timestamp, loc)
		items = append(items, HistoryItemView{
			Header:      fmt.Sprintf("Block #%d - %s", e.BlockIndex, when),
			BlockIndex:  e.BlockIndex,
			Time:        when,
			Transaction: Transaction(e.Transaction),
		})
	}
	return HistoryView{Items: items}
}

func Validity(v models.ChainValidity) ValidityView {
	text := fmt.Sprintf("Chain reported valid by the ledger (%d blocks)", v.Length)
	if !v.Valid {
		text = fmt.Sprintf("Chain reported INVALID by the ledger (%d blocks)", v.Length)
	}
	return ValidityView{Valid: v.Valid, Length: v.Length, Text: text}
}

func Products(ids []string) ProductsView {
	if len(ids) == 0 {
		return ProductsView{Empty: true, Message: NoProductsMessage, Products: []string{}}
	}
	return ProductsView{Products: append([]string(nil), ids...)}
}

// Timestamp formats a unix-seconds timestamp in loc. A nil loc means the local zone.
func Timestamp(ts models.Timestamp, loc *time.Location) string {
	if loc == nil {
		loc = time.Local
	}
	return ts.Time().In(loc).Format(TimeLayout)
}

// PreviewHash keeps the first HashPreviewLength characters followed by an ellipsis.
func PreviewHash(hash string) string {
	if len(hash) > HashPreviewLength {
		hash = hash[:HashPreviewLength]
	}
	return hash + HashPreviewEllipsis
}

// StatusClass is the display class key of a status; the status string is used verbatim.
func StatusClass(status models.Status) string {
	return "status-" + string(status)
}
