package testutil

import (
	"fmt"

	"github.com/liftedinit/custody/internal/models"
)

// Tx builds a transaction for the given product.
func Tx(productID string, status models.Status) models.Transaction {
	return models.Transaction{
		Sender:      "factory",
		Recipient:   "warehouse",
		ProductID:   productID,
		ProductName: "Product " + productID,
		Location:    "Dock 7",
		Status:      status,
	}
}

// Chain builds a chain of n blocks starting at index 0. txs maps a block index to its transactions.
func Chain(n int, txs map[uint64][]models.Transaction) models.Chain {
	chain := make(models.Chain, 0, n)
	for i := 0; i < n; i++ {
		index := uint64(i)
		block := models.Block{
			Index:        index,
			Timestamp:    models.Timestamp(1700000000 + 600*i),
			Proof:        int64(100 + i),
			PreviousHash: fmt.Sprintf("%064x", i),
			Transactions: txs[index],
		}
		if block.Transactions == nil {
			block.Transactions = []models.Transaction{}
		}
		chain = append(chain, block)
	}
	return chain
}
