package provenance

import (
	"github.com/liftedinit/custody/internal/models"
)

// Reconstruct scans the chain in block order, and each block in recorded order, and returns
// every event of the product. The chain is not modified.
func Reconstruct(productID string, chain models.Chain) []models.HistoryEntry {
	history := []models.HistoryEntry{}
	for _, block := range chain {
		for _, tx := range block.Transactions {
			if tx.ProductID != productID {
				continue
			}
			history = append(history, models.HistoryEntry{
				BlockIndex:  block.Index,
				Timestamp:   block.Timestamp,
				Transaction: copyTransaction(tx),
			})
		}
	}
	return history
}

// Products returns the distinct non-empty product ids of the chain in first-seen order.
func Products(chain models.Chain) []string {
	seen := make(map[string]struct{})
	products := []string{}
	for _, block := range chain {
		for _, tx := range block.Transactions {
			if tx.ProductID == "" {
				continue
			}
			if _, ok := seen[tx.ProductID]; ok {
				continue
			}
			seen[tx.ProductID] = struct{}{}
			products = append(products, tx.ProductID)
		}
	}
	return products
}

func copyTransaction(tx models.Transaction) models.Transaction {
	if tx.Metadata != nil {
		metadata := make(map[string]interface{}, len(tx.Metadata))
		for k, v := range tx.Metadata {
			metadata[k] = v
		}
		tx.Metadata = metadata
	}
	return tx
}
