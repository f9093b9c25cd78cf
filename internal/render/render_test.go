package render_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/liftedinit/custody/internal/models"
	"github.com/liftedinit/custody/internal/render"
	"github.com/liftedinit/custody/internal/testutil"
)

func TestChainEmpty(t *testing.T) {
	for _, chain := range []models.Chain{nil, {}} {
		view := render.Chain(chain, time.UTC)
		assert.True(t, view.Empty)
		assert.Equal(t, render.EmptyChainMessage, view.Message)
		assert.Empty(t, view.Blocks)
	}
}

func TestChainOneUnitPerBlockInOrder(t *testing.T) {
	chain := testutil.Chain(5, map[uint64][]models.Transaction{
		1: {testutil.Tx("P1", models.StatusInTransit), testutil.Tx("P2", models.StatusDelivered)},
		3: {testutil.Tx("P1", models.StatusReceived)},
	})

	view := render.Chain(chain, time.UTC)
	require.False(t, view.Empty)
	require.Len(t, view.Blocks, 5)
	for i, b := range view.Blocks {
		assert.Equal(t, uint64(i), b.Index)
		assert.Equal(t, len(chain[i].Transactions), b.TransactionCount)
		assert.Len(t, b.Transactions, b.TransactionCount)
	}

	tx := view.Blocks[1].Transactions[1]
	assert.Equal(t, "Product P2 (P2)", tx.Header)
	assert.Equal(t, "factory", tx.Sender)
	assert.Equal(t, "warehouse", tx.Recipient)
	assert.Equal(t, "Dock 7", tx.Location)
	assert.Equal(t, "delivered", tx.Status)
	assert.Equal(t, "status-delivered", tx.StatusClass)
}

func TestChainBlockFields(t *testing.T) {
	chain := models.Chain{{
		Index:        7,
		Timestamp:    1700000000,
		Proof:        35293,
		PreviousHash: "8a3f0c6de1b24f0e9a7c5d3b2f1e0a9b8c7d6e5f4a3b2c1d0e9f8a7b6c5d4e3f",
	}}

	view := render.Chain(chain, time.UTC)
	require.Len(t, view.Blocks, 1)
	b := view.Blocks[0]
	assert.Equal(t, uint64(7), b.Index)
	assert.Equal(t, int64(35293), b.Proof)
	assert.Equal(t, "8a3f0c6de1b24f0e9a7c...", b.PreviousHash)
	assert.Equal(t, "11/14/2023, 10:13:20 PM", b.Time)
	assert.Zero(t, b.TransactionCount)
	assert.Empty(t, b.Transactions)
}

func TestChainIdempotent(t *testing.T) {
	chain := testutil.Chain(3, map[uint64][]models.Transaction{2: {testutil.Tx("P9", "recalled")}})
	assert.Equal(t, render.Chain(chain, time.UTC), render.Chain(chain, time.UTC))
}

func TestTimestampScalesSecondsOnce(t *testing.T) {
	loc, err := time.LoadLocation("America/New_York")
	require.NoError(t, err)

	expected := time.UnixMilli(1700000000000).In(loc).Format(render.TimeLayout)
	assert.Equal(t, expected, render.Timestamp(1700000000, loc))
	assert.Equal(t, "11/14/2023, 5:13:20 PM", render.Timestamp(1700000000, loc))

	// Fractional seconds as sent by the ledger service.
	assert.Equal(t, "11/14/2023, 10:13:20 PM", render.Timestamp(1700000000.4, time.UTC))

	local := time.UnixMilli(1700000000000).Format(render.TimeLayout)
	assert.Equal(t, local, render.Timestamp(1700000000, nil))
}

func TestPreviewHash(t *testing.T) {
	assert.Equal(t, "1...", render.PreviewHash("1"))
	assert.Equal(t, "...", render.PreviewHash(""))
	assert.Equal(t, "01234567890123456789...", render.PreviewHash("01234567890123456789"))
	assert.Equal(t, "01234567890123456789...", render.PreviewHash("0123456789012345678901"))
}

func TestStatusClassVerbatim(t *testing.T) {
	assert.Equal(t, "status-in-transit", render.StatusClass(models.StatusInTransit))
	assert.Equal(t, "status-out-for-delivery", render.StatusClass("out-for-delivery"))
}

func TestHistoryPreservesOrder(t *testing.T) {
	entries := []models.HistoryEntry{
		{BlockIndex: 5, Timestamp: 1700000300, Transaction: testutil.Tx("P1", models.StatusDelivered)},
		{BlockIndex: 2, Timestamp: 1700000120, Transaction: testutil.Tx("P1", models.StatusInTransit)},
	}

	view := render.History(entries, time.UTC)
	require.False(t, view.Empty)
	require.Len(t, view.Items, 2)
	assert.Equal(t, uint64(5), view.Items[0].BlockIndex)
	assert.Equal(t, uint64(2), view.Items[1].BlockIndex)
	assert.Equal(t, "Block #5 - 11/14/2023, 10:18:20 PM", view.Items[0].Header)
	assert.Equal(t, "status-delivered", view.Items[0].Transaction.StatusClass)
}

func TestHistoryEmpty(t *testing.T) {
	view := render.History(nil, time.UTC)
	assert.True(t, view.Empty)
	assert.Equal(t, render.NoHistoryMessage, view.Message)
	assert.Empty(t, view.Items)
}

func TestStatsValidityProducts(t *testing.T) {
	stats := render.Stats(models.Stats{TotalBlocks: 3, TotalTransactions: 9, TotalProducts: 4, PendingTransactions: 1})
	assert.Equal(t, render.StatsView{TotalBlocks: 3, TotalTransactions: 9, TotalProducts: 4, PendingTransactions: 1}, stats)

	assert.Contains(t, render.Validity(models.ChainValidity{Valid: true, Length: 3}).Text, "valid")
	assert.Contains(t, render.Validity(models.ChainValidity{Valid: false, Length: 3}).Text, "INVALID")

	assert.True(t, render.Products(nil).Empty)
	assert.Equal(t, []string{"P1", "P2"}, render.Products([]string{"P1", "P2"}).Products)
}
