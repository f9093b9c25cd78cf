package controller

import (
	"context"

	"github.com/liftedinit/custody/internal/models"
	"github.com/liftedinit/custody/internal/notify"
	"github.com/liftedinit/custody/internal/render"
)

// Ledger is the remote ledger service as seen by the controller.
type Ledger interface {
	GetStats(ctx context.Context) (*models.Stats, error)
	GetChain(ctx context.Context) (models.Chain, error)
	SubmitTransaction(ctx context.Context, tx models.TransactionRequest) (*models.SubmitResult, error)
	GetProductHistory(ctx context.Context, productID string) ([]models.HistoryEntry, error)
	Mine(ctx context.Context) (*models.MineResult, error)
	ValidateChain(ctx context.Context) (*models.ChainValidity, error)
	ListProducts(ctx context.Context) ([]string, error)
}

// View is the display surface. Each method replaces one region; regions are disjoint, so
// implementations only need to serialize writes.
type View interface {
	ShowStats(stats render.StatsView)
	ShowChain(chain render.ChainView)
	ShowChainError(message string)
	ShowHistoryLoading()
	ShowHistory(history render.HistoryView)
	ShowHistoryError(message string)
	ShowValidity(validity render.ValidityView)
	ShowProducts(products render.ProductsView)
	ClearForm()
	SetMineControl(enabled bool, label string)
	ShowNotifications(active []notify.Notification)
}
