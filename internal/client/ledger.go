package client

import (
	"context"
	"fmt"
	"net/http"

	"github.com/pkg/errors"

	"github.com/liftedinit/custody/internal/models"
)

const (
	statsPath          = "/stats"
	chainPath          = "/chain"
	chainValidPath     = "/chain/valid"
	newTransactionPath = "/transactions/new"
	productsPath       = "/products"
	productHistoryPath = "/products/{id}/history"
	minePath           = "/mine"
	healthPath         = "/health"
)

type chainResponse struct {
	Chain  models.Chain `json:"chain"`
	Length int          `json:"length"`
}

type historyResponse struct {
	ProductID string                `json:"product_id"`
	History   []models.HistoryEntry `json:"history"`
	Count     int                   `json:"count"`
}

type productsResponse struct {
	Products []string `json:"products"`
	Count    int      `json:"count"`
}

func (c *LedgerClient) GetStats(ctx context.Context) (*models.Stats, error) {
	var stats models.Stats
	if err := c.FetchJSON(ctx, http.MethodGet, statsPath, nil, &stats); err != nil {
		return nil, errors.WithMessage(err, "failed to get stats")
	}
	return &stats, nil
}

func (c *LedgerClient) GetChain(ctx context.Context) (models.Chain, error) {
	var resp chainResponse
	if err := c.FetchJSON(ctx, http.MethodGet, chainPath, nil, &resp); err != nil {
		return nil, errors.WithMessage(err, "failed to get chain")
	}
	if resp.Chain == nil {
		return models.Chain{}, nil
	}
	return resp.Chain, nil
}

func (c *LedgerClient) SubmitTransaction(ctx context.Context, tx models.TransactionRequest) (*models.SubmitResult, error) {
	var result models.SubmitResult
	if err := c.FetchJSON(ctx, http.MethodPost, newTransactionPath, tx, &result); err != nil {
		return nil, errors.WithMessage(err, "failed to submit transaction")
	}
	return &result, nil
}

// GetProductHistory returns the service's pre-filtered history in received order.
func (c *LedgerClient) GetProductHistory(ctx context.Context, productID string) ([]models.HistoryEntry, error) {
	var resp historyResponse
	err := c.fetch(ctx, http.MethodGet, productHistoryPath, map[string]string{"id": productID}, nil, &resp)
	if err != nil {
		return nil, errors.WithMessage(err, fmt.Sprintf("failed to get history of product %q", productID))
	}
	if resp.History == nil {
		return []models.HistoryEntry{}, nil
	}
	return resp.History, nil
}

func (c *LedgerClient) Mine(ctx context.Context) (*models.MineResult, error) {
	var result models.MineResult
	if err := c.FetchJSON(ctx, http.MethodGet, minePath, nil, &result); err != nil {
		return nil, errors.WithMessage(err, "failed to mine block")
	}
	return &result, nil
}

func (c *LedgerClient) ValidateChain(ctx context.Context) (*models.ChainValidity, error) {
	var validity models.ChainValidity
	if err := c.FetchJSON(ctx, http.MethodGet, chainValidPath, nil, &validity); err != nil {
		return nil, errors.WithMessage(err, "failed to get chain validity")
	}
	return &validity, nil
}

func (c *LedgerClient) ListProducts(ctx context.Context) ([]string, error) {
	var resp productsResponse
	if err := c.FetchJSON(ctx, http.MethodGet, productsPath, nil, &resp); err != nil {
		return nil, errors.WithMessage(err, "failed to list products")
	}
	if resp.Products == nil {
		return []string{}, nil
	}
	return resp.Products, nil
}

func (c *LedgerClient) Health(ctx context.Context) (*models.Health, error) {
	var health models.Health
	if err := c.FetchJSON(ctx, http.MethodGet, healthPath, nil, &health); err != nil {
		return nil, errors.WithMessage(err, "failed to get health")
	}
	return &health, nil
}
