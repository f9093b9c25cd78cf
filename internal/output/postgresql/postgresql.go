package postgresql

import (
	"context"
	"database/sql"
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"math"

	"github.com/golang-migrate/migrate/v4"
	migratepgx "github.com/golang-migrate/migrate/v4/database/pgx/v5"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"

	"github.com/liftedinit/custody/internal/config"
	"github.com/liftedinit/custody/internal/models"
)

//go:embed migrations/*
var migrationsFS embed.FS

const (
	LatestBlockQuery = `SELECT id FROM custody.blocks ORDER BY id DESC LIMIT 1`

	InsertBlockQuery = `
		INSERT INTO custody.blocks (id, timestamp, proof, previous_hash, data) VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (id) DO UPDATE SET timestamp = EXCLUDED.timestamp, proof = EXCLUDED.proof,
			previous_hash = EXCLUDED.previous_hash, data = EXCLUDED.data`

	DeleteTransactionsQuery = `DELETE FROM custody.transactions WHERE block_id = $1`

	InsertTransactionQuery = `
		INSERT INTO custody.transactions (block_id, position, product_id, product_name, sender, recipient, location, status, metadata)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`
)

type PostgresOutputHandler struct {
	pool *pgxpool.Pool
	db   *sql.DB
}

func NewPostgresOutputHandler(cfg config.PostgresConfig, maxConcurrency uint) (*PostgresOutputHandler, error) {
	poolConfig, err := pgxpool.ParseConfig(cfg.ConnString)
	if err != nil {
		return nil, fmt.Errorf("failed to parse PostgreSQL connection string: %w", err)
	}

	if maxConcurrency > math.MaxInt32 {
		return nil, fmt.Errorf("max concurrency exceeds maximum int32 value")
	}
	poolConfig.MaxConns = int32(maxConcurrency)

	pool, err := pgxpool.NewWithConfig(context.Background(), poolConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to PostgreSQL: %w", err)
	}

	handler := &PostgresOutputHandler{
		pool: pool,
		db:   stdlib.OpenDBFromPool(pool),
	}

	// Run migrations. This is idempotent.
	if err = handler.runMigrations(); err != nil {
		handler.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	return handler, nil
}

// NewPostgresOutputHandlerFromDB wraps an existing database handle. Migrations are not run.
func NewPostgresOutputHandlerFromDB(db *sql.DB) *PostgresOutputHandler {
	return &PostgresOutputHandler{db: db}
}

func (h *PostgresOutputHandler) GetLatestBlockIndex(ctx context.Context) (uint64, bool, error) {
	var id int64
	err := h.db.QueryRowContext(ctx, LatestBlockQuery).Scan(&id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, false, nil
		}
		return 0, false, fmt.Errorf("failed to get the latest block: %w", err)
	}
	return uint64(id), true, nil
}

// WriteBlock stores the block and replaces its transactions in a single database transaction.
func (h *PostgresOutputHandler) WriteBlock(ctx context.Context, block *models.Block) error {
	data, err := json.Marshal(block)
	if err != nil {
		return fmt.Errorf("failed to marshal block %d: %w", block.Index, err)
	}

	tx, err := h.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	_, err = tx.ExecContext(ctx, InsertBlockQuery,
		int64(block.Index), float64(block.Timestamp), block.Proof, block.PreviousHash, string(data))
	if err != nil {
		return fmt.Errorf("failed to write block: %w", err)
	}

	if _, err = tx.ExecContext(ctx, DeleteTransactionsQuery, int64(block.Index)); err != nil {
		return fmt.Errorf("failed to clear block transactions: %w", err)
	}

	for i, t := range block.Transactions {
		var metadata interface{}
		if len(t.Metadata) > 0 {
			raw, err := json.Marshal(t.Metadata)
			if err != nil {
				return fmt.Errorf("failed to marshal transaction metadata: %w", err)
			}
			metadata = string(raw)
		}
		_, err = tx.ExecContext(ctx, InsertTransactionQuery,
			int64(block.Index), i, t.ProductID, t.ProductName, t.Sender, t.Recipient, t.Location, string(t.Status), metadata)
		if err != nil {
			return fmt.Errorf("failed to write transaction: %w", err)
		}
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

func (h *PostgresOutputHandler) runMigrations() error {
	slog.Info("Running PostgreSQL migrations...")

	d, err := iofs.New(migrationsFS, "migrations")
	if err != nil {
		return fmt.Errorf("failed to create migration source: %w", err)
	}

	// The migration driver pins a connection and closes its handle, so it gets its own.
	driver, err := migratepgx.WithInstance(stdlib.OpenDBFromPool(h.pool), &migratepgx.Config{})
	if err != nil {
		return fmt.Errorf("failed to create migration driver: %w", err)
	}

	m, err := migrate.NewWithInstance("iofs", d, "postgres", driver)
	if err != nil {
		return fmt.Errorf("failed to create migration instance: %w", err)
	}
	defer m.Close()

	if err = m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	return nil
}

func (h *PostgresOutputHandler) Close() error {
	slog.Info("Closing PostgreSQL connection pool")
	err := h.db.Close()
	if h.pool != nil {
		h.pool.Close()
	}
	slog.Info("PostgreSQL connection pool closed")
	return err
}
