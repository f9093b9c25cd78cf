package output

import (
	"bufio"
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"

	"github.com/pkg/errors"

	"github.com/liftedinit/custody/internal/config"
	"github.com/liftedinit/custody/internal/models"
)

const (
	BlocksTSV       = "blocks.tsv"
	TransactionsTSV = "transactions.tsv"
)

var (
	blockColumns       = []string{"index", "timestamp", "proof", "previous_hash", "transaction_count"}
	transactionColumns = []string{"block_index", "position", "product_id", "product_name", "sender", "recipient", "location", "status"}
)

// TSVOutputHandler writes one row per block and one row per transaction. Rows follow write order,
// which is not block order when blocks are written concurrently.
type TSVOutputHandler struct {
	mu          sync.Mutex
	blockFile   *os.File
	txFile      *os.File
	blockWriter *bufio.Writer
	txWriter    *bufio.Writer
}

func NewTSVOutputHandler(cfg config.TSVConfig) (*TSVOutputHandler, error) {
	err := os.MkdirAll(cfg.Output, 0755)
	if err != nil {
		return nil, errors.WithMessage(err, "failed to create output directory")
	}

	blockFile, err := os.Create(filepath.Join(cfg.Output, BlocksTSV))
	if err != nil {
		return nil, errors.WithMessage(err, "failed to create blocks TSV file")
	}

	txFile, err := os.Create(filepath.Join(cfg.Output, TransactionsTSV))
	if err != nil {
		blockFile.Close()
		return nil, errors.WithMessage(err, "failed to create transactions TSV file")
	}

	h := &TSVOutputHandler{
		blockFile:   blockFile,
		txFile:      txFile,
		blockWriter: bufio.NewWriter(blockFile),
		txWriter:    bufio.NewWriter(txFile),
	}

	if !cfg.NoHeaders {
		if err := writeRow(h.blockWriter, blockColumns); err != nil {
			h.Close()
			return nil, errors.WithMessage(err, "failed to write blocks header")
		}
		if err := writeRow(h.txWriter, transactionColumns); err != nil {
			h.Close()
			return nil, errors.WithMessage(err, "failed to write transactions header")
		}
	}

	return h, nil
}

func (h *TSVOutputHandler) WriteBlock(_ context.Context, block *models.Block) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	err := writeRow(h.blockWriter, []string{
		strconv.FormatUint(block.Index, 10),
		strconv.FormatFloat(float64(block.Timestamp), 'f', -1, 64),
		strconv.FormatInt(block.Proof, 10),
		block.PreviousHash,
		strconv.Itoa(len(block.Transactions)),
	})
	if err != nil {
		return errors.WithMessagef(err, "failed to write block %d", block.Index)
	}

	for i, tx := range block.Transactions {
		err := writeRow(h.txWriter, []string{
			strconv.FormatUint(block.Index, 10),
			strconv.Itoa(i),
			tx.ProductID,
			tx.ProductName,
			tx.Sender,
			tx.Recipient,
			tx.Location,
			string(tx.Status),
		})
		if err != nil {
			return errors.WithMessagef(err, "failed to write transaction %d of block %d", i, block.Index)
		}
	}
	return nil
}

func (h *TSVOutputHandler) Close() error {
	h.mu.Lock()
	defer h.mu.Unlock()

	if err := h.blockWriter.Flush(); err != nil {
		slog.Error("failed to flush block writer", "error", err)
		return err
	}
	if err := h.txWriter.Flush(); err != nil {
		slog.Error("failed to flush tx writer", "error", err)
		return err
	}
	if err := h.blockFile.Close(); err != nil {
		slog.Error("failed to close block file", "error", err)
		return err
	}
	if err := h.txFile.Close(); err != nil {
		slog.Error("failed to close tx file", "error", err)
		return err
	}
	return nil
}

var fieldEscaper = strings.NewReplacer("\t", " ", "\n", " ", "\r", " ")

func writeRow(w *bufio.Writer, fields []string) error {
	escaped := make([]string, len(fields))
	for i, f := range fields {
		escaped[i] = fieldEscaper.Replace(f)
	}
	_, err := w.WriteString(strings.Join(escaped, "\t") + "\n")
	return err
}
