package output

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/liftedinit/custody/internal/config"
	"github.com/liftedinit/custody/internal/models"
)

type JSONOutputHandler struct {
	blockDir string
	indent   bool
}

func NewJSONOutputHandler(cfg config.JSONConfig) (*JSONOutputHandler, error) {
	blockDir := filepath.Join(cfg.Output, "block")

	err := os.MkdirAll(blockDir, 0755)
	if err != nil {
		return nil, fmt.Errorf("failed to create blocks directory: %w", err)
	}

	return &JSONOutputHandler{
		blockDir: blockDir,
		indent:   cfg.Indent,
	}, nil
}

// BlockFileName is the name of the file holding the block with the given index.
func BlockFileName(index uint64) string {
	return fmt.Sprintf("block_%010d.json", index)
}

// WriteBlock writes the block, transactions included, to its own file.
func (h *JSONOutputHandler) WriteBlock(_ context.Context, block *models.Block) error {
	var data []byte
	var err error
	if h.indent {
		data, err = json.MarshalIndent(block, "", "  ")
	} else {
		data, err = json.Marshal(block)
	}
	if err != nil {
		return fmt.Errorf("failed to marshal block %d: %w", block.Index, err)
	}

	filePath := filepath.Join(h.blockDir, BlockFileName(block.Index))
	if err := os.WriteFile(filePath, data, 0644); err != nil {
		return fmt.Errorf("failed to write block: %w", err)
	}
	return nil
}

func (h *JSONOutputHandler) Close() error {
	return nil
}
