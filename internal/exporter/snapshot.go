package exporter

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/liftedinit/custody/internal/models"
)

// SnapshotSource reads a chain back from a JSON export directory, so a snapshot can be converted
// to another output without contacting the ledger.
type SnapshotSource struct {
	Dir string
}

func (s SnapshotSource) GetChain(_ context.Context) (models.Chain, error) {
	blocksDir := filepath.Join(s.Dir, "block")
	entries, err := os.ReadDir(blocksDir)
	if err != nil {
		return nil, fmt.Errorf("failed to read blocks directory: %w", err)
	}

	chain := models.Chain{}
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || !strings.HasPrefix(name, "block_") || !strings.HasSuffix(name, ".json") {
			continue
		}

		data, err := os.ReadFile(filepath.Join(blocksDir, name))
		if err != nil {
			return nil, fmt.Errorf("failed to read block file '%s': %w", name, err)
		}

		var block models.Block
		if err := json.Unmarshal(data, &block); err != nil {
			return nil, fmt.Errorf("failed to decode block file '%s': %w", name, err)
		}
		chain = append(chain, block)
	}

	sort.Slice(chain, func(i, j int) bool { return chain[i].Index < chain[j].Index })
	return chain, nil
}
