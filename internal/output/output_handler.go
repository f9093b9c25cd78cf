package output

import (
	"context"

	"github.com/liftedinit/custody/internal/models"
)

// OutputHandler receives one block at a time. Implementations must accept concurrent calls.
type OutputHandler interface {
	WriteBlock(ctx context.Context, block *models.Block) error
	Close() error
}

// ResumableOutputHandler knows the last block it stored, so an export can continue after it.
type ResumableOutputHandler interface {
	OutputHandler
	// GetLatestBlockIndex returns false when nothing was stored yet.
	GetLatestBlockIndex(ctx context.Context) (uint64, bool, error)
}
