package exporter

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/schollz/progressbar/v3"
	"golang.org/x/sync/errgroup"

	"github.com/liftedinit/custody/internal/config"
	"github.com/liftedinit/custody/internal/models"
	"github.com/liftedinit/custody/internal/output"
)

// ChainSource provides the chain to export.
type ChainSource interface {
	GetChain(ctx context.Context) (models.Chain, error)
}

type Options struct {
	// Resume skips blocks at or below the latest block the handler already stored.
	Resume bool
	// Progress receives the progress bar. Nil disables it.
	Progress io.Writer
}

// Export fetches the chain once and writes the blocks within the configured range to the handler.
// It returns the number of blocks written.
func Export(ctx context.Context, source ChainSource, handler output.OutputHandler, cfg config.ExportConfig, opts Options) (int, error) {
	if err := cfg.Validate(); err != nil {
		return 0, fmt.Errorf("invalid export configuration: %w", err)
	}

	chain, err := source.GetChain(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to get chain: %w", err)
	}

	if opts.Resume {
		if err := resumeStart(ctx, handler, &cfg); err != nil {
			return 0, err
		}
	}

	blocks := selectBlocks(chain, cfg.BlockStart, cfg.BlockStop)
	if len(blocks) == 0 {
		slog.Info("Nothing to export", "start", cfg.BlockStart, "stop", cfg.BlockStop, "length", len(chain))
		return 0, nil
	}

	slog.Info("Exporting blocks", "range", fmt.Sprintf("[%d, %d]", blocks[0].Index, blocks[len(blocks)-1].Index), "count", len(blocks))

	var bar *progressbar.ProgressBar
	if opts.Progress != nil && len(blocks) > 1 {
		bar = progressbar.NewOptions(
			len(blocks),
			progressbar.OptionSetWriter(opts.Progress),
			progressbar.OptionClearOnFinish(),
			progressbar.OptionSetDescription("Exporting blocks..."),
			progressbar.OptionShowCount(),
			progressbar.OptionShowIts(),
			progressbar.OptionSetTheme(progressbar.Theme{
				Saucer:        "=",
				SaucerHead:    ">",
				SaucerPadding: " ",
				BarStart:      "[",
				BarEnd:        "]",
			}),
		)
		if err := bar.RenderBlank(); err != nil {
			return 0, fmt.Errorf("failed to render progress bar: %w", err)
		}
	}

	if err := writeBlocks(ctx, blocks, handler, cfg.MaxConcurrency, bar); err != nil {
		return 0, fmt.Errorf("failed to export blocks: %w", err)
	}

	if bar != nil {
		if err := bar.Finish(); err != nil {
			return 0, fmt.Errorf("failed to finish progress bar: %w", err)
		}
	}

	return len(blocks), nil
}

func resumeStart(ctx context.Context, handler output.OutputHandler, cfg *config.ExportConfig) error {
	resumable, ok := handler.(output.ResumableOutputHandler)
	if !ok {
		return errors.New("output does not support resuming")
	}
	latest, found, err := resumable.GetLatestBlockIndex(ctx)
	if err != nil {
		return fmt.Errorf("failed to get the latest block: %w", err)
	}
	if found && latest+1 > cfg.BlockStart {
		slog.Info("Resuming export", "latest", latest)
		cfg.BlockStart = latest + 1
	}
	return nil
}

// selectBlocks keeps blocks with start <= index <= stop. A zero stop means no upper bound.
func selectBlocks(chain models.Chain, start, stop uint64) []models.Block {
	var blocks []models.Block
	for _, b := range chain {
		if b.Index < start || (stop != 0 && b.Index > stop) {
			continue
		}
		blocks = append(blocks, b)
	}
	return blocks
}

// writeBlocks writes blocks in parallel, at most maxConcurrency at a time.
func writeBlocks(ctx context.Context, blocks []models.Block, handler output.OutputHandler, maxConcurrency uint, bar *progressbar.ProgressBar) error {
	eg, egCtx := errgroup.WithContext(ctx)
	sem := make(chan struct{}, maxConcurrency)

	for i := range blocks {
		if egCtx.Err() != nil {
			slog.Info("Export cancelled")
			break
		}

		block := &blocks[i]
		sem <- struct{}{}

		eg.Go(func() error {
			defer func() { <-sem }()

			if err := handler.WriteBlock(egCtx, block); err != nil {
				if !errors.Is(err, context.Canceled) {
					slog.Error("Block export error", "index", block.Index, "error", err)
				}
				return err
			}

			if bar != nil {
				if err := bar.Add(1); err != nil {
					slog.Warn("Failed to update progress bar", "error", err)
				}
			}
			return nil
		})
	}

	if err := eg.Wait(); err != nil {
		return err
	}
	// egCtx is always done after Wait.
	return ctx.Err()
}
