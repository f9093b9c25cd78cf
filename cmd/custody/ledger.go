package custody

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/liftedinit/custody/internal/models"
)

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show ledger statistics",
	Args:  cobra.NoArgs,
	RunE: runAction(func(s *session, ctx context.Context, _ []string) error {
		return s.ctrl.LoadStats(ctx)
	}),
}

var chainCmd = &cobra.Command{
	Use:   "chain",
	Short: "Show every block of the chain",
	Args:  cobra.NoArgs,
	RunE: runAction(func(s *session, ctx context.Context, _ []string) error {
		return s.ctrl.LoadChain(ctx)
	}),
}

var refreshCmd = &cobra.Command{
	Use:   "refresh",
	Short: "Show ledger statistics and the chain",
	Args:  cobra.NoArgs,
	RunE: runAction(func(s *session, ctx context.Context, _ []string) error {
		return s.ctrl.Refresh(ctx)
	}),
}

var trackCmd = &cobra.Command{
	Use:   "track [product-id]",
	Short: "Show the custody history of a product",
	Args:  cobra.ExactArgs(1),
	RunE: runAction(func(s *session, ctx context.Context, args []string) error {
		return s.ctrl.TrackProduct(ctx, args[0])
	}),
}

var mineCmd = &cobra.Command{
	Use:   "mine",
	Short: "Ask the ledger to mine the pending transactions into a block",
	Args:  cobra.NoArgs,
	RunE: runAction(func(s *session, ctx context.Context, _ []string) error {
		return s.ctrl.Mine(ctx)
	}),
}

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Show the ledger's verdict on its own chain",
	Args:  cobra.NoArgs,
	RunE: runAction(func(s *session, ctx context.Context, _ []string) error {
		return s.ctrl.ValidateChain(ctx)
	}),
}

var productsCmd = &cobra.Command{
	Use:   "products",
	Short: "List the product ids recorded on the chain",
	Args:  cobra.NoArgs,
	RunE: runAction(func(s *session, ctx context.Context, _ []string) error {
		return s.ctrl.ListProducts(ctx)
	}),
}

var healthCmd = &cobra.Command{
	Use:   "health",
	Short: "Check that the ledger service is up",
	Args:  cobra.NoArgs,
	RunE: runAction(func(s *session, ctx context.Context, _ []string) error {
		health, err := s.client.Health(ctx)
		if err != nil {
			return err
		}
		s.view.Print("%s: %s", health.Service, health.Status)
		return nil
	}),
}

var SubmitCmd = &cobra.Command{
	Use:   "submit",
	Short: "Submit a custody transaction",
	Long:  `Submit a custody transaction. It is added to the next mined block.`,
	Args:  cobra.NoArgs,
	RunE: runAction(func(s *session, ctx context.Context, _ []string) error {
		req, err := transactionFromFlags()
		if err != nil {
			return err
		}
		return s.ctrl.SubmitTransaction(ctx, req)
	}),
}

func transactionFromFlags() (models.TransactionRequest, error) {
	req := models.TransactionRequest{
		Sender:      viper.GetString("sender"),
		Recipient:   viper.GetString("recipient"),
		ProductID:   viper.GetString("product-id"),
		ProductName: viper.GetString("product-name"),
		Location:    viper.GetString("location"),
		Status:      models.Status(viper.GetString("status")),
	}
	if raw := viper.GetString("metadata"); raw != "" {
		if err := json.Unmarshal([]byte(raw), &req.Metadata); err != nil {
			return req, fmt.Errorf("invalid metadata: %w", err)
		}
	}
	return req, nil
}

func init() {
	SubmitCmd.Flags().String("sender", "", "Party handing the product over")
	SubmitCmd.Flags().String("recipient", "", "Party receiving the product")
	SubmitCmd.Flags().String("product-id", "", "Product identifier")
	SubmitCmd.Flags().String("product-name", "", "Human-readable product name")
	SubmitCmd.Flags().String("location", "", "Where the event happened")
	SubmitCmd.Flags().String("status", string(models.StatusInTransit), "Custody status (in-transit|delivered|received)")
	SubmitCmd.Flags().String("metadata", "", "Optional JSON object attached to the transaction")

	if err := viper.BindPFlags(SubmitCmd.Flags()); err != nil {
		slog.Error("Failed to bind SubmitCmd flags", "error", err)
	}
}
