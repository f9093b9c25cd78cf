// Package controller orchestrates user actions: it calls the ledger, feeds results to the
// renderer and reconstructor, and drives the view. Every action is safe to call concurrently
// with any other; only mining is guarded against overlapping with itself.
package controller

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"reflect"
	"strings"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
	"golang.org/x/sync/errgroup"

	"github.com/liftedinit/custody/internal/client"
	"github.com/liftedinit/custody/internal/models"
	"github.com/liftedinit/custody/internal/notify"
	"github.com/liftedinit/custody/internal/provenance"
	"github.com/liftedinit/custody/internal/render"
)

// ErrMineInProgress is returned when a mine request is already outstanding.
var ErrMineInProgress = errors.New("mining already in progress")

// Controller runs user actions against a ledger and reports their outcome to a View.
type Controller struct {
	ledger       Ledger
	view         View
	observer     Observer
	notes        *notify.Queue
	validate     *validator.Validate
	loc          *time.Location
	clock        notify.Clock
	ttl          time.Duration
	localHistory bool

	mineMu sync.Mutex
	mining bool
}

// Option configures a Controller.
type Option func(*Controller)

// WithObserver reports the phase of every action to o.
func WithObserver(o Observer) Option {
	return func(c *Controller) { c.observer = o }
}

// WithLocation sets the time zone used to display timestamps. Defaults to time.Local.
func WithLocation(loc *time.Location) Option {
	return func(c *Controller) { c.loc = loc }
}

// WithClock sets the clock that expires notifications.
func WithClock(clock notify.Clock) Option {
	return func(c *Controller) { c.clock = clock }
}

// WithMessageTTL sets how long notifications stay visible.
func WithMessageTTL(ttl time.Duration) Option {
	return func(c *Controller) { c.ttl = ttl }
}

// WithLocalHistory makes TrackProduct fetch the chain and reconstruct the history locally
// instead of asking the ledger for the filtered history.
func WithLocalHistory(enabled bool) Option {
	return func(c *Controller) { c.localHistory = enabled }
}

// New creates a Controller. The view must be safe for concurrent use.
func New(ledger Ledger, view View, opts ...Option) *Controller {
	c := &Controller{
		ledger:   ledger,
		view:     view,
		observer: nopObserver{},
		validate: newValidator(),
		loc:      time.Local,
		clock:    notify.SystemClock,
		ttl:      notify.DefaultTTL,
	}
	for _, opt := range opts {
		opt(c)
	}
	c.notes = notify.NewQueue(c.clock, c.ttl, view.ShowNotifications)
	return c
}

// Notifications returns the notification queue backing the view's message area.
func (c *Controller) Notifications() *notify.Queue {
	return c.notes
}

// Close cancels pending notification expiries.
func (c *Controller) Close() {
	c.notes.Close()
}

// LoadStats updates the stats region. Failures are only logged; the region keeps its content.
func (c *Controller) LoadStats(ctx context.Context) error {
	c.begin(ActionLoadStats)
	stats, err := c.ledger.GetStats(ctx)
	if err != nil {
		slog.Error("Error loading stats", "error", err)
		return c.end(ActionLoadStats, err)
	}
	c.view.ShowStats(render.Stats(*stats))
	return c.end(ActionLoadStats, nil)
}

// LoadChain re-renders the whole chain region, or replaces it with an error placeholder.
func (c *Controller) LoadChain(ctx context.Context) error {
	c.begin(ActionLoadChain)
	chain, err := c.ledger.GetChain(ctx)
	if err != nil {
		slog.Error("Error loading blockchain", "error", err)
		c.view.ShowChainError(ChainErrorMessage)
		return c.end(ActionLoadChain, err)
	}
	c.view.ShowChain(render.Chain(chain, c.loc))
	return c.end(ActionLoadChain, nil)
}

// Refresh loads stats and chain concurrently. Completion order is not defined.
func (c *Controller) Refresh(ctx context.Context) error {
	var g errgroup.Group
	g.Go(func() error { return c.LoadStats(ctx) })
	g.Go(func() error { return c.LoadChain(ctx) })
	return g.Wait()
}

// SubmitTransaction sends a new custody event. On success the form is cleared and the stats
// are reloaded before returning; on failure the form is left as is.
func (c *Controller) SubmitTransaction(ctx context.Context, req models.TransactionRequest) error {
	c.begin(ActionSubmit)

	if err := c.validate.Struct(req); err != nil {
		missing := missingFields(err)
		c.notes.Push(notify.Error, "Error: missing required fields: "+strings.Join(missing, ", "))
		return c.end(ActionSubmit, fmt.Errorf("invalid transaction: %w", err))
	}

	if _, err := c.ledger.SubmitTransaction(ctx, req); err != nil {
		slog.Error("Error submitting transaction", "error", err)
		if rejection, ok := client.IsRejection(err); ok {
			reason := rejection.Message
			if reason == "" {
				reason = SubmitFallbackMessage
			}
			c.notes.Push(notify.Error, "Error: "+reason)
		} else {
			c.notes.Push(notify.Error, SubmitUnreachableMessage)
		}
		return c.end(ActionSubmit, err)
	}

	c.notes.Push(notify.Success, SubmitSuccessMessage)
	c.view.ClearForm()
	c.end(ActionSubmit, nil)

	// A stats failure is logged by LoadStats and does not undo the submission.
	_ = c.LoadStats(ctx)
	return nil
}

// TrackProduct replaces the history region with the product's custody history. A blank id
// renders the no-history state without contacting the ledger.
func (c *Controller) TrackProduct(ctx context.Context, productID string) error {
	c.begin(ActionTrack)

	productID = strings.TrimSpace(productID)
	if productID == "" {
		c.view.ShowHistory(render.History(nil, c.loc))
		return c.end(ActionTrack, nil)
	}

	c.view.ShowHistoryLoading()
	history, err := c.history(ctx, productID)
	if err != nil {
		slog.Error("Error tracking product", "product_id", productID, "error", err)
		c.view.ShowHistoryError(HistoryErrorMessage)
		return c.end(ActionTrack, err)
	}
	c.view.ShowHistory(render.History(history, c.loc))
	return c.end(ActionTrack, nil)
}

func (c *Controller) history(ctx context.Context, productID string) ([]models.HistoryEntry, error) {
	if !c.localHistory {
		return c.ledger.GetProductHistory(ctx, productID)
	}
	chain, err := c.ledger.GetChain(ctx)
	if err != nil {
		return nil, err
	}
	return provenance.Reconstruct(productID, chain), nil
}

// Mine asks the ledger to forge a block. The mine control is disabled while the request is
// outstanding; a second call in that window returns ErrMineInProgress without a request.
func (c *Controller) Mine(ctx context.Context) error {
	if !c.acquireMine() {
		return ErrMineInProgress
	}
	c.begin(ActionMine)

	_, err := c.ledger.Mine(ctx)
	c.releaseMine()

	if err != nil {
		slog.Error("Error mining", "error", err)
		if _, ok := client.IsRejection(err); ok {
			c.notes.Push(notify.Error, MineRejectedMessage)
		} else {
			c.notes.Push(notify.Error, UnreachableMessage)
		}
		return c.end(ActionMine, err)
	}

	c.notes.Push(notify.Success, MineSuccessMessage)
	c.end(ActionMine, nil)

	// Region failures are rendered by the loaders themselves.
	_ = c.Refresh(ctx)
	return nil
}

func (c *Controller) acquireMine() bool {
	c.mineMu.Lock()
	defer c.mineMu.Unlock()
	if c.mining {
		return false
	}
	c.mining = true
	c.view.SetMineControl(false, MineBusyLabel)
	return true
}

func (c *Controller) releaseMine() {
	c.mineMu.Lock()
	defer c.mineMu.Unlock()
	c.mining = false
	c.view.SetMineControl(true, MineIdleLabel)
}

// Mining reports whether a mine request is outstanding.
func (c *Controller) Mining() bool {
	c.mineMu.Lock()
	defer c.mineMu.Unlock()
	return c.mining
}

// ValidateChain shows the ledger's own verdict on its chain. Nothing is verified locally.
func (c *Controller) ValidateChain(ctx context.Context) error {
	c.begin(ActionValidate)
	validity, err := c.ledger.ValidateChain(ctx)
	if err != nil {
		c.pushFailure(err, ValidateRejectedMessage)
		return c.end(ActionValidate, err)
	}
	c.view.ShowValidity(render.Validity(*validity))
	return c.end(ActionValidate, nil)
}

func (c *Controller) ListProducts(ctx context.Context) error {
	c.begin(ActionProducts)
	products, err := c.ledger.ListProducts(ctx)
	if err != nil {
		c.pushFailure(err, ProductsRejectedMessage)
		return c.end(ActionProducts, err)
	}
	c.view.ShowProducts(render.Products(products))
	return c.end(ActionProducts, nil)
}

func (c *Controller) pushFailure(err error, rejected string) {
	slog.Error(rejected, "error", err)
	if _, ok := client.IsRejection(err); ok {
		c.notes.Push(notify.Error, rejected)
		return
	}
	c.notes.Push(notify.Error, UnreachableMessage)
}

func (c *Controller) begin(action Action) {
	c.observer.PhaseChanged(action, PhaseLoading)
}

func (c *Controller) end(action Action, err error) error {
	if err != nil {
		c.observer.PhaseChanged(action, PhaseError)
	} else {
		c.observer.PhaseChanged(action, PhaseSuccess)
	}
	c.observer.PhaseChanged(action, PhaseIdle)
	return err
}

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

func missingFields(err error) []string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return []string{err.Error()}
	}
	fields := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		fields = append(fields, fe.Field())
	}
	return fields
}
