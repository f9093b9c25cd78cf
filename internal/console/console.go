package console

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"sync"

	"github.com/liftedinit/custody/internal/controller"
)

const helpText = `Commands:
  refresh               reload stats and chain
  stats                 reload stats
  chain                 reload chain
  mine                  mine a block
  track <product-id>    show a product's custody history
  set <field>=<value>   set a form field (sender, recipient, product_id, product_name, location, status, metadata.<key>)
  form                  show the form
  submit                submit the form as a new transaction
  validate              ask the ledger whether its chain is valid
  products              list product ids
  help                  show this help
  quit                  exit`

// Console reads commands line by line and dispatches them to the controller. Network actions
// run on their own goroutine so an outstanding mine does not block the prompt.
type Console struct {
	ctrl *controller.Controller
	view *TerminalView
	in   io.Reader
	wg   sync.WaitGroup
}

func New(ctrl *controller.Controller, view *TerminalView, in io.Reader) *Console {
	return &Console{ctrl: ctrl, view: view, in: in}
}

// Run performs the initial refresh and serves commands until quit, end of input or context
// cancellation. It waits for in-flight actions before returning.
func (c *Console) Run(ctx context.Context) error {
	defer c.wg.Wait()

	c.dispatch(ctx, "refresh", c.ctrl.Refresh)

	lines := make(chan string)
	scanErr := make(chan error, 1)
	go func() {
		defer close(lines)
		scanner := bufio.NewScanner(c.in)
		for scanner.Scan() {
			select {
			case lines <- scanner.Text():
			case <-ctx.Done():
				return
			}
		}
		scanErr <- scanner.Err()
	}()

	for {
		select {
		case <-ctx.Done():
			return nil
		case line, ok := <-lines:
			if !ok {
				select {
				case err := <-scanErr:
					if err != nil {
						return fmt.Errorf("failed to read input: %w", err)
					}
				default:
				}
				return nil
			}
			if quit := c.handle(ctx, line); quit {
				return nil
			}
		}
	}
}

func (c *Console) handle(ctx context.Context, line string) bool {
	cmd, arg, _ := strings.Cut(strings.TrimSpace(line), " ")
	arg = strings.TrimSpace(arg)

	switch cmd {
	case "":
	case "quit", "exit":
		return true
	case "help":
		c.view.Print("%s", helpText)
	case "refresh":
		c.dispatch(ctx, cmd, c.ctrl.Refresh)
	case "stats":
		c.dispatch(ctx, cmd, c.ctrl.LoadStats)
	case "chain":
		c.dispatch(ctx, cmd, c.ctrl.LoadChain)
	case "mine":
		c.dispatch(ctx, cmd, c.ctrl.Mine)
	case "track":
		c.dispatch(ctx, cmd, func(ctx context.Context) error {
			return c.ctrl.TrackProduct(ctx, arg)
		})
	case "validate":
		c.dispatch(ctx, cmd, c.ctrl.ValidateChain)
	case "products":
		c.dispatch(ctx, cmd, c.ctrl.ListProducts)
	case "set":
		name, value, ok := strings.Cut(arg, "=")
		if !ok {
			c.view.Print("usage: set <field>=<value>")
			return false
		}
		if err := c.view.SetField(strings.TrimSpace(name), strings.TrimSpace(value)); err != nil {
			c.view.Print("%v", err)
		}
	case "form":
		form := c.view.Form()
		c.view.Print("sender=%s recipient=%s product_id=%s product_name=%s location=%s status=%s",
			form.Sender, form.Recipient, form.ProductID, form.ProductName, form.Location, form.Status)
	case "submit":
		form := c.view.Form()
		c.dispatch(ctx, cmd, func(ctx context.Context) error {
			return c.ctrl.SubmitTransaction(ctx, form)
		})
	default:
		c.view.Print("unknown command %q, type help for a list of commands", cmd)
	}
	return false
}

func (c *Console) dispatch(ctx context.Context, name string, action func(context.Context) error) {
	c.wg.Add(1)
	go func() {
		defer c.wg.Done()
		if err := action(ctx); err != nil {
			if errors.Is(err, controller.ErrMineInProgress) {
				c.view.Print("%s", err)
				return
			}
			slog.Debug("Command failed", "command", name, "error", err)
		}
	}()
}
