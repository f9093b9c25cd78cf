// Package console implements the terminal view and the interactive command loop.
package console

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/liftedinit/custody/internal/models"
	"github.com/liftedinit/custody/internal/notify"
	"github.com/liftedinit/custody/internal/render"
)

type Format string

const (
	FormatText Format = "text"
	FormatJSON Format = "json"
)

func ParseFormat(s string) (Format, error) {
	switch Format(s) {
	case FormatText, FormatJSON:
		return Format(s), nil
	default:
		return "", fmt.Errorf("invalid output format: %s. Valid formats are: %s, %s", s, FormatText, FormatJSON)
	}
}

// TerminalView writes every region update to a single writer. Writes are serialized so updates
// from concurrent actions never interleave.
type TerminalView struct {
	mu     sync.Mutex
	out    io.Writer
	format Format
	form   models.TransactionRequest
	seen   map[string]struct{}
}

func NewTerminalView(out io.Writer, format Format) *TerminalView {
	return &TerminalView{out: out, format: format, seen: make(map[string]struct{})}
}

type regionUpdate struct {
	Region string      `json:"region"`
	Data   interface{} `json:"data"`
}

func (v *TerminalView) emit(region string, data interface{}, text func(b *strings.Builder)) {
	v.mu.Lock()
	defer v.mu.Unlock()

	if v.format == FormatJSON {
		_ = json.NewEncoder(v.out).Encode(regionUpdate{Region: region, Data: data})
		return
	}
	var b strings.Builder
	text(&b)
	_, _ = io.WriteString(v.out, b.String())
}

func (v *TerminalView) ShowStats(s render.StatsView) {
	v.emit("stats", s, func(b *strings.Builder) {
		fmt.Fprintf(b, "Blocks: %d  Transactions: %d  Products: %d  Pending: %d\n",
			s.TotalBlocks, s.TotalTransactions, s.TotalProducts, s.PendingTransactions)
	})
}

func (v *TerminalView) ShowChain(c render.ChainView) {
	v.emit("chain", c, func(b *strings.Builder) {
		if c.Empty {
			fmt.Fprintln(b, c.Message)
			return
		}
		for _, block := range c.Blocks {
			fmt.Fprintf(b, "Block #%d\n", block.Index)
			fmt.Fprintf(b, "  Time: %s\n", block.Time)
			fmt.Fprintf(b, "  Proof: %d\n", block.Proof)
			fmt.Fprintf(b, "  Previous Hash: %s\n", block.PreviousHash)
			fmt.Fprintf(b, "  Transactions: %d\n", block.TransactionCount)
			for _, tx := range block.Transactions {
				writeTransaction(b, "    ", tx)
			}
		}
	})
}

func (v *TerminalView) ShowChainError(msg string) {
	v.emit("chain", map[string]string{"error": msg}, func(b *strings.Builder) {
		fmt.Fprintln(b, msg)
	})
}

func (v *TerminalView) ShowHistoryLoading() {
	v.emit("history", map[string]bool{"loading": true}, func(b *strings.Builder) {
		fmt.Fprintln(b, "Loading...")
	})
}

func (v *TerminalView) ShowHistory(h render.HistoryView) {
	v.emit("history", h, func(b *strings.Builder) {
		if h.Empty {
			fmt.Fprintln(b, h.Message)
			return
		}
		for _, item := range h.Items {
			fmt.Fprintln(b, item.Header)
			writeTransaction(b, "  ", item.Transaction)
		}
	})
}

func (v *TerminalView) ShowHistoryError(msg string) {
	v.emit("history", map[string]string{"error": msg}, func(b *strings.Builder) {
		fmt.Fprintln(b, msg)
	})
}

func (v *TerminalView) ShowValidity(val render.ValidityView) {
	v.emit("validity", val, func(b *strings.Builder) {
		fmt.Fprintln(b, val.Text)
	})
}

func (v *TerminalView) ShowProducts(p render.ProductsView) {
	v.emit("products", p, func(b *strings.Builder) {
		if p.Empty {
			fmt.Fprintln(b, p.Message)
			return
		}
		for _, id := range p.Products {
			fmt.Fprintln(b, id)
		}
	})
}

// ClearForm resets the draft transaction.
func (v *TerminalView) ClearForm() {
	v.mu.Lock()
	v.form = models.TransactionRequest{}
	v.mu.Unlock()

	v.emit("form", map[string]bool{"cleared": true}, func(b *strings.Builder) {
		fmt.Fprintln(b, "Form cleared.")
	})
}

func (v *TerminalView) SetMineControl(enabled bool, label string) {
	v.emit("mine", map[string]interface{}{"enabled": enabled, "label": label}, func(b *strings.Builder) {
		if enabled {
			fmt.Fprintf(b, "[%s]\n", label)
		} else {
			fmt.Fprintf(b, "[%s] (disabled)\n", label)
		}
	})
}

// ShowNotifications prints the notifications that were not shown before. In JSON mode the whole
// active set is emitted on every change, expiries included.
func (v *TerminalView) ShowNotifications(active []notify.Notification) {
	v.mu.Lock()
	defer v.mu.Unlock()

	if v.format == FormatJSON {
		if active == nil {
			active = []notify.Notification{}
		}
		_ = json.NewEncoder(v.out).Encode(regionUpdate{Region: "notifications", Data: active})
		return
	}

	// Active is newest first; print oldest first.
	current := make(map[string]struct{}, len(active))
	for i := len(active) - 1; i >= 0; i-- {
		n := active[i]
		current[n.ID] = struct{}{}
		if _, ok := v.seen[n.ID]; ok {
			continue
		}
		fmt.Fprintf(v.out, "[%s] %s\n", n.Kind, n.Text)
	}
	v.seen = current
}

// Form returns a copy of the draft transaction.
func (v *TerminalView) Form() models.TransactionRequest {
	v.mu.Lock()
	defer v.mu.Unlock()
	form := v.form
	if form.Metadata != nil {
		form.Metadata = cloneMetadata(form.Metadata)
	}
	return form
}

// SetField sets one draft field by its JSON name.
func (v *TerminalView) SetField(name, value string) error {
	v.mu.Lock()
	defer v.mu.Unlock()

	switch name {
	case "sender":
		v.form.Sender = value
	case "recipient":
		v.form.Recipient = value
	case "product_id":
		v.form.ProductID = value
	case "product_name":
		v.form.ProductName = value
	case "location":
		v.form.Location = value
	case "status":
		v.form.Status = models.Status(value)
	default:
		if key, ok := strings.CutPrefix(name, "metadata."); ok && key != "" {
			if v.form.Metadata == nil {
				v.form.Metadata = make(map[string]interface{})
			}
			v.form.Metadata[key] = value
			return nil
		}
		return fmt.Errorf("unknown field %q", name)
	}
	return nil
}

// Print writes a free-form line, serialized with region updates.
func (v *TerminalView) Print(format string, args ...interface{}) {
	msg := fmt.Sprintf(format, args...)
	v.emit("message", map[string]string{"text": msg}, func(b *strings.Builder) {
		fmt.Fprintln(b, msg)
	})
}

func writeTransaction(b *strings.Builder, indent string, tx render.TransactionView) {
	fmt.Fprintf(b, "%s%s [%s]\n", indent, tx.Header, tx.Status)
	fmt.Fprintf(b, "%s  From: %s  To: %s  Location: %s\n", indent, tx.Sender, tx.Recipient, tx.Location)
}

func cloneMetadata(m map[string]interface{}) map[string]interface{} {
	out := make(map[string]interface{}, len(m))
	for k, val := range m {
		out[k] = val
	}
	return out
}
