package controller_test

import (
	"sync"

	"github.com/liftedinit/custody/internal/notify"
	"github.com/liftedinit/custody/internal/render"
)

type mineControl struct {
	enabled bool
	label   string
}

// recordingView records every region update.
type recordingView struct {
	mu             sync.Mutex
	stats          []render.StatsView
	chains         []render.ChainView
	chainErrors    []string
	historyLoading int
	histories      []render.HistoryView
	historyErrors  []string
	validity       []render.ValidityView
	products       []render.ProductsView
	formCleared    int
	mineControls   []mineControl
	notifications  []notify.Notification
}

func (v *recordingView) ShowStats(s render.StatsView) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.stats = append(v.stats, s)
}

func (v *recordingView) ShowChain(c render.ChainView) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.chains = append(v.chains, c)
}

func (v *recordingView) ShowChainError(msg string) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.chainErrors = append(v.chainErrors, msg)
}

func (v *recordingView) ShowHistoryLoading() {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.historyLoading++
}

func (v *recordingView) ShowHistory(h render.HistoryView) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.histories = append(v.histories, h)
}

func (v *recordingView) ShowHistoryError(msg string) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.historyErrors = append(v.historyErrors, msg)
}

func (v *recordingView) ShowValidity(val render.ValidityView) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.validity = append(v.validity, val)
}

func (v *recordingView) ShowProducts(p render.ProductsView) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.products = append(v.products, p)
}

func (v *recordingView) ClearForm() {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.formCleared++
}

func (v *recordingView) SetMineControl(enabled bool, label string) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.mineControls = append(v.mineControls, mineControl{enabled: enabled, label: label})
}

func (v *recordingView) ShowNotifications(active []notify.Notification) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.notifications = active
}

func (v *recordingView) texts() []string {
	v.mu.Lock()
	defer v.mu.Unlock()
	out := make([]string, 0, len(v.notifications))
	for _, n := range v.notifications {
		out = append(out, n.Text)
	}
	return out
}

func (v *recordingView) lastMineControl() mineControl {
	v.mu.Lock()
	defer v.mu.Unlock()
	if len(v.mineControls) == 0 {
		return mineControl{enabled: true, label: "Mine Block"}
	}
	return v.mineControls[len(v.mineControls)-1]
}
