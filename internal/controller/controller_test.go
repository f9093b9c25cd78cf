package controller_test

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/liftedinit/custody/internal/client"
	"github.com/liftedinit/custody/internal/config"
	"github.com/liftedinit/custody/internal/controller"
	"github.com/liftedinit/custody/internal/models"
	"github.com/liftedinit/custody/internal/render"
	"github.com/liftedinit/custody/internal/testutil"
)

var epoch = time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

// MockLedger is a mock implementation of controller.Ledger
type MockLedger struct {
	mock.Mock
}

func (m *MockLedger) GetStats(ctx context.Context) (*models.Stats, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Stats), args.Error(1)
}

func (m *MockLedger) GetChain(ctx context.Context) (models.Chain, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(models.Chain), args.Error(1)
}

func (m *MockLedger) SubmitTransaction(ctx context.Context, tx models.TransactionRequest) (*models.SubmitResult, error) {
	args := m.Called(ctx, tx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.SubmitResult), args.Error(1)
}

func (m *MockLedger) GetProductHistory(ctx context.Context, productID string) ([]models.HistoryEntry, error) {
	args := m.Called(ctx, productID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.HistoryEntry), args.Error(1)
}

func (m *MockLedger) Mine(ctx context.Context) (*models.MineResult, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.MineResult), args.Error(1)
}

func (m *MockLedger) ValidateChain(ctx context.Context) (*models.ChainValidity, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.ChainValidity), args.Error(1)
}

func (m *MockLedger) ListProducts(ctx context.Context) ([]string, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]string), args.Error(1)
}

var errUnreachable = &client.TransportError{Method: http.MethodGet, Path: "/", Err: errors.New("connection refused")}

type recordingObserver struct {
	mu     sync.Mutex
	phases map[controller.Action][]controller.Phase
}

func (o *recordingObserver) PhaseChanged(action controller.Action, phase controller.Phase) {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.phases == nil {
		o.phases = make(map[controller.Action][]controller.Phase)
	}
	o.phases[action] = append(o.phases[action], phase)
}

func newWithLedger(t *testing.T, ledger *testutil.FakeLedger, opts ...controller.Option) (*controller.Controller, *recordingView, *testutil.FakeClock) {
	t.Helper()
	c := client.NewLedgerClient(config.LedgerConfig{APIURL: ledger.URL()})
	return newWithClient(t, c, opts...)
}

func newWithClient(t *testing.T, ledger controller.Ledger, opts ...controller.Option) (*controller.Controller, *recordingView, *testutil.FakeClock) {
	t.Helper()
	view := &recordingView{}
	clock := testutil.NewFakeClock(epoch)
	opts = append([]controller.Option{controller.WithClock(clock), controller.WithLocation(time.UTC)}, opts...)
	ctrl := controller.New(ledger, view, opts...)
	t.Cleanup(ctrl.Close)
	return ctrl, view, clock
}

func validRequest() models.TransactionRequest {
	return models.TransactionRequest{
		Sender: "farm", Recipient: "mill", ProductID: "WHEAT-1", ProductName: "Wheat",
		Location: "Kansas", Status: models.StatusInTransit,
	}
}

func TestSubmitTransactionSuccess(t *testing.T) {
	ledger := testutil.NewFakeLedger(t, testutil.Chain(1, nil))
	ctrl, view, _ := newWithLedger(t, ledger)

	require.NoError(t, ctrl.SubmitTransaction(context.Background(), validRequest()))

	assert.Equal(t, 1, view.formCleared)
	assert.Equal(t, []string{controller.SubmitSuccessMessage}, view.texts())
	assert.Equal(t, 1, ledger.Requests("GET /stats"))
	require.Len(t, view.stats, 1)
	assert.Equal(t, 1, view.stats[0].PendingTransactions)
}

func TestSubmitTransactionRejected(t *testing.T) {
	ledger := testutil.NewFakeLedger(t, nil)
	ledger.Override("POST /transactions/new", func(w http.ResponseWriter, r *http.Request) {
		testutil.WriteJSON(w, http.StatusConflict, map[string]string{"message": "duplicate product"})
	})
	ctrl, view, _ := newWithLedger(t, ledger)

	err := ctrl.SubmitTransaction(context.Background(), validRequest())
	require.Error(t, err)

	assert.Equal(t, []string{"Error: duplicate product"}, view.texts())
	assert.Zero(t, view.formCleared)
	assert.Zero(t, ledger.Requests("GET /stats"))
}

func TestSubmitTransactionRejectedWithoutMessage(t *testing.T) {
	ledger := testutil.NewFakeLedger(t, nil)
	ledger.Override("POST /transactions/new", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
	})
	ctrl, view, _ := newWithLedger(t, ledger)

	require.Error(t, ctrl.SubmitTransaction(context.Background(), validRequest()))
	assert.Equal(t, []string{"Error: " + controller.SubmitFallbackMessage}, view.texts())
}

func TestSubmitTransactionUnreachable(t *testing.T) {
	ledger := &MockLedger{}
	ledger.On("SubmitTransaction", mock.Anything, validRequest()).Return(nil, errUnreachable)
	ctrl, view, _ := newWithClient(t, ledger)

	err := ctrl.SubmitTransaction(context.Background(), validRequest())
	require.ErrorIs(t, err, client.ErrUnreachable)
	assert.Equal(t, []string{controller.SubmitUnreachableMessage}, view.texts())
	assert.Zero(t, view.formCleared)
	ledger.AssertExpectations(t)
	ledger.AssertNotCalled(t, "GetStats", mock.Anything)
}

func TestSubmitTransactionMissingFields(t *testing.T) {
	ledger := testutil.NewFakeLedger(t, nil)
	ctrl, view, _ := newWithLedger(t, ledger)

	req := validRequest()
	req.Sender = ""
	req.Location = ""
	err := ctrl.SubmitTransaction(context.Background(), req)
	require.Error(t, err)

	assert.Equal(t, []string{"Error: missing required fields: sender, location"}, view.texts())
	assert.Zero(t, ledger.Requests("POST /transactions/new"))
	assert.Zero(t, view.formCleared)
}

func TestNotificationsExpire(t *testing.T) {
	ledger := testutil.NewFakeLedger(t, nil)
	ctrl, view, clock := newWithLedger(t, ledger)

	require.NoError(t, ctrl.SubmitTransaction(context.Background(), validRequest()))
	clock.Advance(time.Second)
	require.NoError(t, ctrl.SubmitTransaction(context.Background(), validRequest()))
	require.Len(t, view.texts(), 2)

	clock.Advance(4 * time.Second)
	assert.Len(t, view.texts(), 1)
	clock.Advance(time.Second)
	assert.Empty(t, view.texts())
}

func TestMineGuard(t *testing.T) {
	release := make(chan struct{})
	ledger := testutil.NewFakeLedger(t, testutil.Chain(1, nil))
	ledger.Override("GET /mine", func(w http.ResponseWriter, r *http.Request) {
		<-release
		testutil.WriteJSON(w, http.StatusOK, models.MineResult{Message: "New block forged", Index: 1})
	})
	ctrl, view, _ := newWithLedger(t, ledger)
	ctx := context.Background()

	done := make(chan error, 1)
	go func() { done <- ctrl.Mine(ctx) }()

	require.Eventually(t, func() bool { return ledger.Requests("GET /mine") == 1 }, 5*time.Second, 5*time.Millisecond)
	assert.True(t, ctrl.Mining())
	assert.Equal(t, mineControl{enabled: false, label: controller.MineBusyLabel}, view.lastMineControl())

	assert.ErrorIs(t, ctrl.Mine(ctx), controller.ErrMineInProgress)
	assert.ErrorIs(t, ctrl.Mine(ctx), controller.ErrMineInProgress)
	assert.Equal(t, 1, ledger.Requests("GET /mine"))

	close(release)
	require.NoError(t, <-done)
	assert.False(t, ctrl.Mining())
	assert.Equal(t, mineControl{enabled: true, label: controller.MineIdleLabel}, view.lastMineControl())
	assert.Contains(t, view.texts(), controller.MineSuccessMessage)
	assert.Equal(t, 1, ledger.Requests("GET /stats"))
	assert.Equal(t, 1, ledger.Requests("GET /chain"))

	require.NoError(t, ctrl.Mine(ctx))
	assert.Equal(t, 2, ledger.Requests("GET /mine"))
}

func TestMineFailureReenablesControl(t *testing.T) {
	ledger := testutil.NewFakeLedger(t, nil)
	ledger.Override("GET /mine", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	})
	ctrl, view, _ := newWithLedger(t, ledger)

	require.Error(t, ctrl.Mine(context.Background()))
	assert.Equal(t, []mineControl{
		{enabled: false, label: controller.MineBusyLabel},
		{enabled: true, label: controller.MineIdleLabel},
	}, view.mineControls)
	assert.Equal(t, []string{controller.MineRejectedMessage}, view.texts())
	assert.Zero(t, ledger.Requests("GET /chain"))

	require.Error(t, ctrl.Mine(context.Background()))
	assert.Equal(t, 2, ledger.Requests("GET /mine"))
}

func TestMineUnreachable(t *testing.T) {
	ledger := &MockLedger{}
	ledger.On("Mine", mock.Anything).Return(nil, errUnreachable).Once()
	ctrl, view, _ := newWithClient(t, ledger)

	require.ErrorIs(t, ctrl.Mine(context.Background()), client.ErrUnreachable)
	assert.Equal(t, []string{controller.UnreachableMessage}, view.texts())
	assert.False(t, ctrl.Mining())
	ledger.AssertExpectations(t)
}

func TestTrackProductHistoryOrder(t *testing.T) {
	chain := testutil.Chain(9, map[uint64][]models.Transaction{
		1: {testutil.Tx("Q", models.StatusInTransit)},
		2: {testutil.Tx("P", models.StatusInTransit)},
		5: {testutil.Tx("Q", models.StatusDelivered), testutil.Tx("P", models.StatusDelivered)},
		7: {testutil.Tx("P", models.StatusReceived)},
		8: {testutil.Tx("R", models.StatusInTransit)},
	})

	for _, local := range []bool{false, true} {
		ledger := testutil.NewFakeLedger(t, chain)
		ctrl, view, _ := newWithLedger(t, ledger, controller.WithLocalHistory(local))

		require.NoError(t, ctrl.TrackProduct(context.Background(), "  P "))
		assert.Equal(t, 1, view.historyLoading)
		require.Len(t, view.histories, 1)

		h := view.histories[0]
		require.False(t, h.Empty)
		require.Len(t, h.Items, 3)
		assert.Equal(t, []uint64{2, 5, 7}, []uint64{h.Items[0].BlockIndex, h.Items[1].BlockIndex, h.Items[2].BlockIndex})
		assert.Equal(t, "delivered", h.Items[1].Transaction.Status)
		for _, item := range h.Items {
			assert.Equal(t, "P", item.Transaction.ProductID)
		}

		if local {
			assert.Equal(t, 1, ledger.Requests("GET /chain"))
			assert.Zero(t, ledger.Requests("GET /products/{id}/history"))
		} else {
			assert.Equal(t, 1, ledger.Requests("GET /products/{id}/history"))
			assert.Zero(t, ledger.Requests("GET /chain"))
		}
	}
}

func TestTrackProductPreservesReceivedOrder(t *testing.T) {
	entries := []models.HistoryEntry{
		{BlockIndex: 7, Transaction: testutil.Tx("P", models.StatusReceived)},
		{BlockIndex: 2, Transaction: testutil.Tx("P", models.StatusInTransit)},
	}
	ledger := &MockLedger{}
	ledger.On("GetProductHistory", mock.Anything, "P").Return(entries, nil)
	ctrl, view, _ := newWithClient(t, ledger)

	require.NoError(t, ctrl.TrackProduct(context.Background(), "P"))
	require.Len(t, view.histories, 1)
	assert.Equal(t, uint64(7), view.histories[0].Items[0].BlockIndex)
	assert.Equal(t, uint64(2), view.histories[0].Items[1].BlockIndex)
}

func TestTrackProductNoHistory(t *testing.T) {
	ledger := testutil.NewFakeLedger(t, testutil.Chain(3, map[uint64][]models.Transaction{1: {testutil.Tx("Q", models.StatusInTransit)}}))
	ctrl, view, _ := newWithLedger(t, ledger)

	for _, id := range []string{"", "   ", "unknown"} {
		require.NoError(t, ctrl.TrackProduct(context.Background(), id))
	}

	require.Len(t, view.histories, 3)
	for _, h := range view.histories {
		assert.True(t, h.Empty)
		assert.Equal(t, render.NoHistoryMessage, h.Message)
	}
	assert.Empty(t, view.historyErrors)
	assert.Empty(t, view.texts())
	assert.Equal(t, 1, ledger.Requests("GET /products/{id}/history"))
}

func TestTrackProductError(t *testing.T) {
	ledger := &MockLedger{}
	ledger.On("GetProductHistory", mock.Anything, "P").Return(nil, errUnreachable)
	ctrl, view, _ := newWithClient(t, ledger)

	require.Error(t, ctrl.TrackProduct(context.Background(), "P"))
	assert.Equal(t, []string{controller.HistoryErrorMessage}, view.historyErrors)
	assert.Empty(t, view.histories)
}

func TestLoadStatsFailureLeavesStats(t *testing.T) {
	ledger := &MockLedger{}
	ledger.On("GetStats", mock.Anything).Return(&models.Stats{TotalBlocks: 4}, nil).Once()
	ledger.On("GetStats", mock.Anything).Return(nil, errUnreachable).Once()
	ctrl, view, _ := newWithClient(t, ledger)

	require.NoError(t, ctrl.LoadStats(context.Background()))
	require.Error(t, ctrl.LoadStats(context.Background()))

	require.Len(t, view.stats, 1)
	assert.Equal(t, 4, view.stats[0].TotalBlocks)
	assert.Empty(t, view.texts())
}

func TestLoadChain(t *testing.T) {
	ledger := &MockLedger{}
	ledger.On("GetChain", mock.Anything).Return(models.Chain{}, nil).Once()
	ledger.On("GetChain", mock.Anything).Return(testutil.Chain(2, nil), nil).Once()
	ledger.On("GetChain", mock.Anything).Return(nil, errUnreachable).Once()
	ctrl, view, _ := newWithClient(t, ledger)
	ctx := context.Background()

	require.NoError(t, ctrl.LoadChain(ctx))
	require.NoError(t, ctrl.LoadChain(ctx))
	require.Error(t, ctrl.LoadChain(ctx))

	require.Len(t, view.chains, 2)
	assert.True(t, view.chains[0].Empty)
	assert.Len(t, view.chains[1].Blocks, 2)
	assert.Equal(t, []string{controller.ChainErrorMessage}, view.chainErrors)
}

func TestRefresh(t *testing.T) {
	ledger := testutil.NewFakeLedger(t, testutil.Chain(2, nil))
	ctrl, view, _ := newWithLedger(t, ledger)

	require.NoError(t, ctrl.Refresh(context.Background()))
	require.NoError(t, ctrl.Refresh(context.Background()))

	assert.Equal(t, 2, ledger.Requests("GET /stats"))
	assert.Equal(t, 2, ledger.Requests("GET /chain"))
	assert.Len(t, view.stats, 2)
	assert.Len(t, view.chains, 2)
}

func TestValidateAndProducts(t *testing.T) {
	ledger := testutil.NewFakeLedger(t, testutil.Chain(2, map[uint64][]models.Transaction{1: {testutil.Tx("P", models.StatusInTransit)}}))
	ctrl, view, _ := newWithLedger(t, ledger)

	require.NoError(t, ctrl.ValidateChain(context.Background()))
	require.NoError(t, ctrl.ListProducts(context.Background()))

	require.Len(t, view.validity, 1)
	assert.True(t, view.validity[0].Valid)
	require.Len(t, view.products, 1)
	assert.Equal(t, []string{"P"}, view.products[0].Products)

	ledger.Override("GET /chain/valid", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	})
	require.Error(t, ctrl.ValidateChain(context.Background()))
	assert.Equal(t, []string{controller.ValidateRejectedMessage}, view.texts())
}

func TestObserverPhases(t *testing.T) {
	observer := &recordingObserver{}
	ledger := &MockLedger{}
	ledger.On("GetStats", mock.Anything).Return(&models.Stats{}, nil).Once()
	ledger.On("GetChain", mock.Anything).Return(nil, errUnreachable).Once()
	ctrl, _, _ := newWithClient(t, ledger, controller.WithObserver(observer))

	require.Error(t, ctrl.Refresh(context.Background()))

	assert.Equal(t, []controller.Phase{controller.PhaseLoading, controller.PhaseSuccess, controller.PhaseIdle}, observer.phases[controller.ActionLoadStats])
	assert.Equal(t, []controller.Phase{controller.PhaseLoading, controller.PhaseError, controller.PhaseIdle}, observer.phases[controller.ActionLoadChain])
}
