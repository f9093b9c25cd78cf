package testutil

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/liftedinit/custody/internal/models"
)

// FakeLedger is an in-process ledger service speaking the same HTTP/JSON API as the real one.
type FakeLedger struct {
	mu        sync.Mutex
	chain     models.Chain
	pending   []models.Transaction
	requests  map[string]int
	overrides map[string]http.HandlerFunc
	server    *httptest.Server
}

// NewFakeLedger starts a fake ledger seeded with the given chain. The server is closed on test cleanup.
func NewFakeLedger(t *testing.T, chain models.Chain) *FakeLedger {
	t.Helper()

	f := &FakeLedger{
		chain:     chain,
		requests:  make(map[string]int),
		overrides: make(map[string]http.HandlerFunc),
	}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /stats", f.route("GET /stats", f.handleStats))
	mux.HandleFunc("GET /chain", f.route("GET /chain", f.handleChain))
	mux.HandleFunc("GET /chain/valid", f.route("GET /chain/valid", f.handleValid))
	mux.HandleFunc("POST /transactions/new", f.route("POST /transactions/new", f.handleNewTransaction))
	mux.HandleFunc("GET /products", f.route("GET /products", f.handleProducts))
	mux.HandleFunc("GET /products/{id}/history", f.route("GET /products/{id}/history", f.handleHistory))
	mux.HandleFunc("GET /mine", f.route("GET /mine", f.handleMine))
	mux.HandleFunc("GET /health", f.route("GET /health", f.handleHealth))

	f.server = httptest.NewServer(mux)
	t.Cleanup(f.server.Close)
	return f
}

func (f *FakeLedger) URL() string {
	return f.server.URL
}

// Requests returns how many times the route (e.g. "GET /stats") was hit.
func (f *FakeLedger) Requests(route string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.requests[route]
}

// Override replaces the handler of a route.
func (f *FakeLedger) Override(route string, h http.HandlerFunc) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.overrides[route] = h
}

func (f *FakeLedger) Pending() []models.Transaction {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]models.Transaction(nil), f.pending...)
}

func (f *FakeLedger) route(name string, h http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		f.mu.Lock()
		f.requests[name]++
		override := f.overrides[name]
		f.mu.Unlock()

		if override != nil {
			override(w, r)
			return
		}
		h(w, r)
	}
}

// WriteJSON writes a JSON response with the given status.
func WriteJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func (f *FakeLedger) handleStats(w http.ResponseWriter, _ *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()

	products := make(map[string]struct{})
	total := 0
	for _, b := range f.chain {
		total += len(b.Transactions)
		for _, tx := range b.Transactions {
			if tx.ProductID != "" {
				products[tx.ProductID] = struct{}{}
			}
		}
	}
	WriteJSON(w, http.StatusOK, models.Stats{
		TotalBlocks:         len(f.chain),
		TotalTransactions:   total,
		TotalProducts:       len(products),
		PendingTransactions: len(f.pending),
	})
}

func (f *FakeLedger) handleChain(w http.ResponseWriter, _ *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()
	chain := f.chain
	if chain == nil {
		chain = models.Chain{}
	}
	WriteJSON(w, http.StatusOK, map[string]interface{}{"chain": chain, "length": len(chain)})
}

func (f *FakeLedger) handleValid(w http.ResponseWriter, _ *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()
	WriteJSON(w, http.StatusOK, models.ChainValidity{Valid: true, Length: len(f.chain)})
}

func (f *FakeLedger) handleNewTransaction(w http.ResponseWriter, r *http.Request) {
	var req models.TransactionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteJSON(w, http.StatusBadRequest, map[string]string{"error": "Missing required fields"})
		return
	}
	if req.Sender == "" || req.Recipient == "" || req.ProductID == "" || req.ProductName == "" || req.Location == "" || req.Status == "" {
		WriteJSON(w, http.StatusBadRequest, map[string]string{"error": "Missing required fields"})
		return
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	tx := models.Transaction{
		ID:          fmt.Sprintf("tx-%d", len(f.pending)+1),
		Sender:      req.Sender,
		Recipient:   req.Recipient,
		ProductID:   req.ProductID,
		ProductName: req.ProductName,
		Location:    req.Location,
		Status:      req.Status,
		Metadata:    req.Metadata,
	}
	f.pending = append(f.pending, tx)
	WriteJSON(w, http.StatusCreated, models.SubmitResult{
		Message:     fmt.Sprintf("Transaction will be added to Block %d", len(f.chain)+1),
		Transaction: &tx,
	})
}

func (f *FakeLedger) handleProducts(w http.ResponseWriter, _ *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()

	seen := make(map[string]struct{})
	products := []string{}
	for _, b := range f.chain {
		for _, tx := range b.Transactions {
			if _, ok := seen[tx.ProductID]; ok || tx.ProductID == "" {
				continue
			}
			seen[tx.ProductID] = struct{}{}
			products = append(products, tx.ProductID)
		}
	}
	WriteJSON(w, http.StatusOK, map[string]interface{}{"products": products, "count": len(products)})
}

func (f *FakeLedger) handleHistory(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	f.mu.Lock()
	defer f.mu.Unlock()

	history := []models.HistoryEntry{}
	for _, b := range f.chain {
		for _, tx := range b.Transactions {
			if tx.ProductID == id {
				history = append(history, models.HistoryEntry{BlockIndex: b.Index, Timestamp: b.Timestamp, Transaction: tx})
			}
		}
	}
	WriteJSON(w, http.StatusOK, map[string]interface{}{"product_id": id, "history": history, "count": len(history)})
}

func (f *FakeLedger) handleMine(w http.ResponseWriter, _ *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()

	var index uint64
	var ts models.Timestamp = 1700000000
	previous := "1"
	if n := len(f.chain); n > 0 {
		last := f.chain[n-1]
		index = last.Index + 1
		ts = last.Timestamp + 60
		previous = fmt.Sprintf("%064x", last.Index+1)
	}
	txs := append(f.pending, models.Transaction{
		Sender: "0", Recipient: "miner", ProductID: "system", ProductName: "Block Reward", Location: "Network", Status: models.StatusMined,
	})
	block := models.Block{Index: index, Timestamp: ts, Proof: 35293, PreviousHash: previous, Transactions: txs}
	f.chain = append(f.chain, block)
	f.pending = nil

	WriteJSON(w, http.StatusOK, models.MineResult{
		Message:      "New block forged",
		Index:        block.Index,
		Proof:        block.Proof,
		PreviousHash: block.PreviousHash,
		Transactions: block.Transactions,
	})
}

func (f *FakeLedger) handleHealth(w http.ResponseWriter, _ *http.Request) {
	WriteJSON(w, http.StatusOK, models.Health{Status: "healthy", Service: "blockchain-api"})
}
