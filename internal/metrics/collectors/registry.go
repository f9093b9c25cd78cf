package collectors

import (
	"context"
	"errors"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/liftedinit/custody/internal/models"
)

// LedgerSource is the part of the ledger client the collectors query on every scrape.
type LedgerSource interface {
	GetStats(ctx context.Context) (*models.Stats, error)
	ValidateChain(ctx context.Context) (*models.ChainValidity, error)
	Health(ctx context.Context) (*models.Health, error)
}

// CollectorFactory is a function type that creates a collector with provided parameters
type CollectorFactory func(source LedgerSource, extraParams ...interface{}) (prometheus.Collector, error)

type Registry struct {
	factories []CollectorFactory
}

func NewRegistry() *Registry {
	return &Registry{
		factories: make([]CollectorFactory, 0),
	}
}

func (r *Registry) Register(factory CollectorFactory) {
	r.factories = append(r.factories, factory)
}

// CreateCollectors instantiates all collectors using the provided parameters
func (r *Registry) CreateCollectors(source LedgerSource, extraParams ...interface{}) ([]prometheus.Collector, error) {
	if source == nil {
		return nil, errors.New("ledger source is nil")
	}

	collectors := make([]prometheus.Collector, 0, len(r.factories))
	for _, factory := range r.factories {
		collector, err := factory(source, extraParams...)
		if err != nil {
			return nil, err
		}
		collectors = append(collectors, collector)
	}
	return collectors, nil
}

var DefaultRegistry = NewRegistry()

func RegisterCollectorFactory(factory CollectorFactory) {
	DefaultRegistry.Register(factory)
}
