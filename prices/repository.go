package prices

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/angas/agilewatch/types"
	"golang.org/x/sync/singleflight"
)

type Status int

const (
	StatusLoading Status = iota
	StatusError
	StatusLoaded
)

func (s Status) String() string {
	switch s {
	case StatusLoading:
		return "loading"
	case StatusError:
		return "error"
	case StatusLoaded:
		return "loaded"
	default:
		return "unknown"
	}
}

// Snapshot is a consistent view of the repository. Series is the last successfully
// fetched series and is kept when a later fetch fails.
type Snapshot struct {
	Status    Status
	Series    types.PriceSeries
	Err       error
	FetchedAt time.Time
}

var ErrNoProviders = errors.New("no price providers")

// Repository holds the single in-memory price series.
type Repository struct {
	providers []types.PriceProvider
	logger    *slog.Logger
	group     singleflight.Group

	mu        sync.RWMutex
	series    types.PriceSeries
	hasSeries bool
	status    Status
	lastErr   error
	fetchedAt time.Time
	fetched   chan struct{}
	once      sync.Once

	// keeping state to avoid spamming the log when every run fails the same way
	inErrorState bool
}

func NewRepository(providers []types.PriceProvider) *Repository {
	return &Repository{
		providers: providers,
		logger:    slog.Default().With("module", "prices"),
		status:    StatusLoading,
		fetched:   make(chan struct{}),
	}
}

// Fetch asks the providers in order and keeps the first successful result.
// Concurrent callers share one in-flight fetch.
func (r *Repository) Fetch(ctx context.Context) (types.PriceSeries, error) {
	v, err, _ := r.group.Do("fetch", func() (any, error) {
		return r.fetch(ctx)
	})
	if err != nil {
		return nil, err
	}
	return v.(types.PriceSeries).Clone(), nil
}

func (r *Repository) fetch(ctx context.Context) (types.PriceSeries, error) {
	if len(r.providers) == 0 {
		r.setFailed(ErrNoProviders)
		return nil, ErrNoProviders
	}

	var lastErr error
	for _, provider := range r.providers {
		start := time.Now()
		series, err := provider.GetPrices(ctx)
		fetchDurationSeconds.WithLabelValues(provider.Name()).Observe(time.Since(start).Seconds())
		if err != nil {
			fe := types.AsFetchError(provider.Name(), err)
			fetchesTotal.WithLabelValues(provider.Name(), string(fe.Kind)).Inc()
			r.logger.Debug("price provider failed", slog.String("provider", provider.Name()), slog.Any("error", err))
			lastErr = fe
			continue
		}

		fetchesTotal.WithLabelValues(provider.Name(), "ok").Inc()
		series = series.Clone()
		series.SortByValidTo()
		r.setLoaded(provider.Name(), series)
		return series, nil
	}

	r.setFailed(lastErr)
	return nil, lastErr
}

func (r *Repository) setLoaded(provider string, series types.PriceSeries) {
	r.mu.Lock()
	r.series = series
	r.hasSeries = true
	r.status = StatusLoaded
	r.lastErr = nil
	r.fetchedAt = time.Now()
	recovered := r.inErrorState
	r.inErrorState = false
	r.mu.Unlock()

	seriesSlots.Set(float64(len(series)))
	r.markFetched()

	if recovered {
		r.logger.Info("price fetch recovered", slog.String("provider", provider))
	}
	r.logger.Info("prices fetched", slog.String("provider", provider), slog.Int("slots", len(series)))
}

func (r *Repository) setFailed(err error) {
	r.mu.Lock()
	r.status = StatusError
	r.lastErr = err
	r.fetchedAt = time.Now()
	alreadyFailing := r.inErrorState
	r.inErrorState = true
	r.mu.Unlock()

	r.markFetched()

	if alreadyFailing {
		r.logger.Debug("price fetch still failing", slog.Any("error", err))
	} else {
		r.logger.Error("price fetch failed", slog.Any("error", err))
	}
}

func (r *Repository) markFetched() {
	r.once.Do(func() { close(r.fetched) })
}

// Series returns the latest successfully fetched series, false when there is none.
func (r *Repository) Series() (types.PriceSeries, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if !r.hasSeries {
		return nil, false
	}
	return r.series, true
}

func (r *Repository) Snapshot() Snapshot {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return Snapshot{
		Status:    r.status,
		Series:    r.series,
		Err:       r.lastErr,
		FetchedAt: r.fetchedAt,
	}
}

// Ready is closed once the first fetch has completed, successfully or not.
func (r *Repository) Ready() <-chan struct{} {
	return r.fetched
}
