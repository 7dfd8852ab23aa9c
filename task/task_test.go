package task

import (
	"context"
	"errors"
	"log/slog"
	"sync/atomic"
	"testing"
	"time"

	"github.com/angas/agilewatch/config"
	"github.com/angas/agilewatch/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeFetcher struct {
	err   error
	calls atomic.Int32
}

func (f *fakeFetcher) Fetch(ctx context.Context) (types.PriceSeries, error) {
	f.calls.Add(1)
	if _, ok := ctx.Deadline(); !ok {
		return nil, errors.New("fetch without deadline")
	}
	if f.err != nil {
		return nil, f.err
	}
	return types.PriceSeries{}, nil
}

type fakeRestarter struct {
	restarts atomic.Int32
}

func (r *fakeRestarter) Restart(ctx context.Context) {
	r.restarts.Add(1)
}

type fakePurger struct {
	max int
	err error
}

func (p *fakePurger) PurgeLog(ctx context.Context, maxLogEntries int) (int64, error) {
	p.max = maxLogEntries
	return 3, p.err
}

func TestPriceTaskRestartsLoop(t *testing.T) {
	tests := []struct {
		name string
		err  error
	}{
		{"success", nil},
		{"failure", errors.New("status 500")},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fetcher := &fakeFetcher{err: tt.err}
			loop := &fakeRestarter{}
			task := NewPriceTask(context.Background(), slog.Default(), fetcher, loop, time.Second)

			task()
			assert.Equal(t, int32(1), fetcher.calls.Load())
			assert.Equal(t, int32(1), loop.restarts.Load())
		})
	}
}

func TestPriceTaskAfterShutdown(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	fetcher := &fakeFetcher{}
	loop := &fakeRestarter{}
	NewPriceTask(ctx, slog.Default(), fetcher, loop, time.Second)()

	assert.Zero(t, fetcher.calls.Load())
	assert.Zero(t, loop.restarts.Load())
}

func TestMaintenanceTask(t *testing.T) {
	purger := &fakePurger{}
	NewMaintenanceTask(slog.Default(), purger, 500)()
	assert.Equal(t, 500, purger.max)

	purger = &fakePurger{err: errors.New("locked")}
	NewMaintenanceTask(slog.Default(), purger, 10)()
	assert.Equal(t, 10, purger.max)
}

func testConfig(runAt string) *config.AppConfig {
	return &config.AppConfig{
		Tariff: config.AppConfigTariff{
			RunAt:     runAt,
			Timeout:   time.Second,
			Providers: []string{"rest", "sdk"},
		},
	}
}

func TestTasksRun(t *testing.T) {
	fetcher := &fakeFetcher{}
	loop := &fakeRestarter{}
	tasks := NewTasks(context.Background(), fetcher, loop, nil, testConfig("*/30 * * * *"))
	assert.Nil(t, tasks.MaintenanceTask)

	require.NoError(t, tasks.Run())
	defer tasks.Stop()

	require.Eventually(t, func() bool { return loop.restarts.Load() == 1 }, time.Second, 5*time.Millisecond)
	assert.Equal(t, int32(1), fetcher.calls.Load())
}

func TestTasksRunInvalidSchedule(t *testing.T) {
	tasks := NewTasks(context.Background(), &fakeFetcher{}, &fakeRestarter{}, nil, testConfig("every now and then"))
	assert.Error(t, tasks.Run())
}

func TestFetchTimeout(t *testing.T) {
	assert.Equal(t, 20*time.Second, fetchTimeout(config.AppConfigTariff{Timeout: 10 * time.Second, Providers: []string{"rest", "sdk"}}))
	assert.Equal(t, 10*time.Second, fetchTimeout(config.AppConfigTariff{Timeout: 10 * time.Second}))
}
