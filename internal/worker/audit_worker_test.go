package worker

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/uniflow/uniflow-backend/internal/model"
	"github.com/uniflow/uniflow-backend/internal/service"
)

type generatorFunc func(ctx context.Context) (*model.ConflictReport, error)

func (f generatorFunc) Generate(ctx context.Context) (*model.ConflictReport, error) { return f(ctx) }

func TestAuditWorkerRunOnceCachesAndAnnounces(t *testing.T) {
	report := model.NewConflictReport()
	report.RoomConflicts = append(report.RoomConflicts, "Room R1: Algorithms vs Databases")
	report.GeneratedAt = time.Date(2026, 1, 5, 8, 0, 0, 0, time.UTC)

	cache := service.NewMemoryReportCache()
	bus := service.NewLocalEventBus()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	events, err := bus.Subscribe(ctx)
	require.NoError(t, err)

	w := NewAuditWorker(generatorFunc(func(context.Context) (*model.ConflictReport, error) {
		return report, nil
	}), cache, bus, nil, 0, zerolog.Nop())

	got, err := w.RunOnce(ctx)
	require.NoError(t, err)
	assert.Same(t, report, got)

	cached, err := cache.Latest(ctx)
	require.NoError(t, err)
	assert.Same(t, report, cached)

	ev := <-events
	assert.Equal(t, model.EventAuditCompleted, ev.Type)
	require.NotNil(t, ev.HasConflicts)
	assert.True(t, *ev.HasConflicts)
}

func TestAuditWorkerRunOnceFailureKeepsPreviousReport(t *testing.T) {
	cache := service.NewMemoryReportCache()
	w := NewAuditWorker(generatorFunc(func(context.Context) (*model.ConflictReport, error) {
		return nil, errors.New("store down")
	}), cache, nil, nil, 0, zerolog.Nop())

	_, err := w.RunOnce(context.Background())
	require.Error(t, err)

	_, err = cache.Latest(context.Background())
	assert.ErrorIs(t, err, service.ErrNoCachedReport)
}

func TestAuditWorkerRunsOnRequest(t *testing.T) {
	runs := make(chan struct{}, 8)
	w := NewAuditWorker(generatorFunc(func(context.Context) (*model.ConflictReport, error) {
		runs <- struct{}{}
		return model.NewConflictReport(), nil
	}), service.NewMemoryReportCache(), nil, nil, 0, zerolog.Nop())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		w.Start(ctx)
		close(done)
	}()

	waitRun := func() {
		t.Helper()
		select {
		case <-runs:
		case <-time.After(2 * time.Second):
			t.Fatal("audit did not run")
		}
	}

	waitRun() // startup audit
	require.NoError(t, w.RequestAudit(ctx, "test"))
	waitRun()

	cancel()
	<-done
}
