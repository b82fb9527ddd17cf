package worker

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/uniflow/uniflow-backend/internal/config"
	"github.com/uniflow/uniflow-backend/internal/model"
	"github.com/uniflow/uniflow-backend/internal/service"
)

const AuditPollTimeout = 1 * time.Second

// ReportGenerator produces a fresh conflict report.
type ReportGenerator interface {
	Generate(ctx context.Context) (*model.ConflictReport, error)
}

// AuditWorker runs conflict audits periodically and on request, caching the
// latest report. With Redis, requests from any instance go through the audit
// queue; without it they are delivered in process.
type AuditWorker struct {
	reports  ReportGenerator
	cache    service.ReportCache
	events   service.EventBus
	rdb      *redis.Client
	interval time.Duration
	trigger  chan struct{}
	log      zerolog.Logger
}

type auditRequest struct {
	RequestedAt time.Time `json:"requested_at"`
	RequestedBy string    `json:"requested_by,omitempty"`
}

// NewAuditWorker creates an AuditWorker. rdb may be nil; interval <= 0
// disables periodic audits.
func NewAuditWorker(reports ReportGenerator, cache service.ReportCache, events service.EventBus, rdb *redis.Client, interval time.Duration, log zerolog.Logger) *AuditWorker {
	return &AuditWorker{
		reports:  reports,
		cache:    cache,
		events:   events,
		rdb:      rdb,
		interval: interval,
		trigger:  make(chan struct{}, 1),
		log:      log.With().Str("component", "audit_worker").Logger(),
	}
}

// RequestAudit asks for a fresh audit. Requests that arrive while one is
// already pending are coalesced.
func (w *AuditWorker) RequestAudit(ctx context.Context, requestedBy string) error {
	if w.rdb != nil {
		raw, _ := json.Marshal(auditRequest{RequestedAt: time.Now().UTC(), RequestedBy: requestedBy})
		return w.rdb.RPush(ctx, config.WorkerKey.AuditRequestsQueue, raw).Err()
	}
	w.signal()
	return nil
}

func (w *AuditWorker) signal() {
	select {
	case w.trigger <- struct{}{}:
	default:
	}
}

// ----------------------------------------------------------------
// Worker loop
// ----------------------------------------------------------------

func (w *AuditWorker) Start(ctx context.Context) {
	w.log.Info().Dur("interval", w.interval).Msg("AuditWorker started")

	if w.rdb != nil {
		go w.pollQueue(ctx)
	}

	var tick <-chan time.Time
	if w.interval > 0 {
		ticker := time.NewTicker(w.interval)
		defer ticker.Stop()
		tick = ticker.C
	}

	w.runSafe(ctx, "startup")
	for {
		select {
		case <-ctx.Done():
			w.log.Info().Msg("AuditWorker stopped")
			return
		case <-tick:
			w.runSafe(ctx, "schedule")
		case <-w.trigger:
			w.runSafe(ctx, "request")
		}
	}
}

// pollQueue forwards queued audit requests to the run loop.
func (w *AuditWorker) pollQueue(ctx context.Context) {
	for ctx.Err() == nil {
		item, err := w.rdb.BLPop(ctx, AuditPollTimeout, config.WorkerKey.AuditRequestsQueue).Result()
		if err != nil {
			if !errors.Is(err, redis.Nil) && ctx.Err() == nil {
				w.log.Error().Err(err).Msg("BLPop error")
				time.Sleep(AuditPollTimeout)
			}
			continue
		}
		if len(item) < 2 {
			continue
		}

		var req auditRequest
		if err := json.Unmarshal([]byte(item[1]), &req); err != nil {
			w.log.Warn().Err(err).Msg("Invalid audit request payload")
		}
		w.signal()
	}
}

func (w *AuditWorker) runSafe(ctx context.Context, reason string) {
	if _, err := w.RunOnce(ctx); err != nil && ctx.Err() == nil {
		w.log.Error().Err(err).Str("reason", reason).Msg("Conflict audit failed")
	}
}

// RunOnce generates, caches and announces one report.
func (w *AuditWorker) RunOnce(ctx context.Context) (*model.ConflictReport, error) {
	report, err := w.reports.Generate(ctx)
	if err != nil {
		return nil, err
	}
	if err := w.cache.SaveLatest(ctx, report); err != nil {
		w.log.Warn().Err(err).Msg("Failed to cache conflict report")
	}

	if w.events != nil {
		has := report.HasConflicts()
		ev := model.TimetableEvent{Type: model.EventAuditCompleted, HasConflicts: &has, At: report.GeneratedAt}
		if err := w.events.Publish(ctx, ev); err != nil {
			w.log.Warn().Err(err).Msg("Failed to publish audit event")
		}
	}

	if report.HasConflicts() {
		w.log.Warn().
			Int("room_conflicts", len(report.RoomConflicts)).
			Int("teacher_conflicts", len(report.TeacherConflicts)).
			Int("student_conflicts", len(report.StudentConflicts)).
			Msg("Timetable audit found conflicts")
	}
	return report, nil
}
