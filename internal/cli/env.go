package cli

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/rs/zerolog"
	"github.com/uniflow/uniflow-backend/internal/config"
	"github.com/uniflow/uniflow-backend/internal/database"
	"github.com/uniflow/uniflow-backend/internal/lock"
	"github.com/uniflow/uniflow-backend/internal/logger"
	"github.com/uniflow/uniflow-backend/internal/repository"
	"github.com/uniflow/uniflow-backend/internal/repository/memory"
	"github.com/uniflow/uniflow-backend/internal/seed"
	"github.com/uniflow/uniflow-backend/internal/service"
)

// env is what every command runs against.
type env struct {
	store service.TimetableStore
	log   zerolog.Logger
	close func()
}

func (e *env) validator() *service.ConflictValidator {
	return service.NewConflictValidator(e.store, e.log)
}

// sessions builds a SessionService for dry runs; nothing is locked or published.
func (e *env) sessions() *service.SessionService {
	return service.NewSessionService(e.store, e.validator(), lock.Nop{}, nil, e.log)
}

// openEnv is swapped out by tests.
var openEnv = func(ctx context.Context) (*env, error) {
	cfg := config.Load()

	var w io.Writer = io.Discard
	if verbose {
		w = os.Stderr
	}
	log := logger.New(w, "debug", "pretty")

	switch cfg.StoreDriver {
	case config.StoreDriverMemory:
		return openDemo(ctx, log)
	case config.StoreDriverPostgres:
		pool, err := database.NewPostgresPool(ctx, cfg, log)
		if err != nil {
			return nil, err
		}
		return &env{store: repository.NewStore(pool), log: log, close: pool.Close}, nil
	default:
		return nil, fmt.Errorf("unknown STORE_DRIVER %q", cfg.StoreDriver)
	}
}

// openDemo returns an in-memory store seeded with the demo timetable.
func openDemo(ctx context.Context, log zerolog.Logger) (*env, error) {
	store := memory.New()
	conflicts := service.NewConflictValidator(store, log)
	sessions := service.NewSessionService(store, conflicts, lock.Nop{}, nil, log)
	enrollments := service.NewEnrollmentService(store, conflicts, lock.Nop{}, nil, log)
	if _, err := seed.Demo(ctx, store, sessions, enrollments, log); err != nil {
		return nil, fmt.Errorf("seed demo timetable: %w", err)
	}
	return &env{store: store, log: log, close: func() {}}, nil
}
