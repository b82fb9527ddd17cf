package main

import (
	"context"
	"fmt"
	"time"

	"github.com/uniflow/uniflow-backend/internal/config"
	"github.com/uniflow/uniflow-backend/internal/database"
	"github.com/uniflow/uniflow-backend/internal/lock"
	"github.com/uniflow/uniflow-backend/internal/logger"
	"github.com/uniflow/uniflow-backend/internal/repository"
	"github.com/uniflow/uniflow-backend/internal/seed"
	"github.com/uniflow/uniflow-backend/internal/service"
)

func main() {
	cfg := config.Load()
	log := logger.Setup(cfg.LogLevel, cfg.LogFormat)
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	pool, err := database.NewPostgresPool(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to PostgreSQL")
	}
	defer pool.Close()

	store := repository.NewStore(pool)
	conflicts := service.NewConflictValidator(store, log)

	// Single writer; the unique constraints are enough here.
	sessionService := service.NewSessionService(store, conflicts, lock.Nop{}, nil, log)
	enrollmentService := service.NewEnrollmentService(store, conflicts, lock.Nop{}, nil, log)

	fmt.Println("=== Seeding demo timetable ===")

	sum, err := seed.Demo(ctx, store, sessionService, enrollmentService, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Seed failed")
	}

	fmt.Printf("Rooms: %d, Teachers: %d, Groups: %d, Students: %d\n", sum.Rooms, sum.Teachers, sum.Groups, sum.Students)
	fmt.Printf("Modules: %d, Timeslots: %d\n", sum.Modules, sum.Timeslots)
	fmt.Printf("Sessions: %d, Enrollments: %d\n", sum.Sessions, sum.Enrollments)
	for kind, n := range sum.Rejected {
		fmt.Printf("Rejected (%s): %d\n", kind, n)
	}
	fmt.Println("\nSeed completed!")
}
