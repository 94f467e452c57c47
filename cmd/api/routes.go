package main

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"voice-dashboard/internal/agents"
	"voice-dashboard/internal/audit"
	"voice-dashboard/internal/calls"
	"voice-dashboard/internal/config"
	"voice-dashboard/internal/httpapi"
	"voice-dashboard/internal/livecalls"
	"voice-dashboard/internal/liveusers"
	"voice-dashboard/internal/metrics"
	"voice-dashboard/internal/reporting"
	"voice-dashboard/internal/seed"
	"voice-dashboard/pkg/utils"

	"github.com/redis/go-redis/v9"
)

// app holds the process-wide store handles. They are opened once at startup and
// shared read-only by every handler.
type app struct {
	db  *sql.DB
	rdb *redis.Client
}

func openApp(ctx context.Context) (*app, error) {
	a := &app{}
	if cfg.UsesPostgres() {
		db, err := utils.OpenPostgres(ctx, utils.DriverPgx, cfg.PostgresDSN(), utils.PostgresPoolConfig{})
		if err != nil {
			return nil, err
		}
		a.db = db
	}
	if cfg.LiveCallsBackend() == config.BackendRedis {
		rdb, err := utils.OpenRedis(ctx, utils.RedisConfig{
			Addr:     cfg.RedisAddr(),
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err != nil {
			a.Close()
			return nil, err
		}
		a.rdb = rdb
	}
	return a, nil
}

func (a *app) Close() {
	if a.rdb != nil {
		_ = a.rdb.Close()
	}
	if a.db != nil {
		_ = a.db.Close()
	}
}

const healthTimeout = 2 * time.Second

func (a *app) health(ctx context.Context) error {
	var errs []error
	if a.db != nil {
		errs = append(errs, utils.HealthCheck(ctx, a.db, healthTimeout))
	}
	if a.rdb != nil {
		errs = append(errs, utils.PingRedis(ctx, a.rdb, healthTimeout))
	}
	return errors.Join(errs...)
}

// handlers wires services to the configured backends.
// Keep this free of business logic.
func (a *app) handlers(m *metrics.Metrics) httpapi.Handlers {
	var (
		agentRepo agents.Repository
		callRepo  calls.Repository
		report    reporting.Repository
		seedRepo  seed.Repository
		auditRepo audit.Repository
		liveRepo  livecalls.Repository
	)

	if cfg.Store.Backend == config.BackendPostgres {
		agentRepo = agents.NewPostgresRepo(a.db)
		callRepo = calls.NewPostgresRepo(a.db)
		report = reporting.NewPostgresRepo(a.db)
		seedRepo = seed.NewPostgresRepo(a.db)
		auditRepo = audit.NewPostgresRepo(a.db)
	} else {
		mem := agents.NewMemoryRepo()
		memCalls := calls.NewMemoryRepo(mem)
		agentRepo = mem
		callRepo = memCalls
		report = reporting.NewMemoryRepo(memCalls)
		seedRepo = seed.NewMemoryRepo(memCalls)
		auditRepo = audit.NewMemoryRepo()
	}

	switch cfg.LiveCallsBackend() {
	case config.BackendPostgres:
		liveRepo = livecalls.NewPostgresRepo(a.db)
	case config.BackendRedis:
		liveRepo = livecalls.NewRedisRepo(a.rdb)
	default:
		liveRepo = livecalls.NewMemoryRepo()
	}

	agentSvc := agents.NewService(agentRepo)
	return httpapi.Handlers{
		Agents:         agentSvc,
		Calls:          calls.NewService(callRepo),
		Live:           livecalls.NewService(liveRepo, agentSvc),
		Reporting:      reporting.NewService(report),
		LiveUsers:      liveusers.NewClient(cfg.LiveUsers.BackendURL, cfg.LiveUsers.Timeout),
		Seeder:         seed.NewService(seedRepo, cfg.Seed.Secret),
		Audit:          audit.NewService(auditRepo),
		Metrics:        m,
		Health:         a.health,
		StreamInterval: cfg.HTTP.LiveStreamInterval,
	}
}
