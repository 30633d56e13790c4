package usecase

import (
	"context"
	"time"
)

type HealthUsecase interface {
	Check(ctx context.Context) map[string]string
}

// Pinger is anything health can probe (pgxpool.Pool, a redis wrapper)
type Pinger interface {
	Ping(ctx context.Context) error
}

type healthUsecase struct {
	checks map[string]Pinger
}

// NewHealthUsecase probes every named dependency; nil entries are skipped
func NewHealthUsecase(checks map[string]Pinger) HealthUsecase {
	active := make(map[string]Pinger, len(checks))
	for name, p := range checks {
		if p != nil {
			active[name] = p
		}
	}
	return &healthUsecase{checks: active}
}

func (u *healthUsecase) Check(ctx context.Context) map[string]string {
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()

	status := map[string]string{"status": "ok"}
	for name, p := range u.checks {
		if err := p.Ping(ctx); err != nil {
			status[name] = "down"
			status["status"] = "degraded"
			continue
		}
		status[name] = "up"
	}
	return status
}

// PingFunc adapts a plain health function to Pinger
type PingFunc func(ctx context.Context) error

func (f PingFunc) Ping(ctx context.Context) error {
	return f(ctx)
}
