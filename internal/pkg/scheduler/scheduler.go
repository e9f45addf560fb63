package scheduler

import (
	"context"
	"fmt"
	"net/http"
	"ticket-service/config"

	"github.com/hibiken/asynq"
	"github.com/hibiken/asynqmon"
	"github.com/uptrace/opentelemetry-go-extra/otelzap"
)

const (
	TypeBookingHoldExpired = "booking_hold_expired"
)

type Scheduler struct {
	Log *otelzap.Logger
}

func (s *Scheduler) InitClient(cfg *config.RedisConfig) *asynq.Client {
	return asynq.NewClient(asynq.RedisClientOpt{
		Addr:     fmt.Sprintf("%s:%s", cfg.Host, cfg.Port),
		Password: cfg.Password,
		DB:       cfg.DB,
	})
}

func (s *Scheduler) InitInspector(cfg *config.RedisConfig) *asynq.Inspector {
	return asynq.NewInspector(asynq.RedisClientOpt{
		Addr:     fmt.Sprintf("%s:%s", cfg.Host, cfg.Port),
		Password: cfg.Password,
		DB:       cfg.DB,
	})
}

// StartHandler runs the asynq worker that processes delayed tasks, e.g.
// expiring booking holds.
func (s *Scheduler) StartHandler(cfg *config.RedisConfig, taskTypes []string, handlerFunc []func(ctx context.Context, t *asynq.Task) error) {
	ctx := context.Background()
	srv := asynq.NewServer(
		asynq.RedisClientOpt{
			Addr:     fmt.Sprintf("%s:%s", cfg.Host, cfg.Port),
			Password: cfg.Password,
			DB:       cfg.DB,
		},
		asynq.Config{
			Concurrency: 10,
			Queues: map[string]int{
				"default": 10,
			},
		},
	)

	mux := asynq.NewServeMux()
	for i, taskType := range taskTypes {
		mux.HandleFunc(taskType, handlerFunc[i])
	}

	if err := srv.Run(mux); err != nil {
		s.Log.Ctx(ctx).Error(fmt.Sprintf("error start scheduler handler: %v", err))
	}
}

// StartMonitoring serves the asynqmon dashboard.
func (s *Scheduler) StartMonitoring(cfg *config.RedisConfig) {
	ctx := context.Background()
	h := asynqmon.New(asynqmon.Options{
		RootPath: "/monitoring",
		RedisConnOpt: asynq.RedisClientOpt{
			Addr:     fmt.Sprintf("%s:%s", cfg.Host, cfg.Port),
			Password: cfg.Password,
			DB:       cfg.DB,
		},
	})

	http.Handle(h.RootPath()+"/", h)

	if err := http.ListenAndServe(":8084", nil); err != nil {
		s.Log.Ctx(ctx).Error(fmt.Sprintf("error start scheduler monitoring: %v", err))
	}
}
