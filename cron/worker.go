package cron

import (
	"context"
	"encoding/json"
	"log"
	"time"

	"workhive/config"
	"workhive/services/task"

	"github.com/hibiken/asynq"
	"go.uber.org/zap"
)

const TypeRematchFloating = "task:rematch_floating"

type rematchPayload struct {
	Limit int `json:"limit"`
}

// InitRematchWorker runs the async worker that periodically re-runs matching
// for floating tasks, promoting those that now have candidates. Expiry is
// not handled here; tasks expire lazily on read.
func InitRematchWorker(taskSvc task.Service, logger *zap.Logger) {
	redisOpts := asynq.RedisClientOpt{
		Addr:     config.AppConfig.RedisAddr,
		Password: config.AppConfig.RedisPassword,
		DB:       config.AppConfig.RedisQueueDB,
	}

	srv := asynq.NewServer(
		redisOpts,
		asynq.Config{
			Concurrency: 4,
			Queues: map[string]int{
				"default": 1,
			},
		},
	)

	mux := asynq.NewServeMux()
	mux.HandleFunc(TypeRematchFloating, handleRematchTask(taskSvc, logger))

	go func() {
		log.Println("[RematchWorker] Starting async worker...")
		const maxAttempts = 5

		for attempts := 1; attempts <= maxAttempts; attempts++ {
			if err := srv.Run(mux); err != nil {
				log.Printf("[RematchWorker] Attempt %d/%d failed to start worker: %v", attempts, maxAttempts, err)

				if attempts == maxAttempts {
					log.Fatal("[RematchWorker] Max retry attempts reached. Exiting.")
				}
				time.Sleep(time.Duration(attempts*2) * time.Second)
			} else {
				break
			}
		}
	}()

	go enqueueRematchSweeps(redisOpts, logger)
}

func handleRematchTask(taskSvc task.Service, logger *zap.Logger) asynq.HandlerFunc {
	return func(ctx context.Context, t *asynq.Task) error {
		var payload rematchPayload
		if err := json.Unmarshal(t.Payload(), &payload); err != nil {
			return err
		}
		if payload.Limit <= 0 {
			payload.Limit = config.AppConfig.RematchBatchSize
		}

		promoted, err := taskSvc.PromoteFloating(ctx, payload.Limit)
		if err != nil {
			return err
		}
		if promoted > 0 {
			logger.Info("floating tasks promoted", zap.Int("count", promoted))
		}
		return nil
	}
}

// enqueueRematchSweeps drops one sweep job onto the queue every interval.
func enqueueRematchSweeps(redisOpts asynq.RedisClientOpt, logger *zap.Logger) {
	client := asynq.NewClient(redisOpts)
	defer client.Close()

	interval := time.Duration(config.AppConfig.RematchIntervalMin) * time.Minute
	if interval <= 0 {
		interval = 15 * time.Minute
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for range ticker.C {
		payload, err := json.Marshal(rematchPayload{Limit: config.AppConfig.RematchBatchSize})
		if err != nil {
			continue
		}
		if _, err := client.Enqueue(asynq.NewTask(TypeRematchFloating, payload)); err != nil {
			logger.Warn("failed to enqueue rematch sweep", zap.Error(err))
		}
	}
}
