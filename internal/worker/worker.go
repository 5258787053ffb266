package worker

import (
	"context"
	"log/slog"
	"os"

	"github.com/hibiken/asynq"

	"wanderpush/internal/notification"
	"wanderpush/internal/push"
	"wanderpush/internal/queue"
)

// Worker consumes the periodic driver tasks: the minutely notification
// sweep and the daily token cleanup. Each handler re-arms its own next
// tick, the way a cron entry would fire it.
type Worker struct {
	server     *asynq.Server
	dispatcher *notification.Dispatcher
	gateway    *push.Gateway
}

func NewWorker(dispatcher *notification.Dispatcher, gateway *push.Gateway) *Worker {
	redisAddr := os.Getenv("REDIS_ADDR")
	if redisAddr == "" {
		redisAddr = "localhost:6379"
	}

	redisOpt := asynq.RedisClientOpt{
		Addr: redisAddr,
	}

	server := asynq.NewServer(
		redisOpt,
		asynq.Config{
			Concurrency: 2,
			Queues: map[string]int{
				queue.TaskNotificationSweep: 2,
				queue.TaskTokenCleanup:      1,
			},
		},
	)

	return &Worker{
		server:     server,
		dispatcher: dispatcher,
		gateway:    gateway,
	}
}

func (w *Worker) Start(ctx context.Context) error {
	mux := asynq.NewServeMux()

	mux.HandleFunc(queue.TaskNotificationSweep, w.handleSweep)
	mux.HandleFunc(queue.TaskTokenCleanup, w.handleTokenCleanup)

	slog.Info("Starting worker",
		"queues", []string{queue.TaskNotificationSweep, queue.TaskTokenCleanup})

	if err := w.server.Start(mux); err != nil {
		return err
	}

	slog.Info("Worker started successfully")

	<-ctx.Done()

	w.server.Stop()
	slog.Info("Worker stopped")
	return nil
}

func (w *Worker) handleSweep(ctx context.Context, _ *asynq.Task) error {
	if err := w.dispatcher.ProcessPendingNotifications(ctx); err != nil {
		slog.Error("notification sweep failed", "error", err)
	}
	return queue.ScheduleSweep(queue.SweepInterval)
}

func (w *Worker) handleTokenCleanup(ctx context.Context, _ *asynq.Task) error {
	if err := w.gateway.CleanupInvalidTokens(ctx); err != nil {
		slog.Error("token cleanup failed", "error", err)
	}
	return queue.ScheduleTokenCleanup(queue.TokenCleanupInterval)
}
