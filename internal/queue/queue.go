package queue

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/hibiken/asynq"
)

const (
	TaskNotificationSweep = "notifications:sweep"
	TaskTokenCleanup      = "tokens:cleanup"
)

const (
	// SweepInterval is how often due notifications are re-examined.
	SweepInterval = time.Minute
	// TokenCleanupInterval is how often the token universe is validated.
	TokenCleanupInterval = 24 * time.Hour
)

var client *asynq.Client

// InitQueue initializes the Redis connection for Asynq
func InitQueue() error {
	redisAddr := os.Getenv("REDIS_ADDR")
	if redisAddr == "" {
		redisAddr = "localhost:6379"
	}

	redisOpt := asynq.RedisClientOpt{
		Addr: redisAddr,
	}

	client = asynq.NewClient(redisOpt)

	// Test connection
	if err := client.Close(); err != nil {
		return fmt.Errorf("failed to connect to Redis: %v", err)
	}

	// Recreate client after test
	client = asynq.NewClient(redisOpt)

	slog.Info("Successfully initialized task queue")
	return nil
}

// ScheduleSweep arms the next notification sweep tick. The fixed task id
// collapses duplicate arms when a sweep is already queued.
func ScheduleSweep(delay time.Duration) error {
	task := asynq.NewTask(TaskNotificationSweep, nil)

	_, err := client.Enqueue(task,
		asynq.Queue(TaskNotificationSweep),
		asynq.TaskID(TaskNotificationSweep),
		asynq.ProcessIn(delay),
		asynq.MaxRetry(1),
		asynq.Timeout(5*time.Minute),
	)
	if err != nil && !errors.Is(err, asynq.ErrTaskIDConflict) {
		return fmt.Errorf("failed to enqueue sweep task: %v", err)
	}
	return nil
}

// ScheduleTokenCleanup arms the next token validation pass.
func ScheduleTokenCleanup(delay time.Duration) error {
	task := asynq.NewTask(TaskTokenCleanup, nil)

	_, err := client.Enqueue(task,
		asynq.Queue(TaskTokenCleanup),
		asynq.TaskID(TaskTokenCleanup),
		asynq.ProcessIn(delay),
		asynq.MaxRetry(1),
		asynq.Timeout(30*time.Minute),
	)
	if err != nil && !errors.Is(err, asynq.ErrTaskIDConflict) {
		return fmt.Errorf("failed to enqueue token cleanup task: %v", err)
	}
	return nil
}

// Close closes the Redis connection
func Close() error {
	if client != nil {
		return client.Close()
	}
	return nil
}
