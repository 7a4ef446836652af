package worker

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/osahene/YOS-rentals/internal/database"
	"github.com/osahene/YOS-rentals/internal/domain"
	"github.com/osahene/YOS-rentals/internal/metrics"
	"github.com/osahene/YOS-rentals/internal/models"
)

// NotifyWorker drains the notification queue and hands each task to the
// sender for its channel. Every task is persisted in notify_queue first;
// Redis carries the wake-up signal and the in-memory channel covers a
// Redis outage. The DB poll is the backstop that picks up anything both
// fast paths lost.
type NotifyWorker struct {
	db            *database.DB
	redis         *redis.Client
	senders       map[string]domain.Notifier
	retryPolicy   RetryPolicy
	queue         chan models.NotifyTask
	redisQueueKey string
	deadLetterKey string
	pollInterval  time.Duration
	batchSize     int
	logger        *zerolog.Logger
}

func NewNotifyWorker(db *database.DB, redisClient *redis.Client, senders []domain.Notifier, retry RetryPolicy, logger *zerolog.Logger) *NotifyWorker {
	if retry.MaxRetries == 0 {
		retry.MaxRetries = 5
	}
	if retry.InitialDelay == 0 {
		retry.InitialDelay = 2 * time.Second
	}
	if retry.MaxDelay == 0 {
		retry.MaxDelay = 1 * time.Minute
	}
	if retry.BackoffFactor == 0 {
		retry.BackoffFactor = 2
	}

	byChannel := make(map[string]domain.Notifier, len(senders))
	for _, s := range senders {
		byChannel[s.Channel()] = s
	}

	return &NotifyWorker{
		db:            db,
		redis:         redisClient,
		senders:       byChannel,
		retryPolicy:   retry,
		queue:         make(chan models.NotifyTask, models.WorkerQueueSize),
		redisQueueKey: "notify:queue",
		deadLetterKey: "notify:deadletter",
		pollInterval:  2 * time.Second,
		batchSize:     20,
		logger:        logger,
	}
}

// Enqueue persists the task and schedules it via Redis or the in-memory
// queue.
func (w *NotifyWorker) Enqueue(ctx context.Context, task *models.NotifyTask) error {
	if task.Channel == "" {
		return errors.New("notification channel is required")
	}
	if task.Recipient == "" {
		return errors.New("notification recipient is required")
	}
	if task.Status == "" {
		task.Status = "pending"
	}

	if err := w.db.CreateNotifyTask(ctx, task); err != nil {
		return fmt.Errorf("persist notify task: %w", err)
	}

	if w.redis != nil {
		if err := w.pushRedis(ctx, *task); err != nil {
			w.logger.Warn().Err(err).Int64("task_id", task.ID).Msg("redis push failed, using memory queue")
		} else {
			return nil
		}
	}

	select {
	case w.queue <- *task:
	default:
		w.logger.Warn().Int64("task_id", task.ID).Msg("memory queue full, task left to polling")
	}

	return nil
}

// Start launches the main loop; stops when ctx is done.
func (w *NotifyWorker) Start(ctx context.Context) {
	w.logger.Info().Msg("notify worker started")
	defer w.logger.Info().Msg("notify worker stopped")

	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		if t, ok := w.tryLocalQueue(); ok {
			w.processTask(ctx, &t)
			continue
		}

		if t, ok := w.tryRedis(ctx); ok {
			w.processTask(ctx, &t)
			continue
		}

		tasks, err := w.db.GetPendingNotifyTasks(ctx, w.batchSize)
		if err != nil {
			w.logger.Error().Err(err).Msg("fetch pending notify tasks failed")
			time.Sleep(w.pollInterval)
			continue
		}
		if len(tasks) == 0 {
			time.Sleep(w.pollInterval)
			continue
		}

		for i := range tasks {
			w.processTask(ctx, &tasks[i])
		}
	}
}

func (w *NotifyWorker) tryLocalQueue() (models.NotifyTask, bool) {
	select {
	case t := <-w.queue:
		return t, true
	default:
		return models.NotifyTask{}, false
	}
}

func (w *NotifyWorker) tryRedis(ctx context.Context) (models.NotifyTask, bool) {
	if w.redis == nil {
		return models.NotifyTask{}, false
	}
	res, err := w.redis.BRPop(ctx, time.Second, w.redisQueueKey).Result()
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, redis.Nil) {
			return models.NotifyTask{}, false
		}
		w.logger.Error().Err(err).Msg("redis BRPOP error")
		return models.NotifyTask{}, false
	}
	if len(res) != 2 {
		return models.NotifyTask{}, false
	}
	var task models.NotifyTask
	if err := json.Unmarshal([]byte(res[1]), &task); err != nil {
		w.logger.Error().Err(err).Msg("decode redis notify task failed")
		return models.NotifyTask{}, false
	}
	return task, true
}

func (w *NotifyWorker) processTask(ctx context.Context, task *models.NotifyTask) {
	// A task can arrive twice (redis plus poll); skip ones already done.
	if task.Status == "completed" || task.Status == "failed" {
		return
	}

	sender, ok := w.senders[task.Channel]
	if !ok {
		w.failTask(ctx, task, fmt.Errorf("no sender for channel %s", task.Channel))
		return
	}

	if err := sender.Send(ctx, task); err != nil {
		w.retryOrFail(ctx, task, err)
		return
	}

	metrics.IncNotification(task.Channel, "sent")
	w.logOutcome(ctx, task, "sent", "")
	if err := w.db.UpdateNotifyTaskStatus(ctx, task.ID, "completed", "", nil); err != nil {
		w.logger.Error().Err(err).Int64("task_id", task.ID).Msg("mark notify task completed failed")
	}
}

func (w *NotifyWorker) retryOrFail(ctx context.Context, task *models.NotifyTask, cause error) {
	attempt := task.RetryCount + 1
	if attempt >= w.retryPolicy.MaxRetries {
		w.failTask(ctx, task, cause)
		return
	}

	metrics.IncNotification(task.Channel, "retry")
	nextDelay := w.retryPolicy.NextDelay(attempt)
	nextTime := time.Now().Add(nextDelay)
	if err := w.db.UpdateNotifyTaskStatus(ctx, task.ID, "retry", cause.Error(), &nextTime); err != nil {
		w.logger.Error().Err(err).Int64("task_id", task.ID).Msg("mark notify task retry failed")
	}
}

func (w *NotifyWorker) failTask(ctx context.Context, task *models.NotifyTask, cause error) {
	metrics.IncNotification(task.Channel, "failed")
	w.logOutcome(ctx, task, "failed", cause.Error())
	if err := w.db.UpdateNotifyTaskStatus(ctx, task.ID, "failed", cause.Error(), nil); err != nil {
		w.logger.Error().Err(err).Int64("task_id", task.ID).Msg("mark notify task failed failed")
	}
	w.pushDeadLetter(ctx, task)
}

func (w *NotifyWorker) logOutcome(ctx context.Context, task *models.NotifyTask, status, errMsg string) {
	entry := &models.NotificationLog{
		Channel:   task.Channel,
		Recipient: task.Recipient,
		Subject:   task.Subject,
		Body:      task.Body,
		Status:    status,
		Error:     errMsg,
	}
	if err := w.db.LogNotification(ctx, entry); err != nil {
		w.logger.Error().Err(err).Int64("task_id", task.ID).Msg("notification log write failed")
	}
}

func (w *NotifyWorker) pushRedis(ctx context.Context, task models.NotifyTask) error {
	if w.redis == nil {
		return errors.New("redis client is nil")
	}
	data, err := json.Marshal(task)
	if err != nil {
		return err
	}
	return w.redis.LPush(ctx, w.redisQueueKey, data).Err()
}

func (w *NotifyWorker) pushDeadLetter(ctx context.Context, task *models.NotifyTask) {
	if w.redis == nil {
		return
	}
	data, err := json.Marshal(task)
	if err != nil {
		w.logger.Error().Err(err).Int64("task_id", task.ID).Msg("encode deadletter failed")
		return
	}
	if err := w.redis.LPush(ctx, w.deadLetterKey, data).Err(); err != nil {
		w.logger.Error().Err(err).Int64("task_id", task.ID).Msg("deadletter push failed")
	}
}
