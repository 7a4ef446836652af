package worker

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/osahene/YOS-rentals/internal/database"
	"github.com/osahene/YOS-rentals/internal/domain"
	"github.com/osahene/YOS-rentals/internal/models"
)

// stubSender records deliveries and fails the first n attempts.
type stubSender struct {
	channel  string
	failures int
	sent     []string
}

func (s *stubSender) Channel() string { return s.channel }

func (s *stubSender) Send(_ context.Context, task *models.NotifyTask) error {
	if s.failures > 0 {
		s.failures--
		return errors.New("delivery refused")
	}
	s.sent = append(s.sent, task.Recipient)
	return nil
}

func newTestWorker(t *testing.T, senders ...domain.Notifier) (*NotifyWorker, *database.DB) {
	t.Helper()
	db, err := database.NewDB(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	logger := zerolog.Nop()
	return NewNotifyWorker(db, nil, senders, RetryPolicy{MaxRetries: 2}, &logger), db
}

func emailTask() *models.NotifyTask {
	return &models.NotifyTask{
		BookingID: "booking-1",
		Channel:   "email",
		Recipient: "kofi@example.com",
		Subject:   "Booking confirmed",
		Body:      "Your booking BK123 is confirmed.",
	}
}

func TestEnqueue_PersistsWithoutRedis(t *testing.T) {
	w, db := newTestWorker(t, &stubSender{channel: "email"})
	ctx := context.Background()

	task := emailTask()
	require.NoError(t, w.Enqueue(ctx, task))
	assert.NotZero(t, task.ID)
	assert.Equal(t, "pending", task.Status)

	pending, err := db.GetPendingNotifyTasks(ctx, 10)
	require.NoError(t, err)
	require.Len(t, pending, 1)
	assert.Equal(t, task.Recipient, pending[0].Recipient)
}

func TestEnqueue_Validation(t *testing.T) {
	w, _ := newTestWorker(t)
	ctx := context.Background()

	err := w.Enqueue(ctx, &models.NotifyTask{Recipient: "a@b.com"})
	assert.Error(t, err)

	err = w.Enqueue(ctx, &models.NotifyTask{Channel: "email"})
	assert.Error(t, err)
}

func TestProcessTask_DeliversAndCompletes(t *testing.T) {
	sender := &stubSender{channel: "email"}
	w, db := newTestWorker(t, sender)
	ctx := context.Background()

	task := emailTask()
	require.NoError(t, w.Enqueue(ctx, task))

	w.processTask(ctx, task)
	assert.Equal(t, []string{"kofi@example.com"}, sender.sent)

	pending, err := db.GetPendingNotifyTasks(ctx, 10)
	require.NoError(t, err)
	assert.Empty(t, pending)
}

func TestProcessTask_SchedulesRetryOnFailure(t *testing.T) {
	sender := &stubSender{channel: "email", failures: 1}
	w, db := newTestWorker(t, sender)
	ctx := context.Background()

	task := emailTask()
	require.NoError(t, w.Enqueue(ctx, task))
	w.processTask(ctx, task)

	// Retry is scheduled in the future, so an immediate poll skips it.
	pending, err := db.GetPendingNotifyTasks(ctx, 10)
	require.NoError(t, err)
	assert.Empty(t, pending)

	failed, err := db.GetFailedNotifyTasks(ctx)
	require.NoError(t, err)
	assert.Empty(t, failed)
}

func TestProcessTask_FailsAfterExhaustedRetries(t *testing.T) {
	sender := &stubSender{channel: "email", failures: 10}
	w, db := newTestWorker(t, sender)
	ctx := context.Background()

	task := emailTask()
	require.NoError(t, w.Enqueue(ctx, task))

	task.RetryCount = w.retryPolicy.MaxRetries
	w.processTask(ctx, task)

	failed, err := db.GetFailedNotifyTasks(ctx)
	require.NoError(t, err)
	require.Len(t, failed, 1)
	assert.Equal(t, "delivery refused", failed[0].LastError)
}

func TestProcessTask_NoSenderForChannel(t *testing.T) {
	w, db := newTestWorker(t, &stubSender{channel: "email"})
	ctx := context.Background()

	task := emailTask()
	task.Channel = "pigeon"
	require.NoError(t, w.Enqueue(ctx, task))
	w.processTask(ctx, task)

	failed, err := db.GetFailedNotifyTasks(ctx)
	require.NoError(t, err)
	require.Len(t, failed, 1)
	assert.Equal(t, "pigeon", failed[0].Channel)
}

func TestProcessTask_SkipsTerminalStatuses(t *testing.T) {
	sender := &stubSender{channel: "email"}
	w, _ := newTestWorker(t, sender)

	task := emailTask()
	task.Status = "completed"
	w.processTask(context.Background(), task)
	assert.Empty(t, sender.sent)
}

func TestStart_DrainsQueue(t *testing.T) {
	sender := &stubSender{channel: "email"}
	w, db := newTestWorker(t, sender)
	ctx, cancel := context.WithCancel(context.Background())

	require.NoError(t, w.Enqueue(ctx, emailTask()))

	done := make(chan struct{})
	go func() {
		w.Start(ctx)
		close(done)
	}()

	require.Eventually(t, func() bool {
		pending, err := db.GetPendingNotifyTasks(ctx, 10)
		return err == nil && len(pending) == 0
	}, 5*time.Second, 50*time.Millisecond)

	cancel()
	<-done
	assert.Len(t, sender.sent, 1)
}
