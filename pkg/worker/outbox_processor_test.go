package worker

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/keshav-rathi-0/Medilink-sub001/internal/model"
	"github.com/keshav-rathi-0/Medilink-sub001/internal/repository/mocks"
	"github.com/keshav-rathi-0/Medilink-sub001/pkg/logger"
	"github.com/keshav-rathi-0/Medilink-sub001/pkg/metrics"
)

type mockBroker struct{ mock.Mock }

func (m *mockBroker) Publish(ctx context.Context, channel string, message interface{}) error {
	return m.Called(ctx, channel, message).Error(0)
}

func (m *mockBroker) Subscribe(ctx context.Context, channel string) (<-chan []byte, error) {
	args := m.Called(ctx, channel)
	return nil, args.Error(1)
}

func (m *mockBroker) Ping(ctx context.Context) error {
	return m.Called(ctx).Error(0)
}

func (m *mockBroker) Close() error {
	return m.Called().Error(0)
}

func newProcessor(t *testing.T, repo *mocks.OutboxRepository, broker *mockBroker) (*OutboxProcessor, *mocks.Transactor) {
	t.Helper()
	tx := &mocks.Transactor{}
	p, err := NewOutboxProcessor(tx, repo, broker, OutboxProcessorConfig{
		Channel:       "medilink.events",
		BatchSize:     10,
		PollInterval:  time.Second,
		RetryAttempts: 3,
	}, logger.Nop(), metrics.NewNop())
	require.NoError(t, err)
	return p, tx
}

func pendingEvent(eventType string) *model.OutboxEvent {
	return &model.OutboxEvent{
		ID:          uuid.New(),
		EventType:   eventType,
		AggregateID: uuid.New(),
		Payload:     json.RawMessage(`{"ward_number":"W1"}`),
		Status:      model.OutboxStatusPending,
		CreatedAt:   time.Now(),
	}
}

func TestProcessBatchPublishesAndMarksProcessed(t *testing.T) {
	repo := &mocks.OutboxRepository{}
	broker := &mockBroker{}
	p, tx := newProcessor(t, repo, broker)

	ev := pendingEvent(model.EventBedAllocated)
	repo.On("GetPendingEventsWithLock", mock.Anything, 10).Return([]*model.OutboxEvent{ev}, nil)
	broker.On("Publish", mock.Anything, "medilink.events", ev.Message()).Return(nil)
	repo.On("MarkProcessed", mock.Anything, ev.ID).Return(nil)

	n, err := p.ProcessBatch(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	assert.Equal(t, 1, tx.Calls)
	repo.AssertExpectations(t)
	broker.AssertExpectations(t)
}

func TestProcessBatchRecordsPublishFailure(t *testing.T) {
	repo := &mocks.OutboxRepository{}
	broker := &mockBroker{}
	p, _ := newProcessor(t, repo, broker)

	failing := pendingEvent(model.EventPaymentRecorded)
	ok := pendingEvent(model.EventStockLow)
	repo.On("GetPendingEventsWithLock", mock.Anything, 10).Return([]*model.OutboxEvent{failing, ok}, nil)
	broker.On("Publish", mock.Anything, "medilink.events", failing.Message()).Return(errors.New("redis down"))
	broker.On("Publish", mock.Anything, "medilink.events", ok.Message()).Return(nil)
	repo.On("MarkFailed", mock.Anything, failing.ID, "redis down", 3).Return(nil)
	repo.On("MarkProcessed", mock.Anything, ok.ID).Return(nil)

	n, err := p.ProcessBatch(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	repo.AssertExpectations(t)
	repo.AssertNotCalled(t, "MarkProcessed", mock.Anything, failing.ID)
}

func TestProcessBatchPropagatesRepositoryError(t *testing.T) {
	repo := &mocks.OutboxRepository{}
	broker := &mockBroker{}
	p, _ := newProcessor(t, repo, broker)

	repo.On("GetPendingEventsWithLock", mock.Anything, 10).Return(nil, errors.New("connection reset"))

	_, err := p.ProcessBatch(context.Background())
	assert.ErrorContains(t, err, "connection reset")
	broker.AssertNotCalled(t, "Publish", mock.Anything, mock.Anything, mock.Anything)
}

func TestNewOutboxProcessorValidatesConfig(t *testing.T) {
	_, err := NewOutboxProcessor(&mocks.Transactor{}, &mocks.OutboxRepository{}, &mockBroker{},
		OutboxProcessorConfig{Channel: "c", BatchSize: 0, PollInterval: time.Second, RetryAttempts: 1},
		logger.Nop(), metrics.NewNop())
	assert.Error(t, err)
}

func TestCleanupDeletesBeforeRetention(t *testing.T) {
	repo := &mocks.OutboxRepository{}
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	w := NewOutboxCleanupWorker(repo, 72*time.Hour, time.Hour, logger.Nop(), metrics.NewNop())
	w.now = func() time.Time { return now }

	repo.On("DeleteProcessedBefore", mock.Anything, now.Add(-72*time.Hour)).Return(int64(4), nil)

	rows, err := w.Cleanup(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(4), rows)
}
