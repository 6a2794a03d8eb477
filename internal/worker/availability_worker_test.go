package worker

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"event-ticketing/internal/queue"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeEventService 只實作 worker 會碰到的 RefreshAvailability
type fakeEventService struct {
	mu        sync.Mutex
	refreshed []int
	failFirst bool
	calls     int
}

func (f *fakeEventService) RefreshAvailability(ctx context.Context, eventID int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if f.failFirst && f.calls == 1 {
		return errors.New("transient failure")
	}
	f.refreshed = append(f.refreshed, eventID)
	return nil
}

func (f *fakeEventService) refreshedEvents() []int {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]int, len(f.refreshed))
	copy(out, f.refreshed)
	return out
}

func TestAvailabilityWorker_RefreshesOnBookingEvent(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	mq := queue.NewMemoryBookingQueue(10)
	events := &fakeEventService{}
	w := NewAvailabilityWorker(mq, events)

	go w.Start(ctx)

	require.NoError(t, mq.Publish(ctx, &queue.BookingEvent{BookingID: 1, EventID: 42, Kind: queue.BookingEventCreated}))

	require.Eventually(t, func() bool {
		return len(events.refreshedEvents()) == 1
	}, 2*time.Second, 10*time.Millisecond)
	assert.Equal(t, []int{42}, events.refreshedEvents())
}

func TestAvailabilityWorker_NackRetriesFailedRefresh(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	mq := queue.NewMemoryBookingQueue(10)
	events := &fakeEventService{failFirst: true}
	w := NewAvailabilityWorker(mq, events)

	go w.Start(ctx)

	require.NoError(t, mq.Publish(ctx, &queue.BookingEvent{BookingID: 1, EventID: 7, Kind: queue.BookingEventCancelled}))

	// 第一次失敗後 Nack 重新入列，第二次成功
	require.Eventually(t, func() bool {
		return len(events.refreshedEvents()) == 1
	}, 2*time.Second, 10*time.Millisecond)
	assert.Equal(t, []int{7}, events.refreshedEvents())
}

func TestAvailabilityWorker_StopsOnContextCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())

	mq := queue.NewMemoryBookingQueue(10)
	w := NewAvailabilityWorker(mq, &fakeEventService{})

	done := make(chan error, 1)
	go func() { done <- w.Start(ctx) }()

	cancel()
	select {
	case err := <-done:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(2 * time.Second):
		t.Fatal("worker did not stop after context cancellation")
	}
}
