package queue

import (
	"context"
)

const (
	BookingEventCreated   = "created"
	BookingEventCancelled = "cancelled"
)

// BookingEvent 訂位狀態變動事件，發佈給後台 worker 更新剩餘量快取
type BookingEvent struct {
	BookingID int    `json:"booking_id"`
	EventID   int    `json:"event_id"`
	Kind      string `json:"kind"`
}

type Delivery struct {
	Data *BookingEvent
	Ack  func()
	Nack func(requeue bool)
}

type BookingQueue interface {
	Publish(ctx context.Context, event *BookingEvent) error
	Subscribe(ctx context.Context) (<-chan Delivery, error)
}

// MemoryBookingQueue 使用 Go channel 模擬 MQ，供測試與單機部署使用
type MemoryBookingQueue struct {
	ch chan *BookingEvent
}

func NewMemoryBookingQueue(bufferSize int) BookingQueue {
	return &MemoryBookingQueue{
		ch: make(chan *BookingEvent, bufferSize),
	}
}

func (q *MemoryBookingQueue) Publish(ctx context.Context, event *BookingEvent) error {
	select {
	case q.ch <- event:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (q *MemoryBookingQueue) Subscribe(ctx context.Context) (<-chan Delivery, error) {
	out := make(chan Delivery)

	go func() {
		defer close(out)
		for {
			select {
			case <-ctx.Done():
				return
			case event, ok := <-q.ch:
				if !ok {
					return
				}

				out <- Delivery{
					Data: event,
					Ack:  func() {},
					Nack: func(requeue bool) {
						if requeue {
							q.ch <- event
						}
					},
				}
			}
		}
	}()

	return out, nil
}
