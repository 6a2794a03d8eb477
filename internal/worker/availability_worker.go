package worker

import (
	"context"

	"event-ticketing/internal/queue"
	"event-ticketing/pkg/logger"

	"go.uber.org/zap"
)

// AvailabilityRefresher 由 EventService 實作
type AvailabilityRefresher interface {
	RefreshAvailability(ctx context.Context, eventID int) error
}

// AvailabilityWorker 消費訂位事件，重建該活動的剩餘量快取。
// 快取只是讀取路徑的加速層，worker 失敗時讀取路徑會降級直讀資料庫。
type AvailabilityWorker struct {
	bookingMQ queue.BookingQueue
	events    AvailabilityRefresher
	log       *zap.Logger
}

func NewAvailabilityWorker(bookingMQ queue.BookingQueue, events AvailabilityRefresher) *AvailabilityWorker {
	return &AvailabilityWorker{
		bookingMQ: bookingMQ,
		events:    events,
		log:       logger.WithComponent("availability-worker"),
	}
}

// Start 啟動消費循環，阻塞直到 ctx 取消
func (w *AvailabilityWorker) Start(ctx context.Context) error {
	deliveries, err := w.bookingMQ.Subscribe(ctx)
	if err != nil {
		return err
	}

	w.log.Info("availability worker started")
	for {
		select {
		case <-ctx.Done():
			w.log.Info("availability worker stopped")
			return ctx.Err()
		case d, ok := <-deliveries:
			if !ok {
				w.log.Info("delivery channel closed")
				return nil
			}
			w.handle(ctx, d)
		}
	}
}

func (w *AvailabilityWorker) handle(ctx context.Context, d queue.Delivery) {
	event := d.Data
	if err := w.events.RefreshAvailability(ctx, event.EventID); err != nil {
		w.log.Error("refresh availability failed",
			zap.Int("event_id", event.EventID),
			zap.Int("booking_id", event.BookingID),
			zap.String("kind", event.Kind),
			zap.Error(err))
		// 留在 PEL 延遲重試；重試多次仍失敗由毒藥消息機制丟棄
		d.Nack(true)
		return
	}

	w.log.Debug("availability refreshed",
		zap.Int("event_id", event.EventID),
		zap.String("kind", event.Kind))
	d.Ack()
}
