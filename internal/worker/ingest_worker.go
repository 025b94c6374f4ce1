// Package worker consumes background tasks from RabbitMQ. Each delivery is
// one processing task; a failed run is requeued until the task's retry budget
// is spent.
package worker

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"sync"

	amqp "github.com/rabbitmq/amqp091-go"

	"ragbase/internal/app"
	"ragbase/internal/model"
	"ragbase/internal/queue"
)

type IngestWorker struct {
	conn      *amqp.Connection
	ingestion *app.IngestionService
	tracker   *queue.Tracker
	queueName string

	cancel context.CancelFunc
	wg     sync.WaitGroup
}

func NewIngestWorker(conn *amqp.Connection, ingestion *app.IngestionService, tracker *queue.Tracker, queueName string) *IngestWorker {
	return &IngestWorker{
		conn:      conn,
		ingestion: ingestion,
		tracker:   tracker,
		queueName: queueName,
	}
}

func (w *IngestWorker) Start(ctx context.Context) error {
	if w.cancel != nil {
		return nil
	}

	workerCtx, cancel := context.WithCancel(ctx)
	w.cancel = cancel

	ch, err := w.conn.Channel()
	if err != nil {
		cancel()
		return fmt.Errorf("open worker channel failed: %w", err)
	}

	if err := ch.Qos(1, 0, false); err != nil {
		_ = ch.Close()
		cancel()
		return fmt.Errorf("set worker prefetch failed: %w", err)
	}

	if _, err := queue.DeclareTaskQueue(ch, w.queueName); err != nil {
		_ = ch.Close()
		cancel()
		return err
	}

	deliveries, err := ch.Consume(
		w.queueName,
		"",
		false,
		false,
		false,
		false,
		nil,
	)
	if err != nil {
		_ = ch.Close()
		cancel()
		return fmt.Errorf("consume queue failed: %w", err)
	}

	w.wg.Add(1)
	go func() {
		defer w.wg.Done()
		defer ch.Close()

		for {
			select {
			case <-workerCtx.Done():
				return
			case d, ok := <-deliveries:
				if !ok {
					return
				}
				w.handle(workerCtx, d)
			}
		}
	}()

	return nil
}

func (w *IngestWorker) handle(ctx context.Context, d amqp.Delivery) {
	var msg queue.Message
	if err := json.Unmarshal(d.Body, &msg); err != nil {
		log.Printf("worker decode task failed: %v", err)
		_ = d.Nack(false, false)
		return
	}

	w.tracker.MarkProcessing(ctx, msg.TaskID)

	if err := w.run(ctx, msg); err != nil {
		log.Printf("worker task %s failed: %v", msg.TaskID, err)
		retryable, retryErr := w.tracker.BumpRetry(ctx, msg.TaskID)
		if retryErr != nil {
			log.Printf("worker bump retry for task %s failed: %v", msg.TaskID, retryErr)
		}
		if retryable {
			// The task's file stays on disk so the redelivery can run again.
			_ = d.Nack(false, true)
			return
		}
		w.discard(msg)
		w.tracker.MarkFailed(ctx, msg.TaskID, "retry budget exhausted")
		_ = d.Nack(false, false)
		return
	}

	w.tracker.MarkDone(ctx, msg.TaskID)
	_ = d.Ack(false)
}

// discard removes whatever a task holds on disk once no redelivery will need
// it. Successful runs clean up after themselves; this covers the terminal
// failure path.
func (w *IngestWorker) discard(msg queue.Message) {
	if msg.Type != model.TaskTypeDocumentIngest {
		return
	}
	var payload app.IngestPayload
	if err := json.Unmarshal(msg.Payload, &payload); err != nil || payload.FilePath == "" {
		return
	}
	if err := os.Remove(payload.FilePath); err != nil && !os.IsNotExist(err) {
		log.Printf("worker remove task file %s failed: %v", payload.FilePath, err)
	}
}

func (w *IngestWorker) run(ctx context.Context, msg queue.Message) error {
	switch msg.Type {
	case model.TaskTypeDocumentIngest:
		var payload app.IngestPayload
		if err := json.Unmarshal(msg.Payload, &payload); err != nil {
			return fmt.Errorf("decode ingest payload failed: %w", err)
		}
		return w.ingestion.Ingest(ctx, payload)
	default:
		return fmt.Errorf("unknown task type %q", msg.Type)
	}
}

func (w *IngestWorker) Close() {
	if w.cancel != nil {
		w.cancel()
	}
	w.wg.Wait()
}
