// Package queue produces background processing tasks. A task gets a durable
// database row for polling plus a persistent RabbitMQ publish; Redis mirrors
// the current status so polling does not hit MySQL on every request.
package queue

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/redis/go-redis/v9"

	"ragbase/internal/model"
	"ragbase/internal/repository"
)

const maxQueuePriority = 10

// Message is the wire envelope carried on the queue. The payload stays raw so
// each task type decodes its own shape.
type Message struct {
	TaskID  string          `json:"task_id"`
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

type Producer struct {
	conn       *amqp.Connection
	tasks      *repository.TaskRepository
	tracker    *Tracker
	queueName  string
	maxRetries int
}

func NewProducer(conn *amqp.Connection, tasks *repository.TaskRepository, rdb *redis.Client, queueName string, maxRetries int) *Producer {
	return &Producer{
		conn:       conn,
		tasks:      tasks,
		tracker:    NewTracker(tasks, rdb),
		queueName:  queueName,
		maxRetries: maxRetries,
	}
}

// Enqueue records the task and publishes it. The returned id is handed to API
// callers for status polling. Priority runs 0 to 10, higher first.
func (p *Producer) Enqueue(ctx context.Context, taskType string, payload any, priority int) (string, error) {
	if priority < 0 {
		priority = 0
	}
	if priority > maxQueuePriority {
		priority = maxQueuePriority
	}

	rawPayload, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("marshal task payload failed: %w", err)
	}

	task := &model.ProcessingTask{
		ID:         uuid.NewString(),
		Type:       taskType,
		Status:     model.TaskStatusQueued,
		Priority:   priority,
		MaxRetries: p.maxRetries,
		Payload:    string(rawPayload),
	}
	if err := p.tasks.Create(task); err != nil {
		return "", err
	}

	body, err := json.Marshal(Message{TaskID: task.ID, Type: taskType, Payload: rawPayload})
	if err != nil {
		return "", fmt.Errorf("marshal task message failed: %w", err)
	}

	if err := p.publish(ctx, body, priority); err != nil {
		p.tracker.MarkFailed(ctx, task.ID, "enqueue failed")
		return "", err
	}

	p.tracker.mirror(ctx, task.ID, model.TaskStatusQueued)
	return task.ID, nil
}

// Status reads the Redis mirror first and falls back to the database row.
func (p *Producer) Status(ctx context.Context, taskID string) (*model.ProcessingTask, error) {
	return p.tracker.Status(ctx, taskID)
}

func (p *Producer) publish(ctx context.Context, body []byte, priority int) error {
	ch, err := p.conn.Channel()
	if err != nil {
		return fmt.Errorf("open rabbitmq channel failed: %w", err)
	}
	defer ch.Close()

	if _, err := DeclareTaskQueue(ch, p.queueName); err != nil {
		return err
	}

	if err := ch.PublishWithContext(
		ctx,
		"",
		p.queueName,
		false,
		false,
		amqp.Publishing{
			ContentType:  "application/json",
			Body:         body,
			DeliveryMode: amqp.Persistent,
			Priority:     uint8(priority),
		},
	); err != nil {
		return fmt.Errorf("publish task failed: %w", err)
	}
	return nil
}

// DeclareTaskQueue declares the durable priority-enabled task queue. Producer
// and worker both declare so either side can start first.
func DeclareTaskQueue(ch *amqp.Channel, name string) (amqp.Queue, error) {
	q, err := ch.QueueDeclare(
		name,
		true,
		false,
		false,
		false,
		amqp.Table{"x-max-priority": int32(maxQueuePriority)},
	)
	if err != nil {
		return amqp.Queue{}, fmt.Errorf("declare task queue failed: %w", err)
	}
	return q, nil
}
