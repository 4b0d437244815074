package queue

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"
)

// Message is one queued evaluation request.
type Message struct {
	EvaluationJobID uuid.UUID  `json:"evaluation_job_id"`
	CandidateID     uuid.UUID  `json:"candidate_id"`
	JobID           uuid.UUID  `json:"job_id"`
	PromptID        *uuid.UUID `json:"prompt_id,omitempty"`
	RequestedBy     string     `json:"requested_by,omitempty"`
}

// Delivery couples one decoded message with its broker acknowledgement.
// The consumer acks after the job record reaches a terminal state; anything
// unacked when the connection drops is redelivered by the broker.
type Delivery struct {
	Message Message
	ack     func() error
}

func NewDelivery(msg Message, ack func() error) Delivery {
	return Delivery{Message: msg, ack: ack}
}

func (d Delivery) Ack() error {
	if d.ack == nil {
		return nil
	}
	return d.ack()
}

// Queue is the broker boundary consumed by the bulk evaluation runner.
type Queue interface {
	Publish(ctx context.Context, msg Message) error
	Consume(ctx context.Context) (<-chan Delivery, error)
	Close() error
}

type rabbitMQ struct {
	conn    *amqp.Connection
	channel *amqp.Channel
	queue   amqp.Queue
	logger  *zap.Logger
}

// NewRabbitMQ connects to the broker and declares a durable queue so
// enqueued jobs survive a broker restart.
func NewRabbitMQ(url, queueName string, logger *zap.Logger) (Queue, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to RabbitMQ: %w", err)
	}

	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to open channel: %w", err)
	}

	q, err := ch.QueueDeclare(
		queueName,
		true,  // durable
		false, // delete when unused
		false, // exclusive
		false, // no-wait
		nil,   // args
	)
	if err != nil {
		ch.Close()
		conn.Close()
		return nil, fmt.Errorf("failed to declare queue: %w", err)
	}

	logger.Info("connected to RabbitMQ", zap.String("queue", queueName))

	return &rabbitMQ{conn: conn, channel: ch, queue: q, logger: logger}, nil
}

func (r *rabbitMQ) Publish(ctx context.Context, msg Message) error {
	body, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("failed to marshal message: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	err = r.channel.PublishWithContext(
		ctx,
		"",           // exchange
		r.queue.Name, // routing key
		false,
		false,
		amqp.Publishing{
			ContentType:  "application/json",
			DeliveryMode: amqp.Persistent,
			Body:         body,
		},
	)
	if err != nil {
		return fmt.Errorf("failed to publish message: %w", err)
	}
	return nil
}

// Consume delivers decoded messages until the context is cancelled.
// Deliveries are acked by the worker once the job record is terminal, so a
// crash mid-evaluation requeues the message instead of losing it.
// Malformed payloads are logged and discarded without requeue.
func (r *rabbitMQ) Consume(ctx context.Context) (<-chan Delivery, error) {
	deliveries, err := r.channel.Consume(
		r.queue.Name,
		"",
		false, // manual ack; retry bookkeeping lives in the job records
		false, // exclusive
		false, // no-local
		false, // no-wait
		nil,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to register consumer: %w", err)
	}

	out := make(chan Delivery)
	go func() {
		defer close(out)
		for {
			select {
			case <-ctx.Done():
				return
			case d, ok := <-deliveries:
				if !ok {
					return
				}
				var msg Message
				if err := json.Unmarshal(d.Body, &msg); err != nil {
					r.logger.Warn("dropping malformed queue message", zap.Error(err))
					if nackErr := d.Nack(false, false); nackErr != nil {
						r.logger.Warn("failed to nack malformed message", zap.Error(nackErr))
					}
					continue
				}
				delivery := NewDelivery(msg, func() error {
					return d.Ack(false)
				})
				select {
				case out <- delivery:
				case <-ctx.Done():
					return
				}
			}
		}
	}()

	return out, nil
}

func (r *rabbitMQ) Close() error {
	if err := r.channel.Close(); err != nil {
		r.conn.Close()
		return fmt.Errorf("failed to close channel: %w", err)
	}
	if err := r.conn.Close(); err != nil {
		return fmt.Errorf("failed to close connection: %w", err)
	}
	return nil
}
