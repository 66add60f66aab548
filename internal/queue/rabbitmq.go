// Package queue provides the durable RabbitMQ re-screen queue.
//
// When a posting's required skills change, every application of that posting
// is enqueued here; a consumer in main re-runs the matching engine so scores
// stay consistent with the current skills list.
package queue

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
)

const rescreenQueue = "rescreen_queue"

// RescreenJob is the message enqueued for one application re-score.
type RescreenJob struct {
	ApplicationID int    `json:"applicationId"`
	JobID         int    `json:"jobId"`
	Reason        string `json:"reason"`
}

// RabbitMQ wraps a connection, channel and the declared re-screen queue.
type RabbitMQ struct {
	conn  *amqp.Connection
	ch    *amqp.Channel
	queue amqp.Queue
}

// New dials RabbitMQ and declares the durable re-screen queue.
func New(url string) (*RabbitMQ, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("amqp.Dial: %w", err)
	}

	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("open channel: %w", err)
	}

	q, err := ch.QueueDeclare(
		rescreenQueue,
		true,  // durable
		false, // delete when unused
		false, // exclusive
		false, // no-wait
		nil,
	)
	if err != nil {
		ch.Close()
		conn.Close()
		return nil, fmt.Errorf("declare queue: %w", err)
	}

	return &RabbitMQ{conn: conn, ch: ch, queue: q}, nil
}

// Close releases the channel and connection.
func (r *RabbitMQ) Close() {
	r.ch.Close()
	r.conn.Close()
}

// PublishRescreen enqueues one application for re-scoring.
func (r *RabbitMQ) PublishRescreen(ctx context.Context, job RescreenJob) error {
	body, err := json.Marshal(job)
	if err != nil {
		return fmt.Errorf("marshal rescreen job: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	return r.ch.PublishWithContext(
		ctx,
		"",           // exchange
		r.queue.Name, // routing key
		false,
		false,
		amqp.Publishing{
			ContentType: "application/json",
			Body:        body,
		},
	)
}

// ConsumeRescreens delivers queued jobs to handler on a background goroutine.
func (r *RabbitMQ) ConsumeRescreens(handler func(RescreenJob)) error {
	msgs, err := r.ch.Consume(
		r.queue.Name,
		"",
		true,  // auto-ack
		false, // exclusive
		false, // no-local
		false, // no-wait
		nil,
	)
	if err != nil {
		return fmt.Errorf("register consumer: %w", err)
	}

	go func() {
		for d := range msgs {
			var job RescreenJob
			if err := json.Unmarshal(d.Body, &job); err != nil {
				log.Printf("[queue] invalid rescreen payload: %v", err)
				continue
			}
			handler(job)
		}
	}()

	return nil
}
