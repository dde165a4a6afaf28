// Package service publishes activity messages to RabbitMQ. Publishing is
// best-effort: failures are logged and returned so callers can ignore them
// without interrupting the request.
package service

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"

	"github.com/iliyamo/content-hub/internal/config"
	"github.com/iliyamo/content-hub/internal/queue"
)

// Publisher publishes activities.
type Publisher interface {
	Publish(ctx context.Context, a queue.Activity) error
}

// AMQPPublisher opens a connection per publish and declares the durable
// queue before sending a persistent message to it.
type AMQPPublisher struct {
	url   string
	queue string
	log   *zap.Logger
}

func NewAMQPPublisher(c config.AMQPConfig, log *zap.Logger) *AMQPPublisher {
	return &AMQPPublisher{url: c.URL, queue: c.Queue, log: log}
}

func (p *AMQPPublisher) Publish(ctx context.Context, a queue.Activity) error {
	if a.OccurredAt.IsZero() {
		a.OccurredAt = time.Now().UTC()
	}
	conn, err := amqp.Dial(p.url)
	if err != nil {
		p.log.Warn("rabbitmq: dial failed", zap.Error(err))
		return err
	}
	defer func() { _ = conn.Close() }()

	ch, err := conn.Channel()
	if err != nil {
		p.log.Warn("rabbitmq: channel open failed", zap.Error(err))
		return err
	}
	defer func() { _ = ch.Close() }()

	if _, err := ch.QueueDeclare(p.queue, true, false, false, false, nil); err != nil {
		p.log.Warn("rabbitmq: queue declare failed", zap.Error(err))
		return err
	}

	body, err := json.Marshal(a)
	if err != nil {
		return err
	}
	pub := amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		Timestamp:    a.OccurredAt,
		Type:         a.Type,
		Body:         body,
	}
	if err := ch.PublishWithContext(ctx, "", p.queue, false, false, pub); err != nil {
		p.log.Warn("rabbitmq: publish failed", zap.Error(err), zap.String("type", a.Type))
		return err
	}
	return nil
}

// LogPublisher hands activities straight to an in-process consumer. It is
// used when the broker is disabled so logs and mail still flow.
type LogPublisher struct {
	Consumer *queue.Consumer
}

func (p LogPublisher) Publish(_ context.Context, a queue.Activity) error {
	if a.OccurredAt.IsZero() {
		a.OccurredAt = time.Now().UTC()
	}
	body, err := json.Marshal(a)
	if err != nil {
		return err
	}
	return p.Consumer.Handle(body)
}

// Recorder keeps published activities in memory.
type Recorder struct {
	mu   sync.Mutex
	list []queue.Activity
}

func (r *Recorder) Publish(_ context.Context, a queue.Activity) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.list = append(r.list, a)
	return nil
}

// Activities returns a copy of what was published so far.
func (r *Recorder) Activities() []queue.Activity {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]queue.Activity(nil), r.list...)
}

// New picks the AMQP publisher when the broker is enabled and the
// in-process one otherwise.
func New(c config.AMQPConfig, consumer *queue.Consumer, log *zap.Logger) Publisher {
	if c.Enabled {
		return NewAMQPPublisher(c, log)
	}
	return LogPublisher{Consumer: consumer}
}
