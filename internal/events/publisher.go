package events

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"sync"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/vedran77/habyx/internal/telemetry"
)

const (
	defaultQueueSize    = 1024
	defaultDialTimeout  = 3 * time.Second
	defaultSendTimeout  = 5 * time.Second
	defaultRetryBackoff = 5 * time.Second
)

// ErrQueueFull is returned by Publish when the outgoing buffer is full.
var ErrQueueFull = errors.New("event queue full")

type outgoing struct {
	routingKey string
	body       []byte
}

// Publisher sends envelopes to a durable topic exchange. Publish only
// enqueues; Run owns the broker connection, opening it lazily and reopening
// it after it drops.
type Publisher struct {
	url      string
	exchange string
	queue    chan outgoing

	dialTimeout  time.Duration
	sendTimeout  time.Duration
	retryBackoff time.Duration

	mu      sync.Mutex
	conn    *amqp.Connection
	ch      *amqp.Channel
	retryAt time.Time
}

func NewPublisher(url, exchange string) *Publisher {
	return &Publisher{
		url:          url,
		exchange:     exchange,
		queue:        make(chan outgoing, defaultQueueSize),
		dialTimeout:  defaultDialTimeout,
		sendTimeout:  defaultSendTimeout,
		retryBackoff: defaultRetryBackoff,
	}
}

// Publish hands the event to the background sender. It never waits on the
// broker.
func (p *Publisher) Publish(ctx context.Context, routingKey string, payload any) error {
	body, err := json.Marshal(NewEnvelope(routingKey, payload))
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}

	select {
	case p.queue <- outgoing{routingKey: routingKey, body: body}:
		return nil
	default:
		telemetry.EventsPublished.WithLabelValues(routingKey, "dropped").Inc()
		return ErrQueueFull
	}
}

// Run drains the queue until ctx is cancelled.
func (p *Publisher) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case msg := <-p.queue:
			if err := p.send(ctx, msg); err != nil {
				slog.Warn("event publish failed", "routing_key", msg.routingKey, "err", err)
			}
		}
	}
}

func (p *Publisher) send(ctx context.Context, msg outgoing) error {
	ctx, cancel := context.WithTimeout(ctx, p.sendTimeout)
	defer cancel()

	p.mu.Lock()
	defer p.mu.Unlock()

	ch, err := p.channel(ctx)
	if err != nil {
		telemetry.EventsPublished.WithLabelValues(msg.routingKey, "error").Inc()
		return err
	}

	err = ch.PublishWithContext(ctx,
		p.exchange,     // exchange
		msg.routingKey, // routing key
		false,          // mandatory
		false,          // immediate
		amqp.Publishing{
			ContentType:  "application/json",
			DeliveryMode: amqp.Persistent,
			Body:         msg.body,
		},
	)
	if err != nil {
		p.reset()
		telemetry.EventsPublished.WithLabelValues(msg.routingKey, "error").Inc()
		return fmt.Errorf("publish %s: %w", msg.routingKey, err)
	}
	telemetry.EventsPublished.WithLabelValues(msg.routingKey, "ok").Inc()
	return nil
}

// channel returns an open channel, dialing if needed. After a failed dial
// it refuses to redial until retryBackoff has passed. Caller holds mu.
func (p *Publisher) channel(ctx context.Context) (*amqp.Channel, error) {
	if p.ch != nil && !p.ch.IsClosed() {
		return p.ch, nil
	}
	p.reset()

	if time.Now().Before(p.retryAt) {
		return nil, errors.New("rabbitmq unavailable, waiting to redial")
	}

	conn, err := amqp.DialConfig(p.url, amqp.Config{
		Heartbeat: 10 * time.Second,
		Locale:    "en_US",
		Dial:      p.dialer(ctx),
	})
	if err != nil {
		p.retryAt = time.Now().Add(p.retryBackoff)
		return nil, fmt.Errorf("rabbitmq dial: %w", err)
	}
	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("rabbitmq channel: %w", err)
	}
	if err := ch.ExchangeDeclare(
		p.exchange, // name
		"topic",    // kind
		true,       // durable
		false,      // autoDelete
		false,      // internal
		false,      // noWait
		nil,        // args
	); err != nil {
		_ = ch.Close()
		_ = conn.Close()
		return nil, fmt.Errorf("rabbitmq exchange declare: %w", err)
	}

	p.conn, p.ch = conn, ch
	p.retryAt = time.Time{}
	slog.Info("rabbitmq publisher connected", "exchange", p.exchange)
	return ch, nil
}

// dialer bounds both the TCP connect and the AMQP handshake by dialTimeout
// and ctx. The client clears the deadline once the connection is open.
func (p *Publisher) dialer(ctx context.Context) func(network, addr string) (net.Conn, error) {
	return func(network, addr string) (net.Conn, error) {
		d := net.Dialer{Timeout: p.dialTimeout}
		conn, err := d.DialContext(ctx, network, addr)
		if err != nil {
			return nil, err
		}
		deadline := time.Now().Add(p.dialTimeout)
		if dl, ok := ctx.Deadline(); ok && dl.Before(deadline) {
			deadline = dl
		}
		if err := conn.SetDeadline(deadline); err != nil {
			_ = conn.Close()
			return nil, err
		}
		return conn, nil
	}
}

func (p *Publisher) reset() {
	if p.ch != nil {
		_ = p.ch.Close()
		p.ch = nil
	}
	if p.conn != nil {
		_ = p.conn.Close()
		p.conn = nil
	}
}

func (p *Publisher) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.reset()
	return nil
}
