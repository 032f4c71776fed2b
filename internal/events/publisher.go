// Package events publishes import notifications to RabbitMQ.
package events

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/JonMunkholm/LeadTracker/internal/core"
)

const (
	DefaultExchange    = "ex.leads"
	RoutingKeyImported = "leads.imported"
)

// channel is the part of *amqp.Channel the publisher uses.
type channel interface {
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
	Close() error
}

// Publisher implements core.ImportNotifier over an AMQP channel.
type Publisher struct {
	mu       sync.Mutex
	conn     *amqp.Connection
	ch       channel
	exchange string
}

var _ core.ImportNotifier = (*Publisher)(nil)

// Dial connects to url and declares a durable topic exchange.
func Dial(url, exchange string) (*Publisher, error) {
	if exchange == "" {
		exchange = DefaultExchange
	}

	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("connect to rabbitmq: %w", err)
	}
	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("open channel: %w", err)
	}
	if err := ch.ExchangeDeclare(exchange, "topic", true, false, false, false, nil); err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("declare exchange %s: %w", exchange, err)
	}

	return &Publisher{conn: conn, ch: ch, exchange: exchange}, nil
}

func newPublisher(ch channel, exchange string) *Publisher {
	return &Publisher{ch: ch, exchange: exchange}
}

// NotifyImported publishes ev as a persistent JSON message.
func (p *Publisher) NotifyImported(ctx context.Context, ev core.ImportEvent) error {
	msg, err := importedMessage(ev)
	if err != nil {
		return err
	}

	// amqp channels are not safe for concurrent publishing.
	p.mu.Lock()
	defer p.mu.Unlock()

	if err := p.ch.PublishWithContext(ctx, p.exchange, RoutingKeyImported, false, false, msg); err != nil {
		return fmt.Errorf("publish %s: %w", RoutingKeyImported, err)
	}
	return nil
}

func importedMessage(ev core.ImportEvent) (amqp.Publishing, error) {
	body, err := json.Marshal(ev)
	if err != nil {
		return amqp.Publishing{}, fmt.Errorf("encode import event: %w", err)
	}
	return amqp.Publishing{
		ContentType:  "application/json",
		MessageId:    ev.EventID.String(),
		Type:         RoutingKeyImported,
		Body:         body,
		DeliveryMode: amqp.Persistent,
	}, nil
}

func (p *Publisher) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	err := p.ch.Close()
	if p.conn != nil {
		if cerr := p.conn.Close(); err == nil {
			err = cerr
		}
	}
	return err
}
