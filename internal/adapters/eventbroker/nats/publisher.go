package nats

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"fileflow/internal/config"
	"fileflow/internal/core/port"

	"github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/jetstream"
)

// Publisher publishes relayed outbox messages to JetStream. Publish returns
// a bool per the port contract: the outbox scheduler only needs to know
// whether the message is safely in the stream.
type Publisher struct {
	logger *slog.Logger
	conn   *nats.Conn
	js     jetstream.JetStream
	config config.NATSConfig
}

// NewNATSPublisher creates a publisher and ensures the stream covers the
// publish prefix
func NewNATSPublisher(ctx context.Context, cfg config.NATSConfig, logger *slog.Logger) (*Publisher, error) {
	opts := []nats.Option{
		nats.Name(cfg.ConsumerName + "-publisher"),
		nats.ReconnectWait(2 * time.Second),
		nats.MaxReconnects(-1),
		nats.DisconnectErrHandler(func(nc *nats.Conn, err error) {
			logger.Warn("NATS disconnected", "error", err)
		}),
		nats.ReconnectHandler(func(nc *nats.Conn) {
			logger.Info("NATS reconnected", "url", nc.ConnectedUrl())
		}),
	}
	conn, err := nats.Connect(cfg.URL, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to NATS: %w", err)
	}

	js, err := jetstream.New(conn)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to JetStream: %w", err)
	}

	_, err = js.CreateOrUpdateStream(ctx, jetstream.StreamConfig{
		Name:     cfg.StreamName,
		Subjects: []string{cfg.EventSubject, cfg.PublishPrefix + ".>"},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to ensure stream: %w", err)
	}

	return &Publisher{
		conn:   conn,
		js:     js,
		config: cfg,
		logger: logger,
	}, nil
}

var _ port.MessagePublisher = (*Publisher)(nil)

// Publish sends one message under the event-type subject. False means the
// stream did not acknowledge the message.
func (p *Publisher) Publish(ctx context.Context, eventType string, payload []byte) bool {
	subject := fmt.Sprintf("%s.%s", p.config.PublishPrefix, eventType)

	if _, err := p.js.Publish(ctx, subject, payload); err != nil {
		p.logger.Error("failed to publish message", "subject", subject, "error", err)
		return false
	}
	return true
}

// Close graceful shutdown
func (p *Publisher) Close() error {
	if p.conn != nil {
		p.conn.Close()
	}
	return nil
}
