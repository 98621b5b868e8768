package events

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/nats-io/nats.go"

	ferrors "git.home.luguber.info/inful/sitesmith/internal/foundation/errors"
	"git.home.luguber.info/inful/sitesmith/internal/logfields"
	"git.home.luguber.info/inful/sitesmith/internal/retry"
)

// Publisher sends raw messages.
type Publisher interface {
	Publish(ctx context.Context, subject string, data []byte) error
	Close() error
}

// NATSPublisher publishes over a core NATS connection.
type NATSPublisher struct {
	conn *nats.Conn
}

// NewNATSPublisher connects to url, retrying the initial connection per policy.
func NewNATSPublisher(ctx context.Context, url string, policy retry.Policy) (*NATSPublisher, error) {
	var conn *nats.Conn
	err := policy.Do(ctx, "nats connect", func(context.Context) error {
		c, err := nats.Connect(url,
			nats.Name("sitesmith"),
			nats.Timeout(5*time.Second),
			nats.MaxReconnects(5),
			nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
				if err != nil {
					slog.Warn("NATS disconnected", logfields.Error(err))
				}
			}),
		)
		conn = c
		return err
	})
	if err != nil {
		return nil, ferrors.NetworkError("failed to connect to NATS").
			WithCause(err).
			WithContext("url", url).
			Build()
	}
	slog.Info("NATS publisher connected", logfields.URL(conn.ConnectedUrlRedacted()))
	return &NATSPublisher{conn: conn}, nil
}

// Publish sends data and waits until the server acknowledged the flush or ctx ends.
func (p *NATSPublisher) Publish(ctx context.Context, subject string, data []byte) error {
	if err := p.conn.Publish(subject, data); err != nil {
		return fmt.Errorf("publish %s: %w", subject, err)
	}
	if err := p.conn.FlushWithContext(ctx); err != nil {
		return fmt.Errorf("flush %s: %w", subject, err)
	}
	return nil
}

// Close drains and closes the connection.
func (p *NATSPublisher) Close() error {
	if p.conn == nil {
		return nil
	}
	if err := p.conn.Drain(); err != nil {
		p.conn.Close()
		return err
	}
	return nil
}
