package sink

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/nats-io/nats.go"

	"git.home.luguber.info/inful/contentpipe/internal/content"
	"git.home.luguber.info/inful/contentpipe/internal/foundation/errors"
)

// Headers set on every published message.
const (
	HeaderID        = "Content-Id"
	HeaderExtension = "Content-Extension"
)

// Publisher is the subset of *nats.Conn used by NATS.
type Publisher interface {
	PublishMsg(msg *nats.Msg) error
}

// NATS publishes each record as JSON on a fixed subject.
type NATS struct {
	pub     Publisher
	conn    *nats.Conn
	subject string
}

// NewNATS connects to url and publishes on subject.
func NewNATS(url, subject string) (*NATS, error) {
	conn, err := nats.Connect(url,
		nats.Name("contentpipe"),
		nats.MaxReconnects(-1),
		nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
			if err != nil {
				slog.Warn("NATS disconnected", "error", err)
			}
		}),
		nats.ReconnectHandler(func(c *nats.Conn) {
			slog.Info("NATS reconnected", "url", c.ConnectedUrl())
		}),
	)
	if err != nil {
		return nil, errors.WrapError(err, errors.CategoryMessaging, "failed to connect to NATS").
			WithContext("url", url).
			Build()
	}
	slog.Info("NATS sink connected", "url", url, "subject", subject)
	return &NATS{pub: conn, conn: conn, subject: subject}, nil
}

// NewNATSWithPublisher publishes through pub instead of a dialed connection.
func NewNATSWithPublisher(pub Publisher, subject string) *NATS {
	return &NATS{pub: pub, subject: subject}
}

func (s *NATS) Name() string { return "nats" }

func (s *NATS) Write(_ context.Context, rec content.Parsed) error {
	data, err := json.Marshal(rec)
	if err != nil {
		return errors.WrapError(err, errors.CategoryMessaging, "marshal record").WithContext("id", rec.ID()).Build()
	}
	msg := nats.NewMsg(s.subject)
	msg.Data = data
	msg.Header.Set(HeaderID, rec.ID())
	msg.Header.Set(HeaderExtension, content.Extension(rec.ID()))
	if err := s.pub.PublishMsg(msg); err != nil {
		return errors.WrapError(err, errors.CategoryMessaging, "failed to publish record").
			WithContext("id", rec.ID()).
			WithContext("subject", s.subject).
			Build()
	}
	return nil
}

// Close drains the connection when NATS dialed it itself.
func (s *NATS) Close() error {
	if s.conn == nil {
		return nil
	}
	return s.conn.Drain()
}
