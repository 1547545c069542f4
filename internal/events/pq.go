package events

import (
	"context"
	"time"

	"github.com/lib/pq"
	"github.com/sirupsen/logrus"

	"github.com/gfdmit/web-forum/board-service/config"
)

const pingInterval = 90 * time.Second

type notifier interface {
	NotificationChannel() <-chan *pq.Notification
	Ping() error
	Close() error
}

// PQSubscriber feeds PostgreSQL NOTIFY payloads to a Listener.
type PQSubscriber struct {
	conn     notifier
	listener *Listener
	log      logrus.FieldLogger
	ping     time.Duration
}

func NewPQSubscriber(conf config.Events, dsn string, listener *Listener, log logrus.FieldLogger) (*PQSubscriber, error) {
	log = log.WithField("source", "events")

	conn := pq.NewListener(dsn, conf.MinReconnect, conf.MaxReconnect, func(ev pq.ListenerEventType, err error) {
		switch ev {
		case pq.ListenerEventConnected:
			log.Info("listening for member deletions")
		case pq.ListenerEventDisconnected:
			log.WithError(err).Warn("notification connection lost")
		case pq.ListenerEventReconnected:
			log.Info("notification connection restored")
		case pq.ListenerEventConnectionAttemptFailed:
			log.WithError(err).Warn("notification reconnect failed")
		}
	})
	if err := listen(conn, conf.Channel, log); err != nil {
		return nil, err
	}

	return &PQSubscriber{
		conn:     conn,
		listener: listener,
		log:      log,
		ping:     pingInterval,
	}, nil
}

type channelListener interface {
	Listen(channel string) error
	Close() error
}

// listen subscribes conn to channel and closes conn when that fails.
func listen(conn channelListener, channel string, log logrus.FieldLogger) error {
	err := conn.Listen(channel)
	if err == nil {
		return nil
	}
	if closeErr := conn.Close(); closeErr != nil {
		log.WithError(closeErr).Debug("closing notification connection after failed listen")
	}
	return err
}

// Run blocks until ctx is done. PostgreSQL does not replay notices sent while
// the connection was down, so boards of deleted members are swept at start,
// after every reconnect and after a notice fails. A failed sweep is retried on
// the next ping tick.
func (s *PQSubscriber) Run(ctx context.Context) error {
	defer func() {
		if err := s.conn.Close(); err != nil {
			s.log.WithError(err).Debug("closing notification connection")
		}
	}()

	ticker := time.NewTicker(s.ping)
	defer ticker.Stop()

	pending := !s.reconcile(ctx)
	for {
		select {
		case <-ctx.Done():
			return nil
		case n := <-s.conn.NotificationChannel():
			if n == nil {
				// reconnected; notices may have been missed
				pending = !s.reconcile(ctx)
				continue
			}
			if err := s.listener.Handle(ctx, []byte(n.Extra)); err != nil {
				s.log.WithError(err).WithField("channel", n.Channel).Error("member deletion not applied")
				pending = !s.reconcile(ctx)
			}
		case <-ticker.C:
			if err := s.conn.Ping(); err != nil {
				s.log.WithError(err).Warn("notification connection ping failed")
			}
			if pending {
				pending = !s.reconcile(ctx)
			}
		}
	}
}

func (s *PQSubscriber) reconcile(ctx context.Context) bool {
	if err := s.listener.Reconcile(ctx); err != nil {
		s.log.WithError(err).Error("sweep of deleted members failed")
		return false
	}
	return true
}
