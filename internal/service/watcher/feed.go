package watcher

import (
	"log"
	"time"

	"github.com/lib/pq"
)

// Feed is a stream of location IDs emitted when shares are inserted. The
// Postgres implementation reconnects on its own; consumers only see a
// possibly gappy sequence of IDs, never the connection lifecycle.
type Feed interface {
	Events() <-chan string
	Ping() error
	Close() error
}

type postgresFeed struct {
	listener *pq.Listener
	events   chan string
}

// NewPostgresFeed subscribes to the notification channel the location
// repository raises on every insert.
func NewPostgresFeed(databaseURL, channel string, minBackoff, maxBackoff time.Duration) (Feed, error) {
	listener := pq.NewListener(databaseURL, minBackoff, maxBackoff, func(ev pq.ListenerEventType, err error) {
		if err != nil {
			log.Printf("change feed connection event: %v", err)
		}
	})

	if err := listener.Listen(channel); err != nil {
		_ = listener.Close()
		return nil, err
	}

	f := &postgresFeed{
		listener: listener,
		events:   make(chan string, 64),
	}
	go f.pump()
	return f, nil
}

func (f *postgresFeed) pump() {
	defer close(f.events)
	for n := range f.listener.Notify {
		if n == nil {
			// Reconnect marker: notifications sent while the connection
			// was down are gone. Live shares are re-read from the table,
			// so a gap only costs a push, not data.
			continue
		}
		f.events <- n.Extra
	}
}

func (f *postgresFeed) Events() <-chan string { return f.events }

func (f *postgresFeed) Ping() error { return f.listener.Ping() }

func (f *postgresFeed) Close() error { return f.listener.Close() }
