// Package realtime consumes the managed backend's row-change feed and turns
// row changes into cache invalidations. Mutations made by other replicas
// (or directly against the database) reach this server only through the
// feed, so without it a replica would serve stale cache entries for the
// full TTL.
package realtime

import (
	"context"
	"fmt"
	"time"

	json "github.com/goccy/go-json"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"

	"github.com/driftchat/drift/internal/application/invalidation"
)

// Config holds the changefeed connection settings.
type Config struct {
	URL    string // ws:// or wss:// endpoint of the changefeed
	APIKey string
}

// rowChange is one decoded changefeed frame: the table, the operation, and
// the changed row's columns as raw strings.
type rowChange struct {
	Table  string            `json:"table"`
	Type   string            `json:"type"` // INSERT, UPDATE, DELETE
	Record map[string]string `json:"record"`
	// OldRecord carries the pre-image on DELETE, where Record is empty.
	OldRecord map[string]string `json:"old_record,omitempty"`
}

// Listener maintains the changefeed connection and routes decoded changes
// into the invalidation Router.
type Listener struct {
	cfg    Config
	router *invalidation.Router
	logger *logrus.Logger
}

func NewListener(cfg Config, router *invalidation.Router, logger *logrus.Logger) *Listener {
	return &Listener{cfg: cfg, router: router, logger: logger}
}

// Run connects and consumes frames until ctx is cancelled, reconnecting
// with exponential backoff on any connection failure.
func (l *Listener) Run(ctx context.Context) {
	backoff := time.Second
	const maxBackoff = time.Minute

	for {
		if err := l.consume(ctx); err != nil {
			if ctx.Err() != nil {
				return
			}
			l.logger.WithError(err).Warn("changefeed connection lost, reconnecting")
		}

		select {
		case <-ctx.Done():
			return
		case <-time.After(backoff):
		}
		backoff *= 2
		if backoff > maxBackoff {
			backoff = maxBackoff
		}
	}
}

func (l *Listener) consume(ctx context.Context) error {
	dialer := websocket.Dialer{HandshakeTimeout: 10 * time.Second}
	url := l.cfg.URL
	if l.cfg.APIKey != "" {
		url += "?apikey=" + l.cfg.APIKey
	}

	conn, resp, err := dialer.DialContext(ctx, url, nil)
	if err != nil {
		if resp != nil {
			return fmt.Errorf("changefeed dial failed (status %d): %w", resp.StatusCode, err)
		}
		return fmt.Errorf("changefeed dial failed: %w", err)
	}
	defer conn.Close()
	if resp != nil && resp.Body != nil {
		_ = resp.Body.Close()
	}

	l.logger.WithFields(logrus.Fields{"url": l.cfg.URL}).Info("changefeed connected")

	// Close the connection when ctx is cancelled so ReadMessage unblocks.
	done := make(chan struct{})
	defer close(done)
	go func() {
		select {
		case <-ctx.Done():
			_ = conn.Close()
		case <-done:
		}
	}()

	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			return fmt.Errorf("changefeed read failed: %w", err)
		}

		var change rowChange
		if err := json.Unmarshal(data, &change); err != nil {
			l.logger.WithError(err).Warn("changefeed: undecodable frame, skipping")
			continue
		}
		l.dispatch(ctx, change)
	}
}

// dispatch maps one row change onto the invalidation event for its table.
// Unknown tables are skipped: a new table is not a reason to drop the feed.
func (l *Listener) dispatch(ctx context.Context, change rowChange) {
	record := change.Record
	if len(record) == 0 {
		record = change.OldRecord
	}

	switch change.Table {
	case "users":
		if id, ok := parseID(record, "id"); ok {
			l.router.Apply(ctx, invalidation.ProfileUpdated{UserID: id})
		}
	case "friendships":
		requester, okR := parseID(record, "requester_id")
		receiver, okV := parseID(record, "receiver_id")
		if okR && okV {
			l.router.Apply(ctx, invalidation.FriendshipChanged{RequesterID: requester, ReceiverID: receiver})
		}
	case "messages":
		chatID, ok := parseID(record, "chat_id")
		if !ok {
			return
		}
		if change.Type == "DELETE" {
			if messageID, ok := parseID(record, "id"); ok {
				l.router.Apply(ctx, invalidation.MessageRemoved{ChatID: chatID, MessageID: messageID})
			}
			return
		}
		l.router.Apply(ctx, invalidation.MessagePosted{ChatID: chatID})
	case "message_reactions":
		messageID, okM := parseID(record, "message_id")
		userID, okU := parseID(record, "user_id")
		if okM && okU {
			l.router.Apply(ctx, invalidation.ReactionToggled{MessageID: messageID, UserID: userID})
		}
	case "message_reads":
		chatID, okC := parseID(record, "chat_id")
		userID, okU := parseID(record, "user_id")
		if okC && okU {
			l.router.Apply(ctx, invalidation.ReadMarked{ChatID: chatID, UserID: userID})
		}
	default:
		l.logger.WithFields(logrus.Fields{"table": change.Table}).Debug("changefeed: ignoring table")
	}
}

func parseID(record map[string]string, column string) (uuid.UUID, bool) {
	raw, ok := record[column]
	if !ok {
		return uuid.Nil, false
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, false
	}
	return id, true
}
