package pgnotify

import (
	"context"
	"fmt"
	"strings"

	"github.com/uptrace/bun"
)

// DefaultChannel is the LISTEN/NOTIFY channel used for record changes.
const DefaultChannel = "siteadmin_records"

// Publisher issues pg_notify for committed record writes.
type Publisher struct {
	db      bun.IDB
	channel string
}

// NewPublisher builds a publisher on db. An empty channel selects DefaultChannel.
func NewPublisher(db bun.IDB, channel string) *Publisher {
	channel = strings.TrimSpace(channel)
	if channel == "" {
		channel = DefaultChannel
	}
	return &Publisher{db: db, channel: channel}
}

// Channel reports the notification channel.
func (p *Publisher) Channel() string {
	return p.channel
}

// Publish sends the collection name as the notification payload.
func (p *Publisher) Publish(ctx context.Context, table string) error {
	if p == nil || p.db == nil {
		return nil
	}
	if _, err := p.db.ExecContext(ctx, "SELECT pg_notify(?, ?)", p.channel, table); err != nil {
		return fmt.Errorf("pgnotify: publish %s: %w", table, err)
	}
	return nil
}
