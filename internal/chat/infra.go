package chat

import (
	"context"
	"database/sql"
)

const schema = `
CREATE TABLE IF NOT EXISTS messages (
	id         BIGSERIAL PRIMARY KEY,
	channel_id TEXT        NOT NULL,
	sender     TEXT        NOT NULL,
	text       TEXT        NOT NULL,
	created_at TIMESTAMPTZ NOT NULL DEFAULT now()
)`

type repo struct {
	db *sql.DB
}

func NewRepo(db *sql.DB) Repo {
	return &repo{db: db}
}

func EnsureSchema(ctx context.Context, db *sql.DB) error {
	_, err := db.ExecContext(ctx, schema)
	return err
}

func (r *repo) SaveMessage(ctx context.Context, msg *Message) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO messages (channel_id, sender, text)
		VALUES ($1, $2, $3)
	`,
		msg.ChannelID,
		string(msg.Sender),
		msg.Text,
	)
	return err
}

// RecentMessages returns up to limit of the channel's latest messages, oldest first.
func (r *repo) RecentMessages(ctx context.Context, channelID string, limit int) ([]Message, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, channel_id, sender, text, extract(epoch from created_at)::bigint
		FROM messages
		WHERE channel_id = $1
		ORDER BY created_at DESC, id DESC
		LIMIT $2
	`, channelID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Message
	for rows.Next() {
		var m Message
		var sender string
		if err := rows.Scan(
			&m.ID,
			&m.ChannelID,
			&sender,
			&m.Text,
			&m.CreatedAt,
		); err != nil {
			return nil, err
		}
		m.Sender = Sender(sender)
		out = append(out, m)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for i, j := 0, len(out)-1; i < j; i, j = i+1, j-1 {
		out[i], out[j] = out[j], out[i]
	}
	return out, nil
}

// NopRepo is used when no database is configured.
type NopRepo struct{}

func (NopRepo) SaveMessage(context.Context, *Message) error { return nil }

func (NopRepo) RecentMessages(context.Context, string, int) ([]Message, error) { return nil, nil }
