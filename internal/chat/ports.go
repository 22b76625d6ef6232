package chat

import (
	"context"

	"github.com/Vovarama1992/wallee-bot/internal/ai"
)

type Sender string

const (
	SenderUser Sender = "user"
	SenderBot  Sender = "bot"
)

// Message is one logged line of a conversation.
type Message struct {
	ID        int64
	ChannelID string
	Sender    Sender
	Text      string
	CreatedAt int64
}

// Event is a Slack message event as delivered by the Events API.
type Event struct {
	Type        string `json:"type"`
	Subtype     string `json:"subtype,omitempty"`
	Text        string `json:"text"`
	User        string `json:"user"`
	BotID       string `json:"bot_id,omitempty"`
	Channel     string `json:"channel"`
	ChannelType string `json:"channel_type"`
	TS          string `json:"ts"`
}

type Outbound interface {
	PostMessage(ctx context.Context, channel string, text string) error
}

// Repo persists the conversation log.
type Repo interface {
	SaveMessage(ctx context.Context, msg *Message) error
	RecentMessages(ctx context.Context, channelID string, limit int) ([]Message, error)
}

// Advisor suggests the command a user probably meant.
type Advisor interface {
	Suggest(ctx context.Context, text string, verbs []string, history []ai.Message) (string, error)
}

type Service interface {
	HandleIncoming(ctx context.Context, ev Event) error
	ReportFault(ctx context.Context, fault any, stack []byte)
}
