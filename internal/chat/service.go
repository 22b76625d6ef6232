// Package chat connects Slack direct messages to the command registry.
package chat

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/Vovarama1992/wallee-bot/internal/ai"
	"github.com/Vovarama1992/wallee-bot/internal/cache"
	"github.com/Vovarama1992/wallee-bot/internal/protocol"
	"github.com/Vovarama1992/wallee-bot/internal/registry"
)

const (
	RedirectReply = "Hey lets move this over to a direct conversation! Thanks!"
	FaultReply    = "I don't feel so good, can you check out my code?"

	directChannelType = "im"
	historyLimit      = 10
)

type service struct {
	registry       *registry.Registry
	defaultService string
	anchor         *cache.Anchor
	repo           Repo
	outbound       Outbound
	advisor        Advisor
	log            logrus.FieldLogger
}

// NewService builds the dispatcher. Commands go to defaultService; advisor
// may be nil.
func NewService(
	reg *registry.Registry,
	defaultService string,
	anchor *cache.Anchor,
	repo Repo,
	outbound Outbound,
	advisor Advisor,
	log logrus.FieldLogger,
) Service {
	return &service{
		registry:       reg,
		defaultService: defaultService,
		anchor:         anchor,
		repo:           repo,
		outbound:       outbound,
		advisor:        advisor,
		log:            log,
	}
}

func (s *service) HandleIncoming(ctx context.Context, ev Event) error {
	log := s.log.WithFields(logrus.Fields{
		"channel":      ev.Channel,
		"channel_type": ev.ChannelType,
		"user":         ev.User,
	})

	if ev.ChannelType != directChannelType {
		log.Debug("message outside a direct conversation")
		return s.outbound.PostMessage(ctx, ev.Channel, RedirectReply)
	}

	if s.anchor.SetIfUnset(ev.Channel) {
		log.Info("fault report channel anchored")
	}

	s.save(ctx, ev.Channel, SenderUser, ev.Text)

	reply := s.reply(ctx, ev.Channel, ev.Text)

	s.save(ctx, ev.Channel, SenderBot, reply)

	return s.outbound.PostMessage(ctx, ev.Channel, reply)
}

func (s *service) reply(ctx context.Context, channel, text string) string {
	cmd, err := protocol.Parse(text)
	if err != nil {
		return s.usage()
	}

	verb := strings.ToLower(cmd.Verb)
	op, err := s.registry.Resolve(s.defaultService, verb)
	switch {
	case errors.Is(err, registry.ErrUnknownVerb):
		return s.unknownVerb(ctx, channel, text, cmd.Verb)
	case err != nil:
		s.log.WithError(err).Error("default service is not registered")
		return "Sorry, I can't reach that service right now."
	}

	s.log.WithFields(logrus.Fields{
		"service": s.defaultService,
		"verb":    verb,
		"params":  len(cmd.Params),
	}).Info("dispatching command")

	return op(ctx, cmd.Params)
}

func (s *service) usage() string {
	return "Sorry, I didn't catch a command. I understand: " +
		strings.Join(s.registry.Verbs(s.defaultService), ", ") + "."
}

func (s *service) unknownVerb(ctx context.Context, channel, text, verb string) string {
	verbs := s.registry.Verbs(s.defaultService)
	msg := fmt.Sprintf("Sorry, I don't know how to `%s`. I understand: %s.", verb, strings.Join(verbs, ", "))

	if s.advisor == nil {
		return msg
	}

	suggestion, err := s.advisor.Suggest(ctx, text, verbs, s.history(ctx, channel))
	if err != nil {
		s.log.WithError(err).Warn("command advisor failed")
		return msg
	}
	if suggestion == "" {
		return msg
	}
	return msg + "\nDid you mean `" + suggestion + "`?"
}

func (s *service) history(ctx context.Context, channel string) []ai.Message {
	msgs, err := s.repo.RecentMessages(ctx, channel, historyLimit)
	if err != nil {
		s.log.WithError(err).Warn("load history")
		return nil
	}

	out := make([]ai.Message, 0, len(msgs))
	for _, m := range msgs {
		role := "user"
		if m.Sender == SenderBot {
			role = "assistant"
		}
		out = append(out, ai.Message{Role: role, Text: m.Text})
	}
	return out
}

func (s *service) save(ctx context.Context, channel string, sender Sender, text string) {
	err := s.repo.SaveMessage(ctx, &Message{ChannelID: channel, Sender: sender, Text: text})
	if err != nil {
		s.log.WithError(err).WithField("sender", sender).Warn("save message")
	}
}

// ReportFault logs an unhandled fault and posts it to the anchor channel.
// Before any direct message has been seen there is no anchor and the fault
// is only logged.
func (s *service) ReportFault(ctx context.Context, fault any, stack []byte) {
	entry := s.log.WithField("fault", fmt.Sprint(fault))
	if len(stack) > 0 {
		entry = entry.WithField("stack", string(stack))
	}
	entry.Error("unhandled fault")

	channel, ok := s.anchor.Channel()
	if !ok {
		s.log.Warn("no anchor channel yet, fault reported to log only")
		return
	}

	text := FaultReply + "\n\n```" + fmt.Sprint(fault)
	if len(stack) > 0 {
		text += "\n" + string(stack)
	}
	text += "```"

	if err := s.outbound.PostMessage(ctx, channel, text); err != nil {
		s.log.WithError(err).WithField("channel", channel).Error("post fault report")
	}
}
