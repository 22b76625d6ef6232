package chat

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"runtime/debug"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/slack-go/slack/slackevents"
)

const (
	maxBodyBytes  = 1 << 20
	reportTimeout = 10 * time.Second
)

type Handler struct {
	svc           Service
	signingSecret string
	timeout       time.Duration
	log           logrus.FieldLogger

	spawn func(func())
}

// NewHandler serves Slack Events API callbacks. An empty signingSecret
// disables request verification.
func NewHandler(svc Service, signingSecret string, timeout time.Duration, log logrus.FieldLogger) *Handler {
	return &Handler{
		svc:           svc,
		signingSecret: signingSecret,
		timeout:       timeout,
		log:           log,
		spawn:         func(f func()) { go f() },
	}
}

// HandleEvents is the Slack entry point. Slack wants an ack within 3s, so message
// events are acknowledged first and processed on their own goroutine.
func (h *Handler) HandleEvents(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(io.LimitReader(r.Body, maxBodyBytes))
	if err != nil {
		http.Error(w, "read error", http.StatusBadRequest)
		return
	}

	if h.signingSecret != "" {
		if err := verifyRequest(h.signingSecret, r.Header, body); err != nil {
			h.log.WithError(err).Warn("rejected slack request")
			http.Error(w, "invalid signature", http.StatusUnauthorized)
			return
		}
	}

	// the signature already authenticates the request
	payload, err := slackevents.ParseEvent(json.RawMessage(body), slackevents.OptionNoVerifyToken())
	if err != nil {
		if !json.Valid(body) {
			http.Error(w, "invalid json", http.StatusBadRequest)
			return
		}
		h.log.WithError(err).Debug("unsupported slack event")
		w.WriteHeader(http.StatusOK)
		return
	}

	switch payload.Type {
	case slackevents.URLVerification:
		verification, ok := payload.Data.(*slackevents.EventsAPIURLVerificationEvent)
		if !ok {
			http.Error(w, "invalid challenge", http.StatusBadRequest)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]string{"challenge": verification.Challenge})
		return
	case slackevents.CallbackEvent:
	default:
		w.WriteHeader(http.StatusOK)
		return
	}

	// the first delivery is already being handled
	if r.Header.Get("X-Slack-Retry-Num") != "" {
		w.WriteHeader(http.StatusOK)
		return
	}

	msg, ok := payload.InnerEvent.Data.(*slackevents.MessageEvent)
	if !ok || msg.SubType != "" || msg.BotID != "" {
		w.WriteHeader(http.StatusOK)
		return
	}
	ev := eventFromMessage(msg)

	var eventID string
	if cb, ok := payload.Data.(*slackevents.EventsAPICallbackEvent); ok {
		eventID = cb.EventID
	}

	requestID := uuid.NewString()
	h.log.WithFields(logrus.Fields{
		"request_id": requestID,
		"event_id":   eventID,
		"channel":    ev.Channel,
	}).Debug("message event received")

	h.spawn(func() { h.process(ev, requestID) })

	w.WriteHeader(http.StatusOK)
}

func eventFromMessage(m *slackevents.MessageEvent) Event {
	return Event{
		Type:        m.Type,
		Subtype:     m.SubType,
		Text:        m.Text,
		User:        m.User,
		BotID:       m.BotID,
		Channel:     m.Channel,
		ChannelType: m.ChannelType,
		TS:          m.TimeStamp,
	}
}

func (h *Handler) process(ev Event, requestID string) {
	log := h.log.WithField("request_id", requestID)
	start := time.Now()

	defer func() {
		if rec := recover(); rec != nil {
			h.report(rec, debug.Stack())
		}
	}()

	ctx, cancel := context.WithTimeout(context.Background(), h.timeout)
	defer cancel()

	if err := h.svc.HandleIncoming(ctx, ev); err != nil {
		h.report(err, nil)
		return
	}

	log.WithField("took", time.Since(start).String()).Debug("message handled")
}

func (h *Handler) report(fault any, stack []byte) {
	ctx, cancel := context.WithTimeout(context.Background(), reportTimeout)
	defer cancel()
	h.svc.ReportFault(ctx, fault, stack)
}
