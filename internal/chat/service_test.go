package chat

import (
	"context"
	"errors"
	"strings"
	"testing"

	logtest "github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Vovarama1992/wallee-bot/internal/cache"
	"github.com/Vovarama1992/wallee-bot/internal/registry"
)

type captured struct {
	params []string
}

func newTestRegistry(t *testing.T, got *captured) *registry.Registry {
	t.Helper()

	echo := func(name string) registry.Operation {
		return func(_ context.Context, params []string) string {
			got.params = params
			return name + ":" + strings.Join(params, "|")
		}
	}

	reg, err := registry.NewBuilder().
		Register("identity", registry.Handlers{
			"list":   echo("list"),
			"query":  echo("query"),
			"update": echo("update"),
			"create": echo("create"),
		}).
		Build()
	require.NoError(t, err)
	return reg
}

type harness struct {
	svc      Service
	anchor   *cache.Anchor
	repo     *memRepo
	outbound *fakeOutbound
	got      *captured
	hook     *logtest.Hook
}

func newHarness(t *testing.T, advisor Advisor) *harness {
	t.Helper()

	got := &captured{}
	logger, hook := logtest.NewNullLogger()
	h := &harness{
		anchor:   cache.NewAnchor(cache.NewStore()),
		repo:     &memRepo{},
		outbound: &fakeOutbound{},
		got:      got,
		hook:     hook,
	}
	h.svc = NewService(newTestRegistry(t, got), "identity", h.anchor, h.repo, h.outbound, advisor, logger)
	return h
}

func dm(text string) Event {
	return Event{Type: "message", Text: text, Channel: "D100", ChannelType: "im", User: "U1"}
}

func TestHandleIncomingDispatchesDirectMessage(t *testing.T) {
	h := newHarness(t, nil)

	err := h.svc.HandleIncoming(context.Background(), dm("update a@b.com title=Eng desc=some description"))
	require.NoError(t, err)

	assert.Equal(t, []string{"a@b.com", "title=Eng", "desc=some", "description"}, h.got.params)
	require.Len(t, h.outbound.all(), 1)
	assert.Equal(t, posted{Channel: "D100", Text: "update:a@b.com|title=Eng|desc=some|description"}, h.outbound.all()[0])

	require.Len(t, h.repo.msgs, 2)
	assert.Equal(t, SenderUser, h.repo.msgs[0].Sender)
	assert.Equal(t, SenderBot, h.repo.msgs[1].Sender)
}

func TestHandleIncomingVerbIsCaseInsensitive(t *testing.T) {
	h := newHarness(t, nil)

	require.NoError(t, h.svc.HandleIncoming(context.Background(), dm("LIST")))

	assert.Equal(t, "list:", h.outbound.all()[0].Text)
}

func TestHandleIncomingRedirectsNonDirectChannels(t *testing.T) {
	h := newHarness(t, nil)

	for _, kind := range []string{"channel", "group", "mpim", ""} {
		ev := Event{Type: "message", Text: "list", Channel: "C1", ChannelType: kind}
		require.NoError(t, h.svc.HandleIncoming(context.Background(), ev))
	}

	for _, p := range h.outbound.all() {
		assert.Equal(t, posted{Channel: "C1", Text: RedirectReply}, p)
	}
	assert.Nil(t, h.got.params)
	assert.Empty(t, h.repo.msgs)
	_, anchored := h.anchor.Channel()
	assert.False(t, anchored)
}

func TestHandleIncomingAnchorsFirstDirectChannel(t *testing.T) {
	h := newHarness(t, nil)
	ctx := context.Background()

	require.NoError(t, h.svc.HandleIncoming(ctx, dm("list")))
	second := dm("list")
	second.Channel = "D200"
	require.NoError(t, h.svc.HandleIncoming(ctx, second))

	channel, ok := h.anchor.Channel()
	require.True(t, ok)
	assert.Equal(t, "D100", channel)
}

func TestHandleIncomingEmptyCommand(t *testing.T) {
	h := newHarness(t, nil)

	require.NoError(t, h.svc.HandleIncoming(context.Background(), dm("   ")))

	assert.Equal(t, "Sorry, I didn't catch a command. I understand: create, list, query, update.", h.outbound.all()[0].Text)
}

func TestHandleIncomingUnknownVerb(t *testing.T) {
	h := newHarness(t, nil)

	require.NoError(t, h.svc.HandleIncoming(context.Background(), dm("delete a@b.com")))

	assert.Equal(t, "Sorry, I don't know how to `delete`. I understand: create, list, query, update.", h.outbound.all()[0].Text)
}

func TestHandleIncomingUnknownVerbWithAdvisor(t *testing.T) {
	advisor := &stubAdvisor{suggestion: "query a@b.com title"}
	h := newHarness(t, advisor)

	require.NoError(t, h.svc.HandleIncoming(context.Background(), dm("qeury a@b.com title")))

	text := h.outbound.all()[0].Text
	assert.True(t, strings.HasSuffix(text, "\nDid you mean `query a@b.com title`?"), text)
	assert.Equal(t, "qeury a@b.com title", advisor.text)
	assert.Equal(t, []string{"create", "list", "query", "update"}, advisor.verbs)
	require.Len(t, advisor.history, 1)
	assert.Equal(t, "user", advisor.history[0].Role)
}

func TestHandleIncomingAdvisorFailureFallsBack(t *testing.T) {
	h := newHarness(t, &stubAdvisor{err: errors.New("quota")})

	require.NoError(t, h.svc.HandleIncoming(context.Background(), dm("bogus")))

	assert.Equal(t, "Sorry, I don't know how to `bogus`. I understand: create, list, query, update.", h.outbound.all()[0].Text)
}

func TestHandleIncomingUnregisteredDefaultService(t *testing.T) {
	logger, _ := logtest.NewNullLogger()
	reg, err := registry.NewBuilder().Build()
	require.NoError(t, err)
	out := &fakeOutbound{}
	svc := NewService(reg, "identity", cache.NewAnchor(cache.NewStore()), NopRepo{}, out, nil, logger)

	require.NoError(t, svc.HandleIncoming(context.Background(), dm("list")))

	assert.Equal(t, "Sorry, I can't reach that service right now.", out.all()[0].Text)
}

func TestHandleIncomingReturnsTransportError(t *testing.T) {
	h := newHarness(t, nil)
	h.outbound.err = errors.New("channel_not_found")

	err := h.svc.HandleIncoming(context.Background(), dm("list"))
	require.Error(t, err)
}

func TestReportFaultPostsToAnchor(t *testing.T) {
	h := newHarness(t, nil)
	h.anchor.SetIfUnset("D100")

	h.svc.ReportFault(context.Background(), errors.New("kaboom"), []byte("goroutine 1"))

	posts := h.outbound.all()
	require.Len(t, posts, 1)
	assert.Equal(t, "D100", posts[0].Channel)
	assert.True(t, strings.HasPrefix(posts[0].Text, FaultReply+"\n\n```kaboom\ngoroutine 1"))
	assert.Equal(t, "unhandled fault", h.hook.Entries[0].Message)
}

func TestReportFaultWithoutAnchorLogsOnly(t *testing.T) {
	h := newHarness(t, nil)

	h.svc.ReportFault(context.Background(), "early panic", nil)

	assert.Empty(t, h.outbound.all())
	assert.Equal(t, "no anchor channel yet, fault reported to log only", h.hook.LastEntry().Message)
}
