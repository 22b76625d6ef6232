package chat

import (
	"context"
	"sync"

	"github.com/Vovarama1992/wallee-bot/internal/ai"
)

type posted struct {
	Channel string
	Text    string
}

type fakeOutbound struct {
	mu    sync.Mutex
	posts []posted
	err   error
}

func (f *fakeOutbound) PostMessage(_ context.Context, channel, text string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.posts = append(f.posts, posted{Channel: channel, Text: text})
	return f.err
}

func (f *fakeOutbound) all() []posted {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]posted, len(f.posts))
	copy(out, f.posts)
	return out
}

type memRepo struct {
	mu   sync.Mutex
	msgs []Message
}

func (r *memRepo) SaveMessage(_ context.Context, msg *Message) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.msgs = append(r.msgs, *msg)
	return nil
}

func (r *memRepo) RecentMessages(_ context.Context, channelID string, limit int) ([]Message, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []Message
	for _, m := range r.msgs {
		if m.ChannelID == channelID {
			out = append(out, m)
		}
	}
	if len(out) > limit {
		out = out[len(out)-limit:]
	}
	return out, nil
}

type stubAdvisor struct {
	suggestion string
	err        error

	text    string
	verbs   []string
	history []ai.Message
}

func (s *stubAdvisor) Suggest(_ context.Context, text string, verbs []string, history []ai.Message) (string, error) {
	s.text, s.verbs, s.history = text, verbs, history
	return s.suggestion, s.err
}

type fakeService struct {
	mu     sync.Mutex
	events []Event
	faults []any
	stacks [][]byte
	handle func(Event) error
}

func (f *fakeService) HandleIncoming(_ context.Context, ev Event) error {
	f.mu.Lock()
	f.events = append(f.events, ev)
	handle := f.handle
	f.mu.Unlock()
	if handle != nil {
		return handle(ev)
	}
	return nil
}

func (f *fakeService) ReportFault(_ context.Context, fault any, stack []byte) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.faults = append(f.faults, fault)
	f.stacks = append(f.stacks, stack)
}
