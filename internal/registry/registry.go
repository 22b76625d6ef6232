// Package registry maps (service, verb) pairs to chat operations. The table
// is assembled once at startup and is read-only afterwards.
package registry

import (
	"context"
	"errors"
	"fmt"
	"sort"
)

var (
	ErrUnknownService = errors.New("unknown service")
	ErrUnknownVerb    = errors.New("unknown verb")
)

// Operation handles the params of one command and returns the reply text.
// Operations report their own failures in the reply; they never return errors.
type Operation func(ctx context.Context, params []string) string

// Handlers is a service's verb → operation table.
type Handlers map[string]Operation

type Registry struct {
	services map[string]Handlers
}

// Builder collects each service's self-declared handlers.
type Builder struct {
	services map[string]Handlers
	err      error
}

func NewBuilder() *Builder {
	return &Builder{services: make(map[string]Handlers)}
}

func (b *Builder) Register(service string, handlers Handlers) *Builder {
	if b.err != nil {
		return b
	}
	if service == "" {
		b.err = errors.New("registry: empty service name")
		return b
	}
	if _, exists := b.services[service]; exists {
		b.err = fmt.Errorf("registry: service %q registered twice", service)
		return b
	}

	copied := make(Handlers, len(handlers))
	for verb, op := range handlers {
		if op == nil {
			b.err = fmt.Errorf("registry: nil operation for %s/%s", service, verb)
			return b
		}
		copied[verb] = op
	}
	b.services[service] = copied
	return b
}

func (b *Builder) Build() (*Registry, error) {
	if b.err != nil {
		return nil, b.err
	}

	services := make(map[string]Handlers, len(b.services))
	for name, handlers := range b.services {
		services[name] = handlers
	}
	return &Registry{services: services}, nil
}

// Resolve returns the operation registered for verb under service.
func (r *Registry) Resolve(service, verb string) (Operation, error) {
	handlers, ok := r.services[service]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownService, service)
	}
	op, ok := handlers[verb]
	if !ok {
		return nil, fmt.Errorf("%w: %q for service %q", ErrUnknownVerb, verb, service)
	}
	return op, nil
}

// Verbs lists the verbs registered for service in sorted order.
func (r *Registry) Verbs(service string) []string {
	handlers := r.services[service]
	verbs := make([]string, 0, len(handlers))
	for verb := range handlers {
		verbs = append(verbs, verb)
	}
	sort.Strings(verbs)
	return verbs
}

func (r *Registry) Services() []string {
	names := make([]string, 0, len(r.services))
	for name := range r.services {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
