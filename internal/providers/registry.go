package providers

import (
	"sort"
	"sync"
)

// Registry resolves provider names to clients. Built once at startup and read
// concurrently by request handlers.
type Registry struct {
	mu       sync.RWMutex
	cards    map[string]CardProvider
	payments map[string]PaymentProvider
}

func NewRegistry() *Registry {
	return &Registry{
		cards:    make(map[string]CardProvider),
		payments: make(map[string]PaymentProvider),
	}
}

// RegisterCard adds a card-issuing provider under its Name().
func (r *Registry) RegisterCard(p CardProvider) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.cards[p.Name()] = p
}

// RegisterPayment adds a payment provider under its Name().
func (r *Registry) RegisterPayment(p PaymentProvider) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.payments[p.Name()] = p
}

// Card returns the named card provider.
func (r *Registry) Card(name string) (CardProvider, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	p, ok := r.cards[name]
	if !ok {
		return nil, &ValidationError{Provider: name, Message: "unknown card provider"}
	}
	return p, nil
}

// Payment returns the named payment provider.
func (r *Registry) Payment(name string) (PaymentProvider, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	p, ok := r.payments[name]
	if !ok {
		return nil, &ValidationError{Provider: name, Message: "unknown payment provider"}
	}
	return p, nil
}

// CardProviderNames lists the registered card providers, sorted.
func (r *Registry) CardProviderNames() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.cards))
	for name := range r.cards {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
