package service

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
)

// ErrCycle is returned when service dependencies form a loop
var ErrCycle = errors.New("service: circular dependency")

// Hub owns registered services and drives their lifecycle
type Hub struct {
	mu       sync.Mutex
	services map[string]Service
	sorted   []string // Dependency order, computed on InitAll
	started  []string // Services whose Start succeeded, for rollback
}

// NewHub creates an empty hub
func NewHub() *Hub {
	return &Hub{services: make(map[string]Service)}
}

// Register adds a service; names must be unique
func (h *Hub) Register(svc Service) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	name := svc.Name()
	if _, exists := h.services[name]; exists {
		return fmt.Errorf("service already registered: %s", name)
	}
	h.services[name] = svc
	h.sorted = nil
	return nil
}

// Get returns a registered service by name
func (h *Hub) Get(name string) (Service, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	svc, ok := h.services[name]
	return svc, ok
}

// Lookup returns a service by name cast to T
func Lookup[T any](h *Hub, name string) (T, bool) {
	var zero T
	svc, ok := h.Get(name)
	if !ok {
		return zero, false
	}
	typed, ok := svc.(T)
	return typed, ok
}

// Order returns the dependency order, computing it if needed
func (h *Hub) Order() ([]string, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if err := h.sortLocked(); err != nil {
		return nil, err
	}
	return append([]string(nil), h.sorted...), nil
}

// InitAll calls Init in dependency order
// On failure already-initialized services are stopped in reverse order
func (h *Hub) InitAll(ctx context.Context) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	if err := h.sortLocked(); err != nil {
		return err
	}

	var initialized []string
	for _, name := range h.sorted {
		if err := h.services[name].Init(ctx); err != nil {
			for i := len(initialized) - 1; i >= 0; i-- {
				_ = h.services[initialized[i]].Stop()
			}
			return fmt.Errorf("service %s init failed: %w", name, err)
		}
		initialized = append(initialized, name)
	}
	return nil
}

// StartAll calls Start in dependency order
// On failure already-started services are stopped in reverse order
func (h *Hub) StartAll(ctx context.Context) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	if err := h.sortLocked(); err != nil {
		return err
	}

	h.started = nil
	for _, name := range h.sorted {
		if err := h.services[name].Start(ctx); err != nil {
			for i := len(h.started) - 1; i >= 0; i-- {
				_ = h.services[h.started[i]].Stop()
			}
			h.started = nil
			return fmt.Errorf("service %s start failed: %w", name, err)
		}
		h.started = append(h.started, name)
	}
	return nil
}

// StopAll stops started services in reverse order and joins their errors
func (h *Hub) StopAll() error {
	h.mu.Lock()
	defer h.mu.Unlock()

	var errs []error
	for i := len(h.started) - 1; i >= 0; i-- {
		name := h.started[i]
		if err := h.services[name].Stop(); err != nil {
			errs = append(errs, fmt.Errorf("service %s stop: %w", name, err))
		}
	}
	h.started = nil
	return errors.Join(errs...)
}

// sortLocked computes dependency order with Kahn's algorithm
// Ties are broken by name so the order is stable across runs
func (h *Hub) sortLocked() error {
	if h.sorted != nil {
		return nil
	}

	inDegree := make(map[string]int, len(h.services))
	dependents := make(map[string][]string)
	for name := range h.services {
		inDegree[name] = 0
	}
	for name, svc := range h.services {
		for _, dep := range svc.Dependencies() {
			if _, exists := h.services[dep]; !exists {
				return fmt.Errorf("service %s depends on unregistered service: %s", name, dep)
			}
			inDegree[name]++
			dependents[dep] = append(dependents[dep], name)
		}
	}

	var ready []string
	for name, d := range inDegree {
		if d == 0 {
			ready = append(ready, name)
		}
	}
	sort.Strings(ready)

	order := make([]string, 0, len(h.services))
	for len(ready) > 0 {
		name := ready[0]
		ready = ready[1:]
		order = append(order, name)

		next := dependents[name]
		sort.Strings(next)
		for _, d := range next {
			inDegree[d]--
			if inDegree[d] == 0 {
				ready = append(ready, d)
			}
		}
	}

	if len(order) != len(h.services) {
		return ErrCycle
	}
	h.sorted = order
	return nil
}
