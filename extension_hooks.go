package accounts

import (
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/goliatone/go-accounts/dispatch"
)

// ExtensionPack groups registrations that a downstream package layers over
// the account and user operations. Definitions register in slice order, so a
// later definition for the same pattern wraps an earlier one.
type ExtensionPack struct {
	Name        string
	Definitions []dispatch.Definition
}

type CommandQueryBundleFactory func(service CommandQueryService) (any, error)

type ExtensionHooks struct {
	mu sync.RWMutex

	packs   map[string]ExtensionPack
	bundles map[string]CommandQueryBundleFactory
}

func NewExtensionHooks() *ExtensionHooks {
	return &ExtensionHooks{
		packs:   map[string]ExtensionPack{},
		bundles: map[string]CommandQueryBundleFactory{},
	}
}

func (h *ExtensionHooks) RegisterExtensionPack(pack ExtensionPack) error {
	if h == nil {
		return fmt.Errorf("accounts: extension hooks are nil")
	}
	name := strings.TrimSpace(pack.Name)
	if name == "" {
		return fmt.Errorf("accounts: extension pack name is required")
	}
	if len(pack.Definitions) == 0 {
		return fmt.Errorf("accounts: extension pack %q has no definitions", name)
	}
	for index, def := range pack.Definitions {
		if err := def.Pattern.Validate(); err != nil {
			return fmt.Errorf("accounts: extension pack %q definition %d: %w", name, index, err)
		}
		if def.Handler == nil {
			return fmt.Errorf("accounts: extension pack %q definition %d has no handler", name, index)
		}
	}

	normalized := ExtensionPack{
		Name:        name,
		Definitions: append([]dispatch.Definition(nil), pack.Definitions...),
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	if _, exists := h.packs[name]; exists {
		return fmt.Errorf("accounts: extension pack %q already registered", name)
	}
	h.packs[name] = normalized
	return nil
}

func (h *ExtensionHooks) RegisterCommandQueryBundle(
	name string,
	factory CommandQueryBundleFactory,
) error {
	if h == nil {
		return fmt.Errorf("accounts: extension hooks are nil")
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return fmt.Errorf("accounts: command/query bundle name is required")
	}
	if factory == nil {
		return fmt.Errorf("accounts: command/query bundle %q factory is required", name)
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	if _, exists := h.bundles[name]; exists {
		return fmt.Errorf("accounts: command/query bundle %q already registered", name)
	}
	h.bundles[name] = factory
	return nil
}

// ApplyExtensionPacks registers every pack on registry, packs in name order.
// Apply after the account service has registered its own operations.
func (h *ExtensionHooks) ApplyExtensionPacks(registry *dispatch.Registry) error {
	if h == nil {
		return nil
	}
	if registry == nil {
		return fmt.Errorf("accounts: registry is required")
	}

	for _, pack := range h.ExtensionPacks() {
		for index, def := range pack.Definitions {
			if strings.TrimSpace(def.Name) == "" {
				def.Name = fmt.Sprintf("%s#%d", pack.Name, index)
			}
			if err := registry.Register(def); err != nil {
				return fmt.Errorf("accounts: apply extension pack %q: %w", pack.Name, err)
			}
		}
	}
	return nil
}

func (h *ExtensionHooks) BuildCommandQueryBundles(
	service CommandQueryService,
) (map[string]any, error) {
	if h == nil {
		return map[string]any{}, nil
	}
	if service == nil {
		return nil, fmt.Errorf("accounts: command/query service is required")
	}

	h.mu.RLock()
	names := make([]string, 0, len(h.bundles))
	for name := range h.bundles {
		names = append(names, name)
	}
	sort.Strings(names)
	factories := make(map[string]CommandQueryBundleFactory, len(h.bundles))
	for name, factory := range h.bundles {
		factories[name] = factory
	}
	h.mu.RUnlock()

	result := make(map[string]any, len(names))
	for _, name := range names {
		bundle, err := factories[name](service)
		if err != nil {
			return nil, err
		}
		result[name] = bundle
	}
	return result, nil
}

func (h *ExtensionHooks) ExtensionPacks() []ExtensionPack {
	if h == nil {
		return nil
	}
	h.mu.RLock()
	defer h.mu.RUnlock()

	names := make([]string, 0, len(h.packs))
	for name := range h.packs {
		names = append(names, name)
	}
	sort.Strings(names)

	out := make([]ExtensionPack, 0, len(names))
	for _, name := range names {
		pack := h.packs[name]
		out = append(out, ExtensionPack{
			Name:        pack.Name,
			Definitions: append([]dispatch.Definition(nil), pack.Definitions...),
		})
	}
	return out
}

func (h *ExtensionHooks) BundleNames() []string {
	if h == nil {
		return nil
	}
	h.mu.RLock()
	defer h.mu.RUnlock()
	names := make([]string, 0, len(h.bundles))
	for name := range h.bundles {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
