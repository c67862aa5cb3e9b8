package dispatch

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"

	glog "github.com/goliatone/go-logger/glog"
)

// HandlerFunc implements one link of an operation chain. Handlers reach
// the previously registered handler for the same pattern through call.Prior.
type HandlerFunc func(ctx context.Context, call Call, args Args) (Result, error)

type Definition struct {
	Pattern Pattern
	Handler HandlerFunc
	// Required lists arg keys that must be present and non-nil.
	Required []string
	// Name labels the registration in logs and Describe output.
	Name string
}

type entry struct {
	def   Definition
	prior *entry
	depth int
}

type Registry struct {
	mu     sync.RWMutex
	chains map[Pattern]*entry
	order  []Pattern
	logger glog.Logger
}

type Option func(*Registry)

func WithLogger(logger glog.Logger) Option {
	return func(r *Registry) {
		if logger != nil {
			r.logger = logger
		}
	}
}

func NewRegistry(opts ...Option) *Registry {
	registry := &Registry{
		chains: map[Pattern]*entry{},
		logger: glog.Nop(),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(registry)
		}
	}
	return registry
}

// Add registers handler as the new entry point for pattern. The handler
// that was active before becomes its prior.
func (r *Registry) Add(pattern Pattern, handler HandlerFunc, required ...string) error {
	return r.Register(Definition{
		Pattern:  pattern,
		Handler:  handler,
		Required: required,
	})
}

func (r *Registry) Register(def Definition) error {
	if r == nil {
		return fmt.Errorf("dispatch: registry is nil")
	}
	if def.Handler == nil {
		return fmt.Errorf("dispatch: handler is nil for %s", def.Pattern)
	}
	def.Pattern = def.Pattern.normalize()
	if err := def.Pattern.Validate(); err != nil {
		return err
	}
	def.Required = normalizeRequired(def.Required)
	def.Name = strings.TrimSpace(def.Name)

	r.mu.Lock()
	prior := r.chains[def.Pattern]
	next := &entry{def: def, prior: prior, depth: 1}
	if prior == nil {
		r.order = append(r.order, def.Pattern)
	} else {
		next.depth = prior.depth + 1
	}
	r.chains[def.Pattern] = next
	r.mu.Unlock()

	r.logger.Debug("dispatch handler registered",
		"pattern", def.Pattern.String(),
		"name", def.Name,
		"depth", next.depth,
	)
	return nil
}

// Act invokes the most recently registered handler for pattern.
func (r *Registry) Act(ctx context.Context, pattern Pattern, args Args) (Result, error) {
	if r == nil {
		return nil, internal("dispatch: registry is nil", nil)
	}
	if ctx == nil {
		ctx = context.Background()
	}
	pattern = pattern.normalize()
	if err := pattern.Validate(); err != nil {
		return nil, err
	}

	r.mu.RLock()
	head := r.chains[pattern]
	r.mu.RUnlock()
	if head == nil {
		return nil, handlerNotFound(pattern)
	}
	return r.invoke(ctx, head, args)
}

// ActString accepts the textual pattern form, e.g. "role:account,cmd:create".
func (r *Registry) ActString(ctx context.Context, pattern string, args Args) (Result, error) {
	parsed, err := ParsePattern(pattern)
	if err != nil {
		return nil, err
	}
	return r.Act(ctx, parsed, args)
}

func (r *Registry) invoke(ctx context.Context, link *entry, args Args) (Result, error) {
	if args == nil {
		args = Args{}
	}
	if missing := missingRequired(link.def.Required, args); len(missing) > 0 {
		return nil, missingArgs(link.def.Pattern, missing)
	}
	return link.def.Handler(ctx, Call{registry: r, link: link}, args)
}

func (r *Registry) Has(pattern Pattern) bool {
	return r.Depth(pattern) > 0
}

// Depth reports how many handlers are chained for pattern.
func (r *Registry) Depth(pattern Pattern) int {
	if r == nil {
		return 0
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	head := r.chains[pattern.normalize()]
	if head == nil {
		return 0
	}
	return head.depth
}

// Patterns lists registered patterns in first-registration order.
func (r *Registry) Patterns() []Pattern {
	if r == nil {
		return nil
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	return append([]Pattern(nil), r.order...)
}

// Describe returns the handler names of a chain from entry point to origin.
func (r *Registry) Describe(pattern Pattern) []string {
	if r == nil {
		return nil
	}
	r.mu.RLock()
	link := r.chains[pattern.normalize()]
	r.mu.RUnlock()

	names := []string{}
	for ; link != nil; link = link.prior {
		name := link.def.Name
		if name == "" {
			name = fmt.Sprintf("%s#%d", link.def.Pattern, link.depth)
		}
		names = append(names, name)
	}
	return names
}

// Pin groups the commands registered under role.
func (r *Registry) Pin(role string) Pin {
	return Pin{registry: r, role: strings.TrimSpace(strings.ToLower(role))}
}

// Call is handed to every handler invocation.
type Call struct {
	registry *Registry
	link     *entry
}

func (c Call) Pattern() Pattern {
	if c.link == nil {
		return Pattern{}
	}
	return c.link.def.Pattern
}

func (c Call) HasPrior() bool {
	return c.link != nil && c.link.prior != nil
}

// Prior runs the handler that was active before the current one was
// registered, with its own required-arg checks applied.
func (c Call) Prior(ctx context.Context, args Args) (Result, error) {
	if !c.HasPrior() {
		return nil, noPrior(c.Pattern())
	}
	return c.registry.invoke(ctx, c.link.prior, args)
}

// Registry gives handlers access to sibling operations.
func (c Call) Registry() *Registry {
	return c.registry
}

type Pin struct {
	registry *Registry
	role     string
}

func (p Pin) Role() string {
	return p.role
}

func (p Pin) Act(ctx context.Context, cmd string, args Args) (Result, error) {
	return p.registry.Act(ctx, NewPattern(p.role, cmd), args)
}

func (p Pin) Has(cmd string) bool {
	return p.registry.Has(NewPattern(p.role, cmd))
}

// Commands lists the commands registered under the pinned role, sorted.
func (p Pin) Commands() []string {
	out := []string{}
	for _, pattern := range p.registry.Patterns() {
		if pattern.Role == p.role {
			out = append(out, pattern.Cmd)
		}
	}
	sort.Strings(out)
	return out
}

func normalizeRequired(fields []string) []string {
	if len(fields) == 0 {
		return nil
	}
	seen := map[string]struct{}{}
	out := make([]string, 0, len(fields))
	for _, field := range fields {
		field = strings.TrimSpace(field)
		if field == "" {
			continue
		}
		if _, ok := seen[field]; ok {
			continue
		}
		seen[field] = struct{}{}
		out = append(out, field)
	}
	return out
}

func missingRequired(required []string, args Args) []string {
	var missing []string
	for _, field := range required {
		if !args.Has(field) {
			missing = append(missing, field)
		}
	}
	return missing
}
