// Package bot holds the sample Gin Rummy decision-makers and a registry that
// builds them by name.
package bot

import (
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/jason-s-yu/ginrummy/internal/game"
)

// Factory builds a fresh player. seed feeds any randomness the player uses,
// so a tournament can reproduce a hand exactly.
type Factory func(seed uint64) game.Player

// Registry maps bot names to factories. Lookups ignore case and an optional
// "bot" suffix, so "basic", "Basic" and "BasicBot" all match.
type Registry struct {
	mu        sync.RWMutex
	factories map[string]Factory
	display   map[string]string // normalized key to registered name
	names     []string
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{factories: make(map[string]Factory), display: make(map[string]string)}
}

// Default returns a registry holding the four sample bots, weakest first.
func Default() *Registry {
	r := NewRegistry()
	r.MustRegister(RandomName, func(seed uint64) game.Player { return NewRandom(seed) })
	r.MustRegister(BasicName, func(uint64) game.Player { return NewBasic() })
	r.MustRegister(IntermediateName, func(uint64) game.Player { return NewIntermediate() })
	r.MustRegister(AdvancedName, func(uint64) game.Player { return NewAdvanced() })
	return r
}

func normalize(name string) string {
	key := strings.ToLower(strings.TrimSpace(name))
	if k := strings.TrimSuffix(key, "bot"); k != "" {
		key = k
	}
	return key
}

// Register adds f under name. Registering a name twice is an error.
func (r *Registry) Register(name string, f Factory) error {
	if f == nil {
		return fmt.Errorf("register %q: nil factory", name)
	}
	key := normalize(name)
	if key == "" {
		return fmt.Errorf("register: empty bot name")
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, dup := r.factories[key]; dup {
		return fmt.Errorf("register %q: bot already registered", name)
	}
	r.factories[key] = f
	r.display[key] = name
	r.names = append(r.names, name)
	return nil
}

// MustRegister is Register that panics on error.
func (r *Registry) MustRegister(name string, f Factory) {
	if err := r.Register(name, f); err != nil {
		panic(err)
	}
}

// Lookup returns the factory registered under name.
func (r *Registry) Lookup(name string) (Factory, error) {
	_, f, err := r.Resolve(name)
	return f, err
}

// Resolve returns the name a bot was registered under and its factory, so
// "basic" resolves to "BasicBot".
func (r *Registry) Resolve(name string) (string, Factory, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	key := normalize(name)
	f, ok := r.factories[key]
	if !ok {
		known := append([]string(nil), r.names...)
		sort.Strings(known)
		return "", nil, fmt.Errorf("unknown bot %q (known: %s)", name, strings.Join(known, ", "))
	}
	return r.display[key], f, nil
}

// New builds the bot registered under name.
func (r *Registry) New(name string, seed uint64) (game.Player, error) {
	f, err := r.Lookup(name)
	if err != nil {
		return nil, err
	}
	return f(seed), nil
}

// Names returns the registered names in registration order.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return append([]string(nil), r.names...)
}
