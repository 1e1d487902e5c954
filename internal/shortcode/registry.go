package shortcode

import (
	"errors"
	"fmt"
	"slices"
	"strings"
	"sync"

	"github.com/goliatone/go-placemarks/pkg/interfaces"
)

var (
	ErrDuplicateDefinition = errors.New("shortcode: already registered")
	ErrInvalidDefinition   = errors.New("shortcode: invalid definition")
	ErrUnknownBuiltIn      = errors.New("shortcode: unknown built-in")
)

// DefinitionValidator checks a definition before it is stored.
type DefinitionValidator interface {
	ValidateDefinition(def interfaces.ShortcodeDefinition) error
}

// Registry keeps shortcode definitions keyed by their lower-case name.
type Registry struct {
	mu        sync.RWMutex
	byName    map[string]interfaces.ShortcodeDefinition
	validator DefinitionValidator
}

var _ interfaces.ShortcodeRegistry = (*Registry)(nil)

// NewRegistry returns an empty registry. A nil validator accepts any
// definition with a name.
func NewRegistry(validator DefinitionValidator) *Registry {
	return &Registry{
		byName:    map[string]interfaces.ShortcodeDefinition{},
		validator: validator,
	}
}

func normalizeName(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

func (r *Registry) Register(def interfaces.ShortcodeDefinition) error {
	key := normalizeName(def.Name)
	if key == "" {
		return fmt.Errorf("%w: name is required", ErrInvalidDefinition)
	}
	if r.validator != nil {
		if err := r.validator.ValidateDefinition(def); err != nil {
			return err
		}
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if _, taken := r.byName[key]; taken {
		return fmt.Errorf("%w: %s", ErrDuplicateDefinition, key)
	}
	r.byName[key] = def
	return nil
}

func (r *Registry) Get(name string) (interfaces.ShortcodeDefinition, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	def, ok := r.byName[normalizeName(name)]
	return def, ok
}

// Has reports whether name is registered.
func (r *Registry) Has(name string) bool {
	_, ok := r.Get(name)
	return ok
}

func (r *Registry) List() []interfaces.ShortcodeDefinition {
	r.mu.RLock()
	names := make([]string, 0, len(r.byName))
	for name := range r.byName {
		names = append(names, name)
	}
	r.mu.RUnlock()

	slices.Sort(names)
	out := make([]interfaces.ShortcodeDefinition, 0, len(names))
	for _, name := range names {
		if def, ok := r.Get(name); ok {
			out = append(out, def)
		}
	}
	return out
}

func (r *Registry) Remove(name string) {
	r.mu.Lock()
	delete(r.byName, normalizeName(name))
	r.mu.Unlock()
}

// RegisterBuiltIns adds the map and list shortcodes bound to deps. An empty
// names list registers both; otherwise only the named ones, in order.
func RegisterBuiltIns(registry interfaces.ShortcodeRegistry, deps Dependencies, names []string) error {
	if registry == nil {
		return errors.New("shortcode: registry is required")
	}

	builtIns := BuiltInDefinitions(deps)
	if len(names) == 0 {
		for _, def := range builtIns {
			if err := registry.Register(def); err != nil {
				return err
			}
		}
		return nil
	}

	for _, name := range names {
		key := normalizeName(name)
		if key == "" {
			continue
		}
		idx := slices.IndexFunc(builtIns, func(def interfaces.ShortcodeDefinition) bool {
			return def.Name == key
		})
		if idx < 0 {
			return fmt.Errorf("%w: %s", ErrUnknownBuiltIn, name)
		}
		if err := registry.Register(builtIns[idx]); err != nil {
			return err
		}
	}
	return nil
}
