package cmd

import (
	"sort"
	"strings"
	"sync"
)

// Aliaser is implemented by commands reachable under more than one name.
type Aliaser interface {
	Aliases() []string
}

// Hider is implemented by commands that should stay out of listings.
type Hider interface {
	Hidden() bool
}

// Registry stores commands by name and alias. It does not perform dispatch;
// each adapter (CLI, Discord) looks up commands and invokes them with its own
// context. Lookups ignore case.
type Registry struct {
	mu       sync.RWMutex
	commands map[string]Command
	aliases  map[string]string
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		commands: make(map[string]Command),
		aliases:  make(map[string]string),
	}
}

// Register adds a command under its name and every alias the underlying
// command declares. A later registration with the same name replaces the
// earlier one.
func (r *Registry) Register(c Command) {
	r.mu.Lock()
	defer r.mu.Unlock()

	name := strings.ToLower(c.Name())
	r.commands[name] = c
	if a, ok := Root(c).(Aliaser); ok {
		for _, alias := range a.Aliases() {
			r.aliases[strings.ToLower(alias)] = name
		}
	}
}

// Get returns the command registered under name or alias, or nil.
func (r *Registry) Get(name string) Command {
	r.mu.RLock()
	defer r.mu.RUnlock()

	name = strings.ToLower(name)
	if c, ok := r.commands[name]; ok {
		return c
	}
	if target, ok := r.aliases[name]; ok {
		return r.commands[target]
	}
	return nil
}

// GetAll returns all registered commands, sorted by name.
func (r *Registry) GetAll() []Command {
	r.mu.RLock()
	defer r.mu.RUnlock()

	list := make([]Command, 0, len(r.commands))
	for _, c := range r.commands {
		list = append(list, c)
	}
	sort.Slice(list, func(i, j int) bool {
		return list[i].Name() < list[j].Name()
	})
	return list
}

// Visible returns the commands that are not hidden, sorted by name.
func (r *Registry) Visible() []Command {
	var out []Command
	for _, c := range r.GetAll() {
		if IsHidden(c) {
			continue
		}
		out = append(out, c)
	}
	return out
}

// IsHidden reports whether the command underneath c asks to be hidden.
func IsHidden(c Command) bool {
	h, ok := Root(c).(Hider)
	return ok && h.Hidden()
}
