package command

import (
	"fmt"
	"sort"
	"strings"
)

// Table is the static registry mapping command names and aliases to their
// registrations. Lookups are case-insensitive. A duplicate name or alias
// across two registrations is a programming error surfaced at construction.
type Table struct {
	byName   map[string]*Registration // names and aliases, lowercased
	commands []*Registration          // registration order
}

func NewTable(regs ...*Registration) (*Table, error) {
	t := &Table{byName: make(map[string]*Registration, len(regs)*2)}
	for _, reg := range regs {
		if err := t.register(reg); err != nil {
			return nil, err
		}
	}
	return t, nil
}

func (t *Table) register(reg *Registration) error {
	if reg == nil || strings.TrimSpace(reg.Name) == "" {
		return fmt.Errorf("command registration requires a name")
	}
	if reg.Handler == nil {
		return fmt.Errorf("command %s: handler is required", reg.Name)
	}

	keys := append([]string{reg.Name}, reg.Aliases...)
	for _, key := range keys {
		lower := strings.ToLower(strings.TrimSpace(key))
		if lower == "" {
			return fmt.Errorf("command %s: empty alias", reg.Name)
		}
		if existing, ok := t.byName[lower]; ok {
			return fmt.Errorf("duplicate command name %q (already registered by %s)", lower, existing.Name)
		}
		t.byName[lower] = reg
	}

	t.commands = append(t.commands, reg)
	return nil
}

// Lookup resolves a name or alias, case-insensitively.
func (t *Table) Lookup(name string) (*Registration, bool) {
	reg, ok := t.byName[strings.ToLower(name)]
	return reg, ok
}

// List returns all registrations sorted by primary name.
func (t *Table) List() []*Registration {
	out := make([]*Registration, len(t.commands))
	copy(out, t.commands)
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}
