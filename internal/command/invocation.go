package command

import (
	"strings"
)

// Invocation is one parsed command: the lowercased name after the prefix and
// the remaining whitespace-separated arguments in order.
type Invocation struct {
	Name string
	Args []string
}

// Parse turns raw message text into an Invocation given the community's
// configured prefix. It returns nil when the text is empty, whitespace-only,
// or its first token does not start with the prefix (compared
// case-insensitively). Pure function, no side effects.
func Parse(text, prefix string) *Invocation {
	fields := strings.Fields(text)
	if len(fields) == 0 || prefix == "" {
		return nil
	}

	first := fields[0]
	if len(first) < len(prefix) || !strings.EqualFold(first[:len(prefix)], prefix) {
		return nil
	}

	name := strings.ToLower(first[len(prefix):])
	if name == "" {
		return nil
	}

	args := make([]string, 0, len(fields)-1)
	args = append(args, fields[1:]...)

	return &Invocation{Name: name, Args: args}
}
