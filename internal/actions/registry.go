package actions

import (
	"sort"

	"github.com/docwright/docwright/internal/schema"
)

// Registry holds the immutable, key-sorted action catalog.
type Registry struct {
	ordered []schema.Action
	byKey   map[string]schema.Action
}

// NewRegistry builds the registry of every built-in action.
func NewRegistry() *Registry {
	list := make([]schema.Action, 0, len(builtin))
	for _, a := range builtin {
		list = append(list, a)
	}
	return newRegistry(list)
}

func newRegistry(list []schema.Action) *Registry {
	ordered := make([]schema.Action, len(list))
	copy(ordered, list)
	sort.SliceStable(ordered, func(i, j int) bool { return ordered[i].Key() < ordered[j].Key() })

	byKey := make(map[string]schema.Action, len(ordered))
	for _, a := range ordered {
		byKey[a.Key()] = a
	}
	return &Registry{ordered: ordered, byKey: byKey}
}

// List returns the actions sorted by key. The slice is a copy.
func (r *Registry) List() []schema.Action {
	out := make([]schema.Action, len(r.ordered))
	copy(out, r.ordered)
	return out
}

// Lookup returns the action with the given key.
func (r *Registry) Lookup(key string) (schema.Action, bool) {
	a, ok := r.byKey[key]
	return a, ok
}

// Len returns the number of actions.
func (r *Registry) Len() int { return len(r.ordered) }

// BuildSchemas projects actions into tool schemas, preserving order.
func BuildSchemas(list []schema.Action) []schema.ToolSchema {
	out := make([]schema.ToolSchema, 0, len(list))
	for _, a := range list {
		out = append(out, schema.ToolSchema{Name: a.Key(), Description: a.Description()})
	}
	return out
}

// Definitions returns schemas in OpenAI function-calling wire format.
func Definitions(schemas []schema.ToolSchema) []map[string]any {
	out := make([]map[string]any, 0, len(schemas))
	for _, s := range schemas {
		out = append(out, s.WireMap())
	}
	return out
}
