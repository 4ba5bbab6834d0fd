package tools

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/lithammer/fuzzysearch/fuzzy"

	"azdo-cli/internal/azdo"
)

// Handler implements one operation against the upstream client facade.
// It receives arguments that have already been validated and defaulted.
type Handler func(ctx context.Context, client *azdo.Client, args Args) (any, error)

// Operation is one callable unit: a stable name, a description for
// discovery, an object-kind parameter spec, and the handler.
type Operation struct {
	Name        string
	Description string
	Params      *Param
	Handler     Handler
}

// Validate checks raw call arguments against the operation's spec and
// returns them typed and defaulted.
func (op Operation) Validate(raw map[string]any) (Args, error) {
	spec := op.Params
	if spec == nil {
		spec = &Param{Kind: KindObject}
	}
	var in any
	if raw != nil {
		in = raw
	}
	v, err := spec.Validate(in)
	if err != nil {
		return nil, err
	}
	return Args(v.(map[string]any)), nil
}

// InputSchema renders the operation's discovery document.
func (op Operation) InputSchema() map[string]any {
	return Schema(op.Params)
}

// Table groups the operations of one domain area. Declaration order is
// preserved through registry construction and listing.
type Table struct {
	Domain     string
	Operations []Operation
}

// Registry is the flattened operation catalog. It is assembled once at
// startup and read-only afterwards, so lookups need no locking.
type Registry struct {
	order  []string
	ops    map[string]Operation
	domain map[string]string
}

// BuildRegistry merges domain tables in the order given. Two tables
// declaring the same operation name is a construction error, never a
// silent overwrite.
func BuildRegistry(tables ...Table) (*Registry, error) {
	r := &Registry{
		ops:    make(map[string]Operation),
		domain: make(map[string]string),
	}
	for _, t := range tables {
		for _, op := range t.Operations {
			if prev, exists := r.domain[op.Name]; exists {
				return nil, fmt.Errorf("duplicate tool name %q declared by %s and %s", op.Name, prev, t.Domain)
			}
			r.order = append(r.order, op.Name)
			r.ops[op.Name] = op
			r.domain[op.Name] = t.Domain
		}
	}
	return r, nil
}

// MustBuildRegistry is BuildRegistry for static tables known to be
// collision-free, panicking on a duplicate.
func MustBuildRegistry(tables ...Table) *Registry {
	r, err := BuildRegistry(tables...)
	if err != nil {
		panic(err)
	}
	return r
}

// Lookup returns the operation registered under name.
func (r *Registry) Lookup(name string) (Operation, bool) {
	op, ok := r.ops[name]
	return op, ok
}

// Domain returns the domain area that declared name.
func (r *Registry) Domain(name string) string {
	return r.domain[name]
}

// Count returns the number of registered operations.
func (r *Registry) Count() int {
	return len(r.order)
}

// Names returns every operation name in table merge order.
func (r *Registry) Names() []string {
	return append([]string{}, r.order...)
}

// OperationInfo describes one operation for discovery and listing.
type OperationInfo struct {
	Name        string         `json:"name"`
	Domain      string         `json:"domain"`
	Description string         `json:"description"`
	InputSchema map[string]any `json:"inputSchema"`
}

// List returns discovery entries for every operation in merge order.
func (r *Registry) List() []OperationInfo {
	out := make([]OperationInfo, 0, len(r.order))
	for _, name := range r.order {
		op := r.ops[name]
		out = append(out, OperationInfo{
			Name:        op.Name,
			Domain:      r.domain[name],
			Description: op.Description,
			InputSchema: op.InputSchema(),
		})
	}
	return out
}

// Search ranks operations against a query. Exact and substring name hits
// outrank fuzzy ones, and description matches trail both. An empty query
// returns the full listing.
func (r *Registry) Search(query string) []OperationInfo {
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return r.List()
	}

	type scored struct {
		info  OperationInfo
		score int
	}
	var matches []scored
	for _, info := range r.List() {
		name := strings.ToLower(info.Name)
		desc := strings.ToLower(info.Description)

		score := 0
		switch {
		case name == q:
			score += 150
		case strings.Contains(name, q):
			score += 100
		case fuzzy.Match(q, name):
			score += 50
		}
		if strings.Contains(desc, q) {
			score += 30
		} else if fuzzy.Match(q, desc) {
			score += 15
		}
		if strings.Contains(strings.ToLower(info.Domain), q) {
			score += 20
		}
		if score > 0 {
			matches = append(matches, scored{info: info, score: score})
		}
	}

	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].score > matches[j].score
	})
	out := make([]OperationInfo, len(matches))
	for i, m := range matches {
		out[i] = m.info
	}
	return out
}
