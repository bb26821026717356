package catalystwan

import (
	"slices"
	"strings"
	"sync"
)

// Registry holds the declared operations and their guards, keyed by
// qualified operation name. Entries are written while packages
// initialize and are read-only afterwards.
type Registry struct {
	mu         sync.RWMutex
	operations map[string]*OperationInfo
	versions   map[string]*VersionGuard
	roles      map[string]*RoleGuard
}

// DefaultRegistry is used by operations declared without InRegistry.
var DefaultRegistry = NewRegistry()

func NewRegistry() *Registry {
	return &Registry{
		operations: make(map[string]*OperationInfo),
		versions:   make(map[string]*VersionGuard),
		roles:      make(map[string]*RoleGuard),
	}
}

// add records an operation. Qualified names are unique.
func (r *Registry) add(info *OperationInfo) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if prev, exists := r.operations[info.Name]; exists {
		return Errorf(CodeDeclaration, "operation %s is already declared at %s", info.Name, prev.Source)
	}
	r.operations[info.Name] = info
	return nil
}

func (r *Registry) bindVersions(name string, g *VersionGuard) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.versions[name]; exists {
		return Errorf(CodeDeclaration, "versions of %s are already bound", name)
	}
	r.versions[name] = g
	return nil
}

func (r *Registry) bindRoles(name string, g *RoleGuard) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.roles[name]; exists {
		return Errorf(CodeDeclaration, "view of %s is already bound", name)
	}
	r.roles[name] = g
	return nil
}

// VersionGuard returns the version guard bound to name, or nil.
func (r *Registry) VersionGuard(name string) *VersionGuard {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.versions[name]
}

// RoleGuard returns the role guard bound to name, or nil.
func (r *Registry) RoleGuard(name string) *RoleGuard {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.roles[name]
}

// Lookup returns the operation declared as name.
func (r *Registry) Lookup(name string) (*OperationInfo, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	info, ok := r.operations[name]
	return info, ok
}

// Operations returns every declared operation sorted by name.
func (r *Registry) Operations() []*OperationInfo {
	r.mu.RLock()
	ops := make([]*OperationInfo, 0, len(r.operations))
	for _, info := range r.operations {
		ops = append(ops, info)
	}
	r.mu.RUnlock()
	slices.SortFunc(ops, func(a, b *OperationInfo) int {
		return strings.Compare(a.Name, b.Name)
	})
	return ops
}

// Len returns the number of declared operations.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.operations)
}
