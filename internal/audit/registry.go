package audit

import (
	"fmt"
	"sync"
)

var (
	registryMu sync.RWMutex
	registry   = map[string]Audit{}
	registered []string
)

// Register adds an audit to the global registry. Checks call it from
// init, so a duplicate ID is a programmer error and panics.
func Register(a Audit) {
	id := a.Meta().ID
	registryMu.Lock()
	defer registryMu.Unlock()
	if _, exists := registry[id]; exists {
		panic(fmt.Sprintf("audit %q registered twice", id))
	}
	registry[id] = a
	registered = append(registered, id)
}

// Registered returns every audit in registration order.
func Registered() []Audit {
	registryMu.RLock()
	defer registryMu.RUnlock()
	out := make([]Audit, 0, len(registered))
	for _, id := range registered {
		out = append(out, registry[id])
	}
	return out
}

// Lookup returns the audit registered under id.
func Lookup(id string) (Audit, bool) {
	registryMu.RLock()
	defer registryMu.RUnlock()
	a, ok := registry[id]
	return a, ok
}
