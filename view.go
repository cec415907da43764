package xsd

import "maps"

// NamespaceView is a read-only projection of a qualified-name-keyed table
// restricted to one namespace URI. Lookups by local name are promoted to the
// namespace's qualified form before probing the backing table; enumeration
// derives from a filtered snapshot computed per call, so a view created
// before a build reflects the table's current state. Views carry no
// mutators: the backing table is never written through a view.
type NamespaceView[V any] struct {
	target    map[QName]V
	namespace string
}

// NewNamespaceView creates a view over target restricted to namespace.
func NewNamespaceView[V any](target map[QName]V, namespace string) *NamespaceView[V] {
	return &NamespaceView[V]{target: target, namespace: namespace}
}

// Namespace returns the namespace URI the view is restricted to.
func (v *NamespaceView[V]) Namespace() string { return v.namespace }

// Get returns the entry for a local name, promoted to the view's namespace.
func (v *NamespaceView[V]) Get(local string) (V, error) {
	value, ok := v.target[GetQName(v.namespace, local)]
	if !ok {
		var zero V
		return zero, &LookupError{Kind: "entry", Name: GetQName(v.namespace, local)}
	}
	return value, nil
}

// Contains reports whether the view holds an entry for the local name.
func (v *NamespaceView[V]) Contains(local string) bool {
	_, ok := v.target[GetQName(v.namespace, local)]
	return ok
}

// Len returns the number of entries whose key is in the view's namespace.
func (v *NamespaceView[V]) Len() int {
	n := 0
	for name := range v.target {
		if name.Namespace == v.namespace {
			n++
		}
	}
	return n
}

// AsMap returns the filtered snapshot keyed by local name.
func (v *NamespaceView[V]) AsMap() map[string]V {
	m := make(map[string]V)
	for name, value := range v.target {
		if name.Namespace == v.namespace {
			m[name.Local] = value
		}
	}
	return m
}

// AsQNameMap returns the filtered snapshot keyed by full qualified name.
func (v *NamespaceView[V]) AsQNameMap() map[QName]V {
	m := make(map[QName]V)
	for name, value := range v.target {
		if name.Namespace == v.namespace {
			m[name] = value
		}
	}
	return m
}

// ViewsEqual reports whether two views project the same filtered snapshot,
// compared under local-name keys.
func ViewsEqual[V comparable](a, b *NamespaceView[V]) bool {
	return maps.Equal(a.AsMap(), b.AsMap())
}

// Copy returns a new view over the same backing table and namespace.
func (v *NamespaceView[V]) Copy() *NamespaceView[V] {
	return &NamespaceView[V]{target: v.target, namespace: v.namespace}
}
