package xsd

import (
	"github.com/agentflare-ai/go-xmldom"
)

// pendingDecl is a raw (source element, owning schema) pair recorded by the
// loader before construction.
type pendingDecl struct {
	elem   xmldom.Element
	schema Schema
}

// Entry is one slot of a global table. A slot starts as one or more pending
// raw declarations and transitions in place to a built component on first
// lookup:
//
//   - len(pending) == 1, component == nil: a single raw declaration.
//   - len(pending) > 1, redefined: a redefinition chain; pending[0] is the
//     original definition, each later pair rewrites the previous result.
//   - len(pending) > 1, !redefined: an ambiguous fan-out of independent
//     declarations sharing one name; a declaration conflict at lookup.
//   - component != nil, len(pending) > 0: a built head (typically a seeded
//     builtin) with redefinitions still to fold onto it.
//   - component != nil, len(pending) == 0: constructed; a placeholder while
//     Built() is false, final once Built() is true.
type Entry struct {
	pending   []pendingDecl
	redefined bool
	component Component

	// finishing guards the two-phase construction protocol: a lookup that
	// re-enters this entry while its component is being finished must
	// observe the placeholder rather than re-invoke the factory.
	finishing bool
}

// Component returns the constructed component, or nil while the entry is
// still raw.
func (e *Entry) Component() Component { return e.component }

// Built reports whether the entry holds a fully constructed component.
func (e *Entry) Built() bool {
	return e.component != nil && e.component.Built() && len(e.pending) == 0
}

// appendDecl records a direct top-level declaration. The first contribution
// creates a single raw pair; later ones extend the fan-out. Appending onto
// an already built component (a seeded builtin being redeclared) queues the
// pair for chain folding.
func (e *Entry) appendDecl(d pendingDecl) {
	e.pending = append(e.pending, d)
}

// appendRedefinition records a redefine-block declaration rewriting this
// entry. It also legitimizes a prior fan-out: the pairs become an ordered
// chain instead of a conflict.
func (e *Entry) appendRedefinition(d pendingDecl) {
	e.pending = append(e.pending, d)
	e.redefined = true
}
