package xsd

import (
	"fmt"

	"github.com/agentflare-ai/go-xmldom"
)

// LookupError reports a lookup for a name that is absent from its global
// table.
type LookupError struct {
	Kind string // declaration category, e.g. "type" or "element"
	Name QName
}

func (e *LookupError) Error() string {
	return fmt.Sprintf("missing a global %s for %s", e.Kind, e.Name)
}

// TypeMismatchError reports a table slot whose shape is incompatible with
// the requested declaration category.
type TypeMismatchError struct {
	Kind   string
	Name   QName
	Detail string
}

func (e *TypeMismatchError) Error() string {
	return fmt.Sprintf("wrong entry for %s: a %s is required (%s)", e.Name, e.Kind, e.Detail)
}

// RedefinitionError reports a redefine block that targets a name with no
// prior definition. Elem is the offending declaration inside the redefine
// block.
type RedefinitionError struct {
	Name QName
	Elem xmldom.Element
}

func (e *RedefinitionError) Error() string {
	return fmt.Sprintf("not a redefinition: %s has no prior definition", e.Name)
}

// ConflictError reports ambiguous duplicate declarations: several independent
// global declarations share one name and no redefinition resolves them.
type ConflictError struct {
	Kind  string
	Name  QName
	Count int
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("conflicting declarations: %d independent %s declarations for %s", e.Count, e.Kind, e.Name)
}

// StateError reports a build precondition violation. The build is a no-op
// when it is returned.
type StateError struct {
	Reason string
}

func (e *StateError) Error() string {
	return "invalid state: " + e.Reason
}

// ParseError reports a malformed declaration, attached to its source element.
type ParseError struct {
	Msg  string
	Elem xmldom.Element
}

func (e *ParseError) Error() string {
	return e.Msg
}
