package xsd

import (
	"iter"
	"log/slog"
	"maps"

	"github.com/google/uuid"
)

// Globals mediates the schemas of one processing session. It stores the
// global declarations contributed by every registered schema, keyed by
// qualified name, and resolves them lazily on lookup.
//
// A Globals instance is owned by whichever validator or session created it;
// there is no process-wide shared instance. All methods assume single-writer
// access: registration, build and lookup must not run concurrently. A fully
// built instance may be shared read-only.
type Globals struct {
	opts   *BuildOptions
	logger *slog.Logger

	// Registered schemas grouped by target namespace, in registration
	// order, plus the resource-identity index for re-registration checks.
	namespaces map[string][]Schema
	nsOrder    []string
	resources  map[string]Schema

	// Global declaration tables. Types holds both simple and complex
	// types. Values transition from raw entries to built components in
	// place; treat the maps as read-only.
	Types           map[QName]*Entry
	Attributes      map[QName]*Entry
	AttributeGroups map[QName]*Entry
	Groups          map[QName]*Entry
	Notations       map[QName]*Entry
	Elements        map[QName]*Entry

	// SubstitutionGroups maps a head element's name to the set of elements
	// naming it as substitution head, keyed by member name.
	SubstitutionGroups map[QName]map[QName]Component

	// BaseElements is the root set for validation entry points: every
	// global element plus every element reachable through global model
	// groups.
	BaseElements map[QName]Component

	checkToken uuid.UUID
}

// NewGlobals creates an empty Globals instance. A nil opts selects
// DefaultOptions.
func NewGlobals(opts *BuildOptions) *Globals {
	if opts == nil {
		opts = DefaultOptions()
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Globals{
		opts:               opts,
		logger:             logger,
		namespaces:         make(map[string][]Schema),
		resources:          make(map[string]Schema),
		Types:              make(map[QName]*Entry),
		Attributes:         make(map[QName]*Entry),
		AttributeGroups:    make(map[QName]*Entry),
		Groups:             make(map[QName]*Entry),
		Notations:          make(map[QName]*Entry),
		Elements:           make(map[QName]*Entry),
		SubstitutionGroups: make(map[QName]map[QName]Component),
		BaseElements:       make(map[QName]Component),
		checkToken:         uuid.New(),
	}
}

// tables returns the six category tables in the canonical order.
func (g *Globals) tables() []map[QName]*Entry {
	return []map[QName]*Entry{
		g.Notations, g.Types, g.Attributes, g.AttributeGroups, g.Groups, g.Elements,
	}
}

// Register admits a schema. Registration is idempotent by resource identity:
// a schema whose resource is already known is a no-op, as is re-registering
// the same schema value. Order of admission within a namespace group is
// preserved and determines load order.
func (g *Globals) Register(schema Schema) {
	uri := schema.Resource()
	if uri != "" {
		if prev, ok := g.resources[uri]; ok {
			if prev != schema {
				return
			}
		} else {
			g.resources[uri] = schema
		}
	}

	ns := schema.TargetNamespace()
	group, ok := g.namespaces[ns]
	if !ok {
		g.namespaces[ns] = []Schema{schema}
		g.nsOrder = append(g.nsOrder, ns)
		return
	}
	for _, s := range group {
		if s == schema {
			return
		}
		if uri != "" && s.Resource() == uri {
			return
		}
	}
	g.namespaces[ns] = append(group, schema)
}

// IterSchemas yields every registered schema in registration order.
func (g *Globals) IterSchemas() iter.Seq[Schema] {
	return func(yield func(Schema) bool) {
		for _, ns := range g.nsOrder {
			for _, schema := range g.namespaces[ns] {
				if !yield(schema) {
					return
				}
			}
		}
	}
}

// IterGlobals yields every constructed global declaration across the six
// category tables. Raw entries that have not been built yet are skipped.
func (g *Globals) IterGlobals() iter.Seq[Component] {
	return func(yield func(Component) bool) {
		for _, table := range g.tables() {
			for _, entry := range table {
				if entry.component == nil {
					continue
				}
				if !yield(entry.component) {
					return
				}
			}
		}
	}
}

// NamespaceSchemas returns the registered schemas for one target namespace.
func (g *Globals) NamespaceSchemas(namespace string) []Schema {
	return g.namespaces[namespace]
}

// Clear empties every global table, the substitution-group table and the
// base-elements table, and resets every schema's error list. With
// removeSchemas the registry itself is emptied too. A Globals must be
// cleared before it can be rebuilt.
func (g *Globals) Clear(removeSchemas bool) {
	for _, table := range g.tables() {
		clear(table)
	}
	clear(g.SubstitutionGroups)
	clear(g.BaseElements)

	for schema := range g.IterSchemas() {
		schema.ResetErrors()
	}

	if removeSchemas {
		g.namespaces = make(map[string][]Schema)
		g.resources = make(map[string]Schema)
		g.nsOrder = nil
	}
	g.checkToken = uuid.New()
}

// Copy returns a shallow copy: tables and registry are fresh maps sharing
// the entry and schema values.
func (g *Globals) Copy() *Globals {
	c := NewGlobals(g.opts)
	for ns, group := range g.namespaces {
		c.namespaces[ns] = append([]Schema(nil), group...)
	}
	c.nsOrder = append([]string(nil), g.nsOrder...)
	maps.Copy(c.resources, g.resources)
	maps.Copy(c.Types, g.Types)
	maps.Copy(c.Attributes, g.Attributes)
	maps.Copy(c.AttributeGroups, g.AttributeGroups)
	maps.Copy(c.Groups, g.Groups)
	maps.Copy(c.Notations, g.Notations)
	maps.Copy(c.Elements, g.Elements)
	for head, set := range g.SubstitutionGroups {
		c.SubstitutionGroups[head] = maps.Clone(set)
	}
	maps.Copy(c.BaseElements, g.BaseElements)
	return c
}

// Built reports whether at least one schema is registered, the tables are
// populated and every entry holds a fully constructed component.
func (g *Globals) Built() bool {
	if len(g.namespaces) == 0 {
		return false
	}
	entries := 0
	for _, table := range g.tables() {
		for _, entry := range table {
			entries++
			if !entry.Built() {
				return false
			}
		}
	}
	return entries > 0
}

// Valid reports whether the instance is built and no registered schema
// carries accumulated errors.
func (g *Globals) Valid() bool {
	if !g.Built() {
		return false
	}
	for schema := range g.IterSchemas() {
		if len(schema.Errors()) > 0 {
			return false
		}
	}
	return true
}

// CheckToken identifies the current checked state; Uncheck invalidates it.
func (g *Globals) CheckToken() uuid.UUID { return g.checkToken }

// Uncheck regenerates the check token, marking consistency checks stale.
func (g *Globals) Uncheck() {
	g.checkToken = uuid.New()
}
