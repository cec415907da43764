package xsd

import (
	"fmt"
	"maps"
	"slices"

	"github.com/agentflare-ai/go-xmldom"
)

// Names of the three anchor types the meta-schema is attached to.
var (
	anyTypeName       = QName{Namespace: XSDNamespace, Local: "anyType"}
	anySimpleTypeName = QName{Namespace: XSDNamespace, Local: "anySimpleType"}
	anyAtomicTypeName = QName{Namespace: XSDNamespace, Local: "anyAtomicType"}
)

// schemaBinder is implemented by components whose owning schema can be
// attached after construction; the anchor builtins receive the meta-schema.
type schemaBinder interface {
	BindSchema(s Schema)
}

// Build loads and constructs every global declaration of the registered
// schemas. It refuses to run on an instance that is not cleared: every
// global table, the substitution-group table and the base-elements table
// must be empty and no schema may carry prior errors. The XSD namespace
// must be registered (it provides the meta-schema).
//
// Any loader or resolver error aborts the whole build, leaving the instance
// in a must-clear state. Lax-mode pre-validation errors are accumulated on
// the schemas and do not abort.
func (g *Globals) Build() error {
	if err := g.checkCleared(); err != nil {
		return err
	}

	metaGroup := g.namespaces[XSDNamespace]
	if len(metaGroup) == 0 {
		return &StateError{Reason: fmt.Sprintf("namespace %q is not registered", XSDNamespace)}
	}
	metaSchema := metaGroup[0]

	// Seed builtin types and attach the meta-schema to the anchor types.
	for name, c := range g.opts.Builtins {
		g.Types[name] = &Entry{component: c}
	}
	for _, name := range []QName{anyTypeName, anySimpleTypeName, anyAtomicTypeName} {
		if entry, ok := g.Types[name]; ok {
			if b, ok := entry.component.(schemaBinder); ok {
				b.BindSchema(metaSchema)
			}
		}
	}
	g.logger.Debug("seeded builtin types", "count", len(g.opts.Builtins))

	if g.opts.Validation == ValidationLax && g.opts.SchemaCheck != nil {
		for schema := range g.IterSchemas() {
			errs := g.opts.SchemaCheck(schema)
			for _, err := range errs {
				schema.AddError(err)
			}
			if len(errs) > 0 {
				g.logger.Debug("lax pre-validation errors",
					"namespace", schema.TargetNamespace(), "count", len(errs))
			}
		}
	}

	// Load phase. The order only affects bookkeeping; resolution is
	// deferred, so it never affects correctness.
	loads := []struct {
		table map[QName]*Entry
		tag   string
	}{
		{g.Notations, "notation"},
		{g.Types, "simpleType"},
		{g.Attributes, "attribute"},
		{g.AttributeGroups, "attributeGroup"},
		{g.Types, "complexType"},
		{g.Elements, "element"},
		{g.Groups, "group"},
	}
	for _, l := range loads {
		if err := g.loadGlobals(l.table, l.tag); err != nil {
			return err
		}
	}

	// Resolve phase: force a lookup for every loaded name. Lookups are
	// memoized, so forcing an already built name is a no-op.
	resolves := []struct {
		table  map[QName]*Entry
		lookup func(QName) (Component, error)
	}{
		{g.Notations, g.LookupNotation},
		{g.Attributes, g.LookupAttribute},
		{g.AttributeGroups, g.LookupAttributeGroup},
		{g.Types, g.LookupType},
		{g.Elements, g.LookupElement},
		{g.Groups, g.LookupGroup},
	}
	for _, r := range resolves {
		for _, name := range slices.Collect(maps.Keys(r.table)) {
			if _, err := r.lookup(name); err != nil {
				return err
			}
		}
	}

	if err := g.materializeGroupElements(); err != nil {
		return err
	}
	g.deriveSubstitutionGroups()
	g.deriveBaseElements()

	if err := g.checkConsistency(); err != nil {
		return err
	}
	if !g.opts.SkipCheck && g.opts.FinalCheck != nil {
		for schema := range g.IterSchemas() {
			if err := g.opts.FinalCheck(schema); err != nil {
				return err
			}
		}
	}

	g.logger.Debug("build complete",
		"types", len(g.Types), "elements", len(g.Elements), "groups", len(g.Groups))
	return nil
}

// checkCleared verifies the build preconditions before any mutation.
func (g *Globals) checkCleared() error {
	for schema := range g.IterSchemas() {
		if len(schema.Errors()) > 0 {
			return &StateError{Reason: "a registered schema carries prior errors"}
		}
	}
	for _, table := range g.tables() {
		if len(table) > 0 {
			return &StateError{Reason: "global tables are not cleared"}
		}
	}
	if len(g.SubstitutionGroups) > 0 || len(g.BaseElements) > 0 {
		return &StateError{Reason: "derived tables are not cleared"}
	}
	return nil
}

// materializeGroupElements walks the model groups embedded in every built
// component and builds any element occurrence still held as an unresolved
// (element, schema) pair, substituting it in place.
func (g *Globals) materializeGroupElements() error {
	factory, ok := g.opts.Factories.Elements.Factories["element"]
	if !ok {
		return &StateError{Reason: "no element construction function configured"}
	}
	build := func(elem xmldom.Element, schema Schema) (Component, error) {
		c, err := factory(g, elem, schema, nil)
		if err != nil {
			return nil, err
		}
		if f, ok := c.(Finisher); ok && !c.Built() {
			if err := f.Finish(g); err != nil {
				return nil, err
			}
		}
		return c, nil
	}

	for component := range g.IterGlobals() {
		walker, ok := component.(ComponentWalker)
		if !ok {
			continue
		}
		for sub := range walker.IterComponents() {
			group, ok := sub.(GroupComponent)
			if !ok {
				continue
			}
			if err := group.Materialize(build); err != nil {
				return err
			}
		}
	}
	return nil
}

// deriveSubstitutionGroups adds every built element declaring a substitution
// head to that head's substitution set. An unprefixed head reference is
// expanded with the element's own target namespace.
func (g *Globals) deriveSubstitutionGroups() {
	for _, entry := range g.Elements {
		element, ok := entry.component.(ElementComponent)
		if !ok {
			continue
		}
		ref := element.SubstitutionGroupRef()
		if ref == "" {
			continue
		}
		head := resolveReference(ref, element.SourceSchema())
		set, ok := g.SubstitutionGroups[head]
		if !ok {
			set = make(map[QName]Component)
			g.SubstitutionGroups[head] = set
		}
		set[element.Name()] = element
	}
}

// deriveBaseElements unions every global element with every element
// reachable through the contents of a global model group.
func (g *Globals) deriveBaseElements() {
	for name, entry := range g.Elements {
		g.BaseElements[name] = entry.component
	}
	for _, entry := range g.Groups {
		group, ok := entry.component.(GroupComponent)
		if !ok {
			continue
		}
		for element := range group.IterElements() {
			g.BaseElements[element.Name()] = element
		}
	}
}

// checkConsistency verifies the post-build invariant: every key in every
// global table maps to exactly one fully built component.
func (g *Globals) checkConsistency() error {
	for _, table := range g.tables() {
		for name, entry := range table {
			if !entry.Built() {
				return &StateError{Reason: fmt.Sprintf("global %s was not fully built", name)}
			}
		}
	}
	return nil
}
